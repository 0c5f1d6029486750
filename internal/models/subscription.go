package models

import (
	"time"
)

// SubscriptionStatus is the lifecycle status of a newsletter subscription
type SubscriptionStatus string

const (
	// StatusActive means the sender's messages are included in digests
	StatusActive SubscriptionStatus = "active"
	// StatusPaused means the sender is temporarily excluded from digests
	StatusPaused SubscriptionStatus = "paused"
	// StatusIgnored is the terminal unsubscribed state; the row is kept for history
	StatusIgnored SubscriptionStatus = "ignored"
)

// Valid reports whether s is one of the known statuses
func (s SubscriptionStatus) Valid() bool {
	switch s {
	case StatusActive, StatusPaused, StatusIgnored:
		return true
	}
	return false
}

// Subscription represents a tracked newsletter sender
type Subscription struct {
	ID          string             `gorm:"primaryKey;size:36" json:"id"`
	SenderEmail string             `gorm:"uniqueIndex;not null;size:255" json:"sender_email"`
	SenderName  string             `gorm:"size:255" json:"sender_name,omitempty"`
	Status      SubscriptionStatus `gorm:"not null;size:16;index" json:"status"`
	CreatedAt   time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for Subscription
func (Subscription) TableName() string {
	return "newsletter_subscriptions"
}
