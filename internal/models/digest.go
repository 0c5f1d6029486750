package models

import (
	"time"
)

// Digest represents a generated snapshot of summarized newsletters over a period
type Digest struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	PeriodStart     time.Time `gorm:"not null" json:"period_start"`
	PeriodEnd       time.Time `gorm:"not null" json:"period_end"`
	Summary         string    `gorm:"not null" json:"summary"`
	NewsletterCount int       `gorm:"not null" json:"newsletter_count"`
	CreatedAt       time.Time `gorm:"autoCreateTime;index" json:"created_at"`

	// Relationships
	Summaries []Summary `gorm:"foreignKey:DigestID;constraint:OnDelete:CASCADE" json:"newsletters,omitempty"`
}

// TableName returns the table name for Digest
func (Digest) TableName() string {
	return "newsletter_digests"
}

// DigestListItem is a lightweight version for list views, without child summaries
type DigestListItem struct {
	ID              string    `json:"id"`
	PeriodStart     time.Time `json:"period_start"`
	PeriodEnd       time.Time `json:"period_end"`
	Summary         string    `json:"summary"`
	NewsletterCount int       `json:"newsletter_count"`
	CreatedAt       time.Time `json:"created_at"`
}

// Summary is one message's generated synopsis, owned by a Digest
type Summary struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	DigestID     string    `gorm:"not null;size:36;index:idx_digest_message,unique" json:"digest_id"`
	MessageID    string    `gorm:"not null;size:255;index:idx_digest_message,unique" json:"message_id"`
	Sender       string    `gorm:"size:255" json:"sender"`
	SenderEmail  string    `gorm:"not null;size:255" json:"sender_email"`
	Subject      string    `json:"subject"`
	Summary      string    `gorm:"not null" json:"summary"`
	ReceivedDate time.Time `json:"received_date"`

	// Relationships
	Digest Digest `gorm:"foreignKey:DigestID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for Summary
func (Summary) TableName() string {
	return "newsletter_summaries"
}
