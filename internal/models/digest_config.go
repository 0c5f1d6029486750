package models

import (
	"time"
)

// DigestSchedule controls when digests are generated automatically
type DigestSchedule string

const (
	ScheduleDaily  DigestSchedule = "daily"
	ScheduleWeekly DigestSchedule = "weekly"
	ScheduleManual DigestSchedule = "manual"
)

// Valid reports whether s is one of the known schedules
func (s DigestSchedule) Valid() bool {
	switch s {
	case ScheduleDaily, ScheduleWeekly, ScheduleManual:
		return true
	}
	return false
}

// Default digest configuration values used when no row exists yet
const (
	DefaultMaxPerDigest = 20
)

// DigestConfig is the singleton digest generation configuration
type DigestConfig struct {
	ID           uint           `gorm:"primaryKey" json:"-"`
	Schedule     DigestSchedule `gorm:"not null;size:16" json:"schedule"`
	MaxPerDigest int            `gorm:"not null" json:"max_per_digest"`
	AutoGenerate bool           `gorm:"not null" json:"auto_generate"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for DigestConfig
func (DigestConfig) TableName() string {
	return "newsletter_config"
}

// DefaultDigestConfig returns the configuration used before any update is applied
func DefaultDigestConfig() *DigestConfig {
	return &DigestConfig{
		ID:           1,
		Schedule:     ScheduleManual,
		MaxPerDigest: DefaultMaxPerDigest,
		AutoGenerate: false,
	}
}
