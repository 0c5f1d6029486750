package repository

import (
	"errors"
	"strings"
)

// Sentinel errors shared by the repositories
var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEntry = errors.New("duplicate entry")
)

// isDuplicateKeyError reports whether err is a unique constraint violation,
// covering both the postgres and sqlite phrasings
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint") ||
		strings.Contains(msg, "23505") // postgres unique_violation
}
