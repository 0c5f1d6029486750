package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wrenhollis/newsletter-digest-backend/internal/mailbox"
	"github.com/wrenhollis/newsletter-digest-backend/internal/models"
	"github.com/wrenhollis/newsletter-digest-backend/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testLogger discards all output
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupTestDB opens an in-memory SQLite database with all tables migrated
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.Subscription{},
		&models.Digest{},
		&models.Summary{},
		&models.DigestConfig{},
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	})
	return db
}

// stubMailbox is a canned Mailbox implementation
type stubMailbox struct {
	// messages holds all canned messages; Search filters by query
	messages []mailbox.Message
	// bodies maps message ID to body text
	bodies map[string]string
	// searchErr fails every Search call when set
	searchErr error
	// bodyErrs fails Body for specific message IDs
	bodyErrs map[string]error
}

func (s *stubMailbox) Search(_ context.Context, q mailbox.Query) ([]mailbox.Message, error) {
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	var out []mailbox.Message
	for _, msg := range s.messages {
		if q.SenderEmail != "" && msg.SenderEmail != q.SenderEmail {
			continue
		}
		if !q.After.IsZero() && msg.ReceivedAt.Before(q.After) {
			continue
		}
		out = append(out, msg)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func (s *stubMailbox) Body(_ context.Context, messageID string) (string, error) {
	if err, ok := s.bodyErrs[messageID]; ok {
		return "", err
	}
	body, ok := s.bodies[messageID]
	if !ok {
		return "", fmt.Errorf("no such message %s", messageID)
	}
	return body, nil
}

// stubCompleter is a canned Completer implementation. The generator calls
// Complete from concurrent workers, so the prompt log is mutex-guarded.
type stubCompleter struct {
	// response is returned for every call unless err is set
	response string
	// err fails every call when set
	err error
	// failWhenContains fails calls whose prompt contains this substring
	failWhenContains string

	mu sync.Mutex
	// prompts records every prompt received
	prompts []string
}

func (s *stubCompleter) Complete(_ context.Context, prompt string, _ int) (string, error) {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	if s.failWhenContains != "" && strings.Contains(prompt, s.failWhenContains) {
		return "", fmt.Errorf("completion refused")
	}
	if s.response != "" {
		return s.response, nil
	}
	return "summary text", nil
}

// failingDigestRepo fails CreateWithSummaries to exercise persistence errors
type failingDigestRepo struct {
	repository.DigestRepository
}

func (f *failingDigestRepo) CreateWithSummaries(context.Context, *models.Digest, []models.Summary) error {
	return fmt.Errorf("connection reset")
}
