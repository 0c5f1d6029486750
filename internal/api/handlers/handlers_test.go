package handlers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/wrenhollis/newsletter-digest-backend/internal/mailbox"
	"github.com/wrenhollis/newsletter-digest-backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

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

func newContext(e *echo.Echo, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

// fakeMailbox is a canned mailbox.Mailbox for handler tests
type fakeMailbox struct {
	messages  []mailbox.Message
	bodies    map[string]string
	searchErr error
}

func (f *fakeMailbox) Search(_ context.Context, q mailbox.Query) ([]mailbox.Message, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	var out []mailbox.Message
	for _, msg := range f.messages {
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

func (f *fakeMailbox) Body(_ context.Context, messageID string) (string, error) {
	body, ok := f.bodies[messageID]
	if !ok {
		return "", fmt.Errorf("no such message %s", messageID)
	}
	return body, nil
}

// fakeCompleter is a canned llm.Completer for handler tests
type fakeCompleter struct {
	response string
	err      error
}

func (f *fakeCompleter) Complete(context.Context, string, int) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.response != "" {
		return f.response, nil
	}
	return "summary text", nil
}
