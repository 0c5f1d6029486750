package services

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/wrenhollis/newsletter-digest-backend/internal/errors"
	"github.com/wrenhollis/newsletter-digest-backend/internal/models"
	"github.com/wrenhollis/newsletter-digest-backend/internal/repository"
)

func newTestManager(t *testing.T) (*SubscriptionManager, repository.SubscriptionRepository) {
	t.Helper()
	db := setupTestDB(t)
	repo := repository.NewSubscriptionRepository(db)
	return NewSubscriptionManager(repo, testLogger()), repo
}

func TestSubscribe_CreatesActiveSubscription(t *testing.T) {
	manager, _ := newTestManager(t)

	sub, err := manager.Subscribe(context.Background(), "Tech@Example.com", "Tech Weekly")

	require.NoError(t, err)
	assert.NotEmpty(t, sub.ID)
	assert.Equal(t, "tech@example.com", sub.SenderEmail)
	assert.Equal(t, "Tech Weekly", sub.SenderName)
	assert.Equal(t, models.StatusActive, sub.Status)
}

func TestSubscribe_LogsRedactedSender(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewSubscriptionRepository(db)
	var buf bytes.Buffer
	manager := NewSubscriptionManager(repo, slog.New(slog.NewJSONHandler(&buf, nil)))

	_, err := manager.Subscribe(context.Background(), "Weekly@Example.com", "")
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "w***@example.com")
	assert.NotContains(t, buf.String(), "weekly@example.com")
}

func TestSubscribe_InvalidEmailRejected(t *testing.T) {
	manager, _ := newTestManager(t)

	_, err := manager.Subscribe(context.Background(), "not-an-email", "")

	assert.ErrorIs(t, err, apperrors.ErrInvalidEmail)
}

func TestSubscribe_IsIdempotent(t *testing.T) {
	manager, repo := newTestManager(t)

	first, err := manager.Subscribe(context.Background(), "tech@example.com", "Tech Weekly")
	require.NoError(t, err)

	second, err := manager.Subscribe(context.Background(), "tech@example.com", "Tech Weekly")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	subs, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}

func TestSubscribe_ReactivatesPausedAndIgnored(t *testing.T) {
	manager, _ := newTestManager(t)
	ctx := context.Background()

	_, err := manager.Subscribe(ctx, "tech@example.com", "")
	require.NoError(t, err)
	_, err = manager.Pause(ctx, "tech@example.com")
	require.NoError(t, err)

	sub, err := manager.Subscribe(ctx, "tech@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, sub.Status)

	_, err = manager.Unsubscribe(ctx, "tech@example.com")
	require.NoError(t, err)

	sub, err = manager.Subscribe(ctx, "tech@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, sub.Status)
}

func TestPauseResume_RoundTrip(t *testing.T) {
	manager, _ := newTestManager(t)
	ctx := context.Background()

	created, err := manager.Subscribe(ctx, "tech@example.com", "")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	paused, err := manager.Pause(ctx, "tech@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaused, paused.Status)
	assert.True(t, paused.UpdatedAt.After(created.UpdatedAt))

	time.Sleep(10 * time.Millisecond)
	resumed, err := manager.Resume(ctx, "tech@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, resumed.Status)
	assert.True(t, resumed.UpdatedAt.After(paused.UpdatedAt))
}

func TestPause_AlreadyPausedIsInvalidTransition(t *testing.T) {
	manager, _ := newTestManager(t)
	ctx := context.Background()

	_, err := manager.Subscribe(ctx, "tech@example.com", "")
	require.NoError(t, err)
	_, err = manager.Pause(ctx, "tech@example.com")
	require.NoError(t, err)

	_, err = manager.Pause(ctx, "tech@example.com")
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestResume_ActiveIsInvalidTransition(t *testing.T) {
	manager, _ := newTestManager(t)
	ctx := context.Background()

	_, err := manager.Subscribe(ctx, "tech@example.com", "")
	require.NoError(t, err)

	_, err = manager.Resume(ctx, "tech@example.com")
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestPauseResume_NotFound(t *testing.T) {
	manager, _ := newTestManager(t)
	ctx := context.Background()

	_, err := manager.Pause(ctx, "missing@example.com")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = manager.Resume(ctx, "missing@example.com")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUnsubscribe_TransitionsToIgnoredAndKeepsRow(t *testing.T) {
	manager, repo := newTestManager(t)
	ctx := context.Background()

	_, err := manager.Subscribe(ctx, "tech@example.com", "")
	require.NoError(t, err)

	sub, err := manager.Unsubscribe(ctx, "tech@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.StatusIgnored, sub.Status)

	// History is preserved
	kept, err := repo.GetBySenderEmail(ctx, "tech@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.StatusIgnored, kept.Status)
}

func TestUnsubscribe_NotFound(t *testing.T) {
	manager, _ := newTestManager(t)

	_, err := manager.Unsubscribe(context.Background(), "missing@example.com")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUnsubscribedSender_CannotPauseOrResume(t *testing.T) {
	manager, _ := newTestManager(t)
	ctx := context.Background()

	_, err := manager.Subscribe(ctx, "tech@example.com", "")
	require.NoError(t, err)
	_, err = manager.Unsubscribe(ctx, "tech@example.com")
	require.NoError(t, err)

	_, err = manager.Pause(ctx, "tech@example.com")
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	_, err = manager.Resume(ctx, "tech@example.com")
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestList_OrderedBySender(t *testing.T) {
	manager, _ := newTestManager(t)
	ctx := context.Background()

	for _, email := range []string{"zeta@example.com", "alpha@example.com"} {
		_, err := manager.Subscribe(ctx, email, "")
		require.NoError(t, err)
	}

	subs, err := manager.List(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "alpha@example.com", subs[0].SenderEmail)
}
