package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	apperrors "github.com/wrenhollis/newsletter-digest-backend/internal/errors"
	"github.com/wrenhollis/newsletter-digest-backend/internal/logger"
	"github.com/wrenhollis/newsletter-digest-backend/internal/mailbox"
	"github.com/wrenhollis/newsletter-digest-backend/internal/models"
	"github.com/wrenhollis/newsletter-digest-backend/internal/repository"
)

// SubscriptionManager mutates subscription lifecycle state. Mutations are
// serialized per sender address so concurrent pause/resume calls cannot lose
// updates.
//
// State machine: subscribe creates `active`; active --pause--> paused;
// paused --resume--> active; any state --unsubscribe--> ignored (terminal,
// row kept for history). Subscribing an existing sender reactivates it.
// Pause/resume on a subscription already in the target state fail with
// ErrInvalidTransition rather than silently succeeding.
type SubscriptionManager struct {
	repo   repository.SubscriptionRepository
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewSubscriptionManager creates a new SubscriptionManager
func NewSubscriptionManager(repo repository.SubscriptionRepository, logger *slog.Logger) *SubscriptionManager {
	return &SubscriptionManager{
		repo:   repo,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

// lockSender acquires the per-sender mutex and returns its release func
func (m *SubscriptionManager) lockSender(senderEmail string) func() {
	m.mu.Lock()
	lock, ok := m.locks[senderEmail]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[senderEmail] = lock
	}
	m.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// Subscribe upserts a subscription for senderEmail and returns it. The call
// is idempotent: an already-active subscription is returned unchanged, a
// paused or ignored one is reactivated.
func (m *SubscriptionManager) Subscribe(ctx context.Context, senderEmail, senderName string) (*models.Subscription, error) {
	normalized := mailbox.NormalizeAddress(senderEmail)
	if normalized == "" {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidEmail, senderEmail)
	}

	unlock := m.lockSender(normalized)
	defer unlock()

	existing, err := m.repo.GetBySenderEmail(ctx, normalized)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}

		sub := &models.Subscription{
			SenderEmail: normalized,
			SenderName:  senderName,
			Status:      models.StatusActive,
		}
		if err := m.repo.Create(ctx, sub); err != nil {
			return nil, err
		}
		m.logger.Info("subscribed to newsletter", slog.String("sender", logger.RedactEmail(normalized)))
		return sub, nil
	}

	if existing.Status == models.StatusActive {
		return existing, nil
	}

	existing.Status = models.StatusActive
	if senderName != "" {
		existing.SenderName = senderName
	}
	if err := m.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	m.logger.Info("reactivated newsletter subscription", slog.String("sender", logger.RedactEmail(normalized)))
	return existing, nil
}

// Unsubscribe transitions a subscription to the terminal ignored state. The
// row is kept so history survives; only an explicit delete removes it.
func (m *SubscriptionManager) Unsubscribe(ctx context.Context, senderEmail string) (*models.Subscription, error) {
	return m.transition(ctx, senderEmail, models.StatusIgnored, "unsubscribed from newsletter")
}

// Pause excludes a sender from digest generation until resumed
func (m *SubscriptionManager) Pause(ctx context.Context, senderEmail string) (*models.Subscription, error) {
	return m.transition(ctx, senderEmail, models.StatusPaused, "paused newsletter subscription")
}

// Resume reactivates a paused subscription
func (m *SubscriptionManager) Resume(ctx context.Context, senderEmail string) (*models.Subscription, error) {
	return m.transition(ctx, senderEmail, models.StatusActive, "resumed newsletter subscription")
}

// transition applies a status change under the per-sender lock
func (m *SubscriptionManager) transition(ctx context.Context, senderEmail string, target models.SubscriptionStatus, logMsg string) (*models.Subscription, error) {
	normalized := mailbox.NormalizeAddress(senderEmail)
	if normalized == "" {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidEmail, senderEmail)
	}

	unlock := m.lockSender(normalized)
	defer unlock()

	existing, err := m.repo.GetBySenderEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: no subscription for %s", apperrors.ErrNotFound, normalized)
		}
		return nil, err
	}

	if existing.Status == target {
		return nil, fmt.Errorf("%w: subscription for %s is already %s", apperrors.ErrInvalidTransition, normalized, target)
	}
	// Unsubscribe is terminal; pause and resume no longer apply
	if existing.Status == models.StatusIgnored && target != models.StatusIgnored {
		return nil, fmt.Errorf("%w: subscription for %s is unsubscribed", apperrors.ErrInvalidTransition, normalized)
	}

	if err := m.repo.UpdateStatus(ctx, normalized, target); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: no subscription for %s", apperrors.ErrNotFound, normalized)
		}
		return nil, err
	}

	updated, err := m.repo.GetBySenderEmail(ctx, normalized)
	if err != nil {
		return nil, err
	}

	m.logger.Info(logMsg, slog.String("sender", logger.RedactEmail(normalized)))
	return updated, nil
}

// List returns all subscriptions ordered by sender address
func (m *SubscriptionManager) List(ctx context.Context) ([]models.Subscription, error) {
	return m.repo.List(ctx)
}
