package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wrenhollis/newsletter-digest-backend/internal/models"
	"gorm.io/gorm"
)

// SubscriptionRepository defines the interface for newsletter subscription data access
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *models.Subscription) error
	GetBySenderEmail(ctx context.Context, senderEmail string) (*models.Subscription, error)
	Update(ctx context.Context, sub *models.Subscription) error
	UpdateStatus(ctx context.Context, senderEmail string, status models.SubscriptionStatus) error
	List(ctx context.Context) ([]models.Subscription, error)
	ListByStatus(ctx context.Context, status models.SubscriptionStatus) ([]models.Subscription, error)
	Delete(ctx context.Context, senderEmail string) error
}

// subscriptionRepository implements SubscriptionRepository using GORM
type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new SubscriptionRepository instance
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// Create creates a new subscription row, assigning its ID
func (r *subscriptionRepository) Create(ctx context.Context, sub *models.Subscription) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	result := r.db.WithContext(ctx).Create(sub)
	if result.Error != nil {
		if isDuplicateKeyError(result.Error) {
			return fmt.Errorf("subscription for '%s' already exists: %w", sub.SenderEmail, ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create subscription: %w", result.Error)
	}
	return nil
}

// GetBySenderEmail retrieves a subscription by its normalized sender address
func (r *subscriptionRepository) GetBySenderEmail(ctx context.Context, senderEmail string) (*models.Subscription, error) {
	var sub models.Subscription
	result := r.db.WithContext(ctx).Where("sender_email = ?", senderEmail).First(&sub)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get subscription: %w", result.Error)
	}
	return &sub, nil
}

// Update saves a full subscription row
func (r *subscriptionRepository) Update(ctx context.Context, sub *models.Subscription) error {
	result := r.db.WithContext(ctx).Save(sub)
	if result.Error != nil {
		return fmt.Errorf("failed to update subscription: %w", result.Error)
	}
	return nil
}

// UpdateStatus sets the status and bumps updated_at for one sender
func (r *subscriptionRepository) UpdateStatus(ctx context.Context, senderEmail string, status models.SubscriptionStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("sender_email = ?", senderEmail).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update subscription status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List retrieves all subscriptions ordered by sender address
func (r *subscriptionRepository) List(ctx context.Context) ([]models.Subscription, error) {
	var subs []models.Subscription
	result := r.db.WithContext(ctx).Order("sender_email ASC").Find(&subs)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", result.Error)
	}
	return subs, nil
}

// ListByStatus retrieves subscriptions with the given status ordered by sender address
func (r *subscriptionRepository) ListByStatus(ctx context.Context, status models.SubscriptionStatus) ([]models.Subscription, error) {
	var subs []models.Subscription
	result := r.db.WithContext(ctx).Where("status = ?", status).Order("sender_email ASC").Find(&subs)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list subscriptions by status: %w", result.Error)
	}
	return subs, nil
}

// Delete removes a subscription row entirely
func (r *subscriptionRepository) Delete(ctx context.Context, senderEmail string) error {
	result := r.db.WithContext(ctx).Where("sender_email = ?", senderEmail).Delete(&models.Subscription{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete subscription: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
