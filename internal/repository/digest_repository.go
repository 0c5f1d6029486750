package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/wrenhollis/newsletter-digest-backend/internal/models"
	"gorm.io/gorm"
)

// DigestRepository defines the interface for digest and summary data access
type DigestRepository interface {
	CreateWithSummaries(ctx context.Context, digest *models.Digest, summaries []models.Summary) error
	GetByID(ctx context.Context, id string) (*models.Digest, error)
	List(ctx context.Context, limit int) ([]models.DigestListItem, error)
	Delete(ctx context.Context, id string) error
}

// digestRepository implements DigestRepository using GORM
type digestRepository struct {
	db *gorm.DB
}

// NewDigestRepository creates a new DigestRepository instance
func NewDigestRepository(db *gorm.DB) DigestRepository {
	return &digestRepository{db: db}
}

// CreateWithSummaries writes a digest and its child summaries in a single
// transaction. Either every row is committed or none are.
func (r *digestRepository) CreateWithSummaries(ctx context.Context, digest *models.Digest, summaries []models.Summary) error {
	if digest.ID == "" {
		digest.ID = uuid.NewString()
	}
	for i := range summaries {
		if summaries[i].ID == "" {
			summaries[i].ID = uuid.NewString()
		}
		summaries[i].DigestID = digest.ID
	}
	digest.NewsletterCount = len(summaries)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Summaries").Create(digest).Error; err != nil {
			return err
		}
		if len(summaries) > 0 {
			if err := tx.Create(&summaries).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to persist digest: %w", err)
	}

	digest.Summaries = summaries
	return nil
}

// GetByID retrieves a digest including all child summaries
func (r *digestRepository) GetByID(ctx context.Context, id string) (*models.Digest, error) {
	var digest models.Digest
	result := r.db.WithContext(ctx).
		Preload("Summaries", func(db *gorm.DB) *gorm.DB {
			return db.Order("received_date DESC")
		}).
		First(&digest, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get digest: %w", result.Error)
	}
	return &digest, nil
}

// List retrieves up to limit digests, most recent first, without child summaries
func (r *digestRepository) List(ctx context.Context, limit int) ([]models.DigestListItem, error) {
	var items []models.DigestListItem
	result := r.db.WithContext(ctx).
		Model(&models.Digest{}).
		Order("created_at DESC").
		Limit(limit).
		Find(&items)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list digests: %w", result.Error)
	}
	return items, nil
}

// Delete removes a digest and cascades to its summaries
func (r *digestRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("digest_id = ?", id).Delete(&models.Summary{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Digest{ID: id})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete digest: %w", err)
	}
	return nil
}
