package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/wrenhollis/newsletter-digest-backend/internal/models"
	"gorm.io/gorm"
)

// DigestConfigUpdate carries the fields of a partial config update. Nil fields
// keep their prior values.
type DigestConfigUpdate struct {
	Schedule     *models.DigestSchedule
	MaxPerDigest *int
	AutoGenerate *bool
}

// ConfigRepository defines the interface for the singleton digest configuration
type ConfigRepository interface {
	Get(ctx context.Context) (*models.DigestConfig, error)
	Update(ctx context.Context, update DigestConfigUpdate) (*models.DigestConfig, error)
}

// configRepository implements ConfigRepository using GORM
type configRepository struct {
	db *gorm.DB
}

// NewConfigRepository creates a new ConfigRepository instance
func NewConfigRepository(db *gorm.DB) ConfigRepository {
	return &configRepository{db: db}
}

// Get retrieves the singleton config row, creating the default row on first read
func (r *configRepository) Get(ctx context.Context) (*models.DigestConfig, error) {
	var cfg models.DigestConfig
	result := r.db.WithContext(ctx).First(&cfg, "id = ?", 1)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			cfg = *models.DefaultDigestConfig()
			if err := r.db.WithContext(ctx).Create(&cfg).Error; err != nil {
				// Another request may have created it concurrently
				if isDuplicateKeyError(err) {
					if err := r.db.WithContext(ctx).First(&cfg, "id = ?", 1).Error; err != nil {
						return nil, fmt.Errorf("failed to get digest config: %w", err)
					}
					return &cfg, nil
				}
				return nil, fmt.Errorf("failed to create default digest config: %w", err)
			}
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to get digest config: %w", result.Error)
	}
	return &cfg, nil
}

// Update applies a partial update, overwriting only the supplied fields
func (r *configRepository) Update(ctx context.Context, update DigestConfigUpdate) (*models.DigestConfig, error) {
	cfg, err := r.Get(ctx)
	if err != nil {
		return nil, err
	}

	if update.Schedule != nil {
		cfg.Schedule = *update.Schedule
	}
	if update.MaxPerDigest != nil {
		cfg.MaxPerDigest = *update.MaxPerDigest
	}
	if update.AutoGenerate != nil {
		cfg.AutoGenerate = *update.AutoGenerate
	}

	if err := r.db.WithContext(ctx).Save(cfg).Error; err != nil {
		return nil, fmt.Errorf("failed to update digest config: %w", err)
	}
	return cfg, nil
}
