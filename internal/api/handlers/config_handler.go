package handlers

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/wrenhollis/newsletter-digest-backend/internal/api/response"
	apperrors "github.com/wrenhollis/newsletter-digest-backend/internal/errors"
	"github.com/wrenhollis/newsletter-digest-backend/internal/models"
	"github.com/wrenhollis/newsletter-digest-backend/internal/repository"
)

// ConfigHandler handles digest configuration HTTP requests
type ConfigHandler struct {
	config repository.ConfigRepository
}

// NewConfigHandler creates a new ConfigHandler
func NewConfigHandler(config repository.ConfigRepository) *ConfigHandler {
	return &ConfigHandler{config: config}
}

// UpdateConfigRequest represents the request body for updating digest config.
// Absent fields keep their current value.
type UpdateConfigRequest struct {
	Schedule     *string `json:"schedule"`
	MaxPerDigest *int    `json:"max_per_digest"`
	AutoGenerate *bool   `json:"auto_generate"`
}

// Get handles GET /api/digests/config
func (h *ConfigHandler) Get(c echo.Context) error {
	cfg, err := h.config.Get(c.Request().Context())
	if err != nil {
		return response.InternalError(c, "failed to load digest config")
	}
	return response.Success(c, cfg)
}

// Update handles PUT /api/digests/config
func (h *ConfigHandler) Update(c echo.Context) error {
	var req UpdateConfigRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	update := repository.DigestConfigUpdate{
		MaxPerDigest: req.MaxPerDigest,
		AutoGenerate: req.AutoGenerate,
	}

	if req.Schedule != nil {
		schedule := models.DigestSchedule(*req.Schedule)
		if !schedule.Valid() {
			return response.Error(c, fmt.Errorf(
				"%w: schedule must be daily, weekly or manual", apperrors.ErrInvalidConfig))
		}
		update.Schedule = &schedule
	}

	if req.MaxPerDigest != nil && *req.MaxPerDigest < 1 {
		return response.Error(c, fmt.Errorf(
			"%w: max_per_digest must be at least 1", apperrors.ErrInvalidConfig))
	}

	cfg, err := h.config.Update(c.Request().Context(), update)
	if err != nil {
		return response.InternalError(c, "failed to update digest config")
	}

	return response.Success(c, cfg)
}
