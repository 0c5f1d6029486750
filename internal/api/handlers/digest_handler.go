package handlers

import (
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/wrenhollis/newsletter-digest-backend/internal/api/response"
	"github.com/wrenhollis/newsletter-digest-backend/internal/repository"
	"github.com/wrenhollis/newsletter-digest-backend/internal/services"
)

// DigestHandler handles digest HTTP requests
type DigestHandler struct {
	generator *services.DigestGenerator
	digests   repository.DigestRepository
	mailer    *services.DigestMailer
	logger    *slog.Logger
}

// NewDigestHandler creates a new DigestHandler. mailer may be nil when
// delivery is not configured.
func NewDigestHandler(generator *services.DigestGenerator, digests repository.DigestRepository, mailer *services.DigestMailer, logger *slog.Logger) *DigestHandler {
	return &DigestHandler{
		generator: generator,
		digests:   digests,
		mailer:    mailer,
		logger:    logger,
	}
}

// GenerateDigestRequest represents the request body for generating a digest
type GenerateDigestRequest struct {
	// SinceDate is the start of the covered period in RFC 3339 or
	// YYYY-MM-DD form
	SinceDate string `json:"since_date"`
	// MaxNewsletters caps how many messages the digest covers
	MaxNewsletters int `json:"max_newsletters"`
}

// Generate handles POST /api/digests
func (h *DigestHandler) Generate(c echo.Context) error {
	var req GenerateDigestRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	var since time.Time
	if req.SinceDate != "" {
		parsed, err := parseDate(req.SinceDate)
		if err != nil {
			return response.BadRequest(c, "since_date must be RFC 3339 or YYYY-MM-DD")
		}
		since = parsed
	}

	if req.MaxNewsletters < 0 {
		return response.BadRequest(c, "max_newsletters must not be negative")
	}

	digest, err := h.generator.Generate(c.Request().Context(), services.GenerateOptions{
		Since:          since,
		MaxNewsletters: req.MaxNewsletters,
	})
	if err != nil {
		return response.Error(c, err)
	}

	// Delivery after generation is best-effort; the digest is already
	// committed either way
	if h.mailer != nil && h.mailer.Enabled() {
		go func() {
			if err := h.mailer.Send(digest); err != nil && h.logger != nil {
				h.logger.Error("automatic digest delivery failed",
					slog.String("digest_id", digest.ID),
					slog.Any("error", err))
			}
		}()
	}

	return response.Created(c, digest)
}

// defaultDigestListLimit applies when no limit query parameter is given
const defaultDigestListLimit = 10

// List handles GET /api/digests
func (h *DigestHandler) List(c echo.Context) error {
	limit := defaultDigestListLimit
	if l := c.QueryParam("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			return response.BadRequest(c, "limit must be a positive integer")
		}
		limit = parsed
	}

	digests, err := h.digests.List(c.Request().Context(), limit)
	if err != nil {
		return response.InternalError(c, "failed to list digests")
	}

	return response.Success(c, digests)
}

// Get handles GET /api/digests/:id
func (h *DigestHandler) Get(c echo.Context) error {
	id := c.Param("id")

	digest, err := h.digests.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "digest not found")
		}
		return response.InternalError(c, "failed to get digest")
	}

	return response.Success(c, digest)
}

// Delete handles DELETE /api/digests/:id
func (h *DigestHandler) Delete(c echo.Context) error {
	id := c.Param("id")

	if err := h.digests.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "digest not found")
		}
		return response.InternalError(c, "failed to delete digest")
	}

	return response.NoContent(c)
}

// Send handles POST /api/digests/:id/send
func (h *DigestHandler) Send(c echo.Context) error {
	if h.mailer == nil || !h.mailer.Enabled() {
		return response.BadRequest(c, "digest delivery is not configured")
	}

	id := c.Param("id")
	digest, err := h.digests.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "digest not found")
		}
		return response.InternalError(c, "failed to get digest")
	}

	if err := h.mailer.Send(digest); err != nil {
		return response.InternalError(c, "failed to send digest")
	}

	return response.SuccessWithMessage(c, nil, "digest sent")
}

// parseDate accepts RFC 3339 timestamps and bare dates
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
