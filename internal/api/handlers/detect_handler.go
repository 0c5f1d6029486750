package handlers

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/wrenhollis/newsletter-digest-backend/internal/api/response"
	"github.com/wrenhollis/newsletter-digest-backend/internal/services"
)

// DetectionNotifier receives an event after a mailbox scan finishes
type DetectionNotifier interface {
	DetectionCompleted(candidateCount int)
}

// DetectHandler handles newsletter detection HTTP requests
type DetectHandler struct {
	detector *services.Detector
	notifier DetectionNotifier
}

// NewDetectHandler creates a new DetectHandler. notifier may be nil.
func NewDetectHandler(detector *services.Detector, notifier DetectionNotifier) *DetectHandler {
	return &DetectHandler{detector: detector, notifier: notifier}
}

// DetectResponse wraps the detected candidates
type DetectResponse struct {
	Candidates []services.Candidate `json:"candidates"`
	Count      int                  `json:"count"`
}

// Detect handles GET /api/newsletters/detect
func (h *DetectHandler) Detect(c echo.Context) error {
	limit := services.DefaultDetectLimit
	if l := c.QueryParam("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			return response.BadRequest(c, "limit must be a positive integer")
		}
		limit = parsed
	}

	daysBack := services.DefaultDetectDaysBack
	if d := c.QueryParam("days_back"); d != "" {
		parsed, err := strconv.Atoi(d)
		if err != nil || parsed <= 0 {
			return response.BadRequest(c, "days_back must be a positive integer")
		}
		daysBack = parsed
	}

	candidates, err := h.detector.Detect(c.Request().Context(), limit, daysBack)
	if err != nil {
		return response.Error(c, err)
	}

	if h.notifier != nil {
		h.notifier.DetectionCompleted(len(candidates))
	}

	return response.Success(c, DetectResponse{
		Candidates: candidates,
		Count:      len(candidates),
	})
}
