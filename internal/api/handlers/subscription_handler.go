package handlers

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"
	"github.com/wrenhollis/newsletter-digest-backend/internal/api/response"
	apperrors "github.com/wrenhollis/newsletter-digest-backend/internal/errors"
	"github.com/wrenhollis/newsletter-digest-backend/internal/models"
	"github.com/wrenhollis/newsletter-digest-backend/internal/services"
)

// SubscriptionNotifier receives subscription state change events
type SubscriptionNotifier interface {
	SubscriptionChanged(sub *models.Subscription)
}

// SubscriptionHandler handles subscription lifecycle HTTP requests
type SubscriptionHandler struct {
	manager  *services.SubscriptionManager
	notifier SubscriptionNotifier
}

// NewSubscriptionHandler creates a new SubscriptionHandler. notifier may be nil.
func NewSubscriptionHandler(manager *services.SubscriptionManager, notifier SubscriptionNotifier) *SubscriptionHandler {
	return &SubscriptionHandler{manager: manager, notifier: notifier}
}

// SubscribeRequest represents the request body for creating a subscription
type SubscribeRequest struct {
	SenderEmail string `json:"sender_email"`
	SenderName  string `json:"sender_name"`
}

// Subscribe handles POST /api/subscriptions
func (h *SubscriptionHandler) Subscribe(c echo.Context) error {
	var req SubscribeRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	if req.SenderEmail == "" {
		return response.BadRequest(c, "sender_email is required")
	}

	sub, err := h.manager.Subscribe(c.Request().Context(), req.SenderEmail, req.SenderName)
	if err != nil {
		return response.Error(c, err)
	}

	h.notify(sub)
	return response.Created(c, sub)
}

// List handles GET /api/subscriptions
func (h *SubscriptionHandler) List(c echo.Context) error {
	subs, err := h.manager.List(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, subs)
}

// Unsubscribe handles DELETE /api/subscriptions/:email
func (h *SubscriptionHandler) Unsubscribe(c echo.Context) error {
	return h.transition(c, h.manager.Unsubscribe)
}

// Pause handles POST /api/subscriptions/:email/pause
func (h *SubscriptionHandler) Pause(c echo.Context) error {
	return h.transition(c, h.manager.Pause)
}

// Resume handles POST /api/subscriptions/:email/resume
func (h *SubscriptionHandler) Resume(c echo.Context) error {
	return h.transition(c, h.manager.Resume)
}

func (h *SubscriptionHandler) transition(
	c echo.Context,
	op func(ctx context.Context, senderEmail string) (*models.Subscription, error),
) error {
	email := c.Param("email")
	if email == "" {
		return response.BadRequest(c, "email is required")
	}

	sub, err := op(c.Request().Context(), email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return response.NotFound(c, "subscription not found")
		}
		return response.Error(c, err)
	}

	h.notify(sub)
	return response.Success(c, sub)
}

func (h *SubscriptionHandler) notify(sub *models.Subscription) {
	if h.notifier != nil {
		h.notifier.SubscriptionChanged(sub)
	}
}
