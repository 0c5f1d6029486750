package api

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/wrenhollis/newsletter-digest-backend/internal/api/handlers"
	"github.com/wrenhollis/newsletter-digest-backend/internal/api/middleware"
	"github.com/wrenhollis/newsletter-digest-backend/internal/repository"
	"github.com/wrenhollis/newsletter-digest-backend/internal/services"
	ws "github.com/wrenhollis/newsletter-digest-backend/internal/websocket"
	"gorm.io/gorm"
)

// RouterConfig holds dependencies for the router
type RouterConfig struct {
	DB        *gorm.DB
	Detector  *services.Detector
	Manager   *services.SubscriptionManager
	Generator *services.DigestGenerator
	Mailer    *services.DigestMailer
	Hub       *ws.Hub
	Logger    *slog.Logger
	// Security configuration
	APIKey         string   // API key for authentication (empty = disabled)
	AllowedOrigins []string // Allowed CORS origins
	RateLimit      float64  // Requests per second
	RateBurst      int      // Burst size for rate limiter
	Production     bool     // Enables production-only restrictions
}

// NewRouter creates and configures the Echo router with all routes
func NewRouter(cfg *RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware order: recover, headers, CORS, rate limit, logging
	e.Use(middleware.Recover())
	e.Use(middleware.SecureHeaders())
	e.Use(middleware.CORS(cfg.AllowedOrigins, cfg.Production))
	if cfg.RateLimit > 0 {
		e.Use(middleware.RateLimiter(cfg.RateLimit, cfg.RateBurst, cfg.Logger))
	}
	if cfg.Logger != nil {
		e.Use(middleware.RequestLogger(cfg.Logger))
	}

	digestRepo := repository.NewDigestRepository(cfg.DB)
	configRepo := repository.NewConfigRepository(cfg.DB)

	healthHandler := handlers.NewHealthHandler(cfg.DB)
	detectHandler := handlers.NewDetectHandler(cfg.Detector, detectionNotifier(cfg.Hub))
	subscriptionHandler := handlers.NewSubscriptionHandler(cfg.Manager, subscriptionNotifier(cfg.Hub))
	digestHandler := handlers.NewDigestHandler(cfg.Generator, digestRepo, cfg.Mailer, cfg.Logger)
	configHandler := handlers.NewConfigHandler(configRepo)

	// Health routes (no auth required)
	e.GET("/health", healthHandler.Health)
	e.GET("/ready", healthHandler.Ready)

	// WebSocket event stream
	if cfg.Hub != nil {
		upgrader := ws.NewSecureUpgrader(cfg.AllowedOrigins, cfg.Logger)
		e.GET("/ws", func(c echo.Context) error {
			conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
			if err != nil {
				return err
			}
			client := ws.NewClient(cfg.Hub, conn, cfg.Logger)
			cfg.Hub.Register(client)
			go client.WritePump()
			go client.ReadPump()
			return nil
		})
	}

	// API routes
	api := e.Group("/api")
	api.Use(middleware.APIKeyAuth(cfg.APIKey, cfg.Logger))

	// Detection routes
	api.GET("/newsletters/detect", detectHandler.Detect)

	// Subscription routes
	subscriptions := api.Group("/subscriptions")
	subscriptions.POST("", subscriptionHandler.Subscribe)
	subscriptions.GET("", subscriptionHandler.List)
	subscriptions.DELETE("/:email", subscriptionHandler.Unsubscribe)
	subscriptions.POST("/:email/pause", subscriptionHandler.Pause)
	subscriptions.POST("/:email/resume", subscriptionHandler.Resume)

	// Digest routes; config before :id so the literal path wins
	digests := api.Group("/digests")
	digests.GET("/config", configHandler.Get)
	digests.PUT("/config", configHandler.Update)
	digests.POST("", digestHandler.Generate)
	digests.GET("", digestHandler.List)
	digests.GET("/:id", digestHandler.Get)
	digests.DELETE("/:id", digestHandler.Delete)
	digests.POST("/:id/send", digestHandler.Send)

	return e
}

// subscriptionNotifier avoids handing a typed-nil interface to the handler
func subscriptionNotifier(hub *ws.Hub) handlers.SubscriptionNotifier {
	if hub == nil {
		return nil
	}
	return hub
}

func detectionNotifier(hub *ws.Hub) handlers.DetectionNotifier {
	if hub == nil {
		return nil
	}
	return hub
}
