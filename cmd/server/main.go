package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/wrenhollis/newsletter-digest-backend/internal/api"
	"github.com/wrenhollis/newsletter-digest-backend/internal/config"
	"github.com/wrenhollis/newsletter-digest-backend/internal/database"
	"github.com/wrenhollis/newsletter-digest-backend/internal/llm"
	"github.com/wrenhollis/newsletter-digest-backend/internal/logger"
	"github.com/wrenhollis/newsletter-digest-backend/internal/mailbox"
	"github.com/wrenhollis/newsletter-digest-backend/internal/repository"
	"github.com/wrenhollis/newsletter-digest-backend/internal/services"
	ws "github.com/wrenhollis/newsletter-digest-backend/internal/websocket"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.LoadWithValidation()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)
	cfg.LogConfig(log)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		log.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}

	if !cfg.GmailConfigured() {
		log.Error("Gmail credentials are not configured; set GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET and GOOGLE_REFRESH_TOKEN")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gmailClient, err := mailbox.NewGmailClient(ctx, mailbox.GmailConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RefreshToken: cfg.GoogleRefreshToken,
	}, log)
	if err != nil {
		log.Error("failed to create gmail client", slog.Any("error", err))
		os.Exit(1)
	}

	completer := llm.NewClient(llm.Config{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		BaseURL: cfg.OpenAIBaseURL,
		Timeout: cfg.LLMTimeout,
	})

	hub := ws.NewHub(log)
	go hub.Run()

	subscriptionRepo := repository.NewSubscriptionRepository(db)

	detector := services.NewDetector(gmailClient, log)
	manager := services.NewSubscriptionManager(subscriptionRepo, log)
	generator := services.NewDigestGenerator(
		subscriptionRepo,
		repository.NewDigestRepository(db),
		repository.NewConfigRepository(db),
		gmailClient,
		services.NewSummarizer(completer),
		hub,
		log,
		cfg.SummaryConcurrency,
	)

	var mailer *services.DigestMailer
	if cfg.SMTPHost != "" && cfg.DigestDeliveryTo != "" {
		mailer = services.NewDigestMailer(services.MailerConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.DigestFrom,
			To:       cfg.DigestDeliveryTo,
		}, log)
	}

	e := api.NewRouter(&api.RouterConfig{
		DB:             db,
		Detector:       detector,
		Manager:        manager,
		Generator:      generator,
		Mailer:         mailer,
		Hub:            hub,
		Logger:         log,
		APIKey:         cfg.APIKey,
		AllowedOrigins: cfg.OriginList(),
		RateLimit:      cfg.RateLimitRequests,
		RateBurst:      cfg.RateLimitBurst,
		Production:     cfg.AppEnv == "production",
	})

	go func() {
		addr := fmt.Sprintf(":%d", cfg.APIPort)
		log.Info("starting API server", slog.String("addr", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Error("server stopped", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", slog.Any("error", err))
	}
	log.Info("server stopped")
}
