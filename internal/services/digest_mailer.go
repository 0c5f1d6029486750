package services

import (
	"bytes"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/jhillyerd/enmime"
	"github.com/wrenhollis/newsletter-digest-backend/internal/models"
)

// MailerConfig holds SMTP submission settings for digest delivery
type MailerConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

// DigestMailer renders a digest as a multipart email and submits it over
// SMTP. Delivery is optional; an unconfigured mailer reports Enabled false.
type DigestMailer struct {
	cfg    MailerConfig
	logger *slog.Logger
}

// NewDigestMailer creates a new DigestMailer
func NewDigestMailer(cfg MailerConfig, logger *slog.Logger) *DigestMailer {
	return &DigestMailer{cfg: cfg, logger: logger}
}

// Enabled reports whether delivery is configured
func (m *DigestMailer) Enabled() bool {
	return m.cfg.Host != "" && m.cfg.From != "" && m.cfg.To != ""
}

// Send renders and delivers one digest to the configured recipient
func (m *DigestMailer) Send(digest *models.Digest) error {
	if !m.Enabled() {
		return fmt.Errorf("digest mailer is not configured")
	}

	subject := fmt.Sprintf("Newsletter Digest: %s to %s",
		digest.PeriodStart.Format("Jan 2"), digest.PeriodEnd.Format("Jan 2, 2006"))

	part, err := enmime.Builder().
		From("", m.cfg.From).
		To("", m.cfg.To).
		Subject(subject).
		Text([]byte(RenderDigestText(digest))).
		HTML([]byte(RenderDigestHTML(digest))).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build digest email: %w", err)
	}

	var buf bytes.Buffer
	if err := part.Encode(&buf); err != nil {
		return fmt.Errorf("failed to encode digest email: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth sasl.Client
	if m.cfg.Username != "" {
		auth = sasl.NewPlainClient("", m.cfg.Username, m.cfg.Password)
	}
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{m.cfg.To}, &buf); err != nil {
		return fmt.Errorf("failed to send digest email: %w", err)
	}

	m.logger.Info("digest delivered",
		slog.String("digest_id", digest.ID),
		slog.String("to", m.cfg.To),
	)
	return nil
}

// RenderDigestText formats a digest as readable plain text
func RenderDigestText(digest *models.Digest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Newsletter Digest\n")
	fmt.Fprintf(&b, "Period: %s to %s\n\n",
		digest.PeriodStart.Format("2006-01-02"), digest.PeriodEnd.Format("2006-01-02"))
	fmt.Fprintf(&b, "Overview:\n%s\n\n", digest.Summary)
	fmt.Fprintf(&b, "--- %d Newsletters ---\n\n", digest.NewsletterCount)

	for i, s := range digest.Summaries {
		sender := s.Sender
		if sender == "" {
			sender = s.SenderEmail
		}
		fmt.Fprintf(&b, "%d. %s\n   Subject: %s\n   %s\n\n", i+1, sender, s.Subject, s.Summary)
	}
	return b.String()
}

// RenderDigestHTML formats a digest as a simple HTML email
func RenderDigestHTML(digest *models.Digest) string {
	var items strings.Builder
	for _, s := range digest.Summaries {
		sender := s.Sender
		if sender == "" {
			sender = s.SenderEmail
		}
		fmt.Fprintf(&items,
			`<div style="margin-bottom:20px;padding:15px;border-left:3px solid #4CAF50;">`+
				`<h3 style="margin:0 0 5px 0;">%s</h3>`+
				`<p style="margin:0 0 5px 0;color:#666;font-size:14px;"><strong>%s</strong></p>`+
				`<p style="margin:0;color:#333;">%s</p></div>`,
			html.EscapeString(sender), html.EscapeString(s.Subject), html.EscapeString(s.Summary))
	}

	return fmt.Sprintf(
		`<!DOCTYPE html><html><head><meta charset="utf-8"><title>Newsletter Digest</title></head>`+
			`<body style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto;padding:20px;">`+
			`<h1 style="color:#333;">Newsletter Digest</h1>`+
			`<p style="color:#666;">Period: %s to %s</p>`+
			`<div style="background-color:#f5f5f5;padding:15px;margin:20px 0;border-radius:5px;">`+
			`<h2 style="margin-top:0;">Overview</h2><p>%s</p></div>`+
			`<h2>%d Newsletters</h2>%s`+
			`<div style="margin-top:40px;padding-top:20px;border-top:1px solid #ddd;color:#999;font-size:12px;">`+
			`Generated on %s</div></body></html>`,
		digest.PeriodStart.Format("2006-01-02"), digest.PeriodEnd.Format("2006-01-02"),
		html.EscapeString(digest.Summary), digest.NewsletterCount, items.String(),
		digest.CreatedAt.Format("2006-01-02 15:04 MST"))
}
