package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/wrenhollis/newsletter-digest-backend/internal/models"
)

func sampleDigest() *models.Digest {
	return &models.Digest{
		ID:              "digest-1",
		PeriodStart:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:       time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
		Summary:         "The week covered AI tooling & security news.",
		NewsletterCount: 2,
		CreatedAt:       time.Date(2024, 1, 8, 9, 30, 0, 0, time.UTC),
		Summaries: []models.Summary{
			{Sender: "Tech Weekly", SenderEmail: "tech@example.com", Subject: "Issue #42", Summary: "New releases everywhere."},
			{SenderEmail: "security@example.com", Subject: "CVE roundup <Q1>", Summary: "Patch now."},
		},
	}
}

func TestRenderDigestText(t *testing.T) {
	text := RenderDigestText(sampleDigest())

	assert.Contains(t, text, "Period: 2024-01-01 to 2024-01-08")
	assert.Contains(t, text, "The week covered AI tooling & security news.")
	assert.Contains(t, text, "--- 2 Newsletters ---")
	assert.Contains(t, text, "1. Tech Weekly")
	assert.Contains(t, text, "Subject: Issue #42")
	// Sender name falls back to the address
	assert.Contains(t, text, "2. security@example.com")
}

func TestRenderDigestHTML(t *testing.T) {
	html := RenderDigestHTML(sampleDigest())

	assert.Contains(t, html, "<h1 style=\"color:#333;\">Newsletter Digest</h1>")
	assert.Contains(t, html, "Period: 2024-01-01 to 2024-01-08")
	assert.Contains(t, html, "<h2>2 Newsletters</h2>")
	assert.Contains(t, html, "Tech Weekly")
	// User-controlled text is escaped
	assert.Contains(t, html, "CVE roundup &lt;Q1&gt;")
	assert.NotContains(t, html, "CVE roundup <Q1>")
	assert.Contains(t, html, "AI tooling &amp; security news")
	assert.Contains(t, html, "Generated on 2024-01-08 09:30 UTC")
}

func TestDigestMailerEnabled(t *testing.T) {
	logger := testLogger()

	assert.False(t, NewDigestMailer(MailerConfig{}, logger).Enabled())
	assert.False(t, NewDigestMailer(MailerConfig{Host: "smtp.example.com"}, logger).Enabled())
	assert.True(t, NewDigestMailer(MailerConfig{
		Host: "smtp.example.com",
		From: "digest@example.com",
		To:   "me@example.com",
	}, logger).Enabled())
}

func TestDigestMailerSendUnconfigured(t *testing.T) {
	m := NewDigestMailer(MailerConfig{}, testLogger())

	err := m.Send(sampleDigest())

	assert.Error(t, err)
}
