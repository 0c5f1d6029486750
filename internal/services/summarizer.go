package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	apperrors "github.com/wrenhollis/newsletter-digest-backend/internal/errors"
	"github.com/wrenhollis/newsletter-digest-backend/internal/llm"
	"github.com/wrenhollis/newsletter-digest-backend/internal/models"
)

const (
	// maxBodyChars bounds the prompt size per message to control cost and latency
	maxBodyChars = 4000
	// maxOverviewItems caps how many per-message summaries feed the overall synthesis
	maxOverviewItems = 15

	summaryMaxTokens  = 300
	overviewMaxTokens = 300
)

// Summarizer turns one message's body into a short natural-language summary
// through the completion service. It is stateless and never retries; retry
// policy belongs to the orchestrator.
type Summarizer struct {
	completer llm.Completer
}

// NewSummarizer creates a new Summarizer
func NewSummarizer(completer llm.Completer) *Summarizer {
	return &Summarizer{completer: completer}
}

// Summarize produces a 2-3 sentence summary of a single newsletter. The body
// is truncated to maxBodyChars before prompting. Completion failures map to
// ErrSummarizationFailed.
func (s *Summarizer) Summarize(ctx context.Context, subject, sender, body string) (string, error) {
	body = truncateBody(body, maxBodyChars)

	prompt := fmt.Sprintf(
		"You are a newsletter summarization assistant. Extract the key points "+
			"and keep the summary under 150 words.\n\n"+
			"Summarize this newsletter:\n\n"+
			"From: %s\nSubject: %s\n\n%s\n\n"+
			"Provide a concise summary of the key points in 2-3 sentences.",
		sender, subject, body,
	)

	summary, err := s.completer.Complete(ctx, prompt, summaryMaxTokens)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrSummarizationFailed, err)
	}
	return summary, nil
}

// truncateBody cuts body to at most max bytes, backing off to a rune
// boundary so a multi-byte character is never split
func truncateBody(body string, max int) string {
	if len(body) <= max {
		return body
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return body[:cut]
}

// ComposeOverview synthesizes an overall digest summary from the per-message
// summaries. Failures surface as ErrCompletionFailed; the caller keeps the
// per-message work and substitutes a fallback overview.
func (s *Summarizer) ComposeOverview(ctx context.Context, summaries []models.Summary) (string, error) {
	items := summaries
	if len(items) > maxOverviewItems {
		items = items[:maxOverviewItems]
	}

	var b strings.Builder
	for _, item := range items {
		sender := item.Sender
		if sender == "" {
			sender = item.SenderEmail
		}
		fmt.Fprintf(&b, "- %s (%s): %s\n", sender, item.Subject, item.Summary)
	}

	prompt := fmt.Sprintf(
		"You are a newsletter digest assistant. Here are summaries from %d newsletters:\n\n%s\n"+
			"Provide a 2-3 sentence overview of the main themes and highlights.",
		len(summaries), b.String(),
	)

	overview, err := s.completer.Complete(ctx, prompt, overviewMaxTokens)
	if err != nil {
		return "", err
	}
	return overview, nil
}
