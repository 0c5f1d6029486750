package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/wrenhollis/newsletter-digest-backend/internal/errors"
	"github.com/wrenhollis/newsletter-digest-backend/internal/models"
)

func TestSummarize_SendsBoundedPrompt(t *testing.T) {
	completer := &stubCompleter{response: "a concise summary"}
	summarizer := NewSummarizer(completer)

	body := strings.Repeat("x", maxBodyChars+500)
	got, err := summarizer.Summarize(context.Background(), "Issue #1", "Tech Weekly", body)

	require.NoError(t, err)
	assert.Equal(t, "a concise summary", got)
	require.Len(t, completer.prompts, 1)
	assert.Contains(t, completer.prompts[0], "Issue #1")
	assert.Contains(t, completer.prompts[0], "Tech Weekly")
	// The body is truncated before prompting
	assert.Less(t, len(completer.prompts[0]), maxBodyChars+400)
}

func TestSummarize_TruncatesOnRuneBoundary(t *testing.T) {
	completer := &stubCompleter{response: "ok"}
	summarizer := NewSummarizer(completer)

	// A three-byte rune straddles the truncation point
	body := strings.Repeat("a", maxBodyChars-1) + "日本語"
	_, err := summarizer.Summarize(context.Background(), "subject", "sender", body)

	require.NoError(t, err)
	require.Len(t, completer.prompts, 1)
	assert.True(t, utf8.ValidString(completer.prompts[0]))
	assert.NotContains(t, completer.prompts[0], "日")
}

func TestSummarize_FailureMapsToSummarizationFailed(t *testing.T) {
	completer := &stubCompleter{err: fmt.Errorf("upstream timeout")}
	summarizer := NewSummarizer(completer)

	_, err := summarizer.Summarize(context.Background(), "subject", "sender", "body")

	assert.ErrorIs(t, err, apperrors.ErrSummarizationFailed)
}

func TestComposeOverview_IncludesSummaries(t *testing.T) {
	completer := &stubCompleter{response: "the big picture"}
	summarizer := NewSummarizer(completer)

	summaries := []models.Summary{
		{Sender: "Tech Weekly", Subject: "Issue #1", Summary: "go generics landed"},
		{SenderEmail: "deals@example.com", Subject: "Deals", Summary: "big sale"},
	}

	got, err := summarizer.ComposeOverview(context.Background(), summaries)

	require.NoError(t, err)
	assert.Equal(t, "the big picture", got)
	require.Len(t, completer.prompts, 1)
	assert.Contains(t, completer.prompts[0], "Tech Weekly")
	assert.Contains(t, completer.prompts[0], "go generics landed")
	// Sender email stands in when no display name exists
	assert.Contains(t, completer.prompts[0], "deals@example.com")
}

func TestComposeOverview_CapsItemCount(t *testing.T) {
	completer := &stubCompleter{response: "overview"}
	summarizer := NewSummarizer(completer)

	summaries := make([]models.Summary, maxOverviewItems+10)
	for i := range summaries {
		summaries[i] = models.Summary{Sender: fmt.Sprintf("sender-%02d", i), Summary: "s"}
	}

	_, err := summarizer.ComposeOverview(context.Background(), summaries)

	require.NoError(t, err)
	prompt := completer.prompts[0]
	assert.Contains(t, prompt, fmt.Sprintf("sender-%02d", maxOverviewItems-1))
	assert.NotContains(t, prompt, fmt.Sprintf("sender-%02d", maxOverviewItems))
}
