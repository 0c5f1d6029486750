package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/wrenhollis/newsletter-digest-backend/internal/errors"
	"github.com/wrenhollis/newsletter-digest-backend/internal/mailbox"
)

func newsletterMessage(id, sender string, headers map[string]string) mailbox.Message {
	return mailbox.Message{
		ID:          id,
		SenderEmail: sender,
		Subject:     "hello",
		ReceivedAt:  time.Now().UTC(),
		Headers:     headers,
	}
}

func TestDetect_UnsubscribeHeaderFlagsMessage(t *testing.T) {
	mbox := &stubMailbox{messages: []mailbox.Message{
		newsletterMessage("msg-1", "deals@newsletter.example.com", map[string]string{
			"list-unsubscribe": "<https://example.com/unsub>",
		}),
	}}
	detector := NewDetector(mbox, testLogger())

	candidates, err := detector.Detect(context.Background(), 50, 7)

	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "deals@newsletter.example.com", candidates[0].SenderEmail)
	assert.Contains(t, candidates[0].Signals, "unsubscribe")
	// The bulk sender local part matches too; all signals are evaluated
	assert.Contains(t, candidates[0].Signals, "bulk_sender")
}

func TestDetect_PersonalMailExcluded(t *testing.T) {
	mbox := &stubMailbox{messages: []mailbox.Message{
		newsletterMessage("msg-1", "mom@gmail.com", nil),
	}}
	detector := NewDetector(mbox, testLogger())

	candidates, err := detector.Detect(context.Background(), 50, 7)

	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestDetect_SignalsAreIndependent(t *testing.T) {
	tests := []struct {
		name   string
		msg    mailbox.Message
		signal string
	}{
		{
			"unsubscribe in snippet",
			mailbox.Message{ID: "a", SenderEmail: "friend@example.com", Snippet: "Click here to unsubscribe from this list"},
			"unsubscribe",
		},
		{
			"noreply local part",
			mailbox.Message{ID: "b", SenderEmail: "no-reply@shop.example.com"},
			"bulk_sender",
		},
		{
			"bulk precedence header",
			mailbox.Message{ID: "c", SenderEmail: "friend@example.com", Headers: map[string]string{"precedence": "bulk"}},
			"bulk_precedence",
		},
		{
			"list-id header",
			mailbox.Message{ID: "d", SenderEmail: "friend@example.com", Headers: map[string]string{"list-id": "<tech.example.com>"}},
			"bulk_precedence",
		},
		{
			"numbered issue subject",
			mailbox.Message{ID: "e", SenderEmail: "friend@example.com", Subject: "Issue #42: the future of Go"},
			"recurring_subject",
		},
		{
			"dated subject",
			mailbox.Message{ID: "f", SenderEmail: "friend@example.com", Subject: "Morning Brief 2024-01-15"},
			"recurring_subject",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mbox := &stubMailbox{messages: []mailbox.Message{tt.msg}}
			detector := NewDetector(mbox, testLogger())

			candidates, err := detector.Detect(context.Background(), 50, 7)

			require.NoError(t, err)
			require.Len(t, candidates, 1)
			assert.Contains(t, candidates[0].Signals, tt.signal)
		})
	}
}

func TestDetect_EmptyMailboxReturnsEmptyList(t *testing.T) {
	detector := NewDetector(&stubMailbox{}, testLogger())

	candidates, err := detector.Detect(context.Background(), 50, 7)

	require.NoError(t, err)
	assert.NotNil(t, candidates)
	assert.Empty(t, candidates)
}

func TestDetect_MailboxErrorPropagates(t *testing.T) {
	mbox := &stubMailbox{searchErr: apperrors.ErrMailboxUnavailable}
	detector := NewDetector(mbox, testLogger())

	_, err := detector.Detect(context.Background(), 50, 7)

	assert.ErrorIs(t, err, apperrors.ErrMailboxUnavailable)
}

func TestDetect_DefaultsApplied(t *testing.T) {
	mbox := &stubMailbox{}
	detector := NewDetector(mbox, testLogger())

	_, err := detector.Detect(context.Background(), 0, 0)

	require.NoError(t, err)
}
