package mailbox

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	gmailapi "google.golang.org/api/gmail/v1"
)

func TestBuildQuery(t *testing.T) {
	after := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		q    Query
		want string
	}{
		{"sender only", Query{SenderEmail: "tech@example.com"}, "from:tech@example.com"},
		{"after only", Query{After: after}, "after:2024/01/15"},
		{"both", Query{SenderEmail: "tech@example.com", After: after}, "from:tech@example.com after:2024/01/15"},
		{"empty", Query{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildQuery(tt.q))
		})
	}
}

func TestParseMetadata(t *testing.T) {
	msg := &gmailapi.Message{
		Id:           "msg-1",
		Snippet:      "This week in tech...",
		InternalDate: time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC).UnixMilli(),
		Payload: &gmailapi.MessagePart{
			Headers: []*gmailapi.MessagePartHeader{
				{Name: "From", Value: "Tech Weekly <Tech@Example.com>"},
				{Name: "Subject", Value: "Issue #42"},
				{Name: "List-Unsubscribe", Value: "<https://example.com/unsub>"},
			},
		},
	}

	parsed, ok := parseMetadata(msg)

	assert.True(t, ok)
	assert.Equal(t, "msg-1", parsed.ID)
	assert.Equal(t, "tech@example.com", parsed.SenderEmail)
	assert.Equal(t, "Tech Weekly", parsed.SenderName)
	assert.Equal(t, "Issue #42", parsed.Subject)
	assert.Equal(t, "<https://example.com/unsub>", parsed.Header("List-Unsubscribe"))
	assert.Equal(t, time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC), parsed.ReceivedAt)
}

func TestParseMetadata_MissingSender(t *testing.T) {
	msg := &gmailapi.Message{
		Id:      "msg-2",
		Payload: &gmailapi.MessagePart{Headers: []*gmailapi.MessagePartHeader{{Name: "Subject", Value: "no from"}}},
	}

	_, ok := parseMetadata(msg)
	assert.False(t, ok)
}
