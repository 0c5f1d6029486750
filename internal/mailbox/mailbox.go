// Package mailbox defines the message-store collaborator consumed by the
// newsletter services, plus the Gmail implementation of it.
package mailbox

import (
	"context"
	"time"
)

// Message is the metadata of one mailbox message. Header names are lowercased.
type Message struct {
	ID          string            `json:"message_id"`
	SenderEmail string            `json:"sender_email"`
	SenderName  string            `json:"sender_name,omitempty"`
	Subject     string            `json:"subject"`
	Snippet     string            `json:"snippet,omitempty"`
	ReceivedAt  time.Time         `json:"received_date"`
	Headers     map[string]string `json:"-"`
}

// Header returns a header value by case-insensitive name
func (m Message) Header(name string) string {
	if m.Headers == nil {
		return ""
	}
	return m.Headers[normalizeHeaderName(name)]
}

// Query restricts a mailbox search
type Query struct {
	// SenderEmail limits results to one sender when non-empty
	SenderEmail string
	// After limits results to messages received on or after this time
	After time.Time
	// Limit is the maximum number of messages returned; must be >= 1
	Limit int
}

// Mailbox is the external message-store collaborator
type Mailbox interface {
	// Search returns up to q.Limit message metadata entries matching q,
	// most recent first.
	Search(ctx context.Context, q Query) ([]Message, error)
	// Body returns the plain-text body of one message.
	Body(ctx context.Context, messageID string) (string, error)
}

func normalizeHeaderName(name string) string {
	b := []byte(name)
	for i := range b {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}
