package mailbox

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/jhillyerd/enmime"
	apperrors "github.com/wrenhollis/newsletter-digest-backend/internal/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const (
	gmailUser      = "me"
	defaultTimeout = 30 * time.Second
)

// metadataHeaders are the headers requested for every message; the detector's
// signal checks depend on the list headers being present.
var metadataHeaders = []string{
	"From", "Subject", "Date", "List-Unsubscribe", "List-Id", "Precedence",
}

// GmailConfig holds the OAuth credentials for the Gmail client
type GmailConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	Timeout      time.Duration
}

// GmailClient implements Mailbox against the Gmail API
type GmailClient struct {
	svc     *gmailapi.Service
	timeout time.Duration
	logger  *slog.Logger
}

// NewGmailClient creates a Gmail-backed Mailbox. The refresh token is
// exchanged lazily; construction does not hit the network.
func NewGmailClient(ctx context.Context, cfg GmailConfig, logger *slog.Logger) (*GmailClient, error) {
	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
	}

	token := &oauth2.Token{
		RefreshToken: cfg.RefreshToken,
		// Expired so the source refreshes on first use
		Expiry: time.Now().Add(-time.Minute),
	}

	httpClient := oauth2.NewClient(ctx, oauthCfg.TokenSource(ctx, token))
	svc, err := gmailapi.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &GmailClient{svc: svc, timeout: timeout, logger: logger}, nil
}

// Search returns up to q.Limit messages matching q, most recent first.
// Individual messages that cannot be fetched or parsed are skipped; a failing
// list call maps to ErrMailboxUnavailable.
func (c *GmailClient) Search(ctx context.Context, q Query) ([]Message, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	listResp, err := c.svc.Users.Messages.List(gmailUser).
		Q(buildQuery(q)).
		MaxResults(int64(q.Limit)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("%w: listing messages: %v", apperrors.ErrMailboxUnavailable, err)
	}

	messages := make([]Message, 0, len(listResp.Messages))
	for _, ref := range listResp.Messages {
		if ref.Id == "" {
			continue
		}
		msg, err := c.svc.Users.Messages.Get(gmailUser, ref.Id).
			Format("metadata").
			MetadataHeaders(metadataHeaders...).
			Context(ctx).
			Do()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: fetching message metadata: %v", apperrors.ErrMailboxUnavailable, err)
			}
			c.logger.Warn("skipping unreadable message", slog.String("message_id", ref.Id), slog.Any("error", err))
			continue
		}

		parsed, ok := parseMetadata(msg)
		if !ok {
			c.logger.Warn("skipping malformed message", slog.String("message_id", ref.Id))
			continue
		}
		messages = append(messages, parsed)
	}

	sort.Slice(messages, func(i, j int) bool {
		return messages[i].ReceivedAt.After(messages[j].ReceivedAt)
	})
	return messages, nil
}

// Body returns the plain-text body of a message, falling back to its HTML
// part when no text part exists.
func (c *GmailClient) Body(ctx context.Context, messageID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	msg, err := c.svc.Users.Messages.Get(gmailUser, messageID).
		Format("raw").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("%w: fetching message body: %v", apperrors.ErrMailboxUnavailable, err)
	}

	raw, err := base64.URLEncoding.DecodeString(msg.Raw)
	if err != nil {
		raw, err = base64.RawURLEncoding.DecodeString(msg.Raw)
		if err != nil {
			return "", fmt.Errorf("failed to decode raw message %s: %w", messageID, err)
		}
	}

	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("failed to parse message %s: %w", messageID, err)
	}

	if env.Text != "" {
		return env.Text, nil
	}
	return env.HTML, nil
}

// buildQuery translates a Query into a Gmail search expression
func buildQuery(q Query) string {
	expr := ""
	if q.SenderEmail != "" {
		expr = "from:" + q.SenderEmail
	}
	if !q.After.IsZero() {
		if expr != "" {
			expr += " "
		}
		expr += "after:" + q.After.Format("2006/01/02")
	}
	return expr
}

// parseMetadata maps a Gmail metadata response onto a Message. The second
// return is false when the message lacks a parseable sender.
func parseMetadata(msg *gmailapi.Message) (Message, bool) {
	headers := make(map[string]string)
	if msg.Payload != nil {
		for _, h := range msg.Payload.Headers {
			headers[normalizeHeaderName(h.Name)] = h.Value
		}
	}

	name, email := ParseFromHeader(headers["from"])
	if email == "" {
		return Message{}, false
	}

	return Message{
		ID:          msg.Id,
		SenderEmail: email,
		SenderName:  name,
		Subject:     headers["subject"],
		Snippet:     msg.Snippet,
		ReceivedAt:  time.UnixMilli(msg.InternalDate).UTC(),
		Headers:     headers,
	}, true
}
