package services

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/wrenhollis/newsletter-digest-backend/internal/mailbox"
)

const (
	// DefaultDetectLimit is the default number of messages scanned per detection run
	DefaultDetectLimit = 50
	// DefaultDetectDaysBack is the default scan window in days
	DefaultDetectDaysBack = 7
)

// Candidate is a mailbox message flagged as a potential newsletter
type Candidate struct {
	MessageID   string   `json:"message_id"`
	SenderEmail string   `json:"sender_email"`
	SenderName  string   `json:"sender_name,omitempty"`
	Subject     string   `json:"subject"`
	Snippet     string   `json:"snippet,omitempty"`
	Signals     []string `json:"score_signals"`
}

// signal is one independent newsletter heuristic. Signals are OR-combined:
// any single match flags the message.
type signal struct {
	name  string
	match func(mailbox.Message) bool
}

var (
	// Sender local parts typical for bulk mail
	bulkSenderPattern = regexp.MustCompile(`(?i)\b(newsletter|digest|noreply|no[-._]?reply|donotreply|updates|news|notifications|marketing|mailer|bulletin)\b`)

	// Numbered issues and dates in subject lines of recurring series
	recurringSubjectPattern = regexp.MustCompile(`(?i)(\b(issue|edition|vol(ume)?|no\.?)\s*#?\d+|#\d+\b|\b\d{4}-\d{2}-\d{2}\b|\b\d{1,2}/\d{1,2}(/\d{2,4})?\b)`)
)

var newsletterSignals = []signal{
	{
		name: "unsubscribe",
		match: func(m mailbox.Message) bool {
			if m.Header("List-Unsubscribe") != "" {
				return true
			}
			return strings.Contains(strings.ToLower(m.Snippet), "unsubscribe")
		},
	},
	{
		name: "bulk_sender",
		match: func(m mailbox.Message) bool {
			local := strings.NewReplacer(".", " ", "-", " ", "_", " ", "+", " ").
				Replace(mailbox.LocalPart(m.SenderEmail))
			return bulkSenderPattern.MatchString(local)
		},
	},
	{
		name: "bulk_precedence",
		match: func(m mailbox.Message) bool {
			precedence := strings.ToLower(m.Header("Precedence"))
			if strings.Contains(precedence, "bulk") || strings.Contains(precedence, "list") {
				return true
			}
			return m.Header("List-Id") != ""
		},
	},
	{
		name: "recurring_subject",
		match: func(m mailbox.Message) bool {
			return recurringSubjectPattern.MatchString(m.Subject)
		},
	},
}

// Detector scans a mailbox window for newsletter candidates. It is read-only:
// it never mutates subscription state.
type Detector struct {
	mbox   mailbox.Mailbox
	logger *slog.Logger
}

// NewDetector creates a new Detector
func NewDetector(mbox mailbox.Mailbox, logger *slog.Logger) *Detector {
	return &Detector{mbox: mbox, logger: logger}
}

// Detect scans up to limit messages from the last daysBack days and returns
// those matching at least one newsletter signal. Zero or negative arguments
// fall back to the defaults. An empty result is not an error.
func (d *Detector) Detect(ctx context.Context, limit, daysBack int) ([]Candidate, error) {
	if limit <= 0 {
		limit = DefaultDetectLimit
	}
	if daysBack <= 0 {
		daysBack = DefaultDetectDaysBack
	}

	messages, err := d.mbox.Search(ctx, mailbox.Query{
		After: time.Now().UTC().AddDate(0, 0, -daysBack),
		Limit: limit,
	})
	if err != nil {
		return nil, fmt.Errorf("detecting newsletters: %w", err)
	}

	candidates := make([]Candidate, 0)
	for _, msg := range messages {
		if msg.SenderEmail == "" {
			d.logger.Warn("skipping message without sender", slog.String("message_id", msg.ID))
			continue
		}

		matched := evaluateSignals(msg)
		if len(matched) == 0 {
			continue
		}

		candidates = append(candidates, Candidate{
			MessageID:   msg.ID,
			SenderEmail: msg.SenderEmail,
			SenderName:  msg.SenderName,
			Subject:     msg.Subject,
			Snippet:     msg.Snippet,
			Signals:     matched,
		})
	}

	d.logger.Info("newsletter detection completed",
		slog.Int("scanned", len(messages)),
		slog.Int("candidates", len(candidates)),
	)
	return candidates, nil
}

// evaluateSignals runs every signal against a message and returns the names
// of those that matched. All signals are evaluated even after a match so the
// caller sees the full picture.
func evaluateSignals(msg mailbox.Message) []string {
	var matched []string
	for _, sig := range newsletterSignals {
		if sig.match(msg) {
			matched = append(matched, sig.name)
		}
	}
	return matched
}
