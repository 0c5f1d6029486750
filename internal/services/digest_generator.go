package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	apperrors "github.com/wrenhollis/newsletter-digest-backend/internal/errors"
	"github.com/wrenhollis/newsletter-digest-backend/internal/mailbox"
	"github.com/wrenhollis/newsletter-digest-backend/internal/models"
	"github.com/wrenhollis/newsletter-digest-backend/internal/repository"
)

const (
	// DefaultMaxNewsletters bounds a digest when the caller does not
	DefaultMaxNewsletters = 20
	// DefaultSinceDays is the lookback window when no since date is given
	DefaultSinceDays = 7
	// defaultSummaryConcurrency bounds parallel completion calls
	defaultSummaryConcurrency = 3

	emptyDigestSummary      = "No newsletter content was available for this period."
	synthesisFallbackFormat = "Overall synthesis was unavailable. %d newsletters were summarized individually."
)

// Notifier receives events after a digest has been committed
type Notifier interface {
	DigestCreated(digest *models.Digest)
}

// GenerateOptions control one digest generation run
type GenerateOptions struct {
	// Since is the start of the covered period; zero means DefaultSinceDays ago
	Since time.Time
	// MaxNewsletters caps summaries across all senders combined; it is
	// clamped to the configured max_per_digest
	MaxNewsletters int
}

// DigestGenerator orchestrates digest creation: it selects active
// subscriptions, gathers their recent messages, summarizes each one, composes
// an overall summary, and persists the result atomically.
//
// Each call produces an independent Digest row; overlapping periods are the
// caller's responsibility. Digests are point-in-time snapshots.
type DigestGenerator struct {
	subs        repository.SubscriptionRepository
	digests     repository.DigestRepository
	configRepo  repository.ConfigRepository
	mbox        mailbox.Mailbox
	summarizer  *Summarizer
	notifier    Notifier
	logger      *slog.Logger
	concurrency int
}

// NewDigestGenerator creates a new DigestGenerator. notifier may be nil.
func NewDigestGenerator(
	subs repository.SubscriptionRepository,
	digests repository.DigestRepository,
	configRepo repository.ConfigRepository,
	mbox mailbox.Mailbox,
	summarizer *Summarizer,
	notifier Notifier,
	logger *slog.Logger,
	concurrency int,
) *DigestGenerator {
	if concurrency <= 0 {
		concurrency = defaultSummaryConcurrency
	}
	return &DigestGenerator{
		subs:        subs,
		digests:     digests,
		configRepo:  configRepo,
		mbox:        mbox,
		summarizer:  summarizer,
		notifier:    notifier,
		logger:      logger,
		concurrency: concurrency,
	}
}

// summaryResult is the per-message outcome of the summarization stage
type summaryResult struct {
	msg     mailbox.Message
	summary string
	err     error
}

// Generate runs one digest generation and returns the persisted digest with
// its child summaries. A digest with zero summaries is a valid result, not an
// error. Individual summarization failures skip the message; persistence
// failures roll back the whole digest.
func (g *DigestGenerator) Generate(ctx context.Context, opts GenerateOptions) (*models.Digest, error) {
	since := opts.Since
	if since.IsZero() {
		since = time.Now().UTC().AddDate(0, 0, -DefaultSinceDays)
	} else if since.After(time.Now().UTC()) {
		// period_start must never exceed period_end
		return nil, fmt.Errorf("%w: since date is in the future", apperrors.ErrInvalidInput)
	}

	maxNewsletters, err := g.resolveLimit(ctx, opts.MaxNewsletters)
	if err != nil {
		return nil, err
	}

	active, err := g.subs.ListByStatus(ctx, models.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("loading active subscriptions: %w", err)
	}

	selected, err := g.collectMessages(ctx, active, since, maxNewsletters)
	if err != nil {
		return nil, err
	}

	summaries := g.summarizeAll(ctx, selected)

	overview := emptyDigestSummary
	if len(summaries) > 0 {
		composed, err := g.summarizer.ComposeOverview(ctx, summaries)
		if err != nil {
			// Never discard gathered per-message work over a failed synthesis
			g.logger.Warn("digest synthesis failed, using fallback overview", slog.Any("error", err))
			overview = fmt.Sprintf(synthesisFallbackFormat, len(summaries))
		} else {
			overview = composed
		}
	}

	// A cancelled run must not leave a partial digest behind
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	digest := &models.Digest{
		PeriodStart: since,
		PeriodEnd:   time.Now().UTC(),
		Summary:     overview,
	}
	if err := g.digests.CreateWithSummaries(ctx, digest, summaries); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPersistenceFailed, err)
	}

	g.logger.Info("digest generated",
		slog.String("digest_id", digest.ID),
		slog.Int("newsletter_count", digest.NewsletterCount),
		slog.Time("period_start", digest.PeriodStart),
	)

	if g.notifier != nil {
		g.notifier.DigestCreated(digest)
	}
	return digest, nil
}

// resolveLimit applies the default and clamps to the configured max_per_digest
func (g *DigestGenerator) resolveLimit(ctx context.Context, requested int) (int, error) {
	if requested <= 0 {
		requested = DefaultMaxNewsletters
	}
	cfg, err := g.configRepo.Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("loading digest config: %w", err)
	}
	if cfg.MaxPerDigest > 0 && requested > cfg.MaxPerDigest {
		requested = cfg.MaxPerDigest
	}
	return requested, nil
}

// collectMessages fetches each active sender's recent messages, flattens them
// and keeps the max most recent across all senders combined. A failing
// mailbox search aborts the run; it is a structural failure, not an
// item-level one.
func (g *DigestGenerator) collectMessages(ctx context.Context, active []models.Subscription, since time.Time, max int) ([]mailbox.Message, error) {
	var all []mailbox.Message
	seen := make(map[string]bool)
	for _, sub := range active {
		messages, err := g.mbox.Search(ctx, mailbox.Query{
			SenderEmail: sub.SenderEmail,
			After:       since,
			Limit:       max,
		})
		if err != nil {
			return nil, fmt.Errorf("fetching messages for %s: %w", sub.SenderEmail, err)
		}
		for _, msg := range messages {
			// One message never appears twice in a digest
			if seen[msg.ID] {
				continue
			}
			seen[msg.ID] = true
			all = append(all, msg)
		}
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].ReceivedAt.After(all[j].ReceivedAt)
	})
	if len(all) > max {
		all = all[:max]
	}
	return all, nil
}

// summarizeAll summarizes the selected messages with bounded concurrency and
// returns the successful results ordered most recent first. Failed items are
// logged and skipped.
func (g *DigestGenerator) summarizeAll(ctx context.Context, selected []mailbox.Message) []models.Summary {
	results := make([]summaryResult, len(selected))
	sem := make(chan struct{}, g.concurrency)
	var wg sync.WaitGroup

	for i, msg := range selected {
		wg.Add(1)
		go func(i int, msg mailbox.Message) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[i] = g.summarizeOne(ctx, msg)
		}(i, msg)
	}
	wg.Wait()

	summaries := make([]models.Summary, 0, len(results))
	for _, res := range results {
		if res.err != nil {
			g.logger.Warn("skipping message in digest",
				slog.String("message_id", res.msg.ID),
				slog.Any("error", res.err),
			)
			continue
		}
		summaries = append(summaries, models.Summary{
			MessageID:    res.msg.ID,
			Sender:       res.msg.SenderName,
			SenderEmail:  res.msg.SenderEmail,
			Subject:      res.msg.Subject,
			Summary:      res.summary,
			ReceivedDate: res.msg.ReceivedAt,
		})
	}

	// Re-sort so completion order can never affect digest ordering
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].ReceivedDate.After(summaries[j].ReceivedDate)
	})
	return summaries
}

// summarizeOne fetches one message body and summarizes it
func (g *DigestGenerator) summarizeOne(ctx context.Context, msg mailbox.Message) summaryResult {
	body, err := g.mbox.Body(ctx, msg.ID)
	if err != nil {
		return summaryResult{msg: msg, err: err}
	}

	sender := msg.SenderName
	if sender == "" {
		sender = msg.SenderEmail
	}
	summary, err := g.summarizer.Summarize(ctx, msg.Subject, sender, body)
	if err != nil && !errors.Is(err, apperrors.ErrSummarizationFailed) {
		err = fmt.Errorf("%w: %v", apperrors.ErrSummarizationFailed, err)
	}
	return summaryResult{msg: msg, summary: summary, err: err}
}
