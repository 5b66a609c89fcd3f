package source

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"genairadar/internal/config"
	"genairadar/internal/domain"
	"genairadar/internal/ports"
	"genairadar/internal/relevance"
)

// RSSVendor polls the fixed vendor blog feeds. gofeed handles both RSS 2.0
// and Atom, so a single code path covers every tracked vendor.
type RSSVendor struct {
	client   *Client
	feeds    []config.RSSFeed
	lookback time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

var _ ports.SourceAdapter = (*RSSVendor)(nil)

// NewRSSVendor wires the adapter.
func NewRSSVendor(client *Client, feeds []config.RSSFeed, lookback time.Duration, logger *slog.Logger) *RSSVendor {
	return &RSSVendor{
		client:   client,
		feeds:    feeds,
		lookback: lookback,
		logger:   logger,
		now:      time.Now,
	}
}

// Name identifies the adapter inside the pipeline.
func (r *RSSVendor) Name() domain.Source {
	return domain.SourceRSSVendor
}

// Fetch pulls every vendor feed and keeps recent, relevant posts.
func (r *RSSVendor) Fetch(ctx context.Context) ([]domain.CandidateItem, error) {
	cutoff := r.now().UTC().Add(-r.lookback)
	discovered := r.now().UTC()
	parser := gofeed.NewParser()

	var (
		items   []domain.CandidateItem
		skipped int
		failed  int
	)

	for _, feedCfg := range r.feeds {
		raw, err := r.client.GetText(ctx, feedCfg.URL)
		if err != nil {
			r.logger.Warn("rss feed fetch failed", "feed", feedCfg.Name, "error", err)
			failed++
			continue
		}

		feed, err := parser.ParseString(raw)
		if err != nil {
			r.logger.Warn("rss feed parse failed", "feed", feedCfg.Name, "error", err)
			failed++
			continue
		}

		for _, entry := range feed.Items {
			link := strings.TrimSpace(entry.Link)
			title := strings.TrimSpace(entry.Title)
			if link == "" || title == "" {
				skipped++
				continue
			}

			published := entry.PublishedParsed
			if published == nil {
				published = entry.UpdatedParsed
			}
			// Feeds without timestamps are kept; the ledger suppresses reruns.
			if published != nil && published.Before(cutoff) {
				continue
			}

			if !relevance.IsRelevant(title + " " + entry.Description) {
				continue
			}

			externalID := strings.TrimSpace(entry.GUID)
			if externalID == "" {
				externalID = link
			}
			description := relevance.StripHTML(entry.Description, 250)
			useCase := description
			if useCase == "" {
				useCase = fmt.Sprintf("Novedad publicada en %s.", feedCfg.Name)
			}

			items = append(items, domain.CandidateItem{
				Source:       domain.SourceRSSVendor,
				ExternalID:   externalID,
				Title:        title,
				URL:          link,
				Summary:      fmt.Sprintf("Artículo de blog: %s.", feedCfg.Name),
				UseCase:      useCase,
				Requirements: "N/A — artículo informativo.",
				Changes:      fmt.Sprintf("Publicado en %s.", feedCfg.Name),
				Ecosystem:    relevance.DetectEcosystem(title + " " + entry.Description),
				DiscoveredAt: discovered,
			})
		}
	}

	if failed == len(r.feeds) && len(r.feeds) > 0 {
		return nil, fmt.Errorf("all %d rss feeds failed", failed)
	}
	if skipped > 0 {
		r.logger.Warn("skipped malformed rss entries", "count", skipped)
	}
	return items, nil
}
