package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"genairadar/internal/domain"
	"genairadar/internal/ports"
	"genairadar/internal/relevance"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Adapters   []ports.SourceAdapter
	Store      ports.DedupStore
	Scorer     *relevance.Scorer
	Writer     ports.DigestWriter
	Notifier   ports.Notifier
	Logger     *slog.Logger
	DigestPath string
	Now        func() time.Time
}

// Pipeline implements the monitoring workflow: fetch, dedupe, score, write.
type Pipeline struct {
	adapters   []ports.SourceAdapter
	store      ports.DedupStore
	scorer     *relevance.Scorer
	writer     ports.DigestWriter
	notifier   ports.Notifier
	logger     *slog.Logger
	digestPath string
	now        func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		adapters:   deps.Adapters,
		store:      deps.Store,
		scorer:     deps.Scorer,
		writer:     deps.Writer,
		notifier:   deps.Notifier,
		logger:     deps.Logger,
		digestPath: deps.DigestPath,
		now:        now,
	}
}

// SourceStats reports one adapter's contribution to a run.
type SourceStats struct {
	Source     domain.Source
	Fetched    int
	Duplicates int
	Written    int
	Failed     bool
}

// RunSummary aggregates a whole monitoring run.
type RunSummary struct {
	Sources []SourceStats
	Written int
}

// Text renders the summary as a short human-readable report.
func (r RunSummary) Text() string {
	var b strings.Builder
	if r.Written == 0 {
		b.WriteString("Radar GenAI: sin novedades.")
	} else {
		fmt.Fprintf(&b, "Radar GenAI: %d novedades en el digest.", r.Written)
	}
	for _, s := range r.Sources {
		if s.Failed {
			fmt.Fprintf(&b, "\n- %s: ERROR", s.Source)
			continue
		}
		fmt.Fprintf(&b, "\n- %s: %d candidatos, %d duplicados, %d nuevos",
			s.Source, s.Fetched, s.Duplicates, s.Written)
	}
	return b.String()
}

// Run executes one monitoring pass. A failing adapter is isolated: it marks
// its source as failed in the summary and contributes zero candidates. Only a
// ledger flush failure aborts the run.
func (p *Pipeline) Run(ctx context.Context) (RunSummary, error) {
	started := p.now()
	summary := RunSummary{}

	urlSeen := map[string]struct{}{}
	titles := relevance.NewTitleSet()
	var fresh []domain.ScoredItem

	for _, adapter := range p.adapters {
		stats := SourceStats{Source: adapter.Name()}

		items, err := adapter.Fetch(ctx)
		if err != nil {
			p.logger.Warn("source failed, continuing without it",
				"source", adapter.Name(), "error", err)
			stats.Failed = true
			summary.Sources = append(summary.Sources, stats)
			continue
		}
		stats.Fetched = len(items)

		for _, item := range items {
			if _, dup := urlSeen[item.URL]; dup {
				stats.Duplicates++
				continue
			}
			urlSeen[item.URL] = struct{}{}

			if titles.IsDuplicate(item.Title) {
				stats.Duplicates++
				continue
			}

			if !p.store.IsNew(item.Key().Ref(), item.URL) {
				stats.Duplicates++
				continue
			}

			fresh = append(fresh, p.scorer.Score(item))
			stats.Written++
		}

		summary.Sources = append(summary.Sources, stats)
	}

	summary.Written = len(fresh)

	if len(fresh) == 0 {
		p.logger.Info("run finished without novelties",
			"sources", len(p.adapters), "duration", p.now().Sub(started))
		p.notify(ctx, summary)
		return summary, nil
	}

	if err := p.writer.Write(p.digestPath, fresh); err != nil {
		return summary, fmt.Errorf("write digest: %w", err)
	}

	for _, item := range fresh {
		p.store.MarkLogged(started, item.Key().Ref(), item.URL)
	}
	if err := p.store.Flush(); err != nil {
		return summary, fmt.Errorf("persist ledgers: %w", err)
	}

	p.logger.Info("run finished",
		"written", summary.Written, "digest", p.digestPath,
		"duration", p.now().Sub(started))
	p.notify(ctx, summary)
	return summary, nil
}

// notify is best-effort: a summary that cannot be delivered is logged only.
func (p *Pipeline) notify(ctx context.Context, summary RunSummary) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.PublishSummary(ctx, summary.Text()); err != nil {
		p.logger.Warn("summary notification failed", "error", err)
	}
}
