package source

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"genairadar/internal/config"
	"genairadar/internal/domain"
	"genairadar/internal/ports"
	"genairadar/internal/relevance"
	"genairadar/internal/state"
)

// AwesomeList parses the curated awesome-comfyui README: the "New Workflows"
// section surfaces nodes recently added to the list, "Trending Workflows"
// surfaces nodes gaining stars. The trending delta is computed by diffing
// current star counts against the previous run's snapshot, which this adapter
// persists itself. That snapshot is adapter-local state, separate from the
// dedup ledgers.
type AwesomeList struct {
	client   *Client
	cfg      config.AwesomeListConfig
	snapshot *state.StarSnapshot
	logger   *slog.Logger
	now      func() time.Time
}

var _ ports.SourceAdapter = (*AwesomeList)(nil)

// NewAwesomeList wires the adapter with its private star snapshot.
func NewAwesomeList(client *Client, cfg config.AwesomeListConfig, snapshot *state.StarSnapshot, logger *slog.Logger) *AwesomeList {
	return &AwesomeList{
		client:   client,
		cfg:      cfg,
		snapshot: snapshot,
		logger:   logger,
		now:      time.Now,
	}
}

// Name identifies the adapter inside the pipeline.
func (a *AwesomeList) Name() domain.Source {
	return domain.SourceAwesomeList
}

// entryExpr matches markdown list entries of the form
//
//	* [**Name**](https://github.com/owner/repo) (⭐1234): description
//
// where the star figure and the description are both optional.
var entryExpr = regexp.MustCompile(`^\*\s+\[[*_]*([^\]]+?)[*_]*\]\((https://github\.com/[^)\s]+)\)` +
	`(?:\s+\(⭐\s*\+?([\d,]+)\))?` +
	`(?::\s*(.+))?$`)

var decorationExpr = regexp.MustCompile(`[^\x20-\x7E]+`)

// Fetch downloads the README, splits it into sections, and emits candidates
// from the new and trending sections. The list itself is curated daily, so no
// date window applies; the ledgers handle repeats.
func (a *AwesomeList) Fetch(ctx context.Context) ([]domain.CandidateItem, error) {
	text, err := a.client.GetText(ctx, a.cfg.ReadmeURL)
	if err != nil {
		return nil, fmt.Errorf("awesome readme: %w", err)
	}

	sections := splitSections(text)
	discovered := a.now().UTC()

	items := a.parseSection(sections["New Workflows"], "New Workflows", 0, discovered)
	items = append(items, a.parseSection(sections["Trending Workflows"], "Trending", 50, discovered)...)

	if err := a.snapshot.Flush(); err != nil {
		return nil, fmt.Errorf("awesome star snapshot: %w", err)
	}
	return items, nil
}

func (a *AwesomeList) parseSection(lines []string, sectionTag string, tractionBase int, discovered time.Time) []domain.CandidateItem {
	var (
		items   []domain.CandidateItem
		skipped int
		seen    = map[string]struct{}{}
	)

	for _, line := range lines {
		m := entryExpr.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}

		name := strings.TrimSpace(decorationExpr.ReplaceAllString(m[1], " "))
		repoURL := strings.TrimSpace(m[2])
		description := strings.TrimSpace(m[4])
		if name == "" || repoURL == "" {
			skipped++
			continue
		}

		repo := strings.TrimPrefix(repoURL, "https://github.com/")
		if _, dup := seen[repo]; dup {
			continue
		}
		seen[repo] = struct{}{}

		delta := 0
		if m[3] != "" {
			stars, err := strconv.Atoi(strings.ReplaceAll(m[3], ",", ""))
			if err != nil {
				skipped++
				continue
			}
			delta = a.snapshot.Delta(repo, stars)
		}

		summary := description
		if summary == "" {
			summary = fmt.Sprintf("Custom node para ComfyUI: %s.", name)
		}
		useCase := description
		if useCase == "" {
			useCase = "Extiende las capacidades de ComfyUI. Ver repositorio para detalles."
		}
		changes := fmt.Sprintf("Aparece en '%s' de awesome-comfyui.", sectionTag)
		if delta > 0 {
			changes = fmt.Sprintf("%s Delta stars reciente: +%d.", changes, delta)
		}

		items = append(items, domain.CandidateItem{
			Source:       domain.SourceAwesomeList,
			ExternalID:   repo,
			Title:        name,
			URL:          repoURL,
			Summary:      truncate(summary, 400),
			UseCase:      truncate(useCase, 400),
			Requirements: "Instalar via ComfyUI Manager.",
			Changes:      changes,
			Ecosystem:    relevance.EcosystemComfyUI,
			Traction:     tractionBase + delta,
			DiscoveredAt: discovered,
		})
	}

	if skipped > 0 {
		a.logger.Warn("skipped malformed awesome-list entries", "section", sectionTag, "count", skipped)
	}
	return items
}

// splitSections groups README lines under their "## " headers.
func splitSections(text string) map[string][]string {
	sections := map[string][]string{}
	current := ""
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "## ") {
			current = strings.TrimSpace(strings.TrimPrefix(line, "## "))
			continue
		}
		if current != "" {
			sections[current] = append(sections[current], line)
		}
	}
	return sections
}
