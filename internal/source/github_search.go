package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"genairadar/internal/config"
	"genairadar/internal/domain"
	"genairadar/internal/ports"
	"genairadar/internal/relevance"
)

const defaultGithubAPI = "https://api.github.com"

// GithubSearch discovers newly created repositories matching the configured
// queries. Each query carries its own minimum-stars gate.
type GithubSearch struct {
	client   *Client
	queries  []config.SearchQuery
	lookback time.Duration
	baseURL  string
	logger   *slog.Logger
	now      func() time.Time
}

var _ ports.SourceAdapter = (*GithubSearch)(nil)

// NewGithubSearch wires the adapter; baseURL is overridable for tests.
func NewGithubSearch(client *Client, queries []config.SearchQuery, lookback time.Duration, logger *slog.Logger) *GithubSearch {
	return &GithubSearch{
		client:   client,
		queries:  queries,
		lookback: lookback,
		baseURL:  defaultGithubAPI,
		logger:   logger,
		now:      time.Now,
	}
}

// Name identifies the adapter inside the pipeline.
func (g *GithubSearch) Name() domain.Source {
	return domain.SourceGithubSearch
}

type searchResponse struct {
	Items []searchRepo `json:"items"`
}

type searchRepo struct {
	FullName    string   `json:"full_name"`
	Name        string   `json:"name"`
	HTMLURL     string   `json:"html_url"`
	Description string   `json:"description"`
	Stars       int      `json:"stargazers_count"`
	Topics      []string `json:"topics"`
}

// Fetch runs every configured query and normalizes the surviving repos.
func (g *GithubSearch) Fetch(ctx context.Context) ([]domain.CandidateItem, error) {
	cutoff := g.now().UTC().Add(-g.lookback)
	discovered := g.now().UTC()

	var (
		items   []domain.CandidateItem
		skipped int
		failed  int
	)

	for _, q := range g.queries {
		params := url.Values{}
		params.Set("q", fmt.Sprintf("%s created:>%s", q.Query, cutoff.Format("2006-01-02")))
		params.Set("sort", "stars")
		params.Set("order", "desc")
		params.Set("per_page", "8")

		var resp searchResponse
		if err := g.client.GetJSON(ctx, g.baseURL+"/search/repositories", params, true, &resp); err != nil {
			g.logger.Warn("github search query failed", "query", q.Query, "error", err)
			failed++
			continue
		}

		for _, repo := range resp.Items {
			if repo.HTMLURL == "" || repo.FullName == "" {
				skipped++
				continue
			}
			if repo.Stars < q.MinStars {
				continue
			}
			if relevance.IsTrivialName(repo.FullName) {
				continue
			}
			if !relevance.IsRelevant(repo.FullName + " " + repo.Description) {
				continue
			}

			summary := repo.Description
			if summary == "" {
				summary = fmt.Sprintf("Repositorio GitHub: %s", repo.FullName)
			}
			changes := "Repositorio nuevo."
			if len(repo.Topics) > 0 {
				changes = fmt.Sprintf("Repositorio nuevo. Topics: %s", strings.Join(repo.Topics, ", "))
			}

			items = append(items, domain.CandidateItem{
				Source:       domain.SourceGithubSearch,
				ExternalID:   repo.FullName,
				Title:        repo.Name,
				URL:          repo.HTMLURL,
				Summary:      summary,
				UseCase:      fmt.Sprintf("Herramienta/integración para ecosistema ComfyUI/GenAI. %d stars.", repo.Stars),
				Requirements: "Ver README del repositorio.",
				Changes:      changes,
				Traction:     repo.Stars,
				DiscoveredAt: discovered,
			})
		}
	}

	if failed == len(g.queries) && len(g.queries) > 0 {
		return nil, fmt.Errorf("all %d github search queries failed", failed)
	}
	if skipped > 0 {
		g.logger.Warn("skipped malformed github search entries", "count", skipped)
	}
	return items, nil
}
