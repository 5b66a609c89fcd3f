package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"genairadar/internal/domain"
	"genairadar/internal/ports"
	"genairadar/internal/relevance"
)

// GithubReleases watches the fixed list of tracked repositories for recent
// releases, falling back to the latest commit when a repo publishes none.
type GithubReleases struct {
	client   *Client
	repos    []string
	lookback time.Duration
	baseURL  string
	logger   *slog.Logger
	now      func() time.Time
}

var _ ports.SourceAdapter = (*GithubReleases)(nil)

// NewGithubReleases wires the adapter; baseURL is overridable for tests.
func NewGithubReleases(client *Client, repos []string, lookback time.Duration, logger *slog.Logger) *GithubReleases {
	return &GithubReleases{
		client:   client,
		repos:    repos,
		lookback: lookback,
		baseURL:  defaultGithubAPI,
		logger:   logger,
		now:      time.Now,
	}
}

// Name identifies the adapter inside the pipeline.
func (g *GithubReleases) Name() domain.Source {
	return domain.SourceGithubReleases
}

type ghRelease struct {
	TagName     string `json:"tag_name"`
	HTMLURL     string `json:"html_url"`
	Body        string `json:"body"`
	PublishedAt string `json:"published_at"`
}

type ghCommit struct {
	SHA     string `json:"sha"`
	HTMLURL string `json:"html_url"`
	Commit  struct {
		Message   string `json:"message"`
		Committer struct {
			Date string `json:"date"`
		} `json:"committer"`
	} `json:"commit"`
}

// Fetch walks the tracked repos and emits one candidate per recent release,
// or one per repo with recent commit activity when releases are absent.
func (g *GithubReleases) Fetch(ctx context.Context) ([]domain.CandidateItem, error) {
	cutoff := g.now().UTC().Add(-g.lookback)
	discovered := g.now().UTC()

	var (
		items  []domain.CandidateItem
		failed int
	)

	for _, repo := range g.repos {
		var releases []ghRelease
		err := g.client.GetJSON(ctx, fmt.Sprintf("%s/repos/%s/releases", g.baseURL, repo),
			url.Values{"per_page": {"3"}}, true, &releases)
		if err != nil {
			g.logger.Warn("github releases fetch failed", "repo", repo, "error", err)
			failed++
			continue
		}

		if len(releases) > 0 {
			for _, rel := range releases {
				published, ok := parseISO(rel.PublishedAt)
				if !ok || published.Before(cutoff) {
					continue
				}
				if rel.HTMLURL == "" || rel.TagName == "" {
					continue
				}

				body := truncate(rel.Body, 300)
				name := shortName(repo)
				useCase := body
				if useCase == "" {
					useCase = fmt.Sprintf("Nueva versión de %s.", name)
				}
				changes := body
				if changes == "" {
					changes = "Ver release notes en GitHub."
				}

				items = append(items, domain.CandidateItem{
					Source:       domain.SourceGithubReleases,
					ExternalID:   fmt.Sprintf("%s@%s", repo, rel.TagName),
					Title:        fmt.Sprintf("%s %s", name, rel.TagName),
					URL:          rel.HTMLURL,
					Summary:      fmt.Sprintf("Release %s de %s.", rel.TagName, repo),
					UseCase:      useCase,
					Requirements: "Actualizar desde el repositorio o ComfyUI Manager.",
					Changes:      changes,
					Ecosystem:    relevance.DetectEcosystem(repo),
					DiscoveredAt: discovered,
				})
			}
			continue
		}

		item, ok := g.commitFallback(ctx, repo, cutoff, discovered)
		if ok {
			items = append(items, item)
		}
	}

	if failed == len(g.repos) && len(g.repos) > 0 {
		return nil, fmt.Errorf("all %d tracked repos failed", failed)
	}
	return items, nil
}

func (g *GithubReleases) commitFallback(ctx context.Context, repo string, cutoff, discovered time.Time) (domain.CandidateItem, bool) {
	var commits []ghCommit
	err := g.client.GetJSON(ctx, fmt.Sprintf("%s/repos/%s/commits", g.baseURL, repo),
		url.Values{"per_page": {"1"}}, true, &commits)
	if err != nil || len(commits) == 0 {
		return domain.CandidateItem{}, false
	}

	commit := commits[0]
	when, ok := parseISO(commit.Commit.Committer.Date)
	if !ok || when.Before(cutoff) || commit.SHA == "" {
		return domain.CandidateItem{}, false
	}

	msg := truncate(commit.Commit.Message, 150)
	name := shortName(repo)
	useCase := msg
	if useCase == "" {
		useCase = fmt.Sprintf("Cambios recientes en %s.", name)
	}
	changes := msg
	if changes == "" {
		changes = "Ver commits recientes."
	}

	return domain.CandidateItem{
		Source:       domain.SourceGithubReleases,
		ExternalID:   fmt.Sprintf("%s@%s", repo, commit.SHA),
		Title:        fmt.Sprintf("%s — commit reciente", name),
		URL:          fmt.Sprintf("https://github.com/%s", repo),
		Summary:      fmt.Sprintf("Actividad reciente en %s.", repo),
		UseCase:      useCase,
		Requirements: "git pull o actualizar desde ComfyUI Manager.",
		Changes:      changes,
		Ecosystem:    relevance.DetectEcosystem(repo),
		DiscoveredAt: discovered,
	}, true
}
