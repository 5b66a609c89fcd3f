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

const defaultRawContent = "https://raw.githubusercontent.com"

// OpenModelDB discovers new upscaling models by walking recent commits of the
// open-model-database repository and reading the model JSON files each commit
// touched.
type OpenModelDB struct {
	client     *Client
	cfg        config.OpenModelDBConfig
	lookback   time.Duration
	baseURL    string
	rawBaseURL string
	logger     *slog.Logger
	now        func() time.Time
}

var _ ports.SourceAdapter = (*OpenModelDB)(nil)

// NewOpenModelDB wires the adapter; base URLs are overridable for tests.
func NewOpenModelDB(client *Client, cfg config.OpenModelDBConfig, lookback time.Duration, logger *slog.Logger) *OpenModelDB {
	return &OpenModelDB{
		client:     client,
		cfg:        cfg,
		lookback:   lookback,
		baseURL:    defaultGithubAPI,
		rawBaseURL: defaultRawContent,
		logger:     logger,
		now:        time.Now,
	}
}

// Name identifies the adapter inside the pipeline.
func (o *OpenModelDB) Name() domain.Source {
	return domain.SourceOpenModelDB
}

type commitDetail struct {
	Files []struct {
		Filename string `json:"filename"`
		Status   string `json:"status"`
	} `json:"files"`
}

type omdbModel struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Tags         []string `json:"tags"`
	Scale        int      `json:"scale"`
	Architecture string   `json:"architecture"`
}

// Fetch lists recent commits, then resolves each touched model file into a
// candidate. Model detail fetches are best-effort: a missing JSON still
// yields a candidate from the file path alone.
func (o *OpenModelDB) Fetch(ctx context.Context) ([]domain.CandidateItem, error) {
	cutoff := o.now().UTC().Add(-o.lookback)
	discovered := o.now().UTC()

	var commits []ghCommit
	err := o.client.GetJSON(ctx, fmt.Sprintf("%s/repos/%s/commits", o.baseURL, o.cfg.Repo),
		url.Values{"per_page": {"20"}}, true, &commits)
	if err != nil {
		return nil, fmt.Errorf("openmodeldb commits: %w", err)
	}

	maxCommits := o.cfg.MaxCommits
	if maxCommits <= 0 {
		maxCommits = 5
	}

	var (
		items     []domain.CandidateItem
		seenModel = map[string]struct{}{}
		inspected int
	)

	for _, commit := range commits {
		when, ok := parseISO(commit.Commit.Committer.Date)
		if !ok || when.Before(cutoff) {
			continue
		}
		if inspected == maxCommits {
			break
		}
		inspected++

		var detail commitDetail
		err := o.client.GetJSON(ctx, fmt.Sprintf("%s/repos/%s/commits/%s", o.baseURL, o.cfg.Repo, commit.SHA),
			nil, true, &detail)
		if err != nil {
			o.logger.Warn("openmodeldb commit detail failed", "sha", commit.SHA, "error", err)
			continue
		}

		for _, file := range detail.Files {
			if !strings.HasPrefix(file.Filename, "data/models/") || !strings.HasSuffix(file.Filename, ".json") {
				continue
			}
			if file.Status != "added" && file.Status != "modified" {
				continue
			}

			modelID := strings.TrimSuffix(strings.TrimPrefix(file.Filename, "data/models/"), ".json")
			if _, dup := seenModel[modelID]; dup {
				continue
			}
			seenModel[modelID] = struct{}{}

			items = append(items, o.buildCandidate(ctx, modelID, file.Filename, discovered))
		}
	}

	return items, nil
}

func (o *OpenModelDB) buildCandidate(ctx context.Context, modelID, filename string, discovered time.Time) domain.CandidateItem {
	var model omdbModel
	detailURL := fmt.Sprintf("%s/%s/main/%s", o.rawBaseURL, o.cfg.Repo, filename)
	if err := o.client.GetJSON(ctx, detailURL, nil, false, &model); err != nil {
		o.logger.Warn("openmodeldb model detail unavailable", "model", modelID, "error", err)
	}

	name := model.Name
	if name == "" {
		name = modelID
	}

	scaleStr := ""
	if model.Scale > 0 {
		scaleStr = fmt.Sprintf("%dx", model.Scale)
	}
	arch := model.Architecture
	tagsStr := strings.Join(model.Tags, ", ")

	title := name
	if extras := strings.TrimSpace(scaleStr + " " + arch); extras != "" {
		title = fmt.Sprintf("%s (%s)", name, extras)
	}

	useCase := truncate(model.Description, 250)
	if useCase == "" {
		useCase = fmt.Sprintf("Modelo de upscaling/restauración. Tags: %s.", tagsStr)
	}
	changes := "Modelo nuevo en OpenModelDB."
	if tagsStr != "" {
		changes = fmt.Sprintf("Añadido recientemente. Tags: %s", tagsStr)
	}
	orNA := func(s string) string {
		if s == "" {
			return "N/A"
		}
		return s
	}

	return domain.CandidateItem{
		Source:       domain.SourceOpenModelDB,
		ExternalID:   modelID,
		Title:        title,
		URL:          fmt.Sprintf("https://openmodeldb.info/models/%s", modelID),
		Summary:      fmt.Sprintf("Modelo de upscaling en OpenModelDB. Arquitectura: %s. Escala: %s.", orNA(arch), orNA(scaleStr)),
		UseCase:      useCase,
		Requirements: "Descargar desde OpenModelDB. Compatible con chaiNNer, ComfyUI upscaler.",
		Changes:      changes,
		Ecosystem:    relevance.EcosystemComfyUI,
		DiscoveredAt: discovered,
	}
}
