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

const defaultHuggingFaceAPI = "https://huggingface.co"

// HuggingFace discovers recently modified models per tracked tag. The per-tag
// likes/downloads minimums are a hard inclusion gate applied before scoring,
// not a scoring input: models below both bounds never leave the adapter.
type HuggingFace struct {
	client   *Client
	searches []config.HFSearch
	lookback time.Duration
	baseURL  string
	logger   *slog.Logger
	now      func() time.Time
}

var _ ports.SourceAdapter = (*HuggingFace)(nil)

// NewHuggingFace wires the adapter; baseURL is overridable for tests.
func NewHuggingFace(client *Client, searches []config.HFSearch, lookback time.Duration, logger *slog.Logger) *HuggingFace {
	return &HuggingFace{
		client:   client,
		searches: searches,
		lookback: lookback,
		baseURL:  defaultHuggingFaceAPI,
		logger:   logger,
		now:      time.Now,
	}
}

// Name identifies the adapter inside the pipeline.
func (h *HuggingFace) Name() domain.Source {
	return domain.SourceHuggingFace
}

type hfModel struct {
	ModelID      string   `json:"modelId"`
	ID           string   `json:"id"`
	LastModified string   `json:"lastModified"`
	Downloads    int      `json:"downloads"`
	Likes        int      `json:"likes"`
	PipelineTag  string   `json:"pipeline_tag"`
	Tags         []string `json:"tags"`
}

// Fetch queries each tag and returns the models that clear every gate.
func (h *HuggingFace) Fetch(ctx context.Context) ([]domain.CandidateItem, error) {
	cutoff := h.now().UTC().Add(-h.lookback)
	discovered := h.now().UTC()

	var (
		items   []domain.CandidateItem
		skipped int
		failed  int
	)

	for _, search := range h.searches {
		params := url.Values{}
		params.Set("filter", search.Tag)
		params.Set("sort", "lastModified")
		params.Set("direction", "-1")
		params.Set("limit", "20")
		params.Set("full", "true")

		var models []hfModel
		if err := h.client.GetJSON(ctx, h.baseURL+"/api/models", params, false, &models); err != nil {
			h.logger.Warn("huggingface tag query failed", "tag", search.Tag, "error", err)
			failed++
			continue
		}

		for _, model := range models {
			id := model.ModelID
			if id == "" {
				id = model.ID
			}
			if id == "" {
				skipped++
				continue
			}

			modified, ok := parseISO(model.LastModified)
			if !ok || modified.Before(cutoff) {
				continue
			}
			if relevance.IsTrivialName(id) {
				continue
			}
			// Hard inclusion gate: either bound passes the model.
			if model.Likes < search.MinLikes && model.Downloads < search.MinDownloads {
				continue
			}

			tags := strings.Join(model.Tags, " ")
			if !relevance.IsRelevant(id + " " + tags) {
				continue
			}

			changes := "Modelo nuevo."
			if len(model.Tags) > 0 {
				shown := model.Tags
				if len(shown) > 8 {
					shown = shown[:8]
				}
				changes = fmt.Sprintf("Tags: %s", strings.Join(shown, ", "))
			}

			items = append(items, domain.CandidateItem{
				Source:       domain.SourceHuggingFace,
				ExternalID:   id,
				Title:        shortName(id),
				URL:          fmt.Sprintf("https://huggingface.co/%s", id),
				Summary:      fmt.Sprintf("Modelo en HuggingFace: %s. Pipeline: %s.", id, model.PipelineTag),
				UseCase:      fmt.Sprintf("Modelo para pipelines de difusión/vídeo. %d descargas, %d likes.", model.Downloads, model.Likes),
				Requirements: "Descargar desde HuggingFace. Ver ficha del modelo.",
				Changes:      changes,
				Ecosystem:    relevance.DetectEcosystem(id + " " + tags),
				Traction:     model.Downloads,
				DiscoveredAt: discovered,
			})
		}
	}

	if failed == len(h.searches) && len(h.searches) > 0 {
		return nil, fmt.Errorf("all %d huggingface tag queries failed", failed)
	}
	if skipped > 0 {
		h.logger.Warn("skipped malformed huggingface entries", "count", skipped)
	}
	return items, nil
}
