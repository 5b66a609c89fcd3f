package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"genairadar/internal/config"
	"genairadar/internal/domain"
	"genairadar/internal/ports"
	"genairadar/internal/relevance"
)

const defaultCivitaiAPI = "https://civitai.com"

// Civitai discovers newly published LoRAs for the tracked base models.
type Civitai struct {
	client   *Client
	cfg      config.CivitaiConfig
	lookback time.Duration
	baseURL  string
	logger   *slog.Logger
	now      func() time.Time
}

var _ ports.SourceAdapter = (*Civitai)(nil)

// NewCivitai wires the adapter; baseURL is overridable for tests.
func NewCivitai(client *Client, cfg config.CivitaiConfig, lookback time.Duration, logger *slog.Logger) *Civitai {
	return &Civitai{
		client:   client,
		cfg:      cfg,
		lookback: lookback,
		baseURL:  defaultCivitaiAPI,
		logger:   logger,
		now:      time.Now,
	}
}

// Name identifies the adapter inside the pipeline.
func (c *Civitai) Name() domain.Source {
	return domain.SourceCivitai
}

type civitaiResponse struct {
	Items []civitaiModel `json:"items"`
}

type civitaiModel struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Stats       struct {
		DownloadCount int     `json:"downloadCount"`
		Rating        float64 `json:"rating"`
	} `json:"stats"`
	Tags []struct {
		Name string `json:"name"`
	} `json:"tags"`
	ModelVersions []struct {
		CreatedAt string `json:"createdAt"`
		BaseModel string `json:"baseModel"`
	} `json:"modelVersions"`
}

// Fetch pulls the newest LoRAs and keeps those targeting a tracked base
// model with enough traction.
func (c *Civitai) Fetch(ctx context.Context) ([]domain.CandidateItem, error) {
	cutoff := c.now().UTC().Add(-c.lookback)
	discovered := c.now().UTC()

	params := url.Values{}
	params.Set("types", "LORA")
	params.Set("sort", "Newest")
	params.Set("period", "Week")
	params.Set("limit", "50")
	params.Set("nsfw", "false")

	var resp civitaiResponse
	if err := c.client.GetJSON(ctx, c.baseURL+"/api/v1/models", params, false, &resp); err != nil {
		return nil, fmt.Errorf("civitai models: %w", err)
	}

	tracked := map[string]struct{}{}
	for _, base := range c.cfg.BaseModels {
		tracked[base] = struct{}{}
	}

	var (
		items   []domain.CandidateItem
		skipped int
	)

	for _, model := range resp.Items {
		if model.ID == 0 || model.Name == "" || len(model.ModelVersions) == 0 {
			skipped++
			continue
		}

		latest := model.ModelVersions[0]
		created, ok := parseISO(latest.CreatedAt)
		if !ok || created.Before(cutoff) {
			continue
		}
		if _, ok := tracked[latest.BaseModel]; !ok {
			continue
		}
		if model.Stats.DownloadCount < c.cfg.MinDownloads && model.Stats.Rating < c.cfg.MinRating {
			continue
		}
		if relevance.IsTrivialName(model.Name) {
			continue
		}

		description := relevance.StripHTML(model.Description, 250)
		useCase := description
		if useCase == "" {
			useCase = fmt.Sprintf("LoRA para %s. %d descargas, %.1f/5.",
				latest.BaseModel, model.Stats.DownloadCount, model.Stats.Rating)
		}

		tags := make([]string, 0, 6)
		for _, t := range model.Tags {
			if t.Name == "" {
				continue
			}
			tags = append(tags, t.Name)
			if len(tags) == 6 {
				break
			}
		}
		changes := fmt.Sprintf("Nueva LoRA. %d descargas.", model.Stats.DownloadCount)
		if len(tags) > 0 {
			changes = fmt.Sprintf("Tags: %s", strings.Join(tags, ", "))
		}

		items = append(items, domain.CandidateItem{
			Source:       domain.SourceCivitai,
			ExternalID:   strconv.Itoa(model.ID),
			Title:        model.Name,
			URL:          fmt.Sprintf("https://civitai.com/models/%d", model.ID),
			Summary:      fmt.Sprintf("LoRA en Civitai. Base model: %s.", latest.BaseModel),
			UseCase:      useCase,
			Requirements: fmt.Sprintf("Descargar desde Civitai. Compatible con %s.", latest.BaseModel),
			Changes:      changes,
			Ecosystem:    relevance.DetectEcosystem(model.Name + " " + latest.BaseModel + " " + strings.Join(tags, " ")),
			Traction:     model.Stats.DownloadCount,
			DiscoveredAt: discovered,
		})
	}

	if skipped > 0 {
		c.logger.Warn("skipped malformed civitai entries", "count", skipped)
	}
	return items, nil
}
