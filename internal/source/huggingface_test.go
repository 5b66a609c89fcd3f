package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"genairadar/internal/config"
)

func TestHuggingFaceGate(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/models" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`[
			{"modelId": "black-forest-labs/FLUX.2-schnell",
			 "lastModified": "2026-08-24T00:00:00Z",
			 "downloads": 50000, "likes": 3,
			 "pipeline_tag": "text-to-image",
			 "tags": ["flux", "lora", "diffusion"]},
			{"modelId": "someone/flux-niche-lora",
			 "lastModified": "2026-08-24T00:00:00Z",
			 "downloads": 10, "likes": 120,
			 "pipeline_tag": "text-to-image",
			 "tags": ["flux", "lora"]},
			{"modelId": "nobody/flux-ignored-lora",
			 "lastModified": "2026-08-24T00:00:00Z",
			 "downloads": 10, "likes": 3,
			 "pipeline_tag": "text-to-image",
			 "tags": ["flux", "lora"]},
			{"modelId": "old/flux-stale-lora",
			 "lastModified": "2026-01-01T00:00:00Z",
			 "downloads": 99999, "likes": 999,
			 "tags": ["flux", "lora"]}
		]`))
	}))
	defer server.Close()

	adapter := NewHuggingFace(
		NewClient(server.Client(), 0, ""),
		[]config.HFSearch{{Tag: "flux", MinLikes: 50, MinDownloads: 1000}},
		7*24*time.Hour,
		discard(),
	)
	adapter.baseURL = server.URL
	adapter.now = fixedNow

	items, err := adapter.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	// Either bound passes the gate: high downloads with few likes, and high
	// likes with few downloads, both survive. Below both bounds is dropped,
	// as is anything past the lookback window.
	if len(items) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(items))
	}
	if items[0].ExternalID != "black-forest-labs/FLUX.2-schnell" {
		t.Fatalf("unexpected first candidate: %s", items[0].ExternalID)
	}
	if items[0].Traction != 50000 {
		t.Fatalf("traction should carry downloads, got %d", items[0].Traction)
	}
	if items[1].ExternalID != "someone/flux-niche-lora" {
		t.Fatalf("unexpected second candidate: %s", items[1].ExternalID)
	}
}
