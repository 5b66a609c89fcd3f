package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"genairadar/internal/config"
)

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Vendor Blog</title>
  <item>
    <title>FLUX.2 ControlNet models released</title>
    <link>https://vendor.example/blog/flux2-controlnet</link>
    <guid>flux2-controlnet</guid>
    <description>&lt;p&gt;New &lt;b&gt;ControlNet&lt;/b&gt; checkpoints for FLUX.2.&lt;/p&gt;</description>
    <pubDate>Sun, 24 Aug 2026 09:00:00 GMT</pubDate>
  </item>
  <item>
    <title>Our company offsite recap</title>
    <link>https://vendor.example/blog/offsite</link>
    <pubDate>Sun, 24 Aug 2026 10:00:00 GMT</pubDate>
  </item>
  <item>
    <title>SDXL refiner deep dive</title>
    <link>https://vendor.example/blog/sdxl-refiner</link>
    <pubDate>Mon, 01 Jun 2026 10:00:00 GMT</pubDate>
  </item>
</channel>
</rss>`

func TestRSSVendorFetch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssFixture))
	}))
	defer server.Close()

	adapter := NewRSSVendor(
		NewClient(server.Client(), 0, ""),
		[]config.RSSFeed{{Name: "Vendor Blog", URL: server.URL}},
		7*24*time.Hour,
		discard(),
	)
	adapter.now = fixedNow

	items, err := adapter.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 candidate (irrelevant and stale posts dropped), got %d", len(items))
	}

	got := items[0]
	if got.ExternalID != "flux2-controlnet" {
		t.Fatalf("expected GUID as external id, got %q", got.ExternalID)
	}
	if got.URL != "https://vendor.example/blog/flux2-controlnet" {
		t.Fatalf("unexpected url: %s", got.URL)
	}
	if strings.Contains(got.UseCase, "<") {
		t.Fatalf("html should be stripped from description: %q", got.UseCase)
	}
	if got.Ecosystem != "Flux" {
		t.Fatalf("expected Flux ecosystem, got %q", got.Ecosystem)
	}
}

func TestRSSVendorAllFeedsFailing(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer server.Close()

	adapter := NewRSSVendor(
		NewClient(server.Client(), 0, ""),
		[]config.RSSFeed{{Name: "Vendor Blog", URL: server.URL}},
		7*24*time.Hour,
		discard(),
	)
	adapter.now = fixedNow

	if _, err := adapter.Fetch(context.Background()); err == nil {
		t.Fatal("expected error when every feed fails")
	}
}
