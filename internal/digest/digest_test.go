package digest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"genairadar/internal/domain"
)

func TestWriteOrdering(t *testing.T) {
	t.Parallel()

	early := time.Date(2026, time.August, 25, 8, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)

	items := []domain.ScoredItem{
		{CandidateItem: domain.CandidateItem{Title: "low", URL: "https://a", DiscoveredAt: early}, Score: 40},
		{CandidateItem: domain.CandidateItem{Title: "tie-late", URL: "https://b", DiscoveredAt: late}, Score: 80},
		{CandidateItem: domain.CandidateItem{Title: "tie-early", URL: "https://c", DiscoveredAt: early}, Score: 80},
		{CandidateItem: domain.CandidateItem{Title: "top", URL: "https://d", DiscoveredAt: late}, Score: 95},
	}

	path := filepath.Join(t.TempDir(), "digest_raw.txt")
	if err := NewWriter().Write(path, items); err != nil {
		t.Fatalf("write digest: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read digest: %v", err)
	}
	parsed := Parse(string(raw))
	if len(parsed) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(parsed))
	}

	want := []string{"top", "tie-early", "tie-late", "low"}
	for i, title := range want {
		if parsed[i].Title != title {
			t.Fatalf("position %d: expected %q, got %q", i, title, parsed[i].Title)
		}
	}
}

func TestWriteDeterministic(t *testing.T) {
	t.Parallel()

	when := time.Date(2026, time.August, 25, 8, 0, 0, 0, time.UTC)
	items := []domain.ScoredItem{
		{CandidateItem: domain.CandidateItem{Title: "a", URL: "https://a", Summary: "x", DiscoveredAt: when}, Score: 61},
		{CandidateItem: domain.CandidateItem{Title: "b", URL: "https://b", Summary: "y", DiscoveredAt: when}, Score: 58},
	}

	dir := t.TempDir()
	first := filepath.Join(dir, "one.txt")
	second := filepath.Join(dir, "two.txt")
	w := NewWriter()
	if err := w.Write(first, items); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := w.Write(second, items); err != nil {
		t.Fatalf("second write: %v", err)
	}

	a, _ := os.ReadFile(first)
	b, _ := os.ReadFile(second)
	if string(a) != string(b) {
		t.Fatal("identical input produced different digest bytes")
	}
}

func TestWriteEmptyDigest(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "digest_raw.txt")
	if err := NewWriter().Write(path, nil); err != nil {
		t.Fatalf("write empty digest: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("empty digest file missing: %v", err)
	}
	if entries := Parse(string(raw)); len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	cases := []Entry{
		{
			Title:        "ComfyUI-WanVideoWrapper v1.2",
			URL:          "https://github.com/kijai/ComfyUI-WanVideoWrapper",
			Summary:      "Wrapper de Wan Video para ComfyUI.",
			UseCase:      "Generación de vídeo image-to-video.",
			Requirements: "ComfyUI actualizado.",
			Changes:      "Soporte fp8 y nuevos nodos.",
		},
		{
			// Optional fields empty must survive the trip as empty strings.
			Title: "bare entry",
			URL:   "https://example.org/x",
		},
	}

	for _, want := range cases {
		parsed := Parse(Serialize(want))
		if len(parsed) != 1 {
			t.Fatalf("expected 1 entry, got %d", len(parsed))
		}
		got := parsed[0]
		if got.Title != want.Title || got.URL != want.URL {
			t.Fatalf("title/url mismatch: %+v", got)
		}
		if got.Summary != want.Summary || got.UseCase != want.UseCase ||
			got.Requirements != want.Requirements || got.Changes != want.Changes {
			t.Fatalf("field mismatch: got %+v want %+v", got, want)
		}
	}
}

func TestParseToleratesNumberingAndExtras(t *testing.T) {
	t.Parallel()

	text := "# 3) Flux Upscaler\n" +
		"URL: https://huggingface.co/org/flux-upscaler\n" +
		"Qué es: Modelo de upscaling.\n" +
		"Para qué sirve: Mejorar resolución\n" +
		"de imágenes generadas.\n" +
		"Categoría: Postproceso\n" +
		"Ecosistema: Flux\n" +
		"Signal: true\n" +
		"Score: 77\n" +
		"\n" +
		"# no url block is dropped\n" +
		"Qué es: huérfano\n"

	entries := Parse(text)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	e := entries[0]
	if e.Title != "Flux Upscaler" {
		t.Fatalf("numbering not stripped: %q", e.Title)
	}
	if e.UseCase != "Mejorar resolución\nde imágenes generadas." {
		t.Fatalf("multiline field lost: %q", e.UseCase)
	}
	if e.Category != "Postproceso" || e.Ecosystem != "Flux" || !e.Signal {
		t.Fatalf("enrichment fields lost: %+v", e)
	}
	if e.Score != 77 {
		t.Fatalf("score lost: %d", e.Score)
	}
}

func TestParseMissingOptionalFieldsAreEmpty(t *testing.T) {
	t.Parallel()

	entries := Parse("# Solo título\nURL: https://example.org\n")
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Summary != "" || e.UseCase != "" || e.Requirements != "" || e.Changes != "" {
		t.Fatalf("missing fields should be empty strings: %+v", e)
	}
	if e.Score != -1 {
		t.Fatalf("absent score should be -1, got %d", e.Score)
	}
}
