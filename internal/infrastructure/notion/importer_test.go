package notion

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jomei/notionapi"

	"genairadar/internal/state"
)

type fakePages struct {
	created []*notionapi.PageCreateRequest
	updated []notionapi.PageID
	fail    map[string]error
}

func (f *fakePages) Create(_ context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error) {
	title := req.Properties["Name"].(notionapi.TitleProperty).Title[0].Text.Content
	if err := f.fail[title]; err != nil {
		return nil, err
	}
	f.created = append(f.created, req)
	return &notionapi.Page{}, nil
}

func (f *fakePages) Get(context.Context, notionapi.PageID) (*notionapi.Page, error) {
	return &notionapi.Page{}, nil
}

func (f *fakePages) Update(_ context.Context, id notionapi.PageID, _ *notionapi.PageUpdateRequest) (*notionapi.Page, error) {
	f.updated = append(f.updated, id)
	return &notionapi.Page{}, nil
}

const sampleDigest = `# ComfyUI-FluxTools
URL: https://github.com/alice/ComfyUI-FluxTools
Qué es: Nodos para pipelines FLUX.2.
Para qué sirve: Cargar y encadenar modelos FLUX.
Requisitos: ComfyUI actualizado.
Cambios importantes: Primera versión pública.
Score: 72

# Wan Motion LoRA
URL: https://civitai.com/models/101
Qué es: LoRA de movimiento para Wan 2.2.
Categoría: Motion
Signal: true
`

func newTestImporter(t *testing.T, pages *fakePages, store *state.Store, digestPath, archiveDir string) *Importer {
	t.Helper()
	return &Importer{
		pages:      pages,
		databaseID: "db",
		store:      store,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		digestPath: digestPath,
		archiveDir: archiveDir,
		now:        func() time.Time { return time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC) },
	}
}

func TestImportRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	digestPath := filepath.Join(dir, "digest.txt")
	archiveDir := filepath.Join(dir, "archive")
	if err := os.WriteFile(digestPath, []byte(sampleDigest), 0o644); err != nil {
		t.Fatalf("seed digest: %v", err)
	}

	store, err := state.Open(filepath.Join(dir, "state"), time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	// First entry was imported on an earlier pass.
	store.MarkSeen(time.Now(), "https://github.com/alice/ComfyUI-FluxTools")

	pages := &fakePages{}
	importer := newTestImporter(t, pages, store, digestPath, archiveDir)

	summary, err := importer.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Created != 1 || summary.Skipped != 1 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	req := pages.created[0]
	if got := req.Properties["Name"].(notionapi.TitleProperty).Title[0].Text.Content; got != "Wan Motion LoRA" {
		t.Fatalf("unexpected page title: %q", got)
	}
	if got := req.Properties["Category"].(notionapi.SelectProperty).Select.Name; got != "Motion" {
		t.Fatalf("enriched category should win over the guess, got %q", got)
	}
	if got := req.Properties["Source"].(notionapi.SelectProperty).Select.Name; got != "Civitai" {
		t.Fatalf("source should be guessed from the url, got %q", got)
	}
	if got := req.Properties["Signal"].(notionapi.CheckboxProperty); !got.Checkbox {
		t.Fatal("signal flag should carry over")
	}
	if req.Cover == nil || req.Cover.External.URL != categoryCovers["Motion"] {
		t.Fatal("category cover should be applied when no image is set")
	}

	// Imported URL is promoted into the seen ledger.
	if store.IsNew("https://civitai.com/models/101") {
		t.Fatal("imported url should be recorded in the ledgers")
	}

	// Digest archived and truncated.
	archived := filepath.Join(archiveDir, "digest_20260825_120000.txt")
	if _, err := os.Stat(archived); err != nil {
		t.Fatalf("archived digest missing: %v", err)
	}
	raw, err := os.ReadFile(digestPath)
	if err != nil {
		t.Fatalf("read digest: %v", err)
	}
	if len(raw) != 0 {
		t.Fatalf("digest should be truncated after import, got %d bytes", len(raw))
	}
}

func TestImportTruncatesLongTitleOnRuneBoundary(t *testing.T) {
	t.Parallel()

	longTitle := "a" + strings.Repeat("ñ", 210)
	digest := "# " + longTitle + "\nURL: https://github.com/alice/ComfyUI-LongName\nQué es: LoRA de prueba para Flux.\n"

	dir := t.TempDir()
	digestPath := filepath.Join(dir, "digest.txt")
	if err := os.WriteFile(digestPath, []byte(digest), 0o644); err != nil {
		t.Fatalf("seed digest: %v", err)
	}

	store, err := state.Open(filepath.Join(dir, "state"), time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	pages := &fakePages{}
	importer := newTestImporter(t, pages, store, digestPath, filepath.Join(dir, "archive"))
	var logs bytes.Buffer
	importer.logger = slog.New(slog.NewTextHandler(&logs, nil))

	summary, err := importer.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Created != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	got := pages.created[0].Properties["Name"].(notionapi.TitleProperty).Title[0].Text.Content
	if len([]rune(got)) != maxTitleLen {
		t.Fatalf("title should be cut to %d runes, got %d", maxTitleLen, len([]rune(got)))
	}

	// The warning preview must cut on a rune boundary, not mid-character.
	wantPreview := "a" + strings.Repeat("ñ", 59)
	if !strings.Contains(logs.String(), wantPreview) {
		t.Fatalf("truncation warning garbled the title preview: %s", logs.String())
	}
}

func TestImportFailedPageIsRetriable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	digestPath := filepath.Join(dir, "digest.txt")
	if err := os.WriteFile(digestPath, []byte(sampleDigest), 0o644); err != nil {
		t.Fatalf("seed digest: %v", err)
	}

	store, err := state.Open(filepath.Join(dir, "state"), time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	pages := &fakePages{fail: map[string]error{"Wan Motion LoRA": errors.New("rate limited")}}
	importer := newTestImporter(t, pages, store, digestPath, filepath.Join(dir, "archive"))

	summary, err := importer.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Created != 1 || summary.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	// The failed entry is not marked, so a rerun would pick it up again.
	if !store.IsNew("https://civitai.com/models/101") {
		t.Fatal("failed entry must stay out of the ledgers")
	}
}
