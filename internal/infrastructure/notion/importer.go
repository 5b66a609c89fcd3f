// Package notion pushes reviewed digest entries into the hosted Notion
// database and archives pages marked for deletion.
package notion

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jomei/notionapi"

	"genairadar/internal/digest"
	"genairadar/internal/ports"
	"genairadar/internal/relevance"
)

// categoryCovers maps a category to its default page cover.
var categoryCovers = map[string]string{
	"Generación":      "https://raw.githubusercontent.com/Bisnis3d/img_notion/main/cat_Generacin.png",
	"Control":         "https://raw.githubusercontent.com/Bisnis3d/img_notion/main/cat_Control.png",
	"Motion":          "https://raw.githubusercontent.com/Bisnis3d/img_notion/main/cat_Motion.png",
	"LoRA / Adapter":  "https://raw.githubusercontent.com/Bisnis3d/img_notion/main/cat_LoRA___Adapter.png",
	"Postproceso":     "https://raw.githubusercontent.com/Bisnis3d/img_notion/main/cat_Postproceso.png",
	"Workflow / Node": "https://raw.githubusercontent.com/Bisnis3d/img_notion/main/cat_Workflow___Node.png",
	"Tooling":         "https://raw.githubusercontent.com/Bisnis3d/img_notion/main/cat_Tooling.png",
	"Conocimiento":    "https://raw.githubusercontent.com/Bisnis3d/img_notion/main/cat_Conocimiento.png",
}

const (
	maxTitleLen = 200
	maxTextLen  = 2000
)

// Importer creates one Notion page per digest entry, promotes each imported
// reference into the seen ledger, then archives and truncates the digest.
type Importer struct {
	pages      notionapi.PageService
	databaseID notionapi.DatabaseID
	store      ports.DedupStore
	logger     *slog.Logger
	digestPath string
	archiveDir string
	now        func() time.Time
}

// NewImporter wires the importer against a live Notion client.
func NewImporter(token, databaseID string, store ports.DedupStore, logger *slog.Logger, digestPath, archiveDir string) *Importer {
	client := notionapi.NewClient(notionapi.Token(token))
	return &Importer{
		pages:      client.Page,
		databaseID: notionapi.DatabaseID(databaseID),
		store:      store,
		logger:     logger,
		digestPath: digestPath,
		archiveDir: archiveDir,
		now:        time.Now,
	}
}

// ImportSummary reports one import pass.
type ImportSummary struct {
	Created int
	Skipped int
	Failed  int
}

// Run parses the digest, creates pages for entries not yet in the ledgers,
// and archives the digest file. A page-level failure skips the entry without
// marking it, so the next import retries it.
func (i *Importer) Run(ctx context.Context) (ImportSummary, error) {
	var summary ImportSummary

	raw, err := os.ReadFile(i.digestPath)
	if err != nil {
		return summary, fmt.Errorf("read digest: %w", err)
	}

	entries := digest.Parse(string(raw))
	if len(entries) == 0 {
		i.logger.Warn("digest contains no entries, nothing to import", "path", i.digestPath)
		return summary, nil
	}

	now := i.now()
	for _, entry := range entries {
		ref := entry.URL
		if ref == "" {
			ref = entry.Title
		}

		if !i.store.IsNew(ref) {
			i.logger.Info("skipping duplicate", "title", entry.Title)
			summary.Skipped++
			continue
		}

		if err := i.createPage(ctx, entry, now); err != nil {
			i.logger.Error("page creation failed", "title", entry.Title, "error", err)
			summary.Failed++
			continue
		}

		i.store.MarkSeen(now, ref)
		i.store.MarkLogged(now, ref)
		summary.Created++
		i.logger.Info("page created", "title", entry.Title)
	}

	if err := i.store.Flush(); err != nil {
		return summary, fmt.Errorf("persist ledgers: %w", err)
	}
	if err := i.archiveDigest(now); err != nil {
		return summary, err
	}
	return summary, nil
}

func (i *Importer) createPage(ctx context.Context, entry digest.Entry, now time.Time) error {
	title := entry.Title
	if len([]rune(title)) > maxTitleLen {
		i.logger.Warn("title truncated", "title", string([]rune(title)[:60]))
		title = string([]rune(title)[:maxTitleLen])
	}

	source := relevance.GuessSource(entry.URL)
	category := entry.Category
	if category == "" {
		category = relevance.GuessCategory(entry.Title, entry.Summary+" "+entry.Changes)
	}
	ecosystem := entry.Ecosystem
	if ecosystem == "" {
		ecosystem = relevance.DetectEcosystem(entry.Title + " " + entry.Summary + " " + entry.URL)
	}

	date := notionapi.Date(now)
	properties := notionapi.Properties{
		"Name": notionapi.TitleProperty{
			Title: richText(title),
		},
		"Category":     selectProp(category),
		"Source":       selectProp(source),
		"Ecosystem":    selectProp(ecosystem),
		"Summary":      notionapi.RichTextProperty{RichText: richText(clip(entry.Summary))},
		"Use case":     notionapi.RichTextProperty{RichText: richText(clip(entry.UseCase))},
		"Requirements": notionapi.RichTextProperty{RichText: richText(clip(entry.Requirements))},
		"Impact":       notionapi.RichTextProperty{RichText: richText(clip(entry.Changes))},
		"Date":         notionapi.DateProperty{Date: &notionapi.DateObject{Start: &date}},
		"Status":       selectProp("To review"),
		"Priority":     selectProp("Low"),
		"Signal":       notionapi.CheckboxProperty{Checkbox: entry.Signal},
	}
	// The API rejects a null URL, so the property is set only when present.
	if entry.URL != "" {
		properties["URL"] = notionapi.URLProperty{URL: entry.URL}
	}

	request := &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: i.databaseID,
		},
		Properties: properties,
	}

	cover := entry.Image
	if cover == "" {
		cover = categoryCovers[category]
	}
	if cover != "" {
		request.Cover = &notionapi.Image{
			Type:     notionapi.FileTypeExternal,
			External: &notionapi.FileObject{URL: cover},
		}
	}

	_, err := i.pages.Create(ctx, request)
	return err
}

// archiveDigest copies the digest into the archive directory and truncates
// the original so the next monitor run starts clean.
func (i *Importer) archiveDigest(now time.Time) error {
	if err := os.MkdirAll(i.archiveDir, 0o755); err != nil {
		return fmt.Errorf("create archive dir: %w", err)
	}

	raw, err := os.ReadFile(i.digestPath)
	if err != nil {
		return fmt.Errorf("read digest for archive: %w", err)
	}

	archived := filepath.Join(i.archiveDir, fmt.Sprintf("digest_%s.txt", now.Format("20060102_150405")))
	if err := os.WriteFile(archived, raw, 0o644); err != nil {
		return fmt.Errorf("archive digest: %w", err)
	}
	if err := os.WriteFile(i.digestPath, nil, 0o644); err != nil {
		return fmt.Errorf("truncate digest: %w", err)
	}

	i.logger.Info("digest archived", "path", archived)
	return nil
}

func richText(content string) []notionapi.RichText {
	if content == "" {
		return []notionapi.RichText{}
	}
	return []notionapi.RichText{{Text: &notionapi.Text{Content: content}}}
}

func selectProp(name string) notionapi.SelectProperty {
	return notionapi.SelectProperty{Select: notionapi.Option{Name: name}}
}

func clip(s string) string {
	r := []rune(s)
	if len(r) > maxTextLen {
		return string(r[:maxTextLen])
	}
	return s
}
