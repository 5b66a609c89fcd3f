package notion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jomei/notionapi"
)

// Cleaner archives every page whose Status select is "Delete".
type Cleaner struct {
	pages      notionapi.PageService
	databases  notionapi.DatabaseService
	databaseID notionapi.DatabaseID
	logger     *slog.Logger
}

// NewCleaner wires the cleaner against a live Notion client.
func NewCleaner(token, databaseID string, logger *slog.Logger) *Cleaner {
	client := notionapi.NewClient(notionapi.Token(token))
	return &Cleaner{
		pages:      client.Page,
		databases:  client.Database,
		databaseID: notionapi.DatabaseID(databaseID),
		logger:     logger,
	}
}

// CleanupSummary reports one cleanup pass.
type CleanupSummary struct {
	Matched  int
	Archived int
	Failed   int
}

// Run queries all Delete-flagged pages and archives them. With dryRun the
// matches are logged but left untouched.
func (c *Cleaner) Run(ctx context.Context, dryRun bool) (CleanupSummary, error) {
	var summary CleanupSummary

	pages, err := c.deletePages(ctx)
	if err != nil {
		return summary, err
	}
	summary.Matched = len(pages)

	if len(pages) == 0 {
		c.logger.Info("no pages flagged for deletion")
		return summary, nil
	}

	for _, page := range pages {
		title := pageTitle(page)
		if dryRun {
			c.logger.Info("would archive", "title", title)
			continue
		}

		_, err := c.pages.Update(ctx, notionapi.PageID(page.ID), &notionapi.PageUpdateRequest{
			Properties: notionapi.Properties{},
			Archived:   true,
		})
		if err != nil {
			c.logger.Error("archive failed", "title", title, "error", err)
			summary.Failed++
			continue
		}
		summary.Archived++
		c.logger.Info("archived", "title", title)
	}

	return summary, nil
}

// deletePages pages through the database query until exhausted.
func (c *Cleaner) deletePages(ctx context.Context) ([]notionapi.Page, error) {
	var (
		pages  []notionapi.Page
		cursor notionapi.Cursor
	)

	for {
		resp, err := c.databases.Query(ctx, c.databaseID, &notionapi.DatabaseQueryRequest{
			Filter: notionapi.PropertyFilter{
				Property: "Status",
				Select:   &notionapi.SelectFilterCondition{Equals: "Delete"},
			},
			StartCursor: cursor,
			PageSize:    100,
		})
		if err != nil {
			return nil, fmt.Errorf("query delete pages: %w", err)
		}

		pages = append(pages, resp.Results...)
		if !resp.HasMore {
			return pages, nil
		}
		cursor = resp.NextCursor
	}
}

func pageTitle(page notionapi.Page) string {
	prop, ok := page.Properties["Name"].(*notionapi.TitleProperty)
	if !ok || len(prop.Title) == 0 {
		return "(sin título)"
	}
	return prop.Title[0].PlainText
}
