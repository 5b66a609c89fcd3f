// Package digest reads and writes the plaintext digest format:
//
//	# <Title>
//	URL: <absolute URL>
//	Qué es: <one-line description>
//	Para qué sirve: <use case>
//	Requisitos: <requirements>
//	Cambios importantes: <change notes>
//
// Blocks are separated by a blank line. The title line and URL are mandatory;
// the four labeled lines are optional and default to the empty string.
package digest

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"genairadar/internal/domain"
	"genairadar/internal/ports"
)

// Entry is one parsed digest block. Score is -1 when the block carried no
// score line. Category, Ecosystem, Image and Signal are optional enrichment
// fields added during manual review.
type Entry struct {
	Title        string
	URL          string
	Summary      string
	UseCase      string
	Requirements string
	Changes      string
	Score        int
	Category     string
	Ecosystem    string
	Image        string
	Signal       bool
}

// Writer serializes scored items into the digest file.
type Writer struct{}

var _ ports.DigestWriter = (*Writer)(nil)

// NewWriter returns the digest serializer.
func NewWriter() *Writer {
	return &Writer{}
}

// Write sorts items by score descending (ties broken by earlier discovery,
// stable) and writes the digest atomically. An empty input produces a valid
// empty digest file.
func (w *Writer) Write(path string, items []domain.ScoredItem) error {
	ordered := make([]domain.ScoredItem, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Score != ordered[j].Score {
			return ordered[i].Score > ordered[j].Score
		}
		return ordered[i].DiscoveredAt.Before(ordered[j].DiscoveredAt)
	})

	var b strings.Builder
	for i, item := range ordered {
		if i > 0 {
			b.WriteString("\n")
		}
		writeBlock(&b, item)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write digest: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace digest: %w", err)
	}
	return nil
}

func writeBlock(b *strings.Builder, item domain.ScoredItem) {
	fmt.Fprintf(b, "# %s\n", sanitizeLine(item.Title))
	fmt.Fprintf(b, "URL: %s\n", sanitizeLine(item.URL))
	fmt.Fprintf(b, "Qué es: %s\n", sanitizeLine(item.Summary))
	fmt.Fprintf(b, "Para qué sirve: %s\n", sanitizeLine(item.UseCase))
	fmt.Fprintf(b, "Requisitos: %s\n", sanitizeLine(item.Requirements))
	fmt.Fprintf(b, "Cambios importantes: %s\n", sanitizeLine(item.Changes))
	fmt.Fprintf(b, "Score: %d\n", item.Score)
}

// sanitizeLine keeps field values on one line so labels stay parseable.
func sanitizeLine(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}

// Serialize renders a single entry as a digest block (used by tests and
// round-trip checks).
func Serialize(e Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", sanitizeLine(e.Title))
	fmt.Fprintf(&b, "URL: %s\n", sanitizeLine(e.URL))
	fmt.Fprintf(&b, "Qué es: %s\n", sanitizeLine(e.Summary))
	fmt.Fprintf(&b, "Para qué sirve: %s\n", sanitizeLine(e.UseCase))
	fmt.Fprintf(&b, "Requisitos: %s\n", sanitizeLine(e.Requirements))
	fmt.Fprintf(&b, "Cambios importantes: %s\n", sanitizeLine(e.Changes))
	return b.String()
}
