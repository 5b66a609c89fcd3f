package digest

import (
	"regexp"
	"strconv"
	"strings"
)

// titlePrefix strips the optional "N)" numbering some digests carry.
var titlePrefix = regexp.MustCompile(`^\d+\)\s*`)

// Parse splits digest text into entries. It tolerates blocks in any order,
// numbered or plain titles, multiline field values, and missing optional
// fields (which become empty strings). Blocks without a title or URL line
// are dropped.
func Parse(text string) []Entry {
	var (
		entries []Entry
		current *Entry
		field   *string
	)

	flush := func() {
		if current != nil && current.Title != "" && current.URL != "" {
			entries = append(entries, *current)
		}
		current = nil
		field = nil
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")

		if strings.HasPrefix(line, "# ") {
			flush()
			title := strings.TrimSpace(strings.TrimPrefix(line, "# "))
			title = titlePrefix.ReplaceAllString(title, "")
			current = &Entry{Title: title, Score: -1}
			continue
		}
		if current == nil {
			continue
		}

		label, value, ok := splitLabel(line)
		if !ok {
			// Continuation of the previous multiline field.
			if field != nil && strings.TrimSpace(line) != "" {
				*field = strings.TrimSpace(*field + "\n" + line)
			}
			continue
		}

		switch label {
		case "URL":
			current.URL = value
			field = &current.URL
		case "Qué es":
			current.Summary = value
			field = &current.Summary
		case "Para qué sirve":
			current.UseCase = value
			field = &current.UseCase
		case "Requisitos":
			current.Requirements = value
			field = &current.Requirements
		case "Cambios importantes":
			current.Changes = value
			field = &current.Changes
		case "Imagen":
			current.Image = value
			field = &current.Image
		case "Categoría":
			current.Category = value
			field = nil
		case "Ecosistema":
			current.Ecosystem = value
			field = nil
		case "Signal":
			current.Signal = strings.EqualFold(value, "true")
			field = nil
		case "Score":
			if n, err := strconv.Atoi(value); err == nil {
				current.Score = n
			}
			field = nil
		default:
			// Unknown label: treat as continuation text.
			if field != nil {
				*field = strings.TrimSpace(*field + "\n" + line)
			}
		}
	}
	flush()

	return entries
}

var knownLabels = []string{
	"URL", "Imagen", "Qué es", "Para qué sirve", "Requisitos",
	"Cambios importantes", "Categoría", "Ecosistema", "Signal", "Score",
}

func splitLabel(line string) (label, value string, ok bool) {
	trimmed := strings.TrimSpace(line)
	for _, l := range knownLabels {
		if strings.HasPrefix(trimmed, l+":") {
			return l, strings.TrimSpace(strings.TrimPrefix(trimmed, l+":")), true
		}
	}
	return "", "", false
}
