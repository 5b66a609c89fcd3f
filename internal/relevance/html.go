package relevance

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StripHTML reduces an HTML fragment to collapsed plain text, truncated to
// maxLen runes. Used to clean upstream descriptions before they reach the
// digest. On unparsable input the raw text is returned truncated.
func StripHTML(fragment string, maxLen int) string {
	text := fragment
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment)); err == nil {
		text = doc.Text()
	}
	text = strings.Join(strings.Fields(text), " ")
	if maxLen > 0 {
		runes := []rune(text)
		if len(runes) > maxLen {
			text = strings.TrimSpace(string(runes[:maxLen]))
		}
	}
	return text
}
