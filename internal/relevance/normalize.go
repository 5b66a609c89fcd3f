package relevance

import (
	"regexp"
	"strings"
)

var (
	versionExpr   = regexp.MustCompile(`(?i)\bv?\d+[.\d]*\b`)
	platformExpr  = regexp.MustCompile(`(?i)\b(comfyui|huggingface|civitai|github|sdxl|flux|wan|sd ?1\.?5)\b`)
	nonASCIIExpr  = regexp.MustCompile(`[^\x00-\x7F]+`)
	separatorExpr = regexp.MustCompile(`[_\-()\[\]:]`)
	spacesExpr    = regexp.MustCompile(`\s+`)
)

// NormalizeTitle reduces a title to a comparable form: lowercase, no version
// numbers, no platform names, no decorative unicode. Two items announcing the
// same release on different platforms normalize to the same string.
func NormalizeTitle(title string) string {
	t := strings.ToLower(title)
	t = nonASCIIExpr.ReplaceAllString(t, " ")
	t = versionExpr.ReplaceAllString(t, " ")
	t = platformExpr.ReplaceAllString(t, " ")
	t = separatorExpr.ReplaceAllString(t, " ")
	t = spacesExpr.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}

// TitleSet suppresses cross-source duplicates within one run.
type TitleSet struct {
	seen map[string]struct{}
}

// NewTitleSet returns an empty set.
func NewTitleSet() *TitleSet {
	return &TitleSet{seen: map[string]struct{}{}}
}

// IsDuplicate reports whether an equivalent title was already observed,
// recording the title as observed otherwise.
func (s *TitleSet) IsDuplicate(title string) bool {
	norm := NormalizeTitle(title)
	if norm == "" {
		return false
	}
	if _, ok := s.seen[norm]; ok {
		return true
	}
	s.seen[norm] = struct{}{}
	return false
}
