package domain

import (
	"fmt"
	"time"
)

// Source identifies one of the tracked upstream feeds.
type Source string

const (
	SourceGithubSearch   Source = "github-search"
	SourceGithubReleases Source = "github-releases"
	SourceHuggingFace    Source = "huggingface"
	SourceRSSVendor      Source = "rss-vendor"
	SourceCivitai        Source = "civitai"
	SourceOpenModelDB    Source = "openmodeldb"
	SourceAwesomeList    Source = "awesome-list"
)

// CandidateItem is one discovered piece of content, normalized across sources.
type CandidateItem struct {
	Source       Source
	ExternalID   string
	Title        string
	URL          string
	Summary      string // "Qué es"
	UseCase      string // "Para qué sirve"
	Requirements string // "Requisitos"
	Changes      string // "Cambios importantes"
	Ecosystem    string
	Traction     int
	DiscoveredAt time.Time
}

// Key returns the global dedup identity of the item.
func (c CandidateItem) Key() ItemKey {
	return ItemKey{Source: c.Source, ExternalID: c.ExternalID}
}

// Text returns the keyword-bearing blob the scorer scans.
func (c CandidateItem) Text() string {
	return c.Title + " " + c.Summary + " " + c.Changes
}

// ItemKey is the (source, external id) pair; unique per real-world item.
type ItemKey struct {
	Source     Source
	ExternalID string
}

// Ref renders the key as the ledger reference string.
func (k ItemKey) Ref() string {
	return fmt.Sprintf("%s|%s", k.Source, k.ExternalID)
}

// ScoreBreakdown keeps the four component contributions for auditability.
type ScoreBreakdown struct {
	Source    int
	Keywords  int
	Ecosystem int
	Traction  int
}

// ScoredItem is a candidate plus its relevance score; immutable once built.
type ScoredItem struct {
	CandidateItem
	Score     int
	Breakdown ScoreBreakdown
}
