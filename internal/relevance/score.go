package relevance

import (
	"math"
	"regexp"
	"strings"

	"genairadar/internal/config"
	"genairadar/internal/domain"
)

// Band limits for the four score components.
const (
	sourceBand    = 30
	keywordBand   = 30
	ecosystemBand = 20
	tractionBand  = 20
)

// sourceWeights ranks source authority: official releases of tracked repos
// highest, Civitai lowest among the tracked set.
var sourceWeights = map[domain.Source]int{
	domain.SourceGithubReleases: 30,
	domain.SourceRSSVendor:      25,
	domain.SourceGithubSearch:   20,
	domain.SourceHuggingFace:    20,
	domain.SourceAwesomeList:    15,
	domain.SourceOpenModelDB:    12,
	domain.SourceCivitai:        10,
}

// impactExpr lists keywords that historically correlate with high-impact items.
var impactExpr = regexp.MustCompile(`(?i)\b(release|v\d+|fp8|quantized?|quantization|gguf|flux|wan|qwen|hunyuan|ltx|cogvideo|` +
	`mochi|lightning|turbo|wrapper|trainer|sdxl|` +
	`ip[\s._-]?adapter|controlnet|animatediff|motion|video|i2v|t2v|` +
	`upscaler?|upscaling|esrgan|restore|inpaint|refiner|lora|checkpoint|workflow)\b`)

// Scorer computes relevance scores from a static configuration table.
// Score is pure: no I/O, no mutation, same input always yields the same score.
type Scorer struct {
	keywordPoints int
	keywordCap    int
	tractionCap   int
}

// NewScorer builds a scorer from named configuration constants.
func NewScorer(cfg config.ScoringConfig) *Scorer {
	s := &Scorer{
		keywordPoints: cfg.KeywordPoints,
		keywordCap:    cfg.KeywordCap,
		tractionCap:   cfg.TractionCap,
	}
	if s.keywordPoints <= 0 {
		s.keywordPoints = 6
	}
	if s.keywordCap <= 0 || s.keywordCap > keywordBand {
		s.keywordCap = keywordBand
	}
	if s.tractionCap <= 1 {
		s.tractionCap = 5000
	}
	return s
}

// Score sums four independently clamped signals into a 0-100 relevance score.
func (s *Scorer) Score(item domain.CandidateItem) domain.ScoredItem {
	breakdown := domain.ScoreBreakdown{
		Source:    s.sourceWeight(item.Source),
		Keywords:  s.keywordWeight(item.Text()),
		Ecosystem: s.ecosystemWeight(item),
		Traction:  s.tractionWeight(item.Traction),
	}

	total := breakdown.Source + breakdown.Keywords + breakdown.Ecosystem + breakdown.Traction
	if total > 100 {
		total = 100
	}
	if total < 0 {
		total = 0
	}

	return domain.ScoredItem{CandidateItem: item, Score: total, Breakdown: breakdown}
}

func (s *Scorer) sourceWeight(src domain.Source) int {
	w, ok := sourceWeights[src]
	if !ok {
		w = 10
	}
	return clamp(w, sourceBand)
}

// keywordWeight counts distinct keyword hits, case-insensitive.
func (s *Scorer) keywordWeight(text string) int {
	matches := impactExpr.FindAllString(text, -1)
	distinct := map[string]struct{}{}
	for _, m := range matches {
		distinct[strings.ToLower(m)] = struct{}{}
	}
	return clamp(len(distinct)*s.keywordPoints, s.keywordCap)
}

func (s *Scorer) ecosystemWeight(item domain.CandidateItem) int {
	eco := item.Ecosystem
	if eco == "" {
		eco = DetectEcosystem(item.Text())
	}
	switch eco {
	case EcosystemFlux, EcosystemWan, EcosystemQwen:
		return ecosystemBand
	case EcosystemSDXL, EcosystemComfyUI:
		return 10
	default:
		return 5
	}
}

// tractionWeight is a log-scaled saturating transform: it grows monotonically
// with the raw signal and caps at the band no matter how extreme the input.
func (s *Scorer) tractionWeight(traction int) int {
	if traction <= 0 {
		return 0
	}
	scaled := tractionBand * math.Log1p(float64(traction)) / math.Log1p(float64(s.tractionCap))
	return clamp(int(math.Round(scaled)), tractionBand)
}

func clamp(v, max int) int {
	if v > max {
		return max
	}
	if v < 0 {
		return 0
	}
	return v
}
