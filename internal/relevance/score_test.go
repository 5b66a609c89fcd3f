package relevance

import (
	"testing"
	"time"

	"genairadar/internal/config"
	"genairadar/internal/domain"
)

func testScorer() *Scorer {
	return NewScorer(config.ScoringConfig{KeywordPoints: 6, KeywordCap: 30, TractionCap: 5000})
}

func TestScoreBounds(t *testing.T) {
	t.Parallel()

	s := testScorer()
	items := []domain.CandidateItem{
		{},
		{
			Source:    domain.SourceGithubReleases,
			Title:     "flux wan qwen controlnet lora gguf video motion release turbo upscaler i2v t2v checkpoint",
			Changes:   "animatediff workflow refiner inpaint esrgan fp8 wrapper trainer lightning",
			Ecosystem: EcosystemFlux,
			Traction:  1000000,
		},
		{Source: domain.Source("unknown"), Title: "nothing interesting", Traction: -5},
	}

	for _, item := range items {
		scored := s.Score(item)
		if scored.Score < 0 || scored.Score > 100 {
			t.Fatalf("score %d out of [0,100] for %q", scored.Score, item.Title)
		}
		b := scored.Breakdown
		if b.Source < 0 || b.Source > 30 {
			t.Fatalf("source weight %d out of band", b.Source)
		}
		if b.Keywords < 0 || b.Keywords > 30 {
			t.Fatalf("keyword weight %d out of band", b.Keywords)
		}
		if b.Ecosystem < 0 || b.Ecosystem > 20 {
			t.Fatalf("ecosystem weight %d out of band", b.Ecosystem)
		}
		if b.Traction < 0 || b.Traction > 20 {
			t.Fatalf("traction weight %d out of band", b.Traction)
		}
	}
}

func TestScoreDeterministic(t *testing.T) {
	t.Parallel()

	s := testScorer()
	item := domain.CandidateItem{
		Source:       domain.SourceHuggingFace,
		Title:        "flux-controlnet-upscaler",
		Summary:      "ControlNet for Flux pipelines",
		Traction:     420,
		DiscoveredAt: time.Date(2026, time.August, 20, 0, 0, 0, 0, time.UTC),
	}

	first := s.Score(item)
	for i := 0; i < 5; i++ {
		again := s.Score(item)
		if again.Score != first.Score || again.Breakdown != first.Breakdown {
			t.Fatalf("score drifted: %+v vs %+v", again, first)
		}
	}
}

func TestTractionSaturates(t *testing.T) {
	t.Parallel()

	s := testScorer()
	if got := s.tractionWeight(0); got != 0 {
		t.Fatalf("zero traction should contribute 0, got %d", got)
	}
	if got := s.tractionWeight(1000000); got != 20 {
		t.Fatalf("extreme traction should cap at 20, got %d", got)
	}

	prev := 0
	for _, v := range []int{1, 10, 50, 200, 1000, 5000, 50000} {
		w := s.tractionWeight(v)
		if w < prev {
			t.Fatalf("traction weight not monotonic at %d: %d < %d", v, w, prev)
		}
		prev = w
	}
}

func TestSourceWeightOrdering(t *testing.T) {
	t.Parallel()

	s := testScorer()
	release := s.sourceWeight(domain.SourceGithubReleases)
	civitai := s.sourceWeight(domain.SourceCivitai)
	if release != 30 {
		t.Fatalf("github releases should carry the top weight, got %d", release)
	}
	if civitai >= release {
		t.Fatalf("civitai weight %d should rank below releases %d", civitai, release)
	}
}

func TestKeywordWeightDistinctHits(t *testing.T) {
	t.Parallel()

	s := testScorer()
	// Same keyword repeated counts once.
	repeated := s.keywordWeight("flux flux flux flux flux flux flux")
	if repeated != 6 {
		t.Fatalf("repeated keyword should count once, got %d", repeated)
	}

	none := s.keywordWeight("an unrelated cooking blog post")
	if none != 0 {
		t.Fatalf("expected 0 for no hits, got %d", none)
	}

	three := s.keywordWeight("flux controlnet lora support")
	if three != 18 {
		t.Fatalf("expected 18 for three distinct hits, got %d", three)
	}
}

func TestScoreExampleScenario(t *testing.T) {
	t.Parallel()

	s := testScorer()
	item := domain.CandidateItem{
		Source:    domain.SourceGithubReleases,
		Title:     "flux-loader v2.1",
		Changes:   "Adds controlnet and lora loading for Flux.",
		Ecosystem: EcosystemFlux,
		Traction:  500,
	}

	scored := s.Score(item)
	if scored.Breakdown.Source != 30 {
		t.Fatalf("expected top source weight, got %d", scored.Breakdown.Source)
	}
	if scored.Breakdown.Ecosystem != 20 {
		t.Fatalf("expected high ecosystem weight for Flux, got %d", scored.Breakdown.Ecosystem)
	}
	if scored.Breakdown.Traction <= 0 || scored.Breakdown.Traction > 20 {
		t.Fatalf("traction for 500 stars out of range: %d", scored.Breakdown.Traction)
	}
	if scored.Breakdown.Keywords < 12 {
		t.Fatalf("expected at least two keyword hits, got %d", scored.Breakdown.Keywords)
	}
	if scored.Score > 100 {
		t.Fatalf("score above cap: %d", scored.Score)
	}
}
