package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GENAI_RADAR_CONFIG", "")

	cfg := Load()

	if cfg.Monitor.Lookback() != 7*24*time.Hour {
		t.Fatalf("unexpected default lookback: %v", cfg.Monitor.Lookback())
	}
	if cfg.Monitor.Timeout() != 15*time.Second {
		t.Fatalf("unexpected default timeout: %v", cfg.Monitor.Timeout())
	}
	if len(cfg.Github.Queries) == 0 || len(cfg.Github.TrackedRepos) == 0 {
		t.Fatal("github defaults should ship queries and tracked repos")
	}
	if len(cfg.HuggingFace.Searches) == 0 || len(cfg.RSS.Feeds) == 0 {
		t.Fatal("huggingface and rss defaults should not be empty")
	}
	if cfg.Scoring.KeywordPoints != 6 || cfg.Scoring.TractionCap != 5000 {
		t.Fatalf("unexpected scoring defaults: %+v", cfg.Scoring)
	}
}

func TestLoadMergesFileAndEnv(t *testing.T) {
	raw := `
logging:
  level: debug
monitor:
  lookbackDays: 3
  stateDir: /tmp/radar-state
github:
  queries:
    - query: "comfyui nodes"
      minStars: 42
scheduler:
  timezone: Europe/Madrid
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("GENAI_RADAR_CONFIG", path)
	t.Setenv("GITHUB_TOKEN", "tok-from-env")

	cfg := Load()

	if cfg.Logging.Level != "debug" {
		t.Fatalf("file logging level not applied: %s", cfg.Logging.Level)
	}
	if cfg.Monitor.LookbackDays != 3 || cfg.Monitor.StateDir != "/tmp/radar-state" {
		t.Fatalf("monitor overrides not applied: %+v", cfg.Monitor)
	}
	if len(cfg.Github.Queries) != 1 || cfg.Github.Queries[0].MinStars != 42 {
		t.Fatalf("github queries should be replaced wholesale: %+v", cfg.Github.Queries)
	}
	// Untouched sections keep their defaults.
	if len(cfg.Github.TrackedRepos) == 0 {
		t.Fatal("tracked repos default should survive a partial override")
	}
	if cfg.Github.Token != "tok-from-env" {
		t.Fatalf("env token not applied: %s", cfg.Github.Token)
	}
	if cfg.Scheduler.Location().String() != "Europe/Madrid" {
		t.Fatalf("timezone not bound: %s", cfg.Scheduler.Location())
	}
}
