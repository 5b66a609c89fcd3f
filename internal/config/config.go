package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone  = "UTC"
	configPathEnv    = "GENAI_RADAR_CONFIG"
	githubTokenEnv   = "GITHUB_TOKEN"
	notionTokenEnv   = "NOTION_TOKEN"
	notionDBIDEnv    = "NOTION_DB_ID"
	telegramTokenEnv = "TELEGRAM_BOT_TOKEN"
	telegramChatEnv  = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Monitor       MonitorConfig      `yaml:"monitor"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Github        GithubConfig       `yaml:"github"`
	HuggingFace   HuggingFaceConfig  `yaml:"huggingface"`
	RSS           RSSConfig          `yaml:"rss"`
	Civitai       CivitaiConfig      `yaml:"civitai"`
	OpenModelDB   OpenModelDBConfig  `yaml:"openmodeldb"`
	AwesomeList   AwesomeListConfig  `yaml:"awesomeList"`
	Scoring       ScoringConfig      `yaml:"scoring"`
	Notion        NotionConfig       `yaml:"notion"`
	Notifications NotificationConfig `yaml:"notifications"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// MonitorConfig groups pipeline-wide knobs and file locations.
type MonitorConfig struct {
	LookbackDays   int    `yaml:"lookbackDays"`
	RequestTimeout int    `yaml:"requestTimeoutSeconds"`
	StateDir       string `yaml:"stateDir"`
	DigestRawPath  string `yaml:"digestRawPath"`
	DigestPath     string `yaml:"digestPath"`
	ArchiveDir     string `yaml:"archiveDir"`
	DashboardPath  string `yaml:"dashboardPath"`
}

// Timeout returns the per-request HTTP timeout.
func (m MonitorConfig) Timeout() time.Duration {
	if m.RequestTimeout <= 0 {
		return 15 * time.Second
	}
	return time.Duration(m.RequestTimeout) * time.Second
}

// Lookback returns the search window as a duration.
func (m MonitorConfig) Lookback() time.Duration {
	days := m.LookbackDays
	if days <= 0 {
		days = 7
	}
	return time.Duration(days) * 24 * time.Hour
}

// SchedulerConfig defines when the watch mode should run.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// GithubConfig covers both GitHub-backed adapters.
type GithubConfig struct {
	Token        string        `yaml:"token"`
	Queries      []SearchQuery `yaml:"queries"`
	TrackedRepos []string      `yaml:"trackedRepos"`
}

// SearchQuery is one repository search with its minimum-stars gate.
type SearchQuery struct {
	Query    string `yaml:"query"`
	MinStars int    `yaml:"minStars"`
}

// HuggingFaceConfig lists tag searches with their hard inclusion gates.
type HuggingFaceConfig struct {
	Searches []HFSearch `yaml:"searches"`
}

// HFSearch passes a model when it clears either bound.
type HFSearch struct {
	Tag          string `yaml:"tag"`
	MinLikes     int    `yaml:"minLikes"`
	MinDownloads int    `yaml:"minDownloads"`
}

// RSSConfig lists the tracked vendor feeds.
type RSSConfig struct {
	Feeds []RSSFeed `yaml:"feeds"`
}

// RSSFeed is a named feed URL.
type RSSFeed struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// CivitaiConfig gates which LoRAs are worth surfacing.
type CivitaiConfig struct {
	BaseModels   []string `yaml:"baseModels"`
	MinDownloads int      `yaml:"minDownloads"`
	MinRating    float64  `yaml:"minRating"`
}

// OpenModelDBConfig points at the model-database repository.
type OpenModelDBConfig struct {
	Repo       string `yaml:"repo"`
	MaxCommits int    `yaml:"maxCommits"`
}

// AwesomeListConfig points at the curated list README.
type AwesomeListConfig struct {
	ReadmeURL string `yaml:"readmeUrl"`
}

// ScoringConfig exposes the scorer's tunable constants.
type ScoringConfig struct {
	KeywordPoints int `yaml:"keywordPoints"`
	KeywordCap    int `yaml:"keywordCap"`
	TractionCap   int `yaml:"tractionCap"`
}

// NotionConfig wires the hosted database used by import/cleanup.
type NotionConfig struct {
	Token      string `yaml:"token"`
	DatabaseID string `yaml:"databaseId"`
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires the optional run-summary bot.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(githubTokenEnv); v != "" {
		c.Github.Token = v
	}
	if v := os.Getenv(notionTokenEnv); v != "" {
		c.Notion.Token = v
	}
	if v := os.Getenv(notionDBIDEnv); v != "" {
		c.Notion.DatabaseID = v
	}
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Monitor.LookbackDays > 0 {
		base.Monitor.LookbackDays = override.Monitor.LookbackDays
	}
	if override.Monitor.RequestTimeout > 0 {
		base.Monitor.RequestTimeout = override.Monitor.RequestTimeout
	}
	if override.Monitor.StateDir != "" {
		base.Monitor.StateDir = override.Monitor.StateDir
	}
	if override.Monitor.DigestRawPath != "" {
		base.Monitor.DigestRawPath = override.Monitor.DigestRawPath
	}
	if override.Monitor.DigestPath != "" {
		base.Monitor.DigestPath = override.Monitor.DigestPath
	}
	if override.Monitor.ArchiveDir != "" {
		base.Monitor.ArchiveDir = override.Monitor.ArchiveDir
	}
	if override.Monitor.DashboardPath != "" {
		base.Monitor.DashboardPath = override.Monitor.DashboardPath
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Github.Token != "" {
		base.Github.Token = override.Github.Token
	}
	if len(override.Github.Queries) > 0 {
		base.Github.Queries = override.Github.Queries
	}
	if len(override.Github.TrackedRepos) > 0 {
		base.Github.TrackedRepos = override.Github.TrackedRepos
	}

	if len(override.HuggingFace.Searches) > 0 {
		base.HuggingFace.Searches = override.HuggingFace.Searches
	}
	if len(override.RSS.Feeds) > 0 {
		base.RSS.Feeds = override.RSS.Feeds
	}

	if len(override.Civitai.BaseModels) > 0 {
		base.Civitai.BaseModels = override.Civitai.BaseModels
	}
	if override.Civitai.MinDownloads > 0 {
		base.Civitai.MinDownloads = override.Civitai.MinDownloads
	}
	if override.Civitai.MinRating > 0 {
		base.Civitai.MinRating = override.Civitai.MinRating
	}

	if override.OpenModelDB.Repo != "" {
		base.OpenModelDB.Repo = override.OpenModelDB.Repo
	}
	if override.OpenModelDB.MaxCommits > 0 {
		base.OpenModelDB.MaxCommits = override.OpenModelDB.MaxCommits
	}

	if override.AwesomeList.ReadmeURL != "" {
		base.AwesomeList.ReadmeURL = override.AwesomeList.ReadmeURL
	}

	if override.Scoring.KeywordPoints > 0 {
		base.Scoring.KeywordPoints = override.Scoring.KeywordPoints
	}
	if override.Scoring.KeywordCap > 0 {
		base.Scoring.KeywordCap = override.Scoring.KeywordCap
	}
	if override.Scoring.TractionCap > 0 {
		base.Scoring.TractionCap = override.Scoring.TractionCap
	}

	if override.Notion.Token != "" {
		base.Notion.Token = override.Notion.Token
	}
	if override.Notion.DatabaseID != "" {
		base.Notion.DatabaseID = override.Notion.DatabaseID
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Monitor: MonitorConfig{
			LookbackDays:   7,
			RequestTimeout: 15,
			StateDir:       "state",
			DigestRawPath:  "digest_raw.txt",
			DigestPath:     "digest.txt",
			ArchiveDir:     "archive",
			DashboardPath:  "dashboard.html",
		},
		Scheduler: SchedulerConfig{CronExpression: "0 7 * * *", Timezone: defaultTimezone, location: tz},
		Github: GithubConfig{
			Queries: []SearchQuery{
				{Query: "comfyui custom node", MinStars: 15},
				{Query: "comfyui workflow", MinStars: 15},
				{Query: "controlnet comfyui", MinStars: 10},
				{Query: "flux comfyui loader", MinStars: 10},
				{Query: "wan video comfyui", MinStars: 10},
				{Query: "comfyui video generation", MinStars: 10},
				{Query: "stable diffusion pipeline python", MinStars: 10},
				{Query: "animatediff comfyui", MinStars: 10},
				{Query: "comfyui upscaler node", MinStars: 5},
				{Query: "image generation comfyui tool", MinStars: 10},
			},
			TrackedRepos: []string{
				"comfyanonymous/ComfyUI",
				"ltdrdata/ComfyUI-Manager",
				"kijai/ComfyUI-WanVideoWrapper",
				"kijai/ComfyUI-HunyuanVideoWrapper",
				"kijai/ComfyUI-CogVideoXWrapper",
				"kijai/ComfyUI-LTXVideo",
				"kijai/ComfyUI-MochiWrapper",
				"Kosinkadink/ComfyUI-AnimateDiff-Evolved",
				"cubiq/ComfyUI_IPAdapter_plus",
				"Fannovel16/comfyui_controlnet_aux",
				"city96/ComfyUI-GGUF",
				"chrisgoringe/cg-use-everywhere",
				"rgthree/rgthree-comfy",
				"pythongosssss/ComfyUI-Custom-Scripts",
				"kohya-ss/sd-scripts",
				"ostris/ai-toolkit",
				"lllyasviel/stable-diffusion-webui-forge",
				"mcmonkeyprojects/SwarmUI",
				"AUTOMATIC1111/stable-diffusion-webui",
				"black-forest-labs/flux",
				"huggingface/diffusers",
				"Wan-AI/Wan2.1",
				"QwenLM/Qwen2.5",
			},
		},
		HuggingFace: HuggingFaceConfig{
			Searches: []HFSearch{
				{Tag: "controlnet", MinLikes: 3, MinDownloads: 100},
				{Tag: "wan-2.1", MinLikes: 3, MinDownloads: 50},
				{Tag: "wan-2.2", MinLikes: 3, MinDownloads: 50},
				{Tag: "flux", MinLikes: 5, MinDownloads: 200},
				{Tag: "stable-diffusion-xl", MinLikes: 5, MinDownloads: 200},
				{Tag: "image-to-video", MinLikes: 5, MinDownloads: 100},
				{Tag: "text-to-video", MinLikes: 5, MinDownloads: 100},
				{Tag: "animatediff", MinLikes: 3, MinDownloads: 50},
				{Tag: "comfyui", MinLikes: 3, MinDownloads: 50},
			},
		},
		RSS: RSSConfig{
			Feeds: []RSSFeed{
				{Name: "Black Forest Labs", URL: "https://blackforestlabs.ai/feed/"},
				{Name: "Stability AI", URL: "https://stability.ai/feed"},
				{Name: "HuggingFace Blog", URL: "https://huggingface.co/blog/feed.xml"},
				{Name: "Qwen Blog", URL: "https://qwenlm.github.io/feed.xml"},
				{Name: "ComfyUI Blog", URL: "https://blog.comfy.org/feed"},
			},
		},
		Civitai: CivitaiConfig{
			BaseModels:   []string{"Flux.1 S", "Flux.1 D", "SDXL 1.0", "Wan Video", "Illustrious"},
			MinDownloads: 200,
			MinRating:    4.0,
		},
		OpenModelDB: OpenModelDBConfig{
			Repo:       "OpenModelDB/open-model-database",
			MaxCommits: 5,
		},
		AwesomeList: AwesomeListConfig{
			ReadmeURL: "https://raw.githubusercontent.com/ComfyUI-Workflow/awesome-comfyui/main/README.md",
		},
		Scoring: ScoringConfig{
			KeywordPoints: 6,
			KeywordCap:    30,
			TractionCap:   5000,
		},
	}
}
