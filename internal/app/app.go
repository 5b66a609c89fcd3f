// Package app wires configuration, adapters and use cases into the runnable
// commands exposed by the CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"genairadar/internal/config"
	"genairadar/internal/digest"
	"genairadar/internal/domain"
	"genairadar/internal/infrastructure/dashboard"
	"genairadar/internal/infrastructure/notion"
	"genairadar/internal/infrastructure/scheduler"
	"genairadar/internal/infrastructure/telegram"
	"genairadar/internal/logging"
	"genairadar/internal/ports"
	"genairadar/internal/relevance"
	"genairadar/internal/source"
	"genairadar/internal/state"
	"genairadar/internal/usecase"
)

// Application builds and runs the individual commands.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
}

// New builds an application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	return &Application{cfg: cfg, logger: baseLogger}
}

// Monitor executes one scan of every source and writes the raw digest.
func (a *Application) Monitor(ctx context.Context) error {
	pipeline, err := a.buildPipeline()
	if err != nil {
		return err
	}

	summary, err := pipeline.Run(ctx)
	if err != nil {
		return err
	}

	a.logger.Info("monitor finished", "written", summary.Written)
	return nil
}

// Watch runs the monitor on the configured cron schedule until the context
// is cancelled.
func (a *Application) Watch(ctx context.Context) error {
	pipeline, err := a.buildPipeline()
	if err != nil {
		return err
	}

	driver := scheduler.NewCronScheduler(a.cfg.Scheduler.CronExpression, a.cfg.Scheduler.Location())
	watcher := usecase.NewWatcher(driver, pipeline, a.logger.With("component", "watcher"))

	if err := watcher.Start(ctx); err != nil {
		return fmt.Errorf("start watch mode: %w", err)
	}
	a.logger.Info("watch mode started", "cron", a.cfg.Scheduler.CronExpression)

	<-ctx.Done()
	return watcher.Stop(context.Background())
}

// Import pushes the reviewed digest into Notion.
func (a *Application) Import(ctx context.Context) error {
	if err := a.requireNotion(); err != nil {
		return err
	}

	store, err := state.Open(a.cfg.Monitor.StateDir, time.Now())
	if err != nil {
		return err
	}

	importer := notion.NewImporter(
		a.cfg.Notion.Token, a.cfg.Notion.DatabaseID,
		store, a.logger.With("component", "notion.import"),
		a.cfg.Monitor.DigestPath, a.cfg.Monitor.ArchiveDir,
	)

	summary, err := importer.Run(ctx)
	if err != nil {
		return err
	}

	a.logger.Info("import finished",
		"created", summary.Created, "skipped", summary.Skipped, "failed", summary.Failed)
	return nil
}

// Cleanup archives every Notion page flagged with Status=Delete.
func (a *Application) Cleanup(ctx context.Context, dryRun bool) error {
	if err := a.requireNotion(); err != nil {
		return err
	}

	cleaner := notion.NewCleaner(
		a.cfg.Notion.Token, a.cfg.Notion.DatabaseID,
		a.logger.With("component", "notion.cleanup"),
	)

	summary, err := cleaner.Run(ctx, dryRun)
	if err != nil {
		return err
	}

	a.logger.Info("cleanup finished",
		"matched", summary.Matched, "archived", summary.Archived, "failed", summary.Failed)
	return nil
}

// Dashboard renders the static HTML report from the local ledgers.
func (a *Application) Dashboard(_ context.Context) error {
	store, err := state.Open(a.cfg.Monitor.StateDir, time.Now())
	if err != nil {
		return err
	}

	global, today := store.ImportCounts()
	renderer := dashboard.NewRenderer()
	if err := renderer.Render(a.cfg.Monitor.DashboardPath, store.SeenLedger(), global, today); err != nil {
		return err
	}

	a.logger.Info("dashboard generated", "path", a.cfg.Monitor.DashboardPath)
	return nil
}

func (a *Application) buildPipeline() (*usecase.Pipeline, error) {
	cfg := a.cfg
	store, err := state.Open(cfg.Monitor.StateDir, time.Now())
	if err != nil {
		return nil, err
	}
	snapshot, err := state.OpenStarSnapshot(cfg.Monitor.StateDir)
	if err != nil {
		return nil, err
	}

	client := source.NewClient(nil, cfg.Monitor.Timeout(), cfg.Github.Token)
	lookback := cfg.Monitor.Lookback()
	srcLogger := func(name string) *slog.Logger {
		return a.logger.With("component", "source."+name)
	}

	adapters := []ports.SourceAdapter{
		source.NewGithubSearch(client, cfg.Github.Queries, lookback, srcLogger("github-search")),
		source.NewGithubReleases(client, cfg.Github.TrackedRepos, lookback, srcLogger("github-releases")),
		source.NewHuggingFace(client, cfg.HuggingFace.Searches, lookback, srcLogger("huggingface")),
		source.NewRSSVendor(client, cfg.RSS.Feeds, lookback, srcLogger("rss-vendor")),
		source.NewCivitai(client, cfg.Civitai, lookback, srcLogger("civitai")),
		source.NewOpenModelDB(client, cfg.OpenModelDB, lookback, srcLogger("openmodeldb")),
		source.NewAwesomeList(client, cfg.AwesomeList, snapshot, srcLogger("awesome-list")),
	}

	var notifier ports.Notifier
	if tg := cfg.Notifications.Telegram; tg.BotToken != "" && tg.ChatID != "" {
		notifier = telegram.NewNotifier(tg.BotToken, tg.ChatID)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Adapters:   adapters,
		Store:      store,
		Scorer:     relevance.NewScorer(cfg.Scoring),
		Writer:     digest.NewWriter(),
		Notifier:   notifier,
		Logger:     a.logger.With("component", "pipeline"),
		DigestPath: cfg.Monitor.DigestRawPath,
	})
	return pipeline, nil
}

// requireNotion validates the hosted-database credentials up front so the
// commands fail fast with a configuration error instead of a 401 mid-run.
func (a *Application) requireNotion() error {
	if a.cfg.Notion.Token == "" || a.cfg.Notion.DatabaseID == "" {
		return fmt.Errorf("%w: NOTION_TOKEN and NOTION_DB_ID are required", domain.ErrConfiguration)
	}
	return nil
}
