package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"genairadar/internal/app"
	"genairadar/internal/config"
	"genairadar/internal/logging"
)

var (
	watchMode bool
	dryRun    bool
)

var rootCmd = &cobra.Command{
	Use:           "genairadar",
	Short:         "genairadar - GenAI/ComfyUI source monitor",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Scan all sources and write the raw digest",
	RunE: func(cmd *cobra.Command, _ []string) error {
		application := buildApp()
		if watchMode {
			return application.Watch(cmd.Context())
		}
		return application.Monitor(cmd.Context())
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import the reviewed digest into Notion and archive it",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return buildApp().Import(cmd.Context())
	},
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Archive Notion pages flagged with Status=Delete",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return buildApp().Cleanup(cmd.Context(), dryRun)
	},
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Generate the static HTML dashboard from the local ledgers",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return buildApp().Dashboard(cmd.Context())
	},
}

func init() {
	monitorCmd.Flags().BoolVar(&watchMode, "watch", false, "keep running on the configured cron schedule")
	cleanupCmd.Flags().BoolVar(&dryRun, "dry-run", false, "log what would be archived without changing anything")
	rootCmd.AddCommand(monitorCmd, importCmd, cleanupCmd, dashboardCmd)
}

func buildApp() *app.Application {
	cfg := config.Load()
	return app.New(cfg, logging.New(cfg.Logging.Level))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logging.New("info").Error("command failed", "error", err)
		os.Exit(1)
	}
}
