package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"osrs-quests-scraper/internal/app"
	"osrs-quests-scraper/internal/config"
	"osrs-quests-scraper/internal/normalize"
	"osrs-quests-scraper/internal/observability"
	"osrs-quests-scraper/internal/scraper"
)

const defaultConfigPath = "configs/config.yaml"

type options struct {
	configPath string
	url        string
	dsn        string
	engine     string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "osrs-quests",
		Short: "Scrape the OSRS wiki quest list into a local database",
		Long: `osrs-quests opens the Old School RuneScape wiki quest list in a headless browser,
waits for the quest table, and inserts every row into the quests table.

Rows already present (same number and name) are reported as duplicates.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", defaultConfigPath, "path to config YAML")
	cmd.Flags().StringVar(&opts.url, "url", "", "override target.url")
	cmd.Flags().StringVar(&opts.dsn, "db", "", "override storage.dsn")
	cmd.Flags().StringVar(&opts.engine, "engine", "", "override browser.engine (rod | chromedp)")

	return cmd
}

func run(cmd *cobra.Command, opts *options) error {
	// Без явного --config отсутствующий файл не ошибка, берутся встроенные значения
	cfg, found, err := config.LoadConfigOrDefault(opts.configPath, cmd.Flags().Changed("config"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return err
	}

	if opts.url != "" {
		cfg.Target.URL = opts.url
	}
	if opts.dsn != "" {
		cfg.Storage.DSN = opts.dsn
	}
	if opts.engine != "" {
		cfg.Browser.Engine = opts.engine
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		return err
	}

	logger := observability.NewLogger(observability.Options{
		LogPath:    cfg.Observability.LogPath,
		LogLevel:   cfg.Observability.LogLevel,
		MaxSizeMB:  cfg.Observability.LogMaxSizeMB,
		MaxBackups: cfg.Observability.LogMaxBackups,
		MaxAgeDays: cfg.Observability.LogMaxAgeDays,
	})
	defer func() {
		_ = logger.Close()
	}()

	if !found {
		logger.Info("Config file not found, using built-in defaults", "path", opts.configPath)
	}

	// Локатор ищется относительно каталога конфига
	locator, err := cfg.ResolveLocator(filepath.Dir(opts.configPath))
	if err != nil {
		logger.Error("Failed to load locator", "file", cfg.LocatorFile, "error", err.Error())
		return err
	}

	launcher, err := app.NewLauncher(cfg, logger)
	if err != nil {
		logger.Error("Browser setup failed", "error", err.Error())
		return err
	}

	repo, err := app.OpenRepository(cfg, logger)
	if err != nil {
		logger.Error("Failed to open storage", "driver", cfg.Storage.Driver, "dsn", cfg.Storage.DSN, "error", err.Error())
		return err
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Error("Failed to close storage", "error", err.Error())
		}
	}()

	ctx, cancel := app.GracefulShutdown(logger, cfg.GetRunTimeout())
	defer cancel()

	orch := app.NewOrchestrator(
		cfg,
		logger,
		launcher,
		scraper.NewScraper(locator),
		normalize.NewNormalizer(),
		repo,
		app.NewRobotsCache(cfg, logger),
	)

	stats, err := orch.Run(ctx)
	if err != nil {
		logger.Error("Run failed", "stopped_reason", stats.StoppedReason, "error", err.Error())
		return err
	}

	total, err := repo.CountQuests(ctx)
	if err != nil {
		logger.Warn("Failed to count quests", "error", err.Error())
		return nil
	}
	logger.Info("Quests in storage", "total", total)

	return nil
}
