package app

import (
	"fmt"

	"osrs-quests-scraper/internal/browser"
	"osrs-quests-scraper/internal/config"
	"osrs-quests-scraper/internal/observability"
	"osrs-quests-scraper/internal/robots"
	"osrs-quests-scraper/internal/storage"
	"osrs-quests-scraper/internal/storage/mssql"
	"osrs-quests-scraper/internal/storage/sqlite"
)

// NewLauncher разрешает пути к браузеру и создаёт launcher выбранного движка
func NewLauncher(cfg *config.Config, logger *observability.Logger) (browser.Launcher, error) {
	paths, err := browser.ResolvePaths(cfg.Browser)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDriverStartup, err)
	}

	logger.Info("Browser paths resolved",
		"mode", cfg.Browser.Mode,
		"base_dir", paths.BaseDir,
		"browser_path", paths.BrowserPath,
	)

	l, err := browser.NewLauncher(cfg.Browser, paths, logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDriverStartup, err)
	}
	return l, nil
}

// OpenRepository открывает хранилище по storage.driver
func OpenRepository(cfg *config.Config, logger *observability.Logger) (storage.Repository, error) {
	switch cfg.Storage.Driver {
	case "sqlite":
		return sqlite.NewRepository(cfg.Storage.DSN, cfg.GetCommandTimeout(), logger)
	case "mssql":
		return mssql.NewRepository(cfg.Storage.DSN, cfg.GetCommandTimeout(), logger)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Storage.Driver)
	}
}

// NewRobotsCache возвращает nil, если проверка robots.txt выключена
func NewRobotsCache(cfg *config.Config, logger *observability.Logger) *robots.Cache {
	if !cfg.Robots.Enabled {
		return nil
	}
	return robots.NewCache(cfg.GetRobotsCacheTTL(), cfg.GetRobotsTimeout(), cfg.Robots.UserAgent, logger)
}
