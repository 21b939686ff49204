package app

import (
	"context"
	"errors"
	"fmt"

	"osrs-quests-scraper/internal/browser"
	"osrs-quests-scraper/internal/checksum"
	"osrs-quests-scraper/internal/config"
	"osrs-quests-scraper/internal/normalize"
	"osrs-quests-scraper/internal/observability"
	"osrs-quests-scraper/internal/robots"
	"osrs-quests-scraper/internal/scraper"
	"osrs-quests-scraper/internal/storage"
)

type Orchestrator struct {
	cfg        *config.Config
	logger     *observability.Logger
	launcher   browser.Launcher
	scraper    *scraper.Scraper
	normalizer *normalize.Normalizer
	repo       storage.Repository
	robots     *robots.Cache // nil: проверка выключена
	checksum   *checksum.Generator
}

func NewOrchestrator(
	cfg *config.Config,
	logger *observability.Logger,
	l browser.Launcher,
	s *scraper.Scraper,
	n *normalize.Normalizer,
	repo storage.Repository,
	rc *robots.Cache,
) *Orchestrator {
	return &Orchestrator{
		cfg:        cfg,
		logger:     logger,
		launcher:   l,
		scraper:    s,
		normalizer: n,
		repo:       repo,
		robots:     rc,
		checksum:   checksum.NewGenerator(),
	}
}

type RunStats struct {
	Rows          int // строки с данными (без заголовков)
	HeaderRows    int
	Inserted      int
	Duplicates    int
	Skipped       int // битые строки, пропущенные по политике skip
	StoppedReason string
}

// Run выполняет один проход: Launch → Navigate → Wait → Extract → Normalize → Insert → Close.
// Браузер закрывается на любом выходе после успешного запуска
func (o *Orchestrator) Run(ctx context.Context) (*RunStats, error) {
	targetURL := o.cfg.Target.URL
	locator := o.scraper.Locator()
	stats := &RunStats{}

	o.logger.Info("Starting run",
		"url", targetURL,
		"engine", o.cfg.Browser.Engine,
		"table_selector", locator.TableSelector,
		"on_row_error", o.cfg.Pipeline.OnRowError,
		"on_duplicate", o.cfg.Pipeline.OnDuplicate,
	)

	if o.robots != nil {
		allowed, err := o.robots.IsAllowed(ctx, targetURL)
		if err != nil {
			stats.StoppedReason = fmt.Sprintf("robots check failed: %v", err)
			return stats, fmt.Errorf("robots check: %w", err)
		}
		if !allowed {
			o.logger.Error("Target disallowed by robots.txt", "url", targetURL)
			stats.StoppedReason = "disallowed by robots.txt"
			return stats, fmt.Errorf("%w: %s", ErrDisallowed, targetURL)
		}
	}

	session, err := o.launcher.Launch(ctx)
	if err != nil {
		o.logger.Error("Browser launch failed", "error", err.Error())
		stats.StoppedReason = fmt.Sprintf("driver startup: %v", err)
		if errors.Is(err, ErrDriverStartup) {
			return stats, err
		}
		return stats, fmt.Errorf("%w: %w", ErrDriverStartup, err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			o.logger.Error("Failed to close browser", "error", err.Error())
			return
		}
		o.logger.Debug("Browser closed")
	}()

	tableHTML, pageURL, err := o.load(ctx, session, targetURL, locator.TableSelector)
	if err != nil {
		stats.StoppedReason = err.Error()
		return stats, err
	}

	table, err := o.scraper.Extract(tableHTML, pageURL)
	if err != nil {
		o.logger.Error("Table extraction failed", "error", err.Error())
		stats.StoppedReason = fmt.Sprintf("extraction: %v", err)
		return stats, err
	}
	stats.Rows = len(table.Rows) + len(table.Errors)
	stats.HeaderRows = table.SkippedHeaders

	if locator.ExpectedHeaderChecksum != "" &&
		!o.checksum.VerifyHeaderFingerprint(locator.ExpectedHeaderChecksum, table.Headers) {
		o.logger.Warn("Table layout changed",
			"expected_checksum", locator.ExpectedHeaderChecksum,
			"actual_checksum", table.HeaderChecksum,
			"headers", table.Headers,
		)
	}

	o.logger.Info("Table extracted",
		"rows", stats.Rows,
		"malformed_rows", len(table.Errors),
		"header_rows", stats.HeaderRows,
	)

	// Таблица создаётся только когда есть что писать: при таймауте БД не трогаем
	if err := o.repo.EnsureSchema(ctx); err != nil {
		stats.StoppedReason = fmt.Sprintf("schema: %v", err)
		return stats, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	if err := o.persist(ctx, table, stats); err != nil {
		stats.StoppedReason = err.Error()
		return stats, err
	}

	stats.StoppedReason = "completed"
	o.logger.Info("Run completed",
		"rows", stats.Rows,
		"inserted", stats.Inserted,
		"duplicates", stats.Duplicates,
		"skipped", stats.Skipped,
	)
	return stats, nil
}

// load открывает страницу и ждёт видимости таблицы. Любая ошибка здесь считается NavigationTimeout
func (o *Orchestrator) load(ctx context.Context, session browser.Session, targetURL, selector string) (string, string, error) {
	if err := session.Navigate(ctx, targetURL); err != nil {
		o.logger.Error("Navigation failed", "url", targetURL, "error", err.Error())
		return "", "", fmt.Errorf("%w: navigate %s: %w", ErrNavigationTimeout, targetURL, err)
	}

	tableHTML, err := session.WaitVisible(ctx, selector, o.cfg.GetWaitVisibleTimeout())
	if err != nil {
		o.logger.Error("Quest table not visible",
			"selector", selector,
			"timeout", o.cfg.GetWaitVisibleTimeout().String(),
			"error", err.Error(),
		)
		return "", "", fmt.Errorf("%w: %w", ErrNavigationTimeout, err)
	}

	// href разрешаются относительно фактического адреса (после редиректов)
	pageURL, err := session.CurrentURL(ctx)
	if err != nil || pageURL == "" {
		pageURL = targetURL
	}
	return tableHTML, pageURL, nil
}

// persist идёт по строкам в порядке документа, битые строки и дубли обрабатываются по политикам
func (o *Orchestrator) persist(ctx context.Context, table *scraper.Table, stats *RunStats) error {
	rows, rowErrs := table.Rows, table.Errors
	for len(rows) > 0 || len(rowErrs) > 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run canceled: %w", err)
		}

		// Слияние двух упорядоченных по Position списков
		if len(rowErrs) > 0 && (len(rows) == 0 || rowErrs[0].Position < rows[0].Position) {
			rowErr := rowErrs[0]
			rowErrs = rowErrs[1:]
			if err := o.rowFailed(rowErr.Position, rowErr.Err, stats); err != nil {
				return err
			}
			continue
		}

		raw := rows[0]
		rows = rows[1:]

		quest, err := o.normalizer.Quest(raw)
		if err != nil {
			if err := o.rowFailed(raw.Position, err, stats); err != nil {
				return err
			}
			continue
		}

		id, err := o.repo.InsertQuest(ctx, quest)
		switch {
		case err == nil:
			stats.Inserted++
			o.logger.Debug("Quest inserted",
				"id", id,
				"number", quest.Number,
				"name", quest.Name,
			)
		case errors.Is(err, storage.ErrDuplicateRecord):
			stats.Duplicates++
			o.logger.Info("Duplicate record",
				"number", quest.Number,
				"name", quest.Name,
			)
			if o.cfg.Pipeline.OnDuplicate == PolicyAbort {
				return fmt.Errorf("row %d: %w", raw.Position, err)
			}
		default:
			o.logger.Error("Insert failed",
				"number", quest.Number,
				"name", quest.Name,
				"error", err.Error(),
			)
			return fmt.Errorf("%w: row %d: %w", ErrStorage, raw.Position, err)
		}
	}
	return nil
}

func (o *Orchestrator) rowFailed(position int, err error, stats *RunStats) error {
	o.logger.Warn("Malformed row",
		"position", position,
		"policy", o.cfg.Pipeline.OnRowError,
		"error", err.Error(),
	)
	if o.cfg.Pipeline.OnRowError == PolicyAbort {
		return fmt.Errorf("row %d: %w", position, err)
	}
	stats.Skipped++
	return nil
}
