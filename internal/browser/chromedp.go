package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"osrs-quests-scraper/internal/config"
	"osrs-quests-scraper/internal/observability"
)

type ChromedpLauncher struct {
	cfg    config.BrowserConfig
	paths  Paths
	logger *observability.Logger
}

func NewChromedpLauncher(cfg config.BrowserConfig, paths Paths, logger *observability.Logger) *ChromedpLauncher {
	return &ChromedpLauncher{cfg: cfg, paths: paths, logger: logger}
}

func (l *ChromedpLauncher) Launch(ctx context.Context) (Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("headless", l.cfg.Headless),
		chromedp.Flag("disable-gpu", l.cfg.Headless),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1920, 1080),
	)
	if l.cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if l.paths.BrowserPath != "" {
		opts = append(opts, chromedp.ExecPath(l.paths.BrowserPath))
	}

	l.logger.Info("Starting browser", "engine", "chromedp", "bin", l.paths.BrowserPath, "headless", l.cfg.Headless)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(l.logger.Printf))

	// Первый Run без действий запускает процесс браузера
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	return &chromedpSession{
		ctx:             browserCtx,
		cancel:          browserCancel,
		allocCancel:     allocCancel,
		navigateTimeout: time.Duration(l.cfg.NavigateTimeoutS) * time.Second,
	}, nil
}

type chromedpSession struct {
	ctx             context.Context
	cancel          context.CancelFunc
	allocCancel     context.CancelFunc
	navigateTimeout time.Duration
	closed          bool
}

// runCtx ограничивает действие таймаутом и отменой внешнего контекста
func (s *chromedpSession) runCtx(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithTimeout(s.ctx, timeout)
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

func (s *chromedpSession) Navigate(ctx context.Context, url string) error {
	runCtx, cancel := s.runCtx(ctx, s.navigateTimeout)
	defer cancel()

	if err := chromedp.Run(runCtx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (s *chromedpSession) WaitVisible(ctx context.Context, selector string, timeout time.Duration) (string, error) {
	runCtx, cancel := s.runCtx(ctx, timeout)
	defer cancel()

	var html string
	if err := chromedp.Run(runCtx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.OuterHTML(selector, &html, chromedp.ByQuery),
	); err != nil {
		return "", waitError(selector, err)
	}
	return html, nil
}

func (s *chromedpSession) CurrentURL(ctx context.Context) (string, error) {
	runCtx, cancel := s.runCtx(ctx, s.navigateTimeout)
	defer cancel()

	var url string
	if err := chromedp.Run(runCtx, chromedp.Location(&url)); err != nil {
		return "", fmt.Errorf("read location: %w", err)
	}
	return url, nil
}

// Close закрывает вкладку и браузер, затем освобождает аллокатор (процесс завершается)
func (s *chromedpSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	err := chromedp.Cancel(s.ctx)
	s.cancel()
	s.allocCancel()

	if err != nil {
		return fmt.Errorf("close browser: %w", err)
	}
	return nil
}
