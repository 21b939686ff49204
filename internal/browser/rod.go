package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"osrs-quests-scraper/internal/config"
	"osrs-quests-scraper/internal/observability"
)

type RodLauncher struct {
	cfg    config.BrowserConfig
	paths  Paths
	logger *observability.Logger
}

func NewRodLauncher(cfg config.BrowserConfig, paths Paths, logger *observability.Logger) *RodLauncher {
	return &RodLauncher{cfg: cfg, paths: paths, logger: logger}
}

func (l *RodLauncher) Launch(ctx context.Context) (Session, error) {
	bin := l.paths.BrowserPath
	if bin == "" {
		if found, ok := launcher.LookPath(); ok {
			bin = found
		}
	}

	ln := launcher.New().
		Context(ctx).
		Headless(l.cfg.Headless).
		NoSandbox(l.cfg.NoSandbox)
	if bin != "" {
		ln = ln.Bin(bin)
	}

	l.logger.Info("Starting browser", "engine", "rod", "bin", bin, "headless", l.cfg.Headless)

	controlURL, err := ln.Launch()
	if err != nil {
		ln.Kill()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		ln.Kill()
		ln.Cleanup()
		return nil, fmt.Errorf("connect to browser: %w", err)
	}

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = b.Close()
		ln.Kill()
		ln.Cleanup()
		return nil, fmt.Errorf("open page: %w", err)
	}

	return &rodSession{
		launcher:        ln,
		browser:         b,
		page:            page,
		navigateTimeout: time.Duration(l.cfg.NavigateTimeoutS) * time.Second,
		logger:          l.logger,
	}, nil
}

type rodSession struct {
	launcher        *launcher.Launcher
	browser         *rod.Browser
	page            *rod.Page
	navigateTimeout time.Duration
	logger          *observability.Logger
	closed          bool
}

func (s *rodSession) Navigate(ctx context.Context, url string) error {
	p := s.page.Context(ctx)
	if s.navigateTimeout > 0 {
		p = p.Timeout(s.navigateTimeout)
		defer p.CancelTimeout()
	}

	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (s *rodSession) WaitVisible(ctx context.Context, selector string, timeout time.Duration) (string, error) {
	p := s.page.Context(ctx).Timeout(timeout)
	defer p.CancelTimeout()

	el, err := p.Element(selector)
	if err != nil {
		return "", waitError(selector, err)
	}
	if err := el.WaitVisible(); err != nil {
		return "", waitError(selector, err)
	}

	html, err := el.HTML()
	if err != nil {
		return "", fmt.Errorf("read element html: %w", err)
	}
	return html, nil
}

func (s *rodSession) CurrentURL(ctx context.Context) (string, error) {
	info, err := s.page.Context(ctx).Info()
	if err != nil {
		return "", fmt.Errorf("page info: %w", err)
	}
	return info.URL, nil
}

// Close закрывает браузер и гарантированно убивает процесс; повторный вызов ничего не делает
func (s *rodSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	err := s.browser.Close()
	s.launcher.Kill()
	s.launcher.Cleanup()

	if err != nil {
		return fmt.Errorf("close browser: %w", err)
	}
	return nil
}
