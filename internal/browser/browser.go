// Package browser запускает управляемый браузер и даёт минимальный интерфейс навигации и ожидания элементов.
package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"osrs-quests-scraper/internal/config"
	"osrs-quests-scraper/internal/observability"
)

var (
	// ErrBinaryNotFound: явно настроенный бинарник браузера отсутствует
	ErrBinaryNotFound = errors.New("browser binary not found")
	// ErrWaitTimeout: элемент не стал видимым за отведённое время
	ErrWaitTimeout = errors.New("timed out waiting for element")
)

// Session описывает одну запущенную сессия браузера. Close завершает внешний процесс
type Session interface {
	Navigate(ctx context.Context, url string) error
	// WaitVisible ждёт видимости элемента и возвращает его outerHTML
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) (string, error)
	// CurrentURL возвращает адрес страницы после навигации (с учётом редиректов)
	CurrentURL(ctx context.Context) (string, error)
	Close() error
}

// Launcher запускает сессию. При ошибке сессия не возвращается, а частично запущенный процесс убивается самим Launcher
type Launcher interface {
	Launch(ctx context.Context) (Session, error)
}

// Paths хранит результат разрешения путей, вычисляется один раз при старте
type Paths struct {
	BaseDir     string
	BrowserPath string // пусто: автоопределение движком
}

// ResolvePaths вычисляет базовый каталог по режиму запуска и путь к браузеру относительно него
func ResolvePaths(cfg config.BrowserConfig) (Paths, error) {
	return resolvePaths(cfg, os.Executable, os.Getwd, fileExists)
}

func resolvePaths(
	cfg config.BrowserConfig,
	executable func() (string, error),
	getwd func() (string, error),
	exists func(string) bool,
) (Paths, error) {
	var base string
	switch cfg.Mode {
	case "packaged":
		// Собранный дистрибутив: браузер лежит рядом с исполняемым файлом
		exe, err := executable()
		if err != nil {
			return Paths{}, fmt.Errorf("resolve executable path: %w", err)
		}
		base = filepath.Dir(exe)
	case "source", "":
		if cfg.BaseDir != "" {
			base = cfg.BaseDir
			break
		}
		wd, err := getwd()
		if err != nil {
			return Paths{}, fmt.Errorf("resolve working directory: %w", err)
		}
		base = wd
	default:
		return Paths{}, fmt.Errorf("unknown browser mode: %s", cfg.Mode)
	}

	paths := Paths{BaseDir: base}
	if cfg.BinaryPath == "" {
		return paths, nil
	}

	bin := cfg.BinaryPath
	if !filepath.IsAbs(bin) {
		bin = filepath.Join(base, bin)
	}
	if !exists(bin) {
		return Paths{}, fmt.Errorf("%w: %s", ErrBinaryNotFound, bin)
	}
	paths.BrowserPath = bin

	return paths, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// NewLauncher выбирает движок по browser.engine
func NewLauncher(cfg config.BrowserConfig, paths Paths, logger *observability.Logger) (Launcher, error) {
	switch cfg.Engine {
	case "rod", "":
		return NewRodLauncher(cfg, paths, logger), nil
	case "chromedp":
		return NewChromedpLauncher(cfg, paths, logger), nil
	default:
		return nil, fmt.Errorf("unknown browser engine: %s", cfg.Engine)
	}
}

// waitError приводит таймауты движков к ErrWaitTimeout
func waitError(selector string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrWaitTimeout, selector)
	}
	return fmt.Errorf("wait visible %s: %w", selector, err)
}
