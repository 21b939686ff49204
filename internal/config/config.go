package config

import (
	"fmt"
	"time"
)

const (
	DefaultTargetURL = "https://oldschool.runescape.wiki/w/Quests/List"
	DefaultDBFile    = "OSRS_Quests.db"
)

type Config struct {
	Target        TargetConfig        `yaml:"target"`
	Browser       BrowserConfig       `yaml:"browser"`
	LocatorFile   string              `yaml:"locator_file"`
	Pipeline      PipelineConfig      `yaml:"pipeline"`
	Robots        RobotsConfig        `yaml:"robots"`
	Storage       StorageConfig       `yaml:"storage"`
	Observability ObservabilityConfig `yaml:"observability"`
}

type TargetConfig struct {
	URL string `yaml:"url"`
}

// BrowserConfig описывает запуск браузера. Пути разрешаются один раз при старте (browser.ResolvePaths).
type BrowserConfig struct {
	Engine              string `yaml:"engine"` // rod | chromedp
	Mode                string `yaml:"mode"`   // packaged | source
	BaseDir             string `yaml:"base_dir"`
	BinaryPath          string `yaml:"binary_path"`
	Headless            bool   `yaml:"headless"`
	NoSandbox           bool   `yaml:"no_sandbox"`
	NavigateTimeoutS    int    `yaml:"navigate_timeout_s"`
	WaitVisibleTimeoutS int    `yaml:"wait_visible_timeout_s"`
}

type PipelineConfig struct {
	OnRowError  string `yaml:"on_row_error"` // skip | abort
	OnDuplicate string `yaml:"on_duplicate"` // skip | abort
	RunTimeoutS int    `yaml:"run_timeout_s"` // 0: без ограничения
}

type RobotsConfig struct {
	Enabled       bool   `yaml:"enabled"`
	UserAgent     string `yaml:"user_agent"`
	CacheTTLHours int    `yaml:"cache_ttl_hours"`
	TimeoutMS     int    `yaml:"timeout_ms"`
}

type StorageConfig struct {
	Driver           string `yaml:"driver"` // sqlite | mssql
	DSN              string `yaml:"dsn"`
	CommandTimeoutMS int    `yaml:"command_timeout_ms"`
}

type ObservabilityConfig struct {
	LogPath       string `yaml:"log_path"`
	LogLevel      string `yaml:"log_level"`
	LogMaxSizeMB  int    `yaml:"log_max_size_mb"`
	LogMaxBackups int    `yaml:"log_max_backups"`
	LogMaxAgeDays int    `yaml:"log_max_age_days"`
}

// DefaultConfig возвращает конфигурацию, повторяющую захардкоженные значения исходного скрипта
func DefaultConfig() *Config {
	return &Config{
		Target: TargetConfig{URL: DefaultTargetURL},
		Browser: BrowserConfig{
			Engine:              "rod",
			Mode:                "source",
			Headless:            true,
			NavigateTimeoutS:    30,
			WaitVisibleTimeoutS: 10,
		},
		Pipeline: PipelineConfig{
			OnRowError:  "skip",
			OnDuplicate: "skip",
			RunTimeoutS: 300,
		},
		Robots: RobotsConfig{
			Enabled:       false,
			UserAgent:     "osrs-quests-scraper/1.0",
			CacheTTLHours: 12,
			TimeoutMS:     5000,
		},
		Storage: StorageConfig{
			Driver:           "sqlite",
			DSN:              DefaultDBFile,
			CommandTimeoutMS: 5000,
		},
		Observability: ObservabilityConfig{
			LogLevel:      "info",
			LogMaxSizeMB:  10,
			LogMaxBackups: 3,
			LogMaxAgeDays: 28,
		},
	}
}

// Validation
func (c *Config) Validate() error {
	if c.Target.URL == "" {
		return fmt.Errorf("target.url is required")
	}
	if c.Browser.Engine != "rod" && c.Browser.Engine != "chromedp" {
		return fmt.Errorf("browser.engine must be 'rod' or 'chromedp'")
	}
	if c.Browser.Mode != "packaged" && c.Browser.Mode != "source" {
		return fmt.Errorf("browser.mode must be 'packaged' or 'source'")
	}
	if c.Browser.NavigateTimeoutS <= 0 {
		return fmt.Errorf("browser.navigate_timeout_s must be > 0")
	}
	if c.Browser.WaitVisibleTimeoutS <= 0 {
		return fmt.Errorf("browser.wait_visible_timeout_s must be > 0")
	}
	if !isPolicy(c.Pipeline.OnRowError) {
		return fmt.Errorf("pipeline.on_row_error must be 'skip' or 'abort'")
	}
	if !isPolicy(c.Pipeline.OnDuplicate) {
		return fmt.Errorf("pipeline.on_duplicate must be 'skip' or 'abort'")
	}
	if c.Pipeline.RunTimeoutS < 0 {
		return fmt.Errorf("pipeline.run_timeout_s must be >= 0")
	}
	if c.Robots.Enabled {
		if c.Robots.CacheTTLHours <= 0 {
			return fmt.Errorf("robots.cache_ttl_hours must be > 0")
		}
		if c.Robots.TimeoutMS <= 0 {
			return fmt.Errorf("robots.timeout_ms must be > 0")
		}
	}
	if c.Storage.Driver != "sqlite" && c.Storage.Driver != "mssql" {
		return fmt.Errorf("storage.driver must be 'sqlite' or 'mssql'")
	}
	if c.Storage.DSN == "" {
		return fmt.Errorf("storage.dsn is required")
	}
	if c.Storage.CommandTimeoutMS <= 0 {
		return fmt.Errorf("storage.command_timeout_ms must be > 0")
	}
	switch c.Observability.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("observability.log_level must be one of debug, info, warn, error")
	}
	if c.Observability.LogPath != "" && c.Observability.LogMaxSizeMB <= 0 {
		return fmt.Errorf("observability.log_max_size_mb must be > 0 when log_path is set")
	}
	return nil
}

func isPolicy(p string) bool {
	return p == "skip" || p == "abort"
}

// Getters
func (c *Config) GetNavigateTimeout() time.Duration {
	return time.Duration(c.Browser.NavigateTimeoutS) * time.Second
}

func (c *Config) GetWaitVisibleTimeout() time.Duration {
	return time.Duration(c.Browser.WaitVisibleTimeoutS) * time.Second
}

func (c *Config) GetRunTimeout() time.Duration {
	return time.Duration(c.Pipeline.RunTimeoutS) * time.Second
}

func (c *Config) GetCommandTimeout() time.Duration {
	return time.Duration(c.Storage.CommandTimeoutMS) * time.Millisecond
}

func (c *Config) GetRobotsCacheTTL() time.Duration {
	return time.Duration(c.Robots.CacheTTLHours) * time.Hour
}

func (c *Config) GetRobotsTimeout() time.Duration {
	return time.Duration(c.Robots.TimeoutMS) * time.Millisecond
}
