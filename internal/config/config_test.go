package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, DefaultTargetURL, cfg.Target.URL)
	assert.Equal(t, 10*time.Second, cfg.GetWaitVisibleTimeout())
	assert.Equal(t, DefaultDBFile, cfg.Storage.DSN)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
browser:
  engine: chromedp
  wait_visible_timeout_s: 3
storage:
  dsn: quests.db
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "chromedp", cfg.Browser.Engine)
	assert.Equal(t, 3*time.Second, cfg.GetWaitVisibleTimeout())
	assert.Equal(t, "quests.db", cfg.Storage.DSN)
	// не заданные в файле значения остаются по умолчанию
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "skip", cfg.Pipeline.OnRowError)
}

func TestLoadConfigEmptyFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"empty url", func(c *Config) { c.Target.URL = "" }},
		{"unknown engine", func(c *Config) { c.Browser.Engine = "selenium" }},
		{"unknown mode", func(c *Config) { c.Browser.Mode = "frozen" }},
		{"zero wait timeout", func(c *Config) { c.Browser.WaitVisibleTimeoutS = 0 }},
		{"bad row policy", func(c *Config) { c.Pipeline.OnRowError = "retry" }},
		{"bad duplicate policy", func(c *Config) { c.Pipeline.OnDuplicate = "" }},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "postgres" }},
		{"empty dsn", func(c *Config) { c.Storage.DSN = "" }},
		{"bad log level", func(c *Config) { c.Observability.LogLevel = "trace" }},
		{"robots without ttl", func(c *Config) {
			c.Robots.Enabled = true
			c.Robots.CacheTTLHours = 0
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "storage:\n  driver: oracle\n")

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "storage.driver")
}

func TestLoadConfigRejectsUnknownFields(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "browser:\n  engnie: chromedp\n")

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "engnie")
}

func TestLoadConfigOrDefault(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "config.yaml")

	cfg, found, err := LoadConfigOrDefault(missing, false)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, DefaultConfig(), cfg)

	_, _, err = LoadConfigOrDefault(missing, true)
	require.Error(t, err)

	// битый файл не подменяется дефолтом
	bad := writeFile(t, t.TempDir(), "config.yaml", "browser:\n  engine: firefox\n")
	_, _, err = LoadConfigOrDefault(bad, false)
	require.Error(t, err)

	good := writeFile(t, t.TempDir(), "config.yaml", "pipeline:\n  on_duplicate: abort\n")
	cfg, found, err = LoadConfigOrDefault(good, true)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "abort", cfg.Pipeline.OnDuplicate)
}

func TestResolveLocator(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "locator.yaml", `
table_selector: "table.wikitable"
columns:
  series: 7
`)

	cfg := DefaultConfig()
	loc, err := cfg.ResolveLocator(dir)
	require.NoError(t, err)
	assert.Equal(t, DefaultLocator(), loc, "no locator file means built-in locator")

	cfg.LocatorFile = "locator.yaml"
	loc, err = cfg.ResolveLocator(dir)
	require.NoError(t, err)
	assert.Equal(t, "table.wikitable", loc.TableSelector)
	assert.Equal(t, 7, loc.Columns.Series)
	assert.Equal(t, 6, loc.Columns.ReleaseDate)
	assert.Equal(t, 7, loc.Columns.Max())
}

func TestLoadLocatorValidation(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "locator.yaml", "columns:\n  name: -1\n")

	_, err := LoadLocator(path)
	assert.ErrorContains(t, err, "columns.name")

	_, err = LoadLocator("")
	assert.Error(t, err)
}
