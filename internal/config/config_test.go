package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestLoad_Defaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "auto", cfg.Logger.Format)
	assert.Empty(t, cfg.Logger.LogFile)
	assert.Equal(t, 4, cfg.Scan.Workers)
	assert.Equal(t, "both", cfg.Scan.Format)
	assert.Equal(t, "reports", cfg.Scan.Output)
	assert.False(t, cfg.Scan.Strict)
	assert.Equal(t, filepath.Join(home, DefaultConfigDir, DefaultCatalogDir), cfg.Catalog.Dir)
}

func TestLoad_ConfigFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
logger:
  level: debug
  format: json
scan:
  workers: 2
  format: all
  exclude:
    - "**/drafts/**"
catalog:
  dir: /opt/toolscout/catalog
`), 0o644))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.Equal(t, 2, cfg.Scan.Workers)
	assert.Equal(t, "all", cfg.Scan.Format)
	assert.Equal(t, []string{"**/drafts/**"}, cfg.Scan.Exclude)
	assert.Equal(t, "/opt/toolscout/catalog", cfg.Catalog.Dir)
}

func TestLoad_HomeConfigDir(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, DefaultConfigDir)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "toolscout.yaml"), []byte("scan:\n  workers: 6\n"), 0o644))

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Scan.Workers)
}

func TestLoad_EnvSetsLogging(t *testing.T) {
	isolate(t)
	t.Setenv("TOOLSCOUT_LOGGER_LEVEL", "warn")
	t.Setenv("TOOLSCOUT_LOGGER_FORMAT", "json")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
}

func TestLoad_EnvIgnoredForScan(t *testing.T) {
	home := isolate(t)
	t.Setenv("TOOLSCOUT_SCAN_STRICT", "true")
	t.Setenv("TOOLSCOUT_SCAN_WORKERS", "9")
	t.Setenv("TOOLSCOUT_SCAN_FORMAT", "csv")
	t.Setenv("TOOLSCOUT_CATALOG_DIR", "/tmp/elsewhere")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.False(t, cfg.Scan.Strict)
	assert.Equal(t, 4, cfg.Scan.Workers)
	assert.Equal(t, "both", cfg.Scan.Format)
	assert.Equal(t, filepath.Join(home, DefaultConfigDir, DefaultCatalogDir), cfg.Catalog.Dir)
}

func TestLoad_DotEnvSetsLoggingOnly(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("TOOLSCOUT_LOGGER_LEVEL=debug\nTOOLSCOUT_SCAN_STRICT=true\n"), 0o644))
	t.Chdir(dir)
	// godotenv sets variables process-wide; t.Setenv restores them afterwards.
	t.Setenv("TOOLSCOUT_LOGGER_LEVEL", "")
	t.Setenv("TOOLSCOUT_SCAN_STRICT", "")
	require.NoError(t, os.Unsetenv("TOOLSCOUT_LOGGER_LEVEL"))
	require.NoError(t, os.Unsetenv("TOOLSCOUT_SCAN_STRICT"))

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.False(t, cfg.Scan.Strict)
}

func TestEnvVar(t *testing.T) {
	assert.Equal(t, "TOOLSCOUT_LOGGER_LEVEL", EnvVar("logger.level"))
	assert.Equal(t, "TOOLSCOUT_LOGGER_MAX_BACKUPS", EnvVar("logger.max_backups"))
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	isolate(t)
	t.Setenv("TOOLSCOUT_LOGGER_LEVEL", "loud")

	_, err := Load(viper.New(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logger.level")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Logger: LoggerConfig{Level: "info", Format: "auto"},
			Scan:   ScanConfig{Workers: 4, Format: "both", CacheSize: 16},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad level", func(c *Config) { c.Logger.Level = "loud" }, "logger.level"},
		{"bad log format", func(c *Config) { c.Logger.Format = "xml" }, "logger.format"},
		{"negative workers", func(c *Config) { c.Scan.Workers = -1 }, "scan.workers"},
		{"unknown export format", func(c *Config) { c.Scan.Format = "pdf" }, "scan.format"},
		{"zero cache", func(c *Config) { c.Scan.CacheSize = 0 }, "scan.cache_size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
