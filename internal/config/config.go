// Package config loads toolscout settings from defaults and an optional
// toolscout.yaml. TOOLSCOUT_LOGGER_* variables, from the environment or a
// .env file, set logging only; nothing in the environment changes a scan.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/gzhole/toolscout/internal/export"
)

const (
	DefaultConfigDir  = ".toolscout"
	DefaultConfigName = "toolscout"
	DefaultCatalogDir = "catalog"
	EnvPrefix         = "TOOLSCOUT"
)

// envKeys are the only settings read from the environment.
var envKeys = []string{
	"logger.level",
	"logger.format",
	"logger.log_file",
	"logger.max_size",
	"logger.max_backups",
	"logger.max_age",
	"logger.compress",
}

type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Scan    ScanConfig    `mapstructure:"scan" yaml:"scan"`
	Catalog CatalogConfig `mapstructure:"catalog" yaml:"catalog"`
}

// LoggerConfig controls log output. Format "auto" picks the console encoder
// on a terminal and JSON otherwise.
type LoggerConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	Format     string `mapstructure:"format" yaml:"format"`
	LogFile    string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize    int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// ScanConfig holds the defaults for the scan command's flags.
type ScanConfig struct {
	Output    string   `mapstructure:"output" yaml:"output"`
	Format    string   `mapstructure:"format" yaml:"format"`
	Workers   int      `mapstructure:"workers" yaml:"workers"`
	Exclude   []string `mapstructure:"exclude" yaml:"exclude"`
	Strict    bool     `mapstructure:"strict" yaml:"strict"`
	CacheSize int      `mapstructure:"cache_size" yaml:"cache_size"`
}

// CatalogConfig locates catalog overlay packs.
type CatalogConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// SetDefaults registers the default value of every setting.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "auto")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 28)
	v.SetDefault("logger.compress", true)

	v.SetDefault("scan.output", "reports")
	v.SetDefault("scan.format", "both")
	v.SetDefault("scan.workers", 4)
	v.SetDefault("scan.exclude", []string{})
	v.SetDefault("scan.strict", false)
	v.SetDefault("scan.cache_size", 2048)

	v.SetDefault("catalog.dir", defaultCatalogDir())
}

func defaultCatalogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, DefaultConfigDir, DefaultCatalogDir)
}

// Load reads configuration into v. cfgFile, when set, must exist; otherwise
// toolscout.yaml is looked up in the working directory and ~/.toolscout.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	_ = godotenv.Load()

	SetDefaults(v)
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, DefaultConfigDir))
		}
	}

	for _, key := range envKeys {
		if err := v.BindEnv(key, EnvVar(key)); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}
	return NewConfigFromViper(v)
}

// EnvVar returns the environment variable for a settings key, for example
// TOOLSCOUT_LOGGER_LEVEL for logger.level.
func EnvVar(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// NewConfigFromViper decodes and validates the settings held by v.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	if _, err := zap.ParseAtomicLevel(c.Logger.Level); err != nil {
		return fmt.Errorf("logger.level: %w", err)
	}
	switch c.Logger.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("logger.format must be auto, console or json, got %q", c.Logger.Format)
	}
	if c.Scan.Workers <= 0 {
		return fmt.Errorf("scan.workers must be a positive integer")
	}
	if _, err := export.ParseFormats(c.Scan.Format); err != nil {
		return fmt.Errorf("scan.format: %w", err)
	}
	if c.Scan.CacheSize <= 0 {
		return fmt.Errorf("scan.cache_size must be a positive integer")
	}
	return nil
}
