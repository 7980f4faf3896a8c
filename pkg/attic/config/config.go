package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Components map[string]string `mapstructure:"components"`
}

// CacheConfig configures the fingerprint cache.
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// AuditLogConfig configures the per-run history log.
type AuditLogConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Path          string `mapstructure:"path"`
	RetentionDays int    `mapstructure:"retention_days"`
}

// Config represents the application configuration.
type Config struct {
	Output   string         `mapstructure:"output"`
	Strict   bool           `mapstructure:"strict"`
	Workers  int            `mapstructure:"workers"`
	Exclude  []string       `mapstructure:"exclude"`
	Cache    CacheConfig    `mapstructure:"cache"`
	AuditLog AuditLogConfig `mapstructure:"auditlog"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// SetupViper configures a viper instance with the attic config file search
// path, the ATTIC_ environment binding, and the defaults. An explicit cfgFile
// replaces the search path. The CLI calls this against its global viper;
// Load uses it for library consumers.
//
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/attic/config.yaml
//   - $HOME/.config/attic/config.yaml
func SetupViper(v *viper.Viper, cfgFile string) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			v.AddConfigPath(filepath.Join(xdgConfigHome, "attic"))
		}
		if homeDir, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(homeDir, ".config", "attic"))
		}
	}

	v.SetEnvPrefix("ATTIC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	SetDefaults(v)
}

// Load loads configuration from file and environment variables into a Config.
func Load() (*Config, error) {
	v := viper.New()
	SetupViper(v, "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// SetDefaults registers default values on a viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("output", DefaultOutput)
	v.SetDefault("strict", false)
	v.SetDefault("workers", DefaultWorkers)
	v.SetDefault("exclude", DefaultExclusions)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.path", DefaultCachePath())

	v.SetDefault("auditlog.enabled", true)
	v.SetDefault("auditlog.path", DefaultAuditLogPath())
	v.SetDefault("auditlog.retention_days", DefaultRetentionDays)

	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.components", map[string]string{})
}

// DefaultCachePath returns the XDG cache location for the fingerprint cache.
func DefaultCachePath() string {
	return filepath.Join(xdg.CacheHome, "attic", "fingerprints")
}

// DefaultAuditLogPath returns the XDG state location for audit-log entries.
func DefaultAuditLogPath() string {
	return filepath.Join(xdg.StateHome, "attic", "history")
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}
