package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetDefaults(t *testing.T) {
	t.Parallel()

	v := viper.New()
	SetDefaults(v)

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))

	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.False(t, cfg.Strict)
	assert.Equal(t, DefaultWorkers, cfg.Workers)
	assert.Equal(t, DefaultExclusions, cfg.Exclude)

	assert.True(t, cfg.Cache.Enabled)
	assert.NotEmpty(t, cfg.Cache.Path)

	assert.True(t, cfg.AuditLog.Enabled)
	assert.NotEmpty(t, cfg.AuditLog.Path)
	assert.Equal(t, DefaultRetentionDays, cfg.AuditLog.RetentionDays)

	assert.Equal(t, DefaultLogLevel, cfg.Logging.Level)
}

func TestLoad_ConfigFile(t *testing.T) {
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)

	dir := filepath.Join(configHome, "attic")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	content := []byte("output: json\nstrict: true\nworkers: 4\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Output)
	assert.True(t, cfg.Strict)
	assert.Equal(t, 4, cfg.Workers)
	// Unspecified keys keep their defaults.
	assert.True(t, cfg.Cache.Enabled)
}

func TestSetupViper_ExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output: json\n"), 0o644))

	v := viper.New()
	SetupViper(v, path)
	require.NoError(t, v.ReadInConfig())

	assert.Equal(t, "json", v.GetString("output"))
	// Defaults are still registered alongside the explicit file.
	assert.Equal(t, DefaultLogLevel, v.GetString("logging.level"))
}

func TestLoad_NoConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultOutput, cfg.Output)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("ATTIC_OUTPUT", "pretty")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "pretty", cfg.Output)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "bare tilde", in: "~", want: home},
		{name: "tilde prefix", in: "~/archive", want: filepath.Join(home, "archive")},
		{name: "absolute untouched", in: "/var/data", want: "/var/data"},
		{name: "relative untouched", in: "data", want: "data"},
		{name: "tilde mid-path untouched", in: "/a/~/b", want: "/a/~/b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandPath(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
