// ABOUTME: Tests for configuration loading
// ABOUTME: Covers defaults, YAML files, environment overrides, flags and validation
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/crmdash/services"
)

// isolate points XDG and the working directory at empty temp dirs.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	xdg.Reload()
	t.Cleanup(xdg.Reload)
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadDefaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, filepath.Join(dir, "state", "crmdash", "crmdash.log"), cfg.Log.File)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Empty(t, cfg.Seed.Dir)
	assert.True(t, cfg.Latency.Enabled)
	assert.Equal(t, services.DefaultLatency(), cfg.Latency.Latency)
	assert.Equal(t, "localhost:8080", cfg.Web.Addr)
	assert.Equal(t, 3*time.Second, cfg.UI.ToastTTL)
}

func TestLoadDefaultPathFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "config", "crmdash", "config.yaml"), `
store:
  backend: sqlite
latency:
  get_all: 50ms
`)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, cfg.Store.Backend)
	assert.Equal(t, 50*time.Millisecond, cfg.Latency.GetAll)
	assert.Equal(t, services.DefaultLatency().Create, cfg.Latency.Create)
}

func TestLoadExplicitFileMustExist(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "crm.yaml")
	writeFile(t, path, "web:\n  addr: \":9000\"\nlog:\n  level: debug\n")
	t.Setenv("CRMDASH_WEB_ADDR", ":9100")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, ":9100", cfg.Web.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestDotEnvIsLoaded(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ".env"), "CRMDASH_UI_TOAST_TTL=5s\n")
	t.Cleanup(func() { os.Unsetenv("CRMDASH_UI_TOAST_TTL") })

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.UI.ToastTTL)
}

func TestChangedFlagsWin(t *testing.T) {
	isolate(t)
	t.Setenv("CRMDASH_STORE_BACKEND", "sqlite")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("backend", "memory", "")
	fs.String("log-level", "info", "")
	require.NoError(t, fs.Parse([]string{"--log-level", "warn"}))

	cfg, err := Load("", map[string]*pflag.Flag{
		KeyBackend:  fs.Lookup("backend"),
		KeyLogLevel: fs.Lookup("log-level"),
	})
	require.NoError(t, err)

	// backend was not passed, so the environment still applies
	assert.Equal(t, BackendSQLite, cfg.Store.Backend)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Log:     LogConfig{Level: "info"},
			Store:   StoreConfig{Backend: BackendMemory},
			Latency: LatencyConfig{Enabled: true, Latency: services.DefaultLatency()},
			UI:      UIConfig{ToastTTL: time.Second},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Store.Backend = "postgres" }},
		{"unknown level", func(c *Config) { c.Log.Level = "loud" }},
		{"negative latency", func(c *Config) { c.Latency.Update = -time.Millisecond }},
		{"zero toast ttl", func(c *Config) { c.UI.ToastTTL = 0 }},
	}

	require.NoError(t, valid().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
