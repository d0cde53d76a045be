// ABOUTME: Application configuration loaded through viper
// ABOUTME: Layers defaults, a YAML file, .env, CRMDASH_* environment variables and flags
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/harperreed/crmdash/services"
)

const (
	appName   = "crmdash"
	envPrefix = "CRMDASH"

	KeyLogLevel       = "log.level"
	KeyLogFile        = "log.file"
	KeyBackend        = "store.backend"
	KeySeedDir        = "seed.dir"
	KeyLatencyEnabled = "latency.enabled"
	KeyLatencyGetAll  = "latency.get_all"
	KeyLatencyGetByID = "latency.get_by_id"
	KeyLatencyCreate  = "latency.create"
	KeyLatencyUpdate  = "latency.update"
	KeyLatencyDelete  = "latency.delete"
	KeyWebAddr        = "web.addr"
	KeyToastTTL       = "ui.toast_ttl"
)

const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

type Config struct {
	Log     LogConfig
	Store   StoreConfig
	Seed    SeedConfig
	Latency LatencyConfig
	Web     WebConfig
	UI      UIConfig
}

type LogConfig struct {
	Level string
	File  string
}

type StoreConfig struct {
	// Backend is memory or sqlite.
	Backend string
}

type SeedConfig struct {
	// Dir overrides embedded seed files. Empty means embedded only.
	Dir string
}

type LatencyConfig struct {
	Enabled bool
	services.Latency
}

type WebConfig struct {
	Addr string
}

type UIConfig struct {
	ToastTTL time.Duration
}

// DefaultConfigPath is $XDG_CONFIG_HOME/crmdash/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.yaml")
}

// DefaultLogFile is where the TUI writes its log.
func DefaultLogFile() string {
	return filepath.Join(xdg.StateHome, appName, appName+".log")
}

func setDefaults(v *viper.Viper) {
	lat := services.DefaultLatency()
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFile, DefaultLogFile())
	v.SetDefault(KeyBackend, BackendMemory)
	v.SetDefault(KeySeedDir, "")
	v.SetDefault(KeyLatencyEnabled, true)
	v.SetDefault(KeyLatencyGetAll, lat.GetAll)
	v.SetDefault(KeyLatencyGetByID, lat.GetByID)
	v.SetDefault(KeyLatencyCreate, lat.Create)
	v.SetDefault(KeyLatencyUpdate, lat.Update)
	v.SetDefault(KeyLatencyDelete, lat.Delete)
	v.SetDefault(KeyWebAddr, "localhost:8080")
	v.SetDefault(KeyToastTTL, 3*time.Second)
}

// Load resolves configuration. path is an explicit config file, which must
// exist; when empty the default path is read if present. flags may be nil;
// only flags the user changed override other sources.
func Load(path string, flags map[string]*pflag.Flag) (*Config, error) {
	// A missing .env is normal.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := readFile(v, path); err != nil {
		return nil, err
	}

	for key, flag := range flags {
		if flag == nil || !flag.Changed {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", flag.Name, err)
		}
	}

	cfg := &Config{
		Log: LogConfig{
			Level: v.GetString(KeyLogLevel),
			File:  v.GetString(KeyLogFile),
		},
		Store: StoreConfig{Backend: strings.ToLower(v.GetString(KeyBackend))},
		Seed:  SeedConfig{Dir: v.GetString(KeySeedDir)},
		Latency: LatencyConfig{
			Enabled: v.GetBool(KeyLatencyEnabled),
			Latency: services.Latency{
				GetAll:  v.GetDuration(KeyLatencyGetAll),
				GetByID: v.GetDuration(KeyLatencyGetByID),
				Create:  v.GetDuration(KeyLatencyCreate),
				Update:  v.GetDuration(KeyLatencyUpdate),
				Delete:  v.GetDuration(KeyLatencyDelete),
			},
		},
		Web: WebConfig{Addr: v.GetString(KeyWebAddr)},
		UI:  UIConfig{ToastTTL: v.GetDuration(KeyToastTTL)},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readFile(v *viper.Viper, path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
		if _, err := os.Stat(path); err != nil {
			return nil
		}
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return nil
}

// Validate rejects values the application cannot run with.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendSQLite:
	default:
		return fmt.Errorf("invalid %s %q: want %s or %s", KeyBackend, c.Store.Backend, BackendMemory, BackendSQLite)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid %s %q", KeyLogLevel, c.Log.Level)
	}

	for key, d := range map[string]time.Duration{
		KeyLatencyGetAll:  c.Latency.GetAll,
		KeyLatencyGetByID: c.Latency.GetByID,
		KeyLatencyCreate:  c.Latency.Create,
		KeyLatencyUpdate:  c.Latency.Update,
		KeyLatencyDelete:  c.Latency.Delete,
	} {
		if d < 0 {
			return fmt.Errorf("invalid %s: must not be negative", key)
		}
	}

	if c.UI.ToastTTL <= 0 {
		return fmt.Errorf("invalid %s: must be positive", KeyToastTTL)
	}
	return nil
}
