// Package config handles ConstructERP settings and the persisted login session.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config holds all ConstructERP configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Service    ServiceConfig    `toml:"service"`
	Server     ServerConfig     `toml:"server"`
	Appearance AppearanceConfig `toml:"appearance"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	SeedFile string `toml:"seed_file,omitempty"`
	LogLevel string `toml:"log_level"`
}

// ServiceConfig controls the mock data service.
type ServiceConfig struct {
	SimulateLatency bool    `toml:"simulate_latency"`
	LatencyScale    float64 `toml:"latency_scale"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr         string `toml:"addr"`
	EventsBuffer int    `toml:"events_buffer"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			LogLevel: "warn",
		},
		Service: ServiceConfig{
			SimulateLatency: true,
			LatencyScale:    1.0,
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8787",
			EventsBuffer: 200,
		},
		Appearance: AppearanceConfig{
			Theme: "slate",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "constructerp")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "constructerp")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
// Environment overrides are applied last.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ERP_NO_LATENCY"); v != "" {
		if off, err := strconv.ParseBool(v); err == nil {
			cfg.Service.SimulateLatency = !off
		}
	}
	if v := os.Getenv("ERP_SEED_FILE"); v != "" {
		cfg.General.SeedFile = v
	}
	if v := os.Getenv("ERP_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if cfg.Service.LatencyScale < 0 {
		cfg.Service.LatencyScale = 0
	}
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
