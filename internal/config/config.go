// Package config loads lxhkd's YAML configuration file (spec.md §6).
// Loading, defaulting, and atomic saving follow the same shape palaver
// uses for its TOML config: a Default() constructor, a Load(path) that
// tolerates a missing file, and an atomic Save.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// defaultTimeoutMs is the chain timeout default, spec.md §6: "timeout:
// <millis, optional, default 300>".
const defaultTimeoutMs = 300

// Config is the top-level configuration file (spec.md §6).
type Config struct {
	Shell                string            `yaml:"shell,omitempty"`
	TimeoutMs            int               `yaml:"timeout,omitempty"`
	AutorepeatDelayMs    int               `yaml:"autorepeat-delay,omitempty"`
	AutorepeatIntervalMs int               `yaml:"autorepeat-interval,omitempty"`
	XcapeTimeoutSec      int               `yaml:"xcape-timeout,omitempty"`
	Bindings             OrderedMap        `yaml:"bindings,omitempty"`
	Remaps               OrderedMap        `yaml:"remaps,omitempty"`
	Xcape                OrderedMap        `yaml:"xcape,omitempty"`
}

// Default returns a Config populated with every documented default
// (spec.md §6).
func Default() *Config {
	return &Config{
		TimeoutMs: defaultTimeoutMs,
	}
}

// DefaultPath returns ~/.config/lxhkd/lxhkd.yml, matching
// original_source/src/config.rs's CONFIG_FILE ("lxhkd.yml") joined under
// ~/.config. XDG_CONFIG_HOME is not consulted.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "lxhkd", "lxhkd.yml")
}

// Load reads the YAML config from path, applying ApplyEnv overrides
// afterward. If the file does not exist, the default config is returned
// without error -- spec.md §7 does not list a missing user config as
// fatal, only a malformed one.
func Load(path string) (*Config, error) {
	cfg := Default()

	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		ApplyEnv(cfg)
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.TimeoutMs == 0 {
		cfg.TimeoutMs = defaultTimeoutMs
	}
	ApplyEnv(cfg)
	return cfg, nil
}

// ApplyEnv layers LXHKD_XCAPE_TIMEOUT over whatever the config file set,
// per spec.md §6's environment table.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv("LXHKD_XCAPE_TIMEOUT"); v != "" {
		if secs, ok := parsePositiveInt(v); ok {
			cfg.XcapeTimeoutSec = secs
		}
	}
}

func parsePositiveInt(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

// Save writes cfg as YAML to path, creating parent directories as
// needed. The write is atomic: data lands in a temp file in the same
// directory, fsynced, then renamed into place, so a crash mid-write
// cannot corrupt an existing config. The daemon itself never calls it;
// -t does not write the config.
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".lxhkd-config-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	enc := yaml.NewEncoder(tmp)
	if err := enc.Encode(cfg); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := enc.Close(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}

// Timeout returns the configured chain timeout in milliseconds, falling
// back to the documented default.
func (c *Config) Timeout() int {
	if c.TimeoutMs <= 0 {
		return defaultTimeoutMs
	}
	return c.TimeoutMs
}
