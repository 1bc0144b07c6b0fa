// Package config reads git-autosnap settings the way the teacher repo's
// internal/config does: spf13/viper layered over defaults, with an
// explicit allow-list of environment variables (never AutomaticEnv,
// per the teacher's own documented fix for unbounded env injection).
//
// The two keys spec.md names (autosnap.debounce-ms, autosnap.gc.prune-days)
// are additionally read from the host VCS's own hierarchical config
// (local > user > system) via Manager.vcsInt, since those two are meant
// to live alongside a developer's other `git config` settings rather than
// in a YAML file of their own.
package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete set of ambient settings this repo adds beyond
// the two VCS-config keys spec.md mandates.
type Config struct {
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Watcher WatcherConfig `mapstructure:"watcher" yaml:"watcher"`
	GC      GCConfig      `mapstructure:"gc" yaml:"gc"`
	UI      UIConfig      `mapstructure:"ui" yaml:"ui"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error"`
}

// WatcherConfig mirrors spec.md §6's autosnap.debounce-ms; the debounce
// window is its only field.
type WatcherConfig struct {
	DebounceMS int `mapstructure:"debounce_ms" yaml:"debounce_ms" validate:"min=1"`
}

// GCConfig mirrors spec.md §6's autosnap.gc.prune-days.
type GCConfig struct {
	PruneDays int `mapstructure:"prune_days" yaml:"prune_days" validate:"min=0"`
}

type UIConfig struct {
	ColorOutput bool `mapstructure:"color_output" yaml:"color_output"`
}

const (
	DefaultDebounceMS = 1000
	DefaultPruneDays  = 60
)

// Manager owns configuration loading and the VCS-config fallback for the
// two spec-mandated keys.
type Manager struct {
	v      *viper.Viper
	config *Config
	vcsDir string // path to the primary VCS metadata directory, for `git --git-dir=...` config reads
}

func NewManager() *Manager {
	v := viper.New()
	setDefaults(v)
	return &Manager{v: v, config: &Config{}}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("watcher.debounce_ms", DefaultDebounceMS)
	v.SetDefault("gc.prune_days", DefaultPruneDays)
	v.SetDefault("ui.color_output", true)
}

// Load reads YAML config from the project root / user config dir / system
// dir (teacher's precedence order), binds the allow-listed env vars, then
// unmarshals and validates. vcsDir, if non-empty, is used afterward by
// DebounceMS/PruneDays to prefer the host VCS's own config.
func (m *Manager) Load(projectRoot, vcsDir string) error {
	m.vcsDir = vcsDir

	m.v.SetConfigName("autosnap")
	m.v.SetConfigType("yaml")

	if projectRoot != "" {
		m.v.AddConfigPath(projectRoot)
		snapDir := filepath.Join(projectRoot, ".autosnap")
		if info, err := os.Stat(snapDir); err == nil && info.IsDir() {
			m.v.AddConfigPath(snapDir)
		}
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		m.v.AddConfigPath(filepath.Join(userConfigDir, "autosnap"))
	}
	m.v.AddConfigPath("/etc/autosnap")

	m.bindEnv()

	if err := m.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read config file: %w", err)
		}
	}

	if err := m.v.Unmarshal(m.config); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	if err := Validate(m.config); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	return nil
}

// bindEnv binds only the explicitly allowed AUTOSNAP_* variables, mirroring
// the teacher's security-motivated allow-list rather than AutomaticEnv.
func (m *Manager) bindEnv() {
	allowed := map[string]string{
		"AUTOSNAP_LOG_LEVEL":     "log.level",
		"AUTOSNAP_DEBOUNCE_MS":   "watcher.debounce_ms",
		"AUTOSNAP_GC_PRUNE_DAYS": "gc.prune_days",
		"AUTOSNAP_UI_COLOR":      "ui.color_output",
	}
	for env, key := range allowed {
		m.v.BindEnv(key, env)
	}
}

func (m *Manager) Get() *Config { return m.config }

// DebounceMS resolves the watcher debounce window, preferring the host
// VCS's own config over the YAML/env-sourced value, per spec.md §6's
// "local > user > system" precedence living inside that tool's config.
func (m *Manager) DebounceMS() int {
	if v, ok := m.vcsInt("autosnap.debounce-ms"); ok {
		return v
	}
	return m.config.Watcher.DebounceMS
}

// PruneDays resolves the GC retention horizon the same way.
func (m *Manager) PruneDays() int {
	if v, ok := m.vcsInt("autosnap.gc.prune-days"); ok {
		return v
	}
	return m.config.GC.PruneDays
}

func (m *Manager) vcsInt(key string) (int, bool) {
	if m.vcsDir == "" {
		return 0, false
	}
	cmd := exec.Command("git", "--git-dir="+m.vcsDir, "config", "--get", key)
	out, err := cmd.Output()
	if err != nil {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(out)))
	if err != nil {
		return 0, false
	}
	return n, true
}

// DebounceDuration is a convenience wrapper used by the watcher.
func (m *Manager) DebounceDuration() time.Duration {
	return time.Duration(m.DebounceMS()) * time.Millisecond
}
