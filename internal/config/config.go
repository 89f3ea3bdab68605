// Package config loads palette settings from ~/.palette/config.yaml and
// PALETTE_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the persistent application configuration
type Config struct {
	DataDir       string              `mapstructure:"data_dir"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Conversations ConversationsConfig `mapstructure:"conversations"`
	Workspace     WorkspaceConfig     `mapstructure:"workspace"`
	UI            UIConfig            `mapstructure:"ui"`
	Log           LogConfig           `mapstructure:"log"`
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// ConversationsConfig selects where conversations come from.
// When File is set it takes precedence over the database.
type ConversationsConfig struct {
	File  string `mapstructure:"file"`
	Limit int    `mapstructure:"limit"`
}

// WorkspaceConfig describes the working directory used by the diff viewer
// when the active conversation has none.
type WorkspaceConfig struct {
	Cwd string `mapstructure:"cwd"`
}

// UIConfig holds UI preferences
type UIConfig struct {
	MaxVisible    int           `mapstructure:"max_visible"`
	WatchInterval time.Duration `mapstructure:"watch_interval"`
	Watch         bool          `mapstructure:"watch"`
}

// LogConfig holds logging preferences.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DefaultDataDir returns ~/.palette, or .palette when the home directory is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".palette"
	}
	return filepath.Join(home, ".palette")
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	if p := os.Getenv("PALETTE_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(DefaultDataDir(), "config.yaml")
}

func newViper() *viper.Viper {
	v := viper.New()

	dataDir := DefaultDataDir()
	v.SetDefault("data_dir", dataDir)
	v.SetDefault("database.path", "")
	v.SetDefault("conversations.file", "")
	v.SetDefault("conversations.limit", 200)
	v.SetDefault("workspace.cwd", "")
	v.SetDefault("ui.max_visible", 8)
	v.SetDefault("ui.watch_interval", "250ms")
	v.SetDefault("ui.watch", true)
	v.SetDefault("log.level", "info")

	v.SetConfigType("yaml")
	v.SetConfigFile(ConfigPath())

	v.SetEnvPrefix("PALETTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads config from disk and environment. A missing file is not an
// error; a malformed one is.
func Load() (*Config, error) {
	v := newViper()

	if err := v.ReadInConfig(); err != nil && !os.IsNotExist(err) {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.applyDerived()
	return &cfg, nil
}

// applyDerived fills paths that depend on other settings.
func (c *Config) applyDerived() {
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir()
	}
	if c.Database.Path == "" {
		c.Database.Path = filepath.Join(c.DataDir, "palette.db")
	}
	if c.UI.MaxVisible <= 0 {
		c.UI.MaxVisible = 8
	}
}

// Save writes the config to ConfigPath, creating the directory if needed.
func (c *Config) Save() error {
	path := ConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.Set("data_dir", c.DataDir)
	v.Set("database.path", c.Database.Path)
	v.Set("conversations.file", c.Conversations.File)
	v.Set("conversations.limit", c.Conversations.Limit)
	v.Set("workspace.cwd", c.Workspace.Cwd)
	v.Set("ui.max_visible", c.UI.MaxVisible)
	v.Set("ui.watch_interval", c.UI.WatchInterval.String())
	v.Set("ui.watch", c.UI.Watch)
	v.Set("log.level", c.Log.Level)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
