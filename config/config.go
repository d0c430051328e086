package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment overrides, e.g. AGRIGPT_SERVER_URL
const EnvPrefix = "AGRIGPT"

// Config represents the application configuration
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Store  StoreConfig  `mapstructure:"store"`
	Chat   ChatConfig   `mapstructure:"chat"`
	UI     UIConfig     `mapstructure:"ui"`
	Log    LogConfig    `mapstructure:"log"`
}

// ServerConfig points at the retrieval backend
type ServerConfig struct {
	URL       string            `mapstructure:"url"`
	Timeout   time.Duration     `mapstructure:"timeout"`
	TextPath  string            `mapstructure:"text_path"`
	ImagePath string            `mapstructure:"image_path"`
	Headers   map[string]string `mapstructure:"headers"` // sent with every request
}

// StoreConfig selects where conversation state is kept
type StoreConfig struct {
	Backend    string      `mapstructure:"backend"`
	Dir        string      `mapstructure:"dir"`
	SQLitePath string      `mapstructure:"sqlite_path"`
	Redis      RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// ChatConfig holds the defaults of a new chat
type ChatConfig struct {
	Language    string `mapstructure:"language"`
	ResultLimit int    `mapstructure:"result_limit"`
}

type UIConfig struct {
	Theme string `mapstructure:"theme"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

var validBackends = map[string]bool{"file": true, "sqlite": true, "redis": true, "memory": true}

// Validate checks values that cannot be fixed up silently
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.URL) == "" {
		return errors.New("server.url must be set")
	}
	if c.Server.Timeout < 0 {
		return fmt.Errorf("server.timeout must not be negative, got %s", c.Server.Timeout)
	}
	if !validBackends[c.Store.Backend] {
		return fmt.Errorf("store.backend %q is not one of file, sqlite, redis, memory", c.Store.Backend)
	}
	if c.Store.Backend == "redis" && c.Store.Redis.Addr == "" {
		return errors.New("store.redis.addr must be set for the redis backend")
	}
	return nil
}

// Manager handles configuration loading and persistence
type Manager struct {
	v          *viper.Viper
	configPath string
}

// DefaultDir returns ~/.agrigpt
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".agrigpt"), nil
}

// NewManager creates a config manager for path. An empty path means
// config.yaml in the default directory.
func NewManager(path string) (*Manager, error) {
	dataDir, err := DefaultDir()
	if err != nil {
		return nil, err
	}
	if path == "" {
		path = filepath.Join(dataDir, "config.yaml")
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, dataDir)

	return &Manager{v: v, configPath: path}, nil
}

func setDefaults(v *viper.Viper, dataDir string) {
	v.SetDefault("server.url", "http://localhost:8000")
	v.SetDefault("server.timeout", 120*time.Second)
	v.SetDefault("server.text_path", "/query")
	v.SetDefault("server.image_path", "/query-image")

	v.SetDefault("store.backend", "file")
	v.SetDefault("store.dir", dataDir)
	v.SetDefault("store.sqlite_path", "")
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.redis.prefix", "agrigpt:")

	v.SetDefault("chat.language", "en")
	v.SetDefault("chat.result_limit", 5)

	v.SetDefault("ui.theme", "field")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}

// Viper exposes the underlying instance so commands can bind flags
func (m *Manager) Viper() *viper.Viper {
	return m.v
}

// Path returns the config file location
func (m *Manager) Path() string {
	return m.configPath
}

// Load reads the config file if it exists, applies env overrides and
// bound flags, and validates the result.
func (m *Manager) Load() (*Config, error) {
	if _, err := os.Stat(m.configPath); err == nil {
		if err := m.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg := &Config{}
	if err := m.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.Store.Dir = expandHome(cfg.Store.Dir)
	if cfg.Store.SQLitePath == "" {
		cfg.Store.SQLitePath = filepath.Join(cfg.Store.Dir, "agrigpt.db")
	}
	if cfg.Log.File == "" {
		cfg.Log.File = filepath.Join(cfg.Store.Dir, "agrigpt.log")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Set updates a single key and writes it to the config file. Only keys
// already in the file plus key are written; defaults, env overrides and
// flags stay out of it.
func (m *Manager) Set(key string, value any) error {
	m.v.Set(key, value)

	onDisk := viper.New()
	onDisk.SetConfigFile(m.configPath)
	onDisk.SetConfigType("yaml")
	if _, err := os.Stat(m.configPath); err == nil {
		if err := onDisk.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to load config: %w", err)
	}
	onDisk.Set(key, value)

	if err := os.MkdirAll(filepath.Dir(m.configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := onDisk.WriteConfigAs(m.configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
