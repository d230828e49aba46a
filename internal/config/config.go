// Package config loads taskdeck settings from ~/.taskdeck/config.yaml with
// environment overrides. Command-line flags are applied on top by the cli package.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const fileName = "config.yaml"

type Config struct {
	APIURL         string        `yaml:"api_url"`
	LoadTimeout    time.Duration `yaml:"load_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout,omitempty"`
	DefaultView    string        `yaml:"default_view"`
	TagPalette     []string      `yaml:"tag_palette,omitempty"`

	// CachePath is the client's SQLite file for the offline list/tag cache and UI state.
	CachePath string `yaml:"cache_path,omitempty"`
	LogFile   string `yaml:"log_file,omitempty"`
	LogLevel  string `yaml:"log_level,omitempty"`

	Server ServerConfig `yaml:"server"`
}

type ServerConfig struct {
	Addr   string `yaml:"addr"`
	DBPath string `yaml:"db_path,omitempty"`
}

// Dir is ~/.taskdeck unless TASKDECK_CONFIG_DIR is set.
func Dir() (string, error) {
	if v := strings.TrimSpace(os.Getenv("TASKDECK_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".taskdeck"), nil
}

func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// Default returns the built-in settings rooted at dir.
func Default(dir string) Config {
	return Config{
		APIURL:      "http://localhost:8000",
		LoadTimeout: 10 * time.Second,
		DefaultView: "today",
		TagPalette:  []string{"#86efac", "#f9a8d4", "#fbbf24", "#60a5fa", "#ec4899"},
		CachePath:   filepath.Join(dir, "cache.sqlite"),
		LogFile:     filepath.Join(dir, "taskdeck.log"),
		LogLevel:    "info",
		Server: ServerConfig{
			Addr:   "127.0.0.1:8000",
			DBPath: filepath.Join(dir, "server.sqlite"),
		},
	}
}

// Load layers defaults, the config file (if present) and environment overrides.
func Load() (Config, error) {
	dir, err := Dir()
	if err != nil {
		return Config{}, err
	}
	cfg := Default(dir)

	b, err := os.ReadFile(filepath.Join(dir, fileName))
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, err
	default:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", fileName, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
		return nil
	}

	str("TASKDECK_API_URL", &c.APIURL)
	str("TASKDECK_DEFAULT_VIEW", &c.DefaultView)
	str("TASKDECK_CACHE_PATH", &c.CachePath)
	str("TASKDECK_LOG_FILE", &c.LogFile)
	str("TASKDECK_LOG_LEVEL", &c.LogLevel)
	str("TASKDECK_SERVER_ADDR", &c.Server.Addr)
	str("TASKDECK_DB_PATH", &c.Server.DBPath)
	if err := dur("TASKDECK_LOAD_TIMEOUT", &c.LoadTimeout); err != nil {
		return err
	}
	return dur("TASKDECK_REQUEST_TIMEOUT", &c.RequestTimeout)
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIURL) == "" {
		return errors.New("config: api_url is empty")
	}
	if c.LoadTimeout <= 0 {
		return errors.New("config: load_timeout must be positive")
	}
	if c.RequestTimeout < 0 {
		return errors.New("config: request_timeout must not be negative")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Save writes cfg to the config file, keeping a .bak of the previous one.
func Save(cfg Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if prev, err := os.ReadFile(path); err == nil && len(prev) > 0 {
		_ = atomicWrite(dir, path+".bak", prev)
	}
	return atomicWrite(dir, path, b)
}

func atomicWrite(dir, path string, b []byte) error {
	f, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
