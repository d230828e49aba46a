package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TASKDECK_CONFIG_DIR", dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "http://localhost:8000" || cfg.LoadTimeout != 10*time.Second {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.CachePath != filepath.Join(dir, "cache.sqlite") {
		t.Fatalf("cache path not rooted in config dir: %q", cfg.CachePath)
	}
	if len(cfg.TagPalette) != 5 {
		t.Fatalf("expected default palette, got %v", cfg.TagPalette)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TASKDECK_CONFIG_DIR", dir)
	yml := []byte(`api_url: http://tasks.internal:9000
load_timeout: 3s
default_view: upcoming
server:
  addr: ":9000"
`)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), yml, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "http://tasks.internal:9000" || cfg.LoadTimeout != 3*time.Second || cfg.DefaultView != "upcoming" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Server.Addr != ":9000" {
		t.Fatalf("nested value not applied: %+v", cfg.Server)
	}
	if cfg.Server.DBPath != filepath.Join(dir, "server.sqlite") {
		t.Fatalf("unset nested value should keep its default: %q", cfg.Server.DBPath)
	}

	t.Setenv("TASKDECK_API_URL", "http://override:1")
	t.Setenv("TASKDECK_LOAD_TIMEOUT", "250ms")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "http://override:1" || cfg.LoadTimeout != 250*time.Millisecond {
		t.Fatalf("env did not win over file: %+v", cfg)
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	t.Setenv("TASKDECK_CONFIG_DIR", t.TempDir())
	t.Setenv("TASKDECK_LOAD_TIMEOUT", "soon")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for bad duration")
	}

	t.Setenv("TASKDECK_LOAD_TIMEOUT", "")
	t.Setenv("TASKDECK_LOG_LEVEL", "loud")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for bad log level")
	}
}

func TestSave_RoundTripWithBackup(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TASKDECK_CONFIG_DIR", dir)

	cfg := Default(dir)
	cfg.DefaultView = "calendar"
	if err := Save(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	cfg.DefaultView = "upcoming"
	if err := Save(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.yaml.bak")); err != nil {
		t.Fatalf("expected backup: %v", err)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.DefaultView != "upcoming" || got.LoadTimeout != cfg.LoadTimeout {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestOpenLogFile_FallsBackToDiscard(t *testing.T) {
	l, c := OpenLogFile("", "debug")
	defer c.Close()
	l.Info("dropped")

	path := filepath.Join(t.TempDir(), "logs", "taskdeck.log")
	l, c = OpenLogFile(path, "info")
	l.Info("hello", "k", "v")
	_ = c.Close()
	b, err := os.ReadFile(path)
	if err != nil || len(b) == 0 {
		t.Fatalf("expected log output, err=%v", err)
	}
}
