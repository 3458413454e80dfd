package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TIMELINE_CONFIG_PATH", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, err := Load(New())
	if err != nil {
		t.Fatal(err)
	}
	home, err := homedir.Dir()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DB != filepath.Join(home, ".timeline", "archive.db") {
		t.Fatalf("expected expanded db path, got %s", cfg.DB)
	}
	if cfg.BackendURL != "http://localhost:9000" || cfg.Addr != ":8080" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	content := "backend_url: http://archive:9000\ntoken: from-file\ntimezone: Europe/Berlin\n"
	if err := os.WriteFile(filepath.Join(dir, ".timeline.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TIMELINE_CONFIG_PATH", dir)
	t.Setenv("TIMELINE_TOKEN", "from-env")
	t.Chdir(t.TempDir())

	v := New()
	cfg, err := Load(v)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BackendURL != "http://archive:9000" {
		t.Fatalf("expected backend from file, got %s", cfg.BackendURL)
	}
	if cfg.Token != "from-env" {
		t.Fatalf("expected env to win, got %s", cfg.Token)
	}
	if cfg.Location.String() != "Europe/Berlin" {
		t.Fatalf("expected Europe/Berlin, got %s", cfg.Location)
	}
	if ConfigFile(v) != filepath.Join(dir, ".timeline.yaml") {
		t.Fatalf("unexpected config file %s", ConfigFile(v))
	}
}

func TestLoadBadTimezone(t *testing.T) {
	t.Setenv("TIMELINE_CONFIG_PATH", t.TempDir())
	t.Setenv("TIMELINE_TIMEZONE", "Mars/Olympus")
	t.Chdir(t.TempDir())
	if _, err := Load(New()); err == nil {
		t.Fatalf("expected an error for an unknown timezone")
	}
}
