package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "creativehub.yaml")
	body := "port: \"9090\"\nkafka_brokers:\n  - localhost:9092\ncookie_secure: true\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := defaults()
	if err := LoadFile(path, &cfg); err != nil {
		t.Fatalf("load file: %v", err)
	}
	if cfg.Port != "9090" || !cfg.CookieSecure {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if len(cfg.KafkaBrokers) != 1 || cfg.KafkaBrokers[0] != "localhost:9092" {
		t.Fatalf("brokers not parsed: %v", cfg.KafkaBrokers)
	}
	if cfg.DBDSN != "creativehub.db" {
		t.Fatalf("default DSN lost: %q", cfg.DBDSN)
	}
}

func TestLoadEnvWinsOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "creativehub.yaml")
	if err := os.WriteFile(path, []byte("port: \"9090\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7070")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092")
	t.Setenv("SEED_DEMO", "false")

	cfg := Load()
	if cfg.Port != "7070" {
		t.Fatalf("env PORT should win, got %q", cfg.Port)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "b:9092" {
		t.Fatalf("brokers: %v", cfg.KafkaBrokers)
	}
	if cfg.SeedDemo {
		t.Fatal("SEED_DEMO=false not applied")
	}
}

func TestLoadFileMissing(t *testing.T) {
	cfg := defaults()
	if err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"), &cfg); err == nil {
		t.Fatal("expected error for missing file")
	}
}
