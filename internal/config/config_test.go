package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8080 || cfg.Environment != EnvDevelopment {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := Default()
	cfg.Environment = EnvProduction
	cfg.Server.Port = 9090
	cfg.Database.Path = "/var/lib/trackline/data.db"
	cfg.RateLimit.RPS = 10
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Environment != EnvProduction || loaded.Server.Port != 9090 {
		t.Errorf("loaded = %+v", loaded)
	}
	if loaded.Database.Path != "/var/lib/trackline/data.db" {
		t.Errorf("database path = %q", loaded.Database.Path)
	}
	if loaded.RateLimit.RPS != 10 {
		t.Errorf("rps = %v", loaded.RateLimit.RPS)
	}
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 3000\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("port = %d, want 3000", cfg.Server.Port)
	}
	if cfg.Environment != EnvDevelopment {
		t.Errorf("environment default lost: %q", cfg.Environment)
	}
}

func TestAddr(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 8081}
	if got := s.Addr(); got != "127.0.0.1:8081" {
		t.Errorf("addr = %q", got)
	}
}
