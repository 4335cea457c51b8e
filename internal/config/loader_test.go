package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWritesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, resolved, err := Load(nil, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if resolved != path {
		t.Fatalf("resolved path = %s, want %s", resolved, path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("loaded %+v, want defaults %+v", cfg, Default())
	}
}

func TestLoadFileAndEnvPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.yaml")
	data := []byte("addr: \":9000\"\nclients_per_worker: 7\nwrite_timeout: 2s\nlog_level: debug\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("WIRERELAY_ADDR", ":9100")
	t.Setenv("WIRERELAY_WORKERS", "3")

	cfg, _, err := Load(nil, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Addr != ":9100" {
		t.Errorf("addr = %q, env should win over file", cfg.Addr)
	}
	if cfg.Workers != 3 {
		t.Errorf("workers = %d, want 3 from env", cfg.Workers)
	}
	if cfg.ClientsPerWorker != 7 {
		t.Errorf("clients_per_worker = %d, want 7 from file", cfg.ClientsPerWorker)
	}
	if cfg.WriteTimeout != 2*time.Second {
		t.Errorf("write_timeout = %v, want 2s", cfg.WriteTimeout)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log_level = %q, want debug", cfg.LogLevel)
	}
	if cfg.AdminAddr != Default().AdminAddr {
		t.Errorf("admin_addr = %q, want default", cfg.AdminAddr)
	}
}

func TestUpdateFrom(t *testing.T) {
	cfg := Default()
	cfg.UpdateFrom(Config{Addr: ":7000", LogLevel: "warn"})

	if cfg.Addr != ":7000" || cfg.LogLevel != "warn" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.ClientsPerWorker != Default().ClientsPerWorker {
		t.Fatalf("zero override clobbered clients_per_worker")
	}
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("addr: [unterminated\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, err := Load(nil, path); err == nil {
		t.Fatalf("expected error for unparsable config")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "addr: [unterminated\n" {
		t.Fatalf("broken config was overwritten")
	}
}
