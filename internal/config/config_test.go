package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Store.Path != "./data/tasks.db" {
		t.Errorf("Store.Path = %q", cfg.Store.Path)
	}
	if cfg.Store.Bucket != "tasks" {
		t.Errorf("Store.Bucket = %q", cfg.Store.Bucket)
	}
	if cfg.Outbox.ScanInterval != 30*time.Second {
		t.Errorf("Outbox.ScanInterval = %v", cfg.Outbox.ScanInterval)
	}
	if cfg.Address() != "127.0.0.1:8080" {
		t.Errorf("Address = %q", cfg.Address())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_PATH", "/tmp/alt.db")
	t.Setenv("OUTBOX_ENABLED", "false")
	t.Setenv("OUTBOX_SCAN_INTERVAL", "90")
	t.Setenv("SESSION_TTL", "1h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Store.Path != "/tmp/alt.db" {
		t.Errorf("Store.Path = %q", cfg.Store.Path)
	}
	if cfg.Outbox.Enabled {
		t.Error("Outbox.Enabled should be false")
	}
	// bare integers are seconds
	if cfg.Outbox.ScanInterval != 90*time.Second {
		t.Errorf("Outbox.ScanInterval = %v", cfg.Outbox.ScanInterval)
	}
	if cfg.JWT.SessionTTL != time.Hour {
		t.Errorf("JWT.SessionTTL = %v", cfg.JWT.SessionTTL)
	}
}
