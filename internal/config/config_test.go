package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ARK_TEMPERATURE", "MEMORY_WINDOW", "MEMORY_HISTORY_LIMIT", "TURN_TIMEOUT_SECONDS", "FORMAT_RETRIES", "MEMORY_POLICY"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	if cfg.Server.Addr != ":3000" {
		t.Fatalf("unexpected addr: %s", cfg.Server.Addr)
	}
	if cfg.AI.Temperature == nil || *cfg.AI.Temperature != 0.7 {
		t.Fatalf("expected default temperature 0.7, got %v", cfg.AI.Temperature)
	}
	if cfg.Memory.WindowSize != 2 || cfg.Memory.HistoryLimit != 20 {
		t.Fatalf("unexpected memory defaults: %+v", cfg.Memory)
	}
	if cfg.Memory.TurnTimeout != 30*time.Second || cfg.Memory.FormatRetries != 1 {
		t.Fatalf("unexpected turn defaults: %+v", cfg.Memory)
	}
	if cfg.Memory.PolicyID != "digest" {
		t.Fatalf("unexpected policy: %s", cfg.Memory.PolicyID)
	}
}

func TestLoadMemoryOverrides(t *testing.T) {
	t.Setenv("MEMORY_WINDOW", "4")
	t.Setenv("MEMORY_HISTORY_LIMIT", "1")
	t.Setenv("TURN_TIMEOUT_SECONDS", "5")
	t.Setenv("FORMAT_RETRIES", "9")

	mem, err := loadMemoryConfig()
	if err != nil {
		t.Fatalf("loadMemoryConfig err: %v", err)
	}
	if mem.WindowSize != 4 {
		t.Fatalf("expected window 4, got %d", mem.WindowSize)
	}
	if mem.HistoryLimit != 4 {
		t.Fatalf("history limit must not drop below window, got %d", mem.HistoryLimit)
	}
	if mem.TurnTimeout != 5*time.Second {
		t.Fatalf("expected 5s timeout, got %s", mem.TurnTimeout)
	}
	if mem.FormatRetries != 2 {
		t.Fatalf("retries must be clamped to 2, got %d", mem.FormatRetries)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("MEMORY_WINDOW", "two")
	if _, err := loadMemoryConfig(); err == nil {
		t.Fatal("expected error for non-numeric window")
	}

	t.Setenv("MEMORY_WINDOW", "-1")
	if _, err := loadMemoryConfig(); err == nil {
		t.Fatal("expected error for negative window")
	}
}

func TestLoadServerConfigAcceptsHostPort(t *testing.T) {
	t.Setenv("PORT", "127.0.0.1:9000")
	server, err := loadServerConfig()
	if err != nil {
		t.Fatalf("loadServerConfig err: %v", err)
	}
	if server.Addr != "127.0.0.1:9000" {
		t.Fatalf("unexpected addr: %s", server.Addr)
	}

	t.Setenv("PORT", "80 80")
	if _, err := loadServerConfig(); err == nil {
		t.Fatal("expected error for PORT with spaces")
	}
}

func TestAIConfigEnabled(t *testing.T) {
	if (AIConfig{APIKey: "k"}).Enabled() {
		t.Fatal("model is required")
	}
	if !(AIConfig{APIKey: "k", Model: "ep-1"}).Enabled() {
		t.Fatal("api key + model should enable AI")
	}
	if !(AIConfig{AccessKey: "ak", SecretKey: "sk", Model: "ep-1"}).Enabled() {
		t.Fatal("ak/sk + model should enable AI")
	}
}
