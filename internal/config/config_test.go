package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"API_KEY", "API_KEY_SECRET", "ACCESS_TOKEN", "ACCESS_TOKEN_SECRET",
		"SHOMAR_STATE_DIR", "SHOMAR_START_DATE", "SHOMAR_MAX_COUNTER",
		"SHOMAR_TELEGRAM_TOKEN", "SHOMAR_TELEGRAM_CHAT_ID", "SHOMAR_HISTORY_DB",
	} {
		t.Setenv(key, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Bot.StartDate != DefaultStartDate {
		t.Errorf("startDate = %q, want %q", cfg.Bot.StartDate, DefaultStartDate)
	}
	if cfg.Bot.MinCounter != 1 || cfg.Bot.MaxCounter != 1000 {
		t.Errorf("counters = %d..%d, want 1..1000", cfg.Bot.MinCounter, cfg.Bot.MaxCounter)
	}
	if cfg.Bot.CooldownMinutes != 16 {
		t.Errorf("cooldownMinutes = %d, want 16", cfg.Bot.CooldownMinutes)
	}
	if cfg.Bot.PageSize != 50 {
		t.Errorf("pageSize = %d, want 50", cfg.Bot.PageSize)
	}
	if cfg.Bot.TerminalText != "هزارتو" {
		t.Errorf("terminalText = %q", cfg.Bot.TerminalText)
	}
	if cfg.Bot.StateDir != "." {
		t.Errorf("stateDir = %q, want .", cfg.Bot.StateDir)
	}
}

func TestBotConfig_Start(t *testing.T) {
	start, err := DefaultConfig().Bot.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	want := time.Date(2025, time.March, 18, 0, 0, 0, 0, time.UTC)
	if !start.Equal(want) {
		t.Errorf("start = %v, want %v", start, want)
	}

	bad := BotConfig{StartDate: "18-03-2025"}
	if _, err := bad.Start(); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestBotConfig_Cooldown(t *testing.T) {
	b := BotConfig{CooldownMinutes: 16}
	if b.Cooldown() != 16*time.Minute {
		t.Errorf("cooldown = %v", b.Cooldown())
	}
}

func TestLoadConfig_NoFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	clearEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Bot.MaxCounter != DefaultMaxCounter {
		t.Errorf("maxCounter = %d, want default", cfg.Bot.MaxCounter)
	}
}

func TestLoadConfig_FileAndEnvOverride(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	clearEnv(t)

	dir := filepath.Join(home, ".shomar")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	fileCfg := map[string]any{
		"bot":     map[string]any{"maxCounter": 500, "stateDir": "/var/lib/shomar"},
		"twitter": map[string]any{"apiKey": "from-file"},
	}
	data, _ := json.Marshal(fileCfg)
	if err := os.WriteFile(filepath.Join(dir, "config.json"), data, 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("API_KEY", "from-env")
	t.Setenv("SHOMAR_MAX_COUNTER", "750")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Twitter.APIKey != "from-env" {
		t.Errorf("apiKey = %q, env should win", cfg.Twitter.APIKey)
	}
	if cfg.Bot.MaxCounter != 750 {
		t.Errorf("maxCounter = %d, env should win over file", cfg.Bot.MaxCounter)
	}
	if cfg.Bot.StateDir != "/var/lib/shomar" {
		t.Errorf("stateDir = %q, file value should apply", cfg.Bot.StateDir)
	}
}

func TestLoadConfig_HistoryEnvEnables(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	clearEnv(t)
	t.Setenv("SHOMAR_HISTORY_DB", "/tmp/shomar-history.db")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !cfg.History.Enabled || cfg.History.DBPath != "/tmp/shomar-history.db" {
		t.Errorf("history = %+v", cfg.History)
	}
}

func TestSaveAndReload(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	clearEnv(t)

	cfg := DefaultConfig()
	cfg.Twitter.AccessToken = "tok"
	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.Twitter.AccessToken != "tok" {
		t.Errorf("accessToken = %q", loaded.Twitter.AccessToken)
	}
}
