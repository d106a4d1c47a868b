package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	DefaultStartDate       = "2025-03-18"
	DefaultMinCounter      = 1
	DefaultMaxCounter      = 1000
	DefaultCooldownMinutes = 16
	DefaultPageSize        = 50
	DefaultTerminalText    = "هزارتو"
	DefaultTextSuffix      = " تو"
	DefaultCronSpec        = "0 30 6 * * *"
)

type Config struct {
	Bot     BotConfig     `json:"bot"`
	Twitter TwitterConfig `json:"twitter"`
	Notify  NotifyConfig  `json:"notify"`
	History HistoryConfig `json:"history"`
	Serve   ServeConfig   `json:"serve"`
}

type BotConfig struct {
	// StartDate is the campaign's first day (counter == MinCounter),
	// formatted 2006-01-02.
	StartDate       string `json:"startDate"`
	MinCounter      int    `json:"minCounter"`
	MaxCounter      int    `json:"maxCounter"`
	CooldownMinutes int    `json:"cooldownMinutes"`
	PageSize        int    `json:"pageSize"`
	// TerminalText replaces the numeral word on the final day.
	TerminalText string `json:"terminalText"`
	// TextSuffix is appended to every numeral word before posting.
	TextSuffix string `json:"textSuffix"`
	// StateDir holds counter.txt and rate_limit_failure.txt. Defaults
	// to the working directory so a CI job can commit them.
	StateDir string `json:"stateDir"`
}

type TwitterConfig struct {
	APIKey            string `json:"apiKey"`
	APIKeySecret      string `json:"apiKeySecret"`
	AccessToken       string `json:"accessToken"`
	AccessTokenSecret string `json:"accessTokenSecret"`
}

type NotifyConfig struct {
	Telegram TelegramConfig `json:"telegram"`
}

type TelegramConfig struct {
	Enabled bool   `json:"enabled"`
	Token   string `json:"token"`
	ChatID  int64  `json:"chatId"`
}

type HistoryConfig struct {
	Enabled bool   `json:"enabled"`
	DBPath  string `json:"dbPath,omitempty"`
}

type ServeConfig struct {
	CronSpec string `json:"cronSpec"`
}

func DefaultConfig() *Config {
	return &Config{
		Bot: BotConfig{
			StartDate:       DefaultStartDate,
			MinCounter:      DefaultMinCounter,
			MaxCounter:      DefaultMaxCounter,
			CooldownMinutes: DefaultCooldownMinutes,
			PageSize:        DefaultPageSize,
			TerminalText:    DefaultTerminalText,
			TextSuffix:      DefaultTextSuffix,
			StateDir:        ".",
		},
		Serve: ServeConfig{
			CronSpec: DefaultCronSpec,
		},
	}
}

// Start parses the configured start date.
func (b BotConfig) Start() (time.Time, error) {
	t, err := time.Parse("2006-01-02", b.StartDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse start date %q: %w", b.StartDate, err)
	}
	return t, nil
}

// Cooldown returns the configured cooldown window.
func (b BotConfig) Cooldown() time.Duration {
	return time.Duration(b.CooldownMinutes) * time.Minute
}

func ConfigDir() string {
	home := os.Getenv("HOME")
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	return filepath.Join(home, ".shomar")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides. The bare credential names match
	// the original deployment's CI secrets.
	if key := os.Getenv("API_KEY"); key != "" {
		cfg.Twitter.APIKey = key
	}
	if key := os.Getenv("API_KEY_SECRET"); key != "" {
		cfg.Twitter.APIKeySecret = key
	}
	if token := os.Getenv("ACCESS_TOKEN"); token != "" {
		cfg.Twitter.AccessToken = token
	}
	if token := os.Getenv("ACCESS_TOKEN_SECRET"); token != "" {
		cfg.Twitter.AccessTokenSecret = token
	}
	if dir := os.Getenv("SHOMAR_STATE_DIR"); dir != "" {
		cfg.Bot.StateDir = dir
	}
	if d := os.Getenv("SHOMAR_START_DATE"); d != "" {
		cfg.Bot.StartDate = d
	}
	if m := os.Getenv("SHOMAR_MAX_COUNTER"); m != "" {
		if parsed, err := strconv.Atoi(m); err == nil {
			cfg.Bot.MaxCounter = parsed
		}
	}
	if token := os.Getenv("SHOMAR_TELEGRAM_TOKEN"); token != "" {
		cfg.Notify.Telegram.Token = token
	}
	if chat := os.Getenv("SHOMAR_TELEGRAM_CHAT_ID"); chat != "" {
		if parsed, err := strconv.ParseInt(chat, 10, 64); err == nil {
			cfg.Notify.Telegram.ChatID = parsed
		}
	}
	if path := os.Getenv("SHOMAR_HISTORY_DB"); path != "" {
		cfg.History.Enabled = true
		cfg.History.DBPath = path
	}

	if cfg.Bot.StateDir == "" {
		cfg.Bot.StateDir = "."
	}
	if cfg.Bot.PageSize <= 0 {
		cfg.Bot.PageSize = DefaultPageSize
	}
	if cfg.Bot.CooldownMinutes <= 0 {
		cfg.Bot.CooldownMinutes = DefaultCooldownMinutes
	}
	if cfg.History.Enabled && cfg.History.DBPath == "" {
		cfg.History.DBPath = filepath.Join(ConfigDir(), "history.db")
	}

	return cfg, nil
}

func SaveConfig(cfg *Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(ConfigPath(), data, 0644)
}
