package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var envKeys = []string{
	"TELEGRAM_BOT_TOKEN", "DATABASE_PATH", "LOG_LEVEL", "ALLOWED_USERS",
	"COMPLETION_PROVIDER", "COMPLETION_API_KEY", "COMPLETION_BASE_URL", "COMPLETION_MODEL",
	"GEMINI_API_KEY", "GEMINI_MODEL", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_PREFIX",
	"INSPIRATION_FEED_URL", "TIMEZONE",
}

func defaultCompletion() Completion {
	return Completion{
		Provider:    ProviderDeepSeek,
		BaseURL:     "https://api.deepseek.com/v1/chat/completions",
		Model:       "deepseek-chat",
		GeminiModel: "gemini-2.5-flash",
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    *Config
		wantErr bool
	}{
		{
			name:    "missing token",
			env:     map[string]string{},
			wantErr: true,
		},
		{
			name: "token only, defaults applied",
			env:  map[string]string{"TELEGRAM_BOT_TOKEN": "test-token"},
			want: &Config{
				TelegramBotToken: "test-token",
				DatabasePath:     "./data/companion.db",
				LogLevel:         "info",
				Completion:       defaultCompletion(),
				Redis:            Redis{Prefix: "soulball:"},
				Timezone:         "Local",
			},
		},
		{
			name: "all values set",
			env: map[string]string{
				"TELEGRAM_BOT_TOKEN":   "tok",
				"DATABASE_PATH":        "/tmp/companion.db",
				"LOG_LEVEL":            "debug",
				"ALLOWED_USERS":        "111,222,333",
				"COMPLETION_PROVIDER":  "Gemini",
				"COMPLETION_API_KEY":   "sk-1",
				"COMPLETION_BASE_URL":  "http://localhost:8080/v1/chat/completions",
				"COMPLETION_MODEL":     "deepseek-reasoner",
				"GEMINI_API_KEY":       "g-1",
				"GEMINI_MODEL":         "gemini-2.5-pro",
				"REDIS_ADDR":           "localhost:6379",
				"REDIS_PASSWORD":       "secret",
				"REDIS_PREFIX":         "test:",
				"INSPIRATION_FEED_URL": "https://example.com/feed.xml",
				"TIMEZONE":             "Asia/Shanghai",
			},
			want: &Config{
				TelegramBotToken: "tok",
				DatabasePath:     "/tmp/companion.db",
				LogLevel:         "debug",
				AllowedUsers:     []int64{111, 222, 333},
				Completion: Completion{
					Provider:     ProviderGemini,
					APIKey:       "sk-1",
					BaseURL:      "http://localhost:8080/v1/chat/completions",
					Model:        "deepseek-reasoner",
					GeminiAPIKey: "g-1",
					GeminiModel:  "gemini-2.5-pro",
				},
				Redis:              Redis{Addr: "localhost:6379", Password: "secret", Prefix: "test:"},
				InspirationFeedURL: "https://example.com/feed.xml",
				Timezone:           "Asia/Shanghai",
			},
		},
		{
			name: "allowed users with spaces",
			env: map[string]string{
				"TELEGRAM_BOT_TOKEN": "tok",
				"ALLOWED_USERS":      " 10 , 20 , ",
			},
			want: &Config{
				TelegramBotToken: "tok",
				DatabasePath:     "./data/companion.db",
				LogLevel:         "info",
				AllowedUsers:     []int64{10, 20},
				Completion:       defaultCompletion(),
				Redis:            Redis{Prefix: "soulball:"},
				Timezone:         "Local",
			},
		},
		{
			name: "invalid user id",
			env: map[string]string{
				"TELEGRAM_BOT_TOKEN": "tok",
				"ALLOWED_USERS":      "123,abc",
			},
			wantErr: true,
		},
		{
			name: "unknown provider",
			env: map[string]string{
				"TELEGRAM_BOT_TOKEN":  "tok",
				"COMPLETION_PROVIDER": "openai",
			},
			wantErr: true,
		},
		{
			name: "unknown time zone",
			env: map[string]string{
				"TELEGRAM_BOT_TOKEN": "tok",
				"TIMEZONE":           "Mars/Olympus",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range envKeys {
				t.Setenv(key, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			got, err := Load()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Load() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLocation(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		want     string
	}{
		{name: "utc", timezone: "UTC", want: "UTC"},
		{name: "named zone", timezone: "Asia/Shanghai", want: "Asia/Shanghai"},
		{name: "broken falls back to local", timezone: "Nowhere/Never", want: time.Local.String()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Timezone: tt.timezone}
			if diff := cmp.Diff(tt.want, cfg.Location().String()); diff != "" {
				t.Errorf("Location() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClockUsesConfiguredZone(t *testing.T) {
	cfg := &Config{Timezone: "Asia/Shanghai"}
	now := cfg.Clock()()
	if diff := cmp.Diff("Asia/Shanghai", now.Location().String()); diff != "" {
		t.Errorf("clock location mismatch (-want +got):\n%s", diff)
	}

	_, offset := now.Zone()
	if diff := cmp.Diff(8*60*60, offset); diff != "" {
		t.Errorf("zone offset mismatch (-want +got):\n%s", diff)
	}
}

func TestIsUserAllowed(t *testing.T) {
	tests := []struct {
		name         string
		allowedUsers []int64
		userID       int64
		want         bool
	}{
		{
			name:         "empty list allows everyone",
			allowedUsers: nil,
			userID:       42,
			want:         true,
		},
		{
			name:         "user in list",
			allowedUsers: []int64{10, 20, 30},
			userID:       20,
			want:         true,
		},
		{
			name:         "user not in list",
			allowedUsers: []int64{10, 20, 30},
			userID:       99,
			want:         false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{AllowedUsers: tt.allowedUsers}
			got := cfg.IsUserAllowed(tt.userID)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("IsUserAllowed() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
