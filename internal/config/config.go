// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

// Completion providers.
const (
	ProviderDeepSeek = "deepseek"
	ProviderGemini   = "gemini"
)

// Config holds the application configuration.
type Config struct {
	TelegramBotToken string
	DatabasePath     string
	LogLevel         string
	AllowedUsers     []int64

	Completion Completion
	Redis      Redis

	// InspirationFeedURL is an RSS or Atom feed whose headlines seed
	// synthetic posts. Empty disables it.
	InspirationFeedURL string
	Timezone           string
}

// Completion configures the chat completion provider.
type Completion struct {
	Provider string
	// APIKey is used when no key was stored with /setkey.
	APIKey       string
	BaseURL      string
	Model        string
	GeminiAPIKey string
	GeminiModel  string
}

// Redis configures the optional Redis persistence medium. An empty Addr
// selects SQLite.
type Redis struct {
	Addr     string
	Password string
	Prefix   string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	var allowedUsers []int64
	if raw := os.Getenv("ALLOWED_USERS"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			uid, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid user ID %q in ALLOWED_USERS: %w", s, err)
			}
			allowedUsers = append(allowedUsers, uid)
		}
	}

	provider := strings.ToLower(getenv("COMPLETION_PROVIDER", ProviderDeepSeek))
	if provider != ProviderDeepSeek && provider != ProviderGemini {
		return nil, fmt.Errorf("invalid COMPLETION_PROVIDER %q: want %s or %s", provider, ProviderDeepSeek, ProviderGemini)
	}

	tz := getenv("TIMEZONE", "Local")
	if _, err := time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err)
	}

	return &Config{
		TelegramBotToken: token,
		DatabasePath:     getenv("DATABASE_PATH", "./data/companion.db"),
		LogLevel:         getenv("LOG_LEVEL", "info"),
		AllowedUsers:     allowedUsers,
		Completion: Completion{
			Provider:     provider,
			APIKey:       os.Getenv("COMPLETION_API_KEY"),
			BaseURL:      getenv("COMPLETION_BASE_URL", "https://api.deepseek.com/v1/chat/completions"),
			Model:        getenv("COMPLETION_MODEL", "deepseek-chat"),
			GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
			GeminiModel:  getenv("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		Redis: Redis{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			Prefix:   getenv("REDIS_PREFIX", "soulball:"),
		},
		InspirationFeedURL: os.Getenv("INSPIRATION_FEED_URL"),
		Timezone:           tz,
	}, nil
}

// Location returns the configured time zone, or time.Local when it cannot
// be loaded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Clock returns a time source reporting the current time in Location, so
// that every calendar-day decision uses the same zone.
func (c *Config) Clock() func() time.Time {
	loc := c.Location()
	return func() time.Time { return time.Now().In(loc) }
}

// IsUserAllowed checks whether a user ID is in the allow list.
// Returns true if the allow list is empty (all users permitted).
func (c *Config) IsUserAllowed(userID int64) bool {
	if len(c.AllowedUsers) == 0 {
		return true
	}
	return slices.Contains(c.AllowedUsers, userID)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
