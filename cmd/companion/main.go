package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"soulball/internal/bot"
	"soulball/internal/brain"
	"soulball/internal/completion"
	"soulball/internal/config"
	"soulball/internal/conversation"
	"soulball/internal/curator"
	"soulball/internal/diary"
	"soulball/internal/fetcher"
	"soulball/internal/scheduler"
	"soulball/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("load .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	medium, err := openMedium(ctx, cfg, log)
	if err != nil {
		log.Error("open storage", "error", err)
		os.Exit(1)
	}
	clock := cfg.Clock()
	store := storage.NewStore(medium, log)
	store.SetClock(clock)
	defer func() { _ = store.Close() }()

	completer, err := newCompleter(ctx, cfg, store)
	if err != nil {
		log.Error("create completion client", "provider", cfg.Completion.Provider, "error", err)
		os.Exit(1)
	}

	br := brain.New(completer, log)
	br.SetClock(clock)
	sched := scheduler.New(log)
	defer sched.Close()

	var topics curator.TopicSource
	if cfg.InspirationFeedURL != "" {
		topics = fetcher.NewTopicSource(fetcher.New(http.DefaultClient), cfg.InspirationFeedURL, log)
	}

	cur := curator.New(store, br, topics, sched, curator.DefaultConfig(), log)
	cur.SetClock(clock)
	defer cur.Close()

	diaries := diary.New(store, br, log)
	sched.Every("ai diary", func(ctx context.Context) {
		diaries.GenerateAIDiaryIfNeeded(ctx, clock())
	})

	session := conversation.New(store, br, log)
	session.SetClock(clock)

	b, err := bot.New(cfg.TelegramBotToken, bot.Services{
		Store:        store,
		Conversation: session,
		Curator:      cur,
		Diary:        diaries,
	}, cfg, log)
	if err != nil {
		log.Error("create bot", "error", err)
		os.Exit(1)
	}

	log.Info("starting companion", "provider", cfg.Completion.Provider, "redis", cfg.Redis.Addr != "", "timezone", cfg.Timezone)

	go sched.Run(ctx)

	b.Run(ctx)

	log.Info("companion stopped")
}

func openMedium(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.Medium, error) {
	if cfg.Redis.Addr != "" {
		log.Info("using redis storage", "addr", cfg.Redis.Addr, "prefix", cfg.Redis.Prefix)
		return storage.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.Prefix)
	}

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, err
		}
	}
	log.Info("using sqlite storage", "path", cfg.DatabasePath)
	return storage.NewSQLite(cfg.DatabasePath)
}

func newCompleter(ctx context.Context, cfg *config.Config, store *storage.Store) (completion.Completer, error) {
	if cfg.Completion.Provider == config.ProviderGemini {
		return completion.NewGemini(ctx, cfg.Completion.GeminiAPIKey, cfg.Completion.GeminiModel)
	}
	key := completion.FirstKey(store.APIKey, completion.StaticKey(cfg.Completion.APIKey))
	return completion.New(http.DefaultClient, cfg.Completion.BaseURL, cfg.Completion.Model, key), nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
