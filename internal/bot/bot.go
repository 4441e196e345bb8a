package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"soulball/internal/config"
	"soulball/internal/conversation"
	"soulball/internal/curator"
	"soulball/internal/diary"
	"soulball/internal/model"
	"soulball/internal/navigation"
	"soulball/internal/storage"
	"soulball/internal/typewriter"
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Services are the companion components the bot exposes.
type Services struct {
	Store        *storage.Store
	Conversation *conversation.Session
	Curator      *curator.Curator
	Diary        *diary.Service
}

// Bot is the Telegram front end of the companion.
type Bot struct {
	api telegramAPI
	svc Services
	cfg *config.Config
	log *slog.Logger

	typing   typewriter.Config
	nav      navigation.Config
	editGap  time.Duration
	pageSize int
	now      func() time.Time

	mu    sync.Mutex
	chats map[int64]*chatState
}

// chatState is what the bot remembers about one chat between updates.
type chatState struct {
	nav *navigation.Navigator

	mu     sync.Mutex
	reveal *reveal
	feed   []model.Post
	shown  int
}

// New creates a Bot with the given Telegram token, services, and config.
func New(token string, svc Services, cfg *config.Config, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	return newBot(api, svc, cfg, log), nil
}

func newBot(api telegramAPI, svc Services, cfg *config.Config, log *slog.Logger) *Bot {
	return &Bot{
		api:      api,
		svc:      svc,
		cfg:      cfg,
		log:      log,
		typing:   typewriter.DefaultConfig(),
		nav:      navigation.DefaultConfig(),
		editGap:  time.Second,
		pageSize: 5,
		now:      cfg.Clock(),
		chats:    make(map[int64]*chatState),
	}
}

// Run starts the bot's long-polling loop, blocking until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.closeChats()

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if cb := update.CallbackQuery; cb != nil {
		if cb.Message == nil || cb.From == nil {
			return
		}
		if !b.cfg.IsUserAllowed(cb.From.ID) {
			b.ack(cb.ID, "无权访问。")
			return
		}
		b.handleCallback(ctx, cb)
		return
	}

	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return
	}
	if !b.cfg.IsUserAllowed(msg.From.ID) {
		b.reply(msg.Chat.ID, "无权访问。")
		return
	}
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}
	if text := strings.TrimSpace(msg.Text); text != "" {
		b.handleChat(ctx, msg.Chat.ID, text)
	}
}

// SendMessage sends a text message to the given chat.
func (b *Bot) SendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	b.SendMessage(chatID, text)
}

func (b *Bot) replyWithKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	msg.ReplyMarkup = kb
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) ack(callbackID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		b.log.Error("send callback ack", "error", err)
	}
}

// chat returns the state of chatID, creating it on first use.
func (b *Bot) chat(ctx context.Context, chatID int64) *chatState {
	b.mu.Lock()
	defer b.mu.Unlock()
	if st, ok := b.chats[chatID]; ok {
		return st
	}

	nav := navigation.New(b.nav)
	nav.OnChange(func(from, to navigation.Screen) {
		b.log.Debug("screen changed", "chat_id", chatID, "from", from, "to", to)
		b.showScreen(ctx, chatID, to)
	})
	st := &chatState{nav: nav}
	b.chats[chatID] = st
	return st
}

func (b *Bot) closeChats() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, st := range b.chats {
		st.nav.Close()
		st.mu.Lock()
		if st.reveal != nil {
			st.reveal.stop()
		}
		st.mu.Unlock()
		delete(b.chats, id)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	cmd := msg.Command()
	args := strings.TrimSpace(msg.CommandArguments())
	chatID := msg.Chat.ID

	b.log.Debug("command", "cmd", cmd, "chat_id", chatID)

	switch cmd {
	case "start":
		b.handleStart(chatID)
	case "help":
		b.handleHelp(chatID)
	case "setkey":
		b.handleSetKey(ctx, chatID, msg.MessageID, args)
	case "feed":
		b.handleFeed(ctx, chatID)
	case "more":
		b.handleMore(ctx, chatID)
	case cmdLike:
		b.handleLike(ctx, chatID, args)
	case cmdComment:
		b.handleComment(ctx, chatID, args)
	case "post":
		b.handlePost(ctx, chatID, args)
	case "search":
		b.handleSearch(ctx, chatID, args)
	case "notifications":
		b.handleNotifications(ctx, chatID)
	case "read":
		b.handleRead(ctx, chatID, args)
	case "favorites":
		b.handleFavorites(ctx, chatID)
	case "unfav":
		b.handleUnfav(ctx, chatID, args)
	case "diary":
		b.handleDiary(ctx, chatID, args)
	case "diaries":
		b.handleDiaries(ctx, chatID, args)
	case "rmdiary":
		b.handleRmDiary(ctx, chatID, args)
	case "mood":
		b.handleMood(ctx, chatID, args)
	case "export":
		b.handleExport(ctx, chatID)
	case "clear":
		b.handleClear(chatID)
	default:
		b.reply(chatID, "未知命令，发送 /help 查看所有命令。")
	}
}
