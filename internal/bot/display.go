package bot

import (
	"context"
	"log/slog"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"soulball/internal/mood"
	"soulball/internal/typewriter"
)

const cursor = "▌"

// reveal is one companion reply being typed into a Telegram message.
type reveal struct {
	seq     *typewriter.Sequencer
	display *messageDisplay
}

// stop cancels the typing and shows the full reply at once.
func (r *reveal) stop() {
	r.seq.Stop()
	r.display.finish()
}

// messageDisplay renders typewriter output by editing one Telegram message.
// Edits are sent from a single goroutine at most once per gap, so the
// typewriter never blocks on the network.
type messageDisplay struct {
	api    telegramAPI
	log    *slog.Logger
	chatID int64
	full   string
	gap    time.Duration

	mu        sync.Mutex
	text      string
	mood      mood.Label
	done      bool
	messageID int
	rendered  string

	dirty    chan struct{}
	finished chan struct{}
}

func newMessageDisplay(api telegramAPI, log *slog.Logger, chatID int64, full string, gap time.Duration) *messageDisplay {
	return &messageDisplay{
		api:      api,
		log:      log,
		chatID:   chatID,
		full:     full,
		gap:      gap,
		dirty:    make(chan struct{}, 1),
		finished: make(chan struct{}),
	}
}

// SetText implements typewriter.Display.
func (d *messageDisplay) SetText(text string) {
	d.mu.Lock()
	d.text = text
	d.mu.Unlock()
	d.kick()
}

// SetMood implements typewriter.Display.
func (d *messageDisplay) SetMood(l mood.Label) {
	d.mu.Lock()
	d.mood = l
	d.mu.Unlock()
	d.kick()
}

// SetOpacity implements typewriter.Display. Fading out settles the message.
func (d *messageDisplay) SetOpacity(opacity float64) {
	if opacity > 0 {
		return
	}
	d.mu.Lock()
	d.done = true
	d.mu.Unlock()
	d.kick()
}

func (d *messageDisplay) finish() {
	d.mu.Lock()
	d.text = d.full
	if l := mood.Detect(d.full); l != mood.Neutral {
		d.mood = l
	}
	d.done = true
	d.mu.Unlock()
	d.kick()
}

func (d *messageDisplay) kick() {
	select {
	case d.dirty <- struct{}{}:
	default:
	}
}

// run sends edits until the message is settled or ctx is done.
func (d *messageDisplay) run(ctx context.Context) {
	defer close(d.finished)
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.dirty:
		}

		d.mu.Lock()
		text, done := d.render(), d.done
		d.mu.Unlock()

		d.flush(text, done)
		if done {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(d.gap):
		}
	}
}

// render must be called with mu held.
func (d *messageDisplay) render() string {
	out := d.text
	if d.mood != "" {
		out = "【" + d.mood.Name() + "】" + out
	}
	if !d.done {
		out += cursor
	}
	if out == "" {
		out = "…"
	}
	return out
}

func (d *messageDisplay) flush(text string, done bool) {
	d.mu.Lock()
	id, last := d.messageID, d.rendered
	d.mu.Unlock()
	if id != 0 && text == last && !done {
		return
	}

	var c tgbotapi.Chattable
	switch {
	case id == 0 && done:
		c = tgbotapi.NewMessage(d.chatID, text)
	case id == 0:
		msg := tgbotapi.NewMessage(d.chatID, text)
		msg.ReplyMarkup = fastForwardKeyboard()
		c = msg
	case done:
		c = tgbotapi.NewEditMessageText(d.chatID, id, text)
	default:
		c = tgbotapi.NewEditMessageTextAndMarkup(d.chatID, id, text, fastForwardKeyboard())
	}

	sent, err := d.api.Send(c)
	if err != nil {
		d.log.Error("update reply message", "chat_id", d.chatID, "error", err)
		return
	}

	d.mu.Lock()
	if d.messageID == 0 {
		d.messageID = sent.MessageID
	}
	d.rendered = text
	d.mu.Unlock()
}

func fastForwardKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏩ 快进", cbFast+":0"),
		),
	)
}
