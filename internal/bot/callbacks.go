package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"soulball/internal/navigation"
)

const (
	cmdLike    = "like"
	cmdComment = "comment"

	cbFast  = "fast"
	cbSwipe = "swipe"
	cbClear = "clear"
	cbNoop  = "noop"
)

// swipeDistance is the drag length of a swipe button, past the threshold.
const swipeDistance = 80

// Swipe directions carried in callback data.
const (
	swipeUp    = "up"
	swipeDown  = "down"
	swipeLeft  = "left"
	swipeRight = "right"
)

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID

	action, arg, ok := strings.Cut(cb.Data, ":")
	if !ok {
		b.ack(cb.ID, "")
		return
	}

	b.log.Info("callback",
		"action", action,
		"arg", arg,
		"chat_id", chatID,
		"user_id", cb.From.ID,
		"username", cb.From.UserName,
	)

	switch action {
	case cmdLike:
		b.ack(cb.ID, "")
		b.handleLike(ctx, chatID, arg)
	case cmdComment:
		b.ack(cb.ID, "")
		b.reply(chatID, fmt.Sprintf("发送 /comment %s <你的评论> 来评论这条帖子。", shortID(arg)))
	case cbFast:
		b.ack(cb.ID, "")
		b.accelerate(ctx, chatID)
	case cbSwipe:
		b.ack(cb.ID, b.swipe(ctx, chatID, arg))
	case cbClear:
		b.ack(cb.ID, "")
		if arg == "yes" {
			b.clearAll(ctx, chatID)
		}
	default:
		b.ack(cb.ID, "")
	}
}

func (b *Bot) accelerate(ctx context.Context, chatID int64) {
	st := b.chat(ctx, chatID)
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.reveal != nil {
		st.reveal.seq.Accelerate()
	}
}

// swipe feeds a synthetic drag into the chat's navigator and returns the
// text of the callback answer.
func (b *Bot) swipe(ctx context.Context, chatID int64, dir string) string {
	var dx, dy float64
	switch dir {
	case swipeUp:
		dy = -swipeDistance
	case swipeDown:
		dy = swipeDistance
	case swipeLeft:
		dx = -swipeDistance
	case swipeRight:
		dx = swipeDistance
	default:
		return ""
	}

	nav := b.chat(ctx, chatID).nav
	nav.Move(dx, dy)
	out := nav.Release(dx, dy, 0, 0)
	if !out.Committed {
		if nav.Locked() {
			return "正在切换，请稍候"
		}
		return "这边没有页面了"
	}
	return screenTitles[out.To]
}

func postKeyboard(postID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❤️ 点赞", cmdLike+":"+postID),
			tgbotapi.NewInlineKeyboardButtonData("💬 评论", cmdComment+":"+postID),
		),
	)
}

// navKeyboard offers the swipes that lead somewhere from s.
func navKeyboard(s navigation.Screen) tgbotapi.InlineKeyboardMarkup {
	button := func(text, dir string) tgbotapi.InlineKeyboardButton {
		return tgbotapi.NewInlineKeyboardButtonData(text, cbSwipe+":"+dir)
	}

	var row []tgbotapi.InlineKeyboardButton
	switch s {
	case navigation.Home:
		row = append(row, button("⬆️ 动态", swipeUp), button("日记 ➡️", swipeRight))
	case navigation.Feed:
		row = append(row, button("⬇️ 首页", swipeDown))
	case navigation.Diary:
		row = append(row, button("⬅️ 首页", swipeLeft), button("心情 ➡️", swipeRight))
	case navigation.Mood:
		row = append(row, button("⬅️ 日记", swipeLeft))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}
