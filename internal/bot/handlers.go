package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"soulball/internal/completion"
	"soulball/internal/curator"
	"soulball/internal/model"
	"soulball/internal/mood"
	"soulball/internal/navigation"
	"soulball/internal/typewriter"
)

const msgNeedKey = "还没有设置 API 密钥，请先发送 /setkey <密钥>。"

func (b *Bot) handleStart(chatID int64) {
	b.replyWithKeyboard(chatID, `你好，我是灵，你的灵魂小球 🔮

直接给我发消息就可以聊天，我会一个字一个字地回答你。

常用命令：
/feed 看看大家在分享什么
/diary 写一篇日记
/mood 看看最近的心情

用下面的按钮在首页、动态、日记和心情之间切换，/help 查看全部命令。`, navKeyboard(navigation.Home))
}

func (b *Bot) handleHelp(chatID int64) {
	b.reply(chatID, `聊天：
直接发送文字 — 和灵聊天
/setkey <密钥> — 设置 API 密钥

动态：
/feed — 刷新动态
/more — 加载更多
/like <编号> — 点赞并收藏
/comment <编号> <内容> — 发表评论
/post <内容> — 发布帖子
/search <关键词> — 搜索帖子（支持 -排除、title:、author:、re:）
/notifications — 查看通知
/read <编号|all> — 标记已读
/favorites — 我的收藏
/unfav <编号> — 取消收藏

日记与心情：
/diary [标题 |] <内容> — 写日记
/diaries [分类] [关键词] — 浏览日记
/rmdiary <编号> — 删除日记
/mood [week|month|all] — 心情统计

数据：
/export — 导出全部数据
/clear — 清除全部数据`)
}

func (b *Bot) handleSetKey(ctx context.Context, chatID int64, messageID int, args string) {
	key, err := ParseIDArg(args)
	if err != nil {
		b.reply(chatID, "用法：/setkey <API密钥>")
		return
	}
	if !b.svc.Store.SetAPIKey(ctx, key) {
		b.reply(chatID, "保存密钥失败，请稍后再试。")
		return
	}
	// The key should not linger in the chat history.
	if messageID != 0 {
		if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
			b.log.Warn("delete key message", "chat_id", chatID, "error", err)
		}
	}
	b.reply(chatID, "密钥已保存 ✅")
}

func (b *Bot) handleChat(ctx context.Context, chatID int64, text string) {
	turn, err := b.svc.Conversation.Send(ctx, text)
	if errors.Is(err, completion.ErrAPIKeyMissing) {
		b.reply(chatID, msgNeedKey)
		return
	}
	if err != nil {
		b.log.Warn("chat turn", "chat_id", chatID, "error", err)
		return
	}
	b.log.Info("chat turn", "chat_id", chatID, "mood", turn.Mood.Mood, "fallback", turn.Fallback)
	b.startReveal(ctx, chatID, turn.Reply)
}

// startReveal types reply into a new message, settling any reply still
// being typed in the chat.
func (b *Bot) startReveal(ctx context.Context, chatID int64, reply string) {
	st := b.chat(ctx, chatID)
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.reveal != nil {
		st.reveal.stop()
	}
	d := newMessageDisplay(b.api, b.log, chatID, reply, b.editGap)
	go d.run(ctx)

	seq := typewriter.New(d, b.typing)
	st.reveal = &reveal{seq: seq, display: d}
	seq.Start(reply)
}

func (b *Bot) handleFeed(ctx context.Context, chatID int64) {
	posts := b.svc.Curator.LoadFeed(ctx)
	st := b.chat(ctx, chatID)
	st.mu.Lock()
	st.feed = posts
	st.shown = 0
	st.mu.Unlock()

	if len(posts) == 0 {
		b.reply(chatID, "动态还是空的，稍后再来看看吧。")
		return
	}
	b.showFeedPage(ctx, chatID)
}

func (b *Bot) handleMore(ctx context.Context, chatID int64) {
	st := b.chat(ctx, chatID)
	st.mu.Lock()
	empty := len(st.feed) == 0
	st.mu.Unlock()
	if empty {
		b.handleFeed(ctx, chatID)
		return
	}
	b.showFeedPage(ctx, chatID)
}

func (b *Bot) showFeedPage(ctx context.Context, chatID int64) {
	st := b.chat(ctx, chatID)

	st.mu.Lock()
	end := min(st.shown+b.pageSize, len(st.feed))
	page := append([]model.Post(nil), st.feed[st.shown:end]...)
	st.shown = end
	total, shown := len(st.feed), st.shown
	st.mu.Unlock()

	if len(page) == 0 {
		b.reply(chatID, "已经到底了，发送 /feed 刷新。")
		return
	}

	ids := make([]string, 0, len(page))
	for _, p := range page {
		b.replyWithKeyboard(chatID, FormatPost(p), postKeyboard(p.ID))
		ids = append(ids, p.ID)
	}
	b.svc.Curator.MarkViewed(ctx, ids...)

	if extra := b.svc.Curator.MaybeExtend(ctx, total, shown); len(extra) > 0 {
		st.mu.Lock()
		st.feed = append(st.feed, extra...)
		total = len(st.feed)
		st.mu.Unlock()
	}

	if left := total - shown; left > 0 {
		b.reply(chatID, fmt.Sprintf("还有 %d 条，发送 /more 继续。", left))
	} else {
		b.reply(chatID, "已经到底了，发送 /feed 刷新。")
	}
}

func (b *Bot) findPost(ctx context.Context, prefix string) (model.Post, error) {
	return findByPrefix(b.svc.Store.GetPosts(ctx), func(p model.Post) string { return p.ID }, prefix)
}

func (b *Bot) handleLike(ctx context.Context, chatID int64, args string) {
	prefix, err := ParseIDArg(args)
	if err != nil {
		b.reply(chatID, "用法：/like <帖子编号>")
		return
	}
	post, err := b.findPost(ctx, prefix)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("找不到帖子 %s。", prefix))
		return
	}

	liked := b.svc.Curator.Like(ctx, post.ID)
	if liked == nil {
		b.reply(chatID, fmt.Sprintf("找不到帖子 %s。", prefix))
		return
	}
	b.reply(chatID, fmt.Sprintf("❤️ 已点赞并收藏 [%s]，现在有 %d 个赞。", shortID(liked.ID), liked.Likes))
}

func (b *Bot) handleComment(ctx context.Context, chatID int64, args string) {
	prefix, text, err := ParseCommentArgs(args)
	if err != nil {
		b.reply(chatID, err.Error())
		return
	}
	post, err := b.findPost(ctx, prefix)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("找不到帖子 %s。", prefix))
		return
	}

	c, err := b.svc.Curator.Comment(ctx, post.ID, text)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("评论失败：%v", err))
		return
	}
	if c == nil {
		b.reply(chatID, fmt.Sprintf("找不到帖子 %s。", prefix))
		return
	}
	b.reply(chatID, fmt.Sprintf("💬 已评论 [%s]，稍后会有人回复你。", shortID(post.ID)))
}

func (b *Bot) handlePost(ctx context.Context, chatID int64, args string) {
	if args == "" {
		b.reply(chatID, "用法：/post <内容>")
		return
	}
	p, err := b.svc.Curator.Publish(ctx, args)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("发布失败：%v", err))
		return
	}
	b.reply(chatID, fmt.Sprintf("📝 已发布 [%s]，大家很快就会看到。", shortID(p.ID)))
}

func (b *Bot) handleSearch(ctx context.Context, chatID int64, args string) {
	if args == "" {
		b.reply(chatID, "用法：/search <关键词>")
		return
	}
	posts, err := curator.Search(b.svc.Store.GetPosts(ctx), args)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("搜索条件有误：%v", err))
		return
	}
	b.reply(chatID, FormatPostList(posts))
}

func (b *Bot) handleNotifications(ctx context.Context, chatID int64) {
	b.reply(chatID, FormatNotifications(b.svc.Store.GetNotifications(ctx)))
}

func (b *Bot) handleRead(ctx context.Context, chatID int64, args string) {
	prefix, err := ParseIDArg(args)
	if err != nil {
		b.reply(chatID, "用法：/read <通知编号|all>")
		return
	}

	ns := b.svc.Store.GetNotifications(ctx)
	if prefix == "all" {
		n := 0
		for _, item := range ns {
			if !item.Read && b.svc.Store.MarkNotificationRead(ctx, item.ID) {
				n++
			}
		}
		b.reply(chatID, fmt.Sprintf("已将 %d 条通知标记为已读。", n))
		return
	}

	item, err := findByPrefix(ns, func(n model.Notification) string { return n.ID }, prefix)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("找不到通知 %s。", prefix))
		return
	}
	b.svc.Store.MarkNotificationRead(ctx, item.ID)
	b.reply(chatID, "已读 ✅")
}

func (b *Bot) handleFavorites(ctx context.Context, chatID int64) {
	b.reply(chatID, FormatFavorites(b.svc.Store.GetFavorites(ctx)))
}

func (b *Bot) handleUnfav(ctx context.Context, chatID int64, args string) {
	prefix, err := ParseIDArg(args)
	if err != nil {
		b.reply(chatID, "用法：/unfav <编号>")
		return
	}
	fav, err := findByPrefix(b.svc.Store.GetFavorites(ctx), func(f model.FavoriteItem) string { return f.OriginalID }, prefix)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("找不到收藏 %s。", prefix))
		return
	}
	if !b.svc.Store.RemoveFromFavorites(ctx, fav.OriginalID) {
		b.reply(chatID, "取消收藏失败，请稍后再试。")
		return
	}
	b.reply(chatID, fmt.Sprintf("已取消收藏 [%s]。", shortID(fav.OriginalID)))
}

func (b *Bot) handleDiary(ctx context.Context, chatID int64, args string) {
	title, content, err := ParseDiaryArgs(args)
	if err != nil {
		b.reply(chatID, err.Error())
		return
	}
	entry, err := b.svc.Diary.Save(ctx, title, content)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("保存日记失败：%v", err))
		return
	}
	b.reply(chatID, FormatDiaryEntry(*entry))
}

func (b *Bot) handleDiaries(ctx context.Context, chatID int64, args string) {
	categories := b.svc.Diary.Categories(ctx)
	category, query := ParseDiaryListArgs(args, categories)
	pages := b.svc.Diary.List(ctx, category, query)
	b.reply(chatID, FormatDiaryList(pages, category, query, categories))
}

func (b *Bot) handleRmDiary(ctx context.Context, chatID int64, args string) {
	prefix, err := ParseIDArg(args)
	if err != nil {
		b.reply(chatID, "用法：/rmdiary <日记编号>")
		return
	}
	entry, err := findByPrefix(b.svc.Store.GetDiaryEntries(ctx), func(e model.DiaryEntry) string { return e.ID }, prefix)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("找不到日记 %s。", prefix))
		return
	}
	if err := b.svc.Diary.Delete(ctx, entry.ID); err != nil {
		b.reply(chatID, fmt.Sprintf("删除失败：%v", err))
		return
	}
	b.reply(chatID, fmt.Sprintf("日记「%s」已删除。", entry.Title))
}

func (b *Bot) handleMood(ctx context.Context, chatID int64, args string) {
	w, err := mood.ParseWindow(strings.ToLower(args))
	if err != nil {
		b.reply(chatID, "用法：/mood [week|month|all]")
		return
	}
	st := mood.Aggregate(b.svc.Store.GetMoodEntries(ctx), w, b.now())
	b.reply(chatID, FormatMoodStats(st, w))
}

func (b *Bot) handleExport(ctx context.Context, chatID int64) {
	data, err := json.MarshalIndent(b.svc.Store.Export(ctx), "", "  ")
	if err != nil {
		b.reply(chatID, fmt.Sprintf("导出失败：%v", err))
		return
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  "soulball-" + model.Day(b.now()) + ".json",
		Bytes: data,
	})
	doc.Caption = "全部数据已导出。"
	if _, err := b.api.Send(doc); err != nil {
		b.log.Error("send export", "chat_id", chatID, "error", err)
		b.reply(chatID, "发送导出文件失败。")
	}
}

func (b *Bot) handleClear(chatID int64) {
	b.replyWithKeyboard(chatID, "确定要清除全部聊天、动态、日记和心情数据吗？此操作不可撤销。",
		tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("确定清除", cbClear+":yes"),
				tgbotapi.NewInlineKeyboardButtonData("取消", cbNoop+":0"),
			),
		))
}

func (b *Bot) clearAll(ctx context.Context, chatID int64) {
	if !b.svc.Store.ClearAll(ctx) {
		b.reply(chatID, "清除失败，请稍后再试。")
		return
	}
	st := b.chat(ctx, chatID)
	st.mu.Lock()
	st.feed, st.shown = nil, 0
	st.mu.Unlock()
	b.reply(chatID, "所有数据已清除。")
}

// showScreen renders a screen reached by navigation.
func (b *Bot) showScreen(ctx context.Context, chatID int64, s navigation.Screen) {
	switch s {
	case navigation.Feed:
		b.handleFeed(ctx, chatID)
	case navigation.Diary:
		b.handleDiaries(ctx, chatID, "")
	case navigation.Mood:
		b.handleMood(ctx, chatID, "")
	}
	b.replyWithKeyboard(chatID, "当前："+screenTitles[s], navKeyboard(s))
}
