// Package brain turns companion tasks into completion prompts and applies
// canned fallbacks when the completion service fails.
package brain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"soulball/internal/completion"
	"soulball/internal/model"
	"soulball/internal/mood"
)

// aiDiaryContext is the number of recent messages the AI diary is built from.
const aiDiaryContext = 10

// Brain generates companion text through a completion.Completer.
type Brain struct {
	completer completion.Completer
	log       *slog.Logger
	now       func() time.Time
}

// New creates a Brain.
func New(c completion.Completer, log *slog.Logger) *Brain {
	return &Brain{
		completer: c,
		log:       log,
		now:       time.Now,
	}
}

// SetClock overrides the time source used in prompts and fallback titles.
func (b *Brain) SetClock(now func() time.Time) {
	b.now = now
}

func (b *Brain) ask(ctx context.Context, system, user string) (string, error) {
	return b.completer.Complete(ctx, completion.Request{
		Messages: []completion.Message{
			{Role: completion.RoleSystem, Content: system},
			{Role: completion.RoleUser, Content: user},
		},
	})
}

// ChatReply answers the conversation in the companion persona. Unlike the
// other operations it returns the error so the caller can ask for a key.
func (b *Brain) ChatReply(ctx context.Context, history []model.Message) (string, error) {
	timeInfo := "当前时间：" + b.now().Format("2006年1月2日 15:04")
	msgs := make([]completion.Message, 0, len(history)+1)
	msgs = append(msgs, completion.Message{Role: completion.RoleSystem, Content: fmt.Sprintf(personaPrompt, timeInfo)})
	for _, m := range history {
		msgs = append(msgs, completion.Message{Role: string(m.Role), Content: m.Content})
	}

	reply, err := b.completer.Complete(ctx, completion.Request{Messages: msgs})
	if err != nil {
		return "", fmt.Errorf("chat reply: %w", err)
	}
	return reply, nil
}

// GeneratePost writes a synthetic feed post, optionally inspired by topic.
func (b *Brain) GeneratePost(ctx context.Context, topic string) string {
	user := "请分享一条你今天的想法或感受，要有代入感"
	if topic != "" {
		user += "。可以从这个话题获得灵感：" + topic
	}

	text, err := b.ask(ctx, postPrompt, user)
	if err != nil || strings.TrimSpace(text) == "" {
		b.log.Warn("generate post failed, using fallback", "error", err)
		return FallbackPost
	}
	return text
}

// GenerateComment writes a reply to postContent.
func (b *Brain) GenerateComment(ctx context.Context, postContent string, encouraging bool) string {
	tone, fallback := commentNatural, FallbackCommentNatural
	if encouraging {
		tone, fallback = commentEncouraging, FallbackCommentEncourage
	}

	text, err := b.ask(ctx, fmt.Sprintf(commentPrompt, tone), fmt.Sprintf("请对这条帖子进行评论：%q", postContent))
	if err != nil || strings.TrimSpace(text) == "" {
		b.log.Warn("generate comment failed, using fallback", "error", err)
		return fallback
	}
	return text
}

// GenerateAIDiary writes the companion's diary from the most recent messages.
func (b *Brain) GenerateAIDiary(ctx context.Context, history []model.Message) string {
	if len(history) > aiDiaryContext {
		history = history[len(history)-aiDiaryContext:]
	}
	lines := make([]string, 0, len(history))
	for _, m := range history {
		speaker := "我"
		if m.Role == model.RoleUser {
			speaker = "用户"
		}
		lines = append(lines, speaker+"："+m.Content)
	}

	text, err := b.ask(ctx, aiDiaryPrompt, "根据今天的对话记录，写一篇你的日记：\n"+strings.Join(lines, "\n"))
	if err != nil || strings.TrimSpace(text) == "" {
		b.log.Warn("generate ai diary failed, using fallback", "error", err)
		return FallbackAIDiary
	}
	return text
}

// CategorizeDiary returns a short category label for a diary entry.
func (b *Brain) CategorizeDiary(ctx context.Context, content string) string {
	text, err := b.ask(ctx, categorizePrompt, fmt.Sprintf("请为这篇日记分类：%q", content))
	text = strings.TrimSpace(text)
	if err != nil || text == "" {
		b.log.Warn("categorize diary failed, using fallback", "error", err)
		return FallbackCategory
	}
	return text
}

// GenerateDiaryTitle returns a title for a diary entry.
func (b *Brain) GenerateDiaryTitle(ctx context.Context, content string) string {
	text, err := b.ask(ctx, titlePrompt, fmt.Sprintf("请为这篇日记生成标题：%q", content))
	text = strings.TrimSpace(text)
	if err != nil || text == "" {
		b.log.Warn("generate diary title failed, using fallback", "error", err)
		return b.now().Format(DisplayDateLayout) + " 的记录"
	}
	return text
}

// SummarizeDiary returns a short summary of a long diary entry.
func (b *Brain) SummarizeDiary(ctx context.Context, content string) string {
	text, err := b.ask(ctx, summaryPrompt, fmt.Sprintf("请为这篇日记生成摘要：%q", content))
	text = strings.TrimSpace(text)
	if err != nil || text == "" {
		b.log.Warn("summarize diary failed, using fallback", "error", err)
		return FallbackSummary(content)
	}
	return text
}

// FallbackSummary keeps the first 30 characters of content.
func FallbackSummary(content string) string {
	r := []rune(content)
	if len(r) > 30 {
		r = r[:30]
	}
	return string(r) + "..."
}

// AnalyzeMood asks the completion service for a mood sample of text.
// On any failure it returns mood.Fallback() together with the error.
func (b *Brain) AnalyzeMood(ctx context.Context, text string) (model.MoodSample, error) {
	raw, err := b.ask(ctx, moodPrompt, fmt.Sprintf("请分析这段文字的情感：%q", text))
	if err != nil {
		return mood.Fallback(), fmt.Errorf("analyze mood: %w", err)
	}
	sample, err := mood.Parse(raw)
	if err != nil {
		return sample, fmt.Errorf("analyze mood: %w", err)
	}
	return sample, nil
}
