package bot

import (
	"fmt"
	"strings"

	"soulball/internal/diary"
	"soulball/internal/model"
	"soulball/internal/mood"
	"soulball/internal/navigation"
)

const timeLayout = "2006-01-02 15:04"

// maxShownComments is how many comments are printed under a post.
const maxShownComments = 3

// FormatPost formats a feed post with its latest comments.
func FormatPost(p model.Post) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s · %s\n", shortID(p.ID), p.Author, p.Timestamp.Format(timeLayout))
	b.WriteString(p.Content)
	fmt.Fprintf(&b, "\n\n❤️ %d  💬 %d", p.Likes, len(p.Comments))
	if p.UserLiked {
		b.WriteString("  · 已赞")
	}

	comments := p.Comments
	if len(comments) > maxShownComments {
		comments = comments[len(comments)-maxShownComments:]
	}
	for _, c := range comments {
		fmt.Fprintf(&b, "\n  └ %s：%s", c.Author, c.Content)
	}
	return b.String()
}

// FormatPostList formats search results as a compact list.
func FormatPostList(posts []model.Post) string {
	if len(posts) == 0 {
		return "没有找到相关帖子。"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "找到 %d 条帖子：\n", len(posts))
	for _, p := range posts {
		fmt.Fprintf(&b, "\n[%s] %s：%s", shortID(p.ID), p.Author, truncate(p.Content, 40))
	}
	return b.String()
}

// FormatNotifications formats notifications, unread first marked with a dot.
func FormatNotifications(ns []model.Notification) string {
	if len(ns) == 0 {
		return "暂时没有通知。"
	}
	unread := 0
	for _, n := range ns {
		if !n.Read {
			unread++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "通知（%d 条未读）：\n", unread)
	for _, n := range ns {
		mark := "  "
		if !n.Read {
			mark = "• "
		}
		fmt.Fprintf(&b, "\n%s[%s] %s（帖子 %s，%s）", mark, shortID(n.ID), n.Message, shortID(n.PostID), n.Timestamp.Format(timeLayout))
	}
	if unread > 0 {
		b.WriteString("\n\n/read <编号> 标记已读，/read all 全部已读。")
	}
	return b.String()
}

// FormatFavorites formats the favorites list.
func FormatFavorites(favs []model.FavoriteItem) string {
	if len(favs) == 0 {
		return "还没有收藏。点赞的帖子会自动收藏。"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "我的收藏（%d）：\n", len(favs))
	for _, f := range favs {
		fmt.Fprintf(&b, "\n[%s] %s：%s", shortID(f.OriginalID), f.Author, truncate(f.Content, 40))
	}
	b.WriteString("\n\n/unfav <编号> 取消收藏。")
	return b.String()
}

// FormatDiaryEntry formats a saved diary entry.
func FormatDiaryEntry(e model.DiaryEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📔 [%s] %s\n分类：%s", shortID(e.ID), e.Title, e.Category)
	if e.Mood != nil {
		fmt.Fprintf(&b, "\n心情：%s（%d/10）", mood.Label(e.Mood.Mood).Name(), e.Mood.Intensity)
	}
	if e.Summary != nil {
		fmt.Fprintf(&b, "\n摘要：%s", *e.Summary)
	}
	return b.String()
}

// FormatDiaryList formats diary pages, most recent first.
func FormatDiaryList(pages []diary.Page, category, query string, categories []string) string {
	var b strings.Builder
	if category == "" {
		category = diary.CategoryAll
	}
	fmt.Fprintf(&b, "日记 · %s", category)
	if query != "" {
		fmt.Fprintf(&b, " · 搜索「%s」", query)
	}
	b.WriteString("\n")

	if len(pages) == 0 {
		if query != "" {
			b.WriteString("\n没有找到相关日记，试试其他关键词。")
		} else {
			b.WriteString("\n还没有日记，用 /diary 记录你的美好时光。")
		}
	}
	for _, p := range pages {
		tag := p.Category
		if p.AI {
			tag = "🤖 " + diary.CategoryAI
		}
		fmt.Fprintf(&b, "\n[%s] %s（%s，%s）", shortID(p.ID), p.Title, tag, p.Timestamp.Format(timeLayout))
		preview := p.Summary
		if preview == "" {
			preview = truncate(p.Content, 60)
		}
		fmt.Fprintf(&b, "\n  %s", preview)
	}

	if len(categories) > 0 {
		fmt.Fprintf(&b, "\n\n分类：%s", strings.Join(categories, " / "))
	}
	return b.String()
}

var windowNames = map[mood.Window]string{
	mood.Week:  "最近一周",
	mood.Month: "最近一个月",
	mood.All:   "全部",
}

// FormatMoodStats formats the mood summary of a window.
func FormatMoodStats(st mood.Stats, w mood.Window) string {
	if len(st.Order) == 0 {
		return fmt.Sprintf("%s还没有心情记录。", windowNames[w])
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s的心情（共 %d 条记录）\n", windowNames[w], st.Total)
	fmt.Fprintf(&b, "主导心情：%s\n", st.Dominant.Name())
	fmt.Fprintf(&b, "平均强度：%.1f\n", st.AvgIntensity)

	means := st.MeanByMood()
	for _, l := range st.Order {
		n := st.Counts[l]
		fmt.Fprintf(&b, "\n%s %s %d（%.0f%%，平均 %.1f）", l.Name(), strings.Repeat("█", min(n, 20)), n, st.Share(l)*100, means[l])
	}
	return b.String()
}

var screenTitles = map[navigation.Screen]string{
	navigation.Feed:  "📰 动态",
	navigation.Home:  "🔮 首页",
	navigation.Diary: "📔 日记",
	navigation.Mood:  "🌈 心情",
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
