package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/araddon/dateparse"

	"soulball/internal/model"
)

// Export returns a snapshot of every collection.
func (s *Store) Export(ctx context.Context) model.Export {
	return model.Export{
		ConversationHistory: s.GetConversationHistory(ctx),
		Posts:               s.GetPosts(ctx),
		DiaryEntries:        s.GetDiaryEntries(ctx),
		AIDiaries:           s.GetAIDiaries(ctx),
		MoodEntries:         s.GetMoodEntries(ctx),
		UserProfile:         s.GetUserProfile(ctx),
		AIPersonality:       s.GetAIPersonality(ctx),
		Notifications:       s.GetNotifications(ctx),
		Favorites:           s.GetFavorites(ctx),
		ViewedPosts:         s.GetViewCounts(ctx),
		ExportDate:          s.now(),
	}
}

// Import replaces every collection with the content of e. Records keep
// their ids and timestamps. Post.LastShownDate values written by older
// clients in free-form date formats are normalized to model.DateLayout.
func (s *Store) Import(ctx context.Context, e model.Export) error {
	posts := make([]model.Post, len(e.Posts))
	for i, p := range e.Posts {
		p.LastShownDate = NormalizeDay(p.LastShownDate)
		if p.Comments == nil {
			p.Comments = []model.Comment{}
		}
		posts[i] = p
	}
	if len(e.Notifications) > MaxNotifications {
		e.Notifications = e.Notifications[:MaxNotifications]
	}
	views := e.ViewedPosts
	if views == nil {
		views = model.ViewCounts{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	writes := []struct {
		key string
		v   any
	}{
		{KeyConversationHistory, nonNil(e.ConversationHistory)},
		{KeyPosts, posts},
		{KeyDiaryEntries, nonNil(e.DiaryEntries)},
		{KeyAIDiaries, nonNil(e.AIDiaries)},
		{KeyMoodEntries, nonNil(e.MoodEntries)},
		{KeyUserProfile, e.UserProfile},
		{KeyAIPersonality, e.AIPersonality},
		{KeyNotifications, nonNil(e.Notifications)},
		{KeyFavorites, nonNil(e.Favorites)},
		{KeyViewedPosts, views},
	}
	for _, w := range writes {
		if err := s.write(ctx, w.key, w.v); err != nil {
			return fmt.Errorf("import %s: %w", w.key, err)
		}
	}
	return nil
}

// ClearAll removes every collection. The API key is kept.
func (s *Store) ClearAll(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.medium.MultiRemove(ctx, AllKeys...); err != nil {
		s.log.Error("clear all data", "error", err)
		return false
	}
	return true
}

// NormalizeDay converts any recognizable date string to model.DateLayout.
// Unparseable input yields "".
func NormalizeDay(v string) string {
	if v == "" {
		return ""
	}
	if _, err := time.Parse(model.DateLayout, v); err == nil {
		return v
	}
	t, err := dateparse.ParseLocal(v)
	if err != nil {
		return ""
	}
	return model.Day(t)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
