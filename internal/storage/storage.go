// Package storage defines the persistence medium, its implementations and
// the typed collection store built on top of it.
package storage

import "context"

// Keys of the persisted collections.
const (
	KeyConversationHistory = "conversation_history"
	KeyPosts               = "posts"
	KeyDiaryEntries        = "diary_entries"
	KeyAIDiaries           = "ai_diaries"
	KeyMoodEntries         = "mood_entries"
	KeyUserProfile         = "user_profile"
	KeyAIPersonality       = "ai_personality"
	KeyNotifications       = "notifications"
	KeyFavorites           = "favorites"
	KeyViewedPosts         = "viewed_posts"
	KeyAPIKey              = "api_key"
)

// AllKeys lists every key owned by the store.
var AllKeys = []string{
	KeyConversationHistory,
	KeyPosts,
	KeyDiaryEntries,
	KeyAIDiaries,
	KeyMoodEntries,
	KeyUserProfile,
	KeyAIPersonality,
	KeyNotifications,
	KeyFavorites,
	KeyViewedPosts,
}

// Medium is a string-only key-value backend. Values are opaque to it;
// callers serialize.
type Medium interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	MultiRemove(ctx context.Context, keys ...string) error
	Close() error
}
