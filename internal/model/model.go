// Package model defines the domain types used across the application.
package model

import "time"

// DateLayout is the layout of calendar-day strings such as Post.LastShownDate.
const DateLayout = "2006-01-02"

// Role identifies the speaker of a conversation message.
type Role string

// Supported roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of the conversation log.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Post is a feed entry, either written by the user or synthetic.
type Post struct {
	ID            string    `json:"id"`
	Content       string    `json:"content"`
	Author        string    `json:"author"`
	Timestamp     time.Time `json:"timestamp"`
	Likes         int       `json:"likes"`
	Comments      []Comment `json:"comments"`
	IsUserPost    bool      `json:"isUserPost"`
	UserLiked     bool      `json:"userLiked"`
	UserCommented bool      `json:"userCommented"`
	LastShownDate string    `json:"lastShownDate,omitempty"`
}

// HasInteraction reports whether the user liked or commented on the post.
func (p Post) HasInteraction() bool {
	return p.UserLiked || p.UserCommented
}

// PostPatch carries the fields of a shallow post update. Nil fields are left untouched.
type PostPatch struct {
	Content       *string
	Likes         *int
	Comments      []Comment
	UserLiked     *bool
	UserCommented *bool
	LastShownDate *string
}

// Comment is a reply attached to exactly one post.
type Comment struct {
	ID            string    `json:"id"`
	Content       string    `json:"content"`
	Author        string    `json:"author"`
	Timestamp     time.Time `json:"timestamp"`
	IsUserComment bool      `json:"isUserComment"`
}

// MoodSample is a categorized emotional reading.
type MoodSample struct {
	Mood      string   `json:"mood"`
	Intensity int      `json:"intensity"`
	Keywords  []string `json:"keywords"`
}

// DiaryEntry is a diary page written by the user.
type DiaryEntry struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Content   string      `json:"content"`
	Category  string      `json:"category"`
	Mood      *MoodSample `json:"mood,omitempty"`
	Summary   *string     `json:"summary,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// DiaryPatch carries the fields of a shallow diary update.
type DiaryPatch struct {
	Title    *string
	Content  *string
	Category *string
	Summary  *string
}

// AIDiary is the companion's own daily diary.
type AIDiary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// MoodSource tells where a mood entry came from.
type MoodSource string

// Supported mood sources.
const (
	SourceChat  MoodSource = "chat"
	SourceDiary MoodSource = "diary"
)

// MoodEntry is one record of the append-only mood log.
type MoodEntry struct {
	ID         string      `json:"id"`
	Source     MoodSource  `json:"source"`
	UserInput  string      `json:"userInput,omitempty"`
	Content    string      `json:"content,omitempty"`
	AIResponse *string     `json:"aiResponse,omitempty"`
	Mood       *MoodSample `json:"mood,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
}

// NotificationType defines what triggered a notification.
type NotificationType string

// Supported notification types.
const (
	NotifyLike    NotificationType = "like"
	NotifyComment NotificationType = "comment"
)

// Notification points at a post by id without owning it.
type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	PostID    string           `json:"postId"`
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	Read      bool             `json:"read"`
}

// FavoriteType tells what kind of item was favorited.
type FavoriteType string

// Supported favorite types.
const (
	FavoritePost    FavoriteType = "post"
	FavoriteComment FavoriteType = "comment"
)

// FavoriteItem is a snapshot of a favorited post or comment.
// OriginalID is a weak reference: the source may no longer exist.
type FavoriteItem struct {
	ID           string       `json:"id"`
	OriginalID   string       `json:"originalId"`
	Type         FavoriteType `json:"type"`
	Content      string       `json:"content"`
	Author       string       `json:"author"`
	Timestamp    time.Time    `json:"timestamp"`
	OriginalData Post         `json:"originalData"`
}

// ViewCounts maps a post id to the number of times it was rendered.
type ViewCounts map[string]int

// UserProfile holds the user's display name and free-form preferences.
type UserProfile struct {
	Name        string            `json:"name"`
	Preferences map[string]string `json:"preferences"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// AIPersonality tracks how the companion presents itself.
type AIPersonality struct {
	Traits           []string `json:"traits"`
	AdaptationLevel  int      `json:"adaptationLevel"`
	InteractionCount int      `json:"interactionCount"`
}

// Export is a snapshot of every collection.
type Export struct {
	ConversationHistory []Message      `json:"conversationHistory"`
	Posts               []Post         `json:"posts"`
	DiaryEntries        []DiaryEntry   `json:"diaryEntries"`
	AIDiaries           []AIDiary      `json:"aiDiaries"`
	MoodEntries         []MoodEntry    `json:"moodEntries"`
	UserProfile         UserProfile    `json:"userProfile"`
	AIPersonality       AIPersonality  `json:"aiPersonality"`
	Notifications       []Notification `json:"notifications"`
	Favorites           []FavoriteItem `json:"favorites"`
	ViewedPosts         ViewCounts     `json:"viewedPosts"`
	ExportDate          time.Time      `json:"exportDate"`
}

// Day formats t as a calendar-day string in t's location.
func Day(t time.Time) string {
	return t.Format(DateLayout)
}
