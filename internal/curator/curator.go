// Package curator decides which posts the feed shows, keeps the feed
// populated with synthetic posts and simulates reactions from other users.
package curator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"soulball/internal/model"
	"soulball/internal/scheduler"
	"soulball/internal/storage"
)

// UserAuthor is the author name of posts and comments written by the user.
const UserAuthor = "我"

// Notification messages.
const (
	msgCommentReply  = "你的评论收到了回复"
	msgPostReactions = "你的帖子收到了点赞和评论"
)

// ErrEmptyContent is returned when publishing or commenting blank text.
var ErrEmptyContent = errors.New("content is empty")

// Generator writes synthetic posts and comments.
type Generator interface {
	GeneratePost(ctx context.Context, topic string) string
	GenerateComment(ctx context.Context, postContent string, encouraging bool) string
}

// TopicSource suggests a topic for the next synthetic post. An empty
// topic lets the generator choose.
type TopicSource interface {
	Topic(ctx context.Context) string
}

// Range is a closed interval of delays.
type Range struct {
	Min time.Duration
	Max time.Duration
}

// Config tunes the feed rules.
type Config struct {
	FeedSize         int
	PageSize         int
	PrefetchDistance int
	RetireAfter      time.Duration
	RetireViews      int
	LikeReaction     Range
	CommentReaction  Range
	PublishReaction  Range
}

// DefaultConfig returns the production feed rules.
func DefaultConfig() Config {
	return Config{
		FeedSize:         10,
		PageSize:         5,
		PrefetchDistance: 5,
		RetireAfter:      7 * 24 * time.Hour,
		RetireViews:      2,
		LikeReaction:     Range{Min: 2 * time.Second, Max: 5 * time.Second},
		CommentReaction:  Range{Min: 3 * time.Second, Max: 7 * time.Second},
		PublishReaction:  Range{Min: 2 * time.Second, Max: 5 * time.Second},
	}
}

// Curator implements the feed rules on top of the store.
type Curator struct {
	store  *storage.Store
	gen    Generator
	topics TopicSource
	sched  *scheduler.Scheduler
	log    *slog.Logger
	cfg    Config
	now    func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand

	extending atomic.Bool

	mu      sync.Mutex
	closed  bool
	seq     uint64
	pending map[uint64]*scheduler.Handle
}

// New creates a Curator. topics may be nil.
func New(store *storage.Store, gen Generator, topics TopicSource, sched *scheduler.Scheduler, cfg Config, log *slog.Logger) *Curator {
	return &Curator{
		store:   store,
		gen:     gen,
		topics:  topics,
		sched:   sched,
		log:     log,
		cfg:     cfg,
		now:     time.Now,
		rng:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		pending: make(map[uint64]*scheduler.Handle),
	}
}

// SetClock overrides the time source used by the visibility rules.
func (c *Curator) SetClock(now func() time.Time) {
	c.now = now
}

// Visible reports whether a post may be shown in the feed.
//
// User posts are always visible. A synthetic post is retired once it was
// viewed at least retireViews times without any interaction and is at
// least retireAfter old. A synthetic post already shown today is hidden
// until tomorrow.
func Visible(p model.Post, views int, now time.Time, retireViews int, retireAfter time.Duration) bool {
	if p.IsUserPost {
		return true
	}
	if views >= retireViews && !p.HasInteraction() && now.Sub(p.Timestamp) >= retireAfter {
		return false
	}
	if p.LastShownDate == model.Day(now) && views > 0 {
		return false
	}
	return true
}

// VisiblePosts filters posts with Visible.
func (c *Curator) VisiblePosts(posts []model.Post, views model.ViewCounts) []model.Post {
	now := c.now()
	visible := make([]model.Post, 0, len(posts))
	for _, p := range posts {
		if Visible(p, views[p.ID], now, c.cfg.RetireViews, c.cfg.RetireAfter) {
			visible = append(visible, p)
		}
	}
	return visible
}

// LoadFeed returns the visible posts, generating synthetic posts until at
// least FeedSize are visible.
func (c *Curator) LoadFeed(ctx context.Context) []model.Post {
	visible := c.VisiblePosts(c.store.GetPosts(ctx), c.store.GetViewCounts(ctx))
	if short := c.cfg.FeedSize - len(visible); short > 0 {
		c.log.Info("feed below target, generating posts", "visible", len(visible), "generating", short)
		fresh := c.generate(ctx, short)
		visible = append(fresh, visible...)
	}
	return visible
}

// MaybeExtend generates another page of posts when the reader is within
// PrefetchDistance of the end. Only one extension runs at a time; it
// returns the generated posts.
func (c *Curator) MaybeExtend(ctx context.Context, total, scrolled int) []model.Post {
	if total-scrolled > c.cfg.PrefetchDistance {
		return nil
	}
	if !c.extending.CompareAndSwap(false, true) {
		c.log.Debug("feed extension already running")
		return nil
	}
	defer c.extending.Store(false)
	return c.generate(ctx, c.cfg.PageSize)
}

// generate creates n synthetic posts with 1-3 comments each, newest first.
func (c *Curator) generate(ctx context.Context, n int) []model.Post {
	var created []model.Post
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			break
		}
		topic := ""
		if c.topics != nil {
			topic = c.topics.Topic(ctx)
		}
		content := c.gen.GeneratePost(ctx, topic)
		post := c.store.AddPost(ctx, model.Post{
			Content: content,
			Author:  c.randomAuthor(),
			Likes:   5 + c.intn(50),
		})
		if post == nil {
			continue
		}

		comments := 1 + c.intn(3)
		for j := 0; j < comments; j++ {
			c.store.AddComment(ctx, post.ID, model.Comment{
				Content: c.gen.GenerateComment(ctx, content, true),
				Author:  c.randomAuthor(),
			})
		}
		if p := c.store.GetPost(ctx, post.ID); p != nil {
			created = append(created, *p)
		}
	}

	// Store order is newest first.
	for i, j := 0, len(created)-1; i < j; i, j = i+1, j-1 {
		created[i], created[j] = created[j], created[i]
	}
	return created
}

// MarkViewed records one view of each rendered post and stamps synthetic
// posts as shown today.
func (c *Curator) MarkViewed(ctx context.Context, ids ...string) {
	today := model.Day(c.now())
	for _, id := range ids {
		c.store.IncrementViews(ctx, id)
		p := c.store.GetPost(ctx, id)
		if p == nil || p.IsUserPost || p.LastShownDate == today {
			continue
		}
		c.store.UpdatePost(ctx, id, model.PostPatch{LastShownDate: &today})
	}
}

// Like records the user's like, favorites the post and schedules 1-3
// additional likes from other users. It returns nil for unknown posts.
func (c *Curator) Like(ctx context.Context, id string) *model.Post {
	post := c.store.LikePost(ctx, id)
	if post == nil {
		return nil
	}
	c.store.AddToFavorites(ctx, *post)
	c.MarkViewed(ctx, id)

	c.schedule("like reaction", c.cfg.LikeReaction, func(ctx context.Context) {
		extra := 1 + c.intn(3)
		if c.store.AddLikes(ctx, id, extra) == nil {
			c.log.Debug("liked post vanished before reaction", "post_id", id)
		}
	})
	return post
}

// Comment adds the user's comment and schedules a generated reply followed
// by a comment notification. It returns nil for unknown posts.
func (c *Curator) Comment(ctx context.Context, id, text string) (*model.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyContent
	}

	comment := c.store.AddComment(ctx, id, model.Comment{
		Content:       text,
		Author:        UserAuthor,
		IsUserComment: true,
	})
	if comment == nil {
		return nil, nil
	}
	userCommented := true
	c.store.UpdatePost(ctx, id, model.PostPatch{UserCommented: &userCommented})
	c.MarkViewed(ctx, id)

	c.schedule("comment reaction", c.cfg.CommentReaction, func(ctx context.Context) {
		reply := c.gen.GenerateComment(ctx, text, true)
		if c.store.AddComment(ctx, id, model.Comment{Content: reply, Author: c.randomAuthor()}) == nil {
			c.log.Debug("commented post vanished before reply", "post_id", id)
			return
		}
		c.store.AddNotification(ctx, model.Notification{
			Type:    model.NotifyComment,
			PostID:  id,
			Message: msgCommentReply,
		})
	})
	return comment, nil
}

// Publish stores a user post and schedules likes, an encouraging comment
// and a like notification.
func (c *Curator) Publish(ctx context.Context, text string) (*model.Post, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyContent
	}

	post := c.store.AddPost(ctx, model.Post{
		Content:    text,
		Author:     UserAuthor,
		IsUserPost: true,
	})
	if post == nil {
		return nil, fmt.Errorf("publish post: store rejected the post")
	}

	id := post.ID
	c.schedule("publish reaction", c.cfg.PublishReaction, func(ctx context.Context) {
		if c.store.AddLikes(ctx, id, 1+c.intn(3)) == nil {
			c.log.Debug("published post vanished before reaction", "post_id", id)
			return
		}
		c.store.AddComment(ctx, id, model.Comment{
			Content: c.gen.GenerateComment(ctx, text, true),
			Author:  c.randomAuthor(),
		})
		c.store.AddNotification(ctx, model.Notification{
			Type:    model.NotifyLike,
			PostID:  id,
			Message: msgPostReactions,
		})
	})
	return post, nil
}

// Pending returns the number of scheduled reactions not yet run.
func (c *Curator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Close cancels every scheduled reaction. Reactions never run after Close.
func (c *Curator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for id, h := range c.pending {
		h.Cancel()
		delete(c.pending, id)
	}
}

func (c *Curator) schedule(name string, r Range, job scheduler.Job) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.seq++
	id := c.seq
	h := c.sched.After(c.between(r), name, func(ctx context.Context) {
		c.mu.Lock()
		_, live := c.pending[id]
		delete(c.pending, id)
		closed := c.closed
		c.mu.Unlock()
		if !live || closed {
			return
		}
		job(ctx)
	})
	if h != nil {
		c.pending[id] = h
	}
}

func (c *Curator) randomAuthor() string {
	return fmt.Sprintf("AI用户%d", 1+c.intn(100))
}

func (c *Curator) intn(n int) int {
	c.rngMu.Lock()
	defer c.rngMu.Unlock()
	return c.rng.IntN(n)
}

func (c *Curator) between(r Range) time.Duration {
	if r.Max <= r.Min {
		return r.Min
	}
	c.rngMu.Lock()
	defer c.rngMu.Unlock()
	return r.Min + time.Duration(c.rng.Int64N(int64(r.Max-r.Min)+1))
}
