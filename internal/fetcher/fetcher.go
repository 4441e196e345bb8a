// Package fetcher downloads RSS feeds whose headlines inspire synthetic posts.
package fetcher

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
)

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher downloads and parses RSS feeds.
type Fetcher struct {
	client HTTPClient
}

// New creates a Fetcher with the given HTTP client.
func New(client HTTPClient) *Fetcher {
	return &Fetcher{client: client}
}

// Fetch downloads and parses an RSS feed from the given URL.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "SoulBall/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	parser := gofeed.NewParser()
	feed, err := parser.ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}

// ItemGUID returns the GUID for an RSS item.
// If the item has no GUID, a SHA-256 hash of title+link is used.
func ItemGUID(item *gofeed.Item) string {
	if item.GUID != "" {
		return item.GUID
	}
	h := sha256.Sum256([]byte(item.Title + "|" + item.Link))
	return fmt.Sprintf("sha256:%x", h[:16])
}

// Headlines returns up to limit distinct non-empty item titles.
func Headlines(items []*gofeed.Item, limit int) []string {
	seen := make(map[string]bool)
	var out []string
	for _, item := range items {
		if len(out) >= limit {
			break
		}
		title := strings.TrimSpace(item.Title)
		guid := ItemGUID(item)
		if title == "" || seen[guid] || seen[title] {
			continue
		}
		seen[guid] = true
		seen[title] = true
		out = append(out, title)
	}
	return out
}

// TopicSource hands out recent headlines of one feed as post topics.
// Headlines are cached and refreshed at most once per TTL.
type TopicSource struct {
	fetcher *Fetcher
	url     string
	log     *slog.Logger
	ttl     time.Duration
	now     func() time.Time

	mu        sync.Mutex
	headlines []string
	fetchedAt time.Time
}

// NewTopicSource creates a TopicSource. An empty url disables it.
func NewTopicSource(f *Fetcher, url string, log *slog.Logger) *TopicSource {
	return &TopicSource{
		fetcher: f,
		url:     url,
		log:     log,
		ttl:     30 * time.Minute,
		now:     time.Now,
	}
}

// Topic returns a random cached headline, or "" when none is available.
func (s *TopicSource) Topic(ctx context.Context) string {
	if s == nil || s.url == "" {
		return ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fetchedAt.IsZero() || s.now().Sub(s.fetchedAt) >= s.ttl {
		s.refresh(ctx)
	}
	if len(s.headlines) == 0 {
		return ""
	}
	return s.headlines[rand.IntN(len(s.headlines))]
}

func (s *TopicSource) refresh(ctx context.Context) {
	s.fetchedAt = s.now()
	feed, err := s.fetcher.Fetch(ctx, s.url)
	if err != nil {
		s.log.Warn("fetch inspiration feed", "url", s.url, "error", err)
		return
	}
	s.headlines = Headlines(feed.Items, 20)
	s.log.Debug("refreshed inspiration feed", "url", s.url, "headlines", len(s.headlines))
}
