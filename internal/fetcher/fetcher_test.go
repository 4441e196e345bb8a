package fetcher

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/mmcdole/gofeed"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>每日灵感</title>
    <link>https://example.com</link>
    <description>生活小事</description>
    <item><title>秋天的第一场雨</title><link>https://example.com/1</link><guid>1</guid></item>
    <item><title>城市里的慢跑者</title><link>https://example.com/2</link><guid>2</guid></item>
    <item><title>秋天的第一场雨</title><link>https://example.com/3</link><guid>3</guid></item>
    <item><title>  </title><link>https://example.com/4</link><guid>4</guid></item>
    <item><title>一封写给未来的信</title><link>https://example.com/5</link></item>
  </channel>
</rss>`

type mockTransport struct {
	mu         sync.Mutex
	body       string
	statusCode int
	err        error
	calls      int
}

func (m *mockTransport) Do(_ *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &http.Response{
		StatusCode: m.statusCode,
		Body:       io.NopCloser(bytes.NewBufferString(m.body)),
	}, nil
}

func (m *mockTransport) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func TestFetch(t *testing.T) {
	tests := []struct {
		name      string
		transport *mockTransport
		wantTitle string
		wantItems int
		wantErr   bool
	}{
		{
			name:      "successful fetch",
			transport: &mockTransport{body: sampleFeed, statusCode: 200},
			wantTitle: "每日灵感",
			wantItems: 5,
		},
		{
			name:      "http error status",
			transport: &mockTransport{body: "not found", statusCode: 404},
			wantErr:   true,
		},
		{
			name:      "network error",
			transport: &mockTransport{err: io.ErrUnexpectedEOF},
			wantErr:   true,
		},
		{
			name:      "invalid xml",
			transport: &mockTransport{body: "not xml at all", statusCode: 200},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(tt.transport)
			feed, err := f.Fetch(context.Background(), "https://example.com/rss")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if diff := cmp.Diff(tt.wantTitle, feed.Title); diff != "" {
				t.Errorf("title mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantItems, len(feed.Items)); diff != "" {
				t.Errorf("item count mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestItemGUID(t *testing.T) {
	if diff := cmp.Diff("abc-123", ItemGUID(&gofeed.Item{GUID: "abc-123"})); diff != "" {
		t.Errorf("GUID mismatch (-want +got):\n%s", diff)
	}
	got := ItemGUID(&gofeed.Item{Title: "无GUID", Link: "https://example.com/post-1"})
	if !strings.HasPrefix(got, "sha256:") {
		t.Errorf("expected sha256 prefix, got %q", got)
	}
}

func TestHeadlines(t *testing.T) {
	feed, err := gofeed.NewParser().ParseString(sampleFeed)
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{name: "distinct non-empty titles", limit: 10, want: []string{"秋天的第一场雨", "城市里的慢跑者", "一封写给未来的信"}},
		{name: "limit", limit: 2, want: []string{"秋天的第一场雨", "城市里的慢跑者"}},
		{name: "zero limit", limit: 0, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Headlines(feed.Items, tt.limit)); diff != "" {
				t.Errorf("Headlines mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTopicSource(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("disabled without url", func(t *testing.T) {
		tr := &mockTransport{body: sampleFeed, statusCode: 200}
		src := NewTopicSource(New(tr), "", log)
		if diff := cmp.Diff("", src.Topic(ctx)); diff != "" {
			t.Errorf("topic mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(0, tr.callCount()); diff != "" {
			t.Errorf("unexpected fetch (-want +got):\n%s", diff)
		}
	})

	t.Run("caches headlines until ttl", func(t *testing.T) {
		tr := &mockTransport{body: sampleFeed, statusCode: 200}
		src := NewTopicSource(New(tr), "https://example.com/rss", log)
		now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
		src.now = func() time.Time { return now }

		valid := map[string]bool{"秋天的第一场雨": true, "城市里的慢跑者": true, "一封写给未来的信": true}
		for i := 0; i < 3; i++ {
			if topic := src.Topic(ctx); !valid[topic] {
				t.Fatalf("unexpected topic %q", topic)
			}
		}
		if diff := cmp.Diff(1, tr.callCount()); diff != "" {
			t.Errorf("fetch count mismatch (-want +got):\n%s", diff)
		}

		now = now.Add(31 * time.Minute)
		src.Topic(ctx)
		if diff := cmp.Diff(2, tr.callCount()); diff != "" {
			t.Errorf("fetch count after ttl mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("fetch failure yields empty topic", func(t *testing.T) {
		tr := &mockTransport{statusCode: 500}
		src := NewTopicSource(New(tr), "https://example.com/rss", log)
		if diff := cmp.Diff("", src.Topic(ctx)); diff != "" {
			t.Errorf("topic mismatch (-want +got):\n%s", diff)
		}
	})
}
