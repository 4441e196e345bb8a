// Package diary manages the user's diary and the companion's daily diary.
package diary

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"soulball/internal/brain"
	"soulball/internal/model"
	"soulball/internal/mood"
	"soulball/internal/storage"
)

// Category filters understood by List besides the user categories.
const (
	CategoryAll = "全部"
	CategoryAI  = "AI的日记"
)

// summaryThreshold is the content length in runes above which a summary is written.
const summaryThreshold = 20

// ErrEmptyContent is returned when saving a diary entry without content.
var ErrEmptyContent = errors.New("diary content is empty")

// Writer produces the generated parts of diary entries.
type Writer interface {
	CategorizeDiary(ctx context.Context, content string) string
	GenerateDiaryTitle(ctx context.Context, content string) string
	SummarizeDiary(ctx context.Context, content string) string
	AnalyzeMood(ctx context.Context, text string) (model.MoodSample, error)
	GenerateAIDiary(ctx context.Context, history []model.Message) string
}

// Page is a diary entry as listed, written either by the user or the companion.
type Page struct {
	ID        string
	Title     string
	Content   string
	Category  string
	Summary   string
	Mood      *model.MoodSample
	Timestamp time.Time
	AI        bool
}

// Service implements the diary operations.
type Service struct {
	store  *storage.Store
	writer Writer
	log    *slog.Logger
}

// New creates a Service.
func New(store *storage.Store, writer Writer, log *slog.Logger) *Service {
	return &Service{store: store, writer: writer, log: log}
}

// Save stores a new entry. An empty title is generated; content longer
// than 20 characters gets a summary. The entry's mood is also appended to
// the mood log.
func (s *Service) Save(ctx context.Context, title, content string) (*model.DiaryEntry, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = s.writer.GenerateDiaryTitle(ctx, content)
	}

	entry := model.DiaryEntry{
		Title:    title,
		Content:  content,
		Category: s.writer.CategorizeDiary(ctx, content),
	}
	if len([]rune(content)) > summaryThreshold {
		summary := s.writer.SummarizeDiary(ctx, content)
		entry.Summary = &summary
	}

	sample, err := s.writer.AnalyzeMood(ctx, content)
	if err != nil {
		s.log.Warn("analyze diary mood failed, using neutral", "error", err)
		sample = mood.Fallback()
	}
	entry.Mood = &sample

	saved := s.store.AddDiaryEntry(ctx, entry)
	if saved == nil {
		return nil, fmt.Errorf("save diary entry: store rejected the entry")
	}

	if s.store.AddMoodEntry(ctx, model.MoodEntry{
		Source:  model.SourceDiary,
		Content: content,
		Mood:    &sample,
	}) == nil {
		s.log.Warn("diary mood entry not recorded", "diary_id", saved.ID)
	}

	s.log.Info("diary entry saved", "diary_id", saved.ID, "category", saved.Category)
	return saved, nil
}

// Delete removes the user's entry with the given id.
func (s *Service) Delete(ctx context.Context, id string) error {
	if !s.store.DeleteDiaryEntry(ctx, id) {
		return fmt.Errorf("delete diary entry %s: not found or not saved", id)
	}
	return nil
}

// Categories returns the filters available to List: all, AI diaries, then
// every category used by the user's entries in first-seen order.
func (s *Service) Categories(ctx context.Context) []string {
	out := []string{CategoryAll, CategoryAI}
	for _, e := range s.store.GetDiaryEntries(ctx) {
		if e.Category != "" && !slices.Contains(out, e.Category) {
			out = append(out, e.Category)
		}
	}
	return out
}

// List returns the pages in category whose title or content contains
// query, most recent first. An empty category means CategoryAll.
func (s *Service) List(ctx context.Context, category, query string) []Page {
	var pages []Page
	if category == "" || category == CategoryAll || category == CategoryAI {
		for _, d := range s.store.GetAIDiaries(ctx) {
			pages = append(pages, Page{
				ID:        d.ID,
				Title:     d.Title,
				Content:   d.Content,
				Category:  CategoryAI,
				Timestamp: d.Timestamp,
				AI:        true,
			})
		}
	}
	if category != CategoryAI {
		for _, e := range s.store.GetDiaryEntries(ctx) {
			if category != "" && category != CategoryAll && e.Category != category {
				continue
			}
			p := Page{
				ID:        e.ID,
				Title:     e.Title,
				Content:   e.Content,
				Category:  e.Category,
				Mood:      e.Mood,
				Timestamp: e.Timestamp,
			}
			if e.Summary != nil {
				p.Summary = *e.Summary
			}
			pages = append(pages, p)
		}
	}

	if query = strings.TrimSpace(query); query != "" {
		pages = slices.DeleteFunc(pages, func(p Page) bool {
			return !strings.Contains(p.Title, query) && !strings.Contains(p.Content, query)
		})
	}

	slices.SortStableFunc(pages, func(a, b Page) int {
		return cmp.Compare(b.Timestamp.UnixNano(), a.Timestamp.UnixNano())
	})
	return pages
}

// GenerateAIDiaryIfNeeded writes the companion's diary for the day of now.
// It does nothing when a diary for that day exists or when there was no
// conversation that day, returning nil.
func (s *Service) GenerateAIDiaryIfNeeded(ctx context.Context, now time.Time) *model.AIDiary {
	today := model.Day(now)
	if last := s.store.GetLastAIDiary(ctx); last != nil && model.Day(last.Timestamp.In(now.Location())) == today {
		return nil
	}

	var todays []model.Message
	for _, m := range s.store.GetConversationHistory(ctx) {
		if model.Day(m.Timestamp.In(now.Location())) == today {
			todays = append(todays, m)
		}
	}
	if len(todays) == 0 {
		s.log.Debug("no conversation today, skipping ai diary")
		return nil
	}

	d := s.store.AddAIDiary(ctx, model.AIDiary{
		Title:   now.Format(brain.DisplayDateLayout) + " 的思考",
		Content: s.writer.GenerateAIDiary(ctx, todays),
	})
	if d == nil {
		s.log.Error("ai diary not saved")
		return nil
	}
	s.log.Info("ai diary written", "diary_id", d.ID, "messages", len(todays))
	return d
}
