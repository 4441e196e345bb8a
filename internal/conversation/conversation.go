// Package conversation runs chat turns between the user and the companion.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"soulball/internal/brain"
	"soulball/internal/completion"
	"soulball/internal/model"
	"soulball/internal/mood"
	"soulball/internal/storage"
)

// DefaultContext is the number of most recent messages sent with each turn.
const DefaultContext = 20

// ErrEmptyMessage is returned when sending blank text.
var ErrEmptyMessage = errors.New("message is empty")

// Replier answers chat turns and reads the mood of the user's text.
type Replier interface {
	ChatReply(ctx context.Context, history []model.Message) (string, error)
	AnalyzeMood(ctx context.Context, text string) (model.MoodSample, error)
}

// Turn is the outcome of one Send.
type Turn struct {
	Reply string
	Mood  model.MoodSample
	// Fallback is set when Reply is the canned answer.
	Fallback bool
}

// Session is the single conversation of the companion.
type Session struct {
	store   *storage.Store
	replier Replier
	log     *slog.Logger
	now     func() time.Time
	context int
}

// New creates a Session.
func New(store *storage.Store, replier Replier, log *slog.Logger) *Session {
	return &Session{
		store:   store,
		replier: replier,
		log:     log,
		now:     time.Now,
		context: DefaultContext,
	}
}

// SetClock overrides the time source used for message timestamps.
func (s *Session) SetClock(now func() time.Time) {
	s.now = now
}

// Send records the user's text and the companion's reply.
//
// A missing API key is returned as completion.ErrAPIKeyMissing and nothing
// is recorded. Any other completion failure is answered with a canned reply.
func (s *Session) Send(ctx context.Context, text string) (Turn, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Turn{}, ErrEmptyMessage
	}

	user := model.Message{Role: model.RoleUser, Content: text, Timestamp: s.now()}
	history := append(s.store.GetConversationHistory(ctx), user)
	window := history
	if len(window) > s.context {
		window = window[len(window)-s.context:]
	}

	turn := Turn{}
	reply, err := s.replier.ChatReply(ctx, window)
	switch {
	case errors.Is(err, completion.ErrAPIKeyMissing):
		return Turn{}, fmt.Errorf("send message: %w", err)
	case err != nil:
		s.log.Warn("chat reply failed, using fallback", "error", err)
		reply = brain.FallbackReply
		turn.Fallback = true
	}
	turn.Reply = reply

	assistant := model.Message{Role: model.RoleAssistant, Content: reply, Timestamp: s.now()}
	if !s.store.AppendMessages(ctx, user, assistant) {
		s.log.Warn("conversation turn not persisted")
	}
	s.store.UpdateAIPersonality(ctx, func(p *model.AIPersonality) { p.InteractionCount++ })

	sample, err := s.replier.AnalyzeMood(ctx, text)
	if err != nil {
		s.log.Debug("mood analysis failed, detecting from reply", "error", err)
		sample = model.MoodSample{
			Mood:      string(mood.Detect(reply)),
			Intensity: mood.DefaultIntensity,
			Keywords:  mood.Keywords(reply),
		}
	}
	turn.Mood = sample

	if s.store.AddMoodEntry(ctx, model.MoodEntry{
		Source:     model.SourceChat,
		UserInput:  text,
		AIResponse: &reply,
		Mood:       &sample,
	}) == nil {
		s.log.Warn("chat mood entry not recorded")
	}
	return turn, nil
}

// History returns the conversation, oldest first.
func (s *Session) History(ctx context.Context) []model.Message {
	return s.store.GetConversationHistory(ctx)
}

// Clear forgets the conversation.
func (s *Session) Clear(ctx context.Context) error {
	if !s.store.ClearConversationHistory(ctx) {
		return errors.New("clear conversation: store rejected the change")
	}
	return nil
}
