package storage

import (
	"context"

	"soulball/internal/model"
)

// GetMoodEntries returns the mood log, oldest first.
func (s *Store) GetMoodEntries(ctx context.Context) []model.MoodEntry {
	return loadList[model.MoodEntry](ctx, s, KeyMoodEntries)
}

// AddMoodEntry appends e to the mood log.
func (s *Store) AddMoodEntry(ctx context.Context, e model.MoodEntry) *model.MoodEntry {
	e.ID = s.newID()
	e.Timestamp = s.now()

	ok := mutateList(ctx, s, KeyMoodEntries, func(entries []model.MoodEntry) ([]model.MoodEntry, bool) {
		return append(entries, e), true
	})
	if !ok {
		return nil
	}
	return &e
}

// GetConversationHistory returns the conversation log, oldest first.
func (s *Store) GetConversationHistory(ctx context.Context) []model.Message {
	return loadList[model.Message](ctx, s, KeyConversationHistory)
}

// SaveConversationHistory replaces the log. Messages without a timestamp get the current time.
func (s *Store) SaveConversationHistory(ctx context.Context, history []model.Message) bool {
	now := s.now()
	stamped := make([]model.Message, len(history))
	for i, m := range history {
		if m.Timestamp.IsZero() {
			m.Timestamp = now
		}
		stamped[i] = m
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write(ctx, KeyConversationHistory, stamped); err != nil {
		s.log.Error("save conversation history", "error", err)
		return false
	}
	return true
}

// AppendMessages adds msgs to the end of the log.
func (s *Store) AppendMessages(ctx context.Context, msgs ...model.Message) bool {
	now := s.now()
	return mutateList(ctx, s, KeyConversationHistory, func(history []model.Message) ([]model.Message, bool) {
		for _, m := range msgs {
			if m.Timestamp.IsZero() {
				m.Timestamp = now
			}
			history = append(history, m)
		}
		return history, true
	})
}

// ClearConversationHistory removes the whole log.
func (s *Store) ClearConversationHistory(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.medium.Remove(ctx, KeyConversationHistory); err != nil {
		s.log.Error("clear conversation history", "error", err)
		return false
	}
	return true
}

// GetUserProfile returns the stored profile or a default one.
func (s *Store) GetUserProfile(ctx context.Context) model.UserProfile {
	def := model.UserProfile{Name: "用户", Preferences: map[string]string{}, CreatedAt: s.now()}
	var p *model.UserProfile
	if err := s.read(ctx, KeyUserProfile, &p); err != nil {
		s.log.Error("load user profile", "error", err)
		return def
	}
	if p == nil {
		return def
	}
	if p.Preferences == nil {
		p.Preferences = map[string]string{}
	}
	return *p
}

// SaveUserProfile replaces the stored profile.
func (s *Store) SaveUserProfile(ctx context.Context, p model.UserProfile) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write(ctx, KeyUserProfile, p); err != nil {
		s.log.Error("save user profile", "error", err)
		return false
	}
	return true
}

// DefaultAIPersonality is the personality used before any interaction.
func DefaultAIPersonality() model.AIPersonality {
	return model.AIPersonality{Traits: []string{"温暖", "善解人意", "鼓励"}}
}

// GetAIPersonality returns the stored personality or the default one.
func (s *Store) GetAIPersonality(ctx context.Context) model.AIPersonality {
	var p *model.AIPersonality
	if err := s.read(ctx, KeyAIPersonality, &p); err != nil {
		s.log.Error("load ai personality", "error", err)
		return DefaultAIPersonality()
	}
	if p == nil {
		return DefaultAIPersonality()
	}
	return *p
}

// UpdateAIPersonality applies fn to the current personality and saves it.
func (s *Store) UpdateAIPersonality(ctx context.Context, fn func(*model.AIPersonality)) *model.AIPersonality {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := DefaultAIPersonality()
	var stored *model.AIPersonality
	if !s.readForUpdate(ctx, KeyAIPersonality, &stored) {
		return nil
	}
	if stored != nil {
		p = *stored
	}

	fn(&p)
	if err := s.write(ctx, KeyAIPersonality, p); err != nil {
		s.log.Error("save ai personality", "error", err)
		return nil
	}
	return &p
}

// APIKey returns the locally stored completion API key, or "" when unset.
func (s *Store) APIKey(ctx context.Context) string {
	v, _, err := s.medium.Get(ctx, KeyAPIKey)
	if err != nil {
		s.log.Error("load api key", "error", err)
		return ""
	}
	return v
}

// SetAPIKey stores the completion API key.
func (s *Store) SetAPIKey(ctx context.Context, key string) bool {
	if err := s.medium.Set(ctx, KeyAPIKey, key); err != nil {
		s.log.Error("save api key", "error", err)
		return false
	}
	return true
}
