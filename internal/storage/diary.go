package storage

import (
	"context"

	"soulball/internal/model"
)

// GetDiaryEntries returns the user's diary entries, most recent first.
func (s *Store) GetDiaryEntries(ctx context.Context) []model.DiaryEntry {
	return loadList[model.DiaryEntry](ctx, s, KeyDiaryEntries)
}

// AddDiaryEntry assigns an id and a timestamp to e and stores it first.
func (s *Store) AddDiaryEntry(ctx context.Context, e model.DiaryEntry) *model.DiaryEntry {
	e.ID = s.newID()
	e.Timestamp = s.now()

	ok := mutateList(ctx, s, KeyDiaryEntries, func(entries []model.DiaryEntry) ([]model.DiaryEntry, bool) {
		return prepend(entries, e), true
	})
	if !ok {
		return nil
	}
	return &e
}

// UpdateDiaryEntry shallow-merges patch into the entry with the given id.
func (s *Store) UpdateDiaryEntry(ctx context.Context, id string, patch model.DiaryPatch) *model.DiaryEntry {
	var updated *model.DiaryEntry
	ok := mutateList(ctx, s, KeyDiaryEntries, func(entries []model.DiaryEntry) ([]model.DiaryEntry, bool) {
		for i := range entries {
			if entries[i].ID != id {
				continue
			}
			e := &entries[i]
			if patch.Title != nil {
				e.Title = *patch.Title
			}
			if patch.Content != nil {
				e.Content = *patch.Content
			}
			if patch.Category != nil {
				e.Category = *patch.Category
			}
			if patch.Summary != nil {
				e.Summary = patch.Summary
			}
			cp := *e
			updated = &cp
			return entries, true
		}
		return entries, false
	})
	if !ok {
		return nil
	}
	return updated
}

// DeleteDiaryEntry removes the entry with the given id. It reports false
// when the entry does not exist or the collection could not be saved.
func (s *Store) DeleteDiaryEntry(ctx context.Context, id string) bool {
	found := false
	ok := mutateList(ctx, s, KeyDiaryEntries, func(entries []model.DiaryEntry) ([]model.DiaryEntry, bool) {
		kept := entries[:0]
		for _, e := range entries {
			if e.ID == id {
				found = true
				continue
			}
			kept = append(kept, e)
		}
		return kept, found
	})
	return ok && found
}

// GetAIDiaries returns the companion's diaries, most recent first.
func (s *Store) GetAIDiaries(ctx context.Context) []model.AIDiary {
	return loadList[model.AIDiary](ctx, s, KeyAIDiaries)
}

// AddAIDiary stores a new AI diary in front of the list.
func (s *Store) AddAIDiary(ctx context.Context, d model.AIDiary) *model.AIDiary {
	d.ID = s.newID()
	d.Timestamp = s.now()

	ok := mutateList(ctx, s, KeyAIDiaries, func(diaries []model.AIDiary) ([]model.AIDiary, bool) {
		return prepend(diaries, d), true
	})
	if !ok {
		return nil
	}
	return &d
}

// GetLastAIDiary returns the most recent AI diary, or nil when there is none.
func (s *Store) GetLastAIDiary(ctx context.Context) *model.AIDiary {
	diaries := s.GetAIDiaries(ctx)
	if len(diaries) == 0 {
		return nil
	}
	return &diaries[0]
}
