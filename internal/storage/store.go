package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// errCorrupt marks stored content that could not be decoded.
var errCorrupt = errors.New("corrupt content")

// Store persists the typed collections of the companion on a Medium.
//
// Every collection is read and written as a whole JSON document. Failures
// are logged and never returned to callers: reads degrade to empty values,
// mutations report nil or false. A mutation whose read fails writes nothing.
// Read-modify-write cycles are serialized by mu so that two mutations of the
// same collection cannot overwrite each other.
type Store struct {
	medium Medium
	log    *slog.Logger
	mu     sync.Mutex
	now    func() time.Time
	newID  func() string
}

// NewStore creates a Store on top of medium.
func NewStore(medium Medium, log *slog.Logger) *Store {
	return &Store{
		medium: medium,
		log:    log,
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
}

// SetClock overrides the time source used for creation timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// Close closes the underlying medium.
func (s *Store) Close() error {
	return s.medium.Close()
}

func (s *Store) read(ctx context.Context, key string, dst any) error {
	raw, ok, err := s.medium.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok || raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("decode %s: %w: %w", key, errCorrupt, err)
	}
	return nil
}

func (s *Store) write(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.medium.Set(ctx, key, string(data))
}

// loadList returns the collection under key, or an empty slice on any failure.
func loadList[T any](ctx context.Context, s *Store, key string) []T {
	var items []T
	if err := s.read(ctx, key, &items); err != nil {
		s.log.Error("load collection", "key", key, "error", err)
		return []T{}
	}
	if items == nil {
		return []T{}
	}
	return items
}

// readForUpdate loads key into dst before a mutation. It reports false on a
// medium failure, in which case nothing must be written. Corrupt content is
// reported as usable so that the mutation replaces it.
func (s *Store) readForUpdate(ctx context.Context, key string, dst any) bool {
	err := s.read(ctx, key, dst)
	if err == nil {
		return true
	}
	if errors.Is(err, errCorrupt) {
		s.log.Error("replacing corrupt collection", "key", key, "error", err)
		return true
	}
	s.log.Error("load collection for update", "key", key, "error", err)
	return false
}

// mutateList runs fn on a fresh copy of the collection under key and
// persists the result when fn reports a change. The returned bool is false
// when loading or saving failed; a failed load never writes.
func mutateList[T any](ctx context.Context, s *Store, key string, fn func([]T) ([]T, bool)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []T
	if !s.readForUpdate(ctx, key, &items) {
		return false
	}

	updated, changed := fn(items)
	if !changed {
		return true
	}
	if err := s.write(ctx, key, updated); err != nil {
		s.log.Error("save collection", "key", key, "error", err)
		return false
	}
	return true
}

func prepend[T any](items []T, item T) []T {
	return append([]T{item}, items...)
}
