package storage

import (
	"context"
	"slices"

	"github.com/jinzhu/copier"

	"soulball/internal/model"
)

// MaxNotifications is the number of notifications kept; older ones are evicted.
const MaxNotifications = 50

// GetNotifications returns notifications, most recent first.
func (s *Store) GetNotifications(ctx context.Context) []model.Notification {
	return loadList[model.Notification](ctx, s, KeyNotifications)
}

// AddNotification stores n as unread and trims the list to MaxNotifications.
func (s *Store) AddNotification(ctx context.Context, n model.Notification) *model.Notification {
	n.ID = s.newID()
	n.Timestamp = s.now()
	n.Read = false

	ok := mutateList(ctx, s, KeyNotifications, func(list []model.Notification) ([]model.Notification, bool) {
		list = prepend(list, n)
		if len(list) > MaxNotifications {
			list = list[:MaxNotifications]
		}
		return list, true
	})
	if !ok {
		return nil
	}
	return &n
}

// MarkNotificationRead flags the notification as read. It reports false
// when the notification does not exist.
func (s *Store) MarkNotificationRead(ctx context.Context, id string) bool {
	found := false
	ok := mutateList(ctx, s, KeyNotifications, func(list []model.Notification) ([]model.Notification, bool) {
		for i := range list {
			if list[i].ID == id {
				list[i].Read = true
				found = true
				return list, true
			}
		}
		return list, false
	})
	return ok && found
}

// GetFavorites returns favorites, most recent first.
func (s *Store) GetFavorites(ctx context.Context) []model.FavoriteItem {
	return loadList[model.FavoriteItem](ctx, s, KeyFavorites)
}

// AddToFavorites stores a snapshot of p. Favoriting the same post twice is
// a no-op and returns the existing item.
func (s *Store) AddToFavorites(ctx context.Context, p model.Post) *model.FavoriteItem {
	var snapshot model.Post
	if err := copier.Copy(&snapshot, &p); err != nil {
		s.log.Error("snapshot favorite", "post_id", p.ID, "error", err)
		return nil
	}
	snapshot.Comments = slices.Clone(p.Comments)

	item := model.FavoriteItem{
		ID:           s.newID(),
		OriginalID:   p.ID,
		Type:         model.FavoritePost,
		Content:      p.Content,
		Author:       p.Author,
		Timestamp:    s.now(),
		OriginalData: snapshot,
	}

	result := &item
	ok := mutateList(ctx, s, KeyFavorites, func(list []model.FavoriteItem) ([]model.FavoriteItem, bool) {
		for _, fav := range list {
			if fav.OriginalID == p.ID {
				existing := fav
				result = &existing
				return list, false
			}
		}
		return prepend(list, item), true
	})
	if !ok {
		return nil
	}
	return result
}

// RemoveFromFavorites deletes every favorite pointing at originalID.
func (s *Store) RemoveFromFavorites(ctx context.Context, originalID string) bool {
	return mutateList(ctx, s, KeyFavorites, func(list []model.FavoriteItem) ([]model.FavoriteItem, bool) {
		kept := list[:0]
		for _, fav := range list {
			if fav.OriginalID != originalID {
				kept = append(kept, fav)
			}
		}
		return kept, true
	})
}

// GetViewCounts returns the per-post view counter map.
func (s *Store) GetViewCounts(ctx context.Context) model.ViewCounts {
	views := model.ViewCounts{}
	if err := s.read(ctx, KeyViewedPosts, &views); err != nil {
		s.log.Error("load view counts", "error", err)
		return model.ViewCounts{}
	}
	if views == nil {
		return model.ViewCounts{}
	}
	return views
}

// IncrementViews adds one view to postID, persists the map and returns the
// new count, or 0 when the map could not be loaded or saved.
func (s *Store) IncrementViews(ctx context.Context, postID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	views := model.ViewCounts{}
	if !s.readForUpdate(ctx, KeyViewedPosts, &views) {
		return 0
	}
	if views == nil {
		views = model.ViewCounts{}
	}
	views[postID]++
	if err := s.write(ctx, KeyViewedPosts, views); err != nil {
		s.log.Error("save view counts", "post_id", postID, "error", err)
		return 0
	}
	return views[postID]
}
