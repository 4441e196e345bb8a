package storage

import (
	"context"

	"soulball/internal/model"
)

// GetPosts returns all posts, most recent first.
func (s *Store) GetPosts(ctx context.Context) []model.Post {
	return loadList[model.Post](ctx, s, KeyPosts)
}

// GetPost returns the post with the given id, or nil when it does not exist.
func (s *Store) GetPost(ctx context.Context, id string) *model.Post {
	for _, p := range s.GetPosts(ctx) {
		if p.ID == id {
			return &p
		}
	}
	return nil
}

// AddPost assigns an id and a creation timestamp to p and stores it in front
// of the feed. It returns nil when the post could not be saved.
func (s *Store) AddPost(ctx context.Context, p model.Post) *model.Post {
	p.ID = s.newID()
	p.Timestamp = s.now()
	if p.Comments == nil {
		p.Comments = []model.Comment{}
	}
	if p.Likes < 0 {
		p.Likes = 0
	}

	ok := mutateList(ctx, s, KeyPosts, func(posts []model.Post) ([]model.Post, bool) {
		return prepend(posts, p), true
	})
	if !ok {
		return nil
	}
	return &p
}

// UpdatePost shallow-merges patch into the post with the given id.
// It returns the updated post, or nil when the post was not found.
func (s *Store) UpdatePost(ctx context.Context, id string, patch model.PostPatch) *model.Post {
	return s.modifyPost(ctx, id, func(p *model.Post) {
		applyPostPatch(p, patch)
	})
}

// LikePost records a like by the user.
func (s *Store) LikePost(ctx context.Context, id string) *model.Post {
	return s.modifyPost(ctx, id, func(p *model.Post) {
		p.Likes++
		p.UserLiked = true
	})
}

// AddLikes adds n likes from other users. Non-positive n leaves the count unchanged.
func (s *Store) AddLikes(ctx context.Context, id string, n int) *model.Post {
	return s.modifyPost(ctx, id, func(p *model.Post) {
		if n > 0 {
			p.Likes += n
		}
	})
}

// AddComment appends c to the post with the given id after assigning it an
// id and a timestamp. It returns nil when the post does not exist.
func (s *Store) AddComment(ctx context.Context, postID string, c model.Comment) *model.Comment {
	c.ID = s.newID()
	c.Timestamp = s.now()

	post := s.modifyPost(ctx, postID, func(p *model.Post) {
		p.Comments = append(p.Comments, c)
	})
	if post == nil {
		return nil
	}
	return &c
}

func (s *Store) modifyPost(ctx context.Context, id string, fn func(*model.Post)) *model.Post {
	var updated *model.Post
	ok := mutateList(ctx, s, KeyPosts, func(posts []model.Post) ([]model.Post, bool) {
		for i := range posts {
			if posts[i].ID != id {
				continue
			}
			fn(&posts[i])
			p := posts[i]
			updated = &p
			return posts, true
		}
		return posts, false
	})
	if !ok {
		return nil
	}
	return updated
}

func applyPostPatch(p *model.Post, patch model.PostPatch) {
	if patch.Content != nil {
		p.Content = *patch.Content
	}
	if patch.Likes != nil {
		p.Likes = *patch.Likes
	}
	if patch.Comments != nil {
		p.Comments = patch.Comments
	}
	if patch.UserLiked != nil {
		p.UserLiked = *patch.UserLiked
	}
	if patch.UserCommented != nil {
		p.UserCommented = *patch.UserCommented
	}
	if patch.LastShownDate != nil {
		p.LastShownDate = *patch.LastShownDate
	}
}
