package curator

import (
	"fmt"

	"soulball/internal/filter"
	"soulball/internal/model"
)

// Search returns the posts whose content or author matches query.
// An empty query returns posts unchanged.
func Search(posts []model.Post, query string) ([]model.Post, error) {
	filters, err := filter.ParseQuery(query)
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	if len(filters) == 0 {
		return posts, nil
	}

	var matched []model.Post
	for _, p := range posts {
		if filter.Match(filter.Item{Author: p.Author, Content: p.Content}, filters) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}
