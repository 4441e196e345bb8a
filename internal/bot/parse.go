package bot

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// shortIDLen is the length of the id prefix shown to users.
const shortIDLen = 8

var (
	errNotFound  = errors.New("not found")
	errAmbiguous = errors.New("ambiguous id")
)

// ParseIDArg extracts the first word of a command argument string.
func ParseIDArg(args string) (string, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return "", fmt.Errorf("id is required")
	}
	return fields[0], nil
}

// ParseCommentArgs parses arguments for /comment.
// Format: <post_id> <text...>
func ParseCommentArgs(args string) (string, string, error) {
	parts := strings.SplitN(strings.TrimSpace(args), " ", 2)
	if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
		return "", "", fmt.Errorf("用法：/comment <帖子编号> <评论内容>")
	}
	return parts[0], strings.TrimSpace(parts[1]), nil
}

// ParseDiaryArgs parses arguments for /diary.
// Format: [title |] <content...>
func ParseDiaryArgs(args string) (string, string, error) {
	title, content := "", strings.TrimSpace(args)
	if before, after, ok := strings.Cut(content, "|"); ok {
		title, content = strings.TrimSpace(before), strings.TrimSpace(after)
	}
	if content == "" {
		return "", "", fmt.Errorf("用法：/diary [标题 |] <内容>")
	}
	return title, content, nil
}

// ParseDiaryListArgs splits /diaries arguments into a category and a
// search query. The first word is a category only when it is one of
// categories.
func ParseDiaryListArgs(args string, categories []string) (string, string) {
	args = strings.TrimSpace(args)
	first, rest, _ := strings.Cut(args, " ")
	if slices.Contains(categories, first) {
		return first, strings.TrimSpace(rest)
	}
	return "", args
}

// findByPrefix returns the single item whose id starts with prefix. An
// exact match always wins.
func findByPrefix[T any](items []T, id func(T) string, prefix string) (T, error) {
	var zero T
	if prefix == "" {
		return zero, errNotFound
	}

	var matches []T
	for _, it := range items {
		switch v := id(it); {
		case v == prefix:
			return it, nil
		case strings.HasPrefix(v, prefix):
			matches = append(matches, it)
		}
	}
	switch len(matches) {
	case 0:
		return zero, errNotFound
	case 1:
		return matches[0], nil
	default:
		return zero, errAmbiguous
	}
}

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}
