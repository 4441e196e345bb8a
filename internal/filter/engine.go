// Package filter implements the text matching engine used by feed and diary search.
package filter

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind defines how a filter affects matching.
type Kind string

// Supported filter kinds.
const (
	Include   Kind = "include"
	Exclude   Kind = "exclude"
	IncludeRe Kind = "include_re"
	ExcludeRe Kind = "exclude_re"
)

// Scope selects which field of an item a filter looks at.
type Scope string

// Supported scopes.
const (
	ScopeAll     Scope = "all"
	ScopeTitle   Scope = "title"
	ScopeAuthor  Scope = "author"
	ScopeContent Scope = "content"
)

// Filter is a single matching rule.
type Filter struct {
	Kind  Kind
	Scope Scope
	Value string
}

// Item is a post, comment or diary entry to be matched against filters.
type Item struct {
	Title   string
	Author  string
	Content string
}

// Match checks whether an item passes the given set of filters.
// If no filters are provided, the item always passes.
// Include filters use OR logic (at least one must match).
// Exclude filters use AND logic (none must match).
func Match(item Item, filters []Filter) bool {
	if len(filters) == 0 {
		return true
	}

	hasIncludes := false
	anyIncludeMatched := false

	for _, f := range filters {
		switch f.Kind {
		case Include, IncludeRe:
			hasIncludes = true
			if matchesFilter(item, f) {
				anyIncludeMatched = true
			}
		case Exclude, ExcludeRe:
			if matchesFilter(item, f) {
				return false
			}
		}
	}

	if hasIncludes && !anyIncludeMatched {
		return false
	}
	return true
}

func matchesFilter(item Item, f Filter) bool {
	text := textForScope(item, f.Scope)
	switch f.Kind {
	case Include, Exclude:
		return strings.Contains(text, strings.ToLower(f.Value))
	case IncludeRe, ExcludeRe:
		re, err := regexp.Compile("(?i)" + f.Value)
		if err != nil {
			return false
		}
		return re.MatchString(text)
	}
	return false
}

func textForScope(item Item, scope Scope) string {
	switch scope {
	case ScopeTitle:
		return strings.ToLower(item.Title)
	case ScopeAuthor:
		return strings.ToLower(item.Author)
	case ScopeContent:
		return strings.ToLower(item.Content)
	default:
		return strings.ToLower(item.Title + " " + item.Author + " " + item.Content)
	}
}

// ValidateRegex checks whether a pattern is a valid regular expression.
func ValidateRegex(pattern string) error {
	_, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return fmt.Errorf("invalid regex: %w", err)
	}
	return nil
}

// ParseQuery turns a search string into filters. Terms are separated by
// whitespace. A leading "-" excludes the term, a "re:" prefix makes it a
// regular expression, and "title:", "author:" or "content:" restrict its scope.
//
//	咖啡 -广告 author:AI用户7 re:^今天
func ParseQuery(q string) ([]Filter, error) {
	var filters []Filter
	for _, term := range strings.Fields(q) {
		f := Filter{Kind: Include, Scope: ScopeAll}

		if strings.HasPrefix(term, "-") && len(term) > 1 {
			f.Kind = Exclude
			term = term[1:]
		}
		for _, s := range []Scope{ScopeTitle, ScopeAuthor, ScopeContent} {
			if prefix := string(s) + ":"; strings.HasPrefix(term, prefix) {
				f.Scope = s
				term = strings.TrimPrefix(term, prefix)
				break
			}
		}
		if strings.HasPrefix(term, "re:") {
			term = strings.TrimPrefix(term, "re:")
			if err := ValidateRegex(term); err != nil {
				return nil, fmt.Errorf("parse query term %q: %w", term, err)
			}
			if f.Kind == Include {
				f.Kind = IncludeRe
			} else {
				f.Kind = ExcludeRe
			}
		}
		if term == "" {
			continue
		}
		f.Value = term
		filters = append(filters, f)
	}
	return filters, nil
}
