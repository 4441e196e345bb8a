package filter

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name    string
		item    Item
		filters []Filter
		want    bool
	}{
		{
			name:    "no filters passes everything",
			item:    Item{Author: "AI用户1", Content: "今天的晚霞很好看"},
			filters: nil,
			want:    true,
		},
		{
			name:    "include word matches content",
			item:    Item{Author: "AI用户1", Content: "下午喝了一杯咖啡"},
			filters: []Filter{{Kind: Include, Scope: ScopeAll, Value: "咖啡"}},
			want:    true,
		},
		{
			name:    "include word no match",
			item:    Item{Author: "AI用户1", Content: "下午喝了一杯茶"},
			filters: []Filter{{Kind: Include, Scope: ScopeAll, Value: "咖啡"}},
			want:    false,
		},
		{
			name:    "include is case insensitive",
			item:    Item{Content: "Morning RUN done"},
			filters: []Filter{{Kind: Include, Scope: ScopeAll, Value: "run"}},
			want:    true,
		},
		{
			name: "exclude wins over include",
			item: Item{Content: "咖啡店广告"},
			filters: []Filter{
				{Kind: Include, Scope: ScopeAll, Value: "咖啡"},
				{Kind: Exclude, Scope: ScopeAll, Value: "广告"},
			},
			want: false,
		},
		{
			name: "multiple includes OR logic",
			item: Item{Content: "周末去爬山"},
			filters: []Filter{
				{Kind: Include, Scope: ScopeAll, Value: "咖啡"},
				{Kind: Include, Scope: ScopeAll, Value: "爬山"},
			},
			want: true,
		},
		{
			name:    "regex include matches",
			item:    Item{Content: "今天终于完成了项目"},
			filters: []Filter{{Kind: IncludeRe, Scope: ScopeContent, Value: "^今天.*完成"}},
			want:    true,
		},
		{
			name:    "regex exclude blocks",
			item:    Item{Content: "点击链接领取优惠"},
			filters: []Filter{{Kind: ExcludeRe, Scope: ScopeAll, Value: "领取.*优惠"}},
			want:    false,
		},
		{
			name:    "invalid regex in filter is skipped (no match)",
			item:    Item{Content: "anything"},
			filters: []Filter{{Kind: IncludeRe, Scope: ScopeAll, Value: "[invalid"}},
			want:    false,
		},
		{
			name:    "scope author matches author only",
			item:    Item{Author: "AI用户7", Content: "AI用户3 说得对"},
			filters: []Filter{{Kind: Include, Scope: ScopeAuthor, Value: "AI用户3"}},
			want:    false,
		},
		{
			name:    "scope title matches diary title",
			item:    Item{Title: "旅行的意义", Content: "在路上"},
			filters: []Filter{{Kind: Include, Scope: ScopeTitle, Value: "旅行"}},
			want:    true,
		},
		{
			name:    "scope content ignores title",
			item:    Item{Title: "旅行的意义", Content: "在路上"},
			filters: []Filter{{Kind: Include, Scope: ScopeContent, Value: "旅行"}},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Match(tt.item, tt.filters)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Match() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    []Filter
		wantErr bool
	}{
		{name: "empty", query: "   ", want: nil},
		{
			name:  "words and excludes",
			query: "咖啡  -广告",
			want: []Filter{
				{Kind: Include, Scope: ScopeAll, Value: "咖啡"},
				{Kind: Exclude, Scope: ScopeAll, Value: "广告"},
			},
		},
		{
			name:  "scoped and regex",
			query: "author:AI用户7 -content:re:优惠|广告 title:re:^旅行",
			want: []Filter{
				{Kind: Include, Scope: ScopeAuthor, Value: "AI用户7"},
				{Kind: ExcludeRe, Scope: ScopeContent, Value: "优惠|广告"},
				{Kind: IncludeRe, Scope: ScopeTitle, Value: "^旅行"},
			},
		},
		{name: "lone dash is a word", query: "-", want: []Filter{{Kind: Include, Scope: ScopeAll, Value: "-"}}},
		{name: "empty term after prefix is dropped", query: "author:", want: nil},
		{name: "invalid regex", query: "re:[oops", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseQuery(tt.query)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseQuery(%q) error = %v, wantErr %v", tt.query, err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseQuery(%q) mismatch (-want +got):\n%s", tt.query, diff)
			}
		})
	}
}

func TestValidateRegex(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		wantErr bool
	}{
		{name: "valid simple", pattern: "开心", wantErr: false},
		{name: "valid alternation", pattern: "咖啡|奶茶", wantErr: false},
		{name: "invalid unclosed bracket", pattern: "[invalid", wantErr: true},
		{name: "invalid bad repetition", pattern: "*bad", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegex(tt.pattern)
			if diff := cmp.Diff(tt.wantErr, err != nil); diff != "" {
				t.Errorf("ValidateRegex() error mismatch (-want +got):\n%s\nerr: %v", diff, err)
			}
		})
	}
}
