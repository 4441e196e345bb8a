package mood

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"soulball/internal/model"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Label
	}{
		{name: "empty", text: "", want: Neutral},
		{name: "no keyword", text: "今天去了超市", want: Neutral},
		{name: "happy", text: "我今天很开心", want: Happy},
		{name: "english keyword", text: "that was amazing", want: Excited},
		{name: "table order wins", text: "我很难过但也很开心", want: Happy},
		{name: "sad", text: "有点伤心", want: Sad},
		{name: "confused by full width question mark", text: "为什么？", want: Confused},
		{name: "ascii question mark is not a keyword", text: "why?", want: Neutral},
		{name: "loving emoji", text: "谢谢你💕", want: Loving},
		{name: "peaceful", text: "心里很平静", want: Peaceful},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Detect(tt.text)); diff != "" {
				t.Errorf("Detect(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestKeywords(t *testing.T) {
	got := Keywords("哈哈，太棒了，好放松")
	want := []string{"哈哈", "太棒了", "放松"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Keywords mismatch (-want +got):\n%s", diff)
	}
}

func TestLabelName(t *testing.T) {
	if diff := cmp.Diff("开心", Happy.Name()); diff != "" {
		t.Errorf("name mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff("平常", Label("bogus").Name()); diff != "" {
		t.Errorf("unknown label name mismatch (-want +got):\n%s", diff)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    model.MoodSample
		wantErr bool
	}{
		{
			name: "plain json",
			raw:  `{"mood": "happy", "intensity": 8, "keywords": ["开心"]}`,
			want: model.MoodSample{Mood: "happy", Intensity: 8, Keywords: []string{"开心"}},
		},
		{
			name: "fenced with prose",
			raw:  "分析结果如下：\n```json\n{\"mood\": \"Sad\", \"intensity\": 3}\n```",
			want: model.MoodSample{Mood: "sad", Intensity: 3, Keywords: []string{}},
		},
		{
			name: "unknown label and out of range intensity",
			raw:  `{"mood": "elated", "intensity": 42, "keywords": []}`,
			want: model.MoodSample{Mood: "neutral", Intensity: 10, Keywords: []string{}},
		},
		{
			name: "missing intensity",
			raw:  `{"mood": "calm"}`,
			want: model.MoodSample{Mood: "calm", Intensity: 5, Keywords: []string{}},
		},
		{
			name:    "no object",
			raw:     "我觉得用户很开心",
			want:    Fallback(),
			wantErr: true,
		},
		{
			name:    "broken json",
			raw:     `{"mood": "happy", "intensity": }`,
			want:    Fallback(),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.raw)
			if tt.wantErr {
				var perr *ParseError
				if !errors.As(err, &perr) {
					t.Fatalf("expected *ParseError, got %v", err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseWindow(t *testing.T) {
	tests := []struct {
		in      string
		want    Window
		wantErr bool
	}{
		{in: "", want: Week},
		{in: "week", want: Week},
		{in: "month", want: Month},
		{in: "all", want: All},
		{in: "year", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWindow(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseWindow(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseWindow(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func entry(mood string, intensity int, ts time.Time) model.MoodEntry {
	e := model.MoodEntry{Source: model.SourceChat, Timestamp: ts}
	if mood != "" {
		e.Mood = &model.MoodSample{Mood: mood, Intensity: intensity}
	}
	return e
}

func TestAggregateAllWindow(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	entries := []model.MoodEntry{
		entry("happy", 8, now.Add(-3*time.Hour)),
		entry("happy", 6, now.Add(-2*time.Hour)),
		entry("sad", 4, now.Add(-1*time.Hour)),
	}

	got := Aggregate(entries, All, now)
	want := Stats{
		Counts:       map[Label]int{Happy: 2, Sad: 1},
		Intensities:  map[Label][]int{Happy: {8, 6}, Sad: {4}},
		Order:        []Label{Happy, Sad},
		AvgIntensity: 6.0,
		Dominant:     Happy,
		Total:        3,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Aggregate mismatch (-want +got):\n%s", diff)
	}

	means := got.MeanByMood()
	if diff := cmp.Diff(map[Label]float64{Happy: 7, Sad: 4}, means); diff != "" {
		t.Errorf("MeanByMood mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateWindows(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	day := 24 * time.Hour
	entries := []model.MoodEntry{
		entry("sad", 2, now.Add(-40*day)),
		entry("tired", 4, now.Add(-20*day)),
		entry("happy", 9, now.Add(-7*day)),
		entry("", 0, now.Add(-1*day)),
	}

	tests := []struct {
		window    Window
		wantTotal int
		wantCount map[Label]int
	}{
		{window: Week, wantTotal: 2, wantCount: map[Label]int{Happy: 1}},
		{window: Month, wantTotal: 3, wantCount: map[Label]int{Happy: 1, Tired: 1}},
		{window: All, wantTotal: 4, wantCount: map[Label]int{Happy: 1, Tired: 1, Sad: 1}},
	}

	for _, tt := range tests {
		t.Run(string(tt.window), func(t *testing.T) {
			got := Aggregate(entries, tt.window, now)
			if diff := cmp.Diff(tt.wantTotal, got.Total); diff != "" {
				t.Errorf("total mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantCount, got.Counts); diff != "" {
				t.Errorf("counts mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAggregateDefaultsAndTies(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	empty := Aggregate(nil, All, now)
	if diff := cmp.Diff(Neutral, empty.Dominant); diff != "" {
		t.Errorf("empty dominant mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(5.0, empty.AvgIntensity); diff != "" {
		t.Errorf("empty average mismatch (-want +got):\n%s", diff)
	}

	// Stored out of order: the earliest occurrence decides the tie.
	tied := []model.MoodEntry{
		entry("sad", 0, now.Add(-1*time.Hour)),
		entry("calm", 3, now.Add(-3*time.Hour)),
		entry("sad", 7, now.Add(-30*time.Minute)),
		entry("calm", 3, now.Add(-2*time.Hour)),
	}
	got := Aggregate(tied, All, now)
	if diff := cmp.Diff(Calm, got.Dominant); diff != "" {
		t.Errorf("tie-break mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{5, 7}, got.Intensities[Sad]); diff != "" {
		t.Errorf("default intensity mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(0.5, got.Share(Sad)); diff != "" {
		t.Errorf("share mismatch (-want +got):\n%s", diff)
	}
}
