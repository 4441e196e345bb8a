package mood

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"soulball/internal/model"
)

// DefaultIntensity is used when a sample carries no intensity.
const DefaultIntensity = 5

// ParseError reports model output that is not a mood sample.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse mood sample %q: %v", truncate(e.Raw, 60), e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var errNoObject = errors.New("no json object found")

// Fallback is the sample used whenever analysis fails.
func Fallback() model.MoodSample {
	return model.MoodSample{Mood: string(Neutral), Intensity: DefaultIntensity, Keywords: []string{}}
}

// Parse decodes a completion response of the form
// {"mood": "...", "intensity": 1-10, "keywords": [...]}.
// Surrounding prose and code fences are ignored. Unknown labels become
// Neutral and the intensity is clamped to 1..10.
func Parse(raw string) (model.MoodSample, error) {
	body := raw
	start := strings.Index(body, "{")
	end := strings.LastIndex(body, "}")
	if start < 0 || end < start {
		return Fallback(), &ParseError{Raw: raw, Err: errNoObject}
	}
	body = body[start : end+1]

	var decoded struct {
		Mood      string   `json:"mood"`
		Intensity float64  `json:"intensity"`
		Keywords  []string `json:"keywords"`
	}
	if err := json.Unmarshal([]byte(body), &decoded); err != nil {
		return Fallback(), &ParseError{Raw: raw, Err: err}
	}

	sample := model.MoodSample{
		Mood:      string(Normalize(strings.ToLower(strings.TrimSpace(decoded.Mood)))),
		Intensity: clampIntensity(int(decoded.Intensity + 0.5)),
		Keywords:  decoded.Keywords,
	}
	if sample.Keywords == nil {
		sample.Keywords = []string{}
	}
	return sample, nil
}

func clampIntensity(v int) int {
	switch {
	case v <= 0:
		return DefaultIntensity
	case v > 10:
		return 10
	default:
		return v
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
