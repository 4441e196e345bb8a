package mood

import (
	"fmt"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"

	"soulball/internal/model"
)

// Window selects the part of the mood history to summarize.
type Window string

// Supported windows.
const (
	Week  Window = "week"
	Month Window = "month"
	All   Window = "all"
)

// ParseWindow converts user input into a Window. Empty input means Week.
func ParseWindow(s string) (Window, error) {
	switch Window(s) {
	case "":
		return Week, nil
	case Week, Month, All:
		return Window(s), nil
	default:
		return "", fmt.Errorf("unknown window %q: want week, month or all", s)
	}
}

// Span returns the length of the window, or 0 for All.
func (w Window) Span() time.Duration {
	switch w {
	case Week:
		return 7 * 24 * time.Hour
	case Month:
		return 30 * 24 * time.Hour
	default:
		return 0
	}
}

// Stats summarizes the mood entries of a window.
type Stats struct {
	Counts      map[Label]int
	Intensities map[Label][]int
	// Order lists labels by their first occurrence.
	Order        []Label
	AvgIntensity float64
	Dominant     Label
	Total        int
}

// Aggregate computes Stats over the entries whose timestamp falls within w
// relative to now. Entries without a mood count toward Total only.
// Intensities of 0 are treated as DefaultIntensity.
func Aggregate(entries []model.MoodEntry, w Window, now time.Time) Stats {
	var filtered []model.MoodEntry
	cutoff := now.Add(-w.Span())
	for _, e := range entries {
		if w.Span() > 0 && e.Timestamp.Before(cutoff) {
			continue
		}
		filtered = append(filtered, e)
	}
	slices.SortStableFunc(filtered, func(a, b model.MoodEntry) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	st := Stats{
		Counts:       map[Label]int{},
		Intensities:  map[Label][]int{},
		AvgIntensity: DefaultIntensity,
		Dominant:     Neutral,
		Total:        len(filtered),
	}

	var all []float64
	for _, e := range filtered {
		if e.Mood == nil || e.Mood.Mood == "" {
			continue
		}
		label := Label(e.Mood.Mood)
		intensity := e.Mood.Intensity
		if intensity == 0 {
			intensity = DefaultIntensity
		}
		if _, seen := st.Counts[label]; !seen {
			st.Order = append(st.Order, label)
		}
		st.Counts[label]++
		st.Intensities[label] = append(st.Intensities[label], intensity)
		all = append(all, float64(intensity))
	}

	if len(all) > 0 {
		st.AvgIntensity = stat.Mean(all, nil)
	}

	best := 0
	for _, label := range st.Order {
		if st.Counts[label] > best {
			best = st.Counts[label]
			st.Dominant = label
		}
	}
	return st
}

// MeanByMood returns the mean intensity per label.
func (s Stats) MeanByMood() map[Label]float64 {
	means := make(map[Label]float64, len(s.Intensities))
	for label, values := range s.Intensities {
		fs := make([]float64, len(values))
		for i, v := range values {
			fs[i] = float64(v)
		}
		means[label] = stat.Mean(fs, nil)
	}
	return means
}

// Share returns the fraction of mood-bearing entries labelled l.
func (s Stats) Share(l Label) float64 {
	n := 0
	for _, c := range s.Counts {
		n += c
	}
	if n == 0 {
		return 0
	}
	return float64(s.Counts[l]) / float64(n)
}
