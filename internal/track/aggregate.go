package track

import (
	"math"
	"sort"

	"github.com/starford/ontrack/internal/models"
)

// Summary is the result of aggregating a student list under a Filter.
//
// TotalStudents is always the size of the unfiltered input, so the
// percentages are relative to the whole population rather than to the
// filtered view.
type Summary struct {
	Filter               Filter           `json:"filter"`
	TotalStudents        int              `json:"totalStudents"`
	TotalOnTrack         int              `json:"totalOnTrack"`
	TotalOffTrack        int              `json:"totalOffTrack"`
	PercentOnTrack       float64          `json:"percentOnTrack"`
	PercentOffTrack      float64          `json:"percentOffTrack"`
	OffTrackReasonCounts map[Reason]int   `json:"offTrackReasonCounts"`
	Reasons              []ReasonCount    `json:"reasons"`
	FilteredStudents     []models.Student `json:"filteredStudents"`
}

// ReasonCount is one row of the off-track reason breakdown.
type ReasonCount struct {
	Reason Reason `json:"reason"`
	Label  string `json:"label"`
	Count  int    `json:"count"`
	// Percent is relative to TotalOffTrack.
	Percent float64 `json:"percent"`
}

// Aggregate applies DefaultClassifier.
func Aggregate(students []models.Student, f Filter) Summary {
	return DefaultClassifier.Aggregate(students, f)
}

// Aggregate filters students by season, then year, then status, and computes
// totals, percentages, and off-track reason counts.
func (c Classifier) Aggregate(students []models.Student, f Filter) Summary {
	f = f.Normalize()

	filtered := make([]models.Student, 0, len(students))
	for _, s := range students {
		code := ParseCohortCode(s.Cohort.CohortCode)
		if f.Season != All && !code.MatchSeason(f.Season) {
			continue
		}
		if f.Year != All && !code.MatchYear(f.Year) {
			continue
		}
		filtered = append(filtered, s)
	}

	var onTrack, offTrack []models.Student
	for _, s := range filtered {
		if c.IsOnTrack(s) {
			onTrack = append(onTrack, s)
		} else {
			offTrack = append(offTrack, s)
		}
	}
	switch Status(f.Status) {
	case StatusOnTrack:
		filtered, offTrack = onTrack, nil
	case StatusOffTrack:
		filtered, onTrack = offTrack, nil
	}

	counts := make(map[Reason]int)
	for _, s := range offTrack {
		for _, r := range c.OffTrackReasons(s) {
			counts[r]++
		}
	}

	total := len(students)
	return Summary{
		Filter:               f,
		TotalStudents:        total,
		TotalOnTrack:         len(onTrack),
		TotalOffTrack:        len(offTrack),
		PercentOnTrack:       percent(len(onTrack), total),
		PercentOffTrack:      percent(len(offTrack), total),
		OffTrackReasonCounts: counts,
		Reasons:              rankReasons(counts, len(offTrack)),
		FilteredStudents:     nonNil(filtered),
	}
}

// rankReasons orders reasons by descending count, ties by reporting order.
func rankReasons(counts map[Reason]int, offTrack int) []ReasonCount {
	out := make([]ReasonCount, 0, len(counts))
	for r, n := range counts {
		out = append(out, ReasonCount{
			Reason:  r,
			Label:   r.Label(),
			Count:   n,
			Percent: percent(n, offTrack),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Reason.rank() < out[j].Reason.rank()
	})
	return out
}

// percent returns n/total*100 rounded to two decimals, or 0 for an empty total.
func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(n)/float64(total)*100*100) / 100
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
