package track

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/starford/ontrack/internal/apperr"
	"github.com/starford/ontrack/internal/models"
)

// SortKey names a column of the cohort trend table.
type SortKey string

// Trend sort keys.
const (
	SortStartDate       SortKey = "startDate"
	SortOnTrack         SortKey = "onTrack"
	SortOffTrack        SortKey = "offTrack"
	SortPercentOnTrack  SortKey = "percentOnTrack"
	SortPercentOffTrack SortKey = "percentOffTrack"
)

// ParseSortKey validates a sort key; the empty string selects SortStartDate.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(s); k {
	case "":
		return SortStartDate, nil
	case SortStartDate, SortOnTrack, SortOffTrack, SortPercentOnTrack, SortPercentOffTrack:
		return k, nil
	default:
		return "", fmt.Errorf("%w: unknown sort key %q", apperr.ErrInvalidInput, s)
	}
}

// ParseOrder reads a start date direction: "asc" or empty is ascending,
// "desc" is descending.
func ParseOrder(s string) (bool, error) {
	switch s {
	case "", "asc":
		return true, nil
	case "desc":
		return false, nil
	default:
		return false, fmt.Errorf("%w: order must be asc or desc, got %q", apperr.ErrInvalidInput, s)
	}
}

// CohortAggregate is one row of the cohort trend.
type CohortAggregate struct {
	CohortCode string `json:"cohortCode"`
	OnTrack    int    `json:"onTrack"`
	OffTrack   int    `json:"offTrack"`
	Total      int    `json:"total"`
	// StartDate is the first value seen for the code.
	StartDate string `json:"startDate"`
}

// PercentOnTrack is the floored on-track percentage of the cohort.
func (a CohortAggregate) PercentOnTrack() int { return floorPercent(a.OnTrack, a.Total) }

// PercentOffTrack is the floored off-track percentage of the cohort.
func (a CohortAggregate) PercentOffTrack() int { return floorPercent(a.OffTrack, a.Total) }

func floorPercent(n, total int) int {
	if total == 0 {
		return 0
	}
	return n * 100 / total
}

// Summarize applies DefaultClassifier.
func Summarize(students []models.Student) []CohortAggregate {
	return DefaultClassifier.Summarize(students)
}

// Summarize groups students by cohort code. Rows appear in the order their
// code is first encountered.
func (c Classifier) Summarize(students []models.Student) []CohortAggregate {
	var out []CohortAggregate
	pos := make(map[string]int)
	for _, s := range students {
		code := s.Cohort.CohortCode
		i, ok := pos[code]
		if !ok {
			i = len(out)
			pos[code] = i
			out = append(out, CohortAggregate{CohortCode: code, StartDate: s.Cohort.StartDate})
		}
		if c.IsOnTrack(s) {
			out[i].OnTrack++
		} else {
			out[i].OffTrack++
		}
		out[i].Total++
	}
	return nonNil(out)
}

// SortTrend returns a sorted copy of rows. ascending applies to SortStartDate
// only; count and percentage keys always sort descending. The sort is stable.
func SortTrend(rows []CohortAggregate, key SortKey, ascending bool) []CohortAggregate {
	out := slices.Clone(rows)
	if out == nil {
		out = []CohortAggregate{}
	}
	var compare func(a, b CohortAggregate) int
	switch key {
	case SortOnTrack:
		compare = func(a, b CohortAggregate) int { return cmp.Compare(b.OnTrack, a.OnTrack) }
	case SortOffTrack:
		compare = func(a, b CohortAggregate) int { return cmp.Compare(b.OffTrack, a.OffTrack) }
	case SortPercentOnTrack:
		compare = func(a, b CohortAggregate) int { return cmp.Compare(b.PercentOnTrack(), a.PercentOnTrack()) }
	case SortPercentOffTrack:
		compare = func(a, b CohortAggregate) int { return cmp.Compare(b.PercentOffTrack(), a.PercentOffTrack()) }
	default:
		compare = func(a, b CohortAggregate) int { return compareStartDates(a.StartDate, b.StartDate, ascending) }
	}
	slices.SortStableFunc(out, compare)
	return out
}

// compareStartDates orders parseable dates chronologically and puts
// unparseable ones last regardless of direction.
func compareStartDates(a, b string, ascending bool) int {
	ta, okA := ParseDate(a)
	tb, okB := ParseDate(b)
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return 1
	case !okB:
		return -1
	}
	if ascending {
		return ta.Compare(tb)
	}
	return tb.Compare(ta)
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"01/02/2006",
	"1/2/2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// ParseDate parses a cohort start date in any of the accepted layouts.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// TrendSorter keeps the column-click state of a trend table.
//
// Sorting by SortStartDate alternates direction on each call, starting
// ascending. Sorting by any other key resets the alternation so the next
// SortStartDate call is ascending again.
type TrendSorter struct {
	key            SortKey
	nextDescending bool
}

// Sort sorts rows by key and advances the sorter state.
func (ts *TrendSorter) Sort(rows []CohortAggregate, key SortKey) []CohortAggregate {
	if key != SortStartDate {
		ts.key, ts.nextDescending = key, false
		return SortTrend(rows, key, false)
	}
	ascending := !ts.nextDescending
	ts.key, ts.nextDescending = key, ascending
	return SortTrend(rows, key, ascending)
}

// Column reports the last sorted key and whether the next start date sort
// will be ascending.
func (ts *TrendSorter) Column() (SortKey, bool) {
	return ts.key, !ts.nextDescending
}
