package track

import (
	"errors"
	"slices"
	"testing"

	"github.com/starford/ontrack/internal/apperr"
	"github.com/starford/ontrack/internal/models"
)

func withStart(s models.Student, start string) models.Student {
	s.Cohort.StartDate = start
	return s
}

func codes(rows []CohortAggregate) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.CohortCode
	}
	return out
}

func TestSummarize_FirstEncounteredOrder(t *testing.T) {
	students := []models.Student{
		withStart(student("a", "24.2", 700), "2024-06-01"),
		withStart(student("b", "24.1", 100), "2024-01-01"),
		withStart(student("c", "24.2", 100), "2099-01-01"),
	}
	rows := Summarize(students)
	if !slices.Equal(codes(rows), []string{"24.2", "24.1"}) {
		t.Fatalf("order = %v", codes(rows))
	}
	r := rows[0]
	if r.OnTrack != 1 || r.OffTrack != 1 || r.Total != 2 {
		t.Errorf("24.2 counts = %+v", r)
	}
	if r.StartDate != "2024-06-01" {
		t.Errorf("start date = %q, want first-seen 2024-06-01", r.StartDate)
	}
}

func TestSummarize_Empty(t *testing.T) {
	if rows := Summarize(nil); rows == nil || len(rows) != 0 {
		t.Errorf("rows = %v", rows)
	}
}

func TestTrendSorter_StartDateToggles(t *testing.T) {
	rows := Summarize([]models.Student{
		withStart(student("a", "24.2", 700), "2024-06-01"),
		withStart(student("b", "24.1", 700), "2024-01-01"),
	})
	var ts TrendSorter

	first := ts.Sort(rows, SortStartDate)
	if !slices.Equal(codes(first), []string{"24.1", "24.2"}) {
		t.Errorf("first sort = %v, want ascending", codes(first))
	}
	second := ts.Sort(first, SortStartDate)
	if !slices.Equal(codes(second), []string{"24.2", "24.1"}) {
		t.Errorf("second sort = %v, want descending", codes(second))
	}
	if !slices.Equal(codes(rows), []string{"24.2", "24.1"}) {
		t.Error("Sort must not reorder its input")
	}
}

func TestTrendSorter_OtherKeyResetsToggle(t *testing.T) {
	rows := Summarize([]models.Student{
		withStart(student("a", "24.2", 700), "2024-06-01"),
		withStart(student("b", "24.1", 100), "2024-01-01"),
	})
	var ts TrendSorter
	_ = ts.Sort(rows, SortStartDate)
	_ = ts.Sort(rows, SortOnTrack)
	if key, asc := ts.Column(); key != SortOnTrack || !asc {
		t.Errorf("column = %s asc=%v", key, asc)
	}
	got := ts.Sort(rows, SortStartDate)
	if !slices.Equal(codes(got), []string{"24.1", "24.2"}) {
		t.Errorf("after reset = %v, want ascending", codes(got))
	}
}

func TestSortTrend_CountsAndPercentagesDescending(t *testing.T) {
	var students []models.Student
	// A: 1 on / 3 total (33%), B: 2 on / 2 total (100%), C: 2 on / 4 total (50%).
	add := func(code string, on, off int) {
		for i := 0; i < on; i++ {
			students = append(students, student(code, code, 700))
		}
		for i := 0; i < off; i++ {
			students = append(students, student(code, code, 0))
		}
	}
	add("A", 1, 2)
	add("B", 2, 0)
	add("C", 2, 2)
	rows := Summarize(students)

	cases := []struct {
		key  SortKey
		want []string
	}{
		{SortOnTrack, []string{"B", "C", "A"}},
		{SortOffTrack, []string{"A", "C", "B"}},
		{SortPercentOnTrack, []string{"B", "C", "A"}},
		{SortPercentOffTrack, []string{"A", "C", "B"}},
	}
	for _, tc := range cases {
		if got := codes(SortTrend(rows, tc.key, true)); !slices.Equal(got, tc.want) {
			t.Errorf("sort by %s = %v, want %v", tc.key, got, tc.want)
		}
	}
	if rows[0].PercentOnTrack() != 33 || rows[0].PercentOffTrack() != 66 {
		t.Errorf("A percentages = %d/%d, want floored 33/66", rows[0].PercentOnTrack(), rows[0].PercentOffTrack())
	}
}

func TestSortTrend_StableOnEqualDates(t *testing.T) {
	rows := []CohortAggregate{
		{CohortCode: "x", StartDate: "2024-01-01"},
		{CohortCode: "y", StartDate: "2024-01-01"},
		{CohortCode: "z", StartDate: "2023-01-01"},
		{CohortCode: "bad", StartDate: "soon"},
	}
	asc := codes(SortTrend(rows, SortStartDate, true))
	if !slices.Equal(asc, []string{"z", "x", "y", "bad"}) {
		t.Errorf("ascending = %v", asc)
	}
	desc := codes(SortTrend(rows, SortStartDate, false))
	if !slices.Equal(desc, []string{"x", "y", "z", "bad"}) {
		t.Errorf("descending = %v", desc)
	}
}

func TestParseSortKey(t *testing.T) {
	if k, err := ParseSortKey(""); err != nil || k != SortStartDate {
		t.Errorf("empty key = %q, %v", k, err)
	}
	if _, err := ParseSortKey("name"); err == nil {
		t.Error("unknown key should fail")
	}
}

func TestParseDate_Layouts(t *testing.T) {
	for _, s := range []string{"2025-01-10", "01/10/2025", "January 10, 2025", "2025-01-10T00:00:00Z"} {
		d, ok := ParseDate(s)
		if !ok || d.Year() != 2025 || d.Day() != 10 {
			t.Errorf("ParseDate(%q) = %v, %v", s, d, ok)
		}
	}
}

func TestParseOrder(t *testing.T) {
	for in, want := range map[string]bool{"": true, "asc": true, "desc": false} {
		got, err := ParseOrder(in)
		if err != nil || got != want {
			t.Errorf("ParseOrder(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseOrder("sideways"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("bad order error = %v, want ErrInvalidInput", err)
	}
}
