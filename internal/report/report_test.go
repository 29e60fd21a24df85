package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/starford/ontrack/internal/models"
	"github.com/starford/ontrack/internal/track"
)

func fixture() (track.Summary, []track.CohortAggregate) {
	students := []models.Student{
		{Username: "a", Certifications: models.Certifications{Resume: true, LinkedIn: true, GitHub: true, MockInterview: true},
			Codewars: models.Codewars{Current: models.CodewarsScore{Total: 700}},
			Cohort:   models.Cohort{CohortCode: "Winter2025", StartDate: "2025-01-10"}},
		{Username: "b", Certifications: models.Certifications{LinkedIn: true, GitHub: true, MockInterview: true},
			Codewars: models.Codewars{Current: models.CodewarsScore{Total: 100}},
			Cohort:   models.Cohort{CohortCode: "Fall2025", StartDate: "2025-09-01"}},
	}
	return track.Aggregate(students, track.AllFilter), track.SortTrend(track.Summarize(students), track.SortStartDate, true)
}

func TestWriteXLSX(t *testing.T) {
	sum, trend := fixture()
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, sum, trend); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != SummarySheet || sheets[1] != TrendSheet {
		t.Fatalf("sheets = %v", sheets)
	}

	if v, _ := f.GetCellValue(SummarySheet, "B5"); v != "2" {
		t.Errorf("total students = %q, want 2", v)
	}
	if v, _ := f.GetCellValue(SummarySheet, "B8"); v != "50" {
		t.Errorf("percent on track = %q, want 50", v)
	}

	rows, err := f.GetRows(TrendSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("trend rows = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "Cohort" || rows[1][0] != "Winter2025" || rows[2][0] != "Fall2025" {
		t.Errorf("trend rows = %v", rows)
	}
	if rows[1][5] != "100" || rows[2][6] != "100" {
		t.Errorf("percent columns = %v / %v", rows[1], rows[2])
	}
}

func TestWriteText(t *testing.T) {
	sum, trend := fixture()
	var buf bytes.Buffer
	if err := WriteText(&buf, sum, trend); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Total Students", "50.00%", "Resume Missing", "Low Codewars Score", "Winter2025", "Fall2025"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteText_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, track.Aggregate(nil, track.AllFilter), nil); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	if strings.Contains(buf.String(), "COHORT") {
		t.Error("empty trend should not print a table header")
	}
}
