// Package report renders roster summaries and cohort trends for export.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/starford/ontrack/internal/track"
)

// Sheet names of the workbook written by WriteXLSX.
const (
	SummarySheet = "Summary"
	TrendSheet   = "Trend"
)

var trendHeader = []interface{}{"Cohort", "Start Date", "On Track", "Off Track", "Total", "% On Track", "% Off Track"}

// WriteXLSX writes a workbook with a Summary sheet (filter, totals,
// percentages, reason breakdown) and a Trend sheet (one row per cohort).
func WriteXLSX(w io.Writer, sum track.Summary, trend []track.CohortAggregate) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("report: rename sheet: %w", err)
	}
	if _, err := f.NewSheet(TrendSheet); err != nil {
		return fmt.Errorf("report: new sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("report: style: %w", err)
	}

	if err := writeSummary(f, bold, sum); err != nil {
		return err
	}
	if err := writeTrend(f, bold, trend); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("report: write workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, bold int, sum track.Summary) error {
	rows := [][]interface{}{
		{"Season", sum.Filter.Season},
		{"Year", sum.Filter.Year},
		{"Status", sum.Filter.Status},
		{},
		{"Total Students", sum.TotalStudents},
		{"On Track", sum.TotalOnTrack},
		{"Off Track", sum.TotalOffTrack},
		{"% On Track", sum.PercentOnTrack},
		{"% Off Track", sum.PercentOffTrack},
		{},
		{"Reason", "Count", "% of Off Track"},
	}
	header := len(rows)
	for _, rc := range sum.Reasons {
		rows = append(rows, []interface{}{rc.Label, rc.Count, rc.Percent})
	}
	if err := setRows(f, SummarySheet, rows); err != nil {
		return err
	}
	if err := f.SetCellStyle(SummarySheet, "A1", fmt.Sprintf("A%d", header-2), bold); err != nil {
		return fmt.Errorf("report: style: %w", err)
	}
	if err := f.SetCellStyle(SummarySheet, fmt.Sprintf("A%d", header), fmt.Sprintf("C%d", header), bold); err != nil {
		return fmt.Errorf("report: style: %w", err)
	}
	return f.SetColWidth(SummarySheet, "A", "A", 24)
}

func writeTrend(f *excelize.File, bold int, trend []track.CohortAggregate) error {
	rows := [][]interface{}{trendHeader}
	for _, r := range trend {
		rows = append(rows, []interface{}{
			r.CohortCode, r.StartDate, r.OnTrack, r.OffTrack, r.Total,
			r.PercentOnTrack(), r.PercentOffTrack(),
		})
	}
	if err := setRows(f, TrendSheet, rows); err != nil {
		return err
	}
	if err := f.SetCellStyle(TrendSheet, "A1", "G1", bold); err != nil {
		return fmt.Errorf("report: style: %w", err)
	}
	return f.SetColWidth(TrendSheet, "A", "B", 16)
}

func setRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("report: %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
