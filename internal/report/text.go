package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/starford/ontrack/internal/track"
)

// WriteText writes a plain-text rendering of sum and trend, aligned in columns.
func WriteText(w io.Writer, sum track.Summary, trend []track.CohortAggregate) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "Filter\tseason=%s year=%s status=%s\n", sum.Filter.Season, sum.Filter.Year, sum.Filter.Status)
	fmt.Fprintf(tw, "Total Students\t%d\n", sum.TotalStudents)
	fmt.Fprintf(tw, "On Track\t%d\t%.2f%%\n", sum.TotalOnTrack, sum.PercentOnTrack)
	fmt.Fprintf(tw, "Off Track\t%d\t%.2f%%\n", sum.TotalOffTrack, sum.PercentOffTrack)

	if len(sum.Reasons) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "REASON\tCOUNT\t% OF OFF TRACK")
		for _, rc := range sum.Reasons {
			fmt.Fprintf(tw, "%s\t%d\t%.2f%%\n", rc.Label, rc.Count, rc.Percent)
		}
	}

	if len(trend) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "COHORT\tSTART DATE\tON\tOFF\t% ON\t% OFF")
		for _, r := range trend {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d%%\t%d%%\n",
				r.CohortCode, r.StartDate, r.OnTrack, r.OffTrack, r.PercentOnTrack(), r.PercentOffTrack())
		}
	}
	return tw.Flush()
}
