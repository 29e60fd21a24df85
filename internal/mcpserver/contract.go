package mcpserver

import "fmt"

const trackRulesTemplate = `# Track Rules

A student is **On Track** only when every criterion below holds. Any failed
criterion makes the student **Off Track** and is reported as a reason.

| Reason | Criterion |
|---|---|
| ResumeMissing | ` + "`certifications.resume`" + ` is true |
| LinkedInMissing | ` + "`certifications.linkedin`" + ` is true |
| GitHubMissing | ` + "`certifications.github`" + ` is true |
| MockInterviewMissing | ` + "`certifications.mockInterview`" + ` is true |
| LowCodewarsScore | ` + "`codewars.current.total`" + ` is greater than %d |

A score of exactly %d is Off Track with reason LowCodewarsScore.

## Aggregation

- Filters apply in order: season, then year, then status. ` + "`All`" + ` disables a filter.
- Seasons: Winter, Spring, Summer, Fall. Years are four digits. Statuses: On Track, Off Track.
- ` + "`totalStudents`" + ` is the size of the whole roster, not of the filtered view, so
  ` + "`percentOnTrack`" + ` and ` + "`percentOffTrack`" + ` are shares of the whole roster (two decimals).
- Reason percentages are shares of the off-track students in the view.

## Cohort trend

- One row per cohort code, in the order codes first appear in the roster.
- The start date of a row is the first one seen for its code.
- Trend percentages are rounded down to whole numbers.
- Sorting by startDate alternates direction; count and percentage keys sort descending.
`

// TrackRules renders the track rules contract for the given score threshold.
func TrackRules(minCodewarsScore int) string {
	return fmt.Sprintf(trackRulesTemplate, minCodewarsScore, minCodewarsScore)
}
