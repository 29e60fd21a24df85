// Package track decides whether students are on track and aggregates the
// results into summaries and per-cohort trends.
//
// Everything in this package is a pure function over a borrowed slice of
// students: nothing is cached and the input is never modified.
package track

import "github.com/starford/ontrack/internal/models"

// DefaultMinCodewarsScore is the Codewars total a student must exceed.
const DefaultMinCodewarsScore = 600

// Status is the derived on-track state of a student.
type Status string

// Track statuses.
const (
	StatusOnTrack  Status = "On Track"
	StatusOffTrack Status = "Off Track"
)

// Reason is a single unmet on-track criterion.
type Reason string

// Off-track reasons, in reporting order.
const (
	ReasonResumeMissing        Reason = "ResumeMissing"
	ReasonLinkedInMissing      Reason = "LinkedInMissing"
	ReasonGitHubMissing        Reason = "GitHubMissing"
	ReasonMockInterviewMissing Reason = "MockInterviewMissing"
	ReasonLowCodewarsScore     Reason = "LowCodewarsScore"
)

// AllReasons lists every reason in reporting order.
var AllReasons = []Reason{
	ReasonResumeMissing,
	ReasonLinkedInMissing,
	ReasonGitHubMissing,
	ReasonMockInterviewMissing,
	ReasonLowCodewarsScore,
}

var reasonLabels = map[Reason]string{
	ReasonResumeMissing:        "Resume Missing",
	ReasonLinkedInMissing:      "LinkedIn Missing",
	ReasonGitHubMissing:        "GitHub Missing",
	ReasonMockInterviewMissing: "Mock Interview Missing",
	ReasonLowCodewarsScore:     "Low Codewars Score",
}

// Label returns the human-readable form of the reason.
func (r Reason) Label() string {
	if l, ok := reasonLabels[r]; ok {
		return l
	}
	return string(r)
}

func (r Reason) rank() int {
	for i, x := range AllReasons {
		if x == r {
			return i
		}
	}
	return len(AllReasons)
}

// Classifier applies the on-track rule with a configurable score threshold.
//
// A student is on track iff all four certifications are present and the
// Codewars total is strictly greater than MinCodewarsScore. The same
// comparison drives the LowCodewarsScore reason, so a student has no
// off-track reasons exactly when they are on track.
type Classifier struct {
	MinCodewarsScore int
}

// DefaultClassifier uses DefaultMinCodewarsScore.
var DefaultClassifier = Classifier{MinCodewarsScore: DefaultMinCodewarsScore}

// IsOnTrack reports whether s meets every on-track criterion.
func (c Classifier) IsOnTrack(s models.Student) bool {
	cert := s.Certifications
	return cert.Resume &&
		cert.LinkedIn &&
		cert.GitHub &&
		cert.MockInterview &&
		c.scoreOK(s)
}

// Status returns the derived track status of s.
func (c Classifier) Status(s models.Student) Status {
	if c.IsOnTrack(s) {
		return StatusOnTrack
	}
	return StatusOffTrack
}

// OffTrackReasons lists the unmet criteria of s in reporting order.
// The result is empty (non-nil) for an on-track student.
func (c Classifier) OffTrackReasons(s models.Student) []Reason {
	reasons := []Reason{}
	cert := s.Certifications
	if !cert.Resume {
		reasons = append(reasons, ReasonResumeMissing)
	}
	if !cert.LinkedIn {
		reasons = append(reasons, ReasonLinkedInMissing)
	}
	if !cert.GitHub {
		reasons = append(reasons, ReasonGitHubMissing)
	}
	if !cert.MockInterview {
		reasons = append(reasons, ReasonMockInterviewMissing)
	}
	if !c.scoreOK(s) {
		reasons = append(reasons, ReasonLowCodewarsScore)
	}
	return reasons
}

func (c Classifier) scoreOK(s models.Student) bool {
	return s.Codewars.Current.Total > c.MinCodewarsScore
}

// IsOnTrack applies DefaultClassifier.
func IsOnTrack(s models.Student) bool { return DefaultClassifier.IsOnTrack(s) }

// OffTrackReasons applies DefaultClassifier.
func OffTrackReasons(s models.Student) []Reason { return DefaultClassifier.OffTrackReasons(s) }
