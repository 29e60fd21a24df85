// Package models defines the domain types for ontrack.
package models

import "time"

// Student is one roster record as supplied by a dataset file.
type Student struct {
	Username       string         `json:"username"`
	Names          Names          `json:"names"`
	DOB            string         `json:"dob,omitempty"`
	ProfilePhoto   string         `json:"profilePhoto,omitempty"`
	Certifications Certifications `json:"certifications"`
	Codewars       Codewars       `json:"codewars"`
	Cohort         Cohort         `json:"cohort"`
	Notes          []Note         `json:"notes"`
}

// FullName joins the non-empty name parts.
func (s Student) FullName() string {
	out := s.Names.PreferredName
	for _, part := range []string{s.Names.MiddleName, s.Names.Surname} {
		if part == "" {
			continue
		}
		if out != "" {
			out += " "
		}
		out += part
	}
	return out
}

// Names holds the display name parts of a student.
type Names struct {
	PreferredName string `json:"preferredName"`
	MiddleName    string `json:"middleName,omitempty"`
	Surname       string `json:"surname"`
}

// Certifications are the four independent career-readiness flags.
type Certifications struct {
	Resume        bool `json:"resume"`
	LinkedIn      bool `json:"linkedin"`
	GitHub        bool `json:"github"`
	MockInterview bool `json:"mockInterview"`
}

// Codewars wraps the coding-challenge score snapshot.
type Codewars struct {
	Current CodewarsScore `json:"current"`
}

// CodewarsScore is the cumulative and weekly coding-challenge score.
type CodewarsScore struct {
	Total    int `json:"total"`
	LastWeek int `json:"lastWeek"`
}

// Cohort is the cohort membership of a student.
type Cohort struct {
	CohortCode string `json:"cohortCode"`
	StartDate  string `json:"startDate"`
	Scores     Scores `json:"scores"`
}

// Scores are the cohort coursework scores.
type Scores struct {
	Assignments float64 `json:"assignments"`
	Projects    float64 `json:"projects"`
	Assessments float64 `json:"assessments"`
}

// Note is a free-form comment attached to a student.
type Note struct {
	ID        string `json:"id,omitempty"`
	Commenter string `json:"commenter"`
	Comment   string `json:"comment"`
}

// DatasetMetadata is a lightweight representation of a dataset file returned by list operations.
type DatasetMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
