package dataset

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/ontrack/internal/models"
	"github.com/starford/ontrack/internal/track"
)

// Wire shapes. Pointers distinguish a missing field from its zero value so
// that false certifications and zero scores remain valid.

type rawStudent struct {
	Username       *string       `json:"username" yaml:"username"`
	Names          *rawNames     `json:"names" yaml:"names"`
	DOB            string        `json:"dob" yaml:"dob"`
	ProfilePhoto   string        `json:"profilePhoto" yaml:"profilePhoto"`
	Certifications *rawCerts     `json:"certifications" yaml:"certifications"`
	Codewars       *rawCodewars  `json:"codewars" yaml:"codewars"`
	Cohort         *rawCohort    `json:"cohort" yaml:"cohort"`
	Notes          []models.Note `json:"notes" yaml:"notes"`
}

type rawNames struct {
	PreferredName *string `json:"preferredName" yaml:"preferredName"`
	MiddleName    string  `json:"middleName" yaml:"middleName"`
	Surname       *string `json:"surname" yaml:"surname"`
}

type rawCerts struct {
	Resume        *bool `json:"resume" yaml:"resume"`
	LinkedIn      *bool `json:"linkedin" yaml:"linkedin"`
	GitHub        *bool `json:"github" yaml:"github"`
	MockInterview *bool `json:"mockInterview" yaml:"mockInterview"`
}

type rawCodewars struct {
	Current *rawScore `json:"current" yaml:"current"`
}

type rawScore struct {
	Total    *int `json:"total" yaml:"total"`
	LastWeek *int `json:"lastWeek" yaml:"lastWeek"`
}

type rawCohort struct {
	CohortCode *string       `json:"cohortCode" yaml:"cohortCode"`
	StartDate  *string       `json:"startDate" yaml:"startDate"`
	Scores     models.Scores `json:"scores" yaml:"scores"`
}

func (r rawStudent) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Names, validation.NotNil),
		validation.Field(&r.Certifications, validation.NotNil),
		validation.Field(&r.Codewars, validation.NotNil),
		validation.Field(&r.Cohort, validation.NotNil),
	)
}

func (n rawNames) Validate() error {
	return validation.ValidateStruct(&n,
		validation.Field(&n.PreferredName, validation.Required),
		validation.Field(&n.Surname, validation.Required),
	)
}

func (c rawCerts) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Resume, validation.NotNil),
		validation.Field(&c.LinkedIn, validation.NotNil),
		validation.Field(&c.GitHub, validation.NotNil),
		validation.Field(&c.MockInterview, validation.NotNil),
	)
}

func (c rawCodewars) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Current, validation.NotNil),
	)
}

func (s rawScore) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Total, validation.NotNil),
		validation.Field(&s.LastWeek, validation.NotNil),
	)
}

func (c rawCohort) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.CohortCode, validation.Required),
		validation.Field(&c.StartDate, validation.Required, validation.By(isDate)),
	)
}

var errInvalidDate = errors.New("must be a valid date")

func isDate(value interface{}) error {
	s, ok := value.(*string)
	if !ok || s == nil || *s == "" {
		return nil
	}
	if _, ok := track.ParseDate(*s); !ok {
		return errInvalidDate
	}
	return nil
}

// student converts a validated record.
func (r rawStudent) student() models.Student {
	s := models.Student{
		Username:     *r.Username,
		DOB:          r.DOB,
		ProfilePhoto: r.ProfilePhoto,
		Names: models.Names{
			PreferredName: *r.Names.PreferredName,
			MiddleName:    r.Names.MiddleName,
			Surname:       *r.Names.Surname,
		},
		Certifications: models.Certifications{
			Resume:        *r.Certifications.Resume,
			LinkedIn:      *r.Certifications.LinkedIn,
			GitHub:        *r.Certifications.GitHub,
			MockInterview: *r.Certifications.MockInterview,
		},
		Codewars: models.Codewars{Current: models.CodewarsScore{
			Total:    *r.Codewars.Current.Total,
			LastWeek: *r.Codewars.Current.LastWeek,
		}},
		Cohort: models.Cohort{
			CohortCode: *r.Cohort.CohortCode,
			StartDate:  *r.Cohort.StartDate,
			Scores:     r.Cohort.Scores,
		},
		Notes: r.Notes,
	}
	if s.Notes == nil {
		s.Notes = []models.Note{}
	}
	return s
}
