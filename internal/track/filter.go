package track

import (
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/ontrack/internal/apperr"
)

// All disables a filter dimension.
const All = "All"

var yearTokenRe = regexp.MustCompile(`^\d{4}$`)

// Filter selects a subset of students by cohort season, cohort year, and
// track status. Empty fields are treated as All.
type Filter struct {
	Season string `json:"season"`
	Year   string `json:"year"`
	Status string `json:"status"`
}

// AllFilter matches every student.
var AllFilter = Filter{Season: All, Year: All, Status: All}

// Normalize replaces empty fields with All.
func (f Filter) Normalize() Filter {
	if f.Season == "" {
		f.Season = All
	}
	if f.Year == "" {
		f.Year = All
	}
	if f.Status == "" {
		f.Status = All
	}
	return f
}

// Validate checks that every field holds a known value.
func (f Filter) Validate() error {
	f = f.Normalize()
	seasons := []interface{}{All}
	for _, s := range Seasons {
		seasons = append(seasons, s)
	}
	err := validation.ValidateStruct(&f,
		validation.Field(&f.Season, validation.In(seasons...)),
		validation.Field(&f.Year, validation.When(f.Year != All, validation.Match(yearTokenRe))),
		validation.Field(&f.Status, validation.In(All, string(StatusOnTrack), string(StatusOffTrack))),
	)
	if err != nil {
		return fmt.Errorf("%w: filter: %v", apperr.ErrInvalidInput, err)
	}
	return nil
}
