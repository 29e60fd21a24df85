package track

import (
	"regexp"
	"slices"
	"strings"
)

// Seasons in calendar order.
var Seasons = []string{"Winter", "Spring", "Summer", "Fall"}

var (
	seasonRe = regexp.MustCompile(`(?i)(winter|spring|summer|fall)`)
	digitsRe = regexp.MustCompile(`\d+`)
)

// CohortCode is a cohort code split into its season and year tokens.
type CohortCode struct {
	Raw    string `json:"cohortCode"`
	Season string `json:"season,omitempty"`
	Year   string `json:"year,omitempty"`
	// Known is true when both tokens were found.
	Known bool `json:"known"`
}

// ParseCohortCode extracts the season and year tokens from code,
// e.g. "Winter2025" or "fall-2026". A year is a standalone run of four
// digits. Codes naming more than one distinct season or year, such as
// "2025-2026 Fall", are left undecomposed so that filters fall back to
// substring matching and any of the named years still matches.
func ParseCohortCode(code string) CohortCode {
	c := CohortCode{Raw: code}
	seasons := distinct(seasonRe.FindAllString(code, -1), canonicalSeason)
	var years []string
	for _, d := range digitsRe.FindAllString(code, -1) {
		if len(d) == 4 {
			years = append(years, d)
		}
	}
	years = distinct(years, func(s string) string { return s })

	if len(seasons) == 1 {
		c.Season = seasons[0]
	}
	if len(years) == 1 {
		c.Year = years[0]
	}
	c.Known = c.Season != "" && c.Year != "" && len(seasons) == 1 && len(years) == 1
	return c
}

func distinct(tokens []string, canon func(string) string) []string {
	var out []string
	for _, t := range tokens {
		if v := canon(t); !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

// SeasonLabel returns the season, or "Unknown" when the code did not decompose.
func (c CohortCode) SeasonLabel() string {
	if !c.Known {
		return "Unknown"
	}
	return c.Season
}

// MatchSeason reports whether the code belongs to season. Codes without a
// single season token fall back to a substring test on the raw code.
func (c CohortCode) MatchSeason(season string) bool {
	if c.Season != "" {
		return strings.EqualFold(c.Season, season)
	}
	return strings.Contains(c.Raw, season)
}

// MatchYear reports whether the code belongs to year, with the same
// substring fallback as MatchSeason.
func (c CohortCode) MatchYear(year string) bool {
	if c.Year != "" {
		return c.Year == year
	}
	return strings.Contains(c.Raw, year)
}

func canonicalSeason(s string) string {
	for _, season := range Seasons {
		if strings.EqualFold(season, s) {
			return season
		}
	}
	return ""
}
