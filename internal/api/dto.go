package api

import (
	"github.com/starford/ontrack/internal/index"
	"github.com/starford/ontrack/internal/models"
	"github.com/starford/ontrack/internal/roster"
	"github.com/starford/ontrack/internal/track"
)

// AddNoteRequest is the request body for adding a note.
type AddNoteRequest struct {
	Commenter string `json:"commenter" example:"Mentor"`
	Comment   string `json:"comment" example:"Booked a mock interview" validate:"required"`
}

// Summary is the aggregation response type (aliased from the domain layer).
type Summary = track.Summary

// StudentDetail is the full student response type (aliased from the domain layer).
type StudentDetail = roster.StudentDetail

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}

// CohortListResponse wraps the distinct cohort codes.
type CohortListResponse struct {
	Cohorts []roster.CohortInfo `json:"cohorts" validate:"required"`
}

// TrendRow is one cohort of the trend response, with floored percentages.
type TrendRow struct {
	CohortCode      string `json:"cohortCode" example:"Winter2025" validate:"required"`
	StartDate       string `json:"startDate" example:"2025-01-10"`
	OnTrack         int    `json:"onTrack" example:"12"`
	OffTrack        int    `json:"offTrack" example:"8"`
	Total           int    `json:"total" example:"20"`
	PercentOnTrack  int    `json:"percentOnTrack" example:"60"`
	PercentOffTrack int    `json:"percentOffTrack" example:"40"`
}

// TrendResponse wraps the cohort trend.
type TrendResponse struct {
	Sort      track.SortKey `json:"sort" example:"startDate"`
	Ascending bool          `json:"ascending"`
	Cohorts   []TrendRow    `json:"cohorts" validate:"required"`
}

func newTrendResponse(key track.SortKey, asc bool, rows []track.CohortAggregate) TrendResponse {
	out := TrendResponse{Sort: key, Ascending: asc, Cohorts: make([]TrendRow, len(rows))}
	for i, r := range rows {
		out.Cohorts[i] = TrendRow{
			CohortCode:      r.CohortCode,
			StartDate:       r.StartDate,
			OnTrack:         r.OnTrack,
			OffTrack:        r.OffTrack,
			Total:           r.Total,
			PercentOnTrack:  r.PercentOnTrack(),
			PercentOffTrack: r.PercentOffTrack(),
		}
	}
	return out
}

// DatasetListResponse wraps dataset file listings.
type DatasetListResponse struct {
	Datasets []models.DatasetMetadata `json:"datasets" validate:"required"`
}

// DatasetUploadResponse is returned after a successful dataset upload.
type DatasetUploadResponse struct {
	Name     string `json:"name" example:"fall-2025.json" validate:"required"`
	Students int    `json:"students" example:"42"`
}
