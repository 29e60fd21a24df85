package api

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ontrack/internal/apperr"
	"github.com/starford/ontrack/internal/report"
	"github.com/starford/ontrack/internal/roster"
	"github.com/starford/ontrack/internal/track"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler holds API route handlers.
type Handler struct {
	svc *roster.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *roster.Service) *Handler {
	return &Handler{svc: svc}
}

// writeServiceError maps service errors to HTTP status codes. Unexpected
// errors are logged with op and reported as 500.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrInvalidInput), errors.Is(err, apperr.ErrInvalidRecord):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

func filterFromQuery(r *http.Request) track.Filter {
	q := r.URL.Query()
	return track.Filter{
		Season: q.Get("season"),
		Year:   q.Get("year"),
		Status: q.Get("status"),
	}
}

// trendOrder parses the sort and order query parameters.
func trendOrder(r *http.Request) (track.SortKey, bool, error) {
	q := r.URL.Query()
	key, err := track.ParseSortKey(q.Get("sort"))
	if err != nil {
		return "", false, err
	}
	asc, err := track.ParseOrder(q.Get("order"))
	if err != nil {
		return "", false, err
	}
	return key, asc, nil
}

// ListStudents handles GET /api/students.
//
//	@Summary		Aggregate students under a season/year/status filter
//	@Tags			students
//	@Produce		json
//	@Param			season	query		string	false	"Cohort season"	Enums(All, Winter, Spring, Summer, Fall)
//	@Param			year	query		string	false	"Cohort year (four digits) or All"
//	@Param			status	query		string	false	"Track status"	Enums(All, On Track, Off Track)
//	@Success		200		{object}	Summary
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/students [get]
func (h *Handler) ListStudents(w http.ResponseWriter, r *http.Request) {
	sum, err := h.svc.Students(r.Context(), filterFromQuery(r))
	if err != nil {
		writeServiceError(w, "list students", err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// GetStudent handles GET /api/students/{username}.
//
//	@Summary		Get one student with status, reasons, and notes
//	@Tags			students
//	@Produce		json
//	@Param			username	path		string	true	"Username"
//	@Success		200			{object}	StudentDetail
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/students/{username} [get]
func (h *Handler) GetStudent(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	st, err := h.svc.Student(r.Context(), username)
	if err != nil {
		writeServiceError(w, "get student", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// SearchStudents handles GET /api/students/search.
//
//	@Summary		Search students by username, name, or cohort code
//	@Tags			students
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/students/search [get]
func (h *Handler) SearchStudents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeServiceError(w, "search students", err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// AddNote handles POST /api/students/{username}/notes.
//
//	@Summary		Add a note to a student (kept in memory only)
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			username	path		string			true	"Username"
//	@Param			body		body		AddNoteRequest	true	"Note to add"
//	@Success		201			{object}	models.Note
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/students/{username}/notes [post]
func (h *Handler) AddNote(w http.ResponseWriter, r *http.Request) {
	var req AddNoteRequest
	if err := readJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	note, err := h.svc.AddNote(r.Context(), chi.URLParam(r, "username"), req.Commenter, req.Comment)
	if err != nil {
		writeServiceError(w, "add note", err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// DeleteNote handles DELETE /api/students/{username}/notes/{id}.
//
//	@Summary		Delete a note from a student
//	@Tags			notes
//	@Param			username	path	string	true	"Username"
//	@Param			id			path	string	true	"Note ID"
//	@Success		204			"Note deleted"
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/students/{username}/notes/{id} [delete]
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	err := h.svc.DeleteNote(r.Context(), chi.URLParam(r, "username"), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, "delete note", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListCohorts handles GET /api/cohorts.
//
//	@Summary		List distinct cohort codes
//	@Tags			cohorts
//	@Produce		json
//	@Success		200	{object}	CohortListResponse
//	@Security		BearerAuth
//	@Router			/cohorts [get]
func (h *Handler) ListCohorts(w http.ResponseWriter, r *http.Request) {
	cohorts, err := h.svc.Cohorts(r.Context())
	if err != nil {
		writeServiceError(w, "list cohorts", err)
		return
	}
	writeJSON(w, http.StatusOK, CohortListResponse{Cohorts: cohorts})
}

// Trend handles GET /api/cohorts/trend.
//
//	@Summary		Per-cohort on/off-track counts
//	@Tags			cohorts
//	@Produce		json
//	@Param			sort	query		string	false	"Sort key"	Enums(startDate, onTrack, offTrack, percentOnTrack, percentOffTrack)
//	@Param			order	query		string	false	"Start date direction"	Enums(asc, desc)
//	@Success		200		{object}	TrendResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cohorts/trend [get]
func (h *Handler) Trend(w http.ResponseWriter, r *http.Request) {
	key, asc, err := trendOrder(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	rows, err := h.svc.Trend(r.Context(), key, asc)
	if err != nil {
		writeServiceError(w, "trend", err)
		return
	}
	writeJSON(w, http.StatusOK, newTrendResponse(key, asc, rows))
}

// TrendXLSX handles GET /api/cohorts/trend.xlsx.
//
//	@Summary		Export the summary and cohort trend as a spreadsheet
//	@Tags			cohorts
//	@Produce		application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
//	@Param			season	query	string	false	"Cohort season"
//	@Param			year	query	string	false	"Cohort year"
//	@Param			status	query	string	false	"Track status"
//	@Param			sort	query	string	false	"Sort key"
//	@Param			order	query	string	false	"Start date direction"
//	@Success		200
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cohorts/trend.xlsx [get]
func (h *Handler) TrendXLSX(w http.ResponseWriter, r *http.Request) {
	key, asc, err := trendOrder(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	sum, err := h.svc.Students(r.Context(), filterFromQuery(r))
	if err != nil {
		writeServiceError(w, "export", err)
		return
	}
	rows, err := h.svc.Trend(r.Context(), key, asc)
	if err != nil {
		writeServiceError(w, "export", err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteXLSX(&buf, *sum, rows); err != nil {
		writeServiceError(w, "export", err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="ontrack-report.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
