package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ontrack/internal/roster"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *roster.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)
	dh := NewDatasetHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Students.
	r.Get("/students", h.ListStudents)
	r.Get("/students/search", h.SearchStudents)
	r.Get("/students/{username}", h.GetStudent)

	// In-memory notes.
	r.Post("/students/{username}/notes", h.AddNote)
	r.Delete("/students/{username}/notes/{id}", h.DeleteNote)

	// Cohorts.
	r.Get("/cohorts", h.ListCohorts)
	r.Get("/cohorts/trend", h.Trend)
	r.Get("/cohorts/trend.xlsx", h.TrendXLSX)

	// Dataset files.
	r.Get("/datasets", dh.List)
	r.Put("/datasets/{name}", dh.Upload)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
