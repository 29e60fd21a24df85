package api

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ontrack/internal/roster"
)

const maxDatasetBytes = 20 << 20 // 20 MB

// DatasetHandler lists and accepts dataset files.
type DatasetHandler struct {
	svc *roster.Service
}

// NewDatasetHandler creates a dataset handler.
func NewDatasetHandler(svc *roster.Service) *DatasetHandler {
	return &DatasetHandler{svc: svc}
}

// safeName validates that name is a plain file name (no path separators,
// no traversal).
func safeName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("name is required")
	}
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") || strings.HasPrefix(cleaned, ".") {
		return "", fmt.Errorf("invalid dataset name: %s", name)
	}
	return cleaned, nil
}

// List handles GET /api/datasets.
//
//	@Summary		List dataset files in the data directory
//	@Tags			datasets
//	@Produce		json
//	@Success		200	{object}	DatasetListResponse
//	@Security		BearerAuth
//	@Router			/datasets [get]
func (h *DatasetHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Datasets(r.Context())
	if err != nil {
		writeServiceError(w, "list datasets", err)
		return
	}
	writeJSON(w, http.StatusOK, DatasetListResponse{Datasets: items})
}

// Upload handles PUT /api/datasets/{name}. The request body is the raw
// dataset file; it is validated before anything is written.
//
//	@Summary		Upload (create or replace) a dataset file
//	@Tags			datasets
//	@Accept			json
//	@Accept			application/yaml
//	@Produce		json
//	@Param			name	path		string	true	"File name (.json, .yaml, .yml)"
//	@Success		200		{object}	DatasetUploadResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/datasets/{name} [put]
func (h *DatasetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxDatasetBytes)

	name, err := safeName(chi.URLParam(r, "name"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or unreadable body"))
		return
	}

	n, err := h.svc.Import(r.Context(), name, data)
	if err != nil {
		writeServiceError(w, "upload dataset", err)
		return
	}
	writeJSON(w, http.StatusOK, DatasetUploadResponse{Name: name, Students: n})
}
