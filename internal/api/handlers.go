package api

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ccd/internal/models"
)

// Handler holds API route handlers.
type Handler struct {
	svc *Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// filePath extracts the source path from the URL (everything after
// /api/files/). Supports encoded slashes (e.g. internal%2Fmain.go).
func filePath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// GetReport handles GET /api/report. With ?scope=module it returns the
// module breakdown instead of the repository aggregate.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	repo, modules, updatedAt, ok := h.svc.Report()
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("no validation run completed yet"))
		return
	}
	if r.URL.Query().Get("scope") == "module" {
		writeJSON(w, http.StatusOK, map[string]any{
			"modules":    modules,
			"updated_at": updatedAt,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"report":     repo,
		"updated_at": updatedAt,
	})
}

// ListFiles handles GET /api/files. ?drift=suspected|confirmed filters to
// drifting files.
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	files := h.svc.Files()
	if files == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("no validation run completed yet"))
		return
	}
	if d := r.URL.Query().Get("drift"); d != "" {
		var filtered []models.FileResult
		for _, f := range files {
			if string(f.Drift) == d {
				filtered = append(filtered, f)
			}
		}
		files = filtered
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"files": files,
		"total": len(files),
	})
}

// GetFile handles GET /api/files/*.
func (h *Handler) GetFile(w http.ResponseWriter, r *http.Request) {
	path := filePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	result, ok := h.svc.File(path)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ListArtifacts handles GET /api/artifacts.
func (h *Handler) ListArtifacts(w http.ResponseWriter, r *http.Request) {
	artifacts := h.svc.Artifacts()
	if artifacts == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("no validation run completed yet"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"artifacts": artifacts,
		"total":     len(artifacts),
	})
}
