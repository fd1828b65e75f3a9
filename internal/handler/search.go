package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"hoclieu/internal/domain/models"
	"hoclieu/internal/httputil"
	"hoclieu/internal/service"
)

// SearchHandler handles search HTTP requests
type SearchHandler struct {
	svc    *service.SearchService
	logger *slog.Logger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(svc *service.SearchService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{svc: svc, logger: logger}
}

// Search runs the cascade
// GET /api/search?q=...&page=1&per_page=20&stage=
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	opts := &models.SearchOptions{
		Query: q.Get("q"),
		Stage: models.SearchStage(q.Get("stage")),
	}
	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "page must be an integer")
			return
		}
		opts.Page = page
	}
	if raw := q.Get("per_page"); raw != "" {
		perPage, err := strconv.Atoi(raw)
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "per_page must be an integer")
			return
		}
		opts.PerPage = perPage
	}

	results, err := h.svc.Search(r.Context(), opts)
	if err != nil {
		handleError(w, h.logger, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, results)
}

// Suggest returns typeahead items
// GET /api/search/suggest?q=...
func (h *SearchHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	suggestions, err := h.svc.Suggest(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		handleError(w, h.logger, r, err)
		return
	}
	if suggestions == nil {
		suggestions = []models.Suggestion{}
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": suggestions,
	})
}

// Reindex rebuilds the document search vectors
// POST /api/admin/reindex
func (h *SearchHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	updated, err := h.svc.Reindex(r.Context())
	if err != nil {
		handleError(w, h.logger, r, err)
		return
	}

	h.logger.Info("search reindex completed",
		"updated", updated,
		"requested_by", userID,
	)

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"updated": updated,
	})
}
