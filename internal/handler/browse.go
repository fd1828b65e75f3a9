package handler

import (
	"log/slog"
	"net/http"

	"hoclieu/internal/httputil"
	"hoclieu/internal/service"
)

// BrowseHandler handles folder browsing HTTP requests
type BrowseHandler struct {
	svc    *service.BrowseService
	logger *slog.Logger
}

// NewBrowseHandler creates a new browse handler
func NewBrowseHandler(svc *service.BrowseService, logger *slog.Logger) *BrowseHandler {
	return &BrowseHandler{svc: svc, logger: logger}
}

// Browse lists a resolved grade/subject folder
// GET /api/browse?class_id=6&subject_id=2&grade_label=...&subject_label=...
func (h *BrowseHandler) Browse(w http.ResponseWriter, r *http.Request) {
	classID, ok := intQuery(w, r, "class_id")
	if !ok {
		return
	}
	subjectID, ok := intQuery(w, r, "subject_id")
	if !ok {
		return
	}

	q := r.URL.Query()
	listing, err := h.svc.ListFolder(r.Context(), classID, subjectID,
		q.Get("grade_label"), q.Get("subject_label"))
	if err != nil {
		handleError(w, h.logger, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, listing)
}
