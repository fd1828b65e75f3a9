// Package handler exposes the HTTP surface: attachment upload and
// streaming, the search cascade, folder browsing, and admin reindexing.
package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"hoclieu/internal/httputil"
	"hoclieu/internal/service"
)

// AttachmentHandler handles attachment HTTP requests
type AttachmentHandler struct {
	svc            *service.AttachmentService
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewAttachmentHandler creates a new attachment handler
func NewAttachmentHandler(svc *service.AttachmentService, maxUploadBytes int64, logger *slog.Logger) *AttachmentHandler {
	return &AttachmentHandler{
		svc:            svc,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Upload stores a new attachment
// POST /api/attachments (multipart: file, class_id, subject_id, grade_label, subject_label)
func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			httputil.RespondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds %d bytes", h.maxUploadBytes))
			return
		}
		httputil.RespondError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	classID, ok := formOptionalInt(r, "class_id")
	if !ok {
		httputil.RespondError(w, http.StatusBadRequest, "class_id must be an integer")
		return
	}
	subjectID, ok := formOptionalInt(r, "subject_id")
	if !ok {
		httputil.RespondError(w, http.StatusBadRequest, "subject_id must be an integer")
		return
	}

	att, err := h.svc.Store(r.Context(), &service.StoreRequest{
		Filename:     header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
		Content:      file,
		ClassID:      classID,
		SubjectID:    subjectID,
		GradeLabel:   r.FormValue("grade_label"),
		SubjectLabel: r.FormValue("subject_label"),
		UploaderID:   userID,
	})
	if err != nil {
		handleError(w, h.logger, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, att)
}

// Get returns attachment metadata
// GET /api/attachments/{id}
func (h *AttachmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		httputil.RespondError(w, http.StatusBadRequest, "attachment id must be a positive integer")
		return
	}

	att, err := h.svc.Describe(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, att)
}

// Download streams the attachment bytes
// GET /api/attachments/{id}/download
func (h *AttachmentHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		httputil.RespondError(w, http.StatusBadRequest, "attachment id must be a positive integer")
		return
	}

	rc, att, err := h.svc.Fetch(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, r, err)
		return
	}
	defer rc.Close()

	contentType := att.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": att.Filename,
	}))
	if att.FileSize > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(att.FileSize, 10))
	}

	if _, err := io.Copy(w, rc); err != nil {
		// Headers are gone; all we can do is note the broken stream.
		h.logger.Warn("attachment stream interrupted",
			"id", id,
			"error", err,
		)
	}
}

// Delete removes an attachment
// DELETE /api/attachments/{id}
func (h *AttachmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	id, ok := parseID(r)
	if !ok {
		httputil.RespondError(w, http.StatusBadRequest, "attachment id must be a positive integer")
		return
	}

	if err := h.svc.Remove(r.Context(), id); err != nil {
		handleError(w, h.logger, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func formOptionalInt(r *http.Request, key string) (*int, bool) {
	raw := r.FormValue(key)
	if raw == "" {
		return nil, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, false
	}
	return &n, true
}
