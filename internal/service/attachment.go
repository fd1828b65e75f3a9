// Package service contains the orchestration layer: attachment
// storage across the two backends, the search cascade, and best-effort
// remote browsing.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"hoclieu/internal/domain"
	"hoclieu/internal/domain/models"
	"hoclieu/internal/domain/repositories"
	"hoclieu/internal/storage"
)

// maxIndexableBytes caps how much of a text upload is captured for the
// attachment-text search stage.
const maxIndexableBytes = 256 << 10

// StoreRequest is one upload. Size limits are enforced by the caller
// before the request reaches this service.
type StoreRequest struct {
	Filename string
	MimeType string
	Content  io.Reader

	ClassID      *int
	SubjectID    *int
	GradeLabel   string
	SubjectLabel string

	UploaderID string
}

// Validate checks the request's required fields.
func (r *StoreRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Filename, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.UploaderID, validation.Required),
	)
}

// AttachmentService implements the attachment store: one uniform
// upload/download/delete contract over the configured backend, with the
// relational row as the authoritative record.
type AttachmentService struct {
	repo      repositories.AttachmentRepository
	txManager repositories.TransactionManager
	backends  map[models.StorageProvider]storage.Backend
	active    storage.Backend
	logger    *slog.Logger
}

// NewAttachmentService selects the active backend from the deployment
// configuration. The remote backend may be nil when remote storage is
// disabled; rows tagged remote then fail to stream until it returns.
func NewAttachmentService(
	repo repositories.AttachmentRepository,
	txManager repositories.TransactionManager,
	local *storage.LocalBackend,
	remote *storage.RemoteBackend,
	remoteEnabled bool,
	logger *slog.Logger,
) *AttachmentService {
	backends := map[models.StorageProvider]storage.Backend{
		models.StorageLocal: local,
	}
	var active storage.Backend = local
	if remote != nil {
		backends[models.StorageRemote] = remote
		if remoteEnabled {
			active = remote
		}
	}

	return &AttachmentService{
		repo:      repo,
		txManager: txManager,
		backends:  backends,
		active:    active,
		logger:    logger,
	}
}

// Store performs the physical write first and inserts the metadata row
// only after it succeeds, so a failed write never leaves an orphaned
// row. If the insert fails after a successful write, the just-written
// object is deleted to avoid a storage leak; which phase failed is an
// internal detail and the caller sees a single failure.
func (s *AttachmentService) Store(ctx context.Context, req *StoreRequest) (*models.Attachment, error) {
	if req.Content == nil {
		return nil, &domain.InvalidInputError{Message: "upload content is required"}
	}
	if err := req.Validate(); err != nil {
		return nil, &domain.InvalidInputError{Message: err.Error()}
	}

	// Text uploads get their content captured on the way through, so
	// the attachment-text search stage can index them without a second
	// read of the stored object.
	content := req.Content
	var capture *cappedBuffer
	if isIndexableMime(req.MimeType) {
		capture = &cappedBuffer{limit: maxIndexableBytes}
		content = io.TeeReader(req.Content, capture)
	}

	saved, err := s.active.Save(ctx, &storage.SaveRequest{
		Filename:     req.Filename,
		MimeType:     req.MimeType,
		Content:      content,
		ClassID:      req.ClassID,
		SubjectID:    req.SubjectID,
		GradeLabel:   req.GradeLabel,
		SubjectLabel: req.SubjectLabel,
	})
	if err != nil {
		return nil, fmt.Errorf("store attachment: %w", err)
	}

	att := &models.Attachment{
		ClassID:         req.ClassID,
		SubjectID:       req.SubjectID,
		Filename:        req.Filename,
		StorageProvider: s.active.Provider(),
		StorageKey:      saved.Key,
		MimeType:        req.MimeType,
		FileSize:        saved.Size,
		UploadedBy:      req.UploaderID,
	}
	if saved.ParentFolderID != "" {
		att.DriveParentFolderID = &saved.ParentFolderID
	}

	// Metadata row and extracted text commit together; a failed text
	// insert rolls back the row so compensation sees one outcome.
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, att); err != nil {
			return err
		}
		if text := capture.text(); text != "" {
			return s.repo.SaveExtractedText(txCtx, att.ID, text)
		}
		return nil
	})
	if err != nil {
		// Compensate: the physical object exists but the row does not,
		// and the row is authoritative.
		if delErr := s.active.Delete(ctx, saved.Key); delErr != nil {
			s.logger.Error("orphaned object after failed metadata insert",
				"provider", s.active.Provider(),
				"storage_key", saved.Key,
				"error", delErr,
			)
		}
		return nil, fmt.Errorf("%w: metadata insert after physical write: %v",
			domain.ErrStorageInconsistent, err)
	}

	s.logger.Info("attachment stored",
		"id", att.ID,
		"provider", att.StorageProvider,
		"size", att.FileSize,
	)

	return att, nil
}

// Describe returns the metadata row without touching the stored bytes.
func (s *AttachmentService) Describe(ctx context.Context, id int64) (*models.Attachment, error) {
	return s.repo.GetByID(ctx, id)
}

// Fetch streams the attachment's bytes plus its metadata. Authorization
// is the caller's concern; this contract is purely "stream bytes for a
// given id once authorized".
func (s *AttachmentService) Fetch(ctx context.Context, id int64) (io.ReadCloser, *models.Attachment, error) {
	att, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	backend, err := s.backendFor(att.StorageProvider)
	if err != nil {
		return nil, nil, err
	}

	rc, err := backend.Open(ctx, att.StorageKey)
	if err != nil {
		return nil, nil, err
	}

	return rc, att, nil
}

// Remove deletes the relational row first, then best-effort deletes the
// physical object. A failed physical delete is logged, never rolled
// back: the row deletion is the authoritative signal.
func (s *AttachmentService) Remove(ctx context.Context, id int64) error {
	att, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}

	backend, err := s.backendFor(att.StorageProvider)
	if err != nil {
		s.logger.Warn("attachment row deleted, physical object unreachable",
			"id", id,
			"provider", att.StorageProvider,
			"error", err,
		)
		return nil
	}

	if err := backend.Delete(ctx, att.StorageKey); err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.logger.Warn("attachment row deleted, physical delete failed",
			"id", id,
			"provider", att.StorageProvider,
			"storage_key", att.StorageKey,
			"error", err,
		)
	}

	return nil
}

// isIndexableMime reports whether an upload's content is plain enough
// to feed the text search stage directly. Binary formats need a real
// extraction pipeline and are skipped here.
func isIndexableMime(mimeType string) bool {
	mt := mimeType
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	mt = strings.TrimSpace(strings.ToLower(mt))
	return strings.HasPrefix(mt, "text/") || mt == "application/json"
}

// cappedBuffer accepts all writes but retains only the first limit
// bytes, so teeing an oversized upload through it never fails the copy.
type cappedBuffer struct {
	buf   bytes.Buffer
	limit int
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if room := b.limit - b.buf.Len(); room > 0 {
		if len(p) > room {
			p = p[:room]
		}
		b.buf.Write(p)
	}
	return n, nil
}

// text returns the captured content cleaned up for indexing. Safe on a
// nil receiver so non-text uploads skip the stage with no branching at
// the call site.
func (b *cappedBuffer) text() string {
	if b == nil {
		return ""
	}
	return strings.ToValidUTF8(strings.TrimSpace(b.buf.String()), "")
}

func (s *AttachmentService) backendFor(provider models.StorageProvider) (storage.Backend, error) {
	backend, ok := s.backends[provider]
	if !ok || backend == nil {
		return nil, &domain.RemoteUnavailableError{
			Message: fmt.Sprintf("storage provider %q is not configured", provider),
		}
	}
	return backend, nil
}
