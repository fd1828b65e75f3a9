package repositories

import (
	"context"

	"hoclieu/internal/domain/models"
)

// AttachmentRepository persists attachment metadata rows. The row is
// authoritative: physical bytes without a row do not exist as far as
// the system is concerned.
type AttachmentRepository interface {
	// Create inserts the metadata row and fills in the generated ID and
	// CreatedAt.
	Create(ctx context.Context, att *models.Attachment) error

	// GetByID returns domain.ErrNotFound (wrapped) if no row exists.
	GetByID(ctx context.Context, id int64) (*models.Attachment, error)

	// Delete removes the row. Returns domain.ErrNotFound (wrapped) if
	// the row was already gone, so a double delete is safe to report.
	Delete(ctx context.Context, id int64) (*models.Attachment, error)

	// ListBySubject lists attachment metadata for a taxonomy pair,
	// newest first.
	ListBySubject(ctx context.Context, classID, subjectID int) ([]models.Attachment, error)

	// SaveExtractedText records searchable text extracted from an
	// attachment's content. Feeds the attachment-text search stage.
	SaveExtractedText(ctx context.Context, attachmentID int64, content string) error
}
