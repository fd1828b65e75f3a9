package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"hoclieu/internal/domain"
	"hoclieu/internal/domain/models"
	repos "hoclieu/internal/domain/repositories"
)

// PostgresAttachmentRepository implements the AttachmentRepository interface
type PostgresAttachmentRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewAttachmentRepository creates a new attachment repository
func NewAttachmentRepository(config *RepositoryConfig) repos.AttachmentRepository {
	return &PostgresAttachmentRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts the metadata row for an already-written physical
// object and fills in the generated id and timestamp.
func (r *PostgresAttachmentRepository) Create(ctx context.Context, att *models.Attachment) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (class_id, subject_id, filename, storage_key, mime_type,
		                file_size, uploaded_by, storage_provider, drive_parent_folder_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`, r.tables.Attachments)

	if att.CreatedAt.IsZero() {
		att.CreatedAt = time.Now()
	}

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		att.ClassID,
		att.SubjectID,
		att.Filename,
		att.StorageKey,
		att.MimeType,
		att.FileSize,
		att.UploadedBy,
		att.StorageProvider,
		att.DriveParentFolderID,
		att.CreatedAt,
	).Scan(&att.ID, &att.CreatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("storage key %q in provider %q: %w",
				att.StorageKey, att.StorageProvider, domain.ErrConflict)
		}
		return fmt.Errorf("create attachment: %w", err)
	}

	return nil
}

// GetByID retrieves an attachment row by id.
func (r *PostgresAttachmentRepository) GetByID(ctx context.Context, id int64) (*models.Attachment, error) {
	query := fmt.Sprintf(`
		SELECT id, class_id, subject_id, filename, storage_key, mime_type,
		       file_size, uploaded_by, storage_provider, drive_parent_folder_id, created_at
		FROM %s
		WHERE id = $1
	`, r.tables.Attachments)

	executor := GetExecutor(ctx, r.pool)
	att, err := scanAttachment(executor.QueryRow(ctx, query, id))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("attachment %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get attachment: %w", err)
	}

	return att, nil
}

// Delete removes the row and returns the deleted attachment so the
// caller can clean up the physical object. The row deletion is the
// authoritative "this attachment no longer exists" signal.
func (r *PostgresAttachmentRepository) Delete(ctx context.Context, id int64) (*models.Attachment, error) {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1
		RETURNING id, class_id, subject_id, filename, storage_key, mime_type,
		          file_size, uploaded_by, storage_provider, drive_parent_folder_id, created_at
	`, r.tables.Attachments)

	executor := GetExecutor(ctx, r.pool)
	att, err := scanAttachment(executor.QueryRow(ctx, query, id))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("attachment %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("delete attachment: %w", err)
	}

	return att, nil
}

// ListBySubject lists attachments for a taxonomy pair, newest first.
func (r *PostgresAttachmentRepository) ListBySubject(ctx context.Context, classID, subjectID int) ([]models.Attachment, error) {
	query := fmt.Sprintf(`
		SELECT id, class_id, subject_id, filename, storage_key, mime_type,
		       file_size, uploaded_by, storage_provider, drive_parent_folder_id, created_at
		FROM %s
		WHERE class_id = $1 AND subject_id = $2
		ORDER BY created_at DESC
	`, r.tables.Attachments)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, classID, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	defer rows.Close()

	var attachments []models.Attachment
	for rows.Next() {
		var att models.Attachment
		err := rows.Scan(
			&att.ID,
			&att.ClassID,
			&att.SubjectID,
			&att.Filename,
			&att.StorageKey,
			&att.MimeType,
			&att.FileSize,
			&att.UploadedBy,
			&att.StorageProvider,
			&att.DriveParentFolderID,
			&att.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		attachments = append(attachments, att)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attachments: %w", err)
	}

	// Return empty slice instead of nil
	if attachments == nil {
		attachments = []models.Attachment{}
	}

	return attachments, nil
}

// SaveExtractedText inserts the searchable text for an attachment.
// Runs inside the same transaction as Create when the context carries
// one, so a failed text insert rolls the metadata row back too.
func (r *PostgresAttachmentRepository) SaveExtractedText(ctx context.Context, attachmentID int64, content string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (attachment_id, content, created_at)
		VALUES ($1, $2, $3)
	`, r.tables.AttachmentTexts)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, attachmentID, content, time.Now()); err != nil {
		return fmt.Errorf("save extracted text: %w", err)
	}

	return nil
}

// rowScanner covers pgx.Row for single-row scans.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAttachment(row rowScanner) (*models.Attachment, error) {
	var att models.Attachment
	err := row.Scan(
		&att.ID,
		&att.ClassID,
		&att.SubjectID,
		&att.Filename,
		&att.StorageKey,
		&att.MimeType,
		&att.FileSize,
		&att.UploadedBy,
		&att.StorageProvider,
		&att.DriveParentFolderID,
		&att.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &att, nil
}
