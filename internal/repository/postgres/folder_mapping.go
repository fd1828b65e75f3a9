package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"hoclieu/internal/domain"
	"hoclieu/internal/domain/models"
	repos "hoclieu/internal/domain/repositories"
)

// PostgresFolderMappingRepository implements the FolderMappingRepository interface
type PostgresFolderMappingRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewFolderMappingRepository creates a new folder mapping repository
func NewFolderMappingRepository(config *RepositoryConfig) repos.FolderMappingRepository {
	return &PostgresFolderMappingRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Get retrieves the mapping for a (class, subject) pair. NULL taxonomy
// ids participate in the key, so the comparison uses IS NOT DISTINCT
// FROM rather than equality.
func (r *PostgresFolderMappingRepository) Get(ctx context.Context, classID, subjectID *int) (*models.FolderMapping, error) {
	query := fmt.Sprintf(`
		SELECT class_id, subject_id, drive_folder_id, path
		FROM %s
		WHERE class_id IS NOT DISTINCT FROM $1
		  AND subject_id IS NOT DISTINCT FROM $2
	`, r.tables.DriveFolders)

	var m models.FolderMapping
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, classID, subjectID).Scan(
		&m.ClassID,
		&m.SubjectID,
		&m.RemoteFolderID,
		&m.PathLabel,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("folder mapping: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder mapping: %w", err)
	}

	return &m, nil
}

// Upsert inserts or overwrites the mapping using the engine-native
// on-conflict clause, so concurrent resolutions of the same pair cannot
// lose updates to a read-then-write race.
func (r *PostgresFolderMappingRepository) Upsert(ctx context.Context, m *models.FolderMapping) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (class_id, subject_id, drive_folder_id, path)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (class_id, subject_id)
		DO UPDATE SET drive_folder_id = EXCLUDED.drive_folder_id,
		              path = EXCLUDED.path
	`, r.tables.DriveFolders)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, m.ClassID, m.SubjectID, m.RemoteFolderID, m.PathLabel); err != nil {
		return fmt.Errorf("upsert folder mapping: %w", err)
	}

	return nil
}
