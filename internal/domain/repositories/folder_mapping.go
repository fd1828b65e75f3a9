package repositories

import (
	"context"

	"hoclieu/internal/domain/models"
)

// FolderMappingRepository persists resolved (class, subject) → remote
// folder mappings. Upsert is the only write: concurrent resolutions of
// the same pair converge to a single row even when the remote side
// ended up with duplicate folders.
type FolderMappingRepository interface {
	// Get returns domain.ErrNotFound (wrapped) when no mapping exists.
	Get(ctx context.Context, classID, subjectID *int) (*models.FolderMapping, error)

	// Upsert inserts or overwrites the mapping for its (class, subject)
	// pair using the engine's native on-conflict clause.
	Upsert(ctx context.Context, m *models.FolderMapping) error
}
