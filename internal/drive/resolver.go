package drive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"hoclieu/internal/domain"
	"hoclieu/internal/domain/models"
	"hoclieu/internal/domain/repositories"
	"hoclieu/internal/normalize"
)

// Resolver maps a (grade, subject) taxonomy pair to a remote folder id,
// creating intermediate folders on demand. Resolved pairs are persisted
// as FolderMapping rows so repeated resolutions make no remote calls.
type Resolver struct {
	mappings repositories.FolderMappingRepository
	client   Client
	cache    *FolderCache
	naming   *NamingRules
	rootID   string
	logger   *slog.Logger
}

// NewResolver creates a resolver rooted at the configured top-level
// remote folder.
func NewResolver(
	mappings repositories.FolderMappingRepository,
	client Client,
	cache *FolderCache,
	naming *NamingRules,
	rootID string,
	logger *slog.Logger,
) *Resolver {
	return &Resolver{
		mappings: mappings,
		client:   client,
		cache:    cache,
		naming:   naming,
		rootID:   rootID,
		logger:   logger,
	}
}

// Resolve returns the remote folder id for the taxonomy pair, finding
// or creating "{grade}/{subject}" folders under the root as needed and
// upserting the persisted mapping.
//
// Two resolutions of the same unmapped pair racing past the mapping
// lookup can both decide no folder exists and both create one; the
// remote side then holds duplicate folders, and the mapping upsert
// converges on one winner. The duplicate is tolerated, matching the
// provider's lack of a create-if-absent folder primitive.
func (r *Resolver) Resolve(ctx context.Context, classID, subjectID *int, gradeLabel, subjectLabel string) (string, error) {
	if strings.TrimSpace(subjectLabel) == "" {
		return "", &domain.InvalidInputError{Message: "subject label is required"}
	}

	// Persisted mapping wins: no remote calls on the hot path.
	if m, err := r.mappings.Get(ctx, classID, subjectID); err == nil {
		return m.RemoteFolderID, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("lookup folder mapping: %w", err)
	}

	parentID := r.rootID
	pathLabel := ""

	if strings.TrimSpace(gradeLabel) != "" {
		grade, err := r.findOrCreate(ctx, r.rootID, r.naming.GradeCandidates(gradeLabel))
		if err != nil {
			return "", err
		}
		parentID = grade.ID
		pathLabel = grade.Name + "/"
	}

	subject, err := r.findOrCreate(ctx, parentID, r.naming.SubjectCandidates(subjectLabel))
	if err != nil {
		return "", err
	}
	pathLabel += subject.Name

	mapping := &models.FolderMapping{
		ClassID:        classID,
		SubjectID:      subjectID,
		RemoteFolderID: subject.ID,
		PathLabel:      pathLabel,
	}
	if err := r.mappings.Upsert(ctx, mapping); err != nil {
		return "", fmt.Errorf("upsert folder mapping: %w", err)
	}

	r.logger.Info("resolved drive folder",
		"path", pathLabel,
		"folder_id", subject.ID,
	)

	return subject.ID, nil
}

// findOrCreate scans the parent's sub-folders for the first candidate
// whose normalized name matches exactly; the first containment match
// across all candidates is kept as a fallback. When nothing matches,
// a folder is created with the first candidate as its display name.
func (r *Resolver) findOrCreate(ctx context.Context, parentID string, candidates []string) (*Entry, error) {
	children, err := r.childFolders(ctx, parentID)
	if err != nil {
		return nil, err
	}

	var fallback *Entry
	for _, candidate := range candidates {
		key := normalize.Normalize(candidate)
		if key == "" {
			continue
		}
		for i := range children {
			childKey := normalize.Normalize(children[i].Name)
			if childKey == key {
				return &children[i], nil
			}
			if fallback == nil && strings.Contains(childKey, key) {
				fallback = &children[i]
			}
		}
	}
	if fallback != nil {
		return fallback, nil
	}

	created, err := r.client.CreateFolder(ctx, parentID, candidates[0])
	if err != nil {
		return nil, err
	}

	r.logger.Info("created drive folder",
		"name", created.Name,
		"parent_id", parentID,
	)

	// Keep the cache entry current so a later resolution under the same
	// parent sees the new folder without a remote list call.
	r.cache.Put(parentID, append(children, *created))

	return created, nil
}

// childFolders returns the sub-folders of parentID, from cache when
// possible.
func (r *Resolver) childFolders(ctx context.Context, parentID string) ([]Entry, error) {
	if children, ok := r.cache.Get(parentID); ok {
		return children, nil
	}

	entries, err := r.client.ListChildren(ctx, parentID)
	if err != nil {
		return nil, err
	}

	folders := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.IsFolder() {
			folders = append(folders, e)
		}
	}

	r.cache.Put(parentID, folders)
	return folders, nil
}
