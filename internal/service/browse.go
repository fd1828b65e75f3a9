package service

import (
	"context"
	"errors"
	"log/slog"

	"hoclieu/internal/domain"
	"hoclieu/internal/domain/models"
	"hoclieu/internal/domain/repositories"
	"hoclieu/internal/drive"
)

// FolderListing is the browse view of one grade/subject folder: the
// relational attachment rows plus whatever the remote provider reports
// living in the mapped folder.
type FolderListing struct {
	FolderID    string              `json:"folder_id,omitempty"`
	Entries     []drive.Entry       `json:"entries"`
	Attachments []models.Attachment `json:"attachments"`

	// RemoteDegraded is set when the remote provider could not be
	// reached and Entries is therefore empty rather than authoritative.
	RemoteDegraded bool `json:"remote_degraded,omitempty"`
}

// BrowseService lists the contents of resolved grade/subject folders.
// The relational side always answers; the remote side degrades to an
// empty listing when the provider is down.
type BrowseService struct {
	resolver *drive.Resolver
	client   drive.Client
	repo     repositories.AttachmentRepository
	logger   *slog.Logger
}

// NewBrowseService creates a new browse service. Resolver and client
// may be nil when remote storage is disabled; browsing then serves the
// relational rows only.
func NewBrowseService(
	resolver *drive.Resolver,
	client drive.Client,
	repo repositories.AttachmentRepository,
	logger *slog.Logger,
) *BrowseService {
	return &BrowseService{resolver: resolver, client: client, repo: repo, logger: logger}
}

// ListFolder resolves the taxonomy pair and merges both views. Remote
// failures never fail the request: the listing comes back with the
// relational rows and RemoteDegraded set.
func (s *BrowseService) ListFolder(ctx context.Context, classID, subjectID int, gradeLabel, subjectLabel string) (*FolderListing, error) {
	attachments, err := s.repo.ListBySubject(ctx, classID, subjectID)
	if err != nil {
		return nil, err
	}

	listing := &FolderListing{
		Entries:     []drive.Entry{},
		Attachments: attachments,
	}

	if s.resolver == nil || s.client == nil {
		listing.RemoteDegraded = true
		return listing, nil
	}

	folderID, err := s.resolver.Resolve(ctx, &classID, &subjectID, gradeLabel, subjectLabel)
	if err != nil {
		if errors.Is(err, domain.ErrRemoteUnavailable) {
			s.logger.Warn("remote folder resolution failed, serving relational rows only",
				"class_id", classID,
				"subject_id", subjectID,
				"error", err,
			)
			listing.RemoteDegraded = true
			return listing, nil
		}
		return nil, err
	}
	listing.FolderID = folderID

	entries, err := s.client.ListChildren(ctx, folderID)
	if err != nil {
		if errors.Is(err, domain.ErrRemoteUnavailable) {
			s.logger.Warn("remote folder listing failed, serving relational rows only",
				"folder_id", folderID,
				"error", err,
			)
			listing.RemoteDegraded = true
			return listing, nil
		}
		return nil, err
	}
	listing.Entries = entries

	return listing, nil
}
