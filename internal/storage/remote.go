package storage

import (
	"context"
	"io"

	"hoclieu/internal/domain/models"
	"hoclieu/internal/drive"
)

// RemoteBackend stores attachment bytes in the remote drive provider,
// placing uploads in the folder resolved from the request's taxonomy
// pair. The provider-assigned file id is the storage key.
type RemoteBackend struct {
	client   drive.Client
	resolver *drive.Resolver
	rootID   string
}

// NewRemoteBackend wires the drive client and folder resolver.
func NewRemoteBackend(client drive.Client, resolver *drive.Resolver, rootID string) *RemoteBackend {
	return &RemoteBackend{client: client, resolver: resolver, rootID: rootID}
}

// Provider implements Backend.
func (b *RemoteBackend) Provider() models.StorageProvider { return models.StorageRemote }

// Save resolves the target folder and uploads the content. Uploads
// without taxonomy context (admin uploads) land in the configured root.
func (b *RemoteBackend) Save(ctx context.Context, req *SaveRequest) (*SavedObject, error) {
	folderID := b.rootID
	if req.SubjectLabel != "" {
		resolved, err := b.resolver.Resolve(ctx, req.ClassID, req.SubjectID, req.GradeLabel, req.SubjectLabel)
		if err != nil {
			return nil, err
		}
		folderID = resolved
	}

	file, err := b.client.UploadFile(ctx, folderID, req.Filename, req.MimeType, req.Content)
	if err != nil {
		return nil, err
	}

	return &SavedObject{
		Key:            file.ID,
		Size:           file.Size,
		ParentFolderID: folderID,
	}, nil
}

// Open streams the remote file's media.
func (b *RemoteBackend) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return b.client.DownloadFile(ctx, key)
}

// Delete removes the remote file.
func (b *RemoteBackend) Delete(ctx context.Context, key string) error {
	return b.client.DeleteFile(ctx, key)
}
