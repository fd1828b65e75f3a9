// Package drive abstracts the remote storage provider (folder listing,
// folder creation, file transfer) and resolves grade/subject taxonomy
// pairs to remote folder ids.
package drive

import (
	"context"
	"fmt"
	"io"

	"hoclieu/internal/domain"
)

// MimeTypeFolder is the provider MIME type marking a folder entry.
const MimeTypeFolder = "application/vnd.google-apps.folder"

// Entry is one child of a remote folder.
type Entry struct {
	ID       string
	Name     string
	MimeType string
}

// IsFolder reports whether the entry is a sub-folder.
func (e Entry) IsFolder() bool { return e.MimeType == MimeTypeFolder }

// File describes an uploaded remote file.
type File struct {
	ID      string
	Name    string
	Size    int64
	WebLink string
}

// Metadata describes an existing remote file.
type Metadata struct {
	ID       string
	Name     string
	MimeType string
	Size     int64
}

// Client is the remote-provider contract this subsystem consumes.
// Credential acquisition is the constructor's concern, not the
// interface's. Implementations wrap every provider failure in
// domain.ErrRemoteUnavailable; no retries happen at this layer.
type Client interface {
	ListChildren(ctx context.Context, parentID string) ([]Entry, error)
	CreateFolder(ctx context.Context, parentID, name string) (*Entry, error)
	UploadFile(ctx context.Context, parentID, name, mimeType string, r io.Reader) (*File, error)
	DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, error)
	DeleteFile(ctx context.Context, fileID string) error
	GetMetadata(ctx context.Context, fileID string) (*Metadata, error)
}

// remoteErr wraps a provider failure so callers can match
// domain.ErrRemoteUnavailable with errors.Is.
func remoteErr(op string, err error) error {
	return &domain.RemoteUnavailableError{
		Message: fmt.Sprintf("drive %s: %v", op, err),
	}
}
