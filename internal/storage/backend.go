// Package storage provides the dual-backend capability interface for
// attachment bytes: local disk or the remote drive provider, selected
// per deployment and tagged on each attachment row.
package storage

import (
	"context"
	"io"

	"hoclieu/internal/domain/models"
)

// SaveRequest carries everything a backend needs to place a new object.
// The taxonomy fields are only consulted by the remote backend, which
// resolves them to a target folder.
type SaveRequest struct {
	Filename string
	MimeType string
	Content  io.Reader

	ClassID      *int
	SubjectID    *int
	GradeLabel   string
	SubjectLabel string
}

// SavedObject describes a successful physical write.
type SavedObject struct {
	// Key is the backend-specific locator: a generated on-disk filename
	// for local storage, the provider file id for remote.
	Key  string
	Size int64

	// ParentFolderID is the remote folder the object landed in; empty
	// for local storage.
	ParentFolderID string
}

// Backend is the shared capability interface over the two storage
// providers. Implementations do not touch the relational store; the
// attachment service owns the write-then-record ordering.
type Backend interface {
	Provider() models.StorageProvider
	Save(ctx context.Context, req *SaveRequest) (*SavedObject, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
