package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"hoclieu/internal/domain"
	"hoclieu/internal/domain/models"
)

// LocalBackend stores attachment bytes in a flat directory under
// generated filenames. The original user-supplied filename never
// becomes part of the on-disk path; only its extension survives, and
// only when it looks harmless.
type LocalBackend struct {
	dir string
}

// NewLocalBackend ensures the storage directory exists.
func NewLocalBackend(dir string) (*LocalBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &LocalBackend{dir: dir}, nil
}

// Provider implements Backend.
func (b *LocalBackend) Provider() models.StorageProvider { return models.StorageLocal }

// Save writes the content to a new file and returns its generated key.
func (b *LocalBackend) Save(_ context.Context, req *SaveRequest) (*SavedObject, error) {
	key := uuid.New().String() + safeExtension(req.Filename)
	path := filepath.Join(b.dir, key)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create local file: %w", err)
	}

	size, err := io.Copy(f, req.Content)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		// A half-written file is useless; remove it before reporting.
		_ = os.Remove(path)
		return nil, fmt.Errorf("write local file: %w", err)
	}

	return &SavedObject{Key: key, Size: size}, nil
}

// Open streams a stored file. The key must be a bare generated
// filename; anything resembling a path is rejected.
func (b *LocalBackend) Open(_ context.Context, key string) (io.ReadCloser, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(b.dir, key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("local object %q: %w", key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("open local file: %w", err)
	}
	return f, nil
}

// Delete unlinks a stored file. A missing file maps to ErrNotFound so
// double deletes stay safe.
func (b *LocalBackend) Delete(_ context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(b.dir, key)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("local object %q: %w", key, domain.ErrNotFound)
		}
		return fmt.Errorf("remove local file: %w", err)
	}
	return nil
}

func validateKey(key string) error {
	if key == "" || key != filepath.Base(key) || strings.HasPrefix(key, ".") {
		return &domain.InvalidInputError{Message: fmt.Sprintf("invalid storage key %q", key)}
	}
	return nil
}

// safeExtension keeps the original extension for serving convenience,
// dropping anything with path characters or an unreasonable length.
func safeExtension(filename string) string {
	ext := filepath.Ext(filepath.Base(filename))
	if len(ext) > 10 || strings.ContainsAny(ext, "/\\") {
		return ""
	}
	return strings.ToLower(ext)
}
