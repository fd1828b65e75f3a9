package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"hoclieu/internal/domain"
	"hoclieu/internal/drive"
)

// fakeDrive stores file bytes in memory, keyed by provider-assigned id.
type fakeDrive struct {
	mu     sync.Mutex
	files  map[string][]byte
	parent map[string]string
	nextID int
}

func newFakeDrive() *fakeDrive {
	return &fakeDrive{files: map[string][]byte{}, parent: map[string]string{}}
}

func (d *fakeDrive) ListChildren(_ context.Context, _ string) ([]drive.Entry, error) {
	return nil, nil
}

func (d *fakeDrive) CreateFolder(_ context.Context, _, _ string) (*drive.Entry, error) {
	return nil, errors.New("not implemented")
}

func (d *fakeDrive) UploadFile(_ context.Context, parentID, name, _ string, r io.Reader) (*drive.File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	id := fmt.Sprintf("file-%d", d.nextID)
	d.files[id] = data
	d.parent[id] = parentID
	return &drive.File{ID: id, Name: name, Size: int64(len(data))}, nil
}

func (d *fakeDrive) DownloadFile(_ context.Context, fileID string) (io.ReadCloser, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	data, ok := d.files[fileID]
	if !ok {
		return nil, &domain.NotFoundError{Message: "no such file"}
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (d *fakeDrive) DeleteFile(_ context.Context, fileID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.files[fileID]; !ok {
		return &domain.NotFoundError{Message: "no such file"}
	}
	delete(d.files, fileID)
	return nil
}

func (d *fakeDrive) GetMetadata(_ context.Context, fileID string) (*drive.Metadata, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	data, ok := d.files[fileID]
	if !ok {
		return nil, &domain.NotFoundError{Message: "no such file"}
	}
	return &drive.Metadata{ID: fileID, Size: int64(len(data))}, nil
}

func TestRemoteBackend_RoundTrip(t *testing.T) {
	client := newFakeDrive()
	// No subject label on the request, so the upload lands in the root
	// and the resolver is never consulted.
	b := NewRemoteBackend(client, nil, "root")
	ctx := context.Background()

	content := []byte("de cuong on tap")
	saved, err := b.Save(ctx, &SaveRequest{
		Filename: "decuong.docx",
		MimeType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		Content:  bytes.NewReader(content),
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.Key == "" {
		t.Fatal("key should be the provider file id")
	}
	if saved.Size != int64(len(content)) {
		t.Errorf("size = %d, want %d", saved.Size, len(content))
	}
	if saved.ParentFolderID != "root" {
		t.Errorf("parent = %q, want the configured root", saved.ParentFolderID)
	}

	rc, err := b.Open(ctx, saved.Key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("round trip mismatch: got %q, want %q", got, content)
	}

	if err := b.Delete(ctx, saved.Key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := b.Open(ctx, saved.Key); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Open after delete = %v, want ErrNotFound", err)
	}
}
