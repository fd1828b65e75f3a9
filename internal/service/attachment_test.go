package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"hoclieu/internal/domain"
	"hoclieu/internal/domain/models"
	"hoclieu/internal/domain/repositories"
	"hoclieu/internal/storage"
)

type fakeAttachmentRepo struct {
	mu         sync.Mutex
	nextID     int64
	rows       map[int64]*models.Attachment
	texts      map[int64]string
	failCreate error
	failText   error
}

func newFakeAttachmentRepo() *fakeAttachmentRepo {
	return &fakeAttachmentRepo{
		rows:  map[int64]*models.Attachment{},
		texts: map[int64]string{},
	}
}

func (r *fakeAttachmentRepo) Create(_ context.Context, att *models.Attachment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate != nil {
		return r.failCreate
	}
	r.nextID++
	att.ID = r.nextID
	att.CreatedAt = time.Now()
	stored := *att
	r.rows[att.ID] = &stored
	return nil
}

func (r *fakeAttachmentRepo) GetByID(_ context.Context, id int64) (*models.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	att, ok := r.rows[id]
	if !ok {
		return nil, fmt.Errorf("attachment %d: %w", id, domain.ErrNotFound)
	}
	cp := *att
	return &cp, nil
}

func (r *fakeAttachmentRepo) Delete(_ context.Context, id int64) (*models.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	att, ok := r.rows[id]
	if !ok {
		return nil, fmt.Errorf("attachment %d: %w", id, domain.ErrNotFound)
	}
	delete(r.rows, id)
	return att, nil
}

func (r *fakeAttachmentRepo) ListBySubject(_ context.Context, classID, subjectID int) ([]models.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Attachment{}
	for _, att := range r.rows {
		if att.ClassID != nil && *att.ClassID == classID && att.SubjectID != nil && *att.SubjectID == subjectID {
			out = append(out, *att)
		}
	}
	return out, nil
}

func (r *fakeAttachmentRepo) SaveExtractedText(_ context.Context, attachmentID int64, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failText != nil {
		return r.failText
	}
	r.texts[attachmentID] = content
	return nil
}

// passthroughTx runs the function directly; rollback coverage comes
// from the repository fakes failing inside it.
type passthroughTx struct{}

func (passthroughTx) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newLocalService(t *testing.T, repo *fakeAttachmentRepo) (*AttachmentService, string) {
	t.Helper()
	dir := t.TempDir()
	local, err := storage.NewLocalBackend(dir)
	if err != nil {
		t.Fatalf("NewLocalBackend: %v", err)
	}
	return NewAttachmentService(repo, passthroughTx{}, local, nil, false, testLogger()), dir
}

func TestAttachmentService_StoreFetchRoundTrip(t *testing.T) {
	repo := newFakeAttachmentRepo()
	svc, _ := newLocalService(t, repo)
	ctx := context.Background()

	content := []byte("de thi giua ky")
	att, err := svc.Store(ctx, &StoreRequest{
		Filename:   "dethi.pdf",
		MimeType:   "application/pdf",
		Content:    bytes.NewReader(content),
		UploaderID: "teacher-1",
	})
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if att.ID == 0 {
		t.Error("Store should fill in the generated id")
	}
	if att.StorageProvider != models.StorageLocal {
		t.Errorf("provider = %q, want %q", att.StorageProvider, models.StorageLocal)
	}
	if att.FileSize != int64(len(content)) {
		t.Errorf("size = %d, want %d", att.FileSize, len(content))
	}

	rc, got, err := svc.Fetch(ctx, att.ID)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	defer rc.Close()
	if got.Filename != "dethi.pdf" {
		t.Errorf("filename = %q, want %q", got.Filename, "dethi.pdf")
	}
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(data, content) {
		t.Errorf("content mismatch: got %q, want %q", data, content)
	}
}

func TestAttachmentService_StoreValidation(t *testing.T) {
	repo := newFakeAttachmentRepo()
	svc, _ := newLocalService(t, repo)
	ctx := context.Background()

	tests := []struct {
		name string
		req  *StoreRequest
	}{
		{"nil content", &StoreRequest{Filename: "a.txt", UploaderID: "u1"}},
		{"empty filename", &StoreRequest{Content: strings.NewReader("x"), UploaderID: "u1"}},
		{"missing uploader", &StoreRequest{Filename: "a.txt", Content: strings.NewReader("x")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Store(ctx, tt.req); !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("Store = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestAttachmentService_StoreCompensatesFailedInsert(t *testing.T) {
	repo := newFakeAttachmentRepo()
	repo.failCreate = errors.New("connection reset")
	svc, dir := newLocalService(t, repo)
	ctx := context.Background()

	_, err := svc.Store(ctx, &StoreRequest{
		Filename:   "baitap.docx",
		Content:    strings.NewReader("noi dung"),
		UploaderID: "teacher-1",
	})
	if !errors.Is(err, domain.ErrStorageInconsistent) {
		t.Fatalf("Store = %v, want ErrStorageInconsistent", err)
	}

	// The just-written object must be cleaned up when the row insert
	// fails; the directory goes back to empty.
	entries, readErr := os.ReadDir(dir)
	if readErr != nil {
		t.Fatalf("ReadDir: %v", readErr)
	}
	if len(entries) != 0 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, filepath.Base(e.Name()))
		}
		t.Errorf("storage dir should be empty after compensation, has %v", names)
	}
}

func TestAttachmentService_CapturesTextForIndexing(t *testing.T) {
	repo := newFakeAttachmentRepo()
	svc, _ := newLocalService(t, repo)
	ctx := context.Background()

	textAtt, err := svc.Store(ctx, &StoreRequest{
		Filename:   "ghichu.txt",
		MimeType:   "text/plain; charset=utf-8",
		Content:    strings.NewReader("  giải phương trình bậc hai  "),
		UploaderID: "teacher-1",
	})
	if err != nil {
		t.Fatalf("Store text: %v", err)
	}
	if got := repo.texts[textAtt.ID]; got != "giải phương trình bậc hai" {
		t.Errorf("extracted text = %q, want the trimmed content", got)
	}

	// Stored bytes must be untouched by the capture.
	rc, _, err := svc.Fetch(ctx, textAtt.ID)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "  giải phương trình bậc hai  " {
		t.Errorf("stored content = %q, capture must not alter it", data)
	}

	binAtt, err := svc.Store(ctx, &StoreRequest{
		Filename:   "dethi.pdf",
		MimeType:   "application/pdf",
		Content:    strings.NewReader("%PDF-1.4"),
		UploaderID: "teacher-1",
	})
	if err != nil {
		t.Fatalf("Store binary: %v", err)
	}
	if _, ok := repo.texts[binAtt.ID]; ok {
		t.Error("binary upload should not produce extracted text")
	}
}

func TestAttachmentService_TextInsertFailureCompensates(t *testing.T) {
	repo := newFakeAttachmentRepo()
	repo.failText = errors.New("relation missing")
	svc, dir := newLocalService(t, repo)

	_, err := svc.Store(context.Background(), &StoreRequest{
		Filename:   "ghichu.txt",
		MimeType:   "text/plain",
		Content:    strings.NewReader("noi dung"),
		UploaderID: "teacher-1",
	})
	if !errors.Is(err, domain.ErrStorageInconsistent) {
		t.Fatalf("Store = %v, want ErrStorageInconsistent", err)
	}

	entries, readErr := os.ReadDir(dir)
	if readErr != nil {
		t.Fatalf("ReadDir: %v", readErr)
	}
	if len(entries) != 0 {
		t.Errorf("storage dir should be empty after compensation, has %d entries", len(entries))
	}
}

func TestIsIndexableMime(t *testing.T) {
	tests := []struct {
		mimeType string
		want     bool
	}{
		{"text/plain", true},
		{"text/plain; charset=utf-8", true},
		{"TEXT/MARKDOWN", true},
		{"application/json", true},
		{"application/pdf", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := isIndexableMime(tt.mimeType); got != tt.want {
			t.Errorf("isIndexableMime(%q) = %v, want %v", tt.mimeType, got, tt.want)
		}
	}
}

func TestAttachmentService_RemoveTwice(t *testing.T) {
	repo := newFakeAttachmentRepo()
	svc, _ := newLocalService(t, repo)
	ctx := context.Background()

	att, err := svc.Store(ctx, &StoreRequest{
		Filename:   "note.txt",
		Content:    strings.NewReader("x"),
		UploaderID: "teacher-1",
	})
	if err != nil {
		t.Fatalf("Store: %v", err)
	}

	if err := svc.Remove(ctx, att.ID); err != nil {
		t.Fatalf("first Remove: %v", err)
	}
	if err := svc.Remove(ctx, att.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second Remove = %v, want ErrNotFound", err)
	}
	if _, _, err := svc.Fetch(ctx, att.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Fetch after remove = %v, want ErrNotFound", err)
	}
}

func TestAttachmentService_FetchUnconfiguredProvider(t *testing.T) {
	repo := newFakeAttachmentRepo()
	svc, _ := newLocalService(t, repo)
	ctx := context.Background()

	// Simulate a row written while remote storage was enabled.
	att := &models.Attachment{
		Filename:        "cloud.pdf",
		StorageProvider: models.StorageRemote,
		StorageKey:      "remote-file-id",
		UploadedBy:      "teacher-1",
	}
	if err := repo.Create(ctx, att); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, _, err := svc.Fetch(ctx, att.ID); !errors.Is(err, domain.ErrRemoteUnavailable) {
		t.Errorf("Fetch = %v, want ErrRemoteUnavailable", err)
	}
}
