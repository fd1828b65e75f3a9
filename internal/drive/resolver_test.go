package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"hoclieu/internal/domain"
	"hoclieu/internal/domain/models"
)

// fakeMappings is an in-memory FolderMappingRepository keyed by the
// (class, subject) pair.
type fakeMappings struct {
	mu   sync.Mutex
	rows map[string]*models.FolderMapping
}

func newFakeMappings() *fakeMappings {
	return &fakeMappings{rows: make(map[string]*models.FolderMapping)}
}

func pairKey(classID, subjectID *int) string {
	k := ""
	if classID != nil {
		k += fmt.Sprint(*classID)
	}
	k += "/"
	if subjectID != nil {
		k += fmt.Sprint(*subjectID)
	}
	return k
}

func (f *fakeMappings) Get(_ context.Context, classID, subjectID *int) (*models.FolderMapping, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.rows[pairKey(classID, subjectID)]
	if !ok {
		return nil, &domain.NotFoundError{Message: "no mapping"}
	}
	return m, nil
}

func (f *fakeMappings) Upsert(_ context.Context, m *models.FolderMapping) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[pairKey(m.ClassID, m.SubjectID)] = m
	return nil
}

func (f *fakeMappings) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

// fakeClient is an in-memory remote provider.
type fakeClient struct {
	mu        sync.Mutex
	children  map[string][]Entry // parentID -> entries
	nextID    int
	listCalls int
	fail      bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{children: make(map[string][]Entry)}
}

func (f *fakeClient) addFolder(parentID, name string) Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	e := Entry{ID: fmt.Sprintf("folder-%d", f.nextID), Name: name, MimeType: MimeTypeFolder}
	f.children[parentID] = append(f.children[parentID], e)
	return e
}

func (f *fakeClient) ListChildren(_ context.Context, parentID string) ([]Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, remoteErr("list children", errors.New("boom"))
	}
	f.listCalls++
	return append([]Entry(nil), f.children[parentID]...), nil
}

func (f *fakeClient) CreateFolder(_ context.Context, parentID, name string) (*Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, remoteErr("create folder", errors.New("boom"))
	}
	f.nextID++
	e := Entry{ID: fmt.Sprintf("folder-%d", f.nextID), Name: name, MimeType: MimeTypeFolder}
	f.children[parentID] = append(f.children[parentID], e)
	return &e, nil
}

func (f *fakeClient) UploadFile(_ context.Context, _, _, _ string, _ io.Reader) (*File, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeClient) DownloadFile(_ context.Context, _ string) (io.ReadCloser, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeClient) DeleteFile(_ context.Context, _ string) error { return nil }

func (f *fakeClient) GetMetadata(_ context.Context, _ string) (*Metadata, error) {
	return nil, errors.New("not implemented")
}

func intPtr(v int) *int { return &v }

func newTestResolver(t *testing.T, mappings *fakeMappings, client *fakeClient) *Resolver {
	t.Helper()
	naming, err := LoadNamingRules()
	if err != nil {
		t.Fatalf("LoadNamingRules: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewResolver(mappings, client, NewFolderCache(), naming, "root", logger)
}

func TestResolve_ExistingMappingSkipsRemote(t *testing.T) {
	mappings := newFakeMappings()
	client := newFakeClient()
	_ = mappings.Upsert(context.Background(), &models.FolderMapping{
		ClassID:        intPtr(6),
		SubjectID:      intPtr(1),
		RemoteFolderID: "folder-42",
		PathLabel:      "Lớp 6/Toán",
	})

	r := newTestResolver(t, mappings, client)
	got, err := r.Resolve(context.Background(), intPtr(6), intPtr(1), "Lớp 6", "Toán")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "folder-42" {
		t.Errorf("folder id = %q, want folder-42", got)
	}
	if client.listCalls != 0 {
		t.Errorf("remote list calls = %d, want 0", client.listCalls)
	}
}

func TestResolve_FindsExistingFoldersByNormalizedName(t *testing.T) {
	mappings := newFakeMappings()
	client := newFakeClient()
	// Remote side uses unaccented folder names.
	grade := client.addFolder("root", "lop 6")
	subject := client.addFolder(grade.ID, "toan")

	r := newTestResolver(t, mappings, client)
	got, err := r.Resolve(context.Background(), intPtr(6), intPtr(1), "Lớp 6", "Toán")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != subject.ID {
		t.Errorf("folder id = %q, want %q", got, subject.ID)
	}

	// No folders should have been created.
	if len(client.children["root"]) != 1 || len(client.children[grade.ID]) != 1 {
		t.Errorf("unexpected folder creation: root=%d grade=%d",
			len(client.children["root"]), len(client.children[grade.ID]))
	}

	m, err := mappings.Get(context.Background(), intPtr(6), intPtr(1))
	if err != nil {
		t.Fatalf("mapping not persisted: %v", err)
	}
	if m.RemoteFolderID != subject.ID {
		t.Errorf("mapping folder id = %q, want %q", m.RemoteFolderID, subject.ID)
	}
}

func TestResolve_ContainmentFallback(t *testing.T) {
	mappings := newFakeMappings()
	client := newFakeClient()
	grade := client.addFolder("root", "Tài liệu Lớp 6 (2024)")
	subject := client.addFolder(grade.ID, "Bài tập Toán nâng cao")

	r := newTestResolver(t, mappings, client)
	got, err := r.Resolve(context.Background(), intPtr(6), intPtr(1), "Lớp 6", "Toán")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != subject.ID {
		t.Errorf("folder id = %q, want containment match %q", got, subject.ID)
	}
}

func TestResolve_CreatesMissingFolders(t *testing.T) {
	mappings := newFakeMappings()
	client := newFakeClient()

	r := newTestResolver(t, mappings, client)
	got, err := r.Resolve(context.Background(), intPtr(6), intPtr(1), "6", "Toán")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	roots := client.children["root"]
	if len(roots) != 1 {
		t.Fatalf("grade folders under root = %d, want 1", len(roots))
	}
	// First candidate pattern is the display name.
	if roots[0].Name != "Lớp 6" {
		t.Errorf("grade folder name = %q, want %q", roots[0].Name, "Lớp 6")
	}

	subjects := client.children[roots[0].ID]
	if len(subjects) != 1 {
		t.Fatalf("subject folders = %d, want 1", len(subjects))
	}
	if subjects[0].Name != "Toán" {
		t.Errorf("subject folder name = %q, want %q", subjects[0].Name, "Toán")
	}
	if got != subjects[0].ID {
		t.Errorf("resolved id = %q, want %q", got, subjects[0].ID)
	}

	m, err := mappings.Get(context.Background(), intPtr(6), intPtr(1))
	if err != nil {
		t.Fatalf("mapping not persisted: %v", err)
	}
	if m.PathLabel != "Lớp 6/Toán" {
		t.Errorf("path label = %q, want %q", m.PathLabel, "Lớp 6/Toán")
	}
}

func TestResolve_SecondCallUsesMapping(t *testing.T) {
	mappings := newFakeMappings()
	client := newFakeClient()

	r := newTestResolver(t, mappings, client)
	first, err := r.Resolve(context.Background(), intPtr(7), intPtr(2), "Lớp 7", "Ngữ Văn")
	if err != nil {
		t.Fatalf("first Resolve: %v", err)
	}

	listCallsAfterFirst := client.listCalls
	second, err := r.Resolve(context.Background(), intPtr(7), intPtr(2), "lop 7", "Ngu Van")
	if err != nil {
		t.Fatalf("second Resolve: %v", err)
	}
	if first != second {
		t.Errorf("second resolution = %q, want %q", second, first)
	}
	if client.listCalls != listCallsAfterFirst {
		t.Errorf("second resolution made remote calls: %d -> %d", listCallsAfterFirst, client.listCalls)
	}
}

func TestResolve_ConcurrentFirstResolutionConverges(t *testing.T) {
	mappings := newFakeMappings()
	client := newFakeClient()

	// Separate resolvers: separate caches, same mapping table and remote
	// side, mimicking two racing requests.
	resolvers := []*Resolver{
		newTestResolver(t, mappings, client),
		newTestResolver(t, mappings, client),
	}

	var wg sync.WaitGroup
	for _, r := range resolvers {
		wg.Add(1)
		go func(r *Resolver) {
			defer wg.Done()
			if _, err := r.Resolve(context.Background(), intPtr(6), intPtr(1), "6", "Toán"); err != nil {
				t.Errorf("Resolve: %v", err)
			}
		}(r)
	}
	wg.Wait()

	// The remote side may now hold duplicate folders; the mapping table
	// must still have exactly one row for the pair.
	if got := mappings.count(); got != 1 {
		t.Errorf("mapping rows = %d, want 1", got)
	}
}

func TestResolve_RemoteFailureSurfaces(t *testing.T) {
	mappings := newFakeMappings()
	client := newFakeClient()
	client.fail = true

	r := newTestResolver(t, mappings, client)
	_, err := r.Resolve(context.Background(), intPtr(6), intPtr(1), "Lớp 6", "Toán")
	if !errors.Is(err, domain.ErrRemoteUnavailable) {
		t.Errorf("error = %v, want ErrRemoteUnavailable", err)
	}
}

func TestResolve_EmptySubjectRejected(t *testing.T) {
	r := newTestResolver(t, newFakeMappings(), newFakeClient())
	_, err := r.Resolve(context.Background(), intPtr(6), intPtr(1), "Lớp 6", "  ")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}
