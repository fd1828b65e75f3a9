package drive

import (
	"context"
	"fmt"
	"io"

	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// childFields limits list responses to what the resolver consumes.
const childFields = "files(id, name, mimeType)"

// GoogleClient implements Client against the Google Drive v3 API using
// a service-account key file.
type GoogleClient struct {
	svc *gdrive.Service
}

// NewGoogleClient builds a Drive client from a service-account
// credentials file. The file path comes from deployment configuration;
// acquiring the key itself is an external concern.
func NewGoogleClient(ctx context.Context, credentialsFile string) (*GoogleClient, error) {
	svc, err := gdrive.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(gdrive.DriveScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &GoogleClient{svc: svc}, nil
}

// ListChildren returns the immediate, non-trashed children of a folder.
func (c *GoogleClient) ListChildren(ctx context.Context, parentID string) ([]Entry, error) {
	query := fmt.Sprintf("'%s' in parents and trashed = false", parentID)

	var entries []Entry
	pageToken := ""
	for {
		call := c.svc.Files.List().
			Q(query).
			Fields(childFields, "nextPageToken").
			PageSize(1000).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, remoteErr("list children", err)
		}

		for _, f := range resp.Files {
			entries = append(entries, Entry{ID: f.Id, Name: f.Name, MimeType: f.MimeType})
		}

		if resp.NextPageToken == "" {
			return entries, nil
		}
		pageToken = resp.NextPageToken
	}
}

// CreateFolder creates a sub-folder with the given display name.
func (c *GoogleClient) CreateFolder(ctx context.Context, parentID, name string) (*Entry, error) {
	folder := &gdrive.File{
		Name:     name,
		MimeType: MimeTypeFolder,
		Parents:  []string{parentID},
	}

	created, err := c.svc.Files.Create(folder).
		Fields("id, name").
		Context(ctx).
		Do()
	if err != nil {
		return nil, remoteErr("create folder", err)
	}

	return &Entry{ID: created.Id, Name: created.Name, MimeType: MimeTypeFolder}, nil
}

// UploadFile streams r into a new file under parentID.
func (c *GoogleClient) UploadFile(ctx context.Context, parentID, name, mimeType string, r io.Reader) (*File, error) {
	meta := &gdrive.File{
		Name:    name,
		Parents: []string{parentID},
	}

	call := c.svc.Files.Create(meta)
	if mimeType != "" {
		call = call.Media(r, googleapi.ContentType(mimeType))
	} else {
		call = call.Media(r)
	}

	created, err := call.
		Fields("id, name, size, webViewLink").
		Context(ctx).
		Do()
	if err != nil {
		return nil, remoteErr("upload file", err)
	}

	return &File{
		ID:      created.Id,
		Name:    created.Name,
		Size:    created.Size,
		WebLink: created.WebViewLink,
	}, nil
}

// DownloadFile returns the media stream for a file id. The caller
// closes the returned reader.
func (c *GoogleClient) DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, error) {
	resp, err := c.svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, remoteErr("download file", err)
	}
	return resp.Body, nil
}

// DeleteFile permanently removes a file.
func (c *GoogleClient) DeleteFile(ctx context.Context, fileID string) error {
	if err := c.svc.Files.Delete(fileID).Context(ctx).Do(); err != nil {
		return remoteErr("delete file", err)
	}
	return nil
}

// GetMetadata fetches name/type/size for a file id.
func (c *GoogleClient) GetMetadata(ctx context.Context, fileID string) (*Metadata, error) {
	f, err := c.svc.Files.Get(fileID).
		Fields("id, name, mimeType, size").
		Context(ctx).
		Do()
	if err != nil {
		return nil, remoteErr("get metadata", err)
	}

	return &Metadata{ID: f.Id, Name: f.Name, MimeType: f.MimeType, Size: f.Size}, nil
}
