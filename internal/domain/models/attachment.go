package models

import (
	"time"
)

// StorageProvider selects the backend holding an attachment's bytes.
// It never changes after the attachment is created; there is no
// in-place migration between backends.
type StorageProvider string

const (
	// StorageLocal stores bytes on the local filesystem; the storage key
	// is a generated on-disk filename.
	StorageLocal StorageProvider = "local"

	// StorageRemote stores bytes in the remote drive provider; the
	// storage key is the provider-assigned file id.
	StorageRemote StorageProvider = "remote"
)

// Attachment is one stored file. The storage key is opaque outside the
// backend that produced it and unique within its provider namespace.
type Attachment struct {
	ID int64 `json:"id" db:"id"`

	// ClassID and SubjectID are NULL for uploads with no taxonomy scope.
	ClassID   *int `json:"class_id" db:"class_id"`
	SubjectID *int `json:"subject_id" db:"subject_id"`

	// Filename is the original user-supplied name. Untrusted; used for
	// display and download headers only, never as a path component.
	Filename string `json:"filename" db:"filename"`

	StorageProvider StorageProvider `json:"storage_provider" db:"storage_provider"`
	StorageKey      string          `json:"-" db:"storage_key"`

	// MimeType and FileSize are advisory metadata, not authoritative for
	// transfer framing.
	MimeType string `json:"mime_type" db:"mime_type"`
	FileSize int64  `json:"file_size" db:"file_size"`

	UploadedBy string `json:"uploaded_by" db:"uploaded_by"`

	// DriveParentFolderID is the remote folder id used at upload time.
	// NULL for local storage.
	DriveParentFolderID *string `json:"drive_parent_folder_id,omitempty" db:"drive_parent_folder_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
