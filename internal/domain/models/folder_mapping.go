package models

// FolderMapping is the persisted resolution of a (class, subject) pair
// to a remote drive folder. At most one mapping exists per pair;
// re-resolution upserts rather than duplicates, and this subsystem
// never deletes a mapping.
type FolderMapping struct {
	// ClassID and SubjectID may be NULL for pairs that exist only as
	// labels, with no relational taxonomy rows.
	ClassID   *int `json:"class_id" db:"class_id"`
	SubjectID *int `json:"subject_id" db:"subject_id"`

	// RemoteFolderID is the opaque folder id assigned by the remote
	// provider. Overwritten if a later resolution finds a different id.
	RemoteFolderID string `json:"drive_folder_id" db:"drive_folder_id"`

	// PathLabel is a human-readable "{className}/{subjectName}" string,
	// for diagnostics only.
	PathLabel string `json:"path" db:"path"`
}
