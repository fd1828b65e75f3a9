package config

const (
	// MaxFilenameLength is the maximum length for uploaded filenames.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255) and stay within
	// common filesystem limits.
	MaxFilenameLength = 255

	// DefaultMaxUploadBytes caps upload request bodies when
	// MAX_UPLOAD_BYTES is not configured. 25 MB covers scanned exam
	// PDFs and slide decks without inviting abuse.
	DefaultMaxUploadBytes = 25 << 20

	// MaxLogFiles is how many timestamped server log files are kept
	// before the oldest are removed.
	MaxLogFiles = 10
)
