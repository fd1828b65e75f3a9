package models

import (
	"fmt"
	"time"
)

// SearchStage identifies one attempt in the search cascade. Scores are
// stage-specific ranking values and are not comparable across stages.
type SearchStage string

const (
	// StageDocuments is rank-ordered full-text match against the
	// documents table's precomputed search vector.
	StageDocuments SearchStage = "documents"

	// StageAttachmentTexts applies the same mechanism to text extracted
	// from binary attachments.
	StageAttachmentTexts SearchStage = "attachment_texts"

	// StageFuzzy is substring containment OR trigram similarity against
	// titles only; the most tolerant, least precise stage.
	StageFuzzy SearchStage = "fuzzy"
)

// Default search configuration values
const (
	DefaultSearchPerPage = 20
	MaxSearchPerPage     = 100
	SuggestLimit         = 8
)

// SearchOptions configures one cascade request.
type SearchOptions struct {
	// Query is the search string (required).
	Query string

	// Page is 1-based; PerPage caps results per page.
	Page    int
	PerPage int

	// Stage optionally pins the cascade to a single stage. Page 2 of a
	// result set is only stable if the caller passes back the stage that
	// produced page 1; with an empty Stage the cascade decision is
	// re-derived per request.
	Stage SearchStage
}

// ApplyDefaults fills in default values for unset fields
func (opts *SearchOptions) ApplyDefaults() {
	if opts.Page <= 0 {
		opts.Page = 1
	}
	if opts.PerPage <= 0 {
		opts.PerPage = DefaultSearchPerPage
	}
	if opts.PerPage > MaxSearchPerPage {
		opts.PerPage = MaxSearchPerPage
	}
}

// Validate checks that required fields are set and values are reasonable
func (opts *SearchOptions) Validate() error {
	if opts.Query == "" {
		return fmt.Errorf("search query cannot be empty")
	}
	if opts.Page < 1 {
		return fmt.Errorf("page must be >= 1")
	}
	if opts.PerPage < 1 || opts.PerPage > MaxSearchPerPage {
		return fmt.Errorf("per_page must be between 1 and %d", MaxSearchPerPage)
	}
	switch opts.Stage {
	case "", StageDocuments, StageAttachmentTexts, StageFuzzy:
	default:
		return fmt.Errorf("unknown search stage: %q", opts.Stage)
	}
	return nil
}

// Offset converts page/per-page to a SQL offset.
func (opts *SearchOptions) Offset() int {
	return (opts.Page - 1) * opts.PerPage
}

// SearchResult is the normalized projection shared by all stages.
// Transient; never persisted.
type SearchResult struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	SubjectID *int   `json:"subject_id"`
	URL       string `json:"url,omitempty"`

	// ContentSnippet is a bounded-length excerpt around the match.
	ContentSnippet string `json:"content_snippet,omitempty"`

	// Source names the stage that produced this row.
	Source SearchStage `json:"source"`

	// Score is the stage-specific ranking value (ts_rank for the
	// full-text stages, trigram similarity for the fuzzy stage).
	Score float64 `json:"score"`

	CreatedAt time.Time `json:"created_at"`
}

// SearchResults is the full cascade response. A query with no matches
// in any stage yields Total == 0 and an empty Results slice, which is
// distinct from a stage-level failure (an error return).
type SearchResults struct {
	Total   int            `json:"total"`
	Results []SearchResult `json:"results"`

	// Stage is the stage that produced the results; empty when no stage
	// matched. Callers needing stable pagination pass it back via
	// SearchOptions.Stage.
	Stage   SearchStage `json:"stage,omitempty"`
	Page    int         `json:"page"`
	PerPage int         `json:"per_page"`
}

// Suggestion is one typeahead item.
type Suggestion struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}
