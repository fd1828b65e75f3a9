package repositories

import (
	"context"

	"hoclieu/internal/domain/models"
)

// SearchRepository runs individual cascade stages against the
// relational store. The cascade policy itself (stage order, first
// non-empty wins) lives in the search service; each method here is one
// self-contained stage query.
type SearchRepository interface {
	// SearchStage runs one stage with the given pagination and returns
	// the page of results plus the total match count for that stage.
	SearchStage(ctx context.Context, stage models.SearchStage, opts *models.SearchOptions) ([]models.SearchResult, int, error)

	// SuggestPrefix returns up to limit titles starting with the prefix,
	// newest first.
	SuggestPrefix(ctx context.Context, prefix string, limit int) ([]models.Suggestion, error)

	// SuggestSimilar returns up to limit titles by trigram similarity,
	// most similar first.
	SuggestSimilar(ctx context.Context, query string, limit int) ([]models.Suggestion, error)

	// Reindex recomputes the documents table's search vector for all
	// rows and reports how many were updated. Full-table, administrative.
	Reindex(ctx context.Context) (int64, error)
}
