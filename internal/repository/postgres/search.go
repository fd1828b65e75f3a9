package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"hoclieu/internal/domain/models"
	repos "hoclieu/internal/domain/repositories"
)

// snippetOptions bounds the ts_headline excerpt returned with
// full-text matches.
const snippetOptions = "MaxWords=50, MinWords=20, MaxFragments=1"

// PostgresSearchRepository implements the SearchRepository interface.
// Every stage query projects the same column shape (id, title,
// subject_id, url, snippet, score, created_at) so one scan loop serves
// the whole cascade.
type PostgresSearchRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewSearchRepository creates a new search repository
func NewSearchRepository(config *RepositoryConfig) repos.SearchRepository {
	return &PostgresSearchRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// stageSQL returns the page and count queries for a stage. All three
// take the query string as $1; the page query adds LIMIT $2 OFFSET $3.
//
// The full-text stages use the 'simple' text search configuration:
// Postgres has no Vietnamese stemmer, and the fuzzy stage covers
// diacritic and typo variance that exact tokenization misses.
func (r *PostgresSearchRepository) stageSQL(stage models.SearchStage) (page, count string, err error) {
	switch stage {
	case models.StageDocuments:
		page = fmt.Sprintf(`
			SELECT id, title, subject_id, url,
			       ts_headline('simple', content, websearch_to_tsquery('simple', $1),
			                   '%s') AS snippet,
			       ts_rank(search_vector, websearch_to_tsquery('simple', $1)) AS score,
			       created_at
			FROM %s
			WHERE search_vector @@ websearch_to_tsquery('simple', $1)
			ORDER BY score DESC, created_at DESC
			LIMIT $2 OFFSET $3
		`, snippetOptions, r.tables.Documents)
		count = fmt.Sprintf(`
			SELECT COUNT(*)
			FROM %s
			WHERE search_vector @@ websearch_to_tsquery('simple', $1)
		`, r.tables.Documents)

	case models.StageAttachmentTexts:
		page = fmt.Sprintf(`
			SELECT a.id, a.filename AS title, a.subject_id, '' AS url,
			       ts_headline('simple', t.content, websearch_to_tsquery('simple', $1),
			                   '%s') AS snippet,
			       ts_rank(to_tsvector('simple', t.content), websearch_to_tsquery('simple', $1)) AS score,
			       a.created_at
			FROM %s t
			JOIN %s a ON a.id = t.attachment_id
			WHERE to_tsvector('simple', t.content) @@ websearch_to_tsquery('simple', $1)
			ORDER BY score DESC, a.created_at DESC
			LIMIT $2 OFFSET $3
		`, snippetOptions, r.tables.AttachmentTexts, r.tables.Attachments)
		count = fmt.Sprintf(`
			SELECT COUNT(*)
			FROM %s t
			JOIN %s a ON a.id = t.attachment_id
			WHERE to_tsvector('simple', t.content) @@ websearch_to_tsquery('simple', $1)
		`, r.tables.AttachmentTexts, r.tables.Attachments)

	case models.StageFuzzy:
		page = fmt.Sprintf(`
			SELECT id, title, subject_id, url, '' AS snippet,
			       similarity(title, $1) AS score,
			       created_at
			FROM %s
			WHERE title ILIKE '%%' || $1 || '%%' OR similarity(title, $1) >= 0.1
			ORDER BY score DESC NULLS LAST, created_at DESC
			LIMIT $2 OFFSET $3
		`, r.tables.Documents)
		count = fmt.Sprintf(`
			SELECT COUNT(*)
			FROM %s
			WHERE title ILIKE '%%' || $1 || '%%' OR similarity(title, $1) >= 0.1
		`, r.tables.Documents)

	default:
		return "", "", fmt.Errorf("unknown search stage: %q", stage)
	}

	return page, count, nil
}

// SearchStage runs one cascade stage with the request's pagination and
// returns the page plus the stage's total match count.
func (r *PostgresSearchRepository) SearchStage(ctx context.Context, stage models.SearchStage, opts *models.SearchOptions) ([]models.SearchResult, int, error) {
	pageQuery, countQuery, err := r.stageSQL(stage)
	if err != nil {
		return nil, 0, err
	}

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, pageQuery, opts.Query, opts.PerPage, opts.Offset())
	if err != nil {
		// Without pg_trgm the fuzzy stage cannot run; report zero
		// matches rather than failing the whole cascade.
		if stage == models.StageFuzzy && IsPgUndefinedFunctionError(err) {
			r.logger.Warn("pg_trgm extension missing, fuzzy stage disabled")
			return []models.SearchResult{}, 0, nil
		}
		return nil, 0, fmt.Errorf("search stage %s: %w", stage, err)
	}
	defer rows.Close()

	var results []models.SearchResult
	for rows.Next() {
		var res models.SearchResult
		err := rows.Scan(
			&res.ID,
			&res.Title,
			&res.SubjectID,
			&res.URL,
			&res.ContentSnippet,
			&res.Score,
			&res.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan search result: %w", err)
		}
		res.Source = stage
		results = append(results, res)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate search results: %w", err)
	}

	// Return empty slice instead of nil
	if results == nil {
		results = []models.SearchResult{}
	}

	var total int
	if err := executor.QueryRow(ctx, countQuery, opts.Query).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count stage %s matches: %w", stage, err)
	}

	return results, total, nil
}

// SuggestPrefix returns up to limit titles starting with the prefix,
// newest first.
func (r *PostgresSearchRepository) SuggestPrefix(ctx context.Context, prefix string, limit int) ([]models.Suggestion, error) {
	query := fmt.Sprintf(`
		SELECT id, title
		FROM %s
		WHERE title ILIKE $1 || '%%'
		ORDER BY created_at DESC
		LIMIT $2
	`, r.tables.Documents)

	return r.querySuggestions(ctx, query, prefix, limit)
}

// SuggestSimilar returns up to limit titles by trigram similarity.
func (r *PostgresSearchRepository) SuggestSimilar(ctx context.Context, q string, limit int) ([]models.Suggestion, error) {
	query := fmt.Sprintf(`
		SELECT id, title
		FROM %s
		WHERE similarity(title, $1) >= 0.1
		ORDER BY similarity(title, $1) DESC, created_at DESC
		LIMIT $2
	`, r.tables.Documents)

	suggestions, err := r.querySuggestions(ctx, query, q, limit)
	if err != nil && IsPgUndefinedFunctionError(err) {
		r.logger.Warn("pg_trgm extension missing, similarity suggestions disabled")
		return []models.Suggestion{}, nil
	}
	return suggestions, err
}

func (r *PostgresSearchRepository) querySuggestions(ctx context.Context, query, arg string, limit int) ([]models.Suggestion, error) {
	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, arg, limit)
	if err != nil {
		return nil, fmt.Errorf("suggest: %w", err)
	}
	defer rows.Close()

	var suggestions []models.Suggestion
	for rows.Next() {
		var s models.Suggestion
		if err := rows.Scan(&s.ID, &s.Title); err != nil {
			return nil, fmt.Errorf("scan suggestion: %w", err)
		}
		suggestions = append(suggestions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate suggestions: %w", err)
	}

	if suggestions == nil {
		suggestions = []models.Suggestion{}
	}

	return suggestions, nil
}

// Reindex recomputes the precomputed search vector for every document
// row. Full-table; administrative use only.
func (r *PostgresSearchRepository) Reindex(ctx context.Context) (int64, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET search_vector = to_tsvector('simple',
			coalesce(title, '') || ' ' || coalesce(content, ''))
	`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("reindex documents: %w", err)
	}

	r.logger.Info("search vectors reindexed", "rows", tag.RowsAffected())
	return tag.RowsAffected(), nil
}
