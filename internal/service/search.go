package service

import (
	"context"
	"log/slog"
	"strings"

	"hoclieu/internal/domain"
	"hoclieu/internal/domain/models"
	"hoclieu/internal/domain/repositories"
)

// cascadeStages is the ordered cascade policy: exact full-text over
// document content, then full-text over extracted attachment text, then
// fuzzy title matching. The first stage with a non-zero match count
// wins; later stages are never consulted.
var cascadeStages = []models.SearchStage{
	models.StageDocuments,
	models.StageAttachmentTexts,
	models.StageFuzzy,
}

// SearchService runs the tiered search cascade and suggestions.
type SearchService struct {
	repo   repositories.SearchRepository
	logger *slog.Logger
}

// NewSearchService creates a new search service
func NewSearchService(repo repositories.SearchRepository, logger *slog.Logger) *SearchService {
	return &SearchService{repo: repo, logger: logger}
}

// Search executes the cascade. The stage decision is re-derived per
// request; page 2 re-runs whichever stage has matches at that moment,
// so callers wanting stable pagination pass back the stage that
// produced page 1 via opts.Stage. A query that matches no stage yields
// an explicit empty result, not an error.
func (s *SearchService) Search(ctx context.Context, opts *models.SearchOptions) (*models.SearchResults, error) {
	opts.Query = strings.TrimSpace(opts.Query)
	opts.ApplyDefaults()
	if err := opts.Validate(); err != nil {
		return nil, &domain.InvalidInputError{Message: err.Error()}
	}

	stages := cascadeStages
	if opts.Stage != "" {
		stages = []models.SearchStage{opts.Stage}
	}

	for _, stage := range stages {
		results, total, err := s.repo.SearchStage(ctx, stage, opts)
		if err != nil {
			return nil, err
		}
		if total == 0 {
			continue
		}

		s.logger.Debug("search stage matched",
			"stage", stage,
			"total", total,
			"page", opts.Page,
		)

		return &models.SearchResults{
			Total:   total,
			Results: results,
			Stage:   stage,
			Page:    opts.Page,
			PerPage: opts.PerPage,
		}, nil
	}

	return &models.SearchResults{
		Total:   0,
		Results: []models.SearchResult{},
		Page:    opts.Page,
		PerPage: opts.PerPage,
	}, nil
}

// Suggest returns up to eight typeahead items: prefix matches first,
// trigram similarity only when the prefix match comes back empty.
func (s *SearchService) Suggest(ctx context.Context, queryPrefix string) ([]models.Suggestion, error) {
	queryPrefix = strings.TrimSpace(queryPrefix)
	if queryPrefix == "" {
		return nil, &domain.InvalidInputError{Message: "suggestion prefix cannot be empty"}
	}

	suggestions, err := s.repo.SuggestPrefix(ctx, queryPrefix, models.SuggestLimit)
	if err != nil {
		return nil, err
	}
	if len(suggestions) > 0 {
		return suggestions, nil
	}

	return s.repo.SuggestSimilar(ctx, queryPrefix, models.SuggestLimit)
}

// Reindex recomputes the document search vectors. Administrative; not
// on any request path.
func (s *SearchService) Reindex(ctx context.Context) (int64, error) {
	return s.repo.Reindex(ctx)
}
