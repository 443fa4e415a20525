package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/product-comparison-api/internal/generator"
	"github.com/product-comparison-api/internal/models"
	"github.com/product-comparison-api/internal/ratelimit"
	"github.com/product-comparison-api/internal/repository"
	"github.com/product-comparison-api/internal/slug"
	"github.com/product-comparison-api/internal/validation"
	"github.com/rs/zerolog"
)

const pendingListLimit = 200

// comparisonService is the concrete implementation of ComparisonService
type comparisonService struct {
	repo      repository.ComparisonRepository
	generator generator.Generator
	limiter   ratelimit.Limiter
	validator *validation.Validator
	log       zerolog.Logger
}

func newComparisonService(repo repository.ComparisonRepository, gen generator.Generator, limiter ratelimit.Limiter, validator *validation.Validator, log zerolog.Logger) ComparisonService {
	return &comparisonService{
		repo:      repo,
		generator: gen,
		limiter:   limiter,
		validator: validator,
		log:       log.With().Str("service", "comparison").Logger(),
	}
}

// Submit runs the submission path: validate, rate-limit, dedup against the
// store, and only then call the generator. The expensive generator call
// never happens for input that fails validation or for a product pair that
// already has a record.
func (s *comparisonService) Submit(ctx context.Context, req *models.SubmitRequest) (*models.SubmitResult, error) {
	if vErr := s.validator.ValidateSubmission(req); vErr != nil {
		return nil, vErr
	}

	if s.limiter != nil && req.ClientKey != "" {
		ok, retryAfter, err := s.limiter.Allow(ctx, req.ClientKey)
		if err != nil {
			// A broken limiter backend must not take submissions down.
			s.log.Error().Err(err).Msg("Rate limiter unavailable, allowing request")
		} else if !ok {
			return nil, &models.RateLimitError{RetryAfter: retryAfter}
		}
	}

	key := slug.DeriveKey(req.ProductA, req.ProductB)

	existing, err := s.repo.GetBySlug(ctx, key)
	if err != nil {
		return nil, &models.PersistenceError{Op: "lookup", Cause: err}
	}
	if existing != nil {
		return s.existingResult(existing), nil
	}

	payload, err := s.generator.Generate(ctx, req.ProductA, req.ProductB, req.Category, req.Language)
	if err != nil {
		s.log.Error().Err(err).Str("slug", key).Msg("Comparison generation failed")
		return nil, &models.GenerationError{Cause: err}
	}

	cmp := &models.Comparison{
		ID:                uuid.New().String(),
		ProductA:          req.ProductA,
		ProductB:          req.ProductB,
		Slug:              key,
		Category:          firstNonEmpty(req.Category, payload.Category),
		Language:          firstNonEmpty(req.Language, "en"),
		Payload:           payload,
		Status:            models.StatusPending,
		NotificationEmail: req.Email,
	}

	if err := s.repo.Create(ctx, cmp); err != nil {
		if errors.Is(err, repository.ErrDuplicateSlug) {
			// A concurrent submission for the same pair won the insert;
			// fold into the normal dedup path.
			winner, lookupErr := s.repo.GetBySlug(ctx, key)
			if lookupErr == nil && winner != nil {
				return s.existingResult(winner), nil
			}
		}
		// The generated content is still returned to the caller, but the
		// record never entered moderation. Logged as an error because
		// nothing downstream will ever see this comparison.
		s.log.Error().Err(err).Str("slug", key).Msg("Failed to persist generated comparison")
		return &models.SubmitResult{
			Status:      models.StatusPending,
			Slug:        key,
			Payload:     payload,
			Created:     true,
			PendingLost: true,
		}, nil
	}

	s.log.Info().
		Str("slug", key).
		Str("id", cmp.ID).
		Str("language", cmp.Language).
		Msg("Comparison submitted for moderation")

	return &models.SubmitResult{Status: models.StatusPending, Slug: key, Created: true}, nil
}

// existingResult maps an existing record to the submission response without
// touching the generator. Only approved records carry their content; pending
// and rejected pairs report the status alone.
func (s *comparisonService) existingResult(cmp *models.Comparison) *models.SubmitResult {
	result := &models.SubmitResult{Status: cmp.Status, Slug: cmp.Slug}
	if cmp.Status == models.StatusApproved {
		result.Payload = cmp.Payload
	}
	return result
}

// GetBySlug returns a comparison for public or preview reads
func (s *comparisonService) GetBySlug(ctx context.Context, slugKey string) (*models.Comparison, error) {
	cmp, err := s.repo.GetBySlug(ctx, slugKey)
	if err != nil {
		return nil, &models.PersistenceError{Op: "lookup", Cause: err}
	}
	if cmp == nil {
		return nil, &models.NotFoundError{ID: slugKey}
	}
	return cmp, nil
}

// Approve transitions a pending comparison to approved
func (s *comparisonService) Approve(ctx context.Context, id, reviewerID string) (*models.Comparison, error) {
	return s.transition(ctx, id, reviewerID, models.StatusApproved, "")
}

// Reject transitions a pending comparison to rejected with a reason
func (s *comparisonService) Reject(ctx context.Context, id, reviewerID, reason string) (*models.Comparison, error) {
	normalized, vErr := validation.ValidateRejectionReason(reason)
	if vErr != nil {
		return nil, vErr
	}
	return s.transition(ctx, id, reviewerID, models.StatusRejected, normalized)
}

func (s *comparisonService) transition(ctx context.Context, id, reviewerID string, to models.Status, reason string) (*models.Comparison, error) {
	if reviewerID == "" {
		return nil, &models.AuthorizationError{}
	}

	updated, err := s.repo.UpdateStatus(ctx, id, to, reviewerID, reason)
	if err != nil {
		return nil, &models.PersistenceError{Op: "update", Cause: err}
	}
	if !updated {
		// Missing id and already-terminal record are indistinguishable on
		// purpose: terminal states never transition again.
		return nil, &models.NotFoundError{ID: id}
	}

	cmp, err := s.repo.GetByID(ctx, id)
	if err != nil || cmp == nil {
		return nil, &models.PersistenceError{Op: "lookup", Cause: err}
	}

	s.log.Info().
		Str("id", id).
		Str("reviewer_id", reviewerID).
		Str("status", string(to)).
		Msg("Comparison moderated")

	return cmp, nil
}

// ListPending returns the moderation queue
func (s *comparisonService) ListPending(ctx context.Context, sort models.SortOrder) ([]*models.Comparison, error) {
	if sort != models.SortOldest {
		sort = models.SortNewest
	}
	comparisons, err := s.repo.ListByStatus(ctx, models.StatusPending, sort, pendingListLimit)
	if err != nil {
		return nil, &models.PersistenceError{Op: "list", Cause: err}
	}
	return comparisons, nil
}

// RecordView increments the view counter for an approved comparison.
// Pending previews and unknown slugs are a silent no-op.
func (s *comparisonService) RecordView(ctx context.Context, slugKey string) error {
	counted, err := s.repo.IncrementViews(ctx, slugKey)
	if err != nil {
		return &models.PersistenceError{Op: "increment", Cause: err}
	}
	if !counted {
		s.log.Debug().Str("slug", slugKey).Msg("View not counted (not approved)")
	}
	return nil
}

// Stats summarizes the moderation queue
func (s *comparisonService) Stats(ctx context.Context) (*models.Stats, error) {
	stats := &models.Stats{}
	var err error
	if stats.Pending, err = s.repo.CountByStatus(ctx, models.StatusPending); err != nil {
		return nil, &models.PersistenceError{Op: "count", Cause: err}
	}
	if stats.Approved, err = s.repo.CountByStatus(ctx, models.StatusApproved); err != nil {
		return nil, &models.PersistenceError{Op: "count", Cause: err}
	}
	if stats.Rejected, err = s.repo.CountByStatus(ctx, models.StatusRejected); err != nil {
		return nil, &models.PersistenceError{Op: "count", Cause: err}
	}
	if stats.TotalViews, err = s.repo.TotalViews(ctx); err != nil {
		return nil, &models.PersistenceError{Op: "count", Cause: err}
	}
	return stats, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
