package repository

import (
	"context"
	"errors"

	"github.com/product-comparison-api/internal/database"
	"github.com/product-comparison-api/internal/models"
)

// ErrDuplicateSlug is returned by Create when a comparison with the same
// slug already exists. The service translates it into the "already pending"
// response path for concurrent submissions of the same product pair.
var ErrDuplicateSlug = errors.New("comparison slug already exists")

// ComparisonRepository defines the interface for comparison data operations
type ComparisonRepository interface {
	Create(ctx context.Context, cmp *models.Comparison) error
	GetByID(ctx context.Context, id string) (*models.Comparison, error)
	GetBySlug(ctx context.Context, slug string) (*models.Comparison, error)
	// UpdateStatus transitions a pending record to a terminal status and
	// reports whether a row was actually updated. Zero rows means the id
	// does not exist or the record already left the pending state.
	UpdateStatus(ctx context.Context, id string, to models.Status, reviewerID, rejectionReason string) (bool, error)
	ListByStatus(ctx context.Context, status models.Status, sort models.SortOrder, limit int) ([]*models.Comparison, error)
	// IncrementViews bumps the view counter for an approved comparison and
	// reports whether a row matched. Non-approved records are left untouched.
	IncrementViews(ctx context.Context, slug string) (bool, error)
	CountByStatus(ctx context.Context, status models.Status) (int, error)
	TotalViews(ctx context.Context) (int64, error)
}

// ReviewerRepository defines the interface for reviewer account operations
type ReviewerRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.Reviewer, error)
	GetByID(ctx context.Context, id string) (*models.Reviewer, error)
	Upsert(ctx context.Context, reviewer *models.Reviewer) error
}

// Repositories holds all repository interfaces
type Repositories struct {
	Comparison ComparisonRepository
	Reviewer   ReviewerRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Comparison: NewComparisonRepo(db),
		Reviewer:   NewReviewerRepo(db),
	}
}
