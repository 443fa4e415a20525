package mocks

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/product-comparison-api/internal/models"
	"github.com/product-comparison-api/internal/repository"
)

// MockComparisonRepository is a mock implementation of ComparisonRepository
type MockComparisonRepository struct {
	Comparisons map[string]*models.Comparison // by id
	BySlug      map[string]*models.Comparison

	CreateError   error
	LookupError   error
	UpdateError   error
	CreateCalls   int
	GetBySlugFunc func(ctx context.Context, slug string) (*models.Comparison, error)
}

func NewMockComparisonRepository() *MockComparisonRepository {
	return &MockComparisonRepository{
		Comparisons: make(map[string]*models.Comparison),
		BySlug:      make(map[string]*models.Comparison),
	}
}

func (m *MockComparisonRepository) Create(ctx context.Context, cmp *models.Comparison) error {
	m.CreateCalls++
	if m.CreateError != nil {
		return m.CreateError
	}
	if _, exists := m.BySlug[cmp.Slug]; exists {
		return repository.ErrDuplicateSlug
	}
	now := time.Now()
	cmp.CreatedAt = now
	cmp.UpdatedAt = now
	m.Comparisons[cmp.ID] = cmp
	m.BySlug[cmp.Slug] = cmp
	return nil
}

func (m *MockComparisonRepository) GetByID(ctx context.Context, id string) (*models.Comparison, error) {
	if m.LookupError != nil {
		return nil, m.LookupError
	}
	return m.Comparisons[id], nil
}

func (m *MockComparisonRepository) GetBySlug(ctx context.Context, slug string) (*models.Comparison, error) {
	if m.GetBySlugFunc != nil {
		return m.GetBySlugFunc(ctx, slug)
	}
	if m.LookupError != nil {
		return nil, m.LookupError
	}
	return m.BySlug[slug], nil
}

func (m *MockComparisonRepository) UpdateStatus(ctx context.Context, id string, to models.Status, reviewerID, rejectionReason string) (bool, error) {
	if m.UpdateError != nil {
		return false, m.UpdateError
	}
	cmp, ok := m.Comparisons[id]
	if !ok || cmp.Status != models.StatusPending {
		return false, nil
	}
	cmp.Status = to
	cmp.ReviewerID = reviewerID
	cmp.RejectionReason = rejectionReason
	cmp.UpdatedAt = time.Now()
	if to == models.StatusApproved {
		now := time.Now()
		cmp.ApprovedAt = &now
	}
	return true, nil
}

func (m *MockComparisonRepository) ListByStatus(ctx context.Context, status models.Status, order models.SortOrder, limit int) ([]*models.Comparison, error) {
	if m.LookupError != nil {
		return nil, m.LookupError
	}
	var result []*models.Comparison
	for _, cmp := range m.Comparisons {
		if cmp.Status == status {
			result = append(result, cmp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if order == models.SortOldest {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockComparisonRepository) IncrementViews(ctx context.Context, slug string) (bool, error) {
	if m.UpdateError != nil {
		return false, m.UpdateError
	}
	cmp, ok := m.BySlug[slug]
	if !ok || cmp.Status != models.StatusApproved {
		return false, nil
	}
	cmp.ViewCount++
	return true, nil
}

func (m *MockComparisonRepository) CountByStatus(ctx context.Context, status models.Status) (int, error) {
	count := 0
	for _, cmp := range m.Comparisons {
		if cmp.Status == status {
			count++
		}
	}
	return count, nil
}

func (m *MockComparisonRepository) TotalViews(ctx context.Context) (int64, error) {
	var total int64
	for _, cmp := range m.Comparisons {
		total += cmp.ViewCount
	}
	return total, nil
}

// MockReviewerRepository is a mock implementation of ReviewerRepository
type MockReviewerRepository struct {
	Reviewers map[string]*models.Reviewer // by lowercase email
}

func NewMockReviewerRepository() *MockReviewerRepository {
	return &MockReviewerRepository{
		Reviewers: make(map[string]*models.Reviewer),
	}
}

func (m *MockReviewerRepository) GetByEmail(ctx context.Context, email string) (*models.Reviewer, error) {
	return m.Reviewers[strings.ToLower(strings.TrimSpace(email))], nil
}

func (m *MockReviewerRepository) GetByID(ctx context.Context, id string) (*models.Reviewer, error) {
	for _, r := range m.Reviewers {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (m *MockReviewerRepository) Upsert(ctx context.Context, reviewer *models.Reviewer) error {
	m.Reviewers[strings.ToLower(strings.TrimSpace(reviewer.Email))] = reviewer
	return nil
}
