package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/product-comparison-api/internal/database"
	"github.com/product-comparison-api/internal/models"
)

const uniqueViolation = "23505"

const comparisonColumns = `
	id, product_a, product_b, slug, category, language, payload, status,
	reviewer_id, rejection_reason, notification_email, view_count,
	created_at, updated_at, approved_at
`

// comparisonRepo is the concrete implementation of ComparisonRepository
type comparisonRepo struct {
	db *database.DB
}

// NewComparisonRepo creates a new comparison repository
func NewComparisonRepo(db *database.DB) ComparisonRepository {
	return &comparisonRepo{db: db}
}

// Create inserts a new comparison. A slug collision with an existing row
// surfaces as ErrDuplicateSlug.
func (r *comparisonRepo) Create(ctx context.Context, cmp *models.Comparison) error {
	payloadJSON, err := json.Marshal(cmp.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	query := `
		INSERT INTO comparisons (
			id, product_a, product_b, slug, category, language, payload,
			status, notification_email, view_count, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, $10, $10)
	`
	now := time.Now()
	_, err = r.db.ExecContext(ctx, query,
		cmp.ID, cmp.ProductA, cmp.ProductB, cmp.Slug, cmp.Category,
		cmp.Language, payloadJSON, cmp.Status, cmp.NotificationEmail, now,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicateSlug
		}
		return err
	}

	cmp.CreatedAt = now
	cmp.UpdatedAt = now
	return nil
}

// GetByID retrieves a comparison by ID
func (r *comparisonRepo) GetByID(ctx context.Context, id string) (*models.Comparison, error) {
	query := `SELECT ` + comparisonColumns + ` FROM comparisons WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetBySlug retrieves a comparison by its derived slug
func (r *comparisonRepo) GetBySlug(ctx context.Context, slug string) (*models.Comparison, error) {
	query := `SELECT ` + comparisonColumns + ` FROM comparisons WHERE slug = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, slug))
}

// UpdateStatus moves a pending comparison into a terminal state. The WHERE
// clause guards the transition so terminal records can never move again.
func (r *comparisonRepo) UpdateStatus(ctx context.Context, id string, to models.Status, reviewerID, rejectionReason string) (bool, error) {
	query := `
		UPDATE comparisons
		SET status = $2,
		    reviewer_id = $3,
		    rejection_reason = $4,
		    approved_at = CASE WHEN $2 = 'approved' THEN now() ELSE approved_at END,
		    updated_at = now()
		WHERE id = $1 AND status = 'pending'
	`
	result, err := r.db.ExecContext(ctx, query, id, to, reviewerID, rejectionReason)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ListByStatus retrieves comparisons with the given status
func (r *comparisonRepo) ListByStatus(ctx context.Context, status models.Status, sort models.SortOrder, limit int) ([]*models.Comparison, error) {
	order := "DESC"
	if sort == models.SortOldest {
		order = "ASC"
	}
	query := fmt.Sprintf(
		`SELECT %s FROM comparisons WHERE status = $1 ORDER BY created_at %s LIMIT $2`,
		comparisonColumns, order,
	)

	rows, err := r.db.QueryContext(ctx, query, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comparisons []*models.Comparison
	for rows.Next() {
		cmp, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		comparisons = append(comparisons, cmp)
	}
	return comparisons, rows.Err()
}

// IncrementViews atomically bumps view_count for an approved comparison.
// The status filter keeps pending previews out of the public metric.
func (r *comparisonRepo) IncrementViews(ctx context.Context, slug string) (bool, error) {
	query := `
		UPDATE comparisons
		SET view_count = view_count + 1
		WHERE slug = $1 AND status = 'approved'
	`
	result, err := r.db.ExecContext(ctx, query, slug)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// CountByStatus returns the number of comparisons with the given status
func (r *comparisonRepo) CountByStatus(ctx context.Context, status models.Status) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM comparisons WHERE status = $1", status,
	).Scan(&count)
	return count, err
}

// TotalViews returns the view count summed over all comparisons
func (r *comparisonRepo) TotalViews(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(view_count), 0) FROM comparisons",
	).Scan(&total)
	return total, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *comparisonRepo) scanOne(row *sql.Row) (*models.Comparison, error) {
	cmp, err := r.scanRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return cmp, nil
}

func (r *comparisonRepo) scanRow(row rowScanner) (*models.Comparison, error) {
	var cmp models.Comparison
	var payloadJSON []byte
	var reviewerID sql.NullString
	var approvedAt sql.NullTime

	err := row.Scan(
		&cmp.ID, &cmp.ProductA, &cmp.ProductB, &cmp.Slug, &cmp.Category,
		&cmp.Language, &payloadJSON, &cmp.Status, &reviewerID,
		&cmp.RejectionReason, &cmp.NotificationEmail, &cmp.ViewCount,
		&cmp.CreatedAt, &cmp.UpdatedAt, &approvedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(payloadJSON) > 0 {
		var payload models.ComparisonPayload
		if err := json.Unmarshal(payloadJSON, &payload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
		}
		cmp.Payload = &payload
	}
	if reviewerID.Valid {
		cmp.ReviewerID = reviewerID.String
	}
	if approvedAt.Valid {
		cmp.ApprovedAt = &approvedAt.Time
	}

	return &cmp, nil
}
