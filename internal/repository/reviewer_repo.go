package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/product-comparison-api/internal/database"
	"github.com/product-comparison-api/internal/models"
)

// reviewerRepo is the concrete implementation of ReviewerRepository
type reviewerRepo struct {
	db *database.DB
}

// NewReviewerRepo creates a new reviewer repository
func NewReviewerRepo(db *database.DB) ReviewerRepository {
	return &reviewerRepo{db: db}
}

// GetByEmail retrieves a reviewer by email (case-insensitive)
func (r *reviewerRepo) GetByEmail(ctx context.Context, email string) (*models.Reviewer, error) {
	query := `
		SELECT id, email, password_hash, created_at
		FROM reviewers WHERE lower(email) = lower($1)
	`

	var reviewer models.Reviewer
	err := r.db.QueryRowContext(ctx, query, strings.TrimSpace(email)).Scan(
		&reviewer.ID, &reviewer.Email, &reviewer.PasswordHash, &reviewer.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reviewer, nil
}

// GetByID retrieves a reviewer by ID
func (r *reviewerRepo) GetByID(ctx context.Context, id string) (*models.Reviewer, error) {
	query := `SELECT id, email, password_hash, created_at FROM reviewers WHERE id = $1`

	var reviewer models.Reviewer
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&reviewer.ID, &reviewer.Email, &reviewer.PasswordHash, &reviewer.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reviewer, nil
}

// Upsert inserts the reviewer or refreshes the password hash of an existing
// account with the same email. Used for the bootstrap admin at startup.
func (r *reviewerRepo) Upsert(ctx context.Context, reviewer *models.Reviewer) error {
	query := `
		INSERT INTO reviewers (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (lower(email))
		DO UPDATE SET password_hash = EXCLUDED.password_hash
	`
	_, err := r.db.ExecContext(ctx, query,
		reviewer.ID, strings.TrimSpace(reviewer.Email), reviewer.PasswordHash, time.Now(),
	)
	return err
}
