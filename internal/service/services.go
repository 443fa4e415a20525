package service

import (
	"context"

	"github.com/product-comparison-api/internal/config"
	"github.com/product-comparison-api/internal/generator"
	"github.com/product-comparison-api/internal/models"
	"github.com/product-comparison-api/internal/ratelimit"
	"github.com/product-comparison-api/internal/repository"
	"github.com/product-comparison-api/internal/validation"
	"github.com/rs/zerolog"
)

// ComparisonService drives the submission, deduplication and moderation
// lifecycle of comparisons
type ComparisonService interface {
	Submit(ctx context.Context, req *models.SubmitRequest) (*models.SubmitResult, error)
	GetBySlug(ctx context.Context, slugKey string) (*models.Comparison, error)
	Approve(ctx context.Context, id, reviewerID string) (*models.Comparison, error)
	Reject(ctx context.Context, id, reviewerID, reason string) (*models.Comparison, error)
	ListPending(ctx context.Context, sort models.SortOrder) ([]*models.Comparison, error)
	RecordView(ctx context.Context, slugKey string) error
	Stats(ctx context.Context) (*models.Stats, error)
}

// AuthService manages admin reviewer sessions
type AuthService interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResult, error)
	VerifyToken(token string) (reviewerID string, err error)
	EnsureAdmin(ctx context.Context) error
}

// Services holds all service interfaces
type Services struct {
	Comparison ComparisonService
	Auth       AuthService
}

// Limiters groups the two throttles the lifecycle needs
type Limiters struct {
	Submit ratelimit.Limiter
	Login  ratelimit.Limiter
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, gen generator.Generator, limiters Limiters, cfg *config.Config, log zerolog.Logger) *Services {
	return &Services{
		Comparison: newComparisonService(repos.Comparison, gen, limiters.Submit, validation.NewValidator(), log),
		Auth:       newAuthService(repos.Reviewer, limiters.Login, &cfg.Auth, log),
	}
}
