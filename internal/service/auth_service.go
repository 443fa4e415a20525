package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/product-comparison-api/internal/config"
	"github.com/product-comparison-api/internal/models"
	"github.com/product-comparison-api/internal/ratelimit"
	"github.com/product-comparison-api/internal/repository"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// authService is the concrete implementation of AuthService
type authService struct {
	repo    repository.ReviewerRepository
	limiter ratelimit.Limiter
	cfg     *config.AuthConfig
	log     zerolog.Logger
}

func newAuthService(repo repository.ReviewerRepository, limiter ratelimit.Limiter, cfg *config.AuthConfig, log zerolog.Logger) AuthService {
	return &authService{
		repo:    repo,
		limiter: limiter,
		cfg:     cfg,
		log:     log.With().Str("service", "auth").Logger(),
	}
}

// Login verifies admin credentials and issues a session token. Failed
// attempts are throttled per email; a successful login clears the counter
// immediately.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, &models.ValidationError{Message: "email and password are required"}
	}

	if s.limiter != nil {
		ok, retryAfter, err := s.limiter.Allow(ctx, email)
		if err != nil {
			s.log.Error().Err(err).Msg("Login limiter unavailable, allowing attempt")
		} else if !ok {
			return nil, &models.RateLimitError{RetryAfter: retryAfter}
		}
	}

	reviewer, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, &models.PersistenceError{Op: "lookup", Cause: err}
	}
	if reviewer == nil {
		// Same response as a bad password so accounts cannot be enumerated.
		return nil, &models.AuthorizationError{}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(reviewer.PasswordHash), []byte(req.Password)); err != nil {
		s.log.Warn().Str("email", email).Msg("Failed admin login attempt")
		return nil, &models.AuthorizationError{}
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, email); err != nil {
			s.log.Error().Err(err).Msg("Failed to reset login limiter")
		}
	}

	expiresAt := time.Now().Add(s.cfg.TokenTTL)
	claims := jwt.RegisteredClaims{
		Subject:   reviewer.ID,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	s.log.Info().Str("reviewer_id", reviewer.ID).Msg("Admin logged in")

	return &models.LoginResult{Token: token, ExpiresAt: expiresAt}, nil
}

// VerifyToken validates a session token and returns the reviewer id
func (s *authService) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return "", &models.AuthorizationError{}
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", &models.AuthorizationError{}
	}
	return claims.Subject, nil
}

// EnsureAdmin creates or refreshes the bootstrap admin account from
// configuration. A deployment without ADMIN_EMAIL runs with whatever
// reviewers already exist.
func (s *authService) EnsureAdmin(ctx context.Context) error {
	if s.cfg.AdminEmail == "" || s.cfg.AdminPassword == "" {
		s.log.Warn().Msg("No bootstrap admin configured")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	existing, err := s.repo.GetByEmail(ctx, s.cfg.AdminEmail)
	if err != nil {
		return fmt.Errorf("failed to check admin account: %w", err)
	}

	reviewer := &models.Reviewer{
		ID:           uuid.New().String(),
		Email:        s.cfg.AdminEmail,
		PasswordHash: string(hash),
	}
	if existing != nil {
		reviewer.ID = existing.ID
	}

	if err := s.repo.Upsert(ctx, reviewer); err != nil {
		return fmt.Errorf("failed to upsert admin account: %w", err)
	}

	s.log.Info().Str("email", s.cfg.AdminEmail).Msg("Bootstrap admin ensured")
	return nil
}
