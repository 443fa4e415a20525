package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/product-comparison-api/internal/config"
	"github.com/product-comparison-api/internal/mocks"
	"github.com/product-comparison-api/internal/models"
	"github.com/product-comparison-api/internal/ratelimit"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuthService(repo *mocks.MockReviewerRepository, limiter ratelimit.Limiter) AuthService {
	cfg := &config.AuthConfig{
		JWTSecret: "test-secret",
		TokenTTL:  time.Hour,
	}
	return newAuthService(repo, limiter, cfg, zerolog.Nop())
}

func seedReviewer(t *testing.T, repo *mocks.MockReviewerRepository, email, password string) *models.Reviewer {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt failed: %v", err)
	}
	reviewer := &models.Reviewer{
		ID:           "reviewer-1",
		Email:        email,
		PasswordHash: string(hash),
	}
	repo.Upsert(context.Background(), reviewer)
	return reviewer
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	repo := mocks.NewMockReviewerRepository()
	seedReviewer(t, repo, "admin@example.com", "correct horse")
	svc := newTestAuthService(repo, nil)

	result, err := svc.Login(context.Background(), &models.LoginRequest{
		Email:    "Admin@Example.com",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if result.Token == "" {
		t.Fatal("token should not be empty")
	}

	reviewerID, err := svc.VerifyToken(result.Token)
	if err != nil {
		t.Fatalf("VerifyToken failed: %v", err)
	}
	if reviewerID != "reviewer-1" {
		t.Errorf("reviewer id = %q, want reviewer-1", reviewerID)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	repo := mocks.NewMockReviewerRepository()
	seedReviewer(t, repo, "admin@example.com", "correct horse")
	svc := newTestAuthService(repo, nil)

	_, err := svc.Login(context.Background(), &models.LoginRequest{
		Email:    "admin@example.com",
		Password: "battery staple",
	})

	var authErr *models.AuthorizationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthorizationError, got %v", err)
	}
}

func TestLoginUnknownAccountLooksLikeBadPassword(t *testing.T) {
	repo := mocks.NewMockReviewerRepository()
	svc := newTestAuthService(repo, nil)

	_, err := svc.Login(context.Background(), &models.LoginRequest{
		Email:    "ghost@example.com",
		Password: "anything",
	})

	var authErr *models.AuthorizationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthorizationError, got %v", err)
	}
}

func TestLoginThrottledAfterFailedAttempts(t *testing.T) {
	repo := mocks.NewMockReviewerRepository()
	seedReviewer(t, repo, "admin@example.com", "correct horse")
	limiter := ratelimit.NewMemoryLimiter(3, time.Hour)
	svc := newTestAuthService(repo, limiter)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		svc.Login(ctx, &models.LoginRequest{Email: "admin@example.com", Password: "wrong"})
	}

	// Fourth attempt is throttled even with the right password
	_, err := svc.Login(ctx, &models.LoginRequest{Email: "admin@example.com", Password: "correct horse"})
	var rlErr *models.RateLimitError
	if !errors.As(err, &rlErr) {
		t.Fatalf("expected RateLimitError, got %v", err)
	}
}

func TestLoginSuccessResetsFailedAttempts(t *testing.T) {
	repo := mocks.NewMockReviewerRepository()
	seedReviewer(t, repo, "admin@example.com", "correct horse")
	limiter := ratelimit.NewMemoryLimiter(3, time.Hour)
	svc := newTestAuthService(repo, limiter)
	ctx := context.Background()

	// Two failures, then a success: the counter must clear
	svc.Login(ctx, &models.LoginRequest{Email: "admin@example.com", Password: "wrong"})
	svc.Login(ctx, &models.LoginRequest{Email: "admin@example.com", Password: "wrong"})
	if _, err := svc.Login(ctx, &models.LoginRequest{Email: "admin@example.com", Password: "correct horse"}); err != nil {
		t.Fatalf("login should succeed: %v", err)
	}

	// Full budget available again
	for i := 0; i < 2; i++ {
		if _, err := svc.Login(ctx, &models.LoginRequest{Email: "admin@example.com", Password: "correct horse"}); err != nil {
			t.Fatalf("attempt %d after reset should succeed: %v", i+1, err)
		}
	}
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	svc := newTestAuthService(mocks.NewMockReviewerRepository(), nil)

	for _, token := range []string{"", "not-a-jwt", "aaa.bbb.ccc"} {
		if _, err := svc.VerifyToken(token); err == nil {
			t.Errorf("VerifyToken(%q) should fail", token)
		}
	}
}

func TestEnsureAdminCreatesAccount(t *testing.T) {
	repo := mocks.NewMockReviewerRepository()
	cfg := &config.AuthConfig{
		JWTSecret:     "test-secret",
		TokenTTL:      time.Hour,
		AdminEmail:    "boot@example.com",
		AdminPassword: "initial password",
	}
	svc := newAuthService(repo, nil, cfg, zerolog.Nop())

	if err := svc.EnsureAdmin(context.Background()); err != nil {
		t.Fatalf("EnsureAdmin failed: %v", err)
	}

	reviewer, _ := repo.GetByEmail(context.Background(), "boot@example.com")
	if reviewer == nil {
		t.Fatal("bootstrap admin should exist")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(reviewer.PasswordHash), []byte("initial password")); err != nil {
		t.Error("stored hash does not match the configured password")
	}

	// Running again keeps the same account id
	if err := svc.EnsureAdmin(context.Background()); err != nil {
		t.Fatalf("second EnsureAdmin failed: %v", err)
	}
	again, _ := repo.GetByEmail(context.Background(), "boot@example.com")
	if again.ID != reviewer.ID {
		t.Error("EnsureAdmin must not replace the existing account id")
	}
}
