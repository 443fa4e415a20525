package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/product-comparison-api/internal/api"
	"github.com/product-comparison-api/internal/config"
	"github.com/product-comparison-api/internal/mocks"
	"github.com/product-comparison-api/internal/models"
	"github.com/product-comparison-api/internal/ratelimit"
	"github.com/product-comparison-api/internal/repository"
	"github.com/product-comparison-api/internal/service"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	router   *gin.Engine
	repo     *mocks.MockComparisonRepository
	gen      *mocks.MockGenerator
	services *service.Services
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo := mocks.NewMockComparisonRepository()
	reviewerRepo := mocks.NewMockReviewerRepository()
	gen := mocks.NewMockGenerator()

	hash, err := bcrypt.GenerateFromPassword([]byte("moderator password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt failed: %v", err)
	}
	reviewerRepo.Upsert(context.Background(), &models.Reviewer{
		ID:           "reviewer-1",
		Email:        "admin@example.com",
		PasswordHash: string(hash),
	})

	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret: "test-secret",
			TokenTTL:  time.Hour,
		},
		RateLimit: config.RateLimitConfig{
			SubmitLimit: 100,
			LoginLimit:  100,
			Window:      time.Hour,
		},
	}

	repos := &repository.Repositories{Comparison: repo, Reviewer: reviewerRepo}
	limiters := service.Limiters{
		Submit: ratelimit.NewMemoryLimiter(cfg.RateLimit.SubmitLimit, cfg.RateLimit.Window),
		Login:  ratelimit.NewMemoryLimiter(cfg.RateLimit.LoginLimit, cfg.RateLimit.Window),
	}
	services := service.NewServices(repos, gen, limiters, cfg, zerolog.Nop())

	return &testEnv{
		router:   api.NewRouter(services, cfg, zerolog.Nop()),
		repo:     repo,
		gen:      gen,
		services: services,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) login(t *testing.T) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/v1/admin/login", models.LoginRequest{
		Email:    "admin@example.com",
		Password: "moderator password",
	}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", w.Code, w.Body.String())
	}
	var result models.LoginResult
	json.Unmarshal(w.Body.Bytes(), &result)
	return result.Token
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/health", nil, "")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestSubmitComparison(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/v1/comparisons", models.SubmitRequest{
		ProductA: "iPhone 15 Pro",
		ProductB: "Samsung Galaxy S24 Ultra",
	}, "")

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}

	var result models.SubmitResult
	json.Unmarshal(w.Body.Bytes(), &result)
	if result.Status != models.StatusPending {
		t.Errorf("status = %s, want pending", result.Status)
	}
	if result.Slug != "iphone-15-pro-vs-samsung-galaxy-s24-ultra" {
		t.Errorf("slug = %q", result.Slug)
	}
	if env.gen.GenerateCalls != 1 {
		t.Errorf("generator calls = %d, want 1", env.gen.GenerateCalls)
	}
}

func TestResubmitExistingPairAnswersOK(t *testing.T) {
	env := newTestEnv(t)

	body := models.SubmitRequest{ProductA: "iPhone 15 Pro", ProductB: "Samsung Galaxy S24 Ultra"}
	if w := env.do(t, http.MethodPost, "/v1/comparisons", body, ""); w.Code != http.StatusCreated {
		t.Fatalf("first submit status = %d, want 201", w.Code)
	}

	// Same pair again: nothing is created, so 200 with the existing status
	w := env.do(t, http.MethodPost, "/v1/comparisons", body, "")
	if w.Code != http.StatusOK {
		t.Fatalf("resubmit status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var result models.SubmitResult
	json.Unmarshal(w.Body.Bytes(), &result)
	if result.Status != models.StatusPending {
		t.Errorf("status = %s, want pending", result.Status)
	}
	if env.gen.GenerateCalls != 1 {
		t.Errorf("generator calls = %d, want 1", env.gen.GenerateCalls)
	}
}

func TestSubmitValidationError(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/v1/comparisons", models.SubmitRequest{
		ProductA: "Tesla",
		ProductB: "Tesla",
	}, "")

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if env.gen.GenerateCalls != 0 {
		t.Error("generator must not run for invalid input")
	}
}

func TestSubmitMalformedBody(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/comparisons", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGetComparisonBySlug(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/v1/comparisons", models.SubmitRequest{
		ProductA: "iPhone 15", ProductB: "Pixel 8",
	}, "")

	w := env.do(t, http.MethodGet, "/v1/comparisons/iphone-15-vs-pixel-8", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var cmp models.Comparison
	json.Unmarshal(w.Body.Bytes(), &cmp)
	if cmp.Status != models.StatusPending {
		t.Errorf("status = %s, want pending (preview allowed)", cmp.Status)
	}

	w = env.do(t, http.MethodGet, "/v1/comparisons/nothing-vs-nowhere", nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown slug status = %d, want 404", w.Code)
	}
}

func TestViewCountingGatedOnApproval(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/v1/comparisons", models.SubmitRequest{
		ProductA: "iPhone 15", ProductB: "Pixel 8",
	}, "")
	slug := "iphone-15-vs-pixel-8"
	stored := env.repo.BySlug[slug]

	// Pending: endpoint succeeds, nothing is counted
	if w := env.do(t, http.MethodPost, "/v1/comparisons/"+slug+"/view", nil, ""); w.Code != http.StatusNoContent {
		t.Fatalf("view status = %d, want 204", w.Code)
	}
	if stored.ViewCount != 0 {
		t.Errorf("pending view count = %d, want 0", stored.ViewCount)
	}

	token := env.login(t)
	if w := env.do(t, http.MethodPost, "/v1/admin/comparisons/"+stored.ID+"/approve", nil, token); w.Code != http.StatusOK {
		t.Fatalf("approve status = %d: %s", w.Code, w.Body.String())
	}

	env.do(t, http.MethodPost, "/v1/comparisons/"+slug+"/view", nil, "")
	env.do(t, http.MethodPost, "/v1/comparisons/"+slug+"/view", nil, "")
	if stored.ViewCount != 2 {
		t.Errorf("approved view count = %d, want 2", stored.ViewCount)
	}
}

func TestAdminEndpointsRequireToken(t *testing.T) {
	env := newTestEnv(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/v1/admin/comparisons"},
		{http.MethodPost, "/v1/admin/comparisons/some-id/approve"},
		{http.MethodPost, "/v1/admin/comparisons/some-id/reject"},
	}

	for _, p := range paths {
		if w := env.do(t, p.method, p.path, nil, ""); w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without token: status = %d, want 401", p.method, p.path, w.Code)
		}
		if w := env.do(t, p.method, p.path, nil, "bogus-token"); w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s with bogus token: status = %d, want 401", p.method, p.path, w.Code)
		}
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/v1/admin/login", models.LoginRequest{
		Email:    "admin@example.com",
		Password: "wrong",
	}, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestModerationFlow(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	env.do(t, http.MethodPost, "/v1/comparisons", models.SubmitRequest{
		ProductA: "PS5 Pro", ProductB: "Xbox Series X",
	}, "")
	env.do(t, http.MethodPost, "/v1/comparisons", models.SubmitRequest{
		ProductA: "MacBook Air", ProductB: "ThinkPad X1",
	}, "")

	// Queue lists both
	w := env.do(t, http.MethodGet, "/v1/admin/comparisons?sort=oldest", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var list struct {
		Comparisons []models.Comparison `json:"comparisons"`
		Count       int                 `json:"count"`
	}
	json.Unmarshal(w.Body.Bytes(), &list)
	if list.Count != 2 {
		t.Fatalf("pending count = %d, want 2", list.Count)
	}

	// Reject one with free text: reason comes back flagged
	rejectID := list.Comparisons[0].ID
	w = env.do(t, http.MethodPost, "/v1/admin/comparisons/"+rejectID+"/reject",
		map[string]string{"reason": "not comparable"}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("reject status = %d: %s", w.Code, w.Body.String())
	}
	var rejected models.Comparison
	json.Unmarshal(w.Body.Bytes(), &rejected)
	if rejected.RejectionReason != "Other: not comparable" {
		t.Errorf("rejection reason = %q", rejected.RejectionReason)
	}
	if rejected.ReviewerID != "reviewer-1" {
		t.Errorf("reviewer id = %q, want reviewer-1", rejected.ReviewerID)
	}

	// Approving the rejected record is refused
	w = env.do(t, http.MethodPost, "/v1/admin/comparisons/"+rejectID+"/approve", nil, token)
	if w.Code != http.StatusNotFound {
		t.Errorf("approve after reject: status = %d, want 404", w.Code)
	}

	// Approve the other
	approveID := list.Comparisons[1].ID
	w = env.do(t, http.MethodPost, "/v1/admin/comparisons/"+approveID+"/approve", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("approve status = %d", w.Code)
	}
	var approved models.Comparison
	json.Unmarshal(w.Body.Bytes(), &approved)
	if approved.Status != models.StatusApproved || approved.ApprovedAt == nil {
		t.Errorf("approved record = %+v", approved)
	}

	// Queue is now empty
	w = env.do(t, http.MethodGet, "/v1/admin/comparisons", nil, token)
	json.Unmarshal(w.Body.Bytes(), &list)
	if list.Count != 0 {
		t.Errorf("pending count after moderation = %d, want 0", list.Count)
	}
}

func TestMetrics(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/v1/comparisons", models.SubmitRequest{
		ProductA: "iPhone 15", ProductB: "Pixel 8",
	}, "")

	w := env.do(t, http.MethodGet, "/metrics", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body struct {
		Comparisons models.Stats `json:"comparisons"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body.Comparisons.Pending != 1 {
		t.Errorf("pending = %d, want 1", body.Comparisons.Pending)
	}
}
