package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vashudha/ghee-storefront/internal/cart"
	pkgAuth "github.com/vashudha/ghee-storefront/pkg/auth"
	"github.com/vashudha/ghee-storefront/pkg/config"
	"github.com/vashudha/ghee-storefront/pkg/db/models"
	"github.com/vashudha/ghee-storefront/pkg/enums"
	pkgerrors "github.com/vashudha/ghee-storefront/pkg/errors"
	"github.com/vashudha/ghee-storefront/pkg/security"
)

type stubUserRepo struct {
	byEmail    map[string]*models.User
	lastLogins map[uuid.UUID]time.Time
}

func (s *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := s.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *stubUserRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	if s.lastLogins == nil {
		s.lastLogins = map[uuid.UUID]time.Time{}
	}
	s.lastLogins[id] = at
	return nil
}

type stubSessionManager struct {
	generated []string
	revoked   []string
}

func (s *stubSessionManager) Generate(_ context.Context, accessID string) (string, error) {
	s.generated = append(s.generated, accessID)
	return "refresh-" + accessID, nil
}

func (s *stubSessionManager) Rotate(_ context.Context, oldAccessID, _ string) (string, string, error) {
	return "rotated-" + oldAccessID, "refresh-rotated", nil
}

func (s *stubSessionManager) Revoke(_ context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}

type stubReconciler struct {
	mu     sync.Mutex
	called chan struct{}
	userID uuid.UUID
}

func (s *stubReconciler) Reconcile(_ context.Context, userID uuid.UUID, _ cart.GuestSnapshot) {
	s.mu.Lock()
	s.userID = userID
	s.mu.Unlock()
	close(s.called)
}

type stubGuest struct{}

func (stubGuest) Load(context.Context) ([]cart.Line, error) { return nil, nil }
func (stubGuest) Drop(context.Context) error                { return nil }

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret-test-secret-test-1234",
		Issuer:                 "ghee-test",
		ExpirationMinutes:      15,
		RefreshTokenTTLMinutes: 60,
	}
}

func newLoginFixture(t *testing.T) (*stubUserRepo, *stubSessionManager, *stubReconciler, Service, *models.User) {
	t.Helper()

	hash, err := security.HashPassword("correct-horse-battery", config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{
		ID:           uuid.New(),
		Email:        "customer@example.com",
		PasswordHash: hash,
		FullName:     "Test Customer",
		Role:         enums.UserRoleCustomer,
		IsActive:     true,
	}

	repo := &stubUserRepo{byEmail: map[string]*models.User{user.Email: user}}
	sessions := &stubSessionManager{}
	reconciler := &stubReconciler{called: make(chan struct{})}

	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		Reconciler:     reconciler,
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return repo, sessions, reconciler, svc, user
}

func TestLoginIssuesTokenPair(t *testing.T) {
	t.Parallel()

	repo, sessions, _, svc, user := newLoginFixture(t)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "Customer@Example.com",
		Password: "correct-horse-battery",
	}, nil)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected token pair")
	}
	if resp.User == nil || resp.User.ID != user.ID {
		t.Fatal("expected user payload")
	}
	if len(sessions.generated) != 1 {
		t.Fatalf("expected one session, got %d", len(sessions.generated))
	}
	if _, ok := repo.lastLogins[user.ID]; !ok {
		t.Fatal("expected last login to be recorded")
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse minted token: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != enums.UserRoleCustomer {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestLoginReplaysGuestCartInBackground(t *testing.T) {
	t.Parallel()

	_, _, reconciler, svc, user := newLoginFixture(t)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "customer@example.com",
		Password: "correct-horse-battery",
	}, stubGuest{})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	select {
	case <-reconciler.called:
	case <-time.After(2 * time.Second):
		t.Fatal("expected reconciler to run")
	}
	reconciler.mu.Lock()
	defer reconciler.mu.Unlock()
	if reconciler.userID != user.ID {
		t.Fatalf("expected reconcile for %s, got %s", user.ID, reconciler.userID)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	t.Parallel()

	_, _, _, svc, _ := newLoginFixture(t)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "customer@example.com",
		Password: "wrong",
	}, nil)
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	t.Parallel()

	repo, _, _, svc, user := newLoginFixture(t)
	repo.byEmail[user.Email].IsActive = false

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "customer@example.com",
		Password: "correct-horse-battery",
	}, nil)
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	t.Parallel()

	_, _, _, svc, _ := newLoginFixture(t)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "nobody@example.com",
		Password: "correct-horse-battery",
	}, nil)
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	t.Parallel()

	_, _, _, svc, user := newLoginFixture(t)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "customer@example.com",
		Password: "correct-horse-battery",
	}, nil)
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	refreshed, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.AccessToken == "" || refreshed.RefreshToken != "refresh-rotated" {
		t.Fatalf("unexpected refresh response: %+v", refreshed)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), refreshed.AccessToken)
	if err != nil {
		t.Fatalf("parse refreshed token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("expected claims for %s, got %s", user.ID, claims.UserID)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	t.Parallel()

	_, sessions, _, svc, _ := newLoginFixture(t)

	if err := svc.Logout(context.Background(), "session-123"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "session-123" {
		t.Fatalf("expected session revoked, got %+v", sessions.revoked)
	}

	err := svc.Logout(context.Background(), " ")
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for blank session, got %v", err)
	}
}
