package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/pharmatrack/pharmacy-api/internal/core/domain"
)

type stubUserRepo struct {
	users       map[string]*domain.User
	findByEmail int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, exists := r.users[user.Email]; exists {
		return nil, domain.ErrUserExists
	}
	stored := cloneUser(user)
	if stored.ID == "" {
		stored.ID = "id-" + user.Email
	}
	r.users[stored.Email] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.findByEmail++
	if u, ok := r.users[email]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	for email, u := range r.users {
		if u.ID == user.ID {
			stored := cloneUser(user)
			delete(r.users, email)
			r.users[stored.Email] = stored
			return cloneUser(stored), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func newTestAuthService(repo *stubUserRepo) (*AuthService, *TokenService) {
	tokens := NewTokenService("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	svc := NewAuthService(
		repo,
		NewPasswordHasher(4),
		tokens,
		NewLoginThrottle(5, 15*time.Minute),
		zerolog.Nop(),
	)
	return svc, tokens
}

const strongPassword = "Str0ng!Pass123"

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo)

	user, err := svc.Register(context.Background(), "ana@pharmacy.test", strongPassword, "Ana")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Email != "ana@pharmacy.test" || user.Name != "Ana" {
		t.Fatalf("unexpected projection: %+v", user)
	}
	if user.Role != domain.RoleUser || user.AccessLevel != domain.LevelRead {
		t.Fatalf("expected default role/level, got %s/%d", user.Role, user.AccessLevel)
	}

	stored := repo.users["ana@pharmacy.test"]
	if stored.PasswordHash == strongPassword || stored.PasswordHash == "" {
		t.Fatalf("password must be stored hashed")
	}
}

func TestAuthService_Register_MissingFields(t *testing.T) {
	svc, _ := newTestAuthService(newStubUserRepo())

	for _, args := range [][3]string{
		{"", strongPassword, "Ana"},
		{"ana@pharmacy.test", "", "Ana"},
		{"ana@pharmacy.test", strongPassword, ""},
	} {
		if _, err := svc.Register(context.Background(), args[0], args[1], args[2]); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected ErrValidation for %v, got %v", args, err)
		}
	}
}

func TestAuthService_Register_WeakPassword(t *testing.T) {
	svc, _ := newTestAuthService(newStubUserRepo())

	_, err := svc.Register(context.Background(), "ana@pharmacy.test", "weak", "Ana")
	var weak *domain.WeakPasswordError
	if !errors.As(err, &weak) {
		t.Fatalf("expected WeakPasswordError, got %v", err)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo)

	if _, err := svc.Register(context.Background(), "ana@pharmacy.test", strongPassword, "Ana"); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), "ana@pharmacy.test", strongPassword, "Other"); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc, tokens := newTestAuthService(repo)

	if _, err := svc.Register(context.Background(), "ana@pharmacy.test", strongPassword, "Ana"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	result, err := svc.Login(context.Background(), "ana@pharmacy.test", strongPassword)
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatalf("expected both tokens, got %+v", result)
	}
	if result.User == nil || result.User.Email != "ana@pharmacy.test" {
		t.Fatalf("unexpected user summary: %+v", result.User)
	}

	claims := tokens.VerifyAccessToken(result.AccessToken)
	if claims == nil || claims.Email != "ana@pharmacy.test" {
		t.Fatalf("issued access token does not verify: %+v", claims)
	}
	if subject := tokens.VerifyRefreshToken(result.RefreshToken); subject != claims.UserID {
		t.Fatalf("refresh subject %q does not match access subject %q", subject, claims.UserID)
	}
}

func TestAuthService_Login_GenericCredentialsError(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo)

	if _, err := svc.Register(context.Background(), "ana@pharmacy.test", strongPassword, "Ana"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	// Wrong password on a known email and any password on an unknown email
	// must yield the same error value, so identities cannot be enumerated.
	_, wrongPass := svc.Login(context.Background(), "ana@pharmacy.test", "Wr0ng!Pass1234")
	_, unknown := svc.Login(context.Background(), "ghost@pharmacy.test", "whatever")

	if !errors.Is(wrongPass, domain.ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", wrongPass)
	}
	if !errors.Is(unknown, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", unknown)
	}
}

func TestAuthService_Login_LockoutScenario(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo)

	if _, err := svc.Register(context.Background(), "ana@pharmacy.test", strongPassword, "Ana"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		if _, err := svc.Login(context.Background(), "ana@pharmacy.test", "Wr0ng!Pass1234"); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i+1, err)
		}
	}

	// Sixth attempt fails with the lockout error even with the correct
	// password, and the store is never consulted.
	lookups := repo.findByEmail
	if _, err := svc.Login(context.Background(), "ana@pharmacy.test", strongPassword); !errors.Is(err, domain.ErrLockedOut) {
		t.Fatalf("expected ErrLockedOut, got %v", err)
	}
	if repo.findByEmail != lookups {
		t.Fatalf("locked login must not touch the user store")
	}
}

func TestAuthService_Login_SuccessResetsThrottle(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo)

	if _, err := svc.Register(context.Background(), "ana@pharmacy.test", strongPassword, "Ana"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	for i := 0; i < 4; i++ {
		_, _ = svc.Login(context.Background(), "ana@pharmacy.test", "Wr0ng!Pass1234")
	}
	if _, err := svc.Login(context.Background(), "ana@pharmacy.test", strongPassword); err != nil {
		t.Fatalf("login under threshold failed: %v", err)
	}

	// The counter restarted: four more failures still stay under the limit.
	for i := 0; i < 4; i++ {
		if _, err := svc.Login(context.Background(), "ana@pharmacy.test", "Wr0ng!Pass1234"); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials after reset, got %v", err)
		}
	}
}

func TestAuthService_Refresh(t *testing.T) {
	repo := newStubUserRepo()
	svc, tokens := newTestAuthService(repo)

	if _, err := svc.Register(context.Background(), "ana@pharmacy.test", strongPassword, "Ana"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	result, err := svc.Login(context.Background(), "ana@pharmacy.test", strongPassword)
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	access, err := svc.Refresh(context.Background(), result.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if claims := tokens.VerifyAccessToken(access); claims == nil || claims.Email != "ana@pharmacy.test" {
		t.Fatalf("refreshed access token does not verify")
	}
}

func TestAuthService_Refresh_InvalidToken(t *testing.T) {
	svc, tokens := newTestAuthService(newStubUserRepo())

	if _, err := svc.Refresh(context.Background(), "garbage"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	// Structurally valid refresh token for a subject that no longer exists.
	orphan, err := tokens.IssueRefreshToken("id-gone")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := svc.Refresh(context.Background(), orphan); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for unknown subject, got %v", err)
	}
}

func TestAuthService_ProfileAndUpdates(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo)

	created, err := svc.Register(context.Background(), "ana@pharmacy.test", strongPassword, "Ana")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	profile, err := svc.Profile(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("profile failed: %v", err)
	}
	if profile.Email != "ana@pharmacy.test" {
		t.Fatalf("unexpected profile: %+v", profile)
	}

	updated, err := svc.UpdateRole(context.Background(), created.ID, domain.RolePharmacist)
	if err != nil {
		t.Fatalf("update role failed: %v", err)
	}
	if updated.Role != domain.RolePharmacist {
		t.Fatalf("role not updated: %+v", updated)
	}

	updated, err = svc.UpdateAccessLevel(context.Background(), created.ID, domain.LevelDelete)
	if err != nil {
		t.Fatalf("update access level failed: %v", err)
	}
	if updated.AccessLevel != domain.LevelDelete {
		t.Fatalf("access level not updated: %+v", updated)
	}
}

func TestAuthService_Updates_Validation(t *testing.T) {
	svc, _ := newTestAuthService(newStubUserRepo())

	if _, err := svc.UpdateRole(context.Background(), "any", domain.Role("superuser")); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown role, got %v", err)
	}
	if _, err := svc.UpdateAccessLevel(context.Background(), "any", domain.AccessLevel(9)); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for out-of-range level, got %v", err)
	}
}

func TestAuthService_Profile_NotFound(t *testing.T) {
	svc, _ := newTestAuthService(newStubUserRepo())

	if _, err := svc.Profile(context.Background(), "missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := svc.UpdateRole(context.Background(), "missing", domain.RoleAdmin); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
