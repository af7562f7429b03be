package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/pharmatrack/pharmacy-api/internal/core/domain"
	"github.com/pharmatrack/pharmacy-api/internal/core/ports"
)

// AuthService orchestrates registration, login, token refresh, and profile
// flows on top of the hasher, the token service, the login throttle, and
// the user repository.
type AuthService struct {
	repo     ports.UserRepository
	hasher   *PasswordHasher
	tokens   *TokenService
	throttle ports.LoginThrottle
	log      zerolog.Logger
}

func NewAuthService(
	repo ports.UserRepository,
	hasher *PasswordHasher,
	tokens *TokenService,
	throttle ports.LoginThrottle,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		repo:     repo,
		hasher:   hasher,
		tokens:   tokens,
		throttle: throttle,
		log:      log,
	}
}

// Register creates a new account with the default role and access level.
// The returned projection never carries the password hash.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*domain.PublicUser, error) {
	if email == "" || password == "" || name == "" {
		return nil, domain.ErrValidation
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Email:        email,
		Name:         name,
		Role:         domain.RoleUser,
		AccessLevel:  domain.LevelRead,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", created.ID).Msg("user registered")
	return created.Public(), nil
}

// Login authenticates by email and password. The throttle is consulted
// before any credential work: a locked identity fails without touching the
// hash, and the error for an unknown email is indistinguishable from a
// wrong password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	if email == "" || password == "" {
		return nil, domain.ErrValidation
	}

	locked, err := s.throttle.IsLocked(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("throttle check: %w", err)
	}
	if locked {
		s.log.Warn().Str("email", email).Msg("login rejected, account locked")
		return nil, domain.ErrLockedOut
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, s.failAttempt(ctx, email)
		}
		return nil, err
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s.failAttempt(ctx, email)
	}

	if err := s.throttle.Reset(ctx, email); err != nil {
		return nil, fmt.Errorf("throttle reset: %w", err)
	}

	access, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("login succeeded")
	return &ports.LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         user.Public(),
	}, nil
}

// failAttempt records a throttle failure and returns the generic
// credentials error shared by the unknown-email and wrong-password paths.
func (s *AuthService) failAttempt(ctx context.Context, email string) error {
	if err := s.throttle.RecordFailure(ctx, email); err != nil {
		return fmt.Errorf("throttle record: %w", err)
	}
	s.log.Warn().Str("email", email).Msg("login failed")
	return domain.ErrInvalidCredentials
}

// Refresh exchanges a valid refresh token for a new access token. The
// refresh token itself is not rotated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	subject := s.tokens.VerifyRefreshToken(refreshToken)
	if subject == "" {
		return "", domain.ErrInvalidToken
	}

	user, err := s.repo.FindByID(ctx, subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrInvalidToken
		}
		return "", err
	}

	return s.tokens.IssueAccessToken(user)
}

// Profile returns the password-free projection for the given id.
func (s *AuthService) Profile(ctx context.Context, id string) (*domain.PublicUser, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}

// UpdateRole assigns a new role to the user.
func (s *AuthService) UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.PublicUser, error) {
	if !role.Valid() {
		return nil, domain.ErrValidation
	}
	return s.updateUser(ctx, id, func(u *domain.User) { u.Role = role })
}

// UpdateAccessLevel assigns a new access level to the user.
func (s *AuthService) UpdateAccessLevel(ctx context.Context, id string, level domain.AccessLevel) (*domain.PublicUser, error) {
	if !level.Valid() {
		return nil, domain.ErrValidation
	}
	return s.updateUser(ctx, id, func(u *domain.User) { u.AccessLevel = level })
}

func (s *AuthService) updateUser(ctx context.Context, id string, mutate func(*domain.User)) (*domain.PublicUser, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	mutate(user)
	user.UpdatedAt = time.Now().UTC()

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", updated.ID).Msg("user updated")
	return updated.Public(), nil
}
