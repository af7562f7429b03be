package ports

import (
	"context"

	"github.com/pharmatrack/pharmacy-api/internal/core/domain"
)

// LoginResult carries the token pair plus a password-free user summary.
type LoginResult struct {
	AccessToken  string             `json:"access_token"`
	RefreshToken string             `json:"refresh_token"`
	User         *domain.PublicUser `json:"user"`
}

type AuthService interface {
	Register(ctx context.Context, email, password, name string) (*domain.PublicUser, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Profile(ctx context.Context, id string) (*domain.PublicUser, error)
	UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.PublicUser, error)
	UpdateAccessLevel(ctx context.Context, id string, level domain.AccessLevel) (*domain.PublicUser, error)
}
