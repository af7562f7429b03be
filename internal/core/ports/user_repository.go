package ports

import (
	"context"

	"github.com/pharmatrack/pharmacy-api/internal/core/domain"
)

// UserRepository defines the persistence capabilities the auth flows need.
// Create must be insert-if-absent on the email key: of two concurrent
// registrations for the same email exactly one wins, the other gets
// domain.ErrUserExists.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
}
