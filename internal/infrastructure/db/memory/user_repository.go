// Package memory provides a volatile, concurrency-safe UserRepository
// backed by in-process maps. It is the default collaborator for tests and
// single-node deployments; the Mongo implementation serves the same port
// for a persistent posture.
package memory

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/pharmatrack/pharmacy-api/internal/core/domain"
)

type UserRepository struct {
	mu      sync.RWMutex
	byEmail map[string]*domain.User
	byID    map[string]*domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byEmail: make(map[string]*domain.User),
		byID:    make(map[string]*domain.User),
	}
}

// Create inserts the user if the email is unclaimed. The check and insert
// happen under one lock so two concurrent registrations for the same email
// cannot both win.
func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return nil, domain.ErrUserExists
	}

	stored := cloneUser(user)
	if stored.ID == "" {
		stored.ID = generateUserID()
	}
	r.byEmail[stored.Email] = stored
	r.byID[stored.ID] = stored
	return cloneUser(stored), nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(user), nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(user), nil
}

func (r *UserRepository) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[user.ID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}

	stored := cloneUser(user)
	delete(r.byEmail, current.Email)
	r.byEmail[stored.Email] = stored
	r.byID[stored.ID] = stored
	return cloneUser(stored), nil
}

// cloneUser keeps callers from mutating stored records through aliasing.
func cloneUser(u *domain.User) *domain.User {
	clone := *u
	return &clone
}

// generateUserID returns a unique id in the format USR-XXXXXXXX.
func generateUserID() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		// fallback: use current nanoseconds
		return fmt.Sprintf("USR-%08X", time.Now().UnixNano()&0xFFFFFFFF)
	}
	return fmt.Sprintf("USR-%08X", b)
}
