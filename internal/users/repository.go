package users

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned when no user exists for the given id.
var ErrNotFound = errors.New("users: not found")

// Repository persists mirrored user records.
type Repository interface {
	Upsert(ctx context.Context, user *User) error
	Get(ctx context.Context, id string) (*User, error)
	Delete(ctx context.Context, id string) error
}

// InMemoryRepository is a map-backed Repository for tests and local runs.
type InMemoryRepository struct {
	mu    sync.RWMutex
	users map[string]*User
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{users: make(map[string]*User)}
}

func (r *InMemoryRepository) Upsert(_ context.Context, user *User) error {
	if user == nil || user.ID == "" {
		return errors.New("users: missing user id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *user
	now := time.Now().UTC()
	if existing, ok := r.users[user.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
		if stored.Role == "" {
			stored.Role = existing.Role
		}
	} else if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	if stored.Role == "" {
		stored.Role = RolePatient
	}
	stored.UpdatedAt = now
	r.users[user.ID] = &stored
	return nil
}

func (r *InMemoryRepository) Get(_ context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return ErrNotFound
	}
	delete(r.users, id)
	return nil
}
