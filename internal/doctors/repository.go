package doctors

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
)

// ErrNotFound is returned when no doctor exists for the given id
var ErrNotFound = errors.New("doctor not found")

// Repository is the directory storage interface. Listings only ever
// return active doctors.
type Repository interface {
	List(ctx context.Context, filter Filter) ([]*Doctor, error)
	Get(ctx context.Context, id string) (*Doctor, error)
	Upsert(ctx context.Context, d *Doctor) error
}

func matchesFilter(d *Doctor, filter Filter) bool {
	if d.Status != StatusActive {
		return false
	}
	if filter.Specialty != "" && filter.Specialty != "all" {
		if !strings.Contains(strings.ToLower(d.Specialty), strings.ToLower(filter.Specialty)) {
			return false
		}
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(d.Name), needle) &&
			!strings.Contains(strings.ToLower(d.Specialty), needle) {
			return false
		}
	}
	return true
}

// InMemoryRepository serves the directory from a mutex-guarded map.
// Selected with STORE_BACKEND=memory; Seed populates it at startup.
type InMemoryRepository struct {
	mu      sync.RWMutex
	doctors map[string]*Doctor
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{doctors: make(map[string]*Doctor)}
}

func (r *InMemoryRepository) List(ctx context.Context, filter Filter) ([]*Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*Doctor{}
	for _, d := range r.doctors {
		if matchesFilter(d, filter) {
			c := *d
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *InMemoryRepository) Get(ctx context.Context, id string) (*Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.doctors[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *d
	return &c, nil
}

func (r *InMemoryRepository) Upsert(ctx context.Context, d *Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := *d
	r.doctors[d.ID] = &c
	return nil
}
