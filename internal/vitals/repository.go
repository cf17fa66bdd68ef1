package vitals

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository stores vitals readings.
type Repository interface {
	Save(ctx context.Context, req *SaveRequest) (*Reading, error)
	// List returns readings for a patient, newest first. limit <= 0 means
	// no limit.
	List(ctx context.Context, patientID string, limit int) ([]*Reading, error)
}

// InMemoryRepository keeps readings in a mutex-guarded slice.
type InMemoryRepository struct {
	mu       sync.RWMutex
	readings []*Reading
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

func newReading(req *SaveRequest) *Reading {
	return &Reading{
		ID:          uuid.New().String(),
		PatientID:   req.PatientID,
		HeartRate:   req.HeartRate,
		SpO2:        req.SpO2,
		Temperature: req.Temperature,
		BMI:         req.BMI,
		RecordedAt:  time.Now().UTC(),
	}
}

func (r *InMemoryRepository) Save(ctx context.Context, req *SaveRequest) (*Reading, error) {
	reading := newReading(req)

	r.mu.Lock()
	r.readings = append(r.readings, reading)
	r.mu.Unlock()

	c := *reading
	return &c, nil
}

func (r *InMemoryRepository) List(ctx context.Context, patientID string, limit int) ([]*Reading, error) {
	r.mu.RLock()
	out := []*Reading{}
	for _, reading := range r.readings {
		if reading.PatientID == patientID {
			c := *reading
			out = append(out, &c)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].RecordedAt.Equal(out[j].RecordedAt) {
			return out[i].RecordedAt.After(out[j].RecordedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
