package appointments

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for appointment storage
type Repository interface {
	Create(ctx context.Context, req *CreateRequest) (*Appointment, error)
	Get(ctx context.Context, id string) (*Appointment, error)
	List(ctx context.Context, filter Filter) ([]*Appointment, error)
	Update(ctx context.Context, id string, req *UpdateRequest) (*Appointment, error)
	// Delete soft-cancels the appointment and returns the record as it was
	// before the cancellation.
	Delete(ctx context.Context, id string) (*Appointment, error)
}

// InMemoryRepository keeps appointments in a mutex-guarded map. Used for
// development and tests; selected with STORE_BACKEND=memory.
type InMemoryRepository struct {
	mu           sync.RWMutex
	appointments map[string]*Appointment
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		appointments: make(map[string]*Appointment),
	}
}

func newFromRequest(req *CreateRequest) *Appointment {
	status := req.Status
	if status == "" {
		status = StatusPending
	}
	now := time.Now().UTC()
	return &Appointment{
		ID:              uuid.New().String(),
		PatientID:       orGeneratedID(req.PatientID),
		PatientName:     strings.TrimSpace(req.PatientName),
		PatientEmail:    strings.ToLower(strings.TrimSpace(req.PatientEmail)),
		PatientPhone:    strings.TrimSpace(req.PatientPhone),
		DoctorID:        req.DoctorID,
		DoctorName:      strings.TrimSpace(req.DoctorName),
		DoctorEmail:     strings.ToLower(strings.TrimSpace(req.DoctorEmail)),
		AppointmentDate: req.AppointmentDate,
		AppointmentTime: req.AppointmentTime,
		Reason:          strings.TrimSpace(req.Reason),
		Symptoms:        strings.TrimSpace(req.Symptoms),
		Status:          status,
		ConsultationFee: req.ConsultationFee,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func orGeneratedID(id string) string {
	if strings.TrimSpace(id) != "" {
		return id
	}
	return uuid.New().String()
}

// Create validates and stores a new appointment in state pending.
func (r *InMemoryRepository) Create(ctx context.Context, req *CreateRequest) (*Appointment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	appt := newFromRequest(req)

	r.mu.Lock()
	r.appointments[appt.ID] = appt
	r.mu.Unlock()

	return cloned(appt), nil
}

// Get retrieves an appointment by id.
func (r *InMemoryRepository) Get(ctx context.Context, id string) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	appt, ok := r.appointments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloned(appt), nil
}

// List returns appointments matching the filter, newest-created-first.
func (r *InMemoryRepository) List(ctx context.Context, filter Filter) ([]*Appointment, error) {
	r.mu.RLock()
	out := make([]*Appointment, 0, len(r.appointments))
	for _, appt := range r.appointments {
		if filter.Matches(appt) {
			out = append(out, cloned(appt))
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// Update merges the supplied fields into the stored record. The merge and
// replace happen under the write lock, so two concurrent updates to the
// same id cannot interleave field-by-field.
func (r *InMemoryRepository) Update(ctx context.Context, id string, req *UpdateRequest) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.appointments[id]
	if !ok {
		return nil, ErrNotFound
	}

	updated := cloned(appt)
	req.Apply(updated)
	updated.UpdatedAt = time.Now().UTC()
	r.appointments[id] = updated

	return cloned(updated), nil
}

// Delete soft-cancels and returns the prior record.
func (r *InMemoryRepository) Delete(ctx context.Context, id string) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.appointments[id]
	if !ok {
		return nil, ErrNotFound
	}

	prior := cloned(appt)
	cancelled := cloned(appt)
	cancelled.Status = StatusCancelled
	cancelled.UpdatedAt = time.Now().UTC()
	r.appointments[id] = cancelled

	return prior, nil
}

func cloned(a *Appointment) *Appointment {
	c := *a
	return &c
}
