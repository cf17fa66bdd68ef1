package appointments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ronakwanjari/medibot-platform/internal/events"
	httpmiddleware "github.com/ronakwanjari/medibot-platform/internal/http/middleware"
	"github.com/ronakwanjari/medibot-platform/internal/observability/metrics"
	"github.com/ronakwanjari/medibot-platform/pkg/logging"
)

var apptTracer = otel.Tracer("medibot.internal.appointments")

// Notifier delivers appointment lifecycle notifications. Implementations
// must be safe to call concurrently; delivery failures stay inside the
// implementation.
type Notifier interface {
	AppointmentEvent(ctx context.Context, kind events.Kind, appt *Appointment) error
}

// TransitionRecorder persists an audit entry for a status change.
type TransitionRecorder interface {
	RecordTransition(ctx context.Context, appointmentID string, from, to Status, actor Role, note string) error
}

// Archiver copies terminal appointments to long-term storage.
type Archiver interface {
	ArchiveAppointment(ctx context.Context, appt *Appointment) error
}

// Handler handles HTTP requests for appointments
type Handler struct {
	repo          Repository
	notifier      Notifier
	recorder      TransitionRecorder
	archiver      Archiver
	metrics       *metrics.AppointmentMetrics
	logger        *logging.Logger
	notifyTimeout time.Duration
}

// NewHandler creates a new appointments handler. notifier, recorder and m
// may be nil; the corresponding side effects are skipped.
func NewHandler(repo Repository, notifier Notifier, recorder TransitionRecorder, m *metrics.AppointmentMetrics, logger *logging.Logger, notifyTimeout time.Duration) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if notifyTimeout <= 0 {
		notifyTimeout = 5 * time.Second
	}
	return &Handler{
		repo:          repo,
		notifier:      notifier,
		recorder:      recorder,
		metrics:       m,
		logger:        logger,
		notifyTimeout: notifyTimeout,
	}
}

// SetArchiver attaches an archiver for terminal appointments. Optional;
// set it before the handler starts serving.
func (h *Handler) SetArchiver(a Archiver) {
	h.archiver = a
}

// Create handles POST /appointments
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, span := apptTracer.Start(r.Context(), "appointments.create")
	defer span.End()

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON in request body")
		return
	}

	appt, err := h.repo.Create(ctx, &req)
	if err != nil {
		span.RecordError(err)
		h.writeRepoError(w, err, "failed to create appointment")
		return
	}
	span.SetAttributes(
		attribute.String("medibot.appointment_id", appt.ID),
		attribute.String("medibot.doctor_id", appt.DoctorID),
	)

	h.logger.Info("appointment created", "id", appt.ID, "patient", appt.PatientID, "doctor", appt.DoctorID)
	h.metrics.ObserveBooking(string(appt.Status))
	h.dispatch(events.KindCreated, appt)

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":     true,
		"message":     "Appointment booked successfully",
		"appointment": appt,
	})
}

// List handles GET /appointments
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := Filter{
		PatientID: q.Get("patientId"),
		DoctorID:  q.Get("doctorId"),
		Status:    Status(q.Get("status")),
	}

	appts, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.writeRepoError(w, err, "failed to list appointments")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"appointments": appts,
		"total":        len(appts),
	})
}

// GetByID handles GET /appointments/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	appt, err := h.repo.Get(r.Context(), id)
	if err != nil {
		h.writeRepoError(w, err, "failed to fetch appointment")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"appointment": appt,
	})
}

// Update handles PUT /appointments/{id}. Status changes are checked
// against the lifecycle guard before the store is touched.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	ctx, span := apptTracer.Start(r.Context(), "appointments.update")
	defer span.End()

	id := chi.URLParam(r, "id")
	span.SetAttributes(attribute.String("medibot.appointment_id", id))

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON in request body")
		return
	}

	actor := h.actorRole(r)
	var prevStatus Status

	if req.Status != nil {
		if !ValidStatus(*req.Status) {
			writeError(w, http.StatusBadRequest, "unknown status")
			return
		}
		current, err := h.repo.Get(ctx, id)
		if err != nil {
			h.writeRepoError(w, err, "failed to fetch appointment")
			return
		}
		prevStatus = current.Status
		if err := CanTransition(actor, current.Status, *req.Status); err != nil {
			span.RecordError(err)
			h.writeRepoError(w, err, "")
			return
		}
	}

	appt, err := h.repo.Update(ctx, id, &req)
	if err != nil {
		span.RecordError(err)
		h.writeRepoError(w, err, "failed to update appointment")
		return
	}

	if req.Status != nil && *req.Status != prevStatus {
		span.SetAttributes(attribute.String("medibot.status", string(*req.Status)))
		h.recordTransition(ctx, appt, prevStatus, *req.Status, actor)
		h.metrics.ObserveTransition(string(prevStatus), string(*req.Status))
		if kind, ok := eventForStatus(*req.Status); ok {
			h.dispatch(kind, appt)
		}
		h.archive(appt)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     "Appointment updated successfully",
		"appointment": appt,
	})
}

// Delete handles DELETE /appointments/{id}: a soft cancel that returns the
// prior record. Terminal appointments cannot be cancelled again.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, span := apptTracer.Start(r.Context(), "appointments.cancel")
	defer span.End()

	id := chi.URLParam(r, "id")
	span.SetAttributes(attribute.String("medibot.appointment_id", id))
	actor := h.actorRole(r)

	current, err := h.repo.Get(ctx, id)
	if err != nil {
		h.writeRepoError(w, err, "failed to fetch appointment")
		return
	}
	if err := CanTransition(actor, current.Status, StatusCancelled); err != nil {
		span.RecordError(err)
		h.writeRepoError(w, err, "")
		return
	}

	prior, err := h.repo.Delete(ctx, id)
	if err != nil {
		span.RecordError(err)
		h.writeRepoError(w, err, "failed to cancel appointment")
		return
	}

	h.recordTransition(ctx, prior, prior.Status, StatusCancelled, actor)
	h.metrics.ObserveTransition(string(prior.Status), string(StatusCancelled))
	h.dispatch(events.KindCancelled, prior)

	cancelled := *prior
	cancelled.Status = StatusCancelled
	h.archive(&cancelled)

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     "Appointment cancelled successfully",
		"appointment": prior,
	})
}

func (h *Handler) actorRole(r *http.Request) Role {
	if role, ok := httpmiddleware.RoleFromContext(r.Context()); ok && role == string(RoleDoctor) {
		return RoleDoctor
	}
	return RolePatient
}

// dispatch fires a notification without blocking the mutation path. The
// goroutine gets its own bounded context so a slow email service cannot
// stall or outlive the request by much.
func (h *Handler) dispatch(kind events.Kind, appt *Appointment) {
	if h.notifier == nil {
		return
	}
	snapshot := *appt
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.notifyTimeout)
		defer cancel()
		if err := h.notifier.AppointmentEvent(ctx, kind, &snapshot); err != nil {
			h.logger.Error("appointment notification failed", "kind", string(kind), "id", snapshot.ID, "error", err)
		}
		h.metrics.ObserveNotification(string(kind))
	}()
}

// archive copies a terminal appointment to long-term storage without
// blocking the response, mirroring the notification path.
func (h *Handler) archive(appt *Appointment) {
	if h.archiver == nil || !Terminal(appt.Status) {
		return
	}
	snapshot := *appt
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.notifyTimeout)
		defer cancel()
		if err := h.archiver.ArchiveAppointment(ctx, &snapshot); err != nil {
			h.logger.Error("failed to archive appointment", "id", snapshot.ID, "error", err)
		}
	}()
}

func (h *Handler) recordTransition(ctx context.Context, appt *Appointment, from, to Status, actor Role) {
	if h.recorder == nil {
		return
	}
	if err := h.recorder.RecordTransition(ctx, appt.ID, from, to, actor, appt.DoctorNotes); err != nil {
		h.logger.Error("failed to record status transition", "id", appt.ID, "error", err)
	}
}

func (h *Handler) writeRepoError(w http.ResponseWriter, err error, fallback string) {
	var vErr *ValidationError
	var tErr *TransitionError
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, vErr.Error())
	case errors.As(err, &tErr):
		code := http.StatusConflict
		if tErr.Unauthorized {
			code = http.StatusForbidden
		}
		writeError(w, code, tErr.Error())
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "Appointment not found")
	case errors.Is(err, ErrConflict):
		writeError(w, http.StatusConflict, "Appointment was modified concurrently, retry")
	case errors.Is(err, ErrBackendUnavailable):
		writeError(w, http.StatusServiceUnavailable, "Appointment store unavailable")
	default:
		h.logger.Error("appointment request failed", "error", err)
		if fallback == "" {
			fallback = "Internal server error"
		}
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

func eventForStatus(s Status) (events.Kind, bool) {
	switch s {
	case StatusApproved:
		return events.KindApproved, true
	case StatusRejected:
		return events.KindRejected, true
	case StatusCompleted:
		return events.KindCompleted, true
	case StatusCancelled:
		return events.KindCancelled, true
	}
	return "", false
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
