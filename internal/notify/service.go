package notify

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ronakwanjari/medibot-platform/internal/appointments"
	"github.com/ronakwanjari/medibot-platform/internal/events"
	"github.com/ronakwanjari/medibot-platform/pkg/logging"
)

var notifyTracer = otel.Tracer("medibot.internal.notify")

// Service composes and sends appointment lifecycle emails. It implements
// appointments.Notifier, so the API dispatches to it directly; the worker
// uses it to handle queued events.
type Service struct {
	email  EmailSender
	logger *logging.Logger
}

// NewService creates a notification service.
func NewService(email EmailSender, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{email: email, logger: logger}
}

// AppointmentEvent sends the notifications for a lifecycle event. A failure
// to reach one recipient does not block the other; the last error is
// returned so callers can log it.
func (s *Service) AppointmentEvent(ctx context.Context, kind events.Kind, appt *appointments.Appointment) error {
	if appt == nil {
		return fmt.Errorf("notify: nil appointment")
	}
	return s.HandleEvent(ctx, eventFromAppointment(kind, appt))
}

// HandleEvent sends the notifications described by a queued event payload.
func (s *Service) HandleEvent(ctx context.Context, evt events.AppointmentEventV1) error {
	if s.email == nil {
		s.logger.Debug("notify: email sender not configured, skipping", "kind", evt.Kind, "appointmentId", evt.AppointmentID)
		return nil
	}
	if !evt.Kind.Valid() {
		return fmt.Errorf("notify: unknown event kind %q", evt.Kind)
	}

	ctx, span := notifyTracer.Start(ctx, "notify.appointment_event")
	defer span.End()
	span.SetAttributes(
		attribute.String("medibot.event_kind", string(evt.Kind)),
		attribute.String("medibot.appointment_id", evt.AppointmentID),
	)

	var lastErr error

	if evt.PatientEmail != "" {
		msg := patientEmail(evt)
		if err := s.email.Send(ctx, msg); err != nil {
			s.logger.Error("notify: patient email failed", "error", err, "appointmentId", evt.AppointmentID, "kind", evt.Kind)
			lastErr = err
		}
	}

	if evt.DoctorEmail != "" && notifyDoctor(evt.Kind) {
		msg := doctorEmail(evt)
		if err := s.email.Send(ctx, msg); err != nil {
			s.logger.Error("notify: doctor email failed", "error", err, "appointmentId", evt.AppointmentID, "kind", evt.Kind)
			lastErr = err
		}
	}

	return lastErr
}

// notifyDoctor reports whether the doctor gets an email for this kind.
// Approval, rejection and completion are the doctor's own actions.
func notifyDoctor(kind events.Kind) bool {
	return kind == events.KindCreated || kind == events.KindCancelled
}

func eventFromAppointment(kind events.Kind, appt *appointments.Appointment) events.AppointmentEventV1 {
	return events.AppointmentEventV1{
		Version:         1,
		Kind:            kind,
		AppointmentID:   appt.ID,
		OccurredAt:      appt.UpdatedAt,
		PatientName:     appt.PatientName,
		PatientEmail:    appt.PatientEmail,
		PatientPhone:    appt.PatientPhone,
		DoctorName:      appt.DoctorName,
		DoctorEmail:     appt.DoctorEmail,
		AppointmentDate: appt.AppointmentDate,
		AppointmentTime: appt.AppointmentTime,
		Reason:          appt.Reason,
		Symptoms:        appt.Symptoms,
		ConsultationFee: appt.ConsultationFee,
		DoctorNotes:     appt.DoctorNotes,
		MeetingLink:     appt.MeetingLink,
	}
}

func patientEmail(evt events.AppointmentEventV1) EmailMessage {
	doctor := evt.DoctorName
	if doctor == "" {
		doctor = "your doctor"
	}
	when := fmt.Sprintf("%s at %s", evt.AppointmentDate, evt.AppointmentTime)

	var subject, body string
	switch evt.Kind {
	case events.KindCreated:
		subject = "Appointment request received"
		body = fmt.Sprintf(
			"Hi %s,\n\nYour appointment request with %s for %s has been received and is awaiting approval.\n\nReason: %s\n\nWe will email you as soon as the doctor responds.",
			evt.PatientName, doctor, when, evt.Reason)
	case events.KindApproved:
		subject = "Your appointment is confirmed"
		body = fmt.Sprintf(
			"Hi %s,\n\nYour appointment with %s on %s has been approved.",
			evt.PatientName, doctor, when)
		if evt.MeetingLink != "" {
			body += fmt.Sprintf("\n\nJoin your video consultation here: %s", evt.MeetingLink)
		}
	case events.KindRejected:
		subject = "Your appointment request was declined"
		body = fmt.Sprintf(
			"Hi %s,\n\nUnfortunately %s is unable to take your appointment on %s.",
			evt.PatientName, doctor, when)
		if evt.DoctorNotes != "" {
			body += fmt.Sprintf("\n\nNote from the doctor: %s", evt.DoctorNotes)
		}
		body += "\n\nPlease book a new appointment at a different time."
	case events.KindCompleted:
		subject = "Your consultation is complete"
		body = fmt.Sprintf(
			"Hi %s,\n\nYour consultation with %s on %s has been marked as completed.",
			evt.PatientName, doctor, when)
		if evt.DoctorNotes != "" {
			body += fmt.Sprintf("\n\nNote from the doctor: %s", evt.DoctorNotes)
		}
	case events.KindCancelled:
		subject = "Your appointment was cancelled"
		body = fmt.Sprintf(
			"Hi %s,\n\nYour appointment with %s on %s has been cancelled.",
			evt.PatientName, doctor, when)
	}

	return EmailMessage{
		To:      evt.PatientEmail,
		ToName:  evt.PatientName,
		Subject: subject,
		Body:    body,
	}
}

func doctorEmail(evt events.AppointmentEventV1) EmailMessage {
	when := fmt.Sprintf("%s at %s", evt.AppointmentDate, evt.AppointmentTime)

	var subject, body string
	switch evt.Kind {
	case events.KindCreated:
		subject = fmt.Sprintf("New appointment request from %s", evt.PatientName)
		body = fmt.Sprintf(
			"You have a new appointment request.\n\nPatient: %s\nEmail: %s\nWhen: %s\nReason: %s",
			evt.PatientName, evt.PatientEmail, when, evt.Reason)
		if evt.PatientPhone != "" {
			body += fmt.Sprintf("\nPhone: %s", evt.PatientPhone)
		}
		if evt.Symptoms != "" {
			body += fmt.Sprintf("\nSymptoms: %s", evt.Symptoms)
		}
		body += fmt.Sprintf("\nConsultation fee: $%.2f", evt.ConsultationFee)
		body += "\n\nLog in to approve or decline this request."
	case events.KindCancelled:
		subject = fmt.Sprintf("Appointment with %s cancelled", evt.PatientName)
		body = fmt.Sprintf(
			"The appointment with %s on %s has been cancelled.",
			evt.PatientName, when)
	}

	return EmailMessage{
		To:      evt.DoctorEmail,
		ToName:  evt.DoctorName,
		Subject: subject,
		Body:    body,
	}
}
