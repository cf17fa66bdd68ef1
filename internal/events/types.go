// Package events defines the notification event contract shared by the API
// and the notify worker.
package events

import "time"

// Kind identifies an appointment lifecycle event.
type Kind string

const (
	KindCreated   Kind = "created"
	KindApproved  Kind = "approved"
	KindRejected  Kind = "rejected"
	KindCompleted Kind = "completed"
	KindCancelled Kind = "cancelled"
)

// Valid reports whether k is a known event kind.
func (k Kind) Valid() bool {
	switch k {
	case KindCreated, KindApproved, KindRejected, KindCompleted, KindCancelled:
		return true
	}
	return false
}

// AppointmentEventV1 is the queued notification payload. Versioned so the
// worker can reject payloads it does not understand.
type AppointmentEventV1 struct {
	Version       int       `json:"version"`
	Kind          Kind      `json:"kind"`
	AppointmentID string    `json:"appointmentId"`
	OccurredAt    time.Time `json:"occurredAt"`

	PatientName     string  `json:"patientName"`
	PatientEmail    string  `json:"patientEmail"`
	PatientPhone    string  `json:"patientPhone,omitempty"`
	DoctorName      string  `json:"doctorName,omitempty"`
	DoctorEmail     string  `json:"doctorEmail,omitempty"`
	AppointmentDate string  `json:"appointmentDate"`
	AppointmentTime string  `json:"appointmentTime"`
	Reason          string  `json:"reason"`
	Symptoms        string  `json:"symptoms,omitempty"`
	ConsultationFee float64 `json:"consultationFee"`
	DoctorNotes     string  `json:"doctorNotes,omitempty"`
	MeetingLink     string  `json:"meetingLink,omitempty"`
}
