package appointments

import (
	"regexp"
	"strings"
	"time"
)

// Status is the current stage of an appointment's lifecycle.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// ValidStatus reports whether s is one of the enumerated statuses.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Appointment is a patient's request to consult a doctor at a given
// date/time, tracked through an approval workflow.
type Appointment struct {
	ID              string    `json:"id"`
	PatientID       string    `json:"patientId"`
	PatientName     string    `json:"patientName"`
	PatientEmail    string    `json:"patientEmail"`
	PatientPhone    string    `json:"patientPhone,omitempty"`
	DoctorID        string    `json:"doctorId,omitempty"`
	DoctorName      string    `json:"doctorName,omitempty"`
	DoctorEmail     string    `json:"doctorEmail,omitempty"`
	AppointmentDate string    `json:"appointmentDate"`
	AppointmentTime string    `json:"appointmentTime"`
	Reason          string    `json:"reason"`
	Symptoms        string    `json:"symptoms,omitempty"`
	Status          Status    `json:"status"`
	ConsultationFee float64   `json:"consultationFee"`
	MeetingLink     string    `json:"meetingLink,omitempty"`
	DoctorNotes     string    `json:"doctorNotes,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// CreateRequest is the booking payload. Doctor fields are optional in the
// open-request flow; when a doctor is pre-selected, doctorName is required
// alongside doctorId.
type CreateRequest struct {
	PatientID       string  `json:"patientId"`
	PatientName     string  `json:"patientName"`
	PatientEmail    string  `json:"patientEmail"`
	PatientPhone    string  `json:"patientPhone"`
	DoctorID        string  `json:"doctorId"`
	DoctorName      string  `json:"doctorName"`
	DoctorEmail     string  `json:"doctorEmail"`
	AppointmentDate string  `json:"appointmentDate"`
	AppointmentTime string  `json:"appointmentTime"`
	Reason          string  `json:"reason"`
	Symptoms        string  `json:"symptoms"`
	Status          Status  `json:"status"`
	ConsultationFee float64 `json:"consultationFee"`
}

func nowUTC() time.Time { return time.Now().UTC() }

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern  = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

// Validate checks the booking payload. Pure shape checks only: the date is
// not validated against the calendar and the time is not range-checked.
func (r *CreateRequest) Validate() error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"patientName", r.PatientName},
		{"patientEmail", r.PatientEmail},
		{"appointmentDate", r.AppointmentDate},
		{"appointmentTime", r.AppointmentTime},
		{"reason", r.Reason},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Field: strings.Join(missing, ", "), Reason: "missing required fields"}
	}

	if !emailPattern.MatchString(strings.TrimSpace(r.PatientEmail)) {
		return &ValidationError{Field: "patientEmail", Reason: "invalid email format"}
	}
	if !datePattern.MatchString(r.AppointmentDate) {
		return &ValidationError{Field: "appointmentDate", Reason: "invalid date format, use YYYY-MM-DD"}
	}
	if !timePattern.MatchString(r.AppointmentTime) {
		return &ValidationError{Field: "appointmentTime", Reason: "invalid time format, use HH:MM"}
	}
	if r.DoctorID != "" && strings.TrimSpace(r.DoctorName) == "" {
		return &ValidationError{Field: "doctorName", Reason: "required when booking with a specific doctor"}
	}
	if r.Status != "" && !ValidStatus(r.Status) {
		return &ValidationError{Field: "status", Reason: "unknown status"}
	}
	if r.ConsultationFee < 0 {
		return &ValidationError{Field: "consultationFee", Reason: "must not be negative"}
	}
	return nil
}

// UpdateRequest carries a partial update. A nil field means "not supplied";
// a pointer to the zero value is still applied, so callers can clear
// legitimate empty values.
type UpdateRequest struct {
	Status          *Status  `json:"status,omitempty"`
	DoctorID        *string  `json:"doctorId,omitempty"`
	DoctorName      *string  `json:"doctorName,omitempty"`
	DoctorEmail     *string  `json:"doctorEmail,omitempty"`
	AppointmentDate *string  `json:"appointmentDate,omitempty"`
	AppointmentTime *string  `json:"appointmentTime,omitempty"`
	Reason          *string  `json:"reason,omitempty"`
	Symptoms        *string  `json:"symptoms,omitempty"`
	ConsultationFee *float64 `json:"consultationFee,omitempty"`
	MeetingLink     *string  `json:"meetingLink,omitempty"`
	DoctorNotes     *string  `json:"doctorNotes,omitempty"`
}

// Apply merges the supplied fields into a. The updatedAt stamp is the
// store's responsibility, not Apply's.
func (r *UpdateRequest) Apply(a *Appointment) {
	if r.Status != nil {
		a.Status = *r.Status
	}
	if r.DoctorID != nil {
		a.DoctorID = *r.DoctorID
	}
	if r.DoctorName != nil {
		a.DoctorName = *r.DoctorName
	}
	if r.DoctorEmail != nil {
		a.DoctorEmail = *r.DoctorEmail
	}
	if r.AppointmentDate != nil {
		a.AppointmentDate = *r.AppointmentDate
	}
	if r.AppointmentTime != nil {
		a.AppointmentTime = *r.AppointmentTime
	}
	if r.Reason != nil {
		a.Reason = *r.Reason
	}
	if r.Symptoms != nil {
		a.Symptoms = *r.Symptoms
	}
	if r.ConsultationFee != nil {
		a.ConsultationFee = *r.ConsultationFee
	}
	if r.MeetingLink != nil {
		a.MeetingLink = *r.MeetingLink
	}
	if r.DoctorNotes != nil {
		a.DoctorNotes = *r.DoctorNotes
	}
}

// Filter narrows List results. Empty fields match everything; set fields
// are combined with logical AND.
type Filter struct {
	PatientID string
	DoctorID  string
	Status    Status
}

// Matches reports whether a satisfies every set predicate.
func (f Filter) Matches(a *Appointment) bool {
	if f.PatientID != "" && a.PatientID != f.PatientID {
		return false
	}
	if f.DoctorID != "" && a.DoctorID != f.DoctorID {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	return true
}
