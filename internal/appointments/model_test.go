package appointments

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCreateRequest() *CreateRequest {
	return &CreateRequest{
		PatientID:       "user_2abc",
		PatientName:     "Ada Lovelace",
		PatientEmail:    "Ada@Example.com",
		DoctorID:        "doc_1",
		DoctorName:      "Dr. Gregory House",
		DoctorEmail:     "house@example.com",
		AppointmentDate: "2026-09-15",
		AppointmentTime: "14:30",
		Reason:          "Persistent headaches",
		Symptoms:        "headache, nausea",
		ConsultationFee: 150,
	}
}

func TestValidateAcceptsWellFormedRequest(t *testing.T) {
	require.NoError(t, validCreateRequest().Validate())
}

func TestValidateCollectsMissingFields(t *testing.T) {
	req := &CreateRequest{}
	err := req.Validate()
	require.Error(t, err)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "missing required fields", vErr.Reason)
	assert.Contains(t, vErr.Field, "patientName")
	assert.Contains(t, vErr.Field, "patientEmail")
	assert.Contains(t, vErr.Field, "appointmentDate")
	assert.Contains(t, vErr.Field, "appointmentTime")
	assert.Contains(t, vErr.Field, "reason")
}

func TestValidateEmailShape(t *testing.T) {
	tests := []struct {
		email string
		ok    bool
	}{
		{"ada@example.com", true},
		{"a@b.c", true},
		// the shape check does not catch consecutive or trailing dots
		{"ada..lovelace@example.com", true},
		{"ada@example.com.", true},
		{"ada example@example.com", false},
		{"ada@example", false},
		{"@example.com", false},
		{"ada@", false},
	}
	for _, tt := range tests {
		req := validCreateRequest()
		req.PatientEmail = tt.email
		err := req.Validate()
		if tt.ok {
			assert.NoError(t, err, "email %q", tt.email)
		} else {
			assert.Error(t, err, "email %q", tt.email)
		}
	}
}

func TestValidateDateAndTimeAreShapeOnly(t *testing.T) {
	// Out-of-range values with the right shape pass; the format is all
	// that is checked.
	req := validCreateRequest()
	req.AppointmentDate = "2026-13-45"
	req.AppointmentTime = "99:99"
	assert.NoError(t, req.Validate())

	req = validCreateRequest()
	req.AppointmentDate = "15-09-2026"
	assert.Error(t, req.Validate())

	req = validCreateRequest()
	req.AppointmentTime = "9:30"
	assert.Error(t, req.Validate())
}

func TestValidateDoctorNameRequiredWithDoctorID(t *testing.T) {
	req := validCreateRequest()
	req.DoctorName = ""
	err := req.Validate()
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "doctorName", vErr.Field)

	// open request with no doctor at all is fine
	req = validCreateRequest()
	req.DoctorID = ""
	req.DoctorName = ""
	req.DoctorEmail = ""
	assert.NoError(t, req.Validate())
}

func TestValidateRejectsNegativeFeeAndUnknownStatus(t *testing.T) {
	req := validCreateRequest()
	req.ConsultationFee = -1
	assert.Error(t, req.Validate())

	req = validCreateRequest()
	req.Status = Status("archived")
	assert.Error(t, req.Validate())
}

func TestApplyMergesOnlySuppliedFields(t *testing.T) {
	appt := &Appointment{
		Reason:      "initial",
		Symptoms:    "cough",
		DoctorNotes: "old notes",
	}
	notes := ""
	reason := "follow-up"
	req := &UpdateRequest{
		Reason:      &reason,
		DoctorNotes: &notes, // explicit empty clears the field
	}
	req.Apply(appt)

	assert.Equal(t, "follow-up", appt.Reason)
	assert.Equal(t, "", appt.DoctorNotes)
	assert.Equal(t, "cough", appt.Symptoms, "unsupplied field must be untouched")
}

func TestFilterMatches(t *testing.T) {
	appt := &Appointment{PatientID: "p1", DoctorID: "d1", Status: StatusPending}

	assert.True(t, Filter{}.Matches(appt))
	assert.True(t, Filter{PatientID: "p1"}.Matches(appt))
	assert.True(t, Filter{PatientID: "p1", DoctorID: "d1", Status: StatusPending}.Matches(appt))
	assert.False(t, Filter{PatientID: "p2"}.Matches(appt))
	assert.False(t, Filter{PatientID: "p1", Status: StatusApproved}.Matches(appt))
}
