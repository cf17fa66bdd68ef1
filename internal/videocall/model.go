package videocall

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no room exists for the lookup key
	ErrNotFound = errors.New("video call room not found")

	// ErrExpired is returned when a room exists but its lifetime has
	// elapsed. Surfaced as 410 Gone.
	ErrExpired = errors.New("video call room has expired")

	// ErrInvalidRequest wraps provisioning payload problems
	ErrInvalidRequest = errors.New("invalid video call request")

	// ErrPlatformUnavailable is returned when the external video platform
	// cannot supply a session. Surfaced as 502 Bad Gateway.
	ErrPlatformUnavailable = errors.New("video platform unavailable")
)

// Room status values.
const (
	RoomCreated = "created"
	RoomActive  = "active"
	RoomEnded   = "ended"
)

// Participant is one expected attendee of a consultation room.
type Participant struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Role     string `json:"role"` // "doctor" or "patient"
	JoinedAt string `json:"joinedAt,omitempty"`
	LeftAt   string `json:"leftAt,omitempty"`
}

// Settings are the per-room feature toggles.
type Settings struct {
	RecordingEnabled   bool `json:"recordingEnabled"`
	ChatEnabled        bool `json:"chatEnabled"`
	ScreenShareEnabled bool `json:"screenShareEnabled"`
	MaxDuration        int  `json:"maxDuration"` // minutes
}

// Room is a provisioned video consultation room. One room per
// appointment; tokens are role-scoped and share the room's lifetime.
type Room struct {
	RoomID        string        `json:"roomId"`
	SessionID     string        `json:"sessionId"`
	RoomURL       string        `json:"roomUrl"`
	DoctorToken   string        `json:"doctorToken"`
	PatientToken  string        `json:"patientToken"`
	AppointmentID string        `json:"appointmentId"`
	Status        string        `json:"status"`
	Participants  []Participant `json:"participants"`
	CreatedAt     time.Time     `json:"createdAt"`
	ExpiresAt     time.Time     `json:"expiresAt"`
	Settings      Settings      `json:"settings"`
}

// Expired reports whether the room's lifetime has elapsed.
func (r *Room) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// CreateRequest is the POST /video-calls payload.
type CreateRequest struct {
	AppointmentID string `json:"appointmentId"`
	DoctorID      string `json:"doctorId"`
	PatientID     string `json:"patientId"`
	DoctorName    string `json:"doctorName"`
	PatientName   string `json:"patientName"`
}
