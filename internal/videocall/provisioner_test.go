package videocall

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLinkRecorder struct {
	links map[string]string
}

func (f *fakeLinkRecorder) SetMeetingLink(ctx context.Context, appointmentID, url string) error {
	if f.links == nil {
		f.links = map[string]string{}
	}
	f.links[appointmentID] = url
	return nil
}

func testProvisioner(store RoomStore, links MeetingLinkRecorder, ttl time.Duration) *Provisioner {
	return NewProvisioner(store, NewTokenIssuer("test-secret", ttl), nil, links, nil, nil, ProvisionerConfig{
		PublicBaseURL: "https://medibot.example.com",
		RoomTTL:       ttl,
		MaxDuration:   60,
	})
}

func validRoomRequest() *CreateRequest {
	return &CreateRequest{
		AppointmentID: "appt-1",
		DoctorID:      "doc-1",
		PatientID:     "pat-1",
		DoctorName:    "Dr. Sarah Johnson",
		PatientName:   "Ada Lovelace",
	}
}

func TestEnsureRoomProvisions(t *testing.T) {
	links := &fakeLinkRecorder{}
	p := testProvisioner(NewMemoryStore(), links, 4*time.Hour)

	room, existed, err := p.EnsureRoom(context.Background(), validRoomRequest())
	require.NoError(t, err)
	assert.False(t, existed)
	assert.Equal(t, RoomCreated, room.Status)
	assert.Contains(t, room.RoomID, "medibot_")
	assert.Equal(t, "https://medibot.example.com/video-call/"+room.RoomID, room.RoomURL)
	assert.NotEqual(t, room.DoctorToken, room.PatientToken)
	assert.WithinDuration(t, room.CreatedAt.Add(4*time.Hour), room.ExpiresAt, time.Second)
	require.Len(t, room.Participants, 2)
	assert.Equal(t, "doctor", room.Participants[0].Role)
	assert.True(t, room.Settings.RecordingEnabled)
	assert.Equal(t, 60, room.Settings.MaxDuration)
	assert.Equal(t, room.RoomURL, links.links["appt-1"])
}

func TestEnsureRoomIsIdempotentPerAppointment(t *testing.T) {
	p := testProvisioner(NewMemoryStore(), nil, 4*time.Hour)
	ctx := context.Background()

	first, existed, err := p.EnsureRoom(ctx, validRoomRequest())
	require.NoError(t, err)
	require.False(t, existed)

	second, existed, err := p.EnsureRoom(ctx, validRoomRequest())
	require.NoError(t, err)
	assert.True(t, existed)
	assert.Equal(t, first.RoomID, second.RoomID)
	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Equal(t, first.DoctorToken, second.DoctorToken)
}

func TestEnsureRoomValidatesPayload(t *testing.T) {
	p := testProvisioner(NewMemoryStore(), nil, 4*time.Hour)

	req := validRoomRequest()
	req.PatientID = ""
	_, _, err := p.EnsureRoom(context.Background(), req)
	require.ErrorIs(t, err, ErrInvalidRequest)
	assert.Contains(t, err.Error(), "patientId")
}

func TestGetExpiredRoomIsGoneAndMarkedEnded(t *testing.T) {
	store := NewMemoryStore()
	p := testProvisioner(store, nil, time.Millisecond)
	ctx := context.Background()

	room, _, err := p.EnsureRoom(ctx, validRoomRequest())
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = p.Get(ctx, "appt-1", "")
	assert.ErrorIs(t, err, ErrExpired)

	stored, err := store.GetByRoomID(ctx, room.RoomID)
	require.NoError(t, err)
	assert.Equal(t, RoomEnded, stored.Status)
}

func TestEnsureRoomReplacesExpiredRoom(t *testing.T) {
	store := NewMemoryStore()
	p := testProvisioner(store, nil, time.Millisecond)
	ctx := context.Background()

	first, _, err := p.EnsureRoom(ctx, validRoomRequest())
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	second, existed, err := p.EnsureRoom(ctx, validRoomRequest())
	require.NoError(t, err)
	assert.False(t, existed, "an expired room must not be reused")
	assert.NotEqual(t, first.RoomID, second.RoomID)
}

func TestGetRequiresALookupKey(t *testing.T) {
	p := testProvisioner(NewMemoryStore(), nil, 4*time.Hour)
	_, err := p.Get(context.Background(), "", "")
	require.Error(t, err)

	_, err = p.Get(context.Background(), "nope", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTokensCarryRoleAndSession(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 4*time.Hour)
	p := testProvisioner(NewMemoryStore(), nil, 4*time.Hour)

	room, _, err := p.EnsureRoom(context.Background(), validRoomRequest())
	require.NoError(t, err)

	doctor, err := issuer.Verify(room.DoctorToken)
	require.NoError(t, err)
	assert.Equal(t, TokenRoleModerator, doctor.TokenRole)
	assert.Equal(t, room.SessionID, doctor.SessionID)
	assert.Equal(t, "doc-1", doctor.Subject)
	assert.Contains(t, doctor.Data, `"role":"doctor"`)

	patient, err := issuer.Verify(room.PatientToken)
	require.NoError(t, err)
	assert.Equal(t, TokenRolePublisher, patient.TokenRole)
}

func TestTokenVerifyRejectsWrongSecret(t *testing.T) {
	good := NewTokenIssuer("secret-a", time.Hour)
	bad := NewTokenIssuer("secret-b", time.Hour)

	token, err := good.Issue("sess-1", TokenRoleModerator, "u1", "doctor", "Doc")
	require.NoError(t, err)

	_, err = bad.Verify(token)
	assert.Error(t, err)
}
