package videocall

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVideoRouter(ttl time.Duration) (*Handler, *MemoryStore) {
	store := NewMemoryStore()
	h := NewHandler(testProvisioner(store, nil, ttl), nil)
	return h, store
}

func postRoom(t *testing.T, h *Handler, req *CreateRequest) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/video-calls", bytes.NewReader(body)))
	return rec
}

func TestCreateRoomEndpoint(t *testing.T) {
	h, _ := newVideoRouter(4 * time.Hour)

	rec := postRoom(t, h, validRoomRequest())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Success   bool        `json:"success"`
		Message   string      `json:"message"`
		VideoCall roomSummary `json:"videoCall"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Video call room created successfully", resp.Message)
	assert.NotEmpty(t, resp.VideoCall.DoctorToken)
	assert.NotEmpty(t, resp.VideoCall.PatientToken)

	// same appointment again: the existing room comes back
	rec = postRoom(t, h, validRoomRequest())
	require.Equal(t, http.StatusOK, rec.Code)
	var again struct {
		Message   string      `json:"message"`
		VideoCall roomSummary `json:"videoCall"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &again))
	assert.Equal(t, "Video call room already exists", again.Message)
	assert.Equal(t, resp.VideoCall.RoomID, again.VideoCall.RoomID)
}

func TestCreateRoomMissingFields(t *testing.T) {
	h, _ := newVideoRouter(4 * time.Hour)

	req := validRoomRequest()
	req.DoctorID = ""
	rec := postRoom(t, h, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "doctorId")
}

func TestGetRoomEndpoint(t *testing.T) {
	h, _ := newVideoRouter(4 * time.Hour)

	rec := postRoom(t, h, validRoomRequest())
	require.Equal(t, http.StatusOK, rec.Code)
	var created struct {
		VideoCall roomSummary `json:"videoCall"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/video-calls?roomId="+created.VideoCall.RoomID, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success   bool  `json:"success"`
		VideoCall *Room `json:"videoCall"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "appt-1", resp.VideoCall.AppointmentID)

	rec = httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/video-calls", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/video-calls?appointmentId=unknown", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetExpiredRoomEndpointReturnsGone(t *testing.T) {
	h, _ := newVideoRouter(time.Millisecond)

	rec := postRoom(t, h, validRoomRequest())
	require.Equal(t, http.StatusOK, rec.Code)

	time.Sleep(5 * time.Millisecond)

	rec = httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/video-calls?appointmentId=appt-1", nil))
	assert.Equal(t, http.StatusGone, rec.Code)
	assert.Contains(t, rec.Body.String(), "expired")
}
