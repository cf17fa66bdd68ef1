package videocall

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ronakwanjari/medibot-platform/pkg/logging"
)

// Handler serves video call room provisioning and lookup.
type Handler struct {
	provisioner *Provisioner
	logger      *logging.Logger
}

func NewHandler(provisioner *Provisioner, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{provisioner: provisioner, logger: logger}
}

// roomSummary is the creation response shape: enough to join, nothing
// about the other party's token lifetime internals.
type roomSummary struct {
	RoomID       string    `json:"roomId"`
	SessionID    string    `json:"sessionId"`
	RoomURL      string    `json:"roomUrl"`
	DoctorToken  string    `json:"doctorToken"`
	PatientToken string    `json:"patientToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
	Settings     Settings  `json:"settings"`
}

// Create handles POST /video-calls.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON in request body")
		return
	}

	room, existed, err := h.provisioner.EnsureRoom(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrInvalidRequest) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to provision video call room", "appointment", req.AppointmentID, "error", err)
		writeError(w, http.StatusBadGateway, "Failed to create video call room")
		return
	}

	message := "Video call room created successfully"
	if existed {
		message = "Video call room already exists"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": message,
		"videoCall": roomSummary{
			RoomID:       room.RoomID,
			SessionID:    room.SessionID,
			RoomURL:      room.RoomURL,
			DoctorToken:  room.DoctorToken,
			PatientToken: room.PatientToken,
			ExpiresAt:    room.ExpiresAt,
			Settings:     room.Settings,
		},
	})
}

// Get handles GET /video-calls?appointmentId=...|roomId=...
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	appointmentID := q.Get("appointmentId")
	roomID := q.Get("roomId")
	if appointmentID == "" && roomID == "" {
		writeError(w, http.StatusBadRequest, "Either appointmentId or roomId is required")
		return
	}

	room, err := h.provisioner.Get(r.Context(), appointmentID, roomID)
	switch {
	case err == ErrNotFound:
		writeError(w, http.StatusNotFound, "Video call room not found")
		return
	case err == ErrExpired:
		writeError(w, http.StatusGone, "Video call room has expired")
		return
	case err != nil:
		h.logger.Error("failed to fetch video call room", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch video call room")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"videoCall": room,
	})
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
