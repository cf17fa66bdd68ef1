package videocall

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ronakwanjari/medibot-platform/internal/observability/metrics"
	"github.com/ronakwanjari/medibot-platform/pkg/logging"
)

// MeetingLinkRecorder writes the room URL back onto the appointment so
// clients see the link on the booking itself.
type MeetingLinkRecorder interface {
	SetMeetingLink(ctx context.Context, appointmentID, url string) error
}

// ProvisionerConfig carries the knobs the provisioner needs.
type ProvisionerConfig struct {
	PublicBaseURL string
	RoomTTL       time.Duration
	MaxDuration   int // minutes
}

// Provisioner creates and looks up consultation rooms. Creation is
// idempotent per appointment: asking twice returns the same live room.
type Provisioner struct {
	store    RoomStore
	tokens   *TokenIssuer
	sessions SessionSource
	links    MeetingLinkRecorder
	metrics  *metrics.AppointmentMetrics
	logger   *logging.Logger
	cfg      ProvisionerConfig
}

// NewProvisioner wires the provisioner. sessions nil falls back to the
// in-process source; real deployments pass an APISessionClient.
func NewProvisioner(store RoomStore, tokens *TokenIssuer, sessions SessionSource, links MeetingLinkRecorder, m *metrics.AppointmentMetrics, logger *logging.Logger, cfg ProvisionerConfig) *Provisioner {
	if logger == nil {
		logger = logging.Default()
	}
	if sessions == nil {
		sessions = LocalSessionSource{}
	}
	if cfg.RoomTTL <= 0 {
		cfg.RoomTTL = 4 * time.Hour
	}
	if cfg.MaxDuration <= 0 {
		cfg.MaxDuration = 60
	}
	return &Provisioner{store: store, tokens: tokens, sessions: sessions, links: links, metrics: m, logger: logger, cfg: cfg}
}

func (p *Provisioner) validate(req *CreateRequest) error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"appointmentId", req.AppointmentID},
		{"doctorId", req.DoctorID},
		{"patientId", req.PatientID},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", ErrInvalidRequest, strings.Join(missing, ", "))
	}
	return nil
}

func generateRoomID() string {
	b := make([]byte, 4)
	suffix := uuid.NewString()[:7]
	if _, err := rand.Read(b); err == nil {
		suffix = hex.EncodeToString(b)
	}
	return fmt.Sprintf("medibot_%d_%s", time.Now().UnixMilli(), suffix)
}

// EnsureRoom returns the live room for the appointment, provisioning one
// if none exists. The second return reports whether the room already
// existed.
func (p *Provisioner) EnsureRoom(ctx context.Context, req *CreateRequest) (*Room, bool, error) {
	if err := p.validate(req); err != nil {
		return nil, false, err
	}

	start := time.Now()
	existing, err := p.store.GetByAppointment(ctx, req.AppointmentID)
	if err == nil && !existing.Expired(time.Now()) && existing.Status != RoomEnded {
		p.metrics.ObserveRoomProvision("reused", time.Since(start).Seconds())
		return existing, true, nil
	}
	if err != nil && err != ErrNotFound {
		return nil, false, err
	}

	room, err := p.provision(ctx, req)
	if err != nil {
		p.metrics.ObserveRoomProvision("failed", time.Since(start).Seconds())
		return nil, false, err
	}
	p.metrics.ObserveRoomProvision("created", time.Since(start).Seconds())
	return room, false, nil
}

func (p *Provisioner) provision(ctx context.Context, req *CreateRequest) (*Room, error) {
	sessionID, err := p.sessions.CreateSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("videocall: create platform session: %w", err)
	}
	doctorName := req.DoctorName
	if doctorName == "" {
		doctorName = "Doctor"
	}
	patientName := req.PatientName
	if patientName == "" {
		patientName = "Patient"
	}

	doctorToken, err := p.tokens.Issue(sessionID, TokenRoleModerator, req.DoctorID, "doctor", doctorName)
	if err != nil {
		return nil, fmt.Errorf("videocall: issue doctor token: %w", err)
	}
	patientToken, err := p.tokens.Issue(sessionID, TokenRolePublisher, req.PatientID, "patient", patientName)
	if err != nil {
		return nil, fmt.Errorf("videocall: issue patient token: %w", err)
	}

	now := time.Now().UTC()
	roomID := generateRoomID()
	room := &Room{
		RoomID:        roomID,
		SessionID:     sessionID,
		RoomURL:       fmt.Sprintf("%s/video-call/%s", strings.TrimRight(p.cfg.PublicBaseURL, "/"), roomID),
		DoctorToken:   doctorToken,
		PatientToken:  patientToken,
		AppointmentID: req.AppointmentID,
		Status:        RoomCreated,
		Participants: []Participant{
			{ID: req.DoctorID, Name: doctorName, Role: "doctor"},
			{ID: req.PatientID, Name: patientName, Role: "patient"},
		},
		CreatedAt: now,
		ExpiresAt: now.Add(p.cfg.RoomTTL),
		Settings: Settings{
			RecordingEnabled:   true,
			ChatEnabled:        true,
			ScreenShareEnabled: true,
			MaxDuration:        p.cfg.MaxDuration,
		},
	}

	if err := p.store.Save(ctx, room); err != nil {
		return nil, err
	}

	if p.links != nil {
		if err := p.links.SetMeetingLink(ctx, req.AppointmentID, room.RoomURL); err != nil {
			p.logger.Error("failed to record meeting link", "appointment", req.AppointmentID, "error", err)
		}
	}

	p.logger.Info("video call room created", "room", roomID, "session", sessionID, "appointment", req.AppointmentID)
	return room, nil
}

// Get looks up a room by appointment id or room id. Expired rooms are
// flipped to ended and reported with ErrExpired.
func (p *Provisioner) Get(ctx context.Context, appointmentID, roomID string) (*Room, error) {
	var room *Room
	var err error
	switch {
	case appointmentID != "":
		room, err = p.store.GetByAppointment(ctx, appointmentID)
	case roomID != "":
		room, err = p.store.GetByRoomID(ctx, roomID)
	default:
		return nil, fmt.Errorf("either appointmentId or roomId is required")
	}
	if err != nil {
		return nil, err
	}

	if room.Expired(time.Now()) {
		if room.Status != RoomEnded {
			room.Status = RoomEnded
			if saveErr := p.store.Save(ctx, room); saveErr != nil {
				p.logger.Error("failed to mark room ended", "room", room.RoomID, "error", saveErr)
			}
		}
		return nil, ErrExpired
	}
	return room, nil
}
