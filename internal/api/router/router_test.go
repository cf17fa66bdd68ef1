package router

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ronakwanjari/medibot-platform/internal/appointments"
	"github.com/ronakwanjari/medibot-platform/internal/doctors"
	"github.com/ronakwanjari/medibot-platform/internal/users"
	"github.com/ronakwanjari/medibot-platform/internal/videocall"
	"github.com/ronakwanjari/medibot-platform/internal/vitals"
	"github.com/ronakwanjari/medibot-platform/internal/webhooks"
)

const webhookSecret = "router-test-secret"

func newTestRouter(t *testing.T, cfg func(*Config)) http.Handler {
	t.Helper()

	apptRepo := appointments.NewInMemoryRepository()
	docRepo := doctors.NewInMemoryRepository()
	require.NoError(t, doctors.Seed(t.Context(), docRepo))

	rooms := videocall.NewMemoryStore()
	provisioner := videocall.NewProvisioner(rooms, videocall.NewTokenIssuer("test-secret", time.Hour), nil, nil, nil, nil, videocall.ProvisionerConfig{
		PublicBaseURL: "https://medibot.example.com",
	})

	c := &Config{
		AppointmentsHandler: appointments.NewHandler(apptRepo, nil, nil, nil, nil, 0),
		StatsHandler:        appointments.NewStatsHandler(appointments.NewRepoStatsSource(apptRepo), nil),
		DoctorsHandler:      doctors.NewHandler(docRepo, nil),
		VitalsHandler:       vitals.NewHandler(vitals.NewInMemoryRepository(), nil),
		VideoCallHandler:    videocall.NewHandler(provisioner, nil),
		Presence:            videocall.NewPresence(rooms, nil),
		AuthWebhook:         webhooks.NewAuthProviderHandler(webhookSecret, users.NewInMemoryRepository(), nil),
	}
	if cfg != nil {
		cfg(c)
	}
	return New(c)
}

func TestHealthRoute(t *testing.T) {
	r := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, 200, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAppointmentRoutes(t *testing.T) {
	r := newTestRouter(t, nil)

	body := `{"patientId":"user_2abc","patientName":"Jane Doe","patientEmail":"jane@example.com","doctorId":"doc_1","doctorName":"Dr. Gregory House","appointmentDate":"2026-09-15","appointmentTime":"14:30","reason":"Checkup","consultationFee":150}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/appointments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)
	require.Equal(t, 201, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/appointments?patientId=user_2abc", nil))
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":1`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/appointments/stats", nil))
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":1`)
}

func TestDoctorsRoute(t *testing.T) {
	r := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/doctors?specialty=cardiology", nil))
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "Michael Chen")
}

func TestVitalsRoutes(t *testing.T) {
	r := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/vitals", strings.NewReader(`{"patientId":"user_2abc","heartRate":72}`))
	r.ServeHTTP(rec, req)
	require.Equal(t, 200, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/vitals?patientId=user_2abc", nil))
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":1`)
}

func TestVideoCallRoute(t *testing.T) {
	r := newTestRouter(t, nil)

	body := `{"appointmentId":"appt-1","doctorId":"doc-1","patientId":"pat-1","doctorName":"Dr. House","patientName":"Jane"}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("POST", "/video-calls", strings.NewReader(body)))
	require.Equal(t, 200, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/video-calls?appointmentId=appt-1", nil))
	assert.Equal(t, 200, rec.Code)
}

func TestWebhookRouteVerifiesSignature(t *testing.T) {
	r := newTestRouter(t, nil)

	body := `{"type":"user.created","data":{"id":"user_2abc","email_addresses":[{"email_address":"jane@example.com"}]}}`
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	fmt.Fprintf(mac, "msg_1.%s.%s", timestamp, body)

	req := httptest.NewRequest("POST", "/webhooks/auth-provider", strings.NewReader(body))
	req.Header.Set("svix-id", "msg_1")
	req.Header.Set("svix-timestamp", timestamp)
	req.Header.Set("svix-signature", "v1,"+base64.StdEncoding.EncodeToString(mac.Sum(nil)))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, 200, rec.Code, rec.Body.String())

	// Tampered body fails
	req = httptest.NewRequest("POST", "/webhooks/auth-provider", strings.NewReader(body+" "))
	req.Header.Set("svix-id", "msg_1")
	req.Header.Set("svix-timestamp", timestamp)
	req.Header.Set("svix-signature", "v1,"+base64.StdEncoding.EncodeToString(mac.Sum(nil)))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, 400, rec.Code)
}

func TestWebhookRateLimit(t *testing.T) {
	r := newTestRouter(t, func(c *Config) {
		c.WebhookRateLimit = 1
		c.WebhookBurst = 1
	})

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest("POST", "/webhooks/auth-provider", strings.NewReader("{}")))
	// Missing signature headers, but the limiter runs first so the request counts.
	assert.Equal(t, 400, first.Code)

	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest("POST", "/webhooks/auth-provider", strings.NewReader("{}")))
	assert.Equal(t, 429, second.Code)
}

func TestUnknownRoute(t *testing.T) {
	r := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/nope", nil))
	assert.Equal(t, 404, rec.Code)
}
