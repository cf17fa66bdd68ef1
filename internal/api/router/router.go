package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ronakwanjari/medibot-platform/internal/appointments"
	"github.com/ronakwanjari/medibot-platform/internal/doctors"
	httpmiddleware "github.com/ronakwanjari/medibot-platform/internal/http/middleware"
	"github.com/ronakwanjari/medibot-platform/internal/videocall"
	"github.com/ronakwanjari/medibot-platform/internal/vitals"
	"github.com/ronakwanjari/medibot-platform/internal/webhooks"
	"github.com/ronakwanjari/medibot-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger *logging.Logger

	AppointmentsHandler *appointments.Handler
	StatsHandler        *appointments.StatsHandler
	DoctorsHandler      *doctors.Handler
	VitalsHandler       *vitals.Handler
	VideoCallHandler    *videocall.Handler
	Presence            *videocall.Presence
	AuthWebhook         *webhooks.AuthProviderHandler
	MetricsHandler      http.Handler

	// JWTSecret enables session token parsing; empty disables it.
	JWTSecret          string
	CORSAllowedOrigins []string

	// Webhook rate limit, requests per second per IP. Zero disables.
	WebhookRateLimit float64
	WebhookBurst     int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	if cfg.JWTSecret != "" {
		r.Use(httpmiddleware.SessionAuth(cfg.JWTSecret))
	}

	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.AppointmentsHandler != nil {
		r.Route("/appointments", func(r chi.Router) {
			if cfg.StatsHandler != nil {
				r.Get("/stats", cfg.StatsHandler.Get)
			}
			r.Post("/", cfg.AppointmentsHandler.Create)
			r.Get("/", cfg.AppointmentsHandler.List)
			r.Get("/{id}", cfg.AppointmentsHandler.GetByID)
			r.Put("/{id}", cfg.AppointmentsHandler.Update)
			r.Delete("/{id}", cfg.AppointmentsHandler.Delete)
		})
	}

	if cfg.DoctorsHandler != nil {
		r.Route("/doctors", func(r chi.Router) {
			r.Get("/", cfg.DoctorsHandler.List)
			r.Get("/{id}", cfg.DoctorsHandler.GetByID)
		})
	}

	if cfg.VitalsHandler != nil {
		r.Route("/vitals", func(r chi.Router) {
			r.Post("/", cfg.VitalsHandler.Save)
			r.Get("/", cfg.VitalsHandler.List)
		})
	}

	if cfg.VideoCallHandler != nil {
		r.Route("/video-calls", func(r chi.Router) {
			if cfg.Presence != nil {
				r.Get("/ws", cfg.Presence.HandleWebSocket)
			}
			r.Post("/", cfg.VideoCallHandler.Create)
			r.Get("/", cfg.VideoCallHandler.Get)
		})
	}

	if cfg.AuthWebhook != nil {
		if cfg.WebhookRateLimit > 0 {
			burst := cfg.WebhookBurst
			if burst <= 0 {
				burst = int(cfg.WebhookRateLimit) + 1
			}
			r.With(httpmiddleware.RateLimit(cfg.WebhookRateLimit, burst)).
				Post("/webhooks/auth-provider", cfg.AuthWebhook.Handle)
		} else {
			r.Post("/webhooks/auth-provider", cfg.AuthWebhook.Handle)
		}
	}

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
