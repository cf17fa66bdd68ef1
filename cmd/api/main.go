package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ronakwanjari/medibot-platform/cmd/mainconfig"
	"github.com/ronakwanjari/medibot-platform/internal/api/router"
	"github.com/ronakwanjari/medibot-platform/internal/app/bootstrap"
	"github.com/ronakwanjari/medibot-platform/internal/appointments"
	appconfig "github.com/ronakwanjari/medibot-platform/internal/config"
	"github.com/ronakwanjari/medibot-platform/internal/doctors"
	"github.com/ronakwanjari/medibot-platform/internal/observability/metrics"
	"github.com/ronakwanjari/medibot-platform/internal/videocall"
	"github.com/ronakwanjari/medibot-platform/internal/vitals"
	"github.com/ronakwanjari/medibot-platform/internal/webhooks"
	"github.com/ronakwanjari/medibot-platform/pkg/logging"
)

func main() {
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting medibot-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"backend", cfg.StoreBackend,
	)

	ctx := context.Background()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	var dynamoClient *dynamodb.Client
	if cfg.StoreBackend == "dynamo" {
		dynamoClient = dynamodb.NewFromConfig(awsCfg)
	}

	stores, err := bootstrap.BuildStores(ctx, cfg, dynamoClient, logger)
	if err != nil {
		logger.Error("failed to build stores", "error", err)
		os.Exit(1)
	}
	defer stores.Close()

	metricsHandler, apptMetrics := setupMetrics()

	sender := bootstrap.BuildEmailSender(cfg, awsCfg, logger)
	notifier := bootstrap.BuildNotifier(cfg, awsCfg, sender, logger)
	archiveStore := bootstrap.BuildArchiveStore(cfg, awsCfg, logger)

	var recorder appointments.TransitionRecorder
	if stores.Audit != nil {
		recorder = stores.Audit
	}
	apptHandler := appointments.NewHandler(stores.Appointments, notifier, recorder, apptMetrics, logger, cfg.NotifyTimeout)
	if archiveStore.Enabled() {
		apptHandler.SetArchiver(archiveStore)
	}

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	roomStore := bootstrap.BuildRoomStore(redisClient, cfg, logger)
	tokenIssuer := videocall.NewTokenIssuer(firstNonEmpty(cfg.VideoAPISecret, cfg.JWTSecret), cfg.VideoRoomTTL)
	sessionSource := bootstrap.BuildSessionSource(cfg, logger)
	provisioner := videocall.NewProvisioner(roomStore, tokenIssuer, sessionSource,
		bootstrap.MeetingLinkRecorder{Repo: stores.Appointments},
		apptMetrics, logger, videocall.ProvisionerConfig{
			PublicBaseURL: cfg.PublicBaseURL,
			RoomTTL:       cfg.VideoRoomTTL,
			MaxDuration:   cfg.VideoMaxDuration,
		})

	routerCfg := &router.Config{
		Logger:              logger,
		AppointmentsHandler: apptHandler,
		StatsHandler:        appointments.NewStatsHandler(stores.Stats, logger),
		DoctorsHandler:      doctors.NewHandler(stores.Doctors, logger),
		VitalsHandler:       vitals.NewHandler(stores.Vitals, logger),
		VideoCallHandler:    videocall.NewHandler(provisioner, logger),
		Presence:            videocall.NewPresence(roomStore, logger),
		MetricsHandler:      metricsHandler,
		JWTSecret:           cfg.JWTSecret,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		WebhookRateLimit:    10,
		WebhookBurst:        20,
	}
	if cfg.AuthWebhookSecret != "" {
		routerCfg.AuthWebhook = webhooks.NewAuthProviderHandler(cfg.AuthWebhookSecret, stores.Users, logger)
	} else {
		logger.Warn("AUTH_WEBHOOK_SECRET not set, auth webhook disabled")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.New(routerCfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// setupMetrics builds the Prometheus registry and the appointment metrics
// exported on /metrics.
func setupMetrics() (http.Handler, *metrics.AppointmentMetrics) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	m := metrics.NewAppointmentMetrics(registry)
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), m
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
