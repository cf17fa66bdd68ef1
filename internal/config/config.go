package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string

	// Persistence backend: "memory", "postgres" or "dynamo".
	// Selected once at startup; the server never falls back between
	// backends at runtime.
	StoreBackend     string
	DatabaseURL      string
	AppointmentTable string
	UserTable        string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Notification delivery
	EmailProvider     string // "sendgrid", "ses" or "stub"
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SESFromEmail      string
	SESFromName       string
	NotifyQueueURL    string
	NotifyTimeout     time.Duration
	WorkerCount       int

	// Video platform
	VideoAPIBaseURL  string
	VideoAPIKey      string
	VideoAPISecret   string
	VideoRoomTTL     time.Duration
	VideoMaxDuration int

	// Auth
	JWTSecret         string
	AuthWebhookSecret string

	// Archive of terminal appointments
	ArchiveBucket string

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		StoreBackend:     strings.ToLower(strings.TrimSpace(getEnv("STORE_BACKEND", "memory"))),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		AppointmentTable: getEnv("APPOINTMENT_TABLE", "appointments"),
		UserTable:        getEnv("USER_TABLE", "users"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		EmailProvider:     strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "stub"))),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "MediBot"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),
		SESFromName:       getEnv("SES_FROM_NAME", "MediBot"),
		NotifyQueueURL:    getEnv("NOTIFY_QUEUE_URL", ""),
		NotifyTimeout:     getEnvAsDuration("NOTIFY_TIMEOUT", 5*time.Second),
		WorkerCount:       getEnvAsInt("WORKER_COUNT", 2),

		VideoAPIBaseURL:  getEnv("VIDEO_API_BASE_URL", ""),
		VideoAPIKey:      getEnv("VIDEO_API_KEY", ""),
		VideoAPISecret:   getEnv("VIDEO_API_SECRET", ""),
		VideoRoomTTL:     getEnvAsDuration("VIDEO_ROOM_TTL", 4*time.Hour),
		VideoMaxDuration: getEnvAsInt("VIDEO_MAX_DURATION_MINS", 60),

		JWTSecret:         getEnv("JWT_SECRET", ""),
		AuthWebhookSecret: getEnv("AUTH_WEBHOOK_SECRET", ""),

		ArchiveBucket: getEnv("ARCHIVE_BUCKET", ""),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
