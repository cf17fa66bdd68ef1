// Package bootstrap wires configuration into concrete backends so the api
// and worker binaries share one composition path.
package bootstrap

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/ronakwanjari/medibot-platform/internal/appointments"
	"github.com/ronakwanjari/medibot-platform/internal/archive"
	appconfig "github.com/ronakwanjari/medibot-platform/internal/config"
	"github.com/ronakwanjari/medibot-platform/internal/doctors"
	"github.com/ronakwanjari/medibot-platform/internal/notify"
	"github.com/ronakwanjari/medibot-platform/internal/users"
	"github.com/ronakwanjari/medibot-platform/internal/videocall"
	"github.com/ronakwanjari/medibot-platform/internal/vitals"
	"github.com/ronakwanjari/medibot-platform/pkg/logging"
)

// Stores bundles the persistence layer the api server runs on. Close
// releases the underlying pools.
type Stores struct {
	Appointments appointments.Repository
	Stats        appointments.StatsSource
	Vitals       vitals.Repository
	Users        users.Repository
	Doctors      doctors.Repository
	Audit        *appointments.AuditLog

	pool  *pgxpool.Pool
	sqlDB *sql.DB
}

// Close shuts down pooled connections. Safe on a zero value.
func (s *Stores) Close() {
	if s == nil {
		return
	}
	if s.sqlDB != nil {
		_ = s.sqlDB.Close()
	}
	if s.pool != nil {
		s.pool.Close()
	}
}

// BuildStores selects the persistence backend from STORE_BACKEND. The
// choice is made once at startup; there is no runtime fallback between
// backends.
func BuildStores(ctx context.Context, cfg *appconfig.Config, dynamoClient *dynamodb.Client, logger *logging.Logger) (*Stores, error) {
	if logger == nil {
		logger = logging.Default()
	}

	switch cfg.StoreBackend {
	case "", "memory":
		repo := appointments.NewInMemoryRepository()
		docRepo := doctors.NewInMemoryRepository()
		if err := doctors.Seed(ctx, docRepo); err != nil {
			return nil, fmt.Errorf("bootstrap: seeding doctors: %w", err)
		}
		logger.Info("using in-memory stores")
		return &Stores{
			Appointments: repo,
			Stats:        appointments.NewRepoStatsSource(repo),
			Vitals:       vitals.NewInMemoryRepository(),
			Users:        users.NewInMemoryRepository(),
			Doctors:      docRepo,
		}, nil

	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("bootstrap: STORE_BACKEND=postgres requires DATABASE_URL")
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: connecting to postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("bootstrap: pinging postgres: %w", err)
		}
		sqlDB := stdlib.OpenDBFromPool(pool)
		logger.Info("using postgres stores")
		return &Stores{
			Appointments: appointments.NewPostgresRepository(pool),
			Stats:        appointments.NewPostgresStatsSource(pool),
			Vitals:       vitals.NewPostgresRepository(pool),
			Users:        users.NewPostgresRepository(pool),
			Doctors:      doctors.NewPostgresRepository(sqlDB),
			Audit:        appointments.NewAuditLog(sqlDB),
			pool:         pool,
			sqlDB:        sqlDB,
		}, nil

	case "dynamo":
		if dynamoClient == nil {
			return nil, fmt.Errorf("bootstrap: STORE_BACKEND=dynamo requires an AWS client")
		}
		docRepo := doctors.NewInMemoryRepository()
		if err := doctors.Seed(ctx, docRepo); err != nil {
			return nil, fmt.Errorf("bootstrap: seeding doctors: %w", err)
		}
		// Vitals and the audit trail are relational; on the dynamo
		// backend they stay in memory and best-effort respectively.
		logger.Info("using dynamo stores", "appointmentTable", cfg.AppointmentTable, "userTable", cfg.UserTable)
		repo := appointments.NewDynamoRepository(dynamoClient, cfg.AppointmentTable, logger)
		return &Stores{
			Appointments: repo,
			Stats:        appointments.NewRepoStatsSource(repo),
			Vitals:       vitals.NewInMemoryRepository(),
			Users:        users.NewDynamoRepository(dynamoClient, cfg.UserTable),
			Doctors:      docRepo,
		}, nil

	default:
		return nil, fmt.Errorf("bootstrap: unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
}

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		return nil
	}
	return client
}

// BuildRoomStore prefers Redis for video room state so rooms survive
// restarts; without Redis an in-process store is used.
func BuildRoomStore(redisClient *redis.Client, cfg *appconfig.Config, logger *logging.Logger) videocall.RoomStore {
	if redisClient != nil {
		return videocall.NewRedisStore(redisClient, cfg.VideoRoomTTL)
	}
	if logger != nil {
		logger.Warn("redis not configured, video rooms held in memory")
	}
	return videocall.NewMemoryStore()
}

// BuildSessionSource returns the external video platform client when
// VIDEO_API_BASE_URL is set; otherwise sessions are minted in process.
func BuildSessionSource(cfg *appconfig.Config, logger *logging.Logger) videocall.SessionSource {
	if client := videocall.NewAPISessionClient(cfg.VideoAPIBaseURL, cfg.VideoAPIKey, nil); client != nil {
		return client
	}
	if logger != nil {
		logger.Warn("video platform not configured, minting sessions locally")
	}
	return videocall.LocalSessionSource{}
}

// BuildEmailSender selects the delivery provider from EMAIL_PROVIDER.
func BuildEmailSender(cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) notify.EmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	switch cfg.EmailProvider {
	case "sendgrid":
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
		if sender != nil {
			return sender
		}
		logger.Warn("sendgrid selected but not configured, falling back to stub sender")
	case "ses":
		sender := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger)
		if sender != nil {
			return sender
		}
	}
	return notify.NewStubEmailSender(logger)
}

// BuildNotifier returns the notifier the api dispatches to: an SQS
// publisher when a queue is configured (the worker sends the emails), or
// the inline service otherwise.
func BuildNotifier(cfg *appconfig.Config, awsCfg aws.Config, sender notify.EmailSender, logger *logging.Logger) appointments.Notifier {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.NotifyQueueURL != "" {
		sqsClient := sqs.NewFromConfig(awsCfg)
		logger.Info("notifications dispatched via queue", "queueUrl", cfg.NotifyQueueURL)
		return notify.NewQueuePublisher(notify.NewSQSQueue(sqsClient, cfg.NotifyQueueURL))
	}
	return notify.NewService(sender, logger)
}

// BuildArchiveStore returns the S3 archive, a no-op when ARCHIVE_BUCKET is
// unset.
func BuildArchiveStore(cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) *archive.Store {
	if cfg.ArchiveBucket == "" {
		return archive.NewStore(nil, "", logger)
	}
	return archive.NewStore(s3.NewFromConfig(awsCfg), cfg.ArchiveBucket, logger)
}

// MeetingLinkRecorder adapts the appointments repository to the videocall
// provisioner so the room URL lands back on the appointment record.
type MeetingLinkRecorder struct {
	Repo appointments.Repository
}

func (r MeetingLinkRecorder) SetMeetingLink(ctx context.Context, appointmentID, url string) error {
	_, err := r.Repo.Update(ctx, appointmentID, &appointments.UpdateRequest{MeetingLink: &url})
	return err
}
