// Package archive writes terminal appointments to S3 for long-term
// retention. The live store keeps serving reads; the archive is a copy.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ronakwanjari/medibot-platform/internal/appointments"
	"github.com/ronakwanjari/medibot-platform/pkg/logging"
)

// S3API is the subset of the S3 client used by Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Record is the archived object shape.
type Record struct {
	Version     string                    `json:"version"`
	ArchivedAt  time.Time                 `json:"archivedAt"`
	Appointment *appointments.Appointment `json:"appointment"`
}

// ManifestEntry is one JSONL line in the monthly manifest file.
type ManifestEntry struct {
	AppointmentID string `json:"appointmentId"`
	S3Key         string `json:"s3Key"`
	Status        string `json:"status"`
	ArchivedAt    string `json:"archivedAt"`
}

// Store archives appointments to S3.
type Store struct {
	bucket   string
	s3Client S3API
	logger   *logging.Logger
	now      func() time.Time
}

// NewStore creates an archive Store. If bucket is empty, all operations are no-ops.
func NewStore(s3Client S3API, bucket string, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{bucket: bucket, s3Client: s3Client, logger: logger, now: time.Now}
}

// Enabled returns true if archival is configured (bucket is set).
func (s *Store) Enabled() bool {
	return s != nil && s.bucket != "" && s.s3Client != nil
}

// ArchiveAppointment writes the appointment as JSON to S3 and appends to
// the monthly manifest. Call it only for terminal statuses; the store does
// not re-check the lifecycle.
func (s *Store) ArchiveAppointment(ctx context.Context, appt *appointments.Appointment) error {
	if !s.Enabled() {
		return nil
	}
	if appt == nil || appt.ID == "" {
		return fmt.Errorf("archive: missing appointment")
	}

	now := s.now().UTC()
	record := Record{Version: "1.0", ArchivedAt: now, Appointment: appt}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("archive: marshal record: %w", err)
	}

	s3Key := fmt.Sprintf("appointments/v1/by-date/%d/%02d/%02d/%s.json",
		now.Year(), now.Month(), now.Day(), appt.ID)

	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s3Key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("archive: s3 put %s: %w", s3Key, err)
	}

	s.logger.Info("archived appointment to S3",
		"appointmentId", appt.ID,
		"s3_key", s3Key,
		"status", appt.Status,
	)

	entry := ManifestEntry{
		AppointmentID: appt.ID,
		S3Key:         s3Key,
		Status:        string(appt.Status),
		ArchivedAt:    now.Format(time.RFC3339),
	}
	if err := s.appendManifest(ctx, entry); err != nil {
		// The appointment object itself is already archived.
		s.logger.Warn("failed to append archive manifest", "error", err, "appointmentId", appt.ID)
	}

	return nil
}

// appendManifest appends a JSONL line to the monthly manifest file using
// read-modify-write, since S3 does not support append.
func (s *Store) appendManifest(ctx context.Context, entry ManifestEntry) error {
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("archive: marshal manifest entry: %w", err)
	}

	now := s.now().UTC()
	manifestKey := fmt.Sprintf("appointments/v1/manifests/%d-%02d.jsonl", now.Year(), now.Month())

	var existing []byte
	getResp, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(manifestKey),
	})
	if err != nil {
		if !isNotFoundErr(err) {
			return fmt.Errorf("archive: s3 get manifest: %w", err)
		}
	} else {
		existing, _ = io.ReadAll(getResp.Body)
		getResp.Body.Close()
	}

	var buf bytes.Buffer
	if len(existing) > 0 {
		buf.Write(existing)
		if existing[len(existing)-1] != '\n' {
			buf.WriteByte('\n')
		}
	}
	buf.Write(line)
	buf.WriteByte('\n')

	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(manifestKey),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/x-ndjson"),
	})
	if err != nil {
		return fmt.Errorf("archive: s3 put manifest: %w", err)
	}
	return nil
}

// isNotFoundErr checks whether the error is an S3 missing-object error.
func isNotFoundErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "NoSuchKey") || strings.Contains(msg, "404") || strings.Contains(msg, "not found")
}
