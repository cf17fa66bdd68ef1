package appointments

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ronakwanjari/medibot-platform/pkg/logging"
)

// Stats is an aggregate snapshot of the appointment book.
type Stats struct {
	Total     int            `json:"total"`
	ByStatus  map[string]int `json:"byStatus"`
	Doctors   int            `json:"doctors"`
	Patients  int            `json:"patients"`
	Completed int            `json:"completed"`
	Today     int            `json:"today"`
	ThisWeek  int            `json:"thisWeek"`
	ThisMonth int            `json:"thisMonth"`
}

// periodBounds computes the date strings the period counters compare
// against. Appointment dates are YYYY-MM-DD, so string comparison orders
// them correctly. The week runs Monday through Sunday.
func periodBounds(now time.Time) (today, weekStart, weekEnd, monthPrefix string) {
	now = now.UTC()
	today = now.Format("2006-01-02")
	offset := (int(now.Weekday()) + 6) % 7
	monday := now.AddDate(0, 0, -offset)
	weekStart = monday.Format("2006-01-02")
	weekEnd = monday.AddDate(0, 0, 7).Format("2006-01-02")
	monthPrefix = now.Format("2006-01")
	return
}

// StatsSource computes appointment statistics.
type StatsSource interface {
	Stats(ctx context.Context) (*Stats, error)
}

// RepoStatsSource derives stats by scanning a Repository. It works with
// every backend and is the default when no SQL aggregate is available.
type RepoStatsSource struct {
	repo Repository
}

func NewRepoStatsSource(repo Repository) *RepoStatsSource {
	return &RepoStatsSource{repo: repo}
}

func (s *RepoStatsSource) Stats(ctx context.Context) (*Stats, error) {
	appts, err := s.repo.List(ctx, Filter{})
	if err != nil {
		return nil, fmt.Errorf("appointments: computing stats: %w", err)
	}

	stats := &Stats{ByStatus: map[string]int{}}
	doctors := map[string]struct{}{}
	patients := map[string]struct{}{}
	today, weekStart, weekEnd, monthPrefix := periodBounds(time.Now())
	for _, a := range appts {
		stats.Total++
		stats.ByStatus[string(a.Status)]++
		if a.DoctorID != "" {
			doctors[a.DoctorID] = struct{}{}
		}
		if a.PatientID != "" {
			patients[a.PatientID] = struct{}{}
		}
		if a.AppointmentDate == today {
			stats.Today++
		}
		if a.AppointmentDate >= weekStart && a.AppointmentDate < weekEnd {
			stats.ThisWeek++
		}
		if strings.HasPrefix(a.AppointmentDate, monthPrefix) {
			stats.ThisMonth++
		}
	}
	stats.Doctors = len(doctors)
	stats.Patients = len(patients)
	stats.Completed = stats.ByStatus[string(StatusCompleted)]
	return stats, nil
}

// PostgresStatsSource computes stats with a single aggregate query instead
// of pulling every row over the wire.
type PostgresStatsSource struct {
	db pgxDB
}

func NewPostgresStatsSource(db pgxDB) *PostgresStatsSource {
	return &PostgresStatsSource{db: db}
}

func (s *PostgresStatsSource) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{ByStatus: map[string]int{}}

	rows, err := s.db.Query(ctx, `SELECT status, COUNT(*) FROM appointments GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("appointments: querying status counts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("appointments: scanning status count: %w", err)
		}
		stats.ByStatus[status] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: reading status counts: %w", err)
	}

	row := s.db.QueryRow(ctx, `SELECT COUNT(DISTINCT doctor_id) FILTER (WHERE doctor_id <> ''), COUNT(DISTINCT patient_id) FROM appointments`)
	if err := row.Scan(&stats.Doctors, &stats.Patients); err != nil {
		return nil, fmt.Errorf("appointments: scanning participant counts: %w", err)
	}

	today, weekStart, weekEnd, monthPrefix := periodBounds(time.Now())
	row = s.db.QueryRow(ctx,
		`SELECT COUNT(*) FILTER (WHERE appointment_date = $1), COUNT(*) FILTER (WHERE appointment_date >= $2 AND appointment_date < $3), COUNT(*) FILTER (WHERE appointment_date LIKE $4) FROM appointments`,
		today, weekStart, weekEnd, monthPrefix+"%")
	if err := row.Scan(&stats.Today, &stats.ThisWeek, &stats.ThisMonth); err != nil {
		return nil, fmt.Errorf("appointments: scanning period counts: %w", err)
	}

	stats.Completed = stats.ByStatus[string(StatusCompleted)]
	return stats, nil
}

// StatsHandler serves GET /appointments/stats.
type StatsHandler struct {
	source StatsSource
	logger *logging.Logger
}

func NewStatsHandler(source StatsSource, logger *logging.Logger) *StatsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &StatsHandler{source: source, logger: logger}
}

func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	stats, err := h.source.Stats(r.Context())
	if err != nil {
		h.logger.Error("failed to compute appointment stats", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute statistics")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"stats":   stats,
	})
}
