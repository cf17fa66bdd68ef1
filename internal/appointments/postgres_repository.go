package appointments

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const appointmentColumns = `id, patient_id, patient_name, patient_email, patient_phone,
	doctor_id, doctor_name, doctor_email, appointment_date, appointment_time,
	reason, symptoms, status, consultation_fee, meeting_link, doctor_notes,
	created_at, updated_at`

// pgxDB is the subset of pgxpool.Pool used by the repository. Satisfied by
// pgxmock for tests.
type pgxDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresRepository stores appointments in the relational database.
type PostgresRepository struct {
	db pgxDB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(db pgxDB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new row.
func (r *PostgresRepository) Create(ctx context.Context, req *CreateRequest) (*Appointment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	appt := newFromRequest(req)
	query := `
		INSERT INTO appointments (` + appointmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	if _, err := r.db.Exec(ctx, query,
		appt.ID, appt.PatientID, appt.PatientName, appt.PatientEmail, appt.PatientPhone,
		appt.DoctorID, appt.DoctorName, appt.DoctorEmail, appt.AppointmentDate, appt.AppointmentTime,
		appt.Reason, appt.Symptoms, string(appt.Status), appt.ConsultationFee, appt.MeetingLink,
		appt.DoctorNotes, appt.CreatedAt, appt.UpdatedAt,
	); err != nil {
		return nil, wrapStoreErr("insert failed", err)
	}
	return appt, nil
}

// Get fetches an appointment by id.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id)
	appt, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, wrapStoreErr("select failed", err)
	}
	return appt, nil
}

// List returns rows matching the filter, newest-created-first.
func (r *PostgresRepository) List(ctx context.Context, filter Filter) ([]*Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE 1=1`
	var args []any
	if filter.PatientID != "" {
		args = append(args, filter.PatientID)
		query += fmt.Sprintf(" AND patient_id = $%d", len(args))
	}
	if filter.DoctorID != "" {
		args = append(args, filter.DoctorID)
		query += fmt.Sprintf(" AND doctor_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapStoreErr("list failed", err)
	}
	defer rows.Close()

	out := []*Appointment{}
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, wrapStoreErr("scan failed", err)
		}
		out = append(out, appt)
	}
	return out, rows.Err()
}

// Update merges inside a transaction: the row is locked, merged in memory
// and written back whole, so concurrent updates serialize on the row lock
// rather than interleaving field-by-field.
func (r *PostgresRepository) Update(ctx context.Context, id string, req *UpdateRequest) (*Appointment, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, wrapStoreErr("begin update", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = $1 FOR UPDATE`, id)
	appt, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, wrapStoreErr("lock row", err)
	}

	req.Apply(appt)
	appt.UpdatedAt = nowUTC()

	if _, err := tx.Exec(ctx, `
		UPDATE appointments SET
			patient_id = $2, patient_name = $3, patient_email = $4, patient_phone = $5,
			doctor_id = $6, doctor_name = $7, doctor_email = $8,
			appointment_date = $9, appointment_time = $10, reason = $11, symptoms = $12,
			status = $13, consultation_fee = $14, meeting_link = $15, doctor_notes = $16,
			updated_at = $17
		WHERE id = $1`,
		appt.ID, appt.PatientID, appt.PatientName, appt.PatientEmail, appt.PatientPhone,
		appt.DoctorID, appt.DoctorName, appt.DoctorEmail,
		appt.AppointmentDate, appt.AppointmentTime, appt.Reason, appt.Symptoms,
		string(appt.Status), appt.ConsultationFee, appt.MeetingLink, appt.DoctorNotes,
		appt.UpdatedAt,
	); err != nil {
		return nil, wrapStoreErr("update row", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, wrapStoreErr("commit update", err)
	}
	return appt, nil
}

// Delete soft-cancels the row and returns its prior state.
func (r *PostgresRepository) Delete(ctx context.Context, id string) (*Appointment, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, wrapStoreErr("begin delete", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = $1 FOR UPDATE`, id)
	prior, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, wrapStoreErr("lock row", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE appointments SET status = $2, updated_at = $3 WHERE id = $1`,
		id, string(StatusCancelled), nowUTC(),
	); err != nil {
		return nil, wrapStoreErr("cancel row", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, wrapStoreErr("commit delete", err)
	}
	return prior, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var status string
	if err := row.Scan(
		&a.ID, &a.PatientID, &a.PatientName, &a.PatientEmail, &a.PatientPhone,
		&a.DoctorID, &a.DoctorName, &a.DoctorEmail, &a.AppointmentDate, &a.AppointmentTime,
		&a.Reason, &a.Symptoms, &status, &a.ConsultationFee, &a.MeetingLink, &a.DoctorNotes,
		&a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	a.Status = Status(status)
	return &a, nil
}
