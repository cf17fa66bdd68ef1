package vitals

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgxDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresRepository stores readings in the vitals table.
type PostgresRepository struct {
	db pgxDB
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("vitals: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(db pgxDB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Save(ctx context.Context, req *SaveRequest) (*Reading, error) {
	reading := newReading(req)
	_, err := r.db.Exec(ctx, `
		INSERT INTO vitals (id, patient_id, heart_rate, spo2, temperature, bmi, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		reading.ID, reading.PatientID, reading.HeartRate, reading.SpO2,
		reading.Temperature, reading.BMI, reading.RecordedAt)
	if err != nil {
		return nil, fmt.Errorf("vitals: insert: %w", err)
	}
	return reading, nil
}

func (r *PostgresRepository) List(ctx context.Context, patientID string, limit int) ([]*Reading, error) {
	query := `
		SELECT id, patient_id, heart_rate, spo2, temperature, bmi, recorded_at
		FROM vitals WHERE patient_id = $1
		ORDER BY recorded_at DESC, id DESC`
	args := []any{patientID}
	if limit > 0 {
		args = append(args, limit)
		query += " LIMIT $2"
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("vitals: list: %w", err)
	}
	defer rows.Close()

	out := []*Reading{}
	for rows.Next() {
		var reading Reading
		if err := rows.Scan(&reading.ID, &reading.PatientID, &reading.HeartRate,
			&reading.SpO2, &reading.Temperature, &reading.BMI, &reading.RecordedAt); err != nil {
			return nil, fmt.Errorf("vitals: scan: %w", err)
		}
		out = append(out, &reading)
	}
	return out, rows.Err()
}
