package doctors

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// PostgresRepository stores the directory in the doctors table.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const doctorColumns = `id, clerk_id, name, specialty, email, phone, license_number,
	experience, education, about, languages, availability,
	consultation_fee, rating, total_reviews, image, status`

// List returns active doctors. Specialty and search filtering happens in
// SQL so the directory can grow past what a client-side scan tolerates.
func (r *PostgresRepository) List(ctx context.Context, filter Filter) ([]*Doctor, error) {
	query := `SELECT ` + doctorColumns + ` FROM doctors WHERE status = 'active'`
	var args []any
	if filter.Specialty != "" && filter.Specialty != "all" {
		args = append(args, "%"+filter.Specialty+"%")
		query += fmt.Sprintf(" AND specialty ILIKE $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND (name ILIKE $%d OR specialty ILIKE $%d)", len(args), len(args))
	}
	query += " ORDER BY id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("doctors: list: %w", err)
	}
	defer rows.Close()

	out := []*Doctor{}
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, fmt.Errorf("doctors: scan: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*Doctor, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+doctorColumns+` FROM doctors WHERE id = $1`, id)
	d, err := scanDoctor(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("doctors: get: %w", err)
	}
	return d, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, d *Doctor) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO doctors (`+doctorColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		ON CONFLICT (id) DO UPDATE SET
		    clerk_id=EXCLUDED.clerk_id, name=EXCLUDED.name, specialty=EXCLUDED.specialty,
		    email=EXCLUDED.email, phone=EXCLUDED.phone, license_number=EXCLUDED.license_number,
		    experience=EXCLUDED.experience, education=EXCLUDED.education, about=EXCLUDED.about,
		    languages=EXCLUDED.languages, availability=EXCLUDED.availability,
		    consultation_fee=EXCLUDED.consultation_fee, rating=EXCLUDED.rating,
		    total_reviews=EXCLUDED.total_reviews, image=EXCLUDED.image, status=EXCLUDED.status`,
		d.ID, d.ClerkID, d.Name, d.Specialty, d.Email, d.Phone, d.LicenseNumber,
		d.Experience, d.Education, d.About, pq.Array(d.Languages), pq.Array(d.Availability),
		d.ConsultationFee, d.Rating, d.TotalReviews, d.Image, d.Status)
	if err != nil {
		return fmt.Errorf("doctors: upsert: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDoctor(row rowScanner) (*Doctor, error) {
	var d Doctor
	if err := row.Scan(&d.ID, &d.ClerkID, &d.Name, &d.Specialty, &d.Email, &d.Phone,
		&d.LicenseNumber, &d.Experience, &d.Education, &d.About,
		pq.Array(&d.Languages), pq.Array(&d.Availability),
		&d.ConsultationFee, &d.Rating, &d.TotalReviews, &d.Image, &d.Status); err != nil {
		return nil, err
	}
	if d.Languages == nil {
		d.Languages = []string{}
	}
	if d.Availability == nil {
		d.Availability = []string{}
	}
	return &d, nil
}
