package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type pgxDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository persists users in the users table.
type PostgresRepository struct {
	db pgxDB
}

func NewPostgresRepository(db pgxDB) *PostgresRepository {
	if db == nil {
		panic("users: db cannot be nil")
	}
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, user *User) error {
	if user == nil || user.ID == "" {
		return errors.New("users: missing user id")
	}
	now := time.Now().UTC()
	// An empty incoming role defaults to patient on insert and keeps the
	// stored role on update, matching the memory repository.
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (id, email, first_name, last_name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, CASE WHEN $5 = '' THEN 'patient' ELSE $5 END, $6, $6)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			role = CASE WHEN $5 = '' THEN users.role ELSE $5 END,
			updated_at = EXCLUDED.updated_at`,
		user.ID, user.Email, user.FirstName, user.LastName, string(user.Role), now)
	if err != nil {
		return fmt.Errorf("users: upserting user: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*User, error) {
	var user User
	var role string
	err := r.db.QueryRow(ctx, `
		SELECT id, email, first_name, last_name, role, created_at, updated_at
		FROM users WHERE id = $1`, id).
		Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName, &role, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("users: fetching user: %w", err)
	}
	user.Role = Role(role)
	return &user, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("users: deleting user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
