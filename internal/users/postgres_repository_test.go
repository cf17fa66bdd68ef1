package users

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
)

func TestPostgresUpsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	repo := NewPostgresRepository(mock)
	mock.ExpectExec("INSERT INTO users").
		WithArgs("user_1", "jane@example.com", "Jane", "Doe", "", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Upsert(context.Background(), &User{
		ID:        "user_1",
		Email:     "jane@example.com",
		FirstName: "Jane",
		LastName:  "Doe",
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPostgresUpsertWritesRoleChange(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	repo := NewPostgresRepository(mock)
	mock.ExpectExec(`role = CASE WHEN \$5 = '' THEN users\.role ELSE \$5 END`).
		WithArgs("user_1", "jane@example.com", "Jane", "Doe", "doctor", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Upsert(context.Background(), &User{
		ID:        "user_1",
		Email:     "jane@example.com",
		FirstName: "Jane",
		LastName:  "Doe",
		Role:      RoleDoctor,
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPostgresGet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	now := time.Now().UTC()
	repo := NewPostgresRepository(mock)
	mock.ExpectQuery("SELECT id, email, first_name, last_name, role, created_at, updated_at FROM users WHERE id = \\$1").
		WithArgs("user_1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "first_name", "last_name", "role", "created_at", "updated_at"}).
			AddRow("user_1", "jane@example.com", "Jane", "Doe", "doctor", now, now))

	got, err := repo.Get(context.Background(), "user_1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Role != RoleDoctor {
		t.Errorf("role = %q", got.Role)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPostgresGetMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	repo := NewPostgresRepository(mock)
	mock.ExpectQuery("SELECT id, email, first_name, last_name, role").
		WithArgs("nope").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "first_name", "last_name", "role", "created_at", "updated_at"}))

	if _, err := repo.Get(context.Background(), "nope"); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPostgresDeleteMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	repo := NewPostgresRepository(mock)
	mock.ExpectExec("DELETE FROM users WHERE id = \\$1").
		WithArgs("nope").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	if err := repo.Delete(context.Background(), "nope"); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
