package appointments

import (
	"context"
	"errors"
	"net"
	"syscall"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
)

var appointmentRowColumns = []string{
	"id", "patient_id", "patient_name", "patient_email", "patient_phone",
	"doctor_id", "doctor_name", "doctor_email", "appointment_date", "appointment_time",
	"reason", "symptoms", "status", "consultation_fee", "meeting_link", "doctor_notes",
	"created_at", "updated_at",
}

func appointmentRow(id string, status Status, created time.Time) *pgxmock.Rows {
	return pgxmock.NewRows(appointmentRowColumns).AddRow(
		id, "p1", "Ada Lovelace", "ada@example.com", "",
		"d1", "Dr. Gregory House", "house@example.com", "2026-09-15", "14:30",
		"Persistent headaches", "", string(status), 150.0, "", "",
		created, created,
	)
}

func TestPostgresCreate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	repo := NewPostgresRepositoryWithDB(mock)
	mock.ExpectExec("INSERT INTO appointments").
		WithArgs(pgxmock.AnyArg(), "user_2abc", "Ada Lovelace", "ada@example.com", "",
			"doc_1", "Dr. Gregory House", "house@example.com", "2026-09-15", "14:30",
			"Persistent headaches", "headache, nausea", "pending", 150.0, "", "",
			pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	appt, err := repo.Create(context.Background(), validCreateRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if appt.Status != StatusPending {
		t.Fatalf("status = %s, want pending", appt.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPostgresCreateSkipsStoreOnValidationFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	repo := NewPostgresRepositoryWithDB(mock)
	req := validCreateRequest()
	req.AppointmentDate = "tomorrow"
	if _, err := repo.Create(context.Background(), req); err == nil {
		t.Fatal("expected validation error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPostgresGetNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	repo := NewPostgresRepositoryWithDB(mock)
	mock.ExpectQuery("SELECT .+ FROM appointments WHERE id =").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(appointmentRowColumns))

	if _, err := repo.Get(context.Background(), "missing"); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPostgresGetBackendUnreachable(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	repo := NewPostgresRepositoryWithDB(mock)
	mock.ExpectQuery("SELECT .+ FROM appointments WHERE id =").
		WithArgs("a1").
		WillReturnError(&net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED})

	if _, err := repo.Get(context.Background(), "a1"); !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("err = %v, want ErrBackendUnavailable", err)
	}
}

func TestPostgresListWithFilters(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	repo := NewPostgresRepositoryWithDB(mock)
	now := time.Now().UTC()
	mock.ExpectQuery("SELECT .+ FROM appointments WHERE 1=1 AND patient_id = \\$1 AND status = \\$2 ORDER BY created_at DESC, id DESC").
		WithArgs("p1", "pending").
		WillReturnRows(appointmentRow("a1", StatusPending, now))

	appts, err := repo.List(context.Background(), Filter{PatientID: "p1", Status: StatusPending})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(appts) != 1 || appts[0].ID != "a1" {
		t.Fatalf("unexpected result: %+v", appts)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPostgresUpdateLocksRowInTransaction(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	repo := NewPostgresRepositoryWithDB(mock)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM appointments WHERE id = \\$1 FOR UPDATE").
		WithArgs("a1").
		WillReturnRows(appointmentRow("a1", StatusPending, now))
	mock.ExpectExec("UPDATE appointments SET").
		WithArgs("a1", "p1", "Ada Lovelace", "ada@example.com", "",
			"d1", "Dr. Gregory House", "house@example.com", "2026-09-15", "14:30",
			"Persistent headaches", "", "approved", 150.0, "", "",
			pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()
	mock.ExpectRollback()

	status := StatusApproved
	appt, err := repo.Update(context.Background(), "a1", &UpdateRequest{Status: &status})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if appt.Status != StatusApproved {
		t.Fatalf("status = %s, want approved", appt.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPostgresDeleteReturnsPriorRecord(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	repo := NewPostgresRepositoryWithDB(mock)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM appointments WHERE id = \\$1 FOR UPDATE").
		WithArgs("a1").
		WillReturnRows(appointmentRow("a1", StatusApproved, now))
	mock.ExpectExec("UPDATE appointments SET status =").
		WithArgs("a1", "cancelled", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()
	mock.ExpectRollback()

	prior, err := repo.Delete(context.Background(), "a1")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if prior.Status != StatusApproved {
		t.Fatalf("prior status = %s, want approved", prior.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPostgresStatsSource(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	source := NewPostgresStatsSource(mock)
	mock.ExpectQuery("SELECT status, COUNT\\(\\*\\) FROM appointments GROUP BY status").
		WillReturnRows(pgxmock.NewRows([]string{"status", "count"}).
			AddRow("pending", 3).
			AddRow("completed", 2))
	mock.ExpectQuery("SELECT COUNT\\(DISTINCT doctor_id\\)").
		WillReturnRows(pgxmock.NewRows([]string{"doctors", "patients"}).AddRow(2, 4))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FILTER \\(WHERE appointment_date = \\$1\\)").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"today", "week", "month"}).AddRow(1, 3, 5))

	stats, err := source.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 5 || stats.Completed != 2 || stats.Doctors != 2 || stats.Patients != 4 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.Today != 1 || stats.ThisWeek != 3 || stats.ThisMonth != 5 {
		t.Fatalf("unexpected period counts: %+v", stats)
	}
}
