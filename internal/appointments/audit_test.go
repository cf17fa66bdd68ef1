package appointments

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditLogRecordTransition(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO appointment_audit").
		WithArgs(sqlmock.AnyArg(), "appt-1", "pending", "approved", "doctor", "looks routine", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	log := NewAuditLog(db)
	err = log.RecordTransition(context.Background(), "appt-1", StatusPending, StatusApproved, RoleDoctor, "looks routine")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditLogHistory(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "appointment_id", "from_status", "to_status", "actor", "note", "created_at"}).
		AddRow("e1", "appt-1", "pending", "approved", "doctor", "", now).
		AddRow("e2", "appt-1", "approved", "completed", "doctor", "all done", now.Add(time.Hour))

	mock.ExpectQuery("SELECT id, appointment_id, from_status, to_status, actor, note, created_at").
		WithArgs("appt-1").
		WillReturnRows(rows)

	log := NewAuditLog(db)
	entries, err := log.History(context.Background(), "appt-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "approved", entries[0].ToStatus)
	assert.Equal(t, "all done", entries[1].Note)
	require.NoError(t, mock.ExpectationsWereMet())
}
