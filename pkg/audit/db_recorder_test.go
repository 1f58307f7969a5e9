package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRecorder(t *testing.T) (*DBRecorder, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS audit_events").
		WillReturnResult(sqlmock.NewResult(0, 0))

	r, err := NewDBRecorder(db)
	require.NoError(t, err)
	return r, mock
}

func TestNewDBRecorderRequiresDB(t *testing.T) {
	_, err := NewDBRecorder(nil)
	assert.Error(t, err)
}

func TestDBRecorderRecord(t *testing.T) {
	r, mock := newMockRecorder(t)

	mock.ExpectQuery("INSERT INTO audit_events").
		WithArgs(
			sqlmock.AnyArg(), "authz.decision",
			"u-1", "api_key", "req-1", "10.0.0.1",
			"proj-1", "write", "denied", "insufficient_role", "",
			"",
		).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	event := &Event{
		Timestamp: time.Now().UTC(),
		EventType: EventTypeDecision,
		UserID:    "u-1",
		Method:    "api_key",
		RequestID: "req-1",
		IPAddress: "10.0.0.1",
		ProjectID: "proj-1",
		Action:    "write",
		Outcome:   "denied",
		Reason:    "insufficient_role",
	}

	require.NoError(t, r.Record(context.Background(), event))
	assert.Equal(t, int64(42), event.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBRecorderRecordFailure(t *testing.T) {
	r, mock := newMockRecorder(t)

	mock.ExpectQuery("INSERT INTO audit_events").
		WillReturnError(errors.New("connection reset"))

	err := r.Record(context.Background(), &Event{Outcome: "allowed"})
	assert.Error(t, err)
}

func TestDBRecorderList(t *testing.T) {
	r, mock := newMockRecorder(t)

	rows := sqlmock.NewRows([]string{
		"id", "timestamp", "event_type",
		"user_id", "method", "request_id", "ip_address",
		"project_id", "action", "outcome", "reason", "granted_by",
		"message",
	}).AddRow(
		int64(1), time.Now(), "authz.decision",
		"u-1", "api_key", "req-1", "10.0.0.1",
		"proj-1", "read", "allowed", "", "member",
		"",
	)

	mock.ExpectQuery("FROM audit_events").
		WithArgs("u-1", "denied", DefaultQueryLimit).
		WillReturnRows(rows)

	events, err := r.List(context.Background(), Filter{UserID: "u-1", Outcome: "denied"})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "u-1", events[0].UserID)
	assert.Equal(t, "member", events[0].GrantedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBRecorderDeleteEventsBefore(t *testing.T) {
	r, mock := newMockRecorder(t)

	cutoff := time.Now().Add(-90 * 24 * time.Hour)
	mock.ExpectExec("DELETE FROM audit_events").
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 17))

	deleted, err := r.DeleteEventsBefore(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(17), deleted)
}
