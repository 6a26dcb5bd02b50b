package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/booking-platform/internal/model"
)

const deadlockMsg = "Error 1213 (40001): Deadlock found when trying to get lock; try restarting transaction"

func newMockRepo(t *testing.T) (*BookingRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewBookingRepo(db), mock
}

func bookingRow(id string, start, end time.Time) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "user_id", "service_id", "start_time", "end_time", "status", "created_at", "updated_at",
	}).AddRow(id, "user-1", "svc-1", start, end, model.StatusPending, now, now)
}

func TestCreateConflictFreeOverlapReturnsConflict(t *testing.T) {
	repo, mock := newMockRepo(t)
	start := time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM bookings").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("existing-id"))
	mock.ExpectRollback()

	b := &model.Booking{UserID: "user-1", ServiceID: "svc-1", StartTime: start, EndTime: end}
	err := repo.CreateConflictFree(context.Background(), b)
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Two identical-window admissions deadlock on their shared gap lock and
// InnoDB rolls one back with error 1213.  The loser must end up with
// ErrConflict, not the raw driver error: the rerun's overlap scan sees
// the winner's committed row.
func TestCreateConflictFreeDeadlockLoserGetsConflict(t *testing.T) {
	repo, mock := newMockRepo(t)
	start := time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	// first attempt: empty scan, insert rolled back as deadlock victim
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM bookings").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnError(errors.New(deadlockMsg))
	mock.ExpectRollback()

	// rerun: the winner's row is committed now, scan reports it
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM bookings").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("winner-id"))
	mock.ExpectRollback()

	b := &model.Booking{UserID: "user-1", ServiceID: "svc-1", StartTime: start, EndTime: end}
	err := repo.CreateConflictFree(context.Background(), b)
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateConflictFreeOtherErrorsPassThrough(t *testing.T) {
	repo, mock := newMockRepo(t)
	start := time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM bookings").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnError(errors.New("Error 1406: Data too long for column 'status'"))
	mock.ExpectRollback()

	b := &model.Booking{UserID: "user-1", ServiceID: "svc-1", StartTime: start, EndTime: end}
	err := repo.CreateConflictFree(context.Background(), b)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateConflictFreeSuccess(t *testing.T) {
	repo, mock := newMockRepo(t)
	start := time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM bookings").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT id, user_id, service_id").
		WillReturnRows(bookingRow("new-id", start, end))
	mock.ExpectCommit()

	b := &model.Booking{UserID: "user-1", ServiceID: "svc-1", StartTime: start, EndTime: end}
	err := repo.CreateConflictFree(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, "new-id", b.ID)
	assert.Equal(t, model.StatusPending, b.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRescheduleDeadlockLoserGetsConflict(t *testing.T) {
	repo, mock := newMockRepo(t)
	start := time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM bookings WHERE id").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("bk-1"))
	mock.ExpectQuery("SELECT id FROM bookings").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("UPDATE bookings SET start_time").
		WillReturnError(errors.New(deadlockMsg))
	mock.ExpectRollback()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM bookings WHERE id").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("bk-1"))
	mock.ExpectQuery("SELECT id FROM bookings").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("winner-id"))
	mock.ExpectRollback()

	_, err := repo.Reschedule(context.Background(), "bk-1", "svc-1", start, end)
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsLockConflict(t *testing.T) {
	assert.True(t, isLockConflict(errors.New(deadlockMsg)))
	assert.True(t, isLockConflict(errors.New("Error 1205: Lock wait timeout exceeded; try restarting transaction")))
	assert.False(t, isLockConflict(nil))
	assert.False(t, isLockConflict(errors.New("Error 1062: Duplicate entry")))
}
