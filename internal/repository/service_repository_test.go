package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockServiceRepo(t *testing.T) (*ServiceRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewServiceRepo(db), mock
}

func TestDeactivateBlockedByActiveBookings(t *testing.T) {
	repo, mock := newMockServiceRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT is_active FROM services").
		WillReturnRows(sqlmock.NewRows([]string{"is_active"}).AddRow(true))
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectRollback()

	err := repo.Deactivate(context.Background(), "svc-1")
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A booking admitted concurrently can deadlock the deactivation's
// locking reads; the rerun then counts the committed booking and
// reports the conflict instead of the raw lock error.
func TestDeactivateDeadlockRerunsAsConflict(t *testing.T) {
	repo, mock := newMockServiceRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT is_active FROM services").
		WillReturnRows(sqlmock.NewRows([]string{"is_active"}).AddRow(true))
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("UPDATE services SET is_active").
		WillReturnError(errors.New(deadlockMsg))
	mock.ExpectRollback()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT is_active FROM services").
		WillReturnRows(sqlmock.NewRows([]string{"is_active"}).AddRow(true))
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	err := repo.Deactivate(context.Background(), "svc-1")
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeactivateUnknownService(t *testing.T) {
	repo, mock := newMockServiceRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT is_active FROM services").
		WillReturnRows(sqlmock.NewRows([]string{"is_active"}))
	mock.ExpectRollback()

	err := repo.Deactivate(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrServiceNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
