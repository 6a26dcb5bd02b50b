package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/booking-platform/internal/model"
)

// ErrBookingNotFound indicates that a booking was not located in the DB.
// Non-admin lookups are narrowed by owner, so a booking owned by someone
// else surfaces as this same error: existence is not leaked to non-owners.
var ErrBookingNotFound = errors.New("booking not found")

// BookingRepo manages persistence for bookings.  The conflict check and
// the insert/update it guards always run inside a single transaction:
// the overlap scan uses SELECT ... FOR UPDATE, so InnoDB's next-key
// locks on the (service_id, start_time) index make two concurrent
// admissions for overlapping windows serialize instead of both
// observing "no conflict".
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo constructs a BookingRepo with the given DB handle.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = "id, user_id, service_id, start_time, end_time, status, created_at, updated_at"

func scanBooking(row interface{ Scan(...interface{}) error }) (*model.Booking, error) {
	var b model.Booking
	err := row.Scan(&b.ID, &b.UserID, &b.ServiceID, &b.StartTime, &b.EndTime, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.StartTime = b.StartTime.UTC()
	b.EndTime = b.EndTime.UTC()
	return &b, nil
}

// hasOverlapTx reports whether any PENDING or CONFIRMED booking of the
// service intersects the half-open window [start, end), excluding the
// booking with excludeID when non-empty.  The locking read keeps the
// answer stable until the surrounding transaction commits.
func hasOverlapTx(ctx context.Context, tx *sql.Tx, serviceID, excludeID string, start, end time.Time) (bool, error) {
	q := `SELECT id FROM bookings
          WHERE service_id = ? AND status IN ('PENDING','CONFIRMED')
            AND start_time < ? AND end_time > ?`
	args := []interface{}{serviceID, end, start}
	if excludeID != "" {
		q += " AND id <> ?"
		args = append(args, excludeID)
	}
	q += " LIMIT 1 FOR UPDATE"

	var id string
	err := tx.QueryRowContext(ctx, q, args...).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateConflictFree inserts a new PENDING booking if and only if no
// blocking booking overlaps its window.  On success the generated UUID
// and DB-default fields are populated on the given model.  Returns
// ErrConflict when an overlap exists; the caller sees the same outcome
// whether the overlapping row pre-existed or was admitted by a
// concurrent request that committed first.
//
// When two identical-window admissions race, neither scan sees the
// other's uncommitted row but their inserts deadlock on the shared gap
// lock and InnoDB rolls one back.  The loser reruns the transaction:
// the second scan sees the winner's committed row and reports
// ErrConflict instead of the raw lock error.
func (r *BookingRepo) CreateConflictFree(ctx context.Context, b *model.Booking) error {
	err := r.createConflictFree(ctx, b)
	if isLockConflict(err) {
		err = r.createConflictFree(ctx, b)
	}
	return err
}

func (r *BookingRepo) createConflictFree(ctx context.Context, b *model.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	overlap, err := hasOverlapTx(ctx, tx, b.ServiceID, "", b.StartTime, b.EndTime)
	if err != nil {
		return err
	}
	if overlap {
		return ErrConflict
	}

	b.ID = uuid.NewString()
	b.Status = model.StatusPending
	const ins = `INSERT INTO bookings (id, user_id, service_id, start_time, end_time, status) VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, ins, b.ID, b.UserID, b.ServiceID, b.StartTime, b.EndTime, b.Status); err != nil {
		return err
	}

	const sel = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	got, err := scanBooking(tx.QueryRowContext(ctx, sel, b.ID))
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	*b = *got
	return nil
}

// Reschedule moves a booking to a new window if no other blocking
// booking of the same service overlaps it.  The booking's own row is
// excluded from the scan so a slot may shift within itself.  Returns
// ErrConflict on overlap and ErrBookingNotFound when the row vanished
// between the caller's visibility check and this transaction.  Lock
// errors from a racing admission rerun once, as in CreateConflictFree.
func (r *BookingRepo) Reschedule(ctx context.Context, id, serviceID string, start, end time.Time) (*model.Booking, error) {
	b, err := r.reschedule(ctx, id, serviceID, start, end)
	if isLockConflict(err) {
		b, err = r.reschedule(ctx, id, serviceID, start, end)
	}
	return b, err
}

func (r *BookingRepo) reschedule(ctx context.Context, id, serviceID string, start, end time.Time) (*model.Booking, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Lock the booking row itself first so concurrent reschedules of
	// the same booking serialize.
	var cur string
	err = tx.QueryRowContext(ctx, "SELECT id FROM bookings WHERE id=? FOR UPDATE", id).Scan(&cur)
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}

	overlap, err := hasOverlapTx(ctx, tx, serviceID, id, start, end)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, ErrConflict
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE bookings SET start_time=?, end_time=?, updated_at=NOW() WHERE id=?",
		start, end, id); err != nil {
		return nil, err
	}

	const sel = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	got, err := scanBooking(tx.QueryRowContext(ctx, sel, id))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return got, nil
}

// GetVisible retrieves a booking by id.  For non-admin callers the
// predicate is narrowed by owner, so bookings belonging to other users
// are indistinguishable from missing ones.
func (r *BookingRepo) GetVisible(ctx context.Context, id, callerID string, admin bool) (*model.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	args := []interface{}{id}
	if !admin {
		q += " AND user_id = ?"
		args = append(args, callerID)
	}
	b, err := scanBooking(r.db.QueryRowContext(ctx, q, args...))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	return b, err
}

// List returns all bookings for admins and only the caller's own
// bookings otherwise, in insertion order.
func (r *BookingRepo) List(ctx context.Context, callerID string, admin bool) ([]model.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings`
	var args []interface{}
	if !admin {
		q += " WHERE user_id = ?"
		args = append(args, callerID)
	}
	q += " ORDER BY created_at"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateStatus sets the booking's status.  Transition validity is
// checked by the caller against the state machine before this runs.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id, status string) (*model.Booking, error) {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE bookings SET status=?, updated_at=NOW() WHERE id=?", status, id); err != nil {
		return nil, err
	}
	const sel = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	b, err := scanBooking(r.db.QueryRowContext(ctx, sel, id))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	return b, err
}

// Delete removes the booking row.  This is a hard delete, not a
// status transition.
func (r *BookingRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM bookings WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrBookingNotFound
	}
	return nil
}
