package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/booking-platform/internal/model"
)

// ErrReviewNotFound indicates that a review was not located in the DB.
var ErrReviewNotFound = errors.New("review not found")

// ErrReviewExists is returned when the target booking already has a
// review; the reviews.booking_id UNIQUE constraint enforces the same
// rule at the storage layer.
var ErrReviewExists = errors.New("review already exists for this booking")

// ReviewRepo manages persistence for reviews.  Reviews hang off
// bookings, so listing by service or by user joins through the
// bookings table.
type ReviewRepo struct {
	db *sql.DB
}

// NewReviewRepo constructs a ReviewRepo with the given DB handle.
func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{db: db} }

const reviewColumns = "id, booking_id, rating, comment, created_at, updated_at"

func scanReview(row interface{ Scan(...interface{}) error }) (*model.Review, error) {
	var rv model.Review
	var comment sql.NullString
	err := row.Scan(&rv.ID, &rv.BookingID, &rv.Rating, &comment, &rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	rv.Comment = comment.String
	return &rv, nil
}

// Create inserts a review for a booking.  A duplicate booking_id maps
// to ErrReviewExists via the unique key, which also closes the race
// between two concurrent reviews of the same booking.
func (r *ReviewRepo) Create(ctx context.Context, rv *model.Review) error {
	rv.ID = uuid.NewString()
	const q = `INSERT INTO reviews (id, booking_id, rating, comment) VALUES (?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, rv.ID, rv.BookingID, rv.Rating, rv.Comment); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrReviewExists
		}
		return err
	}
	const sel = `SELECT ` + reviewColumns + ` FROM reviews WHERE id = ?`
	got, err := scanReview(r.db.QueryRowContext(ctx, sel, rv.ID))
	if err != nil {
		return err
	}
	*rv = *got
	return nil
}

// GetByID retrieves a review by id alone; ownership checks happen in
// the handler against the underlying booking.
func (r *ReviewRepo) GetByID(ctx context.Context, id string) (*model.Review, error) {
	const q = `SELECT ` + reviewColumns + ` FROM reviews WHERE id = ?`
	rv, err := scanReview(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrReviewNotFound
	}
	return rv, err
}

// ExistsForBooking reports whether the booking already has a review.
func (r *ReviewRepo) ExistsForBooking(ctx context.Context, bookingID string) (bool, error) {
	var id string
	err := r.db.QueryRowContext(ctx,
		"SELECT id FROM reviews WHERE booking_id=? LIMIT 1", bookingID).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Update applies a partial update of rating and/or comment.
func (r *ReviewRepo) Update(ctx context.Context, id string, rating *int, comment *string) (*model.Review, error) {
	sets := make([]string, 0, 2)
	args := make([]interface{}, 0, 3)
	if rating != nil {
		sets = append(sets, "rating=?")
		args = append(args, *rating)
	}
	if comment != nil {
		sets = append(sets, "comment=?")
		args = append(args, *comment)
	}
	if len(sets) > 0 {
		args = append(args, id)
		q := "UPDATE reviews SET " + strings.Join(sets, ", ") + ", updated_at=NOW() WHERE id=?"
		if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes the review row.
func (r *ReviewRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM reviews WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrReviewNotFound
	}
	return nil
}

// ListByService returns all reviews whose booking references the given
// service.  Reviews are public data; no ownership filter applies.
func (r *ReviewRepo) ListByService(ctx context.Context, serviceID string) ([]model.Review, error) {
	const q = `SELECT r.id, r.booking_id, r.rating, r.comment, r.created_at, r.updated_at
               FROM reviews r
               JOIN bookings b ON b.id = r.booking_id
               WHERE b.service_id = ?
               ORDER BY r.created_at`
	return r.list(ctx, q, serviceID)
}

// ListByUser returns all reviews written against the given user's
// bookings.
func (r *ReviewRepo) ListByUser(ctx context.Context, userID string) ([]model.Review, error) {
	const q = `SELECT r.id, r.booking_id, r.rating, r.comment, r.created_at, r.updated_at
               FROM reviews r
               JOIN bookings b ON b.id = r.booking_id
               WHERE b.user_id = ?
               ORDER BY r.created_at`
	return r.list(ctx, q, userID)
}

func (r *ReviewRepo) list(ctx context.Context, q string, arg interface{}) ([]model.Review, error) {
	rows, err := r.db.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []model.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
