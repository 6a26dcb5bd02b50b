package model

import "time"

// Review is feedback attached to exactly one completed booking.  The
// booking_id column carries a UNIQUE constraint so a booking can
// never accumulate more than one review.
//
// Fields:
//  ID        – UUID primary key.
//  BookingID – the reviewed booking (unique).
//  Rating    – integer rating between 1 and 5 inclusive.
//  Comment   – optional free-form text.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Review struct {
	ID        string    // reviews.id (CHAR(36) UUID)
	BookingID string    // reviews.booking_id
	Rating    int       // reviews.rating (1..5)
	Comment   string    // reviews.comment
	CreatedAt time.Time // reviews.created_at
	UpdatedAt time.Time // reviews.updated_at
}
