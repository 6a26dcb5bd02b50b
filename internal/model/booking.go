package model

import "time"

// Booking status values.  PENDING is the initial state; CONFIRMED
// bookings still occupy their slot; CANCELLED and COMPLETED are
// terminal.  Only PENDING and CONFIRMED bookings participate in
// overlap checks.
const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusCancelled = "CANCELLED"
	StatusCompleted = "COMPLETED"
)

// Booking records a user's reservation of a service slot.  Start and
// end times are stored normalized to UTC and interpreted as the
// half-open interval [StartTime, EndTime): back-to-back bookings
// sharing a boundary instant do not conflict.
//
// Fields:
//  ID        – UUID primary key.
//  UserID    – owner of the booking.
//  ServiceID – service being booked.
//  StartTime – slot start (UTC).
//  EndTime   – slot end (UTC), strictly after StartTime.
//  Status    – one of the Status* constants above.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Booking struct {
	ID        string    // bookings.id (CHAR(36) UUID)
	UserID    string    // bookings.user_id
	ServiceID string    // bookings.service_id
	StartTime time.Time // bookings.start_time (UTC)
	EndTime   time.Time // bookings.end_time (UTC)
	Status    string    // bookings.status
	CreatedAt time.Time // bookings.created_at
	UpdatedAt time.Time // bookings.updated_at
}
