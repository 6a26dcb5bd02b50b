// Package queue defines message payloads exchanged over the message broker.
package queue

// Event type values carried in BookingEvent.Type.
const (
	EventBookingCreated       = "booking.created"
	EventBookingStatusChanged = "booking.status_changed"
)

// BookingEvent is published when a booking is admitted or changes
// status.  It contains enough information for downstream consumers to
// log, notify, or trigger analytics without querying the primary
// database.
type BookingEvent struct {
	Type       string `json:"type"`
	BookingID  string `json:"booking_id"`
	UserID     string `json:"user_id"`
	ServiceID  string `json:"service_id"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Status     string `json:"status"`
	OccurredAt string `json:"occurred_at"`
}
