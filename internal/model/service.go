package model

import "time"

// Service represents a bookable offering in the catalog.  Services
// have a fixed slot duration; every booking made against a service
// must match that duration within a small tolerance.  Services are
// never hard-deleted once booked: deactivation flips IsActive and
// hides the service from admission while keeping history intact.
//
// Fields:
//  ID              – UUID primary key.
//  Title           – short display name.
//  Description     – free-form description (nullable in the DB).
//  Price           – price per booking, positive, two decimal places.
//  DurationMinutes – fixed slot length in minutes, positive.
//  IsActive        – whether the service accepts new bookings.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Service struct {
	ID              string    // services.id (CHAR(36) UUID)
	Title           string    // services.title
	Description     string    // services.description
	Price           float64   // services.price (DECIMAL(10,2))
	DurationMinutes int       // services.duration_minutes
	IsActive        bool      // services.is_active
	CreatedAt       time.Time // services.created_at
	UpdatedAt       time.Time // services.updated_at
}
