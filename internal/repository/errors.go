// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// string matching on driver errors.
package repository

import (
	"errors"
	"strings"
)

// ErrConflict is returned when an operation cannot be performed
// because of conflicting state, such as deactivating a service that
// still has pending or confirmed bookings, or inserting a booking
// whose window overlaps an existing one. Handlers should translate
// this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// isLockConflict reports whether err is an InnoDB deadlock (1213) or
// lock wait timeout (1205).  Both arise when two transactions race for
// the same index range: the gap locks taken by their locking reads are
// mutually compatible, so the inserts block on each other and InnoDB
// rolls one transaction back.  Callers rerun the transaction once so
// the loser's scan observes the winner's committed row.
func isLockConflict(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "1213") || strings.Contains(s, "1205")
}
