package booking

import "github.com/iliyamo/booking-platform/internal/model"

// transitions is the booking state machine.  PENDING may be
// confirmed or cancelled, CONFIRMED may be completed or cancelled,
// and the terminal states admit nothing.
var transitions = map[string]map[string]bool{
	model.StatusPending: {
		model.StatusConfirmed: true,
		model.StatusCancelled: true,
	},
	model.StatusConfirmed: {
		model.StatusCompleted: true,
		model.StatusCancelled: true,
	},
}

// ValidStatus reports whether s is one of the four booking states.
func ValidStatus(s string) bool {
	switch s {
	case model.StatusPending, model.StatusConfirmed, model.StatusCancelled, model.StatusCompleted:
		return true
	}
	return false
}

// CanTransition reports whether a booking in state from may move to
// state to.  Setting the same state again is treated as a no-op and
// allowed.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	return transitions[from][to]
}

// IsTerminal reports whether no transition leads out of the state.
func IsTerminal(s string) bool {
	return s == model.StatusCancelled || s == model.StatusCompleted
}

// Blocks reports whether a booking in the given state occupies its
// slot for conflict purposes.  Cancelled and completed bookings
// never block new admissions.
func Blocks(s string) bool {
	return s == model.StatusPending || s == model.StatusConfirmed
}
