package booking

import (
	"time"

	"github.com/wadhahbr/room-reservation/internal/model"
)

// The admission policy is a set of pure checks over already-loaded rows.
// The ledger runs them inside a transaction while holding the room row
// lock, so a passing check cannot be invalidated by a concurrent booking
// before the write lands.

// validateSlotBounds rejects ad-hoc slot intervals that are empty or
// inverted.  Equal bounds are invalid: a slot must span real time.
func validateSlotBounds(start, end time.Time) error {
	if start.IsZero() || end.IsZero() || !start.Before(end) {
		return ErrInvalidSlotBounds
	}
	return nil
}

// validatePartySize bounds the requested headcount to 1..MaxPartySize
// before any room is consulted.
func validatePartySize(n uint32) error {
	if n < 1 || n > model.MaxPartySize {
		return ErrInvalidPartySize
	}
	return nil
}

// checkAdmission applies the room-level rules: the room must be
// available and must hold the party.  Order matters only for which error
// the caller reports first; availability is checked before capacity to
// match the booking flow.
func checkAdmission(room *model.Room, partySize uint32) error {
	if room.Status != model.RoomAvailable {
		return ErrRoomUnavailable
	}
	if partySize > room.Capacity {
		return ErrCapacityExceeded
	}
	return nil
}

// checkCapacity re-applies only the capacity rule.  Used on the update
// path, where the room stays reserved and availability no longer applies.
func checkCapacity(room *model.Room, partySize uint32) error {
	if partySize > room.Capacity {
		return ErrCapacityExceeded
	}
	return nil
}

// canModify enforces the ownership rule shared by update and cancel: the
// acting user must be the reservation's owner (matched by stamped email)
// or an admin.
func canModify(actor model.Actor, resv *model.Reservation) error {
	if actor.IsAdmin() || actor.Email == resv.ClientEmail {
		return nil
	}
	return ErrForbidden
}
