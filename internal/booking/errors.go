// Package booking implements the reservation admission rules, the
// transactional ledger coordinating rooms, slots and reservations, and
// the background sweeper that expires stale pending bookings.
package booking

import "errors"

// Admission and lifecycle failures.  Handlers map these onto HTTP codes:
// not-found -> 404, validation -> 400, conflicts -> 409, forbidden -> 403.
// Anything else coming out of the ledger is an internal storage error.
var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrSlotNotFound        = errors.New("slot not found")
	ErrReservationNotFound = errors.New("reservation not found")

	ErrInvalidSlotBounds = errors.New("slot start must be before end")
	ErrInvalidPartySize  = errors.New("party size out of range")

	ErrSlotRoomMismatch    = errors.New("slot belongs to another room")
	ErrSlotOverlap         = errors.New("slot overlaps an existing slot")
	ErrSlotAlreadyReserved = errors.New("slot already reserved for this room")
	ErrRoomUnavailable     = errors.New("room unavailable")
	ErrCapacityExceeded    = errors.New("party size exceeds room capacity")

	ErrForbidden        = errors.New("not owner or admin")
	ErrAlreadyConfirmed = errors.New("reservation already confirmed")
	ErrAlreadyCancelled = errors.New("reservation already cancelled")
	ErrAlreadyPaid      = errors.New("payment already recorded")
	ErrNotConfirmed     = errors.New("only confirmed reservations can be paid")
)
