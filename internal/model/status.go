package model

import "fmt"

// ReservationStatus is the lifecycle state of a reservation.  It is a
// closed enumeration: every transition goes through CanTransitionTo and
// unknown values are rejected at the boundary by Parse.
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "PENDING"
	StatusConfirmed ReservationStatus = "CONFIRMED"
	StatusCancelled ReservationStatus = "CANCELLED"
)

// ParseReservationStatus validates a raw string coming from the database
// or a request body.
func ParseReservationStatus(s string) (ReservationStatus, error) {
	switch ReservationStatus(s) {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return ReservationStatus(s), nil
	}
	return "", fmt.Errorf("unknown reservation status %q", s)
}

// CanTransitionTo reports whether moving from s to next is a legal
// lifecycle step.  PENDING may confirm or cancel; CONFIRMED may only
// cancel; CANCELLED is terminal.
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCancelled
	case StatusCancelled:
		return false
	}
	return false
}

// Active reports whether the reservation still binds its (room, slot)
// pair.  Only cancelled reservations release the pair.
func (s ReservationStatus) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

// PaymentStatus is the payment state of a reservation.  The French values
// are kept as stored by the original system: EN_ATTENTE (awaiting), PAYE
// (paid), ANNULE (cancelled).
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "EN_ATTENTE"
	PaymentPaid      PaymentStatus = "PAYE"
	PaymentCancelled PaymentStatus = "ANNULE"
)

// ParsePaymentStatus validates a raw payment status string.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(s) {
	case PaymentPending, PaymentPaid, PaymentCancelled:
		return PaymentStatus(s), nil
	}
	return "", fmt.Errorf("unknown payment status %q", s)
}

// CanTransitionTo reports whether moving from p to next is legal.  Both
// PAYE and ANNULE are terminal.
func (p PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	if p != PaymentPending {
		return false
	}
	return next == PaymentPaid || next == PaymentCancelled
}

// RoomStatus is the availability flag on a room.
type RoomStatus string

const (
	RoomAvailable   RoomStatus = "DISPONIBLE"
	RoomUnavailable RoomStatus = "INDISPONIBLE"
)

// ParseRoomStatus validates a raw room status string.
func ParseRoomStatus(s string) (RoomStatus, error) {
	switch RoomStatus(s) {
	case RoomAvailable, RoomUnavailable:
		return RoomStatus(s), nil
	}
	return "", fmt.Errorf("unknown room status %q", s)
}
