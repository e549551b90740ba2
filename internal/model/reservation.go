package model

import "time"

// Reservation binds a client to a (room, slot) pair with a lifecycle
// status and a payment status.  At most one active (non-cancelled)
// reservation may exist per (room, slot).
//
// Fields:
//
//	ID            – primary key identifier.
//	RoomID        – reserved room.
//	SlotID        – reserved slot.
//	ClientName    – username stamped from the authenticated client.
//	ClientEmail   – email stamped from the authenticated client.
//	PartySize     – number of people, 1..1000 and at most Room.Capacity.
//	Status        – lifecycle state (PENDING, CONFIRMED, CANCELLED).
//	PaymentStatus – payment state (EN_ATTENTE, PAYE, ANNULE).
//	ReservedAt    – when the booking was admitted.
//	UpdatedAt     – last update timestamp.
type Reservation struct {
	ID            uint64            `json:"id"`             // reservations.id
	RoomID        uint64            `json:"room_id"`        // reservations.room_id
	SlotID        uint64            `json:"slot_id"`        // reservations.slot_id
	ClientName    string            `json:"client_name"`    // reservations.client_name
	ClientEmail   string            `json:"client_email"`   // reservations.client_email
	PartySize     uint32            `json:"party_size"`     // reservations.party_size
	Status        ReservationStatus `json:"status"`         // reservations.status
	PaymentStatus PaymentStatus     `json:"payment_status"` // reservations.payment_status
	ReservedAt    time.Time         `json:"reserved_at"`    // reservations.reserved_at
	UpdatedAt     time.Time         `json:"updated_at"`     // reservations.updated_at
}

// MaxPartySize bounds the party size accepted on any booking request.
const MaxPartySize = 1000
