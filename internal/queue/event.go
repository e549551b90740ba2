// Package queue defines message payloads exchanged over the message broker.
package queue

// Event kinds published on the reservation.events queue.
const (
	KindPending          = "reservation.pending"
	KindConfirmed        = "reservation.confirmed"
	KindCancelled        = "reservation.cancelled"
	KindExpired          = "reservation.expired"
	KindPaymentConfirmed = "payment.confirmed"
	KindPaymentCancelled = "payment.cancelled"
	KindPasswordReset    = "user.password_reset"
)

// ReservationEvent is published whenever a reservation transition should
// notify the client.  It carries enough information for the consumer to
// render and send the email without querying the primary database.
// Notification delivery is best-effort: publishing or consuming failures
// never roll back the transition that produced the event.
type ReservationEvent struct {
	Kind          string `json:"kind"`
	ReservationID uint64 `json:"reservation_id,omitempty"`
	ClientName    string `json:"client_name"`
	ClientEmail   string `json:"client_email"`
	RoomName      string `json:"room_name,omitempty"`
	RoomCapacity  uint32 `json:"room_capacity,omitempty"`
	PriceCents    uint32 `json:"price_cents,omitempty"`
	PartySize     uint32 `json:"party_size,omitempty"`
	SlotStart     string `json:"slot_start,omitempty"` // RFC3339 UTC
	SlotEnd       string `json:"slot_end,omitempty"`   // RFC3339 UTC
	ResetToken    string `json:"reset_token,omitempty"`
	OccurredAt    string `json:"occurred_at"` // RFC3339 UTC
}
