package model

import "time"

// Room represents a bookable room ("salle").  Rooms carry a price, a
// capacity bound for party sizes and an availability flag flipped by the
// booking lifecycle.  This struct corresponds to a row in the `rooms`
// table.
//
// Fields:
//
//	ID        – primary key identifier.
//	Name      – human readable room name.
//	Price     – rental price in euro cents.
//	Capacity  – maximum party size (positive).
//	Status    – availability (DISPONIBLE | INDISPONIBLE).
//	ImagePath – optional stored image file name.
//	CreatedAt – timestamp when the room was created.
//	UpdatedAt – timestamp of last update.
type Room struct {
	ID        uint64     `json:"id"`              // rooms.id
	Name      string     `json:"name"`            // rooms.name
	Price     uint32     `json:"price_cents"`     // rooms.price_cents
	Capacity  uint32     `json:"capacity"`        // rooms.capacity
	Status    RoomStatus `json:"status"`          // rooms.status
	ImagePath *string    `json:"image,omitempty"` // rooms.image_path (nullable)
	CreatedAt time.Time  `json:"created_at"`      // rooms.created_at
	UpdatedAt time.Time  `json:"updated_at"`      // rooms.updated_at
}
