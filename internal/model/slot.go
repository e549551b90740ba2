package model

import "time"

// Slot represents a bookable time interval ("créneau") belonging to a
// room.  StartsAt must be strictly before EndsAt.  For a given room no
// two slots may overlap; Overlaps below defines the predicate.
//
// Fields:
//
//	ID       – primary key identifier.
//	RoomID   – owning room.
//	StartsAt – interval start (UTC).
//	EndsAt   – interval end (UTC), after StartsAt.
//	CreatedAt – creation timestamp.
type Slot struct {
	ID        uint64    `json:"id"`         // slots.id
	RoomID    uint64    `json:"room_id"`    // slots.room_id
	StartsAt  time.Time `json:"starts_at"`  // slots.starts_at
	EndsAt    time.Time `json:"ends_at"`    // slots.ends_at
	CreatedAt time.Time `json:"created_at"` // slots.created_at
}

// Overlaps reports whether the intervals [aStart,aEnd] and [bStart,bEnd]
// conflict.  Bounds are inclusive: abutting slots (a.end == b.start) and
// equal-bound slots both count as overlapping.  This matches the stored
// booking data and must not be loosened to half-open semantics without a
// data migration.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !(aEnd.Before(bStart) || aStart.After(bEnd))
}

// Overlaps reports whether s conflicts with other under the inclusive
// interval semantics above.  Room ownership is not checked here.
func (s Slot) Overlaps(other Slot) bool {
	return Overlaps(s.StartsAt, s.EndsAt, other.StartsAt, other.EndsAt)
}
