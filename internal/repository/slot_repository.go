// Package repository contains data access logic for slot ("créneau")
// operations.  A slot is a concrete time interval owned by one room; for
// a fixed room no two stored slots may overlap.  The overlap predicate is
// inclusive on both bounds, matching model.Overlaps.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/wadhahbr/room-reservation/internal/model"
)

// ErrSlotNotFound indicates that a slot was not located in the DB.
var ErrSlotNotFound = errors.New("slot not found")

// SlotRepo manages persistence for slots.
type SlotRepo struct {
	db *sql.DB
}

// NewSlotRepo constructs a SlotRepo with the given DB handle.
func NewSlotRepo(db *sql.DB) *SlotRepo { return &SlotRepo{db: db} }

const slotCols = `id, room_id, starts_at, ends_at, created_at`

func scanSlot(row interface{ Scan(...any) error }) (*model.Slot, error) {
	var s model.Slot
	if err := row.Scan(&s.ID, &s.RoomID, &s.StartsAt, &s.EndsAt, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByID retrieves a slot by its ID, returning ErrSlotNotFound when no
// row exists.
func (r *SlotRepo) GetByID(ctx context.Context, id uint64) (*model.Slot, error) {
	s, err := scanSlot(r.db.QueryRowContext(ctx, `SELECT `+slotCols+` FROM slots WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	return s, err
}

// GetByIDTx is GetByID inside an existing transaction.
func (r *SlotRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Slot, error) {
	s, err := scanSlot(tx.QueryRowContext(ctx, `SELECT `+slotCols+` FROM slots WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	return s, err
}

// List returns every slot ordered by start time.
func (r *SlotRepo) List(ctx context.Context) ([]*model.Slot, error) {
	return r.queryMany(ctx, `SELECT `+slotCols+` FROM slots ORDER BY starts_at`)
}

// ListByRoom returns the slots of one room ordered by start time.
func (r *SlotRepo) ListByRoom(ctx context.Context, roomID uint64) ([]*model.Slot, error) {
	return r.queryMany(ctx, `SELECT `+slotCols+` FROM slots WHERE room_id = ? ORDER BY starts_at`, roomID)
}

func (r *SlotRepo) queryMany(ctx context.Context, q string, args ...any) ([]*model.Slot, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Slot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// OverlapExistsTx reports whether any slot of the room conflicts with
// [start,end] under inclusive bounds.  excludeID skips one slot (used
// when updating a slot against its own stored interval); pass 0 to check
// them all.  The SQL mirrors model.Overlaps: NOT (ends_at < start OR
// starts_at > end).
func (r *SlotRepo) OverlapExistsTx(ctx context.Context, tx *sql.Tx, roomID uint64, start, end time.Time, excludeID uint64) (bool, error) {
	const q = `SELECT EXISTS(
                 SELECT 1 FROM slots
                 WHERE room_id = ? AND id <> ? AND NOT (ends_at < ? OR starts_at > ?))`
	var exists bool
	if err := tx.QueryRowContext(ctx, q, roomID, excludeID, start, end).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// CreateTx inserts a slot inside a transaction and populates the
// generated ID and timestamps on the given value.  Callers are expected
// to have run the overlap check in the same transaction.
func (r *SlotRepo) CreateTx(ctx context.Context, tx *sql.Tx, s *model.Slot) error {
	const q = `INSERT INTO slots (room_id, starts_at, ends_at) VALUES (?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, s.RoomID, s.StartsAt, s.EndsAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	row, err := scanSlot(tx.QueryRowContext(ctx, `SELECT `+slotCols+` FROM slots WHERE id = ?`, s.ID))
	if err != nil {
		return err
	}
	*s = *row
	return nil
}

// UpdateTx rewrites a slot's interval and room inside a transaction.
func (r *SlotRepo) UpdateTx(ctx context.Context, tx *sql.Tx, s *model.Slot) error {
	const q = `UPDATE slots SET room_id = ?, starts_at = ?, ends_at = ? WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, s.RoomID, s.StartsAt, s.EndsAt, s.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSlotNotFound
	}
	return nil
}

// Delete removes a slot.  It fails with ErrConflict while any active
// reservation still references the slot.
func (r *SlotRepo) Delete(ctx context.Context, id uint64) error {
	const check = `SELECT EXISTS(
                     SELECT 1 FROM reservations
                     WHERE slot_id = ? AND status <> 'CANCELLED')`
	var busy bool
	if err := r.db.QueryRowContext(ctx, check, id).Scan(&busy); err != nil {
		return err
	}
	if busy {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM slots WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSlotNotFound
	}
	return nil
}

// DeleteByRoomTx removes every slot of a room inside a transaction.  Used
// by the explicit room-deletion cascade.
func (r *SlotRepo) DeleteByRoomTx(ctx context.Context, tx *sql.Tx, roomID uint64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM slots WHERE room_id = ?`, roomID)
	return err
}

// ListAvailable returns future slots whose room still has capacity left,
// i.e. slots not already bound by an active reservation.  Ordered by
// start time so clients can show the nearest openings first.
func (r *SlotRepo) ListAvailable(ctx context.Context, now time.Time) ([]*model.Slot, error) {
	const q = `SELECT s.id, s.room_id, s.starts_at, s.ends_at, s.created_at
               FROM slots s
               WHERE s.starts_at > ?
                 AND NOT EXISTS (
                   SELECT 1 FROM reservations r
                   WHERE r.slot_id = s.id AND r.status <> 'CANCELLED')
               ORDER BY s.starts_at`
	return r.queryMany(ctx, q, now)
}
