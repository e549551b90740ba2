package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/wadhahbr/room-reservation/internal/model"
)

// ErrReservationNotFound is returned when a reservation lookup fails.
var ErrReservationNotFound = errors.New("reservation not found")

// ReservationRepo provides CRUD operations for reservations.  A
// reservation binds one client to one (room, slot) pair; the invariant
// that only one active reservation may hold a pair is enforced by the
// booking ledger, which runs the exists-check and the insert inside one
// transaction while holding the room row lock.  All timestamps are UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const resvCols = `id, room_id, slot_id, client_name, client_email, party_size, status, payment_status, reserved_at, updated_at`

func scanReservation(row interface{ Scan(...any) error }) (*model.Reservation, error) {
	var rv model.Reservation
	var status, payment string
	if err := row.Scan(&rv.ID, &rv.RoomID, &rv.SlotID, &rv.ClientName, &rv.ClientEmail,
		&rv.PartySize, &status, &payment, &rv.ReservedAt, &rv.UpdatedAt); err != nil {
		return nil, err
	}
	st, err := model.ParseReservationStatus(status)
	if err != nil {
		return nil, err
	}
	pay, err := model.ParsePaymentStatus(payment)
	if err != nil {
		return nil, err
	}
	rv.Status, rv.PaymentStatus = st, pay
	return &rv, nil
}

// CreateTx inserts a new reservation within the scope of an existing
// transaction and reads the row back to populate the generated ID and
// timestamps.  The caller must commit or roll back the transaction.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, rv *model.Reservation) error {
	const q = `INSERT INTO reservations
               (room_id, slot_id, client_name, client_email, party_size, status, payment_status, reserved_at)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, rv.RoomID, rv.SlotID, rv.ClientName, rv.ClientEmail,
		rv.PartySize, string(rv.Status), string(rv.PaymentStatus), rv.ReservedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rv.ID = uint64(id)
	row, err := scanReservation(tx.QueryRowContext(ctx, `SELECT `+resvCols+` FROM reservations WHERE id = ?`, rv.ID))
	if err != nil {
		return err
	}
	*rv = *row
	return nil
}

// GetByID loads one reservation, returning ErrReservationNotFound when
// absent.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	rv, err := scanReservation(r.db.QueryRowContext(ctx, `SELECT `+resvCols+` FROM reservations WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	return rv, err
}

// GetForUpdateTx loads one reservation inside tx with a row lock so a
// status transition cannot race a concurrent cancel, confirm, payment or
// sweeper action on the same row.
func (r *ReservationRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Reservation, error) {
	rv, err := scanReservation(tx.QueryRowContext(ctx, `SELECT `+resvCols+` FROM reservations WHERE id = ? FOR UPDATE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	return rv, err
}

// ExistsActiveTx reports whether a non-cancelled reservation already
// binds (roomID, slotID).  excludeID skips one reservation so an update
// does not collide with its own current binding; pass 0 otherwise.
func (r *ReservationRepo) ExistsActiveTx(ctx context.Context, tx *sql.Tx, roomID, slotID, excludeID uint64) (bool, error) {
	const q = `SELECT EXISTS(
                 SELECT 1 FROM reservations
                 WHERE room_id = ? AND slot_id = ? AND id <> ? AND status <> 'CANCELLED')`
	var exists bool
	if err := tx.QueryRowContext(ctx, q, roomID, slotID, excludeID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// HasActiveByRoomTx reports whether any non-cancelled reservation still
// references the room.  Used to block room deletion.
func (r *ReservationRepo) HasActiveByRoomTx(ctx context.Context, tx *sql.Tx, roomID uint64) (bool, error) {
	const q = `SELECT EXISTS(
                 SELECT 1 FROM reservations
                 WHERE room_id = ? AND status <> 'CANCELLED')`
	var exists bool
	if err := tx.QueryRowContext(ctx, q, roomID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// UpdateBookingTx rewrites the mutable booking fields (slot and party
// size) inside a transaction.
func (r *ReservationRepo) UpdateBookingTx(ctx context.Context, tx *sql.Tx, id, slotID uint64, partySize uint32) error {
	const q = `UPDATE reservations
               SET slot_id = ?, party_size = ?, updated_at = CURRENT_TIMESTAMP
               WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, slotID, partySize, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrReservationNotFound
	}
	return nil
}

// SetStatusTx writes both status columns inside a transaction.  The
// ledger validates the transition against the enum tables before calling
// this; the repository only persists.
func (r *ReservationRepo) SetStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.ReservationStatus, payment model.PaymentStatus) error {
	const q = `UPDATE reservations
               SET status = ?, payment_status = ?, updated_at = CURRENT_TIMESTAMP
               WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, string(status), string(payment), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrReservationNotFound
	}
	return nil
}

// DeleteCancelledByRoomTx removes the (already cancelled) reservations of
// a room as part of the explicit room-deletion cascade.
func (r *ReservationRepo) DeleteCancelledByRoomTx(ctx context.Context, tx *sql.Tx, roomID uint64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM reservations WHERE room_id = ? AND status = 'CANCELLED'`, roomID)
	return err
}

// Detail bundles a reservation with the room and slot it references for
// display.  It is what listing endpoints return to clients and admins.
type Detail struct {
	model.Reservation
	RoomName  string    `json:"room_name"`
	RoomPrice uint32    `json:"room_price_cents"`
	Capacity  uint32    `json:"room_capacity"`
	SlotStart time.Time `json:"slot_starts_at"`
	SlotEnd   time.Time `json:"slot_ends_at"`
}

const detailQuery = `SELECT r.id, r.room_id, r.slot_id, r.client_name, r.client_email,
                            r.party_size, r.status, r.payment_status, r.reserved_at, r.updated_at,
                            rm.name, rm.price_cents, rm.capacity, s.starts_at, s.ends_at
                     FROM reservations r
                     JOIN rooms rm ON rm.id = r.room_id
                     JOIN slots s ON s.id = r.slot_id`

func (r *ReservationRepo) queryDetails(ctx context.Context, where string, args ...any) ([]Detail, error) {
	rows, err := r.db.QueryContext(ctx, detailQuery+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Detail, 0)
	for rows.Next() {
		var d Detail
		var status, payment string
		if err := rows.Scan(&d.ID, &d.RoomID, &d.SlotID, &d.ClientName, &d.ClientEmail,
			&d.PartySize, &status, &payment, &d.ReservedAt, &d.UpdatedAt,
			&d.RoomName, &d.RoomPrice, &d.Capacity, &d.SlotStart, &d.SlotEnd); err != nil {
			return nil, err
		}
		st, err := model.ParseReservationStatus(status)
		if err != nil {
			return nil, err
		}
		pay, err := model.ParsePaymentStatus(payment)
		if err != nil {
			return nil, err
		}
		d.Status, d.PaymentStatus = st, pay
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetDetail returns one reservation joined with its room and slot.
func (r *ReservationRepo) GetDetail(ctx context.Context, id uint64) (*Detail, error) {
	ds, err := r.queryDetails(ctx, ` WHERE r.id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(ds) == 0 {
		return nil, ErrReservationNotFound
	}
	return &ds[0], nil
}

// ListAll returns every reservation, newest first.
func (r *ReservationRepo) ListAll(ctx context.Context) ([]Detail, error) {
	return r.queryDetails(ctx, ` ORDER BY r.reserved_at DESC`)
}

// ListByClientEmail returns a client's reservations, newest first.
func (r *ReservationRepo) ListByClientEmail(ctx context.Context, email string) ([]Detail, error) {
	return r.queryDetails(ctx, ` WHERE r.client_email = ? ORDER BY r.reserved_at DESC`, email)
}

// ListByStatus returns reservations in one lifecycle state.
func (r *ReservationRepo) ListByStatus(ctx context.Context, status model.ReservationStatus) ([]Detail, error) {
	return r.queryDetails(ctx, ` WHERE r.status = ? ORDER BY r.reserved_at DESC`, string(status))
}

// ListByPaymentStatus returns reservations in one payment state.
func (r *ReservationRepo) ListByPaymentStatus(ctx context.Context, payment model.PaymentStatus) ([]Detail, error) {
	return r.queryDetails(ctx, ` WHERE r.payment_status = ? ORDER BY r.reserved_at DESC`, string(payment))
}

// FilterByDateRange returns reservations whose slot starts inside
// [start,end], ordered by slot start.  The caller widens the end date to
// end-of-day, matching the original date-only filter.
func (r *ReservationRepo) FilterByDateRange(ctx context.Context, start, end time.Time) ([]Detail, error) {
	return r.queryDetails(ctx, ` WHERE s.starts_at BETWEEN ? AND ? ORDER BY s.starts_at`, start, end)
}

// PendingRow pairs a PENDING reservation with its slot start for the
// expiry sweeper.
type PendingRow struct {
	ID        uint64
	RoomID    uint64
	SlotStart time.Time
}

// ListPending returns the PENDING reservations with their slot starts.
// The sweeper re-checks each row under a lock before acting, so this
// read is deliberately lock-free.
func (r *ReservationRepo) ListPending(ctx context.Context) ([]PendingRow, error) {
	const q = `SELECT r.id, r.room_id, s.starts_at
               FROM reservations r
               JOIN slots s ON s.id = r.slot_id
               WHERE r.status = 'PENDING'`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []PendingRow
	for rows.Next() {
		var p PendingRow
		if err := rows.Scan(&p.ID, &p.RoomID, &p.SlotStart); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
