package repository // repository holds data access logic for domain entities

import (
	"context"      // context is used to manage deadlines and cancellation
	"database/sql" // sql provides DB primitives
	"errors"       // errors package allows sentinel error definitions

	"github.com/wadhahbr/room-reservation/internal/model"
)

// ErrRoomNotFound is returned when a room lookup fails.
var ErrRoomNotFound = errors.New("room not found")

// RoomRepo provides persistence for rooms.  It embeds a database handle
// to perform queries and commands; state-changing booking operations use
// the ...Tx variants so the ledger can span several repositories in one
// transaction.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo constructs a RoomRepo with the given DB handle.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

// DB exposes the underlying sql.DB so callers can begin transactions
// spanning multiple repositories.
func (r *RoomRepo) DB() *sql.DB { return r.db }

const roomCols = `id, name, price_cents, capacity, status, image_path, created_at, updated_at`

func scanRoom(row interface{ Scan(...any) error }) (*model.Room, error) {
	var rm model.Room
	var status string
	var image sql.NullString
	if err := row.Scan(&rm.ID, &rm.Name, &rm.Price, &rm.Capacity, &status, &image, &rm.CreatedAt, &rm.UpdatedAt); err != nil {
		return nil, err
	}
	st, err := model.ParseRoomStatus(status)
	if err != nil {
		return nil, err
	}
	rm.Status = st
	if image.Valid {
		v := image.String
		rm.ImagePath = &v
	}
	return &rm, nil
}

// Create inserts a new room and reads the row back so DB defaults
// (status, timestamps) are populated on the returned value.
func (r *RoomRepo) Create(ctx context.Context, name string, priceCents, capacity uint32, status model.RoomStatus, imagePath *string) (*model.Room, error) {
	const q = `INSERT INTO rooms (name, price_cents, capacity, status, image_path) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, name, priceCents, capacity, string(status), imagePath)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID retrieves a room by its ID.  It returns ErrRoomNotFound when no
// row exists.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	rm, err := scanRoom(r.db.QueryRowContext(ctx, `SELECT `+roomCols+` FROM rooms WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRoomNotFound
	}
	return rm, err
}

// GetForUpdateTx loads a room inside tx with a row lock.  The booking
// ledger holds this lock across its check-then-write window so two
// concurrent bookings for the same room serialize.
func (r *RoomRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Room, error) {
	rm, err := scanRoom(tx.QueryRowContext(ctx, `SELECT `+roomCols+` FROM rooms WHERE id = ? FOR UPDATE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRoomNotFound
	}
	return rm, err
}

// List returns all rooms ordered by id.
func (r *RoomRepo) List(ctx context.Context) ([]*model.Room, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+roomCols+` FROM rooms ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Room
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}

// Update rewrites mutable room fields.  Returns ErrRoomNotFound when the
// id does not exist.
func (r *RoomRepo) Update(ctx context.Context, rm *model.Room) error {
	const q = `UPDATE rooms
               SET name = ?, price_cents = ?, capacity = ?, status = ?, image_path = ?, updated_at = CURRENT_TIMESTAMP
               WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, rm.Name, rm.Price, rm.Capacity, string(rm.Status), rm.ImagePath, rm.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// SetStatusTx flips the availability flag inside a transaction.
func (r *RoomRepo) SetStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.RoomStatus) error {
	const q = `UPDATE rooms SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, string(status), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// DeleteTx removes the room row inside a transaction.  Callers must have
// already removed or verified dependent slots and reservations; there is
// no implicit cascade.
func (r *RoomRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRoomNotFound
	}
	return nil
}
