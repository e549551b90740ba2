package booking

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/wadhahbr/room-reservation/internal/model"
	"github.com/wadhahbr/room-reservation/internal/queue"
	"github.com/wadhahbr/room-reservation/internal/repository"
)

// Publisher pushes a reservation event to the broker.  Failures are
// logged by the ledger and never fail the operation that produced the
// event.
type Publisher interface {
	Publish(ctx context.Context, ev queue.ReservationEvent) error
}

// RoomStore is the slice of the room repository the ledger needs.
// Satisfied by *repository.RoomRepo.
type RoomStore interface {
	GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Room, error)
	SetStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.RoomStatus) error
	DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error
}

// SlotStore is the slice of the slot repository the ledger needs.
// Satisfied by *repository.SlotRepo.
type SlotStore interface {
	GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Slot, error)
	OverlapExistsTx(ctx context.Context, tx *sql.Tx, roomID uint64, start, end time.Time, excludeID uint64) (bool, error)
	CreateTx(ctx context.Context, tx *sql.Tx, s *model.Slot) error
	DeleteByRoomTx(ctx context.Context, tx *sql.Tx, roomID uint64) error
}

// ReservationStore is the slice of the reservation repository the ledger
// needs.  Satisfied by *repository.ReservationRepo.
type ReservationStore interface {
	GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Reservation, error)
	ExistsActiveTx(ctx context.Context, tx *sql.Tx, roomID, slotID, excludeID uint64) (bool, error)
	CreateTx(ctx context.Context, tx *sql.Tx, rv *model.Reservation) error
	UpdateBookingTx(ctx context.Context, tx *sql.Tx, id, slotID uint64, partySize uint32) error
	SetStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.ReservationStatus, payment model.PaymentStatus) error
	HasActiveByRoomTx(ctx context.Context, tx *sql.Tx, roomID uint64) (bool, error)
	DeleteCancelledByRoomTx(ctx context.Context, tx *sql.Tx, roomID uint64) error
	ListPending(ctx context.Context) ([]repository.PendingRow, error)
	GetDetail(ctx context.Context, id uint64) (*repository.Detail, error)
	ListAll(ctx context.Context) ([]repository.Detail, error)
	ListByClientEmail(ctx context.Context, email string) ([]repository.Detail, error)
	ListByStatus(ctx context.Context, status model.ReservationStatus) ([]repository.Detail, error)
	ListByPaymentStatus(ctx context.Context, payment model.PaymentStatus) ([]repository.Detail, error)
	FilterByDateRange(ctx context.Context, start, end time.Time) ([]repository.Detail, error)
}

// Ledger coordinates every state-changing reservation operation.  Each
// operation runs in a single transaction; the room row is locked FOR
// UPDATE across the check-then-write window so at most one active
// reservation can ever hold a (room, slot) pair, even under concurrent
// booking attempts.  The acting user is always an explicit parameter.
type Ledger struct {
	rooms  RoomStore
	slots  SlotStore
	resvs  ReservationStore
	events Publisher

	// run executes fn inside a transaction.  Tests substitute a runner
	// that calls fn directly against fake stores.
	run func(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// NewLedger wires the ledger to its stores and event publisher.  events
// may be nil, in which case transitions are silent.
func NewLedger(db *sql.DB, rooms RoomStore, slots SlotStore, resvs ReservationStore, events Publisher) *Ledger {
	if db == nil || rooms == nil || slots == nil || resvs == nil {
		panic("nil dependency passed to NewLedger")
	}
	return &Ledger{
		rooms:  rooms,
		slots:  slots,
		resvs:  resvs,
		events: events,
		run: func(ctx context.Context, fn func(tx *sql.Tx) error) error {
			tx, err := db.BeginTx(ctx, nil)
			if err != nil {
				return err
			}
			committed := false
			defer func() {
				if !committed {
					_ = tx.Rollback()
				}
			}()
			if err := fn(tx); err != nil {
				return err
			}
			if err := tx.Commit(); err != nil {
				return err
			}
			committed = true
			return nil
		},
	}
}

// CreateRequest is a booking request.  Either SlotID references an
// existing slot, or SlotID is zero and Start/End describe an ad-hoc slot
// to create inline.
type CreateRequest struct {
	RoomID    uint64
	SlotID    uint64
	Start     time.Time
	End       time.Time
	PartySize uint32
}

// Create admits a booking request for the acting user.  On success the
// reservation is persisted PENDING with payment EN_ATTENTE; the room is
// not flipped until the explicit confirm step.  The client identity is
// stamped from actor, never from the request body.
func (l *Ledger) Create(ctx context.Context, actor model.Actor, req CreateRequest) (*model.Reservation, error) {
	if err := validatePartySize(req.PartySize); err != nil {
		return nil, err
	}
	var (
		resv model.Reservation
		room *model.Room
		slot *model.Slot
	)
	err := l.run(ctx, func(tx *sql.Tx) error {
		var err error
		room, err = l.rooms.GetForUpdateTx(ctx, tx, req.RoomID)
		if err != nil {
			return mapRoomErr(err)
		}
		slot, err = l.resolveSlotTx(ctx, tx, room.ID, req, 0)
		if err != nil {
			return err
		}
		if err := checkAdmission(room, req.PartySize); err != nil {
			return err
		}
		taken, err := l.resvs.ExistsActiveTx(ctx, tx, room.ID, slot.ID, 0)
		if err != nil {
			return err
		}
		if taken {
			return ErrSlotAlreadyReserved
		}
		resv = model.Reservation{
			RoomID:        room.ID,
			SlotID:        slot.ID,
			ClientName:    actor.Username,
			ClientEmail:   actor.Email,
			PartySize:     req.PartySize,
			Status:        model.StatusPending,
			PaymentStatus: model.PaymentPending,
			ReservedAt:    time.Now().UTC(),
		}
		return l.resvs.CreateTx(ctx, tx, &resv)
	})
	if err != nil {
		return nil, err
	}
	l.publish(ctx, queue.KindPending, &resv, room, slot)
	return &resv, nil
}

// resolveSlotTx loads the requested slot or creates an ad-hoc one after
// the bounds and overlap checks.  excludeSlotID is skipped during the
// overlap scan (the update path passes the reservation's current slot).
func (l *Ledger) resolveSlotTx(ctx context.Context, tx *sql.Tx, roomID uint64, req CreateRequest, excludeSlotID uint64) (*model.Slot, error) {
	if req.SlotID != 0 {
		slot, err := l.slots.GetByIDTx(ctx, tx, req.SlotID)
		if err != nil {
			return nil, mapSlotErr(err)
		}
		if slot.RoomID != roomID {
			return nil, ErrSlotRoomMismatch
		}
		return slot, nil
	}
	if err := validateSlotBounds(req.Start, req.End); err != nil {
		return nil, err
	}
	overlap, err := l.slots.OverlapExistsTx(ctx, tx, roomID, req.Start, req.End, excludeSlotID)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, ErrSlotOverlap
	}
	slot := &model.Slot{RoomID: roomID, StartsAt: req.Start.UTC(), EndsAt: req.End.UTC()}
	if err := l.slots.CreateTx(ctx, tx, slot); err != nil {
		return nil, err
	}
	return slot, nil
}

// Confirm moves a pending reservation to CONFIRMED and flips the room to
// INDISPONIBLE.  Admin-only: confirmation is the back-office validation
// step, not a client action.
func (l *Ledger) Confirm(ctx context.Context, actor model.Actor, id uint64) (*model.Reservation, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	var (
		resv *model.Reservation
		room *model.Room
		slot *model.Slot
	)
	err := l.run(ctx, func(tx *sql.Tx) error {
		var err error
		resv, err = l.resvs.GetForUpdateTx(ctx, tx, id)
		if err != nil {
			return mapResvErr(err)
		}
		switch resv.Status {
		case model.StatusConfirmed:
			return ErrAlreadyConfirmed
		case model.StatusCancelled:
			return ErrAlreadyCancelled
		}
		room, err = l.rooms.GetForUpdateTx(ctx, tx, resv.RoomID)
		if err != nil {
			return mapRoomErr(err)
		}
		slot, err = l.slots.GetByIDTx(ctx, tx, resv.SlotID)
		if err != nil {
			return mapSlotErr(err)
		}
		if err := l.resvs.SetStatusTx(ctx, tx, id, model.StatusConfirmed, resv.PaymentStatus); err != nil {
			return err
		}
		resv.Status = model.StatusConfirmed
		return l.rooms.SetStatusTx(ctx, tx, room.ID, model.RoomUnavailable)
	})
	if err != nil {
		return nil, err
	}
	l.publish(ctx, queue.KindConfirmed, resv, room, slot)
	return resv, nil
}

// UpdateRequest modifies an existing reservation.  Zero SlotID with zero
// Start/End keeps the current slot; PartySize is always re-validated.
type UpdateRequest struct {
	SlotID    uint64
	Start     time.Time
	End       time.Time
	PartySize uint32
}

// Update re-validates and applies a modification.  Only the owner or an
// admin may modify.  When the slot changes, the overlap and
// double-booking checks run against the new slot while excluding the
// reservation's own current binding.
func (l *Ledger) Update(ctx context.Context, actor model.Actor, id uint64, req UpdateRequest) (*model.Reservation, error) {
	if err := validatePartySize(req.PartySize); err != nil {
		return nil, err
	}
	var resv *model.Reservation
	err := l.run(ctx, func(tx *sql.Tx) error {
		var err error
		resv, err = l.resvs.GetForUpdateTx(ctx, tx, id)
		if err != nil {
			return mapResvErr(err)
		}
		if err := canModify(actor, resv); err != nil {
			return err
		}
		if resv.Status == model.StatusCancelled {
			return ErrAlreadyCancelled
		}
		room, err := l.rooms.GetForUpdateTx(ctx, tx, resv.RoomID)
		if err != nil {
			return mapRoomErr(err)
		}
		if err := checkCapacity(room, req.PartySize); err != nil {
			return err
		}
		slotID := resv.SlotID
		changingSlot := (req.SlotID != 0 && req.SlotID != resv.SlotID) ||
			(req.SlotID == 0 && !req.Start.IsZero())
		if changingSlot {
			slot, err := l.resolveSlotTx(ctx, tx, room.ID,
				CreateRequest{RoomID: room.ID, SlotID: req.SlotID, Start: req.Start, End: req.End},
				resv.SlotID)
			if err != nil {
				return err
			}
			taken, err := l.resvs.ExistsActiveTx(ctx, tx, room.ID, slot.ID, resv.ID)
			if err != nil {
				return err
			}
			if taken {
				return ErrSlotAlreadyReserved
			}
			slotID = slot.ID
		}
		if err := l.resvs.UpdateBookingTx(ctx, tx, resv.ID, slotID, req.PartySize); err != nil {
			return err
		}
		resv.SlotID = slotID
		resv.PartySize = req.PartySize
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resv, nil
}

// Cancel marks a reservation CANCELLED with payment ANNULE.  If the
// reservation had been confirmed, the room is released back to
// DISPONIBLE.  Only the owner or an admin may cancel; cancelling twice
// yields ErrAlreadyCancelled.
func (l *Ledger) Cancel(ctx context.Context, actor model.Actor, id uint64) error {
	var (
		resv *model.Reservation
		room *model.Room
		slot *model.Slot
	)
	err := l.run(ctx, func(tx *sql.Tx) error {
		var err error
		resv, err = l.resvs.GetForUpdateTx(ctx, tx, id)
		if err != nil {
			return mapResvErr(err)
		}
		if err := canModify(actor, resv); err != nil {
			return err
		}
		if resv.Status == model.StatusCancelled {
			return ErrAlreadyCancelled
		}
		wasConfirmed := resv.Status == model.StatusConfirmed
		if err := l.resvs.SetStatusTx(ctx, tx, id, model.StatusCancelled, model.PaymentCancelled); err != nil {
			return err
		}
		if wasConfirmed {
			if err := l.rooms.SetStatusTx(ctx, tx, resv.RoomID, model.RoomAvailable); err != nil {
				return err
			}
		}
		room, _ = l.rooms.GetForUpdateTx(ctx, tx, resv.RoomID)
		slot, _ = l.slots.GetByIDTx(ctx, tx, resv.SlotID)
		return nil
	})
	if err != nil {
		return err
	}
	resv.Status = model.StatusCancelled
	resv.PaymentStatus = model.PaymentCancelled
	l.publish(ctx, queue.KindCancelled, resv, room, slot)
	return nil
}

// ConfirmPayment records an on-site payment.  Only CONFIRMED
// reservations may be paid; repeated or cancelled payments are rejected
// explicitly.
func (l *Ledger) ConfirmPayment(ctx context.Context, actor model.Actor, id uint64) (*model.Reservation, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	var (
		resv *model.Reservation
		room *model.Room
		slot *model.Slot
	)
	err := l.run(ctx, func(tx *sql.Tx) error {
		var err error
		resv, err = l.resvs.GetForUpdateTx(ctx, tx, id)
		if err != nil {
			return mapResvErr(err)
		}
		switch resv.PaymentStatus {
		case model.PaymentPaid:
			return ErrAlreadyPaid
		case model.PaymentCancelled:
			return ErrAlreadyCancelled
		}
		if resv.Status != model.StatusConfirmed {
			return ErrNotConfirmed
		}
		if err := l.resvs.SetStatusTx(ctx, tx, id, resv.Status, model.PaymentPaid); err != nil {
			return err
		}
		resv.PaymentStatus = model.PaymentPaid
		room, _ = l.rooms.GetForUpdateTx(ctx, tx, resv.RoomID)
		slot, _ = l.slots.GetByIDTx(ctx, tx, resv.SlotID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.publish(ctx, queue.KindPaymentConfirmed, resv, room, slot)
	return resv, nil
}

// CancelPayment voids the payment and cancels the reservation with it.
// A confirmed reservation releases its room, keeping the room-release
// invariant intact on every cancellation path.
func (l *Ledger) CancelPayment(ctx context.Context, actor model.Actor, id uint64) (*model.Reservation, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	var (
		resv *model.Reservation
		room *model.Room
		slot *model.Slot
	)
	err := l.run(ctx, func(tx *sql.Tx) error {
		var err error
		resv, err = l.resvs.GetForUpdateTx(ctx, tx, id)
		if err != nil {
			return mapResvErr(err)
		}
		if resv.PaymentStatus == model.PaymentCancelled {
			return ErrAlreadyCancelled
		}
		wasConfirmed := resv.Status == model.StatusConfirmed
		if err := l.resvs.SetStatusTx(ctx, tx, id, model.StatusCancelled, model.PaymentCancelled); err != nil {
			return err
		}
		if wasConfirmed {
			if err := l.rooms.SetStatusTx(ctx, tx, resv.RoomID, model.RoomAvailable); err != nil {
				return err
			}
		}
		resv.Status = model.StatusCancelled
		resv.PaymentStatus = model.PaymentCancelled
		room, _ = l.rooms.GetForUpdateTx(ctx, tx, resv.RoomID)
		slot, _ = l.slots.GetByIDTx(ctx, tx, resv.SlotID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.publish(ctx, queue.KindPaymentCancelled, resv, room, slot)
	return resv, nil
}

// Expire cancels one PENDING reservation whose slot started before
// cutoff, releasing its room.  It re-checks both conditions under the
// row lock so it cannot race a concurrent confirm, cancel or payment.
// Returns true when the reservation was expired.
func (l *Ledger) Expire(ctx context.Context, id uint64, cutoff time.Time) (bool, error) {
	var (
		expired bool
		resv    *model.Reservation
		room    *model.Room
		slot    *model.Slot
	)
	err := l.run(ctx, func(tx *sql.Tx) error {
		var err error
		resv, err = l.resvs.GetForUpdateTx(ctx, tx, id)
		if err != nil {
			return mapResvErr(err)
		}
		if resv.Status != model.StatusPending {
			return nil
		}
		slot, err = l.slots.GetByIDTx(ctx, tx, resv.SlotID)
		if err != nil {
			return mapSlotErr(err)
		}
		if !slot.StartsAt.Before(cutoff) {
			return nil
		}
		if err := l.resvs.SetStatusTx(ctx, tx, id, model.StatusCancelled, model.PaymentCancelled); err != nil {
			return err
		}
		if err := l.rooms.SetStatusTx(ctx, tx, resv.RoomID, model.RoomAvailable); err != nil {
			return err
		}
		room, _ = l.rooms.GetForUpdateTx(ctx, tx, resv.RoomID)
		expired = true
		return nil
	})
	if err != nil || !expired {
		return false, err
	}
	resv.Status = model.StatusCancelled
	resv.PaymentStatus = model.PaymentCancelled
	l.publish(ctx, queue.KindExpired, resv, room, slot)
	return true, nil
}

// ListPending exposes the sweeper's candidate query.
func (l *Ledger) ListPending(ctx context.Context) ([]repository.PendingRow, error) {
	return l.resvs.ListPending(ctx)
}

// Read-side queries delegate to the store; no locking needed.

func (l *Ledger) Get(ctx context.Context, id uint64) (*repository.Detail, error) {
	d, err := l.resvs.GetDetail(ctx, id)
	if err != nil {
		return nil, mapResvErr(err)
	}
	return d, nil
}

func (l *Ledger) ListAll(ctx context.Context) ([]repository.Detail, error) {
	return l.resvs.ListAll(ctx)
}

func (l *Ledger) ListByUser(ctx context.Context, email string) ([]repository.Detail, error) {
	return l.resvs.ListByClientEmail(ctx, email)
}

func (l *Ledger) ListByStatus(ctx context.Context, status model.ReservationStatus) ([]repository.Detail, error) {
	return l.resvs.ListByStatus(ctx, status)
}

func (l *Ledger) ListByPaymentStatus(ctx context.Context, payment model.PaymentStatus) ([]repository.Detail, error) {
	return l.resvs.ListByPaymentStatus(ctx, payment)
}

func (l *Ledger) FilterByDateRange(ctx context.Context, start, end time.Time) ([]repository.Detail, error) {
	return l.resvs.FilterByDateRange(ctx, start, end)
}

// DeleteRoom removes a room with an explicit cascade: deletion is blocked
// while any active reservation references the room; otherwise the
// (cancelled) reservations and slots are removed in the same transaction.
// The stored image path, if any, is returned so the caller can remove the
// file after commit.
func (l *Ledger) DeleteRoom(ctx context.Context, actor model.Actor, id uint64) (*string, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	var imagePath *string
	err := l.run(ctx, func(tx *sql.Tx) error {
		room, err := l.rooms.GetForUpdateTx(ctx, tx, id)
		if err != nil {
			return mapRoomErr(err)
		}
		busy, err := l.resvs.HasActiveByRoomTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if busy {
			return repository.ErrConflict
		}
		if err := l.resvs.DeleteCancelledByRoomTx(ctx, tx, id); err != nil {
			return err
		}
		if err := l.slots.DeleteByRoomTx(ctx, tx, id); err != nil {
			return err
		}
		imagePath = room.ImagePath
		return l.rooms.DeleteTx(ctx, tx, id)
	})
	if err != nil {
		return nil, err
	}
	return imagePath, nil
}

// publish emits a reservation event, logging and swallowing any failure.
func (l *Ledger) publish(ctx context.Context, kind string, resv *model.Reservation, room *model.Room, slot *model.Slot) {
	if l.events == nil || resv == nil {
		return
	}
	ev := queue.ReservationEvent{
		Kind:          kind,
		ReservationID: resv.ID,
		ClientName:    resv.ClientName,
		ClientEmail:   resv.ClientEmail,
		PartySize:     resv.PartySize,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	}
	if room != nil {
		ev.RoomName = room.Name
		ev.RoomCapacity = room.Capacity
		ev.PriceCents = room.Price
	}
	if slot != nil {
		ev.SlotStart = slot.StartsAt.UTC().Format(time.RFC3339)
		ev.SlotEnd = slot.EndsAt.UTC().Format(time.RFC3339)
	}
	if err := l.events.Publish(ctx, ev); err != nil {
		log.Printf("booking: publish %s for reservation %d failed: %v", kind, resv.ID, err)
	}
}

// mapRoomErr, mapSlotErr and mapResvErr translate repository sentinels
// into the booking error taxonomy so callers only ever match on one set.
func mapRoomErr(err error) error {
	if err == repository.ErrRoomNotFound {
		return ErrRoomNotFound
	}
	return err
}

func mapSlotErr(err error) error {
	if err == repository.ErrSlotNotFound {
		return ErrSlotNotFound
	}
	return err
}

func mapResvErr(err error) error {
	if err == repository.ErrReservationNotFound {
		return ErrReservationNotFound
	}
	return err
}
