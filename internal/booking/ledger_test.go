package booking

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/wadhahbr/room-reservation/internal/model"
	"github.com/wadhahbr/room-reservation/internal/repository"
)

// In-memory stores backing the ledger in tests.  The tx parameter is
// unused: the test ledger runs its transaction function directly.

type memRooms struct {
	rooms map[uint64]*model.Room
}

func (m *memRooms) GetForUpdateTx(_ context.Context, _ *sql.Tx, id uint64) (*model.Room, error) {
	r, ok := m.rooms[id]
	if !ok {
		return nil, repository.ErrRoomNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memRooms) SetStatusTx(_ context.Context, _ *sql.Tx, id uint64, status model.RoomStatus) error {
	r, ok := m.rooms[id]
	if !ok {
		return repository.ErrRoomNotFound
	}
	r.Status = status
	return nil
}

func (m *memRooms) DeleteTx(_ context.Context, _ *sql.Tx, id uint64) error {
	delete(m.rooms, id)
	return nil
}

type memSlots struct {
	slots  map[uint64]*model.Slot
	nextID uint64
}

func (m *memSlots) GetByIDTx(_ context.Context, _ *sql.Tx, id uint64) (*model.Slot, error) {
	s, ok := m.slots[id]
	if !ok {
		return nil, repository.ErrSlotNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memSlots) OverlapExistsTx(_ context.Context, _ *sql.Tx, roomID uint64, start, end time.Time, excludeID uint64) (bool, error) {
	for _, s := range m.slots {
		if s.RoomID != roomID || s.ID == excludeID {
			continue
		}
		if model.Overlaps(start, end, s.StartsAt, s.EndsAt) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memSlots) CreateTx(_ context.Context, _ *sql.Tx, s *model.Slot) error {
	m.nextID++
	s.ID = m.nextID
	cp := *s
	m.slots[s.ID] = &cp
	return nil
}

func (m *memSlots) DeleteByRoomTx(_ context.Context, _ *sql.Tx, roomID uint64) error {
	for id, s := range m.slots {
		if s.RoomID == roomID {
			delete(m.slots, id)
		}
	}
	return nil
}

type memResvs struct {
	resvs  map[uint64]*model.Reservation
	nextID uint64
}

func (m *memResvs) GetForUpdateTx(_ context.Context, _ *sql.Tx, id uint64) (*model.Reservation, error) {
	r, ok := m.resvs[id]
	if !ok {
		return nil, repository.ErrReservationNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memResvs) ExistsActiveTx(_ context.Context, _ *sql.Tx, roomID, slotID, excludeID uint64) (bool, error) {
	for _, r := range m.resvs {
		if r.ID == excludeID {
			continue
		}
		if r.RoomID == roomID && r.SlotID == slotID && r.Status.Active() {
			return true, nil
		}
	}
	return false, nil
}

func (m *memResvs) CreateTx(_ context.Context, _ *sql.Tx, rv *model.Reservation) error {
	m.nextID++
	rv.ID = m.nextID
	cp := *rv
	m.resvs[rv.ID] = &cp
	return nil
}

func (m *memResvs) UpdateBookingTx(_ context.Context, _ *sql.Tx, id, slotID uint64, partySize uint32) error {
	r, ok := m.resvs[id]
	if !ok {
		return repository.ErrReservationNotFound
	}
	r.SlotID = slotID
	r.PartySize = partySize
	return nil
}

func (m *memResvs) SetStatusTx(_ context.Context, _ *sql.Tx, id uint64, status model.ReservationStatus, payment model.PaymentStatus) error {
	r, ok := m.resvs[id]
	if !ok {
		return repository.ErrReservationNotFound
	}
	r.Status = status
	r.PaymentStatus = payment
	return nil
}

func (m *memResvs) HasActiveByRoomTx(_ context.Context, _ *sql.Tx, roomID uint64) (bool, error) {
	for _, r := range m.resvs {
		if r.RoomID == roomID && r.Status.Active() {
			return true, nil
		}
	}
	return false, nil
}

func (m *memResvs) DeleteCancelledByRoomTx(_ context.Context, _ *sql.Tx, roomID uint64) error {
	for id, r := range m.resvs {
		if r.RoomID == roomID && r.Status == model.StatusCancelled {
			delete(m.resvs, id)
		}
	}
	return nil
}

func (m *memResvs) ListPending(context.Context) ([]repository.PendingRow, error) { return nil, nil }
func (m *memResvs) GetDetail(_ context.Context, _ uint64) (*repository.Detail, error) {
	return nil, repository.ErrReservationNotFound
}
func (m *memResvs) ListAll(context.Context) ([]repository.Detail, error) { return nil, nil }
func (m *memResvs) ListByClientEmail(_ context.Context, _ string) ([]repository.Detail, error) {
	return nil, nil
}
func (m *memResvs) ListByStatus(_ context.Context, _ model.ReservationStatus) ([]repository.Detail, error) {
	return nil, nil
}
func (m *memResvs) ListByPaymentStatus(_ context.Context, _ model.PaymentStatus) ([]repository.Detail, error) {
	return nil, nil
}
func (m *memResvs) FilterByDateRange(_ context.Context, _, _ time.Time) ([]repository.Detail, error) {
	return nil, nil
}

type ledgerFixture struct {
	ledger *Ledger
	rooms  *memRooms
	slots  *memSlots
	resvs  *memResvs
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	f := &ledgerFixture{
		rooms: &memRooms{rooms: map[uint64]*model.Room{}},
		slots: &memSlots{slots: map[uint64]*model.Slot{}},
		resvs: &memResvs{resvs: map[uint64]*model.Reservation{}},
	}
	f.ledger = &Ledger{
		rooms: f.rooms,
		slots: f.slots,
		resvs: f.resvs,
		run: func(ctx context.Context, fn func(tx *sql.Tx) error) error {
			return fn(nil)
		},
	}
	return f
}

func (f *ledgerFixture) addRoom(id uint64, status model.RoomStatus, capacity uint32) {
	f.rooms.rooms[id] = &model.Room{ID: id, Name: "Salle", Status: status, Capacity: capacity}
}

func (f *ledgerFixture) addSlot(id, roomID uint64, start, end time.Time) {
	f.slots.slots[id] = &model.Slot{ID: id, RoomID: roomID, StartsAt: start, EndsAt: end}
	if id > f.slots.nextID {
		f.slots.nextID = id
	}
}

var (
	asClient = model.Actor{ID: 2, Username: "amira", Email: "amira@example.com", Role: model.RoleClient}
	asAdmin  = model.Actor{ID: 1, Username: "boss", Email: "boss@example.com", Role: model.RoleAdmin}
)

func TestCreateSecondActiveReservationSameSlotRejected(t *testing.T) {
	f := newLedgerFixture(t)
	f.addRoom(1, model.RoomAvailable, 10)
	start := time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC)
	f.addSlot(5, 1, start, start.Add(2*time.Hour))
	ctx := context.Background()

	if _, err := f.ledger.Create(ctx, asClient, CreateRequest{RoomID: 1, SlotID: 5, PartySize: 4}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	other := model.Actor{ID: 3, Username: "karim", Email: "karim@example.com", Role: model.RoleClient}
	if _, err := f.ledger.Create(ctx, other, CreateRequest{RoomID: 1, SlotID: 5, PartySize: 2}); err != ErrSlotAlreadyReserved {
		t.Fatalf("second create: err = %v, want ErrSlotAlreadyReserved", err)
	}
}

func TestCancelledSlotCanBeRebooked(t *testing.T) {
	f := newLedgerFixture(t)
	f.addRoom(1, model.RoomAvailable, 10)
	start := time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC)
	f.addSlot(5, 1, start, start.Add(2*time.Hour))
	ctx := context.Background()

	resv, err := f.ledger.Create(ctx, asClient, CreateRequest{RoomID: 1, SlotID: 5, PartySize: 4})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := f.ledger.Cancel(ctx, asClient, resv.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := f.ledger.Create(ctx, asClient, CreateRequest{RoomID: 1, SlotID: 5, PartySize: 4}); err != nil {
		t.Fatalf("rebook after cancel: %v", err)
	}
}

func TestConfirmFlipsRoomUnavailable(t *testing.T) {
	f := newLedgerFixture(t)
	f.addRoom(1, model.RoomAvailable, 10)
	start := time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC)
	f.addSlot(5, 1, start, start.Add(2*time.Hour))
	ctx := context.Background()

	resv, err := f.ledger.Create(ctx, asClient, CreateRequest{RoomID: 1, SlotID: 5, PartySize: 4})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if f.rooms.rooms[1].Status != model.RoomAvailable {
		t.Fatal("create must not touch the room status")
	}
	if _, err := f.ledger.Confirm(ctx, asAdmin, resv.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if got := f.rooms.rooms[1].Status; got != model.RoomUnavailable {
		t.Fatalf("room status after confirm = %s, want %s", got, model.RoomUnavailable)
	}
	if _, err := f.ledger.Confirm(ctx, asClient, resv.ID); err != ErrForbidden {
		t.Fatalf("client confirm: err = %v, want ErrForbidden", err)
	}
}

func TestCancelConfirmedReleasesRoom(t *testing.T) {
	f := newLedgerFixture(t)
	f.addRoom(1, model.RoomAvailable, 10)
	start := time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC)
	f.addSlot(5, 1, start, start.Add(2*time.Hour))
	ctx := context.Background()

	resv, err := f.ledger.Create(ctx, asClient, CreateRequest{RoomID: 1, SlotID: 5, PartySize: 4})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.ledger.Confirm(ctx, asAdmin, resv.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if err := f.ledger.Cancel(ctx, asClient, resv.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got := f.rooms.rooms[1].Status; got != model.RoomAvailable {
		t.Fatalf("room status after cancel = %s, want %s", got, model.RoomAvailable)
	}
	stored := f.resvs.resvs[resv.ID]
	if stored.Status != model.StatusCancelled || stored.PaymentStatus != model.PaymentCancelled {
		t.Fatalf("reservation after cancel = %s/%s, want CANCELLED/ANNULE", stored.Status, stored.PaymentStatus)
	}
	if err := f.ledger.Cancel(ctx, asClient, resv.ID); err != ErrAlreadyCancelled {
		t.Fatalf("second cancel: err = %v, want ErrAlreadyCancelled", err)
	}
}

func TestCancelPaymentOnConfirmedReleasesRoom(t *testing.T) {
	f := newLedgerFixture(t)
	f.addRoom(1, model.RoomAvailable, 10)
	start := time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC)
	f.addSlot(5, 1, start, start.Add(2*time.Hour))
	ctx := context.Background()

	resv, err := f.ledger.Create(ctx, asClient, CreateRequest{RoomID: 1, SlotID: 5, PartySize: 4})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.ledger.Confirm(ctx, asAdmin, resv.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if _, err := f.ledger.CancelPayment(ctx, asAdmin, resv.ID); err != nil {
		t.Fatalf("cancel payment: %v", err)
	}
	if got := f.rooms.rooms[1].Status; got != model.RoomAvailable {
		t.Fatalf("room status after payment cancel = %s, want %s", got, model.RoomAvailable)
	}
	stored := f.resvs.resvs[resv.ID]
	if stored.Status != model.StatusCancelled {
		t.Fatalf("reservation after payment cancel = %s, want CANCELLED", stored.Status)
	}
}

func TestConfirmPaymentRequiresConfirmedReservation(t *testing.T) {
	f := newLedgerFixture(t)
	f.addRoom(1, model.RoomAvailable, 10)
	start := time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC)
	f.addSlot(5, 1, start, start.Add(2*time.Hour))
	ctx := context.Background()

	resv, err := f.ledger.Create(ctx, asClient, CreateRequest{RoomID: 1, SlotID: 5, PartySize: 4})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.ledger.ConfirmPayment(ctx, asAdmin, resv.ID); err != ErrNotConfirmed {
		t.Fatalf("pay pending: err = %v, want ErrNotConfirmed", err)
	}
	if _, err := f.ledger.Confirm(ctx, asAdmin, resv.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if _, err := f.ledger.ConfirmPayment(ctx, asAdmin, resv.ID); err != nil {
		t.Fatalf("pay confirmed: %v", err)
	}
	if _, err := f.ledger.ConfirmPayment(ctx, asAdmin, resv.ID); err != ErrAlreadyPaid {
		t.Fatalf("pay twice: err = %v, want ErrAlreadyPaid", err)
	}
}

func TestCreateAdHocSlotRejectsOverlap(t *testing.T) {
	f := newLedgerFixture(t)
	f.addRoom(1, model.RoomAvailable, 10)
	start := time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC)
	f.addSlot(5, 1, start, start.Add(2*time.Hour))
	ctx := context.Background()

	// Abutting intervals conflict under the inclusive bounds.
	_, err := f.ledger.Create(ctx, asClient, CreateRequest{
		RoomID:    1,
		Start:     start.Add(2 * time.Hour),
		End:       start.Add(3 * time.Hour),
		PartySize: 4,
	})
	if err != ErrSlotOverlap {
		t.Fatalf("abutting ad-hoc slot: err = %v, want ErrSlotOverlap", err)
	}
}

func TestExpireLeavesConfirmedAlone(t *testing.T) {
	f := newLedgerFixture(t)
	f.addRoom(1, model.RoomAvailable, 10)
	start := time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC)
	f.addSlot(5, 1, start, start.Add(2*time.Hour))
	ctx := context.Background()

	resv, err := f.ledger.Create(ctx, asClient, CreateRequest{RoomID: 1, SlotID: 5, PartySize: 4})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.ledger.Confirm(ctx, asAdmin, resv.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	cutoff := start.Add(48 * time.Hour)
	expired, err := f.ledger.Expire(ctx, resv.ID, cutoff)
	if err != nil {
		t.Fatalf("expire: %v", err)
	}
	if expired {
		t.Fatal("confirmed reservation must not be expired")
	}
	if got := f.rooms.rooms[1].Status; got != model.RoomUnavailable {
		t.Fatalf("room status = %s, want still %s", got, model.RoomUnavailable)
	}
}

func TestExpireCancelsStalePending(t *testing.T) {
	f := newLedgerFixture(t)
	f.addRoom(1, model.RoomAvailable, 10)
	start := time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC)
	f.addSlot(5, 1, start, start.Add(2*time.Hour))
	ctx := context.Background()

	resv, err := f.ledger.Create(ctx, asClient, CreateRequest{RoomID: 1, SlotID: 5, PartySize: 4})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	expired, err := f.ledger.Expire(ctx, resv.ID, start.Add(48*time.Hour))
	if err != nil {
		t.Fatalf("expire: %v", err)
	}
	if !expired {
		t.Fatal("stale pending reservation should expire")
	}
	if got := f.resvs.resvs[resv.ID].Status; got != model.StatusCancelled {
		t.Fatalf("status after expire = %s, want CANCELLED", got)
	}
	// The pair is free again.
	if _, err := f.ledger.Create(ctx, asClient, CreateRequest{RoomID: 1, SlotID: 5, PartySize: 4}); err != nil {
		t.Fatalf("rebook after expiry: %v", err)
	}
}
