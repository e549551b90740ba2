package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/wadhahbr/room-reservation/internal/booking"
	"github.com/wadhahbr/room-reservation/internal/model"
)

// ReservationHandler exposes the booking lifecycle over HTTP.  All
// decisions live in the booking ledger; this layer only parses, stamps
// the actor and renders.
type ReservationHandler struct {
	Ledger *booking.Ledger
}

func NewReservationHandler(l *booking.Ledger) *ReservationHandler {
	return &ReservationHandler{Ledger: l}
}

type createReservationReq struct {
	RoomID    uint64    `json:"room_id"`
	SlotID    uint64    `json:"slot_id"`
	Start     time.Time `json:"starts_at"`
	End       time.Time `json:"ends_at"`
	PartySize uint32    `json:"party_size"`
}

type updateReservationReq struct {
	SlotID    uint64    `json:"slot_id"`
	Start     time.Time `json:"starts_at"`
	End       time.Time `json:"ends_at"`
	PartySize uint32    `json:"party_size"`
}

// Create books a room for the authenticated client.  The reservation
// starts PENDING; an admin confirms it later.
func (h *ReservationHandler) Create(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.RoomID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "room_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	resv, err := h.Ledger.Create(ctx, actor, booking.CreateRequest{
		RoomID:    req.RoomID,
		SlotID:    req.SlotID,
		Start:     req.Start,
		End:       req.End,
		PartySize: req.PartySize,
	})
	if err != nil {
		return writeBookingError(c, err)
	}
	return c.JSON(http.StatusCreated, resv)
}

// Confirm validates a pending reservation (admin only).
func (h *ReservationHandler) Confirm(c echo.Context) error {
	return h.transition(c, h.Ledger.Confirm)
}

// ConfirmPayment records the on-site payment (admin only).
func (h *ReservationHandler) ConfirmPayment(c echo.Context) error {
	return h.transition(c, h.Ledger.ConfirmPayment)
}

// CancelPayment voids the payment and the reservation with it (admin only).
func (h *ReservationHandler) CancelPayment(c echo.Context) error {
	return h.transition(c, h.Ledger.CancelPayment)
}

func (h *ReservationHandler) transition(c echo.Context, op func(context.Context, model.Actor, uint64) (*model.Reservation, error)) error {
	actor, ok := actorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	resv, err := op(ctx, actor, id)
	if err != nil {
		return writeBookingError(c, err)
	}
	return c.JSON(http.StatusOK, resv)
}

// Update modifies slot or party size; owner or admin only.
func (h *ReservationHandler) Update(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	resv, err := h.Ledger.Update(ctx, actor, id, booking.UpdateRequest{
		SlotID:    req.SlotID,
		Start:     req.Start,
		End:       req.End,
		PartySize: req.PartySize,
	})
	if err != nil {
		return writeBookingError(c, err)
	}
	return c.JSON(http.StatusOK, resv)
}

// Cancel cancels a reservation; owner or admin only.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := h.Ledger.Cancel(ctx, actor, id); err != nil {
		return writeBookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "reservation cancelled"})
}

// Get returns one reservation with room and slot details.  Clients only
// see their own reservations; admins see everything.
func (h *ReservationHandler) Get(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	d, err := h.Ledger.Get(ctx, id)
	if err != nil {
		return writeBookingError(c, err)
	}
	if !actor.IsAdmin() && d.ClientEmail != actor.Email {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, d)
}

// ListMine returns the authenticated client's reservations.
func (h *ReservationHandler) ListMine(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Ledger.ListByUser(ctx, actor.Email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list reservations failed"})
	}
	return c.JSON(http.StatusOK, list)
}

// ListAll returns every reservation (admin only, enforced by the router).
// Optional filters: ?status=, ?payment_status=, ?start=&end= (RFC3339).
func (h *ReservationHandler) ListAll(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if s := c.QueryParam("status"); s != "" {
		status, err := model.ParseReservationStatus(s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
		}
		list, err := h.Ledger.ListByStatus(ctx, status)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list reservations failed"})
		}
		return c.JSON(http.StatusOK, list)
	}
	if p := c.QueryParam("payment_status"); p != "" {
		payment, err := model.ParsePaymentStatus(p)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown payment status"})
		}
		list, err := h.Ledger.ListByPaymentStatus(ctx, payment)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list reservations failed"})
		}
		return c.JSON(http.StatusOK, list)
	}
	if start, end := c.QueryParam("start"), c.QueryParam("end"); start != "" || end != "" {
		from, err := time.Parse(time.RFC3339, start)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start"})
		}
		to, err := time.Parse(time.RFC3339, end)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end"})
		}
		if to.Before(from) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "end before start"})
		}
		list, err := h.Ledger.FilterByDateRange(ctx, from, to)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "filter reservations failed"})
		}
		return c.JSON(http.StatusOK, list)
	}

	list, err := h.Ledger.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list reservations failed"})
	}
	return c.JSON(http.StatusOK, list)
}
