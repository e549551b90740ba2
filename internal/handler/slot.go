package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/wadhahbr/room-reservation/internal/model"
	"github.com/wadhahbr/room-reservation/internal/repository"
)

// SlotHandler manages the slot catalogue.  Admins create and edit slots;
// everybody can browse them.  Slots created here go through the same
// overlap check the booking path uses.
type SlotHandler struct {
	DB    *sql.DB
	Slots *repository.SlotRepo
	Rooms *repository.RoomRepo
}

func NewSlotHandler(db *sql.DB, s *repository.SlotRepo, r *repository.RoomRepo) *SlotHandler {
	return &SlotHandler{DB: db, Slots: s, Rooms: r}
}

type slotReq struct {
	RoomID uint64    `json:"room_id"`
	Start  time.Time `json:"starts_at"`
	End    time.Time `json:"ends_at"`
}

// Create adds a slot to a room after validating bounds and overlap.
func (h *SlotHandler) Create(c echo.Context) error {
	var req slotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Start.IsZero() || req.End.IsZero() || !req.Start.Before(req.End) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at must be before ends_at"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := h.Rooms.GetForUpdateTx(ctx, tx, req.RoomID); err != nil {
		if err == repository.ErrRoomNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load room failed"})
	}
	overlap, err := h.Slots.OverlapExistsTx(ctx, tx, req.RoomID, req.Start, req.End, 0)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "overlap check failed"})
	}
	if overlap {
		return c.JSON(http.StatusConflict, echo.Map{"error": "slot overlaps an existing slot"})
	}
	slot := &model.Slot{RoomID: req.RoomID, StartsAt: req.Start.UTC(), EndsAt: req.End.UTC()}
	if err := h.Slots.CreateTx(ctx, tx, slot); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create slot failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true
	return c.JSON(http.StatusCreated, slot)
}

// List returns every slot, or a room's slots with ?room_id=.
func (h *SlotHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if rid := c.QueryParam("room_id"); rid != "" {
		id, err := strconv.ParseUint(rid, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room_id"})
		}
		slots, err := h.Slots.ListByRoom(ctx, id)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list slots failed"})
		}
		return c.JSON(http.StatusOK, slots)
	}
	slots, err := h.Slots.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list slots failed"})
	}
	return c.JSON(http.StatusOK, slots)
}

// Get returns one slot by id.
func (h *SlotHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	slot, err := h.Slots.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrSlotNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load slot failed"})
	}
	return c.JSON(http.StatusOK, slot)
}

// Update rewrites a slot's interval after re-running the overlap check
// against the room's other slots.
func (h *SlotHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req slotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Start.IsZero() || req.End.IsZero() || !req.Start.Before(req.End) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at must be before ends_at"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	slot, err := h.Slots.GetByIDTx(ctx, tx, id)
	if err != nil {
		if err == repository.ErrSlotNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load slot failed"})
	}
	overlap, err := h.Slots.OverlapExistsTx(ctx, tx, slot.RoomID, req.Start, req.End, slot.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "overlap check failed"})
	}
	if overlap {
		return c.JSON(http.StatusConflict, echo.Map{"error": "slot overlaps an existing slot"})
	}
	slot.StartsAt = req.Start.UTC()
	slot.EndsAt = req.End.UTC()
	if err := h.Slots.UpdateTx(ctx, tx, slot); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update slot failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true
	return c.JSON(http.StatusOK, slot)
}

// Delete removes a slot unless an active reservation still references it.
func (h *SlotHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Slots.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrSlotNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "slot has active reservations"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete slot failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListAvailable returns future slots with no active reservation, the
// browse endpoint clients use before booking.
func (h *SlotHandler) ListAvailable(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	slots, err := h.Slots.ListAvailable(ctx, time.Now().UTC())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list slots failed"})
	}
	return c.JSON(http.StatusOK, slots)
}
