package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/wadhahbr/room-reservation/internal/booking"
	"github.com/wadhahbr/room-reservation/internal/model"
	"github.com/wadhahbr/room-reservation/internal/repository"
	"github.com/wadhahbr/room-reservation/internal/storage"
)

// RoomHandler exposes room CRUD plus image upload.  Mutations are
// admin-only; listing and reading are public so clients can browse.
type RoomHandler struct {
	Rooms  *repository.RoomRepo
	Ledger *booking.Ledger
	Images *storage.ImageStore
}

func NewRoomHandler(r *repository.RoomRepo, l *booking.Ledger, img *storage.ImageStore) *RoomHandler {
	return &RoomHandler{Rooms: r, Ledger: l, Images: img}
}

type roomReq struct {
	Name       string `json:"name"`
	PriceCents uint32 `json:"price_cents"`
	Capacity   uint32 `json:"capacity"`
	Status     string `json:"status"`
}

// Create registers a new room, DISPONIBLE unless the body says otherwise.
func (h *RoomHandler) Create(c echo.Context) error {
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Capacity == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and positive capacity required"})
	}
	status := model.RoomAvailable
	if req.Status != "" {
		s, err := model.ParseRoomStatus(req.Status)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
		}
		status = s
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	room, err := h.Rooms.Create(ctx, req.Name, req.PriceCents, req.Capacity, status, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create room failed"})
	}
	return c.JSON(http.StatusCreated, room)
}

// List returns all rooms.
func (h *RoomHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rooms, err := h.Rooms.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list rooms failed"})
	}
	return c.JSON(http.StatusOK, rooms)
}

// Get returns one room by id.
func (h *RoomHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	room, err := h.Rooms.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrRoomNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load room failed"})
	}
	return c.JSON(http.StatusOK, room)
}

// Update modifies name, price, capacity and status.
func (h *RoomHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Capacity == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and positive capacity required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	room, err := h.Rooms.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrRoomNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load room failed"})
	}
	room.Name = req.Name
	room.Price = req.PriceCents
	room.Capacity = req.Capacity
	if req.Status != "" {
		s, err := model.ParseRoomStatus(req.Status)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
		}
		room.Status = s
	}
	if err := h.Rooms.Update(ctx, room); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update room failed"})
	}
	return c.JSON(http.StatusOK, room)
}

// Delete removes a room through the ledger, which blocks deletion while
// active reservations reference it and cascades slots and cancelled
// reservations otherwise.
func (h *RoomHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	actor, ok := actorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	imagePath, err := h.Ledger.DeleteRoom(ctx, actor, id)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "room has active reservations"})
		}
		return writeBookingError(c, err)
	}
	if imagePath != nil && h.Images != nil {
		_ = h.Images.Remove(*imagePath)
	}
	return c.NoContent(http.StatusNoContent)
}

// UploadImage stores a room image from a multipart form ("image" field)
// and records its name on the room, replacing any previous image.
func (h *RoomHandler) UploadImage(c echo.Context) error {
	if h.Images == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "image storage disabled"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	fh, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "image file required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	room, err := h.Rooms.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrRoomNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load room failed"})
	}

	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "open upload failed"})
	}
	defer src.Close()

	name, err := h.Images.Save(src, fh.Filename)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedImage) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unsupported image format"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store image failed"})
	}

	old := room.ImagePath
	room.ImagePath = &name
	if err := h.Rooms.Update(ctx, room); err != nil {
		_ = h.Images.Remove(name)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update room failed"})
	}
	if old != nil {
		_ = h.Images.Remove(*old)
	}
	return c.JSON(http.StatusOK, room)
}

// ServeImage streams a stored room image.
func (h *RoomHandler) ServeImage(c echo.Context) error {
	if h.Images == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "image storage disabled"})
	}
	p, err := h.Images.Path(c.Param("name"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "image not found"})
	}
	return c.File(p)
}
