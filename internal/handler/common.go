// Package handler contains the Echo HTTP handlers for the reservation
// API.  Handlers parse and validate the request, rebuild the acting user
// from the JWT claims, call into repositories or the booking ledger, and
// map domain errors to HTTP status codes.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/wadhahbr/room-reservation/internal/booking"
	"github.com/wadhahbr/room-reservation/internal/model"
	"github.com/wadhahbr/room-reservation/internal/repository"
)

// actorFrom rebuilds the acting user from the claims JWTAuth stored in
// the context.  The boolean is false when no authenticated user is
// present.
func actorFrom(c echo.Context) (model.Actor, bool) {
	id, ok := claimUint64(c.Get("user_id"))
	if !ok {
		return model.Actor{}, false
	}
	a := model.Actor{ID: id}
	if v, ok := c.Get("username").(string); ok {
		a.Username = v
	}
	if v, ok := c.Get("email").(string); ok {
		a.Email = v
	}
	if v, ok := c.Get("role").(string); ok {
		a.Role = v
	}
	return a, true
}

// claimUint64 converts a JWT numeric claim, which arrives as float64
// after JSON decoding, into a uint64 ID.
func claimUint64(v interface{}) (uint64, bool) {
	switch t := v.(type) {
	case float64:
		if t < 0 {
			return 0, false
		}
		return uint64(t), true
	case string:
		n, err := strconv.ParseUint(t, 10, 64)
		return n, err == nil
	}
	return 0, false
}

// pathID parses the :id route parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// writeBookingError maps the booking error taxonomy onto HTTP responses.
// Unknown errors become an opaque 500 so internals never leak.
func writeBookingError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, booking.ErrRoomNotFound),
		errors.Is(err, booking.ErrSlotNotFound),
		errors.Is(err, booking.ErrReservationNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrInvalidSlotBounds),
		errors.Is(err, booking.ErrInvalidPartySize),
		errors.Is(err, booking.ErrSlotRoomMismatch),
		errors.Is(err, booking.ErrCapacityExceeded):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, booking.ErrSlotOverlap),
		errors.Is(err, booking.ErrSlotAlreadyReserved),
		errors.Is(err, booking.ErrRoomUnavailable),
		errors.Is(err, booking.ErrAlreadyConfirmed),
		errors.Is(err, booking.ErrAlreadyCancelled),
		errors.Is(err, booking.ErrAlreadyPaid),
		errors.Is(err, booking.ErrNotConfirmed),
		errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	}
	c.Logger().Errorf("internal error: %v", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
