package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/wadhahbr/room-reservation/internal/booking"
	"github.com/wadhahbr/room-reservation/internal/model"
)

func newTestContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestActorFrom(t *testing.T) {
	c, _ := newTestContext(t)
	// JWT numeric claims arrive as float64 after JSON decoding.
	c.Set("user_id", float64(7))
	c.Set("username", "amira")
	c.Set("email", "amira@example.com")
	c.Set("role", model.RoleClient)

	actor, ok := actorFrom(c)
	if !ok {
		t.Fatal("actorFrom returned false with claims present")
	}
	want := model.Actor{ID: 7, Username: "amira", Email: "amira@example.com", Role: model.RoleClient}
	if actor != want {
		t.Fatalf("actor = %+v, want %+v", actor, want)
	}
}

func TestActorFromMissing(t *testing.T) {
	c, _ := newTestContext(t)
	if _, ok := actorFrom(c); ok {
		t.Fatal("actorFrom returned true without claims")
	}
}

func TestWriteBookingErrorStatus(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{booking.ErrRoomNotFound, http.StatusNotFound},
		{booking.ErrSlotNotFound, http.StatusNotFound},
		{booking.ErrReservationNotFound, http.StatusNotFound},
		{booking.ErrInvalidSlotBounds, http.StatusBadRequest},
		{booking.ErrInvalidPartySize, http.StatusBadRequest},
		{booking.ErrSlotRoomMismatch, http.StatusBadRequest},
		{booking.ErrCapacityExceeded, http.StatusBadRequest},
		{booking.ErrForbidden, http.StatusForbidden},
		{booking.ErrSlotOverlap, http.StatusConflict},
		{booking.ErrSlotAlreadyReserved, http.StatusConflict},
		{booking.ErrRoomUnavailable, http.StatusConflict},
		{booking.ErrAlreadyConfirmed, http.StatusConflict},
		{booking.ErrAlreadyCancelled, http.StatusConflict},
		{booking.ErrAlreadyPaid, http.StatusConflict},
		{booking.ErrNotConfirmed, http.StatusConflict},
	}
	for _, tc := range cases {
		c, rec := newTestContext(t)
		if err := writeBookingError(c, tc.err); err != nil {
			t.Fatalf("%v: handler error %v", tc.err, err)
		}
		if rec.Code != tc.code {
			t.Errorf("%v: status = %d, want %d", tc.err, rec.Code, tc.code)
		}
	}
}

func TestWriteBookingErrorOpaque500(t *testing.T) {
	c, rec := newTestContext(t)
	if err := writeBookingError(c, errInternal{}); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "secret detail") {
		t.Fatal("internal error detail leaked to the client")
	}
}

type errInternal struct{}

func (errInternal) Error() string { return "secret detail" }
