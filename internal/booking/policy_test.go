package booking

import (
	"testing"
	"time"

	"github.com/wadhahbr/room-reservation/internal/model"
)

func TestValidateSlotBounds(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	cases := []struct {
		name    string
		start   time.Time
		end     time.Time
		wantErr error
	}{
		{"valid", base, base.Add(2 * time.Hour), nil},
		{"equal bounds", base, base, ErrInvalidSlotBounds},
		{"inverted", base.Add(time.Hour), base, ErrInvalidSlotBounds},
		{"zero start", time.Time{}, base, ErrInvalidSlotBounds},
		{"zero end", base, time.Time{}, ErrInvalidSlotBounds},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := validateSlotBounds(tc.start, tc.end); err != tc.wantErr {
				t.Fatalf("validateSlotBounds() = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestValidatePartySize(t *testing.T) {
	cases := []struct {
		n       uint32
		wantErr error
	}{
		{0, ErrInvalidPartySize},
		{1, nil},
		{500, nil},
		{model.MaxPartySize, nil},
		{model.MaxPartySize + 1, ErrInvalidPartySize},
	}
	for _, tc := range cases {
		if err := validatePartySize(tc.n); err != tc.wantErr {
			t.Errorf("validatePartySize(%d) = %v, want %v", tc.n, err, tc.wantErr)
		}
	}
}

func TestCheckAdmission(t *testing.T) {
	available := &model.Room{Status: model.RoomAvailable, Capacity: 10}
	unavailable := &model.Room{Status: model.RoomUnavailable, Capacity: 10}

	if err := checkAdmission(available, 10); err != nil {
		t.Fatalf("full-capacity party rejected: %v", err)
	}
	if err := checkAdmission(available, 11); err != ErrCapacityExceeded {
		t.Fatalf("oversized party: got %v, want ErrCapacityExceeded", err)
	}
	// Availability is reported before capacity.
	if err := checkAdmission(unavailable, 11); err != ErrRoomUnavailable {
		t.Fatalf("unavailable room: got %v, want ErrRoomUnavailable", err)
	}
}

func TestCanModify(t *testing.T) {
	resv := &model.Reservation{ClientEmail: "alice@example.com"}

	owner := model.Actor{Email: "alice@example.com", Role: model.RoleClient}
	if err := canModify(owner, resv); err != nil {
		t.Fatalf("owner denied: %v", err)
	}
	admin := model.Actor{Email: "boss@example.com", Role: model.RoleAdmin}
	if err := canModify(admin, resv); err != nil {
		t.Fatalf("admin denied: %v", err)
	}
	stranger := model.Actor{Email: "mallory@example.com", Role: model.RoleClient}
	if err := canModify(stranger, resv); err != ErrForbidden {
		t.Fatalf("stranger: got %v, want ErrForbidden", err)
	}
}
