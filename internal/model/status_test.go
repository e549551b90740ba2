package model

import "testing"

func TestReservationStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to ReservationStatus
		ok       bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusPending, false},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusConfirmed, false},
		{StatusConfirmed, StatusPending, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCancelled, StatusCancelled, false},
	}
	for _, c := range cases {
		if got := c.from.CanTransitionTo(c.to); got != c.ok {
			t.Errorf("%s -> %s: got %v, want %v", c.from, c.to, got, c.ok)
		}
	}
}

func TestReservationStatusActive(t *testing.T) {
	if !StatusPending.Active() || !StatusConfirmed.Active() {
		t.Error("pending and confirmed must be active")
	}
	if StatusCancelled.Active() {
		t.Error("cancelled must not be active")
	}
}

func TestPaymentStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to PaymentStatus
		ok       bool
	}{
		{PaymentPending, PaymentPaid, true},
		{PaymentPending, PaymentCancelled, true},
		{PaymentPending, PaymentPending, false},
		{PaymentPaid, PaymentCancelled, false},
		{PaymentPaid, PaymentPaid, false},
		{PaymentCancelled, PaymentPaid, false},
	}
	for _, c := range cases {
		if got := c.from.CanTransitionTo(c.to); got != c.ok {
			t.Errorf("%s -> %s: got %v, want %v", c.from, c.to, got, c.ok)
		}
	}
}

func TestParseStatusRejectsUnknown(t *testing.T) {
	if _, err := ParseReservationStatus("DONE"); err == nil {
		t.Error("expected error for unknown reservation status")
	}
	if _, err := ParsePaymentStatus("PAID"); err == nil {
		t.Error("expected error for unknown payment status")
	}
	if _, err := ParseRoomStatus("FREE"); err == nil {
		t.Error("expected error for unknown room status")
	}
	if s, err := ParseReservationStatus("PENDING"); err != nil || s != StatusPending {
		t.Errorf("PENDING should parse, got %v %v", s, err)
	}
}
