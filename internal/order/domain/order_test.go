package domain

import "testing"

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusPending, StatusConfirmed},
		{StatusPending, StatusCancelled},
		{StatusConfirmed, StatusShipped},
		{StatusConfirmed, StatusCancelled},
		{StatusShipped, StatusDelivered},
	}
	for _, tc := range allowed {
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	rejected := []struct{ from, to Status }{
		{StatusDelivered, StatusConfirmed},
		{StatusDelivered, StatusCancelled},
		{StatusCancelled, StatusPending},
		{StatusCancelled, StatusCancelled},
		{StatusShipped, StatusCancelled},
		{StatusPending, StatusShipped},
		{StatusPending, StatusDelivered},
		{StatusConfirmed, StatusDelivered},
	}
	for _, tc := range rejected {
		if CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be rejected", tc.from, tc.to)
		}
	}
}

func TestParseStatus(t *testing.T) {
	t.Run("known statuses parse", func(t *testing.T) {
		for _, s := range []string{"pending", "confirmed", "shipped", "delivered", "cancelled"} {
			if _, ok := ParseStatus(s); !ok {
				t.Errorf("expected %q to parse", s)
			}
		}
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		if _, ok := ParseStatus("returned"); ok {
			t.Error("expected unknown status to be rejected")
		}
	})
}

func TestIsTerminal(t *testing.T) {
	if !StatusDelivered.IsTerminal() || !StatusCancelled.IsTerminal() {
		t.Error("delivered and cancelled must be terminal")
	}
	if StatusPending.IsTerminal() || StatusConfirmed.IsTerminal() || StatusShipped.IsTerminal() {
		t.Error("pending, confirmed and shipped must not be terminal")
	}
}
