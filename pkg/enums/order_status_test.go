package enums

import "testing"

func TestOrderStatusTransitions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusConfirmed, OrderStatusShipped, true},
		{OrderStatusShipped, OrderStatusCancelled, false},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusDelivered, OrderStatusRefunded, true},
		{OrderStatusCancelled, OrderStatusPending, false},
		{OrderStatusRefunded, OrderStatusPending, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	t.Parallel()

	if !OrderStatusCancelled.IsTerminal() {
		t.Error("cancelled should be terminal")
	}
	if !OrderStatusRefunded.IsTerminal() {
		t.Error("refunded should be terminal")
	}
	if OrderStatusPending.IsTerminal() {
		t.Error("pending should not be terminal")
	}
}

func TestParsePaymentMethod(t *testing.T) {
	t.Parallel()

	method, err := ParsePaymentMethod("cod")
	if err != nil {
		t.Fatalf("ParsePaymentMethod returned error: %v", err)
	}
	if method.RequiresGateway() {
		t.Error("cod must not require the gateway")
	}

	if _, err := ParsePaymentMethod("cheque"); err == nil {
		t.Error("expected unknown payment method to fail")
	}
}
