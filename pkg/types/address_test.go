package types

import (
	"strings"
	"testing"
)

func TestAddressValueRoundTrip(t *testing.T) {
	t.Parallel()

	line2 := "Near Shiv Mandir"
	addr := Address{
		FullName:   "Asha Patel",
		Phone:      "+919876543210",
		Line1:      "12 MG Road",
		Line2:      &line2,
		City:       "Ahmedabad",
		State:      "Gujarat",
		PostalCode: "380001",
	}

	value, err := addr.Value()
	if err != nil {
		t.Fatalf("Value() returned error: %v", err)
	}

	var decoded Address
	if err := decoded.Scan(value); err != nil {
		t.Fatalf("Scan() returned error: %v", err)
	}

	if decoded.Country != "IN" {
		t.Fatalf("expected country default IN, got %q", decoded.Country)
	}
	if decoded.Line1 != addr.Line1 || decoded.City != addr.City {
		t.Fatalf("round trip mismatch: %+v", decoded)
	}
	if decoded.Line2 == nil || *decoded.Line2 != line2 {
		t.Fatalf("expected line2 to survive round trip, got %v", decoded.Line2)
	}
}

func TestAddressValueRequiresFields(t *testing.T) {
	t.Parallel()

	addr := Address{FullName: "Asha Patel", Phone: "+919876543210", City: "Pune"}
	if _, err := addr.Value(); err == nil || !strings.Contains(err.Error(), "line1") {
		t.Fatalf("expected missing line1 error, got %v", err)
	}
}

func TestAddressScanNil(t *testing.T) {
	t.Parallel()

	addr := Address{Line1: "stale"}
	if err := addr.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) returned error: %v", err)
	}
	if addr.Line1 != "" {
		t.Fatal("expected Scan(nil) to reset the address")
	}
}
