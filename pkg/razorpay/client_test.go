package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vashudha/ghee-storefront/pkg/config"
	"github.com/vashudha/ghee-storefront/pkg/logger"
)

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := NewClient(context.Background(), config.RazorpayConfig{
		KeyID:     "rzp_test_key",
		KeySecret: "rzp_test_secret",
		BaseURL:   baseURL,
	}, logger.New(logger.Options{ServiceName: "test"}))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return client
}

func TestNewClientRequiresCredentials(t *testing.T) {
	t.Parallel()

	logg := logger.New(logger.Options{ServiceName: "test"})
	if _, err := NewClient(context.Background(), config.RazorpayConfig{KeySecret: "s"}, logg); err != errKeyIDRequired {
		t.Fatalf("expected key id error, got %v", err)
	}
	if _, err := NewClient(context.Background(), config.RazorpayConfig{KeyID: "k"}, logg); err != errKeySecretRequired {
		t.Fatalf("expected key secret error, got %v", err)
	}
}

func TestCreateOrderScalesToPaise(t *testing.T) {
	t.Parallel()

	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, pass, ok := r.BasicAuth(); !ok || user != "rzp_test_key" || pass != "rzp_test_secret" {
			t.Errorf("missing or wrong basic auth: %s/%s", user, pass)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(Order{ID: "order_123", Amount: 54500, Currency: "INR", Status: "created"})
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	order, err := client.CreateOrder(context.Background(), decimal.NewFromInt(545), "INR", "GHEE-1001")
	if err != nil {
		t.Fatalf("CreateOrder returned error: %v", err)
	}
	if order.ID != "order_123" {
		t.Fatalf("unexpected order id %q", order.ID)
	}
	if got := received["amount"].(float64); got != 54500 {
		t.Fatalf("expected 54500 paise on the wire, got %v", got)
	}
}

func TestCreateOrderRejectsGatewayError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"description":"bad amount"}}`, http.StatusBadRequest)
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	if _, err := client.CreateOrder(context.Background(), decimal.NewFromInt(10), "INR", "r"); err == nil {
		t.Fatal("expected gateway rejection to surface")
	}
}

func TestAvailable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	client := testClient(t, server.URL)

	if err := client.Available(context.Background()); err != nil {
		t.Fatalf("an HTTP response should count as available, got %v", err)
	}

	server.Close()
	if err := client.Available(context.Background()); err == nil {
		t.Fatal("expected transport failure to report unavailable")
	}
}

func TestVerifySignature(t *testing.T) {
	t.Parallel()

	client := testClient(t, "http://localhost:0")

	mac := hmac.New(sha256.New, []byte("rzp_test_secret"))
	mac.Write([]byte("order_123|pay_456"))
	valid := hex.EncodeToString(mac.Sum(nil))

	if !client.VerifySignature("order_123", "pay_456", valid) {
		t.Fatal("expected valid signature to verify")
	}
	if client.VerifySignature("order_123", "pay_456", "tampered") {
		t.Fatal("expected tampered signature to fail")
	}
	if client.VerifySignature("", "pay_456", valid) {
		t.Fatal("expected empty order id to fail")
	}
}

func TestAmountToPaise(t *testing.T) {
	t.Parallel()

	if got := AmountToPaise(decimal.RequireFromString("499.50")); got != 49950 {
		t.Fatalf("expected 49950, got %d", got)
	}
	if got := AmountToPaise(decimal.NewFromInt(50)); got != 5000 {
		t.Fatalf("expected 5000, got %d", got)
	}
}
