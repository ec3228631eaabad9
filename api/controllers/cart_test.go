package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vashudha/ghee-storefront/api/middleware"
	"github.com/vashudha/ghee-storefront/internal/pricing"
	"github.com/vashudha/ghee-storefront/pkg/db/models"
	pkgerrors "github.com/vashudha/ghee-storefront/pkg/errors"
)

type stubCartService struct {
	record  *models.CartRecord
	err     error
	lastQty int
	cleared bool
}

func (s *stubCartService) Get(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error) {
	return s.record, s.err
}

func (s *stubCartService) AddItem(ctx context.Context, userID, productID uuid.UUID, qty int) (*models.CartRecord, error) {
	s.lastQty = qty
	return s.record, s.err
}

func (s *stubCartService) UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, qty int) (*models.CartRecord, error) {
	s.lastQty = qty
	return s.record, s.err
}

func (s *stubCartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*models.CartRecord, error) {
	return s.record, s.err
}

func (s *stubCartService) Clear(ctx context.Context, userID uuid.UUID) error {
	s.cleared = true
	return s.err
}

func testPricingConfig() pricing.Config {
	return pricing.Config{
		FreeShippingThreshold: decimal.NewFromInt(500),
		FlatShippingFee:       decimal.NewFromInt(50),
	}
}

func testCartRecord(userID uuid.UUID) *models.CartRecord {
	return &models.CartRecord{
		ID:     uuid.New(),
		UserID: userID,
		Items: []models.CartItem{
			{
				ProductID: uuid.New(),
				Name:      "A2 Cow Ghee 500ml",
				UnitPrice: decimal.NewFromInt(649),
				Quantity:  2,
			},
		},
	}
}

func authedRequest(method, target string, body string) *http.Request {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	return req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
}

func TestCartFetchSuccess(t *testing.T) {
	userID := uuid.New()
	record := testCartRecord(userID)
	handler := CartFetch(&stubCartService{record: record}, testPricingConfig(), nil)

	req := authedRequest(http.MethodGet, "/api/v1/cart", "")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data cartResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Items) != 1 {
		t.Fatalf("expected 1 item got %d", len(envelope.Data.Items))
	}
	if envelope.Data.Items[0].LineTotal != "1298" {
		t.Fatalf("unexpected line total %s", envelope.Data.Items[0].LineTotal)
	}
	// 1298 clears the free shipping threshold
	if envelope.Data.Summary.Shipping.String() != "0" {
		t.Fatalf("expected free shipping got %s", envelope.Data.Summary.Shipping)
	}
}

func TestCartFetchMissingUserContext(t *testing.T) {
	handler := CartFetch(&stubCartService{}, testPricingConfig(), nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCartAddItemValidatesQuantity(t *testing.T) {
	handler := CartAddItem(&stubCartService{}, testPricingConfig(), nil)

	body := `{"product_id":"` + uuid.NewString() + `","quantity":0}`
	req := authedRequest(http.MethodPost, "/api/v1/cart/items", body)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartAddItemSuccess(t *testing.T) {
	userID := uuid.New()
	svc := &stubCartService{record: testCartRecord(userID)}
	handler := CartAddItem(svc, testPricingConfig(), nil)

	body := `{"product_id":"` + uuid.NewString() + `","quantity":3}`
	req := authedRequest(http.MethodPost, "/api/v1/cart/items", body)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastQty != 3 {
		t.Fatalf("expected quantity 3 passed to service, got %d", svc.lastQty)
	}
}

func TestCartQuoteRejectsUnknownCoupon(t *testing.T) {
	userID := uuid.New()
	handler := CartQuote(&stubCartService{record: testCartRecord(userID)}, testPricingConfig(), nil)

	req := authedRequest(http.MethodPost, "/api/v1/cart/quote", `{"coupon_code":"NOSUCHCODE"}`)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartQuoteAppliesCoupon(t *testing.T) {
	userID := uuid.New()
	handler := CartQuote(&stubCartService{record: testCartRecord(userID)}, testPricingConfig(), nil)

	req := authedRequest(http.MethodPost, "/api/v1/cart/quote", `{"coupon_code":"GHEE10"}`)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data cartResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data.Summary.Discount.GreaterThan(decimal.Zero) {
		t.Fatalf("expected positive discount got %s", envelope.Data.Summary.Discount)
	}
}

func TestCartClearPropagatesServiceError(t *testing.T) {
	svc := &stubCartService{err: pkgerrors.New(pkgerrors.CodeNotFound, "cart missing")}
	handler := CartClear(svc, nil)

	req := authedRequest(http.MethodDelete, "/api/v1/cart", "")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
