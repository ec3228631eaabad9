package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	checkoutsvc "github.com/vashudha/ghee-storefront/internal/checkout"
	"github.com/vashudha/ghee-storefront/pkg/enums"
	pkgerrors "github.com/vashudha/ghee-storefront/pkg/errors"
)

type stubCheckoutService struct {
	result      *checkoutsvc.SubmitResult
	err         error
	lastSubmit  checkoutsvc.SubmitInput
	lastConfirm checkoutsvc.ConfirmInput
}

func (s *stubCheckoutService) Submit(ctx context.Context, input checkoutsvc.SubmitInput) (*checkoutsvc.SubmitResult, error) {
	s.lastSubmit = input
	return s.result, s.err
}

func (s *stubCheckoutService) Confirm(ctx context.Context, input checkoutsvc.ConfirmInput) (*checkoutsvc.SubmitResult, error) {
	s.lastConfirm = input
	return s.result, s.err
}

func TestCheckoutSubmitCOD(t *testing.T) {
	svc := &stubCheckoutService{result: &checkoutsvc.SubmitResult{
		Session: &checkoutsvc.Session{ID: uuid.New(), State: checkoutsvc.StateCompleted},
	}}
	handler := CheckoutSubmit(svc, nil)

	addressID := uuid.New()
	body := `{"payment_method":"cod","address_id":"` + addressID.String() + `"}`
	req := authedRequest(http.MethodPost, "/api/v1/checkout", body)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastSubmit.PaymentMethod != enums.PaymentMethodCOD {
		t.Fatalf("expected cod payment method got %s", svc.lastSubmit.PaymentMethod)
	}
	if svc.lastSubmit.AddressID == nil || *svc.lastSubmit.AddressID != addressID {
		t.Fatalf("expected address id %s forwarded", addressID)
	}
}

func TestCheckoutSubmitRejectsUnknownPaymentMethod(t *testing.T) {
	svc := &stubCheckoutService{}
	handler := CheckoutSubmit(svc, nil)

	req := authedRequest(http.MethodPost, "/api/v1/checkout", `{"payment_method":"barter"}`)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCheckoutSubmitRequiresUserContext(t *testing.T) {
	handler := CheckoutSubmit(&stubCheckoutService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCheckoutConfirmForwardsGatewayFields(t *testing.T) {
	svc := &stubCheckoutService{result: &checkoutsvc.SubmitResult{
		Session: &checkoutsvc.Session{ID: uuid.New(), State: checkoutsvc.StateCompleted},
	}}
	handler := CheckoutConfirm(svc, nil)

	body := `{"razorpay_order_id":"order_123","razorpay_payment_id":"pay_456","razorpay_signature":"sig"}`
	req := authedRequest(http.MethodPost, "/api/v1/checkout/confirm", body)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastConfirm.GatewayOrderID != "order_123" || svc.lastConfirm.GatewayPaymentID != "pay_456" {
		t.Fatalf("gateway ids not forwarded: %+v", svc.lastConfirm)
	}
}

func TestCheckoutConfirmSurfacesVerificationFailure(t *testing.T) {
	svc := &stubCheckoutService{err: pkgerrors.New(pkgerrors.CodePaymentVerification, "signature mismatch")}
	handler := CheckoutConfirm(svc, nil)

	body := `{"razorpay_order_id":"order_123","razorpay_payment_id":"pay_456","razorpay_signature":"bad"}`
	req := authedRequest(http.MethodPost, "/api/v1/checkout/confirm", body)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}
