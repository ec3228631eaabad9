package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/vashudha/ghee-storefront/api/responses"
	"github.com/vashudha/ghee-storefront/api/validators"
	checkoutsvc "github.com/vashudha/ghee-storefront/internal/checkout"
	"github.com/vashudha/ghee-storefront/pkg/enums"
	pkgerrors "github.com/vashudha/ghee-storefront/pkg/errors"
	"github.com/vashudha/ghee-storefront/pkg/logger"
	"github.com/vashudha/ghee-storefront/pkg/types"
)

// checkoutSubmitRequest is the checkout form payload. Exactly one of
// address_id or address must be set.
type checkoutSubmitRequest struct {
	PaymentMethod string         `json:"payment_method" validate:"required"`
	AddressID     *uuid.UUID     `json:"address_id,omitempty"`
	Address       *types.Address `json:"address,omitempty"`
	SaveAddress   bool           `json:"save_address,omitempty"`
	CouponCode    string         `json:"coupon_code,omitempty"`
}

type checkoutConfirmRequest struct {
	GatewayOrderID   string `json:"razorpay_order_id" validate:"required"`
	GatewayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	Signature        string `json:"razorpay_signature" validate:"required"`
}

// CheckoutSubmit runs one checkout attempt. COD completes inline; the
// online branch answers with the payment intent and suspends until the
// confirmation callback.
func CheckoutSubmit(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body checkoutSubmitRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(strings.ToLower(strings.TrimSpace(body.PaymentMethod)))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		result, err := svc.Submit(r.Context(), checkoutsvc.SubmitInput{
			UserID:        userID,
			PaymentMethod: method,
			AddressID:     body.AddressID,
			AddressDraft:  body.Address,
			SaveForLater:  body.SaveAddress,
			CouponCode:    body.CouponCode,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// CheckoutConfirm is the payment widget's success callback. The gateway
// signature is verified server-side before anything is marked paid.
func CheckoutConfirm(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body checkoutConfirmRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Confirm(r.Context(), checkoutsvc.ConfirmInput{
			UserID:           userID,
			GatewayOrderID:   body.GatewayOrderID,
			GatewayPaymentID: body.GatewayPaymentID,
			Signature:        body.Signature,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
