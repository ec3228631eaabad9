package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vashudha/ghee-storefront/internal/address"
	"github.com/vashudha/ghee-storefront/internal/cart"
	"github.com/vashudha/ghee-storefront/internal/orders"
	"github.com/vashudha/ghee-storefront/internal/pricing"
	"github.com/vashudha/ghee-storefront/pkg/db/models"
	"github.com/vashudha/ghee-storefront/pkg/enums"
	pkgerrors "github.com/vashudha/ghee-storefront/pkg/errors"
	"github.com/vashudha/ghee-storefront/pkg/logger"
	"github.com/vashudha/ghee-storefront/pkg/metrics"
	"github.com/vashudha/ghee-storefront/pkg/razorpay"
	"github.com/vashudha/ghee-storefront/pkg/types"
)

type cartReader interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type addressBook interface {
	Get(ctx context.Context, userID, addressID uuid.UUID) (*models.Address, error)
	Create(ctx context.Context, userID uuid.UUID, input address.Input) (*models.Address, error)
}

type orderService interface {
	Place(ctx context.Context, input orders.PlaceInput) (*orders.OrderDTO, error)
	GetByGatewayOrderID(ctx context.Context, userID uuid.UUID, gatewayOrderID string) (*orders.OrderDTO, error)
	MarkPaid(ctx context.Context, gatewayOrderID, gatewayPaymentID string) (*orders.OrderDTO, error)
	MarkPaymentFailed(ctx context.Context, gatewayOrderID string) error
}

type paymentGateway interface {
	KeyID() string
	Available(ctx context.Context) error
	CreateOrder(ctx context.Context, amount decimal.Decimal, currency, receipt string) (*razorpay.Order, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

// SubmitInput is the checkout form payload. Exactly one of AddressID or
// AddressDraft must be provided.
type SubmitInput struct {
	UserID        uuid.UUID
	PaymentMethod enums.PaymentMethod
	AddressID     *uuid.UUID
	AddressDraft  *types.Address
	SaveForLater  bool
	CouponCode    string
}

// ConfirmInput is the payment widget's success callback payload.
type ConfirmInput struct {
	UserID           uuid.UUID
	GatewayOrderID   string
	GatewayPaymentID string
	Signature        string
}

// Service drives one checkout attempt from submission to either a
// recorded order or a reported failure.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*SubmitResult, error)
	Confirm(ctx context.Context, input ConfirmInput) (*SubmitResult, error)
}

type service struct {
	cart       cartReader
	addresses  addressBook
	orders     orderService
	gateway    paymentGateway
	pricingCfg pricing.Config
	metrics    *metrics.CheckoutMetrics
	logg       *logger.Logger
}

// ServiceParams bundles the orchestrator's collaborators.
type ServiceParams struct {
	Cart       cartReader
	Addresses  addressBook
	Orders     orderService
	Gateway    paymentGateway
	PricingCfg pricing.Config
	Metrics    *metrics.CheckoutMetrics
	Logger     *logger.Logger
}

// NewService builds the checkout orchestrator.
func NewService(params ServiceParams) (Service, error) {
	if params.Cart == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if params.Addresses == nil {
		return nil, fmt.Errorf("address service required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order service required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		cart:       params.Cart,
		addresses:  params.Addresses,
		orders:     params.Orders,
		gateway:    params.Gateway,
		pricingCfg: params.PricingCfg,
		metrics:    params.Metrics,
		logg:       params.Logger,
	}, nil
}

// Submit runs one checkout attempt. The COD branch records the order and
// completes immediately; the online branch creates the gateway order, the
// awaiting-payment local order, and suspends until Confirm.
func (s *service) Submit(ctx context.Context, input SubmitInput) (*SubmitResult, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}

	shipping, err := s.resolveAddress(ctx, input)
	if err != nil {
		return nil, err
	}

	record, err := s.cart.Get(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if len(record.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	var coupon *pricing.Coupon
	var couponCode *string
	if input.CouponCode != "" {
		found, err := pricing.LookupCoupon(input.CouponCode)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		coupon = found
		code := found.Code
		couponCode = &code
	}

	session := &Session{
		ID:              uuid.New(),
		UserID:          input.UserID,
		State:           StateSubmitting,
		PaymentMethod:   input.PaymentMethod,
		ShippingAddress: shipping,
		CouponCode:      couponCode,
		Lines:           append([]models.CartItem(nil), record.Items...),
		Summary:         pricing.ComputeSummary(cart.PricingLines(record.Items), coupon, s.pricingCfg),
		CreatedAt:       time.Now().UTC(),
	}

	if input.PaymentMethod.RequiresGateway() {
		return s.submitOnline(ctx, session)
	}
	return s.submitCOD(ctx, session)
}

func (s *service) submitCOD(ctx context.Context, session *Session) (*SubmitResult, error) {
	order, err := s.orders.Place(ctx, orders.PlaceInput{
		UserID:          session.UserID,
		PaymentMethod:   enums.PaymentMethodCOD,
		PaymentStatus:   enums.PaymentStatusPending,
		ShippingAddress: session.ShippingAddress,
		CouponCode:      session.CouponCode,
		Summary:         session.Summary,
		Lines:           session.Lines,
	})
	if err != nil {
		session.State = StateFailed
		session.FailureReason = "order creation failed"
		s.record(session.PaymentMethod, "failed")
		return nil, err
	}

	s.finalize(ctx, session)
	s.record(session.PaymentMethod, "completed")
	return &SubmitResult{Session: session, Order: order}, nil
}

func (s *service) submitOnline(ctx context.Context, session *Session) (*SubmitResult, error) {
	// Probe before creating anything: an unreachable gateway fails the
	// attempt with no order on either side.
	if err := s.gateway.Available(ctx); err != nil {
		session.State = StateFailed
		session.FailureReason = "payment gateway unavailable"
		s.record(session.PaymentMethod, "gateway_unavailable")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment gateway unavailable")
	}

	receipt := fmt.Sprintf("chk_%s", session.ID)
	gatewayOrder, err := s.gateway.CreateOrder(ctx, session.Summary.Total, string(enums.CurrencyINR), receipt)
	if err != nil {
		session.State = StateFailed
		session.FailureReason = "gateway order creation failed"
		s.record(session.PaymentMethod, "gateway_order_failed")
		if errors.Is(err, razorpay.ErrUnavailable) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment gateway unavailable")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create gateway order")
	}

	gatewayID := gatewayOrder.ID
	order, err := s.orders.Place(ctx, orders.PlaceInput{
		UserID:          session.UserID,
		PaymentMethod:   enums.PaymentMethodRazorpay,
		PaymentStatus:   enums.PaymentStatusAwaiting,
		ShippingAddress: session.ShippingAddress,
		CouponCode:      session.CouponCode,
		Summary:         session.Summary,
		Lines:           session.Lines,
		GatewayOrderID:  &gatewayID,
	})
	if err != nil {
		session.State = StateFailed
		session.FailureReason = "order creation failed"
		s.record(session.PaymentMethod, "failed")
		return nil, err
	}

	// Suspension point: the attempt now waits for the widget callback via
	// Confirm. Abandoned attempts are reaped by the expiry job.
	session.State = StateAwaitingPayment
	s.record(session.PaymentMethod, "awaiting_confirmation")

	return &SubmitResult{
		Session: session,
		Order:   order,
		Payment: &PaymentIntent{
			KeyID:          s.gateway.KeyID(),
			GatewayOrderID: gatewayOrder.ID,
			Amount:         session.Summary.Total,
			AmountPaise:    razorpay.AmountToPaise(session.Summary.Total),
			Currency:       enums.CurrencyINR,
		},
	}, nil
}

// Confirm handles the widget's success callback: signature verification,
// then payment recording and cart clearing. A bad signature is the
// distinct "money may have moved" failure, not a retryable decline.
func (s *service) Confirm(ctx context.Context, input ConfirmInput) (*SubmitResult, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.GatewayOrderID == "" || input.GatewayPaymentID == "" || input.Signature == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gateway order, payment, and signature are required")
	}

	// Ownership gate before anything mutates: the signature proves the
	// gateway saw the payment, not that the caller placed the order.
	if _, err := s.orders.GetByGatewayOrderID(ctx, input.UserID, input.GatewayOrderID); err != nil {
		return nil, err
	}

	if !s.gateway.VerifySignature(input.GatewayOrderID, input.GatewayPaymentID, input.Signature) {
		if err := s.orders.MarkPaymentFailed(ctx, input.GatewayOrderID); err != nil {
			s.warn(ctx, "failed to record payment verification failure", err)
		}
		s.record(enums.PaymentMethodRazorpay, "verification_failed")
		return nil, pkgerrors.New(pkgerrors.CodePaymentVerification, "payment signature verification failed")
	}

	order, err := s.orders.MarkPaid(ctx, input.GatewayOrderID, input.GatewayPaymentID)
	if err != nil {
		s.record(enums.PaymentMethodRazorpay, "failed")
		return nil, err
	}

	session := &Session{
		ID:            uuid.New(),
		UserID:        input.UserID,
		PaymentMethod: enums.PaymentMethodRazorpay,
		State:         StateFinalizing,
		CreatedAt:     time.Now().UTC(),
	}
	s.finalize(ctx, session)
	s.record(enums.PaymentMethodRazorpay, "completed")
	return &SubmitResult{Session: session, Order: order}, nil
}

// finalize clears the cart once the order is durably recorded. A clear
// failure never unwinds the order; the stale cart is logged instead.
func (s *service) finalize(ctx context.Context, session *Session) {
	session.State = StateFinalizing
	if err := s.cart.Clear(ctx, session.UserID); err != nil {
		s.warn(ctx, "cart clear after checkout failed", err)
	}
	session.State = StateCompleted
}

// resolveAddress enforces that exactly one of saved id or ad hoc draft is
// authoritative before any collaborator call.
func (s *service) resolveAddress(ctx context.Context, input SubmitInput) (types.Address, error) {
	if input.AddressID != nil && input.AddressDraft != nil {
		return types.Address{}, pkgerrors.New(pkgerrors.CodeValidation, "provide either a saved address or a new one, not both")
	}

	if input.AddressID != nil {
		saved, err := s.addresses.Get(ctx, input.UserID, *input.AddressID)
		if err != nil {
			return types.Address{}, err
		}
		return address.Snapshot(saved), nil
	}

	if input.AddressDraft == nil {
		return types.Address{}, pkgerrors.New(pkgerrors.CodeValidation, "shipping address is required")
	}
	draft := *input.AddressDraft
	if err := draft.Validate(); err != nil {
		return types.Address{}, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	// Best-effort: the order proceeds with the draft's raw fields even if
	// saving it for later fails.
	if input.SaveForLater {
		if _, err := s.addresses.Create(ctx, input.UserID, address.Input{Address: draft}); err != nil {
			s.warn(ctx, "save-for-later address create failed", err)
		}
	}
	return draft, nil
}

func (s *service) record(method enums.PaymentMethod, outcome string) {
	if s.metrics == nil {
		return
	}
	s.metrics.Record(string(method), outcome)
}

func (s *service) warn(ctx context.Context, msg string, err error) {
	s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), msg)
}
