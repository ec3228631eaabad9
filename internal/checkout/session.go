package checkout

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vashudha/ghee-storefront/internal/orders"
	"github.com/vashudha/ghee-storefront/internal/pricing"
	"github.com/vashudha/ghee-storefront/pkg/db/models"
	"github.com/vashudha/ghee-storefront/pkg/enums"
	"github.com/vashudha/ghee-storefront/pkg/types"
)

// State tracks where one checkout attempt currently stands.
type State string

const (
	StateAddressSelection State = "address_selection"
	StateSubmitting       State = "submitting"
	StateAwaitingPayment  State = "awaiting_payment_confirmation"
	StateFinalizing       State = "finalizing"
	StateCompleted        State = "completed"
	StateFailed           State = "failed"
)

// Session is the immutable snapshot of one checkout attempt: the cart
// lines, the priced summary, and the resolved address as they were at
// submit time. Later cart mutations never change an in-flight attempt.
type Session struct {
	ID              uuid.UUID           `json:"id"`
	UserID          uuid.UUID           `json:"user_id"`
	State           State               `json:"state"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method"`
	ShippingAddress types.Address       `json:"shipping_address"`
	CouponCode      *string             `json:"coupon_code,omitempty"`
	Lines           []models.CartItem   `json:"-"`
	Summary         pricing.Summary     `json:"summary"`
	FailureReason   string              `json:"failure_reason,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
}

// PaymentIntent carries what the hosted payment widget needs to open.
type PaymentIntent struct {
	KeyID          string          `json:"key_id"`
	GatewayOrderID string          `json:"gateway_order_id"`
	Amount         decimal.Decimal `json:"amount"`
	AmountPaise    int64           `json:"amount_paise"`
	Currency       enums.Currency  `json:"currency"`
}

// SubmitResult is the outcome of one submit call. Payment is set only on
// the online branch, where the attempt suspends until Confirm.
type SubmitResult struct {
	Session *Session         `json:"session"`
	Order   *orders.OrderDTO `json:"order,omitempty"`
	Payment *PaymentIntent   `json:"payment,omitempty"`
}
