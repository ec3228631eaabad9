package pricing

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrEmptyCode is returned when the submitted code is blank after trimming.
	ErrEmptyCode = errors.New("coupon code is empty")
	// ErrUnknownCoupon is returned when the code does not match any active coupon.
	ErrUnknownCoupon = errors.New("unknown coupon code")
)

// CouponKind distinguishes flat-amount from percentage coupons.
type CouponKind string

const (
	CouponKindFlat    CouponKind = "flat"
	CouponKindPercent CouponKind = "percent"
)

// Coupon is an applied discount rule.
type Coupon struct {
	Code  string          `json:"code"`
	Kind  CouponKind      `json:"kind"`
	Value decimal.Decimal `json:"value"`
}

// The active coupon table. Codes are stored uppercase.
var coupons = map[string]Coupon{
	"WELCOME50": {Code: "WELCOME50", Kind: CouponKindFlat, Value: decimal.NewFromInt(50)},
	"GHEE10":    {Code: "GHEE10", Kind: CouponKindPercent, Value: decimal.NewFromInt(10)},
}

// LookupCoupon normalizes the raw code (trim, uppercase) and resolves it
// against the coupon table. A blank code and an unknown code are distinct
// failures so callers can phrase the feedback differently.
func LookupCoupon(raw string) (*Coupon, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if code == "" {
		return nil, ErrEmptyCode
	}
	coupon, ok := coupons[code]
	if !ok {
		return nil, ErrUnknownCoupon
	}
	return &coupon, nil
}

func (c Coupon) discountFor(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.Sign() <= 0 {
		return decimal.Zero
	}
	switch c.Kind {
	case CouponKindFlat:
		return c.Value
	case CouponKindPercent:
		return subtotal.Mul(c.Value).Div(decimal.NewFromInt(100)).Round(0)
	default:
		return decimal.Zero
	}
}
