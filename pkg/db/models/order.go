package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vashudha/ghee-storefront/pkg/enums"
	"github.com/vashudha/ghee-storefront/pkg/types"
)

// Order captures a submitted checkout: the priced snapshot, the shipping
// destination as entered, and the payment state.
type Order struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	OrderNumber     string              `gorm:"column:order_number;not null;uniqueIndex"`
	Status          enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentMethod   enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	PaymentStatus   enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	Currency        enums.Currency      `gorm:"column:currency;type:text;not null;default:'INR'"`
	ShippingAddress types.Address       `gorm:"column:shipping_address;type:jsonb"`
	CouponCode      *string             `gorm:"column:coupon_code"`
	Subtotal        decimal.Decimal     `gorm:"column:subtotal;type:numeric(10,2);not null"`
	Discount        decimal.Decimal     `gorm:"column:discount;type:numeric(10,2);not null;default:0"`
	ShippingFee     decimal.Decimal     `gorm:"column:shipping_fee;type:numeric(10,2);not null;default:0"`
	Total           decimal.Decimal     `gorm:"column:total;type:numeric(10,2);not null"`
	GatewayOrderID  *string             `gorm:"column:gateway_order_id;index"`
	GatewayPayment  *string             `gorm:"column:gateway_payment_id"`
	PaidAt          *time.Time          `gorm:"column:paid_at"`
	CancelledAt     *time.Time          `gorm:"column:cancelled_at"`
	Items           []OrderLineItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
