package orders

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vashudha/ghee-storefront/internal/pricing"
	"github.com/vashudha/ghee-storefront/pkg/db"
	"github.com/vashudha/ghee-storefront/pkg/db/models"
	"github.com/vashudha/ghee-storefront/pkg/enums"
	pkgerrors "github.com/vashudha/ghee-storefront/pkg/errors"
	"github.com/vashudha/ghee-storefront/pkg/logger"
	"github.com/vashudha/ghee-storefront/pkg/pagination"
	"github.com/vashudha/ghee-storefront/pkg/types"
)

const orderNumberAttempts = 3

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// InventoryAdjuster moves catalog stock as orders are placed, cancelled,
// or expired. The tx parameter binds the adjustment into the caller's
// transaction when non-nil.
type InventoryAdjuster interface {
	Decrement(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
	Restore(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
}

// PlaceInput carries everything needed to persist a priced order.
type PlaceInput struct {
	UserID          uuid.UUID
	PaymentMethod   enums.PaymentMethod
	PaymentStatus   enums.PaymentStatus
	ShippingAddress types.Address
	CouponCode      *string
	Summary         pricing.Summary
	Lines           []models.CartItem
	GatewayOrderID  *string
}

// Service defines the order lifecycle operations.
type Service interface {
	Place(ctx context.Context, input PlaceInput) (*OrderDTO, error)
	Get(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error)
	GetByGatewayOrderID(ctx context.Context, userID uuid.UUID, gatewayOrderID string) (*OrderDTO, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params, filters ListFilters) (*OrderList, error)
	ListAll(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error)
	Cancel(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error)
	MarkPaid(ctx context.Context, gatewayOrderID, gatewayPaymentID string) (*OrderDTO, error)
	MarkPaymentFailed(ctx context.Context, gatewayOrderID string) error
	UpdateStatus(ctx context.Context, orderID uuid.UUID, next enums.OrderStatus) (*OrderDTO, error)
	ExpireStale(ctx context.Context, ttl time.Duration) (int, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	inventory InventoryAdjuster
	logg      *logger.Logger
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, tx txRunner, inventory InventoryAdjuster, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if inventory == nil {
		return nil, fmt.Errorf("inventory adjuster required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, inventory: inventory, logg: logg}, nil
}

// Place persists the order, its line snapshots, and the matching stock
// decrements in one transaction. Any line that cannot be covered by stock
// fails the whole order.
func (s *service) Place(ctx context.Context, input PlaceInput) (*OrderDTO, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot place an order with an empty cart")
	}
	if err := input.ShippingAddress.Validate(); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}

	status := input.PaymentStatus
	if status == "" {
		status = enums.PaymentStatusPending
	}

	var placed *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		order := &models.Order{
			UserID:          input.UserID,
			OrderNumber:     newOrderNumber(),
			Status:          enums.OrderStatusPending,
			PaymentMethod:   input.PaymentMethod,
			PaymentStatus:   status,
			Currency:        enums.CurrencyINR,
			ShippingAddress: input.ShippingAddress,
			CouponCode:      input.CouponCode,
			Subtotal:        input.Summary.Subtotal,
			Discount:        input.Summary.Discount,
			ShippingFee:     input.Summary.Shipping,
			Total:           input.Summary.Total,
			GatewayOrderID:  input.GatewayOrderID,
		}

		created, err := createWithUniqueNumber(ctx, txRepo, order)
		if err != nil {
			return err
		}

		items := make([]models.OrderLineItem, 0, len(input.Lines))
		for _, line := range input.Lines {
			productID := line.ProductID
			items = append(items, models.OrderLineItem{
				OrderID:   created.ID,
				ProductID: &productID,
				Name:      line.Name,
				Image:     line.Image,
				UnitPrice: line.UnitPrice,
				Quantity:  line.Quantity,
				LineTotal: line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))),
			})
			if err := s.inventory.Decrement(ctx, tx, line.ProductID, line.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err,
					fmt.Sprintf("insufficient stock for %s", line.Name))
			}
		}
		if err := txRepo.CreateLineItems(ctx, items); err != nil {
			return err
		}
		created.Items = items
		placed = created
		return nil
	})
	if err != nil {
		if coded := pkgerrors.As(err); coded != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "place order")
	}
	return FromModel(placed), nil
}

func (s *service) Get(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindByUserAndID(ctx, userID, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return FromModel(order), nil
}

// GetByGatewayOrderID resolves an order by its gateway reference for the
// given user. An order owned by someone else reads as not found; the
// gateway triple is delivered to a browser, so it is never proof of
// ownership on its own.
func (s *service) GetByGatewayOrderID(ctx context.Context, userID uuid.UUID, gatewayOrderID string) (*OrderDTO, error) {
	if gatewayOrderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gateway order id is required")
	}
	order, err := s.repo.FindByGatewayOrderID(ctx, gatewayOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found for gateway reference")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found for gateway reference")
	}
	return FromModel(order), nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params, filters ListFilters) (*OrderList, error) {
	rows, next, err := s.repo.ListByUser(ctx, userID, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return toList(rows, next), nil
}

func (s *service) ListAll(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error) {
	rows, next, err := s.repo.ListAll(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return toList(rows, next), nil
}

// Cancel lets the customer back out before shipment. Stock moves back to
// the catalog in the same transaction.
func (s *service) Cancel(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindByUserAndID(ctx, userID, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if !order.Status.CanTransitionTo(enums.OrderStatusCancelled) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order in status %s cannot be cancelled", order.Status))
	}

	if err := s.cancelTx(ctx, order, enums.PaymentStatusFailed); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
	}
	return s.Get(ctx, userID, orderID)
}

func (s *service) cancelTx(ctx context.Context, order *models.Order, paymentStatus enums.PaymentStatus) error {
	now := time.Now().UTC()
	updates := map[string]any{
		"status":       enums.OrderStatusCancelled,
		"cancelled_at": now,
	}
	// Paid orders keep their payment status until a refund is recorded.
	if order.PaymentStatus != enums.PaymentStatusPaid {
		updates["payment_status"] = paymentStatus
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.Update(ctx, order.ID, updates); err != nil {
			return err
		}
		for _, item := range order.Items {
			if item.ProductID == nil {
				continue
			}
			if err := s.inventory.Restore(ctx, tx, *item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
}

// MarkPaid records a verified gateway payment and moves the order into
// processing.
func (s *service) MarkPaid(ctx context.Context, gatewayOrderID, gatewayPaymentID string) (*OrderDTO, error) {
	order, err := s.repo.FindByGatewayOrderID(ctx, gatewayOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found for gateway reference")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.PaymentStatus == enums.PaymentStatusPaid {
		return FromModel(order), nil
	}
	if order.PaymentStatus != enums.PaymentStatusAwaiting && order.PaymentStatus != enums.PaymentStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("payment in status %s cannot be marked paid", order.PaymentStatus))
	}

	now := time.Now().UTC()
	updates := map[string]any{
		"payment_status":     enums.PaymentStatusPaid,
		"gateway_payment_id": gatewayPaymentID,
		"paid_at":            now,
		"status":             enums.OrderStatusProcessing,
	}
	if err := s.repo.Update(ctx, order.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order paid")
	}
	refreshed, err := s.repo.FindByID(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
	}
	return FromModel(refreshed), nil
}

// MarkPaymentFailed flags a failed gateway payment without cancelling the
// order; the customer may retry or the expiry job will reap it.
func (s *service) MarkPaymentFailed(ctx context.Context, gatewayOrderID string) error {
	order, err := s.repo.FindByGatewayOrderID(ctx, gatewayOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found for gateway reference")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.PaymentStatus == enums.PaymentStatusPaid {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order is already paid")
	}
	if err := s.repo.Update(ctx, order.ID, map[string]any{
		"payment_status": enums.PaymentStatusFailed,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark payment failed")
	}
	return nil
}

// UpdateStatus applies an admin-driven lifecycle move after checking the
// transition table.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, next enums.OrderStatus) (*OrderDTO, error) {
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, next))
	}

	if next == enums.OrderStatusCancelled {
		if err := s.cancelTx(ctx, order, enums.PaymentStatusFailed); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
		}
	} else {
		if err := s.repo.Update(ctx, order.ID, map[string]any{"status": next}); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
	}

	refreshed, err := s.repo.FindByID(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
	}
	return FromModel(refreshed), nil
}

// ExpireStale cancels orders whose online payment was never confirmed
// within the TTL, releasing their stock. Returns how many were expired.
func (s *service) ExpireStale(ctx context.Context, ttl time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-ttl)
	stale, err := s.repo.FindAwaitingPaymentBefore(ctx, cutoff)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find stale orders")
	}

	expired := 0
	for i := range stale {
		order := stale[i]
		if err := s.cancelTx(ctx, &order, enums.PaymentStatusExpired); err != nil {
			s.logg.Warn(
				s.logg.WithField(ctx, "order_id", order.ID.String()),
				"failed to expire stale order",
			)
			continue
		}
		expired++
	}
	return expired, nil
}

func toList(rows []models.Order, next string) *OrderList {
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return &OrderList{Orders: out, NextCursor: next}
}

// createWithUniqueNumber retries on the rare order-number collision.
func createWithUniqueNumber(ctx context.Context, repo Repository, order *models.Order) (*models.Order, error) {
	var lastErr error
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		created, err := repo.Create(ctx, order)
		if err == nil {
			return created, nil
		}
		if !db.IsUniqueViolation(err, "") {
			return nil, err
		}
		lastErr = err
		order.OrderNumber = newOrderNumber()
	}
	return nil, lastErr
}

// newOrderNumber builds a customer-facing reference like GH-20260828-3F7A2C.
func newOrderNumber() string {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		// Timestamp nanos as a fallback entropy source.
		return fmt.Sprintf("GH-%s-%d", time.Now().UTC().Format("20060102"), time.Now().UnixNano()%1000000)
	}
	return fmt.Sprintf("GH-%s-%s",
		time.Now().UTC().Format("20060102"),
		strings.ToUpper(hex.EncodeToString(buf)),
	)
}
