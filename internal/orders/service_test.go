package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vashudha/ghee-storefront/internal/pricing"
	"github.com/vashudha/ghee-storefront/pkg/db/models"
	"github.com/vashudha/ghee-storefront/pkg/enums"
	pkgerrors "github.com/vashudha/ghee-storefront/pkg/errors"
	"github.com/vashudha/ghee-storefront/pkg/logger"
	"github.com/vashudha/ghee-storefront/pkg/pagination"
	"github.com/vashudha/ghee-storefront/pkg/types"
)

type stubRepo struct {
	orders       map[uuid.UUID]*models.Order
	byGateway    map[string]*models.Order
	createdItems []models.OrderLineItem
	updates      map[uuid.UUID]map[string]any
	stale        []models.Order
	createErr    error
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		orders:    map[uuid.UUID]*models.Order{},
		byGateway: map[string]*models.Order{},
		updates:   map[uuid.UUID]map[string]any{},
	}
}

func (s *stubRepo) WithTx(_ *gorm.DB) Repository { return s }

func (s *stubRepo) Create(_ context.Context, order *models.Order) (*models.Order, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	order.CreatedAt = time.Now().UTC()
	s.orders[order.ID] = order
	if order.GatewayOrderID != nil {
		s.byGateway[*order.GatewayOrderID] = order
	}
	return order, nil
}

func (s *stubRepo) CreateLineItems(_ context.Context, items []models.OrderLineItem) error {
	s.createdItems = append(s.createdItems, items...)
	return nil
}

func (s *stubRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (s *stubRepo) FindByUserAndID(_ context.Context, userID, id uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[id]
	if !ok || order.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (s *stubRepo) FindByGatewayOrderID(_ context.Context, gatewayOrderID string) (*models.Order, error) {
	order, ok := s.byGateway[gatewayOrderID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (s *stubRepo) ListByUser(_ context.Context, userID uuid.UUID, _ pagination.Params, _ ListFilters) ([]models.Order, string, error) {
	var rows []models.Order
	for _, order := range s.orders {
		if order.UserID == userID {
			rows = append(rows, *order)
		}
	}
	return rows, "", nil
}

func (s *stubRepo) ListAll(_ context.Context, _ pagination.Params, _ ListFilters) ([]models.Order, string, error) {
	var rows []models.Order
	for _, order := range s.orders {
		rows = append(rows, *order)
	}
	return rows, "", nil
}

func (s *stubRepo) FindAwaitingPaymentBefore(_ context.Context, _ time.Time) ([]models.Order, error) {
	return s.stale, nil
}

func (s *stubRepo) Update(_ context.Context, orderID uuid.UUID, updates map[string]any) error {
	s.updates[orderID] = updates
	order, ok := s.orders[orderID]
	if !ok {
		return nil
	}
	if v, ok := updates["status"]; ok {
		order.Status = v.(enums.OrderStatus)
	}
	if v, ok := updates["payment_status"]; ok {
		order.PaymentStatus = v.(enums.PaymentStatus)
	}
	if v, ok := updates["gateway_payment_id"]; ok {
		id := v.(string)
		order.GatewayPayment = &id
	}
	return nil
}

func (s *stubRepo) CountByUser(_ context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	for _, order := range s.orders {
		if order.UserID == userID {
			count++
		}
	}
	return count, nil
}

type stubTx struct{}

func (stubTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubInventory struct {
	decremented map[uuid.UUID]int
	restored    map[uuid.UUID]int
	failFor     map[uuid.UUID]error
}

func newStubInventory() *stubInventory {
	return &stubInventory{
		decremented: map[uuid.UUID]int{},
		restored:    map[uuid.UUID]int{},
		failFor:     map[uuid.UUID]error{},
	}
}

func (s *stubInventory) Decrement(_ context.Context, _ *gorm.DB, productID uuid.UUID, qty int) error {
	if err := s.failFor[productID]; err != nil {
		return err
	}
	s.decremented[productID] += qty
	return nil
}

func (s *stubInventory) Restore(_ context.Context, _ *gorm.DB, productID uuid.UUID, qty int) error {
	s.restored[productID] += qty
	return nil
}

func newTestService(t *testing.T, repo Repository, inventory InventoryAdjuster) Service {
	t.Helper()
	svc, err := NewService(repo, stubTx{}, inventory, logger.New(logger.Options{ServiceName: "orders-test"}))
	require.NoError(t, err)
	return svc
}

func validPlaceInput(userID uuid.UUID) PlaceInput {
	productID := uuid.New()
	return PlaceInput{
		UserID:        userID,
		PaymentMethod: enums.PaymentMethodCOD,
		ShippingAddress: types.Address{
			FullName:   "Vasudha Rao",
			Phone:      "+919812345678",
			Line1:      "12 MG Road",
			City:       "Bengaluru",
			State:      "Karnataka",
			PostalCode: "560001",
			Country:    "IN",
		},
		Summary: pricing.Summary{
			Subtotal: decimal.NewFromInt(900),
			Discount: decimal.Zero,
			Shipping: decimal.Zero,
			Total:    decimal.NewFromInt(900),
		},
		Lines: []models.CartItem{{
			CartID:    uuid.New(),
			ProductID: productID,
			Name:      "A2 Desi Ghee 1L",
			UnitPrice: decimal.NewFromInt(450),
			Quantity:  2,
		}},
	}
}

func TestPlaceCreatesOrderAndDecrementsStock(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	inventory := newStubInventory()
	svc := newTestService(t, repo, inventory)

	userID := uuid.New()
	input := validPlaceInput(userID)

	placed, err := svc.Place(context.Background(), input)
	require.NoError(t, err)

	assert.NotEmpty(t, placed.OrderNumber)
	assert.Equal(t, enums.OrderStatusPending, placed.Status)
	assert.Equal(t, enums.PaymentStatusPending, placed.PaymentStatus)
	assert.Equal(t, enums.CurrencyINR, placed.Currency)
	assert.True(t, placed.Total.Equal(decimal.NewFromInt(900)))

	require.Len(t, repo.createdItems, 1)
	assert.True(t, repo.createdItems[0].LineTotal.Equal(decimal.NewFromInt(900)))
	assert.Equal(t, 2, inventory.decremented[input.Lines[0].ProductID])
}

func TestPlaceFailsWhenStockRunsOut(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	inventory := newStubInventory()
	svc := newTestService(t, repo, inventory)

	input := validPlaceInput(uuid.New())
	inventory.failFor[input.Lines[0].ProductID] = errors.New("insufficient stock")

	_, err := svc.Place(context.Background(), input)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeConflict, coded.Code())
}

func TestPlaceRejectsEmptyCart(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newStubRepo(), newStubInventory())
	input := validPlaceInput(uuid.New())
	input.Lines = nil

	_, err := svc.Place(context.Background(), input)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeValidation, coded.Code())
}

func TestCancelRestoresStockBeforeShipment(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	inventory := newStubInventory()
	svc := newTestService(t, repo, inventory)

	userID := uuid.New()
	productID := uuid.New()
	order := &models.Order{
		ID:            uuid.New(),
		UserID:        userID,
		OrderNumber:   "GH-20260828-TEST01",
		Status:        enums.OrderStatusPending,
		PaymentMethod: enums.PaymentMethodCOD,
		PaymentStatus: enums.PaymentStatusPending,
		Items: []models.OrderLineItem{{
			ProductID: &productID,
			Name:      "Cow Ghee 500ml",
			UnitPrice: decimal.NewFromInt(450),
			Quantity:  3,
			LineTotal: decimal.NewFromInt(1350),
		}},
	}
	repo.orders[order.ID] = order

	cancelled, err := svc.Cancel(context.Background(), userID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, 3, inventory.restored[productID])
}

func TestCancelRejectsShippedOrder(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	svc := newTestService(t, repo, newStubInventory())

	userID := uuid.New()
	order := &models.Order{
		ID:          uuid.New(),
		UserID:      userID,
		OrderNumber: "GH-20260828-TEST02",
		Status:      enums.OrderStatusShipped,
	}
	repo.orders[order.ID] = order

	_, err := svc.Cancel(context.Background(), userID, order.ID)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeStateConflict, coded.Code())
}

func TestMarkPaidIsIdempotent(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	svc := newTestService(t, repo, newStubInventory())

	gatewayID := "order_razorpay_123"
	order := &models.Order{
		ID:             uuid.New(),
		UserID:         uuid.New(),
		OrderNumber:    "GH-20260828-TEST03",
		Status:         enums.OrderStatusPending,
		PaymentMethod:  enums.PaymentMethodRazorpay,
		PaymentStatus:  enums.PaymentStatusAwaiting,
		GatewayOrderID: &gatewayID,
	}
	repo.orders[order.ID] = order
	repo.byGateway[gatewayID] = order

	paid, err := svc.MarkPaid(context.Background(), gatewayID, "pay_123")
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusPaid, paid.PaymentStatus)
	assert.Equal(t, enums.OrderStatusProcessing, paid.Status)

	again, err := svc.MarkPaid(context.Background(), gatewayID, "pay_123")
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusPaid, again.PaymentStatus)
}

func TestGetByGatewayOrderIDChecksOwnership(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	svc := newTestService(t, repo, newStubInventory())

	owner := uuid.New()
	gatewayID := "order_razorpay_456"
	order := &models.Order{
		ID:             uuid.New(),
		UserID:         owner,
		OrderNumber:    "GH-20260828-TEST05",
		Status:         enums.OrderStatusPending,
		PaymentMethod:  enums.PaymentMethodRazorpay,
		PaymentStatus:  enums.PaymentStatusAwaiting,
		GatewayOrderID: &gatewayID,
	}
	repo.orders[order.ID] = order
	repo.byGateway[gatewayID] = order

	found, err := svc.GetByGatewayOrderID(context.Background(), owner, gatewayID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)

	_, err = svc.GetByGatewayOrderID(context.Background(), uuid.New(), gatewayID)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())

	_, err = svc.GetByGatewayOrderID(context.Background(), owner, "order_razorpay_unknown")
	coded = pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}

func TestUpdateStatusHonorsTransitions(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	svc := newTestService(t, repo, newStubInventory())

	order := &models.Order{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		OrderNumber: "GH-20260828-TEST04",
		Status:      enums.OrderStatusConfirmed,
	}
	repo.orders[order.ID] = order

	updated, err := svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusShipped, updated.Status)

	_, err = svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusPending)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeStateConflict, coded.Code())
}

func TestExpireStaleCancelsAndRestores(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	inventory := newStubInventory()
	svc := newTestService(t, repo, inventory)

	productID := uuid.New()
	stale := models.Order{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		OrderNumber:   "GH-20260828-TEST05",
		Status:        enums.OrderStatusPending,
		PaymentStatus: enums.PaymentStatusAwaiting,
		Items: []models.OrderLineItem{{
			ProductID: &productID,
			Name:      "Gift Pack",
			UnitPrice: decimal.NewFromInt(1200),
			Quantity:  1,
			LineTotal: decimal.NewFromInt(1200),
		}},
	}
	repo.orders[stale.ID] = &stale
	repo.stale = []models.Order{stale}

	expired, err := svc.ExpireStale(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)
	assert.Equal(t, 1, inventory.restored[productID])

	updates := repo.updates[stale.ID]
	require.NotNil(t, updates)
	assert.Equal(t, enums.PaymentStatusExpired, updates["payment_status"])
	assert.Equal(t, enums.OrderStatusCancelled, updates["status"])
}

func TestNewOrderNumberFormat(t *testing.T) {
	t.Parallel()

	number := newOrderNumber()
	assert.Regexp(t, `^GH-\d{8}-[0-9A-F]{6}$`, number)
}
