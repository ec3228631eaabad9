package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vashudha/ghee-storefront/pkg/db/models"
	pkgerrors "github.com/vashudha/ghee-storefront/pkg/errors"
)

type stubCartRepo struct {
	record *models.CartRecord
	items  map[uuid.UUID]*models.CartItem
}

func newStubCartRepo() *stubCartRepo {
	return &stubCartRepo{items: map[uuid.UUID]*models.CartItem{}}
}

func (r *stubCartRepo) WithTx(*gorm.DB) CartRepository { return r }

func (r *stubCartRepo) FindByUser(_ context.Context, userID uuid.UUID) (*models.CartRecord, error) {
	if r.record == nil || r.record.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	out := *r.record
	out.Items = nil
	for _, item := range r.items {
		out.Items = append(out.Items, *item)
	}
	return &out, nil
}

func (r *stubCartRepo) Create(_ context.Context, record *models.CartRecord) (*models.CartRecord, error) {
	record.ID = uuid.New()
	r.record = record
	return record, nil
}

func (r *stubCartRepo) FindItem(_ context.Context, cartID, productID uuid.UUID) (*models.CartItem, error) {
	item, ok := r.items[productID]
	if !ok || item.CartID != cartID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *item
	return &copied, nil
}

func (r *stubCartRepo) SaveItem(_ context.Context, item *models.CartItem) error {
	copied := *item
	r.items[item.ProductID] = &copied
	return nil
}

func (r *stubCartRepo) DeleteItem(_ context.Context, _, productID uuid.UUID) error {
	delete(r.items, productID)
	return nil
}

func (r *stubCartRepo) DeleteItems(context.Context, uuid.UUID) error {
	r.items = map[uuid.UUID]*models.CartItem{}
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubProductLoader struct {
	products map[uuid.UUID]*models.Product
}

func (s *stubProductLoader) GetByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return product, nil
}

func testProduct(stock int) *models.Product {
	return &models.Product{
		ID:       uuid.New(),
		Name:     "Desi Cow Ghee 1L",
		Price:    decimal.NewFromInt(850),
		Images:   []string{"https://cdn.example.com/ghee-1l.jpg"},
		Stock:    stock,
		IsActive: true,
	}
}

func newTestService(t *testing.T, products ...*models.Product) (Service, *stubCartRepo) {
	t.Helper()
	loader := &stubProductLoader{products: map[uuid.UUID]*models.Product{}}
	for _, p := range products {
		loader.products[p.ID] = p
	}
	repo := newStubCartRepo()
	svc, err := NewService(repo, stubTxRunner{}, loader)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc, repo
}

func TestServiceAddItemSnapshotsProduct(t *testing.T) {
	t.Parallel()

	product := testProduct(10)
	svc, repo := newTestService(t, product)
	userID := uuid.New()

	record, err := svc.AddItem(context.Background(), userID, product.ID, 2)
	if err != nil {
		t.Fatalf("AddItem returned error: %v", err)
	}
	if len(record.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(record.Items))
	}

	item := repo.items[product.ID]
	if item.Name != product.Name {
		t.Fatalf("expected name snapshot, got %q", item.Name)
	}
	if !item.UnitPrice.Equal(product.Price) {
		t.Fatalf("expected price snapshot, got %s", item.UnitPrice)
	}
	if item.Image == nil || *item.Image != product.Images[0] {
		t.Fatal("expected first image snapshot")
	}
}

func TestServiceAddItemMergesQuantity(t *testing.T) {
	t.Parallel()

	product := testProduct(10)
	svc, repo := newTestService(t, product)
	userID := uuid.New()
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, userID, product.ID, 2); err != nil {
		t.Fatalf("first AddItem returned error: %v", err)
	}
	if _, err := svc.AddItem(ctx, userID, product.ID, 3); err != nil {
		t.Fatalf("second AddItem returned error: %v", err)
	}

	if got := repo.items[product.ID].Quantity; got != 5 {
		t.Fatalf("expected merged quantity 5, got %d", got)
	}
}

func TestServiceAddItemRejectsInsufficientStock(t *testing.T) {
	t.Parallel()

	product := testProduct(3)
	svc, _ := newTestService(t, product)
	ctx := context.Background()
	userID := uuid.New()

	if _, err := svc.AddItem(ctx, userID, product.ID, 2); err != nil {
		t.Fatalf("AddItem returned error: %v", err)
	}
	_, err := svc.AddItem(ctx, userID, product.ID, 2)
	if err == nil {
		t.Fatal("expected stock conflict")
	}
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict code, got %v", err)
	}
}

func TestServiceAddItemUnknownProduct(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	_, err := svc.AddItem(context.Background(), uuid.New(), uuid.New(), 1)
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found code, got %v", err)
	}
}

func TestServiceUpdateQuantityZeroRemoves(t *testing.T) {
	t.Parallel()

	product := testProduct(10)
	svc, repo := newTestService(t, product)
	ctx := context.Background()
	userID := uuid.New()

	if _, err := svc.AddItem(ctx, userID, product.ID, 2); err != nil {
		t.Fatalf("AddItem returned error: %v", err)
	}
	if _, err := svc.UpdateQuantity(ctx, userID, product.ID, 0); err != nil {
		t.Fatalf("UpdateQuantity returned error: %v", err)
	}
	if len(repo.items) != 0 {
		t.Fatal("expected zero quantity to remove the line")
	}
}

func TestServiceUpdateQuantityUnknownProductNoOp(t *testing.T) {
	t.Parallel()

	product := testProduct(10)
	svc, repo := newTestService(t, product)
	ctx := context.Background()
	userID := uuid.New()

	if _, err := svc.AddItem(ctx, userID, product.ID, 1); err != nil {
		t.Fatalf("AddItem returned error: %v", err)
	}
	if _, err := svc.UpdateQuantity(ctx, userID, uuid.New(), 5); err != nil {
		t.Fatalf("UpdateQuantity returned error: %v", err)
	}
	if len(repo.items) != 1 {
		t.Fatal("unknown product must not create or remove lines")
	}
}

func TestServiceClear(t *testing.T) {
	t.Parallel()

	product := testProduct(10)
	svc, repo := newTestService(t, product)
	ctx := context.Background()
	userID := uuid.New()

	if _, err := svc.AddItem(ctx, userID, product.ID, 2); err != nil {
		t.Fatalf("AddItem returned error: %v", err)
	}
	if err := svc.Clear(ctx, userID); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	if len(repo.items) != 0 {
		t.Fatal("expected cleared cart")
	}
}

func TestPricingLines(t *testing.T) {
	t.Parallel()

	items := []models.CartItem{
		{UnitPrice: decimal.NewFromInt(200), Quantity: 2},
		{UnitPrice: decimal.NewFromInt(99), Quantity: 1},
	}
	lines := PricingLines(items)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !lines[0].UnitPrice.Equal(decimal.NewFromInt(200)) || lines[0].Quantity != 2 {
		t.Fatalf("unexpected projection %+v", lines[0])
	}
}
