package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vashudha/ghee-storefront/internal/pricing"
	"github.com/vashudha/ghee-storefront/pkg/db/models"
	pkgerrors "github.com/vashudha/ghee-storefront/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service exposes server-side cart operations for authenticated customers.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID, qty int) (*models.CartRecord, error)
	UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, qty int) (*models.CartRecord, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*models.CartRecord, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo     CartRepository
	tx       txRunner
	products productLoader
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, tx txRunner, products productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{repo: repo, tx: tx, products: products}, nil
}

// Get returns the user's cart, creating an empty one on first use.
func (s *service) Get(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	record, err := s.repo.FindByUser(ctx, userID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	created, err := s.repo.Create(ctx, &models.CartRecord{UserID: userID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
	}
	return created, nil
}

// AddItem merges qty into the user's line for the product, snapshotting
// name, price, and image at add time.
func (s *service) AddItem(ctx context.Context, userID, productID uuid.UUID, qty int) (*models.CartRecord, error) {
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not available")
	}

	record, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		item, err := txRepo.FindItem(ctx, record.ID, productID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		newQty := qty
		if item != nil {
			newQty += item.Quantity
		}
		if product.Stock < newQty {
			return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock for product")
		}

		if item == nil {
			var image *string
			if len(product.Images) > 0 {
				image = &product.Images[0]
			}
			item = &models.CartItem{
				CartID:    record.ID,
				ProductID: product.ID,
				Name:      product.Name,
				UnitPrice: product.Price,
				Image:     image,
			}
		}
		item.Quantity = newQty
		return txRepo.SaveItem(ctx, item)
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart item")
	}

	return s.repo.FindByUser(ctx, userID)
}

// UpdateQuantity sets the line quantity. Zero or negative removes the
// line; an unknown product is a no-op.
func (s *service) UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, qty int) (*models.CartRecord, error) {
	record, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if qty <= 0 {
		return s.RemoveItem(ctx, userID, productID)
	}

	item, err := s.repo.FindItem(ctx, record.ID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return record, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}

	item.Quantity = qty
	if err := s.repo.SaveItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
	}
	return s.repo.FindByUser(ctx, userID)
}

// RemoveItem drops the product's line if present.
func (s *service) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*models.CartRecord, error) {
	record, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteItem(ctx, record.ID, productID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
	}
	return s.repo.FindByUser(ctx, userID)
}

// Clear removes every line from the user's cart.
func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	record, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteItems(ctx, record.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

// PricingLines projects persisted cart items into the calculator's input.
func PricingLines(items []models.CartItem) []pricing.Line {
	out := make([]pricing.Line, 0, len(items))
	for _, item := range items {
		out = append(out, pricing.Line{UnitPrice: item.UnitPrice, Quantity: item.Quantity})
	}
	return out
}
