package products

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Inventory adapts the product repository into the stock-adjustment
// surface order placement needs. A non-nil tx binds the adjustment into
// the caller's transaction.
type Inventory struct {
	repo *Repository
}

// NewInventory wraps the repository for stock adjustments.
func NewInventory(repo *Repository) (*Inventory, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &Inventory{repo: repo}, nil
}

// Decrement takes qty units out of stock, failing when not enough remain.
func (i *Inventory) Decrement(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	return i.repo.WithTx(tx).DecrementStock(ctx, productID, qty)
}

// Restore returns qty units to stock.
func (i *Inventory) Restore(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	return i.repo.WithTx(tx).RestoreStock(ctx, productID, qty)
}
