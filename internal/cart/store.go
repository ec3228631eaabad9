package cart

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vashudha/ghee-storefront/internal/pricing"
	"github.com/vashudha/ghee-storefront/pkg/logger"
)

// Line is one product entry in a visitor's cart.
type Line struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Image     *string         `json:"image,omitempty"`
	Quantity  int             `json:"quantity"`
}

// SnapshotRepository persists the full line set for one visitor. Load on a
// missing snapshot returns an empty slice, not an error.
type SnapshotRepository interface {
	Load(ctx context.Context) ([]Line, error)
	Save(ctx context.Context, lines []Line) error
}

// Store holds the authoritative cart lines for one visitor session.
//
// Persistence is fail-open: a snapshot that cannot be read degrades to an
// empty cart and a failed save keeps the in-memory state, both logged and
// never surfaced. Losing a cart is an annoyance; blocking shopping on a
// storage hiccup is worse.
type Store struct {
	mu    sync.Mutex
	lines []Line
	repo  SnapshotRepository
	logg  *logger.Logger
}

// NewStore builds a Store hydrated from the snapshot repository.
func NewStore(ctx context.Context, repo SnapshotRepository, logg *logger.Logger) *Store {
	s := &Store{repo: repo, logg: logg}
	if repo == nil {
		return s
	}
	lines, err := repo.Load(ctx)
	if err != nil {
		if logg != nil {
			logg.Warn(logg.WithField(ctx, "error", err.Error()), "cart snapshot load failed, starting empty")
		}
		return s
	}
	s.lines = lines
	return s
}

// AddItem merges qty into the line for the product, creating it if absent.
// Non-positive quantities are ignored.
func (s *Store) AddItem(ctx context.Context, product Line, qty int) {
	if qty <= 0 || product.ProductID == uuid.Nil {
		return
	}
	s.mu.Lock()
	merged := false
	for i := range s.lines {
		if s.lines[i].ProductID == product.ProductID {
			s.lines[i].Quantity += qty
			merged = true
			break
		}
	}
	if !merged {
		product.Quantity = qty
		s.lines = append(s.lines, product)
	}
	snapshot := s.copyLocked()
	s.mu.Unlock()
	s.persist(ctx, snapshot)
}

// UpdateQuantity sets the quantity for an existing line. Zero or negative
// removes the line; an unknown product id is a no-op.
func (s *Store) UpdateQuantity(ctx context.Context, productID uuid.UUID, qty int) {
	s.mu.Lock()
	idx := -1
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			idx = i
			break
		}
	}
	if idx == -1 {
		s.mu.Unlock()
		return
	}
	if qty <= 0 {
		s.lines = append(s.lines[:idx], s.lines[idx+1:]...)
	} else {
		s.lines[idx].Quantity = qty
	}
	snapshot := s.copyLocked()
	s.mu.Unlock()
	s.persist(ctx, snapshot)
}

// RemoveItem drops the line for the product if present.
func (s *Store) RemoveItem(ctx context.Context, productID uuid.UUID) {
	s.UpdateQuantity(ctx, productID, 0)
}

// Clear empties the cart and persists the empty snapshot.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.lines = nil
	s.mu.Unlock()
	s.persist(ctx, []Line{})
}

// Lines returns a copy of the current lines.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

// TotalQuantity sums the quantities across all lines.
func (s *Store) TotalQuantity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, line := range s.lines {
		total += line.Quantity
	}
	return total
}

// TotalAmount sums unit price times quantity across all lines.
func (s *Store) TotalAmount() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, line := range s.lines {
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// PricingLines projects the cart into the calculator's input shape.
func (s *Store) PricingLines() []pricing.Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]pricing.Line, 0, len(s.lines))
	for _, line := range s.lines {
		out = append(out, pricing.Line{UnitPrice: line.UnitPrice, Quantity: line.Quantity})
	}
	return out
}

func (s *Store) copyLocked() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *Store) persist(ctx context.Context, snapshot []Line) {
	if s.repo == nil {
		return
	}
	if err := s.repo.Save(ctx, snapshot); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "cart snapshot save failed, keeping in-memory state")
	}
}
