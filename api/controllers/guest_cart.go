package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/vashudha/ghee-storefront/api/responses"
	"github.com/vashudha/ghee-storefront/api/validators"
	cartsvc "github.com/vashudha/ghee-storefront/internal/cart"
	"github.com/vashudha/ghee-storefront/internal/pricing"
	pkgerrors "github.com/vashudha/ghee-storefront/pkg/errors"
	"github.com/vashudha/ghee-storefront/pkg/logger"
)

// guestCartRequest replaces the whole snapshot; the client cart store is
// authoritative for anonymous visitors, the server just keeps the copy
// that survives a device or tab change.
type guestCartRequest struct {
	Items []cartsvc.Line `json:"items"`
}

type guestCartResponse struct {
	Items   []cartsvc.Line  `json:"items"`
	Summary pricing.Summary `json:"summary"`
}

// GuestCartFetch returns the anonymous visitor's snapshot plus its priced
// summary so the storefront can render totals before login.
func GuestCartFetch(snapshots *cartsvc.SnapshotSource, pricingCfg pricing.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		repo, err := guestRepo(snapshots, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines, err := repo.Load(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load guest cart"))
			return
		}

		responses.WriteSuccess(w, guestCartResponse{
			Items:   lines,
			Summary: pricing.ComputeSummary(guestPricingLines(lines), nil, pricingCfg),
		})
	}
}

// GuestCartSave overwrites the visitor's snapshot. Last writer wins.
func GuestCartSave(snapshots *cartsvc.SnapshotSource, pricingCfg pricing.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		repo, err := guestRepo(snapshots, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body guestCartRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := validateGuestLines(body.Items); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lines := body.Items
		if lines == nil {
			lines = []cartsvc.Line{}
		}

		if err := repo.Save(r.Context(), lines); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save guest cart"))
			return
		}

		responses.WriteSuccess(w, guestCartResponse{
			Items:   lines,
			Summary: pricing.ComputeSummary(guestPricingLines(lines), nil, pricingCfg),
		})
	}
}

func guestRepo(snapshots *cartsvc.SnapshotSource, r *http.Request) (*cartsvc.RedisSnapshotRepository, error) {
	if snapshots == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "guest cart storage unavailable")
	}
	sessionID := strings.TrimSpace(r.Header.Get(guestSessionHeader))
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "guest session header required")
	}
	repo, err := snapshots.ForSession(sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid guest session")
	}
	return repo, nil
}

func guestPricingLines(lines []cartsvc.Line) []pricing.Line {
	out := make([]pricing.Line, 0, len(lines))
	for _, line := range lines {
		out = append(out, pricing.Line{UnitPrice: line.UnitPrice, Quantity: line.Quantity})
	}
	return out
}

func validateGuestLines(lines []cartsvc.Line) error {
	seen := make(map[uuid.UUID]struct{}, len(lines))
	for _, line := range lines {
		if line.ProductID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
		}
		if strings.TrimSpace(line.Name) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
		}
		if line.UnitPrice.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
		}
		if line.Quantity < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
		}
		if _, dup := seen[line.ProductID]; dup {
			return pkgerrors.New(pkgerrors.CodeValidation, "duplicate product line")
		}
		seen[line.ProductID] = struct{}{}
	}
	return nil
}
