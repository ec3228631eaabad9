package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vashudha/ghee-storefront/api/responses"
	"github.com/vashudha/ghee-storefront/api/validators"
	cartsvc "github.com/vashudha/ghee-storefront/internal/cart"
	"github.com/vashudha/ghee-storefront/internal/pricing"
	pkgerrors "github.com/vashudha/ghee-storefront/pkg/errors"
	"github.com/vashudha/ghee-storefront/pkg/logger"
)

// Per-line guest cart mutations. Each request hydrates a Store from the
// visitor's snapshot, applies one change, and answers with the resulting
// cart; the Store persists fail-open, so a storage hiccup never blocks
// the mutation.

type guestCartItemRequest struct {
	ProductID uuid.UUID       `json:"product_id" validate:"required"`
	Name      string          `json:"name" validate:"required"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Image     *string         `json:"image,omitempty"`
	Quantity  int             `json:"quantity" validate:"required,min=1"`
}

type guestCartQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required"`
}

// GuestCartAddItem merges qty units of a product into the guest cart.
func GuestCartAddItem(snapshots *cartsvc.SnapshotSource, pricingCfg pricing.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		repo, err := guestRepo(snapshots, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body guestCartItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if body.UnitPrice.IsNegative() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative"))
			return
		}

		store := cartsvc.NewStore(r.Context(), repo, logg)
		store.AddItem(r.Context(), cartsvc.Line{
			ProductID: body.ProductID,
			Name:      body.Name,
			UnitPrice: body.UnitPrice,
			Image:     body.Image,
		}, body.Quantity)

		responses.WriteSuccess(w, newGuestStoreResponse(store, pricingCfg))
	}
}

// GuestCartUpdateItem sets the quantity of one guest line; zero or less
// removes it, an unknown product id is a no-op.
func GuestCartUpdateItem(snapshots *cartsvc.SnapshotSource, pricingCfg pricing.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		repo, err := guestRepo(snapshots, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := parseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body guestCartQuantityRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store := cartsvc.NewStore(r.Context(), repo, logg)
		store.UpdateQuantity(r.Context(), productID, body.Quantity)

		responses.WriteSuccess(w, newGuestStoreResponse(store, pricingCfg))
	}
}

// GuestCartRemoveItem drops one line from the guest cart.
func GuestCartRemoveItem(snapshots *cartsvc.SnapshotSource, pricingCfg pricing.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		repo, err := guestRepo(snapshots, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := parseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store := cartsvc.NewStore(r.Context(), repo, logg)
		store.RemoveItem(r.Context(), productID)

		responses.WriteSuccess(w, newGuestStoreResponse(store, pricingCfg))
	}
}

// GuestCartClear empties the guest cart.
func GuestCartClear(snapshots *cartsvc.SnapshotSource, pricingCfg pricing.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		repo, err := guestRepo(snapshots, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store := cartsvc.NewStore(r.Context(), repo, logg)
		store.Clear(r.Context())

		responses.WriteSuccess(w, newGuestStoreResponse(store, pricingCfg))
	}
}

func newGuestStoreResponse(store *cartsvc.Store, cfg pricing.Config) guestCartResponse {
	return guestCartResponse{
		Items:   store.Lines(),
		Summary: pricing.ComputeSummary(store.PricingLines(), nil, cfg),
	}
}
