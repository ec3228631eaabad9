package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vashudha/ghee-storefront/api/responses"
	"github.com/vashudha/ghee-storefront/api/validators"
	productsvc "github.com/vashudha/ghee-storefront/internal/products"
	"github.com/vashudha/ghee-storefront/pkg/enums"
	pkgerrors "github.com/vashudha/ghee-storefront/pkg/errors"
	"github.com/vashudha/ghee-storefront/pkg/logger"
)

type createProductRequest struct {
	Slug           string   `json:"slug" validate:"required"`
	Name           string   `json:"name" validate:"required"`
	Description    *string  `json:"description,omitempty"`
	Category       string   `json:"category" validate:"required"`
	Price          string   `json:"price" validate:"required"`
	CompareAtPrice *string  `json:"compare_at_price,omitempty"`
	SizeLabel      string   `json:"size_label" validate:"required"`
	Images         []string `json:"images,omitempty"`
	Stock          int      `json:"stock" validate:"min=0"`
	IsActive       *bool    `json:"is_active,omitempty"`
	IsFeatured     bool     `json:"is_featured,omitempty"`
}

type updateProductRequest struct {
	Slug           *string   `json:"slug,omitempty"`
	Name           *string   `json:"name,omitempty"`
	Description    *string   `json:"description,omitempty"`
	Category       *string   `json:"category,omitempty"`
	Price          *string   `json:"price,omitempty"`
	CompareAtPrice *string   `json:"compare_at_price,omitempty"`
	SizeLabel      *string   `json:"size_label,omitempty"`
	Images         *[]string `json:"images,omitempty"`
	Stock          *int      `json:"stock,omitempty" validate:"omitempty,min=0"`
	IsActive       *bool     `json:"is_active,omitempty"`
	IsFeatured     *bool     `json:"is_featured,omitempty"`
}

type adjustStockRequest struct {
	Delta int `json:"delta" validate:"required"`
}

// AdminProductList serves the back-office catalog including inactive rows.
func AdminProductList(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		input, err := buildListInput(r, true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// AdminProductCreate adds a product to the catalog.
func AdminProductCreate(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var body createProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := body.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// AdminProductUpdate applies a partial update to a product.
func AdminProductUpdate(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := parseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := body.toUpdateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// AdminProductDelete removes a product from the catalog.
func AdminProductDelete(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := parseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// AdminProductAdjustStock applies a signed stock delta.
func AdminProductAdjustStock(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := parseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body adjustStockRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.AdjustStock(r.Context(), productID, body.Delta)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

func (b createProductRequest) toCreateInput() (productsvc.CreateProductInput, error) {
	category, err := enums.ParseProductCategory(strings.TrimSpace(b.Category))
	if err != nil {
		return productsvc.CreateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
	}

	price, err := parsePrice(b.Price)
	if err != nil {
		return productsvc.CreateProductInput{}, err
	}

	var compareAt *decimal.Decimal
	if b.CompareAtPrice != nil {
		value, err := parsePrice(*b.CompareAtPrice)
		if err != nil {
			return productsvc.CreateProductInput{}, err
		}
		compareAt = &value
	}

	isActive := true
	if b.IsActive != nil {
		isActive = *b.IsActive
	}

	return productsvc.CreateProductInput{
		Slug:           b.Slug,
		Name:           b.Name,
		Description:    b.Description,
		Category:       category,
		Price:          price,
		CompareAtPrice: compareAt,
		SizeLabel:      b.SizeLabel,
		Images:         b.Images,
		Stock:          b.Stock,
		IsActive:       isActive,
		IsFeatured:     b.IsFeatured,
	}, nil
}

func (b updateProductRequest) toUpdateInput() (productsvc.UpdateProductInput, error) {
	var input productsvc.UpdateProductInput
	input.Slug = b.Slug
	input.Name = b.Name
	input.Description = b.Description
	input.SizeLabel = b.SizeLabel
	input.Images = b.Images
	input.Stock = b.Stock
	input.IsActive = b.IsActive
	input.IsFeatured = b.IsFeatured

	if b.Category != nil {
		category, err := enums.ParseProductCategory(strings.TrimSpace(*b.Category))
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
		}
		input.Category = &category
	}

	if b.Price != nil {
		price, err := parsePrice(*b.Price)
		if err != nil {
			return input, err
		}
		input.Price = &price
	}

	if b.CompareAtPrice != nil {
		value, err := parsePrice(*b.CompareAtPrice)
		if err != nil {
			return input, err
		}
		input.CompareAtPrice = &value
	}

	return input, nil
}

func parsePrice(raw string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price")
	}
	if value.IsNegative() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	return value, nil
}
