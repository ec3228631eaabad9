package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vashudha/ghee-storefront/pkg/db/models"
	"github.com/vashudha/ghee-storefront/pkg/enums"
)

// ProductDTO is the catalog read shape exposed to clients.
type ProductDTO struct {
	ID             uuid.UUID             `json:"id"`
	Slug           string                `json:"slug"`
	Name           string                `json:"name"`
	Description    *string               `json:"description,omitempty"`
	Category       enums.ProductCategory `json:"category"`
	Price          decimal.Decimal       `json:"price"`
	CompareAtPrice *decimal.Decimal      `json:"compare_at_price,omitempty"`
	SizeLabel      string                `json:"size_label"`
	Images         []string              `json:"images"`
	Stock          int                   `json:"stock"`
	InStock        bool                  `json:"in_stock"`
	IsActive       bool                  `json:"is_active"`
	IsFeatured     bool                  `json:"is_featured"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// FromModel projects a product row into its DTO.
func FromModel(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}
	images := make([]string, len(p.Images))
	copy(images, p.Images)

	return &ProductDTO{
		ID:             p.ID,
		Slug:           p.Slug,
		Name:           p.Name,
		Description:    p.Description,
		Category:       p.Category,
		Price:          p.Price,
		CompareAtPrice: p.CompareAtPrice,
		SizeLabel:      p.SizeLabel,
		Images:         images,
		Stock:          p.Stock,
		InStock:        p.Stock > 0,
		IsActive:       p.IsActive,
		IsFeatured:     p.IsFeatured,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// FromModels maps a slice of product rows into DTOs.
func FromModels(rows []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
