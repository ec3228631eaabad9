package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/vashudha/ghee-storefront/pkg/enums"
)

// Product represents a catalog listing. Prices are whole rupees stored
// with two decimal places for safety.
type Product struct {
	ID             uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Slug           string                `gorm:"column:slug;not null;uniqueIndex"`
	Name           string                `gorm:"column:name;not null"`
	Description    *string               `gorm:"column:description"`
	Category       enums.ProductCategory `gorm:"column:category;type:text;not null"`
	Price          decimal.Decimal       `gorm:"column:price;type:numeric(10,2);not null"`
	CompareAtPrice *decimal.Decimal      `gorm:"column:compare_at_price;type:numeric(10,2)"`
	SizeLabel      string                `gorm:"column:size_label;not null;default:''"`
	Images         pq.StringArray        `gorm:"column:images;type:text[];not null;default:ARRAY[]::text[]"`
	Stock          int                   `gorm:"column:stock;not null;default:0"`
	IsActive       bool                  `gorm:"column:is_active;not null;default:true"`
	IsFeatured     bool                  `gorm:"column:is_featured;not null;default:false"`
	CreatedAt      time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
