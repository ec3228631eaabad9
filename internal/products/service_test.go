package products

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vashudha/ghee-storefront/pkg/enums"
	pkgerrors "github.com/vashudha/ghee-storefront/pkg/errors"
)

func TestValidateCreate(t *testing.T) {
	t.Parallel()

	valid := CreateProductInput{
		Slug:     "a2-desi-ghee-1l",
		Name:     "A2 Desi Ghee 1L",
		Category: enums.ProductCategoryA2Ghee,
		Price:    decimal.NewFromInt(900),
		Stock:    20,
	}
	if err := validateCreate(valid); err != nil {
		t.Fatalf("expected valid input, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*CreateProductInput)
	}{
		{"missing name", func(in *CreateProductInput) { in.Name = " " }},
		{"empty slug", func(in *CreateProductInput) { in.Slug = "" }},
		{"slug with spaces", func(in *CreateProductInput) { in.Slug = "a2 ghee" }},
		{"bad category", func(in *CreateProductInput) { in.Category = "butter" }},
		{"negative price", func(in *CreateProductInput) { in.Price = decimal.NewFromInt(-1) }},
		{"negative stock", func(in *CreateProductInput) { in.Stock = -1 }},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			input := valid
			tc.mutate(&input)
			err := validateCreate(input)
			coded := pkgerrors.As(err)
			if coded == nil || coded.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestNormalizeSlug(t *testing.T) {
	t.Parallel()

	if got := normalizeSlug("  Cow-Ghee-500ML "); got != "cow-ghee-500ml" {
		t.Fatalf("unexpected slug %q", got)
	}
}

func TestOrderClause(t *testing.T) {
	t.Parallel()

	cases := map[enums.ProductSort]string{
		enums.ProductSortNewest:    "created_at DESC, id ASC",
		enums.ProductSortPriceAsc:  "price ASC, id ASC",
		enums.ProductSortPriceDesc: "price DESC, id ASC",
		enums.ProductSortNameAsc:   "name ASC, id ASC",
		enums.ProductSortNameDesc:  "name DESC, id ASC",
		enums.ProductSort(""):      "created_at DESC, id ASC",
	}
	for sort, want := range cases {
		if got := orderClause(sort); got != want {
			t.Fatalf("sort %q: expected %q, got %q", sort, want, got)
		}
	}
}
