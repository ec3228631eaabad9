package enums

import "fmt"

// ProductCategory represents the canonical categories in the ghee catalog.
type ProductCategory string

const (
	ProductCategoryCowGhee      ProductCategory = "cow_ghee"
	ProductCategoryBuffaloGhee  ProductCategory = "buffalo_ghee"
	ProductCategoryA2Ghee       ProductCategory = "a2_ghee"
	ProductCategoryOrganicGhee  ProductCategory = "organic_ghee"
	ProductCategoryFlavoredGhee ProductCategory = "flavored_ghee"
	ProductCategoryGiftPack     ProductCategory = "gift_pack"
)

var validProductCategories = []ProductCategory{
	ProductCategoryCowGhee,
	ProductCategoryBuffaloGhee,
	ProductCategoryA2Ghee,
	ProductCategoryOrganicGhee,
	ProductCategoryFlavoredGhee,
	ProductCategoryGiftPack,
}

// String implements fmt.Stringer.
func (c ProductCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ProductCategory.
func (c ProductCategory) IsValid() bool {
	for _, candidate := range validProductCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseProductCategory converts raw input into a ProductCategory.
func ParseProductCategory(value string) (ProductCategory, error) {
	for _, candidate := range validProductCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product category %q", value)
}

// ProductSort enumerates the catalog orderings the storefront exposes.
type ProductSort string

const (
	ProductSortNewest    ProductSort = "newest"
	ProductSortPriceAsc  ProductSort = "price_asc"
	ProductSortPriceDesc ProductSort = "price_desc"
	ProductSortNameAsc   ProductSort = "name_asc"
	ProductSortNameDesc  ProductSort = "name_desc"
)

var validProductSorts = []ProductSort{
	ProductSortNewest,
	ProductSortPriceAsc,
	ProductSortPriceDesc,
	ProductSortNameAsc,
	ProductSortNameDesc,
}

// String implements fmt.Stringer.
func (s ProductSort) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ProductSort.
func (s ProductSort) IsValid() bool {
	for _, candidate := range validProductSorts {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseProductSort converts raw input into a ProductSort, defaulting to
// newest when the value is empty.
func ParseProductSort(value string) (ProductSort, error) {
	if value == "" {
		return ProductSortNewest, nil
	}
	for _, candidate := range validProductSorts {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product sort %q", value)
}
