package products

import "github.com/vashudha/ghee-storefront/pkg/enums"

// ListFilters describe the filter knobs for the catalog browse endpoint.
type ListFilters struct {
	Category *enums.ProductCategory `json:"category,omitempty"`
	Featured *bool                  `json:"featured,omitempty"`
	Query    string                 `json:"q,omitempty"`
}

// ListInput captures the inputs needed to page and sort the catalog.
type ListInput struct {
	Filters ListFilters
	Sort    enums.ProductSort
	Page    int
	Limit   int
	// IncludeInactive lets admin listings see hidden products.
	IncludeInactive bool
}

// ListResult is one catalog page with totals for client-side paging.
type ListResult struct {
	Products []ProductDTO `json:"products"`
	Total    int64        `json:"total"`
	Page     int          `json:"page"`
	Limit    int          `json:"limit"`
}
