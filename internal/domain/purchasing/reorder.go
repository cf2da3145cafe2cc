package purchasing

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReorderSuggestion is one product proposed for replenishment.
// SuggestedQuantity comes from the product's configured reorder quantity.
// UnitCost is nil when the product has no purchase history and no catalog
// default, so callers can tell "unknown" apart from a genuine zero cost;
// EstimatedCost treats an unknown cost as zero.
type ReorderSuggestion struct {
	ProductID         uuid.UUID        `json:"product_id"`
	SKU               string           `json:"sku"`
	ProductName       string           `json:"product_name"`
	QuantityInStock   int64            `json:"quantity_in_stock"`
	ReorderLevel      int64            `json:"reorder_level"`
	SuggestedQuantity int64            `json:"suggested_quantity"`
	UnitCost          *decimal.Decimal `json:"unit_cost"`
	EstimatedCost     decimal.Decimal  `json:"estimated_cost"`
}

// VendorReorderGroup bundles the suggestions for a single vendor so a
// buyer can turn the group into one purchase order.
type VendorReorderGroup struct {
	VendorID       uuid.UUID           `json:"vendor_id"`
	VendorName     string              `json:"vendor_name"`
	Suggestions    []ReorderSuggestion `json:"suggestions"`
	ItemCount      int                 `json:"item_count"`
	EstimatedTotal decimal.Decimal     `json:"estimated_total"`
}

// BuildVendorGroups groups suggestions by vendor and orders the result
// deterministically: groups by vendor name (then vendor ID for ties),
// suggestions within a group by SKU.
func BuildVendorGroups(byVendor map[uuid.UUID][]ReorderSuggestion, vendorNames map[uuid.UUID]string) []VendorReorderGroup {
	groups := make([]VendorReorderGroup, 0, len(byVendor))
	for vendorID, suggestions := range byVendor {
		sort.Slice(suggestions, func(i, j int) bool {
			return suggestions[i].SKU < suggestions[j].SKU
		})

		total := decimal.Zero
		for _, s := range suggestions {
			total = total.Add(s.EstimatedCost)
		}

		groups = append(groups, VendorReorderGroup{
			VendorID:       vendorID,
			VendorName:     vendorNames[vendorID],
			Suggestions:    suggestions,
			ItemCount:      len(suggestions),
			EstimatedTotal: total,
		})
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].VendorName != groups[j].VendorName {
			return groups[i].VendorName < groups[j].VendorName
		}
		return groups[i].VendorID.String() < groups[j].VendorID.String()
	})

	return groups
}

// NewReorderSuggestion derives a suggestion for a product at or below its
// reorder level. An unknown unit cost is preserved as nil and contributes
// zero to the estimate so totals stay additive across a vendor group.
func NewReorderSuggestion(productID uuid.UUID, sku, name string, inStock, reorderLevel, reorderQuantity int64, unitCost *decimal.Decimal) ReorderSuggestion {
	estimate := decimal.Zero
	if unitCost != nil {
		c := *unitCost
		unitCost = &c
		estimate = c.Mul(decimal.NewFromInt(reorderQuantity))
	}
	return ReorderSuggestion{
		ProductID:         productID,
		SKU:               sku,
		ProductName:       name,
		QuantityInStock:   inStock,
		ReorderLevel:      reorderLevel,
		SuggestedQuantity: reorderQuantity,
		UnitCost:          unitCost,
		EstimatedCost:     estimate,
	}
}
