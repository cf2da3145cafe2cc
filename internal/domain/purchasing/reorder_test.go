package purchasing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReorderSuggestion(t *testing.T) {
	t.Run("estimates cost from last unit cost", func(t *testing.T) {
		cost := decimal.RequireFromString("2.50")
		s := NewReorderSuggestion(uuid.New(), "WID-1", "Widget", 3, 10, 40, &cost)
		assert.Equal(t, int64(40), s.SuggestedQuantity)
		require.NotNil(t, s.UnitCost)
		assert.Equal(t, "2.50", s.UnitCost.StringFixed(2))
		assert.Equal(t, "100.00", s.EstimatedCost.StringFixed(2))
	})

	t.Run("unknown cost stays nil and estimates as zero", func(t *testing.T) {
		s := NewReorderSuggestion(uuid.New(), "WID-1", "Widget", 3, 10, 40, nil)
		assert.Nil(t, s.UnitCost)
		assert.True(t, s.EstimatedCost.IsZero())
	})

	t.Run("does not alias the caller's cost value", func(t *testing.T) {
		cost := decimal.RequireFromString("2.50")
		s := NewReorderSuggestion(uuid.New(), "WID-1", "Widget", 3, 10, 40, &cost)
		cost = decimal.RequireFromString("9.99")
		assert.Equal(t, "2.50", s.UnitCost.StringFixed(2))
	})
}

func TestBuildVendorGroups(t *testing.T) {
	vendorA := uuid.New()
	vendorB := uuid.New()
	names := map[uuid.UUID]string{
		vendorA: "Zenith Wholesale",
		vendorB: "Acme Supplies",
	}

	cost := decimal.RequireFromString("2.00")
	byVendor := map[uuid.UUID][]ReorderSuggestion{
		vendorA: {
			NewReorderSuggestion(uuid.New(), "ZZZ-9", "Last", 0, 5, 10, &cost),
			NewReorderSuggestion(uuid.New(), "AAA-1", "First", 1, 5, 5, &cost),
		},
		vendorB: {
			NewReorderSuggestion(uuid.New(), "MMM-5", "Mid", 2, 5, 20, nil),
		},
	}

	groups := BuildVendorGroups(byVendor, names)
	require.Len(t, groups, 2)

	// Groups sorted by vendor name.
	assert.Equal(t, "Acme Supplies", groups[0].VendorName)
	assert.Equal(t, "Zenith Wholesale", groups[1].VendorName)

	// Suggestions within a group sorted by SKU.
	require.Len(t, groups[1].Suggestions, 2)
	assert.Equal(t, "AAA-1", groups[1].Suggestions[0].SKU)
	assert.Equal(t, "ZZZ-9", groups[1].Suggestions[1].SKU)

	// Estimated totals sum the suggestion estimates; nil cost counts as zero.
	assert.Equal(t, "30.00", groups[1].EstimatedTotal.StringFixed(2))
	assert.True(t, groups[0].EstimatedTotal.IsZero())
	assert.Equal(t, 1, groups[0].ItemCount)
}

func TestBuildVendorGroups_Empty(t *testing.T) {
	groups := BuildVendorGroups(nil, nil)
	assert.Empty(t, groups)
}
