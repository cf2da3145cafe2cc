package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	vendorID := uuid.New()
	p, err := NewProduct("WID-1", "Widget", &vendorID)
	require.NoError(t, err)
	assert.True(t, p.IsActive)
	assert.Equal(t, int64(0), p.QuantityInStock)

	_, err = NewProduct("", "Widget", nil)
	assert.Error(t, err)
}

func TestProduct_NeedsReorder(t *testing.T) {
	tests := []struct {
		name     string
		inStock  int64
		level    int64
		quantity int64
		active   bool
		want     bool
	}{
		{"below level", 3, 10, 40, true, true},
		{"at level", 10, 10, 40, true, true},
		{"above level", 11, 10, 40, true, false},
		{"no reorder quantity", 3, 10, 0, true, false},
		{"inactive product", 3, 10, 40, false, false},
		{"zero level and empty stock", 0, 0, 40, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Product{
				QuantityInStock: tt.inStock,
				ReorderLevel:    tt.level,
				ReorderQuantity: tt.quantity,
				IsActive:        tt.active,
			}
			assert.Equal(t, tt.want, p.NeedsReorder())
		})
	}
}

func TestProduct_ApplyStockDelta(t *testing.T) {
	p := &Product{SKU: "WID-1", QuantityInStock: 5}

	require.NoError(t, p.ApplyStockDelta(10))
	assert.Equal(t, int64(15), p.QuantityInStock)

	require.NoError(t, p.ApplyStockDelta(-15))
	assert.Equal(t, int64(0), p.QuantityInStock)

	err := p.ApplyStockDelta(-1)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NEGATIVE_INVENTORY", domainErr.Code)
	assert.Equal(t, int64(0), p.QuantityInStock)
}
