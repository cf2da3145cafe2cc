package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Product is the catalog aggregate. QuantityInStock is the on-hand count
// maintained by receiving and sales; ReorderLevel/ReorderQuantity drive
// replenishment suggestions.
type Product struct {
	shared.BaseAggregateRoot
	SKU             string           `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name            string           `gorm:"type:varchar(200);not null"`
	Description     string           `gorm:"type:text"`
	VendorID        *uuid.UUID       `gorm:"type:uuid;index"`
	QuantityInStock int64            `gorm:"not null;default:0"`
	ReorderLevel    int64            `gorm:"not null;default:0"`
	ReorderQuantity int64            `gorm:"not null;default:0"`
	DefaultUnitCost *decimal.Decimal `gorm:"type:decimal(18,4)"`
	IsActive        bool             `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new active product
func NewProduct(sku, name string, vendorID *uuid.UUID) (*Product, error) {
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SKU:               sku,
		Name:              name,
		VendorID:          vendorID,
		IsActive:          true,
	}, nil
}

// SetReorderPolicy configures the replenishment trigger and quantity
func (p *Product) SetReorderPolicy(level, quantity int64) error {
	if level < 0 || quantity < 0 {
		return shared.NewDomainError("INVALID_REORDER_POLICY", "Reorder level and quantity cannot be negative")
	}
	p.ReorderLevel = level
	p.ReorderQuantity = quantity
	p.IncrementVersion()
	return nil
}

// NeedsReorder returns true if stock has fallen to or below the reorder
// level and the product has a positive reorder quantity configured.
func (p *Product) NeedsReorder() bool {
	return p.IsActive && p.ReorderQuantity > 0 && p.QuantityInStock <= p.ReorderLevel
}

// ApplyStockDelta adjusts the on-hand quantity, rejecting changes that
// would make it negative.
func (p *Product) ApplyStockDelta(delta int64) error {
	next := p.QuantityInStock + delta
	if next < 0 {
		return shared.NewDomainError("NEGATIVE_INVENTORY",
			fmt.Sprintf("Stock for %s cannot go below zero (have %d, delta %d)", p.SKU, p.QuantityInStock, delta))
	}
	p.QuantityInStock = next
	p.IncrementVersion()
	return nil
}

// Deactivate marks the product inactive
func (p *Product) Deactivate() {
	p.IsActive = false
	p.IncrementVersion()
}

// Activate marks the product active
func (p *Product) Activate() {
	p.IsActive = true
	p.IncrementVersion()
}

// Repository is the persistence port for products.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Product, error)
	FindBySKU(ctx context.Context, sku string) (*Product, error)
	// FindBelowReorderLevel returns active products whose stock is at or
	// below their reorder level and that have a vendor assigned
	FindBelowReorderLevel(ctx context.Context) ([]*Product, error)
	Save(ctx context.Context, product *Product) error
}
