package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MovementType classifies a stock movement
type MovementType string

const (
	MovementPurchaseReceipt MovementType = "PURCHASE_RECEIPT"
	MovementAdjustment      MovementType = "ADJUSTMENT"
)

// StockMovement is an append-only audit record of a stock change.
// ReferenceID points at the document that caused it (a purchase order
// for receipts).
type StockMovement struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	MovementType MovementType    `gorm:"type:varchar(30);not null"`
	Quantity     int64           `gorm:"not null"`
	UnitCost     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReferenceID  *uuid.UUID      `gorm:"type:uuid;index"`
	Notes        string          `gorm:"type:varchar(500)"`
	CreatedBy    *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewPurchaseReceiptMovement records goods arriving against a purchase order
func NewPurchaseReceiptMovement(productID, orderID uuid.UUID, quantity int64, unitCost decimal.Decimal, receivedBy *uuid.UUID) (*StockMovement, error) {
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Receipt quantity must be positive")
	}
	ref := orderID
	return &StockMovement{
		ID:           uuid.New(),
		ProductID:    productID,
		MovementType: MovementPurchaseReceipt,
		Quantity:     quantity,
		UnitCost:     unitCost,
		ReferenceID:  &ref,
		CreatedBy:    receivedBy,
		CreatedAt:    time.Now(),
	}, nil
}

// StockMutator applies atomic stock deltas. Implementations must reject
// any delta that would drive on-hand stock negative with a
// NEGATIVE_INVENTORY domain error, leaving the row unchanged.
type StockMutator interface {
	ApplyDelta(ctx context.Context, productID uuid.UUID, delta int64) error
}

// MovementRepository persists the stock movement audit trail.
type MovementRepository interface {
	Record(ctx context.Context, movement *StockMovement) error
	FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]*StockMovement, int64, error)
	FindByReference(ctx context.Context, referenceID uuid.UUID) ([]*StockMovement, error)
}
