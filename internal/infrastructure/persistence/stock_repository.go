package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/inventory"
	"github.com/retailpos/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormStockMutator implements inventory.StockMutator against the
// products table.
type GormStockMutator struct {
	db *gorm.DB
}

// NewGormStockMutator creates a new GormStockMutator
func NewGormStockMutator(db *gorm.DB) *GormStockMutator {
	return &GormStockMutator{db: db}
}

// ApplyDelta adjusts on-hand stock atomically. The guard in the WHERE
// clause makes the check-and-update a single statement, so concurrent
// deltas cannot race the row below zero.
func (m *GormStockMutator) ApplyDelta(ctx context.Context, productID uuid.UUID, delta int64) error {
	result := m.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Where("id = ? AND quantity_in_stock + ? >= 0", productID, delta).
		UpdateColumn("quantity_in_stock", gorm.Expr("quantity_in_stock + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	// Distinguish a missing product from a rejected delta.
	var exists bool
	if err := m.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Select("count(*) > 0").
		Where("id = ?", productID).
		Find(&exists).Error; err != nil {
		return err
	}
	if !exists {
		return shared.ErrNotFound
	}
	return shared.NewDomainError("NEGATIVE_INVENTORY",
		fmt.Sprintf("Stock for product %s cannot go below zero", productID))
}

// GormMovementRepository implements inventory.MovementRepository using GORM
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// Record appends a stock movement
func (r *GormMovementRepository) Record(ctx context.Context, movement *inventory.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

// FindByProduct returns movements for a product, newest first
func (r *GormMovementRepository) FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]*inventory.StockMovement, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&inventory.StockMovement{}).
		Where("product_id = ?", productID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var movements []*inventory.StockMovement
	if err := query.
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&movements).Error; err != nil {
		return nil, 0, err
	}

	return movements, total, nil
}

// FindByReference returns the movements recorded for one document
func (r *GormMovementRepository) FindByReference(ctx context.Context, referenceID uuid.UUID) ([]*inventory.StockMovement, error) {
	var movements []*inventory.StockMovement
	if err := r.db.WithContext(ctx).
		Where("reference_id = ?", referenceID).
		Order("created_at").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}
