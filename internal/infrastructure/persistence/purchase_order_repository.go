package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/purchasing"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PONumberSequence is the per-day counter row backing PO number allocation
type PONumberSequence struct {
	SeqDate   time.Time `gorm:"type:date;primary_key;column:seq_date"`
	LastValue int64     `gorm:"not null;column:last_value"`
}

// TableName returns the table name for GORM
func (PONumberSequence) TableName() string {
	return "purchase_order_sequences"
}

// GormPurchaseOrderRepository implements purchasing.Repository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// FindByID finds a purchase order by its ID, items included
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*purchasing.PurchaseOrder, error) {
	var order purchasing.PurchaseOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByNumber finds a purchase order by its PO number
func (r *GormPurchaseOrderRepository) FindByNumber(ctx context.Context, poNumber string) (*purchasing.PurchaseOrder, error) {
	var order purchasing.PurchaseOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "po_number = ?", poNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindAll returns a page of purchase orders matching the filter plus the total count
func (r *GormPurchaseOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*purchasing.PurchaseOrder, int64, error) {
	query := r.db.WithContext(ctx).Model(&purchasing.PurchaseOrder{})
	query = applyOrderFilters(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, PurchaseOrderSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var orders []*purchasing.PurchaseOrder
	if err := query.
		Preload("Items").
		Order(fmt.Sprintf("%s %s", orderBy, orderDir)).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func applyOrderFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("po_number ILIKE ? OR vendor_name ILIKE ?", pattern, pattern)
	}
	if vendorID, ok := filter.Filters["vendor_id"]; ok {
		query = query.Where("vendor_id = ?", vendorID)
	}
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if from, ok := filter.Filters["date_from"]; ok {
		query = query.Where("order_date >= ?", from)
	}
	if to, ok := filter.Filters["date_to"]; ok {
		query = query.Where("order_date < ?", to.(time.Time).AddDate(0, 0, 1))
	}
	return query
}

// Save creates or updates a purchase order and synchronizes its items
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, order *purchasing.PurchaseOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(order).Error; err != nil {
			return err
		}
		return syncItems(tx, order)
	})
}

// SaveWithLock saves the order only if the stored version still matches
// expectedVersion. The aggregate has already incremented its in-memory
// version; a zero-row update means someone else got there first.
func (r *GormPurchaseOrderRepository) SaveWithLock(ctx context.Context, order *purchasing.PurchaseOrder, expectedVersion int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&purchasing.PurchaseOrder{}).
			Where("id = ? AND version = ?", order.ID, expectedVersion).
			Updates(map[string]interface{}{
				"vendor_id":              order.VendorID,
				"vendor_name":            order.VendorName,
				"order_type":             order.OrderType,
				"status":                 order.Status,
				"expected_delivery_date": order.ExpectedDeliveryDate,
				"delivery_date":          order.DeliveryDate,
				"subtotal":               order.Subtotal,
				"tax_amount":             order.TaxAmount,
				"shipping_cost":          order.ShippingCost,
				"other_charges":          order.OtherCharges,
				"discount_amount":        order.DiscountAmount,
				"total_amount":           order.TotalAmount,
				"approved_by":            order.ApprovedBy,
				"approved_at":            order.ApprovedAt,
				"submitted_at":           order.SubmittedAt,
				"closed_at":              order.ClosedAt,
				"cancelled_at":           order.CancelledAt,
				"cancel_reason":          order.CancelReason,
				"notes":                  order.Notes,
				"version":                order.Version,
				"updated_at":             order.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		return syncItems(tx, order)
	})
}

// syncItems upserts the current item set and deletes rows no longer present
func syncItems(tx *gorm.DB, order *purchasing.PurchaseOrder) error {
	currentIDs := make([]uuid.UUID, len(order.Items))
	for i, item := range order.Items {
		currentIDs[i] = item.ID
	}

	del := tx.Where("order_id = ?", order.ID)
	if len(currentIDs) > 0 {
		del = del.Where("id NOT IN ?", currentIDs)
	}
	if err := del.Delete(&purchasing.PurchaseOrderItem{}).Error; err != nil {
		return err
	}

	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		if err := tx.Save(&order.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a purchase order and its items
func (r *GormPurchaseOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&purchasing.PurchaseOrderItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&purchasing.PurchaseOrder{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// CountByStatus returns order counts grouped by status
func (r *GormPurchaseOrderRepository) CountByStatus(ctx context.Context) (map[purchasing.Status]int64, error) {
	var rows []struct {
		Status purchasing.Status
		Count  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&purchasing.PurchaseOrder{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[purchasing.Status]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// NextPONumber allocates the next number in the per-day sequence.
// The upsert increments atomically, so concurrent callers each get a
// distinct value without explicit row locking.
func (r *GormPurchaseOrderRepository) NextPONumber(ctx context.Context, date time.Time) (string, error) {
	day := date.Format("2006-01-02")

	var next int64
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO purchase_order_sequences (seq_date, last_value)
		VALUES (?, 1)
		ON CONFLICT (seq_date)
		DO UPDATE SET last_value = purchase_order_sequences.last_value + 1
		RETURNING last_value`, day).Scan(&next).Error
	if err != nil {
		return "", fmt.Errorf("failed to allocate PO number: %w", err)
	}

	return purchasing.FormatPONumber(date, next), nil
}

// LastUnitCostByProduct returns the unit cost from the most recent order
// that actually purchased each product. Draft and cancelled orders do
// not count.
func (r *GormPurchaseOrderRepository) LastUnitCostByProduct(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	costs := make(map[uuid.UUID]decimal.Decimal, len(productIDs))
	if len(productIDs) == 0 {
		return costs, nil
	}

	var rows []struct {
		ProductID uuid.UUID
		UnitCost  decimal.Decimal
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT DISTINCT ON (i.product_id) i.product_id, i.unit_cost
		FROM purchase_order_items i
		JOIN purchase_orders o ON o.id = i.order_id
		WHERE i.product_id IN ?
		  AND o.status NOT IN (?, ?)
		ORDER BY i.product_id, o.order_date DESC, o.created_at DESC`,
		productIDs, purchasing.StatusDraft, purchasing.StatusCancelled).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		costs[row.ProductID] = row.UnitCost
	}
	return costs, nil
}
