package purchasing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// FormatPONumber renders a purchase order number for the given date and
// per-day sequence value, e.g. PO-20260115-0003.
func FormatPONumber(date time.Time, sequence int64) string {
	return fmt.Sprintf("PO-%s-%04d", date.Format("20060102"), sequence)
}

// Repository is the persistence port for purchase orders.
type Repository interface {
	// FindByID loads an order with its items
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)

	// FindByNumber loads an order by its PO number
	FindByNumber(ctx context.Context, poNumber string) (*PurchaseOrder, error)

	// FindAll returns a page of orders matching the filter plus the total count
	FindAll(ctx context.Context, filter shared.Filter) ([]*PurchaseOrder, int64, error)

	// Save persists an order and its items
	Save(ctx context.Context, order *PurchaseOrder) error

	// SaveWithLock persists an order only if the stored version matches
	// expectedVersion, returning ErrConcurrencyConflict otherwise
	SaveWithLock(ctx context.Context, order *PurchaseOrder, expectedVersion int) error

	// Delete removes an order and its items
	Delete(ctx context.Context, id uuid.UUID) error

	// CountByStatus returns order counts grouped by status
	CountByStatus(ctx context.Context) (map[Status]int64, error)

	// NextPONumber allocates the next number in the per-day sequence for
	// the given date. Allocation must be safe under concurrent callers.
	NextPONumber(ctx context.Context, date time.Time) (string, error)

	// LastUnitCostByProduct returns the most recent purchase unit cost for
	// each of the given products, omitting products never purchased
	LastUnitCostByProduct(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)
}
