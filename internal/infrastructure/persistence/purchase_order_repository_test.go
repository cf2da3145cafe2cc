package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/purchasing"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockOrderRepository creates a GormPurchaseOrderRepository with a
// mocked SQL connection
func newMockOrderRepository(t *testing.T) (*GormPurchaseOrderRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormPurchaseOrderRepository(gormDB), mock, mockDB
}

func TestGormPurchaseOrderRepository_FindByID(t *testing.T) {
	t.Run("finds existing order with items", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		orderID := uuid.New()
		itemID := uuid.New()

		orderRows := sqlmock.NewRows([]string{"id", "po_number", "vendor_id", "vendor_name", "order_type", "status", "version"}).
			AddRow(orderID, "PO-20260115-0001", uuid.New(), "Acme Supplies", "STANDARD", "DRAFT", 1)

		mock.ExpectQuery(`SELECT \* FROM "purchase_orders" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(orderID, 1).
			WillReturnRows(orderRows)

		itemRows := sqlmock.NewRows([]string{"id", "order_id", "product_id", "sku", "product_name", "quantity_ordered", "quantity_received"}).
			AddRow(itemID, orderID, uuid.New(), "WID-1", "Widget", 10, 0)

		mock.ExpectQuery(`SELECT \* FROM "purchase_order_items" WHERE "purchase_order_items"\."order_id" = \$1`).
			WithArgs(orderID).
			WillReturnRows(itemRows)

		order, err := repo.FindByID(context.Background(), orderID)

		require.NoError(t, err)
		assert.Equal(t, "PO-20260115-0001", order.PONumber)
		require.Len(t, order.Items, 1)
		assert.Equal(t, "WID-1", order.Items[0].SKU)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps missing order to not found", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		orderID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "purchase_orders" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(orderID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		_, err := repo.FindByID(context.Background(), orderID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormPurchaseOrderRepository_NextPONumber(t *testing.T) {
	t.Run("formats allocated sequence value", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		date, err := time.Parse("2006-01-02", "2026-01-15")
		require.NoError(t, err)

		mock.ExpectQuery(`INSERT INTO purchase_order_sequences .*ON CONFLICT.*RETURNING last_value`).
			WithArgs("2026-01-15").
			WillReturnRows(sqlmock.NewRows([]string{"last_value"}).AddRow(42))

		poNumber, err := repo.NextPONumber(context.Background(), date)
		require.NoError(t, err)
		assert.Equal(t, "PO-20260115-0042", poNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPurchaseOrderRepository_CountByStatus(t *testing.T) {
	repo, mock, mockDB := newMockOrderRepository(t)
	defer mockDB.Close()

	rows := sqlmock.NewRows([]string{"status", "count"}).
		AddRow("DRAFT", 3).
		AddRow("CLOSED", 7)

	mock.ExpectQuery(`SELECT status, count\(\*\) as count FROM "purchase_orders" GROUP BY .*`).
		WillReturnRows(rows)

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts[purchasing.StatusDraft])
	assert.Equal(t, int64(7), counts[purchasing.StatusClosed])
}

func TestGormPurchaseOrderRepository_LastUnitCostByProduct(t *testing.T) {
	t.Run("returns empty map for no products", func(t *testing.T) {
		repo, _, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		costs, err := repo.LastUnitCostByProduct(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, costs)
	})

	t.Run("maps product costs", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		productID := uuid.New()
		rows := sqlmock.NewRows([]string{"product_id", "unit_cost"}).
			AddRow(productID, "2.5000")

		mock.ExpectQuery(`SELECT DISTINCT ON \(i\.product_id\).*`).
			WillReturnRows(rows)

		costs, err := repo.LastUnitCostByProduct(context.Background(), []uuid.UUID{productID})
		require.NoError(t, err)
		require.Contains(t, costs, productID)
		assert.Equal(t, "2.50", costs[productID].StringFixed(2))
	})
}
