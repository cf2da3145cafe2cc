package purchasing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(t *testing.T) *PurchaseOrder {
	t.Helper()
	order, err := NewPurchaseOrder("PO-20260115-0001", uuid.New(), "Acme Supplies", OrderTypeStandard)
	require.NoError(t, err)
	return order
}

func addTestItem(t *testing.T, order *PurchaseOrder, sku string, qty int64, unitCost string) *PurchaseOrderItem {
	t.Helper()
	cost, err := valueobject.NewMoneyUSDFromString(unitCost)
	require.NoError(t, err)
	item, err := order.AddItem(uuid.New(), sku, "Product "+sku, qty, cost, valueobject.ZeroUSD())
	require.NoError(t, err)
	return item
}

func TestNewPurchaseOrder(t *testing.T) {
	t.Run("creates order in draft status", func(t *testing.T) {
		order := newTestOrder(t)
		assert.Equal(t, StatusDraft, order.Status)
		assert.Equal(t, 1, order.Version)
		assert.Empty(t, order.Items)
		assert.True(t, order.TotalAmount.IsZero())
	})

	t.Run("defaults order type to standard", func(t *testing.T) {
		order, err := NewPurchaseOrder("PO-20260115-0002", uuid.New(), "Acme Supplies", "")
		require.NoError(t, err)
		assert.Equal(t, OrderTypeStandard, order.OrderType)
	})

	t.Run("rejects empty vendor", func(t *testing.T) {
		_, err := NewPurchaseOrder("PO-20260115-0003", uuid.Nil, "Acme Supplies", OrderTypeStandard)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_VENDOR", domainErr.Code)
	})

	t.Run("rejects unknown order type", func(t *testing.T) {
		_, err := NewPurchaseOrder("PO-20260115-0004", uuid.New(), "Acme Supplies", "EXPRESS")
		assert.Error(t, err)
	})
}

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusDraft, StatusSubmitted, true},
		{StatusDraft, StatusCancelled, true},
		{StatusDraft, StatusApproved, false},
		{StatusSubmitted, StatusApproved, true},
		{StatusSubmitted, StatusCancelled, true},
		{StatusSubmitted, StatusReceived, false},
		{StatusApproved, StatusPartiallyReceived, true},
		{StatusApproved, StatusReceived, true},
		{StatusApproved, StatusCancelled, true},
		{StatusPartiallyReceived, StatusReceived, true},
		{StatusPartiallyReceived, StatusCancelled, false},
		{StatusReceived, StatusClosed, true},
		{StatusReceived, StatusCancelled, false},
		{StatusClosed, StatusDraft, false},
		{StatusCancelled, StatusSubmitted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestPurchaseOrder_AddItem(t *testing.T) {
	t.Run("adds item and recalculates totals", func(t *testing.T) {
		order := newTestOrder(t)
		addTestItem(t, order, "WID-1", 10, "2.50")

		assert.Len(t, order.Items, 1)
		assert.Equal(t, "25.00", order.Subtotal.StringFixed(2))
		assert.Equal(t, "25.00", order.TotalAmount.StringFixed(2))
	})

	t.Run("rejects duplicate product", func(t *testing.T) {
		order := newTestOrder(t)
		productID := uuid.New()
		cost := valueobject.NewMoneyUSD(decimal.NewFromInt(1))

		_, err := order.AddItem(productID, "WID-1", "Widget", 5, cost, valueobject.ZeroUSD())
		require.NoError(t, err)

		_, err = order.AddItem(productID, "WID-1", "Widget", 3, cost, valueobject.ZeroUSD())
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "DUPLICATE_PRODUCT", domainErr.Code)
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		order := newTestOrder(t)
		_, err := order.AddItem(uuid.New(), "WID-1", "Widget", 0, valueobject.ZeroUSD(), valueobject.ZeroUSD())
		assert.Error(t, err)
	})

	t.Run("rejects add after submit", func(t *testing.T) {
		order := newTestOrder(t)
		addTestItem(t, order, "WID-1", 10, "2.50")
		require.NoError(t, order.Submit())

		_, err := order.AddItem(uuid.New(), "WID-2", "Widget 2", 5, valueobject.ZeroUSD(), valueobject.ZeroUSD())
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})
}

func TestPurchaseOrder_Lifecycle(t *testing.T) {
	t.Run("submit requires items", func(t *testing.T) {
		order := newTestOrder(t)
		err := order.Submit()
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NO_ITEMS", domainErr.Code)
	})

	t.Run("draft to closed happy path", func(t *testing.T) {
		order := newTestOrder(t)
		item := addTestItem(t, order, "WID-1", 10, "2.50")

		require.NoError(t, order.Submit())
		assert.Equal(t, StatusSubmitted, order.Status)
		assert.NotNil(t, order.SubmittedAt)

		approver := uuid.New()
		require.NoError(t, order.Approve(approver))
		assert.Equal(t, StatusApproved, order.Status)
		assert.Equal(t, approver, *order.ApprovedBy)

		_, err := order.Receive([]ReceiveLine{{ItemID: item.ID, QuantityDelta: 10}})
		require.NoError(t, err)
		assert.Equal(t, StatusReceived, order.Status)

		require.NoError(t, order.Close())
		assert.Equal(t, StatusClosed, order.Status)
		assert.NotNil(t, order.ClosedAt)
	})

	t.Run("approve rejected from draft", func(t *testing.T) {
		order := newTestOrder(t)
		addTestItem(t, order, "WID-1", 10, "2.50")
		err := order.Approve(uuid.New())
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})

	t.Run("close rejected before fully received", func(t *testing.T) {
		order := newTestOrder(t)
		item := addTestItem(t, order, "WID-1", 10, "2.50")
		require.NoError(t, order.Submit())
		require.NoError(t, order.Approve(uuid.New()))

		_, err := order.Receive([]ReceiveLine{{ItemID: item.ID, QuantityDelta: 4}})
		require.NoError(t, err)
		assert.Equal(t, StatusPartiallyReceived, order.Status)

		err = order.Close()
		assert.Error(t, err)
	})
}

func TestPurchaseOrder_Cancel(t *testing.T) {
	t.Run("cancel from draft submitted and approved", func(t *testing.T) {
		for _, advance := range []int{0, 1, 2} {
			order := newTestOrder(t)
			addTestItem(t, order, "WID-1", 10, "2.50")
			if advance >= 1 {
				require.NoError(t, order.Submit())
			}
			if advance >= 2 {
				require.NoError(t, order.Approve(uuid.New()))
			}

			require.NoError(t, order.Cancel("vendor discontinued line"))
			assert.Equal(t, StatusCancelled, order.Status)
			assert.NotNil(t, order.CancelledAt)
			assert.Equal(t, "vendor discontinued line", order.CancelReason)
		}
	})

	t.Run("cancel rejected once receiving started", func(t *testing.T) {
		order := newTestOrder(t)
		item := addTestItem(t, order, "WID-1", 10, "2.50")
		require.NoError(t, order.Submit())
		require.NoError(t, order.Approve(uuid.New()))
		_, err := order.Receive([]ReceiveLine{{ItemID: item.ID, QuantityDelta: 1}})
		require.NoError(t, err)

		err = order.Cancel("changed our mind")
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})

	t.Run("cancel requires reason", func(t *testing.T) {
		order := newTestOrder(t)
		err := order.Cancel("")
		assert.Error(t, err)
	})
}

func TestPurchaseOrder_Receive(t *testing.T) {
	setup := func(t *testing.T) (*PurchaseOrder, *PurchaseOrderItem, *PurchaseOrderItem) {
		order := newTestOrder(t)
		a := addTestItem(t, order, "WID-A", 10, "2.00")
		b := addTestItem(t, order, "WID-B", 5, "3.00")
		require.NoError(t, order.Submit())
		require.NoError(t, order.Approve(uuid.New()))
		return order, order.GetItem(a.ID), order.GetItem(b.ID)
	}

	t.Run("partial receipt moves to partially received", func(t *testing.T) {
		order, a, _ := setup(t)

		received, err := order.Receive([]ReceiveLine{{ItemID: a.ID, QuantityDelta: 4}})
		require.NoError(t, err)
		require.Len(t, received, 1)
		assert.Equal(t, a.ProductID, received[0].ProductID)
		assert.Equal(t, int64(4), received[0].QuantityDelta)
		assert.Equal(t, StatusPartiallyReceived, order.Status)
		assert.Equal(t, int64(6), a.QuantityPending())
		assert.Nil(t, order.DeliveryDate)
	})

	t.Run("full receipt stamps delivery date once", func(t *testing.T) {
		order, a, b := setup(t)

		_, err := order.Receive([]ReceiveLine{
			{ItemID: a.ID, QuantityDelta: 10},
			{ItemID: b.ID, QuantityDelta: 5},
		})
		require.NoError(t, err)
		assert.Equal(t, StatusReceived, order.Status)
		require.NotNil(t, order.DeliveryDate)
	})

	t.Run("over-receipt rejects whole batch", func(t *testing.T) {
		order, a, b := setup(t)

		_, err := order.Receive([]ReceiveLine{
			{ItemID: a.ID, QuantityDelta: 3},
			{ItemID: b.ID, QuantityDelta: 6}, // only 5 ordered
		})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "QUANTITY_EXCEEDED", domainErr.Code)

		// Nothing applied, including the valid first line.
		assert.Equal(t, int64(0), a.QuantityReceived)
		assert.Equal(t, int64(0), b.QuantityReceived)
		assert.Equal(t, StatusApproved, order.Status)
	})

	t.Run("duplicate item lines accumulate against the cap", func(t *testing.T) {
		order, a, _ := setup(t)

		_, err := order.Receive([]ReceiveLine{
			{ItemID: a.ID, QuantityDelta: 6},
			{ItemID: a.ID, QuantityDelta: 6},
		})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "QUANTITY_EXCEEDED", domainErr.Code)
		assert.Equal(t, int64(0), a.QuantityReceived)
	})

	t.Run("unknown item rejects whole batch", func(t *testing.T) {
		order, a, _ := setup(t)

		_, err := order.Receive([]ReceiveLine{
			{ItemID: a.ID, QuantityDelta: 2},
			{ItemID: uuid.New(), QuantityDelta: 1},
		})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ITEM_NOT_FOUND", domainErr.Code)
		assert.Equal(t, int64(0), a.QuantityReceived)
	})

	t.Run("zero delta rejected", func(t *testing.T) {
		order, a, _ := setup(t)
		_, err := order.Receive([]ReceiveLine{{ItemID: a.ID, QuantityDelta: 0}})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_QUANTITY", domainErr.Code)
	})

	t.Run("receive rejected in draft", func(t *testing.T) {
		order := newTestOrder(t)
		item := addTestItem(t, order, "WID-1", 10, "2.50")
		_, err := order.Receive([]ReceiveLine{{ItemID: item.ID, QuantityDelta: 1}})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})

	t.Run("second receipt finishes the order", func(t *testing.T) {
		order, a, b := setup(t)

		_, err := order.Receive([]ReceiveLine{{ItemID: a.ID, QuantityDelta: 10}})
		require.NoError(t, err)
		assert.Equal(t, StatusPartiallyReceived, order.Status)

		_, err = order.Receive([]ReceiveLine{{ItemID: b.ID, QuantityDelta: 5}})
		require.NoError(t, err)
		assert.Equal(t, StatusReceived, order.Status)
		assert.Equal(t, int64(0), order.TotalPendingQuantity())
	})
}

func TestPurchaseOrder_SetOverrides(t *testing.T) {
	t.Run("applies charges into total", func(t *testing.T) {
		order := newTestOrder(t)
		addTestItem(t, order, "WID-1", 10, "2.00") // subtotal 20.00

		shipping := valueobject.NewMoneyUSD(decimal.NewFromFloat(5.00))
		other := valueobject.NewMoneyUSD(decimal.NewFromFloat(1.50))
		discount := valueobject.NewMoneyUSD(decimal.NewFromFloat(2.00))
		require.NoError(t, order.SetOverrides(shipping, other, discount))

		assert.Equal(t, "24.50", order.TotalAmount.StringFixed(2))
	})

	t.Run("rejects discount driving total negative", func(t *testing.T) {
		order := newTestOrder(t)
		addTestItem(t, order, "WID-1", 1, "2.00")

		discount := valueobject.NewMoneyUSD(decimal.NewFromInt(10))
		err := order.SetOverrides(valueobject.ZeroUSD(), valueobject.ZeroUSD(), discount)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CHARGE", domainErr.Code)
	})

	t.Run("rejects negative charge", func(t *testing.T) {
		order := newTestOrder(t)
		addTestItem(t, order, "WID-1", 1, "2.00")

		neg := valueobject.NewMoneyUSD(decimal.NewFromInt(-1))
		err := order.SetOverrides(neg, valueobject.ZeroUSD(), valueobject.ZeroUSD())
		assert.Error(t, err)
	})
}

func TestPurchaseOrder_ReplaceItems(t *testing.T) {
	t.Run("replaces item set and recomputes totals", func(t *testing.T) {
		order := newTestOrder(t)
		addTestItem(t, order, "WID-1", 10, "2.00")

		replacement, err := NewPurchaseOrderItem(order.ID, uuid.New(), "WID-2", "Widget 2", 4,
			valueobject.NewMoneyUSD(decimal.NewFromFloat(3.25)), valueobject.ZeroUSD())
		require.NoError(t, err)

		require.NoError(t, order.ReplaceItems([]PurchaseOrderItem{*replacement}))
		assert.Len(t, order.Items, 1)
		assert.Equal(t, "13.00", order.TotalAmount.StringFixed(2))
	})

	t.Run("rejects empty replacement", func(t *testing.T) {
		order := newTestOrder(t)
		err := order.ReplaceItems(nil)
		assert.Error(t, err)
	})
}

func TestFormatPONumber(t *testing.T) {
	date := mustParseDate(t, "2026-01-15")
	assert.Equal(t, "PO-20260115-0001", FormatPONumber(date, 1))
	assert.Equal(t, "PO-20260115-0042", FormatPONumber(date, 42))
	assert.Equal(t, "PO-20260115-12345", FormatPONumber(date, 12345))
}
