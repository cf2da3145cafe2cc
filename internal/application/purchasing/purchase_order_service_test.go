package purchasing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/partner"
	"github.com/retailpos/backend/internal/domain/purchasing"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type serviceFixture struct {
	orders   *MockOrderRepository
	products *MockProductRepository
	vendors  *MockVendorRepository
	service  *PurchaseOrderService
}

func newServiceFixture() *serviceFixture {
	orders := new(MockOrderRepository)
	products := new(MockProductRepository)
	vendors := new(MockVendorRepository)
	scope := &NoOpTransactionScope{Repos: TransactionalRepositories{
		Orders:   orders,
		Products: products,
	}}
	return &serviceFixture{
		orders:   orders,
		products: products,
		vendors:  vendors,
		service:  NewPurchaseOrderService(orders, products, vendors, scope),
	}
}

func activeVendor(name string) *partner.Vendor {
	v, _ := partner.NewVendor(name)
	return v
}

func activeProduct(sku string, vendorID uuid.UUID) *catalog.Product {
	p, _ := catalog.NewProduct(sku, "Product "+sku, &vendorID)
	return p
}

func draftOrder(t *testing.T) *purchasing.PurchaseOrder {
	t.Helper()
	order, err := purchasing.NewPurchaseOrder("PO-20260115-0001", uuid.New(), "Acme Supplies", purchasing.OrderTypeStandard)
	require.NoError(t, err)
	return order
}

func draftOrderWithItem(t *testing.T) *purchasing.PurchaseOrder {
	t.Helper()
	order := draftOrder(t)
	_, err := order.AddItem(uuid.New(), "WID-1", "Widget", 10, mustMoney(t, "2.50"), mustMoney(t, "0"))
	require.NoError(t, err)
	return order
}

func TestPurchaseOrderService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates draft order with snapshotted lines", func(t *testing.T) {
		f := newServiceFixture()
		vendor := activeVendor("Acme Supplies")
		product := activeProduct("WID-1", vendor.ID)

		f.vendors.On("FindByID", ctx, vendor.ID).Return(vendor, nil)
		f.products.On("FindByIDs", ctx, []uuid.UUID{product.ID}).Return([]*catalog.Product{product}, nil)
		f.orders.On("NextPONumber", ctx, mock.Anything).Return("PO-20260115-0007", nil)
		f.orders.On("Save", ctx, mock.AnythingOfType("*purchasing.PurchaseOrder")).Return(nil)

		resp, err := f.service.Create(ctx, CreatePurchaseOrderRequest{
			VendorID: vendor.ID,
			Items: []OrderItemInput{
				{ProductID: product.ID, Quantity: 10, UnitCost: decimal.RequireFromString("2.50")},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "PO-20260115-0007", resp.PONumber)
		assert.Equal(t, string(purchasing.StatusDraft), resp.Status)
		require.Len(t, resp.Items, 1)
		assert.Equal(t, "WID-1", resp.Items[0].SKU)
		assert.Equal(t, "Product WID-1", resp.Items[0].ProductName)
		assert.Equal(t, "25", resp.TotalAmount.String())
		f.orders.AssertExpectations(t)
	})

	t.Run("rejects order without items", func(t *testing.T) {
		f := newServiceFixture()

		_, err := f.service.Create(ctx, CreatePurchaseOrderRequest{
			VendorID: uuid.New(),
		})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NO_ITEMS", domainErr.Code)
		f.vendors.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
		f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects inactive vendor", func(t *testing.T) {
		f := newServiceFixture()
		vendor := activeVendor("Acme Supplies")
		vendor.Deactivate()
		f.vendors.On("FindByID", ctx, vendor.ID).Return(vendor, nil)

		_, err := f.service.Create(ctx, CreatePurchaseOrderRequest{
			VendorID: vendor.ID,
			Items:    []OrderItemInput{{ProductID: uuid.New(), Quantity: 1, UnitCost: decimal.Zero}},
		})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "VENDOR_INACTIVE", domainErr.Code)
		f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects unknown product", func(t *testing.T) {
		f := newServiceFixture()
		vendor := activeVendor("Acme Supplies")
		missing := uuid.New()

		f.vendors.On("FindByID", ctx, vendor.ID).Return(vendor, nil)
		f.products.On("FindByIDs", ctx, []uuid.UUID{missing}).Return([]*catalog.Product{}, nil)

		_, err := f.service.Create(ctx, CreatePurchaseOrderRequest{
			VendorID: vendor.ID,
			Items:    []OrderItemInput{{ProductID: missing, Quantity: 1, UnitCost: decimal.Zero}},
		})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "PRODUCT_NOT_FOUND", domainErr.Code)
	})

	t.Run("rejects inactive product", func(t *testing.T) {
		f := newServiceFixture()
		vendor := activeVendor("Acme Supplies")
		product := activeProduct("WID-1", vendor.ID)
		product.Deactivate()

		f.vendors.On("FindByID", ctx, vendor.ID).Return(vendor, nil)
		f.products.On("FindByIDs", ctx, []uuid.UUID{product.ID}).Return([]*catalog.Product{product}, nil)

		_, err := f.service.Create(ctx, CreatePurchaseOrderRequest{
			VendorID: vendor.ID,
			Items:    []OrderItemInput{{ProductID: product.ID, Quantity: 1, UnitCost: decimal.Zero}},
		})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "PRODUCT_INACTIVE", domainErr.Code)
	})
}

func TestPurchaseOrderService_Transitions(t *testing.T) {
	ctx := context.Background()

	t.Run("submit saves with expected version", func(t *testing.T) {
		f := newServiceFixture()
		order := draftOrderWithItem(t)
		loadedVersion := order.Version

		f.orders.On("FindByID", ctx, order.ID).Return(order, nil)
		f.orders.On("SaveWithLock", ctx, order, loadedVersion).Return(nil)

		resp, err := f.service.Submit(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, string(purchasing.StatusSubmitted), resp.Status)
		f.orders.AssertExpectations(t)
	})

	t.Run("submit propagates domain error without saving", func(t *testing.T) {
		f := newServiceFixture()
		order := draftOrder(t) // no items

		f.orders.On("FindByID", ctx, order.ID).Return(order, nil)

		_, err := f.service.Submit(ctx, order.ID)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NO_ITEMS", domainErr.Code)
		f.orders.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("concurrent modification surfaces conflict", func(t *testing.T) {
		f := newServiceFixture()
		order := draftOrderWithItem(t)

		f.orders.On("FindByID", ctx, order.ID).Return(order, nil)
		f.orders.On("SaveWithLock", ctx, order, mock.Anything).Return(shared.ErrConcurrencyConflict)

		_, err := f.service.Submit(ctx, order.ID)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CONCURRENCY_CONFLICT", domainErr.Code)
	})

	t.Run("approve records approver", func(t *testing.T) {
		f := newServiceFixture()
		order := draftOrderWithItem(t)
		require.NoError(t, order.Submit())
		approver := uuid.New()

		f.orders.On("FindByID", ctx, order.ID).Return(order, nil)
		f.orders.On("SaveWithLock", ctx, order, mock.Anything).Return(nil)

		resp, err := f.service.Approve(ctx, order.ID, ApprovePurchaseOrderRequest{ApproverID: approver})
		require.NoError(t, err)
		assert.Equal(t, string(purchasing.StatusApproved), resp.Status)
		require.NotNil(t, resp.ApprovedBy)
		assert.Equal(t, approver, *resp.ApprovedBy)
	})

	t.Run("cancel requires reason via domain", func(t *testing.T) {
		f := newServiceFixture()
		order := draftOrderWithItem(t)

		f.orders.On("FindByID", ctx, order.ID).Return(order, nil)

		_, err := f.service.Cancel(ctx, order.ID, CancelPurchaseOrderRequest{Reason: ""})
		assert.Error(t, err)
	})
}

func TestPurchaseOrderService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes draft order", func(t *testing.T) {
		f := newServiceFixture()
		order := draftOrderWithItem(t)

		f.orders.On("FindByID", ctx, order.ID).Return(order, nil)
		f.orders.On("Delete", ctx, order.ID).Return(nil)

		require.NoError(t, f.service.Delete(ctx, order.ID))
		f.orders.AssertExpectations(t)
	})

	t.Run("rejects deleting submitted order", func(t *testing.T) {
		f := newServiceFixture()
		order := draftOrderWithItem(t)
		require.NoError(t, order.Submit())

		f.orders.On("FindByID", ctx, order.ID).Return(order, nil)

		err := f.service.Delete(ctx, order.ID)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
		f.orders.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestPurchaseOrderService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("maps filters and pagination", func(t *testing.T) {
		f := newServiceFixture()
		vendorID := uuid.New()

		f.orders.On("FindAll", ctx, mock.MatchedBy(func(filter shared.Filter) bool {
			return filter.Page == 2 &&
				filter.PageSize == 10 &&
				filter.Filters["vendor_id"] == vendorID &&
				filter.Filters["status"] == purchasing.StatusApproved
		})).Return([]*purchasing.PurchaseOrder{draftOrderWithItem(t)}, int64(13), nil)

		resp, err := f.service.List(ctx, ListFilter{
			VendorID: &vendorID,
			Status:   "APPROVED",
			Page:     2,
			PageSize: 10,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(13), resp.Total)
		assert.Equal(t, 2, resp.Page)
		assert.Len(t, resp.Orders, 1)
	})

	t.Run("rejects unknown status filter", func(t *testing.T) {
		f := newServiceFixture()
		_, err := f.service.List(ctx, ListFilter{Status: "SHIPPED"})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATUS", domainErr.Code)
	})
}

func TestPurchaseOrderService_StatusSummary(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()

	f.orders.On("CountByStatus", ctx).Return(map[purchasing.Status]int64{
		purchasing.StatusDraft:    3,
		purchasing.StatusApproved: 2,
		purchasing.StatusClosed:   7,
	}, nil)

	resp, err := f.service.StatusSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(12), resp.Total)
	assert.Equal(t, int64(3), resp.Counts["DRAFT"])
	assert.Equal(t, int64(7), resp.Counts["CLOSED"])
}
