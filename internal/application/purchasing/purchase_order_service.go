package purchasing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/partner"
	"github.com/retailpos/backend/internal/domain/purchasing"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/domain/shared/valueobject"
	"github.com/retailpos/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
)

// PurchaseOrderService handles purchase order business operations
type PurchaseOrderService struct {
	orderRepo   purchasing.Repository
	productRepo catalog.Repository
	vendorRepo  partner.Repository
	txScope     TransactionScope
	metrics     *telemetry.BusinessMetrics
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(orderRepo purchasing.Repository, productRepo catalog.Repository, vendorRepo partner.Repository, txScope TransactionScope) *PurchaseOrderService {
	return &PurchaseOrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		vendorRepo:  vendorRepo,
		txScope:     txScope,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *PurchaseOrderService) SetBusinessMetrics(m *telemetry.BusinessMetrics) {
	s.metrics = m
}

// Create creates a new purchase order in DRAFT status.
// The PO number is allocated and the order saved in one transaction.
func (s *PurchaseOrderService) Create(ctx context.Context, req CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	// Guarded here as well as in request binding so callers that bypass
	// the HTTP layer cannot persist an empty order.
	if len(req.Items) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Purchase order must have at least one item")
	}

	vendor, err := s.vendorRepo.FindByID(ctx, req.VendorID)
	if err != nil {
		return nil, err
	}
	if !vendor.IsActive {
		return nil, shared.NewDomainError("VENDOR_INACTIVE", "Cannot create orders for an inactive vendor")
	}

	products, err := s.loadProducts(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	var order *purchasing.PurchaseOrder
	err = s.txScope.Execute(ctx, func(ctx context.Context, repos TransactionalRepositories) error {
		poNumber, err := repos.Orders.NextPONumber(ctx, time.Now())
		if err != nil {
			return err
		}

		order, err = purchasing.NewPurchaseOrder(poNumber, vendor.ID, vendor.Name, purchasing.OrderType(req.OrderType))
		if err != nil {
			return err
		}

		if err := addItems(order, req.Items, products); err != nil {
			return err
		}
		if err := applyOverrides(order, req.ShippingCost, req.OtherCharges, req.DiscountAmount); err != nil {
			return err
		}
		if req.ExpectedDeliveryDate != nil {
			if err := order.SetExpectedDeliveryDate(req.ExpectedDeliveryDate); err != nil {
				return err
			}
		}
		if req.Notes != "" {
			order.SetNotes(req.Notes)
		}
		if req.CreatedBy != nil {
			order.SetCreatedBy(*req.CreatedBy)
		}

		return repos.Orders.Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordOrderCreated(ctx, order.TotalAmount)
	}

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// Update updates a draft purchase order. When req.Items is present the
// whole line set is replaced; charge overrides and notes apply field-wise.
func (s *PurchaseOrderService) Update(ctx context.Context, orderID uuid.UUID, req UpdatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	expectedVersion := order.Version

	if req.Items != nil {
		products, err := s.loadProducts(ctx, req.Items)
		if err != nil {
			return nil, err
		}
		items, err := buildItems(order.ID, req.Items, products)
		if err != nil {
			return nil, err
		}
		if err := order.ReplaceItems(items); err != nil {
			return nil, err
		}
	}

	if req.ShippingCost != nil || req.OtherCharges != nil || req.DiscountAmount != nil {
		shipping := order.ShippingCost
		other := order.OtherCharges
		discount := order.DiscountAmount
		if req.ShippingCost != nil {
			shipping = *req.ShippingCost
		}
		if req.OtherCharges != nil {
			other = *req.OtherCharges
		}
		if req.DiscountAmount != nil {
			discount = *req.DiscountAmount
		}
		if err := order.SetOverrides(
			valueobject.NewMoneyUSD(shipping),
			valueobject.NewMoneyUSD(other),
			valueobject.NewMoneyUSD(discount),
		); err != nil {
			return nil, err
		}
	}

	if req.ExpectedDeliveryDate != nil {
		if err := order.SetExpectedDeliveryDate(req.ExpectedDeliveryDate); err != nil {
			return nil, err
		}
	}
	if req.Notes != nil {
		if !order.CanModify() {
			return nil, shared.NewDomainError("INVALID_STATE", "Cannot update a non-draft order")
		}
		order.SetNotes(*req.Notes)
	}

	if order.Version == expectedVersion {
		// Nothing changed.
		response := ToPurchaseOrderResponse(order)
		return &response, nil
	}

	if err := s.orderRepo.SaveWithLock(ctx, order, expectedVersion); err != nil {
		return nil, err
	}

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// Submit transitions a draft order to SUBMITTED
func (s *PurchaseOrderService) Submit(ctx context.Context, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.transition(ctx, orderID, func(order *purchasing.PurchaseOrder) error {
		return order.Submit()
	})
}

// Approve transitions a submitted order to APPROVED
func (s *PurchaseOrderService) Approve(ctx context.Context, orderID uuid.UUID, req ApprovePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	return s.transition(ctx, orderID, func(order *purchasing.PurchaseOrder) error {
		return order.Approve(req.ApproverID)
	})
}

// Cancel cancels an order that has not started receiving
func (s *PurchaseOrderService) Cancel(ctx context.Context, orderID uuid.UUID, req CancelPurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	return s.transition(ctx, orderID, func(order *purchasing.PurchaseOrder) error {
		return order.Cancel(req.Reason)
	})
}

// Close transitions a fully received order to CLOSED
func (s *PurchaseOrderService) Close(ctx context.Context, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.transition(ctx, orderID, func(order *purchasing.PurchaseOrder) error {
		return order.Close()
	})
}

// Delete removes a draft order entirely
func (s *PurchaseOrderService) Delete(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if !order.IsDraft() {
		return shared.NewDomainError("INVALID_STATE", "Only draft orders can be deleted")
	}
	return s.orderRepo.Delete(ctx, orderID)
}

// GetByID retrieves a purchase order by ID
func (s *PurchaseOrderService) GetByID(ctx context.Context, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// GetByNumber retrieves a purchase order by its PO number
func (s *PurchaseOrderService) GetByNumber(ctx context.Context, poNumber string) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByNumber(ctx, poNumber)
	if err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// List returns a page of purchase orders matching the filter
func (s *PurchaseOrderService) List(ctx context.Context, filter ListFilter) (*PurchaseOrderListResponse, error) {
	repoFilter := shared.NewFilter()
	if filter.Page > 0 {
		repoFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		repoFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		repoFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		repoFilter.OrderDir = filter.OrderDir
	}
	repoFilter.Search = filter.Search
	if filter.VendorID != nil {
		repoFilter.Filters["vendor_id"] = *filter.VendorID
	}
	if filter.Status != "" {
		status := purchasing.Status(filter.Status)
		if !status.IsValid() {
			return nil, shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown status %q", filter.Status))
		}
		repoFilter.Filters["status"] = status
	}
	if filter.DateFrom != nil {
		repoFilter.Filters["date_from"] = *filter.DateFrom
	}
	if filter.DateTo != nil {
		repoFilter.Filters["date_to"] = *filter.DateTo
	}

	orders, total, err := s.orderRepo.FindAll(ctx, repoFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]PurchaseOrderResponse, 0, len(orders))
	for _, order := range orders {
		responses = append(responses, ToPurchaseOrderResponse(order))
	}

	return &PurchaseOrderListResponse{
		Orders:   responses,
		Total:    total,
		Page:     repoFilter.Page,
		PageSize: repoFilter.PageSize,
	}, nil
}

// StatusSummary returns order counts grouped by status
func (s *PurchaseOrderService) StatusSummary(ctx context.Context) (*StatusSummaryResponse, error) {
	counts, err := s.orderRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(counts))
	var total int64
	for status, count := range counts {
		out[string(status)] = count
		total += count
	}

	return &StatusSummaryResponse{Counts: out, Total: total}, nil
}

// transition loads an order, applies a state change and saves with
// optimistic locking.
func (s *PurchaseOrderService) transition(ctx context.Context, orderID uuid.UUID, mutate func(*purchasing.PurchaseOrder) error) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	expectedVersion := order.Version

	if err := mutate(order); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, order, expectedVersion); err != nil {
		return nil, err
	}

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// loadProducts resolves the products referenced by the inputs, requiring
// all of them to exist and be active.
func (s *PurchaseOrderService) loadProducts(ctx context.Context, inputs []OrderItemInput) (map[uuid.UUID]*catalog.Product, error) {
	ids := make([]uuid.UUID, 0, len(inputs))
	for _, in := range inputs {
		ids = append(ids, in.ProductID)
	}

	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for _, in := range inputs {
		product, ok := byID[in.ProductID]
		if !ok {
			return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", fmt.Sprintf("Product %s not found", in.ProductID))
		}
		if !product.IsActive {
			return nil, shared.NewDomainError("PRODUCT_INACTIVE", fmt.Sprintf("Product %s is inactive", product.SKU))
		}
	}

	return byID, nil
}

func addItems(order *purchasing.PurchaseOrder, inputs []OrderItemInput, products map[uuid.UUID]*catalog.Product) error {
	for _, in := range inputs {
		product := products[in.ProductID]
		tax := decimal.Zero
		if in.TaxAmount != nil {
			tax = *in.TaxAmount
		}
		item, err := order.AddItem(product.ID, product.SKU, product.Name, in.Quantity,
			valueobject.NewMoneyUSD(in.UnitCost), valueobject.NewMoneyUSD(tax))
		if err != nil {
			return err
		}
		if in.Notes != "" {
			item.Notes = in.Notes
		}
	}
	return nil
}

func buildItems(orderID uuid.UUID, inputs []OrderItemInput, products map[uuid.UUID]*catalog.Product) ([]purchasing.PurchaseOrderItem, error) {
	items := make([]purchasing.PurchaseOrderItem, 0, len(inputs))
	for _, in := range inputs {
		product := products[in.ProductID]
		tax := decimal.Zero
		if in.TaxAmount != nil {
			tax = *in.TaxAmount
		}
		item, err := purchasing.NewPurchaseOrderItem(orderID, product.ID, product.SKU, product.Name, in.Quantity,
			valueobject.NewMoneyUSD(in.UnitCost), valueobject.NewMoneyUSD(tax))
		if err != nil {
			return nil, err
		}
		item.Notes = in.Notes
		items = append(items, *item)
	}
	return items, nil
}

func applyOverrides(order *purchasing.PurchaseOrder, shipping, other, discount *decimal.Decimal) error {
	if shipping == nil && other == nil && discount == nil {
		return nil
	}
	s := decimal.Zero
	o := decimal.Zero
	d := decimal.Zero
	if shipping != nil {
		s = *shipping
	}
	if other != nil {
		o = *other
	}
	if discount != nil {
		d = *discount
	}
	return order.SetOverrides(valueobject.NewMoneyUSD(s), valueobject.NewMoneyUSD(o), valueobject.NewMoneyUSD(d))
}
