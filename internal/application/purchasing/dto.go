package purchasing

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/purchasing"
	"github.com/shopspring/decimal"
)

// ==================== Purchase Order DTOs ====================

// CreatePurchaseOrderRequest represents a request to create a purchase order
type CreatePurchaseOrderRequest struct {
	VendorID             uuid.UUID        `json:"vendor_id" binding:"required"`
	OrderType            string           `json:"order_type" binding:"omitempty,oneof=STANDARD URGENT DROP_SHIP"`
	ExpectedDeliveryDate *time.Time       `json:"expected_delivery_date"`
	Items                []OrderItemInput `json:"items" binding:"required,min=1,dive"`
	ShippingCost         *decimal.Decimal `json:"shipping_cost"`
	OtherCharges         *decimal.Decimal `json:"other_charges"`
	DiscountAmount       *decimal.Decimal `json:"discount_amount"`
	Notes                string           `json:"notes" binding:"max=2000"`
	CreatedBy            *uuid.UUID       `json:"-"`
}

// OrderItemInput represents one line in a create or update request.
// SKU and name are snapshotted from the catalog, not taken from the client.
type OrderItemInput struct {
	ProductID uuid.UUID        `json:"product_id" binding:"required"`
	Quantity  int64            `json:"quantity" binding:"required,gt=0"`
	UnitCost  decimal.Decimal  `json:"unit_cost" binding:"required"`
	TaxAmount *decimal.Decimal `json:"tax_amount"`
	Notes     string           `json:"notes" binding:"max=500"`
}

// UpdatePurchaseOrderRequest represents a request to update a draft order.
// A nil Items leaves the line set unchanged; otherwise it replaces it.
type UpdatePurchaseOrderRequest struct {
	ExpectedDeliveryDate *time.Time       `json:"expected_delivery_date"`
	Items                []OrderItemInput `json:"items" binding:"omitempty,min=1,dive"`
	ShippingCost         *decimal.Decimal `json:"shipping_cost"`
	OtherCharges         *decimal.Decimal `json:"other_charges"`
	DiscountAmount       *decimal.Decimal `json:"discount_amount"`
	Notes                *string          `json:"notes"`
}

// ApprovePurchaseOrderRequest carries the approver identity
type ApprovePurchaseOrderRequest struct {
	ApproverID uuid.UUID `json:"-"`
}

// CancelPurchaseOrderRequest represents a request to cancel a purchase order
type CancelPurchaseOrderRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// ReceiveLineInput represents a single receive line
type ReceiveLineInput struct {
	ItemID   uuid.UUID `json:"item_id" binding:"required"`
	Quantity int64     `json:"quantity" binding:"required,gt=0"`
	Notes    string    `json:"notes" binding:"max=500"`
}

// ReceiveGoodsRequest represents a receiving batch for a purchase order
type ReceiveGoodsRequest struct {
	Lines      []ReceiveLineInput `json:"lines" binding:"required,min=1,dive"`
	ReceivedBy *uuid.UUID         `json:"-"`
}

// ListFilter represents filter options for the purchase order list
type ListFilter struct {
	Search   string     `form:"search"`
	VendorID *uuid.UUID `form:"vendor_id"`
	Status   string     `form:"status"`
	DateFrom *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo   *time.Time `form:"date_to" time_format:"2006-01-02"`
	Page     int        `form:"page"`
	PageSize int        `form:"page_size"`
	OrderBy  string     `form:"order_by"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// OrderItemResponse represents a purchase order line in responses
type OrderItemResponse struct {
	ID               uuid.UUID       `json:"id"`
	ProductID        uuid.UUID       `json:"product_id"`
	SKU              string          `json:"sku"`
	ProductName      string          `json:"product_name"`
	QuantityOrdered  int64           `json:"quantity_ordered"`
	QuantityReceived int64           `json:"quantity_received"`
	QuantityPending  int64           `json:"quantity_pending"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	TaxAmount        decimal.Decimal `json:"tax_amount"`
	LineTotal        decimal.Decimal `json:"line_total"`
	Notes            string          `json:"notes,omitempty"`
}

// PurchaseOrderResponse represents a purchase order in responses
type PurchaseOrderResponse struct {
	ID                   uuid.UUID           `json:"id"`
	PONumber             string              `json:"po_number"`
	VendorID             uuid.UUID           `json:"vendor_id"`
	VendorName           string              `json:"vendor_name"`
	OrderType            string              `json:"order_type"`
	Status               string              `json:"status"`
	Items                []OrderItemResponse `json:"items"`
	OrderDate            time.Time           `json:"order_date"`
	ExpectedDeliveryDate *time.Time          `json:"expected_delivery_date,omitempty"`
	DeliveryDate         *time.Time          `json:"delivery_date,omitempty"`
	Subtotal             decimal.Decimal     `json:"subtotal"`
	TaxAmount            decimal.Decimal     `json:"tax_amount"`
	ShippingCost         decimal.Decimal     `json:"shipping_cost"`
	OtherCharges         decimal.Decimal     `json:"other_charges"`
	DiscountAmount       decimal.Decimal     `json:"discount_amount"`
	TotalAmount          decimal.Decimal     `json:"total_amount"`
	TotalOrderedQty      int64               `json:"total_ordered_quantity"`
	TotalReceivedQty     int64               `json:"total_received_quantity"`
	TotalPendingQty      int64               `json:"total_pending_quantity"`
	ApprovedBy           *uuid.UUID          `json:"approved_by,omitempty"`
	ApprovedAt           *time.Time          `json:"approved_at,omitempty"`
	SubmittedAt          *time.Time          `json:"submitted_at,omitempty"`
	ClosedAt             *time.Time          `json:"closed_at,omitempty"`
	CancelledAt          *time.Time          `json:"cancelled_at,omitempty"`
	CancelReason         string              `json:"cancel_reason,omitempty"`
	Notes                string              `json:"notes,omitempty"`
	Version              int                 `json:"version"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
}

// PurchaseOrderListResponse represents a paginated order list
type PurchaseOrderListResponse struct {
	Orders   []PurchaseOrderResponse `json:"orders"`
	Total    int64                   `json:"total"`
	Page     int                     `json:"page"`
	PageSize int                     `json:"page_size"`
}

// StatusSummaryResponse represents order counts grouped by status
type StatusSummaryResponse struct {
	Counts map[string]int64 `json:"counts"`
	Total  int64            `json:"total"`
}

// ReceiveGoodsResponse reports the outcome of a receiving batch
type ReceiveGoodsResponse struct {
	Order    PurchaseOrderResponse `json:"order"`
	Received []ReceivedLineResult  `json:"received"`
}

// ReceivedLineResult is one applied receive line
type ReceivedLineResult struct {
	ItemID      uuid.UUID `json:"item_id"`
	ProductID   uuid.UUID `json:"product_id"`
	SKU         string    `json:"sku"`
	Quantity    int64     `json:"quantity"`
	NewPending  int64     `json:"new_pending"`
	FullyFilled bool      `json:"fully_filled"`
}

// ==================== Reorder DTOs ====================

// ReorderReportResponse is the reorder suggestion report grouped by vendor
type ReorderReportResponse struct {
	Groups         []purchasing.VendorReorderGroup `json:"groups"`
	VendorCount    int                             `json:"vendor_count"`
	ProductCount   int                             `json:"product_count"`
	EstimatedTotal decimal.Decimal                 `json:"estimated_total"`
	GeneratedAt    time.Time                       `json:"generated_at"`
}

// ==================== Converters ====================

// ToOrderItemResponse converts a domain line item to its response DTO
func ToOrderItemResponse(item *purchasing.PurchaseOrderItem) OrderItemResponse {
	return OrderItemResponse{
		ID:               item.ID,
		ProductID:        item.ProductID,
		SKU:              item.SKU,
		ProductName:      item.ProductName,
		QuantityOrdered:  item.QuantityOrdered,
		QuantityReceived: item.QuantityReceived,
		QuantityPending:  item.QuantityPending(),
		UnitCost:         item.UnitCost,
		TaxAmount:        item.TaxAmount,
		LineTotal:        item.LineTotal(),
		Notes:            item.Notes,
	}
}

// ToPurchaseOrderResponse converts a domain order to its response DTO
func ToPurchaseOrderResponse(order *purchasing.PurchaseOrder) PurchaseOrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for idx := range order.Items {
		items = append(items, ToOrderItemResponse(&order.Items[idx]))
	}

	return PurchaseOrderResponse{
		ID:                   order.ID,
		PONumber:             order.PONumber,
		VendorID:             order.VendorID,
		VendorName:           order.VendorName,
		OrderType:            string(order.OrderType),
		Status:               string(order.Status),
		Items:                items,
		OrderDate:            order.OrderDate,
		ExpectedDeliveryDate: order.ExpectedDeliveryDate,
		DeliveryDate:         order.DeliveryDate,
		Subtotal:             order.Subtotal,
		TaxAmount:            order.TaxAmount,
		ShippingCost:         order.ShippingCost,
		OtherCharges:         order.OtherCharges,
		DiscountAmount:       order.DiscountAmount,
		TotalAmount:          order.TotalAmount,
		TotalOrderedQty:      order.TotalOrderedQuantity(),
		TotalReceivedQty:     order.TotalReceivedQuantity(),
		TotalPendingQty:      order.TotalPendingQuantity(),
		ApprovedBy:           order.ApprovedBy,
		ApprovedAt:           order.ApprovedAt,
		SubmittedAt:          order.SubmittedAt,
		ClosedAt:             order.ClosedAt,
		CancelledAt:          order.CancelledAt,
		CancelReason:         order.CancelReason,
		Notes:                order.Notes,
		Version:              order.Version,
		CreatedAt:            order.CreatedAt,
		UpdatedAt:            order.UpdatedAt,
	}
}
