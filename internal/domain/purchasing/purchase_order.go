package purchasing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Status represents the status of a purchase order
type Status string

const (
	StatusDraft             Status = "DRAFT"
	StatusSubmitted         Status = "SUBMITTED"
	StatusApproved          Status = "APPROVED"
	StatusPartiallyReceived Status = "PARTIALLY_RECEIVED"
	StatusReceived          Status = "RECEIVED"
	StatusClosed            Status = "CLOSED"
	StatusCancelled         Status = "CANCELLED"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusPartiallyReceived,
		StatusReceived, StatusClosed, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusDraft:
		return target == StatusSubmitted || target == StatusCancelled
	case StatusSubmitted:
		return target == StatusApproved || target == StatusCancelled
	case StatusApproved:
		return target == StatusPartiallyReceived || target == StatusReceived || target == StatusCancelled
	case StatusPartiallyReceived:
		return target == StatusPartiallyReceived || target == StatusReceived
	case StatusReceived:
		return target == StatusClosed
	case StatusClosed, StatusCancelled:
		return false // Terminal states
	}
	return false
}

// CanReceive returns true if receiving goods is allowed in this status
func (s Status) CanReceive() bool {
	return s == StatusApproved || s == StatusPartiallyReceived
}

// CanCancel returns true if the order may still be cancelled.
// Once goods have started arriving the order can no longer be cancelled.
func (s Status) CanCancel() bool {
	return s == StatusDraft || s == StatusSubmitted || s == StatusApproved
}

// OrderType classifies how a purchase order is fulfilled
type OrderType string

const (
	OrderTypeStandard OrderType = "STANDARD"
	OrderTypeUrgent   OrderType = "URGENT"
	OrderTypeDropShip OrderType = "DROP_SHIP"
)

// IsValid checks if the order type is recognized
func (t OrderType) IsValid() bool {
	switch t {
	case OrderTypeStandard, OrderTypeUrgent, OrderTypeDropShip:
		return true
	}
	return false
}

// PurchaseOrderItem represents a line item in a purchase order.
// SKU and ProductName are snapshots taken at line creation so later
// catalog edits do not rewrite order history.
type PurchaseOrderItem struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null"`
	SKU              string          `gorm:"type:varchar(50);not null"`
	ProductName      string          `gorm:"type:varchar(200);not null"`
	QuantityOrdered  int64           `gorm:"not null"`
	QuantityReceived int64           `gorm:"not null;default:0"`
	UnitCost         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TaxAmount        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Notes            string          `gorm:"type:varchar(500)"`
	CreatedAt        time.Time       `gorm:"not null"`
	UpdatedAt        time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchaseOrderItem) TableName() string {
	return "purchase_order_items"
}

// NewPurchaseOrderItem creates a new purchase order line item
func NewPurchaseOrderItem(orderID, productID uuid.UUID, sku, productName string, quantityOrdered int64, unitCost, taxAmount valueobject.Money) (*PurchaseOrderItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if quantityOrdered <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Ordered quantity must be positive")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}
	if taxAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Line tax cannot be negative")
	}

	now := time.Now()
	return &PurchaseOrderItem{
		ID:               uuid.New(),
		OrderID:          orderID,
		ProductID:        productID,
		SKU:              sku,
		ProductName:      productName,
		QuantityOrdered:  quantityOrdered,
		QuantityReceived: 0,
		UnitCost:         unitCost.Amount(),
		TaxAmount:        taxAmount.Amount(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// QuantityPending returns the quantity still to be received.
// Invariant: QuantityReceived never exceeds QuantityOrdered, so this is never negative.
func (i *PurchaseOrderItem) QuantityPending() int64 {
	return i.QuantityOrdered - i.QuantityReceived
}

// LineTotal returns unit cost times ordered quantity plus line tax
func (i *PurchaseOrderItem) LineTotal() decimal.Decimal {
	return LineTotal(i.UnitCost, i.QuantityOrdered, i.TaxAmount)
}

// IsFullyReceived returns true if all ordered quantity has been received
func (i *PurchaseOrderItem) IsFullyReceived() bool {
	return i.QuantityReceived >= i.QuantityOrdered
}

// CanAcceptDelta reports whether the given received-quantity delta is valid for this item
func (i *PurchaseOrderItem) CanAcceptDelta(delta int64) error {
	if delta <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", fmt.Sprintf("Receive quantity for item %s must be positive", i.ID))
	}
	if i.QuantityReceived+delta > i.QuantityOrdered {
		return shared.NewDomainError("QUANTITY_EXCEEDED",
			fmt.Sprintf("Cannot receive %d for %s, only %d pending", delta, i.SKU, i.QuantityPending()))
	}
	return nil
}

// addReceived applies a pre-validated received-quantity delta
func (i *PurchaseOrderItem) addReceived(delta int64) {
	i.QuantityReceived += delta
	i.UpdatedAt = time.Now()
}

// ReceiveLine is a single line of a receiving batch
type ReceiveLine struct {
	ItemID        uuid.UUID `json:"item_id"`
	QuantityDelta int64     `json:"quantity_delta"`
	Notes         string    `json:"notes,omitempty"`
}

// ReceivedItem describes the outcome of one applied receive line,
// carrying what the inventory side effect needs.
type ReceivedItem struct {
	ItemID        uuid.UUID
	ProductID     uuid.UUID
	SKU           string
	ProductName   string
	QuantityDelta int64
	UnitCost      decimal.Decimal
}

// PurchaseOrder is the aggregate root for a procurement document.
// It owns the status state machine and guards every mutation.
type PurchaseOrder struct {
	shared.BaseAggregateRoot
	PONumber             string              `gorm:"type:varchar(20);not null;uniqueIndex"`
	VendorID             uuid.UUID           `gorm:"type:uuid;not null;index"`
	VendorName           string              `gorm:"type:varchar(200);not null"`
	OrderType            OrderType           `gorm:"type:varchar(20);not null;default:'STANDARD'"`
	Status               Status              `gorm:"type:varchar(20);not null;default:'DRAFT'"`
	Items                []PurchaseOrderItem `gorm:"foreignKey:OrderID;references:ID"`
	OrderDate            time.Time           `gorm:"not null"`
	ExpectedDeliveryDate *time.Time
	DeliveryDate         *time.Time
	Subtotal             decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount            decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ShippingCost         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	OtherCharges         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountAmount       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAmount          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ApprovedBy           *uuid.UUID      `gorm:"type:uuid"`
	ApprovedAt           *time.Time
	SubmittedAt          *time.Time
	ClosedAt             *time.Time
	CancelledAt          *time.Time
	CancelReason         string `gorm:"type:varchar(500)"`
	Notes                string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// NewPurchaseOrder creates a new purchase order in DRAFT status
func NewPurchaseOrder(poNumber string, vendorID uuid.UUID, vendorName string, orderType OrderType) (*PurchaseOrder, error) {
	if poNumber == "" {
		return nil, shared.NewDomainError("INVALID_PO_NUMBER", "PO number cannot be empty")
	}
	if vendorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_VENDOR", "Vendor ID cannot be empty")
	}
	if vendorName == "" {
		return nil, shared.NewDomainError("INVALID_VENDOR_NAME", "Vendor name cannot be empty")
	}
	if orderType == "" {
		orderType = OrderTypeStandard
	}
	if !orderType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ORDER_TYPE", fmt.Sprintf("Unknown order type %q", orderType))
	}

	return &PurchaseOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PONumber:          poNumber,
		VendorID:          vendorID,
		VendorName:        vendorName,
		OrderType:         orderType,
		Status:            StatusDraft,
		Items:             make([]PurchaseOrderItem, 0),
		OrderDate:         time.Now(),
		Subtotal:          decimal.Zero,
		TaxAmount:         decimal.Zero,
		ShippingCost:      decimal.Zero,
		OtherCharges:      decimal.Zero,
		DiscountAmount:    decimal.Zero,
		TotalAmount:       decimal.Zero,
	}, nil
}

// AddItem adds a new line item to the order.
// Only allowed in DRAFT status.
func (o *PurchaseOrder) AddItem(productID uuid.UUID, sku, productName string, quantityOrdered int64, unitCost, taxAmount valueobject.Money) (*PurchaseOrderItem, error) {
	if o.Status != StatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to a non-draft order")
	}

	for _, item := range o.Items {
		if item.ProductID == productID {
			return nil, shared.NewDomainError("DUPLICATE_PRODUCT", "Product already exists in order, update the line instead")
		}
	}

	item, err := NewPurchaseOrderItem(o.ID, productID, sku, productName, quantityOrdered, unitCost, taxAmount)
	if err != nil {
		return nil, err
	}

	o.Items = append(o.Items, *item)
	o.recalculateTotals()
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return &o.Items[len(o.Items)-1], nil
}

// RemoveItem removes a line item from the order.
// Only allowed in DRAFT status.
func (o *PurchaseOrder) RemoveItem(itemID uuid.UUID) error {
	if o.Status != StatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot remove items from a non-draft order")
	}

	for idx, item := range o.Items {
		if item.ID == itemID {
			o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
			o.recalculateTotals()
			o.UpdatedAt = time.Now()
			o.IncrementVersion()
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Order item not found")
}

// ReplaceItems swaps the full line item set and recomputes totals.
// Only allowed in DRAFT status; the new set must not be empty.
func (o *PurchaseOrder) ReplaceItems(items []PurchaseOrderItem) error {
	if o.Status != StatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot replace items in a non-draft order")
	}
	if len(items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Order must have at least one item")
	}

	seen := make(map[uuid.UUID]bool, len(items))
	for i := range items {
		if seen[items[i].ProductID] {
			return shared.NewDomainError("DUPLICATE_PRODUCT", "Duplicate product in item set")
		}
		seen[items[i].ProductID] = true
		items[i].OrderID = o.ID
	}

	o.Items = items
	o.recalculateTotals()
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// SetOverrides sets the order-level shipping, other charges and discount amounts.
// Only allowed in DRAFT status. Rejects combinations that would drive the total negative.
func (o *PurchaseOrder) SetOverrides(shipping, other, discount valueobject.Money) error {
	if o.Status != StatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot change charges on a non-draft order")
	}
	if shipping.IsNegative() || other.IsNegative() || discount.IsNegative() {
		return shared.NewDomainError("INVALID_CHARGE", "Charges and discount cannot be negative")
	}

	totals := ComputeTotals(o.Items, shipping.Amount(), other.Amount(), discount.Amount())
	if totals.TotalAmount.IsNegative() {
		return shared.NewDomainError("INVALID_CHARGE", "Discount cannot exceed order total")
	}

	o.ShippingCost = shipping.Amount()
	o.OtherCharges = other.Amount()
	o.DiscountAmount = discount.Amount()
	o.applyTotals(totals)
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// SetExpectedDeliveryDate sets the expected delivery date.
// Only allowed in DRAFT status.
func (o *PurchaseOrder) SetExpectedDeliveryDate(date *time.Time) error {
	if o.Status != StatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot change delivery expectation on a non-draft order")
	}
	o.ExpectedDeliveryDate = date
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	return nil
}

// SetNotes sets the free-text notes on the order
func (o *PurchaseOrder) SetNotes(notes string) {
	o.Notes = notes
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}

// Submit transitions the order from DRAFT to SUBMITTED.
// Requires at least one item.
func (o *PurchaseOrder) Submit() error {
	if !o.Status.CanTransitionTo(StatusSubmitted) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot submit order in %s status", o.Status))
	}
	if len(o.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot submit order without items")
	}

	now := time.Now()
	o.Status = StatusSubmitted
	o.SubmittedAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()

	return nil
}

// Approve transitions the order from SUBMITTED to APPROVED and records the approver
func (o *PurchaseOrder) Approve(approverID uuid.UUID) error {
	if !o.Status.CanTransitionTo(StatusApproved) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve order in %s status", o.Status))
	}
	if approverID == uuid.Nil {
		return shared.NewDomainError("INVALID_APPROVER", "Approver ID cannot be empty")
	}

	now := time.Now()
	o.Status = StatusApproved
	o.ApprovedBy = &approverID
	o.ApprovedAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()

	return nil
}

// Cancel cancels the order.
// Allowed only before any goods have been received.
func (o *PurchaseOrder) Cancel(reason string) error {
	if !o.Status.CanCancel() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel order in %s status", o.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	o.Status = StatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.UpdatedAt = now
	o.IncrementVersion()

	return nil
}

// Close transitions the order from RECEIVED to CLOSED
func (o *PurchaseOrder) Close() error {
	if !o.Status.CanTransitionTo(StatusClosed) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot close order in %s status", o.Status))
	}

	now := time.Now()
	o.Status = StatusClosed
	o.ClosedAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()

	return nil
}

// Receive applies a batch of received-quantity deltas.
// The whole batch is validated before any line is mutated: on any
// failure the aggregate is left untouched and an error is returned.
// Returns the applied lines so the caller can mirror them into inventory.
func (o *PurchaseOrder) Receive(lines []ReceiveLine) ([]ReceivedItem, error) {
	if !o.Status.CanReceive() {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot receive goods for order in %s status", o.Status))
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Receive batch cannot be empty")
	}

	// First pass: resolve and validate every line. Deltas for the same
	// item accumulate, so duplicates within a batch are checked jointly.
	resolved := make([]*PurchaseOrderItem, len(lines))
	pendingDelta := make(map[uuid.UUID]int64, len(lines))
	for idx, line := range lines {
		item := o.GetItem(line.ItemID)
		if item == nil {
			return nil, shared.NewDomainError("ITEM_NOT_FOUND", fmt.Sprintf("Item %s not found in order", line.ItemID))
		}
		if err := item.CanAcceptDelta(pendingDelta[item.ID] + line.QuantityDelta); err != nil {
			return nil, err
		}
		pendingDelta[item.ID] += line.QuantityDelta
		resolved[idx] = item
	}

	// Second pass: apply.
	received := make([]ReceivedItem, 0, len(lines))
	for idx, line := range lines {
		item := resolved[idx]
		item.addReceived(line.QuantityDelta)
		received = append(received, ReceivedItem{
			ItemID:        item.ID,
			ProductID:     item.ProductID,
			SKU:           item.SKU,
			ProductName:   item.ProductName,
			QuantityDelta: line.QuantityDelta,
			UnitCost:      item.UnitCost,
		})
	}

	o.recomputeReceivingStatus()
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return received, nil
}

// recomputeReceivingStatus derives the status from aggregate received quantities.
// The delivery date is stamped exactly once, on the transition into RECEIVED.
func (o *PurchaseOrder) recomputeReceivingStatus() {
	totalOrdered := o.TotalOrderedQuantity()
	totalReceived := o.TotalReceivedQuantity()

	switch {
	case totalReceived == 0:
		o.Status = StatusApproved
	case totalReceived < totalOrdered:
		o.Status = StatusPartiallyReceived
	default:
		if o.Status != StatusReceived {
			now := time.Now()
			o.DeliveryDate = &now
		}
		o.Status = StatusReceived
	}
}

// recalculateTotals recomputes the derived monetary fields from the line items
func (o *PurchaseOrder) recalculateTotals() {
	o.applyTotals(ComputeTotals(o.Items, o.ShippingCost, o.OtherCharges, o.DiscountAmount))
}

func (o *PurchaseOrder) applyTotals(t Totals) {
	o.Subtotal = t.Subtotal
	o.TaxAmount = t.TaxAmount
	o.TotalAmount = t.TotalAmount
}

// TotalOrderedQuantity returns the total ordered quantity across all items
func (o *PurchaseOrder) TotalOrderedQuantity() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.QuantityOrdered
	}
	return total
}

// TotalReceivedQuantity returns the total received quantity across all items
func (o *PurchaseOrder) TotalReceivedQuantity() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.QuantityReceived
	}
	return total
}

// TotalPendingQuantity returns the total quantity still to be received
func (o *PurchaseOrder) TotalPendingQuantity() int64 {
	return o.TotalOrderedQuantity() - o.TotalReceivedQuantity()
}

// ItemCount returns the number of line items in the order
func (o *PurchaseOrder) ItemCount() int {
	return len(o.Items)
}

// IsDraft returns true if the order is in draft status
func (o *PurchaseOrder) IsDraft() bool {
	return o.Status == StatusDraft
}

// IsTerminal returns true if the order is closed or cancelled
func (o *PurchaseOrder) IsTerminal() bool {
	return o.Status == StatusClosed || o.Status == StatusCancelled
}

// CanModify returns true if the order can still be edited
func (o *PurchaseOrder) CanModify() bool {
	return o.IsDraft()
}

// GetItem returns a line item by its ID, or nil if absent
func (o *PurchaseOrder) GetItem(itemID uuid.UUID) *PurchaseOrderItem {
	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			return &o.Items[idx]
		}
	}
	return nil
}

// GetItemByProduct returns a line item by product ID, or nil if absent
func (o *PurchaseOrder) GetItemByProduct(productID uuid.UUID) *PurchaseOrderItem {
	for idx := range o.Items {
		if o.Items[idx].ProductID == productID {
			return &o.Items[idx]
		}
	}
	return nil
}
