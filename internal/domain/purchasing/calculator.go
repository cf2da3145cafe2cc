package purchasing

import "github.com/shopspring/decimal"

// Totals is the full set of derived monetary fields for a purchase order.
// All intermediate values keep full decimal precision; only TotalAmount
// is rounded, with banker's rounding, as the very last step.
type Totals struct {
	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	ShippingCost   decimal.Decimal
	OtherCharges   decimal.Decimal
	DiscountAmount decimal.Decimal
	TotalAmount    decimal.Decimal
}

// LineTotal computes unit cost times ordered quantity plus the line tax,
// at full precision.
func LineTotal(unitCost decimal.Decimal, quantityOrdered int64, taxAmount decimal.Decimal) decimal.Decimal {
	return unitCost.Mul(decimal.NewFromInt(quantityOrdered)).Add(taxAmount)
}

// ComputeTotals computes order totals from the line items and the
// order-level charge overrides:
//
//	subtotal = sum(unit_cost * quantity_ordered)
//	tax      = sum(line tax)
//	total    = subtotal + tax + shipping + other - discount
//
// Rounding is applied exactly once, to the final total. Summing the
// individually-rounded line totals would drift from this result, so
// callers must not shortcut through LineTotal for the order total.
func ComputeTotals(items []PurchaseOrderItem, shipping, other, discount decimal.Decimal) Totals {
	subtotal := decimal.Zero
	tax := decimal.Zero
	for i := range items {
		subtotal = subtotal.Add(items[i].UnitCost.Mul(decimal.NewFromInt(items[i].QuantityOrdered)))
		tax = tax.Add(items[i].TaxAmount)
	}

	total := subtotal.Add(tax).Add(shipping).Add(other).Sub(discount)

	return Totals{
		Subtotal:       subtotal,
		TaxAmount:      tax,
		ShippingCost:   shipping,
		OtherCharges:   other,
		DiscountAmount: discount,
		TotalAmount:    total.RoundBank(2),
	}
}
