package service

import "github.com/shopspring/decimal"

func lineSubtotal(unitPrice float64, quantity int) decimal.Decimal {
	return decimal.NewFromFloat(unitPrice).Mul(decimal.NewFromInt(int64(quantity)))
}

// orderTotals sums in decimal so that repeated float additions don't drift.
type orderTotals struct {
	subtotal decimal.Decimal
	tax      decimal.Decimal
	shipping decimal.Decimal
}

func newOrderTotals(tax, shippingCost float64) *orderTotals {
	return &orderTotals{
		subtotal: decimal.Zero,
		tax:      decimal.NewFromFloat(tax),
		shipping: decimal.NewFromFloat(shippingCost),
	}
}

func (t *orderTotals) add(line decimal.Decimal) {
	t.subtotal = t.subtotal.Add(line)
}

func (t *orderTotals) total() decimal.Decimal {
	return t.subtotal.Add(t.tax).Add(t.shipping)
}
