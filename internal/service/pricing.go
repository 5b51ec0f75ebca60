package service

import (
	"github.com/shopspring/decimal"
)

// pricing.go — pure money/tax arithmetic for sale lines.
//
//	subtotal  = quantity×unitPrice − discount
//	tax       = subtotal × taxRatePct/100
//	lineTotal = subtotal + tax
//
// Each output is rounded to 2 places, half away from zero, once at the end of
// its formula. Tax is computed and rounded per line, never on the transaction
// subtotal as a whole — aggregate recomputation can disagree by a cent and
// would break void-time reversal, which simply negates the stored amounts.

var oneHundred = decimal.NewFromInt(100)

// ComputeLine returns the tax amount and line total for one sale line.
func ComputeLine(quantity int, unitPrice, discount, taxRatePct decimal.Decimal) (tax, lineTotal decimal.Decimal, err error) {
	if quantity <= 0 {
		return decimal.Zero, decimal.Zero, &InvalidRequestError{Reason: "quantity must be positive"}
	}
	if discount.IsNegative() {
		return decimal.Zero, decimal.Zero, &InvalidRequestError{Reason: "discount must not be negative"}
	}
	if taxRatePct.IsNegative() || taxRatePct.GreaterThan(oneHundred) {
		return decimal.Zero, decimal.Zero, &InvalidRequestError{Reason: "tax rate must be between 0 and 100"}
	}

	subtotal := unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Sub(discount)
	if subtotal.IsNegative() {
		return decimal.Zero, decimal.Zero, &InvalidRequestError{Reason: "discount exceeds line subtotal"}
	}

	tax = subtotal.Mul(taxRatePct).Div(oneHundred).Round(2)
	lineTotal = subtotal.Round(2).Add(tax)
	return tax, lineTotal, nil
}
