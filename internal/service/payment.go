package service

import (
	"fmt"

	"tallypos/internal/dto"

	"github.com/shopspring/decimal"
)

// payment.go — tender validation and reconciliation.
// Reconciliation is pure: it never talks to a payment gateway. Gateway
// authorization, when applicable, happens in the orchestrator before tenders
// reach this point.

// tolerance is one minor currency unit — absorbs rounding noise, not logic errors.
var tolerance = decimal.NewFromFloat(0.01)

// ValidateTender checks the tender shape: positive amount and a detail payload
// matching the declared method (tagged variant — exactly the right field set).
func ValidateTender(t dto.TenderRequest) error {
	if !t.Amount.IsPositive() {
		return &InvalidRequestError{Reason: "tender amount must be positive"}
	}
	switch t.Method {
	case "cash":
		if t.Cash != nil && t.Cash.Received.LessThan(t.Amount) {
			return &InvalidRequestError{Reason: "cash received is less than the applied amount"}
		}
	case "card":
		if t.Card == nil {
			return &InvalidRequestError{Reason: "card tender requires card detail"}
		}
	case "check":
		if t.Check == nil {
			return &InvalidRequestError{Reason: "check tender requires check detail"}
		}
	case "gift_card":
		if t.GiftCard == nil {
			return &InvalidRequestError{Reason: "gift card tender requires gift card detail"}
		}
	default:
		return &InvalidRequestError{Reason: fmt.Sprintf("unknown tender method %q", t.Method)}
	}
	if detailCount(t) > 1 {
		return &InvalidRequestError{Reason: "tender carries detail for more than one method"}
	}
	return nil
}

func detailCount(t dto.TenderRequest) int {
	n := 0
	if t.Cash != nil {
		n++
	}
	if t.Card != nil {
		n++
	}
	if t.Check != nil {
		n++
	}
	if t.GiftCard != nil {
		n++
	}
	return n
}

// ReconcileTenders verifies that the tendered amounts cover the expected total
// within tolerance. Requires at least one tender, each already validated.
func ReconcileTenders(tenders []dto.TenderRequest, expected decimal.Decimal) error {
	if len(tenders) == 0 {
		return &InvalidRequestError{Reason: "at least one tender is required"}
	}
	actual := decimal.Zero
	for _, t := range tenders {
		if err := ValidateTender(t); err != nil {
			return err
		}
		actual = actual.Add(t.Amount)
	}
	if actual.Sub(expected).Abs().GreaterThan(tolerance) {
		return &AmountMismatchError{Expected: expected, Actual: actual}
	}
	return nil
}
