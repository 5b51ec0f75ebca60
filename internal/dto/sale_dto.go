package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type SaleItemRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  int             `json:"quantity"   validate:"required,min=1"`
	Discount  decimal.Decimal `json:"discount"   validate:"min=0"`
}

// Tender detail variants — exactly one must be set, matching Method.

type CashDetail struct {
	Received decimal.Decimal `json:"received" validate:"required"`
}

type CardDetail struct {
	LastFour string `json:"last_four" validate:"required,len=4,numeric"`
}

type CheckDetail struct {
	Number string `json:"number" validate:"required,min=1,max=30"`
}

type GiftCardDetail struct {
	Code string `json:"code" validate:"required,min=4,max=40"`
}

// TenderRequest is one payment instrument applied toward the sale total.
// Amount is the applied amount; for cash, Received may exceed Amount and the
// difference is recorded as change given.
type TenderRequest struct {
	Method   string          `json:"method" validate:"required,oneof=cash card check gift_card"`
	Amount   decimal.Decimal `json:"amount" validate:"required"`
	Cash     *CashDetail     `json:"cash,omitempty"`
	Card     *CardDetail     `json:"card,omitempty"`
	Check    *CheckDetail    `json:"check,omitempty"`
	GiftCard *GiftCardDetail `json:"gift_card,omitempty"`
}

type CreateSaleRequest struct {
	TerminalID string            `json:"terminal_id" validate:"required,uuid"`
	CustomerID *string           `json:"customer_id" validate:"omitempty,uuid"`
	Items      []SaleItemRequest `json:"items"       validate:"required,min=1,dive"`
	Tenders    []TenderRequest   `json:"tenders"     validate:"required,min=1,dive"`
}

type VoidSaleRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleItemResponse struct {
	ProductID string          `json:"product_id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Category  *string         `json:"category,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Discount  decimal.Decimal `json:"discount"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type TenderResponse struct {
	Method       string           `json:"method"`
	Amount       decimal.Decimal  `json:"amount"`
	CashReceived *decimal.Decimal `json:"cash_received,omitempty"`
	ChangeGiven  *decimal.Decimal `json:"change_given,omitempty"`
	CardLastFour *string          `json:"card_last_four,omitempty"`
	CheckNumber  *string          `json:"check_number,omitempty"`
	GiftCardCode *string          `json:"gift_card_code,omitempty"`
}

type SaleResponse struct {
	ID            string             `json:"id"`
	Number        string             `json:"number"`
	TerminalID    string             `json:"terminal_id"`
	CashierID     string             `json:"cashier_id"`
	CustomerID    *string            `json:"customer_id,omitempty"`
	Items         []SaleItemResponse `json:"items"`
	Tenders       []TenderResponse   `json:"tenders"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	TaxTotal      decimal.Decimal    `json:"tax_total"`
	DiscountTotal decimal.Decimal    `json:"discount_total"`
	GrandTotal    decimal.Decimal    `json:"grand_total"`
	Status        string             `json:"status"`
	VoidReason    *string            `json:"void_reason,omitempty"`
	VoidedAt      *string            `json:"voided_at,omitempty"`
	CreatedAt     string             `json:"created_at"`
}
