package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	SKU         string          `json:"sku"          validate:"required,min=3,max=40"`
	Name        string          `json:"name"         validate:"required,min=2,max=120"`
	Description *string         `json:"description"`
	Category    *string         `json:"category"`
	UnitPrice   decimal.Decimal `json:"unit_price"   validate:"required"`
	TaxRatePct  decimal.Decimal `json:"tax_rate_pct" validate:"min=0,max=100"`
	StockOnHand int             `json:"stock_on_hand" validate:"min=0"`
}

type UpdateProductRequest struct {
	Name        *string          `json:"name"         validate:"omitempty,min=2,max=120"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	TaxRatePct  *decimal.Decimal `json:"tax_rate_pct"`
}

// AdjustStockRequest is the manual-adjustment path. It goes through the same
// stock ledger primitives as sales and voids, so lost updates are impossible.
type AdjustStockRequest struct {
	Delta  int    `json:"delta"  validate:"required"`
	Reason string `json:"reason" validate:"required,min=3"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID          string          `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Category    *string         `json:"category,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRatePct  decimal.Decimal `json:"tax_rate_pct"`
	StockOnHand int             `json:"stock_on_hand"`
	Active      bool            `json:"active"`
}
