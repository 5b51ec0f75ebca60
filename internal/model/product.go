package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the live catalog entry. Sale lines never reference its mutable
// fields directly — they carry a ProductSnapshot captured at sale time.
type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SKU         string    `gorm:"uniqueIndex;not null"`
	Name        string    `gorm:"index;not null"`
	Description *string
	// Category is a resolved label, not a reference — optional.
	Category   *string
	UnitPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxRatePct decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	// StockOnHand is only mutated through the stock ledger's atomic
	// deduct/restore primitives. Never goes below zero.
	StockOnHand int  `gorm:"not null;default:0"`
	Active      bool `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
