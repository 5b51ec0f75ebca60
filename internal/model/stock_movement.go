package model

import (
	"time"

	"github.com/google/uuid"
)

// StockMovement records every stock change on a product. Rows are immutable —
// a void creates an inverse entry instead of editing history. All mutators
// (sale, void, manual adjustment) go through the stock ledger so that every
// change lands here with its before/after quantities.
type StockMovement struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	Type        string     `gorm:"not null"` // "sale" | "void_restore" | "manual_adjustment"
	Quantity    int        `gorm:"not null"` // positive = in, negative = out
	StockBefore int        `gorm:"not null"`
	StockAfter  int        `gorm:"not null"`
	Reason      string
	// ReferenceID links to the originating sale transaction, if any.
	ReferenceID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}
