package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale transaction lifecycle. The only legal transitions are
// pending → completed and completed → voided. Rows are never deleted.
const (
	SaleStatusPending   = "pending"
	SaleStatusCompleted = "completed"
	SaleStatusVoided    = "voided"
)

// Tender methods. The enumeration is extensible — adding a method means a new
// constant plus a detail variant on the tender DTO.
const (
	TenderCash     = "cash"
	TenderCard     = "card"
	TenderCheck    = "check"
	TenderGiftCard = "gift_card"
)

// SaleTransaction is the durable financial record of one checkout.
// Invariant: GrandTotal == Subtotal + TaxTotal - DiscountTotal, always >= 0,
// reconciled at creation against the sum of line totals and tender amounts.
type SaleTransaction struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	// Number is the human-readable, terminal-scoped identifier, e.g. "T03-000042".
	Number        string          `gorm:"uniqueIndex;not null"`
	TerminalID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	CashierID     uuid.UUID       `gorm:"type:uuid;not null"`
	CustomerID    *uuid.UUID      `gorm:"type:uuid;index"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxTotal      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	DiscountTotal decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	GrandTotal    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status        string          `gorm:"type:varchar(20);not null;default:'pending'"`
	CompletedAt   *time.Time
	// Void metadata — set exactly once on completed → voided. Items and
	// payments are preserved untouched; stock is restored additively.
	VoidedBy   *uuid.UUID `gorm:"type:uuid"`
	VoidReason *string
	VoidedAt   *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Items    []SaleItem    `gorm:"foreignKey:TransactionID"`
	Payments []SalePayment `gorm:"foreignKey:TransactionID"`
	Terminal *Terminal     `gorm:"foreignKey:TerminalID"`
	Cashier  *User         `gorm:"foreignKey:CashierID"`
	Customer *Customer     `gorm:"foreignKey:CustomerID"`
}

// ProductSnapshot is a point-in-time copy of the catalog fields that must
// survive later product mutation or deactivation. Embedded into SaleItem,
// never independently addressable.
type ProductSnapshot struct {
	SKU         string `gorm:"column:sku;not null"`
	Name        string `gorm:"not null"`
	Description *string
	Category    *string
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxRatePct  decimal.Decimal `gorm:"type:decimal(5,2);not null"`
}

// SaleItem is owned exclusively by its transaction and immutable after
// creation — corrections happen via a new transaction or a void, never in place.
// Invariant: Quantity > 0; LineTotal = Quantity×UnitPrice − Discount + Tax,
// rounded per line to currency precision.
type SaleItem struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TransactionID uuid.UUID `gorm:"type:uuid;index;not null"`
	// ProductID is a reference only — display data comes from the snapshot.
	ProductID       uuid.UUID `gorm:"type:uuid;index;not null"`
	ProductSnapshot `gorm:"embedded"`
	Quantity        int             `gorm:"not null"`
	Discount        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TaxAmount       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	LineTotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt       time.Time
}

// SalePayment is one tender applied toward the sale's total.
// Created in the same atomic unit as the transaction, immutable afterward —
// void does not reverse or flag payments (refunds are out of scope).
// The method-specific detail is a tagged variant: only the columns valid for
// the method are populated.
type SalePayment struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TransactionID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Method        string          `gorm:"type:varchar(20);not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// cash
	CashReceived *decimal.Decimal `gorm:"type:decimal(12,2)"`
	ChangeGiven  *decimal.Decimal `gorm:"type:decimal(12,2)"`
	// card
	CardLastFour *string `gorm:"type:varchar(4)"`
	// check
	CheckNumber *string `gorm:"type:varchar(30)"`
	// gift_card
	GiftCardCode *string `gorm:"type:varchar(40)"`
	CreatedAt    time.Time
}
