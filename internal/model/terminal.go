package model

import (
	"time"

	"github.com/google/uuid"
)

// Terminal is a physical register. Transaction numbers are scoped per terminal.
type Terminal struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code      string    `gorm:"uniqueIndex;not null"` // short code embedded in transaction numbers, e.g. "03"
	Name      string    `gorm:"not null"`
	Location  *string
	Active    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TerminalSequence backs the per-terminal transaction numbering.
// The counter is advanced with an atomic upsert inside the sale transaction,
// so the row lock serializes concurrent callers on the same terminal.
// Numbers may have gaps after a rollback; uniqueness and monotonicity hold.
type TerminalSequence struct {
	TerminalID uuid.UUID `gorm:"type:uuid;primaryKey"`
	LastNumber int64     `gorm:"not null;default:0"`
}
