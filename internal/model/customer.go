package model

import (
	"time"

	"github.com/google/uuid"
)

// Customer is an optional sale reference. Email, when present, is used for
// receipt delivery by the async receipt worker.
type Customer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"not null"`
	Email     *string
	Phone     *string
	Active    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
