package repository

import (
	"tallypos/internal/model"

	"gorm.io/gorm"
)

// StockMovementRepository persists the immutable stock audit ledger.
// Movements are only ever created — never updated or deleted.
type StockMovementRepository interface {
	CreateTx(tx *gorm.DB, m *model.StockMovement) error
}

type stockMovementRepo struct{ db *gorm.DB }

func NewStockMovementRepository(db *gorm.DB) StockMovementRepository {
	return &stockMovementRepo{db: db}
}

func (r *stockMovementRepo) CreateTx(tx *gorm.DB, m *model.StockMovement) error {
	return tx.Create(m).Error
}
