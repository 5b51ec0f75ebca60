package repository

import (
	"context"
	"errors"

	"tallypos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrVoidConflict is returned by UpdateVoidTx when the conditional flip
// matched no row, i.e. the transaction is not in completed status. The
// service layer maps it to an invalid state transition.
var ErrVoidConflict = errors.New("transaction not voidable")

type SaleRepository interface {
	Create(ctx context.Context, tx *gorm.DB, s *model.SaleTransaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.SaleTransaction, error)
	FindByNumber(ctx context.Context, number string) (*model.SaleTransaction, error)
	UpdateVoidTx(tx *gorm.DB, s *model.SaleTransaction) error

	// NextNumberTx advances the per-terminal counter with an atomic upsert.
	// Must run inside the sale transaction: the updated row stays locked until
	// commit, so concurrent callers on the same terminal serialize and a
	// rollback leaves at most a gap, never a reused number.
	NextNumberTx(ctx context.Context, tx *gorm.DB, terminalID uuid.UUID) (int64, error)

	DB() *gorm.DB
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) DB() *gorm.DB { return r.db }

func (r *saleRepo) Create(ctx context.Context, tx *gorm.DB, s *model.SaleTransaction) error {
	return tx.WithContext(ctx).Create(s).Error
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.SaleTransaction, error) {
	var s model.SaleTransaction
	err := r.db.WithContext(ctx).Preload("Items").Preload("Payments").First(&s, id).Error
	return &s, err
}

func (r *saleRepo) FindByNumber(ctx context.Context, number string) (*model.SaleTransaction, error) {
	var s model.SaleTransaction
	err := r.db.WithContext(ctx).Preload("Items").Preload("Payments").
		Where("number = ?", number).First(&s).Error
	return &s, err
}

// UpdateVoidTx persists the status flip and void metadata only — items and
// payments are never touched. The flip is conditional on completed status:
// the guard and the write execute as one statement, so the storage row lock
// serializes concurrent voids of the same transaction and the loser gets
// ErrVoidConflict instead of a second flip.
func (r *saleRepo) UpdateVoidTx(tx *gorm.DB, s *model.SaleTransaction) error {
	res := tx.Model(&model.SaleTransaction{}).
		Where("id = ? AND status = ?", s.ID, model.SaleStatusCompleted).
		Updates(map[string]interface{}{
			"status":      s.Status,
			"voided_by":   s.VoidedBy,
			"void_reason": s.VoidReason,
			"voided_at":   s.VoidedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVoidConflict
	}
	return nil
}

func (r *saleRepo) NextNumberTx(ctx context.Context, tx *gorm.DB, terminalID uuid.UUID) (int64, error) {
	var num int64
	err := tx.WithContext(ctx).Raw(`
		INSERT INTO terminal_sequences (terminal_id, last_number)
		VALUES (?, 1)
		ON CONFLICT (terminal_id)
		DO UPDATE SET last_number = terminal_sequences.last_number + 1
		RETURNING last_number`, terminalID).Scan(&num).Error
	return num, err
}
