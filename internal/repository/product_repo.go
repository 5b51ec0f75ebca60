package repository

import (
	"context"
	"errors"

	"tallypos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrStockConflict is returned by DeductStockTx when the conditional decrement
// matched no row, i.e. the product's stock is below the requested quantity.
// The service layer wraps it with product context.
var ErrStockConflict = errors.New("insufficient stock")

// ProductRepository defines the data access contract for products.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via in-memory stubs.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindBySKU(ctx context.Context, sku string) (*model.Product, error)
	Update(ctx context.Context, p *model.Product) error
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// DeductStockTx is the check-and-deduct primitive. The decrement and the
	// availability check execute as one statement, so the storage row lock
	// serializes concurrent deductions on the same product. Returns the new
	// stock level, or ErrStockConflict when available < qty.
	DeductStockTx(tx *gorm.DB, id uuid.UUID, qty int) (int, error)

	// RestoreStockTx adds qty back unconditionally — it never inspects the
	// current level, preserving exact reversibility of voids. Returns the new
	// stock level.
	RestoreStockTx(tx *gorm.DB, id uuid.UUID, qty int) (int, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *productRepo) FindBySKU(ctx context.Context, sku string) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&p).Error
	return &p, err
}

func (r *productRepo) Update(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *productRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Update("active", false).Error
}

func (r *productRepo) DeductStockTx(tx *gorm.DB, id uuid.UUID, qty int) (int, error) {
	var newQty int
	res := tx.Raw(`
		UPDATE products
		SET stock_on_hand = stock_on_hand - ?, updated_at = now()
		WHERE id = ? AND stock_on_hand >= ?
		RETURNING stock_on_hand`, qty, id, qty).Scan(&newQty)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrStockConflict
	}
	return newQty, nil
}

func (r *productRepo) RestoreStockTx(tx *gorm.DB, id uuid.UUID, qty int) (int, error) {
	var newQty int
	res := tx.Raw(`
		UPDATE products
		SET stock_on_hand = stock_on_hand + ?, updated_at = now()
		WHERE id = ?
		RETURNING stock_on_hand`, qty, id).Scan(&newQty)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return newQty, nil
}

func (r *productRepo) DB() *gorm.DB { return r.db }
