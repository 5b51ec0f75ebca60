package service

import (
	"errors"
	"fmt"

	"tallypos/internal/model"
	"tallypos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockService is the stock ledger: the only component allowed to change
// StockOnHand. Every mutation runs inside the caller's transaction and writes
// an immutable StockMovement audit row, so the invariant (quantity never
// negative, every change accounted for) lives in application code instead of
// schema-level triggers.
type StockService interface {
	// DeductTx checks availability and deducts atomically within tx. Fails
	// with *InsufficientStockError when available < qty.
	DeductTx(tx *gorm.DB, p *model.Product, qty int, saleRef uuid.UUID, saleNumber string) error

	// RestoreTx adds back exactly qty within tx — additive, never recomputed
	// from current state, so a void reverses precisely even if stock was
	// adjusted in the interim.
	RestoreTx(tx *gorm.DB, productID uuid.UUID, qty int, saleRef uuid.UUID, reason string) error

	// Adjust is the manual correction path (supervisor action). Negative
	// deltas respect the non-negative invariant.
	Adjust(tx *gorm.DB, p *model.Product, delta int, reason string) (int, error)
}

type stockService struct {
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
}

func NewStockService(productRepo repository.ProductRepository, movementRepo repository.StockMovementRepository) StockService {
	return &stockService{productRepo: productRepo, movementRepo: movementRepo}
}

func (s *stockService) DeductTx(tx *gorm.DB, p *model.Product, qty int, saleRef uuid.UUID, saleNumber string) error {
	newQty, err := s.productRepo.DeductStockTx(tx, p.ID, qty)
	if err != nil {
		if errors.Is(err, repository.ErrStockConflict) {
			return &InsufficientStockError{
				ProductID: p.ID,
				Name:      p.Name,
				Available: p.StockOnHand,
				Requested: qty,
			}
		}
		return &StorageError{Err: err}
	}

	ref := saleRef
	mov := &model.StockMovement{
		ProductID:   p.ID,
		Type:        "sale",
		Quantity:    -qty,
		StockBefore: newQty + qty,
		StockAfter:  newQty,
		Reason:      fmt.Sprintf("sale %s", saleNumber),
		ReferenceID: &ref,
	}
	if err := s.movementRepo.CreateTx(tx, mov); err != nil {
		return &StorageError{Err: err}
	}
	return nil
}

func (s *stockService) RestoreTx(tx *gorm.DB, productID uuid.UUID, qty int, saleRef uuid.UUID, reason string) error {
	newQty, err := s.productRepo.RestoreStockTx(tx, productID, qty)
	if err != nil {
		return &StorageError{Err: err}
	}

	ref := saleRef
	mov := &model.StockMovement{
		ProductID:   productID,
		Type:        "void_restore",
		Quantity:    qty,
		StockBefore: newQty - qty,
		StockAfter:  newQty,
		Reason:      reason,
		ReferenceID: &ref,
	}
	if err := s.movementRepo.CreateTx(tx, mov); err != nil {
		return &StorageError{Err: err}
	}
	return nil
}

func (s *stockService) Adjust(tx *gorm.DB, p *model.Product, delta int, reason string) (int, error) {
	var newQty int
	var err error
	if delta < 0 {
		newQty, err = s.productRepo.DeductStockTx(tx, p.ID, -delta)
		if errors.Is(err, repository.ErrStockConflict) {
			return 0, &InsufficientStockError{
				ProductID: p.ID,
				Name:      p.Name,
				Available: p.StockOnHand,
				Requested: -delta,
			}
		}
	} else {
		newQty, err = s.productRepo.RestoreStockTx(tx, p.ID, delta)
	}
	if err != nil {
		return 0, &StorageError{Err: err}
	}

	mov := &model.StockMovement{
		ProductID:   p.ID,
		Type:        "manual_adjustment",
		Quantity:    delta,
		StockBefore: newQty - delta,
		StockAfter:  newQty,
		Reason:      reason,
	}
	if err := s.movementRepo.CreateTx(tx, mov); err != nil {
		return 0, &StorageError{Err: err}
	}
	return newQty, nil
}
