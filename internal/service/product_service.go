package service

import (
	"context"

	"tallypos/internal/dto"
	"tallypos/internal/model"
	"tallypos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	// AdjustStock is the manual-adjustment path. It routes through the stock
	// ledger so the mutation is audited and the non-negative invariant holds.
	AdjustStock(ctx context.Context, id uuid.UUID, req dto.AdjustStockRequest) (*dto.ProductResponse, error)
}

type productService struct {
	repo  repository.ProductRepository
	stock StockService
}

func NewProductService(repo repository.ProductRepository, stock StockService) ProductService {
	return &productService{repo: repo, stock: stock}
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if req.TaxRatePct.IsNegative() || req.TaxRatePct.GreaterThan(oneHundred) {
		return nil, &InvalidRequestError{Reason: "tax rate must be between 0 and 100"}
	}
	if req.UnitPrice.IsNegative() {
		return nil, &InvalidRequestError{Reason: "unit price must not be negative"}
	}
	p := &model.Product{
		SKU:         req.SKU,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		UnitPrice:   req.UnitPrice,
		TaxRatePct:  req.TaxRatePct,
		StockOnHand: req.StockOnHand,
		Active:      true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, &StorageError{Err: err}
	}
	return productToResponse(p), nil
}

func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, &NotFoundError{Kind: "product", ID: id.String()}
	}
	return productToResponse(p), nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, &NotFoundError{Kind: "product", ID: id.String()}
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = req.Description
	}
	if req.Category != nil {
		p.Category = req.Category
	}
	if req.UnitPrice != nil {
		if req.UnitPrice.IsNegative() {
			return nil, &InvalidRequestError{Reason: "unit price must not be negative"}
		}
		p.UnitPrice = *req.UnitPrice
	}
	if req.TaxRatePct != nil {
		if req.TaxRatePct.IsNegative() || req.TaxRatePct.GreaterThan(oneHundred) {
			return nil, &InvalidRequestError{Reason: "tax rate must be between 0 and 100"}
		}
		p.TaxRatePct = *req.TaxRatePct
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, &StorageError{Err: err}
	}
	return productToResponse(p), nil
}

func (s *productService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return &NotFoundError{Kind: "product", ID: id.String()}
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return &StorageError{Err: err}
	}
	return nil
}

func (s *productService) AdjustStock(ctx context.Context, id uuid.UUID, req dto.AdjustStockRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, &NotFoundError{Kind: "product", ID: id.String()}
	}
	if req.Delta == 0 {
		return nil, &InvalidRequestError{Reason: "delta must not be zero"}
	}

	var newQty int
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		newQty, err = s.stock.Adjust(tx, p, req.Delta, req.Reason)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	p.StockOnHand = newQty
	return productToResponse(p), nil
}

func productToResponse(p *model.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:          p.ID.String(),
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		UnitPrice:   p.UnitPrice,
		TaxRatePct:  p.TaxRatePct,
		StockOnHand: p.StockOnHand,
		Active:      p.Active,
	}
}
