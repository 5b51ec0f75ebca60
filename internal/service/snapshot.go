package service

import (
	"tallypos/internal/model"
)

// SnapshotProduct freezes the catalog fields a historical line item must keep:
// identity, price and tax rate at time of sale, and the resolved category
// label. Pure projection — later changes to the live product never alter it.
func SnapshotProduct(p *model.Product) model.ProductSnapshot {
	return model.ProductSnapshot{
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		UnitPrice:   p.UnitPrice,
		TaxRatePct:  p.TaxRatePct,
	}
}
