package resolver

import (
	"context"
	"errors"
	"fmt"

	"smartbasket/internal/domain"
	"smartbasket/internal/repository"
)

// Resolve is the pure pricing decision: given a shopping-list item and
// the best known sale offer for its product (nil when no product or no
// sale offer matches), it returns the price/store/sale state the item
// should display.
//
// The decision never raises a price. An item moves from unpriced to
// priced the first time a sale offer matches, and from price p to p'
// only when p' < p.
func Resolve(item *domain.ShoppingListItem, best *domain.Offer) domain.ResolvedPrice {
	current := domain.ResolvedPrice{
		Price:   item.Price,
		StoreID: item.StoreID,
		OnSale:  item.OnSale,
	}

	if best == nil || !best.OnSale {
		return current
	}

	price, priced := item.PriceValue()
	if !priced || best.SalePrice < price {
		return domain.ResolvedPrice{
			Price:   domain.FormatPrice(best.SalePrice),
			StoreID: best.StoreID,
			OnSale:  true,
		}
	}

	return current
}

// CatalogResolver looks items up in the product catalog and applies the
// pure decision. It performs reads only; persisting the outcome is the
// caller's job.
type CatalogResolver struct {
	products repository.ProductRepository
}

// NewCatalogResolver creates a resolver over the given catalog.
func NewCatalogResolver(products repository.ProductRepository) *CatalogResolver {
	return &CatalogResolver{products: products}
}

// Resolve matches the item's name against the catalog and decides its
// price. Items without a catalog match resolve to themselves unchanged.
func (r *CatalogResolver) Resolve(ctx context.Context, item *domain.ShoppingListItem) (domain.ResolvedPrice, error) {
	product, err := r.products.FindByName(ctx, item.ItemName)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return Resolve(item, nil), nil
		}
		return domain.ResolvedPrice{}, fmt.Errorf("failed to look up product: %w", err)
	}

	best, err := r.products.BestSaleOffer(ctx, product.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNoSaleOffer) {
			return Resolve(item, nil), nil
		}
		return domain.ResolvedPrice{}, fmt.Errorf("failed to look up best offer: %w", err)
	}

	return Resolve(item, best), nil
}
