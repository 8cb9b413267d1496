package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smartbasket/internal/domain"
	"smartbasket/internal/gateway"
	"smartbasket/internal/repository"
	"smartbasket/internal/resolver"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PriceLookup is the slice of the lookup gateway the sync service uses.
type PriceLookup interface {
	LookupBestPrice(ctx context.Context, query, locationHint string) (*gateway.PriceResult, error)
	AnalyzeSaleImage(ctx context.Context, image []byte, mimeType string) (*gateway.SaleAnalysis, error)
}

// ContributionResult reports the outcome of a sale-photo contribution.
// A rejected contribution is a normal negative outcome, not an error.
type ContributionResult struct {
	Accepted     bool   `json:"accepted"`
	Reason       string `json:"reason,omitempty"`
	Product      string `json:"product,omitempty"`
	UpdatedItems int    `json:"updatedItems"`
}

// SyncService owns the shopping-list lifecycle: adding items with an
// initial resolved price, user mutations, and propagating newly
// contributed offers into affected lists.
type SyncService interface {
	ListItems(ctx context.Context, userID uuid.UUID) ([]*domain.ShoppingListItem, error)
	AddItem(ctx context.Context, userID uuid.UUID, query, city string) (*domain.ShoppingListItem, error)
	SetChecked(ctx context.Context, userID, itemID uuid.UUID, checked bool) error
	DeleteItem(ctx context.Context, userID, itemID uuid.UUID) error
	PropagateNewOffers(ctx context.Context, userID uuid.UUID) (int, error)
	PropagateProduct(ctx context.Context, productName string) (int, error)
	RecordContribution(ctx context.Context, image []byte, mimeType, storeID string) (*ContributionResult, error)
}

type syncService struct {
	items    repository.ShoppingListRepository
	products repository.ProductRepository
	resolver *resolver.CatalogResolver
	lookup   PriceLookup
	logger   *zap.Logger
}

// NewSyncService creates a new instance of SyncService
func NewSyncService(
	items repository.ShoppingListRepository,
	products repository.ProductRepository,
	lookup PriceLookup,
	logger *zap.Logger,
) SyncService {
	return &syncService{
		items:    items,
		products: products,
		resolver: resolver.NewCatalogResolver(products),
		lookup:   lookup,
		logger:   logger,
	}
}

// ListItems returns the user's shopping list, newest first.
func (s *syncService) ListItems(ctx context.Context, userID uuid.UUID) ([]*domain.ShoppingListItem, error) {
	items, err := s.items.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

// AddItem resolves an initial price for the query and adds the item to
// the user's list. When the lookup finds nothing the item is still added
// with a placeholder price so the user keeps their entry.
func (s *syncService) AddItem(ctx context.Context, userID uuid.UUID, query, city string) (*domain.ShoppingListItem, error) {
	item := &domain.ShoppingListItem{
		ID:       uuid.New(),
		UserID:   userID,
		ItemName: query,
		AddedAt:  time.Now(),
	}

	result, err := s.lookup.LookupBestPrice(ctx, query, city)
	switch {
	case err == nil:
		item.ItemName = result.ItemName
		item.Price = result.LowestPrice
		item.StoreID = result.StoreID
		item.SourceIconURL = result.SourceIconURL
	case errors.Is(err, gateway.ErrNoResults):
		s.logger.Info("No price found for new item, adding placeholder",
			zap.String("query", query),
			zap.String("user_id", userID.String()),
		)
	default:
		return nil, err
	}

	if err := s.items.Insert(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to add item: %w", err)
	}

	return item, nil
}

// SetChecked toggles an item's checked flag.
func (s *syncService) SetChecked(ctx context.Context, userID, itemID uuid.UUID, checked bool) error {
	return s.items.SetChecked(ctx, userID, itemID, checked)
}

// DeleteItem removes an item from the user's list.
func (s *syncService) DeleteItem(ctx context.Context, userID, itemID uuid.UUID) error {
	return s.items.Delete(ctx, userID, itemID)
}

// PropagateNewOffers re-resolves every item on the user's list against
// the catalog and persists the changed rows as one atomic batch. It
// returns the number of items actually changed; when nothing changed no
// write is issued at all.
func (s *syncService) PropagateNewOffers(ctx context.Context, userID uuid.UUID) (int, error) {
	items, err := s.items.ListByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load shopping list: %w", err)
	}

	updates := []repository.PriceUpdate{}
	for _, item := range items {
		resolved, err := s.resolver.Resolve(ctx, item)
		if err != nil {
			return 0, fmt.Errorf("failed to resolve item %s: %w", item.ID, err)
		}

		if resolved.Price == item.Price && resolved.StoreID == item.StoreID && resolved.OnSale == item.OnSale {
			continue
		}

		updates = append(updates, repository.PriceUpdate{ItemID: item.ID, Resolved: resolved})
	}

	if len(updates) == 0 {
		return 0, nil
	}

	if err := s.items.BatchUpdatePrices(ctx, userID, updates); err != nil {
		return 0, fmt.Errorf("failed to apply price updates: %w", err)
	}

	s.logger.Info("Propagated offers to shopping list",
		zap.String("user_id", userID.String()),
		zap.Int("updated", len(updates)),
	)

	return len(updates), nil
}

// PropagateProduct pushes the catalog's current best offer for one
// product into every list containing a matching item.
func (s *syncService) PropagateProduct(ctx context.Context, productName string) (int, error) {
	userIDs, err := s.items.UsersWithItemName(ctx, productName)
	if err != nil {
		return 0, fmt.Errorf("failed to find affected users: %w", err)
	}

	total := 0
	for _, userID := range userIDs {
		updated, err := s.PropagateNewOffers(ctx, userID)
		if err != nil {
			return total, err
		}
		total += updated
	}

	return total, nil
}

// RecordContribution analyzes a sale photo, records the extracted offer
// in the catalog, and propagates it to every affected shopping list.
func (s *syncService) RecordContribution(ctx context.Context, image []byte, mimeType, storeID string) (*ContributionResult, error) {
	analysis, err := s.lookup.AnalyzeSaleImage(ctx, image, mimeType)
	if err != nil {
		return nil, err
	}

	if !analysis.Actionable() {
		reason := "the photo does not show a valid store sale"
		if analysis.IsValidSale {
			reason = "the analysis was not confident enough"
		}
		return &ContributionResult{Accepted: false, Reason: reason}, nil
	}

	if analysis.Product == "" {
		return &ContributionResult{Accepted: false, Reason: "could not identify the product on sale"}, nil
	}

	product, err := s.products.GetOrCreate(ctx, analysis.Product)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create product: %w", err)
	}

	offer := offerFromAnalysis(analysis, storeID)
	if _, err := s.products.RecordOffer(ctx, product.ID, offer); err != nil {
		return nil, fmt.Errorf("failed to record offer: %w", err)
	}

	updated, err := s.PropagateProduct(ctx, analysis.Product)
	if err != nil {
		// The offer is durable; propagation can be retried by the caller.
		s.logger.Error("Failed to propagate contributed offer",
			zap.String("product", analysis.Product),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("Contribution recorded",
		zap.String("product", analysis.Product),
		zap.String("store_id", storeID),
		zap.Int("updated_items", updated),
	)

	return &ContributionResult{
		Accepted:     true,
		Product:      product.Name,
		UpdatedItems: updated,
	}, nil
}

// offerFromAnalysis maps model output to an offer. A missing sale price
// falls back to the regular price with the sale flag cleared, so a
// photo of a plain shelf tag still contributes a price observation.
func offerFromAnalysis(analysis *gateway.SaleAnalysis, storeID string) *domain.Offer {
	offer := &domain.Offer{
		StoreID:      storeID,
		RegularPrice: analysis.RegularPrice,
		SalePrice:    analysis.SalePrice,
		OnSale:       analysis.SalePrice > 0,
	}

	if offer.SalePrice == 0 && offer.RegularPrice > 0 {
		offer.SalePrice = offer.RegularPrice
	}
	if offer.RegularPrice == 0 && offer.SalePrice > 0 {
		offer.RegularPrice = offer.SalePrice
	}

	return offer
}
