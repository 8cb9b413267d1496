package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ShoppingListItem is a single row on a user's shopping list. The price
// is carried as a fixed two-decimal string; an empty string means the
// item has not been priced yet.
type ShoppingListItem struct {
	ID            uuid.UUID `json:"id" db:"id"`
	UserID        uuid.UUID `json:"user_id" db:"user_id"`
	ItemName      string    `json:"itemName" db:"item_name"`
	Checked       bool      `json:"checked" db:"checked"`
	OnSale        bool      `json:"onSale" db:"on_sale"`
	StoreID       string    `json:"storeId" db:"store_id"`
	Price         string    `json:"price" db:"price"`
	SourceIconURL string    `json:"sourceIconUrl" db:"source_icon_url"`
	AddedAt       time.Time `json:"addedAt" db:"added_at"`
}

// PriceValue parses the item's price string. The second return value is
// false when the item is unpriced (empty or unparsable price).
func (i ShoppingListItem) PriceValue() (float64, bool) {
	p, err := strconv.ParseFloat(strings.TrimSpace(i.Price), 64)
	if err != nil || p <= 0 {
		return 0, false
	}
	return p, true
}

// Product is a crowd-sourced catalog entry, created lazily the first
// time a contribution names it. The Best* fields denormalize the
// current best on-sale offer so resolving does not scan the offer log.
type Product struct {
	ID                 uuid.UUID  `json:"id" db:"id"`
	Name               string     `json:"name" db:"name"`
	BestOnSale         bool       `json:"bestOnSale" db:"best_on_sale"`
	BestSalePrice      *float64   `json:"bestSalePrice,omitempty" db:"best_sale_price"`
	BestRegularPrice   *float64   `json:"bestRegularPrice,omitempty" db:"best_regular_price"`
	BestStoreID        *string    `json:"bestStoreId,omitempty" db:"best_store_id"`
	BestOfferUpdatedAt *time.Time `json:"bestOfferUpdatedAt,omitempty" db:"best_offer_updated_at"`
	CreatedAt          time.Time  `json:"createdAt" db:"created_at"`
}

// Offer is one contributed price observation for a product. Offers are
// append-only: newer offers supersede older ones, nothing is mutated.
type Offer struct {
	ID           uuid.UUID `json:"id" db:"id"`
	ProductID    uuid.UUID `json:"productId" db:"product_id"`
	OnSale       bool      `json:"onSale" db:"on_sale"`
	RegularPrice float64   `json:"regularPrice" db:"regular_price"`
	SalePrice    float64   `json:"salePrice" db:"sale_price"`
	StoreID      string    `json:"storeId" db:"store_id"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// ResolvedPrice is the outcome of matching a shopping-list item against
// the catalog: the price, store and sale flag the item should display.
type ResolvedPrice struct {
	Price   string `json:"price"`
	StoreID string `json:"storeId"`
	OnSale  bool   `json:"onSale"`
}

// NormalizeName maps a free-text item or product name to the key used
// for catalog correlation: lowercased and trimmed. Display names keep
// their original casing.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// FormatPrice renders a price the way list items carry it: two decimals.
func FormatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64)
}
