package resolver

import (
	"strconv"
	"testing"

	"smartbasket/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestResolve_NoMatchLeavesItemUnchanged(t *testing.T) {
	item := &domain.ShoppingListItem{
		ItemName: "Bread",
		Price:    "3.49",
		StoreID:  "Walmart",
		OnSale:   false,
	}

	resolved := Resolve(item, nil)

	if resolved.Price != "3.49" || resolved.StoreID != "Walmart" || resolved.OnSale {
		t.Errorf("Expected item unchanged, got %+v", resolved)
	}
}

func TestResolve_LowerSalePriceWins(t *testing.T) {
	item := &domain.ShoppingListItem{
		ItemName: "Milk",
		Price:    "4.00",
		StoreID:  "Costco",
	}
	best := &domain.Offer{
		OnSale:    true,
		SalePrice: 2.99,
		StoreID:   "Walmart",
	}

	resolved := Resolve(item, best)

	if resolved.Price != "2.99" {
		t.Errorf("Expected price 2.99, got %s", resolved.Price)
	}
	if resolved.StoreID != "Walmart" {
		t.Errorf("Expected store Walmart, got %s", resolved.StoreID)
	}
	if !resolved.OnSale {
		t.Error("Expected onSale to be true")
	}
}

func TestResolve_HigherSalePriceIgnored(t *testing.T) {
	item := &domain.ShoppingListItem{
		ItemName: "Milk",
		Price:    "2.50",
		StoreID:  "Costco",
		OnSale:   true,
	}
	best := &domain.Offer{
		OnSale:    true,
		SalePrice: 2.99,
		StoreID:   "Walmart",
	}

	resolved := Resolve(item, best)

	if resolved.Price != "2.50" || resolved.StoreID != "Costco" {
		t.Errorf("Expected existing price kept, got %+v", resolved)
	}
}

func TestResolve_UnpricedItemTakesAnySaleOffer(t *testing.T) {
	cases := []string{"", "0", "0.00", "not-a-price"}

	for _, price := range cases {
		item := &domain.ShoppingListItem{ItemName: "Eggs", Price: price}
		best := &domain.Offer{OnSale: true, SalePrice: 5.49, StoreID: "Costco"}

		resolved := Resolve(item, best)

		if resolved.Price != "5.49" || resolved.StoreID != "Costco" || !resolved.OnSale {
			t.Errorf("Price %q: expected sale offer applied, got %+v", price, resolved)
		}
	}
}

func TestResolve_OffSaleOfferIgnored(t *testing.T) {
	item := &domain.ShoppingListItem{ItemName: "Rice", Price: "8.00", StoreID: "Costco"}
	best := &domain.Offer{OnSale: false, SalePrice: 1.00, StoreID: "Walmart"}

	resolved := Resolve(item, best)

	if resolved.Price != "8.00" || resolved.StoreID != "Costco" || resolved.OnSale {
		t.Errorf("Expected off-sale offer ignored, got %+v", resolved)
	}
}

func TestResolve_PriceFormattedToTwoDecimals(t *testing.T) {
	item := &domain.ShoppingListItem{ItemName: "Cheese"}
	best := &domain.Offer{OnSale: true, SalePrice: 3.5, StoreID: "Walmart"}

	resolved := Resolve(item, best)

	if resolved.Price != "3.50" {
		t.Errorf("Expected 3.50, got %s", resolved.Price)
	}
}

func TestProperty_ResolvedPriceNeverIncreases(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("resolving never raises a priced item", prop.ForAll(
		func(currentCents int, offerCents int) bool {
			item := &domain.ShoppingListItem{
				ItemName: "Apples",
				Price:    domain.FormatPrice(float64(currentCents) / 100),
				StoreID:  "Costco",
			}
			best := &domain.Offer{
				OnSale:    true,
				SalePrice: float64(offerCents) / 100,
				StoreID:   "Walmart",
			}

			resolved := Resolve(item, best)

			before, _ := strconv.ParseFloat(item.Price, 64)
			after, err := strconv.ParseFloat(resolved.Price, 64)
			if err != nil {
				t.Logf("FAIL: resolved price %q is not numeric", resolved.Price)
				return false
			}

			if after > before {
				t.Logf("FAIL: price increased from %s to %s", item.Price, resolved.Price)
				return false
			}
			return true
		},
		gen.IntRange(1, 100000),
		gen.IntRange(1, 100000),
	))

	properties.Property("resolving is idempotent", prop.ForAll(
		func(currentCents int, offerCents int) bool {
			item := &domain.ShoppingListItem{
				ItemName: "Apples",
				Price:    domain.FormatPrice(float64(currentCents) / 100),
				StoreID:  "Costco",
			}
			best := &domain.Offer{
				OnSale:    true,
				SalePrice: float64(offerCents) / 100,
				StoreID:   "Walmart",
			}

			first := Resolve(item, best)

			next := &domain.ShoppingListItem{
				ItemName: item.ItemName,
				Price:    first.Price,
				StoreID:  first.StoreID,
				OnSale:   first.OnSale,
			}
			second := Resolve(next, best)

			if second != first {
				t.Logf("FAIL: second resolve changed result: %+v vs %+v", first, second)
				return false
			}
			return true
		},
		gen.IntRange(1, 100000),
		gen.IntRange(1, 100000),
	))

	properties.TestingRun(t)
}
