package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"smartbasket/internal/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// onlineMarketplaces are sources excluded from price selection: online
// only marketplaces and delivery aggregators whose prices a shopper
// cannot walk into a store for. Matched case-insensitively as substrings.
var onlineMarketplaces = []string{
	"amazon",
	"ebay",
	"aliexpress",
	"wish",
	"instacart",
	"doordash",
	"uber eats",
}

// PriceResult is the structured outcome of a best-price lookup.
type PriceResult struct {
	ItemName      string `json:"itemName"`
	LowestPrice   string `json:"lowestPrice"`
	StoreID       string `json:"storeId"`
	SourceIconURL string `json:"sourceIconUrl"`
}

// SaleAnalysis is the structured outcome of a sale-photo analysis.
type SaleAnalysis struct {
	IsValidSale  bool    `json:"isValidSale"`
	Product      string  `json:"product"`
	RegularPrice float64 `json:"regularPrice"`
	SalePrice    float64 `json:"salePrice"`
	Confidence   float64 `json:"confidence"`
}

// saleConfidenceThreshold is the minimum model confidence for a
// contribution to be actionable.
const saleConfidenceThreshold = 0.7

// Actionable reports whether the analysis should produce an offer: the
// model must be confident it saw a real sale, and at least one of
// product, regular price or sale price must be present.
func (a SaleAnalysis) Actionable() bool {
	if !a.IsValidSale || a.Confidence <= saleConfidenceThreshold {
		return false
	}
	return a.Product != "" || a.RegularPrice > 0 || a.SalePrice > 0
}

// Lookup orchestrates the external price search and model calls into
// the structured data the rest of the system consumes. It parses
// untrusted model output defensively and never fabricates fields.
type Lookup struct {
	search SearchProvider
	text   TextGenerator
	vision VisionAnalyzer
	cache  *lookupCache
	cfg    config.LookupConfig
	logger *zap.Logger
}

// NewLookup creates the gateway. redisClient may be nil to disable the
// lookup cache.
func NewLookup(
	search SearchProvider,
	text TextGenerator,
	vision VisionAnalyzer,
	redisClient *redis.Client,
	cfg config.LookupConfig,
	logger *zap.Logger,
) *Lookup {
	l := &Lookup{
		search: search,
		text:   text,
		vision: vision,
		cfg:    cfg,
		logger: logger,
	}
	if redisClient != nil {
		l.cache = newLookupCache(redisClient, cfg.CacheTTL)
	}
	return l
}

// LookupBestPrice finds the lowest in-store price for a query. Sponsored
// listings and online-only marketplaces are excluded before the model
// picks a winner. locationHint is optional (a city name).
func (l *Lookup) LookupBestPrice(ctx context.Context, query, locationHint string) (*PriceResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", ErrInvalidInput)
	}

	if l.cache != nil {
		cached, err := l.cache.Get(ctx, query, locationHint)
		if err != nil {
			l.logger.Warn("Lookup cache read failed", zap.Error(err))
		} else if cached != nil {
			l.logger.Debug("Lookup cache hit", zap.String("query", query))
			return cached, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, l.cfg.Timeout)
	defer cancel()

	listings, err := l.search.Search(ctx, query, locationHint, l.cfg.MaxListings)
	if err != nil {
		return nil, err
	}

	usable := filterListings(listings)
	if len(usable) == 0 {
		return nil, ErrNoResults
	}

	result, err := l.selectLowestPrice(ctx, query, usable)
	if err != nil {
		return nil, err
	}

	if l.cache != nil {
		if err := l.cache.Set(ctx, query, locationHint, result); err != nil {
			l.logger.Warn("Lookup cache write failed", zap.Error(err))
		}
	}

	return result, nil
}

// filterListings drops sponsored listings and denylisted sources.
func filterListings(listings []Listing) []Listing {
	usable := []Listing{}
	for _, listing := range listings {
		if listing.Sponsored {
			continue
		}
		if isOnlineMarketplace(listing.Source) {
			continue
		}
		usable = append(usable, listing)
	}
	return usable
}

func isOnlineMarketplace(source string) bool {
	s := strings.ToLower(source)
	for _, name := range onlineMarketplaces {
		if strings.Contains(s, name) {
			return true
		}
	}
	return false
}

func (l *Lookup) selectLowestPrice(ctx context.Context, query string, listings []Listing) (*PriceResult, error) {
	data, err := json.MarshalIndent(listings, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode listings: %w", err)
	}

	prompt := fmt.Sprintf(`Analyze the following shopping results for the query %q.
Find the physical store with the lowest price for the item, preferring recognized large retailers.
Provide the result in the following JSON format and nothing else:
{
  "itemName": "The name of the item",
  "lowestPrice": "The lowest price found (as a string with 2 decimal places)",
  "storeId": "The name of the store with the lowest price",
  "sourceIconUrl": "The store logo URL from the chosen listing, or an empty string"
}

Here are the results:
%s`, query, data)

	raw, err := l.text.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var result PriceResult
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &result); err != nil {
		l.logger.Error("Failed to parse price selection", zap.String("raw", raw), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if result.ItemName == "" || result.LowestPrice == "" || result.StoreID == "" {
		l.logger.Error("Price selection missing required fields", zap.String("raw", raw))
		return nil, fmt.Errorf("%w: missing required field", ErrInvalidResponse)
	}

	// Do not let an unvalidated number flow into monetary state.
	price, err := strconv.ParseFloat(strings.TrimPrefix(strings.TrimSpace(result.LowestPrice), "$"), 64)
	if err != nil || price <= 0 {
		l.logger.Error("Price selection has non-numeric price", zap.String("raw", raw))
		return nil, fmt.Errorf("%w: lowestPrice is not a positive number", ErrInvalidResponse)
	}
	result.LowestPrice = strconv.FormatFloat(price, 'f', 2, 64)

	return &result, nil
}

// AnalyzeSaleImage asks the vision model whether the photo shows a store
// sale and extracts the product and prices. A low-confidence or invalid
// sale is a rejected contribution, not an error; callers check
// Actionable on the result.
func (l *Lookup) AnalyzeSaleImage(ctx context.Context, image []byte, mimeType string) (*SaleAnalysis, error) {
	if len(image) == 0 || mimeType == "" {
		return nil, fmt.Errorf("%w: image and mimeType are required", ErrInvalidInput)
	}

	ctx, cancel := context.WithTimeout(ctx, l.cfg.Timeout)
	defer cancel()

	instructions := `Analyze this image. Is it a store sale? What product? What are the regular and sale prices?
Respond with JSON only: {"isValidSale": bool, "product": string, "regularPrice": number, "salePrice": number, "confidence": number}`

	raw, err := l.vision.AnalyzeImage(ctx, instructions, image, mimeType)
	if err != nil {
		return nil, err
	}

	var analysis SaleAnalysis
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &analysis); err != nil {
		l.logger.Error("Failed to parse sale analysis", zap.String("raw", raw), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if analysis.RegularPrice < 0 || analysis.SalePrice < 0 || analysis.Confidence < 0 || analysis.Confidence > 1 {
		l.logger.Error("Sale analysis has out-of-range numbers", zap.String("raw", raw))
		return nil, fmt.Errorf("%w: numeric field out of range", ErrInvalidResponse)
	}

	return &analysis, nil
}
