package transport

import (
	"errors"
	"net/http"

	"smartbasket/internal/gateway"
	"smartbasket/internal/middleware"
	"smartbasket/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SearchProductRequest represents the product search request payload.
// City is the preferred location hint; when absent and coordinates are
// present the server reverse-geocodes them.
type SearchProductRequest struct {
	Query     string   `json:"query" validate:"required"`
	City      string   `json:"city"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// LookupHandler handles HTTP requests for product price search
type LookupHandler struct {
	lookup   service.PriceLookup
	geocoder gateway.Geocoder
	logger   *zap.Logger
}

// NewLookupHandler creates a new LookupHandler
func NewLookupHandler(lookup service.PriceLookup, geocoder gateway.Geocoder, logger *zap.Logger) *LookupHandler {
	return &LookupHandler{
		lookup:   lookup,
		geocoder: geocoder,
		logger:   logger,
	}
}

// RegisterRoutes registers all lookup routes
func (h *LookupHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/search-product", h.Search)
}

// Search finds the lowest advertised price for a product near the caller
func (h *LookupHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	city := req.City
	if city == "" && req.Latitude != nil && req.Longitude != nil {
		resolved, err := h.geocoder.CityFromCoordinates(r.Context(), *req.Latitude, *req.Longitude)
		if err != nil {
			// A failed geocode degrades to an unlocated search.
			h.logger.Warn("Reverse geocoding failed", zap.Error(err))
		} else {
			city = resolved
		}
	}

	result, err := h.lookup.LookupBestPrice(r.Context(), req.Query, city)
	if err != nil {
		switch {
		case errors.Is(err, gateway.ErrInvalidInput):
			middleware.RespondWithError(w, http.StatusBadRequest, "query is required")
		case errors.Is(err, gateway.ErrNoResults):
			middleware.RespondWithError(w, http.StatusNotFound, "no listings found for this product")
		default:
			h.logger.Error("Product lookup failed", zap.String("query", req.Query), zap.Error(err))
			middleware.RespondWithError(w, http.StatusBadGateway, "product search is currently unavailable")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, result)
}
