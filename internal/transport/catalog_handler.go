package transport

import (
	"errors"
	"net/http"

	"smartbasket/internal/domain"
	"smartbasket/internal/middleware"
	"smartbasket/internal/repository"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductOffersResponse is a product plus its full offer log
type ProductOffersResponse struct {
	Product *domain.Product `json:"product"`
	Offers  []*domain.Offer `json:"offers"`
}

// CatalogHandler exposes the crowd-sourced catalog for inspection
type CatalogHandler struct {
	products repository.ProductRepository
	logger   *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(products repository.ProductRepository, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		products: products,
		logger:   logger,
	}
}

// RegisterRoutes registers all catalog routes. The raw offer log is
// admin-only; regular clients only ever see resolved prices.
func (h *CatalogHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(middleware.RequireAdmin(h.logger))
		r.Get("/api/products/{name}/offers", h.Offers)
	})
}

// Offers returns a product and its append-only offer log, newest first
func (h *CatalogHandler) Offers(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	product, err := h.products.FindByName(r.Context(), name)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to find product", zap.String("name", name), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load product")
		return
	}

	offers, err := h.products.ListOffers(r.Context(), product.ID)
	if err != nil {
		h.logger.Error("Failed to list offers", zap.String("name", name), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load offers")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductOffersResponse{
		Product: product,
		Offers:  offers,
	})
}
