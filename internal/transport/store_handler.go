package transport

import (
	"errors"
	"net/http"
	"strconv"

	"smartbasket/internal/geo"
	"smartbasket/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// defaultNearbyRadiusKm is used when the caller does not pass max_km.
const defaultNearbyRadiusKm = 10

// StoreHandler handles HTTP requests for store discovery
type StoreHandler struct {
	index  *geo.StoreIndex
	logger *zap.Logger
}

// NewStoreHandler creates a new StoreHandler
func NewStoreHandler(index *geo.StoreIndex, logger *zap.Logger) *StoreHandler {
	return &StoreHandler{
		index:  index,
		logger: logger,
	}
}

// RegisterRoutes registers all store routes
func (h *StoreHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/stores/nearby", h.Nearby)
}

// Nearby returns registered stores within max_km of the caller's
// position, closest first.
func (h *StoreHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "lat must be a number")
		return
	}

	lon, err := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "lon must be a number")
		return
	}

	maxKm := float64(defaultNearbyRadiusKm)
	if raw := r.URL.Query().Get("max_km"); raw != "" {
		maxKm, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "max_km must be a number")
			return
		}
	}

	stores, err := h.index.FindNearby(lat, lon, maxKm)
	if err != nil {
		if errors.Is(err, geo.ErrInvalidCoordinates) {
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Failed to find nearby stores", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to find nearby stores")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, stores)
}
