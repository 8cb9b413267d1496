package transport

import (
	"encoding/base64"
	"net/http"

	"smartbasket/internal/middleware"
	"smartbasket/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ContributionRequest represents a sale-photo contribution payload.
// The image travels base64-encoded in the JSON body.
type ContributionRequest struct {
	Image    string `json:"image" validate:"required"`
	MimeType string `json:"mimeType" validate:"required"`
	StoreID  string `json:"storeId" validate:"required"`
}

// ContributionHandler handles HTTP requests for sale-photo contributions
type ContributionHandler struct {
	syncService service.SyncService
	logger      *zap.Logger
}

// NewContributionHandler creates a new ContributionHandler
func NewContributionHandler(syncService service.SyncService, logger *zap.Logger) *ContributionHandler {
	return &ContributionHandler{
		syncService: syncService,
		logger:      logger,
	}
}

// RegisterRoutes registers all contribution routes
func (h *ContributionHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/api/contributions", h.Contribute)
	})
}

// Contribute analyzes a sale photo and, when it shows a genuine sale,
// records the offer and propagates it to affected shopping lists.
func (h *ContributionHandler) Contribute(w http.ResponseWriter, r *http.Request) {
	if _, ok := authenticatedUserID(w, r, h.logger); !ok {
		return
	}

	var req ContributionRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	image, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "image must be base64 encoded")
		return
	}

	result, err := h.syncService.RecordContribution(r.Context(), image, req.MimeType, req.StoreID)
	if err != nil {
		h.logger.Error("Failed to process contribution", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadGateway, "failed to process contribution")
		return
	}

	status := http.StatusOK
	if result.Accepted {
		status = http.StatusAccepted
	}
	middleware.RespondWithJSON(w, status, result)
}
