package transport

import (
	"errors"
	"net/http"

	"smartbasket/internal/middleware"
	"smartbasket/internal/repository"
	"smartbasket/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddItemRequest represents the add-item request payload
type AddItemRequest struct {
	Query string `json:"query" validate:"required"`
	City  string `json:"city"`
}

// ToggleItemRequest represents the checked-toggle request payload
type ToggleItemRequest struct {
	Checked *bool `json:"checked" validate:"required"`
}

// RefreshResponseBody reports how many items a refresh changed
type RefreshResponseBody struct {
	Updated int `json:"updated"`
}

// ShoppingListHandler handles HTTP requests for shopping-list operations
type ShoppingListHandler struct {
	syncService service.SyncService
	logger      *zap.Logger
}

// NewShoppingListHandler creates a new ShoppingListHandler
func NewShoppingListHandler(syncService service.SyncService, logger *zap.Logger) *ShoppingListHandler {
	return &ShoppingListHandler{
		syncService: syncService,
		logger:      logger,
	}
}

// RegisterRoutes registers all shopping-list routes
func (h *ShoppingListHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/shopping-list", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.List)
		r.Post("/", h.Add)
		r.Post("/refresh", h.Refresh)
		r.Patch("/{itemID}", h.Toggle)
		r.Delete("/{itemID}", h.Delete)
	})
}

// List returns the authenticated user's shopping list
func (h *ShoppingListHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUserID(w, r, h.logger)
	if !ok {
		return
	}

	items, err := h.syncService.ListItems(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list shopping items", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load shopping list")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, items)
}

// Add resolves an initial price for the query and adds the item
func (h *ShoppingListHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUserID(w, r, h.logger)
	if !ok {
		return
	}

	var req AddItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.syncService.AddItem(r.Context(), userID, req.Query, req.City)
	if err != nil {
		h.logger.Error("Failed to add shopping item", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadGateway, "failed to add item")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, item)
}

// Toggle sets an item's checked flag
func (h *ShoppingListHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUserID(w, r, h.logger)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid item ID")
		return
	}

	var req ToggleItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.syncService.SetChecked(r.Context(), userID, itemID, *req.Checked); err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "item not found")
			return
		}
		h.logger.Error("Failed to toggle shopping item", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update item")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]bool{"checked": *req.Checked})
}

// Delete removes an item from the user's list
func (h *ShoppingListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUserID(w, r, h.logger)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid item ID")
		return
	}

	if err := h.syncService.DeleteItem(r.Context(), userID, itemID); err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "item not found")
			return
		}
		h.logger.Error("Failed to delete shopping item", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Refresh re-resolves the user's list against the catalog
func (h *ShoppingListHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUserID(w, r, h.logger)
	if !ok {
		return
	}

	updated, err := h.syncService.PropagateNewOffers(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to refresh shopping list", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to refresh shopping list")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, RefreshResponseBody{Updated: updated})
}

// authenticatedUserID extracts and parses the user ID the auth
// middleware stored in the request context, responding with an error
// when it is missing or malformed.
func authenticatedUserID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	userIDStr, ok := middleware.GetUserID(r.Context())
	if !ok {
		logger.Error("User ID not found in context")
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		logger.Error("Invalid user ID format", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid user ID")
		return uuid.Nil, false
	}

	return userID, true
}
