package handlers

import (
	"context"
	"net/http"

	"github.com/alzy/commerce-api/internal/logging"
	"github.com/alzy/commerce-api/internal/services"
	"github.com/alzy/commerce-api/types"
	"github.com/go-chi/chi/v5"
)

// CartService is the cart use-case surface used by the handlers.
type CartService interface {
	List(ctx context.Context, userID int) ([]types.CartItem, error)
	Add(ctx context.Context, userID int, in services.CartAddInput) (types.CartItem, error)
	UpdateQuantity(ctx context.Context, userID, productID int, in services.CartUpdateInput) (types.CartItem, error)
	Remove(ctx context.Context, userID, productID int) error
}

// CartHandler serves the caller's own cart.
type CartHandler struct {
	cart   CartService
	logger logging.Logger
}

func NewCartHandler(cart CartService, logger logging.Logger) *CartHandler {
	return &CartHandler{cart: cart, logger: logger}
}

// CartRouter registers cart routes on the given router.
func CartRouter(r chi.Router, cart CartService, requireAuth func(http.Handler) http.Handler, logger logging.Logger) {
	handler := NewCartHandler(cart, logger)

	r.Use(requireAuth)
	r.Get("/", handler.ListItems)
	r.Post("/", handler.AddItem)
	r.Put("/{productID}", handler.UpdateItem)
	r.Delete("/{productID}", handler.RemoveItem)
}

func (h *CartHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromRequest(w, r)
	if !ok {
		return
	}

	items, err := h.cart.List(r.Context(), identity.ID)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "cart item")
		return
	}

	writeJSON(w, http.StatusOK, items)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromRequest(w, r)
	if !ok {
		return
	}

	var req services.CartAddInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.cart.Add(r.Context(), identity.ID, req)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "product")
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromRequest(w, r)
	if !ok {
		return
	}

	productID, err := parseIDParam(r, "productID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req services.CartUpdateInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.cart.UpdateQuantity(r.Context(), identity.ID, productID, req)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "cart item")
		return
	}

	writeJSON(w, http.StatusOK, item)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromRequest(w, r)
	if !ok {
		return
	}

	productID, err := parseIDParam(r, "productID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.cart.Remove(r.Context(), identity.ID, productID); err != nil {
		writeServiceError(w, r, h.logger, err, "cart item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
