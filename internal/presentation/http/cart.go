package httpapi

import "net/http"

type addCartItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	u, _ := userFrom(r.Context())
	view, err := h.carts.Details(r.Context(), u.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(view))
}

func (h *Handler) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	u, _ := userFrom(r.Context())

	var req addCartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.carts.AddItem(r.Context(), u.ID, req.ProductID, req.Quantity)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(view))
}

func (h *Handler) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	u, _ := userFrom(r.Context())

	var req updateCartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.carts.UpdateItem(r.Context(), u.ID, pathID(r), req.Quantity)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(view))
}

func (h *Handler) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	u, _ := userFrom(r.Context())

	view, err := h.carts.RemoveItem(r.Context(), u.ID, pathID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(view))
}

func (h *Handler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	u, _ := userFrom(r.Context())
	if err := h.carts.Clear(r.Context(), u.ID); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
