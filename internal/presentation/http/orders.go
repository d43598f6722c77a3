package httpapi

import (
	"net/http"

	"github.com/storefront-go/storefront/internal/domain/order"
)

type placeOrderRequest struct {
	PaymentMethod  string            `json:"payment_method"`
	PaymentDetails map[string]string `json:"payment_details"`
}

func (h *Handler) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	u, _ := userFrom(r.Context())

	var req placeOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	o, err := h.checkout.PlaceOrder(r.Context(), u.ID, req.PaymentMethod, req.PaymentDetails)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(o))
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	u, _ := userFrom(r.Context())

	offset, limit := pageParams(r)
	list, err := h.orders.ListForUser(r.Context(), u.ID, offset, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderListResponse(list))
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	u, _ := userFrom(r.Context())

	o, err := h.orders.Get(r.Context(), u.ID, u.Admin, pathID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) handleListAllOrders(w http.ResponseWriter, r *http.Request) {
	offset, limit := pageParams(r)
	list, err := h.orders.ListAll(r.Context(), offset, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderListResponse(list))
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateOrderStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), pathID(r), order.Status(req.Status))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func toOrderListResponse(list []order.Order) []orderResponse {
	resp := make([]orderResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toOrderResponse(&list[i]))
	}
	return resp
}
