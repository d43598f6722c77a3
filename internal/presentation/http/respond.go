package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	appauth "github.com/storefront-go/storefront/internal/application/auth"
	appcart "github.com/storefront-go/storefront/internal/application/cart"
	"github.com/storefront-go/storefront/internal/application/checkout"
	"github.com/storefront-go/storefront/internal/domain/cart"
	"github.com/storefront-go/storefront/internal/domain/order"
	"github.com/storefront-go/storefront/internal/domain/payment"
	"github.com/storefront-go/storefront/internal/domain/product"
	"github.com/storefront-go/storefront/internal/domain/user"
)

type errorResponse struct {
	Error string `json:"error"`
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps application and domain errors to HTTP responses.
// Internals are never leaked; unknown errors read as a generic 500.
func writeDomainError(w http.ResponseWriter, err error) {
	var (
		notFound     *checkout.ProductNotFoundError
		noStock      *checkout.InsufficientStockError
		declined     *checkout.PaymentDeclinedError
		afterPayment *checkout.AfterPaymentError
	)

	switch {
	case errors.As(err, &afterPayment):
		// Money has moved; the user gets a support reference, never the
		// underlying failure.
		writeError(w, http.StatusInternalServerError,
			"order placement failed after payment, please contact support, reference: "+afterPayment.TransactionID)
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &noStock):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &declined):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, checkout.ErrPaymentTimeout):
		writeError(w, http.StatusGatewayTimeout, "payment timed out, please try again")
	case errors.Is(err, checkout.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, "cannot place an order with an empty cart")
	case errors.Is(err, payment.ErrUnknownMethod), errors.Is(err, payment.ErrInvalidDetails):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, user.ErrEmailTaken),
		errors.Is(err, user.ErrInvalidEmail),
		errors.Is(err, appauth.ErrWeakPassword):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, user.ErrBadCredentials),
		errors.Is(err, user.ErrInactive),
		errors.Is(err, appauth.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, product.ErrNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, cart.ErrNotFound),
		errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, user.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, order.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, product.ErrInsufficientStock),
		errors.Is(err, product.ErrInvalidName),
		errors.Is(err, product.ErrNegativePrice),
		errors.Is(err, product.ErrNegativeStock),
		errors.Is(err, product.ErrInvalidQuantity),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, order.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

type productResponse struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	ImageURL      string          `json:"image_url,omitempty"`
}

func toProductResponse(p *product.Product) productResponse {
	return productResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
		ImageURL:      p.ImageURL,
	}
}

type cartResponse struct {
	CartID int64              `json:"cart_id"`
	Items  []cartItemResponse `json:"items"`
	Total  decimal.Decimal    `json:"total"`
}

type cartItemResponse struct {
	ItemID    int64           `json:"item_id"`
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

func toCartResponse(v *appcart.View) cartResponse {
	resp := cartResponse{CartID: v.CartID, Items: []cartItemResponse{}, Total: v.Total}
	for _, item := range v.Items {
		resp.Items = append(resp.Items, cartItemResponse{
			ItemID:    item.ItemID,
			ProductID: item.ProductID,
			Name:      item.ProductName,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
		})
	}
	return resp
}

type orderResponse struct {
	ID          int64               `json:"id"`
	UserID      int64               `json:"user_id"`
	TotalAmount decimal.Decimal     `json:"total_amount"`
	Status      order.Status        `json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
	Items       []orderLineResponse `json:"items,omitempty"`
}

type orderLineResponse struct {
	ProductID       int64           `json:"product_id"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
}

func toOrderResponse(o *order.Order) orderResponse {
	resp := orderResponse{
		ID:          o.ID,
		UserID:      o.UserID,
		TotalAmount: o.TotalAmount,
		Status:      o.Status,
		CreatedAt:   o.CreatedAt,
	}
	for _, l := range o.Lines {
		resp.Items = append(resp.Items, orderLineResponse{
			ProductID:       l.ProductID,
			Quantity:        l.Quantity,
			PriceAtPurchase: l.PriceAtPurchase,
		})
	}
	return resp
}

type userResponse struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Admin    bool   `json:"is_admin"`
}

func toUserResponse(u *user.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, FullName: u.FullName, Admin: u.Admin}
}
