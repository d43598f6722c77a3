// Package httpapi is the HTTP transport: routing, auth middleware and the
// JSON mapping between requests and the application services.
package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	appauth "github.com/storefront-go/storefront/internal/application/auth"
	appcart "github.com/storefront-go/storefront/internal/application/cart"
	"github.com/storefront-go/storefront/internal/application/catalog"
	"github.com/storefront-go/storefront/internal/application/checkout"
	"github.com/storefront-go/storefront/internal/application/orders"
)

type Handler struct {
	auth     *appauth.Service
	catalog  *catalog.Service
	carts    *appcart.Service
	checkout *checkout.Service
	orders   *orders.Service
	log      *zap.Logger
	metrics  *Metrics
}

func NewHandler(
	auth *appauth.Service,
	catalog *catalog.Service,
	carts *appcart.Service,
	checkoutSvc *checkout.Service,
	ordersSvc *orders.Service,
	logger *zap.Logger,
	metrics *Metrics,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		auth:     auth,
		catalog:  catalog,
		carts:    carts,
		checkout: checkoutSvc,
		orders:   ordersSvc,
		log:      logger.With(zap.String("component", "http_server")),
		metrics:  metrics,
	}
}

func (h *Handler) Router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	// Outermost first: request logger -> trace -> metrics -> access log.
	api.Use(h.withRequestLogger, h.withTrace, h.withMetrics, h.withAccessLog)

	api.HandleFunc("/auth/register", h.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/products", h.handleListProducts).Methods(http.MethodGet)
	api.HandleFunc("/products/{id:[0-9]+}", h.handleGetProduct).Methods(http.MethodGet)

	authed := api.NewRoute().Subrouter()
	authed.Use(h.requireAuth)
	authed.HandleFunc("/auth/me", h.handleMe).Methods(http.MethodGet)
	authed.HandleFunc("/cart", h.handleGetCart).Methods(http.MethodGet)
	authed.HandleFunc("/cart", h.handleClearCart).Methods(http.MethodDelete)
	authed.HandleFunc("/cart/items", h.handleAddCartItem).Methods(http.MethodPost)
	authed.HandleFunc("/cart/items/{id:[0-9]+}", h.handleUpdateCartItem).Methods(http.MethodPut)
	authed.HandleFunc("/cart/items/{id:[0-9]+}", h.handleRemoveCartItem).Methods(http.MethodDelete)
	authed.HandleFunc("/orders", h.handlePlaceOrder).Methods(http.MethodPost)
	authed.HandleFunc("/orders", h.handleListOrders).Methods(http.MethodGet)
	authed.HandleFunc("/orders/{id:[0-9]+}", h.handleGetOrder).Methods(http.MethodGet)

	admin := api.NewRoute().Subrouter()
	admin.Use(h.requireAuth, h.requireAdmin)
	admin.HandleFunc("/products", h.handleCreateProduct).Methods(http.MethodPost)
	admin.HandleFunc("/products/{id:[0-9]+}", h.handleUpdateProduct).Methods(http.MethodPut)
	admin.HandleFunc("/products/{id:[0-9]+}", h.handleDeleteProduct).Methods(http.MethodDelete)
	admin.HandleFunc("/orders/admin/all", h.handleListAllOrders).Methods(http.MethodGet)
	admin.HandleFunc("/orders/admin/{id:[0-9]+}/status", h.handleUpdateOrderStatus).Methods(http.MethodPatch)

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
