package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	appauth "github.com/storefront-go/storefront/internal/application/auth"
	appcart "github.com/storefront-go/storefront/internal/application/cart"
	"github.com/storefront-go/storefront/internal/application/catalog"
	"github.com/storefront-go/storefront/internal/application/checkout"
	"github.com/storefront-go/storefront/internal/application/orders"
	"github.com/storefront-go/storefront/internal/domain/user"
	"github.com/storefront-go/storefront/internal/infrastructure/memory"
	"github.com/storefront-go/storefront/internal/infrastructure/payment"
	httpapi "github.com/storefront-go/storefront/internal/presentation/http"
)

type testServer struct {
	*httptest.Server
	products *memory.ProductRepository
}

// newTestServer wires the full stack on in-memory stores with a
// deterministic always-approve payment gateway, plus one seeded admin.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	users := memory.NewUserRepository()
	products := memory.NewProductRepository()
	carts := memory.NewCartRepository()
	orderRepo := memory.NewOrderRepository()

	seedAdmin(t, users)

	charger := payment.NewProcessor(payment.Options{ChargeTimeout: time.Second},
		payment.NewCardStrategy(payment.WithSuccessRate(1), payment.WithLatency(0)),
		payment.NewWalletStrategy(payment.WithSuccessRate(1), payment.WithLatency(0)),
	)

	authService := appauth.NewService(users, "test-secret", time.Hour)
	catalogService := catalog.NewService(products)
	cartService := appcart.NewService(carts, products)
	checkoutService := checkout.NewService(
		cartService, products, orderRepo, charger, memory.TxRunner{}, nil,
		checkout.NewMetrics(prometheus.NewRegistry()),
	)
	orderService := orders.NewService(orderRepo)

	h := httpapi.NewHandler(
		authService, catalogService, cartService, checkoutService, orderService,
		zap.NewNop(), httpapi.NewMetrics(prometheus.NewRegistry()),
	)

	srv := httptest.NewServer(h.Router())
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, products: products}
}

func seedAdmin(t *testing.T, users *memory.UserRepository) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("admin-password"), bcrypt.MinCost)
	require.NoError(t, err)
	admin, err := user.New("admin@example.com", string(hash), "Admin")
	require.NoError(t, err)
	admin.Admin = true
	_, err = users.Create(context.Background(), admin)
	require.NoError(t, err)
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, s.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return resp, raw
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()

	resp, raw := s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "login: %s", raw)

	var body struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	require.NotEmpty(t, body.AccessToken)
	return body.AccessToken
}

func (s *testServer) registerBuyer(t *testing.T) string {
	t.Helper()

	resp, raw := s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "buyer@example.com", "password": "correct horse", "full_name": "Buyer",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "register: %s", raw)
	return s.login(t, "buyer@example.com", "correct horse")
}

func (s *testServer) createProduct(t *testing.T, adminToken, name, price string, stock int) int64 {
	t.Helper()

	resp, raw := s.do(t, http.MethodPost, "/api/v1/products", adminToken, map[string]any{
		"name": name, "description": "", "price": price, "stock_quantity": stock, "image_url": "",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "create product: %s", raw)

	var body struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	return body.ID
}

type orderBody struct {
	ID          int64           `json:"id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      string          `json:"status"`
	Items       []struct {
		ProductID       int64           `json:"product_id"`
		Quantity        int             `json:"quantity"`
		PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
	} `json:"items"`
}

func cardPayment() map[string]any {
	return map[string]any{
		"payment_method": "credit_card",
		"payment_details": map[string]string{
			"card_number": "4242424242424242", "expiry": "12/30", "cvv": "123",
		},
	}
}

func TestPlaceOrderEndToEnd(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin@example.com", "admin-password")
	buyer := s.registerBuyer(t)

	keyboardID := s.createProduct(t, admin, "Mechanical Keyboard", "10.00", 5)
	cableID := s.createProduct(t, admin, "USB Cable", "5.00", 1)

	resp, raw := s.do(t, http.MethodPost, "/api/v1/cart/items", buyer, map[string]any{
		"product_id": keyboardID, "quantity": 2,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "add keyboard: %s", raw)
	resp, raw = s.do(t, http.MethodPost, "/api/v1/cart/items", buyer, map[string]any{
		"product_id": cableID, "quantity": 1,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "add cable: %s", raw)

	var cartView struct {
		Total decimal.Decimal `json:"total"`
	}
	require.NoError(t, json.Unmarshal(raw, &cartView))
	assert.True(t, cartView.Total.Equal(decimal.RequireFromString("25.00")), "cart total %s", cartView.Total)

	resp, raw = s.do(t, http.MethodPost, "/api/v1/orders", buyer, cardPayment())
	require.Equal(t, http.StatusCreated, resp.StatusCode, "place order: %s", raw)

	var placed orderBody
	require.NoError(t, json.Unmarshal(raw, &placed))
	assert.Equal(t, "PROCESSING", placed.Status)
	assert.True(t, placed.TotalAmount.Equal(decimal.RequireFromString("25.00")))
	require.Len(t, placed.Items, 2)

	// Stock is decremented and the cart is emptied.
	resp, raw = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", keyboardID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var prod struct {
		StockQuantity int `json:"stock_quantity"`
	}
	require.NoError(t, json.Unmarshal(raw, &prod))
	assert.Equal(t, 3, prod.StockQuantity)

	resp, raw = s.do(t, http.MethodGet, "/api/v1/cart", buyer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var emptied struct {
		Items []json.RawMessage `json:"items"`
	}
	require.NoError(t, json.Unmarshal(raw, &emptied))
	assert.Empty(t, emptied.Items)

	// The buyer sees the order; the admin can advance it.
	resp, raw = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/orders/%d", placed.ID), buyer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "get order: %s", raw)

	resp, raw = s.do(t, http.MethodPatch,
		fmt.Sprintf("/api/v1/orders/admin/%d/status", placed.ID), admin,
		map[string]string{"status": "SHIPPED"})
	require.Equal(t, http.StatusOK, resp.StatusCode, "ship order: %s", raw)
	var shipped orderBody
	require.NoError(t, json.Unmarshal(raw, &shipped))
	assert.Equal(t, "SHIPPED", shipped.Status)
}

func TestPlaceOrderEmptyCartRejected(t *testing.T) {
	s := newTestServer(t)
	buyer := s.registerBuyer(t)

	resp, raw := s.do(t, http.MethodPost, "/api/v1/orders", buyer, cardPayment())
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "body: %s", raw)
}

func TestPlaceOrderInsufficientStockRejected(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin@example.com", "admin-password")
	buyer := s.registerBuyer(t)

	cableID := s.createProduct(t, admin, "USB Cable", "5.00", 1)
	resp, raw := s.do(t, http.MethodPost, "/api/v1/cart/items", buyer, map[string]any{
		"product_id": cableID, "quantity": 1,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "add cable: %s", raw)

	// Stock drains between carting and checkout.
	resp, raw = s.do(t, http.MethodPut, fmt.Sprintf("/api/v1/products/%d", cableID), admin, map[string]any{
		"name": "USB Cable", "description": "", "price": "5.00", "stock_quantity": 0, "image_url": "",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "zero stock: %s", raw)

	resp, raw = s.do(t, http.MethodPost, "/api/v1/orders", buyer, cardPayment())
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(raw), "USB Cable")
}

func TestUnknownPaymentMethodRejected(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin@example.com", "admin-password")
	buyer := s.registerBuyer(t)

	id := s.createProduct(t, admin, "USB Cable", "5.00", 1)
	resp, raw := s.do(t, http.MethodPost, "/api/v1/cart/items", buyer, map[string]any{
		"product_id": id, "quantity": 1,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "add cable: %s", raw)

	resp, raw = s.do(t, http.MethodPost, "/api/v1/orders", buyer, map[string]any{
		"payment_method":  "bank_transfer",
		"payment_details": map[string]string{},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "body: %s", raw)
}

func TestAuthBoundaries(t *testing.T) {
	s := newTestServer(t)
	buyer := s.registerBuyer(t)

	// No token.
	resp, _ := s.do(t, http.MethodGet, "/api/v1/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Garbage token.
	resp, _ = s.do(t, http.MethodGet, "/api/v1/cart", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Authenticated but not an admin.
	resp, _ = s.do(t, http.MethodPost, "/api/v1/products", buyer, map[string]any{
		"name": "X", "description": "", "price": "1.00", "stock_quantity": 1, "image_url": "",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/api/v1/orders/admin/all", buyer, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestOrdersAreOwnerScoped(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin@example.com", "admin-password")
	buyer := s.registerBuyer(t)

	id := s.createProduct(t, admin, "USB Cable", "5.00", 1)
	resp, raw := s.do(t, http.MethodPost, "/api/v1/cart/items", buyer, map[string]any{
		"product_id": id, "quantity": 1,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "add cable: %s", raw)
	resp, raw = s.do(t, http.MethodPost, "/api/v1/orders", buyer, cardPayment())
	require.Equal(t, http.StatusCreated, resp.StatusCode, "place order: %s", raw)
	var placed orderBody
	require.NoError(t, json.Unmarshal(raw, &placed))

	// A second buyer cannot read the first buyer's order.
	resp, raw = s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "other@example.com", "password": "correct horse", "full_name": "Other",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "register other: %s", raw)
	other := s.login(t, "other@example.com", "correct horse")

	resp, _ = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/orders/%d", placed.ID), other, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	resp, raw := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(raw))
}
