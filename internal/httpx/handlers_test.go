package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pamlee/kitchen/internal/auth"
	"github.com/pamlee/kitchen/internal/catalog"
	"github.com/pamlee/kitchen/internal/orders"
	"github.com/pamlee/kitchen/internal/users"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	router *chi.Mux
	tokens *auth.Tokens
	orders *orders.Service
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	log := zerolog.Nop()
	tokens := &auth.Tokens{Secret: []byte("test-secret"), TTL: time.Hour}

	orderSvc := orders.NewService(orders.NewMemStore(), nil, "test", log)
	productStore := catalog.NewMemStore()
	require.NoError(t, catalog.Seed(context.Background(), productStore))
	productSvc := catalog.NewService(productStore, log)
	userSvc := users.NewService(users.NewMemStore(), log)

	router := NewRouter()
	(&AuthHandler{Users: userSvc, Tokens: tokens, Log: log}).Register(router)
	(&ProductsHandler{Catalog: productSvc, Tokens: tokens}).Register(router)
	(&OrdersHandler{Orders: orderSvc, Catalog: productSvc, Tokens: tokens, Log: log}).Register(router)

	return &testAPI{router: router, tokens: tokens, orders: orderSvc}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) adminToken(t *testing.T) string {
	t.Helper()
	raw, err := a.tokens.Sign("u-admin", "admin@pamlee.co.za", users.RoleAdmin)
	require.NoError(t, err)
	return raw
}

func (a *testAPI) customerToken(t *testing.T, email string) string {
	t.Helper()
	raw, err := a.tokens.Sign("u-"+email, email, users.RoleCustomer)
	require.NoError(t, err)
	return raw
}

func orderBody(trackerID, email string) map[string]any {
	return map[string]any{
		"trackerId":   trackerID,
		"userEmail":   email,
		"items":       []map[string]any{{"id": "1", "name": "Chocolate Cake", "price": 250, "quantity": 1}},
		"subtotal":    250,
		"deliveryFee": 30,
		"total":       280,
		"fulfilment":  "delivery",
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["success"])
}

func TestSignupAndLogin(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email": "thandi@example.com", "password": "s3cret",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "thandi", user["name"], "name falls back to email local part")
	assert.Equal(t, "customer", user["role"])

	rec = api.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email": "thandi@example.com", "password": "other",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "thandi@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "thandi@example.com", "password": "s3cret",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	token := decode(t, rec)["token"].(string)

	rec = api.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode(t, rec)["user"].(map[string]any)
	assert.Equal(t, "thandi@example.com", me["email"])
}

func TestCreateOrder(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/orders", "", orderBody("PL-1", "thandi@example.com"))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "PL-1", body["trackerId"])

	rec = api.do(t, http.MethodPost, "/api/orders", "", map[string]any{"userEmail": "x@y.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/orders", "", orderBody("PL-1", "thandi@example.com"))
	assert.Equal(t, http.StatusBadRequest, rec.Code, "duplicate tracker id")
}

func TestGetOrderPublic(t *testing.T) {
	api := newTestAPI(t)
	api.do(t, http.MethodPost, "/api/orders", "", orderBody("PL-1", "thandi@example.com"))

	rec := api.do(t, http.MethodGet, "/api/orders/PL-1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	o := decode(t, rec)["order"].(map[string]any)
	assert.Equal(t, "placed", o["status"])
	assert.Len(t, o["timeline"], 1)

	rec = api.do(t, http.MethodGet, "/api/orders/PL-MISSING", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListOrdersScoped(t *testing.T) {
	api := newTestAPI(t)
	api.do(t, http.MethodPost, "/api/orders", "", orderBody("PL-1", "thandi@example.com"))
	api.do(t, http.MethodPost, "/api/orders", "", orderBody("PL-2", "sipho@example.com"))

	rec := api.do(t, http.MethodGet, "/api/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/orders", api.customerToken(t, "thandi@example.com"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode(t, rec)["orders"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, "PL-1", list[0].(map[string]any)["trackerId"])

	rec = api.do(t, http.MethodGet, "/api/orders", api.adminToken(t), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["orders"].([]any), 2)
}

func TestUpdateStatus(t *testing.T) {
	api := newTestAPI(t)
	api.do(t, http.MethodPost, "/api/orders", "", orderBody("PL-1", "thandi@example.com"))

	rec := api.do(t, http.MethodPut, "/api/orders/PL-1", "", map[string]string{"status": "confirmed"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, http.MethodPut, "/api/orders/PL-1", api.customerToken(t, "thandi@example.com"), map[string]string{"status": "confirmed"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	admin := api.adminToken(t)
	rec = api.do(t, http.MethodPut, "/api/orders/PL-1", admin, map[string]string{"status": "confirmed", "note": "We are on it"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/orders/PL-1", "", nil)
	o := decode(t, rec)["order"].(map[string]any)
	assert.Equal(t, "confirmed", o["status"])
	timeline := o["timeline"].([]any)
	require.Len(t, timeline, 2)
	assert.Equal(t, "We are on it", timeline[1].(map[string]any)["message"])

	// backwards transition is rejected without touching the order
	rec = api.do(t, http.MethodPut, "/api/orders/PL-1", admin, map[string]string{"status": "placed"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = api.do(t, http.MethodPut, "/api/orders/PL-MISSING", admin, map[string]string{"status": "confirmed"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStats(t *testing.T) {
	api := newTestAPI(t)
	api.do(t, http.MethodPost, "/api/orders", "", orderBody("PL-1", "thandi@example.com"))
	api.do(t, http.MethodPost, "/api/orders", "", orderBody("PL-2", "sipho@example.com"))

	admin := api.adminToken(t)
	rec := api.do(t, http.MethodPut, "/api/orders/PL-2", admin, map[string]string{"status": "cancelled"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/stats", api.customerToken(t, "thandi@example.com"), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/stats", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode(t, rec)["stats"].(map[string]any)
	assert.Equal(t, 2.0, stats["totalOrders"])
	assert.Equal(t, 1.0, stats["pendingOrders"])
	assert.Equal(t, 280.0, stats["totalRevenue"], "cancelled orders excluded from revenue")
	assert.Equal(t, 8.0, stats["totalProducts"])
}

func TestProducts(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["products"].([]any), 8, "default catalog is seeded")

	rec = api.do(t, http.MethodGet, "/api/products?category=cakes", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["products"].([]any), 2)

	rec = api.do(t, http.MethodGet, "/api/products/1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Chocolate Cake", decode(t, rec)["product"].(map[string]any)["name"])

	rec = api.do(t, http.MethodGet, "/api/products/999", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	newProduct := map[string]any{"id": "9", "name": "Scones", "category": "pastries", "price": 40}
	rec = api.do(t, http.MethodPost, "/api/products", "", newProduct)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	admin := api.adminToken(t)
	rec = api.do(t, http.MethodPost, "/api/products", admin, newProduct)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodPut, "/api/products/9", admin, map[string]any{"name": "Scones", "category": "pastries", "price": 45})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodDelete, "/api/products/9", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(t, http.MethodGet, "/api/products/9", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
