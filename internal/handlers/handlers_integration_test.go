package handlers_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"pharmacy/internal/database"
	"pharmacy/internal/handlers"
	"pharmacy/internal/middleware"
	"pharmacy/internal/repositories"
	"pharmacy/internal/services"
	"pharmacy/pkg/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	adminUsername = "admin"
	adminPassword = "admin-password"
)

// testEnv is a Fiber app over a private in-memory SQLite database.
type testEnv struct {
	app *fiber.App
}

func setupApp(t *testing.T) *testEnv {
	t.Helper()

	// Each test gets its own named in-memory database.
	db, err := database.Open("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	repos := repositories.NewGORMSet(db)

	uploader, err := storage.NewUploader(afero.NewMemMapFs(), "uploads", "/uploads")
	require.NoError(t, err)

	pricing := services.OrderPricing{
		DeliveryCharge:   decimal.NewFromInt(40),
		FreeDeliveryOver: decimal.NewFromInt(500),
	}
	authService := services.NewAuthService(repos.Users, "test_jwt_secret", time.Hour)
	productService := services.NewProductService(repos.Products)
	cartService := services.NewCartService(repos.Carts, repos.Products, nil)
	orderService := services.NewOrderService(repos.Orders, repos.Products, repos.Carts, repos.Prescriptions, nil, nil, pricing)
	inventoryService := services.NewInventoryService(repos.Products, 10, nil)
	prescriptionService := services.NewPrescriptionService(repos.Prescriptions, repos.Products, uploader, nil, nil)
	userService := services.NewUserService(repos.Users, repos.Products)

	_, err = authService.EnsureAdmin(services.RegisterRequest{
		Username: adminUsername,
		Email:    "admin@example.com",
		Password: adminPassword,
	})
	require.NoError(t, err)

	app := fiber.New()
	guards := middleware.NewGuards(authService)
	apiV1 := app.Group("/api/v1")
	handlers.NewAuthHandler(authService).RegisterRoutes(apiV1, guards)
	handlers.NewProductHandler(productService).RegisterRoutes(apiV1, guards)
	handlers.NewCartHandler(cartService).RegisterRoutes(apiV1, guards)
	handlers.NewOrderHandler(orderService).RegisterRoutes(apiV1, guards)
	handlers.NewInventoryHandler(inventoryService).RegisterRoutes(apiV1, guards)
	handlers.NewPrescriptionHandler(prescriptionService).RegisterRoutes(apiV1, guards)
	handlers.NewUserHandler(userService).RegisterRoutes(apiV1, guards)

	return &testEnv{app: app}
}

// do sends a JSON request and decodes the response body into a generic value.
func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) (*http.Response, interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded interface{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), string(raw))
	}
	return resp, decoded
}

func (e *testEnv) register(t *testing.T, username string) {
	t.Helper()
	resp, _ := e.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()
	resp, body := e.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := asMap(body)["token"].(string)
	require.NotEmpty(t, token)
	return token
}

// customer registers username and returns its token.
func (e *testEnv) customer(t *testing.T, username string) string {
	e.register(t, username)
	return e.login(t, username, "password123")
}

func (e *testEnv) createProduct(t *testing.T, adminToken string, product map[string]interface{}) string {
	t.Helper()
	resp, body := e.do(t, http.MethodPost, "/api/v1/products", adminToken, product)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	id, _ := asMap(body)["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func asMap(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}

func assertMoney(t *testing.T, want string, got interface{}) {
	t.Helper()
	s, ok := got.(string)
	require.True(t, ok, "money value %v is not a string", got)
	assert.True(t, decimal.RequireFromString(want).Equal(decimal.RequireFromString(s)), "want %s, got %s", want, s)
}

func shippingAddress() map[string]string {
	return map[string]string{
		"full_name":   "Jane Doe",
		"phone":       "555-0100",
		"street":      "1 Main St",
		"city":        "Springfield",
		"state":       "IL",
		"postal_code": "62701",
	}
}

func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestAuthRegisterLoginAndMe(t *testing.T) {
	env := setupApp(t)
	token := env.customer(t, "testuser")

	resp, body := env.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "testuser", asMap(body)["username"])
	assert.Equal(t, "user", asMap(body)["role"])
	assert.NotContains(t, asMap(body), "password")

	// Duplicate registration conflicts.
	resp, _ = env.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "testuser",
		"email":    "other@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "testuser",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthCookie(t *testing.T) {
	env := setupApp(t)
	env.register(t, "cookieuser")

	raw, _ := json.Marshal(map[string]string{"username": "cookieuser", "password": "password123"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == middleware.TokenCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: middleware.TokenCookie, Value: cookie.Value})
	resp, err = env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := setupApp(t)

	for _, path := range []string{"/api/v1/cart", "/api/v1/orders/user", "/api/v1/prescriptions/user", "/api/v1/auth/me"} {
		resp, body := env.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		assert.NotEmpty(t, asMap(body)["error"], path)
	}

	resp, _ := env.do(t, http.MethodGet, "/api/v1/cart", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProductCRUD(t *testing.T) {
	env := setupApp(t)
	adminToken := env.login(t, adminUsername, adminPassword)
	userToken := env.customer(t, "shopper")

	product := map[string]interface{}{
		"name":         "Paracetamol 500mg",
		"description":  "Strip of 10",
		"price":        "25.50",
		"stock":        100,
		"category":     "pain-relief",
		"manufacturer": "Acme Pharma",
	}

	// Only admins manage the catalog.
	resp, _ := env.do(t, http.MethodPost, "/api/v1/products", userToken, product)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	id := env.createProduct(t, adminToken, product)

	// Reads are public.
	resp, body := env.do(t, http.MethodGet, "/api/v1/products/"+id, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Paracetamol 500mg", asMap(body)["name"])
	assertMoney(t, "25.50", asMap(body)["price"])

	resp, body = env.do(t, http.MethodGet, "/api/v1/products?search=paracetamol", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body, 1)

	product["price"] = "30"
	product["stock"] = 80
	resp, body = env.do(t, http.MethodPut, "/api/v1/products/"+id, adminToken, product)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assertMoney(t, "30", asMap(body)["price"])
	assert.EqualValues(t, 80, asMap(body)["stock"])

	resp, _ = env.do(t, http.MethodPut, "/api/v1/products/"+uuid.NewString(), adminToken, product)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = env.do(t, http.MethodDelete, "/api/v1/products/"+id, userToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = env.do(t, http.MethodDelete, "/api/v1/products/"+id, adminToken, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = env.do(t, http.MethodGet, "/api/v1/products/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCartFlow(t *testing.T) {
	env := setupApp(t)
	adminToken := env.login(t, adminUsername, adminPassword)
	token := env.customer(t, "cartuser")

	id := env.createProduct(t, adminToken, map[string]interface{}{"name": "Vitamin C", "price": "10", "stock": 5})

	resp, body := env.do(t, http.MethodPost, "/api/v1/cart/add", token, map[string]interface{}{"product_id": id, "quantity": 3})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assertMoney(t, "30", asMap(body)["total_amount"])

	resp, _ = env.do(t, http.MethodPut, "/api/v1/cart/update", token, map[string]interface{}{"product_id": id, "quantity": 6})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = env.do(t, http.MethodGet, "/api/v1/cart", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assertMoney(t, "30", asMap(body)["total_amount"])

	resp, body = env.do(t, http.MethodDelete, "/api/v1/cart/remove/"+id, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assertMoney(t, "0", asMap(body)["total_amount"])

	resp, _ = env.do(t, http.MethodDelete, "/api/v1/cart/remove/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestOrderLifecycle(t *testing.T) {
	env := setupApp(t)
	adminToken := env.login(t, adminUsername, adminPassword)
	token := env.customer(t, "buyer")

	id := env.createProduct(t, adminToken, map[string]interface{}{"name": "Cough Syrup", "price": "100", "stock": 10})

	resp, body := env.do(t, http.MethodPost, "/api/v1/orders/create", token, map[string]interface{}{
		"items":            []map[string]interface{}{{"product_id": id, "quantity": 1}},
		"shipping_address": shippingAddress(),
		"payment_method":   "cod",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	order := asMap(body)
	orderID, _ := order["id"].(string)
	assertMoney(t, "100", order["sub_total"])
	assertMoney(t, "40", order["delivery_charge"])
	assertMoney(t, "140", order["total"])
	assert.Equal(t, "pending", order["status"])
	assert.Equal(t, "pending", order["payment_status"])

	_, body = env.do(t, http.MethodGet, "/api/v1/products/"+id, "", nil)
	assert.EqualValues(t, 9, asMap(body)["stock"])

	// Another customer cannot see or cancel it.
	other := env.customer(t, "stranger")
	resp, _ = env.do(t, http.MethodGet, "/api/v1/orders/"+orderID, other, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = env.do(t, http.MethodPut, "/api/v1/orders/"+orderID+"/cancel", other, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Customers cannot drive the status machine.
	resp, _ = env.do(t, http.MethodPut, "/api/v1/orders/"+orderID+"/status", token, map[string]string{"status": "processing"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = env.do(t, http.MethodGet, "/api/v1/orders/user", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body, 1)

	resp, body = env.do(t, http.MethodPut, "/api/v1/orders/"+orderID+"/cancel", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "cancelled", asMap(body)["status"])

	_, body = env.do(t, http.MethodGet, "/api/v1/products/"+id, "", nil)
	assert.EqualValues(t, 10, asMap(body)["stock"])

	resp, _ = env.do(t, http.MethodPut, "/api/v1/orders/"+orderID+"/cancel", token, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCheckoutAndAdminStatus(t *testing.T) {
	env := setupApp(t)
	adminToken := env.login(t, adminUsername, adminPassword)
	token := env.customer(t, "checkout")

	id := env.createProduct(t, adminToken, map[string]interface{}{"name": "Bandages", "price": "260", "stock": 4})

	resp, _ := env.do(t, http.MethodPost, "/api/v1/cart/add", token, map[string]interface{}{"product_id": id, "quantity": 2})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := env.do(t, http.MethodPost, "/api/v1/orders/checkout", token, map[string]interface{}{
		"shipping_address": shippingAddress(),
		"payment_method":   "card",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	order := asMap(body)
	orderID, _ := order["id"].(string)
	assertMoney(t, "520", order["sub_total"])
	assertMoney(t, "0", order["delivery_charge"])
	assertMoney(t, "520", order["total"])

	_, body = env.do(t, http.MethodGet, "/api/v1/cart", token, nil)
	assert.Empty(t, asMap(body)["items"])

	resp, body = env.do(t, http.MethodPut, "/api/v1/orders/"+orderID+"/status", adminToken, map[string]string{"status": "processing"})
	assert.Equal(t, http.StatusOK, resp.StatusCode, body)

	resp, _ = env.do(t, http.MethodPut, "/api/v1/orders/"+orderID+"/status", adminToken, map[string]string{"status": "in-transit"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = env.do(t, http.MethodPut, "/api/v1/orders/"+orderID+"/status", adminToken, map[string]string{"status": "in-transit", "tracking": "TRK-1"})
	assert.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "TRK-1", asMap(body)["tracking"])

	resp, body = env.do(t, http.MethodPut, "/api/v1/orders/"+orderID+"/payment", adminToken, map[string]string{"payment_status": "completed"})
	assert.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "completed", asMap(body)["payment_status"])

	resp, body = env.do(t, http.MethodGet, "/api/v1/orders/admin/all?status=in-transit", adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body, 1)

	resp, _ = env.do(t, http.MethodGet, "/api/v1/orders/admin/all", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestPrescriptionFlow(t *testing.T) {
	env := setupApp(t)
	adminToken := env.login(t, adminUsername, adminPassword)
	token := env.customer(t, "patient")

	id := env.createProduct(t, adminToken, map[string]interface{}{
		"name":                  "Amoxicillin 500mg",
		"price":                 "95",
		"stock":                 20,
		"requires_prescription": true,
	})
	orderBody := map[string]interface{}{
		"items":            []map[string]interface{}{{"product_id": id, "quantity": 1}},
		"shipping_address": shippingAddress(),
		"payment_method":   "upi",
	}

	resp, _ := env.do(t, http.MethodPost, "/api/v1/orders/create", token, orderBody)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)
	resp, body := env.do(t, http.MethodPost, "/api/v1/prescriptions/upload", token, map[string]interface{}{
		"image":       "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
		"doctor_name": "Dr. House",
		"expiry_date": time.Now().UTC().AddDate(0, 6, 0).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	rx := asMap(body)
	rxID, _ := rx["id"].(string)
	assert.Equal(t, "pending", rx["status"])
	assert.Regexp(t, `^/uploads/.+\.png$`, rx["image_url"])

	resp, body = env.do(t, http.MethodPut, "/api/v1/prescriptions/"+rxID+"/link-products", token, map[string]interface{}{"product_ids": []string{id}})
	assert.Equal(t, http.StatusOK, resp.StatusCode, body)

	// Still pending.
	orderBody["prescription_id"] = rxID
	resp, _ = env.do(t, http.MethodPost, "/api/v1/orders/create", token, orderBody)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPut, "/api/v1/prescriptions/"+rxID+"/verify", token, map[string]string{"status": "approved"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = env.do(t, http.MethodPut, "/api/v1/prescriptions/"+rxID+"/verify", adminToken, map[string]string{"status": "approved", "notes": "ok"})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "approved", asMap(body)["status"])
	assert.NotEmpty(t, asMap(body)["verified_by"])

	resp, body = env.do(t, http.MethodPost, "/api/v1/orders/create", token, orderBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	assert.Equal(t, rxID, asMap(body)["prescription_id"])

	resp, body = env.do(t, http.MethodGet, "/api/v1/prescriptions/admin/all?status=approved", adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body, 1)

	resp, _ = env.do(t, http.MethodGet, "/api/v1/prescriptions/admin/all?from=yesterday", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPrescriptionImageAccess(t *testing.T) {
	env := setupApp(t)
	adminToken := env.login(t, adminUsername, adminPassword)
	owner := env.customer(t, "owner")
	other := env.customer(t, "other")

	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)
	resp, body := env.do(t, http.MethodPost, "/api/v1/prescriptions/upload", owner, map[string]interface{}{
		"image":       base64.StdEncoding.EncodeToString(png),
		"doctor_name": "Dr. Quinn",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	rx := asMap(body)
	rxID, _ := rx["id"].(string)
	imageURL, _ := rx["image_url"].(string)

	get := func(path, token string) (*http.Response, []byte) {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := env.app.Test(req, -1)
		require.NoError(t, err)
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp, raw
	}

	resp, raw := get("/api/v1/prescriptions/"+rxID+"/image", owner)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get(fiber.HeaderContentType))
	assert.Equal(t, png, raw)

	resp, raw = get("/api/v1/prescriptions/"+rxID+"/image", adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, png, raw)

	resp, _ = get("/api/v1/prescriptions/"+rxID+"/image", other)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = get("/api/v1/prescriptions/"+rxID+"/image", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// The stored location is not served directly.
	resp, _ = get(imageURL, owner)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBlankShippingFieldsRejected(t *testing.T) {
	env := setupApp(t)
	adminToken := env.login(t, adminUsername, adminPassword)
	token := env.customer(t, "blank")
	id := env.createProduct(t, adminToken, map[string]interface{}{"name": "Gauze Roll", "price": "30", "stock": 5})

	address := shippingAddress()
	address["city"] = "   "
	resp, body := env.do(t, http.MethodPost, "/api/v1/orders/create", token, map[string]interface{}{
		"items":            []map[string]interface{}{{"product_id": id, "quantity": 1}},
		"shipping_address": address,
		"payment_method":   "cod",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)

	_, body = env.do(t, http.MethodGet, "/api/v1/products/"+id, "", nil)
	assert.EqualValues(t, 5, asMap(body)["stock"])
}

func TestInventoryAndWishlist(t *testing.T) {
	env := setupApp(t)
	adminToken := env.login(t, adminUsername, adminPassword)
	token := env.customer(t, "wisher")

	id := env.createProduct(t, adminToken, map[string]interface{}{"name": "Zinc Tablets", "price": "12", "stock": 3})

	resp, _ := env.do(t, http.MethodGet, "/api/v1/inventory/low-stock", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := env.do(t, http.MethodGet, "/api/v1/inventory/low-stock?threshold=5", adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body, 1)

	resp, body = env.do(t, http.MethodPost, "/api/v1/inventory/restock/"+id, adminToken, map[string]int{"quantity": 7})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 10, asMap(body)["stock"])

	resp, _ = env.do(t, http.MethodPut, "/api/v1/inventory/stock/"+id, adminToken, map[string]int{"stock": -1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = env.do(t, http.MethodPost, "/api/v1/users/wishlist/"+id, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []interface{}{id}, asMap(body)["wishlist"])

	resp, body = env.do(t, http.MethodGet, "/api/v1/users/wishlist", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body, 1)

	resp, body = env.do(t, http.MethodDelete, "/api/v1/users/wishlist/"+id, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, asMap(body)["wishlist"])
}

func TestBlockedUserIsRejected(t *testing.T) {
	env := setupApp(t)
	adminToken := env.login(t, adminUsername, adminPassword)
	token := env.customer(t, "troublemaker")

	_, body := env.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	userID, _ := asMap(body)["id"].(string)

	resp, _ := env.do(t, http.MethodPut, "/api/v1/users/"+userID+"/status", adminToken, map[string]string{"status": "blocked"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.do(t, http.MethodGet, "/api/v1/cart", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "troublemaker", "password": "password123"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
