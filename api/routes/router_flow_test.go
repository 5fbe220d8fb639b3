package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	cartsvc "github.com/angelmondragon/storefront-backend/internal/cart"
	catalogsvc "github.com/angelmondragon/storefront-backend/internal/catalog"
	productsvc "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/users"
	pkgAuth "github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/auth/session"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/migrate"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newFlowRouter wires the storefront and admin surfaces against a real
// sqlite-backed service stack. Sessions stay stubbed so no redis is needed.
func newFlowRouter(t *testing.T) (http.Handler, *db.Client) {
	t.Helper()

	// The pragma rides in the DSN so every pooled connection enforces FKs.
	dsn := filepath.Join(t.TempDir(), "flow_test.db") + "?_foreign_keys=on"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	client := db.FromGorm(conn)
	if err := migrate.AutoMigrate(client); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	catalogService, err := catalogsvc.NewService(catalogsvc.ServiceParams{Client: client})
	if err != nil {
		t.Fatalf("catalog service: %v", err)
	}
	productService, err := productsvc.NewService(productsvc.ServiceParams{Client: client})
	if err != nil {
		t.Fatalf("product service: %v", err)
	}
	cartService, err := cartsvc.NewService(cartsvc.ServiceParams{Client: client})
	if err != nil {
		t.Fatalf("cart service: %v", err)
	}
	userService, err := users.NewService(users.ServiceParams{Client: client})
	if err != nil {
		t.Fatalf("user service: %v", err)
	}

	logg := logger.New(logger.Options{ServiceName: "test-flow", Level: logger.ParseLevel("debug"), Output: io.Discard})
	router := NewRouter(Deps{
		Config:         testConfig(),
		Logger:         logg,
		DB:             stubPinger{},
		Redis:          (*redis.Client)(nil),
		SessionManager: stubSessionManager{},

		AuthService:     stubAuthService{},
		RegisterService: stubRegisterService{},
		AccountService:  stubAccountService{},
		UserService:     userService,
		CatalogService:  catalogService,
		ProductService:  productService,
		CartService:     cartService,
	})
	return router, client
}

func buildTokenForUser(t *testing.T, cfg *config.Config, userID uuid.UUID, isAdmin bool) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:  userID,
		IsAdmin: isAdmin,
		JTI:     session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func doJSON(t *testing.T, router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func decodeData(t *testing.T, resp *httptest.ResponseRecorder, dest any) {
	t.Helper()
	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if err := json.Unmarshal(envelope.Data, dest); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func TestStorefrontPurchaseFlow(t *testing.T) {
	router, client := newFlowRouter(t)
	cfg := testConfig()

	adminToken := buildTokenForUser(t, cfg, uuid.New(), true)

	// Admin sets up a catalog with one product.
	resp := doJSON(t, router, http.MethodPost, "/api/admin/v1/catalogs", adminToken, `{"title":"Summer"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create catalog: expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	var createdCatalog catalogsvc.CatalogDTO
	decodeData(t, resp, &createdCatalog)

	productBody := `{"catalog_id":"` + createdCatalog.ID.String() + `","title":"Straw Hat","price":"24.50"}`
	resp = doJSON(t, router, http.MethodPost, "/api/admin/v1/products", adminToken, productBody)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create product: expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	var createdProduct productsvc.ProductDTO
	decodeData(t, resp, &createdProduct)

	// The storefront now lists the product without a token.
	resp = doJSON(t, router, http.MethodGet, "/api/v1/catalogs/"+createdCatalog.ID.String(), "", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("catalog detail: expected 200 got %d", resp.Code)
	}

	// A shopper must exist as a row because cart lines reference users.
	shopper, err := users.NewRepository(client.DB()).Create(context.Background(), users.CreateUserDTO{
		Email:        "shopper@example.com",
		PasswordHash: "$argon2id$fake",
		FirstName:    "Sam",
		LastName:     "Shopper",
	})
	if err != nil {
		t.Fatalf("seed shopper: %v", err)
	}
	shopperToken := buildTokenForUser(t, cfg, shopper.ID, false)

	// Adding the same product twice accumulates one line.
	addBody := `{"product_id":"` + createdProduct.ID.String() + `","quantity":1}`
	for i := 0; i < 2; i++ {
		resp = doJSON(t, router, http.MethodPost, "/api/v1/cart/items", shopperToken, addBody)
		if resp.Code != http.StatusOK {
			t.Fatalf("add item: expected 200 got %d: %s", resp.Code, resp.Body.String())
		}
	}

	resp = doJSON(t, router, http.MethodGet, "/api/v1/cart", shopperToken, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("fetch cart: expected 200 got %d", resp.Code)
	}
	var cart cartsvc.CartDTO
	decodeData(t, resp, &cart)
	if len(cart.Items) != 1 {
		t.Fatalf("expected one cart line got %d", len(cart.Items))
	}
	if cart.Items[0].Quantity != 2 {
		t.Fatalf("expected accumulated quantity 2 got %d", cart.Items[0].Quantity)
	}
	if !cart.Subtotal.Equal(decimal.RequireFromString("49.00")) {
		t.Fatalf("expected subtotal 49.00 got %s", cart.Subtotal)
	}

	// Buy-now adds one more unit of the same product.
	resp = doJSON(t, router, http.MethodPost, "/api/v1/products/"+createdProduct.ID.String()+"/buy", shopperToken, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("buy now: expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	decodeData(t, resp, &cart)
	if cart.Items[0].Quantity != 3 {
		t.Fatalf("expected quantity 3 after buy now got %d", cart.Items[0].Quantity)
	}

	// Clearing empties the cart.
	resp = doJSON(t, router, http.MethodDelete, "/api/v1/cart", shopperToken, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("clear cart: expected 200 got %d", resp.Code)
	}
	resp = doJSON(t, router, http.MethodGet, "/api/v1/cart", shopperToken, "")
	decodeData(t, resp, &cart)
	if len(cart.Items) != 0 {
		t.Fatalf("expected empty cart got %d lines", len(cart.Items))
	}
}
