package cart

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/migrate"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type testEnv struct {
	cart   Service
	client *db.Client
	userID uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	// The pragma rides in the DSN so every pooled connection enforces FKs.
	dsn := filepath.Join(t.TempDir(), "cart_test.db") + "?_foreign_keys=on"
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

	user := &models.User{Email: "shopper@example.com", PasswordHash: "x", IsActive: true}
	if err := conn.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	svc, err := NewService(ServiceParams{Client: client})
	if err != nil {
		t.Fatalf("build cart service: %v", err)
	}
	return &testEnv{cart: svc, client: client, userID: user.ID}
}

func (e *testEnv) mustProduct(t *testing.T, title, price string) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	catalogSvc, err := catalog.NewService(catalog.ServiceParams{Client: e.client})
	if err != nil {
		t.Fatalf("build catalog service: %v", err)
	}
	cat, err := catalogSvc.CreateCatalog(ctx, catalog.CreateCatalogInput{Title: "Cat " + title})
	if err != nil {
		t.Fatalf("create catalog: %v", err)
	}

	productSvc, err := products.NewService(products.ServiceParams{Client: e.client})
	if err != nil {
		t.Fatalf("build product service: %v", err)
	}
	created, err := productSvc.Create(ctx, products.CreateProductInput{
		CatalogID: &cat.ID,
		Title:     title,
		Price:     price,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	return created.ID
}

func TestAddItemAccumulatesQuantity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	productID := env.mustProduct(t, "Logo Tee", "19.99")

	if _, err := env.cart.AddItem(ctx, env.userID, AddItemRequest{ProductID: productID, Quantity: 1}); err != nil {
		t.Fatalf("first add: %v", err)
	}
	cart, err := env.cart.AddItem(ctx, env.userID, AddItemRequest{ProductID: productID, Quantity: 2})
	if err != nil {
		t.Fatalf("second add: %v", err)
	}

	if len(cart.Items) != 1 {
		t.Fatalf("expected a single merged line, got %d", len(cart.Items))
	}
	if cart.Items[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", cart.Items[0].Quantity)
	}
	if cart.Subtotal.StringFixed(2) != "59.97" {
		t.Fatalf("expected subtotal 59.97, got %s", cart.Subtotal)
	}
}

func TestAddItemUnknownProduct(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.cart.AddItem(context.Background(), env.userID, AddItemRequest{ProductID: uuid.New(), Quantity: 1})
	if err == nil {
		t.Fatal("expected not found")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestBuyNowAddsSingleUnit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	productID := env.mustProduct(t, "Logo Tee", "19.99")

	cart, err := env.cart.BuyNow(ctx, env.userID, productID)
	if err != nil {
		t.Fatalf("buy now: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 1 {
		t.Fatalf("expected single unit line, got %+v", cart.Items)
	}

	cart, err = env.cart.BuyNow(ctx, env.userID, productID)
	if err != nil {
		t.Fatalf("second buy now: %v", err)
	}
	if cart.Items[0].Quantity != 2 {
		t.Fatalf("expected quantity 2 after repeat, got %d", cart.Items[0].Quantity)
	}
}

func TestUpdateItemReplacesQuantity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	productID := env.mustProduct(t, "Logo Tee", "10.00")

	if _, err := env.cart.AddItem(ctx, env.userID, AddItemRequest{ProductID: productID, Quantity: 5}); err != nil {
		t.Fatalf("add: %v", err)
	}
	cart, err := env.cart.UpdateItem(ctx, env.userID, productID, UpdateItemRequest{Quantity: 2})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if cart.Items[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", cart.Items[0].Quantity)
	}
}

func TestUpdateAbsentItemIsNoOp(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	inCart := env.mustProduct(t, "Logo Tee", "10.00")
	absent := env.mustProduct(t, "Beanie", "12.00")

	if _, err := env.cart.AddItem(ctx, env.userID, AddItemRequest{ProductID: inCart, Quantity: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}

	cart, err := env.cart.UpdateItem(ctx, env.userID, absent, UpdateItemRequest{Quantity: 4})
	if err != nil {
		t.Fatalf("update absent: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].ProductID != inCart || cart.Items[0].Quantity != 1 {
		t.Fatalf("cart must be unchanged, got %+v", cart.Items)
	}
}

func TestRemoveAbsentItemIsNoOp(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	inCart := env.mustProduct(t, "Logo Tee", "10.00")

	if _, err := env.cart.AddItem(ctx, env.userID, AddItemRequest{ProductID: inCart, Quantity: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}

	cart, err := env.cart.RemoveItem(ctx, env.userID, uuid.New())
	if err != nil {
		t.Fatalf("remove absent: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("cart must be unchanged, got %d lines", len(cart.Items))
	}

	cart, err = env.cart.RemoveItem(ctx, env.userID, inCart)
	if err != nil {
		t.Fatalf("remove present: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatal("expected empty cart after removal")
	}
}

func TestClearEmptiesCart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, p := range []struct{ title, price string }{{"Logo Tee", "10.00"}, {"Beanie", "12.00"}} {
		id := env.mustProduct(t, p.title, p.price)
		if _, err := env.cart.AddItem(ctx, env.userID, AddItemRequest{ProductID: id, Quantity: 2}); err != nil {
			t.Fatalf("add %s: %v", p.title, err)
		}
	}

	if err := env.cart.Clear(ctx, env.userID); err != nil {
		t.Fatalf("clear: %v", err)
	}
	cart, err := env.cart.Get(ctx, env.userID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(cart.Items) != 0 || !cart.Subtotal.IsZero() {
		t.Fatalf("expected empty cart, got %+v", cart)
	}
}

func TestCartScopedPerUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	productID := env.mustProduct(t, "Logo Tee", "10.00")

	other := &models.User{Email: "other@example.com", PasswordHash: "x", IsActive: true}
	if err := env.client.DB().Create(other).Error; err != nil {
		t.Fatalf("seed second user: %v", err)
	}

	if _, err := env.cart.AddItem(ctx, env.userID, AddItemRequest{ProductID: productID, Quantity: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}

	otherCart, err := env.cart.Get(ctx, other.ID)
	if err != nil {
		t.Fatalf("get other cart: %v", err)
	}
	if len(otherCart.Items) != 0 {
		t.Fatal("carts must be isolated per user")
	}
}

func TestProductDeleteCascadesCartLines(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	productID := env.mustProduct(t, "Logo Tee", "10.00")

	if _, err := env.cart.AddItem(ctx, env.userID, AddItemRequest{ProductID: productID, Quantity: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}

	productSvc, err := products.NewService(products.ServiceParams{Client: env.client})
	if err != nil {
		t.Fatalf("build product service: %v", err)
	}
	if err := productSvc.Delete(ctx, productID); err != nil {
		t.Fatalf("delete product: %v", err)
	}

	cart, err := env.cart.Get(ctx, env.userID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatal("expected cart line to cascade with the product")
	}
}
