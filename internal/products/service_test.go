package products

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/migrate"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type testEnv struct {
	products Service
	catalogs catalog.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	// The pragma rides in the DSN so every pooled connection enforces FKs.
	dsn := filepath.Join(t.TempDir(), "products_test.db") + "?_foreign_keys=on"
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

	catalogSvc, err := catalog.NewService(catalog.ServiceParams{Client: client})
	if err != nil {
		t.Fatalf("build catalog service: %v", err)
	}
	productSvc, err := NewService(ServiceParams{Client: client})
	if err != nil {
		t.Fatalf("build product service: %v", err)
	}
	return &testEnv{products: productSvc, catalogs: catalogSvc}
}

func (e *testEnv) mustCatalog(t *testing.T, title string) uuid.UUID {
	t.Helper()
	created, err := e.catalogs.CreateCatalog(context.Background(), catalog.CreateCatalogInput{Title: title})
	if err != nil {
		t.Fatalf("create catalog %q: %v", title, err)
	}
	return created.ID
}

func (e *testEnv) mustCollection(t *testing.T, title string) uuid.UUID {
	t.Helper()
	created, err := e.catalogs.CreateCollection(context.Background(), catalog.CreateCollectionInput{Title: title})
	if err != nil {
		t.Fatalf("create collection %q: %v", title, err)
	}
	return created.ID
}

func TestCreateAndGetProduct(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	catalogID := env.mustCatalog(t, "Apparel")
	collectionID := env.mustCollection(t, "Tees")

	created, err := env.products.Create(ctx, CreateProductInput{
		CatalogID:      &catalogID,
		CollectionID:   &collectionID,
		Title:          "Logo Tee",
		Price:          "19.99",
		CountAvailable: 5,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	got, err := env.products.GetProduct(ctx, created.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if got.CountAvailable != 5 {
		t.Fatalf("expected count_available 5, got %d", got.CountAvailable)
	}
	if got.CatalogTitle != "Apparel" {
		t.Fatalf("expected catalog title on detail, got %q", got.CatalogTitle)
	}
	if got.CollectionTitle == nil || *got.CollectionTitle != "Tees" {
		t.Fatal("expected collection title on detail")
	}
	if got.Price.StringFixed(2) != "19.99" {
		t.Fatalf("expected price 19.99, got %s", got.Price)
	}
}

func TestCreateProductRejectsUnknownCatalog(t *testing.T) {
	env := newTestEnv(t)

	unknown := uuid.New()
	_, err := env.products.Create(context.Background(), CreateProductInput{
		CatalogID: &unknown,
		Title:     "Orphan",
		Price:     "5",
	})
	if err == nil {
		t.Fatal("expected validation error for unknown catalog")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateProductRejectsBadPrice(t *testing.T) {
	env := newTestEnv(t)
	catalogID := env.mustCatalog(t, "Apparel")

	for _, price := range []string{"abc", "-1.00", ""} {
		_, err := env.products.Create(context.Background(), CreateProductInput{
			CatalogID: &catalogID,
			Title:     "Bad Price",
			Price:     price,
		})
		if err == nil {
			t.Fatalf("price %q: expected validation error", price)
		}
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("price %q: expected validation error, got %v", price, err)
		}
	}
}

func TestListByCatalogOrdersAndFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	catalogID := env.mustCatalog(t, "Apparel")
	tees := env.mustCollection(t, "Tees")
	hats := env.mustCollection(t, "Hats")

	seed := []struct {
		title      string
		collection *uuid.UUID
	}{
		{"Zip Hoodie", nil},
		{"Logo Tee", &tees},
		{"Beanie", &hats},
		{"Art Tee", &tees},
	}
	for _, p := range seed {
		if _, err := env.products.Create(ctx, CreateProductInput{
			CatalogID:    &catalogID,
			CollectionID: p.collection,
			Title:        p.title,
			Price:        "10",
		}); err != nil {
			t.Fatalf("create %q: %v", p.title, err)
		}
	}

	all, err := env.products.ListByCatalog(ctx, catalogID, ListFilters{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"Art Tee", "Beanie", "Logo Tee", "Zip Hoodie"}
	if len(all) != len(want) {
		t.Fatalf("expected %d products, got %d", len(want), len(all))
	}
	for i, title := range want {
		if all[i].Title != title {
			t.Fatalf("position %d: expected %q, got %q", i, title, all[i].Title)
		}
	}

	filtered, err := env.products.ListByCatalog(ctx, catalogID, ListFilters{CollectionIDs: []uuid.UUID{tees}})
	if err != nil {
		t.Fatalf("filtered list: %v", err)
	}
	if len(filtered) != 2 || filtered[0].Title != "Art Tee" || filtered[1].Title != "Logo Tee" {
		t.Fatalf("unexpected filtered result: %+v", filtered)
	}

	both, err := env.products.ListByCatalog(ctx, catalogID, ListFilters{CollectionIDs: []uuid.UUID{tees, hats}})
	if err != nil {
		t.Fatalf("multi filter list: %v", err)
	}
	if len(both) != 3 {
		t.Fatalf("expected 3 products for two collections, got %d", len(both))
	}
}

func TestListByCatalogUnknownCatalog(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.products.ListByCatalog(context.Background(), uuid.New(), ListFilters{})
	if err == nil {
		t.Fatal("expected not found")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestUpdateProductClearsCollection(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	catalogID := env.mustCatalog(t, "Apparel")
	tees := env.mustCollection(t, "Tees")

	created, err := env.products.Create(ctx, CreateProductInput{
		CatalogID:    &catalogID,
		CollectionID: &tees,
		Title:        "Logo Tee",
		Price:        "19.99",
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	updated, err := env.products.Update(ctx, created.ID, UpdateProductInput{ClearCollection: true})
	if err != nil {
		t.Fatalf("update product: %v", err)
	}
	if updated.CollectionID != nil {
		t.Fatal("expected collection link to be cleared")
	}
	if updated.Title != "Logo Tee" {
		t.Fatal("partial update must keep untouched fields")
	}
}

func TestDeleteCollectionUnlinksProducts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	catalogID := env.mustCatalog(t, "Apparel")
	tees := env.mustCollection(t, "Tees")

	created, err := env.products.Create(ctx, CreateProductInput{
		CatalogID:    &catalogID,
		CollectionID: &tees,
		Title:        "Logo Tee",
		Price:        "19.99",
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	if err := env.catalogs.DeleteCollection(ctx, tees); err != nil {
		t.Fatalf("delete collection: %v", err)
	}

	got, err := env.products.GetProduct(ctx, created.ID)
	if err != nil {
		t.Fatalf("product must survive collection delete: %v", err)
	}
	if got.CollectionID != nil {
		t.Fatal("expected collection link to be nulled by the foreign key")
	}
}

func TestCreateProductWithoutCatalog(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.products.Create(ctx, CreateProductInput{
		Title: "Gift Card",
		Price: "25.00",
	})
	if err != nil {
		t.Fatalf("create product without catalog: %v", err)
	}

	got, err := env.products.GetProduct(ctx, created.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if got.CatalogID != nil {
		t.Fatal("expected no catalog link")
	}
	if got.CatalogTitle != "" {
		t.Fatalf("expected empty catalog title, got %q", got.CatalogTitle)
	}
}

func TestUpdateProductClearsCatalog(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	catalogID := env.mustCatalog(t, "Apparel")
	created, err := env.products.Create(ctx, CreateProductInput{
		CatalogID: &catalogID,
		Title:     "Logo Tee",
		Price:     "19.99",
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	updated, err := env.products.Update(ctx, created.ID, UpdateProductInput{ClearCatalog: true})
	if err != nil {
		t.Fatalf("update product: %v", err)
	}
	if updated.CatalogID != nil {
		t.Fatal("expected catalog link to be cleared")
	}
	if updated.Title != "Logo Tee" {
		t.Fatal("partial update must keep untouched fields")
	}
}

func TestUpdateProductCountAvailable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.products.Create(ctx, CreateProductInput{
		Title:          "Logo Tee",
		Price:          "19.99",
		CountAvailable: 3,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	count := 12
	updated, err := env.products.Update(ctx, created.ID, UpdateProductInput{CountAvailable: &count})
	if err != nil {
		t.Fatalf("update product: %v", err)
	}
	if updated.CountAvailable != 12 {
		t.Fatalf("expected count_available 12, got %d", updated.CountAvailable)
	}

	// An untouched update must not reset the count to zero.
	title := "Art Tee"
	updated, err = env.products.Update(ctx, created.ID, UpdateProductInput{Title: &title})
	if err != nil {
		t.Fatalf("update title: %v", err)
	}
	if updated.CountAvailable != 12 {
		t.Fatalf("expected count_available to survive, got %d", updated.CountAvailable)
	}

	negative := -1
	if _, err := env.products.Update(ctx, created.ID, UpdateProductInput{CountAvailable: &negative}); err == nil {
		t.Fatal("expected validation error for negative count")
	}
}

func TestCreateProductRejectsNegativeCount(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.products.Create(context.Background(), CreateProductInput{
		Title:          "Logo Tee",
		Price:          "19.99",
		CountAvailable: -4,
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteCatalogCascadesProducts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	catalogID := env.mustCatalog(t, "Apparel")
	created, err := env.products.Create(ctx, CreateProductInput{
		CatalogID: &catalogID,
		Title:     "Logo Tee",
		Price:     "19.99",
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	if err := env.catalogs.DeleteCatalog(ctx, catalogID); err != nil {
		t.Fatalf("delete catalog: %v", err)
	}

	_, err = env.products.GetProduct(ctx, created.ID)
	if err == nil {
		t.Fatal("expected product to cascade with its catalog")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}
