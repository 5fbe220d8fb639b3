package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	"github.com/angelmondragon/storefront-backend/api/middleware"
	authsvc "github.com/angelmondragon/storefront-backend/internal/auth"
	cartsvc "github.com/angelmondragon/storefront-backend/internal/cart"
	catalogsvc "github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/media"
	productsvc "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/auth/session"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             db.Pinger
	Redis          *redis.Client
	SessionManager sessionManager
	HTTPMetrics    *metrics.HTTPMetrics
	MetricsHandler http.Handler

	AuthService     authsvc.Service
	RegisterService authsvc.RegisterService
	AccountService  authsvc.AccountService
	UserService     users.Service
	CatalogService  catalogsvc.Service
	ProductService  productsvc.Service
	CartService     cartsvc.Service
	MediaStore      *media.Store
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.Recoverer(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	if deps.MediaStore != nil {
		prefix := "/static/products_img/"
		r.Handle(prefix+"*", http.StripPrefix(prefix, http.FileServer(http.Dir(deps.MediaStore.Dir()))))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.AuthRegister(deps.RegisterService, deps.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.SessionManager, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.SessionManager, cfg.JWT, logg))
	})

	r.Route("/api/admin/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AdminAuthLogin(deps.AuthService, logg))
	})

	// Storefront browsing is open; the cart and account surfaces are not.
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/catalogs", controllers.CatalogList(deps.CatalogService, logg))
		r.Get("/catalogs/{catalogID}", controllers.CatalogDetail(deps.CatalogService, deps.ProductService, logg))
		r.Get("/collections", controllers.CollectionList(deps.CatalogService, logg))
		r.Get("/products/{productID}", controllers.ProductDetail(deps.ProductService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))

			r.Get("/me", controllers.Me(deps.UserService, logg))
			r.Delete("/me", controllers.MeDelete(deps.AccountService, deps.SessionManager, logg))
			r.Put("/profile/password", controllers.ProfilePassword(deps.AccountService, logg))
			r.Put("/settings/password", controllers.SettingsPassword(deps.AccountService, logg))

			r.Post("/products/{productID}/buy", controllers.ProductBuy(deps.CartService, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(deps.CartService, logg))
				r.Delete("/", controllers.CartClear(deps.CartService, logg))
				r.Post("/items", controllers.CartAddItem(deps.CartService, logg))
				r.Patch("/items/{productID}", controllers.CartUpdateItem(deps.CartService, logg))
				r.Delete("/items/{productID}", controllers.CartRemoveItem(deps.CartService, logg))
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))
		r.Use(middleware.RequireAdmin(logg))

		r.Route("/catalogs", func(r chi.Router) {
			r.Get("/", controllers.AdminCatalogList(deps.CatalogService, logg))
			r.Post("/", controllers.AdminCatalogCreate(deps.CatalogService, logg))
			r.Patch("/{catalogID}", controllers.AdminCatalogUpdate(deps.CatalogService, logg))
			r.Delete("/{catalogID}", controllers.AdminCatalogDelete(deps.CatalogService, logg))
		})
		r.Route("/collections", func(r chi.Router) {
			r.Get("/", controllers.AdminCollectionList(deps.CatalogService, logg))
			r.Post("/", controllers.AdminCollectionCreate(deps.CatalogService, logg))
			r.Patch("/{collectionID}", controllers.AdminCollectionUpdate(deps.CatalogService, logg))
			r.Delete("/{collectionID}", controllers.AdminCollectionDelete(deps.CatalogService, logg))
		})
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.AdminProductList(deps.ProductService, logg))
			r.Post("/", controllers.AdminProductCreate(deps.ProductService, logg))
			r.Patch("/{productID}", controllers.AdminProductUpdate(deps.ProductService, logg))
			r.Delete("/{productID}", controllers.AdminProductDelete(deps.ProductService, logg))
		})
		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.AdminUserList(deps.UserService, logg))
			r.Get("/{userID}", controllers.AdminUserDetail(deps.UserService, logg))
			r.Patch("/{userID}", controllers.AdminUserUpdate(deps.UserService, logg))
			r.Delete("/{userID}", controllers.AdminUserDelete(deps.UserService, logg))
		})
		r.Post("/uploads", controllers.AdminImageUpload(deps.MediaStore, logg))
	})

	return r
}
