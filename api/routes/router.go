package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vashudha/ghee-storefront/api/controllers"
	"github.com/vashudha/ghee-storefront/api/middleware"
	addresssvc "github.com/vashudha/ghee-storefront/internal/address"
	"github.com/vashudha/ghee-storefront/internal/auth"
	cartsvc "github.com/vashudha/ghee-storefront/internal/cart"
	checkoutsvc "github.com/vashudha/ghee-storefront/internal/checkout"
	ordersvc "github.com/vashudha/ghee-storefront/internal/orders"
	productsvc "github.com/vashudha/ghee-storefront/internal/products"
	"github.com/vashudha/ghee-storefront/internal/pricing"
	"github.com/vashudha/ghee-storefront/pkg/auth/session"
	"github.com/vashudha/ghee-storefront/pkg/config"
	"github.com/vashudha/ghee-storefront/pkg/db"
	"github.com/vashudha/ghee-storefront/pkg/logger"
	"github.com/vashudha/ghee-storefront/pkg/redis"
)

// RouterParams bundles everything the HTTP surface needs.
type RouterParams struct {
	Config          *config.Config
	Logger          *logger.Logger
	DB              db.Pinger
	Redis           *redis.Client
	SessionChecker  session.AccessSessionChecker
	AuthService     auth.Service
	RegisterService auth.RegisterService
	Snapshots       *cartsvc.SnapshotSource
	CartService     cartsvc.Service
	ProductService  productsvc.Service
	AddressService  addresssvc.Service
	CheckoutService checkoutsvc.Service
	OrderService    ordersvc.Service
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	pricingCfg := pricing.Config{
		FreeShippingThreshold: cfg.Pricing.FreeShippingThreshold,
		FlatShippingFee:       cfg.Pricing.FlatShippingFee,
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
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
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, p.Redis))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/public", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.GuestCartFetch(p.Snapshots, pricingCfg, logg))
			r.Put("/", controllers.GuestCartSave(p.Snapshots, pricingCfg, logg))
			r.Delete("/", controllers.GuestCartClear(p.Snapshots, pricingCfg, logg))
			r.Post("/items", controllers.GuestCartAddItem(p.Snapshots, pricingCfg, logg))
			r.Patch("/items/{productId}", controllers.GuestCartUpdateItem(p.Snapshots, pricingCfg, logg))
			r.Delete("/items/{productId}", controllers.GuestCartRemoveItem(p.Snapshots, pricingCfg, logg))
		})
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductList(p.ProductService, logg))
		r.Get("/{slug}", controllers.ProductDetail(p.ProductService, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).
			Post("/login", controllers.AuthLogin(p.AuthService, p.Snapshots, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, p.Redis, logg)).
			Post("/register", controllers.AuthRegister(p.RegisterService, logg))
		r.Post("/logout", controllers.AuthLogout(p.AuthService, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.AuthService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.SessionChecker, logg))
		r.Use(middleware.Idempotency(p.Redis, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(p.CartService, pricingCfg, logg))
			r.Delete("/", controllers.CartClear(p.CartService, logg))
			r.Post("/items", controllers.CartAddItem(p.CartService, pricingCfg, logg))
			r.Patch("/items/{productId}", controllers.CartUpdateItem(p.CartService, pricingCfg, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(p.CartService, pricingCfg, logg))
			r.Post("/quote", controllers.CartQuote(p.CartService, pricingCfg, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", controllers.CheckoutSubmit(p.CheckoutService, logg))
			r.Post("/confirm", controllers.CheckoutConfirm(p.CheckoutService, logg))
		})

		r.Route("/addresses", func(r chi.Router) {
			r.Get("/", controllers.AddressList(p.AddressService, logg))
			r.Post("/", controllers.AddressCreate(p.AddressService, logg))
			r.Put("/{addressId}", controllers.AddressUpdate(p.AddressService, logg))
			r.Delete("/{addressId}", controllers.AddressDelete(p.AddressService, logg))
			r.Post("/{addressId}/default", controllers.AddressSetDefault(p.AddressService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(p.OrderService, logg))
			r.Get("/{orderId}", controllers.OrderDetail(p.OrderService, logg))
			r.Post("/{orderId}/cancel", controllers.OrderCancel(p.OrderService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.SessionChecker, logg))
		r.Use(middleware.RequireRole("admin", logg))
		r.Use(middleware.Idempotency(p.Redis, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.AdminProductList(p.ProductService, logg))
			r.Post("/", controllers.AdminProductCreate(p.ProductService, logg))
			r.Patch("/{productId}", controllers.AdminProductUpdate(p.ProductService, logg))
			r.Delete("/{productId}", controllers.AdminProductDelete(p.ProductService, logg))
			r.Post("/{productId}/stock", controllers.AdminProductAdjustStock(p.ProductService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrderList(p.OrderService, logg))
			r.Post("/{orderId}/status", controllers.AdminOrderUpdateStatus(p.OrderService, logg))
		})
	})

	return r
}
