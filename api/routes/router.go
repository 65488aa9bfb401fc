package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/storefrontlabs/storefront-backend/api/controllers"
	"github.com/storefrontlabs/storefront-backend/api/middleware"
	cartsvc "github.com/storefrontlabs/storefront-backend/internal/cart"
	categorysvc "github.com/storefrontlabs/storefront-backend/internal/categories"
	chatsvc "github.com/storefrontlabs/storefront-backend/internal/chat"
	checkoutsvc "github.com/storefrontlabs/storefront-backend/internal/checkout"
	couponsvc "github.com/storefrontlabs/storefront-backend/internal/coupons"
	coursesvc "github.com/storefrontlabs/storefront-backend/internal/courses"
	ordersvc "github.com/storefrontlabs/storefront-backend/internal/orders"
	productsvc "github.com/storefrontlabs/storefront-backend/internal/products"
	wishlistsvc "github.com/storefrontlabs/storefront-backend/internal/wishlist"
	"github.com/storefrontlabs/storefront-backend/pkg/config"
	"github.com/storefrontlabs/storefront-backend/pkg/logger"
	"github.com/storefrontlabs/storefront-backend/pkg/metrics"
	"github.com/storefrontlabs/storefront-backend/pkg/redis"
)

// Services bundles everything the HTTP surface depends on.
type Services struct {
	Products   productsvc.Service
	Categories categorysvc.Service
	Coupons    couponsvc.Service
	Cart       cartsvc.Service
	Wishlist   wishlistsvc.Service
	Checkout   checkoutsvc.Service
	Orders     ordersvc.Service
	Courses    coursesvc.Service
	Chat       chatsvc.Service
}

// NewRouter wires middleware and routes. Catalog reads are public; cart,
// wishlist, checkout, orders, and chat need a bearer token; the back office
// additionally needs the admin role.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	httpMetrics *metrics.HTTPMetrics,
	gatherer prometheus.Gatherer,
	dbPinger controllers.Pinger,
	redisClient *redis.Client,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		middleware.Metrics(httpMetrics),
	)

	readiness := map[string]controllers.Pinger{}
	if dbPinger != nil {
		readiness["database"] = dbPinger
	}
	var idemStore middleware.IdempotencyStore
	if redisClient != nil {
		readiness["redis"] = redisClient
		idemStore = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	// Public catalog surface.
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductsList(svcs.Products, logg))
		r.Get("/{productId}", controllers.ProductGet(svcs.Products, logg))
	})
	r.Route("/api/v1/categories", func(r chi.Router) {
		r.Get("/", controllers.CategoriesList(svcs.Categories, logg))
		r.Get("/{categoryId}", controllers.CategoryGet(svcs.Categories, logg))
	})

	// Shopper surface.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idemStore, cfg.Checkout.IdempotencyTTL, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(svcs.Cart, logg))
			r.Post("/items", controllers.CartAddItem(svcs.Cart, logg))
			r.Patch("/items/{productId}", controllers.CartUpdateItem(svcs.Cart, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(svcs.Cart, logg))
			r.Delete("/", controllers.CartClear(svcs.Cart, logg))
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", controllers.WishlistList(svcs.Wishlist, logg))
			r.Post("/items", controllers.WishlistAddItem(svcs.Wishlist, logg))
			r.Delete("/items/{productId}", controllers.WishlistRemoveItem(svcs.Wishlist, logg))
		})

		r.Post("/coupons/validate", controllers.CouponValidate(svcs.Coupons, svcs.Cart, logg))
		r.Post("/checkout", controllers.Checkout(svcs.Checkout, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrdersList(svcs.Orders, logg))
			r.Get("/{orderId}", controllers.OrderGet(svcs.Orders, logg))
			r.Post("/{orderId}/cancel", controllers.OrderCancel(svcs.Orders, logg))
		})

		r.Get("/courses", controllers.MyCourses(svcs.Courses, logg))
		r.Post("/chat", controllers.Chat(svcs.Chat, logg))
	})

	// Back office.
	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole("admin", logg))

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.AdminCreateProduct(svcs.Products, logg))
			r.Patch("/{productId}", controllers.AdminUpdateProduct(svcs.Products, logg))
			r.Delete("/{productId}", controllers.AdminDeleteProduct(svcs.Products, logg))
			r.Post("/{productId}/stock", controllers.AdminAdjustStock(svcs.Products, logg))
			r.Post("/{productId}/courses", controllers.AdminAttachCourse(svcs.Courses, logg))
			r.Delete("/{productId}/courses/{courseId}", controllers.AdminDetachCourse(svcs.Courses, logg))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", controllers.AdminCreateCategory(svcs.Categories, logg))
			r.Patch("/{categoryId}", controllers.AdminUpdateCategory(svcs.Categories, logg))
			r.Delete("/{categoryId}", controllers.AdminDeleteCategory(svcs.Categories, logg))
		})

		r.Route("/coupons", func(r chi.Router) {
			r.Get("/", controllers.AdminCouponsList(svcs.Coupons, logg))
			r.Post("/", controllers.AdminCreateCoupon(svcs.Coupons, logg))
			r.Get("/{couponId}", controllers.AdminCouponGet(svcs.Coupons, logg))
			r.Patch("/{couponId}", controllers.AdminUpdateCoupon(svcs.Coupons, logg))
			r.Delete("/{couponId}", controllers.AdminDeleteCoupon(svcs.Coupons, logg))
		})
	})

	return r
}
