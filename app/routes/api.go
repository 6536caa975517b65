package routes

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/controllers"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/media"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/rbac"
	"github.com/shashiranjanraj/storefront/pkg/router"
	"github.com/shashiranjanraj/storefront/pkg/sse"
)

// Deps are the long-lived handles the API runs on. Only DB is required for
// serving; route:list passes the zero value.
type Deps struct {
	DB     *gorm.DB
	Cache  cache.Store
	Photos services.PhotoStore
	Events services.Publisher
	Limits media.Limits
	// Feed streams order events to admins over a WebSocket. Optional.
	Feed http.Handler
	// Tracking enables per-order Server-Sent Events. Optional.
	Tracking *sse.Broker
}

func RegisterAPI(r *router.Router, d Deps) {
	if d.Limits.MaxFiles == 0 {
		d.Limits = media.DefaultLimits()
	}

	catalog := services.NewCatalogService(d.DB, d.Cache)
	authController := controllers.NewAuthController(services.NewAuthService(repositories.NewUserRepository(d.DB)))
	catalogController := controllers.NewCatalogController(catalog)
	productController := controllers.NewProductController(catalog)
	cartController := controllers.NewCartController(services.NewCartService(d.DB))
	wishlistController := controllers.NewWishlistController(services.NewWishlistService(d.DB))
	orderController := controllers.NewOrderController(services.NewOrderService(d.DB, d.Photos, d.Events), d.Limits, d.Tracking)

	api := r.Group("/api")

	api.Post("/auth/register", "auth.register", ctx.Wrap(authController.Register))
	api.Post("/auth/login", "auth.login", ctx.Wrap(authController.Login))

	api.Get("/products", "products.index", ctx.Wrap(catalogController.Index))
	api.Get("/products/{id}", "products.show", ctx.Wrap(catalogController.Show))
	api.Get("/categories", "categories.index", ctx.Wrap(catalogController.Categories))

	protected := api.Group("", middleware.AuthMiddleware)
	protected.Get("/auth/me", "auth.me", ctx.Wrap(authController.Me))
	protected.Post("/products/{id}/reviews", "products.reviews.store", ctx.Wrap(catalogController.Review))

	protected.Get("/cart", "cart.index", ctx.Wrap(cartController.Index))
	protected.Post("/cart", "cart.store", ctx.Wrap(cartController.Store))
	protected.Put("/cart/{id}", "cart.update", ctx.Wrap(cartController.Update))
	protected.Delete("/cart/{id}", "cart.destroy", ctx.Wrap(cartController.Destroy))

	protected.Get("/wishlist", "wishlist.index", ctx.Wrap(wishlistController.Index))
	protected.Post("/wishlist", "wishlist.store", ctx.Wrap(wishlistController.Store))
	protected.Delete("/wishlist/{id}", "wishlist.destroy", ctx.Wrap(wishlistController.Destroy))

	protected.Get("/orders", "orders.index", ctx.Wrap(orderController.Index))
	protected.Post("/orders", "orders.store", ctx.Wrap(orderController.Store))
	protected.Get("/orders/{id}", "orders.show", ctx.Wrap(orderController.Show))
	if d.Tracking != nil {
		protected.Get("/orders/{id}/events", "orders.events", ctx.Wrap(orderController.Track))
	}

	admin := protected.Group("/admin", rbac.RequireAdmin)
	admin.Put("/orders/{id}", "admin.orders.update", ctx.Wrap(orderController.Update))
	admin.Post("/orders/{id}/photos", "admin.orders.photos", ctx.Wrap(orderController.UploadPhotos))
	admin.Post("/products", "admin.products.store", ctx.Wrap(productController.Store))
	admin.Put("/products/{id}", "admin.products.update", ctx.Wrap(productController.Update))
	admin.Delete("/products/{id}", "admin.products.destroy", ctx.Wrap(productController.Destroy))
	if d.Feed != nil {
		admin.Get("/orders/feed", "admin.orders.feed", d.Feed.ServeHTTP)
	}
}
