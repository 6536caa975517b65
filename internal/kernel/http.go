// Package kernel assembles the storefront's HTTP handler: global middleware,
// operational endpoints and the API routes.
package kernel

import (
	"context"
	"net/http"

	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/storefront/app/routes"
	gql "github.com/shashiranjanraj/storefront/pkg/graphql"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/reqid"
	"github.com/shashiranjanraj/storefront/pkg/response"
	"github.com/shashiranjanraj/storefront/pkg/router"
)

// Options configures the kernel. The zero value serves only the API routes
// on an unconfigured Deps, which is enough for listing routes.
type Options struct {
	routes.Deps

	// Ping backs /healthz. Nil reports healthy.
	Ping func(ctx context.Context) error
	// Schema enables POST /graphql.
	Schema *graphql.Schema
	// UploadsDir is served read-only under /uploads when set.
	UploadsDir string
	// Limiter rate-limits every request when set.
	Limiter *middleware.Limiter
	CORS    *middleware.CORSOptions
}

type HTTPKernel struct {
	router *router.Router
}

// NewHTTPKernel builds the router. Global middleware, outermost first:
//
//  1. metrics, so latency covers everything below
//  2. recovery
//  3. request ID, before anything logs
//  4. request logger
//  5. CORS
//  6. rate limiter
func NewHTTPKernel(o Options) *HTTPKernel {
	r := router.New()

	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	cors := middleware.DefaultCORSOptions()
	if o.CORS != nil {
		cors = *o.CORS
	}
	r.Use(middleware.CORS(cors))
	if o.Limiter != nil {
		r.Use(middleware.RateLimit(o.Limiter))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/metrics", "metrics", metrics.Handler())
	r.Get("/healthz", "healthz", health(o.Ping))
	if o.UploadsDir != "" {
		r.Mount("/uploads", "uploads", http.StripPrefix("/uploads", http.FileServer(http.Dir(o.UploadsDir))))
	}
	if o.Schema != nil {
		r.Post("/graphql", "graphql", gql.Handler(*o.Schema))
	}

	routes.RegisterAPI(r, o.Deps)
	return &HTTPKernel{router: r}
}

func (k *HTTPKernel) Handler() http.Handler { return k.router.Handler() }

// Routes lists every registered endpoint.
func (k *HTTPKernel) Routes() []router.Route { return k.router.Routes() }

func health(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			if err := ping(r.Context()); err != nil {
				response.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
