package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"marketplace-service/internal/adapter/gin/handler"
	"marketplace-service/internal/adapter/gin/middleware"
	"marketplace-service/pkg/logger"
	"marketplace-service/pkg/metrics"
)

// AuthPolicy declares whether a route sits behind the bearer-token gate.
type AuthPolicy int

const (
	// Public routes are never gated.
	Public AuthPolicy = iota
	// Protected routes always require a verified bearer token.
	Protected
	// ProtectedWrite routes require a token only when all writes are protected.
	ProtectedWrite
)

// Route is one entry of the route table.
type Route struct {
	Method  string
	Path    string
	Auth    AuthPolicy
	Handler gin.HandlerFunc
}

// Handlers groups the route handlers.
type Handlers struct {
	User    *handler.UserHandler
	Product *handler.ProductHandler
	Bid     *handler.BidHandler
	Health  *handler.HealthHandler
}

// Options configures the global middleware and the auth policy.
type Options struct {
	Verifier           middleware.Verifier
	ProtectAllWrites   bool
	CORSAllowedOrigins []string
	TrustedProxies     []string                // empty trusts no proxy headers
	RateLimiter        *middleware.RateLimiter // nil disables rate limiting
	Metrics            *metrics.Metrics        // nil disables metrics
	MetricsPath        string
}

// Routes returns the route table. POST /users stays public in every mode so
// that new users can register.
func Routes(h Handlers) []Route {
	return []Route{
		{http.MethodGet, "/", Public, h.Health.Root},
		{http.MethodGet, "/health", Public, h.Health.Health},

		{http.MethodPost, "/users", Public, h.User.RegisterUser},

		{http.MethodGet, "/products", Public, h.Product.ListProducts},
		{http.MethodGet, "/latest-products", Public, h.Product.LatestProducts},
		{http.MethodGet, "/products/:id", Public, h.Product.GetProduct},
		{http.MethodPost, "/products", Protected, h.Product.CreateProduct},
		{http.MethodPatch, "/products/:id", ProtectedWrite, h.Product.UpdateProduct},
		{http.MethodDelete, "/products/:id", ProtectedWrite, h.Product.DeleteProduct},

		{http.MethodGet, "/bids", Public, h.Bid.ListBids},
		{http.MethodPost, "/bids", ProtectedWrite, h.Bid.CreateBid},
		{http.MethodDelete, "/bids/:id", ProtectedWrite, h.Bid.DeleteBid},
	}
}

// RequiresAuth reports whether the route is gated under the given mode.
func (r Route) RequiresAuth(protectAllWrites bool) bool {
	switch r.Auth {
	case Protected:
		return true
	case ProtectedWrite:
		return protectAllWrites
	default:
		return false
	}
}

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(h Handlers, opts Options, log *zap.Logger) *gin.Engine {
	router := gin.New()
	if err := router.SetTrustedProxies(opts.TrustedProxies); err != nil {
		log.Error("invalid trusted proxies, trusting none", zap.Strings("proxies", opts.TrustedProxies), zap.Error(err))
		_ = router.SetTrustedProxies(nil)
	}

	// Global middleware. Recovery sits inside logging and metrics so that
	// recovered panics are still recorded as 500s.
	router.Use(logger.RequestID())
	router.Use(logger.AccessLog(log))
	if opts.Metrics != nil {
		router.Use(middleware.Metrics(opts.Metrics))
	}
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(opts.CORSAllowedOrigins))
	if opts.RateLimiter != nil {
		router.Use(opts.RateLimiter.Middleware())
	}

	var rec middleware.AuthFailureRecorder
	if opts.Metrics != nil {
		rec = opts.Metrics
	}
	auth := middleware.Auth(opts.Verifier, rec, log)

	for _, rt := range Routes(h) {
		if rt.RequiresAuth(opts.ProtectAllWrites) {
			router.Handle(rt.Method, rt.Path, auth, rt.Handler)
			continue
		}
		router.Handle(rt.Method, rt.Path, rt.Handler)
	}

	if opts.Metrics != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.GET(path, gin.WrapH(opts.Metrics.Handler()))
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handler.ErrorResponse{Error: "not_found", Message: "route not found"})
	})

	return router
}
