package di

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"marketplace-service/cmd/api/infrastructure"
	"marketplace-service/internal/adapter/cache"
	"marketplace-service/internal/adapter/db/docstore"
	ginhandler "marketplace-service/internal/adapter/gin/handler"
	"marketplace-service/internal/adapter/gin/middleware"
	ginrouter "marketplace-service/internal/adapter/gin/router"
	"marketplace-service/internal/adapter/identity/firebase"
	"marketplace-service/internal/adapter/repository/cached"
	"marketplace-service/internal/config"
	"marketplace-service/internal/usecase/bid"
	"marketplace-service/internal/usecase/product"
	"marketplace-service/internal/usecase/user"
	"marketplace-service/pkg/metrics"
	redisclient "marketplace-service/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	RedisClient *redisclient.Client
	Metrics     *metrics.Metrics
	Verifier    *firebase.Verifier
	UserUC      user.Usecase
	ProductUC   product.Usecase
	BidUC       bid.Usecase
	RateLimiter *middleware.RateLimiter
	Handlers    ginrouter.Handlers
	Router      *gin.Engine

	productRepo product.Repository
}

// NewContainer creates and initializes all application dependencies
func NewContainer(cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Initialize token verifier first; a bad service key must stop startup
	// before any connection is opened.
	verifier, err := infrastructure.NewTokenVerifier(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token verifier: %w", err)
	}

	// Initialize database
	db, err := infrastructure.NewDatabase(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize Redis client
	rdb, err := infrastructure.NewRedisClient(cfg, l)
	if err != nil {
		_ = infrastructure.CloseDatabase(db)
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	c := &Container{
		Config:      cfg,
		Logger:      l,
		DB:          db,
		RedisClient: rdb,
		Verifier:    verifier,
	}
	if cfg.Metrics.Enabled {
		c.Metrics = metrics.New("marketplace")
	}

	timeout := time.Duration(cfg.DB.OperationTimeoutSeconds) * time.Second

	// Initialize repositories
	var productRepo product.Repository = docstore.NewProductRepo(db, timeout, l)
	if rdb != nil {
		productCache := cache.NewRedisProductCache(
			rdb.Client,
			time.Duration(cfg.Redis.CacheTTL)*time.Second,
			l,
		)
		productRepo = cached.NewCachedProductRepository(productRepo, productCache, l)
	}

	// Initialize use cases
	c.UserUC = user.New(docstore.NewUserRepo(db, timeout, l), l)
	c.productRepo = productRepo
	c.ProductUC = product.New(productRepo, l)
	c.BidUC = bid.New(docstore.NewBidRepo(db, timeout, l), l)

	// Initialize rate limiter
	if cfg.RateLimit.Enabled {
		var client *redis.Client
		if rdb != nil {
			client = rdb.Client
		}
		var rec middleware.RateLimitRecorder
		if c.Metrics != nil {
			rec = c.Metrics
		}
		c.RateLimiter = middleware.NewRateLimiter(
			client,
			middleware.RateLimiterConfig{
				RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
				BurstCapacity:     cfg.RateLimit.BurstCapacity,
				Enabled:           cfg.RateLimit.Enabled,
			},
			rec,
			l,
		)
	}

	// Initialize Gin handlers
	checks := map[string]ginhandler.PingFunc{
		"database": func(ctx context.Context) error { return docstore.Ping(ctx, db) },
	}
	if rdb != nil {
		checks["redis"] = rdb.Ping
	}
	c.Handlers = ginrouter.Handlers{
		User:    ginhandler.NewUserHandler(c.UserUC, l),
		Product: ginhandler.NewProductHandler(c.ProductUC, l),
		Bid:     ginhandler.NewBidHandler(c.BidUC, l),
		Health:  ginhandler.NewHealthHandler(cfg.Logger.ServiceName, checks, timeout, l),
	}

	c.Router = ginrouter.SetupRouter(c.Handlers, ginrouter.Options{
		Verifier:           verifier,
		ProtectAllWrites:   cfg.Auth.ProtectAllWrites,
		CORSAllowedOrigins: cfg.App.CORSAllowedOrigins,
		TrustedProxies:     cfg.App.TrustedProxies,
		RateLimiter:        c.RateLimiter,
		Metrics:            c.Metrics,
		MetricsPath:        cfg.Metrics.Path,
	}, l)

	return c, nil
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	// Close Redis connection
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	// Close database connection
	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("container close errors: %v", errs)
	}

	return nil
}
