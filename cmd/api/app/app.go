package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"go.uber.org/zap"

	"marketplace-service/cmd/api/di"
	"marketplace-service/cmd/api/server"
	"marketplace-service/internal/config"
	"marketplace-service/pkg/logger"
)

// App ties the configuration, the dependency container and the HTTP server
// together for one process lifetime.
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Server    *server.Server
	Container *di.Container
}

// New loads configuration from CONFIG_PATH (default ".") and builds the app.
func New() (*App, error) {
	cfg, err := config.LoadConfig(configPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig builds the app from an already loaded configuration.
func NewWithConfig(cfg *config.Config) (*App, error) {
	l, err := logger.NewWithConfig(logger.Config{
		Level:            cfg.Logger.Level,
		Format:           cfg.Logger.Format,
		OutputPath:       cfg.Logger.OutputPath,
		SlowQuerySeconds: cfg.Logger.SlowQuerySeconds,
		EnableSampling:   cfg.Logger.EnableSampling,
		ServiceName:      cfg.Logger.ServiceName,
		ServiceVersion:   cfg.Logger.ServiceVersion,
		Environment:      cfg.App.Env,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	container, err := di.NewContainer(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to create container: %w", err)
	}

	return &App{
		Config:    cfg,
		Logger:    l,
		Server:    server.New(cfg, l, container.Router),
		Container: container,
	}, nil
}

// Run serves until ctx is canceled or the server fails, then releases every
// resource the container holds.
func (a *App) Run(ctx context.Context) error {
	a.Logger.Info("starting marketplace service",
		zap.String("http_port", a.Config.App.HTTPPort),
		zap.String("db_driver", a.Config.DB.Driver),
		zap.Bool("redis_enabled", a.Config.Redis.Enabled),
		zap.Bool("rate_limit_enabled", a.Config.RateLimit.Enabled),
		zap.Bool("protect_all_writes", a.Config.Auth.ProtectAllWrites),
	)

	errCh := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				a.Logger.Error("server panic", zap.Any("panic", r), zap.Stack("stack"))
				errCh <- fmt.Errorf("server panic: %v", r)
			}
		}()
		errCh <- a.Server.Start()
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		a.Logger.Info("shutting down application...")
	case err := <-errCh:
		if err != nil {
			serveErr = fmt.Errorf("server error: %w", err)
		}
	}

	return errors.Join(serveErr, a.shutdown())
}

// shutdown drains in-flight requests within the configured timeout and then
// closes the store and cache connections.
func (a *App) shutdown() error {
	timeout := time.Duration(a.Config.App.ShutdownTimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	a.Logger.Info("starting graceful shutdown", zap.Duration("timeout", timeout))

	var errs []error
	if err := a.Server.Shutdown(ctx); err != nil {
		a.Logger.Error("failed to shutdown HTTP server", zap.Error(err))
		errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
	}

	if a.Container != nil {
		if err := a.Container.Close(); err != nil {
			a.Logger.Error("failed to close container", zap.Error(err))
			errs = append(errs, fmt.Errorf("container close: %w", err))
		}
	}

	a.Logger.Info("application shutdown complete")

	// Syncing a terminal is not supported on every platform
	if err := a.Logger.Sync(); err != nil && !errors.Is(err, syscall.EINVAL) && !errors.Is(err, syscall.ENOTTY) {
		errs = append(errs, fmt.Errorf("logger sync: %w", err))
	}

	return errors.Join(errs...)
}

func configPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return "."
}
