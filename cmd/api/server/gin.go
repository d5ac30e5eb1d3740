package server

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// SetupGinServer wraps the configured Gin router in an http.Server
func SetupGinServer(router http.Handler, ginAddr string, l *zap.Logger) *http.Server {
	l.Info("Gin REST API configured", zap.String("address", ginAddr))

	return &http.Server{
		Addr:              ginAddr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
