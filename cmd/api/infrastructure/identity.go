package infrastructure

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"marketplace-service/internal/adapter/identity/firebase"
	"marketplace-service/internal/config"
)

// NewTokenVerifier builds the ID-token verifier for the project named in the
// configured service key.
func NewTokenVerifier(cfg *config.Config, l *zap.Logger) (*firebase.Verifier, error) {
	account, err := firebase.ParseServiceAccount(cfg.Auth.ServiceKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read service key: %w", err)
	}

	l.Info("token verifier configured",
		zap.String("project_id", account.ProjectID),
		zap.String("certs_url", cfg.Auth.CertsURL),
	)

	return firebase.NewVerifier(firebase.Config{
		ProjectID: account.ProjectID,
		CertsURL:  cfg.Auth.CertsURL,
		ClockSkew: time.Duration(cfg.Auth.ClockSkewSeconds) * time.Second,
		Timeout:   time.Duration(cfg.Auth.CertsTimeoutSecond) * time.Second,
	}, l), nil
}
