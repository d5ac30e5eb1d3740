// Package firebase verifies Firebase ID tokens against Google's published
// signing certificates.
package firebase

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"marketplace-service/internal/domain/identity"
)

const (
	issuerPrefix      = "https://securetoken.google.com/"
	defaultKeysMaxAge = time.Hour

	// minForcedRefresh bounds how often an unknown kid may trigger a fetch.
	minForcedRefresh = time.Minute
)

var (
	// ErrUnknownKey is returned when a token names a signing key that Google does not publish.
	ErrUnknownKey = errors.New("token signed with unknown key")
	// ErrMissingEmail is returned for tokens without an email claim.
	ErrMissingEmail = errors.New("token has no email claim")
)

// Config holds the verifier settings.
type Config struct {
	ProjectID string
	CertsURL  string
	ClockSkew time.Duration
	Timeout   time.Duration
}

type tokenClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	jwt.RegisteredClaims
}

// Verifier checks RS256 ID tokens issued for a single project.
type Verifier struct {
	cfg    Config
	client *resty.Client
	log    *zap.Logger
	group  singleflight.Group
	now    func() time.Time

	mu      sync.RWMutex
	keys    map[string]*rsa.PublicKey
	expires time.Time
	fetched time.Time
}

// NewVerifier creates a Verifier that fetches signing keys from cfg.CertsURL.
func NewVerifier(cfg Config, log *zap.Logger) *Verifier {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(2).
		SetHeader("Accept", "application/json")

	return &Verifier{
		cfg:    cfg,
		client: client,
		log:    log,
		now:    time.Now,
	}
}

// Verify validates the token signature and its standard claims and returns
// the caller's identity.
func (v *Verifier) Verify(ctx context.Context, token string) (*identity.Identity, error) {
	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, v.keyFunc(ctx),
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(v.cfg.ProjectID),
		jwt.WithIssuer(issuerPrefix+v.cfg.ProjectID),
		jwt.WithLeeway(v.cfg.ClockSkew),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid id token: %w", err)
	}
	if !parsed.Valid {
		return nil, errors.New("invalid id token")
	}
	if claims.Subject == "" {
		return nil, errors.New("invalid id token: empty subject")
	}
	if claims.Email == "" {
		return nil, ErrMissingEmail
	}

	return &identity.Identity{UID: claims.Subject, Email: claims.Email}, nil
}

func (v *Verifier) keyFunc(ctx context.Context) jwt.Keyfunc {
	return func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("token has no kid header")
		}

		keys, err := v.publicKeys(ctx, false)
		if err != nil {
			return nil, err
		}
		if key, ok := keys[kid]; ok {
			return key, nil
		}

		// Google may have rotated keys before our cached copy expired
		if v.fetchedWithin(minForcedRefresh) {
			return nil, ErrUnknownKey
		}
		keys, err = v.publicKeys(ctx, true)
		if err != nil {
			return nil, err
		}
		if key, ok := keys[kid]; ok {
			return key, nil
		}
		return nil, ErrUnknownKey
	}
}

func (v *Verifier) publicKeys(ctx context.Context, force bool) (map[string]*rsa.PublicKey, error) {
	if !force {
		v.mu.RLock()
		keys, expires := v.keys, v.expires
		v.mu.RUnlock()
		if keys != nil && v.now().Before(expires) {
			return keys, nil
		}
	}

	result, err, _ := v.group.Do("certs", func() (any, error) {
		return v.refresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.(map[string]*rsa.PublicKey), nil
}

func (v *Verifier) fetchedWithin(d time.Duration) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return !v.fetched.IsZero() && v.now().Sub(v.fetched) < d
}

func (v *Verifier) refresh(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	var certs map[string]string
	resp, err := v.client.R().
		SetContext(ctx).
		SetResult(&certs).
		Get(v.cfg.CertsURL)
	if err != nil {
		v.log.Error("failed to fetch signing certificates", zap.String("url", v.cfg.CertsURL), zap.Error(err))
		return nil, fmt.Errorf("failed to fetch signing certificates: %w", err)
	}
	if resp.IsError() {
		v.log.Error("signing certificate endpoint returned error", zap.Int("status", resp.StatusCode()))
		return nil, fmt.Errorf("signing certificate endpoint returned %d", resp.StatusCode())
	}

	keys := make(map[string]*rsa.PublicKey, len(certs))
	for kid, certPEM := range certs {
		key, err := parseRSACertificate(certPEM)
		if err != nil {
			v.log.Warn("skipping unparsable signing certificate", zap.String("kid", kid), zap.Error(err))
			continue
		}
		keys[kid] = key
	}
	if len(keys) == 0 {
		return nil, errors.New("no usable signing certificates")
	}

	maxAge := cacheMaxAge(resp.Header().Get("Cache-Control"))
	now := v.now()
	v.mu.Lock()
	v.keys = keys
	v.expires = now.Add(maxAge)
	v.fetched = now
	v.mu.Unlock()

	v.log.Debug("signing certificates refreshed", zap.Int("count", len(keys)), zap.Duration("max_age", maxAge))
	return keys, nil
}

func parseRSACertificate(certPEM string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(certPEM))
	if block == nil {
		return nil, errors.New("no PEM block")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, err
	}
	key, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("unexpected key type %T", cert.PublicKey)
	}
	return key, nil
}

// cacheMaxAge extracts max-age from a Cache-Control header.
func cacheMaxAge(header string) time.Duration {
	for _, directive := range strings.Split(header, ",") {
		name, value, ok := strings.Cut(strings.TrimSpace(directive), "=")
		if !ok || !strings.EqualFold(name, "max-age") {
			continue
		}
		if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultKeysMaxAge
}
