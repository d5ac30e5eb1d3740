package firebase

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testProject = "smart-deals"

type certServer struct {
	*httptest.Server
	hits atomic.Int32
}

func newCertServer(t *testing.T, certs map[string]string) *certServer {
	cs := &certServer{}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		cs.hits.Add(1)
		w.Header().Set("Content-Type", "application/json; charset=UTF-8")
		w.Header().Set("Cache-Control", "public, max-age=3600, must-revalidate, no-transform")
		_ = json.NewEncoder(w).Encode(certs)
	}))
	t.Cleanup(cs.Close)
	return cs
}

func newSigningKey(t *testing.T) (*rsa.PrivateKey, string) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "securetoken.system.gserviceaccount.com"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	return key, string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}))
}

func validClaims() jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"iss":            issuerPrefix + testProject,
		"aud":            testProject,
		"sub":            "uid-123",
		"email":          "seller@example.com",
		"email_verified": true,
		"iat":            now.Add(-time.Minute).Unix(),
		"exp":            now.Add(time.Hour).Unix(),
	}
}

func sign(t *testing.T, key *rsa.PrivateKey, kid string, claims jwt.MapClaims) string {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func newTestVerifier(t *testing.T, url string) *Verifier {
	return NewVerifier(Config{
		ProjectID: testProject,
		CertsURL:  url,
		ClockSkew: 0,
		Timeout:   5 * time.Second,
	}, zaptest.NewLogger(t))
}

func TestVerify_Valid(t *testing.T) {
	key, certPEM := newSigningKey(t)
	srv := newCertServer(t, map[string]string{"kid-1": certPEM})
	v := newTestVerifier(t, srv.URL)

	id, err := v.Verify(context.Background(), sign(t, key, "kid-1", validClaims()))
	require.NoError(t, err)
	assert.Equal(t, "uid-123", id.UID)
	assert.Equal(t, "seller@example.com", id.Email)

	// Keys are cached for the advertised max-age
	_, err = v.Verify(context.Background(), sign(t, key, "kid-1", validClaims()))
	require.NoError(t, err)
	assert.Equal(t, int32(1), srv.hits.Load())
}

func TestVerify_Rejects(t *testing.T) {
	key, certPEM := newSigningKey(t)
	otherKey, _ := newSigningKey(t)
	srv := newCertServer(t, map[string]string{"kid-1": certPEM})

	with := func(k string, val any) jwt.MapClaims {
		c := validClaims()
		if val == nil {
			delete(c, k)
		} else {
			c[k] = val
		}
		return c
	}

	tests := []struct {
		name  string
		token func() string
	}{
		{"garbage", func() string { return "not.a.token" }},
		{"wrong audience", func() string { return sign(t, key, "kid-1", with("aud", "other-project")) }},
		{"wrong issuer", func() string { return sign(t, key, "kid-1", with("iss", "https://evil.example")) }},
		{"expired", func() string { return sign(t, key, "kid-1", with("exp", time.Now().Add(-time.Hour).Unix())) }},
		{"no expiry", func() string { return sign(t, key, "kid-1", with("exp", nil)) }},
		{"issued in future", func() string { return sign(t, key, "kid-1", with("iat", time.Now().Add(time.Hour).Unix())) }},
		{"missing email", func() string { return sign(t, key, "kid-1", with("email", nil)) }},
		{"empty subject", func() string { return sign(t, key, "kid-1", with("sub", "")) }},
		{"unknown kid", func() string { return sign(t, key, "kid-9", validClaims()) }},
		{"wrong signer", func() string { return sign(t, otherKey, "kid-1", validClaims()) }},
		{"hmac algorithm", func() string {
			token := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims())
			token.Header["kid"] = "kid-1"
			s, err := token.SignedString([]byte("secret"))
			require.NoError(t, err)
			return s
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestVerifier(t, srv.URL)
			id, err := v.Verify(context.Background(), tt.token())
			assert.Error(t, err)
			assert.Nil(t, id)
		})
	}
}

func TestVerify_RefreshesOnUnknownKid(t *testing.T) {
	oldKey, oldPEM := newSigningKey(t)
	newKey, newPEM := newSigningKey(t)

	certs := map[string]string{"old": oldPEM}
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := hits.Add(1)
		if n > 1 {
			certs = map[string]string{"old": oldPEM, "new": newPEM}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(certs)
	}))
	t.Cleanup(srv.Close)

	v := newTestVerifier(t, srv.URL)
	clock := time.Now()
	v.now = func() time.Time { return clock }

	_, err := v.Verify(context.Background(), sign(t, oldKey, "old", validClaims()))
	require.NoError(t, err)

	// Too soon after the last fetch to force another
	_, err = v.Verify(context.Background(), sign(t, newKey, "new", validClaims()))
	assert.ErrorIs(t, err, ErrUnknownKey)
	assert.Equal(t, int32(1), hits.Load())

	clock = clock.Add(minForcedRefresh + time.Second)
	_, err = v.Verify(context.Background(), sign(t, newKey, "new", validClaims()))
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestVerify_UnknownKidFloodIsThrottled(t *testing.T) {
	key, certPEM := newSigningKey(t)
	srv := newCertServer(t, map[string]string{"kid-1": certPEM})
	v := newTestVerifier(t, srv.URL)
	clock := time.Now()
	v.now = func() time.Time { return clock }

	_, err := v.Verify(context.Background(), sign(t, key, "kid-1", validClaims()))
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		_, err := v.Verify(context.Background(), sign(t, key, fmt.Sprintf("bogus-%d", i), validClaims()))
		assert.ErrorIs(t, err, ErrUnknownKey)
	}
	assert.Equal(t, int32(1), srv.hits.Load())

	clock = clock.Add(minForcedRefresh)
	_, err = v.Verify(context.Background(), sign(t, key, "bogus-next", validClaims()))
	assert.ErrorIs(t, err, ErrUnknownKey)
	assert.Equal(t, int32(2), srv.hits.Load())

	_, err = v.Verify(context.Background(), sign(t, key, "bogus-again", validClaims()))
	assert.ErrorIs(t, err, ErrUnknownKey)
	assert.Equal(t, int32(2), srv.hits.Load())
}

func TestVerify_CertEndpointDown(t *testing.T) {
	key, _ := newSigningKey(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	v := newTestVerifier(t, srv.URL)
	_, err := v.Verify(context.Background(), sign(t, key, "kid-1", validClaims()))
	assert.Error(t, err)
}

func TestCacheMaxAge(t *testing.T) {
	assert.Equal(t, 19302*time.Second, cacheMaxAge("public, max-age=19302, must-revalidate, no-transform"))
	assert.Equal(t, defaultKeysMaxAge, cacheMaxAge(""))
	assert.Equal(t, defaultKeysMaxAge, cacheMaxAge("max-age=abc"))
}

func TestParseServiceAccount(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte(`{"type":"service_account","project_id":"smart-deals","client_email":"svc@smart-deals.iam.gserviceaccount.com"}`))

	sa, err := ParseServiceAccount(encoded)
	require.NoError(t, err)
	assert.Equal(t, "smart-deals", sa.ProjectID)
	assert.Equal(t, "service_account", sa.Type)

	_, err = ParseServiceAccount("%%%")
	assert.ErrorContains(t, err, "decode")

	_, err = ParseServiceAccount(base64.StdEncoding.EncodeToString([]byte(`{"type":"service_account"}`)))
	assert.ErrorContains(t, err, "project_id")
}
