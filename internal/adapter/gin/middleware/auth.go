package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"marketplace-service/internal/domain/identity"
	pkgerrors "marketplace-service/pkg/errors"
	"marketplace-service/pkg/logger"
)

const identityKey = "identity"

// Verifier checks a bearer token and returns the verified caller.
type Verifier interface {
	Verify(ctx context.Context, token string) (*identity.Identity, error)
}

// AuthFailureRecorder counts rejected requests.
type AuthFailureRecorder interface {
	RecordAuthFailure()
}

// Auth returns a Gin middleware that admits only requests carrying a valid
// "Authorization: Bearer <token>" header. Rejected requests get a 401 and the
// handler is not invoked. rec may be nil.
func Auth(v Verifier, rec AuthFailureRecorder, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			reject(c, rec, logger.WithContext(c.Request.Context(), log), "missing or malformed authorization header", nil)
			return
		}

		id, err := v.Verify(c.Request.Context(), token)
		if err != nil {
			reject(c, rec, logger.WithContext(c.Request.Context(), log), "token verification failed", err)
			return
		}

		c.Set(identityKey, id)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), id.Email))
		c.Next()
	}
}

// IdentityFrom returns the caller admitted by Auth.
func IdentityFrom(c *gin.Context) (*identity.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	id, ok := v.(*identity.Identity)
	return id, ok && id != nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func reject(c *gin.Context, rec AuthFailureRecorder, log *zap.Logger, reason string, err error) {
	log.Warn("unauthorized request",
		zap.String("reason", reason),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	if rec != nil {
		rec.RecordAuthFailure()
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": pkgerrors.ErrUnauthorized.Message})
}
