package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"libraryhub/internal/authz"
	"libraryhub/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// Authenticate resolves the caller of every request. Requests without an
// Authorization header continue as the anonymous identity; a header that is
// present but malformed or carries an invalid token is rejected with 401.
func Authenticate(authService service.AuthService, identities service.IdentityService, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Set(identityKey, authz.Anonymous())
			c.Next()
			return
		}

		// format: "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, service.ErrExpiredToken) {
				msg = "token has expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		id, err := identities.Resolve(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				return
			}
			logger.Error("identity_resolve_failed", "user_id", claims.UserID, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		c.Set(identityKey, id)
		c.Set("userID", id.UserID)
		c.Next()
	}
}

// IdentityFrom returns the caller stored by Authenticate, or the anonymous
// identity when the middleware did not run.
func IdentityFrom(c *gin.Context) authz.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(authz.Identity); ok {
			return id
		}
	}
	return authz.Anonymous()
}

// SetIdentity stores id on the context; used by Authenticate and tests.
func SetIdentity(c *gin.Context, id authz.Identity) {
	c.Set(identityKey, id)
}
