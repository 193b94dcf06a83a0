package handler

import (
	"fmt"
	"log/slog"

	"libraryhub/internal/authz"
	"libraryhub/internal/http-api/middleware"
	"libraryhub/internal/http-api/service"
	"libraryhub/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Services bundles what the API routes need.
type Services struct {
	Auth       service.AuthService
	Identities service.IdentityService
	Books      service.BookService
	Authorizer *authz.Authorizer
	Limiter    *middleware.RateLimiter
	Logger     *slog.Logger
}

// NewRouter builds the engine with logging, recovery and metrics. Only the
// listed proxies may set the client address through X-Forwarded-For; with
// none, the throttle keys on the connection's remote address.
func NewRouter(trustedProxies []string) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(trustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(metrics.Middleware())
	return r, nil
}

// RegisterRoutes mounts every API route under /api.
func RegisterRoutes(router *gin.Engine, s Services) {
	api := router.Group("/api")

	authGroup := api.Group("/auth")
	var throttle []gin.HandlerFunc
	if s.Limiter != nil {
		throttle = append(throttle, s.Limiter.Middleware())
	}
	NewAuthHandler(s.Auth, s.Logger).RegisterRoutes(authGroup, throttle...)

	catalog := api.Group("")
	catalog.Use(middleware.Authenticate(s.Auth, s.Identities, s.Logger))

	NewBookHandler(s.Books, s.Logger).RegisterRoutes(catalog.Group("/books"))
	libraries := NewLibraryHandler(s.Books, s.Logger)
	libraries.RegisterRoutes(catalog.Group("/libraries"))
	libraries.RegisterAuthorRoutes(catalog.Group("/authors"))
	NewRoleHandler(s.Authorizer).RegisterRoutes(catalog.Group("/roles"))
}
