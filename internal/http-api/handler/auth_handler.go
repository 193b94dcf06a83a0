package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"libraryhub/internal/http-api/dto"
	"libraryhub/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService service.AuthService
	logger      *slog.Logger
}

func NewAuthHandler(authService service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

// RegisterRoutes mounts the handler under /auth; extra handlers (the rate
// limiter) run before every endpoint.
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup, before ...gin.HandlerFunc) {
	with := func(fn gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, before...), fn)
	}
	rg.POST("/register", with(h.Register)...)
	rg.POST("/login", with(h.Login)...)
	rg.POST("/refresh", with(h.RefreshToken)...)
	rg.POST("/logout", with(h.RevokeToken)...)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.authService.Register(ctx, req.Username, req.Password, req.Email)
	if errors.Is(err, service.ErrNameInUse) || errors.Is(err, service.ErrEmailInUse) {
		c.JSON(http.StatusConflict, gin.H{"error": "Account creation failed"})
		return
	}
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	role := ""
	if user.Profile != nil {
		role = user.Profile.Role
	}
	c.JSON(http.StatusCreated, dto.RegisterResponse{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     role,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	accessToken, refreshToken, user, err := h.authService.Login(ctx, req.Username, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		UserID:       user.ID,
		Username:     user.Username,
		ExpiresIn:    int64(h.authService.AccessTokenTTL().Seconds()),
	})
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	accessToken, err := h.authService.RefreshAccessToken(ctx, req.RefreshToken)
	if errors.Is(err, service.ErrInvalidToken) || errors.Is(err, service.ErrExpiredToken) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.RefreshResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.authService.AccessTokenTTL().Seconds()),
	})
}

func (h *AuthHandler) RevokeToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.authService.RevokeToken(ctx, req.RefreshToken); err != nil {
		h.logger.Warn("token_revoke_failed", "error", err)
	}

	// always success, so the endpoint does not reveal whether a token exists
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "logged out"})
}
