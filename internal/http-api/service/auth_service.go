package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"libraryhub/database"
	"libraryhub/internal/authz"
	"libraryhub/internal/config"
	"libraryhub/internal/http-api/models"
	"libraryhub/internal/http-api/repository"
	"libraryhub/internal/middleware/auth"
	"libraryhub/internal/shared"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNameInUse          = errors.New("username already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrEmailInUse         = errors.New("email already in use")
)

type AuthService interface {
	Register(ctx context.Context, username, password, email string) (*models.User, error)
	Login(ctx context.Context, username, password string) (accessToken, refreshToken string, user *models.User, err error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (newAccessToken string, err error)
	RevokeToken(ctx context.Context, refreshToken string) error
	ValidateToken(tokenString string) (*shared.AuthClaims, error)
	AccessTokenTTL() time.Duration
}

type authService struct {
	userRepo         repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository
	jwtSecret        string
	accessTokenTTL   time.Duration
	refreshTokenTTL  time.Duration
	logger           *slog.Logger
}

func NewAuthService(
	userRepo repository.UserRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	cfg *config.Config,
	logger *slog.Logger,
) AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &authService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		jwtSecret:        cfg.JWTSecret,
		accessTokenTTL:   cfg.AccessTokenTTL,
		refreshTokenTTL:  cfg.RefreshTokenTTL,
		logger:           logger,
	}
}

func (s *authService) AccessTokenTTL() time.Duration {
	return s.accessTokenTTL
}

// Register creates the account with a Member profile. It joins no group, so
// the new user can read the catalog and nothing more.
func (s *authService) Register(ctx context.Context, username, password, email string) (*models.User, error) {
	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		return nil, ErrNameInUse
	}
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailInUse
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:       uuid.New().String(),
		Username: username,
		Email:    email,
		Password: hashedPassword,
		Profile:  &models.UserProfile{Role: string(authz.RoleMember)},
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// lost a race against a concurrent registration
		if database.IsUniqueViolation(err) {
			if _, findErr := s.userRepo.FindByEmail(ctx, email); findErr == nil {
				return nil, ErrEmailInUse
			}
			return nil, ErrNameInUse
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user_registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (string, string, *models.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		auth.BurnCompare(password)
		return "", "", nil, ErrInvalidCredentials
	}

	if err := auth.VerifyPassword(user.Password, password); err != nil {
		s.logger.Warn("login_failed", "username", username)
		return "", "", nil, ErrInvalidCredentials
	}

	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return "", "", nil, err
	}
	refreshToken, err := s.generateRefreshToken(ctx, user)
	if err != nil {
		return "", "", nil, err
	}

	if err := s.userRepo.TouchLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("last_login_update_failed", "user_id", user.ID, "error", err)
	}
	return accessToken, refreshToken, user, nil
}

func (s *authService) generateAccessToken(user *models.User) (string, error) {
	now := time.Now()
	claims := shared.AuthClaims{
		UserID:   user.ID,
		UserName: user.Username,
		Type:     shared.TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *authService) generateRefreshToken(ctx context.Context, user *models.User) (string, error) {
	refreshToken := &models.RefreshToken{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Token:     uuid.New().String(),
		ExpiresAt: time.Now().Add(s.refreshTokenTTL),
	}
	if err := s.refreshTokenRepo.Create(ctx, refreshToken); err != nil {
		return "", err
	}
	return refreshToken.Token, nil
}

func (s *authService) RefreshAccessToken(ctx context.Context, refreshTokenString string) (string, error) {
	refreshToken, err := s.refreshTokenRepo.FindByToken(ctx, refreshTokenString)
	if err != nil {
		return "", ErrInvalidToken
	}
	if refreshToken.Revoked {
		return "", ErrInvalidToken
	}
	if time.Now().After(refreshToken.ExpiresAt) {
		if err := s.refreshTokenRepo.Delete(ctx, refreshToken.ID); err != nil {
			s.logger.Warn("expired_token_cleanup_failed", "token_id", refreshToken.ID, "error", err)
		}
		return "", ErrExpiredToken
	}

	user, err := s.userRepo.FindByID(ctx, refreshToken.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidToken
		}
		return "", err
	}
	return s.generateAccessToken(user)
}

// RevokeToken marks the refresh token unusable. Unknown tokens are not an error.
func (s *authService) RevokeToken(ctx context.Context, refreshTokenString string) error {
	refreshToken, err := s.refreshTokenRepo.FindByToken(ctx, refreshTokenString)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.refreshTokenRepo.Revoke(ctx, refreshToken.ID)
}

func (s *authService) ValidateToken(tokenString string) (*shared.AuthClaims, error) {
	claims := &shared.AuthClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Type != shared.TokenTypeAccess || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
