package service

import (
	"context"
	"errors"
	"log/slog"

	"libraryhub/internal/authz"
	"libraryhub/internal/http-api/models"
	"libraryhub/internal/http-api/repository"
	"libraryhub/internal/metrics"

	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

// IdentityCache is satisfied by *cache.IdentityCache.
type IdentityCache interface {
	Get(ctx context.Context, userID string) (authz.Identity, bool, error)
	Set(ctx context.Context, id authz.Identity) error
	Delete(ctx context.Context, userID string) error
}

// IdentityService turns a user id into the authz.Identity passed to the
// access layer: profile role plus the union of its groups' permissions.
type IdentityService interface {
	Resolve(ctx context.Context, userID string) (authz.Identity, error)
	Invalidate(ctx context.Context, userID string) error
}

type identityService struct {
	users  repository.UserRepository
	cache  IdentityCache
	logger *slog.Logger
}

func NewIdentityService(users repository.UserRepository, cache IdentityCache, logger *slog.Logger) IdentityService {
	if logger == nil {
		logger = slog.Default()
	}
	return &identityService{users: users, cache: cache, logger: logger}
}

func (s *identityService) Resolve(ctx context.Context, userID string) (authz.Identity, error) {
	if s.cache != nil {
		id, ok, err := s.cache.Get(ctx, userID)
		switch {
		case err != nil:
			// fall through to the database; a broken cache must not lock users out
			metrics.ObserveIdentityCache("error")
			s.logger.Warn("identity_cache_get_failed", "user_id", userID, "error", err)
		case ok:
			metrics.ObserveIdentityCache("hit")
			return id, nil
		default:
			metrics.ObserveIdentityCache("miss")
		}
	}

	user, err := s.users.FindWithGrants(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return authz.Identity{}, ErrUserNotFound
	}
	if err != nil {
		return authz.Identity{}, err
	}

	id := s.identityFor(user)
	if s.cache != nil {
		if err := s.cache.Set(ctx, id); err != nil {
			s.logger.Warn("identity_cache_set_failed", "user_id", userID, "error", err)
		}
	}
	return id, nil
}

func (s *identityService) Invalidate(ctx context.Context, userID string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, userID)
}

func (s *identityService) identityFor(user *models.User) authz.Identity {
	role := authz.RoleMember
	if user.Profile != nil {
		parsed, err := authz.ParseRole(user.Profile.Role)
		if err != nil {
			s.logger.Warn("unknown_profile_role", "user_id", user.ID, "role", user.Profile.Role)
		} else {
			role = parsed
		}
	}

	granted := make(map[authz.Permission]bool)
	for _, g := range user.Groups {
		for _, p := range g.Permissions {
			granted[authz.Permission(p.Codename)] = true
		}
	}
	var perms []authz.Permission
	for _, p := range authz.AllPermissions {
		if granted[p] {
			perms = append(perms, p)
		}
	}

	return authz.Identity{
		UserID:      user.ID,
		Username:    user.Username,
		Role:        role,
		Permissions: perms,
	}
}
