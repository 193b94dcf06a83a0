package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"libraryhub/internal/authz"
	"libraryhub/internal/http-api/models"
	"libraryhub/internal/http-api/repository"
	"libraryhub/internal/middleware/auth"

	"gorm.io/gorm"
)

type SeedLevel int

const (
	SeedSuccess SeedLevel = iota
	SeedWarning
	SeedError
)

func (l SeedLevel) String() string {
	switch l {
	case SeedWarning:
		return "warning"
	case SeedError:
		return "error"
	default:
		return "success"
	}
}

// SeedEvent is one status line of a seed run.
type SeedEvent struct {
	Level   SeedLevel
	Message string
}

// TestUser is an account created by CreateTestUsers.
type TestUser struct {
	Username string
	Email    string
	Password string
	Group    string
	Role     authz.Role
}

// DefaultTestUsers has one account per seeded group.
var DefaultTestUsers = []TestUser{
	{Username: "admin_user", Email: "admin@example.com", Password: "password123", Group: authz.GroupAdmins, Role: authz.RoleAdmin},
	{Username: "editor_user", Email: "editor@example.com", Password: "password123", Group: authz.GroupEditors, Role: authz.RoleLibrarian},
	{Username: "viewer_user", Email: "viewer@example.com", Password: "password123", Group: authz.GroupViewers, Role: authz.RoleMember},
}

// SeedService bootstraps groups and accounts. Both operations can be run any
// number of times; missing prerequisites produce warning or error events
// instead of failing the run. The returned error is reserved for storage
// failures.
type SeedService interface {
	CreateGroups(ctx context.Context) ([]SeedEvent, error)
	CreateTestUsers(ctx context.Context, users []TestUser) ([]SeedEvent, error)
}

type seedService struct {
	groups     repository.GroupRepository
	users      repository.UserRepository
	identities IdentityService
	logger     *slog.Logger
}

// NewSeedService builds the seeder. identities may be nil when no identity
// cache is shared with a running API server.
func NewSeedService(groups repository.GroupRepository, users repository.UserRepository, identities IdentityService, logger *slog.Logger) SeedService {
	if logger == nil {
		logger = slog.Default()
	}
	return &seedService{groups: groups, users: users, identities: identities, logger: logger}
}

type seedLog struct {
	events []SeedEvent
	logger *slog.Logger
}

func (l *seedLog) add(level SeedLevel, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	l.events = append(l.events, SeedEvent{Level: level, Message: msg})
	switch level {
	case SeedWarning:
		l.logger.Warn("seed_warning", "message", msg)
	case SeedError:
		l.logger.Error("seed_error", "message", msg)
	default:
		l.logger.Debug("seed_step", "message", msg)
	}
}

func (s *seedService) CreateGroups(ctx context.Context) ([]SeedEvent, error) {
	out := &seedLog{logger: s.logger}

	codenames := make([]string, 0, len(authz.AllPermissions))
	for _, p := range authz.AllPermissions {
		codenames = append(codenames, string(p))
	}
	perms, err := s.groups.PermissionsByCodename(ctx, codenames)
	if err != nil {
		return out.events, err
	}
	for _, c := range codenames {
		if _, ok := perms[c]; !ok {
			out.add(SeedWarning, "Permission %s does not exist yet. Run migrate first.", c)
		}
	}

	for _, name := range authz.GroupNames() {
		group, created, err := s.groups.GetOrCreate(ctx, name)
		if err != nil {
			return out.events, err
		}

		assign := make([]models.Permission, 0, len(authz.GroupPermissions[name]))
		for _, p := range authz.GroupPermissions[name] {
			if perm, ok := perms[string(p)]; ok {
				assign = append(assign, perm)
			}
		}
		if err := s.groups.ReplacePermissions(ctx, group, assign); err != nil {
			return out.events, err
		}
		if err := s.evictMembers(ctx, group); err != nil {
			return out.events, err
		}

		if created {
			out.add(SeedSuccess, "Created group: %s", name)
		} else {
			out.add(SeedSuccess, "Updated group: %s", name)
		}
	}

	out.add(SeedSuccess, "Groups and permissions setup complete.")
	return out.events, nil
}

func (s *seedService) CreateTestUsers(ctx context.Context, users []TestUser) ([]SeedEvent, error) {
	out := &seedLog{logger: s.logger}

	for _, tu := range users {
		user, err := s.users.FindByUsername(ctx, tu.Username)
		switch {
		case err == nil:
			out.add(SeedWarning, "User %s already exists", tu.Username)
		case errors.Is(err, gorm.ErrRecordNotFound):
			hash, err := auth.HashPassword(tu.Password)
			if err != nil {
				return out.events, err
			}
			user = &models.User{Username: tu.Username, Email: tu.Email, Password: hash}
			if err := s.users.Create(ctx, user); err != nil {
				return out.events, fmt.Errorf("create user %s: %w", tu.Username, err)
			}
			out.add(SeedSuccess, "Created user %s", tu.Username)
		default:
			return out.events, err
		}

		if _, err := s.users.EnsureProfile(ctx, user.ID, string(tu.Role)); err != nil {
			return out.events, err
		}

		group, err := s.groups.FindByName(ctx, tu.Group)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			out.add(SeedError, "Group %s does not exist. Run create_groups first.", tu.Group)
			continue
		}
		if err != nil {
			return out.events, err
		}

		if err := s.users.ReplaceGroups(ctx, user, []models.Group{*group}); err != nil {
			return out.events, err
		}
		s.invalidate(ctx, user.ID)
		out.add(SeedSuccess, "Assigned %s to group %s", tu.Username, tu.Group)
	}

	out.add(SeedSuccess, "Test users creation complete.")
	return out.events, nil
}

// evictMembers drops the cached identity of everyone in the group so a changed
// permission set applies on their next request.
func (s *seedService) evictMembers(ctx context.Context, group *models.Group) error {
	if s.identities == nil {
		return nil
	}
	ids, err := s.groups.MemberIDs(ctx, group.ID)
	if err != nil {
		return err
	}
	for _, id := range ids {
		s.invalidate(ctx, id)
	}
	return nil
}

func (s *seedService) invalidate(ctx context.Context, userID string) {
	if s.identities == nil {
		return
	}
	if err := s.identities.Invalidate(ctx, userID); err != nil {
		s.logger.Warn("identity_invalidate_failed", "user_id", userID, "error", err)
	}
}
