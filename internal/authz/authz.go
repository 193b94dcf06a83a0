// Package authz decides whether a caller may perform a catalog operation.
//
// Fine-grained permissions (can_view, can_create, can_edit, can_delete) are
// granted through groups; coarse roles (Admin, Librarian, Member) come from the
// caller's profile and gate the role views.
package authz

import (
	"errors"
	"fmt"
	"log/slog"
)

// Permission is a named capability on books.
type Permission string

const (
	PermView   Permission = "can_view"
	PermCreate Permission = "can_create"
	PermEdit   Permission = "can_edit"
	PermDelete Permission = "can_delete"
)

// AllPermissions lists every permission in seeding order.
var AllPermissions = []Permission{PermView, PermCreate, PermEdit, PermDelete}

func (p Permission) Valid() bool {
	switch p {
	case PermView, PermCreate, PermEdit, PermDelete:
		return true
	default:
		return false
	}
}

// Label is the human readable name stored next to the codename.
func (p Permission) Label() string {
	switch p {
	case PermView:
		return "Can view book"
	case PermCreate:
		return "Can create book"
	case PermEdit:
		return "Can edit book"
	case PermDelete:
		return "Can delete book"
	}
	return "unknown"
}

// Role is the coarse label kept on a user profile.
type Role string

const (
	RoleAdmin     Role = "Admin"
	RoleLibrarian Role = "Librarian"
	RoleMember    Role = "Member"
)

// ParseRole accepts exactly one of the three role names.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdmin, RoleLibrarian, RoleMember:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Group names seeded by create_groups.
const (
	GroupAdmins  = "Admins"
	GroupEditors = "Editors"
	GroupViewers = "Viewers"
)

// GroupPermissions is the static group → permission mapping.
var GroupPermissions = map[string][]Permission{
	GroupAdmins:  {PermView, PermCreate, PermEdit, PermDelete},
	GroupEditors: {PermView, PermCreate, PermEdit},
	GroupViewers: {PermView},
}

// GroupNames returns the seeded groups in a stable order.
func GroupNames() []string {
	return []string{GroupAdmins, GroupEditors, GroupViewers}
}

var (
	ErrAccessDenied = errors.New("access denied")
)

// DeniedError describes why a request was refused. It matches ErrAccessDenied
// under errors.Is.
type DeniedError struct {
	Required string
	Reason   string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("access denied: %s (requires %s)", e.Reason, e.Required)
}

func (e *DeniedError) Is(target error) bool {
	return target == ErrAccessDenied
}

// Authorizer performs permission and role checks and records denials.
type Authorizer struct {
	logger   *slog.Logger
	observer func(decision string)
}

// NewAuthorizer creates an Authorizer. A nil logger falls back to slog.Default.
func NewAuthorizer(logger *slog.Logger) *Authorizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authorizer{logger: logger}
}

// OnDecision registers a hook called with "allow" or "deny" after each check.
func (a *Authorizer) OnDecision(fn func(decision string)) {
	a.observer = fn
}

// Authorize checks that id holds perm. Viewing the catalog is public.
func (a *Authorizer) Authorize(id Identity, perm Permission) error {
	if perm == PermView {
		a.record("allow")
		return nil
	}
	if !id.IsAuthenticated() {
		return a.deny(id, string(perm), "anonymous caller")
	}
	if !id.Has(perm) {
		return a.deny(id, string(perm), "permission not granted")
	}
	a.record("allow")
	return nil
}

// RequireRole checks that id's profile carries role.
func (a *Authorizer) RequireRole(id Identity, role Role) error {
	if !id.IsAuthenticated() {
		return a.deny(id, string(role), "anonymous caller")
	}
	if id.Role != role {
		return a.deny(id, string(role), fmt.Sprintf("role %q does not match", id.Role))
	}
	a.record("allow")
	return nil
}

func (a *Authorizer) deny(id Identity, required, reason string) error {
	a.logger.Warn("access_denied",
		slog.String("user_id", id.UserID),
		slog.String("username", id.Username),
		slog.String("required", required),
		slog.String("reason", reason),
	)
	a.record("deny")
	return &DeniedError{Required: required, Reason: reason}
}

func (a *Authorizer) record(decision string) {
	if a.observer != nil {
		a.observer(decision)
	}
}
