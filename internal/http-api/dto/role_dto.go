package dto

import "libraryhub/internal/authz"

// RoleViewResponse is returned by the role-gated views.
type RoleViewResponse struct {
	View        string   `json:"view"`
	Username    string   `json:"username"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

func FromIdentity(view string, id authz.Identity) RoleViewResponse {
	perms := make([]string, 0, len(id.Permissions))
	for _, p := range id.Permissions {
		perms = append(perms, string(p))
	}
	return RoleViewResponse{
		View:        view,
		Username:    id.Username,
		Role:        string(id.Role),
		Permissions: perms,
	}
}
