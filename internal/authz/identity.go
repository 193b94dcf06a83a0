package authz

// Identity is the caller of an access-layer operation. The zero value is the
// anonymous caller.
type Identity struct {
	UserID      string       `json:"user_id"`
	Username    string       `json:"username"`
	Role        Role         `json:"role,omitempty"`
	Permissions []Permission `json:"permissions,omitempty"`
}

// Anonymous returns the identity of an unauthenticated caller.
func Anonymous() Identity {
	return Identity{}
}

func (id Identity) IsAuthenticated() bool {
	return id.UserID != ""
}

// Has reports whether perm was granted through any of the caller's groups.
func (id Identity) Has(perm Permission) bool {
	for _, p := range id.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}
