package domain

import "slices"

// Application roles. Every authenticated user holds RoleUser; RoleAdmin is the elevated role.
const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

// Identity is the authenticated caller, as established by the token verifier.
type Identity struct {
	UserID int64
	Email  string
	Roles  []string
}

// HasRole reports whether the identity holds role. RoleUser is implied for any identity.
func (i *Identity) HasRole(role string) bool {
	if i == nil {
		return false
	}
	if role == RoleUser {
		return true
	}
	return slices.Contains(i.Roles, role)
}

// IsAdmin reports whether the identity holds the elevated role.
func (i *Identity) IsAdmin() bool {
	return i.HasRole(RoleAdmin)
}

// Access describes what an operation requires from its caller.
//
// Role is the minimum role. Target, when non-zero, is the user the operation acts on:
// a base-role caller may only act on itself unless it is also an admin.
// NotSelf forbids acting on one's own account even for admins.
type Access struct {
	Role    string
	Target  int64
	NotSelf bool
}

// Authorize is the single authorization predicate used by middleware and services.
// It returns ErrUnauthorized for a missing identity and ErrForbidden when access is denied.
func Authorize(actor *Identity, access Access) error {
	if actor == nil {
		return ErrUnauthorized
	}
	if access.NotSelf && access.Target != 0 && access.Target == actor.UserID {
		return ErrSelfModification
	}
	if access.Role != "" && !actor.HasRole(access.Role) {
		return ErrForbidden
	}
	if access.Target != 0 && access.Target != actor.UserID && !actor.IsAdmin() {
		return ErrForbidden
	}
	return nil
}
