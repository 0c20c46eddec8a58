package rbac

import (
	"fmt"
	"strings"
)

// Role is one step in the ordered hierarchy
// subscriber < editor < admin < super_admin.
type Role string

const (
	RoleSubscriber Role = "subscriber"
	RoleEditor     Role = "editor"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// roleOrder lists roles in ascending privilege order. The slice, not the
// level map, is the source of truth for upgrade enumeration.
var roleOrder = []Role{RoleSubscriber, RoleEditor, RoleAdmin, RoleSuperAdmin}

var roleLevels = map[Role]int{
	RoleSubscriber: 0,
	RoleEditor:     1,
	RoleAdmin:      2,
	RoleSuperAdmin: 3,
}

// ParseRole normalises raw input into a Role.
func ParseRole(raw string) (Role, error) {
	role := Role(strings.TrimSpace(strings.ToLower(raw)))
	if !role.Valid() {
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, raw)
	}
	return role, nil
}

// Valid reports whether the role belongs to the hierarchy.
func (r Role) Valid() bool {
	_, ok := roleLevels[r]
	return ok
}

// Level returns the position in the hierarchy, -1 for unknown roles.
func (r Role) Level() int {
	if lvl, ok := roleLevels[r]; ok {
		return lvl
	}
	return -1
}

// Above reports whether r is strictly above other in the hierarchy.
func (r Role) Above(other Role) bool {
	return r.Valid() && other.Valid() && r.Level() > other.Level()
}

// AvailableUpgrades returns the roles strictly above current, in ascending
// order. The top role yields an empty slice.
func AvailableUpgrades(current Role) []Role {
	out := []Role{}
	if !current.Valid() {
		return out
	}
	for _, r := range roleOrder {
		if r.Above(current) {
			out = append(out, r)
		}
	}
	return out
}

// Permission names a single capability from the per-role permission set.
type Permission string

const (
	PermEdit          Permission = "canEdit"
	PermManageUsers   Permission = "canManageUsers"
	PermManageContent Permission = "canManageContent"
	PermViewPrivate   Permission = "canViewPrivate"
	PermDeleteContent Permission = "canDeleteContent"
)

// PermissionSet is the full capability record derived from a role.
type PermissionSet struct {
	CanEdit          bool `json:"canEdit"`
	CanManageUsers   bool `json:"canManageUsers"`
	CanManageContent bool `json:"canManageContent"`
	CanViewPrivate   bool `json:"canViewPrivate"`
	CanDeleteContent bool `json:"canDeleteContent"`
}

// permissionsByRole is derived, never stored. Permissions are monotonic in
// the hierarchy except that subscriber carries canViewPrivate — an explicit
// carve-out, not a hierarchy violation.
var permissionsByRole = map[Role]PermissionSet{
	RoleSubscriber: {
		CanViewPrivate: true,
	},
	RoleEditor: {
		CanEdit:          true,
		CanManageContent: true,
		CanViewPrivate:   true,
	},
	RoleAdmin: {
		CanEdit:          true,
		CanManageUsers:   true,
		CanManageContent: true,
		CanViewPrivate:   true,
		CanDeleteContent: true,
	},
	RoleSuperAdmin: {
		CanEdit:          true,
		CanManageUsers:   true,
		CanManageContent: true,
		CanViewPrivate:   true,
		CanDeleteContent: true,
	},
}

// PermissionsFor returns the capability record for a role. Unknown roles
// get the zero set.
func PermissionsFor(role Role) PermissionSet {
	return permissionsByRole[role]
}

// HasPermission is a pure lookup in the role/permission table. It cannot
// fail; unknown roles or permissions simply report false.
func HasPermission(role Role, perm Permission) bool {
	set := permissionsByRole[role]
	switch perm {
	case PermEdit:
		return set.CanEdit
	case PermManageUsers:
		return set.CanManageUsers
	case PermManageContent:
		return set.CanManageContent
	case PermViewPrivate:
		return set.CanViewPrivate
	case PermDeleteContent:
		return set.CanDeleteContent
	default:
		return false
	}
}
