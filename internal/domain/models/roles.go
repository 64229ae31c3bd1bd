// internal/domain/models/roles.go
package models

import "fmt"

// Role is the capability tag a member holds inside one association. The set
// is closed: folder access templates and global-group sync are keyed off it,
// so an unknown role is a validation error, never a soft default.
type Role string

const (
	RolePresident Role = "president"
	RoleTreasurer Role = "treasurer"
	RoleSecretary Role = "secretary"
	RoleTeacher   Role = "teacher"
	RoleAdminIUT  Role = "admin_iut"
	RoleInvite    Role = "invite"
	RoleMember    Role = "member"
)

// AllRoles lists every valid role, in display order.
var AllRoles = []Role{
	RolePresident,
	RoleTreasurer,
	RoleSecretary,
	RoleTeacher,
	RoleAdminIUT,
	RoleInvite,
	RoleMember,
}

// GlobalRoles are the roles that confer membership in a platform-wide group
// of the same name ("is this user president of *any* association?"). Plain
// members have no global group.
var GlobalRoles = []Role{
	RolePresident,
	RoleTreasurer,
	RoleSecretary,
	RoleTeacher,
	RoleAdminIUT,
	RoleInvite,
}

// ParseRole validates a raw role string against the closed enum.
func ParseRole(s string) (Role, error) {
	for _, r := range AllRoles {
		if Role(s) == r {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// IsGlobal reports whether the role grants global-group membership.
func (r Role) IsGlobal() bool {
	for _, g := range GlobalRoles {
		if r == g {
			return true
		}
	}
	return false
}

// IsProtected reports whether a user holding this role may not change or
// drop it on their own membership; a different actor has to do it.
func (r Role) IsProtected() bool {
	return r == RolePresident || r == RoleAdminIUT
}

// ReadOnly reports whether the role only ever gets read access to the
// working sub-folders of an association folder.
func (r Role) ReadOnly() bool {
	return r == RoleTeacher || r == RoleInvite
}
