package permission

import "strings"

// Role is a coarse permission tier.
type Role string

const (
	// RoleUser may borrow and return assets.
	RoleUser Role = "user"
	// RoleAdmin additionally creates accounts and receives assets.
	RoleAdmin Role = "admin"
	// RoleMaster additionally approves asset requests.
	RoleMaster Role = "master"
)

// DefaultRole is assigned whenever role resolution cannot produce one.
const DefaultRole = RoleUser

// KnownRoles lists the closed role set in ascending privilege.
var KnownRoles = []Role{RoleUser, RoleAdmin, RoleMaster}

// ParseRole normalizes s. It does not reject roles outside the known set;
// the View Gate simply shows them nothing.
func ParseRole(s string) Role {
	return Role(strings.ToLower(strings.TrimSpace(s)))
}

// Known reports whether r belongs to the closed role set.
func (r Role) Known() bool {
	for _, k := range KnownRoles {
		if r == k {
			return true
		}
	}
	return false
}

func (r Role) String() string {
	return string(r)
}
