package domain

// Role enumerates the access roles known to the ticket system.
type Role string

const (
	RoleAdmin           Role = "admin"
	RoleManager         Role = "gerente"
	RoleSupervisor      Role = "supervisor"
	RoleEngineer        Role = "ingeniero"
	RoleUnauthenticated Role = "unauthenticated"
)

// Roles lists every role in declaration order.
var Roles = []Role{RoleAdmin, RoleManager, RoleSupervisor, RoleEngineer, RoleUnauthenticated}

// ParseRole maps a raw role string to a Role. Unknown values map to RoleUnauthenticated.
func ParseRole(raw string) Role {
	switch Role(raw) {
	case RoleAdmin, RoleManager, RoleSupervisor, RoleEngineer:
		return Role(raw)
	default:
		return RoleUnauthenticated
	}
}

// Assignable reports whether the role may be held by a registered account.
func (r Role) Assignable() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleSupervisor, RoleEngineer:
		return true
	case RoleUnauthenticated:
		return false
	}
	return false
}

// Reviewer reports whether the role approves registrations and extra-time requests.
func (r Role) Reviewer() bool {
	return r == RoleAdmin || r == RoleManager
}
