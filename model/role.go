// model/role.go
package model

import "strings"

// Role is the closed set of canonical caller roles. Every identity assertion
// is normalized to exactly one of these at the system boundary.
type Role string

const (
	RoleAdmin           Role = "ADMIN"
	RoleSupervisor      Role = "SUPERVISOR"
	RoleCaseWorker      Role = "CASE_WORKER"
	RoleProvider        Role = "PROVIDER"
	RoleRecipient       Role = "RECIPIENT"
	RoleSystemScheduler Role = "SYSTEM_SCHEDULER"
)

// DefaultRole is the lowest-privilege role. Unrecognized or absent role
// claims resolve here, never to an elevated role.
const DefaultRole = RoleRecipient

// roleAliases maps the role spellings seen in identity assertions to the
// canonical set. Keys are compared lower-cased with spaces and dashes
// collapsed to underscores.
var roleAliases = map[string]Role{
	"admin":            RoleAdmin,
	"administrator":    RoleAdmin,
	"state_admin":      RoleAdmin,
	"central_admin":    RoleAdmin,
	"county_admin":     RoleAdmin,
	"supervisor":       RoleSupervisor,
	"county_supervisor": RoleSupervisor,
	"case_worker":      RoleCaseWorker,
	"caseworker":       RoleCaseWorker,
	"social_worker":    RoleCaseWorker,
	"provider":         RoleProvider,
	"care_provider":    RoleProvider,
	"recipient":        RoleRecipient,
	"beneficiary":      RoleRecipient,
	"consumer":         RoleRecipient,
	"system_scheduler": RoleSystemScheduler,
	"scheduler":        RoleSystemScheduler,
	"batch":            RoleSystemScheduler,
}

// CanonicalRole normalizes a raw role claim value. The second return value
// reports whether the value mapped to a known role.
func CanonicalRole(raw string) (Role, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	role, ok := roleAliases[key]
	if !ok {
		return DefaultRole, false
	}
	return role, true
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSupervisor, RoleCaseWorker, RoleProvider, RoleRecipient, RoleSystemScheduler:
		return true
	}
	return false
}

// ScopeExempt reports whether the role may operate without a county scope.
func (r Role) ScopeExempt() bool {
	return r == RoleAdmin || r == RoleSystemScheduler
}

func (r Role) String() string {
	return string(r)
}
