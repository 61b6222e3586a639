// identity/resolver.go
package identity

import (
	"strings"

	"go.uber.org/zap"

	cmips_errors "github.com/clarita-9850/CMIPS-APPLICATION-sub003/errors"
	logger "github.com/clarita-9850/CMIPS-APPLICATION-sub003/logging"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/model"
)

// Identity is the resolved caller identity: canonical role, optional county
// scope and principal ID. Immutable for the lifetime of the request.
type Identity struct {
	Role        model.Role
	Scope       string
	PrincipalID string
}

// sentinelRoles are identity-provider bookkeeping roles that never describe
// a caller and are skipped during role resolution.
var sentinelRoles = []string{
	"default-roles",
	"offline_access",
	"uma_authorization",
	"default",
}

func isSentinelRole(raw string) bool {
	v := strings.ToLower(strings.TrimSpace(raw))
	for _, s := range sentinelRoles {
		if v == s || strings.HasPrefix(v, s+"-") {
			return true
		}
	}
	return false
}

// roleStrategy extracts candidate role claim values from an assertion.
// Strategies are tried in priority order; the first candidate that
// canonicalizes to a known role wins.
type roleStrategy func(claims map[string]interface{}) []string

// scopeStrategy extracts a county scope claim from an assertion. Strategies
// are tried in order; the first non-empty value wins. No strategy defaults a
// missing scope: scope-bound roles without a scope fail closed downstream.
type scopeStrategy func(claims map[string]interface{}) string

// Resolver turns a verified claims bag into a canonical Identity. It never
// verifies signatures; that happens upstream.
type Resolver struct {
	clientID        string
	roleStrategies  []roleStrategy
	scopeStrategies []scopeStrategy
}

// NewResolver builds a resolver for the given identity-provider client ID,
// which selects the application-specific role claim location.
func NewResolver(clientID string) *Resolver {
	r := &Resolver{clientID: clientID}
	r.roleStrategies = []roleStrategy{
		r.clientRoles,
		realmRoles,
		flatRoleClaim,
	}
	r.scopeStrategies = []scopeStrategy{
		directScopeClaim("countyCode"),
		directScopeClaim("county_code"),
		attributeScopeClaim("countyCode"),
		attributeScopeClaim("county_code"),
	}
	return r
}

// Resolve extracts the canonical role, county scope and principal ID from a
// verified assertion. An unresolvable role maps to the safe default role,
// never to an elevated one; an absent scope stays absent.
func (r *Resolver) Resolve(claims map[string]interface{}) (Identity, error) {
	if len(claims) == 0 {
		return Identity{}, cmips_errors.ErrAuthRequired
	}

	id := Identity{
		Role:        model.DefaultRole,
		PrincipalID: principalID(claims),
	}
	if id.PrincipalID == "" {
		return Identity{}, cmips_errors.ErrAuthRequired
	}

	for _, strategy := range r.roleStrategies {
		role, ok := firstCanonicalRole(strategy(claims))
		if ok {
			id.Role = role
			break
		}
	}

	for _, strategy := range r.scopeStrategies {
		if scope := strategy(claims); scope != "" {
			id.Scope = scope
			break
		}
	}

	if id.Role == model.DefaultRole {
		logger.Debug("Role claim resolution fell back to default role",
			zap.String("principalID", id.PrincipalID))
	}

	return id, nil
}

func firstCanonicalRole(candidates []string) (model.Role, bool) {
	for _, candidate := range candidates {
		if candidate == "" || isSentinelRole(candidate) {
			continue
		}
		if role, ok := model.CanonicalRole(candidate); ok {
			return role, true
		}
	}
	return model.DefaultRole, false
}

// clientRoles reads application-specific roles from
// resource_access.<clientID>.roles.
func (r *Resolver) clientRoles(claims map[string]interface{}) []string {
	access, ok := claims["resource_access"].(map[string]interface{})
	if !ok {
		return nil
	}
	client, ok := access[r.clientID].(map[string]interface{})
	if !ok {
		return nil
	}
	return stringList(client["roles"])
}

// realmRoles reads global roles from realm_access.roles.
func realmRoles(claims map[string]interface{}) []string {
	access, ok := claims["realm_access"].(map[string]interface{})
	if !ok {
		return nil
	}
	return stringList(access["roles"])
}

// flatRoleClaim reads a plain "role" or "roles" claim.
func flatRoleClaim(claims map[string]interface{}) []string {
	if v, ok := claims["role"].(string); ok {
		return []string{v}
	}
	return stringList(claims["roles"])
}

// directScopeClaim reads a top-level scope claim by name. List-valued claims
// take the first element.
func directScopeClaim(name string) scopeStrategy {
	return func(claims map[string]interface{}) string {
		return scalarOrFirst(claims[name])
	}
}

// attributeScopeClaim reads a scope claim nested under an "attributes" map.
func attributeScopeClaim(name string) scopeStrategy {
	return func(claims map[string]interface{}) string {
		attrs, ok := claims["attributes"].(map[string]interface{})
		if !ok {
			return ""
		}
		return scalarOrFirst(attrs[name])
	}
}

func principalID(claims map[string]interface{}) string {
	if sub, ok := claims["sub"].(string); ok && sub != "" {
		return sub
	}
	if username, ok := claims["preferred_username"].(string); ok && username != "" {
		return username
	}
	return ""
}

func stringList(v interface{}) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []interface{}:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func scalarOrFirst(v interface{}) string {
	switch value := v.(type) {
	case string:
		return strings.TrimSpace(value)
	case []string:
		if len(value) > 0 {
			return strings.TrimSpace(value[0])
		}
	case []interface{}:
		if len(value) > 0 {
			if s, ok := value[0].(string); ok {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}
