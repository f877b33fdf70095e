package access

import (
	"strings"

	"github.com/sfqs/ticket-system/internal/domain"
)

const (
	PathRoot          = "/"
	PathLogin         = "/login"
	PathRestricted    = "/restricted"
	PathChangelog     = "/dashboard/changelog"
	PathEngineerStats = "/dashboard/engineer-stats"
)

// Superseded by the shared PathChangelog page.
var deprecatedPaths = []string{"/admin/changelog", "/engineer/changelog"}

var commonPrefixes = []string{"/api/tickets", PathRestricted}

var roleAreas = map[domain.Role][]string{
	domain.RoleAdmin: {"/admin", "/dashboard", "/dashboard/users", PathChangelog},
	domain.RoleEngineer: {
		"/engineer",
		"/engineer/stats",
		PathEngineerStats,
		"/engineer/profile",
		"/engineer/unregistered-support",
		"/engineer/unregistered-support/review",
		PathChangelog,
	},
	domain.RoleSupervisor: {"/user"},
	domain.RoleManager:    {"/user"},
}

var defaultArea = []string{"/user"}

// Policy evaluates an ordered list of rules; the first rule that applies decides.
type Policy struct {
	rules []Rule
}

// NewPolicy builds a policy from rules in precedence order.
func NewPolicy(rules ...Rule) *Policy {
	return &Policy{rules: rules}
}

// DefaultPolicy returns the SFQS routing policy.
func DefaultPolicy() *Policy {
	return NewPolicy(
		DenyList{Paths: deprecatedPaths, Target: PathRoot},
		PathException{
			Label:  "changelog_exception",
			Path:   PathChangelog,
			Roles:  []domain.Role{domain.RoleEngineer, domain.RoleAdmin, domain.RoleManager},
			Target: PathRestricted,
		},
		PathException{
			Label:  "engineer_stats_exception",
			Path:   PathEngineerStats,
			Roles:  []domain.Role{domain.RoleEngineer},
			Target: PathRestricted,
		},
		PublicPaths{Paths: []string{PathRoot, PathLogin}, Target: PathLogin},
		HomeRedirect{Paths: []string{PathLogin, PathRoot}, Home: HomePath},
		CommonPaths{Prefixes: commonPrefixes},
		RoleConfinement{Areas: roleAreas, DefaultArea: defaultArea, Home: HomePath},
	)
}

// Decide returns the decision for path. Trailing slashes are ignored.
func (p *Policy) Decide(session domain.Session, path string) Decision {
	path = normalizePath(path)
	for _, rule := range p.rules {
		if decision, ok := rule.Evaluate(session, path); ok {
			decision.Rule = rule.Name()
			return decision
		}
	}
	return Allowed()
}

// HomePath is the landing page of a role.
func HomePath(role domain.Role) string {
	switch role {
	case domain.RoleAdmin:
		return "/admin"
	case domain.RoleEngineer:
		return "/engineer"
	case domain.RoleSupervisor, domain.RoleManager:
		return "/user"
	case domain.RoleUnauthenticated:
		return "/user"
	}
	return "/user"
}

var defaultPolicy = DefaultPolicy()

// RouteDecision evaluates the default policy for a bare (authenticated, role, path) triple.
func RouteDecision(authenticated bool, role domain.Role, path string) Decision {
	return defaultPolicy.Decide(domain.Session{Authenticated: authenticated, Role: role}, path)
}

func normalizePath(path string) string {
	if path == "" {
		return PathRoot
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			return PathRoot
		}
	}
	return path
}

// Routed reports whether path is governed by the routing policy: every page and
// the common ticket API. Health probes and the remaining API groups are not.
func Routed(path string) bool {
	switch {
	case strings.HasPrefix(path, "/health"):
		return false
	case strings.HasPrefix(path, "/api/"):
		return hasAnyPrefix(path, commonPrefixes)
	default:
		return true
	}
}
