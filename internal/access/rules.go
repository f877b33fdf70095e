package access

import (
	"slices"
	"strings"

	"github.com/sfqs/ticket-system/internal/domain"
)

// Decision is the outcome of evaluating a request path.
type Decision struct {
	Allow    bool
	Redirect string
	// Rule names the rule that produced the decision; empty for the default allow.
	Rule string
}

// Allowed lets the request through.
func Allowed() Decision {
	return Decision{Allow: true}
}

// RedirectTo sends the caller to target.
func RedirectTo(target string) Decision {
	return Decision{Redirect: target}
}

// Rule is one clause of an access policy. ok is false when the rule does not apply
// to the request and evaluation should continue with the next rule.
type Rule interface {
	Name() string
	Evaluate(session domain.Session, path string) (decision Decision, ok bool)
}

// DenyList redirects deprecated paths to Target whatever the session.
type DenyList struct {
	Paths  []string
	Target string
}

func (r DenyList) Name() string { return "deny_list" }

func (r DenyList) Evaluate(_ domain.Session, path string) (Decision, bool) {
	if !slices.Contains(r.Paths, path) {
		return Decision{}, false
	}
	return RedirectTo(r.Target), true
}

// PathException gates a single path to a set of roles, authenticated or not.
type PathException struct {
	Label  string
	Path   string
	Roles  []domain.Role
	Target string
}

func (r PathException) Name() string { return r.Label }

func (r PathException) Evaluate(session domain.Session, path string) (Decision, bool) {
	if path != r.Path {
		return Decision{}, false
	}
	if slices.Contains(r.Roles, session.EffectiveRole()) {
		return Allowed(), true
	}
	return RedirectTo(r.Target), true
}

// PublicPaths sends unauthenticated callers to Target unless the path is public.
type PublicPaths struct {
	Paths  []string
	Target string
}

func (r PublicPaths) Name() string { return "public_paths" }

func (r PublicPaths) Evaluate(session domain.Session, path string) (Decision, bool) {
	if session.Authenticated || slices.Contains(r.Paths, path) {
		return Decision{}, false
	}
	return RedirectTo(r.Target), true
}

// HomeRedirect moves authenticated callers off entry paths to their role home.
type HomeRedirect struct {
	Paths []string
	Home  func(domain.Role) string
}

func (r HomeRedirect) Name() string { return "home_redirect" }

func (r HomeRedirect) Evaluate(session domain.Session, path string) (Decision, bool) {
	if !session.Authenticated || !slices.Contains(r.Paths, path) {
		return Decision{}, false
	}
	return RedirectTo(r.Home(session.Role)), true
}

// CommonPaths are open to every authenticated caller regardless of role area.
type CommonPaths struct {
	Prefixes []string
}

func (r CommonPaths) Name() string { return "common_paths" }

func (r CommonPaths) Evaluate(session domain.Session, path string) (Decision, bool) {
	if !session.Authenticated || !hasAnyPrefix(path, r.Prefixes) {
		return Decision{}, false
	}
	return Allowed(), true
}

// RoleConfinement keeps authenticated callers inside the path prefixes of their role.
// Roles without an entry in Areas use DefaultArea.
type RoleConfinement struct {
	Areas       map[domain.Role][]string
	DefaultArea []string
	Home        func(domain.Role) string
}

func (r RoleConfinement) Name() string { return "role_confinement" }

func (r RoleConfinement) Evaluate(session domain.Session, path string) (Decision, bool) {
	if !session.Authenticated {
		return Decision{}, false
	}
	area, ok := r.Areas[session.Role]
	if !ok {
		area = r.DefaultArea
	}
	if hasAnyPrefix(path, area) {
		return Decision{}, false
	}
	return RedirectTo(r.Home(session.Role)), true
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
