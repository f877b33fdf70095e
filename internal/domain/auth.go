package domain

import "time"

// Session is the caller identity carried by the signed cookie pair.
type Session struct {
	ID            string
	Authenticated bool
	Role          Role
	Email         string
	Name          string
	ExpiresAt     time.Time
}

// AnonymousSession is the session of a caller without valid cookies.
func AnonymousSession() Session {
	return Session{Role: RoleUnauthenticated}
}

// EffectiveRole returns the role used for access decisions.
func (s Session) EffectiveRole() Role {
	if !s.Authenticated {
		return RoleUnauthenticated
	}
	return s.Role
}
