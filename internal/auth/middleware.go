package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/sfqs/ticket-system/internal/access"
	"github.com/sfqs/ticket-system/internal/domain"
)

const sessionKey = "sfqs_session"

// RevocationChecker reports whether a session id was ended by logout.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

// SessionMiddleware resolves the session of every request from its cookie pair.
type SessionMiddleware struct {
	tokens  *TokenManager
	revoked RevocationChecker
	logger  *zap.Logger
}

// NewSessionMiddleware constructs middleware. revoked may be nil.
func NewSessionMiddleware(tokens *TokenManager, revoked RevocationChecker, logger *zap.Logger) *SessionMiddleware {
	return &SessionMiddleware{tokens: tokens, revoked: revoked, logger: logger}
}

// Handle stores the session in the request locals. It never rejects a request.
func (m *SessionMiddleware) Handle(c *fiber.Ctx) error {
	session := m.tokens.ReadSession(c.Cookies(AuthCookieName), c.Cookies(RoleCookieName))
	if session.Authenticated && m.revoked != nil {
		revoked, err := m.revoked.IsRevoked(c.UserContext(), session.ID)
		switch {
		case err != nil:
			// signature and expiry already verified
			m.logger.Warn("session revocation check failed", zap.String("session_id", session.ID), zap.Error(err))
		case revoked:
			session = domain.AnonymousSession()
		}
	}
	c.Locals(sessionKey, session)
	return c.Next()
}

// SessionFromContext returns the request session, anonymous when none was resolved.
func SessionFromContext(c *fiber.Ctx) domain.Session {
	session, ok := c.Locals(sessionKey).(domain.Session)
	if !ok {
		return domain.AnonymousSession()
	}
	return session
}

// AccessMiddleware applies the routing policy to pages and the common ticket API.
// Other /api routes answer with JSON errors from RequireRole instead of redirects.
type AccessMiddleware struct {
	policy   *access.Policy
	logger   *zap.Logger
	recorder RedirectRecorder
}

// RedirectRecorder counts redirects by the rule that produced them.
type RedirectRecorder interface {
	RecordRedirect(rule string)
}

// NewAccessMiddleware constructs middleware.
func NewAccessMiddleware(policy *access.Policy, logger *zap.Logger) *AccessMiddleware {
	return &AccessMiddleware{policy: policy, logger: logger}
}

// WithRecorder attaches a redirect recorder.
func (m *AccessMiddleware) WithRecorder(recorder RedirectRecorder) *AccessMiddleware {
	m.recorder = recorder
	return m
}

// Handle allows the request or redirects it.
func (m *AccessMiddleware) Handle(c *fiber.Ctx) error {
	path := c.Path()
	if !access.Routed(path) {
		return c.Next()
	}
	session := SessionFromContext(c)
	decision := m.policy.Decide(session, path)
	if decision.Allow {
		return c.Next()
	}
	m.logger.Debug("access redirect",
		zap.String("path", path),
		zap.String("role", string(session.EffectiveRole())),
		zap.String("rule", decision.Rule),
		zap.String("target", decision.Redirect))
	if m.recorder != nil {
		m.recorder.RecordRedirect(decision.Rule)
	}
	return c.Redirect(decision.Redirect, fiber.StatusFound)
}
