package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/sfqs/ticket-system/internal/domain"
)

const (
	AuthCookieName = "sfqs_auth"
	RoleCookieName = "sfqs_role"

	kindAuth = "auth"
	kindRole = "role"
)

// TokenManager signs and verifies the session cookie pair.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Claims describes the payload of either cookie of the pair.
type Claims struct {
	Kind  string      `json:"kind"`
	Role  domain.Role `json:"role"`
	Email string      `json:"email,omitempty"`
	Name  string      `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// CookiePair is the signed auth flag cookie plus the role cookie.
type CookiePair struct {
	SessionID string
	Auth      string
	Role      string
	ExpiresAt time.Time
}

// Issue signs a cookie pair for the user.
func (tm *TokenManager) Issue(user *domain.User) (CookiePair, error) {
	now := tm.now()
	expiresAt := now.Add(tm.ttl)
	registered := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   user.Email,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	authToken, err := tm.sign(&Claims{
		Kind:             kindAuth,
		Role:             user.Role,
		Email:            user.Email,
		Name:             user.Name,
		RegisteredClaims: registered,
	})
	if err != nil {
		return CookiePair{}, err
	}
	roleToken, err := tm.sign(&Claims{
		Kind:             kindRole,
		Role:             user.Role,
		RegisteredClaims: registered,
	})
	if err != nil {
		return CookiePair{}, err
	}
	return CookiePair{SessionID: registered.ID, Auth: authToken, Role: roleToken, ExpiresAt: expiresAt}, nil
}

// ReadSession verifies the cookie pair. Any missing, invalid, expired or
// mismatched cookie yields the anonymous session.
func (tm *TokenManager) ReadSession(authCookie, roleCookie string) domain.Session {
	if authCookie == "" || roleCookie == "" {
		return domain.AnonymousSession()
	}
	authClaims, err := tm.parse(authCookie)
	if err != nil || authClaims.Kind != kindAuth {
		return domain.AnonymousSession()
	}
	roleClaims, err := tm.parse(roleCookie)
	if err != nil || roleClaims.Kind != kindRole {
		return domain.AnonymousSession()
	}
	if authClaims.ID == "" || authClaims.ID != roleClaims.ID || authClaims.Role != roleClaims.Role {
		return domain.AnonymousSession()
	}

	session := domain.Session{
		ID:            authClaims.ID,
		Authenticated: true,
		Role:          domain.ParseRole(string(authClaims.Role)),
		Email:         authClaims.Email,
		Name:          authClaims.Name,
	}
	if authClaims.ExpiresAt != nil {
		session.ExpiresAt = authClaims.ExpiresAt.Time
	}
	return session
}

func (tm *TokenManager) sign(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.secret)
}

func (tm *TokenManager) parse(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	}, jwt.WithTimeFunc(tm.now))
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
