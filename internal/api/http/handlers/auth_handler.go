package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/sfqs/ticket-system/internal/access"
	"github.com/sfqs/ticket-system/internal/api/dto"
	"github.com/sfqs/ticket-system/internal/auth"
	"github.com/sfqs/ticket-system/internal/service"
)

// AuthHandler manages registration, login and the session cookie pair.
type AuthHandler struct {
	service       *service.AuthService
	secureCookies bool
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, secureCookies bool) *AuthHandler {
	return &AuthHandler{service: authService, secureCookies: secureCookies}
}

// Register POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	user, err := h.service.Register(c.UserContext(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Login POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	user, pair, err := h.service.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	h.setCookie(c, auth.AuthCookieName, pair.Auth, pair.ExpiresAt)
	h.setCookie(c, auth.RoleCookieName, pair.Role, pair.ExpiresAt)
	return c.JSON(fiber.Map{
		"data": dto.NewUserResponse(user),
		"home": access.HomePath(user.Role),
	})
}

// Logout POST /api/auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.service.Logout(c.UserContext(), auth.SessionFromContext(c)); err != nil {
		return err
	}
	expired := time.Unix(0, 0)
	h.setCookie(c, auth.AuthCookieName, "", expired)
	h.setCookie(c, auth.RoleCookieName, "", expired)
	return c.SendStatus(fiber.StatusNoContent)
}

// Session GET /api/auth/session.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	session := auth.SessionFromContext(c)
	resp := dto.SessionResponse{
		Authenticated: session.Authenticated,
		Role:          session.EffectiveRole(),
		Email:         session.Email,
		Name:          session.Name,
		Home:          access.HomePath(session.EffectiveRole()),
	}
	if session.Authenticated && !session.ExpiresAt.IsZero() {
		expiresAt := session.ExpiresAt
		resp.ExpiresAt = &expiresAt
	}
	return c.JSON(fiber.Map{"data": resp})
}

// ChangePassword POST /api/auth/password.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req dto.PasswordChangeRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if err := h.service.ChangePassword(c.UserContext(), auth.SessionFromContext(c), req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AuthHandler) setCookie(c *fiber.Ctx, name, value string, expires time.Time) {
	cookie := &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		Secure:   h.secureCookies,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
	if value == "" {
		cookie.MaxAge = -1
	}
	c.Cookie(cookie)
}
