package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sfqs/ticket-system/internal/access"
	"github.com/sfqs/ticket-system/internal/auth"
)

// PagesHandler serves the page shells behind the access router. Rendering is
// left to the frontend; each shell reports the page and the caller's session.
type PagesHandler struct{}

// NewPagesHandler constructs handler.
func NewPagesHandler() *PagesHandler {
	return &PagesHandler{}
}

// Page returns a handler for the named page.
func (h *PagesHandler) Page(name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := auth.SessionFromContext(c)
		return c.JSON(fiber.Map{
			"page":          name,
			"path":          c.Path(),
			"authenticated": session.Authenticated,
			"role":          session.EffectiveRole(),
			"home":          access.HomePath(session.EffectiveRole()),
		})
	}
}
