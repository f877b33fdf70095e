package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sfqs/ticket-system/internal/api/dto"
	"github.com/sfqs/ticket-system/internal/auth"
	"github.com/sfqs/ticket-system/internal/domain"
	"github.com/sfqs/ticket-system/internal/service"
)

// ChangelogHandler serves the inventory and firmware changelog.
type ChangelogHandler struct {
	service *service.ChangelogService
}

// NewChangelogHandler constructs handler.
func NewChangelogHandler(changelogService *service.ChangelogService) *ChangelogHandler {
	return &ChangelogHandler{service: changelogService}
}

// List GET /api/changelog.
func (h *ChangelogHandler) List(c *fiber.Ctx) error {
	var kind *domain.ChangelogKind
	if raw := c.Query("kind"); raw != "" {
		k := domain.ChangelogKind(raw)
		kind = &k
	}
	limit, offset := pagination(c)
	entries, err := h.service.List(c.UserContext(), kind, limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.ChangelogResponse, 0, len(entries))
	for i := range entries {
		items = append(items, dto.NewChangelogResponse(&entries[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Create POST /api/changelog.
func (h *ChangelogHandler) Create(c *fiber.Ctx) error {
	var req dto.ChangelogCreateRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	entry, err := h.service.Publish(c.UserContext(), auth.SessionFromContext(c), service.ChangelogInput{
		Kind:        req.Kind,
		Title:       req.Title,
		Version:     req.Version,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewChangelogResponse(entry)})
}

// Delete DELETE /api/changelog/:id.
func (h *ChangelogHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), auth.SessionFromContext(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
