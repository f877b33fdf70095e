package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sfqs/ticket-system/internal/api/dto"
	"github.com/sfqs/ticket-system/internal/auth"
	"github.com/sfqs/ticket-system/internal/domain"
	"github.com/sfqs/ticket-system/internal/repository"
	"github.com/sfqs/ticket-system/internal/service"
)

// AdminHandler serves registration review and extra-time review.
type AdminHandler struct {
	auth      *service.AuthService
	extraTime *service.ExtraTimeService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(authService *service.AuthService, extraTime *service.ExtraTimeService) *AdminHandler {
	return &AdminHandler{auth: authService, extraTime: extraTime}
}

// PendingUsers GET /api/admin/users/pending.
func (h *AdminHandler) PendingUsers(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	users, err := h.auth.ListPending(c.UserContext(), limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, dto.NewUserResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ApproveUser POST /api/admin/users/:id/approve.
func (h *AdminHandler) ApproveUser(c *fiber.Ctx) error {
	var req dto.ApproveUserRequest
	if len(c.Body()) > 0 {
		if err := bindJSON(c, &req); err != nil {
			return err
		}
	}
	user, err := h.auth.ApproveUser(c.UserContext(), auth.SessionFromContext(c), c.Params("id"), req.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// RejectUser POST /api/admin/users/:id/reject.
func (h *AdminHandler) RejectUser(c *fiber.Ctx) error {
	user, err := h.auth.RejectUser(c.UserContext(), auth.SessionFromContext(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// ListExtraTime GET /api/admin/extra-time.
func (h *AdminHandler) ListExtraTime(c *fiber.Ctx) error {
	filter := repository.ExtraTimeFilter{
		EngineerEmail: optionalString(c.Query("engineer")),
		TicketID:      optionalString(c.Query("ticket_id")),
	}
	if status := c.Query("status", string(domain.ExtraTimePending)); status != "all" {
		s := domain.ExtraTimeStatus(status)
		filter.Status = &s
	}
	filter.Limit, filter.Offset = pagination(c)
	requests, err := h.extraTime.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.ExtraTimeResponse, 0, len(requests))
	for i := range requests {
		items = append(items, dto.NewExtraTimeResponse(&requests[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ReviewExtraTime POST /api/admin/extra-time/:id/review.
func (h *AdminHandler) ReviewExtraTime(c *fiber.Ctx) error {
	var req dto.ExtraTimeReviewRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	request, err := h.extraTime.Review(c.UserContext(), auth.SessionFromContext(c), c.Params("id"), req.Approve)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewExtraTimeResponse(request)})
}
