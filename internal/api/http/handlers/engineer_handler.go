package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sfqs/ticket-system/internal/api/dto"
	"github.com/sfqs/ticket-system/internal/auth"
	"github.com/sfqs/ticket-system/internal/service"
)

// EngineerHandler serves the engineer workflow: claiming, resolving,
// experience and extra-time requests.
type EngineerHandler struct {
	tickets    *service.TicketService
	experience *service.ExperienceService
	extraTime  *service.ExtraTimeService
}

// NewEngineerHandler constructs handler.
func NewEngineerHandler(tickets *service.TicketService, experience *service.ExperienceService, extraTime *service.ExtraTimeService) *EngineerHandler {
	return &EngineerHandler{tickets: tickets, experience: experience, extraTime: extraTime}
}

// Claim POST /api/engineer/tickets/:id/claim.
func (h *EngineerHandler) Claim(c *fiber.Ctx) error {
	ticket, err := h.tickets.Claim(c.UserContext(), auth.SessionFromContext(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// Release POST /api/engineer/tickets/:id/release.
func (h *EngineerHandler) Release(c *fiber.Ctx) error {
	ticket, err := h.tickets.Release(c.UserContext(), auth.SessionFromContext(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// Resolve POST /api/engineer/tickets/:id/resolve.
func (h *EngineerHandler) Resolve(c *fiber.Ctx) error {
	var req dto.ResolveTicketRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	outcome, err := h.tickets.Resolve(c.UserContext(), auth.SessionFromContext(c), c.Params("id"), req.Resolution)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ResolveTicketResponse{
		Ticket:        dto.NewTicketResponse(outcome.Ticket),
		PointsAwarded: outcome.PointsAwarded,
		Experience:    dto.NewExperienceResponse(outcome.Experience),
	}})
}

// Experience GET /api/engineer/experience?refresh=true.
func (h *EngineerHandler) Experience(c *fiber.Ctx) error {
	session := auth.SessionFromContext(c)
	view, err := h.experience.Get(c.UserContext(), session.Email, c.QueryBool("refresh", false))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewExperienceResponse(view)})
}

// Leaderboard GET /api/engineer/leaderboard.
func (h *EngineerHandler) Leaderboard(c *fiber.Ctx) error {
	views, err := h.experience.Leaderboard(c.UserContext(), parseInt(c.Query("limit"), 10))
	if err != nil {
		return err
	}
	items := make([]*dto.ExperienceResponse, 0, len(views))
	for i := range views {
		items = append(items, dto.NewExperienceResponse(&views[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// RequestExtraTime POST /api/engineer/extra-time.
func (h *EngineerHandler) RequestExtraTime(c *fiber.Ctx) error {
	var req dto.ExtraTimeCreateRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	request, err := h.extraTime.Request(c.UserContext(), auth.SessionFromContext(c), service.ExtraTimeInput{
		TicketID: req.TicketID,
		Minutes:  req.Minutes,
		Reason:   req.Reason,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewExtraTimeResponse(request)})
}
