package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sfqs/ticket-system/internal/api/dto"
	"github.com/sfqs/ticket-system/internal/auth"
	"github.com/sfqs/ticket-system/internal/domain"
	"github.com/sfqs/ticket-system/internal/service"
)

// TicketsHandler manages the shared ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// Submit POST /api/tickets/submit.
func (h *TicketsHandler) Submit(c *fiber.Ctx) error {
	var req dto.SubmitTicketRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	ticket, err := h.service.Submit(c.UserContext(), auth.SessionFromContext(c), service.TicketSubmitInput{
		Fixture:        req.Fixture,
		ProductionLine: req.ProductionLine,
		Description:    req.Description,
		Priority:       req.Priority,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// List GET /api/tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	tickets, err := h.service.List(c.UserContext(), auth.SessionFromContext(c), parseTicketQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponses(tickets)})
}

// Get GET /api/tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	ticket, err := h.service.Get(c.UserContext(), auth.SessionFromContext(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

func parseTicketQuery(c *fiber.Ctx) service.TicketListFilter {
	filter := service.TicketListFilter{
		Fixture:       optionalString(c.Query("fixture")),
		SearchTerm:    optionalString(c.Query("q")),
		EngineerEmail: optionalString(c.Query("engineer")),
		Mine:          c.QueryBool("mine", false),
		CreatedFrom:   parseTime(c.Query("created_from")),
		CreatedTo:     parseTime(c.Query("created_to")),
	}
	for _, part := range parseList(c.Query("status")) {
		filter.Statuses = append(filter.Statuses, domain.TicketStatus(part))
	}
	for _, part := range parseList(c.Query("priority")) {
		filter.Priorities = append(filter.Priorities, domain.TicketPriority(part))
	}
	filter.Limit, filter.Offset = pagination(c)
	return filter
}
