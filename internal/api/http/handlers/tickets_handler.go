package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/service"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	caller, _ := auth.CallerFromContext(c)
	query := service.TicketQuery{
		Status:   optionalQuery[domain.TicketStatus](c, "status"),
		Priority: optionalQuery[domain.TicketPriority](c, "priority"),
		Category: optionalQuery[domain.TicketCategory](c, "category"),
	}
	page, err := h.service.ListAll(c.UserContext(), caller, query, pageRequest(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketPageResponse(page))
}

// ListMyTickets GET /tickets/my-tickets.
func (h *TicketsHandler) ListMyTickets(c *fiber.Ctx) error {
	caller, _ := auth.CallerFromContext(c)
	status := optionalQuery[domain.TicketStatus](c, "status")
	page, err := h.service.ListOwn(c.UserContext(), caller, status, pageRequest(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketPageResponse(page))
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	caller, _ := auth.CallerFromContext(c)
	ticket, err := h.service.Get(c.UserContext(), caller, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketResponse(ticket))
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	caller, _ := auth.CallerFromContext(c)
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.Create(c.UserContext(), caller, service.TicketCreateInput{
		Subject:     req.Subject,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "Ticket created successfully",
		"ticket":  dto.NewTicketResponse(ticket),
	})
}

// UpdateStatus PATCH /tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	caller, _ := auth.CallerFromContext(c)
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.UpdateStatus(c.UserContext(), caller, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Ticket status updated successfully",
		"ticket":  dto.NewTicketResponse(ticket),
	})
}

// AddResponse POST /tickets/:id/responses.
func (h *TicketsHandler) AddResponse(c *fiber.Ctx) error {
	caller, _ := auth.CallerFromContext(c)
	var req dto.AddResponseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	response, err := h.service.AddResponse(c.UserContext(), caller, c.Params("id"), req.Message)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message":  "Response added successfully",
		"response": dto.NewResponseResponse(response),
	})
}

// AssignTicket PATCH /tickets/:id/assign.
func (h *TicketsHandler) AssignTicket(c *fiber.Ctx) error {
	caller, _ := auth.CallerFromContext(c)
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.Assign(c.UserContext(), caller, c.Params("id"), req.AssignedTo)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Ticket assigned successfully",
		"ticket":  dto.NewTicketResponse(ticket),
	})
}

// Stats GET /tickets/stats/summary.
func (h *TicketsHandler) Stats(c *fiber.Ctx) error {
	caller, _ := auth.CallerFromContext(c)
	stats, err := h.service.SummaryStats(c.UserContext(), caller)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewStatsResponse(stats))
}

func pageRequest(c *fiber.Ctx) service.PageRequest {
	return service.PageRequest{
		Page:  parseInt(c.Query("page"), service.DefaultPage),
		Limit: parseInt(c.Query("limit"), service.DefaultLimit),
	}
}

func optionalQuery[T ~string](c *fiber.Ctx, key string) *T {
	val := strings.TrimSpace(c.Query(key))
	if val == "" {
		return nil
	}
	out := T(val)
	return &out
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
