package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/service"
)

// TicketsHandler manages the caller's ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// ListTickets GET /tickets[?status=].
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	tickets, err := h.service.ListTickets(c.UserContext(), currentUser(c), c.Query("status"))
	if err != nil {
		return err
	}
	return render(c, http.StatusOK, fiber.Map{
		"tickets":  dto.NewTicketViews(tickets),
		"status":   statusFilterValue(c.Query("status")),
		"statuses": domain.TicketStatuses,
	})
}

// NewTicketForm GET /tickets/new.
func (h *TicketsHandler) NewTicketForm(c *fiber.Ctx) error {
	return render(c, http.StatusOK, fiber.Map{
		"departments": h.service.Taxonomy().Departments(),
	})
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	ticket, err := h.service.CreateTicket(c.UserContext(), currentUser(c), service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Department:  req.Department,
		Subcategory: req.Subcategory,
	})
	if err != nil {
		return err
	}
	return render(c, http.StatusCreated, fiber.Map{"ticket": dto.NewTicketView(ticket)})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	id, err := ticketID(c)
	if err != nil {
		return err
	}
	user := currentUser(c)
	ticket, err := h.service.GetTicket(c.UserContext(), user, id)
	if err != nil {
		return err
	}
	comments, err := h.service.ListComments(c.UserContext(), user, id)
	if err != nil {
		return err
	}
	return render(c, http.StatusOK, fiber.Map{
		"ticket":   dto.NewTicketView(ticket),
		"comments": dto.NewCommentViews(comments),
		"statuses": domain.TicketStatuses,
	})
}

// UpdateStatus POST /tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := ticketID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.service.UpdateStatus(c.UserContext(), currentUser(c), id, req.Status)
	if err != nil {
		return err
	}
	return render(c, http.StatusOK, fiber.Map{"ticket": dto.NewTicketView(ticket)})
}

// AddComment POST /tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	id, err := ticketID(c)
	if err != nil {
		return err
	}
	var req dto.AddCommentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	comment, err := h.service.AddComment(c.UserContext(), currentUser(c), id, req.Body)
	if err != nil {
		return err
	}
	return render(c, http.StatusCreated, fiber.Map{"comment": dto.NewCommentView(comment)})
}

// statusFilterValue echoes the effective filter; unknown values read as no filter.
func statusFilterValue(raw string) string {
	if status := domain.ParseStatusFilter(raw); status != nil {
		return string(*status)
	}
	return ""
}
