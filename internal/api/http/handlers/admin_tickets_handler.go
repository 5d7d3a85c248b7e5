package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/service"
)

// AdminTicketsHandler serves the admin console.
type AdminTicketsHandler struct {
	service *service.TicketService
}

// NewAdminTicketsHandler creates handler.
func NewAdminTicketsHandler(ticketService *service.TicketService) *AdminTicketsHandler {
	return &AdminTicketsHandler{service: ticketService}
}

// ListTickets GET /admin/tickets[?status=].
func (h *AdminTicketsHandler) ListTickets(c *fiber.Ctx) error {
	rows, err := h.service.AdminListTickets(c.UserContext(), currentUser(c), c.Query("status"))
	if err != nil {
		return err
	}
	return render(c, http.StatusOK, fiber.Map{
		"tickets":  dto.NewAdminTicketViews(rows),
		"status":   statusFilterValue(c.Query("status")),
		"statuses": domain.TicketStatuses,
	})
}
