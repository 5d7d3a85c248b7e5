package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/service"
)

// HomeHandler serves the landing view-models.
type HomeHandler struct {
	tickets *service.TicketService
}

// NewHomeHandler constructs handler.
func NewHomeHandler(ticketService *service.TicketService) *HomeHandler {
	return &HomeHandler{tickets: ticketService}
}

// Index GET /.
func (h *HomeHandler) Index(c *fiber.Ctx) error {
	return render(c, http.StatusOK, nil)
}

// App GET /app. Administrators also receive the ticket totals.
func (h *HomeHandler) App(c *fiber.Ctx) error {
	user := currentUser(c)
	if !user.IsAdmin() {
		return render(c, http.StatusOK, fiber.Map{"kpis": nil})
	}
	counts, err := h.tickets.Dashboard(c.UserContext(), user)
	if err != nil {
		return err
	}
	kpis := dto.NewKPIView(counts)
	return render(c, http.StatusOK, fiber.Map{"kpis": &kpis})
}
