package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// currentUser returns the caller resolved by the session middleware, or nil.
func currentUser(c *fiber.Ctx) *domain.User {
	user, _ := auth.UserFromContext(c)
	return user
}

// render writes a view-model: data plus the caller under "user" (null when anonymous).
func render(c *fiber.Ctx, status int, data fiber.Map) error {
	vm := fiber.Map{"user": dto.NewUserView(currentUser(c))}
	for k, v := range data {
		vm[k] = v
	}
	return c.Status(status).JSON(vm)
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}

// ticketID parses the :id route parameter. Malformed ids are reported as missing tickets.
func ticketID(c *fiber.Ctx) (int64, error) {
	raw := c.Params("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewNotFound("ticket", map[string]any{"id": raw})
	}
	return id, nil
}

// SafeRedirect returns next when it is a same-site relative path, otherwise fallback.
func SafeRedirect(next, fallback string) string {
	next = strings.TrimSpace(next)
	if next == "" || !strings.HasPrefix(next, "/") {
		return fallback
	}
	if strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	return next
}
