package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/service"
)

// UsersHandler exposes registration, login and profile endpoints.
type UsersHandler struct {
	identity *service.IdentityService
	sessions *auth.SessionMiddleware
}

// NewUsersHandler constructs handler.
func NewUsersHandler(identity *service.IdentityService, sessions *auth.SessionMiddleware) *UsersHandler {
	return &UsersHandler{identity: identity, sessions: sessions}
}

// Register handles POST /auth/register. The new account still has to log in.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.identity.Register(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return render(c, http.StatusCreated, fiber.Map{
		"registered": dto.NewUserView(user),
		"redirect":   "/login",
	})
}

// Login handles POST /auth/login[?next=/path].
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	next := req.Next
	if q := c.Query("next"); q != "" {
		next = q
	}

	user, session, err := h.identity.Authenticate(c.UserContext(), auth.SessionIDFromContext(c), req.Email, req.Password)
	if err != nil {
		return err
	}
	if err := h.sessions.SetSession(c, session); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"user":     dto.NewUserView(user),
		"redirect": SafeRedirect(next, "/app"),
	})
}

// Logout handles GET|POST /auth/logout.
func (h *UsersHandler) Logout(c *fiber.Ctx) error {
	if err := h.identity.Logout(c.UserContext(), auth.SessionIDFromContext(c)); err != nil {
		return err
	}
	h.sessions.ClearSession(c)
	return c.JSON(fiber.Map{"user": nil, "redirect": "/"})
}

// Profile handles GET /profile.
func (h *UsersHandler) Profile(c *fiber.Ctx) error {
	return render(c, http.StatusOK, nil)
}

// ChangeName handles POST /profile/name.
func (h *UsersHandler) ChangeName(c *fiber.Ctx) error {
	var req dto.ChangeNameRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.identity.ChangeName(c.UserContext(), auth.SessionIDFromContext(c), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": dto.NewUserView(user)})
}

// ChangePassword handles POST /profile/password.
func (h *UsersHandler) ChangePassword(c *fiber.Ctx) error {
	var req dto.ChangePasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	err := h.identity.ChangePassword(c.UserContext(), auth.SessionIDFromContext(c),
		req.CurrentPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		return err
	}
	return render(c, http.StatusOK, fiber.Map{"message": "password updated"})
}
