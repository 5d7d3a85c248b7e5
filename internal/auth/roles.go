package auth

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// RequireUser ensures a user is authenticated, pointing anonymous callers at the login page.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := UserFromContext(c); !ok {
			err := apperrors.NewUnauthorized("login required").(*apperrors.DomainError)
			err.Details = map[string]any{"redirect": "/login?next=" + url.QueryEscape(c.Path())}
			return err
		}
		return c.Next()
	}
}

// RequireAdmin ensures the caller may use the admin console.
func RequireAdmin(policy Policy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := UserFromContext(c)
		if !policy.CanAccessAdminConsole(user) {
			return apperrors.NewForbidden("admin access required", "/app")
		}
		return c.Next()
	}
}
