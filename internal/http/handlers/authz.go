package handlers

import (
	"strings"

	applog "creativehub/internal/log"
	"creativehub/internal/services"
	"creativehub/internal/session"

	"github.com/gofiber/fiber/v2"
)

// AttachUser resolves the session's user (with roles) once per request.
func AttachUser(sess *session.Context) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := sess.Current(c.UserContext(), sid); err == nil && u != nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	}
}

// RequireUser enforces that a user is logged in; otherwise redirect to login.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if currentUser(c) == nil {
			return c.Redirect("/auth/login")
		}
		return c.Next()
	}
}

// RequireAdmin sends anonymous users to login and signed-in non-admins back to
// their dashboard with an "Access Denied" toast.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := currentUser(c)
		if u == nil {
			return c.Redirect("/auth/login")
		}
		if !u.IsAdmin() {
			applog.Security(c, "access.denied.admin", map[string]any{"path": c.Path()})
			setToast(c, ToastError, "Access Denied")
			return c.Redirect("/dashboard")
		}
		return c.Next()
	}
}

// Maintenance shows the maintenance page to everyone but admins while the
// maintenance_mode setting is on. Auth, admin and asset paths stay open.
func Maintenance(settings *services.SettingsService) fiber.Handler {
	open := []string{"/auth/", "/admin", "/static/", "/media/", "/healthz"}
	return func(c *fiber.Ctx) error {
		p := c.Path()
		for _, pre := range open {
			if strings.HasPrefix(p, pre) {
				return c.Next()
			}
		}
		if u := currentUser(c); u != nil && u.IsAdmin() {
			return c.Next()
		}
		st, err := settings.Load(c.UserContext())
		if err != nil || !st.MaintenanceMode {
			return c.Next()
		}
		return renderIn(c.Status(fiber.StatusServiceUnavailable), "layouts/public", "maintenance", fiber.Map{"Settings": st})
	}
}
