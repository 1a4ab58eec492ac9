package handlers

import (
	"errors"
	"strings"
	"time"

	"creativehub/internal/log"
	"creativehub/internal/services"
	"creativehub/internal/session"
	"creativehub/internal/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AuthHandler struct {
	Session      *session.Context
	CookieSecure bool
}

// bindSID replaces the browser's session cookie with sid, which has just been
// signed in. Whatever session the old cookie named is ended first.
func (h *AuthHandler) bindSID(c *fiber.Ctx, sid string) {
	if old := c.Cookies("sid"); old != "" && old != sid {
		if err := h.Session.SignOut(c.UserContext(), old); err != nil {
			log.Error(c, "auth.session.rotate", err, nil)
		}
	}
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    sid,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   h.CookieSecure,
	})
}

// safeNext only follows local paths.
func safeNext(next, fallback string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") && !strings.Contains(next, "\\") {
		return next
	}
	return fallback
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	if currentUser(c) != nil {
		return c.Redirect("/dashboard")
	}
	return render(c, "auth/login", fiber.Map{"Err": "", "Next": c.Query("next")})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := uuid.NewString()
	email := c.FormValue("email")
	pass := c.FormValue("password")
	next := c.FormValue("next")
	fail := func(reason string) error {
		log.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": reason})
		return render(c.Status(fiber.StatusUnauthorized), "auth/login", fiber.Map{
			"Err": "Invalid email or password", "Email": email, "Next": next,
		})
	}
	if _, ok := validate.Email(email); !ok {
		return fail("bad_format")
	}
	if pass == "" || len(pass) > 72 {
		return fail("bad_password_format")
	}

	u, err := h.Session.SignIn(c.UserContext(), sid, email, pass)
	if errors.Is(err, services.ErrInvalidCredentials) {
		return fail("credentials")
	}
	if err != nil {
		return err
	}
	h.bindSID(c, sid)

	log.Audit(c, "auth.login.success", map[string]any{"email": email})
	setToast(c, ToastSuccess, "Welcome back, "+u.Name+"!")
	fallback := "/dashboard"
	if u.IsAdmin() {
		fallback = "/admin"
	}
	return c.Redirect(safeNext(next, fallback))
}

func (h *AuthHandler) RegisterForm(c *fiber.Ctx) error {
	if currentUser(c) != nil {
		return c.Redirect("/dashboard")
	}
	return render(c, "auth/register", fiber.Map{"Form": fiber.Map{"Name": "", "Email": ""}})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	sid := uuid.NewString()
	name, email := c.FormValue("name"), c.FormValue("email")
	form := fiber.Map{"Name": name, "Email": email}

	_, err := h.Session.SignUp(c.UserContext(), sid, name, email, c.FormValue("password"))
	if fe, ok := fieldErrors(err); ok {
		log.Security(c, "auth.register.invalid", map[string]any{"fields": len(fe)})
		return render(c.Status(fiber.StatusUnprocessableEntity), "auth/register", fiber.Map{"Form": form, "Errors": fe})
	}
	switch {
	case errors.Is(err, services.ErrAlreadyRegistered):
		log.Security(c, "auth.register.duplicate", map[string]any{"email": email})
		return render(c.Status(fiber.StatusUnprocessableEntity), "auth/register", fiber.Map{
			"Form": form, "Errors": validate.Errors{"email": "An account with this email already exists"},
		})
	case errors.Is(err, services.ErrRegistrationClosed):
		return render(c.Status(fiber.StatusForbidden), "auth/register", fiber.Map{"Form": form, "Err": "Registration is currently closed."})
	case err != nil:
		return err
	}
	h.bindSID(c, sid)

	log.Audit(c, "auth.register.success", map[string]any{"email": email})
	setToast(c, ToastSuccess, "Your account is ready.")
	return c.Redirect("/dashboard")
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := c.Cookies("sid")
	if sid != "" {
		if err := h.Session.SignOut(c.UserContext(), sid); err != nil {
			log.Error(c, "auth.logout", err, nil)
		}
	}
	// Expire cookie
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   h.CookieSecure,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	log.Audit(c, "auth.logout", nil)
	setToast(c, ToastInfo, "You have been signed out.")
	return c.Redirect("/")
}
