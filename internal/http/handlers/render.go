package handlers

import (
	"context"
	"errors"
	"strings"

	"creativehub/internal/domain"
	applog "creativehub/internal/log"
	"creativehub/internal/services"
	"creativehub/internal/validate"
	"creativehub/internal/view"

	"github.com/gofiber/fiber/v2"
)

const (
	loadFailedMsg = "We couldn't load this page. Please try again."
	saveFailedMsg = "Something went wrong. Your changes were not saved."
)

// layoutFor picks the shell from the request path.
func layoutFor(path string) string {
	switch {
	case path == "/admin" || strings.HasPrefix(path, "/admin/"):
		return "layouts/admin"
	case path == "/dashboard" || strings.HasPrefix(path, "/dashboard/"):
		return "layouts/dashboard"
	default:
		return "layouts/public"
	}
}

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	return renderIn(c, layoutFor(c.Path()), tmpl, data)
}

func renderIn(c *fiber.Ctx, layout, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if u := currentUser(c); u != nil {
		data["User"] = u
	}
	// Pick up the token the CSRF middleware put into Locals
	tok, _ := c.Locals("CSRFToken").(string)
	if tok == "" {
		tok = c.Cookies("csrf_")
	}
	data["CSRFToken"] = tok
	if _, ok := data["Errors"]; !ok {
		data["Errors"] = validate.Errors{}
	}
	data["Path"] = c.Path()

	// A toast set by this request (a failed read) replaces any pending flash.
	flash, hasFlash := takeToast(c)
	if _, ok := data["Toast"]; !ok && hasFlash {
		data["Toast"] = flash
	}
	return c.Render(tmpl, data, layout)
}

func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}

// load runs a page read through the generation tracker, keyed by session and
// page. Visitors without a session have no superseded reads to drop.
func load[T any](c *fiber.Ctx, tr *view.Tracker, page string, fetch func(context.Context) (T, error)) (T, error) {
	sid := c.Cookies("sid")
	if sid == "" {
		return fetch(c.UserContext())
	}
	return view.Load(c.UserContext(), tr, view.Key(sid, page), fetch)
}

// stale answers a superseded read without rendering anything.
func stale(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) }

// readFailed logs a failed page read and attaches the single failure toast.
func readFailed(c *fiber.Ctx, action string, err error, data fiber.Map) {
	applog.Error(c, action, err, nil)
	data["Toast"] = Toast{Kind: ToastError, Message: loadFailedMsg}
}

// failed maps a mutation error to a toast and sends the user back.
func failed(c *fiber.Ctx, action string, err error, back string) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		setToast(c, ToastError, "That item no longer exists.")
	case errors.Is(err, services.ErrForbidden):
		applog.Security(c, action+".forbidden", nil)
		setToast(c, ToastError, "You are not allowed to do that.")
	case errors.Is(err, services.ErrInvalidStatus), errors.Is(err, services.ErrInvalidRole):
		applog.Security(c, action+".invalid", map[string]any{"err": err.Error()})
		setToast(c, ToastError, "That value is not allowed.")
	default:
		applog.Error(c, action, err, nil)
		setToast(c, ToastError, saveFailedMsg)
	}
	return c.Redirect(back)
}

// done sets a success toast and redirects to the list, which re-reads.
func done(c *fiber.Ctx, msg, back string) error {
	setToast(c, ToastSuccess, msg)
	return c.Redirect(back)
}

// fieldErrors unwraps a validation failure.
func fieldErrors(err error) (validate.Errors, bool) {
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		return ve.Fields, true
	}
	return nil, false
}

// confirmed reports whether a destructive POST carried confirm=yes. When it
// did not, the confirmation page has been rendered and nothing is written.
func confirmed(c *fiber.Ctx, message, back string) (bool, error) {
	if c.FormValue("confirm") == "yes" {
		return true, nil
	}
	return false, render(c, "confirm", fiber.Map{
		"Title":   "Are you sure?",
		"Message": message,
		"Action":  c.OriginalURL(),
		"Back":    back,
	})
}

func checked(c *fiber.Ctx, name string) bool {
	v := c.FormValue(name)
	return v == "on" || v == "true" || v == "1" || v == "yes"
}

func notFound(c *fiber.Ctx, msg string) error {
	return renderIn(c.Status(fiber.StatusNotFound), "layouts/public", "notfound", fiber.Map{"Message": msg})
}
