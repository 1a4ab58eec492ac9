package handlers

import (
	"errors"

	applog "creativehub/internal/log"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler logs the failure and renders a friendly page; internal error
// text never reaches the client.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	msg := "Something went wrong. Please try again."
	switch code {
	case fiber.StatusNotFound:
		msg = "Page not found"
	case fiber.StatusRequestEntityTooLarge:
		msg = "That upload is too large."
	case fiber.StatusMethodNotAllowed:
		msg = "Page not found"
		code = fiber.StatusNotFound
	}
	if code >= fiber.StatusInternalServerError {
		applog.Error(c, "server.error", err, nil)
	} else {
		applog.Info(c, "server.client_error", map[string]any{"status": code})
	}
	if rerr := renderIn(c.Status(code), "layouts/public", "notfound", fiber.Map{"Message": msg}); rerr != nil {
		return c.Status(code).SendString(msg)
	}
	return nil
}

// NotFound is the catch-all for unmatched routes.
func NotFound(c *fiber.Ctx) error { return notFound(c, "Page not found") }
