package handlers

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	ToastSuccess = "success"
	ToastError   = "error"
	ToastInfo    = "info"

	toastCookie = "toast"
)

// Toast is a one-shot message shown on the next rendered page.
type Toast struct {
	Kind    string `json:"k"`
	Message string `json:"m"`
}

func setToast(c *fiber.Ctx, kind, msg string) {
	b, _ := json.Marshal(Toast{Kind: kind, Message: msg})
	c.Cookie(&fiber.Cookie{
		Name:     toastCookie,
		Value:    base64.RawURLEncoding.EncodeToString(b),
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// takeToast reads and clears the pending toast.
func takeToast(c *fiber.Ctx) (Toast, bool) {
	raw := c.Cookies(toastCookie)
	if raw == "" {
		return Toast{}, false
	}
	c.Cookie(&fiber.Cookie{
		Name:     toastCookie,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(-time.Hour),
	})
	b, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return Toast{}, false
	}
	var t Toast
	if err := json.Unmarshal(b, &t); err != nil || t.Message == "" {
		return Toast{}, false
	}
	return t, true
}
