package handlers_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"creativehub/internal/http/handlers"
)

func TestErrorHandlerHidesInternals(t *testing.T) {
	app := fiber.New(fiber.Config{
		Views:        handlers.NewEngine("../../web/templates"),
		ErrorHandler: handlers.ErrorHandler,
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("sqlite: database disk image is malformed at /var/lib/creativehub.db")
	})

	var resp *http.Response
	entries := captureLogs(t, func() {
		var err error
		resp, err = app.Test(httptest.NewRequest("GET", "/boom", nil), -1)
		if err != nil {
			t.Fatal(err)
		}
	})
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	body := readBody(t, resp)
	if strings.Contains(body, "sqlite") || strings.Contains(body, "/var/lib") {
		t.Fatalf("internal error leaked: %s", body)
	}
	if !strings.Contains(body, "Something went wrong") {
		t.Fatalf("expected friendly message; body=%s", body)
	}
	e, ok := findLog(entries, "server.error")
	if !ok || e.Level != "error" {
		t.Fatalf("expected an error log, got %+v", e)
	}
}

func TestUnknownRouteRendersNotFound(t *testing.T) {
	ta := newApp(t, testLimits())
	resp := ta.do(t, "GET", "/definitely/not/here", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, "Page not found") {
		t.Fatal("expected the not-found page")
	}
}

func TestMissingCSRFTokenRejected(t *testing.T) {
	ta := newApp(t, testLimits())
	buyer := ta.login(t, "buyer@creativehub.test")
	before := count(t, ta.db, `SELECT COUNT(*) FROM favorites`)

	req := httptest.NewRequest("POST", "/products/prod-icon-pro/favorite", strings.NewReader(url.Values{}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(buyer)
	var resp *http.Response
	entries := captureLogs(t, func() {
		var err error
		resp, err = ta.app.Test(req, -1)
		if err != nil {
			t.Fatal(err)
		}
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
	if count(t, ta.db, `SELECT COUNT(*) FROM favorites`) != before {
		t.Fatal("mutation ran without a csrf token")
	}
	if e, ok := findLog(entries, "csrf.fail"); !ok || e.Level != "warn" {
		t.Fatalf("expected csrf.fail warn log, got %+v", e)
	}
}

func TestMaintenanceModeBlocksVisitors(t *testing.T) {
	ta := newApp(t, testLimits())
	admin := ta.login(t, "admin@creativehub.test")
	ta.do(t, "POST", "/admin/settings", url.Values{
		"site_name": {"CreativeHub"}, "contact_email": {"hello@creativehub.test"},
		"commission_rate": {"10"}, "enable_registration": {"on"}, "maintenance_mode": {"on"},
	}, admin)

	if resp := ta.do(t, "GET", "/explore", nil); resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for visitors, got %d", resp.StatusCode)
	}
	if resp := ta.do(t, "GET", "/explore", nil, admin); resp.StatusCode != http.StatusOK {
		t.Fatalf("admins browse during maintenance, got %d", resp.StatusCode)
	}
	if resp := ta.do(t, "GET", "/auth/login", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("login stays open, got %d", resp.StatusCode)
	}
}
