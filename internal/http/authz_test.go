package handlers_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
)

func TestAnonymousRedirectedToLogin(t *testing.T) {
	ta := newApp(t, testLimits())
	for _, p := range []string{"/admin", "/admin/users", "/dashboard", "/dashboard/favorites", "/dashboard/settings"} {
		resp := ta.do(t, "GET", p, nil)
		if resp.StatusCode != http.StatusFound {
			t.Fatalf("%s: expected 302, got %d", p, resp.StatusCode)
		}
		if loc := resp.Header.Get("Location"); loc != "/auth/login" {
			t.Fatalf("%s: expected redirect to /auth/login, got %q", p, loc)
		}
	}
	// Mutations behind login are guarded the same way.
	resp := ta.do(t, "POST", "/products/prod-icon-pro/favorite", url.Values{})
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/auth/login" {
		t.Fatalf("favorite without session: got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
}

func TestNonAdminBouncedToDashboard(t *testing.T) {
	ta := newApp(t, testLimits())
	sid := ta.login(t, "buyer@creativehub.test")

	var resp *http.Response
	entries := captureLogs(t, func() {
		resp = ta.do(t, "GET", "/admin/users", nil, sid)
	})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected 302, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/dashboard" {
		t.Fatalf("expected redirect to /dashboard, got %q", loc)
	}
	if body := readBody(t, resp); strings.Contains(body, "data-admin-shell") || strings.Contains(body, "admin@creativehub.test") {
		t.Fatal("admin content leaked to a non-admin")
	}
	e, ok := findLog(entries, "access.denied.admin")
	if !ok {
		t.Fatal("expected access.denied.admin security log")
	}
	if e.Level != "warn" || e.UserID != "u-buyer" {
		t.Fatalf("unexpected denial log: %+v", e)
	}

	// The dashboard shows the denial toast exactly once.
	toast := &http.Cookie{Name: "toast", Value: cookie(resp, "toast")}
	dash := ta.do(t, "GET", "/dashboard", nil, sid, toast)
	body := readBody(t, dash)
	if dash.StatusCode != http.StatusOK {
		t.Fatalf("dashboard: expected 200, got %d", dash.StatusCode)
	}
	if strings.Count(body, "data-toast") != 1 || !strings.Contains(body, "Access Denied") {
		t.Fatalf("expected a single Access Denied toast; body=%s", body)
	}
}

func TestNonAdminCannotMutateAdminData(t *testing.T) {
	ta := newApp(t, testLimits())
	sid := ta.login(t, "buyer@creativehub.test")

	resp := ta.do(t, "POST", "/admin/products/prod-web-bundle/status", url.Values{"status": {"published"}}, sid)
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/dashboard" {
		t.Fatalf("expected bounce to /dashboard, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
	if n := count(t, ta.db, `SELECT COUNT(*) FROM products WHERE id='prod-web-bundle' AND status='pending'`); n != 1 {
		t.Fatal("non-admin changed a product status")
	}
}

func TestAdminSeesAdminShell(t *testing.T) {
	ta := newApp(t, testLimits())
	sid := ta.login(t, "admin@creativehub.test")
	resp := ta.do(t, "GET", "/admin", nil, sid)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, "data-admin-shell") {
		t.Fatal("admin shell missing")
	}
}

func TestAdminCannotRevokeOwnAdminRole(t *testing.T) {
	ta := newApp(t, testLimits())
	sid := ta.login(t, "admin@creativehub.test")

	var resp *http.Response
	entries := captureLogs(t, func() {
		resp = ta.do(t, "POST", "/admin/users/u-admin/roles/admin/delete", url.Values{"confirm": {"yes"}}, sid)
	})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected 302, got %d", resp.StatusCode)
	}
	if n := count(t, ta.db, `SELECT COUNT(*) FROM user_roles WHERE user_id='u-admin' AND role='admin'`); n != 1 {
		t.Fatal("admin role was revoked from self")
	}
	if _, ok := findLog(entries, "admin.users.role.revoke.forbidden"); !ok {
		t.Fatal("expected forbidden security log")
	}
}
