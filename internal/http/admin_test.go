package handlers_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
)

func TestApproveProductIsAudited(t *testing.T) {
	ta := newApp(t, testLimits())
	admin := ta.login(t, "admin@creativehub.test")

	var resp *http.Response
	entries := captureLogs(t, func() {
		resp = ta.do(t, "POST", "/admin/products/prod-web-bundle/status", url.Values{"status": {"published"}}, admin)
	})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected 302, got %d", resp.StatusCode)
	}
	e, ok := findLog(entries, "admin.products.status")
	if !ok || e.Level != "audit" || e.UserID != "u-admin" {
		t.Fatalf("expected an audit entry by u-admin, got %+v", e)
	}
	if n := count(t, ta.db, `SELECT COUNT(*) FROM activity_logs WHERE action='admin.products.status' AND user_id='u-admin'`); n != 1 {
		t.Fatalf("expected one activity row, got %d", n)
	}
	if n := count(t, ta.db, `SELECT COUNT(*) FROM notifications WHERE user_id='u-seller'`); n != 1 {
		t.Fatalf("seller should hear about the approval, got %d notifications", n)
	}
	body := readBody(t, ta.do(t, "GET", "/explore?q=Website", nil))
	if !strings.Contains(body, "Website Templates Bundle") {
		t.Fatal("approved product not listed")
	}

	recent := readBody(t, ta.do(t, "GET", "/admin", nil, admin))
	if !strings.Contains(recent, "admin.products.status") {
		t.Fatal("recent activity missing from the admin overview")
	}
}

func TestProductStatusRejectsUnknownValue(t *testing.T) {
	ta := newApp(t, testLimits())
	admin := ta.login(t, "admin@creativehub.test")
	ta.do(t, "POST", "/admin/products/prod-web-bundle/status", url.Values{"status": {"archived"}}, admin)
	var status string
	if err := ta.db.Get(&status, `SELECT status FROM products WHERE id='prod-web-bundle'`); err != nil {
		t.Fatal(err)
	}
	if status != "pending" {
		t.Fatalf("status changed to %s", status)
	}
}

func TestFeatureToggleFlipsFlag(t *testing.T) {
	ta := newApp(t, testLimits())
	admin := ta.login(t, "admin@creativehub.test")
	ta.do(t, "POST", "/admin/products/prod-figma-course/feature", url.Values{}, admin)
	if n := count(t, ta.db, `SELECT is_featured FROM products WHERE id='prod-figma-course'`); n != 1 {
		t.Fatal("product not featured")
	}
	ta.do(t, "POST", "/admin/products/prod-figma-course/feature", url.Values{}, admin)
	if n := count(t, ta.db, `SELECT is_featured FROM products WHERE id='prod-figma-course'`); n != 0 {
		t.Fatal("product still featured")
	}
}

func TestRoleAssignAndUserDelete(t *testing.T) {
	ta := newApp(t, testLimits())
	admin := ta.login(t, "admin@creativehub.test")

	ta.do(t, "POST", "/admin/users/u-buyer/roles", url.Values{"role": {"moderator"}}, admin)
	if n := count(t, ta.db, `SELECT COUNT(*) FROM user_roles WHERE user_id='u-buyer' AND role='moderator'`); n != 1 {
		t.Fatal("role not assigned")
	}
	ta.do(t, "POST", "/admin/users/u-buyer/roles", url.Values{"role": {"superuser"}}, admin)
	if n := count(t, ta.db, `SELECT COUNT(*) FROM user_roles WHERE role='superuser'`); n != 0 {
		t.Fatal("unknown role stored")
	}

	page := readBody(t, ta.do(t, "GET", "/admin/users?q=buyer", nil, admin))
	if strings.Count(page, "data-row") != 1 {
		t.Fatal("search should find exactly the buyer")
	}

	ta.do(t, "POST", "/admin/users/u-buyer/delete", url.Values{"confirm": {"yes"}}, admin)
	if n := count(t, ta.db, `SELECT COUNT(*) FROM users WHERE id='u-buyer'`); n != 0 {
		t.Fatal("user not deleted")
	}
}

func TestAdminCannotDeleteSelf(t *testing.T) {
	ta := newApp(t, testLimits())
	admin := ta.login(t, "admin@creativehub.test")
	ta.do(t, "POST", "/admin/users/u-admin/delete", url.Values{"confirm": {"yes"}}, admin)
	if n := count(t, ta.db, `SELECT COUNT(*) FROM users WHERE id='u-admin'`); n != 1 {
		t.Fatal("admin deleted their own account")
	}
}

func TestSmsSendQueuesIntent(t *testing.T) {
	ta := newApp(t, testLimits())
	admin := ta.login(t, "admin@creativehub.test")

	resp := ta.do(t, "POST", "/admin/sms/send", url.Values{"recipient_phone": {"call me"}, "message": {"Hi"}}, admin)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, `data-field-error="recipient_phone"`) {
		t.Fatal("expected a phone error")
	}

	resp = ta.do(t, "POST", "/admin/sms/send", url.Values{"recipient_phone": {"+1 555 0100"}, "message": {"New drops this week"}}, admin)
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected 302, got %d", resp.StatusCode)
	}
	if n := count(t, ta.db, `SELECT COUNT(*) FROM sms_messages WHERE status='pending'`); n != 1 {
		t.Fatalf("expected one queued message, got %d", n)
	}
	body := readBody(t, ta.do(t, "GET", "/admin/sms", nil, admin))
	if !strings.Contains(body, "New drops this week") {
		t.Fatal("queued message not listed")
	}
}

func TestNewsletterSendCountsActiveSubscribers(t *testing.T) {
	ta := newApp(t, testLimits())
	admin := ta.login(t, "admin@creativehub.test")

	ta.do(t, "POST", "/newsletter/subscribe", url.Values{"email": {"New@Example.com"}})
	ta.do(t, "POST", "/newsletter/subscribe", url.Values{"email": {"new@example.com"}})
	if n := count(t, ta.db, `SELECT COUNT(*) FROM newsletter_subscribers WHERE email='new@example.com'`); n != 1 {
		t.Fatalf("expected one subscriber row, got %d", n)
	}

	ta.do(t, "POST", "/admin/newsletters", url.Values{"subject": {"Draft issue"}, "content": {"Soon"}, "action": {"draft"}}, admin)
	ta.do(t, "POST", "/admin/newsletters", url.Values{"subject": {"October picks"}, "content": {"Fresh kits"}, "action": {"sent"}}, admin)

	var draft, sent int
	if err := ta.db.Get(&draft, `SELECT recipient_count FROM newsletters WHERE subject='Draft issue'`); err != nil {
		t.Fatal(err)
	}
	if err := ta.db.Get(&sent, `SELECT recipient_count FROM newsletters WHERE subject='October picks'`); err != nil {
		t.Fatal(err)
	}
	if draft != 0 || sent != 2 {
		t.Fatalf("expected draft=0 sent=2, got draft=%d sent=%d", draft, sent)
	}
}

func TestBlogPublishAndUnpublish(t *testing.T) {
	ta := newApp(t, testLimits())
	admin := ta.login(t, "admin@creativehub.test")

	ta.do(t, "POST", "/admin/blog", url.Values{
		"title": {"Grid Systems 101"}, "excerpt": {"Columns"}, "content": {"Use a 12 column grid."}, "action": {"published"},
	}, admin)
	if resp := ta.do(t, "GET", "/blog/grid-systems-101", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected the post to be public, got %d", resp.StatusCode)
	}

	var id string
	if err := ta.db.Get(&id, `SELECT id FROM blog_posts WHERE slug='grid-systems-101'`); err != nil {
		t.Fatal(err)
	}
	ta.do(t, "POST", "/admin/blog/"+id+"/toggle", url.Values{}, admin)
	if resp := ta.do(t, "GET", "/blog/grid-systems-101", nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected draft to be hidden, got %d", resp.StatusCode)
	}
}
