package handlers_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

// multipart posts fields plus one file part, the way the product form does.
func (ta *testApp) multipart(t *testing.T, path string, fields map[string]string, fileField, filename string, content []byte, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields["csrf"] = ta.csrf
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	fw, err := w.CreateFormFile(fileField, filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest("POST", path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: ta.csrf})
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := ta.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestProductFormBlankTitleWritesNothing(t *testing.T) {
	ta := newApp(t, testLimits())
	seller := ta.login(t, "seller@creativehub.test")
	before := count(t, ta.db, `SELECT COUNT(*) FROM products`)

	var resp *http.Response
	entries := captureLogs(t, func() {
		resp = ta.do(t, "POST", "/dashboard/products/new", url.Values{
			"title": {"   "}, "price": {"10"}, "action": {"draft"}, "short_description": {"kept"},
		}, seller)
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, `data-field-error="title"`) {
		t.Fatalf("expected a title error; body=%s", body)
	}
	if !strings.Contains(body, `value="kept"`) {
		t.Fatal("form input was not kept")
	}
	if got := count(t, ta.db, `SELECT COUNT(*) FROM products`); got != before {
		t.Fatalf("product written despite invalid input: %d -> %d", before, got)
	}
	if e, ok := findLog(entries, "dashboard.product.invalid"); !ok || e.Level != "warn" {
		t.Fatalf("expected a warn log for the rejected form, got %+v", e)
	}
}

func TestProductFormPaidNeedsPrice(t *testing.T) {
	ta := newApp(t, testLimits())
	seller := ta.login(t, "seller@creativehub.test")
	resp := ta.do(t, "POST", "/dashboard/products/new", url.Values{
		"title": {"Mono Icons"}, "price": {"0"}, "action": {"draft"},
	}, seller)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, `data-field-error="price"`) {
		t.Fatal("expected a price error")
	}
}

func TestProductCreateSubmitsForReview(t *testing.T) {
	ta := newApp(t, testLimits())
	seller := ta.login(t, "seller@creativehub.test")

	resp := ta.multipart(t, "/dashboard/products/new", map[string]string{
		"title": "Mono Icons", "category_id": "cat-icons", "price": "12.50", "action": "pending",
	}, "thumbnail", "mono.png", []byte("\x89PNG fake"), seller)
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/dashboard/products" {
		t.Fatalf("expected redirect to the list, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
	var row struct {
		Slug      string `db:"slug"`
		Status    string `db:"status"`
		Thumbnail string `db:"thumbnail_url"`
	}
	if err := ta.db.Get(&row, `SELECT slug, status, COALESCE(thumbnail_url,'') AS thumbnail_url FROM products WHERE title='Mono Icons'`); err != nil {
		t.Fatal(err)
	}
	if row.Slug != "mono-icons" || row.Status != "pending" {
		t.Fatalf("unexpected product %+v", row)
	}
	if !strings.HasPrefix(row.Thumbnail, "/media/uploads/thumbnails/") {
		t.Fatalf("thumbnail not stored: %q", row.Thumbnail)
	}
}

func TestProductUploadRejectsNonImage(t *testing.T) {
	ta := newApp(t, testLimits())
	seller := ta.login(t, "seller@creativehub.test")
	before := count(t, ta.db, `SELECT COUNT(*) FROM products`)

	var resp *http.Response
	entries := captureLogs(t, func() {
		resp = ta.multipart(t, "/dashboard/products/new", map[string]string{
			"title": "Sneaky", "price": "5", "action": "draft",
		}, "thumbnail", "run.exe", []byte("MZ"), seller)
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, `data-field-error="thumbnail"`) {
		t.Fatal("expected a thumbnail error")
	}
	if count(t, ta.db, `SELECT COUNT(*) FROM products`) != before {
		t.Fatal("product written despite rejected upload")
	}
	if _, ok := findLog(entries, "upload.rejected"); !ok {
		t.Fatal("expected upload.rejected log")
	}
}

func TestSellerEditReturnsToReview(t *testing.T) {
	ta := newApp(t, testLimits())
	seller := ta.login(t, "seller@creativehub.test")

	form := readBody(t, ta.do(t, "GET", "/dashboard/products/prod-icon-pro/edit", nil, seller))
	if !strings.Contains(form, `value="Icon Collection Pro"`) {
		t.Fatal("edit form not prefilled")
	}
	resp := ta.do(t, "POST", "/dashboard/products/prod-icon-pro/edit", url.Values{
		"title": {"Icon Collection Pro 2"}, "slug": {"icon-collection-pro"}, "price": {"39"},
		"category_id": {"cat-icons"}, "action": {"pending"},
	}, seller)
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected 302, got %d", resp.StatusCode)
	}
	var status, slug string
	if err := ta.db.QueryRow(`SELECT status, slug FROM products WHERE id='prod-icon-pro'`).Scan(&status, &slug); err != nil {
		t.Fatal(err)
	}
	if status != "pending" || slug != "icon-collection-pro" {
		t.Fatalf("got status=%s slug=%s", status, slug)
	}
}

func TestOtherSellersProductNotEditable(t *testing.T) {
	ta := newApp(t, testLimits())
	buyer := ta.login(t, "buyer@creativehub.test")
	resp := ta.do(t, "GET", "/dashboard/products/prod-icon-pro/edit", nil, buyer)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestCategoryFormErrorsKeepInput(t *testing.T) {
	ta := newApp(t, testLimits())
	admin := ta.login(t, "admin@creativehub.test")
	before := count(t, ta.db, `SELECT COUNT(*) FROM categories`)

	resp := ta.do(t, "POST", "/admin/categories", url.Values{
		"name": {""}, "description": {"Mockups and scenes"},
	}, admin)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, `data-field-error="name"`) || !strings.Contains(body, "Mockups and scenes") {
		t.Fatalf("expected name error with input kept; body=%s", body)
	}
	if count(t, ta.db, `SELECT COUNT(*) FROM categories`) != before {
		t.Fatal("category written despite invalid input")
	}

	resp = ta.do(t, "POST", "/admin/categories", url.Values{"name": {"Mockups"}}, admin)
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected 302, got %d", resp.StatusCode)
	}
	if n := count(t, ta.db, `SELECT COUNT(*) FROM categories WHERE slug='mockups'`); n != 1 {
		t.Fatal("category slug not derived from name")
	}
}

func TestSettingsFormValidation(t *testing.T) {
	ta := newApp(t, testLimits())
	admin := ta.login(t, "admin@creativehub.test")

	resp := ta.do(t, "POST", "/admin/settings", url.Values{
		"site_name": {"CreativeHub"}, "contact_email": {"not-an-email"}, "commission_rate": {"150"},
	}, admin)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	body := readBody(t, resp)
	for _, f := range []string{"contact_email", "commission_rate"} {
		if !strings.Contains(body, `data-field-error="`+f+`"`) {
			t.Fatalf("expected %s error", f)
		}
	}

	resp = ta.do(t, "POST", "/admin/settings", url.Values{
		"site_name": {"CreativeHub"}, "contact_email": {"hello@creativehub.test"},
		"commission_rate": {"12.5"}, "enable_registration": {"on"},
	}, admin)
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected 302, got %d", resp.StatusCode)
	}
	var v string
	if err := ta.db.Get(&v, `SELECT value FROM admin_settings WHERE key='commission_rate'`); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(v, "12.5") {
		t.Fatalf("commission not saved: %s", v)
	}
}

func TestContactFormRequiresMessage(t *testing.T) {
	ta := newApp(t, testLimits())
	resp := ta.do(t, "POST", "/contact", url.Values{"name": {"Ana"}, "email": {"ana@example.com"}})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, `data-field-error="message"`) {
		t.Fatal("expected a message error")
	}
}
