package handlers_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
)

func TestListRendersOneItemPerRow(t *testing.T) {
	ta := newApp(t, testLimits())
	seller := ta.login(t, "seller@creativehub.test")

	resp := ta.do(t, "GET", "/dashboard/products", nil, seller)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := readBody(t, resp)
	want := count(t, ta.db, `SELECT COUNT(*) FROM products WHERE seller_id='u-seller'`)
	if got := strings.Count(body, "data-row"); got != want {
		t.Fatalf("expected %d rows, got %d", want, got)
	}
	if strings.Contains(body, "data-empty") {
		t.Fatal("empty state rendered next to rows")
	}
}

func TestEmptyListShowsCallToAction(t *testing.T) {
	ta := newApp(t, testLimits())
	buyer := ta.login(t, "buyer@creativehub.test")

	for _, p := range []string{"/dashboard/products", "/dashboard/favorites", "/dashboard/downloads", "/dashboard/notifications"} {
		body := readBody(t, ta.do(t, "GET", p, nil, buyer))
		if strings.Count(body, "data-row") != 0 {
			t.Fatalf("%s: expected no rows", p)
		}
		if !strings.Contains(body, "data-empty") {
			t.Fatalf("%s: expected empty state", p)
		}
		empty := body[strings.Index(body, "data-empty"):]
		if !strings.Contains(empty, `class="btn"`) {
			t.Fatalf("%s: empty state has no call to action", p)
		}
	}
}

func TestFailedReadShowsSingleToast(t *testing.T) {
	ta := newApp(t, testLimits())
	seller := ta.login(t, "seller@creativehub.test")
	if _, err := ta.db.Exec(`DROP TABLE favorites`); err != nil {
		t.Fatal(err)
	}
	// A pending flash from an earlier redirect must not add a second toast.
	flash := ta.do(t, "POST", "/dashboard/notifications/read-all", url.Values{}, seller)
	toast := &http.Cookie{Name: "toast", Value: cookie(flash, "toast")}

	var resp *http.Response
	entries := captureLogs(t, func() {
		resp = ta.do(t, "GET", "/dashboard/favorites", nil, seller, toast)
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected the page to render, got %d", resp.StatusCode)
	}
	body := readBody(t, resp)
	if n := strings.Count(body, "data-toast"); n != 1 {
		t.Fatalf("expected exactly one toast, got %d", n)
	}
	if !strings.Contains(body, "couldn&#39;t load this page") && !strings.Contains(body, "couldn't load this page") {
		t.Fatalf("expected the load failure toast; body=%s", body)
	}
	if strings.Contains(body, "no such table") {
		t.Fatal("store error leaked into the page")
	}
	if _, ok := findLog(entries, "dashboard.favorites.read"); !ok {
		t.Fatal("expected the failed read to be logged")
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	ta := newApp(t, testLimits())
	seller := ta.login(t, "seller@creativehub.test")

	resp := ta.do(t, "POST", "/dashboard/products/prod-3d-icons/delete", url.Values{}, seller)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected the confirmation page, got %d", resp.StatusCode)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, `name="confirm" value="yes"`) || !strings.Contains(body, `action="/dashboard/products/prod-3d-icons/delete"`) {
		t.Fatalf("confirmation form missing; body=%s", body)
	}
	if n := count(t, ta.db, `SELECT COUNT(*) FROM products WHERE id='prod-3d-icons'`); n != 1 {
		t.Fatal("product deleted without confirmation")
	}
}

func TestConfirmedDeleteRemovesRow(t *testing.T) {
	ta := newApp(t, testLimits())
	seller := ta.login(t, "seller@creativehub.test")

	resp := ta.do(t, "POST", "/dashboard/products/prod-3d-icons/delete", url.Values{"confirm": {"yes"}}, seller)
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/dashboard/products" {
		t.Fatalf("expected redirect to the list, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
	body := readBody(t, ta.do(t, "GET", "/dashboard/products", nil, seller))
	if strings.Contains(body, "prod-3d-icons") || strings.Contains(body, "3D Icon Pack") {
		t.Fatal("deleted product still listed")
	}
	if got := strings.Count(body, "data-row"); got != 5 {
		t.Fatalf("expected 5 rows after delete, got %d", got)
	}
}

func TestSellerCannotDeleteOthersProduct(t *testing.T) {
	ta := newApp(t, testLimits())
	buyer := ta.login(t, "buyer@creativehub.test")
	ta.do(t, "POST", "/dashboard/products/prod-icon-pro/delete", url.Values{"confirm": {"yes"}}, buyer)
	if n := count(t, ta.db, `SELECT COUNT(*) FROM products WHERE id='prod-icon-pro'`); n != 1 {
		t.Fatal("another user's product was deleted")
	}
}

func TestFavoriteToggleRoundTrip(t *testing.T) {
	ta := newApp(t, testLimits())
	buyer := ta.login(t, "buyer@creativehub.test")
	favs := func() int {
		return count(t, ta.db, `SELECT COUNT(*) FROM favorites WHERE user_id='u-buyer'`)
	}
	before := favs()

	on := ta.do(t, "POST", "/products/prod-icon-pro/favorite", url.Values{"next": {"/explore"}}, buyer)
	if on.StatusCode != http.StatusFound || on.Header.Get("Location") != "/explore" {
		t.Fatalf("expected redirect back, got %d %q", on.StatusCode, on.Header.Get("Location"))
	}
	if favs() != before+1 {
		t.Fatal("favorite not saved")
	}
	page := readBody(t, ta.do(t, "GET", "/dashboard/favorites", nil, buyer))
	if !strings.Contains(page, "Icon Collection Pro") {
		t.Fatal("favorite missing from the favorites page")
	}

	ta.do(t, "POST", "/products/prod-icon-pro/favorite", url.Values{}, buyer)
	if favs() != before {
		t.Fatalf("expected favorites back at %d, got %d", before, favs())
	}
}

func TestNotFoundPage(t *testing.T) {
	ta := newApp(t, testLimits())
	for _, p := range []string{"/nope", "/products/does-not-exist", "/products/3d-icon-pack"} {
		resp := ta.do(t, "GET", p, nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", p, resp.StatusCode)
		}
		if body := readBody(t, resp); !strings.Contains(body, `href="/"`) {
			t.Fatalf("%s: not-found page should link home", p)
		}
	}
}

func TestPublicPagesRender(t *testing.T) {
	ta := newApp(t, testLimits())
	for _, p := range []string{"/", "/explore", "/explore?q=icon&sort=price_asc", "/categories", "/courses",
		"/pricing", "/about", "/contact", "/blog", "/blog/welcome-to-creativehub", "/products/minimal-dashboard-ui-kit"} {
		resp := ta.do(t, "GET", p, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", p, resp.StatusCode)
		}
	}
	body := readBody(t, ta.do(t, "GET", "/explore?category=icons", nil))
	if got := strings.Count(body, "data-row"); got != 1 {
		t.Fatalf("icons category should list 1 published product, got %d", got)
	}
}

func TestSearchKeepsUnusualKeywords(t *testing.T) {
	ta := newApp(t, testLimits())
	for _, q := range []string{"zzzznomatch!", "café", "100%"} {
		body := readBody(t, ta.do(t, "GET", "/explore?q="+url.QueryEscape(q), nil))
		if n := strings.Count(body, "data-row"); n != 0 {
			t.Fatalf("explore %q: expected no rows, got %d", q, n)
		}
		if !strings.Contains(body, "data-empty") {
			t.Fatalf("explore %q: expected the empty state", q)
		}
		api := readBody(t, ta.do(t, "GET", "/api/v1/products?q="+url.QueryEscape(q), nil))
		if !strings.Contains(api, `"count":0`) {
			t.Fatalf("api %q: expected no items, got %s", q, api)
		}
	}
	body := readBody(t, ta.do(t, "GET", "/explore?q="+url.QueryEscape("Icon!"), nil))
	if strings.Count(body, "data-row") != 0 {
		t.Fatal("punctuation must stay part of the keyword")
	}
}

// Every ranged list on the overview pages falls back to an empty state.
func TestOverviewListsShowEmptyState(t *testing.T) {
	ta := newApp(t, testLimits())
	admin := ta.login(t, "admin@creativehub.test")
	for _, q := range []string{`DELETE FROM purchases`, `DELETE FROM products`, `DELETE FROM categories`, `DELETE FROM blog_posts`} {
		if _, err := ta.db.Exec(q); err != nil {
			t.Fatal(err)
		}
	}

	cases := []struct {
		path   string
		cookie *http.Cookie
		lists  int
	}{
		{"/admin/analytics", admin, 3},
		{"/", nil, 4},
	}
	for _, tc := range cases {
		var cookies []*http.Cookie
		if tc.cookie != nil {
			cookies = append(cookies, tc.cookie)
		}
		resp := ta.do(t, "GET", tc.path, nil, cookies...)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", tc.path, resp.StatusCode)
		}
		body := readBody(t, resp)
		if n := strings.Count(body, "data-empty"); n != tc.lists {
			t.Fatalf("%s: expected %d empty states, got %d", tc.path, tc.lists, n)
		}
		for i, part := range strings.Split(body, "data-empty")[1:] {
			if end := strings.Index(part, "</div>"); end < 0 || !strings.Contains(part[:end], `class="btn"`) {
				t.Fatalf("%s: empty state %d has no call to action", tc.path, i)
			}
		}
	}
}
