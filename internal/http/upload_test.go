package handlers_test

import (
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n fake")

// uploads lists every stored file under the media uploads folder.
func (ta *testApp) uploads(t *testing.T) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(filepath.Join(ta.media, "uploads"), func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, p)
		}
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		t.Fatal(err)
	}
	return files
}

// stored reports whether the upload behind a /media URL is on disk.
func (ta *testApp) stored(t *testing.T, u string) bool {
	t.Helper()
	if !strings.HasPrefix(u, "/media/uploads/") {
		t.Fatalf("not an upload url: %q", u)
	}
	_, err := os.Stat(filepath.Join(ta.media, strings.TrimPrefix(u, "/media/")))
	return err == nil
}

func TestInvalidFormStoresNoUpload(t *testing.T) {
	ta := newApp(t, testLimits())
	seller := ta.login(t, "seller@creativehub.test")
	admin := ta.login(t, "admin@creativehub.test")

	cases := []struct {
		path, field string
		fields      map[string]string
		user        *http.Cookie
	}{
		{"/dashboard/products/new", "thumbnail", map[string]string{"title": "", "price": "5", "action": "draft"}, seller},
		{"/dashboard/products/prod-icon-pro/edit", "thumbnail", map[string]string{"title": "Icon Collection Pro", "slug": "icon-collection-pro", "price": "abc", "action": "draft"}, seller},
		{"/dashboard/settings", "avatar", map[string]string{"website": "javascript:alert(1)"}, seller},
		{"/admin/blog", "cover_image", map[string]string{"title": "", "action": "draft"}, admin},
	}
	for _, tc := range cases {
		var resp *http.Response
		entries := captureLogs(t, func() {
			resp = ta.multipart(t, tc.path, tc.fields, tc.field, "cover.png", pngBytes, tc.user)
		})
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Fatalf("%s: expected 422, got %d", tc.path, resp.StatusCode)
		}
		if _, ok := findLog(entries, "upload.stored"); ok {
			t.Fatalf("%s: upload stored for an invalid form", tc.path)
		}
	}
	if files := ta.uploads(t); len(files) != 0 {
		t.Fatalf("orphaned uploads: %v", files)
	}
}

func TestSvgUploadRejected(t *testing.T) {
	ta := newApp(t, testLimits())
	seller := ta.login(t, "seller@creativehub.test")

	resp := ta.multipart(t, "/dashboard/settings", map[string]string{"full_name": "Sam"},
		"avatar", "me.svg", []byte(`<svg xmlns="http://www.w3.org/2000/svg" onload="alert(document.cookie)"/>`), seller)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, `data-field-error="avatar"`) {
		t.Fatal("expected an avatar error")
	}
	if files := ta.uploads(t); len(files) != 0 {
		t.Fatalf("svg stored: %v", files)
	}
}

func TestReplacedAndDeletedThumbnailsAreRemoved(t *testing.T) {
	ta := newApp(t, testLimits())
	seller := ta.login(t, "seller@creativehub.test")

	ta.multipart(t, "/dashboard/products/new", map[string]string{
		"title": "Line Icons", "price": "9", "action": "draft",
	}, "thumbnail", "one.png", pngBytes, seller)
	var id, first string
	if err := ta.db.QueryRow(`SELECT id, thumbnail_url FROM products WHERE title='Line Icons'`).Scan(&id, &first); err != nil {
		t.Fatal(err)
	}
	if !ta.stored(t, first) {
		t.Fatalf("first thumbnail missing: %q", first)
	}

	resp := ta.multipart(t, "/dashboard/products/"+id+"/edit", map[string]string{
		"title": "Line Icons", "slug": "line-icons", "price": "9", "action": "draft",
	}, "thumbnail", "two.png", pngBytes, seller)
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("edit: expected 302, got %d", resp.StatusCode)
	}
	var second string
	if err := ta.db.QueryRow(`SELECT thumbnail_url FROM products WHERE id=?`, id).Scan(&second); err != nil {
		t.Fatal(err)
	}
	if second == first || !ta.stored(t, second) {
		t.Fatalf("second thumbnail not stored: %q", second)
	}
	if ta.stored(t, first) {
		t.Fatal("replaced thumbnail left on disk")
	}

	// an edit without a new file keeps the current thumbnail
	ta.multipart(t, "/dashboard/products/"+id+"/edit", map[string]string{
		"title": "Line Icons", "slug": "line-icons", "price": "10", "action": "draft",
	}, "thumbnail", "", nil, seller)
	if !ta.stored(t, second) {
		t.Fatal("thumbnail removed by an edit without a file")
	}

	del := ta.do(t, "POST", "/dashboard/products/"+id+"/delete", url.Values{"confirm": {"yes"}}, seller)
	if del.StatusCode != http.StatusFound {
		t.Fatalf("delete: expected 302, got %d", del.StatusCode)
	}
	if files := ta.uploads(t); len(files) != 0 {
		t.Fatalf("deleted product left uploads: %v", files)
	}
}

func TestDeletedAccountUploadsAreRemoved(t *testing.T) {
	ta := newApp(t, testLimits())
	seller := ta.login(t, "seller@creativehub.test")
	admin := ta.login(t, "admin@creativehub.test")

	resp := ta.multipart(t, "/dashboard/settings", map[string]string{"full_name": "Sam Seller"}, "avatar", "me.png", pngBytes, seller)
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("settings: expected 302, got %d", resp.StatusCode)
	}
	if len(ta.uploads(t)) != 1 {
		t.Fatal("avatar not stored")
	}

	entries := captureLogs(t, func() {
		resp = ta.do(t, "POST", "/admin/users/u-seller/delete", url.Values{"confirm": {"yes"}}, admin)
	})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("delete: expected 302, got %d", resp.StatusCode)
	}
	if files := ta.uploads(t); len(files) != 0 {
		t.Fatalf("deleted account left uploads: %v", files)
	}
	// seeded thumbnails live elsewhere and are skipped without error
	if _, ok := findLog(entries, "upload.discard"); ok {
		t.Fatal("unexpected discard failure")
	}
}

func TestBlogCoverReplacedOnEdit(t *testing.T) {
	ta := newApp(t, testLimits())
	admin := ta.login(t, "admin@creativehub.test")

	ta.multipart(t, "/admin/blog", map[string]string{"title": "Launch Notes", "action": "draft"}, "cover_image", "a.png", pngBytes, admin)
	var id, first string
	if err := ta.db.QueryRow(`SELECT id, cover_image FROM blog_posts WHERE title='Launch Notes'`).Scan(&id, &first); err != nil {
		t.Fatal(err)
	}
	ta.multipart(t, "/admin/blog/"+id, map[string]string{"title": "Launch Notes", "slug": "launch-notes", "action": "draft"}, "cover_image", "b.png", pngBytes, admin)
	if ta.stored(t, first) {
		t.Fatal("replaced cover left on disk")
	}
	ta.do(t, "POST", "/admin/blog/"+id+"/delete", url.Values{"confirm": {"yes"}}, admin)
	if files := ta.uploads(t); len(files) != 0 {
		t.Fatalf("deleted post left uploads: %v", files)
	}
}
