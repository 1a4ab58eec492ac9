package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"

	"creativehub/internal/config"
	"creativehub/internal/http/handlers"
	"creativehub/internal/http/router"
	"creativehub/internal/repos"
)

const password = "Passw0rd!"

type testApp struct {
	app   *fiber.App
	db    *sqlx.DB
	deps  *handlers.Deps
	csrf  string
	media string
}

func testLimits() router.Limits {
	return router.Limits{Global: 1000, Login: 100, Register: 100, API: 100, Window: time.Minute}
}

// newApp wires the full router over a fresh seeded in-memory store.
func newApp(t *testing.T, lim router.Limits) *testApp {
	t.Helper()
	cfg := config.Config{
		DBDSN:        ":memory:",
		MediaDir:     t.TempDir(),
		TemplatesDir: "../../web/templates",
		StaticDir:    "../../web/static",
	}
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	deps := handlers.NewDeps(db, cfg, handlers.Infra{})
	t.Cleanup(func() {
		_ = deps.Close()
		_ = db.Close()
	})
	ta := &testApp{app: router.New(cfg, deps, lim), db: db, deps: deps, media: cfg.MediaDir}

	resp := ta.do(t, "GET", "/auth/login", nil)
	ta.csrf = cookie(resp, "csrf_")
	if ta.csrf == "" {
		t.Fatal("csrf token missing")
	}
	return ta
}

func cookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// do sends a request; form != nil makes it a urlencoded POST carrying the csrf token.
func (ta *testApp) do(t *testing.T, method, path string, form url.Values, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	var body io.Reader
	if form != nil {
		form.Set("csrf", ta.csrf)
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if ta.csrf != "" {
		req.AddCookie(&http.Cookie{Name: "csrf_", Value: ta.csrf})
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := ta.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// login signs email in and returns the session cookie.
func (ta *testApp) login(t *testing.T, email string) *http.Cookie {
	t.Helper()
	resp := ta.do(t, "POST", "/auth/login", url.Values{"email": {email}, "password": {password}})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("login %s: expected 302, got %d", email, resp.StatusCode)
	}
	sid := cookie(resp, "sid")
	if sid == "" {
		t.Fatalf("login %s: no sid cookie", email)
	}
	return &http.Cookie{Name: "sid", Value: sid}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func count(t *testing.T, db *sqlx.DB, q string, args ...any) int {
	t.Helper()
	var n int
	if err := db.Get(&n, q, args...); err != nil {
		t.Fatalf("count %q: %v", q, err)
	}
	return n
}

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	UserID string         `json:"user_id"`
	Fields map[string]any `json:"fields"`
}

type lockedBuf struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

// captureLogs collects the JSON log lines written while fn runs.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	buf := &lockedBuf{}
	oldW := log.Writer()
	oldFlags := log.Flags()
	log.SetOutput(buf)
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.b.String()), "\n") {
		var e logEntry
		if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &e); err == nil && e.Action != "" {
			entries = append(entries, e)
		}
	}
	return entries
}

func findLog(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}
