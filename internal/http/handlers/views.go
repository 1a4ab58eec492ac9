package handlers

import (
	"strings"
	"unicode/utf8"

	"creativehub/internal/domain"

	html "github.com/gofiber/template/html/v2"
	"github.com/shopspring/decimal"
)

// NewEngine loads the templates under dir with the helpers pages rely on.
func NewEngine(dir string) *html.Engine {
	engine := html.New(dir, ".html")
	engine.AddFunc("money", func(d decimal.Decimal) string { return "$" + d.StringFixed(2) })
	engine.AddFunc("price", func(free bool, d decimal.Decimal) string {
		if free || d.IsZero() {
			return "Free"
		}
		return "$" + d.StringFixed(2)
	})
	engine.AddFunc("hasRole", func(roles []string, role string) bool {
		for _, r := range roles {
			if r == role {
				return true
			}
		}
		return false
	})
	engine.AddFunc("initial", func(s string) string {
		r, _ := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError {
			return "?"
		}
		return strings.ToUpper(string(r))
	})
	engine.AddFunc("short", func(s string, n int) string {
		if utf8.RuneCountInString(s) <= n {
			return s
		}
		return string([]rune(s)[:n]) + "…"
	})
	engine.AddFunc("date", func(ts string) string {
		if len(ts) >= 10 {
			return ts[:10]
		}
		return ts
	})
	engine.AddFunc("dict", func(kv ...any) map[string]any {
		m := make(map[string]any, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			if k, ok := kv[i].(string); ok {
				m[k] = kv[i+1]
			}
		}
		return m
	})
	engine.AddFunc("roles", func() []string { return domain.Roles })
	engine.AddFunc("productStatuses", func() []string { return domain.ProductStatuses })
	engine.AddFunc("purchaseStatuses", func() []string { return domain.PurchaseStatuses })
	engine.AddFunc("active", func(path, prefix string) bool {
		if prefix == "/" || prefix == "/dashboard" || prefix == "/admin" {
			return path == prefix
		}
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	})
	return engine
}
