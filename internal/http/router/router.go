// Package router assembles the Fiber app: middleware, static assets and every
// page route.
package router

import (
	"log"
	"path/filepath"
	"strings"
	"time"

	"creativehub/internal/config"
	"creativehub/internal/http/handlers"
	applog "creativehub/internal/log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// Limits are the per-window request budgets of the rate limiters.
type Limits struct {
	Global   int
	Login    int
	Register int
	API      int
	Window   time.Duration
}

func DefaultLimits() Limits {
	return Limits{Global: 120, Login: 5, Register: 5, API: 30, Window: time.Minute}
}

func New(cfg config.Config, deps *handlers.Deps, lim Limits) *fiber.App {
	engine := handlers.NewEngine(cfg.TemplatesDir)

	app := fiber.New(fiber.Config{
		Views:        engine,
		ErrorHandler: handlers.ErrorHandler,
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(handlers.AttachUser(deps.Session))
	app.Use(limiter.New(limiter.Config{
		Max:        lim.Global,
		Expiration: lim.Window,
		Next: func(c *fiber.Ctx) bool {
			p := string(c.Request().URI().Path())
			return strings.HasPrefix(p, "/static/") || strings.HasPrefix(p, "/media/")
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).SendString("Too many requests. Please slow down.")
		},
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   cfg.CookieSecure,
		ContextKey:     "csrf",
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/")
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", map[string]any{"err": err.Error()})
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{
				"Message": "Security check failed. Please refresh and try again.",
			}, "layouts/public")
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})
	app.Use(handlers.Maintenance(deps.Settings))

	// ---------- Static assets ----------
	mediaDir := cfg.MediaDir
	if !filepath.IsAbs(mediaDir) {
		if abs, err := filepath.Abs(mediaDir); err == nil {
			mediaDir = abs
		}
	}
	log.Printf("[static] /static -> %s", cfg.StaticDir)
	log.Printf("[static] /media  -> %s", mediaDir)

	app.Static("/static", cfg.StaticDir)
	// Guarded media to avoid traversal
	app.Get("/media/*", func(c *fiber.Ctx) error {
		path := c.Params("*")
		rawLower := strings.ToLower(path)
		if strings.Contains(rawLower, "..") || strings.Contains(rawLower, "%2e") || strings.Contains(rawLower, "\x00") {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		clean := filepath.Clean(path)
		if clean == "." || strings.Contains(clean, "..") || filepath.IsAbs(clean) {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		return c.SendFile(filepath.Join(mediaDir, clean), true)
	})

	pub := deps.PublicHandler
	prod := deps.ProductHandler
	auth := deps.AuthHandler
	dash := deps.DashboardHandler
	adm := deps.AdminHandler
	content := deps.ContentHandler

	// Public pages
	app.Get("/", pub.Home)
	app.Get("/explore", pub.Explore)
	app.Get("/categories", pub.Categories)
	app.Get("/courses", pub.Courses)
	app.Get("/pricing", pub.Pricing)
	app.Get("/about", pub.About)
	app.Get("/contact", pub.ContactForm)
	app.Post("/contact", pub.Contact)
	app.Get("/blog", pub.BlogIndex)
	app.Get("/blog/:slug", pub.BlogPost)
	app.Post("/newsletter/subscribe", pub.Subscribe)

	// Products
	app.Get("/products/:slug", prod.Detail)
	app.Post("/products/:id/purchase", handlers.RequireUser(), prod.Purchase)
	app.Post("/products/:id/favorite", handlers.RequireUser(), prod.Favorite)

	// API
	api := app.Group("/api/v1")
	api.Get("/products", limiter.New(limiter.Config{
		Max:        lim.API,
		Expiration: lim.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|api"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.api.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}), prod.API)

	// Auth routes (login and register throttled)
	app.Get("/auth/login", auth.LoginForm)
	app.Post("/auth/login", limiter.New(limiter.Config{
		Max:        lim.Login,
		Expiration: lim.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|login"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).Render("auth/login", fiber.Map{
				"Err": "Too many attempts. Please try again later.", "CSRFToken": c.Locals("CSRFToken"),
			}, "layouts/public")
		},
	}), auth.Login)
	app.Get("/auth/register", auth.RegisterForm)
	app.Post("/auth/register", limiter.New(limiter.Config{
		Max:        lim.Register,
		Expiration: lim.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|register"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.register.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).SendString("Too many sign-ups from this address. Please try again later.")
		},
	}), auth.Register)
	app.Post("/auth/logout", auth.Logout)

	// Dashboard
	d := app.Group("/dashboard", handlers.RequireUser())
	d.Get("/", dash.Overview)
	d.Get("/products", dash.Products)
	d.Get("/products/new", dash.NewProduct)
	d.Post("/products/new", dash.CreateProduct)
	d.Get("/products/:id/edit", dash.EditProduct)
	d.Post("/products/:id/edit", dash.UpdateProduct)
	d.Post("/products/:id/delete", dash.DeleteProduct)
	d.Get("/downloads", dash.Downloads)
	d.Post("/downloads/:id", dash.Download)
	d.Get("/favorites", dash.FavoritesPage)
	d.Post("/favorites/:id/delete", dash.DeleteFavorite)
	d.Get("/notifications", dash.Notifications)
	d.Post("/notifications/read-all", dash.ReadAllNotifications)
	d.Post("/notifications/:id/read", dash.ReadNotification)
	d.Post("/notifications/:id/delete", dash.DeleteNotification)
	d.Get("/settings", dash.Settings)
	d.Post("/settings", dash.SaveSettings)

	// Admin
	a := app.Group("/admin", handlers.RequireAdmin())
	a.Get("/", adm.Dashboard)
	a.Get("/analytics", adm.AnalyticsPage)
	a.Get("/users", adm.Users)
	a.Post("/users/:id/roles", adm.AssignRole)
	a.Post("/users/:id/roles/:role/delete", adm.RevokeRole)
	a.Post("/users/:id/delete", adm.DeleteUser)
	a.Get("/products", adm.Products)
	a.Post("/products/:id/status", adm.ProductStatus)
	a.Post("/products/:id/feature", adm.FeatureProduct)
	a.Post("/products/:id/delete", adm.DeleteProduct)
	a.Get("/categories", adm.Categories)
	a.Post("/categories", adm.CreateCategory)
	a.Post("/categories/:id", adm.UpdateCategory)
	a.Post("/categories/:id/delete", adm.DeleteCategory)
	a.Get("/orders", adm.OrdersPage)
	a.Post("/orders/:id/status", adm.UpdateOrderStatus)
	a.Get("/settings", adm.SettingsPage)
	a.Post("/settings", adm.SaveSettings)

	a.Get("/sms", content.Sms)
	a.Post("/sms/send", content.SendSms)
	a.Post("/sms/templates", content.CreateTemplate)
	a.Post("/sms/templates/:id/delete", content.DeleteTemplate)
	a.Get("/newsletters", content.Newsletters)
	a.Post("/newsletters", content.CreateNewsletter)
	a.Post("/newsletters/subscribers/:id/delete", content.DeleteSubscriber)
	a.Post("/newsletters/:id/delete", content.DeleteNewsletter)
	a.Get("/blog", content.BlogPosts)
	a.Post("/blog", content.CreatePost)
	a.Post("/blog/:id", content.UpdatePost)
	a.Post("/blog/:id/toggle", content.TogglePost)
	a.Post("/blog/:id/delete", content.DeletePost)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(handlers.NotFound)

	return app
}
