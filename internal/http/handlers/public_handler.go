package handlers

import (
	"context"
	"errors"

	"creativehub/internal/domain"
	applog "creativehub/internal/log"
	"creativehub/internal/services"
	"creativehub/internal/view"

	"github.com/gofiber/fiber/v2"
)

// PublicHandler serves the storefront pages.
type PublicHandler struct {
	Catalog   *services.CatalogService
	Favorites *services.FavoriteService
	Blog      *services.BlogService
	Campaigns *services.CampaignService
	Notify    *services.NotificationService
	Tracker   *view.Tracker
}

type homePage struct {
	Featured   []domain.Product
	Latest     []domain.Product
	Categories []domain.Category
	Posts      []domain.BlogPost
}

func (h *PublicHandler) Home(c *fiber.Ctx) error {
	page, err := load(c, h.Tracker, "home", func(ctx context.Context) (homePage, error) {
		var p homePage
		var err error
		if p.Featured, err = h.Catalog.Featured(ctx, 6); err != nil {
			return p, err
		}
		if p.Latest, err = h.Catalog.Latest(ctx, 8); err != nil {
			return p, err
		}
		if p.Categories, err = h.Catalog.ListCategories(ctx); err != nil {
			return p, err
		}
		posts, err := h.Blog.Published(ctx)
		if len(posts) > 3 {
			posts = posts[:3]
		}
		p.Posts = posts
		return p, err
	})
	if errors.Is(err, view.ErrStale) {
		return stale(c)
	}
	data := fiber.Map{"Page": page}
	if err != nil {
		readFailed(c, "home.read", err, data)
	}
	return render(c, "home", data)
}

type explorePage struct {
	Products   []domain.Product
	Categories []domain.Category
	Total      int
	Favorites  map[string]bool
}

func (h *PublicHandler) Explore(c *fiber.Ctx) error {
	q := services.Query{
		Q:        c.Query("q"),
		Category: c.Query("category"),
		Sort:     c.Query("sort"),
		Page:     c.QueryInt("page", 1),
	}
	uid := ""
	if u := currentUser(c); u != nil {
		uid = u.ID
	}
	page, err := load(c, h.Tracker, "explore", func(ctx context.Context) (explorePage, error) {
		var p explorePage
		var err error
		if p.Products, err = h.Catalog.Explore(ctx, q); err != nil {
			return p, err
		}
		if p.Total, err = h.Catalog.Count(ctx, q); err != nil {
			return p, err
		}
		if p.Categories, err = h.Catalog.ListCategories(ctx); err != nil {
			return p, err
		}
		p.Favorites, err = h.Favorites.IDs(ctx, uid)
		return p, err
	})
	if errors.Is(err, view.ErrStale) {
		return stale(c)
	}
	data := fiber.Map{"Page": page, "Query": q}
	if err != nil {
		readFailed(c, "explore.read", err, data)
	}
	return render(c, "explore", data)
}

func (h *PublicHandler) Categories(c *fiber.Ctx) error {
	cats, err := load(c, h.Tracker, "categories", h.Catalog.ListCategories)
	if errors.Is(err, view.ErrStale) {
		return stale(c)
	}
	data := fiber.Map{"Categories": cats}
	if err != nil {
		readFailed(c, "categories.read", err, data)
	}
	return render(c, "categories", data)
}

func (h *PublicHandler) Courses(c *fiber.Ctx) error {
	rows, err := load(c, h.Tracker, "courses", h.Catalog.Courses)
	if errors.Is(err, view.ErrStale) {
		return stale(c)
	}
	data := fiber.Map{"Products": rows}
	if err != nil {
		readFailed(c, "courses.read", err, data)
	}
	return render(c, "courses", data)
}

func (h *PublicHandler) Pricing(c *fiber.Ctx) error { return render(c, "pricing", nil) }

func (h *PublicHandler) About(c *fiber.Ctx) error { return render(c, "about", nil) }

func (h *PublicHandler) ContactForm(c *fiber.Ctx) error {
	form := services.ContactInput{}
	if u := currentUser(c); u != nil {
		form.Name, form.Email = u.Name, u.Email
	}
	return render(c, "contact", fiber.Map{"Form": form})
}

func (h *PublicHandler) Contact(c *fiber.Ctx) error {
	in := services.ContactInput{
		Name:    c.FormValue("name"),
		Email:   c.FormValue("email"),
		Subject: c.FormValue("subject"),
		Message: c.FormValue("message"),
	}
	err := h.Notify.Contact(c.UserContext(), in)
	if fe, ok := fieldErrors(err); ok {
		return render(c.Status(fiber.StatusUnprocessableEntity), "contact", fiber.Map{"Form": in, "Errors": fe})
	}
	if err != nil {
		return failed(c, "contact.send", err, "/contact")
	}
	applog.Audit(c, "contact.sent", map[string]any{"email": in.Email})
	return done(c, "Thanks! We'll get back to you soon.", "/contact")
}

func (h *PublicHandler) BlogIndex(c *fiber.Ctx) error {
	posts, err := load(c, h.Tracker, "blog", h.Blog.Published)
	if errors.Is(err, view.ErrStale) {
		return stale(c)
	}
	data := fiber.Map{"Posts": posts}
	if err != nil {
		readFailed(c, "blog.read", err, data)
	}
	return render(c, "blog", data)
}

func (h *PublicHandler) BlogPost(c *fiber.Ctx) error {
	post, err := h.Blog.Post(c.UserContext(), c.Params("slug"))
	if errors.Is(err, services.ErrNotFound) {
		return notFound(c, "This article is no longer available")
	}
	if err != nil {
		return err
	}
	return render(c, "blog_post", fiber.Map{"Post": post})
}

func (h *PublicHandler) Subscribe(c *fiber.Ctx) error {
	back := safeNext(c.FormValue("next"), "/")
	err := h.Campaigns.Subscribe(c.UserContext(), c.FormValue("email"), c.FormValue("name"))
	if fe, ok := fieldErrors(err); ok {
		setToast(c, ToastError, fe["email"])
		return c.Redirect(back)
	}
	if err != nil {
		return failed(c, "newsletter.subscribe", err, back)
	}
	applog.Audit(c, "newsletter.subscribe", nil)
	return done(c, "You're subscribed. Watch your inbox!", back)
}
