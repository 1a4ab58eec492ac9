package handlers

import (
	"errors"

	applog "creativehub/internal/log"
	"creativehub/internal/services"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	Catalog   *services.CatalogService
	Orders    *services.OrderService
	Favorites *services.FavoriteService
}

func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	ctx := c.UserContext()
	u := currentUser(c)
	p, err := h.Catalog.Product(ctx, c.Params("slug"), u)
	if errors.Is(err, services.ErrNotFound) {
		return notFound(c, "This item is no longer available")
	}
	if err != nil {
		return err
	}
	data := fiber.Map{"Product": p}
	related, err := h.Catalog.Related(ctx, p, 4)
	if err != nil {
		readFailed(c, "product.related.read", err, data)
	}
	data["Related"] = related
	if u != nil {
		favs, err := h.Favorites.IDs(ctx, u.ID)
		if err != nil {
			readFailed(c, "product.favorites.read", err, data)
		}
		data["Favorite"] = favs[p.ID]
	}
	return render(c, "product", data)
}

func (h *ProductHandler) Purchase(c *fiber.Ctx) error {
	u := currentUser(c)
	id := c.Params("id")
	back := safeNext(c.FormValue("next"), "/explore")
	pu, err := h.Orders.Purchase(c.UserContext(), u.ID, id)
	switch {
	case errors.Is(err, services.ErrAlreadyPurchased):
		setToast(c, ToastInfo, "You already own this product.")
		return c.Redirect("/dashboard/downloads")
	case err != nil:
		return failed(c, "purchase.create", err, back)
	}
	applog.Audit(c, "purchase.create", map[string]any{"product_id": id, "status": pu.Status, "amount": pu.Amount.String()})
	if pu.PaymentReference != "" {
		return done(c, "Order placed. Payment reference "+pu.PaymentReference+".", "/dashboard/downloads")
	}
	return done(c, "Added to your downloads.", "/dashboard/downloads")
}

func (h *ProductHandler) Favorite(c *fiber.Ctx) error {
	u := currentUser(c)
	id := c.Params("id")
	back := safeNext(c.FormValue("next"), "/dashboard/favorites")
	on, err := h.Favorites.Toggle(c.UserContext(), u.ID, id)
	if err != nil {
		return failed(c, "favorite.toggle", err, back)
	}
	applog.Audit(c, "favorite.toggle", map[string]any{"product_id": id, "on": on})
	if on {
		return done(c, "Saved to favorites.", back)
	}
	return done(c, "Removed from favorites.", back)
}

type apiProduct struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Slug      string  `json:"slug"`
	Summary   string  `json:"short_description"`
	Price     string  `json:"price"`
	IsFree    bool    `json:"is_free"`
	Thumbnail string  `json:"thumbnail_url"`
	Category  string  `json:"category"`
	Seller    string  `json:"seller"`
	Rating    float64 `json:"rating"`
	Downloads int     `json:"download_count"`
}

// API lists published products as JSON for the storefront's live search.
func (h *ProductHandler) API(c *fiber.Ctx) error {
	q := services.Query{
		Q:        c.Query("q"),
		Category: c.Query("category"),
		Sort:     c.Query("sort"),
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("limit", 24),
	}
	if q.PageSize > 100 {
		q.PageSize = 100
	}
	rows, err := h.Catalog.Explore(c.UserContext(), q)
	if err != nil {
		applog.Error(c, "api.products", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load products"})
	}
	items := make([]apiProduct, 0, len(rows))
	for _, p := range rows {
		items = append(items, apiProduct{
			ID: p.ID, Title: p.Title, Slug: p.Slug, Summary: p.ShortDescription,
			Price: p.Price.StringFixed(2), IsFree: p.IsFree, Thumbnail: p.ThumbnailURL,
			Category: p.CategoryName, Seller: p.SellerName, Rating: p.Rating, Downloads: p.DownloadCount,
		})
	}
	return c.JSON(fiber.Map{"items": items, "count": len(items)})
}
