package handlers

import (
	"context"
	"errors"

	"creativehub/internal/domain"
	applog "creativehub/internal/log"
	"creativehub/internal/repos"
	"creativehub/internal/services"
	"creativehub/internal/storage"
	"creativehub/internal/validate"
	"creativehub/internal/view"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler serves the signed-in user's area.
type DashboardHandler struct {
	Catalog   *services.CatalogService
	Seller    *services.SellerService
	Orders    *services.OrderService
	Favorites *services.FavoriteService
	Notify    *services.NotificationService
	Profiles  *services.ProfileService
	Analytics *services.AnalyticsService
	Assets    storage.Store
	Tracker   *view.Tracker
}

type overviewPage struct {
	Stats     repos.SellerOverview
	Purchases []domain.Purchase
}

func (h *DashboardHandler) Overview(c *fiber.Ctx) error {
	u := currentUser(c)
	page, err := load(c, h.Tracker, "dashboard", func(ctx context.Context) (overviewPage, error) {
		var p overviewPage
		var err error
		if p.Stats, err = h.Analytics.UserDashboard(ctx, u.ID); err != nil {
			return p, err
		}
		rows, err := h.Orders.Downloads(ctx, u.ID)
		if len(rows) > 5 {
			rows = rows[:5]
		}
		p.Purchases = rows
		return p, err
	})
	if errors.Is(err, view.ErrStale) {
		return stale(c)
	}
	data := fiber.Map{"Page": page}
	if err != nil {
		readFailed(c, "dashboard.read", err, data)
	}
	return render(c, "dashboard/index", data)
}

// ---------- Seller products ----------

func (h *DashboardHandler) Products(c *fiber.Ctx) error {
	u := currentUser(c)
	rows, err := load(c, h.Tracker, "dashboard.products", func(ctx context.Context) ([]domain.Product, error) {
		return h.Seller.Mine(ctx, u.ID)
	})
	if errors.Is(err, view.ErrStale) {
		return stale(c)
	}
	data := fiber.Map{"Products": rows}
	if err != nil {
		readFailed(c, "dashboard.products.read", err, data)
	}
	return render(c, "dashboard/products", data)
}

func (h *DashboardHandler) productForm(c *fiber.Ctx, form services.ProductInput, fe validate.Errors) error {
	data := fiber.Map{"Form": form, "Errors": fe, "Editing": form.ID != ""}
	cats, err := h.Catalog.ListCategories(c.UserContext())
	if err != nil {
		readFailed(c, "dashboard.product_form.read", err, data)
	}
	data["Categories"] = cats
	return render(c, "dashboard/product_form", data)
}

func (h *DashboardHandler) NewProduct(c *fiber.Ctx) error {
	return h.productForm(c, services.ProductInput{Action: domain.StatusDraft}, validate.Errors{})
}

func (h *DashboardHandler) EditProduct(c *fiber.Ctx) error {
	u := currentUser(c)
	p, err := h.Seller.Owned(c.UserContext(), u.ID, c.Params("id"))
	if errors.Is(err, services.ErrNotFound) {
		return notFound(c, "This product no longer exists")
	}
	if err != nil {
		return err
	}
	form := services.ProductInput{
		ID: p.ID, Title: p.Title, Slug: p.Slug, CategoryID: p.CategoryID,
		ShortDescription: p.ShortDescription, Description: p.Description,
		Price: p.Price.StringFixed(2), IsFree: p.IsFree, FileURL: p.FileURL,
		FileType: p.FileType, FileSize: p.FileSize, ThumbnailURL: p.ThumbnailURL, Action: p.Status,
	}
	return h.productForm(c, form, validate.Errors{})
}

func (h *DashboardHandler) readProductForm(c *fiber.Ctx, id string) services.ProductInput {
	return services.ProductInput{
		ID:               id,
		Title:            c.FormValue("title"),
		Slug:             c.FormValue("slug"),
		SlugEdited:       c.FormValue("slug_edited") == "1",
		CategoryID:       c.FormValue("category_id"),
		ShortDescription: c.FormValue("short_description"),
		Description:      c.FormValue("description"),
		Price:            c.FormValue("price"),
		IsFree:           checked(c, "is_free"),
		FileURL:          c.FormValue("file_url"),
		FileType:         c.FormValue("file_type"),
		FileSize:         c.FormValue("file_size"),
		Action:           c.FormValue("action"),
	}
}

func (h *DashboardHandler) saveProduct(c *fiber.Ctx, id string) error {
	u := currentUser(c)
	in := h.readProductForm(c, id)

	// The thumbnail is stored only once the rest of the form is valid.
	prev, err := h.Seller.Check(c.UserContext(), u.ID, in)
	if fe, ok := fieldErrors(err); ok {
		applog.Security(c, "dashboard.product.invalid", map[string]any{"fields": len(fe)})
		return h.productForm(c.Status(fiber.StatusUnprocessableEntity), in, fe)
	}
	if err != nil {
		return failed(c, "dashboard.product.save", err, "/dashboard/products")
	}

	url, msg, err := upload(c, h.Assets, "thumbnail", "thumbnails")
	if err != nil {
		return failed(c, "dashboard.product.upload", err, "/dashboard/products")
	}
	if msg != "" {
		return h.productForm(c.Status(fiber.StatusUnprocessableEntity), in, validate.Errors{"thumbnail": msg})
	}
	in.ThumbnailURL = url

	p, err := h.Seller.Save(c.UserContext(), u.ID, in)
	if err != nil {
		discard(c, h.Assets, url)
	}
	if fe, ok := fieldErrors(err); ok {
		applog.Security(c, "dashboard.product.invalid", map[string]any{"fields": len(fe)})
		return h.productForm(c.Status(fiber.StatusUnprocessableEntity), in, fe)
	}
	if err != nil {
		return failed(c, "dashboard.product.save", err, "/dashboard/products")
	}
	replaced(c, h.Assets, prev.ThumbnailURL, url)
	applog.Audit(c, "dashboard.product.save", map[string]any{"product_id": p.ID, "status": p.Status})
	if p.Status == domain.StatusPending {
		return done(c, "Submitted for review.", "/dashboard/products")
	}
	return done(c, "Draft saved.", "/dashboard/products")
}

func (h *DashboardHandler) CreateProduct(c *fiber.Ctx) error { return h.saveProduct(c, "") }

func (h *DashboardHandler) UpdateProduct(c *fiber.Ctx) error {
	return h.saveProduct(c, c.Params("id"))
}

func (h *DashboardHandler) DeleteProduct(c *fiber.Ctx) error {
	if ok, err := confirmed(c, "This product and its sales history will be deleted.", "/dashboard/products"); !ok {
		return err
	}
	u := currentUser(c)
	id := c.Params("id")
	p, err := h.Seller.Delete(c.UserContext(), u.ID, id)
	if err != nil {
		return failed(c, "dashboard.product.delete", err, "/dashboard/products")
	}
	discard(c, h.Assets, p.ThumbnailURL)
	applog.Audit(c, "dashboard.product.delete", map[string]any{"product_id": id})
	return done(c, "Product deleted.", "/dashboard/products")
}

// ---------- Downloads ----------

func (h *DashboardHandler) Downloads(c *fiber.Ctx) error {
	u := currentUser(c)
	rows, err := load(c, h.Tracker, "dashboard.downloads", func(ctx context.Context) ([]domain.Purchase, error) {
		return h.Orders.Downloads(ctx, u.ID)
	})
	if errors.Is(err, view.ErrStale) {
		return stale(c)
	}
	data := fiber.Map{"Purchases": rows}
	if err != nil {
		readFailed(c, "dashboard.downloads.read", err, data)
	}
	return render(c, "dashboard/downloads", data)
}

func (h *DashboardHandler) Download(c *fiber.Ctx) error {
	u := currentUser(c)
	id := c.Params("id")
	url, err := h.Orders.Download(c.UserContext(), u.ID, id)
	if errors.Is(err, services.ErrForbidden) {
		setToast(c, ToastInfo, "This order is still awaiting payment.")
		return c.Redirect("/dashboard/downloads")
	}
	if err != nil {
		return failed(c, "dashboard.download", err, "/dashboard/downloads")
	}
	applog.Audit(c, "dashboard.download", map[string]any{"purchase_id": id})
	if url == "" {
		return done(c, "Download recorded. The seller has not attached a file yet.", "/dashboard/downloads")
	}
	return c.Redirect(url)
}

// ---------- Favorites ----------

func (h *DashboardHandler) FavoritesPage(c *fiber.Ctx) error {
	u := currentUser(c)
	rows, err := load(c, h.Tracker, "dashboard.favorites", func(ctx context.Context) ([]domain.Favorite, error) {
		return h.Favorites.List(ctx, u.ID)
	})
	if errors.Is(err, view.ErrStale) {
		return stale(c)
	}
	data := fiber.Map{"Favorites": rows}
	if err != nil {
		readFailed(c, "dashboard.favorites.read", err, data)
	}
	return render(c, "dashboard/favorites", data)
}

func (h *DashboardHandler) DeleteFavorite(c *fiber.Ctx) error {
	if ok, err := confirmed(c, "Remove this product from your favorites?", "/dashboard/favorites"); !ok {
		return err
	}
	u := currentUser(c)
	if err := h.Favorites.Remove(c.UserContext(), u.ID, c.Params("id")); err != nil {
		return failed(c, "dashboard.favorite.delete", err, "/dashboard/favorites")
	}
	applog.Audit(c, "dashboard.favorite.delete", map[string]any{"favorite_id": c.Params("id")})
	return done(c, "Removed from favorites.", "/dashboard/favorites")
}

// ---------- Notifications ----------

func (h *DashboardHandler) Notifications(c *fiber.Ctx) error {
	u := currentUser(c)
	rows, err := load(c, h.Tracker, "dashboard.notifications", func(ctx context.Context) ([]domain.Notification, error) {
		return h.Notify.List(ctx, u.ID)
	})
	if errors.Is(err, view.ErrStale) {
		return stale(c)
	}
	data := fiber.Map{"Notifications": rows}
	if err != nil {
		readFailed(c, "dashboard.notifications.read", err, data)
	}
	return render(c, "dashboard/notifications", data)
}

func (h *DashboardHandler) ReadNotification(c *fiber.Ctx) error {
	u := currentUser(c)
	if err := h.Notify.MarkRead(c.UserContext(), u.ID, c.Params("id")); err != nil {
		return failed(c, "dashboard.notification.read", err, "/dashboard/notifications")
	}
	return c.Redirect("/dashboard/notifications")
}

func (h *DashboardHandler) ReadAllNotifications(c *fiber.Ctx) error {
	u := currentUser(c)
	if err := h.Notify.MarkAllRead(c.UserContext(), u.ID); err != nil {
		return failed(c, "dashboard.notification.read_all", err, "/dashboard/notifications")
	}
	return done(c, "All notifications marked as read.", "/dashboard/notifications")
}

func (h *DashboardHandler) DeleteNotification(c *fiber.Ctx) error {
	if ok, err := confirmed(c, "Delete this notification?", "/dashboard/notifications"); !ok {
		return err
	}
	u := currentUser(c)
	if err := h.Notify.Delete(c.UserContext(), u.ID, c.Params("id")); err != nil {
		return failed(c, "dashboard.notification.delete", err, "/dashboard/notifications")
	}
	return done(c, "Notification deleted.", "/dashboard/notifications")
}

// ---------- Profile settings ----------

func (h *DashboardHandler) Settings(c *fiber.Ctx) error {
	u := currentUser(c)
	p, err := load(c, h.Tracker, "dashboard.settings", func(ctx context.Context) (domain.Profile, error) {
		return h.Profiles.Get(ctx, u.ID)
	})
	if errors.Is(err, view.ErrStale) {
		return stale(c)
	}
	data := fiber.Map{"Profile": p}
	if err != nil {
		readFailed(c, "dashboard.settings.read", err, data)
	}
	return render(c, "dashboard/settings", data)
}

func (h *DashboardHandler) SaveSettings(c *fiber.Ctx) error {
	u := currentUser(c)
	in := services.ProfileInput{
		FullName: c.FormValue("full_name"),
		Bio:      c.FormValue("bio"),
		Website:  c.FormValue("website"),
		Location: c.FormValue("location"),
		Phone:    c.FormValue("phone"),
	}
	form := domain.Profile{UserID: u.ID, FullName: in.FullName, Bio: in.Bio, Website: in.Website, Location: in.Location, Phone: in.Phone}

	cur, err := h.Profiles.Check(c.UserContext(), u.ID, in)
	if fe, ok := fieldErrors(err); ok {
		return render(c.Status(fiber.StatusUnprocessableEntity), "dashboard/settings", fiber.Map{"Profile": form, "Errors": fe})
	}
	if err != nil {
		return failed(c, "dashboard.settings.save", err, "/dashboard/settings")
	}

	url, msg, err := upload(c, h.Assets, "avatar", "avatars")
	if err != nil {
		return failed(c, "dashboard.settings.upload", err, "/dashboard/settings")
	}
	if msg != "" {
		return render(c.Status(fiber.StatusUnprocessableEntity), "dashboard/settings", fiber.Map{"Profile": form, "Errors": validate.Errors{"avatar": msg}})
	}
	in.AvatarURL = url

	if _, err := h.Profiles.Update(c.UserContext(), u.ID, in); err != nil {
		discard(c, h.Assets, url)
		if fe, ok := fieldErrors(err); ok {
			return render(c.Status(fiber.StatusUnprocessableEntity), "dashboard/settings", fiber.Map{"Profile": form, "Errors": fe})
		}
		return failed(c, "dashboard.settings.save", err, "/dashboard/settings")
	}
	replaced(c, h.Assets, cur.AvatarURL, url)
	applog.Audit(c, "dashboard.settings.save", nil)
	return done(c, "Profile updated.", "/dashboard/settings")
}
