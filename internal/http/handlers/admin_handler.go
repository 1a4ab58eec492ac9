package handlers

import (
	"context"
	"errors"

	"creativehub/internal/domain"
	applog "creativehub/internal/log"
	"creativehub/internal/services"
	"creativehub/internal/storage"
	"creativehub/internal/validate"
	"creativehub/internal/view"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler serves the admin area. Every mutation is audited and recorded
// in the activity log.
type AdminHandler struct {
	Analytics  *services.AnalyticsService
	Members    *services.UserAdminService
	Moderation *services.ModerationService
	Orders     *services.OrderService
	Settings   *services.SettingsService
	Activity   *services.ActivityService
	Assets     storage.Store
	Tracker    *view.Tracker
}

// audit writes the structured audit line and the activity_logs row.
func audit(c *fiber.Ctx, act *services.ActivityService, action, detail string, fields map[string]any) {
	applog.Audit(c, action, fields)
	if act == nil {
		return
	}
	uid := ""
	if u := currentUser(c); u != nil {
		uid = u.ID
	}
	if err := act.Record(c.UserContext(), uid, action, detail); err != nil {
		applog.Error(c, "activity.record", err, map[string]any{"action": action})
	}
}

// GET /admin
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	page, err := load(c, h.Tracker, "admin", h.Analytics.AdminDashboard)
	if errors.Is(err, view.ErrStale) {
		return stale(c)
	}
	data := fiber.Map{"Page": page}
	if err != nil {
		readFailed(c, "admin.dashboard.read", err, data)
	}
	return render(c, "admin/index", data)
}

// GET /admin/analytics
func (h *AdminHandler) AnalyticsPage(c *fiber.Ctx) error {
	rep, err := load(c, h.Tracker, "admin.analytics", h.Analytics.Report)
	if errors.Is(err, view.ErrStale) {
		return stale(c)
	}
	data := fiber.Map{"Report": rep}
	if err != nil {
		readFailed(c, "admin.analytics.read", err, data)
	}
	return render(c, "admin/analytics", data)
}

// ---------- Users ----------

// GET /admin/users
func (h *AdminHandler) Users(c *fiber.Ctx) error {
	q := c.Query("q")
	rows, err := load(c, h.Tracker, "admin.users", func(ctx context.Context) ([]domain.Member, error) {
		return h.Members.Members(ctx, q)
	})
	if errors.Is(err, view.ErrStale) {
		return stale(c)
	}
	data := fiber.Map{"Members": rows, "Q": q}
	if err != nil {
		readFailed(c, "admin.users.read", err, data)
	}
	return render(c, "admin/users", data)
}

// POST /admin/users/:id/roles
func (h *AdminHandler) AssignRole(c *fiber.Ctx) error {
	id, role := c.Params("id"), c.FormValue("role")
	if err := h.Members.AssignRole(c.UserContext(), id, role); err != nil {
		return failed(c, "admin.users.role.assign", err, "/admin/users")
	}
	audit(c, h.Activity, "admin.users.role.assign", role, map[string]any{"user_id": id, "role": role})
	return done(c, "Role assigned.", "/admin/users")
}

// POST /admin/users/:id/roles/:role/delete
func (h *AdminHandler) RevokeRole(c *fiber.Ctx) error {
	id, role := c.Params("id"), c.Params("role")
	if ok, err := confirmed(c, "Remove the "+role+" role from this user?", "/admin/users"); !ok {
		return err
	}
	if err := h.Members.RevokeRole(c.UserContext(), currentUser(c).ID, id, role); err != nil {
		return failed(c, "admin.users.role.revoke", err, "/admin/users")
	}
	audit(c, h.Activity, "admin.users.role.revoke", role, map[string]any{"user_id": id, "role": role})
	return done(c, "Role removed.", "/admin/users")
}

// POST /admin/users/:id/delete
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	if ok, err := confirmed(c, "This account, its products and its purchases will be deleted.", "/admin/users"); !ok {
		return err
	}
	id := c.Params("id")
	urls, err := h.Members.Delete(c.UserContext(), currentUser(c).ID, id)
	if err != nil {
		return failed(c, "admin.users.delete", err, "/admin/users")
	}
	for _, u := range urls {
		discard(c, h.Assets, u)
	}
	audit(c, h.Activity, "admin.users.delete", id, map[string]any{"user_id": id})
	return done(c, "User deleted.", "/admin/users")
}

// ---------- Products ----------

// GET /admin/products
func (h *AdminHandler) Products(c *fiber.Ctx) error {
	status, q := c.Query("status"), c.Query("q")
	rows, err := load(c, h.Tracker, "admin.products", func(ctx context.Context) ([]domain.Product, error) {
		return h.Moderation.Products(ctx, status, q)
	})
	if errors.Is(err, view.ErrStale) {
		return stale(c)
	}
	data := fiber.Map{"Products": rows, "Status": status, "Q": q}
	if err != nil {
		readFailed(c, "admin.products.read", err, data)
	}
	return render(c, "admin/products", data)
}

// POST /admin/products/:id/status
func (h *AdminHandler) ProductStatus(c *fiber.Ctx) error {
	id, status := c.Params("id"), c.FormValue("status")
	if err := h.Moderation.SetStatus(c.UserContext(), id, status); err != nil {
		return failed(c, "admin.products.status", err, "/admin/products")
	}
	audit(c, h.Activity, "admin.products.status", status, map[string]any{"product_id": id, "status": status})
	return done(c, "Product marked "+status+".", "/admin/products")
}

// POST /admin/products/:id/feature
func (h *AdminHandler) FeatureProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Moderation.ToggleFeatured(c.UserContext(), id); err != nil {
		return failed(c, "admin.products.feature", err, "/admin/products")
	}
	audit(c, h.Activity, "admin.products.feature", id, map[string]any{"product_id": id})
	return done(c, "Featured flag updated.", "/admin/products")
}

// POST /admin/products/:id/delete
func (h *AdminHandler) DeleteProduct(c *fiber.Ctx) error {
	if ok, err := confirmed(c, "This product will be removed from the marketplace for good.", "/admin/products"); !ok {
		return err
	}
	id := c.Params("id")
	p, err := h.Moderation.DeleteProduct(c.UserContext(), id)
	if err != nil {
		return failed(c, "admin.products.delete", err, "/admin/products")
	}
	discard(c, h.Assets, p.ThumbnailURL)
	audit(c, h.Activity, "admin.products.delete", id, map[string]any{"product_id": id})
	return done(c, "Product deleted.", "/admin/products")
}

// ---------- Categories ----------

func (h *AdminHandler) categoriesPage(c *fiber.Ctx, form services.CategoryInput, fe validate.Errors) error {
	data := fiber.Map{"Form": form, "Errors": fe}
	rows, err := h.Moderation.Categories(c.UserContext())
	if err != nil {
		readFailed(c, "admin.categories.read", err, data)
	}
	data["Categories"] = rows
	return render(c, "admin/categories", data)
}

// GET /admin/categories; ?edit=<id> loads that category into the form.
func (h *AdminHandler) Categories(c *fiber.Ctx) error {
	rows, err := load(c, h.Tracker, "admin.categories", h.Moderation.Categories)
	if errors.Is(err, view.ErrStale) {
		return stale(c)
	}
	data := fiber.Map{"Categories": rows, "Form": services.CategoryInput{}}
	if err != nil {
		readFailed(c, "admin.categories.read", err, data)
	}
	if id := c.Query("edit"); id != "" {
		for _, cat := range rows {
			if cat.ID == id {
				data["Form"] = services.CategoryInput{ID: cat.ID, Name: cat.Name, Slug: cat.Slug, Description: cat.Description, Icon: cat.Icon}
			}
		}
	}
	return render(c, "admin/categories", data)
}

func (h *AdminHandler) saveCategory(c *fiber.Ctx, id string) error {
	in := services.CategoryInput{
		ID:          id,
		Name:        c.FormValue("name"),
		Slug:        c.FormValue("slug"),
		SlugEdited:  c.FormValue("slug_edited") == "1",
		Description: c.FormValue("description"),
		Icon:        c.FormValue("icon"),
	}
	cat, err := h.Moderation.SaveCategory(c.UserContext(), in)
	if fe, ok := fieldErrors(err); ok {
		return h.categoriesPage(c.Status(fiber.StatusUnprocessableEntity), in, fe)
	}
	if err != nil {
		return failed(c, "admin.categories.save", err, "/admin/categories")
	}
	audit(c, h.Activity, "admin.categories.save", cat.Name, map[string]any{"category_id": cat.ID})
	return done(c, "Category saved.", "/admin/categories")
}

// POST /admin/categories
func (h *AdminHandler) CreateCategory(c *fiber.Ctx) error { return h.saveCategory(c, "") }

// POST /admin/categories/:id
func (h *AdminHandler) UpdateCategory(c *fiber.Ctx) error { return h.saveCategory(c, c.Params("id")) }

// POST /admin/categories/:id/delete
func (h *AdminHandler) DeleteCategory(c *fiber.Ctx) error {
	if ok, err := confirmed(c, "Products in this category will become uncategorized.", "/admin/categories"); !ok {
		return err
	}
	id := c.Params("id")
	if err := h.Moderation.DeleteCategory(c.UserContext(), id); err != nil {
		return failed(c, "admin.categories.delete", err, "/admin/categories")
	}
	audit(c, h.Activity, "admin.categories.delete", id, map[string]any{"category_id": id})
	return done(c, "Category deleted.", "/admin/categories")
}

// ---------- Orders ----------

// GET /admin/orders
func (h *AdminHandler) OrdersPage(c *fiber.Ctx) error {
	status := c.Query("status")
	rows, err := load(c, h.Tracker, "admin.orders", func(ctx context.Context) ([]domain.Purchase, error) {
		return h.Orders.Orders(ctx, status)
	})
	if errors.Is(err, view.ErrStale) {
		return stale(c)
	}
	data := fiber.Map{"Orders": rows, "Status": status}
	if err != nil {
		readFailed(c, "admin.orders.read", err, data)
	}
	return render(c, "admin/orders", data)
}

// POST /admin/orders/:id/status
func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	id, status := c.Params("id"), c.FormValue("status")
	if err := h.Orders.SetStatus(c.UserContext(), id, status); err != nil {
		return failed(c, "admin.orders.update", err, "/admin/orders")
	}
	audit(c, h.Activity, "admin.orders.update", status, map[string]any{"order_id": id, "status": status})
	return done(c, "Order marked "+status+".", "/admin/orders")
}

// ---------- Settings ----------

func settingsForm(st services.Settings) services.SettingsInput {
	return services.SettingsInput{
		SiteName:           st.SiteName,
		SiteDescription:    st.SiteDescription,
		ContactEmail:       st.ContactEmail,
		EnableRegistration: st.EnableRegistration,
		EnableReviews:      st.EnableReviews,
		MaintenanceMode:    st.MaintenanceMode,
		CommissionRate:     st.CommissionRate.String(),
	}
}

// GET /admin/settings
func (h *AdminHandler) SettingsPage(c *fiber.Ctx) error {
	st, err := load(c, h.Tracker, "admin.settings", h.Settings.Load)
	if errors.Is(err, view.ErrStale) {
		return stale(c)
	}
	data := fiber.Map{"Form": settingsForm(st)}
	if err != nil {
		readFailed(c, "admin.settings.read", err, data)
	}
	return render(c, "admin/settings", data)
}

// POST /admin/settings
func (h *AdminHandler) SaveSettings(c *fiber.Ctx) error {
	in := services.SettingsInput{
		SiteName:           c.FormValue("site_name"),
		SiteDescription:    c.FormValue("site_description"),
		ContactEmail:       c.FormValue("contact_email"),
		EnableRegistration: checked(c, "enable_registration"),
		EnableReviews:      checked(c, "enable_reviews"),
		MaintenanceMode:    checked(c, "maintenance_mode"),
		CommissionRate:     c.FormValue("commission_rate"),
	}
	st, err := h.Settings.Save(c.UserContext(), in)
	if fe, ok := fieldErrors(err); ok {
		return render(c.Status(fiber.StatusUnprocessableEntity), "admin/settings", fiber.Map{"Form": in, "Errors": fe})
	}
	if err != nil {
		return failed(c, "admin.settings.save", err, "/admin/settings")
	}
	audit(c, h.Activity, "admin.settings.save", "", map[string]any{
		"registration": st.EnableRegistration, "maintenance": st.MaintenanceMode,
	})
	return done(c, "Settings saved.", "/admin/settings")
}
