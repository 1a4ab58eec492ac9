package handlers

import (
	"context"
	"errors"

	"creativehub/internal/domain"
	"creativehub/internal/services"
	"creativehub/internal/storage"
	"creativehub/internal/validate"
	"creativehub/internal/view"

	"github.com/gofiber/fiber/v2"
)

// ContentHandler serves the admin SMS, newsletter and blog pages.
type ContentHandler struct {
	Campaigns *services.CampaignService
	Blog      *services.BlogService
	Activity  *services.ActivityService
	Assets    storage.Store
	Tracker   *view.Tracker
}

// ---------- SMS ----------

type smsPage struct {
	Messages  []domain.SmsMessage
	Templates []domain.SmsTemplate
}

type smsForm struct {
	RecipientPhone string
	Message        string
	Name           string
	Content        string
}

func (h *ContentHandler) readSms(ctx context.Context) (smsPage, error) {
	var p smsPage
	var err error
	if p.Messages, err = h.Campaigns.SmsMessages(ctx); err != nil {
		return p, err
	}
	p.Templates, err = h.Campaigns.Templates(ctx)
	return p, err
}

// smsInvalid re-renders the SMS page; sendErrs and tplErrs belong to the two forms.
func (h *ContentHandler) smsInvalid(c *fiber.Ctx, form smsForm, sendErrs, tplErrs validate.Errors) error {
	data := fiber.Map{"Form": form, "Errors": sendErrs, "TemplateErrors": tplErrs}
	page, err := h.readSms(c.UserContext())
	if err != nil {
		readFailed(c, "admin.sms.read", err, data)
	}
	data["Page"] = page
	return render(c.Status(fiber.StatusUnprocessableEntity), "admin/sms", data)
}

// GET /admin/sms
func (h *ContentHandler) Sms(c *fiber.Ctx) error {
	page, err := load(c, h.Tracker, "admin.sms", h.readSms)
	if errors.Is(err, view.ErrStale) {
		return stale(c)
	}
	data := fiber.Map{"Page": page, "Form": smsForm{}, "TemplateErrors": validate.Errors{}}
	if err != nil {
		readFailed(c, "admin.sms.read", err, data)
	}
	return render(c, "admin/sms", data)
}

// POST /admin/sms/send
func (h *ContentHandler) SendSms(c *fiber.Ctx) error {
	form := smsForm{RecipientPhone: c.FormValue("recipient_phone"), Message: c.FormValue("message")}
	m, err := h.Campaigns.SendSms(c.UserContext(), currentUser(c).ID, form.RecipientPhone, form.Message)
	if fe, ok := fieldErrors(err); ok {
		return h.smsInvalid(c, form, fe, validate.Errors{})
	}
	if err != nil {
		return failed(c, "admin.sms.send", err, "/admin/sms")
	}
	audit(c, h.Activity, "admin.sms.send", m.RecipientPhone, map[string]any{"sms_id": m.ID})
	return done(c, "Message queued for delivery.", "/admin/sms")
}

// POST /admin/sms/templates
func (h *ContentHandler) CreateTemplate(c *fiber.Ctx) error {
	form := smsForm{Name: c.FormValue("name"), Content: c.FormValue("content")}
	t, err := h.Campaigns.CreateTemplate(c.UserContext(), currentUser(c).ID, form.Name, form.Content)
	if fe, ok := fieldErrors(err); ok {
		return h.smsInvalid(c, form, validate.Errors{}, fe)
	}
	if err != nil {
		return failed(c, "admin.sms.template.create", err, "/admin/sms")
	}
	audit(c, h.Activity, "admin.sms.template.create", t.Name, map[string]any{"template_id": t.ID})
	return done(c, "Template saved.", "/admin/sms")
}

// POST /admin/sms/templates/:id/delete
func (h *ContentHandler) DeleteTemplate(c *fiber.Ctx) error {
	if ok, err := confirmed(c, "Delete this SMS template?", "/admin/sms"); !ok {
		return err
	}
	id := c.Params("id")
	if err := h.Campaigns.DeleteTemplate(c.UserContext(), id); err != nil {
		return failed(c, "admin.sms.template.delete", err, "/admin/sms")
	}
	audit(c, h.Activity, "admin.sms.template.delete", id, map[string]any{"template_id": id})
	return done(c, "Template deleted.", "/admin/sms")
}

// ---------- Newsletters ----------

type newslettersPage struct {
	Newsletters []domain.Newsletter
	Subscribers []domain.Subscriber
}

type newsletterForm struct {
	Subject string
	Content string
}

func (h *ContentHandler) readNewsletters(ctx context.Context) (newslettersPage, error) {
	var p newslettersPage
	var err error
	if p.Newsletters, err = h.Campaigns.Newsletters(ctx); err != nil {
		return p, err
	}
	p.Subscribers, err = h.Campaigns.Subscribers(ctx)
	return p, err
}

// GET /admin/newsletters
func (h *ContentHandler) Newsletters(c *fiber.Ctx) error {
	page, err := load(c, h.Tracker, "admin.newsletters", h.readNewsletters)
	if errors.Is(err, view.ErrStale) {
		return stale(c)
	}
	data := fiber.Map{"Page": page, "Form": newsletterForm{}}
	if err != nil {
		readFailed(c, "admin.newsletters.read", err, data)
	}
	return render(c, "admin/newsletters", data)
}

// POST /admin/newsletters; action=draft saves, action=sent sends to active subscribers.
func (h *ContentHandler) CreateNewsletter(c *fiber.Ctx) error {
	form := newsletterForm{Subject: c.FormValue("subject"), Content: c.FormValue("content")}
	n, err := h.Campaigns.SaveNewsletter(c.UserContext(), currentUser(c).ID, form.Subject, form.Content, c.FormValue("action"))
	if fe, ok := fieldErrors(err); ok {
		data := fiber.Map{"Form": form, "Errors": fe}
		page, rerr := h.readNewsletters(c.UserContext())
		if rerr != nil {
			readFailed(c, "admin.newsletters.read", rerr, data)
		}
		data["Page"] = page
		return render(c.Status(fiber.StatusUnprocessableEntity), "admin/newsletters", data)
	}
	if err != nil {
		return failed(c, "admin.newsletters.save", err, "/admin/newsletters")
	}
	audit(c, h.Activity, "admin.newsletters.save", n.Subject, map[string]any{
		"newsletter_id": n.ID, "status": n.Status, "recipients": n.RecipientCount,
	})
	if n.Status == domain.CampaignSent {
		return done(c, "Newsletter sent.", "/admin/newsletters")
	}
	return done(c, "Draft saved.", "/admin/newsletters")
}

// POST /admin/newsletters/:id/delete
func (h *ContentHandler) DeleteNewsletter(c *fiber.Ctx) error {
	if ok, err := confirmed(c, "Delete this newsletter?", "/admin/newsletters"); !ok {
		return err
	}
	id := c.Params("id")
	if err := h.Campaigns.DeleteNewsletter(c.UserContext(), id); err != nil {
		return failed(c, "admin.newsletters.delete", err, "/admin/newsletters")
	}
	audit(c, h.Activity, "admin.newsletters.delete", id, map[string]any{"newsletter_id": id})
	return done(c, "Newsletter deleted.", "/admin/newsletters")
}

// POST /admin/newsletters/subscribers/:id/delete
func (h *ContentHandler) DeleteSubscriber(c *fiber.Ctx) error {
	if ok, err := confirmed(c, "Remove this subscriber from the list?", "/admin/newsletters"); !ok {
		return err
	}
	id := c.Params("id")
	if err := h.Campaigns.DeleteSubscriber(c.UserContext(), id); err != nil {
		return failed(c, "admin.subscribers.delete", err, "/admin/newsletters")
	}
	audit(c, h.Activity, "admin.subscribers.delete", id, map[string]any{"subscriber_id": id})
	return done(c, "Subscriber removed.", "/admin/newsletters")
}

// ---------- Blog ----------

func (h *ContentHandler) blogPage(c *fiber.Ctx, form services.BlogInput, fe validate.Errors) error {
	data := fiber.Map{"Form": form, "Errors": fe}
	rows, err := h.Blog.All(c.UserContext())
	if err != nil {
		readFailed(c, "admin.blog.read", err, data)
	}
	data["Posts"] = rows
	return render(c, "admin/blog", data)
}

// GET /admin/blog; ?edit=<id> loads that post into the form.
func (h *ContentHandler) BlogPosts(c *fiber.Ctx) error {
	rows, err := load(c, h.Tracker, "admin.blog", h.Blog.All)
	if errors.Is(err, view.ErrStale) {
		return stale(c)
	}
	data := fiber.Map{"Posts": rows, "Form": services.BlogInput{Action: domain.PostDraft}}
	if err != nil {
		readFailed(c, "admin.blog.read", err, data)
	}
	if id := c.Query("edit"); id != "" {
		if p, gerr := h.Blog.Get(c.UserContext(), id); gerr == nil {
			data["Form"] = services.BlogInput{
				ID: p.ID, Title: p.Title, Slug: p.Slug, Excerpt: p.Excerpt,
				Content: p.Content, CoverImage: p.CoverImage, Action: p.Status,
			}
		}
	}
	return render(c, "admin/blog", data)
}

func (h *ContentHandler) savePost(c *fiber.Ctx, id string) error {
	in := services.BlogInput{
		ID:         id,
		Title:      c.FormValue("title"),
		Slug:       c.FormValue("slug"),
		SlugEdited: c.FormValue("slug_edited") == "1",
		Excerpt:    c.FormValue("excerpt"),
		Content:    c.FormValue("content"),
		Action:     c.FormValue("action"),
	}
	prev, err := h.Blog.Check(c.UserContext(), in)
	if fe, ok := fieldErrors(err); ok {
		return h.blogPage(c.Status(fiber.StatusUnprocessableEntity), in, fe)
	}
	if err != nil {
		return failed(c, "admin.blog.save", err, "/admin/blog")
	}

	url, msg, err := upload(c, h.Assets, "cover_image", "blog")
	if err != nil {
		return failed(c, "admin.blog.upload", err, "/admin/blog")
	}
	if msg != "" {
		return h.blogPage(c.Status(fiber.StatusUnprocessableEntity), in, validate.Errors{"cover_image": msg})
	}
	in.CoverImage = url

	p, err := h.Blog.Save(c.UserContext(), currentUser(c).ID, in)
	if err != nil {
		discard(c, h.Assets, url)
	}
	if fe, ok := fieldErrors(err); ok {
		return h.blogPage(c.Status(fiber.StatusUnprocessableEntity), in, fe)
	}
	if err != nil {
		return failed(c, "admin.blog.save", err, "/admin/blog")
	}
	replaced(c, h.Assets, prev.CoverImage, url)
	audit(c, h.Activity, "admin.blog.save", p.Title, map[string]any{"post_id": p.ID, "status": p.Status})
	if p.Status == domain.PostPublished {
		return done(c, "Post published.", "/admin/blog")
	}
	return done(c, "Draft saved.", "/admin/blog")
}

// POST /admin/blog
func (h *ContentHandler) CreatePost(c *fiber.Ctx) error { return h.savePost(c, "") }

// POST /admin/blog/:id
func (h *ContentHandler) UpdatePost(c *fiber.Ctx) error { return h.savePost(c, c.Params("id")) }

// POST /admin/blog/:id/toggle
func (h *ContentHandler) TogglePost(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Blog.Toggle(c.UserContext(), id); err != nil {
		return failed(c, "admin.blog.toggle", err, "/admin/blog")
	}
	audit(c, h.Activity, "admin.blog.toggle", id, map[string]any{"post_id": id})
	return done(c, "Post updated.", "/admin/blog")
}

// POST /admin/blog/:id/delete
func (h *ContentHandler) DeletePost(c *fiber.Ctx) error {
	if ok, err := confirmed(c, "Delete this blog post?", "/admin/blog"); !ok {
		return err
	}
	id := c.Params("id")
	p, err := h.Blog.Delete(c.UserContext(), id)
	if err != nil {
		return failed(c, "admin.blog.delete", err, "/admin/blog")
	}
	discard(c, h.Assets, p.CoverImage)
	audit(c, h.Activity, "admin.blog.delete", id, map[string]any{"post_id": id})
	return done(c, "Post deleted.", "/admin/blog")
}
