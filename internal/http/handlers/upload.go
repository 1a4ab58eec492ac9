package handlers

import (
	"errors"

	applog "creativehub/internal/log"
	"creativehub/internal/storage"

	"github.com/gofiber/fiber/v2"
)

// upload stores the optional image in form field and returns its URL; no file
// means an empty URL. A rejected file is reported as a field message.
func upload(c *fiber.Ctx, assets storage.Store, field, folder string) (url, fieldMsg string, err error) {
	fh, ferr := c.FormFile(field)
	if ferr != nil || fh == nil || fh.Size == 0 {
		return "", "", nil
	}
	f, err := fh.Open()
	if err != nil {
		return "", "", err
	}
	defer f.Close()
	a, err := assets.Save(c.UserContext(), folder, fh.Filename, f)
	if errors.Is(err, storage.ErrUnsupportedType) {
		applog.Security(c, "upload.rejected", map[string]any{"field": field, "name": fh.Filename})
		return "", "Upload a PNG, JPG, GIF or WebP image", nil
	}
	if err != nil {
		return "", "", err
	}
	applog.Audit(c, "upload.stored", map[string]any{"field": field, "public_id": a.PublicID})
	return a.URL, "", nil
}

// discard deletes a stored upload that is no longer referenced. Failure leaves
// an orphan behind, which is logged rather than surfaced to the user.
func discard(c *fiber.Ctx, assets storage.Store, url string) {
	if url == "" {
		return
	}
	if err := assets.Delete(c.UserContext(), url); err != nil {
		applog.Error(c, "upload.discard", err, map[string]any{"url": url})
		return
	}
	applog.Audit(c, "upload.discarded", map[string]any{"url": url})
}

// replaced drops old once next has taken its place.
func replaced(c *fiber.Ctx, assets storage.Store, old, next string) {
	if next != "" && old != next {
		discard(c, assets, old)
	}
}
