package validate

import "strings"

// Slugify lowercases s, collapses every run of characters outside [a-z0-9]
// into a single hyphen and trims hyphens from both ends.
func Slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingHyphen := false
	for _, r := range strings.ToLower(s) {
		if ('a' <= r && r <= 'z') || ('0' <= r && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

// ResolveSlug picks the slug to persist for a form submission. Existing rows and
// slugs the user typed themselves are kept; otherwise the slug follows the title.
func ResolveSlug(title, slug string, slugEdited, existing bool) string {
	slug = strings.TrimSpace(slug)
	if slug != "" && (existing || slugEdited) {
		return slug
	}
	return Slugify(title)
}
