package validate

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reSlug  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	rePhone = regexp.MustCompile(`^\+?[0-9 ()-]{7,20}$`)
	reURL   = regexp.MustCompile(`^https?://[^\s]+$`)
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 254 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Q normalizes a search keyword: control characters dropped, whitespace
// collapsed, at most 50 runes. Only a blank keyword is rejected.
func Q(s string) (string, bool) {
	s = strings.Join(strings.Fields(strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)), " ")
	if r := []rune(s); len(r) > 50 {
		s = strings.TrimSpace(string(r[:50]))
	}
	return s, s != ""
}

// Slug reports whether s is already in canonical slug form.
func Slug(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && len(s) <= 120 && reSlug.MatchString(s)
}

// Name validates a displayable name: at least 2 characters, at most 80.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || len(s) > 80 {
		return "", false
	}
	return s, true
}

// Password enforces the registration length window.
func Password(s string) bool {
	l := len(s)
	return l >= 6 && l <= 72 // bcrypt ignores bytes past 72
}

func Phone(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, rePhone.MatchString(s)
}

// URL accepts an empty string or an absolute http(s) URL.
func URL(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s == "" || reURL.MatchString(s)
}

// Price parses a non-negative amount with at most two decimals. Blank means zero.
func Price(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, true
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() || d.Exponent() < -2 {
		return decimal.Zero, false
	}
	return d, true
}

// OneOf trims s and reports whether it is one of allowed.
func OneOf(s string, allowed ...string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, a := range allowed {
		if s == a {
			return s, true
		}
	}
	return s, false
}

// Text trims s and enforces a max length; required rejects blank.
func Text(s string, max int, required bool) (string, bool) {
	s = strings.TrimSpace(s)
	if required && s == "" {
		return s, false
	}
	return s, len(s) <= max
}
