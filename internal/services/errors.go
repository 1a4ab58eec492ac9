package services

import (
	"errors"
	"sort"
	"strings"

	"creativehub/internal/repos"
	"creativehub/internal/validate"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAlreadyRegistered  = errors.New("an account with this email already exists")
	ErrRegistrationClosed = errors.New("registration is currently closed")
	ErrNotFound           = repos.ErrNotFound
	ErrForbidden          = errors.New("not allowed")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidRole        = errors.New("invalid role")
	ErrAlreadyPurchased   = errors.New("product already purchased")
)

// ValidationError carries per-field messages; nothing was written.
type ValidationError struct {
	Fields validate.Errors
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "validation failed: " + strings.Join(keys, ", ")
}

func invalid(f validate.Errors) error {
	if f.Any() {
		return &ValidationError{Fields: f}
	}
	return nil
}

func isUnique(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
