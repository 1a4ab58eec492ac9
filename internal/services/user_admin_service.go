package services

import (
	"context"
	"strings"

	"creativehub/internal/domain"
	"creativehub/internal/repos"
	"creativehub/internal/validate"
)

// UserAdminService backs the admin users page.
type UserAdminService struct {
	Users *repos.UserRepo
}

// Members lists users with their profiles and roles filled in.
func (s *UserAdminService) Members(ctx context.Context, q string) ([]domain.Member, error) {
	kw := ""
	if v, ok := validate.Q(q); ok {
		kw = strings.ToLower(v)
	}
	ms, err := s.Users.Members(ctx, kw)
	if err != nil {
		return nil, err
	}
	roles, err := s.Users.RoleMap(ctx)
	if err != nil {
		return nil, err
	}
	for i := range ms {
		ms[i].Roles = roles[ms[i].ID]
	}
	return ms, nil
}

func (s *UserAdminService) AssignRole(ctx context.Context, userID, role string) error {
	role, ok := validate.OneOf(role, domain.Roles...)
	if !ok {
		return ErrInvalidRole
	}
	if _, err := s.Users.ByID(ctx, userID); err != nil {
		return err
	}
	return s.Users.AssignRole(ctx, userID, role)
}

// RevokeRole removes a role. Admins cannot drop their own admin role.
func (s *UserAdminService) RevokeRole(ctx context.Context, actorID, userID, role string) error {
	role, ok := validate.OneOf(role, domain.Roles...)
	if !ok {
		return ErrInvalidRole
	}
	if actorID == userID && role == domain.RoleAdmin {
		return ErrForbidden
	}
	return s.Users.RevokeRole(ctx, userID, role)
}

// Delete removes an account and returns the upload URLs it owned. Admins cannot
// delete themselves.
func (s *UserAdminService) Delete(ctx context.Context, actorID, userID string) ([]string, error) {
	if actorID == userID {
		return nil, ErrForbidden
	}
	urls, err := s.Users.Uploads(ctx, userID)
	if err != nil {
		return nil, err
	}
	return urls, s.Users.Delete(ctx, userID)
}
