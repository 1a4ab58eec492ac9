package services

import (
	"context"
	"errors"
	"strings"

	"creativehub/internal/domain"
	"creativehub/internal/repos"
	"creativehub/internal/validate"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	Users    *repos.UserRepo
	Settings *SettingsService
}

func (s *AuthService) Login(ctx context.Context, sid, email, password string) (*domain.User, error) {
	u, err := s.Users.ByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if u.Roles, err = s.Users.Roles(ctx, u.ID); err != nil {
		return nil, err
	}
	if err := s.Users.BindSession(ctx, sid, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

// Register creates an account with the "user" role and binds it to sid.
func (s *AuthService) Register(ctx context.Context, sid, name, email, password string) (*domain.User, error) {
	fe := validate.Errors{}
	name, ok := validate.Name(name)
	fe.Check(ok, "name", "Name must be at least 2 characters")
	email, ok = validate.Email(email)
	fe.Check(ok, "email", "Enter a valid email address")
	fe.Check(validate.Password(password), "password", "Password must be at least 6 characters")
	if err := invalid(fe); err != nil {
		return nil, err
	}

	if s.Settings != nil {
		st, err := s.Settings.Load(ctx)
		if err != nil {
			return nil, err
		}
		if !st.EnableRegistration {
			return nil, ErrRegistrationClosed
		}
	}

	if _, err := s.Users.ByEmail(ctx, email); err == nil {
		return nil, ErrAlreadyRegistered
	} else if !errors.Is(err, repos.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &domain.User{ID: uuid.NewString(), Email: strings.ToLower(email), Name: name, Hash: string(hash)}
	if err := s.Users.Create(ctx, u, domain.RoleUser); err != nil {
		if isUnique(err) {
			return nil, ErrAlreadyRegistered
		}
		return nil, err
	}
	if err := s.Users.BindSession(ctx, sid, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) Logout(ctx context.Context, sid string) error {
	return s.Users.UnbindSession(ctx, sid)
}

// CurrentUser resolves the session's user with its roles: one role lookup per call.
func (s *AuthService) CurrentUser(ctx context.Context, sid string) (*domain.User, error) {
	u, err := s.Users.SessionUser(ctx, sid)
	if err != nil {
		return nil, err
	}
	if u.Roles, err = s.Users.Roles(ctx, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}
