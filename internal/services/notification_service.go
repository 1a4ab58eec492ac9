package services

import (
	"context"

	"creativehub/internal/domain"
	"creativehub/internal/repos"
	"creativehub/internal/validate"

	"github.com/google/uuid"
)

type NotificationService struct {
	Repo  *repos.NotificationRepo
	Users *repos.UserRepo
}

func (s *NotificationService) Notify(ctx context.Context, userID, title, message, kind, link string) error {
	if _, ok := validate.OneOf(kind, domain.NotifyInfo, domain.NotifySuccess, domain.NotifyWarning, domain.NotifyError); !ok {
		kind = domain.NotifyInfo
	}
	return s.Repo.Create(ctx, domain.Notification{
		ID: uuid.NewString(), UserID: userID, Title: title, Message: message, Type: kind, Link: link,
	})
}

// NotifyAdmins sends the same notification to every admin.
func (s *NotificationService) NotifyAdmins(ctx context.Context, title, message, kind, link string) error {
	ids, err := s.Users.IDsWithRole(ctx, domain.RoleAdmin)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := s.Notify(ctx, id, title, message, kind, link); err != nil {
			return err
		}
	}
	return nil
}

func (s *NotificationService) List(ctx context.Context, userID string) ([]domain.Notification, error) {
	return s.Repo.List(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	return s.Repo.MarkRead(ctx, id, userID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.Repo.MarkAllRead(ctx, userID)
}

func (s *NotificationService) Delete(ctx context.Context, userID, id string) error {
	return s.Repo.Delete(ctx, id, userID)
}

type ContactInput struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// Contact validates the public contact form and files it as an admin notification.
func (s *NotificationService) Contact(ctx context.Context, in ContactInput) error {
	fe := validate.Errors{}
	name, ok := validate.Name(in.Name)
	fe.Check(ok, "name", "Name must be at least 2 characters")
	email, ok := validate.Email(in.Email)
	fe.Check(ok, "email", "Enter a valid email address")
	subject, ok := validate.Text(in.Subject, 120, false)
	fe.Check(ok, "subject", "Subject is too long")
	msg, ok := validate.Text(in.Message, 2000, true)
	fe.Check(ok, "message", "Message is required")
	if err := invalid(fe); err != nil {
		return err
	}
	if subject == "" {
		subject = "New contact message"
	}
	return s.NotifyAdmins(ctx, subject, name+" <"+email+">: "+msg, domain.NotifyInfo, "")
}
