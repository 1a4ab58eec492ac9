package services

import (
	"context"
	"fmt"

	"creativehub/internal/dispatch"
	"creativehub/internal/domain"
	"creativehub/internal/repos"
	"creativehub/internal/validate"

	"github.com/google/uuid"
)

// CampaignService stores SMS and newsletter intents and hands them to the
// publisher. Delivery happens elsewhere.
type CampaignService struct {
	Repo *repos.CampaignRepo
	Pub  dispatch.Publisher
}

func (s *CampaignService) SmsMessages(ctx context.Context) ([]domain.SmsMessage, error) {
	return s.Repo.SmsMessages(ctx)
}

// SendSms queues a message as pending and publishes the intent. A publish
// failure marks the row failed.
func (s *CampaignService) SendSms(ctx context.Context, by, phone, message string) (domain.SmsMessage, error) {
	fe := validate.Errors{}
	phone, ok := validate.Phone(phone)
	fe.Check(ok, "recipient_phone", "Enter a phone number like +15550100")
	message, ok = validate.Text(message, 480, true)
	fe.Check(ok, "message", "Message is required (max 480 characters)")
	if err := invalid(fe); err != nil {
		return domain.SmsMessage{}, err
	}

	m := domain.SmsMessage{ID: uuid.NewString(), RecipientPhone: phone, Message: message, Status: domain.CampaignPending, CreatedBy: by}
	if err := s.Repo.QueueSms(ctx, m); err != nil {
		return m, err
	}
	if s.Pub == nil {
		return m, nil
	}
	err := s.Pub.Publish(ctx, dispatch.Intent{Kind: dispatch.KindSms, ID: m.ID, Target: phone, Content: message, CreatedBy: by})
	if err != nil {
		m.Status = domain.CampaignFailed
		if serr := s.Repo.SetSmsStatus(ctx, m.ID, m.Status); serr != nil {
			return m, serr
		}
		return m, fmt.Errorf("sms %s: %w", m.ID, err)
	}
	return m, nil
}

func (s *CampaignService) Templates(ctx context.Context) ([]domain.SmsTemplate, error) {
	return s.Repo.Templates(ctx)
}

func (s *CampaignService) CreateTemplate(ctx context.Context, by, name, content string) (domain.SmsTemplate, error) {
	fe := validate.Errors{}
	name, ok := validate.Text(name, 80, true)
	fe.Check(ok, "name", "Template name is required")
	content, ok = validate.Text(content, 480, true)
	fe.Check(ok, "content", "Template text is required (max 480 characters)")
	if err := invalid(fe); err != nil {
		return domain.SmsTemplate{}, err
	}
	t := domain.SmsTemplate{ID: uuid.NewString(), Name: name, Content: content, CreatedBy: by}
	return t, s.Repo.CreateTemplate(ctx, t)
}

func (s *CampaignService) DeleteTemplate(ctx context.Context, id string) error {
	return s.Repo.DeleteTemplate(ctx, id)
}

func (s *CampaignService) Newsletters(ctx context.Context) ([]domain.Newsletter, error) {
	return s.Repo.Newsletters(ctx)
}

// SaveNewsletter stores a newsletter. Action "sent" records the current active
// subscriber count and publishes the intent; "draft" only stores it. A send
// whose publish fails is kept as a draft so it can be sent again.
func (s *CampaignService) SaveNewsletter(ctx context.Context, by, subject, content, action string) (domain.Newsletter, error) {
	fe := validate.Errors{}
	subject, ok := validate.Text(subject, 150, true)
	fe.Check(ok, "subject", "Subject is required")
	content, ok = validate.Text(content, 20000, true)
	fe.Check(ok, "content", "Content is required")
	status, ok := validate.OneOf(action, domain.CampaignDraft, domain.CampaignSent)
	fe.Check(ok, "action", "Choose save draft or send")
	if err := invalid(fe); err != nil {
		return domain.Newsletter{}, err
	}

	n := domain.Newsletter{ID: uuid.NewString(), Subject: subject, Content: content, Status: status, CreatedBy: by}
	if err := s.Repo.CreateNewsletter(ctx, &n); err != nil {
		return n, err
	}
	if status != domain.CampaignSent || s.Pub == nil {
		return n, nil
	}
	err := s.Pub.Publish(ctx, dispatch.Intent{
		Kind: dispatch.KindNewsletter, ID: n.ID, Target: "subscribers",
		Subject: subject, Content: content, Recipients: n.RecipientCount, CreatedBy: by,
	})
	if err != nil {
		n.Status, n.RecipientCount, n.SentAt = domain.CampaignDraft, 0, ""
		if uerr := s.Repo.UnsendNewsletter(ctx, n.ID); uerr != nil {
			return n, uerr
		}
		return n, fmt.Errorf("newsletter %s: %w", n.ID, err)
	}
	return n, nil
}

func (s *CampaignService) DeleteNewsletter(ctx context.Context, id string) error {
	return s.Repo.DeleteNewsletter(ctx, id)
}

func (s *CampaignService) Subscribers(ctx context.Context) ([]domain.Subscriber, error) {
	return s.Repo.Subscribers(ctx)
}

// Subscribe adds (or reactivates) a newsletter subscriber.
func (s *CampaignService) Subscribe(ctx context.Context, email, name string) error {
	email, ok := validate.Email(email)
	if !ok {
		return invalid(validate.Errors{"email": "Enter a valid email address"})
	}
	name, _ = validate.Text(name, 80, false)
	return s.Repo.Subscribe(ctx, uuid.NewString(), email, name)
}

func (s *CampaignService) DeleteSubscriber(ctx context.Context, id string) error {
	return s.Repo.DeleteSubscriber(ctx, id)
}
