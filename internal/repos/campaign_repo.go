package repos

import (
	"context"
	"strings"

	"creativehub/internal/domain"

	"github.com/jmoiron/sqlx"
)

// CampaignRepo stores SMS and newsletter intents, SMS templates and subscribers.
type CampaignRepo struct{ db *sqlx.DB }

func NewCampaignRepo(db *sqlx.DB) *CampaignRepo { return &CampaignRepo{db: db} }

// ---------- SMS ----------

func (r *CampaignRepo) QueueSms(ctx context.Context, m domain.SmsMessage) error {
	_, err := r.db.ExecContext(ctx, `
	  INSERT INTO sms_messages(id,recipient_phone,message,status,created_by) VALUES(?,?,?,?,?)`,
		m.ID, m.RecipientPhone, m.Message, m.Status, nullable(m.CreatedBy))
	return err
}

func (r *CampaignRepo) SmsMessages(ctx context.Context) ([]domain.SmsMessage, error) {
	out := []domain.SmsMessage{}
	err := r.db.SelectContext(ctx, &out, `
	  SELECT id, recipient_phone, message, status, COALESCE(created_by,'') AS created_by,
	         COALESCE(created_at,'') AS created_at
	  FROM sms_messages ORDER BY created_at DESC, id`)
	return out, err
}

func (r *CampaignRepo) SetSmsStatus(ctx context.Context, id, status string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE sms_messages SET status=? WHERE id=?`, status, id)
	return err
}

func (r *CampaignRepo) Templates(ctx context.Context) ([]domain.SmsTemplate, error) {
	out := []domain.SmsTemplate{}
	err := r.db.SelectContext(ctx, &out, `
	  SELECT id, name, content, COALESCE(created_by,'') AS created_by, COALESCE(created_at,'') AS created_at
	  FROM sms_templates ORDER BY name`)
	return out, err
}

func (r *CampaignRepo) CreateTemplate(ctx context.Context, t domain.SmsTemplate) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO sms_templates(id,name,content,created_by) VALUES(?,?,?,?)`,
		t.ID, t.Name, t.Content, nullable(t.CreatedBy))
	return err
}

func (r *CampaignRepo) DeleteTemplate(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sms_templates WHERE id=?`, id)
	if err != nil {
		return err
	}
	return affected(res)
}

// ---------- Newsletters ----------

func (r *CampaignRepo) Newsletters(ctx context.Context) ([]domain.Newsletter, error) {
	out := []domain.Newsletter{}
	err := r.db.SelectContext(ctx, &out, `
	  SELECT id, subject, content, status, recipient_count, COALESCE(sent_at,'') AS sent_at,
	         COALESCE(created_by,'') AS created_by, COALESCE(created_at,'') AS created_at
	  FROM newsletters ORDER BY created_at DESC, id`)
	return out, err
}

// CreateNewsletter inserts a newsletter. A "sent" newsletter records the active
// subscriber count and send time; a draft records neither.
func (r *CampaignRepo) CreateNewsletter(ctx context.Context, n *domain.Newsletter) error {
	if n.Status == domain.CampaignSent {
		count, err := r.ActiveSubscribers(ctx)
		if err != nil {
			return err
		}
		n.RecipientCount = count
		_, err = r.db.ExecContext(ctx, `
		  INSERT INTO newsletters(id,subject,content,status,recipient_count,sent_at,created_by)
		  VALUES(?,?,?,?,?,CURRENT_TIMESTAMP,?)`,
			n.ID, n.Subject, n.Content, n.Status, n.RecipientCount, nullable(n.CreatedBy))
		return err
	}
	_, err := r.db.ExecContext(ctx, `
	  INSERT INTO newsletters(id,subject,content,status,created_by) VALUES(?,?,?,?,?)`,
		n.ID, n.Subject, n.Content, n.Status, nullable(n.CreatedBy))
	return err
}

// UnsendNewsletter returns a newsletter that never went out to draft.
func (r *CampaignRepo) UnsendNewsletter(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE newsletters SET status='draft', recipient_count=0, sent_at=NULL WHERE id=?`, id)
	return err
}

func (r *CampaignRepo) DeleteNewsletter(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM newsletters WHERE id=?`, id)
	if err != nil {
		return err
	}
	return affected(res)
}

// ---------- Subscribers ----------

func (r *CampaignRepo) Subscribers(ctx context.Context) ([]domain.Subscriber, error) {
	out := []domain.Subscriber{}
	err := r.db.SelectContext(ctx, &out, `
	  SELECT id, email, COALESCE(name,'') AS name, is_active, COALESCE(subscribed_at,'') AS subscribed_at
	  FROM newsletter_subscribers ORDER BY subscribed_at DESC, email`)
	return out, err
}

func (r *CampaignRepo) ActiveSubscribers(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM newsletter_subscribers WHERE is_active=1`)
	return n, err
}

// Subscribe adds the address or reactivates it when it already exists.
func (r *CampaignRepo) Subscribe(ctx context.Context, id, email, name string) error {
	_, err := r.db.ExecContext(ctx, `
	  INSERT INTO newsletter_subscribers(id,email,name,is_active) VALUES(?,?,?,1)
	  ON CONFLICT(email) DO UPDATE SET is_active=1`,
		id, strings.ToLower(strings.TrimSpace(email)), nullable(name))
	return err
}

func (r *CampaignRepo) DeleteSubscriber(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM newsletter_subscribers WHERE id=?`, id)
	if err != nil {
		return err
	}
	return affected(res)
}
