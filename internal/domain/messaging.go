package domain

const (
	NotifyInfo    = "info"
	NotifySuccess = "success"
	NotifyWarning = "warning"
	NotifyError   = "error"
)

type Notification struct {
	ID        string `db:"id"`
	UserID    string `db:"user_id"`
	Title     string `db:"title"`
	Message   string `db:"message"`
	Type      string `db:"type"`
	IsRead    bool   `db:"is_read"`
	Link      string `db:"link"`
	CreatedAt string `db:"created_at"`
}

const (
	CampaignDraft   = "draft"
	CampaignPending = "pending"
	CampaignSent    = "sent"
	CampaignFailed  = "failed"
)

type Newsletter struct {
	ID             string `db:"id"`
	Subject        string `db:"subject"`
	Content        string `db:"content"`
	Status         string `db:"status"`
	RecipientCount int    `db:"recipient_count"`
	SentAt         string `db:"sent_at"`
	CreatedBy      string `db:"created_by"`
	CreatedAt      string `db:"created_at"`
}

type Subscriber struct {
	ID           string `db:"id"`
	Email        string `db:"email"`
	Name         string `db:"name"`
	IsActive     bool   `db:"is_active"`
	SubscribedAt string `db:"subscribed_at"`
}

type SmsMessage struct {
	ID             string `db:"id"`
	RecipientPhone string `db:"recipient_phone"`
	Message        string `db:"message"`
	Status         string `db:"status"`
	CreatedBy      string `db:"created_by"`
	CreatedAt      string `db:"created_at"`
}

type SmsTemplate struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	Content   string `db:"content"`
	CreatedBy string `db:"created_by"`
	CreatedAt string `db:"created_at"`
}
