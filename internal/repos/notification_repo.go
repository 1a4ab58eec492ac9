package repos

import (
	"context"

	"creativehub/internal/domain"

	"github.com/jmoiron/sqlx"
)

type NotificationRepo struct{ db *sqlx.DB }

func NewNotificationRepo(db *sqlx.DB) *NotificationRepo { return &NotificationRepo{db: db} }

func (r *NotificationRepo) Create(ctx context.Context, n domain.Notification) error {
	_, err := r.db.ExecContext(ctx, `
	  INSERT INTO notifications(id,user_id,title,message,type,link) VALUES(?,?,?,?,?,?)`,
		n.ID, n.UserID, n.Title, n.Message, n.Type, nullable(n.Link))
	return err
}

func (r *NotificationRepo) List(ctx context.Context, userID string) ([]domain.Notification, error) {
	out := []domain.Notification{}
	err := r.db.SelectContext(ctx, &out, `
	  SELECT id, user_id, title, message, type, is_read, COALESCE(link,'') AS link,
	         COALESCE(created_at,'') AS created_at
	  FROM notifications WHERE user_id = ?
	  ORDER BY created_at DESC, id`, userID)
	return out, err
}

func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read=1 WHERE id=? AND user_id=?`, id, userID)
	if err != nil {
		return err
	}
	return affected(res)
}

func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read=1 WHERE user_id=? AND is_read=0`, userID)
	return err
}

func (r *NotificationRepo) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id=? AND user_id=?`, id, userID)
	if err != nil {
		return err
	}
	return affected(res)
}
