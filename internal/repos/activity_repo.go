package repos

import (
	"context"

	"creativehub/internal/domain"

	"github.com/jmoiron/sqlx"
)

type ActivityRepo struct{ db *sqlx.DB }

func NewActivityRepo(db *sqlx.DB) *ActivityRepo { return &ActivityRepo{db: db} }

func (r *ActivityRepo) Record(ctx context.Context, a domain.Activity) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO activity_logs(id,user_id,action,detail) VALUES(?,?,?,?)`,
		a.ID, nullable(a.UserID), a.Action, nullable(a.Detail))
	return err
}

func (r *ActivityRepo) Recent(ctx context.Context, limit int) ([]domain.Activity, error) {
	out := []domain.Activity{}
	err := r.db.SelectContext(ctx, &out, `
	  SELECT id, COALESCE(user_id,'') AS user_id, action, COALESCE(detail,'') AS detail,
	         COALESCE(created_at,'') AS created_at
	  FROM activity_logs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	return out, err
}
