package repos

import (
	"context"

	"creativehub/internal/domain"

	"github.com/jmoiron/sqlx"
)

type SettingsRepo struct{ db *sqlx.DB }

func NewSettingsRepo(db *sqlx.DB) *SettingsRepo { return &SettingsRepo{db: db} }

func (r *SettingsRepo) All(ctx context.Context) ([]domain.Setting, error) {
	out := []domain.Setting{}
	err := r.db.SelectContext(ctx, &out, `SELECT key, value, COALESCE(updated_at,'') AS updated_at FROM admin_settings ORDER BY key`)
	return out, err
}

// Upsert writes every key/value pair (JSON text values) in one transaction.
func (r *SettingsRepo) Upsert(ctx context.Context, values map[string]string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for k, v := range values {
		if _, err := tx.ExecContext(ctx, `
		  INSERT INTO admin_settings(key,value,updated_at) VALUES(?,?,CURRENT_TIMESTAMP)
		  ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=CURRENT_TIMESTAMP`, k, v); err != nil {
			return err
		}
	}
	return tx.Commit()
}
