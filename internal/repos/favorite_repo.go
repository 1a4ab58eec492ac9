package repos

import (
	"context"

	"creativehub/internal/domain"

	"github.com/jmoiron/sqlx"
)

type FavoriteRepo struct{ db *sqlx.DB }

func NewFavoriteRepo(db *sqlx.DB) *FavoriteRepo { return &FavoriteRepo{db: db} }

func (r *FavoriteRepo) List(ctx context.Context, userID string) ([]domain.Favorite, error) {
	out := []domain.Favorite{}
	err := r.db.SelectContext(ctx, &out, `
	  SELECT f.id, f.user_id, f.product_id, COALESCE(f.created_at,'') AS created_at,
	         p.title, p.slug, COALESCE(p.thumbnail_url,'') AS thumbnail_url,
	         p.price, p.is_free, p.rating
	  FROM favorites f
	  JOIN products p ON p.id = f.product_id
	  WHERE f.user_id = ?
	  ORDER BY f.created_at DESC, f.id`, userID)
	return out, err
}

// ProductIDs returns the set of product ids the user has favorited.
func (r *FavoriteRepo) ProductIDs(ctx context.Context, userID string) (map[string]bool, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, `SELECT product_id FROM favorites WHERE user_id = ?`, userID); err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (r *FavoriteRepo) Exists(ctx context.Context, userID, productID string) (bool, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM favorites WHERE user_id=? AND product_id=?`, userID, productID)
	return n > 0, err
}

func (r *FavoriteRepo) Add(ctx context.Context, id, userID, productID string) error {
	_, err := r.db.ExecContext(ctx, `
	  INSERT INTO favorites(id,user_id,product_id) VALUES(?,?,?)
	  ON CONFLICT(user_id,product_id) DO NOTHING`, id, userID, productID)
	return err
}

func (r *FavoriteRepo) RemoveProduct(ctx context.Context, userID, productID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM favorites WHERE user_id=? AND product_id=?`, userID, productID)
	return err
}

// Remove deletes one favorite row by id, scoped to its owner.
func (r *FavoriteRepo) Remove(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM favorites WHERE id=? AND user_id=?`, id, userID)
	if err != nil {
		return err
	}
	return affected(res)
}
