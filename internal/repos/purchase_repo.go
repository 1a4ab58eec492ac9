package repos

import (
	"context"

	"creativehub/internal/domain"

	"github.com/jmoiron/sqlx"
)

type PurchaseRepo struct{ db *sqlx.DB }

func NewPurchaseRepo(db *sqlx.DB) *PurchaseRepo { return &PurchaseRepo{db: db} }

const purchaseSelect = `
  SELECT pu.id, pu.user_id, pu.product_id, pu.amount, pu.currency, pu.status,
         COALESCE(pu.payment_method,'') AS payment_method,
         COALESCE(pu.payment_reference,'') AS payment_reference,
         COALESCE(pu.downloaded_at,'') AS downloaded_at,
         COALESCE(pu.created_at,'') AS created_at,
         p.title AS product_title, p.slug AS product_slug,
         COALESCE(p.thumbnail_url,'') AS thumbnail_url, COALESCE(p.file_url,'') AS file_url,
         u.email AS buyer_email
  FROM purchases pu
  JOIN products p ON p.id = pu.product_id
  JOIN users u ON u.id = pu.user_id`

func (r *PurchaseRepo) Create(ctx context.Context, p domain.Purchase) error {
	_, err := r.db.ExecContext(ctx, `
	  INSERT INTO purchases(id,user_id,product_id,amount,currency,status,payment_method,payment_reference,created_at)
	  VALUES(?,?,?,?,?,?,?,?,CURRENT_TIMESTAMP)`,
		p.ID, p.UserID, p.ProductID, p.Amount, p.Currency, p.Status, nullable(p.PaymentMethod), nullable(p.PaymentReference))
	return err
}

// ByUser lists a buyer's purchases, newest first.
func (r *PurchaseRepo) ByUser(ctx context.Context, userID string) ([]domain.Purchase, error) {
	out := []domain.Purchase{}
	err := r.db.SelectContext(ctx, &out, purchaseSelect+` WHERE pu.user_id = ? ORDER BY pu.created_at DESC, pu.id`, userID)
	return out, err
}

// All lists every purchase for the back office, optionally narrowed by status.
func (r *PurchaseRepo) All(ctx context.Context, status string) ([]domain.Purchase, error) {
	out := []domain.Purchase{}
	if status != "" {
		err := r.db.SelectContext(ctx, &out, purchaseSelect+` WHERE pu.status = ? ORDER BY pu.created_at DESC, pu.id`, status)
		return out, err
	}
	err := r.db.SelectContext(ctx, &out, purchaseSelect+` ORDER BY pu.created_at DESC, pu.id`)
	return out, err
}

func (r *PurchaseRepo) Get(ctx context.Context, id string) (domain.Purchase, error) {
	var p domain.Purchase
	err := r.db.GetContext(ctx, &p, purchaseSelect+` WHERE pu.id = ?`, id)
	return p, notFound(err)
}

// Active returns the buyer's non-failed, non-refunded purchase of a product, if any.
func (r *PurchaseRepo) Active(ctx context.Context, userID, productID string) (domain.Purchase, error) {
	var p domain.Purchase
	err := r.db.GetContext(ctx, &p, purchaseSelect+`
	  WHERE pu.user_id = ? AND pu.product_id = ? AND pu.status IN ('pending','completed')
	  ORDER BY pu.created_at DESC LIMIT 1`, userID, productID)
	return p, notFound(err)
}

func (r *PurchaseRepo) SetStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE purchases SET status=? WHERE id=?`, status, id)
	if err != nil {
		return err
	}
	return affected(res)
}

// MarkDownloaded stamps downloaded_at on a completed purchase owned by userID.
func (r *PurchaseRepo) MarkDownloaded(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, `
	  UPDATE purchases SET downloaded_at=CURRENT_TIMESTAMP
	  WHERE id=? AND user_id=? AND status='completed'`, id, userID)
	if err != nil {
		return err
	}
	return affected(res)
}
