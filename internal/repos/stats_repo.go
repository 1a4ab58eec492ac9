package repos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// Overview holds the admin dashboard counters.
type Overview struct {
	Users             int             `db:"users"`
	Products          int             `db:"products"`
	PendingProducts   int             `db:"pending_products"`
	Orders            int             `db:"orders"`
	Revenue           decimal.Decimal `db:"revenue"`
	ActiveSubscribers int             `db:"active_subscribers"`
}

// SellerOverview holds the buyer/seller dashboard counters.
type SellerOverview struct {
	Products  int `db:"products"`
	Purchases int `db:"purchases"`
	Favorites int `db:"favorites"`
	Unread    int `db:"unread"`
	Downloads int `db:"downloads"`
}

type MonthRevenue struct {
	Month   string          `db:"month"`
	Orders  int             `db:"orders"`
	Revenue decimal.Decimal `db:"revenue"`
}

type CategoryShare struct {
	Name     string `db:"name"`
	Products int    `db:"products"`
}

type TopProduct struct {
	Title     string          `db:"title"`
	Slug      string          `db:"slug"`
	Downloads int             `db:"download_count"`
	Sales     int             `db:"sales"`
	Revenue   decimal.Decimal `db:"revenue"`
}

type StatsRepo struct{ db *sqlx.DB }

func NewStatsRepo(db *sqlx.DB) *StatsRepo { return &StatsRepo{db: db} }

func (r *StatsRepo) Overview(ctx context.Context) (Overview, error) {
	var o Overview
	err := r.db.GetContext(ctx, &o, `
	  SELECT
	    (SELECT COUNT(*) FROM users) AS users,
	    (SELECT COUNT(*) FROM products) AS products,
	    (SELECT COUNT(*) FROM products WHERE status='pending') AS pending_products,
	    (SELECT COUNT(*) FROM purchases) AS orders,
	    (SELECT COALESCE(SUM(amount),0) FROM purchases WHERE status='completed') AS revenue,
	    (SELECT COUNT(*) FROM newsletter_subscribers WHERE is_active=1) AS active_subscribers`)
	return o, err
}

func (r *StatsRepo) SellerOverview(ctx context.Context, userID string) (SellerOverview, error) {
	var o SellerOverview
	err := r.db.GetContext(ctx, &o, `
	  SELECT
	    (SELECT COUNT(*) FROM products WHERE seller_id=?) AS products,
	    (SELECT COUNT(*) FROM purchases WHERE user_id=?) AS purchases,
	    (SELECT COUNT(*) FROM favorites WHERE user_id=?) AS favorites,
	    (SELECT COUNT(*) FROM notifications WHERE user_id=? AND is_read=0) AS unread,
	    (SELECT COALESCE(SUM(download_count),0) FROM products WHERE seller_id=?) AS downloads`,
		userID, userID, userID, userID, userID)
	return o, err
}

// RevenueByMonth aggregates completed purchases per calendar month, most recent first.
func (r *StatsRepo) RevenueByMonth(ctx context.Context, months int) ([]MonthRevenue, error) {
	out := []MonthRevenue{}
	err := r.db.SelectContext(ctx, &out, `
	  SELECT substr(created_at,1,7) AS month, COUNT(*) AS orders, COALESCE(SUM(amount),0) AS revenue
	  FROM purchases WHERE status='completed'
	  GROUP BY month ORDER BY month DESC LIMIT ?`, months)
	return out, err
}

func (r *StatsRepo) ProductsByCategory(ctx context.Context) ([]CategoryShare, error) {
	out := []CategoryShare{}
	err := r.db.SelectContext(ctx, &out, `
	  SELECT COALESCE(c.name,'Uncategorized') AS name, COUNT(p.id) AS products
	  FROM products p LEFT JOIN categories c ON c.id = p.category_id
	  GROUP BY name ORDER BY products DESC, name`)
	return out, err
}

func (r *StatsRepo) TopProducts(ctx context.Context, limit int) ([]TopProduct, error) {
	out := []TopProduct{}
	err := r.db.SelectContext(ctx, &out, `
	  SELECT p.title, p.slug, p.download_count,
	         COUNT(pu.id) AS sales, COALESCE(SUM(pu.amount),0) AS revenue
	  FROM products p
	  LEFT JOIN purchases pu ON pu.product_id = p.id AND pu.status='completed'
	  GROUP BY p.id
	  ORDER BY sales DESC, p.download_count DESC, p.title
	  LIMIT ?`, limit)
	return out, err
}
