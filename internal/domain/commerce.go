package domain

import "github.com/shopspring/decimal"

const (
	PurchasePending   = "pending"
	PurchaseCompleted = "completed"
	PurchaseFailed    = "failed"
	PurchaseRefunded  = "refunded"
)

var PurchaseStatuses = []string{PurchasePending, PurchaseCompleted, PurchaseFailed, PurchaseRefunded}

type Purchase struct {
	ID               string          `db:"id"`
	UserID           string          `db:"user_id"`
	ProductID        string          `db:"product_id"`
	Amount           decimal.Decimal `db:"amount"`
	Currency         string          `db:"currency"`
	Status           string          `db:"status"`
	PaymentMethod    string          `db:"payment_method"`
	PaymentReference string          `db:"payment_reference"`
	DownloadedAt     string          `db:"downloaded_at"`
	CreatedAt        string          `db:"created_at"`

	ProductTitle string `db:"product_title"`
	ProductSlug  string `db:"product_slug"`
	ThumbnailURL string `db:"thumbnail_url"`
	FileURL      string `db:"file_url"`
	BuyerEmail   string `db:"buyer_email"`
}

type Favorite struct {
	ID        string `db:"id"`
	UserID    string `db:"user_id"`
	ProductID string `db:"product_id"`
	CreatedAt string `db:"created_at"`

	Title        string          `db:"title"`
	Slug         string          `db:"slug"`
	ThumbnailURL string          `db:"thumbnail_url"`
	Price        decimal.Decimal `db:"price"`
	IsFree       bool            `db:"is_free"`
	Rating       float64         `db:"rating"`
}
