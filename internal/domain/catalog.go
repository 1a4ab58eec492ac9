package domain

import "github.com/shopspring/decimal"

const (
	StatusDraft     = "draft"
	StatusPending   = "pending"
	StatusPublished = "published"
	StatusRejected  = "rejected"
)

// ProductStatuses lists product statuses in lifecycle order.
var ProductStatuses = []string{StatusDraft, StatusPending, StatusPublished, StatusRejected}

type Category struct {
	ID           string `db:"id"`
	Name         string `db:"name"`
	Slug         string `db:"slug"`
	Description  string `db:"description"`
	Icon         string `db:"icon"`
	ProductCount int    `db:"product_count"`
	CreatedAt    string `db:"created_at"`
}

type Product struct {
	ID               string          `db:"id"`
	SellerID         string          `db:"seller_id"`
	CategoryID       string          `db:"category_id"`
	Title            string          `db:"title"`
	Slug             string          `db:"slug"`
	ShortDescription string          `db:"short_description"`
	Description      string          `db:"description"`
	Price            decimal.Decimal `db:"price"`
	IsFree           bool            `db:"is_free"`
	Status           string          `db:"status"`
	IsFeatured       bool            `db:"is_featured"`
	ThumbnailURL     string          `db:"thumbnail_url"`
	FileURL          string          `db:"file_url"`
	FileType         string          `db:"file_type"`
	FileSize         string          `db:"file_size"`
	DownloadCount    int             `db:"download_count"`
	Rating           float64         `db:"rating"`
	CreatedAt        string          `db:"created_at"`
	UpdatedAt        string          `db:"updated_at"`

	// Joined columns; empty when the query does not join.
	CategoryName string `db:"category_name"`
	SellerName   string `db:"seller_name"`
}
