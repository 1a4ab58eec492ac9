package repos

import (
	"context"

	"creativehub/internal/domain"

	"github.com/jmoiron/sqlx"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `
    p.id, p.seller_id, COALESCE(p.category_id,'') AS category_id, p.title, p.slug,
    COALESCE(p.short_description,'') AS short_description, COALESCE(p.description,'') AS description,
    p.price, p.is_free, p.status, p.is_featured,
    COALESCE(p.thumbnail_url,'') AS thumbnail_url, COALESCE(p.file_url,'') AS file_url,
    COALESCE(p.file_type,'') AS file_type, COALESCE(p.file_size,'') AS file_size,
    p.download_count, p.rating,
    COALESCE(p.created_at,'') AS created_at, COALESCE(p.updated_at,'') AS updated_at,
    COALESCE(c.name,'') AS category_name, COALESCE(u.name,'') AS seller_name`

const productFrom = `
  FROM products p
  LEFT JOIN categories c ON c.id = p.category_id
  LEFT JOIN users u ON u.id = p.seller_id`

// ProductFilter narrows a product listing. Zero values mean "any".
type ProductFilter struct {
	Status       string
	CategoryID   string
	CategorySlug string
	SellerID     string
	Q            string // lowercased keyword
	FeaturedOnly bool
	Sort         string // newest | popular | price_asc | price_desc | rating
	Limit        int
	Offset       int
}

func (f ProductFilter) where() (string, []any) {
	where := `1 = 1`
	args := []any{}
	if f.Status != "" {
		where += ` AND p.status = ?`
		args = append(args, f.Status)
	}
	if f.CategoryID != "" {
		where += ` AND p.category_id = ?`
		args = append(args, f.CategoryID)
	}
	if f.CategorySlug != "" {
		where += ` AND c.slug = ?`
		args = append(args, f.CategorySlug)
	}
	if f.SellerID != "" {
		where += ` AND p.seller_id = ?`
		args = append(args, f.SellerID)
	}
	if f.Q != "" {
		where += ` AND (LOWER(p.title) LIKE ? ESCAPE '\' OR LOWER(COALESCE(p.short_description,'')) LIKE ? ESCAPE '\')`
		like := contains(f.Q)
		args = append(args, like, like)
	}
	if f.FeaturedOnly {
		where += ` AND p.is_featured = 1`
	}
	return where, args
}

func (f ProductFilter) order() string {
	switch f.Sort {
	case "popular":
		return `p.download_count DESC, p.created_at DESC`
	case "price_asc":
		return `CAST(p.price AS REAL) ASC, p.title`
	case "price_desc":
		return `CAST(p.price AS REAL) DESC, p.title`
	case "rating":
		return `p.rating DESC, p.created_at DESC`
	default:
		return `p.created_at DESC, p.title`
	}
}

func (r *ProductRepo) List(ctx context.Context, f ProductFilter) ([]domain.Product, error) {
	where, args := f.where()
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit, f.Offset)

	out := []domain.Product{}
	err := r.db.SelectContext(ctx, &out, `SELECT `+productCols+productFrom+`
  WHERE `+where+`
  ORDER BY `+f.order()+`
  LIMIT ? OFFSET ?`, args...)
	return out, err
}

func (r *ProductRepo) Count(ctx context.Context, f ProductFilter) (int, error) {
	where, args := f.where()
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*)`+productFrom+` WHERE `+where, args...)
	return n, err
}

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, `SELECT `+productCols+productFrom+` WHERE p.id = ?`, id)
	return p, notFound(err)
}

func (r *ProductRepo) BySlug(ctx context.Context, slug string) (domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, `SELECT `+productCols+productFrom+` WHERE p.slug = ?`, slug)
	return p, notFound(err)
}

func (r *ProductRepo) SlugTaken(ctx context.Context, slug, exceptID string) (bool, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM products WHERE slug = ? AND id != ?`, slug, exceptID)
	return n > 0, err
}

func (r *ProductRepo) Create(ctx context.Context, p domain.Product) error {
	_, err := r.db.ExecContext(ctx, `
	  INSERT INTO products
	    (id, seller_id, category_id, title, slug, short_description, description, price, is_free,
	     status, thumbnail_url, file_url, file_type, file_size, created_at, updated_at)
	  VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,CURRENT_TIMESTAMP,CURRENT_TIMESTAMP)
	`, p.ID, p.SellerID, nullable(p.CategoryID), p.Title, p.Slug, p.ShortDescription, p.Description,
		p.Price, p.IsFree, p.Status, nullable(p.ThumbnailURL), nullable(p.FileURL), p.FileType, p.FileSize)
	return err
}

// UpdateOwned rewrites the editable fields of a product owned by p.SellerID.
func (r *ProductRepo) UpdateOwned(ctx context.Context, p domain.Product) error {
	res, err := r.db.ExecContext(ctx, `
	  UPDATE products SET
	    category_id=?, title=?, slug=?, short_description=?, description=?, price=?, is_free=?,
	    status=?, thumbnail_url=COALESCE(?, thumbnail_url), file_url=COALESCE(?, file_url),
	    file_type=?, file_size=?, updated_at=CURRENT_TIMESTAMP
	  WHERE id=? AND seller_id=?
	`, nullable(p.CategoryID), p.Title, p.Slug, p.ShortDescription, p.Description, p.Price, p.IsFree,
		p.Status, nullable(p.ThumbnailURL), nullable(p.FileURL), p.FileType, p.FileSize, p.ID, p.SellerID)
	if err != nil {
		return err
	}
	return affected(res)
}

func (r *ProductRepo) SetStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE products SET status=?, updated_at=CURRENT_TIMESTAMP WHERE id=?`, status, id)
	if err != nil {
		return err
	}
	return affected(res)
}

func (r *ProductRepo) ToggleFeatured(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE products SET is_featured = 1 - is_featured, updated_at=CURRENT_TIMESTAMP WHERE id=?`, id)
	if err != nil {
		return err
	}
	return affected(res)
}

func (r *ProductRepo) IncrementDownloads(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE products SET download_count = download_count + 1 WHERE id=?`, id)
	return err
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id=?`, id)
	if err != nil {
		return err
	}
	return affected(res)
}

func (r *ProductRepo) DeleteOwned(ctx context.Context, id, sellerID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id=? AND seller_id=?`, id, sellerID)
	if err != nil {
		return err
	}
	return affected(res)
}
