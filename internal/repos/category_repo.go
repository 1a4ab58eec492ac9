package repos

import (
	"context"

	"creativehub/internal/domain"

	"github.com/jmoiron/sqlx"
)

type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

const categoryCols = `
    id,
    name,
    slug,
    COALESCE(description,'') AS description,
    COALESCE(icon,'') AS icon,
    product_count,
    COALESCE(created_at,'') AS created_at`

func (r *CategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	out := []domain.Category{}
	err := r.db.SelectContext(ctx, &out, `SELECT `+categoryCols+` FROM categories ORDER BY name`)
	return out, err
}

func (r *CategoryRepo) Get(ctx context.Context, id string) (domain.Category, error) {
	var c domain.Category
	err := r.db.GetContext(ctx, &c, `SELECT `+categoryCols+` FROM categories WHERE id = ?`, id)
	return c, notFound(err)
}

func (r *CategoryRepo) BySlug(ctx context.Context, slug string) (domain.Category, error) {
	var c domain.Category
	err := r.db.GetContext(ctx, &c, `SELECT `+categoryCols+` FROM categories WHERE slug = ?`, slug)
	return c, notFound(err)
}

// SlugTaken reports whether another category (not exceptID) already uses slug.
func (r *CategoryRepo) SlugTaken(ctx context.Context, slug, exceptID string) (bool, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM categories WHERE slug = ? AND id != ?`, slug, exceptID)
	return n > 0, err
}

func (r *CategoryRepo) Create(ctx context.Context, c domain.Category) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories(id,name,slug,description,icon) VALUES(?,?,?,?,?)`,
		c.ID, c.Name, c.Slug, nullable(c.Description), nullable(c.Icon))
	return err
}

func (r *CategoryRepo) Update(ctx context.Context, c domain.Category) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE categories SET name=?, slug=?, description=?, icon=? WHERE id=?`,
		c.Name, c.Slug, nullable(c.Description), nullable(c.Icon), c.ID)
	if err != nil {
		return err
	}
	return affected(res)
}

// Delete removes the category; its products keep existing with no category.
func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id=?`, id)
	if err != nil {
		return err
	}
	return affected(res)
}

// Recount refreshes product_count for every category.
func (r *CategoryRepo) Recount(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE categories SET product_count = (
		  SELECT COUNT(*) FROM products p WHERE p.category_id = categories.id AND p.status = 'published'
		)`)
	return err
}
