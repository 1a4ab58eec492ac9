package repos

import (
	"context"

	"creativehub/internal/domain"

	"github.com/jmoiron/sqlx"
)

type BlogRepo struct{ db *sqlx.DB }

func NewBlogRepo(db *sqlx.DB) *BlogRepo { return &BlogRepo{db: db} }

const postCols = `
    id, title, slug, COALESCE(excerpt,'') AS excerpt, COALESCE(content,'') AS content,
    COALESCE(cover_image,'') AS cover_image, status, COALESCE(published_at,'') AS published_at,
    COALESCE(author_id,'') AS author_id, COALESCE(created_at,'') AS created_at`

// List returns posts newest first; publishedOnly hides drafts.
func (r *BlogRepo) List(ctx context.Context, publishedOnly bool) ([]domain.BlogPost, error) {
	out := []domain.BlogPost{}
	q := `SELECT ` + postCols + ` FROM blog_posts`
	if publishedOnly {
		q += ` WHERE status = 'published' ORDER BY published_at DESC, created_at DESC`
	} else {
		q += ` ORDER BY created_at DESC, id`
	}
	err := r.db.SelectContext(ctx, &out, q)
	return out, err
}

func (r *BlogRepo) Get(ctx context.Context, id string) (domain.BlogPost, error) {
	var p domain.BlogPost
	err := r.db.GetContext(ctx, &p, `SELECT `+postCols+` FROM blog_posts WHERE id = ?`, id)
	return p, notFound(err)
}

func (r *BlogRepo) PublishedBySlug(ctx context.Context, slug string) (domain.BlogPost, error) {
	var p domain.BlogPost
	err := r.db.GetContext(ctx, &p, `SELECT `+postCols+` FROM blog_posts WHERE slug = ? AND status = 'published'`, slug)
	return p, notFound(err)
}

func (r *BlogRepo) SlugTaken(ctx context.Context, slug, exceptID string) (bool, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM blog_posts WHERE slug = ? AND id != ?`, slug, exceptID)
	return n > 0, err
}

func (r *BlogRepo) Create(ctx context.Context, p domain.BlogPost) error {
	_, err := r.db.ExecContext(ctx, `
	  INSERT INTO blog_posts(id,title,slug,excerpt,content,cover_image,status,published_at,author_id)
	  VALUES(?,?,?,?,?,?,?,CASE WHEN ?='published' THEN CURRENT_TIMESTAMP END,?)`,
		p.ID, p.Title, p.Slug, p.Excerpt, p.Content, nullable(p.CoverImage), p.Status, p.Status, nullable(p.AuthorID))
	return err
}

// Update rewrites a post. published_at is stamped the first time it becomes published.
func (r *BlogRepo) Update(ctx context.Context, p domain.BlogPost) error {
	res, err := r.db.ExecContext(ctx, `
	  UPDATE blog_posts SET
	    title=?, slug=?, excerpt=?, content=?, cover_image=COALESCE(?, cover_image), status=?,
	    published_at = CASE WHEN ?='published' THEN COALESCE(published_at, CURRENT_TIMESTAMP) ELSE published_at END
	  WHERE id=?`,
		p.Title, p.Slug, p.Excerpt, p.Content, nullable(p.CoverImage), p.Status, p.Status, p.ID)
	if err != nil {
		return err
	}
	return affected(res)
}

// Toggle flips a post between draft and published.
func (r *BlogRepo) Toggle(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
	  UPDATE blog_posts SET
	    status = CASE status WHEN 'published' THEN 'draft' ELSE 'published' END,
	    published_at = CASE status WHEN 'published' THEN published_at ELSE COALESCE(published_at, CURRENT_TIMESTAMP) END
	  WHERE id=?`, id)
	if err != nil {
		return err
	}
	return affected(res)
}

func (r *BlogRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM blog_posts WHERE id=?`, id)
	if err != nil {
		return err
	}
	return affected(res)
}
