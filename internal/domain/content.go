package domain

const (
	PostDraft     = "draft"
	PostPublished = "published"
)

type BlogPost struct {
	ID          string `db:"id"`
	Title       string `db:"title"`
	Slug        string `db:"slug"`
	Excerpt     string `db:"excerpt"`
	Content     string `db:"content"`
	CoverImage  string `db:"cover_image"`
	Status      string `db:"status"`
	PublishedAt string `db:"published_at"`
	AuthorID    string `db:"author_id"`
	CreatedAt   string `db:"created_at"`
}

type Setting struct {
	Key       string `db:"key"`
	Value     string `db:"value"` // JSON text
	UpdatedAt string `db:"updated_at"`
}
