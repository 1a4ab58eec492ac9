package services

import (
	"context"
	"strings"

	"creativehub/internal/domain"
	"creativehub/internal/repos"
	"creativehub/internal/validate"
)

type CatalogService struct {
	Cats  *repos.CategoryRepo
	Prods *repos.ProductRepo
}

func NewCatalogService(cats *repos.CategoryRepo, prods *repos.ProductRepo) *CatalogService {
	return &CatalogService{Cats: cats, Prods: prods}
}

// Query is a storefront listing request as it arrives from the query string.
type Query struct {
	Q        string
	Category string // slug
	Sort     string
	Page     int
	PageSize int
}

// Prev and Next give neighbouring page numbers, 0 when there is none.
func (q Query) Prev() int {
	if q.Page > 1 {
		return q.Page - 1
	}
	return 0
}

func (q Query) Next(total int) int {
	size := q.PageSize
	if size <= 0 {
		size = 24
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	if page*size < total {
		return page + 1
	}
	return 0
}

var sorts = []string{"newest", "popular", "price_asc", "price_desc", "rating"}

func (q Query) filter() repos.ProductFilter {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = 24
	}
	f := repos.ProductFilter{
		Status: domain.StatusPublished,
		Limit:  q.PageSize,
		Offset: (q.Page - 1) * q.PageSize,
	}
	if kw, ok := validate.Q(q.Q); ok {
		f.Q = strings.ToLower(kw)
	}
	// An unknown category narrows to nothing rather than widening to everything.
	f.CategorySlug = strings.ToLower(strings.TrimSpace(q.Category))
	if s, ok := validate.OneOf(q.Sort, sorts...); ok {
		f.Sort = s
	}
	return f
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.Cats.List(ctx)
}

func (s *CatalogService) Featured(ctx context.Context, n int) ([]domain.Product, error) {
	return s.Prods.List(ctx, repos.ProductFilter{Status: domain.StatusPublished, FeaturedOnly: true, Limit: n})
}

func (s *CatalogService) Latest(ctx context.Context, n int) ([]domain.Product, error) {
	return s.Prods.List(ctx, repos.ProductFilter{Status: domain.StatusPublished, Limit: n})
}

// Explore lists published products matching q.
func (s *CatalogService) Explore(ctx context.Context, q Query) ([]domain.Product, error) {
	return s.Prods.List(ctx, q.filter())
}

func (s *CatalogService) Count(ctx context.Context, q Query) (int, error) {
	return s.Prods.Count(ctx, q.filter())
}

// Courses lists published products in the courses category.
func (s *CatalogService) Courses(ctx context.Context) ([]domain.Product, error) {
	return s.Prods.List(ctx, repos.ProductFilter{Status: domain.StatusPublished, CategorySlug: "courses", Sort: "popular"})
}

// Product returns a product by slug. Unpublished products are visible only to
// their seller and to admins.
func (s *CatalogService) Product(ctx context.Context, slug string, viewer *domain.User) (domain.Product, error) {
	p, err := s.Prods.BySlug(ctx, slug)
	if err != nil {
		return p, err
	}
	if p.Status != domain.StatusPublished {
		if viewer == nil || (viewer.ID != p.SellerID && !viewer.IsAdmin()) {
			return domain.Product{}, ErrNotFound
		}
	}
	return p, nil
}

// Related lists other published products from the same category.
func (s *CatalogService) Related(ctx context.Context, p domain.Product, n int) ([]domain.Product, error) {
	if p.CategoryID == "" {
		return []domain.Product{}, nil
	}
	rows, err := s.Prods.List(ctx, repos.ProductFilter{Status: domain.StatusPublished, CategoryID: p.CategoryID, Sort: "popular", Limit: n + 1})
	if err != nil {
		return nil, err
	}
	out := rows[:0]
	for _, r := range rows {
		if r.ID != p.ID && len(out) < n {
			out = append(out, r)
		}
	}
	return out, nil
}
