package services

import (
	"context"
	"errors"

	"creativehub/internal/domain"
	"creativehub/internal/repos"
	"creativehub/internal/validate"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SellerService manages the products a user sells.
type SellerService struct {
	Cats  *repos.CategoryRepo
	Prods *repos.ProductRepo
}

func NewSellerService(cats *repos.CategoryRepo, prods *repos.ProductRepo) *SellerService {
	return &SellerService{Cats: cats, Prods: prods}
}

// ProductInput is the seller product form. Action is the submit button pressed:
// "draft" saves privately, "pending" submits for review.
type ProductInput struct {
	ID               string
	Title            string
	Slug             string
	SlugEdited       bool
	CategoryID       string
	ShortDescription string
	Description      string
	Price            string
	IsFree           bool
	FileURL          string
	FileType         string
	FileSize         string
	ThumbnailURL     string
	Action           string
}

func (s *SellerService) Mine(ctx context.Context, sellerID string) ([]domain.Product, error) {
	return s.Prods.List(ctx, repos.ProductFilter{SellerID: sellerID, Limit: 500})
}

// Owned loads a product only if sellerID owns it.
func (s *SellerService) Owned(ctx context.Context, sellerID, id string) (domain.Product, error) {
	p, err := s.Prods.Get(ctx, id)
	if err != nil {
		return p, err
	}
	if p.SellerID != sellerID {
		return domain.Product{}, ErrNotFound
	}
	return p, nil
}

// Check validates in the way Save does without writing anything, so uploads can
// wait until the form is known to be good. When editing it returns the stored
// product.
func (s *SellerService) Check(ctx context.Context, sellerID string, in ProductInput) (domain.Product, error) {
	_, prev, err := s.prepare(ctx, sellerID, in)
	return prev, err
}

func (s *SellerService) prepare(ctx context.Context, sellerID string, in ProductInput) (p, prev domain.Product, err error) {
	existing := in.ID != ""
	if existing {
		if prev, err = s.Owned(ctx, sellerID, in.ID); err != nil {
			return p, prev, err
		}
	}

	fe := validate.Errors{}
	title, ok := validate.Text(in.Title, 120, true)
	fe.Check(ok && title != "", "title", "Title is required")
	short, ok := validate.Text(in.ShortDescription, 200, false)
	fe.Check(ok, "short_description", "Keep the summary under 200 characters")
	desc, ok := validate.Text(in.Description, 10000, false)
	fe.Check(ok, "description", "Description is too long")
	price, ok := validate.Price(in.Price)
	if in.IsFree {
		price, ok = decimal.Zero, true
	}
	fe.Check(ok, "price", "Enter a price like 19.99")
	if !in.IsFree && ok && price.IsZero() {
		fe.Add("price", "Paid products need a price above zero")
	}
	status, ok := validate.OneOf(in.Action, domain.StatusDraft, domain.StatusPending)
	fe.Check(ok, "action", "Choose save as draft or submit for review")
	fileURL, ok := validate.Text(in.FileURL, 500, false)
	fe.Check(ok, "file_url", "File link is too long")

	catID := in.CategoryID
	if catID != "" {
		if _, err := s.Cats.Get(ctx, catID); err != nil {
			if !errors.Is(err, repos.ErrNotFound) {
				return p, prev, err
			}
			fe.Add("category_id", "Pick a category from the list")
		}
	}

	slug := validate.ResolveSlug(title, in.Slug, in.SlugEdited, existing)
	if _, ok := validate.Slug(slug); !ok {
		fe.Add("slug", "Slug may contain only lowercase letters, digits and hyphens")
	} else if !fe.Any() {
		taken, err := s.Prods.SlugTaken(ctx, slug, in.ID)
		if err != nil {
			return p, prev, err
		}
		fe.Check(!taken, "slug", "That slug is already used by another product")
	}
	if err := invalid(fe); err != nil {
		return p, prev, err
	}

	p = domain.Product{
		ID:               in.ID,
		SellerID:         sellerID,
		CategoryID:       catID,
		Title:            title,
		Slug:             slug,
		ShortDescription: short,
		Description:      desc,
		Price:            price,
		IsFree:           in.IsFree,
		Status:           status,
		ThumbnailURL:     in.ThumbnailURL,
		FileURL:          fileURL,
		FileType:         in.FileType,
		FileSize:         in.FileSize,
	}
	return p, prev, nil
}

// Save validates the form and creates or updates the seller's product.
// Nothing is written when validation fails.
func (s *SellerService) Save(ctx context.Context, sellerID string, in ProductInput) (domain.Product, error) {
	p, _, err := s.prepare(ctx, sellerID, in)
	if err != nil {
		return domain.Product{}, err
	}
	if in.ID != "" {
		err = s.Prods.UpdateOwned(ctx, p)
	} else {
		p.ID = uuid.NewString()
		err = s.Prods.Create(ctx, p)
	}
	if isUnique(err) {
		return domain.Product{}, invalid(validate.Errors{"slug": "That slug is already used by another product"})
	}
	if err != nil {
		return domain.Product{}, err
	}
	return p, s.Cats.Recount(ctx)
}

// Delete removes the seller's product and returns it, so the caller can drop
// its stored thumbnail.
func (s *SellerService) Delete(ctx context.Context, sellerID, id string) (domain.Product, error) {
	p, err := s.Owned(ctx, sellerID, id)
	if err != nil {
		return p, err
	}
	if err := s.Prods.DeleteOwned(ctx, id, sellerID); err != nil {
		return p, err
	}
	return p, s.Cats.Recount(ctx)
}
