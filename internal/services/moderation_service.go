package services

import (
	"context"
	"strings"

	"creativehub/internal/domain"
	"creativehub/internal/repos"
	"creativehub/internal/validate"

	"github.com/google/uuid"
)

// ModerationService is the back-office side of the catalog: product review
// and category management.
type ModerationService struct {
	Cats   *repos.CategoryRepo
	Prods  *repos.ProductRepo
	Notify *NotificationService
}

func (s *ModerationService) Products(ctx context.Context, status, q string) ([]domain.Product, error) {
	f := repos.ProductFilter{Limit: 500}
	if st, ok := validate.OneOf(status, domain.ProductStatuses...); ok {
		f.Status = st
	}
	if kw, ok := validate.Q(q); ok {
		f.Q = strings.ToLower(kw)
	}
	return s.Prods.List(ctx, f)
}

// SetStatus moves a product to status and tells its seller when it was
// published or rejected.
func (s *ModerationService) SetStatus(ctx context.Context, id, status string) error {
	status, ok := validate.OneOf(status, domain.ProductStatuses...)
	if !ok {
		return ErrInvalidStatus
	}
	p, err := s.Prods.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Prods.SetStatus(ctx, id, status); err != nil {
		return err
	}
	if err := s.Cats.Recount(ctx); err != nil {
		return err
	}
	if s.Notify == nil || p.Status == status {
		return nil
	}
	switch status {
	case domain.StatusPublished:
		return s.Notify.Notify(ctx, p.SellerID, "Product approved",
			`"`+p.Title+`" is now live in the marketplace.`, domain.NotifySuccess, "/products/"+p.Slug)
	case domain.StatusRejected:
		return s.Notify.Notify(ctx, p.SellerID, "Product rejected",
			`"`+p.Title+`" was not approved. Edit it and submit again.`, domain.NotifyWarning, "/dashboard/products/"+p.ID+"/edit")
	}
	return nil
}

func (s *ModerationService) ToggleFeatured(ctx context.Context, id string) error {
	return s.Prods.ToggleFeatured(ctx, id)
}

// DeleteProduct removes a product and returns it so its thumbnail can be dropped.
func (s *ModerationService) DeleteProduct(ctx context.Context, id string) (domain.Product, error) {
	p, err := s.Prods.Get(ctx, id)
	if err != nil {
		return p, err
	}
	if err := s.Prods.Delete(ctx, id); err != nil {
		return p, err
	}
	return p, s.Cats.Recount(ctx)
}

type CategoryInput struct {
	ID          string
	Name        string
	Slug        string
	SlugEdited  bool
	Description string
	Icon        string
}

func (s *ModerationService) Categories(ctx context.Context) ([]domain.Category, error) {
	return s.Cats.List(ctx)
}

func (s *ModerationService) SaveCategory(ctx context.Context, in CategoryInput) (domain.Category, error) {
	existing := in.ID != ""
	fe := validate.Errors{}
	name, ok := validate.Text(in.Name, 80, true)
	fe.Check(ok, "name", "Name is required")
	desc, ok := validate.Text(in.Description, 300, false)
	fe.Check(ok, "description", "Description is too long")
	icon, ok := validate.Text(in.Icon, 40, false)
	fe.Check(ok, "icon", "Icon name is too long")

	slug := validate.ResolveSlug(name, in.Slug, in.SlugEdited, existing)
	if _, ok := validate.Slug(slug); !ok {
		fe.Add("slug", "Slug may contain only lowercase letters, digits and hyphens")
	} else if !fe.Any() {
		taken, err := s.Cats.SlugTaken(ctx, slug, in.ID)
		if err != nil {
			return domain.Category{}, err
		}
		fe.Check(!taken, "slug", "That slug is already used by another category")
	}
	if err := invalid(fe); err != nil {
		return domain.Category{}, err
	}

	c := domain.Category{ID: in.ID, Name: name, Slug: slug, Description: desc, Icon: icon}
	if existing {
		return c, s.Cats.Update(ctx, c)
	}
	c.ID = uuid.NewString()
	return c, s.Cats.Create(ctx, c)
}

func (s *ModerationService) DeleteCategory(ctx context.Context, id string) error {
	return s.Cats.Delete(ctx, id)
}
