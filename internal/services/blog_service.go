package services

import (
	"context"

	"creativehub/internal/domain"
	"creativehub/internal/repos"
	"creativehub/internal/validate"

	"github.com/google/uuid"
)

type BlogService struct {
	Repo *repos.BlogRepo
}

// BlogInput is the admin post form; Action is "draft" or "published".
type BlogInput struct {
	ID         string
	Title      string
	Slug       string
	SlugEdited bool
	Excerpt    string
	Content    string
	CoverImage string
	Action     string
}

func (s *BlogService) Published(ctx context.Context) ([]domain.BlogPost, error) {
	return s.Repo.List(ctx, true)
}

func (s *BlogService) All(ctx context.Context) ([]domain.BlogPost, error) {
	return s.Repo.List(ctx, false)
}

func (s *BlogService) Post(ctx context.Context, slug string) (domain.BlogPost, error) {
	return s.Repo.PublishedBySlug(ctx, slug)
}

func (s *BlogService) Get(ctx context.Context, id string) (domain.BlogPost, error) {
	return s.Repo.Get(ctx, id)
}

// Check validates in the way Save does without writing. When editing it
// returns the stored post.
func (s *BlogService) Check(ctx context.Context, in BlogInput) (domain.BlogPost, error) {
	_, prev, err := s.prepare(ctx, "", in)
	return prev, err
}

func (s *BlogService) prepare(ctx context.Context, authorID string, in BlogInput) (p, prev domain.BlogPost, err error) {
	existing := in.ID != ""
	if existing {
		if prev, err = s.Repo.Get(ctx, in.ID); err != nil {
			return p, prev, err
		}
	}
	fe := validate.Errors{}
	title, ok := validate.Text(in.Title, 150, true)
	fe.Check(ok, "title", "Title is required")
	excerpt, ok := validate.Text(in.Excerpt, 300, false)
	fe.Check(ok, "excerpt", "Excerpt is too long")
	content, ok := validate.Text(in.Content, 50000, false)
	fe.Check(ok, "content", "Content is too long")
	status, ok := validate.OneOf(in.Action, domain.PostDraft, domain.PostPublished)
	fe.Check(ok, "action", "Choose save draft or publish")

	slug := validate.ResolveSlug(title, in.Slug, in.SlugEdited, existing)
	if _, ok := validate.Slug(slug); !ok {
		fe.Add("slug", "Slug may contain only lowercase letters, digits and hyphens")
	} else if !fe.Any() {
		taken, err := s.Repo.SlugTaken(ctx, slug, in.ID)
		if err != nil {
			return p, prev, err
		}
		fe.Check(!taken, "slug", "That slug is already used by another post")
	}
	if err := invalid(fe); err != nil {
		return p, prev, err
	}

	p = domain.BlogPost{
		ID: in.ID, Title: title, Slug: slug, Excerpt: excerpt, Content: content,
		CoverImage: in.CoverImage, Status: status, AuthorID: authorID,
	}
	return p, prev, nil
}

func (s *BlogService) Save(ctx context.Context, authorID string, in BlogInput) (domain.BlogPost, error) {
	p, _, err := s.prepare(ctx, authorID, in)
	if err != nil {
		return domain.BlogPost{}, err
	}
	if in.ID != "" {
		return p, s.Repo.Update(ctx, p)
	}
	p.ID = uuid.NewString()
	return p, s.Repo.Create(ctx, p)
}

func (s *BlogService) Toggle(ctx context.Context, id string) error { return s.Repo.Toggle(ctx, id) }

// Delete removes the post and returns it so its cover can be dropped.
func (s *BlogService) Delete(ctx context.Context, id string) (domain.BlogPost, error) {
	p, err := s.Repo.Get(ctx, id)
	if err != nil {
		return p, err
	}
	return p, s.Repo.Delete(ctx, id)
}
