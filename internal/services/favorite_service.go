package services

import (
	"context"

	"creativehub/internal/domain"
	"creativehub/internal/repos"

	"github.com/google/uuid"
)

type FavoriteService struct {
	Repo  *repos.FavoriteRepo
	Prods *repos.ProductRepo
}

func NewFavoriteService(r *repos.FavoriteRepo, prods *repos.ProductRepo) *FavoriteService {
	return &FavoriteService{Repo: r, Prods: prods}
}

// Toggle adds the product to the user's favorites, or removes it when already
// there. It reports whether the product is a favorite afterwards.
func (s *FavoriteService) Toggle(ctx context.Context, userID, productID string) (bool, error) {
	if _, err := s.Prods.Get(ctx, productID); err != nil {
		return false, err
	}
	on, err := s.Repo.Exists(ctx, userID, productID)
	if err != nil {
		return false, err
	}
	if on {
		return false, s.Repo.RemoveProduct(ctx, userID, productID)
	}
	return true, s.Repo.Add(ctx, uuid.NewString(), userID, productID)
}

func (s *FavoriteService) List(ctx context.Context, userID string) ([]domain.Favorite, error) {
	return s.Repo.List(ctx, userID)
}

func (s *FavoriteService) Remove(ctx context.Context, userID, id string) error {
	return s.Repo.Remove(ctx, id, userID)
}

func (s *FavoriteService) IDs(ctx context.Context, userID string) (map[string]bool, error) {
	if userID == "" {
		return map[string]bool{}, nil
	}
	return s.Repo.ProductIDs(ctx, userID)
}
