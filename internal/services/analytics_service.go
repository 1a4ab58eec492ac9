package services

import (
	"context"

	"creativehub/internal/domain"
	"creativehub/internal/repos"
)

type AnalyticsService struct {
	Stats    *repos.StatsRepo
	Activity *repos.ActivityRepo
}

type AdminDashboard struct {
	Overview repos.Overview
	Recent   []domain.Activity
}

type Report struct {
	Months     []repos.MonthRevenue
	Categories []repos.CategoryShare
	Top        []repos.TopProduct
}

func (s *AnalyticsService) AdminDashboard(ctx context.Context) (AdminDashboard, error) {
	o, err := s.Stats.Overview(ctx)
	if err != nil {
		return AdminDashboard{}, err
	}
	recent, err := s.Activity.Recent(ctx, 10)
	if err != nil {
		return AdminDashboard{}, err
	}
	return AdminDashboard{Overview: o, Recent: recent}, nil
}

func (s *AnalyticsService) Report(ctx context.Context) (Report, error) {
	var r Report
	var err error
	if r.Months, err = s.Stats.RevenueByMonth(ctx, 12); err != nil {
		return r, err
	}
	if r.Categories, err = s.Stats.ProductsByCategory(ctx); err != nil {
		return r, err
	}
	r.Top, err = s.Stats.TopProducts(ctx, 10)
	return r, err
}

func (s *AnalyticsService) UserDashboard(ctx context.Context, userID string) (repos.SellerOverview, error) {
	return s.Stats.SellerOverview(ctx, userID)
}
