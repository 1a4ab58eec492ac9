package services

import (
	"context"
	"errors"
	"strings"

	"creativehub/internal/domain"
	applog "creativehub/internal/log"
	"creativehub/internal/repos"
	"creativehub/internal/validate"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderService covers checkout, downloads and the back-office order list.
type OrderService struct {
	Prods     *repos.ProductRepo
	Purchases *repos.PurchaseRepo
	Notify    *NotificationService
	Currency  string
}

func NewOrderService(prods *repos.ProductRepo, purchases *repos.PurchaseRepo, notify *NotificationService) *OrderService {
	return &OrderService{Prods: prods, Purchases: purchases, Notify: notify, Currency: "USD"}
}

// Purchase records a checkout. Free products complete immediately; paid ones
// stay pending with a payment reference until an admin settles them.
func (s *OrderService) Purchase(ctx context.Context, buyerID, productID string) (domain.Purchase, error) {
	p, err := s.Prods.Get(ctx, productID)
	if err != nil {
		return domain.Purchase{}, err
	}
	if p.Status != domain.StatusPublished {
		return domain.Purchase{}, ErrNotFound
	}
	if p.SellerID == buyerID {
		return domain.Purchase{}, ErrForbidden
	}
	if _, err := s.Purchases.Active(ctx, buyerID, productID); err == nil {
		return domain.Purchase{}, ErrAlreadyPurchased
	} else if !errors.Is(err, repos.ErrNotFound) {
		return domain.Purchase{}, err
	}

	pu := domain.Purchase{
		ID:        uuid.NewString(),
		UserID:    buyerID,
		ProductID: productID,
		Amount:    p.Price,
		Currency:  s.Currency,
	}
	if p.IsFree || p.Price.IsZero() {
		pu.Amount = decimal.Zero
		pu.Status = domain.PurchaseCompleted
		pu.PaymentMethod = "free"
	} else {
		pu.Status = domain.PurchasePending
		pu.PaymentMethod = "card"
		pu.PaymentReference = "CH-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
	}
	if err := s.Purchases.Create(ctx, pu); err != nil {
		return domain.Purchase{}, err
	}
	pu.ProductTitle, pu.ProductSlug, pu.FileURL = p.Title, p.Slug, p.FileURL

	if s.Notify != nil {
		msg := `You now own "` + p.Title + `". Find it under Downloads.`
		if pu.Status == domain.PurchasePending {
			msg = `Your order for "` + p.Title + `" is awaiting payment confirmation (ref ` + pu.PaymentReference + `).`
		}
		// The purchase is committed; a missed notification must not report it as failed.
		if err := s.Notify.Notify(ctx, buyerID, "Purchase received", msg, domain.NotifySuccess, "/dashboard/downloads"); err != nil {
			applog.Event("purchase.notify", err, map[string]any{"purchase_id": pu.ID, "buyer_id": buyerID})
		}
	}
	return pu, nil
}

func (s *OrderService) Downloads(ctx context.Context, buyerID string) ([]domain.Purchase, error) {
	return s.Purchases.ByUser(ctx, buyerID)
}

// Download records a download of a completed purchase and returns the file link.
func (s *OrderService) Download(ctx context.Context, buyerID, purchaseID string) (string, error) {
	pu, err := s.Purchases.Get(ctx, purchaseID)
	if err != nil {
		return "", err
	}
	if pu.UserID != buyerID {
		return "", ErrNotFound
	}
	if pu.Status != domain.PurchaseCompleted {
		return "", ErrForbidden
	}
	if err := s.Purchases.MarkDownloaded(ctx, purchaseID, buyerID); err != nil {
		return "", err
	}
	if err := s.Prods.IncrementDownloads(ctx, pu.ProductID); err != nil {
		return "", err
	}
	return pu.FileURL, nil
}

func (s *OrderService) Orders(ctx context.Context, status string) ([]domain.Purchase, error) {
	if st, ok := validate.OneOf(status, domain.PurchaseStatuses...); ok {
		return s.Purchases.All(ctx, st)
	}
	return s.Purchases.All(ctx, "")
}

// SetStatus is the admin settlement action; the buyer hears about completions
// and refunds.
func (s *OrderService) SetStatus(ctx context.Context, id, status string) error {
	status, ok := validate.OneOf(status, domain.PurchaseStatuses...)
	if !ok {
		return ErrInvalidStatus
	}
	pu, err := s.Purchases.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Purchases.SetStatus(ctx, id, status); err != nil {
		return err
	}
	if s.Notify == nil || pu.Status == status {
		return nil
	}
	switch status {
	case domain.PurchaseCompleted:
		return s.Notify.Notify(ctx, pu.UserID, "Payment confirmed",
			`"`+pu.ProductTitle+`" is ready to download.`, domain.NotifySuccess, "/dashboard/downloads")
	case domain.PurchaseRefunded:
		return s.Notify.Notify(ctx, pu.UserID, "Order refunded",
			`Your order for "`+pu.ProductTitle+`" was refunded.`, domain.NotifyInfo, "/dashboard/downloads")
	case domain.PurchaseFailed:
		return s.Notify.Notify(ctx, pu.UserID, "Payment failed",
			`Payment for "`+pu.ProductTitle+`" did not go through.`, domain.NotifyError, "/products/"+pu.ProductSlug)
	}
	return nil
}
