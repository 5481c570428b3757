package purchase

import (
	"context"
	"fmt"

	"invoicely/internal/core/id"
	"invoicely/pkg/logger"
)

// Backend is the part of the REST backend the purchase screens use.
type Backend interface {
	ListSuppliers(ctx context.Context) ([]Supplier, error)
	ListPurchases(ctx context.Context) ([]Purchase, error)
	CreatePurchase(ctx context.Context, payload Payload) (Purchase, error)
	UpdatePurchase(ctx context.Context, purchaseID id.Ref, payload Payload) (Purchase, error)
}

// Service submits purchase drafts.
type Service struct {
	backend Backend
}

// NewService creates a new purchase service.
func NewService(backend Backend) *Service {
	return &Service{backend: backend}
}

// Submit validates the draft, computes totals and sends it in one request:
// POST for a new purchase, PUT for an existing one. The draft is left untouched
// on failure so the user can retry.
func (s *Service) Submit(ctx context.Context, d Draft) (Purchase, error) {
	if err := d.Validate(); err != nil {
		return Purchase{}, err
	}

	payload := d.Payload()

	var (
		saved Purchase
		err   error
	)
	if d.IsNew() {
		saved, err = s.backend.CreatePurchase(ctx, payload)
	} else {
		saved, err = s.backend.UpdatePurchase(ctx, d.ID, payload)
	}
	if err != nil {
		return Purchase{}, fmt.Errorf("submit purchase: %w", err)
	}

	logger.Info(ctx, "purchase submitted",
		"purchase_id", saved.ID,
		"created", d.IsNew(),
		"items", len(payload.Items),
		"total_amount", payload.TotalAmount.StringFixed(2),
	)

	return saved, nil
}

// ListPurchases returns saved purchases. Errors are returned to the caller.
func (s *Service) ListPurchases(ctx context.Context) ([]Purchase, error) {
	purchases, err := s.backend.ListPurchases(ctx)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	return purchases, nil
}

// ListSuppliers loads suppliers for the supplier picker.
// Failures are logged and yield an empty list.
func (s *Service) ListSuppliers(ctx context.Context) []Supplier {
	suppliers, err := s.backend.ListSuppliers(ctx)
	if err != nil {
		logger.Warn(ctx, "failed to load suppliers", "error", err)
		return []Supplier{}
	}
	return suppliers
}
