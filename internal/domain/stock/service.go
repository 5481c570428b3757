package stock

import (
	"context"
	"fmt"
	"time"

	"invoicely/internal/core/id"
	"invoicely/internal/core/types"
	"invoicely/pkg/logger"
)

// Backend is the part of the REST backend the inventory screens use.
type Backend interface {
	GetProduct(ctx context.Context, productID id.Ref) (Product, error)
	ListProducts(ctx context.Context) ([]Product, error)
	ListMovements(ctx context.Context, productID id.Ref) ([]Movement, error)
	AdjustStock(ctx context.Context, productID id.Ref, payload AdjustStockPayload) (Product, error)
}

// Service provides inventory operations on top of the backend.
// Persistence belongs to the backend; the service only computes and forwards.
type Service struct {
	backend Backend
	now     func() time.Time
}

// NewService creates a new inventory service.
func NewService(backend Backend) *Service {
	return &Service{
		backend: backend,
		now:     time.Now,
	}
}

// AdjustmentResult is returned after a submitted adjustment.
type AdjustmentResult struct {
	Product  Product  `json:"product"`
	Movement Movement `json:"movement"`
	Status   Status   `json:"status"`
}

// Preview computes the adjustment against the product's current stock without
// submitting it.
func (s *Service) Preview(ctx context.Context, req AdjustmentRequest) (AdjustmentResult, error) {
	if err := req.Validate(); err != nil {
		return AdjustmentResult{}, err
	}

	product, err := s.backend.GetProduct(ctx, req.ProductID)
	if err != nil {
		return AdjustmentResult{}, fmt.Errorf("get product: %w", err)
	}

	adj, err := Adjust(product.CurrentStock, req, s.now())
	if err != nil {
		return AdjustmentResult{}, err
	}

	product.CurrentStock = adj.NewStock
	return AdjustmentResult{
		Product:  product,
		Movement: adj.Movement,
		Status:   product.Status(),
	}, nil
}

// Adjust validates and computes the adjustment, then submits it once.
// The backend appends the movement and returns the updated product.
func (s *Service) Adjust(ctx context.Context, req AdjustmentRequest) (AdjustmentResult, error) {
	if err := req.Validate(); err != nil {
		return AdjustmentResult{}, err
	}

	product, err := s.backend.GetProduct(ctx, req.ProductID)
	if err != nil {
		return AdjustmentResult{}, fmt.Errorf("get product: %w", err)
	}

	adj, err := Adjust(product.CurrentStock, req, s.now())
	if err != nil {
		return AdjustmentResult{}, err
	}

	updated, err := s.backend.AdjustStock(ctx, req.ProductID, AdjustStockPayload{
		AdjustmentType: req.Type,
		Quantity:       req.Quantity,
		Notes:          adj.Movement.Notes,
	})
	if err != nil {
		return AdjustmentResult{}, fmt.Errorf("adjust stock: %w", err)
	}

	if updated.CurrentStock != adj.NewStock {
		// Another session moved stock in between; the backend's number wins.
		logger.Warn(ctx, "backend stock differs from computed stock",
			"product_id", req.ProductID,
			"computed", adj.NewStock.String(),
			"backend", updated.CurrentStock.String(),
		)
	}

	if adj.NewStock.IsNegative() {
		logger.Info(ctx, "stock adjusted below zero",
			"product_id", req.ProductID,
			"movement_type", req.Type,
			"new_stock", adj.NewStock.String(),
		)
	}

	return AdjustmentResult{
		Product:  updated,
		Movement: adj.Movement,
		Status:   updated.Status(),
	}, nil
}

// ListProducts loads products for read-only screens.
// Failures are logged and yield an empty list.
func (s *Service) ListProducts(ctx context.Context) []Product {
	products, err := s.backend.ListProducts(ctx)
	if err != nil {
		logger.Warn(ctx, "failed to load products", "error", err)
		return []Product{}
	}
	return products
}

// History is a product's verified movement history.
type History struct {
	Movements []Movement     `json:"movements"`
	Current   types.Quantity `json:"current_stock"`
	Verified  bool           `json:"verified"`
}

// History loads the product's movements and replays them through a Ledger.
// Load failures yield an empty history; a broken chain is returned unverified.
func (s *Service) History(ctx context.Context, productID id.Ref) History {
	movements, err := s.backend.ListMovements(ctx, productID)
	if err != nil {
		logger.Warn(ctx, "failed to load stock movements", "product_id", productID, "error", err)
		return History{Movements: []Movement{}}
	}

	ledger, err := LoadLedger(productID, movements)
	if err != nil {
		logger.Warn(ctx, "stock movement history is inconsistent", "product_id", productID, "error", err)
		return History{Movements: movements, Current: ledger.Current()}
	}

	return History{
		Movements: ledger.Movements(),
		Current:   ledger.Current(),
		Verified:  true,
	}
}
