package product

import (
	"context"
	"time"

	"ferreteria/internal/core/id"
	"ferreteria/internal/core/tx"
	"ferreteria/internal/domain"
	"ferreteria/internal/domain/audit"
	"ferreteria/pkg/logger"
)

// Service provides business operations for the product catalog.
type Service struct {
	repo      Repository
	txManager tx.Manager
	auditor   *audit.Appender
}

// NewService creates a new product service.
func NewService(repo Repository, txManager tx.Manager, auditor *audit.Appender) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
		auditor:   auditor,
	}
}

// Create inserts a new product.
func (s *Service) Create(ctx context.Context, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, p); err != nil {
			return err
		}
		s.auditor.Log(ctx, "products", audit.ActionInsert, p.ID)
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "product created", "id", p.ID, "code", p.Code)
	return nil
}

// GetByID retrieves a product.
func (s *Service) GetByID(ctx context.Context, productID id.ID) (*Product, error) {
	return s.repo.GetByID(ctx, productID)
}

// Update modifies an existing product.
func (s *Service) Update(ctx context.Context, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	p.UpdatedAt = time.Now().UTC()
	p.Version++

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, p); err != nil {
			return err
		}
		s.auditor.Log(ctx, "products", audit.ActionUpdate, p.ID)
		return nil
	})
}

// Delete soft-deletes a product.
func (s *Service) Delete(ctx context.Context, productID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Delete(ctx, productID); err != nil {
			return err
		}
		s.auditor.Log(ctx, "products", audit.ActionDelete, productID)
		return nil
	})
}

// List retrieves products with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Product], error) {
	return s.repo.List(ctx, filter)
}

// LowStock returns products at or below their reorder level.
func (s *Service) LowStock(ctx context.Context, limit int) ([]*Product, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.LowStock(ctx, limit)
}
