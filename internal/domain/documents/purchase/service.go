package purchase

import (
	"context"
	"fmt"

	"ferreteria/internal/core/id"
	"ferreteria/internal/core/tx"
	"ferreteria/internal/domain"
	"ferreteria/internal/domain/audit"
	"ferreteria/internal/domain/stock"
	"ferreteria/pkg/logger"
)

const tableName = "purchases"

// Service provides business operations for purchase documents.
type Service struct {
	repo      Repository
	stock     *stock.Service
	auditor   *audit.Appender
	txManager tx.Manager
	retry     tx.RetryPolicy
}

// NewService creates a new purchase service.
func NewService(repo Repository, stockSvc *stock.Service, auditor *audit.Appender, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		stock:     stockSvc,
		auditor:   auditor,
		txManager: txManager,
		retry:     tx.DefaultRetryPolicy(),
	}
}

// Create persists a purchase atomically: master record, detail lines in
// input order, one stock credit per line, audit entry. Incoming goods need
// no availability check. The unit is retried on serialization conflicts.
func (s *Service) Create(ctx context.Context, doc *Purchase) error {
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	err := tx.WithRetry(ctx, s.txManager, s.retry, tx.DefaultOptions(), func(ctx context.Context) error {
		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create purchase: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}

		for _, line := range doc.Lines {
			if err := s.stock.ApplyStockDelta(ctx, line.ProductID, line.Quantity, stock.MovementPurchase, &doc.ID); err != nil {
				return err
			}
		}

		// Best-effort; never aborts the transaction.
		s.auditor.Log(ctx, tableName, audit.ActionInsert, doc.ID)
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "purchase created",
		"id", doc.ID,
		"folio", doc.Folio,
		"total", doc.Total,
		"lines", len(doc.Lines),
	)
	return nil
}

// GetByID retrieves a purchase with its lines.
func (s *Service) GetByID(ctx context.Context, purchaseID id.ID) (*Purchase, error) {
	doc, err := s.repo.GetByID(ctx, purchaseID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	doc.Lines = lines

	return doc, nil
}

// List retrieves purchases with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Purchase], error) {
	return s.repo.List(ctx, filter)
}
