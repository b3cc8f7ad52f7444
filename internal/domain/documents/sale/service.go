package sale

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

const tableName = "sales"

// Service provides business operations for sale documents.
type Service struct {
	repo      Repository
	stock     *stock.Service
	auditor   *audit.Appender
	txManager tx.Manager
	retry     tx.RetryPolicy
}

// NewService creates a new sale service.
func NewService(repo Repository, stockSvc *stock.Service, auditor *audit.Appender, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		stock:     stockSvc,
		auditor:   auditor,
		txManager: txManager,
		retry:     tx.DefaultRetryPolicy(),
	}
}

// Create persists a sale atomically: master record, detail lines in input
// order, one stock debit per line, audit entry. Validation failures reject
// before any transaction opens; any in-transaction failure rolls the whole
// unit back. The unit is retried on serialization conflicts.
func (s *Service) Create(ctx context.Context, doc *Sale) error {
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	err := tx.WithRetry(ctx, s.txManager, s.retry, tx.DefaultOptions(), func(ctx context.Context) error {
		// Check and lock every product row before writing anything:
		// insufficient stock on line N must leave no trace of lines 1..N-1.
		for _, line := range doc.Lines {
			if _, err := s.stock.AssertSufficientStock(ctx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}

		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create sale: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}

		for _, line := range doc.Lines {
			if err := s.stock.ApplyStockDelta(ctx, line.ProductID, -line.Quantity, stock.MovementSale, &doc.ID); err != nil {
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

	logger.Info(ctx, "sale created",
		"id", doc.ID,
		"folio", doc.Folio,
		"total", doc.Total,
		"lines", len(doc.Lines),
	)
	return nil
}

// GetByID retrieves a sale with its lines.
func (s *Service) GetByID(ctx context.Context, saleID id.ID) (*Sale, error) {
	doc, err := s.repo.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	doc.Lines = lines

	return doc, nil
}

// List retrieves sales with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Sale], error) {
	return s.repo.List(ctx, filter)
}
