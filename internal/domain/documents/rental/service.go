package rental

import (
	"context"
	"fmt"
	"time"

	"ferreteria/internal/core/apperror"
	"ferreteria/internal/core/id"
	"ferreteria/internal/core/tx"
	"ferreteria/internal/domain"
	"ferreteria/internal/domain/audit"
	"ferreteria/internal/domain/stock"
	"ferreteria/pkg/logger"
)

const tableName = "rentals"

// Service provides business operations for rental documents.
type Service struct {
	repo      Repository
	stock     *stock.Service
	auditor   *audit.Appender
	txManager tx.Manager
	retry     tx.RetryPolicy

	now func() time.Time
}

// NewService creates a new rental service.
func NewService(repo Repository, stockSvc *stock.Service, auditor *audit.Appender, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		stock:     stockSvc,
		auditor:   auditor,
		txManager: txManager,
		retry:     tx.DefaultRetryPolicy(),
		now:       time.Now,
	}
}

// Create persists a rental atomically: master record, detail lines, one
// stock debit per rented item, audit entry. Dispatching goods requires the
// same availability check as a sale.
func (s *Service) Create(ctx context.Context, doc *Rental) error {
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	err := tx.WithRetry(ctx, s.txManager, s.retry, tx.DefaultOptions(), func(ctx context.Context) error {
		for _, line := range doc.Lines {
			if _, err := s.stock.AssertSufficientStock(ctx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}

		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create rental: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}

		for _, line := range doc.Lines {
			if err := s.stock.ApplyStockDelta(ctx, line.ProductID, -line.Quantity, stock.MovementRentalOut, &doc.ID); err != nil {
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

	logger.Info(ctx, "rental created",
		"id", doc.ID,
		"folio", doc.Folio,
		"due", doc.DueDate,
		"lines", len(doc.Lines),
	)
	return nil
}

// Return closes an active rental: every rented item is credited back to
// stock and the document moves to RETURNED. Returning a rental that is not
// active (already returned) is a business rule violation, not a crash.
func (s *Service) Return(ctx context.Context, rentalID id.ID) (*Rental, error) {
	var doc *Rental

	err := tx.WithRetry(ctx, s.txManager, s.retry, tx.DefaultOptions(), func(ctx context.Context) error {
		var err error
		doc, err = s.repo.GetByIDForUpdate(ctx, rentalID)
		if err != nil {
			return err
		}

		if !doc.IsActive() {
			return apperror.NewBusinessRule(apperror.CodeRentalNotActive,
				fmt.Sprintf("Rental %d is not active", doc.Folio)).
				WithDetail("rentalId", doc.ID).
				WithDetail("status", doc.Status)
		}

		lines, err := s.repo.GetLines(ctx, rentalID)
		if err != nil {
			return fmt.Errorf("get lines: %w", err)
		}
		doc.Lines = lines

		for _, line := range lines {
			if err := s.stock.ApplyStockDelta(ctx, line.ProductID, line.Quantity, stock.MovementRentalReturn, &doc.ID); err != nil {
				return err
			}
		}

		returnedAt := s.now()
		doc.Status = StatusReturned
		doc.ReturnedAt = &returnedAt
		if err := s.repo.UpdateStatus(ctx, doc); err != nil {
			return fmt.Errorf("update status: %w", err)
		}

		s.auditor.LogChanges(ctx, tableName, audit.ActionUpdate, doc.ID, map[string]any{
			"status":     doc.Status,
			"returnedAt": returnedAt,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "rental returned",
		"id", doc.ID,
		"folio", doc.Folio,
		"lines", len(doc.Lines),
	)
	return doc, nil
}

// GetByID retrieves a rental with its lines.
func (s *Service) GetByID(ctx context.Context, rentalID id.ID) (*Rental, error) {
	doc, err := s.repo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, rentalID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	doc.Lines = lines

	return doc, nil
}

// List retrieves rentals with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Rental], error) {
	return s.repo.List(ctx, filter)
}
