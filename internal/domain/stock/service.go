package stock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ferreteria/internal/core/apperror"
	appctx "ferreteria/internal/core/context"
	"ferreteria/internal/core/id"
	"ferreteria/pkg/logger"
)

// Service is the stock ledger helper. Both operations must run inside the
// caller's unit of work: the snapshot read locks the product row, and the
// lock is held until that transaction finishes, which is what makes the
// check-then-debit sequence safe at READ COMMITTED.
type Service struct {
	repo Repository
}

// NewService creates a new stock service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// AssertSufficientStock verifies the product exists and has at least the
// requested quantity available. The read itself mutates nothing, but it
// acquires a row lock that outlives the call (until commit/rollback).
func (s *Service) AssertSufficientStock(ctx context.Context, productID id.ID, quantity int64) (ProductSnapshot, error) {
	if quantity <= 0 {
		return ProductSnapshot{}, apperror.NewValidation("quantity must be positive").
			WithDetail("quantity", quantity)
	}

	snap, err := s.repo.GetSnapshotForUpdate(ctx, productID)
	if err != nil {
		return ProductSnapshot{}, err
	}

	if snap.Available < quantity {
		return ProductSnapshot{}, apperror.NewInsufficientStock(snap.Name, quantity, snap.Available)
	}

	return snap, nil
}

// ApplyStockDelta adds the signed delta to the product's current quantity and
// appends one movement row with the absolute quantity and the movement type.
// Debits (negative delta) must be preceded by AssertSufficientStock in the
// same unit of work.
func (s *Service) ApplyStockDelta(ctx context.Context, productID id.ID, delta int64, movementType MovementType, referenceID *id.ID) error {
	if delta == 0 {
		return apperror.NewValidation("delta must be non-zero")
	}
	if !movementType.Valid() {
		return apperror.NewValidation(fmt.Sprintf("unknown movement type %q", movementType))
	}

	if err := s.repo.ApplyDelta(ctx, productID, delta); err != nil {
		if errors.Is(err, ErrStockGuard) {
			// The atomic guard fired without a prior assert, or the caller
			// raced itself. Surface as insufficient stock.
			snap, snapErr := s.repo.GetSnapshotForUpdate(ctx, productID)
			if snapErr != nil {
				return snapErr
			}
			return apperror.NewInsufficientStock(snap.Name, -delta, snap.Available)
		}
		return err
	}

	quantity := delta
	if quantity < 0 {
		quantity = -quantity
	}

	movement := Movement{
		ID:           id.New(),
		ProductID:    productID,
		MovementType: movementType,
		Quantity:     quantity,
		Delta:        delta,
		ReferenceID:  referenceID,
		Actor:        appctx.ActorID(ctx),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.AppendMovement(ctx, movement); err != nil {
		return fmt.Errorf("append movement: %w", err)
	}

	logger.Debug(ctx, "stock delta applied",
		"product_id", productID,
		"delta", delta,
		"movement_type", movementType,
	)

	return nil
}

// Adjust applies a manual stock correction as an ADJUSTMENT movement.
// Negative corrections are checked against available stock first.
func (s *Service) Adjust(ctx context.Context, productID id.ID, delta int64) error {
	if delta < 0 {
		if _, err := s.AssertSufficientStock(ctx, productID, -delta); err != nil {
			return err
		}
	}
	return s.ApplyStockDelta(ctx, productID, delta, MovementAdjustment, nil)
}

// MovementHistory returns the ledger history for a product.
func (s *Service) MovementHistory(ctx context.Context, productID id.ID, filter MovementFilter) ([]Movement, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	return s.repo.Movements(ctx, productID, filter)
}
