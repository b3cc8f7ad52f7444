package stock

import (
	"context"
	"errors"

	"ferreteria/internal/core/id"
)

// ErrStockGuard is returned by ApplyDelta when the atomic re-check rejects
// the update because stock would go negative. Callers that ran
// AssertSufficientStock first should treat it as an internal inconsistency.
var ErrStockGuard = errors.New("stock guard rejected delta")

// Repository defines ledger storage operations. All mutating methods require
// an active transaction in ctx; implementations must refuse to run outside
// one.
type Repository interface {
	// GetSnapshotForUpdate reads a product's stock row with a row-level lock
	// (SELECT ... FOR UPDATE). The lock is held until the owning transaction
	// commits or rolls back, so a concurrent debit cannot invalidate the
	// check before the matching delta lands.
	GetSnapshotForUpdate(ctx context.Context, productID id.ID) (ProductSnapshot, error)

	// ApplyDelta adds the signed delta to the product's current stock and
	// stamps updated_at. The statement itself re-checks stock + delta >= 0;
	// a guard failure is reported as ErrStockGuard.
	ApplyDelta(ctx context.Context, productID id.ID, delta int64) error

	// AppendMovement inserts one ledger row.
	AppendMovement(ctx context.Context, m Movement) error

	// Movements returns the ledger history for a product, newest first.
	Movements(ctx context.Context, productID id.ID, filter MovementFilter) ([]Movement, error)
}
