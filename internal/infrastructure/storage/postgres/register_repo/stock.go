// Package register_repo provides PostgreSQL implementations for the stock
// movement ledger and the on-hand quantities it guards.
package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"ferreteria/internal/core/apperror"
	"ferreteria/internal/core/id"
	"ferreteria/internal/domain/stock"
	"ferreteria/internal/infrastructure/storage/postgres"
)

const (
	stockMovementsTable = "stock_movements"
	productsTable       = "products"
)

// StockRepo implements stock.Repository. On-hand quantity lives on the
// products row; history lives in the append-only movements table.
type StockRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ stock.Repository = (*StockRepo)(nil)

// NewStockRepo creates a new stock register repository.
func NewStockRepo(txManager *postgres.TxManager) *StockRepo {
	return &StockRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetSnapshotForUpdate reads the product's stock row with a pessimistic
// lock. The lock is held until the owning transaction ends, so the checked
// quantity cannot be invalidated by a concurrent writer. Must run inside a
// transaction: outside one, FOR UPDATE releases at statement end and the
// check guards nothing.
func (r *StockRepo) GetSnapshotForUpdate(ctx context.Context, productID id.ID) (stock.ProductSnapshot, error) {
	var snap stock.ProductSnapshot

	if r.txManager.GetTx(ctx) == nil {
		return snap, fmt.Errorf("stock snapshot requires an active transaction")
	}

	sql := `
		SELECT id, name, stock, unit_price
		FROM products
		WHERE id = $1 AND deletion_mark = false
		FOR UPDATE
	`

	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &snap, sql, productID); err != nil {
		if pgxscan.NotFound(err) {
			return snap, apperror.NewNotFound("product", productID.String())
		}
		return snap, fmt.Errorf("get snapshot for update: %w", err)
	}

	return snap, nil
}

// ApplyDelta adds the signed delta to the product's stock. The statement
// carries its own non-negativity guard: even a caller that skipped the
// locked read cannot drive stock below zero.
func (r *StockRepo) ApplyDelta(ctx context.Context, productID id.ID, delta int64) error {
	if r.txManager.GetTx(ctx) == nil {
		return fmt.Errorf("stock delta requires an active transaction")
	}

	q := r.builder.
		Update(productsTable).
		Set("stock", squirrel.Expr("stock + ?", delta)).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": productID}).
		Where(squirrel.Expr("stock + ? >= 0", delta))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("apply delta: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Either the product is gone or the guard rejected the delta.
		exists, err := r.productExists(ctx, productID)
		if err != nil {
			return err
		}
		if !exists {
			return apperror.NewNotFound("product", productID.String())
		}
		return stock.ErrStockGuard
	}

	return nil
}

func (r *StockRepo) productExists(ctx context.Context, productID id.ID) (bool, error) {
	var exists bool
	sql := `SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`

	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, productID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check product exists: %w", err)
	}
	return exists, nil
}

// AppendMovement inserts one ledger row. The ledger is append-only; rows
// are never updated or deleted.
func (r *StockRepo) AppendMovement(ctx context.Context, m stock.Movement) error {
	q := r.builder.
		Insert(stockMovementsTable).
		Columns("id", "product_id", "movement_type", "quantity", "delta",
			"reference_id", "actor", "created_at").
		Values(m.ID, m.ProductID, m.MovementType, m.Quantity, m.Delta,
			m.ReferenceID, m.Actor, m.CreatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}

	return nil
}

// Movements returns ledger history for a product, newest first.
func (r *StockRepo) Movements(ctx context.Context, productID id.ID, filter stock.MovementFilter) ([]stock.Movement, error) {
	q := r.builder.
		Select("id", "product_id", "movement_type", "quantity", "delta",
			"reference_id", "actor", "created_at").
		From(stockMovementsTable).
		Where(squirrel.Eq{"product_id": productID}).
		OrderBy("created_at DESC")

	if filter.MovementType != nil {
		q = q.Where(squirrel.Eq{"movement_type": *filter.MovementType})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.Lt{"created_at": *filter.ToDate})
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	q = q.Limit(uint64(limit))
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []stock.Movement
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}

	return movements, nil
}
