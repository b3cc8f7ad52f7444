package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"ferreteria/internal/core/tx"
	"ferreteria/pkg/logger"
)

var tracer = otel.Tracer("ferreteria/tx")

// Compile-time check that TxManager implements tx.Manager interface.
var _ tx.Manager = (*TxManager)(nil)

// TxManager manages database transactions with support for:
// - Configurable isolation levels
// - Statement timeout protection
// - Serialization conflict classification for the retry loop
// - Distributed tracing integration
type TxManager struct {
	pool *pgxpool.Pool

	// defaultIso applies when Options give no explicit isolation level.
	defaultIso tx.IsolationLevel
}

// NewTxManager creates a new transaction manager.
func NewTxManager(pool *Pool) *TxManager {
	return &TxManager{pool: pool.Pool, defaultIso: tx.ReadCommitted}
}

// NewTxManagerFromRawPool creates a new transaction manager from raw pgxpool.Pool.
func NewTxManagerFromRawPool(pool *pgxpool.Pool) *TxManager {
	return &TxManager{pool: pool, defaultIso: tx.ReadCommitted}
}

// SetDefaultIsolation sets the level used when options leave it unset.
// Call during wiring, before the manager starts serving transactions.
func (m *TxManager) SetDefaultIsolation(level tx.IsolationLevel) {
	if level != "" {
		m.defaultIso = level
	}
}

// txKey is the context key for active transaction.
type txKey struct{}

// Tx wraps pgx.Tx with metadata.
type Tx struct {
	pgx.Tx
}

// isoLevel maps configuration isolation names to pgx levels.
// SNAPSHOT maps to REPEATABLE READ, the closest Postgres equivalent
// (a consistent snapshot taken at transaction start).
func isoLevel(l tx.IsolationLevel) pgx.TxIsoLevel {
	switch l {
	case tx.ReadUncommitted:
		return pgx.ReadUncommitted
	case tx.RepeatableRead, tx.Snapshot:
		return pgx.RepeatableRead
	case tx.Serializable:
		return pgx.Serializable
	default:
		return pgx.ReadCommitted
	}
}

// RunInTransaction executes fn within a transaction at the default isolation level.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.RunInTransactionWithOptions(ctx, tx.DefaultOptions(), fn)
}

// RunInTransactionWithOptions executes fn with custom transaction options.
//
// Exactly one commit or one rollback happens per invocation. Errors from fn
// propagate unchanged after rollback, except driver-level serialization
// conflicts, which are wrapped for the retry loop. A nested call reuses the
// transaction already stored in ctx.
func (m *TxManager) RunInTransactionWithOptions(ctx context.Context, opts tx.Options, fn func(ctx context.Context) error) error {
	if opts.Isolation == "" {
		opts.Isolation = m.defaultIso
	}

	ctx, span := tracer.Start(ctx, "transaction",
		trace.WithAttributes(
			attribute.String("tx.isolation", string(opts.Isolation)),
		))
	defer span.End()

	if existing := m.GetTx(ctx); existing != nil {
		// Reuse the open transaction; commit/rollback stays with the owner.
		return fn(ctx)
	}

	return m.startNewTransaction(ctx, opts, fn)
}

// startNewTransaction begins a new database transaction.
func (m *TxManager) startNewTransaction(ctx context.Context, opts tx.Options, fn func(ctx context.Context) error) error {
	accessMode := pgx.ReadWrite
	if opts.ReadOnly {
		accessMode = pgx.ReadOnly
	}

	pgxTx, err := m.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   isoLevel(opts.Isolation),
		AccessMode: accessMode,
	})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	// Set statement timeout for protection against runaway queries
	if opts.StatementTimeout > 0 {
		_, err = pgxTx.Exec(ctx, fmt.Sprintf("SET LOCAL statement_timeout = '%dms'", opts.StatementTimeout.Milliseconds()))
		if err != nil {
			_ = pgxTx.Rollback(ctx)
			return fmt.Errorf("set statement_timeout: %w", err)
		}
	}

	// Store transaction in context
	txCtx := context.WithValue(ctx, txKey{}, &Tx{Tx: pgxTx})

	if err := fn(txCtx); err != nil {
		// Use background context for rollback to ensure it completes
		// even if the original context was cancelled
		if rbErr := pgxTx.Rollback(context.Background()); rbErr != nil {
			logger.Error(ctx, "rollback failed", "error", rbErr, "original_error", err)
		}
		return translateError(err)
	}

	if err := pgxTx.Commit(ctx); err != nil {
		// Serializable transactions can fail at commit time with 40001.
		if translated := translateError(err); translated != err {
			return translated
		}
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetTx returns the current transaction from context, or nil if none.
func (m *TxManager) GetTx(ctx context.Context) *Tx {
	if t, ok := ctx.Value(txKey{}).(*Tx); ok {
		return t
	}
	return nil
}

// Querier is the subset of statement execution shared by pool and transaction.
// Repositories work against it so they run both inside and outside transactions.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// GetQuerier returns appropriate querier for context: the transaction handle
// when inside a unit of work, the pool otherwise.
func (m *TxManager) GetQuerier(ctx context.Context) Querier {
	if t := m.GetTx(ctx); t != nil {
		return t.Tx
	}
	return m.pool
}

// ReadOnly executes fn in a read-only transaction.
func (m *TxManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	opts := tx.DefaultOptions()
	opts.ReadOnly = true
	return m.RunInTransactionWithOptions(ctx, opts, fn)
}
