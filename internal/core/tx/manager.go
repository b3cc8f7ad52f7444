// Package tx provides transaction management abstractions.
// This package defines interfaces that decouple domain logic from specific
// database implementations, following the Dependency Inversion Principle.
package tx

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// IsolationLevel names the transaction isolation levels recognized by
// configuration. SNAPSHOT maps to the closest level the store offers.
type IsolationLevel string

const (
	ReadUncommitted IsolationLevel = "READ_UNCOMMITTED"
	ReadCommitted   IsolationLevel = "READ_COMMITTED"
	RepeatableRead  IsolationLevel = "REPEATABLE_READ"
	Serializable    IsolationLevel = "SERIALIZABLE"
	Snapshot        IsolationLevel = "SNAPSHOT"
)

// ParseIsolationLevel converts a configuration string to an IsolationLevel.
// Empty input yields the READ_COMMITTED default.
func ParseIsolationLevel(s string) (IsolationLevel, error) {
	switch IsolationLevel(strings.ToUpper(strings.TrimSpace(s))) {
	case "":
		return ReadCommitted, nil
	case ReadUncommitted:
		return ReadUncommitted, nil
	case ReadCommitted:
		return ReadCommitted, nil
	case RepeatableRead:
		return RepeatableRead, nil
	case Serializable:
		return Serializable, nil
	case Snapshot:
		return Snapshot, nil
	default:
		return "", fmt.Errorf("unknown isolation level %q", s)
	}
}

// Options configures transaction behavior.
type Options struct {
	// Isolation left empty means the manager's configured default.
	Isolation IsolationLevel

	// ReadOnly transactions reject data modification (better performance, no locks).
	ReadOnly bool

	// StatementTimeout protects against long-running queries (default 30s).
	StatementTimeout time.Duration
}

// DefaultOptions returns production-safe defaults. Isolation stays empty so
// the manager's configured default applies.
func DefaultOptions() Options {
	return Options{
		StatementTimeout: 30 * time.Second,
	}
}

// Manager defines the contract for transaction management.
// Implementations handle BEGIN, COMMIT and ROLLBACK.
//
// Domain services depend on this interface, not concrete implementations.
// The actual implementation lives in infrastructure/storage/postgres.
//
// Semantics every implementation must honor:
//   - fn runs with the transactional handle stored in its ctx; repositories
//     pick it up from there. The handle must not be retained after fn returns.
//   - A nil return from fn commits; any error rolls back and is returned
//     unchanged to the caller. Exactly one commit or one rollback per call,
//     never both.
//   - Rollback failures are logged, never allowed to mask fn's error.
type Manager interface {
	// RunInTransaction executes fn within a database transaction at the
	// default isolation level.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// RunInTransactionWithOptions executes fn with explicit options.
	RunInTransactionWithOptions(ctx context.Context, opts Options, fn func(ctx context.Context) error) error
}
