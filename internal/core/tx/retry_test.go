package tx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ferreteria/internal/core/apperror"
)

// mockManager counts executions without touching a database.
type mockManager struct {
	calls int
	errs  []error // error per attempt; nil past the end
}

func (m *mockManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.RunInTransactionWithOptions(ctx, DefaultOptions(), fn)
}

func (m *mockManager) RunInTransactionWithOptions(ctx context.Context, opts Options, fn func(ctx context.Context) error) error {
	m.calls++
	if err := fn(ctx); err != nil {
		return err
	}
	if m.calls <= len(m.errs) {
		return m.errs[m.calls-1]
	}
	return nil
}

func fastPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, Multiplier: 2, MaxDelay: 4 * time.Millisecond}
}

func TestWithRetry_PersistentConflictExhaustsAttempts(t *testing.T) {
	conflict := apperror.NewSerializationConflict(errors.New("deadlock detected"))
	m := &mockManager{errs: []error{conflict, conflict, conflict}}

	bodyCalls := 0
	err := WithRetry(context.Background(), m, fastPolicy(), DefaultOptions(), func(ctx context.Context) error {
		bodyCalls++
		return nil
	})

	assert.Equal(t, 3, m.calls)
	assert.Equal(t, 3, bodyCalls)
	assert.True(t, apperror.IsSerializationConflict(err))
}

func TestWithRetry_ConflictThenSuccess(t *testing.T) {
	conflict := apperror.NewSerializationConflict(errors.New("serialization failure"))
	m := &mockManager{errs: []error{conflict}}

	err := WithRetry(context.Background(), m, fastPolicy(), DefaultOptions(), func(ctx context.Context) error {
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, m.calls)
}

func TestWithRetry_NonConflictPropagatesImmediately(t *testing.T) {
	m := &mockManager{}
	boom := apperror.NewValidation("bad input")

	start := time.Now()
	err := WithRetry(context.Background(), m, fastPolicy(), DefaultOptions(), func(ctx context.Context) error {
		return boom
	})

	assert.Equal(t, 1, m.calls)
	assert.Same(t, boom, err.(*apperror.AppError))
	assert.Less(t, time.Since(start), 50*time.Millisecond, "no retry delay should be incurred")
}

func TestWithRetry_SuccessRunsOnce(t *testing.T) {
	m := &mockManager{}
	err := WithRetry(context.Background(), m, fastPolicy(), DefaultOptions(), func(ctx context.Context) error {
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, m.calls)
}

func TestRetryPolicy_Backoff(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 5, BaseDelay: 100 * time.Millisecond, Multiplier: 2, MaxDelay: 2 * time.Second}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, 1600 * time.Millisecond},
		{6, 2 * time.Second}, // capped
		{10, 2 * time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, p.Backoff(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestParseIsolationLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    IsolationLevel
		wantErr bool
	}{
		{"", ReadCommitted, false},
		{"READ_COMMITTED", ReadCommitted, false},
		{"read_committed", ReadCommitted, false},
		{" SERIALIZABLE ", Serializable, false},
		{"REPEATABLE_READ", RepeatableRead, false},
		{"READ_UNCOMMITTED", ReadUncommitted, false},
		{"SNAPSHOT", Snapshot, false},
		{"CHAOS", "", true},
	}

	for _, tt := range tests {
		got, err := ParseIsolationLevel(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		assert.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}
