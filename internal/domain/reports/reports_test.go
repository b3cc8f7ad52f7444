package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ferreteria/internal/core/apperror"
)

type mockReportRepo struct {
	lastLimit int
}

func (m *mockReportRepo) DashboardSummary(ctx context.Context, day time.Time) (*DashboardSummary, error) {
	return &DashboardSummary{Date: day}, nil
}

func (m *mockReportRepo) SalesByPeriod(ctx context.Context, from, to time.Time) (*SalesReport, error) {
	return &SalesReport{From: from, To: to}, nil
}

func (m *mockReportRepo) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]TopProductRow, error) {
	m.lastLimit = limit
	return nil, nil
}

func (m *mockReportRepo) StockValuation(ctx context.Context) (*StockValuation, error) {
	return &StockValuation{}, nil
}

// mockReadOnlyRunner counts read-only transactions and runs fn inline.
type mockReadOnlyRunner struct {
	calls int
}

func (m *mockReadOnlyRunner) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

func TestSalesByPeriod_RejectsInvertedPeriod(t *testing.T) {
	svc := NewService(&mockReportRepo{}, &mockReadOnlyRunner{})

	from := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, -7)

	_, err := svc.SalesByPeriod(context.Background(), from, to)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestTopProducts_ClampsLimit(t *testing.T) {
	repo := &mockReportRepo{}
	svc := NewService(repo, &mockReadOnlyRunner{})

	from := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	tests := []struct {
		in   int
		want int
	}{
		{0, 10},
		{-5, 10},
		{101, 10},
		{25, 25},
	}

	for _, tt := range tests {
		_, err := svc.TopProducts(context.Background(), from, to, tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, repo.lastLimit)
	}
}

func TestReads_RunInsideReadOnlyTransaction(t *testing.T) {
	runner := &mockReadOnlyRunner{}
	svc := NewService(&mockReportRepo{}, runner)

	from := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	_, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	_, err = svc.SalesByPeriod(context.Background(), from, to)
	require.NoError(t, err)
	_, err = svc.TopProducts(context.Background(), from, to, 10)
	require.NoError(t, err)
	_, err = svc.StockValuation(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, runner.calls)
}

func TestSalesByPeriod_ValidationSkipsTransaction(t *testing.T) {
	runner := &mockReadOnlyRunner{}
	svc := NewService(&mockReportRepo{}, runner)

	from := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)

	_, err := svc.SalesByPeriod(context.Background(), from, from.AddDate(0, 0, -1))
	assert.Error(t, err)
	assert.Zero(t, runner.calls)
}
