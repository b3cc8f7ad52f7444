// Package report_repo provides PostgreSQL implementations for report
// repositories. Reads run on the pool; no transactions are opened.
package report_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"ferreteria/internal/core/types"
	"ferreteria/internal/domain/reports"
	"ferreteria/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ reports.Repository = (*ReportRepo)(nil)

// NewReportRepo creates a new report repository.
func NewReportRepo(txManager *postgres.TxManager) *ReportRepo {
	return &ReportRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// DashboardSummary aggregates the front-page counters in one round trip
// per concern.
func (r *ReportRepo) DashboardSummary(ctx context.Context, day time.Time) (*reports.DashboardSummary, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	summary := &reports.DashboardSummary{
		Date:            dayStart,
		TodaySalesTotal: types.ZeroMoney(),
	}

	querier := r.txManager.GetQuerier(ctx)

	salesSQL := `
		SELECT COUNT(*), COALESCE(SUM(total), 0)
		FROM sales
		WHERE date >= $1 AND date < $2
	`
	if err := querier.QueryRow(ctx, salesSQL, dayStart, dayEnd).
		Scan(&summary.TodaySalesCount, &summary.TodaySalesTotal); err != nil {
		return nil, fmt.Errorf("dashboard sales: %w", err)
	}

	rentalsSQL := `SELECT COUNT(*) FROM rentals WHERE status IN ('ACTIVE', 'OVERDUE')`
	if err := querier.QueryRow(ctx, rentalsSQL).Scan(&summary.ActiveRentals); err != nil {
		return nil, fmt.Errorf("dashboard rentals: %w", err)
	}

	lowStockSQL := `
		SELECT COUNT(*)
		FROM products
		WHERE stock <= min_stock AND deletion_mark = false
	`
	if err := querier.QueryRow(ctx, lowStockSQL).Scan(&summary.LowStockCount); err != nil {
		return nil, fmt.Errorf("dashboard low stock: %w", err)
	}

	return summary, nil
}

// SalesByPeriod aggregates sales per day over [from, to).
func (r *ReportRepo) SalesByPeriod(ctx context.Context, from, to time.Time) (*reports.SalesReport, error) {
	q := r.builder.
		Select(
			"date_trunc('day', date) AS day",
			"COUNT(*) AS count",
			"COALESCE(SUM(total), 0) AS total",
		).
		From("sales").
		Where(squirrel.GtOrEq{"date": from}).
		Where(squirrel.Lt{"date": to}).
		GroupBy("date_trunc('day', date)").
		OrderBy("day ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	report := &reports.SalesReport{
		From:  from,
		To:    to,
		Total: types.ZeroMoney(),
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &report.Rows, sql, args...); err != nil {
		return nil, fmt.Errorf("sales by period: %w", err)
	}

	for _, row := range report.Rows {
		report.Total = report.Total.Add(row.Total)
	}

	return report, nil
}

// TopProducts ranks products by quantity sold over [from, to).
func (r *ReportRepo) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]reports.TopProductRow, error) {
	sql := `
		SELECT
			l.product_id,
			p.name AS product_name,
			SUM(l.quantity) AS quantity_sold,
			COALESCE(SUM(l.subtotal), 0) AS revenue
		FROM sale_lines l
		JOIN sales s ON s.id = l.sale_id
		JOIN products p ON p.id = l.product_id
		WHERE s.date >= $1 AND s.date < $2
		GROUP BY l.product_id, p.name
		ORDER BY quantity_sold DESC, revenue DESC
		LIMIT $3
	`

	var rows []reports.TopProductRow
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, from, to, limit); err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}

	return rows, nil
}

// StockValuation values the current inventory at unit price.
func (r *ReportRepo) StockValuation(ctx context.Context) (*reports.StockValuation, error) {
	sql := `
		SELECT
			id AS product_id,
			name AS product_name,
			stock,
			unit_price,
			stock * unit_price AS value
		FROM products
		WHERE deletion_mark = false AND stock > 0
		ORDER BY value DESC
	`

	valuation := &reports.StockValuation{
		TotalValue: types.ZeroMoney(),
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &valuation.Rows, sql); err != nil {
		return nil, fmt.Errorf("stock valuation: %w", err)
	}

	for _, row := range valuation.Rows {
		valuation.TotalValue = valuation.TotalValue.Add(row.Value)
	}

	return valuation, nil
}
