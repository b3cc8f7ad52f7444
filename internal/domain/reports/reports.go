// Package reports provides read-only query facades for dashboards and
// period reports. No business logic lives here; services delegate straight
// to SQL and return what the store computed.
package reports

import (
	"context"
	"time"

	"ferreteria/internal/core/apperror"
	"ferreteria/internal/core/id"
	"ferreteria/internal/core/types"
)

// DashboardSummary is the front-page snapshot.
type DashboardSummary struct {
	Date time.Time `json:"date"`

	TodaySalesCount int64       `json:"todaySalesCount"`
	TodaySalesTotal types.Money `json:"todaySalesTotal"`

	ActiveRentals int64 `json:"activeRentals"`
	LowStockCount int64 `json:"lowStockCount"`
}

// SalesPeriodRow is one day of aggregated sales.
type SalesPeriodRow struct {
	Day   time.Time   `db:"day" json:"day"`
	Count int64       `db:"count" json:"count"`
	Total types.Money `db:"total" json:"total"`
}

// SalesReport aggregates sales over a period, one row per day.
type SalesReport struct {
	From  time.Time        `json:"from"`
	To    time.Time        `json:"to"`
	Rows  []SalesPeriodRow `json:"rows"`
	Total types.Money      `json:"total"`
}

// TopProductRow is one product ranked by quantity sold.
type TopProductRow struct {
	ProductID    id.ID       `db:"product_id" json:"productId"`
	ProductName  string      `db:"product_name" json:"productName"`
	QuantitySold int64       `db:"quantity_sold" json:"quantitySold"`
	Revenue      types.Money `db:"revenue" json:"revenue"`
}

// StockValueRow is one product's contribution to inventory valuation.
type StockValueRow struct {
	ProductID   id.ID       `db:"product_id" json:"productId"`
	ProductName string      `db:"product_name" json:"productName"`
	Stock       int64       `db:"stock" json:"stock"`
	UnitPrice   types.Money `db:"unit_price" json:"unitPrice"`
	Value       types.Money `db:"value" json:"value"`
}

// StockValuation is the current inventory valued at unit price.
type StockValuation struct {
	Rows       []StockValueRow `json:"rows"`
	TotalValue types.Money     `json:"totalValue"`
}

// Repository defines the report queries.
type Repository interface {
	DashboardSummary(ctx context.Context, day time.Time) (*DashboardSummary, error)
	SalesByPeriod(ctx context.Context, from, to time.Time) (*SalesReport, error)
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]TopProductRow, error)
	StockValuation(ctx context.Context) (*StockValuation, error)
}

// ReadOnlyRunner executes fn inside a read-only transaction, so a multi-query
// report reads one consistent snapshot.
type ReadOnlyRunner interface {
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service is a thin validation layer over the repository.
type Service struct {
	repo Repository
	tx   ReadOnlyRunner
}

func NewService(repo Repository, txRunner ReadOnlyRunner) *Service {
	return &Service{repo: repo, tx: txRunner}
}

func (s *Service) Dashboard(ctx context.Context) (*DashboardSummary, error) {
	var summary *DashboardSummary
	err := s.tx.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		summary, err = s.repo.DashboardSummary(ctx, time.Now().UTC())
		return err
	})
	return summary, err
}

func (s *Service) SalesByPeriod(ctx context.Context, from, to time.Time) (*SalesReport, error) {
	if to.Before(from) {
		return nil, apperror.NewValidation("period end precedes start").
			WithDetail("from", from).
			WithDetail("to", to)
	}

	var report *SalesReport
	err := s.tx.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		report, err = s.repo.SalesByPeriod(ctx, from, to)
		return err
	})
	return report, err
}

func (s *Service) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]TopProductRow, error) {
	if to.Before(from) {
		return nil, apperror.NewValidation("period end precedes start").
			WithDetail("from", from).
			WithDetail("to", to)
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	var rows []TopProductRow
	err := s.tx.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		rows, err = s.repo.TopProducts(ctx, from, to, limit)
		return err
	})
	return rows, err
}

func (s *Service) StockValuation(ctx context.Context) (*StockValuation, error) {
	var valuation *StockValuation
	err := s.tx.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		valuation, err = s.repo.StockValuation(ctx)
		return err
	})
	return valuation, err
}
