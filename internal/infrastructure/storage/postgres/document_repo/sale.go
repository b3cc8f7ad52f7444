package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"ferreteria/internal/core/id"
	"ferreteria/internal/domain"
	"ferreteria/internal/domain/documents/sale"
	"ferreteria/internal/infrastructure/storage/postgres"
)

const (
	salesTable     = "sales"
	saleLinesTable = "sale_lines"
)

// SaleRepo implements sale.Repository on PostgreSQL.
type SaleRepo struct {
	*baseDocumentRepo[*sale.Sale]
}

var _ sale.Repository = (*SaleRepo)(nil)

func NewSaleRepo(txManager *postgres.TxManager) *SaleRepo {
	return &SaleRepo{
		baseDocumentRepo: newBaseDocumentRepo(txManager, salesTable, saleLinesTable, func() *sale.Sale {
			return &sale.Sale{}
		}),
	}
}

// Create inserts the master row and fills in the database-assigned folio.
func (r *SaleRepo) Create(ctx context.Context, s *sale.Sale) error {
	folio, err := r.create(ctx, s)
	if err != nil {
		return err
	}
	s.Folio = folio
	return nil
}

// SaveLines batch-inserts the detail rows in line order.
func (r *SaleRepo) SaveLines(ctx context.Context, saleID id.ID, lines []sale.Line) error {
	rows := make([][]any, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, []any{l.ID, l.LineNo, l.ProductID, l.Quantity, l.UnitPrice, l.Subtotal})
	}
	return r.saveLines(ctx, "sale_id", saleID,
		[]string{"id", "line_no", "product_id", "quantity", "unit_price", "subtotal"}, rows)
}

func (r *SaleRepo) GetByID(ctx context.Context, saleID id.ID) (*sale.Sale, error) {
	return r.getByID(ctx, saleID)
}

// GetLines returns the detail rows in line order.
func (r *SaleRepo) GetLines(ctx context.Context, saleID id.ID) ([]sale.Line, error) {
	q := r.builder().
		Select("id", "line_no", "product_id", "quantity", "unit_price", "subtotal").
		From(saleLinesTable).
		Where(squirrel.Eq{"sale_id": saleID}).
		OrderBy("line_no ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []sale.Line
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get sale lines: %w", err)
	}

	return lines, nil
}

// List retrieves sales with document filters.
func (r *SaleRepo) List(ctx context.Context, filter sale.ListFilter) (domain.ListResult[*sale.Sale], error) {
	q := r.baseSelect()

	if filter.ClientID != nil {
		q = q.Where(squirrel.Eq{"client_id": *filter.ClientID})
	}
	if filter.CollaboratorID != nil {
		q = q.Where(squirrel.Eq{"collaborator_id": *filter.CollaboratorID})
	}
	q = applyDateRange(q, filter.DateFrom, filter.DateTo)

	return r.list(ctx, q, filter.ListFilter)
}
