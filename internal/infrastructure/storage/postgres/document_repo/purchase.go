package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"ferreteria/internal/core/id"
	"ferreteria/internal/domain"
	"ferreteria/internal/domain/documents/purchase"
	"ferreteria/internal/infrastructure/storage/postgres"
)

const (
	purchasesTable     = "purchases"
	purchaseLinesTable = "purchase_lines"
)

// PurchaseRepo implements purchase.Repository on PostgreSQL.
type PurchaseRepo struct {
	*baseDocumentRepo[*purchase.Purchase]
}

var _ purchase.Repository = (*PurchaseRepo)(nil)

func NewPurchaseRepo(txManager *postgres.TxManager) *PurchaseRepo {
	return &PurchaseRepo{
		baseDocumentRepo: newBaseDocumentRepo(txManager, purchasesTable, purchaseLinesTable, func() *purchase.Purchase {
			return &purchase.Purchase{}
		}),
	}
}

// Create inserts the master row and fills in the database-assigned folio.
func (r *PurchaseRepo) Create(ctx context.Context, p *purchase.Purchase) error {
	folio, err := r.create(ctx, p)
	if err != nil {
		return err
	}
	p.Folio = folio
	return nil
}

// SaveLines batch-inserts the detail rows in line order.
func (r *PurchaseRepo) SaveLines(ctx context.Context, purchaseID id.ID, lines []purchase.Line) error {
	rows := make([][]any, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, []any{l.ID, l.LineNo, l.ProductID, l.Quantity, l.UnitCost, l.Subtotal})
	}
	return r.saveLines(ctx, "purchase_id", purchaseID,
		[]string{"id", "line_no", "product_id", "quantity", "unit_cost", "subtotal"}, rows)
}

func (r *PurchaseRepo) GetByID(ctx context.Context, purchaseID id.ID) (*purchase.Purchase, error) {
	return r.getByID(ctx, purchaseID)
}

// GetLines returns the detail rows in line order.
func (r *PurchaseRepo) GetLines(ctx context.Context, purchaseID id.ID) ([]purchase.Line, error) {
	q := r.builder().
		Select("id", "line_no", "product_id", "quantity", "unit_cost", "subtotal").
		From(purchaseLinesTable).
		Where(squirrel.Eq{"purchase_id": purchaseID}).
		OrderBy("line_no ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []purchase.Line
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get purchase lines: %w", err)
	}

	return lines, nil
}

// List retrieves purchases with document filters.
func (r *PurchaseRepo) List(ctx context.Context, filter purchase.ListFilter) (domain.ListResult[*purchase.Purchase], error) {
	q := r.baseSelect()

	if filter.SupplierID != nil {
		q = q.Where(squirrel.Eq{"supplier_id": *filter.SupplierID})
	}
	if filter.CollaboratorID != nil {
		q = q.Where(squirrel.Eq{"collaborator_id": *filter.CollaboratorID})
	}
	q = applyDateRange(q, filter.DateFrom, filter.DateTo)

	return r.list(ctx, q, filter.ListFilter)
}
