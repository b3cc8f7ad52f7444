package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"ferreteria/internal/core/apperror"
	"ferreteria/internal/core/id"
	"ferreteria/internal/domain"
	"ferreteria/internal/domain/documents/rental"
	"ferreteria/internal/infrastructure/storage/postgres"
)

const (
	rentalsTable     = "rentals"
	rentalLinesTable = "rental_lines"
)

// RentalRepo implements rental.Repository on PostgreSQL.
type RentalRepo struct {
	*baseDocumentRepo[*rental.Rental]
}

var _ rental.Repository = (*RentalRepo)(nil)

func NewRentalRepo(txManager *postgres.TxManager) *RentalRepo {
	return &RentalRepo{
		baseDocumentRepo: newBaseDocumentRepo(txManager, rentalsTable, rentalLinesTable, func() *rental.Rental {
			return &rental.Rental{}
		}),
	}
}

// Create inserts the master row and fills in the database-assigned folio.
func (r *RentalRepo) Create(ctx context.Context, doc *rental.Rental) error {
	folio, err := r.create(ctx, doc)
	if err != nil {
		return err
	}
	doc.Folio = folio
	return nil
}

// SaveLines batch-inserts the detail rows in line order.
func (r *RentalRepo) SaveLines(ctx context.Context, rentalID id.ID, lines []rental.Line) error {
	rows := make([][]any, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, []any{l.ID, l.LineNo, l.ProductID, l.Quantity, l.DailyRate, l.Subtotal})
	}
	return r.saveLines(ctx, "rental_id", rentalID,
		[]string{"id", "line_no", "product_id", "quantity", "daily_rate", "subtotal"}, rows)
}

func (r *RentalRepo) GetByID(ctx context.Context, rentalID id.ID) (*rental.Rental, error) {
	return r.getByID(ctx, rentalID)
}

// GetByIDForUpdate locks the master row for the enclosing transaction.
func (r *RentalRepo) GetByIDForUpdate(ctx context.Context, rentalID id.ID) (*rental.Rental, error) {
	return r.getByIDForUpdate(ctx, rentalID)
}

// GetLines returns the detail rows in line order.
func (r *RentalRepo) GetLines(ctx context.Context, rentalID id.ID) ([]rental.Line, error) {
	q := r.builder().
		Select("id", "line_no", "product_id", "quantity", "daily_rate", "subtotal").
		From(rentalLinesTable).
		Where(squirrel.Eq{"rental_id": rentalID}).
		OrderBy("line_no ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []rental.Line
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get rental lines: %w", err)
	}

	return lines, nil
}

// UpdateStatus persists a lifecycle change with optimistic locking.
func (r *RentalRepo) UpdateStatus(ctx context.Context, doc *rental.Rental) error {
	q := r.builder().
		Update(rentalsTable).
		Set("status", doc.Status).
		Set("returned_at", doc.ReturnedAt).
		Set("updated_at", squirrel.Expr("now()")).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": doc.ID}).
		Where(squirrel.Eq{"version": doc.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update rental status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(rentalsTable, doc.ID)
	}

	doc.Version++
	return nil
}

// List retrieves rentals with document filters.
func (r *RentalRepo) List(ctx context.Context, filter rental.ListFilter) (domain.ListResult[*rental.Rental], error) {
	q := r.baseSelect()

	if filter.ClientID != nil {
		q = q.Where(squirrel.Eq{"client_id": *filter.ClientID})
	}
	if filter.CollaboratorID != nil {
		q = q.Where(squirrel.Eq{"collaborator_id": *filter.CollaboratorID})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	q = applyDateRange(q, filter.DateFrom, filter.DateTo)

	return r.list(ctx, q, filter.ListFilter)
}
