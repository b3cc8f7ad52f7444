// Package document_repo provides PostgreSQL implementations for document
// repositories (sales, purchases, rentals). Documents are an immutable
// master row plus ordered detail lines.
package document_repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"ferreteria/internal/core/apperror"
	"ferreteria/internal/core/id"
	"ferreteria/internal/domain"
	"ferreteria/internal/infrastructure/storage/postgres"
)

// baseDocumentRepo provides common operations for document entities.
// Embed it in specific document repositories.
type baseDocumentRepo[T any] struct {
	txManager  *postgres.TxManager
	tableName  string
	linesTable string
	selectCols []string
	newFn      func() T
}

func newBaseDocumentRepo[T any](
	txManager *postgres.TxManager,
	tableName, linesTable string,
	newFn func() T,
) *baseDocumentRepo[T] {
	return &baseDocumentRepo[T]{
		txManager:  txManager,
		tableName:  tableName,
		linesTable: linesTable,
		selectCols: postgres.ExtractDBColumns[T](),
		newFn:      newFn,
	}
}

func (r *baseDocumentRepo[T]) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *baseDocumentRepo[T]) baseSelect() squirrel.SelectBuilder {
	return r.builder().
		Select(r.selectCols...).
		From(r.tableName)
}

// create inserts the master row. The folio column is filled by the table's
// sequence default; the assigned value is returned to the caller. Must run
// inside a transaction so the master row and its lines land together.
func (r *baseDocumentRepo[T]) create(ctx context.Context, entity T) (int64, error) {
	if r.txManager.GetTx(ctx) == nil {
		return 0, fmt.Errorf("document create requires an active transaction")
	}

	data := postgres.StructToMap(entity)
	delete(data, "folio") // assigned by the database

	q := r.builder().
		Insert(r.tableName).
		SetMap(data).
		Suffix("RETURNING folio")

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert: %w", err)
	}

	var folio int64
	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, args...).Scan(&folio); err != nil {
		return 0, fmt.Errorf("insert %s: %w", r.tableName, err)
	}

	return folio, nil
}

// saveLines batch-inserts detail rows via COPY, preserving line order.
func (r *baseDocumentRepo[T]) saveLines(ctx context.Context, docIDCol string, docID id.ID, columns []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}

	inserter := postgres.NewBatchInserter(r.txManager)
	cols := append([]string{docIDCol}, columns...)
	full := make([][]any, 0, len(rows))
	for _, row := range rows {
		full = append(full, append([]any{docID}, row...))
	}

	if _, err := inserter.CopyFromSlice(ctx, r.linesTable, cols, full); err != nil {
		return fmt.Errorf("copy %s: %w", r.linesTable, err)
	}
	return nil
}

// getByID retrieves a master row by ID.
func (r *baseDocumentRepo[T]) getByID(ctx context.Context, entityID id.ID) (T, error) {
	entity := r.newFn()

	q := r.baseSelect().
		Where(squirrel.Eq{"id": entityID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return entity, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, entity, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return entity, apperror.NewNotFound(r.tableName, entityID.String())
		}
		return entity, fmt.Errorf("get by id: %w", err)
	}

	return entity, nil
}

// getByIDForUpdate is getByID with a row-level lock, for lifecycle changes.
func (r *baseDocumentRepo[T]) getByIDForUpdate(ctx context.Context, entityID id.ID) (T, error) {
	entity := r.newFn()

	if r.txManager.GetTx(ctx) == nil {
		return entity, fmt.Errorf("locked read requires an active transaction")
	}

	q := r.baseSelect().
		Where(squirrel.Eq{"id": entityID}).
		Suffix("FOR UPDATE")

	sql, args, err := q.ToSql()
	if err != nil {
		return entity, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, entity, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return entity, apperror.NewNotFound(r.tableName, entityID.String())
		}
		return entity, fmt.Errorf("get by id for update: %w", err)
	}

	return entity, nil
}

// list runs a filtered SELECT with count, ordering and pagination.
func (r *baseDocumentRepo[T]) list(ctx context.Context, q squirrel.SelectBuilder, filter domain.ListFilter) (domain.ListResult[T], error) {
	result := domain.ListResult[T]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	countQ := r.builder().
		Select("COUNT(*)").
		FromSelect(q, "sub")

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	orderBy, err := r.parseOrderBy(filter.OrderBy)
	if err != nil {
		return result, err
	}
	q = q.OrderBy(orderBy)

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list: %w", err)
	}

	return result, nil
}

// applyDateRange bounds the document date column.
func applyDateRange(q squirrel.SelectBuilder, from, to *time.Time) squirrel.SelectBuilder {
	if from != nil {
		q = q.Where(squirrel.GtOrEq{"date": *from})
	}
	if to != nil {
		q = q.Where(squirrel.Lt{"date": *to})
	}
	return q
}

// parseOrderBy validates ordering against the column whitelist.
// Documents default to newest first.
func (r *baseDocumentRepo[T]) parseOrderBy(orderBy string) (string, error) {
	allowed := make(map[string]struct{}, len(r.selectCols))
	for _, col := range r.selectCols {
		allowed[col] = struct{}{}
	}

	if orderBy == "" {
		return "date DESC, folio DESC", nil
	}

	direction := "ASC"
	field := orderBy
	if strings.HasPrefix(orderBy, "-") {
		direction = "DESC"
		field = strings.TrimPrefix(orderBy, "-")
	} else if strings.HasPrefix(orderBy, "+") {
		field = strings.TrimPrefix(orderBy, "+")
	}

	field = strings.TrimSpace(field)
	if _, ok := allowed[field]; !ok {
		return "", apperror.NewValidation("invalid orderBy").
			WithDetail("orderBy", orderBy)
	}

	return field + " " + direction, nil
}
