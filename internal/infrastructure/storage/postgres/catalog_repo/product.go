package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"ferreteria/internal/domain"
	"ferreteria/internal/domain/catalogs/product"
	"ferreteria/internal/infrastructure/storage/postgres"
)

const productsTable = "products"

// ProductRepo implements product.Repository on PostgreSQL.
type ProductRepo struct {
	*baseCatalogRepo[*product.Product]
}

var _ product.Repository = (*ProductRepo)(nil)

func NewProductRepo(txManager *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		baseCatalogRepo: newBaseCatalogRepo(txManager, productsTable, func() *product.Product {
			return &product.Product{}
		}),
	}
}

// List retrieves products with catalog filters.
func (r *ProductRepo) List(ctx context.Context, filter product.ListFilter) (domain.ListResult[*product.Product], error) {
	q := r.baseSelect()

	if filter.CategoryID != nil {
		q = q.Where(squirrel.Eq{"category_id": *filter.CategoryID})
	}
	if filter.SupplierID != nil {
		q = q.Where(squirrel.Eq{"supplier_id": *filter.SupplierID})
	}

	return r.list(ctx, q, filter.ListFilter)
}

// LowStock returns non-deleted products at or below their reorder level,
// most depleted first.
func (r *ProductRepo) LowStock(ctx context.Context, limit int) ([]*product.Product, error) {
	q := r.baseSelect().
		Where(squirrel.Expr("stock <= min_stock")).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("stock - min_stock ASC", "name ASC")

	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*product.Product
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
	}

	return items, nil
}
