// Package dto provides Data Transfer Objects for API requests.
package dto

import (
	"ferreteria/internal/core/apperror"
	"ferreteria/internal/core/id"
	"ferreteria/internal/core/types"
	"ferreteria/internal/domain"
)

// PaginationRequest contains pagination query parameters.
type PaginationRequest struct {
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
	Search   string `form:"search"`
	OrderBy  string `form:"orderBy"`
}

// ToListFilter converts pagination to the domain filter.
func (p *PaginationRequest) ToListFilter() domain.ListFilter {
	f := domain.DefaultListFilter()
	if p.PageSize > 0 && p.PageSize <= 100 {
		f.Limit = p.PageSize
	}
	if p.Page > 1 {
		f.Offset = (p.Page - 1) * f.Limit
	}
	f.Search = p.Search
	if p.OrderBy != "" {
		f.OrderBy = p.OrderBy
	}
	return f
}

// ListResponse wraps list results with totals.
type ListResponse struct {
	Items      any   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

func NewListResponse[T any](result domain.ListResult[T]) ListResponse {
	items := result.Items
	if items == nil {
		items = []T{}
	}
	return ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	}
}

// parseID validates a client-supplied UUID field.
func parseID(field, value string) (id.ID, error) {
	parsed, err := id.Parse(value)
	if err != nil {
		return id.Nil(), apperror.NewValidation("invalid id").
			WithDetail("field", field).
			WithDetail("value", value)
	}
	return parsed, nil
}

// parseMoney validates a client-supplied decimal amount.
func parseMoney(field, value string) (types.Money, error) {
	amount, err := types.NewMoneyFromString(value)
	if err != nil {
		return types.ZeroMoney(), apperror.NewValidation("invalid amount").
			WithDetail("field", field).
			WithDetail("value", value)
	}
	return amount, nil
}
