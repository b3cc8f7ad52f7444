// Package domain provides core business logic interfaces and types.
package domain

import (
	"time"

	"ferreteria/internal/core/id"
)

// ListFilter contains common filtering options for list operations.
type ListFilter struct {
	// Search performs a substring match on searchable fields
	Search string

	// IDs filters by specific IDs
	IDs []id.ID

	// IncludeDeleted includes soft-deleted records
	IncludeDeleted bool

	// OrderBy specifies sorting (e.g., "name", "created_at DESC")
	OrderBy string

	// Pagination
	Limit  int
	Offset int
}

// DefaultListFilter returns sensible defaults.
func DefaultListFilter() ListFilter {
	return ListFilter{
		Limit:   50,
		OrderBy: "name",
	}
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// DateRange bounds period-based queries (reports, movement history).
type DateRange struct {
	From *time.Time
	To   *time.Time
}
