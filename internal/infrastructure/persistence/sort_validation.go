package persistence

import (
	"slices"
	"strings"

	"github.com/shopbill/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sortColumns is the set of columns a list endpoint may be ordered by.
// Anything outside it falls back to the default column, so caller input never
// reaches the ORDER BY clause unchecked.
type sortColumns struct {
	fallback string
	allowed  []string
}

var (
	productSort  = sortColumns{"name", []string{"created_at", "updated_at", "name", "sku", "price", "stock_quantity"}}
	categorySort = sortColumns{"name", []string{"created_at", "updated_at", "name"}}
	customerSort = sortColumns{"name", []string{"created_at", "updated_at", "name"}}
	invoiceSort  = sortColumns{"invoice_date", []string{"created_at", "updated_at", "invoice_number", "invoice_date", "due_date", "total_amount"}}
	movementSort = sortColumns{"created_at", []string{"created_at"}}
)

func (s sortColumns) column(requested string) string {
	requested = strings.TrimSpace(requested)
	if slices.Contains(s.allowed, requested) {
		return requested
	}
	return s.fallback
}

// descending is true unless dir asks for ascending order
func descending(dir string) bool {
	return !strings.EqualFold(strings.TrimSpace(dir), "asc")
}

// paginate orders by the requested column, then by primary key so pages are
// stable, and applies offset and limit.
func paginate(query *gorm.DB, filter shared.Filter, cols sortColumns) *gorm.DB {
	query = query.Order(clause.OrderByColumn{
		Column: clause.Column{Name: cols.column(filter.OrderBy)},
		Desc:   descending(filter.OrderDir),
	}).Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}

// likePattern builds a case-insensitive LIKE pattern. Columns are compared
// with LOWER() so the query runs on PostgreSQL and SQLite alike.
func likePattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}
