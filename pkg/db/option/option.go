package option

import (
	"strconv"
	"time"

	"github.com/pulsehub/pulsehub/pkg/db/pagination"
	"gorm.io/gorm"
)

// Option mutates a gorm statement before execution.
type Option interface {
	Apply(stmt *gorm.DB) *gorm.DB
}

type paginationOption struct {
	page pagination.Pagination
}

// ApplyPagination applies cursor pagination: rows strictly after the cursor
// in (created_at desc, id desc) order, fetching one extra row so callers can
// detect another page.
func ApplyPagination(page pagination.Pagination) Option {
	return &paginationOption{page: page}
}

func (o *paginationOption) Apply(stmt *gorm.DB) *gorm.DB {
	size := o.page.PageSize
	if size <= 0 {
		size = 25
	}

	if o.page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(o.page.PageToken)
		if err == nil && cursor != nil && cursor.CreatedAt != "" && cursor.ID != "" {
			// Bind typed values so the comparison works the same against
			// timestamp and bigint columns on every dialect.
			ts, tsErr := time.Parse(time.RFC3339Nano, cursor.CreatedAt)
			id, idErr := strconv.ParseInt(cursor.ID, 10, 64)
			if tsErr == nil && idErr == nil {
				stmt = stmt.Where("(created_at, id) < (?, ?)", ts, id)
			}
		}
	}

	return stmt.Limit(size + 1)
}
