// Package option provides composable gorm query modifiers for list endpoints.
package option

import (
	"time"

	"github.com/SyedTahirHussan/codebuff-sub001/pkg/db/pagination"
	"gorm.io/gorm"
)

type QueryOption interface {
	Apply(*gorm.DB) *gorm.DB
}

type optionFunc func(*gorm.DB) *gorm.DB

func (f optionFunc) Apply(db *gorm.DB) *gorm.DB { return f(db) }

func WithLimit(limit int) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return db
		}
		return db.Limit(limit)
	})
}

func WithOrder(order string) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		if order == "" {
			return db
		}
		return db.Order(order)
	})
}

// ApplyPagination decodes a cursor token into a keyset predicate and fetches
// one extra row so the caller can detect a next page.
func ApplyPagination(p pagination.Pagination) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		size := p.PageSize
		if size <= 0 {
			size = 10
		}
		if size > 250 {
			size = 250
		}
		if p.PageToken != "" {
			if cursor, err := pagination.DecodeCursor(p.PageToken); err == nil && cursor.CreatedAt != "" {
				// Bind the timestamp as time.Time so the driver renders it in
				// the same format it stores.
				if at, err := time.Parse(time.RFC3339Nano, cursor.CreatedAt); err == nil {
					db = db.Where("(created_at, id) < (?, ?)", at, cursor.ID)
				}
			}
		}
		return db.Order("created_at DESC, id DESC").Limit(size + 1)
	})
}
