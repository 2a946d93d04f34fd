package option

import (
	"fmt"

	"gorm.io/gorm"
)

// QueryOption mutates a select statement.
type QueryOption interface {
	Apply(stmt *gorm.DB) *gorm.DB
}

type QueryOptionFunc func(stmt *gorm.DB) *gorm.DB

func (f QueryOptionFunc) Apply(stmt *gorm.DB) *gorm.DB {
	return f(stmt)
}

// Where adds an extra condition.
func Where(query string, args ...any) QueryOption {
	return QueryOptionFunc(func(stmt *gorm.DB) *gorm.DB {
		return stmt.Where(query, args...)
	})
}

// In restricts column to values.
func In[V any](column string, values []V) QueryOption {
	return QueryOptionFunc(func(stmt *gorm.DB) *gorm.DB {
		return stmt.Where(fmt.Sprintf("%s IN ?", column), values)
	})
}

func OrderBy(order string) QueryOption {
	return QueryOptionFunc(func(stmt *gorm.DB) *gorm.DB {
		return stmt.Order(order)
	})
}

// NewestFirst orders by creation time with id as the tie breaker.
func NewestFirst() QueryOption {
	return OrderBy("created_at desc, id desc")
}

func Limit(n int) QueryOption {
	return QueryOptionFunc(func(stmt *gorm.DB) *gorm.DB {
		if n <= 0 {
			return stmt
		}
		return stmt.Limit(n)
	})
}

// ForUpdate locks selected rows on dialects that support it.
func ForUpdate() QueryOption {
	return QueryOptionFunc(func(stmt *gorm.DB) *gorm.DB {
		if stmt.Dialector.Name() == "sqlite" {
			return stmt
		}
		return stmt.Clauses(clauseForUpdate)
	})
}
