package persistence

import (
	"context"

	"github.com/books/backend/internal/domain/shared"
	"gorm.io/gorm"
)

type txContextKey struct{}

// GormUnitOfWork implements shared.UnitOfWork on a GORM database. The
// open transaction travels in the context, where every repository picks
// it up through dbFrom, so a whole service operation shares one commit.
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a new GormUnitOfWork
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// Execute runs fn inside a database transaction. A context that already
// carries a transaction joins it; the outermost Execute owns the commit
// or rollback.
func (u *GormUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txContextKey{}, tx))
	})
}

// dbFrom returns the transaction carried by the context, or the
// repository's own handle when no unit of work is open. Row locks taken
// through the returned handle hold until the enclosing transaction
// ends.
func dbFrom(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback.WithContext(ctx)
}

var _ shared.UnitOfWork = (*GormUnitOfWork)(nil)
