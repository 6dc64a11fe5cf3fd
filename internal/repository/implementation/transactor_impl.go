package implementation

import (
	"context"

	"retroboard-be/internal/repository"

	"gorm.io/gorm"
)

type txKey struct{}

type GormTransactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) repository.Transactor {
	return &GormTransactor{db: db}
}

// WithinTransaction opens a transaction and stashes it in the context so the
// repositories in this package pick it up. A nested call joins the transaction
// already in flight instead of opening a second one.
func (t *GormTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func txFromContext(ctx context.Context) *gorm.DB {
	tx, _ := ctx.Value(txKey{}).(*gorm.DB)
	return tx
}

// dbFor resolves the handle a repository call should use: the transaction
// carried by the context when there is one, the shared pool otherwise.
func dbFor(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return db.WithContext(ctx)
}
