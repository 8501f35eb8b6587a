package repository

import (
	"context"

	"gorm.io/gorm"
)

// activeTxKey marks the gorm transaction bound into a context by RunInTx.
// A struct key cannot collide with string-typed context values.
type activeTxKey struct{}

// TransactionManager runs a unit of work inside a single database
// transaction. Repositories called with the returned context write through
// that transaction, so a service can compose multi-table mutations (status
// change + stock adjustment + audit entry) that commit or roll back together.
type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

type transactionManager struct {
	db *gorm.DB
}

func NewTransactionManager(db *gorm.DB) TransactionManager {
	return &transactionManager{db: db}
}

func (t *transactionManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	// Joining an open transaction keeps nested service calls atomic with
	// their caller instead of committing halfway.
	if _, ok := ctx.Value(activeTxKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, activeTxKey{}, tx))
	})
}

// GetDB returns the transaction bound into ctx by RunInTx, or rootDB when the
// caller is not inside a unit of work.
func GetDB(ctx context.Context, rootDB *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(activeTxKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return rootDB.WithContext(ctx)
}
