package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTxTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Customer{}))
	return db
}

func countCustomers(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&model.Customer{}).Count(&count).Error)
	return count
}

func TestRunInTxRollsBackOnError(t *testing.T) {
	db := newTxTestDB(t)
	tm := NewTransactionManager(db)

	err := tm.RunInTx(context.Background(), func(txCtx context.Context) error {
		require.NoError(t, GetDB(txCtx, db).Create(&model.Customer{Name: "Ana"}).Error)
		return errors.New("boom")
	})
	require.Error(t, err)
	assert.Zero(t, countCustomers(t, db))
}

func TestNestedRunInTxJoinsOuterTransaction(t *testing.T) {
	db := newTxTestDB(t)
	tm := NewTransactionManager(db)

	err := tm.RunInTx(context.Background(), func(outerCtx context.Context) error {
		if err := GetDB(outerCtx, db).Create(&model.Customer{Name: "Ana"}).Error; err != nil {
			return err
		}
		// The inner unit of work must ride the outer transaction, so the
		// outer failure takes the inner write down with it.
		if err := tm.RunInTx(outerCtx, func(innerCtx context.Context) error {
			return GetDB(innerCtx, db).Create(&model.Customer{Name: "Bruno"}).Error
		}); err != nil {
			return err
		}
		return errors.New("boom")
	})
	require.Error(t, err)
	assert.Zero(t, countCustomers(t, db))
}

func TestGetDBFallsBackToRoot(t *testing.T) {
	db := newTxTestDB(t)
	require.NoError(t, GetDB(context.Background(), db).Create(&model.Customer{Name: "Ana"}).Error)
	assert.Equal(t, int64(1), countCustomers(t, db))
}
