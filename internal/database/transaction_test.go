package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newItemsTable(t *testing.T) Database {
	t.Helper()
	db := newTestDatabase(t)
	require.NoError(t, db.Session(context.Background()).
		Exec("CREATE TABLE test_items (id INTEGER PRIMARY KEY, name TEXT)").Error)
	return db
}

func countItems(t *testing.T, db Database) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Session(context.Background()).Raw("SELECT COUNT(*) FROM test_items").Scan(&count).Error)
	return count
}

func TestTransaction_Commit(t *testing.T) {
	ctx := context.Background()
	db := newItemsTable(t)

	txn, err := NewTransaction(ctx, db)
	require.NoError(t, err)
	require.NoError(t, txn.Session().Exec("INSERT INTO test_items (name) VALUES (?)", "item1").Error)
	require.NoError(t, txn.Commit())

	assert.Equal(t, int64(1), countItems(t, db))
	assert.NoError(t, txn.Commit(), "second commit is a no-op")
	assert.NoError(t, txn.Rollback(), "rollback after commit is a no-op")
}

func TestTransaction_Rollback(t *testing.T) {
	ctx := context.Background()
	db := newItemsTable(t)

	txn, err := NewTransaction(ctx, db)
	require.NoError(t, err)
	require.NoError(t, txn.Session().Exec("INSERT INTO test_items (name) VALUES (?)", "item1").Error)
	require.NoError(t, txn.Rollback())

	assert.Equal(t, int64(0), countItems(t, db))
	assert.NoError(t, txn.Rollback())
}

func TestWithTransaction(t *testing.T) {
	ctx := context.Background()
	db := newItemsTable(t)

	err := WithTransaction(ctx, db, func(tx *gorm.DB) error {
		return tx.Exec("INSERT INTO test_items (name) VALUES (?)", "kept").Error
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = WithTransaction(ctx, db, func(tx *gorm.DB) error {
		if err := tx.Exec("INSERT INTO test_items (name) VALUES (?)", "discarded").Error; err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, int64(1), countItems(t, db))
}
