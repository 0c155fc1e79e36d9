package dbmetrics

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeTx struct {
	DBExecutor
}

func (f *fakeTx) Commit() error   { return nil }
func (f *fakeTx) Rollback() error { return nil }

type fakeDB struct {
	DBExecutor
}

func TestGetExecutor(t *testing.T) {
	db := &fakeDB{}
	tx := &fakeTx{}

	ctx := context.Background()
	assert.False(t, IsInTransaction(ctx))
	assert.Same(t, db, GetExecutor(ctx, db))

	txCtx := WithTx(ctx, tx)
	assert.True(t, IsInTransaction(txCtx))
	assert.Same(t, tx, GetExecutor(txCtx, db))
}

func TestOperation(t *testing.T) {
	assert.Equal(t, "select", Operation("SELECT id FROM bookings"))
	assert.Equal(t, "insert", Operation("\n\tINSERT INTO bookings"))
	assert.Equal(t, "unknown", Operation("   "))
}

var _ DBExecutor = (*sql.DB)(nil)
var _ DBExecutor = (*sql.Tx)(nil)
var _ TxExecutor = (*Tx)(nil)
