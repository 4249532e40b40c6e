package mysql

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/storage"
)

func TestStorage_ReconcileTx_Disabled(t *testing.T) {
	requireDB(t)
	cleanupTestDB(t)

	_, _, err := testStorage.ReconcileTx(context.Background(), func(storage.Balances) (*storage.Transaction, error) {
		return nil, nil
	})
	assert.ErrorIs(t, err, storage.ErrRegisterDisabled)
}

func TestStorage_ReconcileTx_PostsAdjustment(t *testing.T) {
	requireDB(t)
	cleanupTestDB(t)
	ctx := context.Background()

	start := time.Now().Truncate(time.Second)
	require.NoError(t, testStorage.SaveCashRegisterSettings(ctx, storage.CashRegisterSettings{
		CashRegisterEnabled: true, CashRegisterStartDate: &start,
	}))
	_, err := testStorage.CreateTransaction(ctx, storage.Transaction{
		Category: "Прибуток", Amount: 100, Cash: 100, PaymentType: "cash", DateExecuted: start,
	})
	require.NoError(t, err)

	after, entry, err := testStorage.ReconcileTx(ctx, func(cur storage.Balances) (*storage.Transaction, error) {
		assert.Equal(t, 100.0, cur.Cash)
		return &storage.Transaction{Category: "Коригування", Amount: 20, Cash: 20, DateExecuted: start}, nil
	})
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.NotZero(t, entry.ID)
	assert.Equal(t, 120.0, after.Cash)

	list, err := testStorage.ListTransactions(ctx, storage.TransactionFilter{Category: "Коригування"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestStorage_SnapshotRoundTrip(t *testing.T) {
	requireDB(t)
	cleanupTestDB(t)
	ctx := context.Background()

	createTestRepair(t, 30, "Snapshot")
	_, err := testStorage.CreateExecutor(ctx, storage.Executor{Name: "Андрій", SalaryPercent: 50})
	require.NoError(t, err)

	snap, err := testStorage.ExportSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Repairs, 1)

	cleanupTestDB(t)
	require.NoError(t, testStorage.RestoreSnapshot(ctx, snap))

	repairs, err := testStorage.ListRepairs(ctx, storage.RepairFilter{})
	require.NoError(t, err)
	require.Len(t, repairs, 1)
	assert.Equal(t, snap.Repairs[0].ID, repairs[0].ID)

	executors, err := testStorage.ListExecutors(ctx)
	require.NoError(t, err)
	assert.Len(t, executors, 1)
}
