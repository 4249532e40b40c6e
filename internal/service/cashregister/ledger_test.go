package cashregister

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/constants"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/storage"
)

func TestAccounts(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		st   storage.CashRegisterSettings
		date time.Time
		want bool
	}{
		{"disabled", storage.CashRegisterSettings{}, start.Add(time.Hour), false},
		{"enabled without start", storage.CashRegisterSettings{CashRegisterEnabled: true}, start, false},
		{"before start", storage.CashRegisterSettings{CashRegisterEnabled: true, CashRegisterStartDate: &start}, start.Add(-time.Minute), false},
		{"at start", storage.CashRegisterSettings{CashRegisterEnabled: true, CashRegisterStartDate: &start}, start, true},
		{"after start", storage.CashRegisterSettings{CashRegisterEnabled: true, CashRegisterStartDate: &start}, start.AddDate(0, 1, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Accounts(tt.st, storage.Repair{DateStart: tt.date}))
		})
	}
}

func TestIncomeEntry(t *testing.T) {
	now := time.Now()
	st := storage.CashRegisterSettings{CardCommissionPercent: 1.5}

	cash := IncomeEntry(storage.Repair{ID: 3, ReceiptID: 42, TotalCost: 1000, PaymentType: constants.PaymentCash}, st, now)
	assert.Equal(t, constants.CategoryIncome, cash.Category)
	assert.Equal(t, 1000.0, cash.Cash)
	assert.Equal(t, 0.0, cash.Card)
	assert.Equal(t, 1000.0, cash.Amount)
	require.NotNil(t, cash.RepairID)
	assert.Equal(t, int64(3), *cash.RepairID)

	card := IncomeEntry(storage.Repair{ID: 3, ReceiptID: 42, TotalCost: 1000, PaymentType: constants.PaymentCard}, st, now)
	assert.Equal(t, 0.0, card.Cash)
	assert.Equal(t, 985.0, card.Card)
	assert.Equal(t, 985.0, card.Amount)
}

func TestCancelEntry(t *testing.T) {
	now := time.Now()
	r := storage.Repair{ID: 9, ReceiptID: 100, PaymentType: constants.PaymentCash}

	assert.Nil(t, CancelEntry(r, nil, now))

	posted := []storage.Transaction{
		{Category: constants.CategoryIncome, Cash: 500, Amount: 500, PaymentType: constants.PaymentCash},
	}
	entry := CancelEntry(r, posted, now)
	require.NotNil(t, entry)
	assert.Equal(t, constants.CategoryCancel, entry.Category)
	assert.Equal(t, -500.0, entry.Cash)
	assert.Equal(t, -500.0, entry.Amount)

	// уже отменено
	posted = append(posted, *entry)
	assert.Nil(t, CancelEntry(r, posted, now))

	// покупки не отменяются
	posted = []storage.Transaction{{Category: constants.CategoryPurchase, Cash: -200}}
	assert.Nil(t, CancelEntry(r, posted, now))
}

func TestAdjustmentEntry(t *testing.T) {
	now := time.Now()
	current := storage.Balances{Cash: 100.10, Card: 50, Total: 150.10}

	assert.Nil(t, AdjustmentEntry(current, 100.1, 50, "", now))
	assert.Nil(t, AdjustmentEntry(current, 100.104, 49.996, "", now))

	entry := AdjustmentEntry(current, 120.555, 50, "", now)
	require.NotNil(t, entry)
	assert.Equal(t, constants.CategoryAdjustment, entry.Category)
	assert.Equal(t, 20.46, entry.Cash)
	assert.Equal(t, 0.0, entry.Card)
	assert.Equal(t, constants.PaymentCash, entry.PaymentType)
	assert.Equal(t, "Звірка каси", entry.Description)

	entry = AdjustmentEntry(current, 90, 60, "вечір", now)
	require.NotNil(t, entry)
	assert.Equal(t, -10.1, entry.Cash)
	assert.Equal(t, 10.0, entry.Card)
	assert.Equal(t, -0.1, entry.Amount)
	assert.Empty(t, entry.PaymentType)
}

func TestColumnEntry(t *testing.T) {
	e := ColumnEntry("Оренда", "", -1200.004, constants.PaymentCard, time.Now())
	assert.Equal(t, -1200.0, e.Card)
	assert.Equal(t, 0.0, e.Cash)
}
