package generate_excel

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/storage"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) ListTransactions(ctx context.Context, f storage.TransactionFilter) ([]storage.Transaction, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.Transaction), args.Error(1)
}

func (m *MockStorage) GetBalances(ctx context.Context) (storage.Balances, error) {
	args := m.Called(ctx)
	return args.Get(0).(storage.Balances), args.Error(1)
}

func (m *MockStorage) ListRepairs(ctx context.Context, f storage.RepairFilter) ([]storage.Repair, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.Repair), args.Error(1)
}

func (m *MockStorage) ListExecutors(ctx context.Context) ([]storage.Executor, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.Executor), args.Error(1)
}

func (m *MockStorage) ListIssuedRepairs(ctx context.Context, executor string, from, to time.Time) ([]storage.IssuedRepair, error) {
	args := m.Called(ctx, executor, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.IssuedRepair), args.Error(1)
}

var (
	from = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to   = time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)
)

func openReport(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestTransactionsReport(t *testing.T) {
	st := new(MockStorage)
	st.On("ListTransactions", mock.Anything, mock.AnythingOfType("storage.TransactionFilter")).Return([]storage.Transaction{
		{Category: "Прибуток", Description: "Ремонт №7", Amount: 500, Cash: 500, PaymentType: "cash", DateExecuted: from.Add(time.Hour)},
		{Category: "Оренда", Description: "березень", Amount: -200, Cash: -200, PaymentType: "cash", DateExecuted: from.Add(2 * time.Hour)},
	}, nil)
	st.On("GetBalances", mock.Anything).Return(storage.Balances{Cash: 300, Total: 300}, nil)

	data, err := NewGenerateService(st).TransactionsReport(context.Background(), from, to)
	require.NoError(t, err)

	f := openReport(t, data)
	v, err := f.GetCellValue("Каса", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Прибуток", v)

	v, _ = f.GetCellValue("Каса", "G2")
	assert.Equal(t, "готівка", v)

	v, _ = f.GetCellValue("Каса", "C5")
	assert.Equal(t, "Залишок", v)
	v, _ = f.GetCellValue("Каса", "D5")
	assert.Equal(t, "300", v)

	st.AssertExpectations(t)
}

func TestTransactionsReport_StorageError(t *testing.T) {
	st := new(MockStorage)
	st.On("ListTransactions", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))
	st.On("GetBalances", mock.Anything).Return(storage.Balances{}, nil).Maybe()

	_, err := NewGenerateService(st).TransactionsReport(context.Background(), from, to)
	assert.ErrorContains(t, err, "db down")
}

func TestRepairsReport(t *testing.T) {
	end := from.Add(48 * time.Hour)
	st := new(MockStorage)
	st.On("ListRepairs", mock.Anything, storage.RepairFilter{From: &from, To: &to}).Return([]storage.Repair{
		{ReceiptID: 7, ClientName: "Олена", DeviceName: "iPhone 11", Status: "Issued", IsPaid: true,
			CostLabor: 400, TotalCost: 900, Profit: 600, DateStart: from, DateEnd: &end, Executor: "Андрій", PaymentType: "card"},
	}, nil)
	st.On("ListExecutors", mock.Anything).Return([]storage.Executor{
		{ID: 1, Name: "Андрій", SalaryPercent: 50, ProductsPercent: 10},
	}, nil)
	st.On("ListIssuedRepairs", mock.Anything, "Андрій", from, to).Return([]storage.IssuedRepair{
		{ID: 1, ReceiptID: 7, CostLabor: 400, Profit: 600, DateEnd: end},
	}, nil)

	data, err := NewGenerateService(st).RepairsReport(context.Background(), from, to)
	require.NoError(t, err)

	f := openReport(t, data)
	v, _ := f.GetCellValue("Ремонти", "A2")
	assert.Equal(t, "7", v)
	v, _ = f.GetCellValue("Ремонти", "I2")
	assert.Equal(t, "Видано", v)
	v, _ = f.GetCellValue("Ремонти", "N2")
	assert.Equal(t, "картка", v)

	v, _ = f.GetCellValue("Виконавці", "A2")
	assert.Equal(t, "Андрій", v)
	v, _ = f.GetCellValue("Виконавці", "B2")
	assert.Equal(t, "1", v)

	st.AssertExpectations(t)
}
