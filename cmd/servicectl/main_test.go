package main

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/client"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/service/backup"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/service/cashregister"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/storage"
)

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) Repairs(ctx context.Context, q client.RepairQuery) ([]storage.Repair, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.Repair), args.Error(1)
}

func (m *MockAPI) Repair(ctx context.Context, id int64) (*storage.Repair, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Repair), args.Error(1)
}

func (m *MockAPI) NextReceiptID(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAPI) SetStatus(ctx context.Context, id int64, status, paymentType string) (*storage.Repair, error) {
	args := m.Called(ctx, id, status, paymentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Repair), args.Error(1)
}

func (m *MockAPI) Balances(ctx context.Context) (*storage.Balances, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Balances), args.Error(1)
}

func (m *MockAPI) Reconcile(ctx context.Context, actualCash, actualCard float64, description string) (*cashregister.ReconcileResult, error) {
	args := m.Called(ctx, actualCash, actualCard, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cashregister.ReconcileResult), args.Error(1)
}

func (m *MockAPI) Parts(ctx context.Context, q client.PartQuery) ([]storage.Part, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.Part), args.Error(1)
}

func (m *MockAPI) RepairParts(ctx context.Context, id int64) ([]storage.Part, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.Part), args.Error(1)
}

func (m *MockAPI) Backups(ctx context.Context) ([]backup.Info, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]backup.Info), args.Error(1)
}

func (m *MockAPI) CreateBackup(ctx context.Context) (*backup.Info, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backup.Info), args.Error(1)
}

func execute(api API, args ...string) (string, error) {
	var out bytes.Buffer
	cmd := newRootCmd(&app{api: api})
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRepairs(t *testing.T) {
	api := new(MockAPI)
	api.On("Repairs", mock.Anything, client.RepairQuery{Search: "iphone 11", Limit: 50}).
		Return([]storage.Repair{{ID: 3, ReceiptID: 120, DeviceName: "iPhone 11", Status: "Ready", TotalCost: 950}}, nil)

	out, err := execute(api, "repairs", "iphone", "11")
	require.NoError(t, err)

	assert.Contains(t, out, "iPhone 11")
	assert.Contains(t, out, "950.00")
	api.AssertExpectations(t)
}

func TestRepairs_Flags(t *testing.T) {
	api := new(MockAPI)
	api.On("Repairs", mock.Anything, client.RepairQuery{
		Statuses: []string{"Queue", "Ready"},
		Executor: "Андрій",
		Limit:    10,
		Offset:   20,
	}).Return([]storage.Repair{}, nil)

	_, err := execute(api, "repairs", "--status", "Queue,Ready", "--executor", "Андрій", "--limit", "10", "--offset", "20")
	require.NoError(t, err)
	api.AssertExpectations(t)
}

func TestStatus(t *testing.T) {
	api := new(MockAPI)
	api.On("SetStatus", mock.Anything, int64(5), "Issued", "card").
		Return(&storage.Repair{ID: 5, Status: "Issued", IsPaid: true, PaymentType: "card"}, nil)

	out, err := execute(api, "status", "5", "Issued", "--payment", "card")
	require.NoError(t, err)

	assert.Contains(t, out, "Issued")
	api.AssertExpectations(t)
}

func TestParts(t *testing.T) {
	inStock := true
	api := new(MockAPI)
	api.On("Parts", mock.Anything, client.PartQuery{Search: "A50", Supplier: "Artmobile", InStock: &inStock, Limit: 100}).
		Return([]storage.Part{{ID: 8, Name: "Screen A50", Supplier: "Artmobile", PriceUah: 1200, InStock: true}}, nil)

	out, err := execute(api, "parts", "A50", "--supplier", "Artmobile", "--in-stock")
	require.NoError(t, err)

	assert.Contains(t, out, "Screen A50")
	assert.Contains(t, out, "1200.00")
	api.AssertExpectations(t)
}

func TestParts_OfRepair(t *testing.T) {
	repairID := int64(12)
	api := new(MockAPI)
	api.On("RepairParts", mock.Anything, repairID).
		Return([]storage.Part{{ID: 4, Name: "Battery", RepairID: &repairID}}, nil)

	out, err := execute(api, "parts", "--repair", "12")
	require.NoError(t, err)

	assert.Contains(t, out, "Battery")
	api.AssertExpectations(t)
	api.AssertNotCalled(t, "Parts", mock.Anything, mock.Anything)
}

func TestBalance(t *testing.T) {
	api := new(MockAPI)
	api.On("Balances", mock.Anything).Return(&storage.Balances{Cash: 300.1, Card: 0.2, Total: 300.3}, nil)

	for _, name := range []string{"balance", "balances"} {
		out, err := execute(api, name)
		require.NoError(t, err)
		assert.Equal(t, "cash 300.10  card 0.20  total 300.30\n", out)
	}
}

func TestReconcile(t *testing.T) {
	api := new(MockAPI)
	api.On("Reconcile", mock.Anything, 1000.0, 250.5, "перерахунок").
		Return(&cashregister.ReconcileResult{
			Balances:   storage.Balances{Cash: 1000, Card: 250.5, Total: 1250.5},
			Adjustment: &storage.Transaction{Cash: -20, Card: 0},
		}, nil)

	out, err := execute(api, "reconcile", "1000", "250.5", "--description", "перерахунок")
	require.NoError(t, err)

	assert.Contains(t, out, "cash -20.00")
	assert.Contains(t, out, "total 1250.50")
}

func TestBackup(t *testing.T) {
	api := new(MockAPI)
	api.On("Backups", mock.Anything).
		Return([]backup.Info{{Name: "backup-20250901.json.gz", Size: 2048, CreatedAt: time.Date(2025, 9, 1, 3, 0, 0, 0, time.UTC)}}, nil)
	api.On("CreateBackup", mock.Anything).
		Return(&backup.Info{Name: "backup-20250902.json.gz", Size: 4096}, nil)

	out, err := execute(api, "backup", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "backup-20250901.json.gz")
	assert.Contains(t, out, "01.09.2025 03:00")

	out, err = execute(api, "backup", "create")
	require.NoError(t, err)
	assert.Equal(t, "created backup-20250902.json.gz (4096 bytes)\n", out)
	api.AssertExpectations(t)
}

func TestBadUsage(t *testing.T) {
	cases := [][]string{
		{"unknown"},
		{"repair"},
		{"repair", "abc"},
		{"status", "5"},
		{"reconcile", "100"},
		{"reconcile", "100", "x"},
		{"next-receipt", "extra"},
		{"parts", "A50", "--repair", "3"},
	}
	for _, args := range cases {
		api := new(MockAPI)
		_, err := execute(api, args...)
		assert.Error(t, err, "%v", args)
		assert.Empty(t, api.Calls, "%v", args)
	}
}

func TestAPIErrorPassesThrough(t *testing.T) {
	api := new(MockAPI)
	apiErr := &client.APIError{StatusCode: 404, Message: "Ремонт не найден"}
	api.On("Repair", mock.Anything, int64(9)).Return(nil, apiErr)

	_, err := execute(api, "repair", "9")
	assert.ErrorIs(t, err, apiErr)
}

func TestNoArgsPrintsHelp(t *testing.T) {
	out, err := execute(new(MockAPI))
	require.NoError(t, err)
	assert.Contains(t, out, "servicectl")
	assert.Contains(t, out, "reconcile")
}
