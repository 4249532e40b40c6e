package syncserver

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/service/lock"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/service/repair"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/storage"
)

type MockRepairs struct {
	mock.Mock
}

func (m *MockRepairs) Repairs(ctx context.Context, f storage.RepairFilter) ([]storage.Repair, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.Repair), args.Error(1)
}

func (m *MockRepairs) Get(ctx context.Context, id int64) (*storage.Repair, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Repair), args.Error(1)
}

func (m *MockRepairs) NextReceiptID(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepairs) Update(ctx context.Context, id int64, in repair.Input) (*storage.Repair, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Repair), args.Error(1)
}

func (m *MockRepairs) SetStatus(ctx context.Context, id int64, status, paymentType string) (*storage.Repair, error) {
	args := m.Called(ctx, id, status, paymentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Repair), args.Error(1)
}

func (m *MockRepairs) SetPaid(ctx context.Context, id int64, paid bool, paymentType string, stampToday bool) (*storage.Repair, error) {
	args := m.Called(ctx, id, paid, paymentType, stampToday)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Repair), args.Error(1)
}

type fixture struct {
	h     http.Handler
	m     *MockRepairs
	locks *lock.Manager
	token string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	issuer := NewIssuer("secret", time.Hour)
	p, err := issuer.Issue("Pixel 7")
	require.NoError(t, err)

	m := new(MockRepairs)
	locks := lock.NewManager(time.Minute)
	return fixture{h: NewRouter(log, issuer, m, m, locks), m: m, locks: locks, token: p.Token}
}

func (f fixture) do(method, target, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	f.h.ServeHTTP(rr, req)
	return rr
}

func TestRouter_Ping(t *testing.T) {
	f := newFixture(t)
	rr := f.do(http.MethodGet, "/api/ping", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRouter_RequiresToken(t *testing.T) {
	f := newFixture(t)

	rr := f.do(http.MethodGet, "/api/repairs", "", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = f.do(http.MethodGet, "/api/repairs", "", "forged")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRouter_ListRepairs(t *testing.T) {
	f := newFixture(t)
	f.m.On("Repairs", mock.Anything, storage.RepairFilter{Search: "iphone", Limit: 20}).
		Return([]storage.Repair{{ID: 1, DeviceName: "iPhone 12"}}, nil)

	rr := f.do(http.MethodGet, "/api/repairs?search=iphone&limit=20", "", f.token)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "iPhone 12")
}

func TestRouter_StatusRespectsDesktopLock(t *testing.T) {
	f := newFixture(t)
	_, err := f.locks.Acquire(3, "192.168.0.10")
	require.NoError(t, err)

	rr := f.do(http.MethodPut, "/api/repairs/3/status", `{"status":"Ready"}`, f.token)
	assert.Equal(t, http.StatusLocked, rr.Code)
	f.m.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRouter_StatusWithOwnLock(t *testing.T) {
	f := newFixture(t)
	f.m.On("SetStatus", mock.Anything, int64(3), "Ready", "").Return(&storage.Repair{ID: 3, Status: "Ready"}, nil)

	rr := f.do(http.MethodPost, "/api/repairs/3/lock-repair", "", f.token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"owner":"device:Pixel 7"`)

	rr = f.do(http.MethodPut, "/api/repairs/3/status", `{"status":"Ready"}`, f.token)
	assert.Equal(t, http.StatusOK, rr.Code)
	f.m.AssertExpectations(t)
}
