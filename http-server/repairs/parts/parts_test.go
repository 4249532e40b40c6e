package parts

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/service/warehouse"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/storage"
)

type MockRepairParts struct {
	mock.Mock
}

func (m *MockRepairParts) RepairParts(ctx context.Context, repairID int64) ([]storage.Part, error) {
	args := m.Called(ctx, repairID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.Part), args.Error(1)
}

func (m *MockRepairParts) Attach(ctx context.Context, repairID, partID int64) (*storage.Repair, error) {
	args := m.Called(ctx, repairID, partID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Repair), args.Error(1)
}

func (m *MockRepairParts) AddToRepair(ctx context.Context, repairID int64, in warehouse.PartInput) (*storage.Repair, error) {
	args := m.Called(ctx, repairID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Repair), args.Error(1)
}

func (m *MockRepairParts) Detach(ctx context.Context, repairID, partID int64) (*storage.Repair, error) {
	args := m.Called(ctx, repairID, partID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Repair), args.Error(1)
}

func serve(m *MockRepairParts, method, target, body string) *httptest.ResponseRecorder {
	log := slog.Default()
	r := chi.NewRouter()
	r.Get("/repairs/{id}/parts", GetParts(log, m))
	r.Post("/repairs/{id}/parts", AddPart(log, m))
	r.Delete("/repairs/{id}/parts/{partId}", RemovePart(log, m))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(method, target, strings.NewReader(body)))
	return rr
}

func TestGetParts(t *testing.T) {
	m := new(MockRepairParts)
	m.On("RepairParts", mock.Anything, int64(2)).Return([]storage.Part{{ID: 5, Name: "Дисплей"}}, nil)

	rr := serve(m, http.MethodGet, "/repairs/2/parts", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Дисплей")
}

func TestAddPart_FromStock(t *testing.T) {
	m := new(MockRepairParts)
	m.On("Attach", mock.Anything, int64(2), int64(5)).Return(&storage.Repair{ID: 2, TotalCost: 1500}, nil)

	rr := serve(m, http.MethodPost, "/repairs/2/parts", `{"partId":5}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"totalCost":1500`)
	m.AssertNotCalled(t, "AddToRepair", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddPart_NotInStock(t *testing.T) {
	m := new(MockRepairParts)
	m.On("Attach", mock.Anything, int64(2), int64(5)).Return(nil, storage.ErrPartNotInStock)

	rr := serve(m, http.MethodPost, "/repairs/2/parts", `{"partId":5}`)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestAddPart_New(t *testing.T) {
	m := new(MockRepairParts)
	m.On("AddToRepair", mock.Anything, int64(2), warehouse.PartInput{Name: "Шлейф", PriceUah: 300, CostUah: 120}).
		Return(&storage.Repair{ID: 2}, nil)

	rr := serve(m, http.MethodPost, "/repairs/2/parts", `{"part":{"name":"Шлейф","priceUah":300,"costUah":120}}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	m.AssertExpectations(t)
}

func TestAddPart_Ambiguous(t *testing.T) {
	m := new(MockRepairParts)
	rr := serve(m, http.MethodPost, "/repairs/2/parts", `{"partId":5,"part":{"name":"x"}}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(m, http.MethodPost, "/repairs/2/parts", `{}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRemovePart(t *testing.T) {
	m := new(MockRepairParts)
	m.On("Detach", mock.Anything, int64(2), int64(5)).Return(&storage.Repair{ID: 2}, nil)

	rr := serve(m, http.MethodDelete, "/repairs/2/parts/5", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	m.On("Detach", mock.Anything, int64(2), int64(6)).Return(nil, storage.ErrPartNotInRepair)
	rr = serve(m, http.MethodDelete, "/repairs/2/parts/6", "")
	assert.Equal(t, http.StatusConflict, rr.Code)
}
