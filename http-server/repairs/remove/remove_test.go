package remove

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/storage"
)

type MockRepairDeleter struct {
	mock.Mock
}

func (m *MockRepairDeleter) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func serve(m *MockRepairDeleter, target string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Delete("/repairs/{id}", DeleteRepair(slog.Default(), m))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, target, nil))
	return rr
}

func TestDeleteRepair(t *testing.T) {
	m := new(MockRepairDeleter)
	m.On("Delete", mock.Anything, int64(11)).Return(nil)

	rr := serve(m, "/repairs/11")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	m.AssertExpectations(t)
}

func TestDeleteRepair_NotFound(t *testing.T) {
	m := new(MockRepairDeleter)
	m.On("Delete", mock.Anything, int64(11)).Return(storage.ErrNotFound)

	rr := serve(m, "/repairs/11")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
