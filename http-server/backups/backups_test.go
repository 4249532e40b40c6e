package backups

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/service/backup"
)

type MockBackups struct {
	mock.Mock
}

func (m *MockBackups) List() ([]backup.Info, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]backup.Info), args.Error(1)
}

func (m *MockBackups) Create(ctx context.Context) (*backup.Info, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backup.Info), args.Error(1)
}

func (m *MockBackups) Delete(name string) error {
	return m.Called(name).Error(0)
}

func (m *MockBackups) Restore(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

const name = "backup-20240501-030000-1a2b3c4d.json.gz"

func serve(m *MockBackups, method, target string) *httptest.ResponseRecorder {
	log := slog.Default()
	r := chi.NewRouter()
	r.Get("/backups", GetBackups(log, m))
	r.Post("/backups", CreateBackup(log, m))
	r.Delete("/backups/{name}", DeleteBackup(log, m))
	r.Post("/backups/{name}/restore", RestoreBackup(log, m))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(method, target, nil))
	return rr
}

func TestBackups(t *testing.T) {
	info := backup.Info{Name: name, Size: 2048, CreatedAt: time.Date(2024, 5, 1, 3, 0, 0, 0, time.UTC)}

	m := new(MockBackups)
	m.On("List").Return([]backup.Info{info}, nil)
	m.On("Create", mock.Anything).Return(&info, nil)
	m.On("Delete", name).Return(nil)
	m.On("Restore", mock.Anything, name).Return(nil)

	rr := serve(m, http.MethodGet, "/backups")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), name)

	rr = serve(m, http.MethodPost, "/backups")
	assert.Equal(t, http.StatusCreated, rr.Code)

	rr = serve(m, http.MethodPost, "/backups/"+name+"/restore")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "restored")

	rr = serve(m, http.MethodDelete, "/backups/"+name)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	m.AssertExpectations(t)
}

func TestRestoreBackup_Errors(t *testing.T) {
	m := new(MockBackups)
	m.On("Restore", mock.Anything, "missing.json.gz").Return(backup.ErrInvalidName)
	m.On("Restore", mock.Anything, name).Return(backup.ErrNotFound)

	rr := serve(m, http.MethodPost, "/backups/missing.json.gz/restore")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(m, http.MethodPost, "/backups/"+name+"/restore")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
