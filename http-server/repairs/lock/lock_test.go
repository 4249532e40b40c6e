package lock

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/service/lock"
)

func newRouter(locks *lock.Manager) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	r.Get("/repairs/{id}/check-repair-lock", Check(log, locks))
	r.Post("/repairs/{id}/lock-repair", Acquire(log, locks, ClientOwner))
	r.Delete("/repairs/{id}/lock-repair", Release(log, locks))
	return r
}

func do(t *testing.T, h http.Handler, method, target, client string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if client != "" {
		req.Header.Set(ClientHeader, client)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestLockFlow(t *testing.T) {
	h := newRouter(lock.NewManager(time.Minute))

	rr := do(t, h, http.MethodGet, "/repairs/5/check-repair-lock", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"locked":false}`, rr.Body.String())

	rr = do(t, h, http.MethodPost, "/repairs/5/lock-repair", "desk-1")
	require.Equal(t, http.StatusOK, rr.Code)
	var l lock.Lock
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &l))
	assert.Equal(t, "desk-1", l.Owner)
	assert.NotEmpty(t, l.Token)

	rr = do(t, h, http.MethodPost, "/repairs/5/lock-repair", "desk-2")
	assert.Equal(t, http.StatusLocked, rr.Code)
	assert.Contains(t, rr.Body.String(), `"owner":"desk-1"`)
	assert.NotContains(t, rr.Body.String(), l.Token)

	rr = do(t, h, http.MethodGet, "/repairs/5/check-repair-lock", "")
	assert.Contains(t, rr.Body.String(), `"locked":true`)

	rr = do(t, h, http.MethodDelete, "/repairs/5/lock-repair?token=wrong", "")
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = do(t, h, http.MethodDelete, "/repairs/5/lock-repair?token="+l.Token, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(t, h, http.MethodGet, "/repairs/5/check-repair-lock", "")
	assert.JSONEq(t, `{"locked":false}`, rr.Body.String())
}

func TestLock_InvalidID(t *testing.T) {
	h := newRouter(lock.NewManager(time.Minute))
	rr := do(t, h, http.MethodPost, "/repairs/x/lock-repair", "desk-1")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestClientOwner(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.20:51234"
	assert.Equal(t, "192.168.1.20", ClientOwner(req))

	req.Header.Set(ClientHeader, "kasa")
	assert.Equal(t, "kasa", ClientOwner(req))
}
