package server_info

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/syncserver"
)

type staticStatus syncserver.Status

func (s staticStatus) Status() syncserver.Status { return syncserver.Status(s) }

func TestServerInfo_TokenOnlyForLoopback(t *testing.T) {
	h := ServerInfo(slog.Default(), "1.2.0", "tok-123", staticStatus{Running: true, Address: "0.0.0.0:4002"})

	req := httptest.NewRequest(http.MethodGet, "/api/server-info", nil)
	req.RemoteAddr = "127.0.0.1:50000"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"token":"tok-123"`)
	assert.Contains(t, rr.Body.String(), `"version":"1.2.0"`)

	req = httptest.NewRequest(http.MethodGet, "/api/server-info", nil)
	req.RemoteAddr = "192.168.1.50:50000"
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.NotContains(t, rr.Body.String(), "tok-123")
	assert.Contains(t, rr.Body.String(), `"running":true`)
}

func TestIsLoopback(t *testing.T) {
	assert.True(t, isLoopback("[::1]:4001"))
	assert.True(t, isLoopback("127.0.0.1"))
	assert.False(t, isLoopback("10.0.0.2:1"))
	assert.False(t, isLoopback("bogus"))
}
