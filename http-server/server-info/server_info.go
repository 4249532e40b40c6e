package server_info

import (
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/render"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/syncserver"
)

type SyncStatus interface {
	Status() syncserver.Status
}

type Info struct {
	Name       string            `json:"name"`
	Version    string            `json:"version"`
	SyncServer syncserver.Status `json:"syncServer"`
	Token      string            `json:"token,omitempty"`
}

// ServerInfo describes the server. The API token is only handed to clients
// running on the same machine.
func ServerInfo(log *slog.Logger, version, token string, sync SyncStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info := Info{
			Name:       "service-center",
			Version:    version,
			SyncServer: sync.Status(),
		}
		if isLoopback(r.RemoteAddr) {
			info.Token = token
		}

		render.JSON(w, r, info)
	}
}

func isLoopback(remote string) bool {
	host, _, err := net.SplitHostPort(remote)
	if err != nil {
		host = remote
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
