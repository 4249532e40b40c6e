package lock

import (
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/render"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/http-server/respond"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/service/lock"
)

type Locker interface {
	Check(repairID int64) (lock.Lock, bool)
	Acquire(repairID int64, owner string) (lock.Lock, error)
	Release(repairID int64, token string) error
}

// OwnerFunc names whoever is making the request.
type OwnerFunc func(r *http.Request) string

const ClientHeader = "X-Client-Id"

// ClientOwner identifies desktop and browser clients by X-Client-Id, or by
// their address when the header is missing.
func ClientOwner(r *http.Request) string {
	if id := r.Header.Get(ClientHeader); id != "" {
		return id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type checkResponse struct {
	Locked bool       `json:"locked"`
	Lock   *lock.Lock `json:"lock,omitempty"`
}

func Check(log *slog.Logger, locks Locker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := respond.ID(r, "id")
		if !ok {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		l, held := locks.Check(id)
		if !held {
			render.JSON(w, r, checkResponse{})
			return
		}

		render.JSON(w, r, checkResponse{Locked: true, Lock: &l})
	}
}

func Acquire(log *slog.Logger, locks Locker, owner OwnerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.repairs.lock.Acquire"

		id, ok := respond.ID(r, "id")
		if !ok {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		who := owner(r)
		l, err := locks.Acquire(id, who)
		if errors.Is(err, lock.ErrLocked) {
			log.Info("ремонт уже открыт", slog.Int64("id", id), slog.String("holder", l.Owner), slog.String("owner", who))
			render.Status(r, http.StatusLocked)
			render.JSON(w, r, checkResponse{Locked: true, Lock: &l})
			return
		}
		if err != nil {
			respond.Error(w, log, op, err)
			return
		}

		render.JSON(w, r, l)
	}
}

func Release(log *slog.Logger, locks Locker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.repairs.lock.Release"

		id, ok := respond.ID(r, "id")
		if !ok {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		if err := locks.Release(id, r.URL.Query().Get("token")); err != nil {
			respond.Error(w, log, op, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
