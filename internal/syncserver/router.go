package syncserver

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/http-server/repairs/get"
	repairlock "github.com/kasnew/service-center-app-AI-PC-APK-sub000/http-server/repairs/lock"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/http-server/repairs/update"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/service/lock"
)

type Repairs interface {
	get.RepairGetter
	update.RepairUpdater
}

type Locks interface {
	repairlock.Locker
	update.Guard
}

type ctxKey struct{}

// Authenticate accepts requests carrying a valid device token in the
// Authorization header.
func Authenticate(log *slog.Logger, issuer *Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := issuer.Parse(raw)
			if err != nil {
				log.Debug("device token rejected", slog.String("error", err.Error()))
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, claims)))
		})
	}
}

func ClaimsFrom(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(ctxKey{}).(*Claims)
	return c, ok
}

// DeviceOwner names the paired device as a lock owner.
func DeviceOwner(r *http.Request) string {
	if c, ok := ClaimsFrom(r.Context()); ok {
		return "device:" + c.Device
	}
	return "device:unknown"
}

// NewRouter builds the mobile API. Status changes go through the same repair
// service as the desktop API but are refused while someone else holds the
// repair lock.
func NewRouter(log *slog.Logger, issuer *Issuer, search get.RepairSearcher, repairs Repairs, locks Locks) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)

	router.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})

	router.Group(func(r chi.Router) {
		r.Use(Authenticate(log, issuer))

		r.Get("/api/repairs", get.GetRepairs(log, search))
		r.Get("/api/repairs/{id}", get.GetRepair(log, repairs))
		r.Put("/api/repairs/{id}/status", update.UpdateStatus(log, repairs, locks, DeviceOwner))
		r.Get("/api/repairs/{id}/check-repair-lock", repairlock.Check(log, locks))
		r.Post("/api/repairs/{id}/lock-repair", repairlock.Acquire(log, locks, repairlock.OwnerFunc(DeviceOwner)))
		r.Delete("/api/repairs/{id}/lock-repair", repairlock.Release(log, locks))
	})

	return router
}

var _ Locks = (*lock.Manager)(nil)
