package sync_server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/syncserver"
)

type Controller interface {
	Start() error
	Stop(ctx context.Context) error
	Status() syncserver.Status
}

type Pairer interface {
	Issue(device string) (*syncserver.Pairing, error)
}

func GetStatus(log *slog.Logger, ctrl Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, ctrl.Status())
	}
}

// Toggle starts or stops the LAN sync server: {"enabled": true|false}.
func Toggle(log *slog.Logger, ctrl Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.sync-server.Toggle"

		var req struct {
			Enabled *bool `json:"enabled"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
			http.Error(w, "enabled is required", http.StatusBadRequest)
			return
		}

		if *req.Enabled {
			if err := ctrl.Start(); err != nil {
				log.Error("не удалось запустить сервер синхронизации", slog.String("op", op), slog.String("error", err.Error()))
				http.Error(w, "не удалось запустить сервер синхронизации", http.StatusInternalServerError)
				return
			}
		} else {
			ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
			defer cancel()

			if err := ctrl.Stop(ctx); err != nil {
				log.Error("не удалось остановить сервер синхронизации", slog.String("op", op), slog.String("error", err.Error()))
				http.Error(w, "не удалось остановить сервер синхронизации", http.StatusInternalServerError)
				return
			}
		}

		render.JSON(w, r, ctrl.Status())
	}
}

// Pair issues a device token for the mobile app.
func Pair(log *slog.Logger, issuer Pairer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.sync-server.Pair"

		var req struct {
			Device string `json:"device"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "ошибка парсинга JSON", http.StatusBadRequest)
			return
		}

		p, err := issuer.Issue(req.Device)
		if errors.Is(err, syncserver.ErrNoSecret) {
			http.Error(w, "сопряжение не настроено", http.StatusServiceUnavailable)
			return
		}
		if err != nil {
			log.Error("ошибка выпуска токена", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}

		log.Info("устройство сопряжено", slog.String("device", p.Device))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, p)
	}
}
