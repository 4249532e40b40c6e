package backups

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/http-server/respond"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/service/backup"
)

type Backups interface {
	List() ([]backup.Info, error)
	Create(ctx context.Context) (*backup.Info, error)
	Delete(name string) error
	Restore(ctx context.Context, name string) error
}

func GetBackups(log *slog.Logger, backups Backups) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.backups.GetBackups"

		list, err := backups.List()
		if err != nil {
			respond.Error(w, log, op, err)
			return
		}

		render.JSON(w, r, list)
	}
}

func CreateBackup(log *slog.Logger, backups Backups) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.backups.CreateBackup"

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
		defer cancel()

		info, err := backups.Create(ctx)
		if err != nil {
			respond.Error(w, log, op, err)
			return
		}

		log.Info("резервная копия создана", slog.String("name", info.Name))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, info)
	}
}

func DeleteBackup(log *slog.Logger, backups Backups) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.backups.DeleteBackup"

		if err := backups.Delete(chi.URLParam(r, "name")); err != nil {
			respond.Error(w, log, op, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func RestoreBackup(log *slog.Logger, backups Backups) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.backups.RestoreBackup"

		name := chi.URLParam(r, "name")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
		defer cancel()

		if err := backups.Restore(ctx, name); err != nil {
			respond.Error(w, log, op, err)
			return
		}

		log.Warn("данные восстановлены из резервной копии", slog.String("name", name))

		render.JSON(w, r, map[string]string{"status": "restored", "name": name})
	}
}
