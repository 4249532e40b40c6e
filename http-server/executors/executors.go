package executors

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/http-server/respond"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/service/executor"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/storage"
)

type Executors interface {
	List(ctx context.Context) ([]storage.Executor, error)
	Create(ctx context.Context, e storage.Executor) (*storage.Executor, error)
	Update(ctx context.Context, e storage.Executor) (*storage.Executor, error)
	Delete(ctx context.Context, id int64) error
	Earnings(ctx context.Context, id int64, from, to time.Time) (*executor.Earnings, error)
}

func GetExecutors(log *slog.Logger, executors Executors) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.executors.GetExecutors"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		list, err := executors.List(ctx)
		if err != nil {
			respond.Error(w, log, op, err)
			return
		}

		render.JSON(w, r, list)
	}
}

func SaveExecutor(log *slog.Logger, executors Executors) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.executors.SaveExecutor"

		var req storage.Executor
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "ошибка парсинга JSON", http.StatusBadRequest)
			return
		}
		req.ID = 0

		created, err := executors.Create(r.Context(), req)
		if err != nil {
			respond.Error(w, log, op, err)
			return
		}

		log.Info("исполнитель добавлен", slog.Int64("id", created.ID), slog.String("name", created.Name))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, created)
	}
}

func UpdateExecutor(log *slog.Logger, executors Executors) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.executors.UpdateExecutor"

		id, ok := respond.ID(r, "id")
		if !ok {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		var req storage.Executor
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid data", http.StatusBadRequest)
			return
		}
		req.ID = id

		updated, err := executors.Update(r.Context(), req)
		if err != nil {
			respond.Error(w, log, op, err)
			return
		}

		render.JSON(w, r, updated)
	}
}

func DeleteExecutor(log *slog.Logger, executors Executors) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.executors.DeleteExecutor"

		id, ok := respond.ID(r, "id")
		if !ok {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		if err := executors.Delete(r.Context(), id); err != nil {
			respond.Error(w, log, op, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func GetEarnings(log *slog.Logger, executors Executors) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.executors.GetEarnings"

		id, ok := respond.ID(r, "id")
		if !ok {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		from, to, err := respond.Period(r, time.Now())
		if err != nil {
			http.Error(w, "invalid date", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		earnings, err := executors.Earnings(ctx, id, from, to)
		if err != nil {
			respond.Error(w, log, op, err)
			return
		}

		render.JSON(w, r, earnings)
	}
}
