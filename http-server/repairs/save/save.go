package save

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/http-server/respond"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/service/repair"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/storage"
)

type RepairCreator interface {
	Create(ctx context.Context, in repair.Input) (*storage.Repair, error)
}

func SaveRepair(log *slog.Logger, repairs RepairCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.repairs.save.SaveRepair"

		var req repair.Input
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Invalid JSON", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "ошибка парсинга JSON", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		created, err := repairs.Create(ctx, req)
		if err != nil {
			respond.Error(w, log, op, err)
			return
		}

		log.Info("ремонт создан", slog.Int64("id", created.ID), slog.Int64("receipt_id", created.ReceiptID))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, created)
	}
}
