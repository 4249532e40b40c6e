package remove

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/http-server/respond"
)

type RepairDeleter interface {
	Delete(ctx context.Context, id int64) error
}

func DeleteRepair(log *slog.Logger, repairs RepairDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.repairs.remove.DeleteRepair"

		id, ok := respond.ID(r, "id")
		if !ok {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := repairs.Delete(ctx, id); err != nil {
			respond.Error(w, log, op, err)
			return
		}

		log.Info("ремонт удалён", slog.Int64("id", id))

		w.WriteHeader(http.StatusNoContent)
	}
}
