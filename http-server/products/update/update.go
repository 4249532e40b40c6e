package update

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/http-server/respond"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/service/warehouse"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/storage"
)

type ProductUpdater interface {
	Update(ctx context.Context, id int64, in warehouse.PartInput) (*storage.Part, error)
	WriteOff(ctx context.Context, id int64, reason string) error
}

func UpdateProduct(log *slog.Logger, products ProductUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.products.update.UpdateProduct"

		id, ok := respond.ID(r, "id")
		if !ok {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		var req warehouse.PartInput
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid data", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		part, err := products.Update(ctx, id, req)
		if err != nil {
			respond.Error(w, log, op, err)
			return
		}

		render.JSON(w, r, part)
	}
}

func WriteOffProduct(log *slog.Logger, products ProductUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.products.update.WriteOffProduct"

		id, ok := respond.ID(r, "id")
		if !ok {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		// тело необязательно
		var req struct {
			Reason string `json:"reason"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "Invalid data", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := products.WriteOff(ctx, id, req.Reason); err != nil {
			respond.Error(w, log, op, err)
			return
		}

		log.Info("запчасть списана", slog.Int64("id", id), slog.String("reason", req.Reason))

		w.WriteHeader(http.StatusNoContent)
	}
}
