package remove

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/http-server/respond"
)

type ProductDeleter interface {
	Delete(ctx context.Context, id int64) error
}

func DeleteProduct(log *slog.Logger, products ProductDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.products.remove.DeleteProduct"

		id, ok := respond.ID(r, "id")
		if !ok {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := products.Delete(ctx, id); err != nil {
			respond.Error(w, log, op, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
