package save

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/http-server/respond"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/service/warehouse"
)

type Receiver interface {
	Receive(ctx context.Context, in warehouse.ReceiveInput) ([]int64, error)
	Import(ctx context.Context, req warehouse.ImportRequest) (*warehouse.ImportResult, error)
}

func ReceiveProducts(log *slog.Logger, products Receiver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.products.save.ReceiveProducts"

		var req warehouse.ReceiveInput
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Invalid JSON", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "ошибка парсинга JSON", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		ids, err := products.Receive(ctx, req)
		if err != nil {
			respond.Error(w, log, op, err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{"ids": ids})
	}
}

func ImportProducts(log *slog.Logger, products Receiver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.products.save.ImportProducts"

		var req warehouse.ImportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "ошибка парсинга JSON", http.StatusBadRequest)
			return
		}

		// коммит большой накладной может занять время
		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		res, err := products.Import(ctx, req)
		if err != nil {
			respond.Error(w, log, op, err)
			return
		}

		if res.Committed {
			log.Info("накладная импортирована", slog.String("format", req.Format), slog.Int("created", res.Created))
		}

		render.JSON(w, r, res)
	}
}
