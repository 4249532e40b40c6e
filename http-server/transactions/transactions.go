package transactions

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/http-server/respond"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/service/cashregister"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/storage"
)

type Ledger interface {
	ListTransactions(ctx context.Context, f storage.TransactionFilter) ([]storage.Transaction, error)
	CreateTransaction(ctx context.Context, in cashregister.ManualTransaction) (*storage.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error
	Reconcile(ctx context.Context, actualCash, actualCard float64, description string) (*cashregister.ReconcileResult, error)
}

func filter(r *http.Request) (storage.TransactionFilter, error) {
	q := r.URL.Query()
	f := storage.TransactionFilter{
		Category:    q.Get("category"),
		PaymentType: q.Get("paymentType"),
	}

	if s := q.Get("from"); s != "" {
		d, err := time.ParseInLocation(respond.DateLayout, s, time.Local)
		if err != nil {
			return f, err
		}
		f.From = &d
	}
	if s := q.Get("to"); s != "" {
		d, err := time.ParseInLocation(respond.DateLayout, s, time.Local)
		if err != nil {
			return f, err
		}
		end := time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 0, d.Location())
		f.To = &end
	}

	var err error
	f.Limit, err = respond.Int(r, "limit")

	return f, err
}

func GetTransactions(log *slog.Logger, ledger Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.transactions.GetTransactions"

		f, err := filter(r)
		if err != nil {
			http.Error(w, "Invalid filter", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		list, err := ledger.ListTransactions(ctx, f)
		if err != nil {
			respond.Error(w, log, op, err)
			return
		}

		render.JSON(w, r, list)
	}
}

func SaveTransaction(log *slog.Logger, ledger Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.transactions.SaveTransaction"

		var req cashregister.ManualTransaction
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "ошибка парсинга JSON", http.StatusBadRequest)
			return
		}

		t, err := ledger.CreateTransaction(r.Context(), req)
		if err != nil {
			respond.Error(w, log, op, err)
			return
		}

		log.Info("операция добавлена", slog.String("category", t.Category), slog.Float64("amount", t.Amount))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, t)
	}
}

func DeleteTransaction(log *slog.Logger, ledger Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.transactions.DeleteTransaction"

		id, ok := respond.ID(r, "id")
		if !ok {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		if err := ledger.DeleteTransaction(r.Context(), id); err != nil {
			respond.Error(w, log, op, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

type reconcileRequest struct {
	ActualCash  *float64 `json:"actualCash"`
	ActualCard  *float64 `json:"actualCard"`
	Description string   `json:"description"`
}

func Reconcile(log *slog.Logger, ledger Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.transactions.Reconcile"

		var req reconcileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "ошибка парсинга JSON", http.StatusBadRequest)
			return
		}
		if req.ActualCash == nil || req.ActualCard == nil {
			http.Error(w, "actualCash and actualCard are required", http.StatusBadRequest)
			return
		}

		res, err := ledger.Reconcile(r.Context(), *req.ActualCash, *req.ActualCard, req.Description)
		if err != nil {
			respond.Error(w, log, op, err)
			return
		}

		if res.Adjustment != nil {
			log.Info("касса сверена с корректировкой",
				slog.Float64("cash", res.Adjustment.Cash),
				slog.Float64("card", res.Adjustment.Card),
			)
		}

		render.JSON(w, r, res)
	}
}
