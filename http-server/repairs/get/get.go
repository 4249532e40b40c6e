package get

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/render"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/http-server/respond"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/storage"
)

type RepairSearcher interface {
	Repairs(ctx context.Context, f storage.RepairFilter) ([]storage.Repair, error)
}

type RepairGetter interface {
	Get(ctx context.Context, id int64) (*storage.Repair, error)
	NextReceiptID(ctx context.Context) (int64, error)
}

// Filter reads the repair list query: search, status (repeated or comma
// separated), executor, limit and offset.
func Filter(r *http.Request) (storage.RepairFilter, error) {
	q := r.URL.Query()

	f := storage.RepairFilter{
		Search:   strings.TrimSpace(q.Get("search")),
		Executor: q.Get("executor"),
	}
	for _, s := range q["status"] {
		for _, st := range strings.Split(s, ",") {
			if st = strings.TrimSpace(st); st != "" {
				f.Statuses = append(f.Statuses, st)
			}
		}
	}

	var err error
	if f.Limit, err = respond.Int(r, "limit"); err != nil {
		return f, err
	}
	if f.Offset, err = respond.Int(r, "offset"); err != nil {
		return f, err
	}

	return f, nil
}

func GetRepairs(log *slog.Logger, search RepairSearcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.repairs.get.GetRepairs"

		f, err := Filter(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		repairs, err := search.Repairs(ctx, f)
		if err != nil {
			respond.Error(w, log, op, err)
			return
		}

		render.JSON(w, r, repairs)
	}
}

func GetRepair(log *slog.Logger, repairs RepairGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.repairs.get.GetRepair"

		id, ok := respond.ID(r, "id")
		if !ok {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		repair, err := repairs.Get(ctx, id)
		if err != nil {
			respond.Error(w, log, op, err)
			return
		}

		render.JSON(w, r, repair)
	}
}

func NextReceiptID(log *slog.Logger, repairs RepairGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.repairs.get.NextReceiptID"

		next, err := repairs.NextReceiptID(r.Context())
		if err != nil {
			respond.Error(w, log, op, err)
			return
		}

		render.JSON(w, r, map[string]int64{"nextReceiptId": next})
	}
}
