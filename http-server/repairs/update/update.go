package update

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/http-server/respond"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/service/lock"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/service/repair"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/storage"
)

type RepairUpdater interface {
	Update(ctx context.Context, id int64, in repair.Input) (*storage.Repair, error)
	SetStatus(ctx context.Context, id int64, status, paymentType string) (*storage.Repair, error)
	SetPaid(ctx context.Context, id int64, paid bool, paymentType string, stampToday bool) (*storage.Repair, error)
}

// Guard refuses a change when somebody else has the repair open. The desktop
// API passes nil; the sync server passes the lock manager.
type Guard interface {
	HeldByOther(repairID int64, owner string) (lock.Lock, bool)
}

type OwnerFunc func(r *http.Request) string

func UpdateRepair(log *slog.Logger, repairs RepairUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.repairs.update.UpdateRepair"

		id, ok := respond.ID(r, "id")
		if !ok {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		var req repair.Input
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Invalid JSON", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Invalid data", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		updated, err := repairs.Update(ctx, id, req)
		if err != nil {
			respond.Error(w, log, op, err)
			return
		}

		render.JSON(w, r, updated)
	}
}

type statusRequest struct {
	Status      string `json:"status"`
	PaymentType string `json:"paymentType"`
}

func UpdateStatus(log *slog.Logger, repairs RepairUpdater, guard Guard, owner OwnerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.repairs.update.UpdateStatus"

		id, ok := respond.ID(r, "id")
		if !ok {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		var req statusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid data", http.StatusBadRequest)
			return
		}

		if guard != nil {
			if l, held := guard.HeldByOther(id, owner(r)); held {
				log.Info("статус не изменён, ремонт открыт", slog.Int64("id", id), slog.String("holder", l.Owner))
				render.Status(r, http.StatusLocked)
				render.JSON(w, r, map[string]any{"locked": true, "lock": l})
				return
			}
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		updated, err := repairs.SetStatus(ctx, id, req.Status, req.PaymentType)
		if err != nil {
			respond.Error(w, log, op, err)
			return
		}

		render.JSON(w, r, updated)
	}
}

type paymentRequest struct {
	IsPaid      bool   `json:"isPaid"`
	PaymentType string `json:"paymentType"`
	StampToday  bool   `json:"stampToday"`
}

func UpdatePayment(log *slog.Logger, repairs RepairUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.repairs.update.UpdatePayment"

		id, ok := respond.ID(r, "id")
		if !ok {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		var req paymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid data", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		updated, err := repairs.SetPaid(ctx, id, req.IsPaid, req.PaymentType, req.StampToday)
		if err != nil {
			respond.Error(w, log, op, err)
			return
		}

		render.JSON(w, r, updated)
	}
}
