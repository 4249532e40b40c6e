package parts

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/http-server/respond"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/service/warehouse"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/storage"
)

type RepairParts interface {
	RepairParts(ctx context.Context, repairID int64) ([]storage.Part, error)
	Attach(ctx context.Context, repairID, partID int64) (*storage.Repair, error)
	AddToRepair(ctx context.Context, repairID int64, in warehouse.PartInput) (*storage.Repair, error)
	Detach(ctx context.Context, repairID, partID int64) (*storage.Repair, error)
}

func GetParts(log *slog.Logger, parts RepairParts) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.repairs.parts.GetParts"

		id, ok := respond.ID(r, "id")
		if !ok {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		list, err := parts.RepairParts(r.Context(), id)
		if err != nil {
			respond.Error(w, log, op, err)
			return
		}

		render.JSON(w, r, list)
	}
}

// addRequest either takes a part from stock (partId) or adds a new part
// bought for this repair (part).
type addRequest struct {
	PartID int64                `json:"partId"`
	Part   *warehouse.PartInput `json:"part"`
}

func AddPart(log *slog.Logger, parts RepairParts) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.repairs.parts.AddPart"

		id, ok := respond.ID(r, "id")
		if !ok {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		var req addRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid data", http.StatusBadRequest)
			return
		}
		if (req.PartID > 0) == (req.Part != nil) {
			http.Error(w, "нужно указать partId или part", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		var (
			repair *storage.Repair
			err    error
		)
		if req.PartID > 0 {
			repair, err = parts.Attach(ctx, id, req.PartID)
		} else {
			repair, err = parts.AddToRepair(ctx, id, *req.Part)
		}
		if err != nil {
			respond.Error(w, log, op, err)
			return
		}

		render.JSON(w, r, repair)
	}
}

func RemovePart(log *slog.Logger, parts RepairParts) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.repairs.parts.RemovePart"

		id, ok := respond.ID(r, "id")
		if !ok {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}
		partID, ok := respond.ID(r, "partId")
		if !ok {
			http.Error(w, "Invalid part ID", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		repair, err := parts.Detach(ctx, id, partID)
		if err != nil {
			respond.Error(w, log, op, err)
			return
		}

		render.JSON(w, r, repair)
	}
}
