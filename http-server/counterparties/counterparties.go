package counterparties

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/render"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/http-server/respond"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/storage"
)

type Counterparties interface {
	ListCounterparties(ctx context.Context) ([]storage.Counterparty, error)
	CreateCounterparty(ctx context.Context, c storage.Counterparty) (int64, error)
	UpdateCounterparty(ctx context.Context, c storage.Counterparty) error
	DeleteCounterparty(ctx context.Context, id int64) error
}

func GetCounterparties(log *slog.Logger, store Counterparties) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.counterparties.GetCounterparties"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		list, err := store.ListCounterparties(ctx)
		if err != nil {
			respond.Error(w, log, op, err)
			return
		}

		render.JSON(w, r, list)
	}
}

func decode(r *http.Request) (storage.Counterparty, bool) {
	var c storage.Counterparty
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		return c, false
	}
	c.Name = strings.TrimSpace(c.Name)
	return c, c.Name != ""
}

func SaveCounterparty(log *slog.Logger, store Counterparties) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.counterparties.SaveCounterparty"

		c, ok := decode(r)
		if !ok {
			http.Error(w, "нужно указать название", http.StatusBadRequest)
			return
		}

		id, err := store.CreateCounterparty(r.Context(), c)
		if err != nil {
			respond.Error(w, log, op, err)
			return
		}
		c.ID = id

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, c)
	}
}

func UpdateCounterparty(log *slog.Logger, store Counterparties) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.counterparties.UpdateCounterparty"

		id, ok := respond.ID(r, "id")
		if !ok {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		c, ok := decode(r)
		if !ok {
			http.Error(w, "нужно указать название", http.StatusBadRequest)
			return
		}
		c.ID = id

		if err := store.UpdateCounterparty(r.Context(), c); err != nil {
			respond.Error(w, log, op, err)
			return
		}

		render.JSON(w, r, c)
	}
}

func DeleteCounterparty(log *slog.Logger, store Counterparties) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.counterparties.DeleteCounterparty"

		id, ok := respond.ID(r, "id")
		if !ok {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		if err := store.DeleteCounterparty(r.Context(), id); err != nil {
			respond.Error(w, log, op, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
