package categories

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/http-server/respond"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/constants"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/storage"
)

type Categories interface {
	ListCategories(ctx context.Context) ([]storage.Category, error)
	CreateCategory(ctx context.Context, c storage.Category) (int64, error)
	DeleteCategory(ctx context.Context, id int64) error
}

func GetCategories(log *slog.Logger, store Categories) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.categories.GetCategories"

		list, err := store.ListCategories(r.Context())
		if err != nil {
			respond.Error(w, log, op, err)
			return
		}

		render.JSON(w, r, list)
	}
}

func SaveCategory(log *slog.Logger, store Categories) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.categories.SaveCategory"

		var c storage.Category
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			http.Error(w, "ошибка парсинга JSON", http.StatusBadRequest)
			return
		}

		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			http.Error(w, "нужно указать название", http.StatusBadRequest)
			return
		}
		if constants.IsSystemCategory(c.Name) {
			http.Error(w, "системная категория", http.StatusBadRequest)
			return
		}
		if c.Kind == "" {
			c.Kind = constants.CategoryKindExpense
		}
		if c.Kind != constants.CategoryKindExpense && c.Kind != constants.CategoryKindIncome {
			http.Error(w, "kind must be expense or income", http.StatusBadRequest)
			return
		}

		id, err := store.CreateCategory(r.Context(), c)
		if err != nil {
			respond.Error(w, log, op, err)
			return
		}
		c.ID = id

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, c)
	}
}

func DeleteCategory(log *slog.Logger, store Categories) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.categories.DeleteCategory"

		id, ok := respond.ID(r, "id")
		if !ok {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		if err := store.DeleteCategory(r.Context(), id); err != nil {
			respond.Error(w, log, op, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
