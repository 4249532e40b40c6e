package get

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/render"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/http-server/respond"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/storage"
)

type Products interface {
	List(ctx context.Context, f storage.PartFilter) ([]storage.Part, error)
	Grouped(ctx context.Context, f storage.PartFilter) ([]storage.PartGroup, error)
}

func filter(r *http.Request) (storage.PartFilter, error) {
	q := r.URL.Query()
	f := storage.PartFilter{
		Search:   strings.TrimSpace(q.Get("search")),
		Supplier: q.Get("supplier"),
	}

	if s := q.Get("inStock"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return f, err
		}
		f.InStock = &v
	}

	var err error
	f.Limit, err = respond.Int(r, "limit")

	return f, err
}

func GetProducts(log *slog.Logger, products Products) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.products.get.GetProducts"

		f, err := filter(r)
		if err != nil {
			http.Error(w, "Invalid filter", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		parts, err := products.List(ctx, f)
		if err != nil {
			respond.Error(w, log, op, err)
			return
		}

		render.JSON(w, r, parts)
	}
}

func GetGrouped(log *slog.Logger, products Products) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.products.get.GetGrouped"

		f, err := filter(r)
		if err != nil {
			http.Error(w, "Invalid filter", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		groups, err := products.Grouped(ctx, f)
		if err != nil {
			respond.Error(w, log, op, err)
			return
		}

		render.JSON(w, r, groups)
	}
}
