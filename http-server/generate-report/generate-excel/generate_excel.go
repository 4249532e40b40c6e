package generate_excel

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/http-server/respond"
)

type ReportGenerator interface {
	TransactionsReport(ctx context.Context, from, to time.Time) ([]byte, error)
	RepairsReport(ctx context.Context, from, to time.Time) ([]byte, error)
}

func TransactionsReport(log *slog.Logger, gen ReportGenerator) http.HandlerFunc {
	return report(log, "handler.report.TransactionsReport", "Kasa", gen.TransactionsReport)
}

func RepairsReport(log *slog.Logger, gen ReportGenerator) http.HandlerFunc {
	return report(log, "handler.report.RepairsReport", "Remonty", gen.RepairsReport)
}

func report(log *slog.Logger, op, prefix string, build func(ctx context.Context, from, to time.Time) ([]byte, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, to, err := respond.Period(r, time.Now())
		if err != nil {
			http.Error(w, "invalid date", http.StatusBadRequest)
			return
		}
		if to.Before(from) {
			http.Error(w, "to is before from", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second) // на Excel можно побольше времени
		defer cancel()

		excelBytes, err := build(ctx, from, to)
		if err != nil {
			log.Error("failed to generate excel", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		fileName := fmt.Sprintf("%s_%s_%s.xlsx", prefix, from.Format("2006-01-02"), to.Format("2006-01-02"))

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", "attachment; filename="+fileName)
		w.Write(excelBytes)
	}
}
