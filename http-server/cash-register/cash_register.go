package cash_register

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/http-server/respond"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/service/cashregister"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/storage"
)

type Register interface {
	Balances(ctx context.Context) (storage.Balances, error)
	Settings(ctx context.Context) (*storage.CashRegisterSettings, error)
	UpdateSettings(ctx context.Context, upd cashregister.SettingsUpdate) (*storage.CashRegisterSettings, error)
}

func GetBalances(log *slog.Logger, register Register) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.cash-register.GetBalances"

		b, err := register.Balances(r.Context())
		if err != nil {
			respond.Error(w, log, op, err)
			return
		}

		render.JSON(w, r, b)
	}
}

func GetSettings(log *slog.Logger, register Register) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.cash-register.GetSettings"

		st, err := register.Settings(r.Context())
		if err != nil {
			respond.Error(w, log, op, err)
			return
		}

		render.JSON(w, r, st)
	}
}

func UpdateSettings(log *slog.Logger, register Register) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.cash-register.UpdateSettings"

		var req cashregister.SettingsUpdate
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "ошибка парсинга JSON", http.StatusBadRequest)
			return
		}

		st, err := register.UpdateSettings(r.Context(), req)
		if err != nil {
			respond.Error(w, log, op, err)
			return
		}

		log.Info("настройки кассы обновлены",
			slog.Bool("enabled", st.CashRegisterEnabled),
			slog.Float64("commission", st.CardCommissionPercent),
		)

		render.JSON(w, r, st)
	}
}
