package respond

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/service/backup"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/service/cashregister"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/service/executor"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/service/lock"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/service/repair"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/service/warehouse"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/storage"
)

// Status maps a service or storage error onto an HTTP status code.
func Status(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, backup.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, lock.ErrLocked):
		return http.StatusLocked
	case errors.Is(err, cashregister.ErrSystemCategory):
		return http.StatusForbidden
	case errors.Is(err, storage.ErrConflict),
		errors.Is(err, storage.ErrPartNotInStock),
		errors.Is(err, storage.ErrPartNotInRepair),
		errors.Is(err, storage.ErrRegisterDisabled),
		errors.Is(err, cashregister.ErrRegisterLocked),
		errors.Is(err, lock.ErrNotHeld):
		return http.StatusConflict
	case errors.Is(err, repair.ErrInvalidRepair),
		errors.Is(err, repair.ErrInvalidStatus),
		errors.Is(err, repair.ErrPaymentTypeRequired),
		errors.Is(err, repair.ErrInvalidPaymentType),
		errors.Is(err, warehouse.ErrInvalidPart),
		errors.Is(err, warehouse.ErrInvalidPaymentType),
		errors.Is(err, warehouse.ErrUnknownFormat),
		errors.Is(err, warehouse.ErrInvalidImport),
		errors.Is(err, cashregister.ErrInvalidCommission),
		errors.Is(err, cashregister.ErrUnknownCategory),
		errors.Is(err, cashregister.ErrInvalidAmount),
		errors.Is(err, cashregister.ErrInvalidPaymentType),
		errors.Is(err, executor.ErrInvalidExecutor),
		errors.Is(err, backup.ErrInvalidName):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err to the client. Internal errors are logged and hidden
// behind a generic message, the rest are returned as is.
func Error(w http.ResponseWriter, log *slog.Logger, op string, err error) {
	code := Status(err)
	if code == http.StatusInternalServerError {
		log.Error("internal error", slog.String("op", op), slog.String("error", err.Error()))
		http.Error(w, "Внутренняя ошибка сервера", code)
		return
	}

	log.Debug("request rejected", slog.String("op", op), slog.Int("status", code), slog.String("error", err.Error()))
	http.Error(w, err.Error(), code)
}

// ID parses a positive int64 URL parameter.
func ID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

const DateLayout = "2006-01-02"

// Period reads the from/to query parameters (YYYY-MM-DD). Missing bounds
// default to the start of the current month and now; to covers the whole day.
func Period(r *http.Request, now time.Time) (time.Time, time.Time, error) {
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := now

	if s := r.URL.Query().Get("from"); s != "" {
		d, err := time.ParseInLocation(DateLayout, s, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = d
	}
	if s := r.URL.Query().Get("to"); s != "" {
		d, err := time.ParseInLocation(DateLayout, s, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 0, d.Location())
	}

	return from, to, nil
}

// Int reads an optional non-negative integer query parameter.
func Int(r *http.Request, name string) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errors.New("invalid " + name)
	}
	return n, nil
}
