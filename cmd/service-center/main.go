package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/config"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/middleware/metrics"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/scheduler"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/service/backup"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/service/cashregister"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/service/executor"
	generate_excel "github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/service/generate-excel"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/service/lock"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/service/notify"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/service/repair"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/service/search"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/service/warehouse"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/storage/mysql"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/syncserver"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

// задаётся при сборке: -ldflags "-X main.version=1.4.0"
var version = "dev"

type services struct {
	repairs   *repair.RepairService
	warehouse *warehouse.WarehouseService
	register  *cashregister.CashRegisterService
	search    *search.SearchService
	executors *executor.ExecutorService
	backups   *backup.BackupService
	reports   *generate_excel.GenerateExcelService
	locks     *lock.Manager
	issuer    *syncserver.Issuer
	sync      *syncserver.Server
	metrics   *metrics.Metrics
	token     string
}

func main() {
	cfg := config.MustConfig()

	log := setupLogger(cfg.Env, cfg.ErrorLog)

	storage, err := mysql.New(*cfg)
	if err != nil {
		log.Error("failed to open db", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer storage.Close()

	if cfg.Database.Migrate {
		if err := storage.Migrate(); err != nil {
			log.Error("failed to migrate db", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	token := cfg.Auth.APIToken
	if token == "" {
		token = uuid.NewString()
		log.Warn("api_token is not set, generated one for this run; local clients read it from /api/server-info")
	}

	repairService := repair.NewRepairService(log, storage)
	searchService := search.NewSearchService(storage)
	locks := lock.NewManager(cfg.Auth.LockTTL)
	issuer := syncserver.NewIssuer(cfg.Auth.JWTSecret, cfg.SyncServer.TokenTTL)
	reports := generate_excel.NewGenerateService(storage)

	svc := services{
		repairs:   repairService,
		warehouse: warehouse.NewWarehouseService(log, storage, repairService),
		register:  cashregister.NewCashRegisterService(storage),
		search:    searchService,
		executors: executor.NewExecutorService(storage),
		backups:   backup.NewBackupService(log, storage, cfg.Backup.Dir, cfg.Backup.Keep),
		reports:   reports,
		locks:     locks,
		issuer:    issuer,
		sync: syncserver.New(log, cfg.SyncServer.Address,
			syncserver.NewRouter(log, issuer, searchService, repairService, locks)),
		metrics: metrics.New(prometheus.DefaultRegisterer),
		token:   token,
	}

	if cfg.SyncServer.AutoStart {
		if err := svc.sync.Start(); err != nil {
			log.Error("failed to start sync server", slog.String("error", err.Error()))
		}
	}

	schedule := scheduler.Jobs{
		Backups:  svc.backups,
		Locks:    locks,
		BackupAt: cfg.Backup.At,
		ReportAt: cfg.Mail.ReportAt,
	}
	if mail := notify.NewMailService(log, cfg.Mail, reports, storage, cfg.Location()); mail.Enabled() {
		schedule.Reports = mail
	} else {
		log.Info("smtp is not configured, daily report mail is off")
	}

	jobs, err := scheduler.New(log, cfg.Location(), schedule)
	if err != nil {
		log.Error("failed to schedule jobs", slog.String("error", err.Error()))
		os.Exit(1)
	}
	jobs.Start()
	defer jobs.Stop()

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      routes(*cfg, log, storage, svc),
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("server started", slog.String("address", cfg.HTTPServer.Address), slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed start server", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := svc.sync.Stop(ctx); err != nil {
		log.Error("sync server shutdown", slog.String("error", err.Error()))
	}
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown", slog.String("error", err.Error()))
	}

	log.Info("server stopped")
}

type dualHandler struct {
	coreHandler  slog.Handler
	errorHandler slog.Handler
}

func (h *dualHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return h.coreHandler.Enabled(ctx, lvl) || h.errorHandler.Enabled(ctx, lvl)
}

func (h *dualHandler) Handle(ctx context.Context, r slog.Record) error {
	var err error

	// всё пишем в stdout
	if h.coreHandler.Enabled(ctx, r.Level) {
		if err = h.coreHandler.Handle(ctx, r); err != nil {
			return err
		}
	}

	// ошибки дублируем в файл, сбой записи в файл не роняет запрос
	if r.Level >= slog.LevelError && h.errorHandler.Enabled(ctx, r.Level) {
		_ = h.errorHandler.Handle(ctx, r.Clone())
	}

	return err
}

func (h *dualHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &dualHandler{
		coreHandler:  h.coreHandler.WithAttrs(attrs),
		errorHandler: h.errorHandler.WithAttrs(attrs),
	}
}

func (h *dualHandler) WithGroup(name string) slog.Handler {
	return &dualHandler{
		coreHandler:  h.coreHandler.WithGroup(name),
		errorHandler: h.errorHandler.WithGroup(name),
	}
}

func setupLogger(env, errorLog string) *slog.Logger {
	level := slog.LevelDebug
	if env == envProd {
		level = slog.LevelInfo
	}

	var coreHandler slog.Handler
	switch env {
	case envDev:
		coreHandler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	case envLocal, envProd:
		coreHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	default:
		coreHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}

	if errorLog == "" {
		return slog.New(coreHandler)
	}

	errorFile, err := os.OpenFile(errorLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		slog.Warn("Cannot open error log file", "error", err)
		return slog.New(coreHandler)
	}

	errorHandler := slog.NewTextHandler(errorFile, &slog.HandlerOptions{Level: slog.LevelError})

	return slog.New(&dualHandler{coreHandler: coreHandler, errorHandler: errorHandler})
}
