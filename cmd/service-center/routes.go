package main

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/http-server/backups"
	cash_register "github.com/kasnew/service-center-app-AI-PC-APK-sub000/http-server/cash-register"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/http-server/categories"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/http-server/counterparties"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/http-server/executors"
	generate_excel "github.com/kasnew/service-center-app-AI-PC-APK-sub000/http-server/generate-report/generate-excel"
	getproducts "github.com/kasnew/service-center-app-AI-PC-APK-sub000/http-server/products/get"
	removeproducts "github.com/kasnew/service-center-app-AI-PC-APK-sub000/http-server/products/remove"
	saveproducts "github.com/kasnew/service-center-app-AI-PC-APK-sub000/http-server/products/save"
	updateproducts "github.com/kasnew/service-center-app-AI-PC-APK-sub000/http-server/products/update"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/http-server/repairs/get"
	repairlock "github.com/kasnew/service-center-app-AI-PC-APK-sub000/http-server/repairs/lock"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/http-server/repairs/parts"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/http-server/repairs/remove"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/http-server/repairs/save"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/http-server/repairs/update"
	server_info "github.com/kasnew/service-center-app-AI-PC-APK-sub000/http-server/server-info"
	sync_server "github.com/kasnew/service-center-app-AI-PC-APK-sub000/http-server/sync-server"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/http-server/transactions"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/config"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/middleware/auth"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/storage/mysql"
)

func routes(cfg config.Config, log *slog.Logger, storage *mysql.Storage, svc services) *chi.Mux {
	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", repairlock.ClientHeader},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	})

	router.Use(corsHandler.Handler)

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(svc.metrics.Middleware)

	router.Handle("/metrics", promhttp.Handler())

	// без RealIP: токен отдаётся только по настоящему адресу соединения
	router.Get("/api/server-info", server_info.ServerInfo(log, version, svc.token, svc.sync))

	adminAuth := auth.BasicAuth(cfg.AdminLogin, cfg.AdminPass)

	router.Route("/api", func(r chi.Router) {
		//ip пользователя, нужен для владельца блокировки
		r.Use(middleware.RealIP)
		r.Use(auth.BearerToken(svc.token, cfg.AdminLogin, cfg.AdminPass))

		// ремонты
		r.Get("/repairs", get.GetRepairs(log, svc.search))
		r.Post("/repairs", save.SaveRepair(log, svc.repairs))
		r.Get("/repairs/next-receipt-id", get.NextReceiptID(log, svc.repairs))
		r.Get("/repairs/{id}", get.GetRepair(log, svc.repairs))
		r.Put("/repairs/{id}", update.UpdateRepair(log, svc.repairs))
		r.Delete("/repairs/{id}", remove.DeleteRepair(log, svc.repairs))
		// основной клиент блокировку не спрашивает, она только для мобильных
		r.Put("/repairs/{id}/status", update.UpdateStatus(log, svc.repairs, nil, repairlock.ClientOwner))
		r.Put("/repairs/{id}/payment", update.UpdatePayment(log, svc.repairs))

		r.Get("/repairs/{id}/parts", parts.GetParts(log, svc.warehouse))
		r.Post("/repairs/{id}/parts", parts.AddPart(log, svc.warehouse))
		r.Delete("/repairs/{id}/parts/{partId}", parts.RemovePart(log, svc.warehouse))

		r.Get("/repairs/{id}/check-repair-lock", repairlock.Check(log, svc.locks))
		r.Post("/repairs/{id}/lock-repair", repairlock.Acquire(log, svc.locks, repairlock.ClientOwner))
		r.Delete("/repairs/{id}/lock-repair", repairlock.Release(log, svc.locks))

		// склад
		r.Get("/products", getproducts.GetProducts(log, svc.warehouse))
		r.Post("/products", saveproducts.ReceiveProducts(log, svc.warehouse))
		r.Get("/products/grouped", getproducts.GetGrouped(log, svc.warehouse))
		r.Post("/products/import", saveproducts.ImportProducts(log, svc.warehouse))
		r.Put("/products/{id}", updateproducts.UpdateProduct(log, svc.warehouse))
		r.Delete("/products/{id}", removeproducts.DeleteProduct(log, svc.warehouse))
		r.Post("/products/{id}/write-off", updateproducts.WriteOffProduct(log, svc.warehouse))

		r.Get("/executors", executors.GetExecutors(log, svc.executors))
		r.Post("/executors", executors.SaveExecutor(log, svc.executors))
		r.Put("/executors/{id}", executors.UpdateExecutor(log, svc.executors))
		r.Delete("/executors/{id}", executors.DeleteExecutor(log, svc.executors))
		r.Get("/executors/{id}/earnings", executors.GetEarnings(log, svc.executors))

		r.Get("/counterparties", counterparties.GetCounterparties(log, storage))
		r.Post("/counterparties", counterparties.SaveCounterparty(log, storage))
		r.Put("/counterparties/{id}", counterparties.UpdateCounterparty(log, storage))
		r.Delete("/counterparties/{id}", counterparties.DeleteCounterparty(log, storage))

		r.Get("/categories", categories.GetCategories(log, storage))
		r.Post("/categories", categories.SaveCategory(log, storage))
		r.Delete("/categories/{id}", categories.DeleteCategory(log, storage))

		// касса
		r.Get("/transactions", transactions.GetTransactions(log, svc.register))
		r.Post("/transactions", transactions.SaveTransaction(log, svc.register))
		r.Post("/transactions/reconcile", transactions.Reconcile(log, svc.register))
		r.Delete("/transactions/{id}", transactions.DeleteTransaction(log, svc.register))

		r.Get("/cash-register/balances", cash_register.GetBalances(log, svc.register))
		r.Get("/cash-register/settings", cash_register.GetSettings(log, svc.register))
		r.With(adminAuth).Put("/cash-register/settings", cash_register.UpdateSettings(log, svc.register))

		// отчёты excel
		r.Get("/reports/transactions.xlsx", generate_excel.TransactionsReport(log, svc.reports))
		r.Get("/reports/repairs.xlsx", generate_excel.RepairsReport(log, svc.reports))

		r.Get("/sync-server", sync_server.GetStatus(log, svc.sync))
		r.With(adminAuth).Put("/sync-server", sync_server.Toggle(log, svc.sync))
		r.Post("/sync/pair", sync_server.Pair(log, svc.issuer))

		// adminPanel
		r.Route("/backups", func(admin chi.Router) {
			admin.Use(adminAuth)
			admin.Get("/", backups.GetBackups(log, svc.backups))
			admin.Post("/", backups.CreateBackup(log, svc.backups))
			admin.Delete("/{name}", backups.DeleteBackup(log, svc.backups))
			admin.Post("/{name}/restore", backups.RestoreBackup(log, svc.backups))
		})
	})

	frontend(router, log, cfg.FrontendDir)

	return router
}

// frontend отдаёт собранный vue, если он лежит рядом
func frontend(router chi.Router, log *slog.Logger, frontendDir string) {
	if frontendDir == "" {
		return
	}
	if _, err := os.Stat(frontendDir); err != nil {
		log.Warn("Папка фронтенда не найдена, отдаём только API", slog.String("path", frontendDir))
		return
	}

	fileServer := http.FileServer(http.Dir(frontendDir))

	router.Handle("/assets/*", fileServer)
	router.Handle("/js/*", fileServer)
	router.Handle("/css/*", fileServer)
	router.Handle("/img/*", fileServer)

	//SPA fallback: любой другой путь → index.html
	router.HandleFunc("/*", func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(frontendDir, filepath.Clean("/"+r.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			http.ServeFile(w, r, path)
			return
		}
		http.ServeFile(w, r, filepath.Join(frontendDir, "index.html"))
	})
}
