package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/client"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/service/backup"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/service/cashregister"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(&app{}).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "servicectl:", err)
		os.Exit(1)
	}
}

// API is the part of the client the commands use.
type API interface {
	Repairs(ctx context.Context, q client.RepairQuery) ([]storage.Repair, error)
	Repair(ctx context.Context, id int64) (*storage.Repair, error)
	NextReceiptID(ctx context.Context) (int64, error)
	SetStatus(ctx context.Context, id int64, status, paymentType string) (*storage.Repair, error)
	Parts(ctx context.Context, q client.PartQuery) ([]storage.Part, error)
	RepairParts(ctx context.Context, id int64) ([]storage.Part, error)
	Balances(ctx context.Context) (*storage.Balances, error)
	Reconcile(ctx context.Context, actualCash, actualCard float64, description string) (*cashregister.ReconcileResult, error)
	Backups(ctx context.Context) ([]backup.Info, error)
	CreateBackup(ctx context.Context) (*backup.Info, error)
}

// app holds the global flags and the lazily connected client.
type app struct {
	addr  string
	token string
	api   API
}

func (a *app) client(ctx context.Context) (API, error) {
	if a.api != nil {
		return a.api, nil
	}

	c := client.New(a.addr, client.WithToken(a.token), client.WithClientID("servicectl"))
	// без токена берём его у сервера, как это делает десктоп
	if a.token == "" {
		if _, err := c.Connect(ctx); err != nil {
			return nil, fmt.Errorf("connect to %s: %w", a.addr, err)
		}
	}
	a.api = c

	return c, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
