package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/service/backup"
)

type Backuper interface {
	Create(ctx context.Context) (*backup.Info, error)
}

type Reporter interface {
	SendDailyReport(ctx context.Context) error
}

type Sweeper interface {
	Sweep() int
}

type Jobs struct {
	Backups  Backuper
	Reports  Reporter
	Locks    Sweeper
	BackupAt string
	ReportAt string
}

type Scheduler struct {
	log *slog.Logger
	s   *gocron.Scheduler
}

const jobTimeout = 5 * time.Minute

func New(log *slog.Logger, loc *time.Location, jobs Jobs) (*Scheduler, error) {
	const op = "scheduler.New"

	s := gocron.NewScheduler(loc)
	sc := &Scheduler{log: log, s: s}

	if jobs.Backups != nil && jobs.BackupAt != "" {
		if _, err := s.Every(1).Day().At(jobs.BackupAt).Do(sc.backup, jobs.Backups); err != nil {
			return nil, fmt.Errorf("%s: backup job: %w", op, err)
		}
	}

	if jobs.Reports != nil && jobs.ReportAt != "" {
		if _, err := s.Every(1).Day().At(jobs.ReportAt).Do(sc.report, jobs.Reports); err != nil {
			return nil, fmt.Errorf("%s: report job: %w", op, err)
		}
	}

	if jobs.Locks != nil {
		if _, err := s.Every(1).Minute().Do(sc.sweep, jobs.Locks); err != nil {
			return nil, fmt.Errorf("%s: lock sweep job: %w", op, err)
		}
	}

	return sc, nil
}

// Start runs the jobs in the background.
func (sc *Scheduler) Start() {
	sc.s.StartAsync()
}

func (sc *Scheduler) Stop() {
	sc.s.Stop()
}

func (sc *Scheduler) JobCount() int {
	return len(sc.s.Jobs())
}

func (sc *Scheduler) backup(b Backuper) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	info, err := b.Create(ctx)
	if err != nil {
		sc.log.Error("scheduled backup failed", slog.String("error", err.Error()))
		return
	}
	sc.log.Info("scheduled backup created", slog.String("name", info.Name), slog.Int64("size", info.Size))
}

func (sc *Scheduler) report(r Reporter) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := r.SendDailyReport(ctx); err != nil {
		sc.log.Error("daily report failed", slog.String("error", err.Error()))
	}
}

func (sc *Scheduler) sweep(l Sweeper) {
	if n := l.Sweep(); n > 0 {
		sc.log.Debug("expired repair locks dropped", slog.Int("count", n))
	}
}
