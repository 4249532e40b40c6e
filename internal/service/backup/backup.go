package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"golang.org/x/sync/errgroup"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/storage"
)

const (
	prefix = "backup-"
	suffix = ".json.gz"
)

var (
	ErrInvalidName = errors.New("invalid backup name")
	ErrNotFound    = errors.New("backup not found")
)

type Storage interface {
	ExportSnapshot(ctx context.Context) (*storage.Snapshot, error)
	RestoreSnapshot(ctx context.Context, snap *storage.Snapshot) error
}

type Info struct {
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

type BackupService struct {
	log     *slog.Logger
	storage Storage
	dir     string
	keep    int
	now     func() time.Time
}

func NewBackupService(log *slog.Logger, storage Storage, dir string, keep int) *BackupService {
	return &BackupService{log: log, storage: storage, dir: dir, keep: keep, now: time.Now}
}

// Create writes a compressed snapshot of the database and prunes old copies.
func (s *BackupService) Create(ctx context.Context) (*Info, error) {
	const op = "service.backup.Create"

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	snap, err := s.storage.ExportSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	name := fmt.Sprintf("%s%s-%s%s", prefix, now.Format("20060102-150405"), uuid.NewString()[:8], suffix)
	path := filepath.Join(s.dir, name)

	tmp, err := os.CreateTemp(s.dir, ".tmp-backup-*")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer os.Remove(tmp.Name())

	if err := writeSnapshot(ctx, tmp, snap); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("backup created",
		slog.String("op", op),
		slog.String("name", name),
		slog.Int64("size", fi.Size()),
		slog.Int("repairs", len(snap.Repairs)),
	)

	if removed, err := s.Prune(); err != nil {
		s.log.Error("failed to prune backups", slog.String("op", op), slog.String("error", err.Error()))
	} else if removed > 0 {
		s.log.Info("old backups removed", slog.String("op", op), slog.Int("count", removed))
	}

	return &Info{Name: name, Size: fi.Size(), CreatedAt: now}, nil
}

// writeSnapshot encodes and compresses in two goroutines joined by a pipe.
func writeSnapshot(ctx context.Context, w io.Writer, snap *storage.Snapshot) error {
	pr, pw := io.Pipe()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := json.NewEncoder(pw).Encode(snap)
		pw.CloseWithError(err)
		return err
	})
	g.Go(func() error {
		zw, err := gzip.NewWriterLevel(w, gzip.BestCompression)
		if err != nil {
			pr.CloseWithError(err)
			return err
		}
		if _, err := io.Copy(zw, pr); err != nil {
			pr.CloseWithError(err)
			return err
		}
		if err := gCtx.Err(); err != nil {
			return err
		}
		return zw.Close()
	})

	return g.Wait()
}

func readSnapshot(r io.Reader) (*storage.Snapshot, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var snap storage.Snapshot
	if err := json.NewDecoder(zr).Decode(&snap); err != nil {
		return nil, err
	}

	return &snap, nil
}

// List returns the backups, newest first.
func (s *BackupService) List() ([]Info, error) {
	const op = "service.backup.List"

	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return []Info{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]Info, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !validName(e.Name()) {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Info{Name: e.Name(), Size: fi.Size(), CreatedAt: fi.ModTime()})
	}

	// имя начинается с даты, поэтому сортировка по имени = по времени
	sort.Slice(out, func(i, j int) bool { return out[i].Name > out[j].Name })

	return out, nil
}

func (s *BackupService) Delete(name string) error {
	const op = "service.backup.Delete"

	if !validName(name) {
		return ErrInvalidName
	}

	err := os.Remove(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("backup deleted", slog.String("op", op), slog.String("name", name))

	return nil
}

// Restore replaces the database content with the backup.
func (s *BackupService) Restore(ctx context.Context, name string) error {
	const op = "service.backup.Restore"

	if !validName(name) {
		return ErrInvalidName
	}

	f, err := os.Open(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer f.Close()

	snap, err := readSnapshot(f)
	if err != nil {
		return fmt.Errorf("%s: чтение %s: %w", op, name, err)
	}

	if err := s.storage.RestoreSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Warn("database restored from backup",
		slog.String("op", op),
		slog.String("name", name),
		slog.Time("snapshot_at", snap.CreatedAt),
	)

	return nil
}

// Prune keeps the newest keep backups. keep <= 0 keeps everything.
func (s *BackupService) Prune() (int, error) {
	if s.keep <= 0 {
		return 0, nil
	}

	list, err := s.List()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, b := range list[min(s.keep, len(list)):] {
		if err := os.Remove(filepath.Join(s.dir, b.Name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return removed, err
		}
		removed++
	}

	return removed, nil
}

func validName(name string) bool {
	return name == filepath.Base(name) &&
		strings.HasPrefix(name, prefix) &&
		strings.HasSuffix(name, suffix) &&
		!strings.ContainsAny(name, `/\`)
}
