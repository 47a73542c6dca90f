// Package inbox watches a drop directory and auto-imports tabular files.
// Dropping a .csv or .vcf file into the inbox behaves exactly like an upload
// through the import endpoint; processed files are renamed in place so a
// restart never re-imports them.
package inbox

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mizutama/koyomi/internal/registry"
)

// settleDelay gives the writing process time to finish before the file is
// read; fsnotify fires on the first byte, not the last.
const settleDelay = 500 * time.Millisecond

// Watch processes the inbox until ctx is cancelled. Files already present at
// startup are imported first, then fsnotify drives the rest.
func Watch(ctx context.Context, svc *registry.Service, dir string, logger *slog.Logger) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return err
	}
	logger.Info("inbox: watching", slog.String("dir", dir))

	sweep(ctx, svc, dir, logger)

	// pending debounces per-path: rapid Create+Write bursts for one file
	// collapse into a single import after the settle delay. A path has at
	// most one live timer; later events only refresh lastEvent, and the fire
	// handler re-arms instead of processing while writes are still fresh.
	// Resetting a timer that may have fired would schedule a duplicate run.
	pending := make(map[string]*time.Timer)
	lastEvent := make(map[string]time.Time)
	fire := make(chan string, 64)
	arm := func(path string, d time.Duration) *time.Timer {
		return time.AfterFunc(d, func() {
			select {
			case fire <- path:
			case <-ctx.Done():
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			for _, t := range pending {
				t.Stop()
			}
			logger.Info("inbox: stopped")
			return nil

		case path := <-fire:
			if wait := settleDelay - time.Since(lastEvent[path]); wait > 0 {
				pending[path] = arm(path, wait)
				continue
			}
			delete(pending, path)
			delete(lastEvent, path)
			process(ctx, svc, path, logger)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 || !importable(ev.Name) {
				continue
			}
			path := ev.Name
			lastEvent[path] = time.Now()
			if _, ok := pending[path]; !ok {
				pending[path] = arm(path, settleDelay)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("inbox: watch error", slog.String("error", watchErr.Error()))
		}
	}
}

// importable reports whether the file name has a supported extension.
func importable(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".vcf", ".vcard":
		return true
	}
	return false
}

// sweep imports any files already sitting in the inbox.
func sweep(ctx context.Context, svc *registry.Service, dir string, logger *slog.Logger) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Warn("inbox: sweep failed", slog.String("error", err.Error()))
		return
	}
	for _, e := range entries {
		if e.IsDir() || !importable(e.Name()) {
			continue
		}
		process(ctx, svc, filepath.Join(dir, e.Name()), logger)
	}
}

// process imports one file and renames it to mark the outcome.
func process(ctx context.Context, svc *registry.Service, path string, logger *slog.Logger) {
	log := logger.With(slog.String("file", filepath.Base(path)))

	f, err := os.Open(path)
	if err != nil {
		log.Warn("inbox: open failed", slog.String("error", err.Error()))
		return
	}
	rep, err := svc.ImportReader(ctx, path, f)
	_ = f.Close()

	suffix := ".imported"
	if err != nil {
		log.Warn("inbox: import failed", slog.String("error", err.Error()))
		suffix = ".failed"
	} else {
		log.Info("inbox: imported",
			slog.Int("total", rep.Total),
			slog.Int("accepted", rep.Accepted),
			slog.Int("rejected", rep.Rejected))
	}
	if err := os.Rename(path, path+suffix); err != nil {
		log.Warn("inbox: rename failed", slog.String("error", err.Error()))
	}
}
