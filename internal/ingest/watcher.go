package ingest

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchConfig controls the invoices-dir watcher.
type WatchConfig struct {
	Root     string
	Debounce time.Duration // coalesce rapid write/rename bursts
}

// Watch emits a tick on the returned channel whenever the invoices dir
// changes, debounced so one file drop triggers one rebuild. The channel is
// closed when ctx is done.
func Watch(ctx context.Context, cfg WatchConfig, logger *slog.Logger) (<-chan struct{}, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 500 * time.Millisecond
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("ingest.watch.create_failed", "error", err)
		return nil, err
	}
	if err := w.Add(cfg.Root); err != nil {
		_ = w.Close()
		logger.Error("ingest.watch.add_failed", "root", cfg.Root, "error", err)
		return nil, err
	}

	ticks := make(chan struct{}, 1)
	go func() {
		defer close(ticks)
		defer func() {
			if err := w.Close(); err != nil {
				logger.Warn("ingest.watch.close_error", "error", err)
			}
		}()

		var timer *time.Timer
		var timerC <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !relevant(ev) {
					continue
				}
				logger.Debug("ingest.watch.event", "op", ev.Op.String(), "name", ev.Name)
				if timer == nil {
					timer = time.NewTimer(cfg.Debounce)
					timerC = timer.C
				} else {
					timer.Reset(cfg.Debounce)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("ingest.watch.error", "error", err)
			case <-timerC:
				timer = nil
				timerC = nil
				select {
				case ticks <- struct{}{}:
				default:
				}
			}
		}
	}()
	return ticks, nil
}

func relevant(ev fsnotify.Event) bool {
	if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) &&
		!ev.Op.Has(fsnotify.Remove) && !ev.Op.Has(fsnotify.Rename) {
		return false
	}
	name := strings.ToLower(ev.Name)
	return strings.HasSuffix(name, ".txt")
}
