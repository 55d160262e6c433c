package vecsync

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/ansuz/internal/cardstore"
	"github.com/starford/ansuz/internal/vecindex"
)

// debounce holds off re-indexing until writes settle: SQLite in WAL mode
// touches the database, -wal, and -shm files in quick bursts.
const debounce = 500 * time.Millisecond

// Watch watches the collection database file and re-runs Sync whenever the
// host writes to it, until ctx is cancelled. cb (if non-nil) is called with
// the indexed note count after each successful sync.
func Watch(ctx context.Context, db *cardstore.DB, repo vecindex.Repository, dbPath, deck string, logger *slog.Logger, cb func(notes int)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir := filepath.Dir(dbPath)
	if err := w.Add(dir); err != nil {
		return err
	}
	base := filepath.Base(dbPath)

	logger.Info("vecsync: watching collection", slog.String("path", dbPath))

	var syncTimer *time.Timer
	var syncCh <-chan time.Time

	scheduleSync := func() {
		if syncTimer == nil {
			syncTimer = time.NewTimer(debounce)
			syncCh = syncTimer.C
		} else {
			syncTimer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if syncTimer != nil {
				syncTimer.Stop()
			}
			logger.Info("vecsync: stopped")
			return nil

		case <-syncCh:
			n, err := Sync(ctx, db, repo, deck, logger)
			if err != nil {
				logger.Warn("vecsync: sync failed", slog.String("error", err.Error()))
				continue
			}
			if cb != nil {
				cb(n)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !strings.HasPrefix(filepath.Base(ev.Name), base) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			scheduleSync()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("vecsync: watcher error", slog.String("error", watchErr.Error()))
		}
	}
}
