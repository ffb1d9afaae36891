package main

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// startBackupWatcher registers files dropped into the backup directory so
// operator-made dumps show up in the backups API. Create events are debounced
// briefly so partially written files are not registered mid-copy.
func startBackupWatcher(ctx context.Context) (func(), error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(cfg.BackupDir); err != nil {
		w.Close()
		return nil, err
	}
	log.Info().Str("dir", cfg.BackupDir).Msg("watching backup directory")

	go func() {
		pending := map[string]time.Time{}
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
					pending[filepath.Base(ev.Name)] = time.Now()
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Msg("backup watcher error")
			case <-ticker.C:
				now := time.Now()
				for name, seen := range pending {
					if now.Sub(seen) >= time.Second {
						registerExternalBackup(name)
						delete(pending, name)
					}
				}
			}
		}
	}()

	return func() { w.Close() }, nil
}
