// Package monitor watches the source and documentation trees and re-runs the
// validation pipeline when files change.
package monitor

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/ccd/internal/engine"
)

// ChangeCallback is called per file-system event before revalidation.
// kind is one of "created", "updated", "deleted".
type ChangeCallback func(kind, path string)

// ResultCallback is called after each completed revalidation.
type ResultCallback func(*engine.Result)

// Watch starts an fsnotify watcher over roots and re-runs eng after file
// changes, debounced so bursts of events (editor saves, checkouts) trigger a
// single run. It blocks until ctx is cancelled.
//
// New directories created at runtime are automatically added to the watch
// list.
func Watch(ctx context.Context, eng *engine.Engine, roots []string, debounce time.Duration, logger *slog.Logger, onChange ChangeCallback, onResult ResultCallback) error {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	for _, root := range roots {
		if err := addDirsRecursive(w, root); err != nil {
			return err
		}
	}

	logger.Info("monitor: started", slog.String("roots", strings.Join(roots, ", ")))

	var runTimer *time.Timer
	var runCh <-chan time.Time

	scheduleRun := func() {
		if runTimer == nil {
			runTimer = time.NewTimer(debounce)
			runCh = runTimer.C
		} else {
			runTimer.Reset(debounce)
		}
	}

	revalidate := func() {
		result, runErr := eng.Run(ctx, nil)
		if runErr != nil {
			logger.Warn("monitor: validation failed", slog.String("error", runErr.Error()))
			return
		}
		logger.Info("monitor: revalidated",
			slog.Int("files", result.Repo.TotalFiles),
			slog.Float64("health", result.Repo.AverageHealth))
		if onResult != nil {
			onResult(result)
		}
	}

	// Initial run so consumers have a report before the first change.
	revalidate()

	for {
		select {
		case <-ctx.Done():
			if runTimer != nil {
				runTimer.Stop()
			}
			logger.Info("monitor: stopped")
			return nil

		case <-runCh:
			revalidate()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("monitor: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					scheduleRun()
					continue
				}
			}

			if base := filepath.Base(ev.Name); strings.HasPrefix(base, ".") {
				continue
			}

			if onChange != nil {
				kind := "updated"
				switch {
				case ev.Op&fsnotify.Create != 0:
					kind = "created"
				case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
					kind = "deleted"
				}
				onChange(kind, ev.Name)
			}
			scheduleRun()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("monitor: error", slog.String("error", watchErr.Error()))
		}
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher,
// skipping hidden directories.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
