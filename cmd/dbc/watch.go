package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"dbc/internal/driver"
)

const watchDebounce = 150 * time.Millisecond

// watchAndCheck runs check once and then again after every batch of
// source changes under paths, until ctx is cancelled. Check failures are
// printed and do not stop the loop.
func watchAndCheck(ctx context.Context, paths []string, log io.Writer, check func(context.Context) error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer w.Close()

	dirs, err := watchDirs(paths)
	if err != nil {
		return err
	}
	for _, d := range dirs {
		if err := w.Add(d); err != nil {
			return fmt.Errorf("failed to watch %s: %w", d, err)
		}
	}

	rerun := func() {
		if err := check(ctx); err != nil {
			var ee *exitError
			if !errors.As(err, &ee) || !ee.reported {
				fmt.Fprintf(log, "error: %v\n", err)
			}
		}
		fmt.Fprintf(log, "watching %d directories for changes\n", len(dirs))
	}
	rerun()

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					_ = w.Add(ev.Name)
				}
			}
			if !relevant(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			fire = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(log, "watch: %v\n", err)
		case <-fire:
			fire = nil
			rerun()
		}
	}
}

// relevant reports whether ev changes a source file.
func relevant(ev fsnotify.Event) bool {
	if filepath.Ext(ev.Name) != driver.SourceExt {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
}

// watchDirs returns every directory under paths; a file contributes its
// parent.
func watchDirs(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(d string) {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !fi.IsDir() {
			add(filepath.Dir(p))
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
