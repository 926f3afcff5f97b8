package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/olimci/guffipedia/pkg/config"
	"github.com/olimci/guffipedia/pkg/utils/set"
)

// New creates a watcher for the project around configPath. Changes to paths
// matching an ignore pattern (relative to the project root) are dropped.
func New(configPath string, debounce time.Duration, ignore ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Watcher{
		watcher:    w,
		debounce:   debounce,
		configPath: configPath,
		root:       filepath.Dir(configPath),
		ignore:     slices.Clone(ignore),
		Events:     make(chan Event, 64),
		Errors:     make(chan error, 64),
	}, nil
}

type Watcher struct {
	Events chan Event
	Errors chan error

	watcher  *fsnotify.Watcher
	debounce time.Duration

	configPath string
	root       string
	ignore     []string
	watched    *set.Set[string]
}

func (w *Watcher) Start(ctx context.Context) error {
	w.rewatch(false)

	go w.loop(ctx)

	return nil
}

func (w *Watcher) loop(ctx context.Context) {
	var (
		timer         *time.Timer
		timerCh       <-chan time.Time
		pending       = set.New[string]()
		configChanged bool
	)

	resetTimer := func() {
		if timer == nil {
			timer = time.NewTimer(w.debounce)
			timerCh = timer.C
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(w.debounce)
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&fsnotify.Chmod == fsnotify.Chmod || w.ignored(ev.Name) {
				continue
			}
			if w.isConfigEvent(ev) {
				configChanged = true
				w.rewatch(true)
			}
			if ev.Op&fsnotify.Create == fsnotify.Create {
				w.addDirectoryIfNeeded(ev.Name)
			}
			pending.Add(filepath.Clean(ev.Name))
			resetTimer()

		case <-timerCh:
			timer = nil
			timerCh = nil
			if pending.Len() == 0 {
				continue
			}

			reason := "file change"
			if configChanged {
				reason = "config change"
			}
			lazySend(w.Events, Event{
				Reason: reason,
				Paths:  set.Sorted(pending),
				Config: configChanged,
			})
			pending.Clear()
			configChanged = false

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			lazySend(w.Errors, fmt.Errorf("watch error: %w", err))
		}
	}
}

func (w *Watcher) Close() error {
	if w.watcher == nil {
		return nil
	}
	return w.watcher.Close()
}

// ignored reports whether name matches an ignore pattern or is one of the
// temporary files written during atomic saves.
func (w *Watcher) ignored(name string) bool {
	base := filepath.Base(name)
	if ok, _ := doublestar.Match(".*.tmp-*", base); ok {
		return true
	}

	rel, err := filepath.Rel(w.root, name)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range w.ignore {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func (w *Watcher) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(w.root, p)
}

func (w *Watcher) addPath(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	if !info.IsDir() {
		return w.addWatch(root)
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignored(path) {
			return filepath.SkipDir
		}

		return w.addWatch(path)
	})
}

func (w *Watcher) addPaths(paths ...string) error {
	for _, path := range paths {
		if err := w.addPath(w.resolve(path)); err != nil {
			return err
		}
	}
	return nil
}

func (w *Watcher) addGlobs(patterns ...string) error {
	for _, pattern := range patterns {
		files, err := doublestar.Glob(os.DirFS(w.root), filepath.ToSlash(pattern))
		if err != nil {
			return err
		}
		for _, file := range files {
			if err := w.addPath(w.resolve(file)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *Watcher) addWatch(path string) error {
	normalized := filepath.Clean(path)
	if w.watched.Has(normalized) {
		return nil
	}
	if err := w.watcher.Add(normalized); err != nil {
		return err
	}
	w.watched.Add(normalized)
	return nil
}

func (w *Watcher) removeAllWatches() {
	for _, path := range w.watched.Values() {
		if err := w.watcher.Remove(path); err != nil {
			lazySend(w.Errors, fmt.Errorf("failed to remove watch: %w", err))
		}
	}
	w.watched.Clear()
}

// rewatch replaces every watch with the paths named by the current config.
// The config file itself is always watched, through its directory so that
// editors replacing the file do not drop the watch.
func (w *Watcher) rewatch(reload bool) {
	if w.watched == nil {
		w.watched = set.New[string]()
	}
	if reload {
		w.removeAllWatches()
	}

	if err := w.addWatch(w.root); err != nil {
		lazySend(w.Errors, fmt.Errorf("failed to watch config: %w", err))
	}

	cfg, err := config.Load(w.configPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			lazySend(w.Errors, fmt.Errorf("failed to reload config: %w", err))
		}
		cfg = config.DefaultConfig()
	}

	paths, globs := cfg.WatchedPaths()
	if err := w.addPaths(paths...); err != nil {
		lazySend(w.Errors, fmt.Errorf("failed to add paths: %w", err))
	}
	if err := w.addGlobs(globs...); err != nil {
		lazySend(w.Errors, fmt.Errorf("failed to add globs: %w", err))
	}
}

func (w *Watcher) isConfigEvent(ev fsnotify.Event) bool {
	if w.configPath == "" {
		return false
	}
	return filepath.Clean(ev.Name) == filepath.Clean(w.configPath)
}

func (w *Watcher) addDirectoryIfNeeded(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.addPath(path); err != nil {
		lazySend(w.Errors, fmt.Errorf("failed to watch new directory: %w", err))
	}
}

// lazySend delivers value unless ch is full, so a slow consumer never blocks
// the watch loop.
func lazySend[T any](ch chan<- T, value T) {
	select {
	case ch <- value:
	default:
	}
}
