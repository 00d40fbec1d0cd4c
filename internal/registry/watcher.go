package registry

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"loradex/internal/safetensors"
	"loradex/internal/sidecar"
)

// Watcher counts structural changes to catalog files under a root so clients
// can poll for a cheap "catalog changed" signal instead of re-scanning.
type Watcher struct {
	root       string
	w          *fsnotify.Watcher
	log        zerolog.Logger
	generation atomic.Uint64
	lastChange atomic.Int64
}

// NewWatcher adds recursive watches under root. Call Run to process events.
func NewWatcher(root string, l zerolog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	wt := &Watcher{root: root, w: fw, log: l}
	if err := wt.watchRecursive(root); err != nil {
		_ = fw.Close()
		return nil, err
	}
	return wt, nil
}

// Generation returns the number of relevant changes seen so far.
func (wt *Watcher) Generation() uint64 { return wt.generation.Load() }

// LastChange returns the unix time of the latest relevant change, 0 if none.
func (wt *Watcher) LastChange() int64 { return wt.lastChange.Load() }

// Run processes events until ctx is done, then closes the watcher.
func (wt *Watcher) Run(ctx context.Context) {
	defer wt.w.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-wt.w.Events:
			if !ok {
				return
			}
			wt.handle(ev)
		case err, ok := <-wt.w.Errors:
			if !ok {
				return
			}
			wt.log.Warn().Str("op", "watch").Err(err).Msg("watcher error")
		}
	}
}

func (wt *Watcher) handle(ev fsnotify.Event) {
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			if err := wt.watchRecursive(ev.Name); err != nil {
				wt.log.Warn().Str("op", "watch").Str("path", ev.Name).Err(err).Msg("could not watch new directory")
			}
			wt.bump()
			return
		}
	}
	if !relevant(ev.Name) {
		return
	}
	if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Write) {
		wt.bump()
	}
}

func (wt *Watcher) bump() {
	wt.generation.Add(1)
	wt.lastChange.Store(time.Now().Unix())
	watchEvents.Inc()
}

func relevant(name string) bool {
	// Temp files of atomic writes carry a random suffix after the
	// extension and fall through here.
	switch strings.ToLower(filepath.Ext(name)) {
	case safetensors.Extension, PreviewExt, sidecar.Extension:
		return true
	}
	return false
}

// watchRecursive adds dir and every directory beneath it. Unreadable
// directories are logged and skipped; the inotify limit stops the walk.
func (wt *Watcher) watchRecursive(dir string) error {
	return filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			wt.log.Warn().Str("op", "watch").Str("path", p).Err(err).Msg("skipping")
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := wt.w.Add(p); err != nil {
			if errors.Is(err, syscall.ENOSPC) {
				wt.log.Warn().Str("op", "watch").Str("path", p).Msg("inotify watch limit reached; raise fs.inotify.max_user_watches for full coverage")
				return filepath.SkipAll
			}
			wt.log.Warn().Str("op", "watch").Str("path", p).Err(err).Msg("could not add watch")
		}
		return nil
	})
}
