package ioadapt

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher observes a story's resource directory and reports changed
// files so long-running worlds can reload text and config without a
// restart. Events are debounced; editors fire several per save.
type Watcher struct {
	fsw      *fsnotify.Watcher
	log      *zap.Logger
	onChange func(path string)
	done     chan struct{}
}

const watchDebounce = 250 * time.Millisecond

// watchedExts are the resource file types worth a reload.
var watchedExts = map[string]bool{
	".yaml": true,
	".yml":  true,
	".txt":  true,
	".md":   true,
}

// NewWatcher starts watching dir. onChange runs on the watcher
// goroutine; keep it short and hand real work to the driver loop.
func NewWatcher(dir string, log *zap.Logger, onChange func(path string)) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}
	w := &Watcher{fsw: fsw, log: log, onChange: onChange, done: make(chan struct{})}
	go w.loop()
	log.Info("watching story resources", zap.String("dir", dir))
	return w, nil
}

func (w *Watcher) loop() {
	pending := map[string]struct{}{}
	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if !watchedExts[strings.ToLower(filepath.Ext(ev.Name))] {
				continue
			}
			pending[ev.Name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			fire = timer.C
		case <-fire:
			for path := range pending {
				w.log.Info("story resource changed", zap.String("path", path))
				if w.onChange != nil {
					w.onChange(path)
				}
			}
			pending = map[string]struct{}{}
			fire = nil
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("resource watcher", zap.Error(err))
		case <-w.done:
			return
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
