package site

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Watcher reloads a Store when its content file changes on disk.
// The parent directory is watched so editors that replace the file by rename are picked up.
type Watcher struct {
	store    *Store
	watcher  *fsnotify.Watcher
	done     chan struct{}
	onReload func()
	file     string
	wg       sync.WaitGroup
	debounce time.Duration
}

// NewWatcher creates a watcher for the store's content file. onReload may be nil.
func NewWatcher(store *Store, debounce time.Duration, onReload func()) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	file, err := filepath.Abs(store.Path())
	if err != nil {
		_ = fsWatcher.Close()
		return nil, err
	}

	if err := fsWatcher.Add(filepath.Dir(file)); err != nil {
		_ = fsWatcher.Close()
		return nil, err
	}

	return &Watcher{
		store:    store,
		watcher:  fsWatcher,
		done:     make(chan struct{}),
		onReload: onReload,
		file:     file,
		debounce: debounce,
	}, nil
}

// Start begins watching in a goroutine.
func (w *Watcher) Start() {
	w.wg.Add(1)
	go w.loop()
}

// Stop terminates the watcher and waits for the loop to exit.
func (w *Watcher) Stop() {
	close(w.done)
	_ = w.watcher.Close()
	w.wg.Wait()
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	var timer *time.Timer
	var timerC <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.file {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			log.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("Site content change detected")

			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			timerC = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("Site content watcher error")

		case <-timerC:
			timerC = nil
			if err := w.store.Reload(); err != nil {
				log.Error().Err(err).Str("path", w.file).Msg("Site content reload failed, keeping previous content")
				continue
			}
			log.Info().Str("path", w.file).Msg("Site content reloaded")
			if w.onReload != nil {
				w.onReload()
			}
		}
	}
}
