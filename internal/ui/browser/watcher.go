// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package browser

import (
	"context"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultRefreshInterval is the minimum gap between two listing refreshes.
const DefaultRefreshInterval = 250 * time.Millisecond

// Watcher reports changes to the entries of one directory.
//
// Bursts of filesystem events are coalesced: at most one signal is pending
// on Changes, and signals are spaced by the refresh interval.
type Watcher struct {
	fs      *fsnotify.Watcher
	limiter *rate.Limiter
	logger  *zap.Logger

	pending chan struct{}
	changes chan struct{}

	mu  sync.Mutex
	dir string

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewWatcher starts a watcher. interval <= 0 uses DefaultRefreshInterval.
func NewWatcher(interval time.Duration, logger *zap.Logger) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		fs:      fs,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		logger:  logger,
		pending: make(chan struct{}, 1),
		changes: make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
	}

	go w.processEvents()
	go w.processPending()
	return w, nil
}

// SetDirectory switches the watch to dir.
func (w *Watcher) SetDirectory(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if dir == w.dir {
		return nil
	}
	if w.dir != "" {
		_ = w.fs.Remove(w.dir)
	}
	w.dir = ""
	if err := w.fs.Add(dir); err != nil {
		return err
	}
	w.dir = dir
	return nil
}

// Directory returns the watched directory, or "" when none is watched.
func (w *Watcher) Directory() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dir
}

// Changes delivers one value per refresh the listing needs. It is closed by Close.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		w.cancel()
		err = w.fs.Close()
	})
	return err
}

func (w *Watcher) processEvents() {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("directory watcher panicked", zap.Any("panic", r))
		}
	}()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			// Only entry-set changes matter to a directory listing.
			if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			select {
			case w.pending <- struct{}{}:
			default:
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Debug("directory watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) processPending() {
	defer close(w.changes)

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.pending:
		}

		if err := w.limiter.Wait(w.ctx); err != nil {
			return
		}

		select {
		case w.changes <- struct{}{}:
		default:
		}
	}
}
