// Package watcher monitors a directory for newly created transcript files
// and hands them to a processing callback with bounded concurrency.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/recaptools/recap-cli/pkg/logging"
)

// settleDelay gives the writer time to finish before the file is read.
const settleDelay = 500 * time.Millisecond

// transcriptExtensions are the file types the watcher reacts to.
var transcriptExtensions = []string{".vtt", ".srt", ".txt"}

// Handler processes one newly created transcript file.
type Handler func(ctx context.Context, path string) error

// Watcher monitors a directory for new transcript files.
type Watcher struct {
	dir           string
	handler       Handler
	logger        logging.Logger
	fs            *fsnotify.Watcher
	maxConcurrent int
	semaphore     chan struct{}
	wg            sync.WaitGroup
}

// New creates a Watcher over dir with concurrency control.
func New(dir string, handler Handler, log logging.Logger, maxConcurrent int) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := fs.Add(dir); err != nil {
		fs.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	if maxConcurrent <= 0 {
		maxConcurrent = 2
	}
	if log == nil {
		log = logging.NewNopLogger()
	}

	return &Watcher{
		dir:           dir,
		handler:       handler,
		logger:        log.With(logging.F("component", "watcher")),
		fs:            fs,
		maxConcurrent: maxConcurrent,
		semaphore:     make(chan struct{}, maxConcurrent),
	}, nil
}

// Start monitors the directory until ctx is cancelled. Each new transcript
// file is handed to the handler in its own goroutine, bounded by the
// concurrency limit.
func (w *Watcher) Start(ctx context.Context) error {
	w.logger.Info("watching for transcripts",
		logging.F("dir", w.dir),
		logging.F("max_concurrent", w.maxConcurrent))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("waiting for in-flight processing")
			w.wg.Wait()
			w.logger.Info("watcher stopped")
			return ctx.Err()

		case event, ok := <-w.fs.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}

			if event.Op&fsnotify.Create != fsnotify.Create {
				continue
			}
			if !isTranscriptFile(event.Name) {
				w.logger.Debug("ignoring file", logging.F("path", event.Name))
				continue
			}

			w.logger.Info("new transcript detected", logging.F("path", event.Name))

			// Give the writer time to finish.
			time.Sleep(settleDelay)

			select {
			case w.semaphore <- struct{}{}:
				w.wg.Add(1)
				go func(path string) {
					defer w.wg.Done()
					defer func() { <-w.semaphore }()

					if err := w.handler(ctx, path); err != nil {
						w.logger.Error("processing failed",
							logging.F("path", path), logging.Err(err))
					}
				}(event.Name)
			case <-ctx.Done():
				return ctx.Err()
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("watcher error", logging.Err(err))
		}
	}
}

// Stop closes the underlying file watcher.
func (w *Watcher) Stop() error {
	return w.fs.Close()
}

func isTranscriptFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, want := range transcriptExtensions {
		if ext == want {
			return true
		}
	}
	return false
}
