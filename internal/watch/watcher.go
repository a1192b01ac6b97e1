package watch

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"site_analyzer/internal/batch"
	"site_analyzer/internal/config"
	"site_analyzer/internal/logger"
)

// Watcher monitors INBOX_DIR for new address files and enqueues batch jobs.
// An address file is a .txt file whose first non-empty line is the address.
type Watcher struct {
	cfg    config.Config
	runner *batch.Runner
}

func New(cfg config.Config, runner *batch.Runner) *Watcher {
	return &Watcher{cfg: cfg, runner: runner}
}

func (w *Watcher) Start(ctx context.Context) error {
	if !w.cfg.EnableWatcher {
		logger.Log.Info("watcher disabled")
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case evt := <-watcher.Events:
				if evt.Op&(fsnotify.Create|fsnotify.Rename) != 0 && isAddressFile(evt.Name) {
					w.enqueueFile(evt.Name)
				}
			case err := <-watcher.Errors:
				logger.Log.WithError(err).Warn("watcher error")
			}
		}
	}()
	return watcher.Add(w.cfg.InboxDir)
}

// Backfill enqueues pre-existing inbox files.
func (w *Watcher) Backfill() error {
	entries, err := filepath.Glob(filepath.Join(w.cfg.InboxDir, "*"))
	if err != nil {
		return err
	}
	for _, e := range entries {
		if isAddressFile(e) {
			w.enqueueFile(e)
		}
	}
	return nil
}

func (w *Watcher) enqueueFile(path string) {
	address, err := readAddress(path)
	if err != nil {
		logger.Log.WithError(err).Warnf("skip %s", path)
		return
	}
	if _, err := w.runner.Enqueue(address, filepath.Base(path)); err != nil {
		logger.Log.WithError(err).Warnf("enqueue %s", path)
	}
}

func isAddressFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".txt"
}

// readAddress returns the first non-empty line of the file.
func readAddress(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			return line, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("no address in %s", path)
}
