package server

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"keyplan/internal/errors"

	"github.com/fsnotify/fsnotify"
)

// defaultDebounceDelay coalesces the burst of events an editor or
// certificate renewer produces for one logical update
const defaultDebounceDelay = time.Second

// CertWatcher watches TLS files and invokes onChange once per settled update
type CertWatcher struct {
	mu sync.Mutex

	files       []string
	lastModTime map[string]time.Time

	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer

	stopChan   chan struct{}
	reloadChan chan struct{}

	onChange func()
	logger   *errors.Logger

	running bool
}

// NewCertWatcher creates a watcher for the non-empty paths in files
func NewCertWatcher(files []string, debounceDelay time.Duration, onChange func(), logger *errors.Logger) *CertWatcher {
	if debounceDelay <= 0 {
		debounceDelay = defaultDebounceDelay
	}
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	watched := slices.DeleteFunc(slices.Clone(files), func(f string) bool { return f == "" })

	return &CertWatcher{
		files:         watched,
		lastModTime:   make(map[string]time.Time),
		debounceDelay: debounceDelay,
		stopChan:      make(chan struct{}),
		reloadChan:    make(chan struct{}, 1),
		onChange:      onChange,
		logger:        logger,
	}
}

// Start begins watching. Files and their directories are both watched so
// atomic rename-into-place updates are seen.
func (cw *CertWatcher) Start() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.running {
		return fmt.Errorf("certificate watcher is already running")
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	cw.fsWatcher = fsWatcher

	cw.snapshotModTimes()
	watchedDirs := make(map[string]bool)
	for _, file := range cw.files {
		dir := filepath.Dir(file)
		if watchedDirs[dir] {
			continue
		}
		if err := fsWatcher.Add(dir); err != nil {
			cw.logger.Warn("Failed to watch certificate directory", "directory", dir, "error", err)
			continue
		}
		watchedDirs[dir] = true
	}

	cw.running = true
	go cw.watchLoop()

	cw.logger.Info("Certificate file watcher started",
		"files", cw.files,
		"debounce_delay", cw.debounceDelay)
	return nil
}

// Stop stops the watcher. Safe to call when not running.
func (cw *CertWatcher) Stop() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if !cw.running {
		return nil
	}
	close(cw.stopChan)
	if cw.debounceTimer != nil {
		cw.debounceTimer.Stop()
	}
	cw.running = false

	if err := cw.fsWatcher.Close(); err != nil {
		return fmt.Errorf("failed to close file watcher: %w", err)
	}
	cw.logger.Info("Certificate file watcher stopped")
	return nil
}

// IsRunning returns whether the watcher is currently running
func (cw *CertWatcher) IsRunning() bool {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	return cw.running
}

// WatchedFiles returns the files being watched
func (cw *CertWatcher) WatchedFiles() []string {
	return slices.Clone(cw.files)
}

func (cw *CertWatcher) watchLoop() {
	for {
		select {
		case event, ok := <-cw.fsWatcher.Events:
			if !ok {
				return
			}
			if cw.isRelevant(event) {
				cw.scheduleReload()
			}

		case err, ok := <-cw.fsWatcher.Errors:
			if !ok {
				return
			}
			cw.logger.LogError(err, "Certificate watcher error")

		case <-cw.reloadChan:
			if cw.anyFileChanged() {
				cw.logger.Info("Certificate files changed, reloading")
				cw.onChange()
			}

		case <-cw.stopChan:
			return
		}
	}
}

// isRelevant matches write, create and rename events on watched files
func (cw *CertWatcher) isRelevant(event fsnotify.Event) bool {
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
		return false
	}
	return slices.ContainsFunc(cw.files, func(file string) bool {
		return filepath.Clean(event.Name) == filepath.Clean(file)
	})
}

func (cw *CertWatcher) scheduleReload() {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.debounceTimer != nil {
		cw.debounceTimer.Stop()
	}
	cw.debounceTimer = time.AfterFunc(cw.debounceDelay, func() {
		select {
		case cw.reloadChan <- struct{}{}:
		default:
		}
	})
}

func (cw *CertWatcher) snapshotModTimes() {
	for _, file := range cw.files {
		if stat, err := os.Stat(file); err == nil {
			cw.lastModTime[file] = stat.ModTime()
		}
	}
}

// anyFileChanged compares modification times against the last snapshot,
// updating it. Every file is checked so the snapshot stays complete.
func (cw *CertWatcher) anyFileChanged() bool {
	changed := false
	for _, file := range cw.files {
		stat, err := os.Stat(file)
		if err != nil {
			if _, seen := cw.lastModTime[file]; seen && os.IsNotExist(err) {
				delete(cw.lastModTime, file)
				changed = true
			}
			continue
		}
		if last, seen := cw.lastModTime[file]; !seen || !stat.ModTime().Equal(last) {
			cw.lastModTime[file] = stat.ModTime()
			changed = true
		}
	}
	return changed
}
