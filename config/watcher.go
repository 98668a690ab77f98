package config

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"code.meridianbank.io/meridian-go/logging"
	"code.meridianbank.io/meridian-go/paths"

	"github.com/fsnotify/fsnotify"
)

const namedLogger = "cfgwatcher"

// notifyInterval is how often pending on-disk changes are pushed to the
// registered listeners. Editors tend to emit bursts of events for a single
// save, the interval coalesces them into one notification.
const notifyInterval = 500 * time.Millisecond

// Watcher is looking for updates in the configuration file.
type Watcher struct {
	log  *logging.Logger
	cfg  Config
	path string

	// to be used as an atomic
	hasChanged         int32
	cfgUpdateListeners []func(Config)
	mu                 sync.Mutex
}

// NewWatcher instantiates a new watcher on the configuration file. The file
// has to exist, and is reloaded every time it changes on disk.
func NewWatcher(ctx context.Context, log *logging.Logger, mbPaths paths.Paths) (*Watcher, error) {
	watcherLog := log.Named(namedLogger)
	// configuration changes are reported no matter the configured level
	watcherLog.SetLevel(logging.DebugLevel)

	w := &Watcher{
		log:                watcherLog,
		cfg:                NewDefaultConfig(),
		path:               mbPaths.ConfigPathFor(paths.ClientDefaultConfigFile),
		cfgUpdateListeners: []func(Config){},
	}

	if err := w.load(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(w.path); err != nil {
		return nil, err
	}

	w.log.Info("config watcher started successfully",
		logging.String("config", w.path))

	go w.watch(ctx, watcher)

	return w, nil
}

// Get returns the last loaded version of the configuration.
func (w *Watcher) Get() Config {
	w.mu.Lock()
	conf := w.cfg
	w.mu.Unlock()
	return conf
}

// OnConfigUpdate registers functions to be called when the configuration is
// updated.
func (w *Watcher) OnConfigUpdate(fns ...func(Config)) {
	w.mu.Lock()
	w.cfgUpdateListeners = append(w.cfgUpdateListeners, fns...)
	w.mu.Unlock()
}

func (w *Watcher) load() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	// Starting from the defaults keeps keys removed from the file at their
	// default value, instead of whatever the previous version of the file set.
	cfg := NewDefaultConfig()
	if err := paths.ReadStructuredFile(w.path, &cfg); err != nil {
		return err
	}
	w.cfg = cfg
	return nil
}

func (w *Watcher) watch(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()

	ticker := time.NewTicker(notifyInterval)
	defer ticker.Stop()

	for {
		select {
		case event := <-watcher.Events:
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Rename == fsnotify.Rename {
				if event.Op&fsnotify.Rename == fsnotify.Rename {
					// vi and friends do not edit the file in place. They write a
					// temporary file, delete the original, then rename the
					// temporary one onto the original name. Reading as soon as
					// the event arrives races that rename and fails with a no
					// such file or directory error.
					time.Sleep(50 * time.Millisecond)
				}
				w.log.Info("configuration updated",
					logging.String("event", event.Name))
				if err := w.load(); err != nil {
					w.log.Error("unable to load configuration",
						logging.Error(err))
					continue
				}
				atomic.StoreInt32(&w.hasChanged, 1)
			}
		case <-ticker.C:
			w.notifyListeners()
		case err := <-watcher.Errors:
			w.log.Error("config watcher received error event",
				logging.Error(err))
		case <-ctx.Done():
			return
		}
	}
}

func (w *Watcher) notifyListeners() {
	if atomic.LoadInt32(&w.hasChanged) == 0 {
		// no changes, nothing to push
		return
	}
	atomic.StoreInt32(&w.hasChanged, 0)

	w.mu.Lock()
	cfg := w.cfg
	listeners := make([]func(Config), len(w.cfgUpdateListeners))
	copy(listeners, w.cfgUpdateListeners)
	w.mu.Unlock()

	for _, f := range listeners {
		f(cfg)
	}
}
