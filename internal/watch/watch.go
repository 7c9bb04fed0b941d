// Package watch is the File Watcher collaborator (§4.6): given a root and
// an accepted extension set, it emits debounced created/modified/deleted
// events to a registered callback. It holds no index data of its own.
package watch

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"
)

// EventKind is one of the three event kinds the spec names.
type EventKind string

const (
	Created  EventKind = "created"
	Modified EventKind = "modified"
	Deleted  EventKind = "deleted"
)

// Event is delivered to the registered callback.
type Event struct {
	Kind         EventKind
	RelativePath string
}

// DefaultDebounce is §4.6's "order 100 ms" debounce window.
const DefaultDebounce = 100 * time.Millisecond

// Watcher wraps an fsnotify.Watcher, collapsing rapid bursts on the same
// path within Debounce and filtering to the accepted extension set.
type Watcher struct {
	root       string
	extensions map[string]bool
	debounce   time.Duration
	log        logr.Logger
	onEvent    func(Event)
	onError    func(error)

	mu      sync.Mutex
	running bool
	fsw     *fsnotify.Watcher
	done    chan struct{}

	pendingMu sync.Mutex
	pending   map[string]*pendingEvent
}

type pendingEvent struct {
	kind  EventKind
	timer *time.Timer
}

// Config configures a Watcher.
type Config struct {
	Root       string
	Extensions []string
	Debounce   time.Duration
	OnEvent    func(Event)
	OnError    func(error)
	Log        logr.Logger
}

// New builds a Watcher. Call Start to begin watching.
func New(cfg Config) *Watcher {
	set := make(map[string]bool, len(cfg.Extensions))
	for _, ext := range cfg.Extensions {
		set[ext] = true
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		root:       cfg.Root,
		extensions: set,
		debounce:   debounce,
		log:        cfg.Log,
		onEvent:    cfg.OnEvent,
		onError:    cfg.OnError,
		pending:    make(map[string]*pendingEvent),
	}
}

// IsWatching reports whether the watcher is currently live.
func (w *Watcher) IsWatching() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Start begins watching the root directory tree. Recursive: every
// subdirectory discovered at start time (and any created afterward) is
// added to the fsnotify watch set.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := addRecursive(fsw, w.root); err != nil {
		fsw.Close()
		return err
	}

	w.fsw = fsw
	w.done = make(chan struct{})
	w.running = true
	go w.loop(fsw, w.done)
	return nil
}

// Stop releases OS resources. Idempotent.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	close(w.done)
	w.fsw.Close()
	w.running = false
	w.fsw = nil
}

func (w *Watcher) loop(fsw *fsnotify.Watcher, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handleRaw(fsw, ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			if w.log.GetSink() != nil {
				w.log.Error(err, "watcher OS error")
			}
			if w.onError != nil {
				w.onError(err)
			}
			w.Stop()
			return
		}
	}
}

func (w *Watcher) handleRaw(fsw *fsnotify.Watcher, ev fsnotify.Event) {
	if ev.Op&fsnotify.Create != 0 {
		if info, err := statIsDir(ev.Name); err == nil && info {
			addRecursive(fsw, ev.Name)
			return
		}
	}
	if !w.accepted(ev.Name) {
		return
	}
	rel := w.relativize(ev.Name)

	var kind EventKind
	switch {
	case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		kind = Deleted
	case ev.Op&fsnotify.Create != 0:
		kind = Created
	case ev.Op&fsnotify.Write != 0:
		kind = Modified
	default:
		return
	}

	w.debounceEvent(rel, kind)
}

// debounceEvent collapses rapid bursts on the same path within the
// debounce window into a single delivered event, keeping the most recent
// kind (a create immediately followed by a write still reports as created,
// matching "new file written in one shot" editor behavior; a later delete
// always wins since it supersedes any pending create/modify).
func (w *Watcher) debounceEvent(rel string, kind EventKind) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	if existing, ok := w.pending[rel]; ok {
		existing.timer.Stop()
		if kind == Deleted {
			existing.kind = Deleted
		} else if kind == Created || existing.kind == Deleted {
			existing.kind = kind
		}
		existing.timer = time.AfterFunc(w.debounce, func() { w.fire(rel) })
		return
	}

	pe := &pendingEvent{kind: kind}
	pe.timer = time.AfterFunc(w.debounce, func() { w.fire(rel) })
	w.pending[rel] = pe
}

func (w *Watcher) fire(rel string) {
	w.pendingMu.Lock()
	pe, ok := w.pending[rel]
	if ok {
		delete(w.pending, rel)
	}
	w.pendingMu.Unlock()
	if !ok || w.onEvent == nil {
		return
	}
	w.onEvent(Event{Kind: pe.kind, RelativePath: rel})
}

func (w *Watcher) accepted(name string) bool {
	if len(w.extensions) == 0 {
		return true
	}
	return w.extensions[strings.ToLower(filepath.Ext(name))]
}

func (w *Watcher) relativize(abs string) string {
	rel, err := filepath.Rel(w.root, abs)
	if err != nil {
		return filepath.ToSlash(abs)
	}
	return filepath.ToSlash(rel)
}
