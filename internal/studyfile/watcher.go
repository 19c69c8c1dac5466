package studyfile

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"studyplan/internal/schedule"
	logx "studyplan/pkg/logx"
)

// Snapshot is one successfully parsed version of the watched document.
type Snapshot struct {
	Path     string
	Study    schedule.Study
	Hash     uint64
	LoadedAt time.Time
}

// Watcher keeps the latest parsed version of a study document and publishes
// every new version to its subscribers.
type Watcher struct {
	path     string
	debounce time.Duration

	mu  sync.RWMutex
	cur *Snapshot

	// subsMu guards subscriber list and ensures we never send on a channel
	// that is concurrently being closed in Unsubscribe().
	subsMu sync.Mutex
	subs   []chan Snapshot

	log      logx.Logger
	onReject func(path string, err error)

	// lastHash tracks the last successfully committed content. It avoids
	// redundant publishes when an editor emits several write events without
	// content changes.
	lastHash uint64
}

func NewWatcher(path string, debounce time.Duration, log logx.Logger) *Watcher {
	if log.IsZero() {
		log = logx.Nop()
	}
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}
	return &Watcher{path: path, debounce: debounce, log: log}
}

// OnReject installs a hook called when a changed document fails to parse.
// The previous snapshot stays current.
func (w *Watcher) OnReject(fn func(path string, err error)) { w.onReject = fn }

// Load parses the document and commits it as the current snapshot.
func (w *Watcher) Load() (Snapshot, error) {
	st, err := Load(w.path)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{Path: w.path, Study: st, Hash: Hash(st), LoadedAt: time.Now()}
	w.commit(snap)
	return snap, nil
}

func (w *Watcher) commit(snap Snapshot) {
	w.mu.Lock()
	w.cur = &snap
	w.lastHash = snap.Hash
	w.mu.Unlock()
}

// Current returns the latest committed snapshot.
func (w *Watcher) Current() (Snapshot, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.cur == nil {
		return Snapshot{}, false
	}
	return *w.cur, true
}

func (w *Watcher) Subscribe(buffer int) chan Snapshot {
	ch := make(chan Snapshot, buffer)
	w.subsMu.Lock()
	w.subs = append(w.subs, ch)
	w.subsMu.Unlock()
	return ch
}

func (w *Watcher) Unsubscribe(ch chan Snapshot) {
	if ch == nil {
		return
	}
	w.subsMu.Lock()
	defer w.subsMu.Unlock()
	for i, s := range w.subs {
		if s == ch {
			// swap-remove (order doesn't matter)
			last := len(w.subs) - 1
			w.subs[i] = w.subs[last]
			w.subs[last] = nil
			w.subs = w.subs[:last]
			close(ch)
			return
		}
	}
}

func (w *Watcher) publish(snap Snapshot) {
	// Hold subsMu while sending to avoid send-on-closed panics.
	w.subsMu.Lock()
	defer w.subsMu.Unlock()
	for _, ch := range w.subs {
		if ch == nil {
			continue
		}
		// Always try to deliver the latest version.
		// If subscriber is slow and buffer is full, drop ONE oldest item then push the newest.
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
				w.log.Debug(
					"study update dropped (subscriber slow)",
					logx.Int("queue_len", len(ch)),
					logx.Int("queue_cap", cap(ch)),
				)
			}
		}
	}
}

// reload parses the document and publishes it if its content changed.
// It reports whether a new snapshot was published.
func (w *Watcher) reload() bool {
	st, err := Load(w.path)
	if err != nil {
		w.log.Warn("study parse failed", logx.String("path", w.path), logx.Err(err))
		if w.onReject != nil {
			w.onReject(w.path, err)
		}
		return false
	}

	h := Hash(st)
	w.mu.RLock()
	unchanged := h != 0 && h == w.lastHash
	w.mu.RUnlock()
	if unchanged {
		w.log.Debug("study unchanged; skipping publish", logx.String("path", w.path))
		return false
	}

	snap := Snapshot{Path: w.path, Study: st, Hash: h, LoadedAt: time.Now()}
	w.commit(snap)
	w.publish(snap)
	w.log.Debug("study published", logx.String("path", w.path), logx.String("hash", fmt.Sprintf("%x", h)))
	return true
}

// Watch follows the document until ctx is done.
//
// The parent directory is watched (editors often replace files via rename),
// events are debounced, and a broken fsnotify watcher is recreated with a
// jittered exponential backoff.
func (w *Watcher) Watch(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	file := filepath.Base(w.path)

	const (
		restartBackoffBase = 250 * time.Millisecond
		restartBackoffMax  = 5 * time.Second
	)
	backoff := restartBackoffBase
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	// sleep waits out the current backoff and grows it. It returns false if ctx ended.
	sleep := func() bool {
		wait := backoff + time.Duration(rng.Int63n(int64(backoff/2)+1))
		if backoff < restartBackoffMax {
			backoff = min(backoff*2, restartBackoffMax)
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(wait):
			return true
		}
	}

	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	debounce := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		w.log.Debug("study change detected; scheduling reload", logx.String("path", w.path))
		timer = time.AfterFunc(w.debounce, func() {
			if ctx.Err() != nil {
				return
			}
			w.reload()
		})
	}
	defer func() {
		timerMu.Lock()
		if timer != nil {
			timer.Stop()
		}
		timerMu.Unlock()
	}()

	for {
		if ctx.Err() != nil {
			return nil
		}

		fw, err := fsnotify.NewWatcher()
		if err != nil {
			w.log.Warn("study watch init failed", logx.Err(err), logx.String("dir", dir))
			if !sleep() {
				return nil
			}
			continue
		}
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			w.log.Warn("study watch add failed", logx.Err(err), logx.String("dir", dir))
			if !sleep() {
				return nil
			}
			continue
		}

		// success; reset backoff so transient issues don't cause long restart delays
		backoff = restartBackoffBase
		w.log.Debug("study watcher started", logx.String("dir", dir), logx.String("file", file))

		broken := false
		for !broken {
			select {
			case <-ctx.Done():
				_ = fw.Close()
				return nil
			case ev, ok := <-fw.Events:
				if !ok {
					broken = true
					break
				}
				// Compare by basename (more robust across absolute/relative paths).
				if strings.EqualFold(filepath.Base(ev.Name), file) &&
					ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove|fsnotify.Chmod) != 0 {
					debounce()
				}
			case err, ok := <-fw.Errors:
				if !ok {
					broken = true
					break
				}
				if err == nil {
					continue
				}
				// Overflow means we may have missed events; reload once and keep going.
				if strings.Contains(strings.ToLower(err.Error()), "overflow") {
					w.log.Warn("study watch overflow; forcing reload", logx.Err(err), logx.String("dir", dir))
					debounce()
					continue
				}
				w.log.Warn("study watch error", logx.Err(err), logx.String("dir", dir))
				if strings.Contains(strings.ToLower(err.Error()), "closed") {
					broken = true
				}
			}
		}

		_ = fw.Close()
		w.log.Warn("study watcher stopped; restarting", logx.String("dir", dir), logx.String("file", file))
		if !sleep() {
			return nil
		}
	}
}
