package notify

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/reposhelf/internal/logging"
	"github.com/fsnotify/fsnotify"
)

// fileSettle is how long the database file must stay quiet before a burst
// of writes is reported as one change.
const fileSettle = 120 * time.Millisecond

// FileNotifier reports changes made to a SQLite database file by any
// process. It cannot tell which record changed, so every event is published
// for the collection. Notify is a no-op: the write itself is the signal.
type FileNotifier struct {
	path   string
	buffer int
	log    logging.Logger
}

func NewFileNotifier(path string, buffer int, log logging.Logger) *FileNotifier {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if log == nil {
		log = logging.Nop()
	}
	return &FileNotifier{path: path, buffer: buffer, log: log}
}

// Path is the database file being watched.
func (n *FileNotifier) Path() string { return n.path }

func (n *FileNotifier) Notify(context.Context, string) error { return nil }

// Subscribe watches the directory holding the database, so that journal
// and WAL files are seen as well.
func (n *FileNotifier) Subscribe(ctx context.Context, address string) (Subscription, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", n.path, err)
	}
	if err := w.Add(filepath.Dir(n.path)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", n.path, err)
	}

	s := &fileSub{w: w, ch: make(chan Event, n.buffer), done: make(chan struct{})}
	go s.loop(ctx, n, address)
	return s, nil
}

// touches reports whether name is the database or one of its side files.
func (n *FileNotifier) touches(name string) bool {
	return strings.HasPrefix(filepath.Base(name), filepath.Base(n.path))
}

type fileSub struct {
	w    *fsnotify.Watcher
	ch   chan Event
	done chan struct{}
	once sync.Once
}

func (s *fileSub) loop(ctx context.Context, n *FileNotifier, address string) {
	defer close(s.ch)

	var (
		pending     bool
		pendingFrom time.Time
	)
	ticker := time.NewTicker(fileSettle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if !pending || time.Since(pendingFrom) < fileSettle {
				continue
			}
			pending = false
			ev := NewEvent(collectionAddress(address))
			select {
			case s.ch <- ev:
			default:
				n.log.Warn(ctx, "subscriber queue full, event dropped", "subscriber", address)
			}
		case event, ok := <-s.w.Events:
			if !ok {
				return
			}
			if !n.touches(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				pending = true
				pendingFrom = time.Now()
			}
		case err, ok := <-s.w.Errors:
			if !ok {
				return
			}
			n.log.Warn(ctx, "database file watcher error", "path", n.path, "err", err)
		}
	}
}

// collectionAddress strips a record id from address.
func collectionAddress(address string) string {
	if i := strings.IndexByte(address, '/'); i >= 0 {
		return address[:i]
	}
	return address
}

func (s *fileSub) Events() <-chan Event { return s.ch }

func (s *fileSub) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.w.Close()
	})
	return err
}
