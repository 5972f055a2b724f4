package notification

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"

	"munjiz/internal/logging"
	"munjiz/internal/models"
	"munjiz/internal/store"
)

const StorageKey = "munjiz_notifications_data_v1"

var ErrNotificationNotFound = errors.New("notification: not found")

// Log is the notification center, newest first. Ids are unique and their
// presence is what marks a reminder event as already fired.
type Log struct {
	mu        sync.RWMutex
	items     []models.Notification
	store     *store.Store
	log       *logrus.Entry
	listeners []func(models.Notification)
}

func NewLog(st *store.Store, logger *logging.Logger) *Log {
	return &Log{store: st, log: logger.Component("notifications")}
}

func (l *Log) Load(ctx context.Context) {
	var loaded []models.Notification
	l.store.Get(ctx, StorageKey, &loaded)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = dedupe(loaded)
	l.log.Infof("Loaded %d notifications", len(l.items))
}

// Subscribe registers fn to be called after every successful Append.
func (l *Log) Subscribe(fn func(models.Notification)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, fn)
}

// Append inserts n at the front. It reports false and changes nothing
// when a notification with the same id already exists.
func (l *Log) Append(ctx context.Context, n models.Notification) bool {
	l.mu.Lock()
	if l.indexLocked(n.ID) >= 0 {
		l.mu.Unlock()
		return false
	}
	l.items = append([]models.Notification{n}, l.items...)
	l.persistLocked(ctx)
	listeners := slices.Clone(l.listeners)
	l.mu.Unlock()

	for _, fn := range listeners {
		fn(n)
	}
	return true
}

func (l *Log) Exists(id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.indexLocked(id) >= 0
}

func (l *Log) Get(id string) (models.Notification, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i := l.indexLocked(id); i >= 0 {
		return l.items[i], true
	}
	return models.Notification{}, false
}

func (l *Log) MarkRead(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotificationNotFound, id)
	}
	l.items[i].Read = true
	l.persistLocked(ctx)
	return nil
}

func (l *Log) MarkAllRead(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.items {
		l.items[i].Read = true
	}
	l.persistLocked(ctx)
}

func (l *Log) Delete(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotificationNotFound, id)
	}
	l.items = append(l.items[:i:i], l.items[i+1:]...)
	l.persistLocked(ctx)
	return nil
}

// Clear removes everything and returns how many entries were dropped.
func (l *Log) Clear(ctx context.Context) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := len(l.items)
	l.items = nil
	l.persistLocked(ctx)
	return n
}

// List returns a copy, newest first.
func (l *Log) List() []models.Notification {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.Notification, len(l.items))
	copy(out, l.items)
	return out
}

func (l *Log) UnreadCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n := 0
	for _, it := range l.items {
		if !it.Read {
			n++
		}
	}
	return n
}

// IDs returns the set of ids currently in the log.
func (l *Log) IDs() map[string]struct{} {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make(map[string]struct{}, len(l.items))
	for _, it := range l.items {
		ids[it.ID] = struct{}{}
	}
	return ids
}

func (l *Log) indexLocked(id string) int {
	for i := range l.items {
		if l.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (l *Log) persistLocked(ctx context.Context) {
	out := l.items
	if out == nil {
		out = []models.Notification{}
	}
	l.store.Set(ctx, StorageKey, out)
}

// dedupe keeps the first (newest) entry for each id.
func dedupe(in []models.Notification) []models.Notification {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, n := range in {
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		out = append(out, n)
	}
	return out
}
