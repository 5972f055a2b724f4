package notification

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"munjiz/internal/db"
	"munjiz/internal/logging"
	"munjiz/internal/models"
	"munjiz/internal/store"
)

func newTestLog(t *testing.T) (*Log, *store.Store) {
	t.Helper()
	st := store.New(db.NewMemory(), logging.NewDiscard())
	return NewLog(st, logging.NewDiscard()), st
}

func note(id string) models.Notification {
	return models.Notification{
		ID:        id,
		Title:     "title " + id,
		Type:      models.NotificationWarning,
		Timestamp: time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC),
	}
}

func TestAppendRejectsDuplicateIDs(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLog(t)

	if !l.Append(ctx, note("popup-5days-2026-10-17-1")) {
		t.Fatal("first append should succeed")
	}
	if l.Append(ctx, note("popup-5days-2026-10-17-1")) {
		t.Fatal("duplicate append should be rejected")
	}
	if got := len(l.List()); got != 1 {
		t.Fatalf("expected 1 entry, got %d", got)
	}
	if !l.Exists("popup-5days-2026-10-17-1") || l.Exists("other") {
		t.Fatal("Exists mismatch")
	}
}

func TestNewestFirstAndReadState(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLog(t)
	l.Append(ctx, note("a"))
	l.Append(ctx, note("b"))

	items := l.List()
	if items[0].ID != "b" || items[1].ID != "a" {
		t.Fatalf("expected newest first, got %s,%s", items[0].ID, items[1].ID)
	}
	if l.UnreadCount() != 2 {
		t.Fatalf("expected 2 unread, got %d", l.UnreadCount())
	}
	if err := l.MarkRead(ctx, "a"); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if l.UnreadCount() != 1 {
		t.Fatalf("expected 1 unread, got %d", l.UnreadCount())
	}
	l.MarkAllRead(ctx)
	if l.UnreadCount() != 0 {
		t.Fatalf("expected 0 unread, got %d", l.UnreadCount())
	}
	if err := l.MarkRead(ctx, "missing"); !errors.Is(err, ErrNotificationNotFound) {
		t.Fatalf("expected ErrNotificationNotFound, got %v", err)
	}
}

func TestDeleteAndClear(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLog(t)
	l.Append(ctx, note("a"))
	l.Append(ctx, note("b"))
	l.Append(ctx, note("c"))

	if err := l.Delete(ctx, "b"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if l.Exists("b") || len(l.List()) != 2 {
		t.Fatalf("delete did not remove entry: %+v", l.List())
	}
	if err := l.Delete(ctx, "b"); !errors.Is(err, ErrNotificationNotFound) {
		t.Fatalf("expected ErrNotificationNotFound, got %v", err)
	}
	if n := l.Clear(ctx); n != 2 {
		t.Fatalf("expected 2 cleared, got %d", n)
	}
	if len(l.List()) != 0 {
		t.Fatal("expected empty log")
	}
}

func TestPersistAndReload(t *testing.T) {
	ctx := context.Background()
	l, st := newTestLog(t)
	l.Append(ctx, note("a"))
	l.MarkRead(ctx, "a")

	reloaded := NewLog(st, logging.NewDiscard())
	reloaded.Load(ctx)
	got, ok := reloaded.Get("a")
	if !ok || !got.Read {
		t.Fatalf("expected read entry after reload, got %+v ok=%v", got, ok)
	}
	if !got.Timestamp.Equal(note("a").Timestamp) {
		t.Fatalf("timestamp did not round-trip: %s", got.Timestamp)
	}
}

func TestSubscribeCalledOnlyOnInsert(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLog(t)
	var seen []string
	l.Subscribe(func(n models.Notification) { seen = append(seen, n.ID) })

	l.Append(ctx, note("a"))
	l.Append(ctx, note("a"))
	if len(seen) != 1 || seen[0] != "a" {
		t.Fatalf("unexpected listener calls: %v", seen)
	}
}

func TestListenerMaySubscribeDuringDelivery(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLog(t)
	var first, late []string
	l.Subscribe(func(n models.Notification) {
		first = append(first, n.ID)
		if n.ID == "a" {
			l.Subscribe(func(n models.Notification) { late = append(late, n.ID) })
		}
	})

	l.Append(ctx, note("a"))
	if len(late) != 0 {
		t.Fatalf("listener added during delivery saw the same append: %v", late)
	}
	l.Append(ctx, note("b"))
	if strings.Join(first, ",") != "a,b" || strings.Join(late, ",") != "b" {
		t.Fatalf("first=%v late=%v", first, late)
	}
}

func TestDispatcherDeliversToHandlers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	d := NewDispatcher(logging.NewDiscard(), 4, 2)

	var mu sync.Mutex
	got := make(chan string, 2)
	d.Handle(func(_ context.Context, n models.Notification) {
		mu.Lock()
		defer mu.Unlock()
		got <- n.ID
	})
	d.Start(ctx)
	d.Enqueue(note("a"))
	d.Enqueue(note("b"))

	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case id := <-got:
			seen[id] = true
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for dispatch")
		}
	}
	cancel()
	d.Wait()
	if !seen["a"] || !seen["b"] {
		t.Fatalf("missing deliveries: %v", seen)
	}
}
