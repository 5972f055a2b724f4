package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"

	"munjiz/internal/db"
	"munjiz/internal/logging"
	"munjiz/internal/models"
	"munjiz/internal/settings"
	"munjiz/internal/store"
)

// fakeConn records written events and replays queued reads.
type fakeConn struct {
	mu       sync.Mutex
	written  []Event
	reads    [][]byte
	writeErr error
	closed   bool
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return c.writeErr
	}
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return err
	}
	c.written = append(c.written, ev)
	return nil
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.reads) == 0 {
		return 0, nil, io.EOF
	}
	next := c.reads[0]
	c.reads = c.reads[1:]
	return 1, next, nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.written))
	for _, ev := range c.written {
		out = append(out, ev.Type)
	}
	return out
}

func TestPermissionPromptSentOnce(t *testing.T) {
	hub := NewHub(logging.NewDiscard())
	first, second := &fakeConn{}, &fakeConn{}
	hub.AddConnection(first)
	hub.AddConnection(second)

	if got := first.types(); len(got) != 1 || got[0] != EventRequestPermission {
		t.Fatalf("first tab should be prompted, got %v", got)
	}
	if got := second.types(); len(got) != 0 {
		t.Fatalf("second tab should not be prompted, got %v", got)
	}
}

func TestNoPromptOnceDecided(t *testing.T) {
	hub := NewHub(logging.NewDiscard())
	hub.SetPermission(PermissionDenied)
	conn := &fakeConn{}
	hub.AddConnection(conn)
	if got := conn.types(); len(got) != 0 {
		t.Fatalf("decided permission should not prompt, got %v", got)
	}
}

func TestHubConnectionLimit(t *testing.T) {
	hub := NewHub(logging.NewDiscard())
	for i := 0; i < maxConnections; i++ {
		if !hub.AddConnection(&fakeConn{}) {
			t.Fatalf("connection %d rejected", i)
		}
	}
	if hub.AddConnection(&fakeConn{}) {
		t.Fatal("expected connection over the limit to be rejected")
	}
	if hub.Connections() != maxConnections {
		t.Fatalf("expected %d connections, got %d", maxConnections, hub.Connections())
	}
}

func TestBroadcastDropsFailedConnections(t *testing.T) {
	hub := NewHub(logging.NewDiscard())
	hub.SetPermission(PermissionGranted)
	good, bad := &fakeConn{}, &fakeConn{writeErr: errors.New("broken pipe")}
	hub.AddConnection(good)
	hub.AddConnection(bad)

	hub.Broadcast(Event{Type: EventNotification})
	if hub.Connections() != 1 {
		t.Fatalf("expected failed connection to be dropped, have %d", hub.Connections())
	}
	if !bad.closed {
		t.Fatal("failed connection should be closed")
	}
	if got := good.types(); len(got) != 1 || got[0] != EventNotification {
		t.Fatalf("unexpected events %v", got)
	}
}

func TestServeReadsPermission(t *testing.T) {
	hub := NewHub(logging.NewDiscard())
	conn := &fakeConn{reads: [][]byte{
		[]byte(`not json`),
		[]byte(`{"type":"permission","permission":"bogus"}`),
		[]byte(`{"type":"permission","permission":"granted"}`),
	}}
	hub.Serve(conn)

	if hub.Permission() != PermissionGranted {
		t.Fatalf("expected granted, got %s", hub.Permission())
	}
	if hub.Connections() != 0 || !conn.closed {
		t.Fatal("connection should be removed and closed after EOF")
	}
}

type fakeSink struct {
	err  error
	sent []string
}

func (s *fakeSink) Name() string { return "fake" }

func (s *fakeSink) Send(_ context.Context, title, _ string) error {
	s.sent = append(s.sent, title)
	return s.err
}

func TestNativeRequiresGrantedPermission(t *testing.T) {
	hub := NewHub(logging.NewDiscard())
	hub.SetPermission(PermissionDenied)
	conn := &fakeConn{}
	hub.AddConnection(conn)
	sink := &fakeSink{err: errors.New("offline")}
	native := NewNative(hub, logging.NewDiscard(), sink)

	native.Notify(context.Background(), "title", "body")
	if got := conn.types(); len(got) != 0 {
		t.Fatalf("denied permission should suppress browser notification, got %v", got)
	}
	if len(sink.sent) != 1 {
		t.Fatal("sinks should still receive the notification")
	}

	hub.SetPermission(PermissionGranted)
	native.Notify(context.Background(), "title", "body")
	if got := conn.types(); len(got) != 1 || got[0] != EventNative {
		t.Fatalf("expected native event, got %v", got)
	}
}

func TestAudioFollowsSoundSetting(t *testing.T) {
	st := store.New(db.NewMemory(), logging.NewDiscard())
	set := settings.New(st)
	events := &eventLog{}
	audio := NewAudio(events, set)

	audio.Chime(context.Background())
	if len(events.events) != 1 || events.events[0].Type != EventChime {
		t.Fatalf("expected chime, got %+v", events.events)
	}

	s := set.Get()
	s.SoundEnabled = false
	set.Save(context.Background(), s)
	audio.Chime(context.Background())
	if len(events.events) != 1 {
		t.Fatal("chime should be silent with sound disabled")
	}
}

func TestPopupReplacesAndCloses(t *testing.T) {
	events := &eventLog{}
	popups := NewPopups(events)
	popups.Close()
	if len(events.events) != 0 {
		t.Fatal("closing with no popup should not broadcast")
	}

	popups.Show(models.Popup{Title: "a"})
	popups.Show(models.Popup{Title: "b"})
	if p, ok := popups.Current(); !ok || p.Title != "b" {
		t.Fatalf("expected newest popup, got %+v", p)
	}
	popups.Close()
	if _, ok := popups.Current(); ok {
		t.Fatal("popup should be closed")
	}
	if n := len(events.events); n != 3 || events.events[2].Type != EventPopupClosed {
		t.Fatalf("unexpected events %+v", events.events)
	}
}

func TestParsePermission(t *testing.T) {
	if _, err := ParsePermission("maybe"); !errors.Is(err, ErrInvalidPermission) {
		t.Fatalf("expected ErrInvalidPermission, got %v", err)
	}
	if p, err := ParsePermission("denied"); err != nil || p != PermissionDenied {
		t.Fatalf("got %s %v", p, err)
	}
}
