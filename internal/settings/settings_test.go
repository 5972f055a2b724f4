package settings

import (
	"context"
	"testing"

	"munjiz/internal/db"
	"munjiz/internal/logging"
	"munjiz/internal/models"
	"munjiz/internal/store"
)

func TestLoadDefaults(t *testing.T) {
	s := New(store.New(db.NewMemory(), logging.NewDiscard()))
	s.Load(context.Background())
	if got := s.Get(); got != models.DefaultSettings() {
		t.Fatalf("expected defaults, got %+v", got)
	}
}

func TestSaveWritesEveryKey(t *testing.T) {
	ctx := context.Background()
	backend := db.NewMemory()
	s := New(store.New(backend, logging.NewDiscard()))

	next := models.DefaultSettings()
	next.FullName = "Mariam"
	next.EmailEnabled = false
	next.ReminderTime = "48"
	s.Save(ctx, next)

	if raw, _ := backend.Get(ctx, KeyUserName); raw != "Mariam" {
		t.Fatalf("expected raw name, got %q", raw)
	}
	if raw, _ := backend.Get(ctx, KeyEmailEnabled); raw != "false" {
		t.Fatalf("expected false, got %q", raw)
	}

	reloaded := New(store.New(backend, logging.NewDiscard()))
	reloaded.Load(ctx)
	got := reloaded.Get()
	if got.FullName != "Mariam" || got.EmailEnabled || got.ReminderTime != "48" {
		t.Fatalf("unexpected reloaded settings: %+v", got)
	}
	if got.AlertDaysThreshold() != 2 {
		t.Fatalf("expected threshold 2, got %d", got.AlertDaysThreshold())
	}
}

func TestLoadToleratesForeignValues(t *testing.T) {
	ctx := context.Background()
	backend := db.NewMemory()
	// a browser export stores the lead time as a JSON number
	_ = backend.Set(ctx, KeyReminderTime, "120")
	_ = backend.Set(ctx, KeySoundEnabled, "yes please")

	s := New(store.New(backend, logging.NewDiscard()))
	s.Load(ctx)
	got := s.Get()
	if got.ReminderTime != "120" {
		t.Fatalf("expected raw reminder time, got %q", got.ReminderTime)
	}
	if !got.SoundEnabled {
		t.Fatal("expected sound default to survive a corrupt value")
	}
}
