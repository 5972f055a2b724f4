package settings

import (
	"context"
	"sync"

	"munjiz/internal/models"
	"munjiz/internal/store"
)

// Storage keys, one per field.
const (
	KeyUserName     = "settings_userName_v3"
	KeyJobTitle     = "settings_jobTitle_v1"
	KeyEmailEnabled = "settings_emailEnabled_v4"
	KeyInAppEnabled = "settings_inAppEnabled_v4"
	KeySoundEnabled = "settings_soundEnabled_v4"
	KeyLanguage     = "settings_language"
	KeyTimezone     = "settings_timezone"
	KeyReminderTime = "settings_reminderTime"
)

type Service struct {
	mu    sync.RWMutex
	cur   models.Settings
	store *store.Store
}

func New(st *store.Store) *Service {
	return &Service{store: st, cur: models.DefaultSettings()}
}

// Load reads every key, keeping the default for any that is missing or
// unreadable.
func (s *Service) Load(ctx context.Context) {
	next := models.DefaultSettings()
	s.store.Get(ctx, KeyUserName, &next.FullName)
	s.store.Get(ctx, KeyJobTitle, &next.JobTitle)
	s.store.Get(ctx, KeyEmailEnabled, &next.EmailEnabled)
	s.store.Get(ctx, KeyInAppEnabled, &next.InAppEnabled)
	s.store.Get(ctx, KeySoundEnabled, &next.SoundEnabled)
	s.store.Get(ctx, KeyLanguage, &next.Language)
	s.store.Get(ctx, KeyTimezone, &next.Timezone)
	s.store.Get(ctx, KeyReminderTime, &next.ReminderTime)

	s.mu.Lock()
	s.cur = next
	s.mu.Unlock()
}

func (s *Service) Get() models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Save replaces the settings and writes every key.
func (s *Service) Save(ctx context.Context, next models.Settings) models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = next
	s.store.Set(ctx, KeyUserName, next.FullName)
	s.store.Set(ctx, KeyJobTitle, next.JobTitle)
	s.store.Set(ctx, KeyEmailEnabled, next.EmailEnabled)
	s.store.Set(ctx, KeyInAppEnabled, next.InAppEnabled)
	s.store.Set(ctx, KeySoundEnabled, next.SoundEnabled)
	s.store.Set(ctx, KeyLanguage, next.Language)
	s.store.Set(ctx, KeyTimezone, next.Timezone)
	s.store.Set(ctx, KeyReminderTime, next.ReminderTime)
	return next
}
