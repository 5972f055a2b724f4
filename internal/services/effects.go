package services

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"munjiz/internal/logging"
	"munjiz/internal/metrics"
	"munjiz/internal/models"
	"munjiz/internal/settings"
)

type Broadcaster interface {
	Broadcast(ev Event)
}

// Tone is one oscillator of the audio cue, rendered by the browser.
type Tone struct {
	Frequency float64 `json:"frequency"`
	Wave      string  `json:"wave"`
	Peak      float64 `json:"peak"`
	Decay     float64 `json:"decay"` // seconds
}

// ChimeTones is a C5 sine with a quieter C6 triangle on top.
var ChimeTones = []Tone{
	{Frequency: 523.25, Wave: "sine", Peak: 0.15, Decay: 1.5},
	{Frequency: 1046.5, Wave: "triangle", Peak: 0.05, Decay: 1.2},
}

// Audio plays the chime in connected browsers when sound is enabled.
type Audio struct {
	out      Broadcaster
	settings *settings.Service
}

func NewAudio(out Broadcaster, s *settings.Service) *Audio {
	return &Audio{out: out, settings: s}
}

func (a *Audio) Chime(context.Context) {
	if !a.settings.Get().SoundEnabled {
		return
	}
	a.out.Broadcast(Event{Type: EventChime, Data: ChimeTones})
}

// Sink mirrors native notifications to another channel.
type Sink interface {
	Name() string
	Send(ctx context.Context, title, body string) error
}

type nativePayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Native shows OS-level notifications through the browser when the user
// granted permission, and mirrors them to the configured sinks.
type Native struct {
	hub    *Hub
	sinks  []Sink
	logger *logrus.Entry
}

func NewNative(hub *Hub, logger *logging.Logger, sinks ...Sink) *Native {
	return &Native{hub: hub, sinks: sinks, logger: logger.Component("native")}
}

func (n *Native) Notify(ctx context.Context, title, body string) {
	if n.hub.Permission() == PermissionGranted {
		n.hub.Broadcast(Event{Type: EventNative, Data: nativePayload{Title: title, Body: body}})
		metrics.RecordNativeNotification("browser", nil)
	} else {
		n.logger.Debugf("Browser notification skipped, permission=%s", n.hub.Permission())
	}
	for _, s := range n.sinks {
		err := s.Send(ctx, title, body)
		metrics.RecordNativeNotification(s.Name(), err)
		if err != nil {
			n.logger.Errorf("Failed to mirror notification via %s: %v", s.Name(), err)
		}
	}
}

// Popups holds the single blocking reminder dialog; a newer popup
// replaces an open one.
type Popups struct {
	mu      sync.Mutex
	current *models.Popup
	out     Broadcaster
}

func NewPopups(out Broadcaster) *Popups {
	return &Popups{out: out}
}

func (p *Popups) Show(popup models.Popup) {
	p.mu.Lock()
	p.current = &popup
	p.mu.Unlock()
	p.out.Broadcast(Event{Type: EventPopup, Data: popup})
}

func (p *Popups) Current() (models.Popup, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return models.Popup{}, false
	}
	return *p.current, true
}

func (p *Popups) Close() {
	p.mu.Lock()
	wasOpen := p.current != nil
	p.current = nil
	p.mu.Unlock()
	if wasOpen {
		p.out.Broadcast(Event{Type: EventPopupClosed})
	}
}
