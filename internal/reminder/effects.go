package reminder

import "munjiz/internal/models"

// Effect is one side effect of a firing. The scheduler executes a
// firing's effects in order.
type Effect interface {
	effect()
}

// Chime plays the audio cue.
type Chime struct{}

// Native requests an OS/browser notification; delivery depends on the
// user's permission.
type Native struct {
	Title string
	Body  string
}

// Popup opens the blocking reminder dialog.
type Popup struct {
	models.Popup
}

// Record appends to the notification log. Its id is the dedup key.
type Record struct {
	Notification models.Notification
}

// Email sends a reminder email LeadDays ahead of the due date.
type Email struct {
	TaskID    string
	TaskTitle string
	LeadDays  int
}

func (Chime) effect()  {}
func (Native) effect() {}
func (Popup) effect()  {}
func (Record) effect() {}
func (Email) effect()  {}

// Firing is one reminder family triggering for one task.
type Firing struct {
	Family         Family
	TaskID         string
	NotificationID string
	Effects        []Effect
}

// Plan is the output of one evaluation. Today is the local date key.
type Plan struct {
	Today   string
	Firings []Firing
}

// Emails counts email effects across the plan.
func (p Plan) Emails() int {
	n := 0
	for _, f := range p.Firings {
		for _, e := range f.Effects {
			if _, ok := e.(Email); ok {
				n++
			}
		}
	}
	return n
}
