package reminder

import (
	"time"

	"munjiz/internal/models"
)

// CustomWindow bounds how late a one-shot reminder may still fire. A
// reminder missed by more than this never fires.
const CustomWindow = 24 * time.Hour

// FixedPopupDays is the lead at which the deadline popup fires
// regardless of the user's threshold.
const FixedPopupDays = 5

// Input is a snapshot of everything one evaluation reads.
type Input struct {
	Tasks         []models.Task
	Notifications []models.Notification
	Settings      models.Settings
	Now           time.Time
	Location      *time.Location
}

// Evaluate decides which reminder events are newly due. It is pure: the
// caller executes the returned plan. Firings come in task order, then
// family order.
func Evaluate(in Input) Plan {
	loc := in.Location
	if loc == nil {
		loc = time.Local
	}
	now := in.Now.In(loc)
	today := models.StartOfDay(now, loc)
	todayStr := models.FormatDate(today, loc)

	fired := make(map[string]struct{}, len(in.Notifications))
	for _, n := range in.Notifications {
		fired[n.ID] = struct{}{}
	}
	e := evaluator{
		settings: in.Settings,
		lead:     in.Settings.AlertDaysThreshold(),
		now:      now,
		stamp:    in.Now,
		loc:      loc,
		today:    today,
		todayStr: todayStr,
		fired:    fired,
	}

	plan := Plan{Today: todayStr}
	for _, task := range in.Tasks {
		if task.IsCompleted() {
			continue
		}
		plan.Firings = append(plan.Firings, e.task(task)...)
	}
	return plan
}

type evaluator struct {
	settings models.Settings
	lead     int
	now      time.Time
	stamp    time.Time
	loc      *time.Location
	today    time.Time
	todayStr string
	fired    map[string]struct{}
}

func (e *evaluator) task(task models.Task) []Firing {
	var out []Firing
	if f, ok := e.custom(task); ok {
		out = append(out, f)
	}

	diff, err := DaysUntil(task.DueDate, e.today, e.loc)
	if err != nil {
		return out
	}
	for _, fn := range []func(models.Task, int) (Firing, bool){
		e.fiveDay,
		e.thresholdFiring,
		e.frequency,
		e.dueToday,
	} {
		if f, ok := fn(task, diff); ok {
			out = append(out, f)
		}
	}
	return out
}

// claim reports whether key is still free and reserves it.
func (e *evaluator) claim(key string) bool {
	if _, done := e.fired[key]; done {
		return false
	}
	e.fired[key] = struct{}{}
	return true
}

func (e *evaluator) chime(effects []Effect) []Effect {
	if e.settings.SoundEnabled {
		return append(effects, Chime{})
	}
	return effects
}

func (e *evaluator) record(id string, task models.Task, t models.NotificationType, title, msg string) Record {
	return Record{Notification: models.Notification{
		ID:        id,
		Title:     title,
		Message:   msg,
		Type:      t,
		Timestamp: e.stamp,
		TaskID:    task.ID,
		TaskTitle: task.Title,
	}}
}

func (e *evaluator) custom(task models.Task) (Firing, bool) {
	if task.CustomReminderDate == "" {
		return Firing{}, false
	}
	at, err := models.ParseReminderTime(task.CustomReminderDate, e.loc)
	if err != nil {
		return Firing{}, false
	}
	if e.now.Before(at) || e.now.Sub(at) >= CustomWindow {
		return Firing{}, false
	}
	key := CustomKey(task.ID, task.CustomReminderDate)
	if !e.claim(key) {
		return Firing{}, false
	}

	var fx []Effect
	if e.settings.InAppEnabled {
		fx = e.chime(fx)
	}
	fx = append(fx,
		Native{Title: textCustomNativeTitle, Body: textCustomNativeBody(task.Title)},
		Popup{models.Popup{Title: task.Title, Message: textCustomPopup, TaskID: task.ID}},
		e.record(key, task, models.NotificationAlert, textCustomTitle, textCustomMessage),
	)
	if e.settings.EmailEnabled {
		fx = append(fx, Email{TaskID: task.ID, TaskTitle: task.Title, LeadDays: 0})
	}
	return Firing{Family: FamilyCustom, TaskID: task.ID, NotificationID: key, Effects: fx}, true
}

// fiveDay ignores the channel settings for the popup and the log entry.
func (e *evaluator) fiveDay(task models.Task, diff int) (Firing, bool) {
	if diff != FixedPopupDays {
		return Firing{}, false
	}
	key := FiveDayKey(e.todayStr, task.ID)
	if !e.claim(key) {
		return Firing{}, false
	}

	var fx []Effect
	if e.settings.InAppEnabled {
		fx = e.chime(fx)
		fx = append(fx, Native{Title: textFiveDayNativeTitle, Body: textFiveDayNativeBody(task.Title)})
	}
	fx = append(fx,
		Popup{models.Popup{Title: textFiveDayPopupTitle, Message: textFiveDayPopup(task.Title), TaskID: task.ID}},
		e.record(key, task, models.NotificationWarning, textFiveDayTitle, textFiveDayMessage),
	)
	return Firing{Family: FamilyFiveDay, TaskID: task.ID, NotificationID: key, Effects: fx}, true
}

// thresholdFiring fires at the user's configured lead. With in-app off
// the log entry is written already read.
func (e *evaluator) thresholdFiring(task models.Task, diff int) (Firing, bool) {
	if diff != e.lead || diff == FixedPopupDays {
		return Firing{}, false
	}
	inApp, email := e.settings.InAppEnabled, e.settings.EmailEnabled
	if !inApp && !email {
		return Firing{}, false
	}
	key := ThresholdKey(e.lead, task.ID)
	if !e.claim(key) {
		return Firing{}, false
	}

	var fx []Effect
	rec := e.record(key, task, models.NotificationWarning, textThresholdTitle(e.lead), textThresholdMessage)
	if inApp {
		fx = e.chime(fx)
	} else {
		rec.Notification.Read = true
	}
	fx = append(fx, rec)
	if email {
		fx = append(fx, Email{TaskID: task.ID, TaskTitle: task.Title, LeadDays: e.lead})
	}
	return Firing{Family: FamilyThreshold, TaskID: task.ID, NotificationID: key, Effects: fx}, true
}

func (e *evaluator) frequency(task models.Task, diff int) (Firing, bool) {
	period := task.EmailReminderFrequency.Period()
	if period <= 0 || !e.settings.EmailEnabled {
		return Firing{}, false
	}
	if diff <= 0 || diff%period != 0 || diff == FixedPopupDays || diff == e.lead {
		return Firing{}, false
	}
	key := FrequencyKey(period, e.todayStr, task.ID)
	if !e.claim(key) {
		return Firing{}, false
	}

	fx := []Effect{Email{TaskID: task.ID, TaskTitle: task.Title, LeadDays: diff}}
	fx = e.chime(fx)
	fx = append(fx, e.record(key, task, models.NotificationWarning, textFrequencyTitle(diff), textFrequencyMessage))
	return Firing{Family: FamilyFrequency, TaskID: task.ID, NotificationID: key, Effects: fx}, true
}

func (e *evaluator) dueToday(task models.Task, diff int) (Firing, bool) {
	if diff != 0 || e.lead == 0 || !e.settings.InAppEnabled {
		return Firing{}, false
	}
	key := DueTodayKey(task.ID)
	if !e.claim(key) {
		return Firing{}, false
	}
	fx := []Effect{e.record(key, task, models.NotificationAlert, textDueTodayTitle, textDueTodayMessage)}
	return Firing{Family: FamilyDueToday, TaskID: task.ID, NotificationID: key, Effects: fx}, true
}
