package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"munjiz/internal/logging"
	"munjiz/internal/metrics"
	"munjiz/internal/models"
	"munjiz/internal/notification"
	"munjiz/internal/settings"
	"munjiz/internal/tasks"
)

var (
	ErrConfirmationRequired = errors.New("services: destructive action requires confirmation")
	ErrInvalidSnooze        = errors.New("services: invalid snooze preset")
	ErrInvalidQuickReminder = errors.New("services: quick reminder hours must be positive")
)

const snoozeMinutes = 15

// SnoozePreset names a quick choice in the snooze dialog.
type SnoozePreset string

const (
	Snooze15Minutes SnoozePreset = "15m"
	Snooze1Hour     SnoozePreset = "1h"
	Snooze3Hours    SnoozePreset = "3h"
	SnoozeTomorrow  SnoozePreset = "tomorrow"
)

// QuickReminderHours are the lead times offered when setting a custom
// reminder from a task.
var QuickReminderHours = []int{1, 2, 5, 24, 48, 120}

// SnoozeTime resolves preset against now. Tomorrow means 09:00 local.
func SnoozeTime(now time.Time, preset SnoozePreset, loc *time.Location) (time.Time, error) {
	now = now.In(loc)
	switch preset {
	case "", Snooze15Minutes:
		return now.Add(snoozeMinutes * time.Minute), nil
	case Snooze1Hour:
		return now.Add(time.Hour), nil
	case Snooze3Hours:
		return now.Add(3 * time.Hour), nil
	case SnoozeTomorrow:
		y, m, d := now.AddDate(0, 0, 1).Date()
		return time.Date(y, m, d, 9, 0, 0, 0, loc), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidSnooze, preset)
	}
}

// Chimer plays the confirmation chime.
type Chimer interface {
	Chime(ctx context.Context)
}

// DetailsMailer emails a single task on request.
type DetailsMailer interface {
	SendTaskDetails(ctx context.Context, recipient, userName string, task models.Task) error
}

// Analyzer summarises the task list.
type Analyzer interface {
	Analyze(ctx context.Context, tasks []models.Task) string
}

// Deps wires the service to storage and delivery.
type Deps struct {
	Tasks     *tasks.Repository
	Log       *notification.Log
	Settings  *settings.Service
	Popups    *Popups
	Audio     Chimer
	Mailer    DetailsMailer
	Analyzer  Analyzer
	Recipient string
}

// Service implements the user-driven reminder actions.
type Service struct {
	deps   Deps
	now    func() time.Time
	logger *logrus.Entry
}

// New returns a Service using the wall clock.
func New(deps Deps, logger *logging.Logger) *Service {
	return &Service{deps: deps, now: time.Now, logger: logger.Component("services")}
}

// eventID builds ids for notifications that are not reminder events.
func (s *Service) eventID(prefix string) string {
	return fmt.Sprintf("%s-%d-%s", prefix, s.now().UnixMilli(), uuid.NewString()[:8])
}

func (s *Service) loc() *time.Location {
	return s.deps.Tasks.Location()
}

// StopReminders turns off periodic and one-shot reminders for a task.
func (s *Service) StopReminders(ctx context.Context, taskID string) (models.Task, error) {
	task, err := s.deps.Tasks.SetReminder(ctx, taskID, models.FrequencyNone, "")
	if err != nil {
		return models.Task{}, err
	}
	s.deps.Audio.Chime(ctx)
	s.deps.Log.Append(ctx, models.Notification{
		ID:        s.eventID("stop"),
		Title:     "تم إيقاف التذكيرات",
		Message:   "لن تستلم تذكيرات تلقائية لهذه المهمة بعد الآن.",
		Type:      models.NotificationSuccess,
		Timestamp: s.now(),
	})
	s.logger.Infof("Stopped reminders for task %s", taskID)
	return task, nil
}

// Snooze re-arms the custom reminder 15 minutes from now and closes the
// popup.
func (s *Service) Snooze(ctx context.Context, taskID string) (models.Task, error) {
	return s.SnoozeUntil(ctx, taskID, Snooze15Minutes)
}

// SnoozeUntil re-arms the custom reminder at the preset time and closes
// the popup. An empty preset means 15 minutes.
func (s *Service) SnoozeUntil(ctx context.Context, taskID string, preset SnoozePreset) (models.Task, error) {
	at, err := SnoozeTime(s.now(), preset, s.loc())
	if err != nil {
		return models.Task{}, err
	}
	task, err := s.deps.Tasks.SetReminder(ctx, taskID, "", models.FormatReminderTime(at, s.loc()))
	if err != nil {
		return models.Task{}, err
	}
	s.deps.Popups.Close()
	return task, nil
}

// Reschedule moves the custom reminder to at, marks the notification
// that prompted it as read and plays the chime.
func (s *Service) Reschedule(ctx context.Context, notificationID, taskID, at string) (models.Task, error) {
	if at == "" {
		return models.Task{}, fmt.Errorf("%w: empty", models.ErrInvalidReminderDate)
	}
	task, err := s.deps.Tasks.SetReminder(ctx, taskID, "", at)
	if err != nil {
		return models.Task{}, err
	}
	if err := s.deps.Log.MarkRead(ctx, notificationID); err != nil && !errors.Is(err, notification.ErrNotificationNotFound) {
		return models.Task{}, err
	}
	s.deps.Audio.Chime(ctx)
	return task, nil
}

// QuickReminder sets a one-shot reminder hours from now.
func (s *Service) QuickReminder(ctx context.Context, taskID string, hours int) (models.Task, error) {
	if hours <= 0 {
		return models.Task{}, ErrInvalidQuickReminder
	}
	at := s.now().Add(time.Duration(hours) * time.Hour)
	return s.deps.Tasks.SetReminder(ctx, taskID, "", models.FormatReminderTime(at, s.loc()))
}

// SendTaskDetails emails the task to the user. A failed send is only
// logged; the caller is not told.
func (s *Service) SendTaskDetails(ctx context.Context, taskID string) error {
	task, ok := s.deps.Tasks.Get(taskID)
	if !ok {
		return fmt.Errorf("%w: %s", tasks.ErrTaskNotFound, taskID)
	}
	id := s.eventID("manual-email")
	err := s.deps.Mailer.SendTaskDetails(ctx, s.deps.Recipient, s.deps.Settings.Get().FullName, task)
	metrics.RecordEmail(err)
	if err != nil {
		s.logger.Errorf("Failed to send email: %v", err)
		return nil
	}
	s.deps.Audio.Chime(ctx)
	s.deps.Log.Append(ctx, models.Notification{
		ID:        id,
		Title:     "تم إرسال البريد",
		Message:   fmt.Sprintf("تم إرسال تفاصيل المهمة %q إلى بريدك الإلكتروني بنجاح.", task.Title),
		Type:      models.NotificationSuccess,
		Timestamp: s.now(),
	})
	return nil
}

// OpenTaskFromNotification follows a notification's task link. It
// reports false when the notification has no link or the task is gone.
func (s *Service) OpenTaskFromNotification(notificationID string) (models.Task, bool) {
	n, ok := s.deps.Log.Get(notificationID)
	if !ok || n.TaskID == "" {
		return models.Task{}, false
	}
	return s.deps.Tasks.Get(n.TaskID)
}

// DeleteNotification removes one log entry once confirmed.
func (s *Service) DeleteNotification(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	return s.deps.Log.Delete(ctx, id)
}

// ClearNotifications empties the log. An empty log needs no confirmation.
func (s *Service) ClearNotifications(ctx context.Context, confirmed bool) (int, error) {
	if len(s.deps.Log.List()) == 0 {
		return 0, nil
	}
	if !confirmed {
		return 0, ErrConfirmationRequired
	}
	n := s.deps.Log.Clear(ctx)
	s.deps.Audio.Chime(ctx)
	return n, nil
}

// Analyze asks the analyzer for a summary of all tasks.
func (s *Service) Analyze(ctx context.Context) string {
	return s.deps.Analyzer.Analyze(ctx, s.deps.Tasks.Snapshot())
}
