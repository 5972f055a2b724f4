package services

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
	"munjiz/internal/notification"
	"munjiz/internal/reminder"
	"munjiz/internal/settings"
	"munjiz/internal/store"
	"munjiz/internal/tasks"
)

var (
	testLoc = time.FixedZone("GST", 4*3600)
	testNow = time.Date(2026, 10, 17, 10, 0, 0, 0, testLoc)
)

type chimeCounter struct {
	mu sync.Mutex
	n  int
}

func (c *chimeCounter) Chime(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
}

type fakeMailer struct {
	err  error
	sent []models.Task
}

func (m *fakeMailer) SendTaskDetails(_ context.Context, _, _ string, task models.Task) error {
	m.sent = append(m.sent, task)
	return m.err
}

type fakeAnalyzer struct{ got int }

func (a *fakeAnalyzer) Analyze(_ context.Context, ts []models.Task) string {
	a.got = len(ts)
	return "summary"
}

type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (e *eventLog) Broadcast(ev Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, ev)
}

type fixture struct {
	svc    *Service
	repo   *tasks.Repository
	log    *notification.Log
	popups *Popups
	chimes *chimeCounter
	mailer *fakeMailer
	events *eventLog
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := logging.NewDiscard()
	st := store.New(db.NewMemory(), logger)
	repo := tasks.NewRepository(st, logger, testLoc)
	log := notification.NewLog(st, logger)
	events := &eventLog{}
	f := &fixture{
		repo:   repo,
		log:    log,
		popups: NewPopups(events),
		chimes: &chimeCounter{},
		mailer: &fakeMailer{},
		events: events,
	}
	f.svc = New(Deps{
		Tasks:     repo,
		Log:       log,
		Settings:  settings.New(st),
		Popups:    f.popups,
		Audio:     f.chimes,
		Mailer:    f.mailer,
		Analyzer:  &fakeAnalyzer{},
		Recipient: "munjiz@munjiz.ae",
	}, logger)
	f.svc.now = func() time.Time { return testNow }
	return f
}

func (f *fixture) addTask(t *testing.T, custom string) models.Task {
	t.Helper()
	task, err := f.repo.Add(context.Background(), models.TaskDraft{
		Title:                  "Budget review",
		StartDate:              "2026-10-01",
		DueDate:                "2026-11-29",
		EmailReminderFrequency: models.FrequencyEvery2Days,
		CustomReminderDate:     custom,
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	return task
}

func TestStopRemindersClearsAndConfirms(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	task := f.addTask(t, "2026-10-17T09:50")

	// the custom reminder fires once
	in := reminder.Input{Tasks: f.repo.Snapshot(), Settings: models.DefaultSettings(), Now: testNow, Location: testLoc}
	if plan := reminder.Evaluate(in); len(plan.Firings) != 1 {
		t.Fatalf("expected the custom reminder to be due, got %+v", plan.Firings)
	}

	updated, err := f.svc.StopReminders(ctx, task.ID)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if updated.CustomReminderDate != "" || updated.EmailReminderFrequency != models.FrequencyNone {
		t.Fatalf("reminders not cleared: %+v", updated)
	}
	list := f.log.List()
	if len(list) != 1 || list[0].Type != models.NotificationSuccess || !strings.HasPrefix(list[0].ID, "stop-") {
		t.Fatalf("expected stop confirmation, got %+v", list)
	}
	if f.chimes.n != 1 {
		t.Fatalf("expected one chime, got %d", f.chimes.n)
	}

	in.Tasks = f.repo.Snapshot()
	if plan := reminder.Evaluate(in); len(plan.Firings) != 0 {
		t.Fatalf("stopped reminder fired again: %+v", plan.Firings)
	}

	if _, err := f.svc.StopReminders(ctx, "missing"); !errors.Is(err, tasks.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestSnoozeRearmsAndClosesPopup(t *testing.T) {
	f := newFixture(t)
	task := f.addTask(t, "2026-10-17T09:50")
	f.popups.Show(models.Popup{Title: task.Title, TaskID: task.ID})

	updated, err := f.svc.Snooze(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("snooze: %v", err)
	}
	if updated.CustomReminderDate != "2026-10-17T10:15" {
		t.Fatalf("expected now+15m, got %q", updated.CustomReminderDate)
	}
	if _, open := f.popups.Current(); open {
		t.Fatal("popup should be closed")
	}
	if last := f.events.events[len(f.events.events)-1]; last.Type != EventPopupClosed {
		t.Fatalf("expected popup_closed event, got %s", last.Type)
	}
}

func TestSnoozePresets(t *testing.T) {
	cases := map[SnoozePreset]string{
		Snooze15Minutes: "2026-10-17T10:15",
		Snooze1Hour:     "2026-10-17T11:00",
		Snooze3Hours:    "2026-10-17T13:00",
		SnoozeTomorrow:  "2026-10-18T09:00",
	}
	for preset, want := range cases {
		at, err := SnoozeTime(testNow, preset, testLoc)
		if err != nil {
			t.Fatalf("%s: %v", preset, err)
		}
		if got := models.FormatReminderTime(at, testLoc); got != want {
			t.Fatalf("%s: got %s want %s", preset, got, want)
		}
	}
	if _, err := SnoozeTime(testNow, "next-week", testLoc); !errors.Is(err, ErrInvalidSnooze) {
		t.Fatalf("expected ErrInvalidSnooze, got %v", err)
	}
}

func TestRescheduleMarksReadAndFiresAtNewTime(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	task := f.addTask(t, "2026-10-17T09:00")
	first := reminder.CustomKey(task.ID, task.CustomReminderDate)
	f.log.Append(ctx, models.Notification{ID: first, Type: models.NotificationAlert, TaskID: task.ID})

	if _, err := f.svc.Reschedule(ctx, first, task.ID, "2026-10-17T12:00"); err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if n, _ := f.log.Get(first); !n.Read {
		t.Fatal("triggering notification should be read")
	}
	if f.chimes.n != 1 {
		t.Fatalf("expected chime, got %d", f.chimes.n)
	}

	in := reminder.Input{
		Tasks:         f.repo.Snapshot(),
		Notifications: f.log.List(),
		Settings:      models.DefaultSettings(),
		Now:           time.Date(2026, 10, 17, 12, 1, 0, 0, testLoc),
		Location:      testLoc,
	}
	plan := reminder.Evaluate(in)
	if len(plan.Firings) != 1 || plan.Firings[0].NotificationID != reminder.CustomKey(task.ID, "2026-10-17T12:00") {
		t.Fatalf("expected a fresh firing at the new time, got %+v", plan.Firings)
	}

	if _, err := f.svc.Reschedule(ctx, first, task.ID, ""); !errors.Is(err, models.ErrInvalidReminderDate) {
		t.Fatalf("expected ErrInvalidReminderDate, got %v", err)
	}
}

func TestQuickReminder(t *testing.T) {
	f := newFixture(t)
	task := f.addTask(t, "")
	updated, err := f.svc.QuickReminder(context.Background(), task.ID, 48)
	if err != nil {
		t.Fatalf("quick: %v", err)
	}
	if updated.CustomReminderDate != "2026-10-19T10:00" {
		t.Fatalf("unexpected reminder %q", updated.CustomReminderDate)
	}
	if _, err := f.svc.QuickReminder(context.Background(), task.ID, 0); !errors.Is(err, ErrInvalidQuickReminder) {
		t.Fatalf("expected ErrInvalidQuickReminder, got %v", err)
	}
}

func TestSendTaskDetails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	task := f.addTask(t, "")

	if err := f.svc.SendTaskDetails(ctx, task.ID); err != nil {
		t.Fatalf("send: %v", err)
	}
	list := f.log.List()
	if len(list) != 1 || !strings.HasPrefix(list[0].ID, "manual-email-") || list[0].Type != models.NotificationSuccess {
		t.Fatalf("expected success notification, got %+v", list)
	}

	f.mailer.err = errors.New("smtp down")
	if err := f.svc.SendTaskDetails(ctx, task.ID); err != nil {
		t.Fatalf("failure should be swallowed, got %v", err)
	}
	if len(f.log.List()) != 1 {
		t.Fatal("failed send must not notify the user")
	}
	if err := f.svc.SendTaskDetails(ctx, "missing"); !errors.Is(err, tasks.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestOpenTaskFromDanglingNotification(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	task := f.addTask(t, "")
	f.log.Append(ctx, models.Notification{ID: "rem-today-" + task.ID, Type: models.NotificationAlert, TaskID: task.ID})

	if got, ok := f.svc.OpenTaskFromNotification("rem-today-" + task.ID); !ok || got.ID != task.ID {
		t.Fatalf("expected task, got %+v ok=%v", got, ok)
	}
	if err := f.repo.Delete(ctx, task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := f.svc.OpenTaskFromNotification("rem-today-" + task.ID); ok {
		t.Fatal("dangling link should be inert")
	}
	if _, ok := f.svc.OpenTaskFromNotification("unknown"); ok {
		t.Fatal("unknown notification should be inert")
	}
}

func TestDestructiveActionsNeedConfirmation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.log.Append(ctx, models.Notification{ID: "a", Type: models.NotificationInfo})
	f.log.Append(ctx, models.Notification{ID: "b", Type: models.NotificationInfo})

	if err := f.svc.DeleteNotification(ctx, "a", false); !errors.Is(err, ErrConfirmationRequired) {
		t.Fatalf("expected ErrConfirmationRequired, got %v", err)
	}
	if err := f.svc.DeleteNotification(ctx, "a", true); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.svc.ClearNotifications(ctx, false); !errors.Is(err, ErrConfirmationRequired) {
		t.Fatalf("expected ErrConfirmationRequired, got %v", err)
	}
	n, err := f.svc.ClearNotifications(ctx, true)
	if err != nil || n != 1 {
		t.Fatalf("clear: n=%d err=%v", n, err)
	}
	if f.chimes.n != 1 {
		t.Fatalf("expected chime on clear, got %d", f.chimes.n)
	}
	if n, err := f.svc.ClearNotifications(ctx, false); err != nil || n != 0 {
		t.Fatalf("empty clear should be a no-op, n=%d err=%v", n, err)
	}
}

func TestAnalyzePassesAllTasks(t *testing.T) {
	f := newFixture(t)
	f.addTask(t, "")
	f.addTask(t, "")
	if got := f.svc.Analyze(context.Background()); got != "summary" {
		t.Fatalf("unexpected analysis %q", got)
	}
	if a := f.svc.deps.Analyzer.(*fakeAnalyzer); a.got != 2 {
		t.Fatalf("expected 2 tasks analyzed, got %d", a.got)
	}
}
