package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"munjiz/internal/logging"
	"munjiz/internal/metrics"
	"munjiz/internal/models"
	"munjiz/internal/notification"
	"munjiz/internal/reminder"
	"munjiz/internal/settings"
	"munjiz/internal/tasks"
)

const emailTimeout = 30 * time.Second

// Audio plays the reminder chime.
type Audio interface {
	Chime(ctx context.Context)
}

// Notifier delivers native notifications. Implementations check the
// user's permission themselves.
type Notifier interface {
	Notify(ctx context.Context, title, body string)
}

// Popups shows the blocking reminder dialog.
type Popups interface {
	Show(p models.Popup)
}

// Mailer sends reminder emails.
type Mailer interface {
	SendReminderEmail(ctx context.Context, recipient, userName, taskTitle string, leadDays int) error
}

// Deps wires the scheduler to storage and effect sinks.
type Deps struct {
	Tasks     *tasks.Repository
	Log       *notification.Log
	Settings  *settings.Service
	Audio     Audio
	Notifier  Notifier
	Popups    Popups
	Mailer    Mailer
	Recipient string
}

// TickResult summarises one reminder pass.
type TickResult struct {
	Today         string `json:"today"`
	Fired         int    `json:"fired"`
	Emails        int    `json:"emails"`
	EmailFailures int    `json:"emailFailures"`
}

// Scheduler runs the reminder pass on a fixed interval. Passes never
// overlap.
type Scheduler struct {
	deps     Deps
	interval time.Duration
	now      func() time.Time
	log      *logrus.Entry

	tickMu sync.Mutex
	cron   *cron.Cron
}

// New returns a stopped Scheduler. Call Start to begin ticking.
func New(deps Deps, logger *logging.Logger, interval time.Duration) *Scheduler {
	return &Scheduler{
		deps:     deps,
		interval: interval,
		now:      time.Now,
		log:      logger.Component("scheduler"),
	}
}

// Start runs one pass immediately, then every interval until Stop.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("scheduler: invalid interval %s", s.interval)
	}
	s.Tick(ctx)

	cl := cron.PrintfLogger(s.log)
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	c.Schedule(cron.Every(s.interval), cron.FuncJob(func() {
		s.Tick(ctx)
	}))
	c.Start()
	s.cron = c
	s.log.Infof("Scheduler started, interval=%s", s.interval)
	return nil
}

// Stop halts the timer and waits for a running pass to finish.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.log.Info("Scheduler stopped")
}

// Tick evaluates every task once and executes the resulting plan.
func (s *Scheduler) Tick(ctx context.Context) TickResult {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	start := time.Now()
	defer func() { metrics.RecordTick(time.Since(start)) }()

	cfg := s.deps.Settings.Get()
	plan := reminder.Evaluate(reminder.Input{
		Tasks:         s.deps.Tasks.Snapshot(),
		Notifications: s.deps.Log.List(),
		Settings:      cfg,
		Now:           s.now(),
		Location:      s.deps.Tasks.Location(),
	})

	res := TickResult{Today: plan.Today}
	for _, f := range plan.Firings {
		if !s.execute(ctx, f, cfg, &res) {
			continue
		}
		res.Fired++
		metrics.RecordReminderFired(string(f.Family))
	}
	if res.Fired > 0 {
		s.log.Infof("Reminder pass fired %d (emails=%d failed=%d)", res.Fired, res.Emails, res.EmailFailures)
	} else {
		s.log.Debug("Reminder pass fired nothing")
	}
	return res
}

// execute runs the effects of f in order and reports whether its record
// was inserted. A false result means another writer claimed the id first.
func (s *Scheduler) execute(ctx context.Context, f reminder.Firing, cfg models.Settings, res *TickResult) bool {
	recorded := false
	entry := s.log.WithFields(logrus.Fields{"family": f.Family, "task_id": f.TaskID, "id": f.NotificationID})
	for _, eff := range f.Effects {
		switch e := eff.(type) {
		case reminder.Chime:
			s.deps.Audio.Chime(ctx)
		case reminder.Native:
			s.deps.Notifier.Notify(ctx, e.Title, e.Body)
		case reminder.Popup:
			s.deps.Popups.Show(e.Popup)
		case reminder.Record:
			if s.deps.Log.Append(ctx, e.Notification) {
				recorded = true
			} else {
				entry.Debug("Notification already recorded")
			}
		case reminder.Email:
			res.Emails++
			if err := s.sendEmail(ctx, cfg, e); err != nil {
				res.EmailFailures++
				entry.Errorf("Reminder email failed: %v", err)
			}
		}
	}
	return recorded
}

// sendEmail ignores the caller's cancellation. The firing's id is
// recorded in the same pass, so a cancelled send is never retried.
func (s *Scheduler) sendEmail(ctx context.Context, cfg models.Settings, e reminder.Email) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), emailTimeout)
	defer cancel()
	err := s.deps.Mailer.SendReminderEmail(ctx, s.deps.Recipient, cfg.FullName, e.TaskTitle, e.LeadDays)
	metrics.RecordEmail(err)
	return err
}
