package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"munjiz/internal/config"
	"munjiz/internal/logging"
	"munjiz/internal/models"
	"munjiz/pkg/email"
)

// Mailer sends reminder and task-detail emails.
type Mailer interface {
	SendReminderEmail(ctx context.Context, recipient, userName, taskTitle string, leadDays int) error
	SendTaskDetails(ctx context.Context, recipient, userName string, task models.Task) error
}

// NewMailer returns an SMTP mailer when SMTP is fully configured and a
// simulated one otherwise.
func NewMailer(cfg config.Config, logger *logging.Logger) Mailer {
	if cfg.SMTPConfigured() {
		return &SMTPMailer{
			server:   cfg.Email.SMTPServer,
			port:     cfg.Email.SMTPPort,
			username: cfg.Email.Username,
			password: cfg.Email.Password,
			fromName: cfg.Email.FromName,
			log:      logger.Component("email"),
		}
	}
	logger.Component("email").Warnf("SMTP not configured, emails will only be logged")
	return &SimulatedMailer{log: logger.Component("email")}
}

type SMTPMailer struct {
	server   string
	port     int
	username string
	password string
	fromName string
	log      *logrus.Entry
}

func (m *SMTPMailer) SendReminderEmail(ctx context.Context, recipient, userName, taskTitle string, leadDays int) error {
	subject, body := ReminderMessage(userName, taskTitle, leadDays)
	return m.send(ctx, recipient, subject, body)
}

func (m *SMTPMailer) SendTaskDetails(ctx context.Context, recipient, userName string, task models.Task) error {
	subject, body := TaskDetailsMessage(userName, task)
	return m.send(ctx, recipient, subject, body)
}

// send runs the SMTP exchange in the background so ctx can abandon it.
func (m *SMTPMailer) send(ctx context.Context, to, subject, body string) error {
	msg := email.Message{FromName: m.fromName, From: m.username, To: to, Subject: subject, Body: body}
	done := make(chan error, 1)
	go func() {
		done <- email.Send(m.server, m.port, m.username, m.password, msg)
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email to %s: %w", to, err)
		}
		m.log.Infof("Email sent to %s: %s", to, subject)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send email to %s: %w", to, ctx.Err())
	}
}

// SimulatedMailer logs emails instead of sending them.
type SimulatedMailer struct {
	log *logrus.Entry
}

func (m *SimulatedMailer) SendReminderEmail(ctx context.Context, recipient, userName, taskTitle string, leadDays int) error {
	subject, _ := ReminderMessage(userName, taskTitle, leadDays)
	return m.send(ctx, recipient, subject)
}

func (m *SimulatedMailer) SendTaskDetails(ctx context.Context, recipient, userName string, task models.Task) error {
	subject, _ := TaskDetailsMessage(userName, task)
	return m.send(ctx, recipient, subject)
}

func (m *SimulatedMailer) send(ctx context.Context, to, subject string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.log.WithField("to", to).Infof("Simulated email: %s", subject)
	return nil
}

// ReminderMessage renders the automatic reminder email.
func ReminderMessage(userName, taskTitle string, leadDays int) (subject, body string) {
	var when string
	switch {
	case leadDays <= 0:
		when = "اليوم"
	case leadDays == 1:
		when = "غداً"
	default:
		when = fmt.Sprintf("خلال %d أيام", leadDays)
	}
	subject = fmt.Sprintf("تذكير: %s", taskTitle)
	body = fmt.Sprintf("مرحباً %s،\n\nنود تذكيرك بأن موعد تسليم المهمة %q %s.\n\nمع تحيات فريق منجز", userName, taskTitle, when)
	return subject, body
}

// TaskDetailsMessage renders the email the user sends to themselves from
// a task.
func TaskDetailsMessage(userName string, task models.Task) (subject, body string) {
	var b strings.Builder
	fmt.Fprintf(&b, "مرحباً %s،\n\nتفاصيل المهمة:\n\n", userName)
	fmt.Fprintf(&b, "العنوان: %s\n", task.Title)
	if task.Description != "" {
		fmt.Fprintf(&b, "الوصف: %s\n", task.Description)
	}
	fmt.Fprintf(&b, "تاريخ البدء: %s\n", task.StartDate)
	fmt.Fprintf(&b, "تاريخ الاستحقاق: %s\n", task.DueDate)
	fmt.Fprintf(&b, "الأولوية: %s\n", task.Priority)
	fmt.Fprintf(&b, "الحالة: %s\n", task.Status)
	if len(task.Tags) > 0 {
		fmt.Fprintf(&b, "الوسوم: %s\n", strings.Join(task.Tags, "، "))
	}
	b.WriteString("\nمع تحيات فريق منجز")
	return fmt.Sprintf("تفاصيل المهمة: %s", task.Title), b.String()
}
