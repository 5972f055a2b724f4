package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidPriority  = errors.New("models: invalid task priority")
	ErrInvalidStatus    = errors.New("models: invalid task status")
	ErrInvalidFrequency = errors.New("models: invalid email reminder frequency")
	ErrMissingField     = errors.New("models: required field missing")
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

// ReminderFrequency controls periodic email reminders. The numeric prefix
// is the period in days.
type ReminderFrequency string

const (
	FrequencyNone        ReminderFrequency = "none"
	FrequencyEvery2Days  ReminderFrequency = "2-days"
	FrequencyEvery5Days  ReminderFrequency = "5-days"
	FrequencyEvery10Days ReminderFrequency = "10-days"
)

func (f ReminderFrequency) IsValid() bool {
	switch f {
	case "", FrequencyNone, FrequencyEvery2Days, FrequencyEvery5Days, FrequencyEvery10Days:
		return true
	default:
		return false
	}
}

// Period returns the reminder period in days, or 0 when periodic
// reminders are off.
func (f ReminderFrequency) Period() int {
	if f == "" || f == FrequencyNone {
		return 0
	}
	head, _, _ := strings.Cut(string(f), "-")
	n, err := strconv.Atoi(head)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

type Attachment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Task is a unit of work with a calendar due date. StartDate and DueDate
// are local YYYY-MM-DD strings; CustomReminderDate is a local date-time.
type Task struct {
	ID                     string            `json:"id"`
	Title                  string            `json:"title"`
	Description            string            `json:"description"`
	StartDate              string            `json:"startDate"`
	DueDate                string            `json:"dueDate"`
	Priority               Priority          `json:"priority"`
	Status                 Status            `json:"status"`
	Tags                   []string          `json:"tags,omitempty"`
	Attachments            []Attachment      `json:"attachments,omitempty"`
	EmailReminderFrequency ReminderFrequency `json:"emailReminderFrequency,omitempty"`
	CustomReminderDate     string            `json:"customReminderDate,omitempty"`
}

// TaskDraft is a task before it has an id and status.
type TaskDraft struct {
	Title                  string            `json:"title" binding:"required"`
	Description            string            `json:"description"`
	StartDate              string            `json:"startDate" binding:"required"`
	DueDate                string            `json:"dueDate" binding:"required"`
	Priority               Priority          `json:"priority"`
	Tags                   []string          `json:"tags,omitempty"`
	Attachments            []Attachment      `json:"attachments,omitempty"`
	EmailReminderFrequency ReminderFrequency `json:"emailReminderFrequency,omitempty"`
	CustomReminderDate     string            `json:"customReminderDate,omitempty"`
}

// Task builds a pending task with the given id.
func (d TaskDraft) Task(id string) Task {
	priority := d.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	freq := d.EmailReminderFrequency
	if freq == "" {
		freq = FrequencyNone
	}
	return Task{
		ID:                     id,
		Title:                  d.Title,
		Description:            d.Description,
		StartDate:              d.StartDate,
		DueDate:                d.DueDate,
		Priority:               priority,
		Status:                 StatusPending,
		Tags:                   d.Tags,
		Attachments:            d.Attachments,
		EmailReminderFrequency: freq,
		CustomReminderDate:     d.CustomReminderDate,
	}
}

func (t Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// Validate checks enums and date formats. Date ordering is not checked.
func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("%w: id", ErrMissingField)
	}
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: title", ErrMissingField)
	}
	if !t.Priority.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, t.Priority)
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}
	if !t.EmailReminderFrequency.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidFrequency, t.EmailReminderFrequency)
	}
	if _, err := ParseDate(t.StartDate, nil); err != nil {
		return fmt.Errorf("start date: %w", err)
	}
	if _, err := ParseDate(t.DueDate, nil); err != nil {
		return fmt.Errorf("due date: %w", err)
	}
	if t.CustomReminderDate != "" {
		if _, err := ParseReminderTime(t.CustomReminderDate, nil); err != nil {
			return err
		}
	}
	return nil
}
