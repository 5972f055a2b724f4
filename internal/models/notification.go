package models

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidNotificationType = errors.New("models: invalid notification type")

// NotificationType informs styling only.
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationWarning NotificationType = "warning"
	NotificationSuccess NotificationType = "success"
	NotificationAlert   NotificationType = "alert"
)

func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationInfo, NotificationWarning, NotificationSuccess, NotificationAlert:
		return true
	default:
		return false
	}
}

// Notification is an entry in the notification center. TaskID is a weak
// reference: the task may have been deleted since.
type Notification struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	Read      bool             `json:"read"`
	Timestamp time.Time        `json:"timestamp"`
	TaskID    string           `json:"taskId,omitempty"`
	TaskTitle string           `json:"taskTitle,omitempty"`
}

func (n Notification) Validate() error {
	if n.ID == "" {
		return errors.New("models: notification id is required")
	}
	if !n.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidNotificationType, n.Type)
	}
	return nil
}

// Popup is the blocking reminder dialog shown to the user.
type Popup struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	TaskID  string `json:"taskId,omitempty"`
}
