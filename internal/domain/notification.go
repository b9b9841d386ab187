package domain

import "time"

type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
	NotificationWarning NotificationType = "warning"
	NotificationInfo    NotificationType = "info"
)

type Notification struct {
	ID        string
	UserID    int64
	Type      NotificationType
	Title     string
	Message   string
	Read      bool
	CreatedAt time.Time
}
