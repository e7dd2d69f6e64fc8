package model

import "fmt"

type NotificationKind string

const (
	NotificationSuccess NotificationKind = "Success"
	NotificationError   NotificationKind = "Error"
)

// Notification is a user-visible message fired after every mutating operation.
type Notification struct {
	Kind    NotificationKind
	Message string
}

// String implements the stringer interface.
func (n Notification) String() string {
	return fmt.Sprintf("[%s] %s", n.Kind, n.Message)
}

// NewSuccessNotification creates a success Notification.
func NewSuccessNotification(msg string) Notification {
	return Notification{Kind: NotificationSuccess, Message: msg}
}

// NewErrorNotification creates the generic error Notification.
func NewErrorNotification() Notification {
	return Notification{Kind: NotificationError, Message: "Something went wrong"}
}
