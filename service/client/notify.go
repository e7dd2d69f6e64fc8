package client

import (
	"fmt"
	"io"
	"sync"

	"github.com/itiky/employee-sync/model"
)

type (
	// Notifier shows user-visible notifications.
	Notifier interface {
		Notify(n model.Notification)
	}

	// NotifierFunc is a function adapter for Notifier.
	NotifierFunc func(n model.Notification)

	// WriterNotifier prints notifications to an io.Writer.
	WriterNotifier struct {
		sync.Mutex
		w io.Writer
	}
)

// Notify implements Notifier interface.
func (f NotifierFunc) Notify(n model.Notification) {
	f(n)
}

// Notify implements Notifier interface.
func (n *WriterNotifier) Notify(notification model.Notification) {
	n.Lock()
	defer n.Unlock()

	fmt.Fprintln(n.w, notification.String())
}

// NewWriterNotifier creates a new WriterNotifier object.
func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}
