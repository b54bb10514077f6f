// SPDX-License-Identifier: MIT
package coordinator

import (
	"errors"

	"github.com/rs/zerolog"
	"github.com/thatcatcamp/smartsvg/internal/manipulation"
)

// NotificationTitle heads every failure shown to the user
const NotificationTitle = "Something went wrong!"

// Notification is a dismissible failure message
type Notification struct {
	Title   string                              `json:"title"`
	Message string                              `json:"message"`
	Fields  []manipulation.FieldValidationError `json:"fields,omitempty"`
}

// Notifier receives failures of coordinator transitions
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(n Notification)

// Notify calls f
func (f NotifierFunc) Notify(n Notification) {
	f(n)
}

// LogNotifier writes notifications to a logger
type LogNotifier struct {
	Logger zerolog.Logger
}

// Notify logs n as a warning
func (l LogNotifier) Notify(n Notification) {
	ev := l.Logger.Warn().Str("title", n.Title)
	if len(n.Fields) > 0 {
		fields := make([]string, 0, len(n.Fields))
		for _, f := range n.Fields {
			fields = append(fields, f.Field)
		}
		ev = ev.Strs("fields", fields)
	}
	ev.Msg(n.Message)
}

// NotificationFor builds the user facing message for err. Service
// validation errors carry their field errors instead of a bare message.
func NotificationFor(err error) Notification {
	n := Notification{Title: NotificationTitle, Message: err.Error()}
	var svcErr *manipulation.ServiceError
	if errors.As(err, &svcErr) {
		n.Message = svcErr.Message
		n.Fields = svcErr.Errors
	}
	return n
}
