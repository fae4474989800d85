// internal/storefront/notify/notify.go

// Package notify is the fire-and-forget sink for user-facing messages.
package notify

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Level is the kind of a notification
type Level string

const (
	Success Level = "success"
	Info    Level = "info"
	Error   Level = "error"
)

// Notifier surfaces a message to the user; callers never depend on its outcome
type Notifier interface {
	Notify(level Level, message string)
}

// LogNotifier writes notifications to a logrus logger
type LogNotifier struct {
	logger *logrus.Logger
}

// NewLogNotifier creates a notifier backed by logger
func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the message at a level matching the notification kind
func (n *LogNotifier) Notify(level Level, message string) {
	entry := n.logger.WithField("notification", string(level))
	if level == Error {
		entry.Warn(message)
		return
	}
	entry.Info(message)
}

// Message is a recorded notification
type Message struct {
	Level Level
	Text  string
}

// Recorder keeps every notification in memory. It backs headless clients
// that render messages later, and tests.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

// Notify records the message
func (r *Recorder) Notify(level Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Level: level, Text: message})
}

// Messages returns a copy of the recorded notifications
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Reset drops all recorded notifications
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = nil
}
