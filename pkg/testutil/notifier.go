package testutil

import (
	"context"
	"sync"
)

// Notification is one recorded Notify call.
type Notification struct {
	Title string
	Body  string
}

// LogLine is one recorded Log call.
type LogLine struct {
	Filename string
	Message  string
}

// RecordingNotifier implements notify.Notifier and keeps every call.
type RecordingNotifier struct {
	mu            sync.Mutex
	notifications []Notification
	logs          []LogLine
}

func (r *RecordingNotifier) Notify(_ context.Context, title, body string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, Notification{Title: title, Body: body})
}

func (r *RecordingNotifier) Log(filename, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, LogLine{Filename: filename, Message: message})
}

// Notifications returns the recorded notifications.
func (r *RecordingNotifier) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.notifications...)
}

// Titles returns the titles of the recorded notifications.
func (r *RecordingNotifier) Titles() []string {
	var out []string
	for _, n := range r.Notifications() {
		out = append(out, n.Title)
	}
	return out
}

// Logs returns the recorded log lines.
func (r *RecordingNotifier) Logs() []LogLine {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]LogLine(nil), r.logs...)
}
