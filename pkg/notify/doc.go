// Package notify reports what the tools do: desktop notifications through
// notify-send, push notifications through an ntfy topic, and log lines.
//
// Notifications are fire-and-forget. A failing notifier is logged and never
// fails the operation that triggered it.
package notify
