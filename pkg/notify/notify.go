package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/arthur-debert/homebin/pkg/command"
	"github.com/arthur-debert/homebin/pkg/logging"
	"github.com/rs/zerolog"
)

// Notifier is the notification collaborator of the download router.
type Notifier interface {
	// Notify shows a short message to the user.
	Notify(ctx context.Context, title, body string)
	// Log records a message about a file.
	Log(filename, message string)
}

// Settings configures the notifiers built by New.
type Settings struct {
	Desktop DesktopSettings `koanf:"desktop"`
	Ntfy    NtfySettings    `koanf:"ntfy"`
}

// DesktopSettings configures notify-send.
type DesktopSettings struct {
	Enabled bool   `koanf:"enabled"`
	Command string `koanf:"command"`
	AppName string `koanf:"app_name"`
}

// NtfySettings configures the ntfy publisher. An empty topic disables it.
type NtfySettings struct {
	Topic   string        `koanf:"topic"`
	Timeout time.Duration `koanf:"timeout"`
}

// New builds the notifier described by s. Log lines always go to out and
// the tool's logger.
func New(s Settings, runner command.Runner, out io.Writer) Notifier {
	notifiers := []Notifier{NewLogger(out)}
	if s.Desktop.Enabled {
		notifiers = append(notifiers, NewDesktop(runner, s.Desktop.Command, s.Desktop.AppName))
	}
	if topic := strings.TrimSpace(s.Ntfy.Topic); topic != "" {
		notifiers = append(notifiers, NewNtfy(topic, &http.Client{Timeout: s.Ntfy.Timeout}))
	}
	return Multi(notifiers...)
}

// Info logs a message about filename and shows it as a notification
// titled action.
func Info(ctx context.Context, n Notifier, action, filename, message string) {
	n.Log(filename, fmt.Sprintf("%s: %s", action, message))
	n.Notify(ctx, action, fmt.Sprintf("%s: %s", filename, message))
}

// Logger prints per-file log lines to a writer, whatever the log level,
// and records notifications and log lines in the logger.
type Logger struct {
	out    io.Writer
	logger zerolog.Logger
}

// NewLogger returns a log-only notifier printing to out. A nil out only
// logs.
func NewLogger(out io.Writer) *Logger {
	return &Logger{out: out, logger: logging.GetLogger("notify")}
}

func (l *Logger) Notify(_ context.Context, title, body string) {
	l.logger.Debug().Str("title", title).Msg(body)
}

func (l *Logger) Log(filename, message string) {
	if l.out != nil {
		_, _ = fmt.Fprintf(l.out, "[%s] %s: %s\n", time.Now().Format(time.DateTime), filename, message)
	}
	l.logger.Info().Str("file", filename).Msg(message)
}

type multi []Notifier

// Multi fans out to every notifier in order.
func Multi(notifiers ...Notifier) Notifier {
	return multi(notifiers)
}

func (m multi) Notify(ctx context.Context, title, body string) {
	for _, n := range m {
		n.Notify(ctx, title, body)
	}
}

func (m multi) Log(filename, message string) {
	for _, n := range m {
		n.Log(filename, message)
	}
}

type nop struct{}

// Nop returns a notifier that drops everything.
func Nop() Notifier { return nop{} }

func (nop) Notify(context.Context, string, string) {}
func (nop) Log(string, string)                     {}
