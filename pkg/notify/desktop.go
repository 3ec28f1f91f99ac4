package notify

import (
	"context"

	"github.com/arthur-debert/homebin/pkg/command"
	"github.com/arthur-debert/homebin/pkg/logging"
	"github.com/arthur-debert/homebin/pkg/paths"
	"github.com/rs/zerolog"
)

const (
	DefaultDesktopCommand = "notify-send"
	DefaultAppName        = "Move Downloads"
)

// Desktop shows notifications with notify-send.
type Desktop struct {
	runner  command.Runner
	command string
	appName string
	logger  zerolog.Logger
}

// NewDesktop returns a notify-send notifier. Empty arguments use the
// defaults.
func NewDesktop(runner command.Runner, cmd, appName string) *Desktop {
	if cmd == "" {
		cmd = DefaultDesktopCommand
	}
	if appName == "" {
		appName = DefaultAppName
	}
	return &Desktop{
		runner:  runner,
		command: paths.ExpandHome(cmd),
		appName: appName,
		logger:  logging.GetLogger("notify.desktop"),
	}
}

func (d *Desktop) Notify(ctx context.Context, title, body string) {
	_, err := d.runner.Run(ctx, command.Command{
		Name: d.command,
		Args: []string{
			"--hint=string:desktop-entry:org.kde.dolphin",
			"-i", "dialog-information",
			"-a", d.appName,
			title,
			body,
		},
	})
	if err != nil {
		d.logger.Warn().Err(err).Str("title", title).Msg("Desktop notification failed")
	}
}

func (d *Desktop) Log(string, string) {}
