package news

import (
	"context"
	"fmt"
	"io"

	"github.com/arthur-debert/homebin/pkg/command"
	"github.com/arthur-debert/homebin/pkg/errors"
	"github.com/arthur-debert/homebin/pkg/logging"
	"github.com/arthur-debert/homebin/pkg/placeholder"
	"github.com/arthur-debert/homebin/pkg/ui/prompt"
	"github.com/rs/zerolog"
)

// Downloader runs the interactive download session.
type Downloader struct {
	api     API
	runner  command.Runner
	confirm prompt.Confirmer
	out     io.Writer
	logger  zerolog.Logger
}

// NewDownloader returns a Downloader. Messages and command output go to out.
func NewDownloader(api API, runner command.Runner, confirm prompt.Confirmer, out io.Writer) *Downloader {
	return &Downloader{
		api:     api,
		runner:  runner,
		confirm: confirm,
		out:     out,
		logger:  logging.GetLogger("news"),
	}
}

// Job selects what to download.
type Job struct {
	// Category is the category (or folder) name.
	Category string

	// Command is a shell command template; {field} is replaced with the
	// item's field of that name.
	Command string

	// Noun names categories in messages. Defaults to "category".
	Noun string
}

// Summary counts what a Run did.
type Summary struct {
	Found      int
	Downloaded int
	Failed     int
	MarkedRead int
}

// Run lists the unread items of the job's category, asks to start, then
// downloads each item and offers to mark it read. A failing command is
// reported and the next item is tried.
func (d *Downloader) Run(ctx context.Context, job Job) (Summary, error) {
	var summary Summary
	noun := job.Noun
	if noun == "" {
		noun = "category"
	}

	categories, err := d.api.Categories(ctx)
	if err != nil {
		return summary, err
	}
	id, err := FindCategory(categories, job.Category)
	if err != nil {
		return summary, err
	}

	items, err := d.api.Items(ctx, id)
	if err != nil {
		return summary, err
	}
	summary.Found = len(items)

	if len(items) == 0 {
		d.printf("No new items found in %s '%s'\n", noun, job.Category)
		return summary, nil
	}

	d.printf("Found %d items to be downloaded:\n", len(items))
	for _, item := range items {
		d.printf("  %s [%s]\n", item.Title, item.URL)
	}
	d.printf("\n")

	start, err := d.confirm.Confirm("Start download?", true)
	if err != nil || !start {
		return summary, err
	}

	for i, item := range items {
		d.printf("Downloading item %d of %d: %s [%s]\n", i+1, len(items), item.Title, item.URL)

		if code, err := d.download(ctx, job.Command, item); err != nil {
			if errors.IsErrorCode(err, errors.ErrPlaceholder) {
				return summary, err
			}
			d.printf("Command failed with exit code %d\n", code)
			summary.Failed++
			continue
		}
		summary.Downloaded++

		mark, err := d.confirm.Confirm("Download successful. Mark item as read?", true)
		if err != nil {
			return summary, err
		}
		if !mark {
			continue
		}
		if err := d.api.MarkRead(ctx, item); err != nil {
			return summary, err
		}
		summary.MarkedRead++
	}

	d.logger.Info().
		Int("found", summary.Found).
		Int("downloaded", summary.Downloaded).
		Int("failed", summary.Failed).
		Msg("Download session finished")
	return summary, nil
}

func (d *Downloader) download(ctx context.Context, template string, item Item) (int, error) {
	script, err := placeholder.ExpandMap(template, item.Values())
	if err != nil {
		return -1, err
	}

	cmd := command.Shell(script)
	cmd.Stdout = d.out
	cmd.Stderr = d.out
	_, err = d.runner.Run(ctx, cmd)
	return command.ExitCode(err), err
}

func (d *Downloader) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(d.out, format, args...)
}
