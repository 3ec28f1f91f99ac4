package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/arthur-debert/homebin/pkg/chapters"
	"github.com/arthur-debert/homebin/pkg/errors"
	"github.com/spf13/cobra"
)

// NewChaptersCmd returns the ffmpeg-chapters command.
func NewChaptersCmd() *cobra.Command {
	root, _ := newRoot("ffmpeg-chapters", MsgChaptersShort, MsgChaptersLong)
	root.Use = "ffmpeg-chapters [file]..."

	var header bool
	root.Flags().BoolVar(&header, "header", false, MsgFlagHeader)

	root.RunE = func(cmd *cobra.Command, args []string) error {
		var marks []chapters.Mark
		read := func(r io.Reader) error {
			m, skipped, err := chapters.Parse(r)
			if err != nil {
				return err
			}
			for _, line := range skipped {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), MsgUnparsedLine, line)
			}
			marks = append(marks, m...)
			return nil
		}

		if len(args) == 0 {
			args = []string{"-"}
		}
		for _, path := range args {
			if path == "-" {
				if err := read(cmd.InOrStdin()); err != nil {
					return err
				}
				continue
			}
			f, err := os.Open(path)
			if err != nil {
				return errors.Wrapf(err, errors.ErrFileAccess, "failed to open %s", path)
			}
			err = read(f)
			_ = f.Close()
			if err != nil {
				return err
			}
		}

		return chapters.Write(cmd.OutOrStdout(), chapters.Build(marks), header)
	}

	return root
}
