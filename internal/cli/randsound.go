package cli

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/homebin/pkg/command"
	"github.com/arthur-debert/homebin/pkg/errors"
	"github.com/arthur-debert/homebin/pkg/filesystem"
	"github.com/arthur-debert/homebin/pkg/paths"
	"github.com/arthur-debert/homebin/pkg/randsound"
	"github.com/spf13/cobra"
)

// NewPlayRandomSoundCmd returns the play-random-sound command.
func NewPlayRandomSoundCmd() *cobra.Command {
	root, _ := newRoot("play-random-sound", MsgSoundShort, MsgSoundLong)
	root.Use = "play-random-sound <dir>"
	root.Args = cobra.ExactArgs(1)

	var player string
	root.Flags().StringVar(&player, "player", randsound.DefaultPlayer, MsgFlagPlayer)

	root.RunE = func(cmd *cobra.Command, args []string) error {
		stateDir := paths.StateDir()
		if err := os.MkdirAll(stateDir, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", stateDir)
		}

		p := randsound.New(filesystem.NewOS(), command.NewRunner(), randsound.Options{
			StateFile: filepath.Join(stateDir, "last-random-sound"),
			PidFile:   filepath.Join(stateDir, "play-random-sound.pid"),
			Player:    player,
			Stdout:    cmd.OutOrStdout(),
			Stderr:    cmd.ErrOrStderr(),
		})
		_, err := p.Play(cmd.Context(), paths.ExpandHome(args[0]))
		return err
	}

	return root
}
