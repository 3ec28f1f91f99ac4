package cli

import (
	"fmt"
	"io"

	"github.com/arthur-debert/homebin/pkg/command"
	"github.com/arthur-debert/homebin/pkg/filesystem"
	"github.com/arthur-debert/homebin/pkg/gitmirror"
	"github.com/arthur-debert/homebin/pkg/paths"
	"github.com/arthur-debert/homebin/pkg/ui/prompt"
	"github.com/spf13/cobra"
)

// NewGitMirrorCmd returns the git-mirror command tree.
func NewGitMirrorCmd() *cobra.Command {
	return newGitMirrorCmd(func(out io.Writer) gitmirror.Git {
		return gitmirror.NewExecGit(command.NewRunner(), out)
	})
}

func newGitMirrorCmd(newGit func(out io.Writer) gitmirror.Git) *cobra.Command {
	root, _ := newRoot("git-mirror", MsgGitMirrorShort, MsgGitMirrorLong)

	var excludes []string
	root.PersistentFlags().StringSliceVarP(&excludes, "exclude", "e", nil, MsgFlagExclude)

	mirror := func(cmd *cobra.Command, yes bool) *gitmirror.Mirror {
		out := cmd.OutOrStdout()
		confirm := prompt.New(cmd.InOrStdin(), out).AssumeYes(yes)
		return gitmirror.New(filesystem.NewOS(), newGit(out), out, confirm)
	}

	root.AddCommand(&cobra.Command{
		Use:   "store <base-dir> <manifest>",
		Short: MsgStoreShort,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, manifest := paths.ExpandHome(args[0]), paths.ExpandHome(args[1])
			entries, err := mirror(cmd, false).Store(cmd.Context(), base, manifest, gitmirror.Excludes(excludes))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), MsgStored, len(entries), manifest)
			return nil
		},
	})

	var opts gitmirror.RestoreOptions
	var yes bool
	restore := &cobra.Command{
		Use:   "restore <base-dir> <manifest>",
		Short: MsgRestoreShort,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Excludes = gitmirror.Excludes(excludes)
			base, manifest := paths.ExpandHome(args[0]), paths.ExpandHome(args[1])
			return mirror(cmd, yes).Restore(cmd.Context(), base, manifest, opts)
		},
	}
	restore.Flags().BoolVar(&opts.Purge, "purge", false, MsgFlagPurge)
	restore.Flags().BoolVarP(&opts.DryRun, "dry-run", "n", false, MsgFlagDryRun)
	restore.Flags().BoolVar(&opts.Pull, "pull", false, MsgFlagPull)
	restore.Flags().BoolVarP(&yes, "yes", "y", false, MsgFlagYes)
	root.AddCommand(restore)

	return root
}
