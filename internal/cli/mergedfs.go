package cli

import (
	"github.com/arthur-debert/homebin/pkg/filesystem"
	"github.com/arthur-debert/homebin/pkg/logging"
	"github.com/arthur-debert/homebin/pkg/mergedfs"
	"github.com/arthur-debert/homebin/pkg/paths"
	"github.com/spf13/cobra"
)

// NewMergedFSCmd returns the merged-dir-fs command.
func NewMergedFSCmd() *cobra.Command {
	root, _ := newRoot("merged-dir-fs", MsgMergedShort, MsgMergedLong)
	root.Use = "merged-dir-fs <source> <mountpoint>"
	root.Args = cobra.ExactArgs(2)

	var opts mergedfs.MountOptions
	root.Flags().BoolVar(&opts.AllowOther, "allow-other", false, MsgFlagAllowOther)
	root.Flags().BoolVar(&opts.Debug, "debug", false, MsgFlagFuseDebug)

	root.RunE = func(cmd *cobra.Command, args []string) error {
		logger := logging.GetLogger("cli.mergedfs")

		source, err := paths.Resolve(args[0])
		if err != nil {
			return err
		}
		mountpoint, err := paths.Resolve(args[1])
		if err != nil {
			return err
		}

		index := mergedfs.NewIndex(filesystem.NewOS(), source)
		if err := index.Build(); err != nil {
			return err
		}
		for _, name := range index.Duplicates() {
			logger.Warn().Str("name", name).Msg("Several files share this name, the last one found is shown")
		}

		server, err := mergedfs.Mount(index, mountpoint, opts)
		if err != nil {
			return err
		}

		go func() {
			<-cmd.Context().Done()
			if err := server.Unmount(); err != nil {
				logger.Warn().Err(err).Msg("Unmount failed")
			}
		}()
		server.Wait()
		return nil
	}

	return root
}
