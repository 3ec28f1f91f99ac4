package cli

import (
	"github.com/arthur-debert/homebin/pkg/borg"
	"github.com/arthur-debert/homebin/pkg/command"
	"github.com/spf13/cobra"
)

// NewBorgHelperCmd returns the borg-helper command.
func NewBorgHelperCmd() *cobra.Command {
	return newBorgHelperCmd(command.NewRunner())
}

func newBorgHelperCmd(runner command.Runner) *cobra.Command {
	root, _ := newRoot("borg-helper", MsgBorgShort, MsgBorgLong)
	root.Use = "borg-helper <repo> [borg arguments]"
	root.Args = cobra.MinimumNArgs(1)
	// everything after the repository name belongs to borg
	root.Flags().SetInterspersed(false)

	var configFile, binary string
	root.PersistentFlags().StringVar(&configFile, "config", borg.DefaultConfigFile, MsgFlagBorgConfig)
	root.PersistentFlags().StringVar(&binary, "borg", borg.DefaultBorgBinary, MsgFlagBorgBinary)

	helper := func() (*borg.Helper, error) {
		repos, err := borg.LoadRepos(configFile)
		if err != nil {
			return nil, err
		}
		return borg.New(repos, binary, runner), nil
	}

	root.RunE = func(cmd *cobra.Command, args []string) error {
		h, err := helper()
		if err != nil {
			return err
		}
		code, err := h.Run(cmd.Context(), args[0], args[1:], borg.Streams{
			Stdin:  cmd.InOrStdin(),
			Stdout: cmd.OutOrStdout(),
			Stderr: cmd.ErrOrStderr(),
		})
		if err != nil {
			return err
		}
		if code != 0 {
			return &ExitError{Code: code}
		}
		return nil
	}

	root.AddCommand(&cobra.Command{
		Use:   "list",
		Short: MsgBorgListShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := helper()
			if err != nil {
				return err
			}
			return h.List(cmd.OutOrStdout())
		},
	})

	return root
}
